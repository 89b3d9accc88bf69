package dto

import (
	"time"

	domainuser "homeseek/internal/domain/user"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleSigninRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// UserProfile is a user document without its credential.
type UserProfile struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Avatar   *string `json:"avatar"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	return UserProfile{
		ID:        string(user.ID),
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func MapUserProfiles(users []*domainuser.User) []UserProfile {
	items := make([]UserProfile, 0, len(users))
	for _, user := range users {
		items = append(items, MapUserProfile(user))
	}
	return items
}

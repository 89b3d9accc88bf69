package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrUsernameRequired    = errors.New("user: username is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

type User struct {
	ID           ID
	Username     string
	Email        string
	PasswordHash string
	Avatar       string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the subset of a user safe to show to other users.
type PublicProfile struct {
	ID       ID
	Username string
	Email    string
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, Email: u.Email}
}

type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

type UpdateParams struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Avatar       *string
	IsAdmin      *bool
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, id ID, params UpdateParams) (*User, error)
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, params ListParams) ([]*User, int64, error)
}

type CreateParams struct {
	ID           ID
	Username     string
	Email        string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	created := params.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return &User{
		ID:           ID(id),
		Username:     username,
		Email:        email,
		PasswordHash: params.PasswordHash,
		Avatar:       strings.TrimSpace(params.Avatar),
		CreatedAt:    created,
		UpdatedAt:    created,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

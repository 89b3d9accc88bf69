package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/app/dto"
	authservice "homeseek/internal/app/services/auth"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

type UserHTTP interface {
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Listings(c *gin.Context)
}

type UserHandler struct {
	Users       domainuser.Repository
	ListingRepo domainlistings.Repository
	Passwords   authservice.PasswordHasher
	Logger      *slog.Logger
}

// Get returns a user's profile without the credential hash.
func (h UserHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	user, err := h.Users.ByID(requestContext(c), domainuser.ID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// Update lets a user change their own account only.
func (h UserHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if string(p.ID) != c.Param("id") {
		failure(c, http.StatusForbidden, "You can only update your own account")
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	params := domainuser.UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
	}
	if req.Password != nil {
		hash, err := h.Passwords.Hash(*req.Password)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		params.PasswordHash = &hash
	}
	user, err := h.Users.Update(requestContext(c), p.ID, params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// Delete removes the caller's own account and clears the session cookie.
func (h UserHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if string(p.ID) != c.Param("id") {
		failure(c, http.StatusForbidden, "You can only delete your own account")
		return
	}
	if err := h.Users.Delete(requestContext(c), p.ID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User has been deleted"})
}

// Listings returns the caller's own listings.
func (h UserHandler) Listings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if string(p.ID) != c.Param("id") {
		failure(c, http.StatusForbidden, "You can only view your own listings")
		return
	}
	listings, err := h.ListingRepo.ByOwner(requestContext(c), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListings(listings))
}

package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/app/dto"
	authservice "homeseek/internal/app/services/auth"
)

type AuthHTTP interface {
	Signup(c *gin.Context)
	Signin(c *gin.Context)
	Google(c *gin.Context)
	Signout(c *gin.Context)
}

type AuthHandler struct {
	Auth         *authservice.Service
	CookieMaxAge int
	CookieSecure bool
	Logger       *slog.Logger
}

func (h AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Missing username/email/password")
		return
	}
	result, err := h.Auth.Signup(requestContext(c), authservice.SignupParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.setSession(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    dto.MapUserProfile(result.User),
	})
}

func (h AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Missing email/password")
		return
	}
	result, err := h.Auth.Signin(requestContext(c), authservice.SigninParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.setSession(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": dto.MapUserProfile(result.User)})
}

func (h AuthHandler) Google(c *gin.Context) {
	var req dto.GoogleSigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Missing email")
		return
	}
	result, err := h.Auth.Google(requestContext(c), authservice.GoogleParams{
		Email: req.Email,
		Name:  req.Name,
		Photo: req.Photo,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.setSession(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": dto.MapUserProfile(result.User)})
}

func (h AuthHandler) Signout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signed out"})
}

func (h AuthHandler) setSession(c *gin.Context, token string) {
	maxAge := h.CookieMaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * 60 * 60
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", token, maxAge, "/", "", h.CookieSecure, true)
}

package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	domainuser "homeseek/internal/domain/user"
)

const principalContextKey = "homeseek.principal"

type principal struct {
	ID      domainuser.ID
	IsAdmin bool
}

// TokenVerifier resolves a raw credential to a user id.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// AuthMiddleware attaches the caller's identity when a valid credential is
// present. An invalid or absent credential leaves the request anonymous;
// endpoints that need identity reject later via requireAuth.
type AuthMiddleware struct {
	Tokens TokenVerifier
	Users  domainuser.Repository
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	raw := extractCredential(c)
	if raw == "" || m.Tokens == nil {
		c.Next()
		return
	}
	userID, err := m.Tokens.Verify(raw)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	p := principal{ID: domainuser.ID(userID)}
	if m.Users != nil {
		if user, err := m.Users.ByID(requestContext(c), p.ID); err == nil {
			p.IsAdmin = user.IsAdmin
		}
	}
	c.Set(principalContextKey, p)
	c.Next()
}

func extractCredential(c *gin.Context) string {
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		failure(c, http.StatusUnauthorized, "Unauthorized")
		return principal{}, false
	}
	return p, true
}

func requireAdmin(c *gin.Context) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if !p.IsAdmin {
		failure(c, http.StatusForbidden, "Admin only")
		return principal{}, false
	}
	return p, true
}

func requestContext(c *gin.Context) context.Context {
	return c.Request.Context()
}

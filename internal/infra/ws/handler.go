package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainuser "homeseek/internal/domain/user"
)

// TokenVerifier resolves a raw credential to a user id.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Handler upgrades authenticated requests into hub-managed connections.
type Handler struct {
	Hub    *Hub
	Tokens TokenVerifier

	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, tokens TokenVerifier, allowedOrigin string) *Handler {
	return &Handler{
		Hub:    hub,
		Tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Connect is the GET /api/chat/ws endpoint. The credential comes from the
// access_token cookie, a bearer header, or a token query parameter
// (browsers cannot set headers on websocket dials).
func (h *Handler) Connect(c *gin.Context) {
	raw := credentialFrom(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}
	userID, err := h.Tokens.Verify(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		return
	}

	client := newClient(h.Hub, conn, domainuser.ID(userID))
	h.Hub.register(client)
	// Everyone gets their personal notification room up front; an explicit
	// identify frame is an idempotent re-join.
	h.Hub.join(PersonalRoom(userID), client)

	go client.writePump()
	// The request context dies with the handler; the connection outlives it.
	go client.readPump(context.Background())
}

func credentialFrom(c *gin.Context) string {
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

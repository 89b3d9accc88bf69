package ginserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeseek/internal/infra/config"
	"homeseek/internal/infra/obs"
)

func TestDeadlineMiddlewareBoundsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(deadlineMiddleware(5 * time.Second))
	router.GET("/timed", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok, "request context must carry a deadline")
		assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timed", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeadlineMiddlewareSkipsWebsocketUpgrades(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(deadlineMiddleware(5 * time.Second))
	router.GET("/ws", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.False(t, ok, "long-lived connections manage their own deadlines")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServerCarriesHeaderTimeout(t *testing.T) {
	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{})
	assert.Equal(t, 10*time.Second, server.ReadHeaderTimeout)
}

package ginserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"homeseek/internal/infra/config"
	"homeseek/internal/infra/obs"
)

type Handlers struct {
	Auth       AuthHTTP
	User       UserHTTP
	Listing    ListingHTTP
	Chat       ChatHTTP
	Admin      AdminHTTP
	Price      PriceHTTP
	Newsletter NewsletterHTTP

	// ChatSocket upgrades GET /api/chat/ws.
	ChatSocket gin.HandlerFunc

	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.ClientOrigin)))
	router.Use(deadlineMiddleware(cfg.RequestTimeout))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	router.GET("/api/health", health.Health)

	api := router.Group("/api")
	if h.Auth != nil {
		api.POST("/auth/signup", h.Auth.Signup)
		api.POST("/auth/signin", h.Auth.Signin)
		api.POST("/auth/google", h.Auth.Google)
		api.POST("/auth/signout", h.Auth.Signout)
	}
	if h.User != nil {
		api.GET("/user/:id", h.User.Get)
		api.POST("/user/update/:id", h.User.Update)
		api.DELETE("/user/delete/:id", h.User.Delete)
		api.GET("/user/listings/:id", h.User.Listings)
	}
	if h.Listing != nil {
		api.POST("/listing/create", h.Listing.Create)
		api.POST("/listing/update/:id", h.Listing.Update)
		api.DELETE("/listing/delete/:id", h.Listing.Delete)
		api.GET("/listing/get/:id", h.Listing.Get)
		api.GET("/listing/get", h.Listing.Search)
		api.POST("/listing/upload", h.Listing.Upload)
	}
	if h.Chat != nil {
		chatGroup := api.Group("/chat")
		chatGroup.POST("/conversations", h.Chat.StartConversation)
		chatGroup.GET("/conversations", h.Chat.ListConversations)
		chatGroup.GET("/messages/:conversationId", h.Chat.ListMessages)
		chatGroup.POST("/messages", h.Chat.SendMessage)
		chatGroup.POST("/read", h.Chat.MarkRead)
		chatGroup.GET("/pending", h.Chat.Pending)
		if h.ChatSocket != nil {
			chatGroup.GET("/ws", h.ChatSocket)
		}
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.PATCH("/users/:id", h.Admin.UpdateUser)
		adminGroup.DELETE("/users/:id", h.Admin.DeleteUser)
		adminGroup.GET("/listings", h.Admin.ListListings)
		adminGroup.PATCH("/listings/:id", h.Admin.UpdateListing)
		adminGroup.DELETE("/listings/:id", h.Admin.DeleteListing)
	}
	if h.Price != nil {
		api.POST("/price/predict", h.Price.Predict)
	}
	if h.Newsletter != nil {
		api.POST("/newsletter", h.Newsletter.Subscribe)
	}

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// deadlineMiddleware bounds every request's context with the configured
// timeout so downstream store and upstream calls cannot hang a worker.
// Websocket upgrades are exempt: those connections are long-lived and manage
// their own deadlines.
func deadlineMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 || c.IsWebsocket() {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	origin = strings.TrimSpace(origin)
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = []string{origin}
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authservice "homeseek/internal/app/services/auth"
	chatservice "homeseek/internal/app/services/chat"
	"homeseek/internal/infra/broker/kafka"
	"homeseek/internal/infra/config"
	mongodb "homeseek/internal/infra/db/mongo"
	ginserver "homeseek/internal/infra/http/gin"
	"homeseek/internal/infra/obs"
	"homeseek/internal/infra/pricing"
	"homeseek/internal/infra/security"
	"homeseek/internal/infra/storage/s3"
	"homeseek/internal/infra/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	db, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(closeCtx)
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Error("index creation failed", "error", err)
		os.Exit(1)
	}

	users := mongodb.NewUserRepository(db.DB)
	listings := mongodb.NewListingRepository(db.DB)
	conversations := mongodb.NewConversationRepository(db.DB)
	messages := mongodb.NewMessageRepository(db.DB)
	newsletter := mongodb.NewNewsletterRepository(db.DB)

	tokens := security.TokenCodec{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	passwords := security.BcryptHasher{}

	auth := &authservice.Service{
		Users:     users,
		Passwords: passwords,
		Tokens:    tokens,
		Logger:    logger,
	}
	chat := &chatservice.Service{
		Conversations: conversations,
		Messages:      messages,
		Users:         users,
		Listings:      listings,
		Logger:        logger,
	}

	hub := ws.NewHub(chat, logger)
	var closers []func() error
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		closers = append(closers, producer.Close)
		relay := kafka.NewRelay(producer, hub, cfg.KafkaChatTopic, logger)
		hub.SetBus(relay)

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, relay, logger)
		if err != nil {
			logger.Error("kafka consumer init failed", "error", err)
			os.Exit(1)
		}
		closers = append(closers, consumer.Close)
		go func() {
			if err := consumer.Run(ctx, []string{cfg.KafkaChatTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("kafka consumer stopped", "error", err)
			}
		}()
		logger.Info("chat relay enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaChatTopic)
	}

	var photos s3.PhotoStore = s3.NoopPhotoStore{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Error("s3 init failed", "error", err)
			os.Exit(1)
		}
		photos = client
	} else {
		logger.Warn("S3_ENDPOINT not set, photo upload disabled")
	}

	predictor := &pricing.Predictor{
		Client:   &http.Client{Timeout: cfg.MLRequestTimeout},
		Endpoint: cfg.MLServiceURL,
		Logger:   logger,
	}

	handlers := ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Auth:         auth,
			CookieMaxAge: int(cfg.TokenTTL / time.Second),
			CookieSecure: cfg.Env == "prod" || cfg.Env == "production",
			Logger:       logger,
		},
		User: ginserver.UserHandler{
			Users:       users,
			ListingRepo: listings,
			Passwords:   passwords,
			Logger:      logger,
		},
		Listing: ginserver.ListingHandler{
			Listings: listings,
			Photos:   photos,
			Logger:   logger,
		},
		Chat: ginserver.ChatHandler{
			Chat:   chat,
			Logger: logger,
		},
		Admin: ginserver.AdminHandler{
			Users:    users,
			Listings: listings,
			Logger:   logger,
		},
		Price: ginserver.PriceHandler{
			Predictor: predictor,
			Logger:    logger,
		},
		Newsletter: ginserver.NewsletterHandler{
			Subscriptions: newsletter,
			Logger:        logger,
		},
		ChatSocket:     ws.NewHandler(hub, tokens, cfg.ClientOrigin).Connect,
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens, Users: users, Logger: logger}.Handle,
	}

	health := obs.HealthHandlers{
		Env:     cfg.Env,
		Started: time.Now(),
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(pingCtx)
		},
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, health, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Error("shutdown cleanup failed", "error", err)
			}
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

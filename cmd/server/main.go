package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/alerts"
	"github.com/sudo-init-do/coderr/internal/cache"
	"github.com/sudo-init-do/coderr/internal/config"
	"github.com/sudo-init-do/coderr/internal/db"
	"github.com/sudo-init-do/coderr/internal/logging"
	"github.com/sudo-init-do/coderr/internal/media"
	"github.com/sudo-init-do/coderr/internal/messaging"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/repository/memory"
	"github.com/sudo-init-do/coderr/internal/repository/postgres"
	"github.com/sudo-init-do/coderr/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	// Storage
	var store *repository.Store
	switch cfg.Storage {
	case "memory":
		store, err = memory.NewStore()
		if err != nil {
			logger.Fatal("memory store", zap.Error(err))
		}
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		pool, err := db.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		cleanup = append(cleanup, pool.Close)
		if err := db.EnsureSchema(ctx, pool, logger); err != nil {
			logger.Fatal("schema", zap.Error(err))
		}
		store = postgres.NewStore(pool)
		logger.Info("connected to postgres", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	}

	// Offer detail cache
	var offers repository.OfferRepository = store.Offers
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, offer detail cache disabled", zap.Error(err))
		} else {
			cleanup = append(cleanup, func() { _ = rdb.Close() })
			offers = cache.NewCachedOfferRepository(store.Offers, rdb, cfg.CacheTTL, logger)
			logger.Info("offer detail cache enabled", zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	// Notifications
	var notifier alerts.Notifier = alerts.Noop{}
	if cfg.Notifications == "asynq" {
		if cfg.RedisAddr == "" {
			logger.Fatal("NOTIFICATIONS=asynq requires REDIS_ADDR")
		}
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		client := asynq.NewClient(redisOpt)
		cleanup = append(cleanup, func() { _ = client.Close() })
		notifier = alerts.NewQueue(client, cfg.AppURL, cfg.PasswordResetExpiry, logger)

		if cfg.NotificationsProcessor {
			mailer, err := alerts.NewMailer(cfg)
			if err != nil {
				logger.Fatal("mailer", zap.Error(err))
			}
			processor := alerts.NewProcessor(redisOpt, mailer, logger)
			if err := processor.Start(); err != nil {
				logger.Fatal("notification processor", zap.Error(err))
			}
			cleanup = append(cleanup, processor.Shutdown)
		}
		logger.Info("notifications enabled", zap.Bool("processor", cfg.NotificationsProcessor))
	}

	// Media
	var files media.Store
	switch cfg.MediaBackend {
	case "gridfs":
		client, err := media.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatal("mongo", zap.Error(err))
		}
		cleanup = append(cleanup, func() { _ = client.Disconnect(context.Background()) })
		files, err = media.NewGridFSStore(client.Database(cfg.MongoDB))
		if err != nil {
			logger.Fatal("gridfs", zap.Error(err))
		}
	default:
		files, err = media.NewLocalStore(cfg.MediaDir)
		if err != nil {
			logger.Fatal("media dir", zap.Error(err))
		}
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, password reset links will not survive a restart")
	}

	e := server.New(server.Deps{
		Store:           store,
		Offers:          offers,
		Notifier:        notifier,
		Media:           files,
		Hub:             messaging.NewHub(store.Orders, logger),
		Logger:          logger,
		JWTSecret:       secret,
		ResetExpiry:     cfg.PasswordResetExpiry,
		AppURL:          cfg.AppURL,
		BootstrapSecret: cfg.StaffBootstrapSecret,
	})

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	} else {
		logger.Info("server shutdown complete")
	}
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("random secret: %v", err)
	}
	return []byte(hex.EncodeToString(b))
}

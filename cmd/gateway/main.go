package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allerview/portal-gateway/internal/api"
	"github.com/allerview/portal-gateway/internal/api/middleware"
	"github.com/allerview/portal-gateway/internal/core/service"
	"github.com/allerview/portal-gateway/internal/infrastructure/config"
	mongodb "github.com/allerview/portal-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/allerview/portal-gateway/internal/infrastructure/db/redis"
	"github.com/allerview/portal-gateway/internal/infrastructure/queue"
	"github.com/allerview/portal-gateway/internal/infrastructure/upstream"
	"github.com/allerview/portal-gateway/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.Session.CookieSecret == "" {
		log.Fatal().Msg("SESSION_COOKIE_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "portal-gateway",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Audit pipeline ---
	auditRepo := mongodb.NewAuditRepository(db)
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.Session.AuditWorkers, auditService, log)
	dispatcher.Start(ctx)

	// --- Session core ---
	credentialClient := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, log)
	tokenStore := redisdb.NewTokenStore(rdb, cfg.Session.TokenTTL)
	stateStore := redisdb.NewStateStore(rdb, cfg.Session.StateTTL)

	sessions := service.NewSessionService(
		credentialClient,
		tokenStore,
		stateStore,
		dispatcher,
		cfg.Upstream.ProviderLoginURL,
		cfg.Upstream.CallbackURL,
		log,
	)
	sessions.StartEviction(ctx, cfg.Session.TokenTTL)

	// --- HTTP ---
	e := api.NewRouter(sessions, db, rdb, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secret: cfg.Session.CookieSecret,
		TTL:    cfg.Session.TokenTTL,
		Secure: cfg.Env != "development",
	}, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal gateway started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchkit/boilerplate/internal/api"
	"github.com/launchkit/boilerplate/internal/core/service"
	"github.com/launchkit/boilerplate/internal/infrastructure/config"
	mongoinfra "github.com/launchkit/boilerplate/internal/infrastructure/db/mongo"
	redisinfra "github.com/launchkit/boilerplate/internal/infrastructure/db/redis"
	"github.com/launchkit/boilerplate/internal/infrastructure/identity"
	"github.com/launchkit/boilerplate/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	identityClient := identity.NewClient(identity.Config{
		BaseURL:        cfg.Identity.URL,
		AnonKey:        cfg.Identity.AnonKey,
		ServiceRoleKey: cfg.Identity.ServiceRoleKey,
	}, log)

	// --- Core services ---
	auditRepo := mongoinfra.NewAuditRepository(db)
	roleService := service.NewRoleService(identityClient, auditRepo, log)
	limiter := redisinfra.NewRateLimiter(rdb, cfg.SignInRateLimit)

	// --- HTTP ---
	e, err := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Identity: identityClient,
		Roles:    roleService,
		Limiter:  limiter,
		Mongo:    db,
		Redis:    rdb,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// @title        Identity & Access API
// @version      1.0
// @description  User accounts, roles, module access checks and bulk user updates.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/accesshub/identity-service/internal/api"
	"github.com/accesshub/identity-service/internal/api/handler"
	"github.com/accesshub/identity-service/internal/core/service"
	"github.com/accesshub/identity-service/internal/infrastructure/config"
	"github.com/accesshub/identity-service/internal/infrastructure/db/mongo"
	"github.com/accesshub/identity-service/internal/infrastructure/db/redis"
	"github.com/accesshub/identity-service/internal/infrastructure/queue"
	"github.com/accesshub/identity-service/internal/infrastructure/security"
	"github.com/accesshub/identity-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "identity-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "identity-service",
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Repositories and capabilities ---
	roleRepo := mongo.NewRoleRepository(db)
	userRepo := mongo.NewUserRepository(db)
	roleCache := redis.NewRoleCache(rdb, cfg.Redis.RoleCacheTTL)
	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// --- Audit trail ---
	auditService := service.NewAuditService(mongo.NewAuditRepository(db), logger.Component("audit_service"))
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, logger.Component("audit_dispatcher"))
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Use cases ---
	roles := service.NewRoleService(roleRepo, userRepo, roleCache, dispatcher, logger.Component("role_service"))
	users := service.NewUserService(userRepo, roleRepo, hasher, tokens, dispatcher, logger.Component("user_service"))
	access := service.NewAccessEvaluator(userRepo, roleRepo, roleCache, logger.Component("access_evaluator"))
	bulk := service.NewBulkCoordinator(userRepo, roleRepo, hasher, dispatcher, cfg.BulkConcurrency, logger.Component("bulk_coordinator"))

	e := api.NewRouter(api.Deps{
		Roles:  roles,
		Users:  users,
		Access: access,
		Bulk:   bulk,
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		Logger: logger.Component("http"),
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			dispatcher.Close()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// Drain queued audit events before the store connection closes.
	dispatcher.Close()
	log.Info().Msg("shutdown complete")
	return nil
}

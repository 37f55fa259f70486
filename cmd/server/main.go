package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/submission-service/internal/app"
	"github.com/noah-isme/submission-service/internal/auth"
	"github.com/noah-isme/submission-service/internal/customers"
	"github.com/noah-isme/submission-service/internal/observability"
	"github.com/noah-isme/submission-service/internal/platform/cache"
	"github.com/noah-isme/submission-service/internal/platform/db"
	"github.com/noah-isme/submission-service/internal/platform/httpx"
	"github.com/noah-isme/submission-service/internal/rbac"
	"github.com/noah-isme/submission-service/internal/roles"
	"github.com/noah-isme/submission-service/internal/submissions"
	"github.com/noah-isme/submission-service/internal/users"
	"github.com/noah-isme/submission-service/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PoolOptions())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var rolesCache *roles.Cache
	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Warn("redis unavailable, role cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		rolesCache = roles.NewCache(redisClient, cfg.RolesCacheTTL)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  []byte(cfg.JWTAccessSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.JWTAccessExpiry.Value,
		RefreshTTL:    cfg.JWTRefreshExpiry.Value,
	})
	if err != nil {
		logger.Error("init token service", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	responder := httpx.Responder{Logger: logger, Debug: cfg.IsDevelopment()}
	gate := rbac.Gate{Verifier: tokens, Responder: responder, Logger: logger}

	rolesService := roles.NewService(roles.NewRepository(dbpool), rolesCache, logger)
	authService := auth.NewService(auth.Deps{
		Users:     users.NewRepository(dbpool),
		Roles:     rolesService,
		Ledger:    auth.NewLedger(dbpool),
		Hasher:    auth.NewPasswordHasher(cfg.BcryptCost),
		Tokens:    tokens,
		Events:    metrics,
		Logger:    logger,
		ExpiresIn: cfg.JWTAccessExpiry.String(),
	})
	authHandler := auth.NewHandler(logger, authService, gate, responder)

	customerService := customers.NewService(customers.NewRepository(dbpool))
	customerHandler := customers.NewHandler(logger, customerService, gate, responder)

	submissionService := submissions.NewService(submissions.NewRepository(dbpool))
	submissionHandler := submissions.NewHandler(logger, submissionService, gate, responder)

	inspector := asynq.NewInspector(cfg.RedisOptions().AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Gate:              gate,
		AuthHandler:       authHandler,
		CustomersHandler:  customerHandler,
		SubmissionHandler: submissionHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

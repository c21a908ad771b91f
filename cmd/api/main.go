package main

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/brightsites/leadflow/internal/api/router"
	appconfig "github.com/brightsites/leadflow/internal/config"
	"github.com/brightsites/leadflow/internal/crypto"
	"github.com/brightsites/leadflow/internal/hubspot"
	"github.com/brightsites/leadflow/internal/leads"
	"github.com/brightsites/leadflow/internal/observability/metrics"
	"github.com/brightsites/leadflow/internal/ratelimit"
	"github.com/brightsites/leadflow/internal/secrets"
	"github.com/brightsites/leadflow/internal/security"
	"github.com/brightsites/leadflow/internal/submission"
	"github.com/brightsites/leadflow/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadflow API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Counter store: redis when configured, single-process memory otherwise.
	var counterStore ratelimit.CounterStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		counterStore = ratelimit.NewRedisStore(redis.NewClient(opts), cfg.RateLimitWindow)
		logger.Info("rate limit counters backed by redis", "addr", cfg.RedisAddr)
	} else {
		counterStore = ratelimit.NewMemoryStore(cfg.RateLimitWindow)
		logger.Warn("rate limit counters are in-memory; run redis for multi-instance deployments")
	}
	limiter := ratelimit.NewLimiter(counterStore, cfg.RateLimitMax, logger)

	// Tenant secret envelopes (optional; requires master key and database).
	var (
		secretManager *secrets.Manager
		secretStore   *secrets.Store
		secretHandler *secrets.Handler
	)
	if cfg.MasterKey != "" {
		masterKey, err := base64.StdEncoding.DecodeString(cfg.MasterKey)
		if err != nil {
			logger.Error("SECRETS_MASTER_KEY is not valid base64", "error", err)
			os.Exit(1)
		}
		secretManager, err = secrets.NewManager(crypto.Phase(cfg.CryptoPhase), masterKey)
		if err != nil {
			logger.Error("failed to init secret manager", "error", err, "phase", cfg.CryptoPhase)
			os.Exit(1)
		}
		logger.Info("tenant secret sealing enabled", "phase", cfg.CryptoPhase)
	}
	if secretManager != nil && cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		secretStore = secrets.NewStore(pool)
		secretHandler = secrets.NewHandler(secretManager, secretStore, logger)
	}

	tokens := secrets.NewTokenSource(secretStore, secretManager, cfg.HubSpotToken, logger)

	repo := leads.NewRESTRepository(cfg.LeadStoreURL, cfg.LeadStoreServiceKey, logger)
	syncer := hubspot.NewSyncer(
		hubspot.NewClient(cfg.HubSpotBaseURL, tokens, logger),
		logger,
		hubspot.WithRetryPolicy(cfg.HubSpotMaxRetries, cfg.HubSpotRetryBase, cfg.HubSpotRetryMaxDelay),
	)

	pipelineMetrics := metrics.NewPipelineMetrics(nil)

	svc := submission.NewService(submission.Config{
		Validator:       security.NewValidator(logger),
		Limiter:         limiter,
		Repo:            repo,
		Syncer:          syncer,
		Metrics:         pipelineMetrics,
		Logger:          logger,
		SiteHost:        cfg.SiteHost,
		HoneypotEnabled: cfg.HoneypotEnabled,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		SubmissionHandler:  submission.NewHandler(svc, logger),
		SecretsHandler:     secretHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSOrigins,
		GuardRate:          cfg.HTTPGuardRate,
		GuardBurst:         cfg.HTTPGuardBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// Command ingress-api serves the HTTP surface: message ingress, knowledge
// uploads, agent CRUD, and the admin DLQ console.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiekoher/agentflow/internal/auth"
	"github.com/kiekoher/agentflow/internal/blob"
	"github.com/kiekoher/agentflow/internal/config"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/httpapi"
	"github.com/kiekoher/agentflow/internal/quota"
	"github.com/kiekoher/agentflow/internal/stream"
	"github.com/kiekoher/agentflow/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	streamClient := stream.NewClient(rdb)

	gormDB, err := db.Open(cfg.PostgresDSN)
	if err != nil {
		logger.Error("db open failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}
	store := db.NewStore(gormDB)
	agents := db.NewGormRepo[db.AgentConfig, string](gormDB)

	blobClient, err := blob.New(context.Background(), blob.Config{
		Endpoint:  cfg.BlobEndpoint,
		Region:    cfg.BlobRegion,
		Bucket:    cfg.BlobBucket,
		AccessKey: cfg.BlobAccessKey,
		SecretKey: cfg.BlobSecretKey,
	})
	if err != nil {
		logger.Error("blob client init failed", "error", err)
		os.Exit(1)
	}

	verifier := auth.NewVerifier(cfg.JWTSecret)
	quotaChecker := quota.NewChecker(store, cfg.RateLimitPerMinute)
	registry := metrics.New()

	server := &httpapi.Server{
		Stream:     streamClient,
		Store:      store,
		Agents:     agents,
		Blob:       blobClient,
		Quota:      quotaChecker,
		Verifier:   verifier,
		Metrics:    registry,
		Logger:     logger,
		CORSOrigin: firstOrStar(cfg.CORSOrigins),
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.Routes()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ingress api starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}
}

func firstOrStar(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return origins[0]
}

// Command embedding-worker consumes events:new_document, chunks and embeds
// each uploaded document, and persists the result to Postgres and Qdrant.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiekoher/agentflow/internal/blob"
	"github.com/kiekoher/agentflow/internal/chunker"
	"github.com/kiekoher/agentflow/internal/config"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/embedding"
	"github.com/kiekoher/agentflow/internal/modelclient/httpmodel"
	"github.com/kiekoher/agentflow/internal/retrypolicy"
	"github.com/kiekoher/agentflow/internal/stream"
	"github.com/kiekoher/agentflow/internal/vectorstore"
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
	dlqSink := stream.NewSink(streamClient)

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

	chunks, err := chunker.New()
	if err != nil {
		logger.Error("chunker init failed", "error", err)
		os.Exit(1)
	}

	vectors, err := vectorstore.New(cfg.QdrantAddr, cfg.QdrantCollection)
	if err != nil {
		logger.Error("vectorstore init failed", "error", err)
		os.Exit(1)
	}
	defer vectors.Close()

	initCtx, cancel := context.WithCancel(context.Background())
	if err := vectors.EnsureCollection(initCtx, cfg.EmbeddingDims); err != nil {
		cancel()
		logger.Error("ensure collection failed", "error", err)
		os.Exit(1)
	}
	cancel()

	embedder := httpmodel.NewEmbedClient(cfg.EmbeddingModelURL, cfg.EmbeddingModelKey)

	handler := &embedding.Handler{
		Blob:     blobClient,
		Store:    store,
		Chunker:  chunks,
		Embedder: embedder,
		Vectors:  vectors,
		Logger:   logger,
	}

	hostname, _ := os.Hostname()
	runner := stream.NewRunner(streamClient, dlqSink, stream.RunnerConfig{
		StreamName:     "events:new_document",
		Group:          "group:embedding-worker",
		Consumer:       "embedding-" + hostname,
		ServiceName:    "embedding-worker",
		HealthbeatPath: cfg.HealthbeatDir + "/embedding-worker",
		Retry:          retrypolicy.Embedding,
		Logger:         logger,
	}, handler.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("embedding worker starting")
	if err := runner.Run(ctx); err != nil {
		logger.Error("runner stopped with error", "error", err)
		os.Exit(1)
	}
}

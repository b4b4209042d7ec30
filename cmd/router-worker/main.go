// Command router-worker consumes events:transcribed_message, runs the RAG
// chat pipeline, and republishes the reply onto events:message_out.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiekoher/agentflow/internal/config"
	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/internal/modelclient/httpmodel"
	"github.com/kiekoher/agentflow/internal/retrypolicy"
	"github.com/kiekoher/agentflow/internal/router"
	"github.com/kiekoher/agentflow/internal/routerworker"
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

	vectors, err := vectorstore.New(cfg.QdrantAddr, cfg.QdrantCollection)
	if err != nil {
		logger.Error("vectorstore init failed", "error", err)
		os.Exit(1)
	}
	defer vectors.Close()

	rt := &router.Router{
		Analysis:   httpmodel.New(cfg.AnalysisModelURL, cfg.AnalysisModelKey),
		Extraction: httpmodel.New(cfg.ExtractionModelURL, cfg.ExtractionModelKey),
		Chat:       httpmodel.New(cfg.ChatModelURL, cfg.ChatModelKey),
		Embedding:  httpmodel.NewEmbedClient(cfg.EmbeddingModelURL, cfg.EmbeddingModelKey),
		Vectors:    vectors,
		Store:      store,
		Opts: router.Options{
			TopK:            cfg.RAGTopK,
			ScoreThreshold:  float32(cfg.RAGScoreThreshold),
			MaxHistoryTurns: cfg.MaxHistoryTurns,
		},
		Logger: logger,
	}

	handler := &routerworker.Handler{
		Stream: streamClient,
		Store:  store,
		Router: rt,
		Logger: logger,
	}

	hostname, _ := os.Hostname()
	runner := stream.NewRunner(streamClient, dlqSink, stream.RunnerConfig{
		StreamName:     "events:transcribed_message",
		Group:          "group:main-api",
		Consumer:       "router-" + hostname,
		ServiceName:    "router-worker",
		HealthbeatPath: cfg.HealthbeatDir + "/router-worker",
		Retry:          retrypolicy.Default,
		Logger:         logger,
	}, handler.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("router worker starting")
	if err := runner.Run(ctx); err != nil {
		logger.Error("runner stopped with error", "error", err)
		os.Exit(1)
	}
}

// Command transcription-worker consumes events:new_message, converts any
// attached voice note to text, and republishes onto events:transcribed_message.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiekoher/agentflow/internal/blob"
	"github.com/kiekoher/agentflow/internal/config"
	"github.com/kiekoher/agentflow/internal/retrypolicy"
	"github.com/kiekoher/agentflow/internal/stream"
	"github.com/kiekoher/agentflow/internal/transcribe"
	"github.com/kiekoher/agentflow/internal/transcription"
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

	handler := &transcription.Handler{
		Stream:      streamClient,
		Blob:        blobClient,
		Transcriber: transcribe.NewHTTPTranscriber(cfg.ASRModelURL, ""),
		FFmpegPath:  cfg.FFmpegPath,
		Language:    cfg.ASRLanguage,
		Logger:      logger,
	}

	hostname, _ := os.Hostname()
	runner := stream.NewRunner(streamClient, dlqSink, stream.RunnerConfig{
		StreamName:     "events:new_message",
		Group:          "group:transcription-workers",
		Consumer:       "transcription-" + hostname,
		ServiceName:    "transcription-worker",
		HealthbeatPath: cfg.HealthbeatDir + "/transcription-worker",
		Retry:          retrypolicy.Default,
		Logger:         logger,
	}, handler.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("transcription worker starting")
	if err := runner.Run(ctx); err != nil {
		logger.Error("runner stopped with error", "error", err)
		os.Exit(1)
	}
}

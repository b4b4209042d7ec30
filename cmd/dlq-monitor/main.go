// Command dlq-monitor drains the bounded dead-letter stream into the
// unbounded, operator-visible persistent-failures list.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiekoher/agentflow/internal/config"
	"github.com/kiekoher/agentflow/internal/retrypolicy"
	"github.com/kiekoher/agentflow/internal/stream"
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
	monitor := stream.NewMonitor(streamClient, logger)

	hostname, _ := os.Hostname()
	runner := stream.NewRunner(streamClient, dlqSink, stream.RunnerConfig{
		StreamName:     stream.DeadLetterStream,
		Group:          "group:dlq-monitor",
		Consumer:       "dlq-monitor-" + hostname,
		ServiceName:    "dlq-monitor",
		HealthbeatPath: cfg.HealthbeatDir + "/dlq-monitor",
		Retry:          retrypolicy.Default,
		Logger:         logger,
	}, monitor.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("dlq monitor starting")
	if err := runner.Run(ctx); err != nil {
		logger.Error("runner stopped with error", "error", err)
		os.Exit(1)
	}
}

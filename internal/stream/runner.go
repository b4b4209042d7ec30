package stream

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/kiekoher/agentflow/internal/retrypolicy"
)

// Handler processes one stream entry. Wrap a returned error with
// apperrors.Terminal to route straight to the dead-letter queue instead of
// spending the retry budget on it.
type Handler func(ctx context.Context, entry Entry) error

// DLQPublisher appends a failed entry's fields, augmented with failure
// metadata, onto the shared dead-letter stream.
type DLQPublisher interface {
	PublishFailure(ctx context.Context, service string, entry Entry, cause error) error
}

// RunnerConfig configures one Stage Runner instance.
type RunnerConfig struct {
	StreamName     string
	Group          string
	Consumer       string
	// ServiceName is the stable identity recorded as error_service on DLQ
	// entries, e.g. "transcription-worker". Unlike Consumer (which is
	// per-instance, e.g. host-qualified), this stays fixed across replicas
	// so operators can filter the dead-letter queue by service.
	ServiceName    string
	BatchSize      int64
	BlockFor       time.Duration
	HealthbeatPath string
	Retry          retrypolicy.Policy
	Logger         *slog.Logger
}

// Runner is the consumer-group loop shared by every worker: touch a
// healthbeat file, block-read new entries, run the handler under the retry
// policy, and either ack on success or DLQ-then-ack on terminal failure.
type Runner struct {
	client *Client
	dlq    DLQPublisher
	cfg    RunnerConfig
	handle Handler
}

func NewRunner(client *Client, dlq DLQPublisher, cfg RunnerConfig, handle Handler) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockFor <= 0 {
		cfg.BlockFor = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{client: client, dlq: dlq, cfg: cfg, handle: handle}
}

// Run blocks until ctx is cancelled, first ensuring the consumer group
// exists. A non-BUSYGROUP error from that setup step is fatal.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.client.EnsureGroup(ctx, r.cfg.StreamName, r.cfg.Group); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			r.cfg.Logger.Info("runner: stopping", "stream", r.cfg.StreamName, "consumer", r.cfg.Consumer)
			return nil
		default:
		}

		r.touchHealthbeat()

		entries, err := r.client.ReadGroup(ctx, r.cfg.StreamName, r.cfg.Group, r.cfg.Consumer, r.cfg.BatchSize, r.cfg.BlockFor)
		if err != nil {
			r.cfg.Logger.Error("runner: read failed, backing off", "stream", r.cfg.StreamName, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}
		if len(entries) == 0 {
			continue
		}

		for _, entry := range entries {
			r.process(ctx, entry)
		}
	}
}

func (r *Runner) process(ctx context.Context, entry Entry) {
	err := retrypolicy.Run(ctx, r.cfg.Retry, func(ctx context.Context) error {
		return r.handle(ctx, entry)
	})

	if err != nil {
		r.cfg.Logger.Error("runner: handler failed terminally", "stream", r.cfg.StreamName, "entry_id", entry.ID, "error", err)
		if dlqErr := r.dlq.PublishFailure(ctx, r.cfg.ServiceName, entry, err); dlqErr != nil {
			r.cfg.Logger.Error("runner: dlq publish failed", "entry_id", entry.ID, "error", dlqErr)
		}
	}

	if ackErr := r.client.Ack(ctx, r.cfg.StreamName, r.cfg.Group, entry.ID); ackErr != nil {
		r.cfg.Logger.Error("runner: ack failed", "entry_id", entry.ID, "error", ackErr)
	}
}

func (r *Runner) touchHealthbeat() {
	if r.cfg.HealthbeatPath == "" {
		return
	}
	now := time.Now()
	if err := os.Chtimes(r.cfg.HealthbeatPath, now, now); err != nil {
		if f, createErr := os.Create(r.cfg.HealthbeatPath); createErr == nil {
			f.Close()
		}
	}
}

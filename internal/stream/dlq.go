package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const (
	// DeadLetterStream is the bounded transport stream every Stage Runner
	// publishes onto after exhausting its retry budget.
	DeadLetterStream = "events:dead_letter_queue"
	// PersistentFailuresKey is the unbounded operator-visible list the DLQ
	// Monitor drains the dead-letter stream into.
	PersistentFailuresKey = "dlq:persistent_failures"
)

// Sink appends terminal failures to the shared dead-letter stream.
type Sink struct {
	client *Client
}

func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

// PublishFailure augments entry's fields with error metadata and appends
// them to DeadLetterStream.
func (s *Sink) PublishFailure(ctx context.Context, service string, entry Entry, cause error) error {
	fields := make(map[string]string, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		fields[k] = v
	}
	fields["error_service"] = service
	fields["error_timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
	fields["error_details"] = cause.Error()

	if _, err := s.client.Publish(ctx, DeadLetterStream, fields); err != nil {
		return fmt.Errorf("dlq: publish: %w", err)
	}
	return nil
}

// PersistentEntry is the JSON shape left-pushed onto PersistentFailuresKey.
type PersistentEntry struct {
	MessageID string            `json:"message_id"`
	Data      map[string]string `json:"data"`
}

// Monitor is the DLQ Monitor's handler: it moves entries from the bounded
// dead-letter stream to the unbounded persistent_failures list and emits a
// critical log for operator visibility. It is itself driven by a Runner
// against DeadLetterStream / group:dlq-monitor.
type Monitor struct {
	client *Client
	logger *slog.Logger
}

func NewMonitor(client *Client, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{client: client, logger: logger}
}

func (m *Monitor) Handle(ctx context.Context, entry Entry) error {
	payload := PersistentEntry{MessageID: entry.ID, Data: entry.Fields}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dlq monitor: marshal: %w", err)
	}
	if err := m.client.ListPush(ctx, PersistentFailuresKey, string(data)); err != nil {
		return err
	}
	m.logger.Error("dlq: entry persisted",
		"entry_id", entry.ID,
		"error_service", entry.Fields["error_service"],
		"error_details", entry.Fields["error_details"],
	)
	return nil
}

// Package stream wraps Redis Streams as the pipeline's durable transport:
// consumer-group delivery for the processing stages, plus the bounded
// stream / unbounded list pairing used by the dead-letter queue.
package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxLenApprox bounds every stream with an approximate trim so Redis never
// grows a stream unboundedly; the dead-letter list is the durable record.
const MaxLenApprox = 10000

type Client struct {
	rdb *redis.Client
}

func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// EnsureGroup creates group on streamName starting at id "0", treating
// BUSYGROUP (group already exists) as success so startup is idempotent.
func (c *Client) EnsureGroup(ctx context.Context, streamName, group string) error {
	err := c.rdb.XGroupCreateMkStream(ctx, streamName, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("stream: create group %s/%s: %w", streamName, group, err)
	}
	return nil
}

// Publish appends fields to streamName, trimming approximately to MaxLenApprox.
func (c *Client) Publish(ctx context.Context, streamName string, fields map[string]string) (string, error) {
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	id, err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		MaxLen: MaxLenApprox,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("stream: publish %s: %w", streamName, err)
	}
	return id, nil
}

// Entry is one delivered stream record.
type Entry struct {
	ID     string
	Fields map[string]string
}

// ReadGroup blocks up to block waiting for new (">" ) entries for consumer
// within group on streamName, returning nil, nil on a harmless timeout.
func (c *Client) ReadGroup(ctx context.Context, streamName, group, consumer string, count int64, block time.Duration) ([]Entry, error) {
	res, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{streamName, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stream: read group %s/%s: %w", streamName, group, err)
	}

	var entries []Entry
	for _, s := range res {
		for _, msg := range s.Messages {
			entries = append(entries, Entry{ID: msg.ID, Fields: stringify(msg.Values)})
		}
	}
	return entries, nil
}

// Ack acknowledges id on streamName/group. Re-acking an already-acked id is
// a harmless no-op as far as the caller is concerned.
func (c *Client) Ack(ctx context.Context, streamName, group, id string) error {
	if err := c.rdb.XAck(ctx, streamName, group, id).Err(); err != nil {
		return fmt.Errorf("stream: ack %s/%s/%s: %w", streamName, group, id, err)
	}
	return nil
}

func stringify(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// ListPush left-pushes value onto a durable, unbounded list.
func (c *Client) ListPush(ctx context.Context, key, value string) error {
	if err := c.rdb.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("stream: lpush %s: %w", key, err)
	}
	return nil
}

// ListAll returns every entry currently in the list, in list order.
func (c *Client) ListAll(ctx context.Context, key string) ([]string, error) {
	vals, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("stream: lrange %s: %w", key, err)
	}
	return vals, nil
}

// ListRemoveOne removes exactly one occurrence of value, returning the
// count actually removed (0 or 1).
func (c *Client) ListRemoveOne(ctx context.Context, key, value string) (int64, error) {
	n, err := c.rdb.LRem(ctx, key, 1, value).Result()
	if err != nil {
		return 0, fmt.Errorf("stream: lrem %s: %w", key, err)
	}
	return n, nil
}

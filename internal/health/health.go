// Package health runs the dependency liveness checks behind /health/deep.
package health

import (
	"context"
	"time"
)

// Pinger is implemented by any dependency whose liveness the deep health
// check should verify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain ping function to the Pinger interface.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deep runs every pinger with a bounded timeout, returning the first
// failure encountered.
func Deep(ctx context.Context, pingers ...Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	for _, p := range pingers {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

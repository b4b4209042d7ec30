// Package retrypolicy implements the pipeline's full-jitter exponential
// backoff, shaped after pkg/fn's Retry but with the exact schedule the
// Stage Runner requires: when attempt k (1-indexed) fails, the delay before
// attempt k+1 is random in [0, min(cap, base*2^(k-1))].
package retrypolicy

import (
	"context"
	"math/rand"
	"time"

	"github.com/kiekoher/agentflow/internal/apperrors"
)

type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
}

var (
	Default   = Policy{MaxAttempts: 4, Base: time.Second, Cap: 10 * time.Second}
	Embedding = Policy{MaxAttempts: 5, Base: time.Second, Cap: 30 * time.Second}
	Publish   = Policy{MaxAttempts: 4, Base: time.Second, Cap: 10 * time.Second}
)

// Delay returns the full-jitter backoff to wait after attempt (1-indexed)
// fails, before the next attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	ceiling := p.Base * time.Duration(uint64(1)<<uint(attempt-1))
	if ceiling <= 0 || ceiling > p.Cap {
		ceiling = p.Cap
	}
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(ceiling) + 1))
}

// Run invokes f up to p.MaxAttempts times. An apperrors.IsTerminal error
// short-circuits immediately without spending the rest of the budget.
func Run(ctx context.Context, p Policy, f func(context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p = Default
	}
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = f(ctx)
		if err == nil {
			return nil
		}
		if apperrors.IsTerminal(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}
	return err
}

// RunValue is Run for functions that also produce a value on success.
func RunValue[T any](ctx context.Context, p Policy, f func(context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts <= 0 {
		p = Default
	}
	var result T
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err = f(ctx)
		if err == nil {
			return result, nil
		}
		if apperrors.IsTerminal(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}
	return zero, err
}

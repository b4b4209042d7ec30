package retrypolicy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiekoher/agentflow/internal/apperrors"
)

func TestDelayNeverExceedsCap(t *testing.T) {
	p := Policy{MaxAttempts: 5, Base: time.Second, Cap: 3 * time.Second}
	for attempt := 1; attempt <= 10; attempt++ {
		d := p.Delay(attempt)
		if d > p.Cap {
			t.Fatalf("attempt %d: delay %v exceeds cap %v", attempt, d, p.Cap)
		}
		if d < 0 {
			t.Fatalf("attempt %d: negative delay %v", attempt, d)
		}
	}
}

func TestRunSucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Default, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	p := Policy{MaxAttempts: 3, Base: time.Millisecond, Cap: time.Millisecond}
	calls := 0
	err := Run(context.Background(), p, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRunStopsOnTerminalError(t *testing.T) {
	p := Policy{MaxAttempts: 5, Base: time.Millisecond, Cap: time.Millisecond}
	calls := 0
	sentinel := errors.New("bad input")
	err := Run(context.Background(), p, func(context.Context) error {
		calls++
		return apperrors.Terminal(sentinel)
	})
	if !apperrors.IsTerminal(err) {
		t.Fatal("expected terminal error to propagate")
	}
	if calls != 1 {
		t.Fatalf("expected terminal error to short-circuit after 1 call, got %d", calls)
	}
}

func TestRunValueReturnsResultOnSuccess(t *testing.T) {
	result, err := RunValue(context.Background(), Default, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Fatalf("expected 42, got %d", result)
	}
}

func TestRunExhaustsBudgetOnPersistentError(t *testing.T) {
	p := Policy{MaxAttempts: 3, Base: time.Millisecond, Cap: time.Millisecond}
	calls := 0
	persistent := errors.New("still failing")
	err := Run(context.Background(), p, func(context.Context) error {
		calls++
		return persistent
	})
	if !errors.Is(err, persistent) {
		t.Fatalf("expected persistent error, got %v", err)
	}
	if calls != p.MaxAttempts {
		t.Fatalf("expected %d calls, got %d", p.MaxAttempts, calls)
	}
}

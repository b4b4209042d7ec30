// Package quota enforces the two independent gates on message ingress: a
// per-user credit ledger and a sliding-window request rate limit, reusing
// pkg/resilience's token-bucket limiter per (user, source IP) pair.
package quota

import (
	"context"
	"sync"

	"github.com/kiekoher/agentflow/internal/db"
	"github.com/kiekoher/agentflow/pkg/resilience"
)

type Checker struct {
	store      *db.Store
	limitersMu sync.Mutex
	limiters   map[string]*resilience.Limiter
	ratePerSec float64
	burst      int
}

func NewChecker(store *db.Store, ratePerMinute int) *Checker {
	if ratePerMinute <= 0 {
		ratePerMinute = 60
	}
	return &Checker{
		store:      store,
		limiters:   make(map[string]*resilience.Limiter),
		ratePerSec: float64(ratePerMinute) / 60.0,
		burst:      ratePerMinute,
	}
}

// SpendCredit atomically decrements the caller's balance, reporting whether
// a credit was available. It is called before the envelope is published and
// is never rolled back if publish subsequently fails.
func (c *Checker) SpendCredit(ctx context.Context, userID string) (bool, error) {
	return c.store.DecrementCredit(ctx, userID)
}

// Allow checks the sliding-window rate limit keyed by (user_id, source_ip).
func (c *Checker) Allow(userID, sourceIP string) bool {
	key := userID + "|" + sourceIP
	c.limitersMu.Lock()
	l, ok := c.limiters[key]
	if !ok {
		l = resilience.NewLimiter(resilience.LimiterOpts{Rate: c.ratePerSec, Burst: c.burst})
		c.limiters[key] = l
	}
	c.limitersMu.Unlock()
	return l.Allow()
}

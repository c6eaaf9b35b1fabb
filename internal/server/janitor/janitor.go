// Package janitor implements the periodic expiry sweep: on a fixed cadence
// it deletes rows whose expiry timestamp has passed, one delete per
// collection, without coordinating with the rest of the server.
//
// Exactly one janitor runs per process. If several process instances ever
// run concurrently, redundant deletes are idempotent and harmless, so no
// distributed locking is used.
package janitor

import (
	"context"
	"time"

	"github.com/echosphere/echosphere/internal/logging"
)

// ExpiryStore is one collection of rows with an expiry timestamp.
// DeleteExpired removes every row expiring before now and returns the count.
type ExpiryStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Target pairs a store with a name for logging.
type Target struct {
	Name  string
	Store ExpiryStore
}

// Janitor periodically sweeps its targets. Construct with New and start with
// Run; it stops when the context is cancelled.
type Janitor struct {
	interval time.Duration
	targets  []Target
	log      logging.Logger
	now      func() time.Time
}

// New returns a janitor sweeping targets every interval.
func New(interval time.Duration, log logging.Logger, targets ...Target) *Janitor {
	return &Janitor{
		interval: interval,
		targets:  targets,
		log:      log.With("module", "janitor"),
		now:      time.Now,
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled. A failing
// target never stops the schedule and never affects the other targets in
// the same tick.
func (j *Janitor) Run(ctx context.Context) {
	j.log.Info(ctx, "starting janitor", "interval", j.interval.String())

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info(ctx, "stopping janitor")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over every target. Failures are logged per target and
// isolated: a broken collection never blocks the remaining deletions.
func (j *Janitor) Sweep(ctx context.Context) {
	now := j.now()
	for _, t := range j.targets {
		n, err := t.Store.DeleteExpired(ctx, now)
		if err != nil {
			j.log.Error(ctx, "expiry sweep failed", "target", t.Name, "error", err)
			continue
		}
		if n > 0 {
			j.log.Info(ctx, "deleted expired rows", "target", t.Name, "count", n)
		}
	}
}

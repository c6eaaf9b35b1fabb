package janitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/echosphere/echosphere/internal/logging"
	"github.com/stretchr/testify/assert"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeStore holds rows keyed by expiry time.
type fakeStore struct {
	mu    sync.Mutex
	rows  []time.Time
	err   error
	calls int
}

func (s *fakeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	var kept []time.Time
	var deleted int64
	for _, exp := range s.rows {
		if exp.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, exp)
	}
	s.rows = kept
	return deleted, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSweep_Idempotent(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	store := &fakeStore{rows: []time.Time{past, past, future}}

	j := New(time.Hour, testLogger(), Target{Name: "pins", Store: store})
	ctx := context.Background()

	j.Sweep(ctx)
	assert.Len(t, store.rows, 1, "expired rows removed, live row kept")

	// Second sweep with no new data deletes nothing.
	j.Sweep(ctx)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, 2, store.count())
}

func TestSweep_IndependentFailure(t *testing.T) {
	broken := &fakeStore{err: errors.New("store unreachable")}
	healthy := &fakeStore{rows: []time.Time{time.Now().Add(-time.Minute)}}

	j := New(time.Hour, testLogger(),
		Target{Name: "pins", Store: broken},
		Target{Name: "verifications", Store: healthy},
	)

	// Must not panic, and the healthy target still runs in the same tick.
	j.Sweep(context.Background())

	assert.Equal(t, 1, broken.count())
	assert.Equal(t, 1, healthy.count())
	assert.Empty(t, healthy.rows)
}

func TestRun_TicksAndStops(t *testing.T) {
	store := &fakeStore{}
	j := New(10*time.Millisecond, testLogger(), Target{Name: "pins", Store: store})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, store.count(), 2, "janitor must keep ticking")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on cancellation")
	}
}

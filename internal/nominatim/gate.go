package nominatim

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// intervalGate enforces a minimum spacing between calls. Each caller
// reserves the next available slot under the lock and then waits for it
// outside the lock, so concurrent callers are serialized one interval
// apart.
type intervalGate struct {
	clock    clockwork.Clock
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func newIntervalGate(clock clockwork.Clock, interval time.Duration) *intervalGate {
	return &intervalGate{clock: clock, interval: interval}
}

func (g *intervalGate) wait(ctx context.Context) error {
	g.mu.Lock()
	now := g.clock.Now()
	slot := g.next
	if slot.Before(now) {
		slot = now
	}
	g.next = slot.Add(g.interval)
	g.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.clock.After(delay):
		return nil
	}
}

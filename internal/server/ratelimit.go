package server

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// CooldownLimiter allows at most one request per client identifier within
// a fixed cooldown window.
type CooldownLimiter struct {
	mu          sync.Mutex
	cooldown    time.Duration
	lastRequest map[string]time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewCooldownLimiter creates a limiter with the given cooldown window.
func NewCooldownLimiter(cooldown time.Duration) *CooldownLimiter {
	return &CooldownLimiter{
		cooldown:    cooldown,
		lastRequest: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Check allows the request if no prior entry exists or the cooldown has
// elapsed, and records the current timestamp. The timestamp is written
// before any validation runs, so requests that later fail still consume
// the window. Denied requests get a *CooldownError with the whole seconds
// remaining, rounded up.
func (l *CooldownLimiter) Check(clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastRequest[clientID]; ok {
		if elapsed := now.Sub(last); elapsed < l.cooldown {
			wait := int(math.Ceil((l.cooldown - elapsed).Seconds()))
			return &CooldownError{WaitSeconds: wait}
		}
	}

	l.lastRequest[clientID] = now
	return nil
}

// Sweep removes entries older than the cooldown window; they can no
// longer affect any decision. Returns the number of entries removed.
func (l *CooldownLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, last := range l.lastRequest {
		if now.Sub(last) >= l.cooldown {
			delete(l.lastRequest, id)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps expired entries at the given interval until the
// returned stop function is called.
func (l *CooldownLimiter) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := l.Sweep(); n > 0 {
					slog.Debug("rate limiter sweep", "removed", n)
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

// CooldownError represents a request rejected by the cooldown window.
type CooldownError struct {
	WaitSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("rate limited, retry in %d seconds", e.WaitSeconds)
}

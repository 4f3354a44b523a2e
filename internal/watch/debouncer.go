package watch

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the minimum interval between two emitted
// change signals.
const DefaultDebounceWindow = 100 * time.Millisecond

// Gate is a leading-edge debouncer: the first event passes immediately and
// any event within the window after a passed event is suppressed.
type Gate struct {
	window time.Duration

	mu     sync.Mutex
	last   time.Time
	passed bool
}

// NewGate creates a gate with the given window. A non-positive window falls
// back to DefaultDebounceWindow.
func NewGate(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultDebounceWindow
	}

	return &Gate{window: window}
}

// Allow reports whether an event at now may pass, and records now if so.
// The check and the update happen under one lock.
func (g *Gate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.passed && now.Sub(g.last) < g.window {
		return false
	}

	g.last = now
	g.passed = true

	return true
}

// Reset forgets the last passed event.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = time.Time{}
	g.passed = false
}

// Window returns the debounce window.
func (g *Gate) Window() time.Duration {
	return g.window
}

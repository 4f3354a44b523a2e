package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/mdview/internal/notify"
)

// State is the controller state.
type State int

// Controller states.
const (
	StateIdle State = iota
	StateWatching
)

func (s State) String() string {
	if s == StateWatching {
		return "watching"
	}

	return "idle"
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides DefaultDebounceWindow.
func WithDebounce(window time.Duration) Option {
	return func(c *Controller) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithLogger sets the logger used for session lifecycle and dropped events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns at most one watch session at a time. Start replaces the
// current session; Stop tears it down.
type Controller struct {
	sink   notify.Sink
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	session *session
}

// NewController creates an idle controller emitting change signals to sink.
// A nil sink discards signals.
func NewController(sink notify.Sink, opts ...Option) *Controller {
	if sink == nil {
		sink = notify.Discard
	}

	c := &Controller{
		sink:   sink,
		window: DefaultDebounceWindow,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start watches path for changes, replacing any active watch.
//
// The new watch is registered before the old one is released: if setup
// fails the previous session keeps running and the error is returned.
func (c *Controller) Start(path string) error {
	target, dir, err := resolveTarget(path)
	if err != nil {
		return err
	}

	next, err := openSession(target, dir, c.window, c.sink, c.logger)
	if err != nil {
		c.logger.Warn("watch setup failed", slog.String("path", target), slog.String("error", err.Error()))
		return err
	}

	c.mu.Lock()
	prev := c.session
	c.session = next
	c.mu.Unlock()

	if prev != nil {
		c.release(prev)
	}

	c.logger.Info("watching file",
		slog.String("path", target),
		slog.String("dir", dir),
		slog.Duration("debounce", c.window),
		slog.String("session", next.id),
	)

	return nil
}

// Stop releases the active watch. It is a no-op when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	prev := c.session
	c.session = nil
	c.mu.Unlock()

	if prev != nil {
		c.release(prev)
	}
}

// Target returns the watched path, if any.
func (c *Controller) Target() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return "", false
	}

	return c.session.target, true
}

// State reports whether a session is active.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return StateIdle
	}

	return StateWatching
}

// Debounce returns the configured debounce window.
func (c *Controller) Debounce() time.Duration {
	return c.window
}

func (c *Controller) release(s *session) {
	if err := s.close(); err != nil {
		c.logger.Debug("closing watcher", slog.String("session", s.id), slog.String("error", err.Error()))
	}

	c.logger.Info("stopped watching", slog.String("path", s.target), slog.String("session", s.id))
}

// resolveTarget makes path absolute and returns it with its parent
// directory.
func resolveTarget(path string) (target, dir string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: resolving %q: %w", ErrInvalidPath, path, err)
	}

	dir = filepath.Dir(abs)
	if dir == abs {
		return "", "", fmt.Errorf("%w: %q has no parent directory", ErrInvalidPath, path)
	}

	return abs, dir, nil
}

// Package app wires the viewer's services together: rendering, themes,
// persisted state and the file watch controller.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/mdview/internal/config"
	"github.com/hupe1980/mdview/internal/logging"
	"github.com/hupe1980/mdview/internal/notify"
	"github.com/hupe1980/mdview/internal/render"
	"github.com/hupe1980/mdview/internal/state"
	"github.com/hupe1980/mdview/internal/theme"
	"github.com/hupe1980/mdview/internal/watch"
)

// ErrClosed is returned by operations on a closed App.
var ErrClosed = errors.New("app is closed")

// App is the viewer host. It is safe for concurrent use.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	cache      *render.Cache
	themes     *theme.Store
	state      *state.Store
	bus        *notify.Bus
	controller *watch.Controller

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// Option configures an App.
type Option func(*options)

type options struct {
	sinks []notify.Sink
}

// WithSink adds a sink that receives every change signal next to the
// subscribers of Signals. The sink must not block.
func WithSink(s notify.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// New builds an App from cfg. Empty ThemesDir and StateFile fall back to
// locations under the user config directory.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if cfg == nil {
		cfg = config.Default()
	}

	if logger == nil {
		logger = slog.Default()
	}

	cache, err := render.NewCache(render.New(render.WithRawHTML(cfg.RawHTML)), cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	themesDir, err := resolveThemesDir(cfg.ThemesDir)
	if err != nil {
		return nil, err
	}

	statePath := cfg.StateFile
	if statePath == "" {
		if statePath, err = state.DefaultPath(); err != nil {
			return nil, err
		}
	}

	bus := notify.NewBus(notify.BusOptions{Logger: logging.Component(logger, "bus")})
	sink := append(notify.Fanout{bus}, o.sinks...)

	a := &App{
		cfg:    cfg,
		logger: logger,
		cache:  cache,
		themes: theme.NewStore(themesDir),
		state:  state.NewStore(statePath, logging.Component(logger, "state")),
		bus:    bus,
		controller: watch.NewController(sink,
			watch.WithDebounce(cfg.Debounce),
			watch.WithLogger(logging.Component(logger, "watch")),
		),
	}

	logger.Debug("app initialised",
		slog.String("themesDir", themesDir),
		slog.String("stateFile", statePath),
		slog.Duration("debounce", a.controller.Debounce()),
	)

	return a, nil
}

// LoadFile reads the Markdown file at path and returns its rendered HTML.
func (a *App) LoadFile(path string) (string, error) {
	if err := a.checkOpen(); err != nil {
		return "", err
	}

	html, err := a.cache.RenderFile(path)
	if err != nil {
		return "", err
	}

	a.logger.Debug("rendered file", slog.String("path", path), slog.Int("bytes", len(html)))

	return html, nil
}

// ListThemes returns the available theme names.
func (a *App) ListThemes() ([]string, error) {
	return a.themes.List()
}

// LoadTheme returns the named theme as JSON.
func (a *App) LoadTheme(name string) (string, error) {
	return a.themes.Load(name)
}

// StartWatch begins watching path, replacing any previous watch.
func (a *App) StartWatch(path string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	return a.controller.Start(path)
}

// StopWatch ends the active watch, if any.
func (a *App) StopWatch() {
	a.controller.Stop()
}

// Watching returns the watched path, if any.
func (a *App) Watching() (string, bool) {
	return a.controller.Target()
}

// Signals subscribes to change signals. The returned func unsubscribes.
func (a *App) Signals() (<-chan notify.Signal, func()) {
	return a.bus.Subscribe()
}

// State returns the persisted state, or defaults if it cannot be read.
func (a *App) State() *state.State {
	return a.state.Load()
}

// SaveState updates the fields that are non-nil. A non-empty lastFile is
// also pushed to the front of the recent file list.
func (a *App) SaveState(lastTheme, lastFile *string) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	_, err := a.state.Update(func(st *state.State) {
		if lastTheme != nil {
			st.LastTheme = *lastTheme
		}

		if lastFile != nil {
			st.LastFile = *lastFile
			if *lastFile != "" {
				st.RecentFiles = state.PushRecent(st.RecentFiles, *lastFile)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	return nil
}

// ClearRecent empties the recent file list and forgets the last file.
func (a *App) ClearRecent() error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	_, err := a.state.Update(func(st *state.State) {
		st.LastFile = ""
		st.RecentFiles = []string{}
	})
	if err != nil {
		return fmt.Errorf("clearing recent files: %w", err)
	}

	return nil
}

// Close stops the watch and closes every signal subscription.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		a.controller.Stop()
		a.bus.Close()

		emitted, dropped := a.bus.Stats()
		a.logger.Debug("app closed",
			slog.Uint64("signals", emitted),
			slog.Uint64("dropped", dropped),
		)
	})
}

func (a *App) checkOpen() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	return nil
}

// resolveThemesDir returns dir, or <user config dir>/mdview/themes when empty.
func resolveThemesDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating themes directory: %w", err)
	}

	return filepath.Join(base, "mdview", "themes"), nil
}

// Package mdview provides a public Go API for rendering Markdown to HTML
// and for following a Markdown file as it changes on disk.
//
// Basic usage:
//
//	html, err := mdview.Render([]byte("# Hello"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Live reload:
//
//	err := mdview.Watch(ctx, "README.md", func(path string) {
//	    html, _ := mdview.RenderFile(path)
//	    publish(html)
//	})
package mdview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/mdview/internal/logging"
	"github.com/hupe1980/mdview/internal/notify"
	"github.com/hupe1980/mdview/internal/render"
	"github.com/hupe1980/mdview/internal/watch"
)

// Sentinel errors returned by Watch.
var (
	// ErrInvalidPath is returned when the path cannot be watched, e.g. it
	// is empty or has no parent directory.
	ErrInvalidPath = watch.ErrInvalidPath

	// ErrWatchSetup is returned when the platform watcher cannot be
	// created or registered.
	ErrWatchSetup = watch.ErrWatchSetup
)

// Option configures Render and Watch.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	rawHTML  bool
	debounce time.Duration
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		rawHTML:  true,
		debounce: watch.DefaultDebounceWindow,
		logger:   logging.Discard(),
	}
}

// WithRawHTML controls whether raw HTML in the Markdown source is passed
// through. Enabled by default.
func WithRawHTML(enabled bool) Option {
	return func(o *options) {
		o.rawHTML = enabled
	}
}

// WithDebounce sets the minimum interval between two change callbacks.
// Defaults to 100ms.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLogger sets a logger for watch diagnostics. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Render converts Markdown source to an HTML fragment.
func Render(src []byte, opts ...Option) (string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return render.New(render.WithRawHTML(o.rawHTML)).Render(src)
}

// RenderFile reads the file at path and renders it.
func RenderFile(path string, opts ...Option) (string, error) {
	src, err := os.ReadFile(path) //nolint:gosec // caller-supplied path
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return Render(src, opts...)
}

// Watch calls fn with the absolute path of the file each time it changes on
// disk, until ctx is done. Changes closer together than the debounce
// interval produce a single call. Calls are made sequentially from the
// goroutine running Watch; changes arriving while fn runs are coalesced
// into one further call.
//
// Watch returns a setup error immediately, and nil once ctx is done.
func Watch(ctx context.Context, path string, fn func(path string), opts ...Option) error {
	if fn == nil {
		return errors.New("mdview: nil change callback")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pending := make(chan string, 1)

	sink := notify.SinkFunc(func(sig notify.Signal) {
		select {
		case pending <- sig.Path:
		default:
		}
	})

	c := watch.NewController(sink, watch.WithDebounce(o.debounce), watch.WithLogger(o.logger))
	if err := c.Start(path); err != nil {
		return err
	}
	defer c.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-pending:
			fn(p)
		}
	}
}

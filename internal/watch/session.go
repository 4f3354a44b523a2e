package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/hupe1980/mdview/internal/notify"
)

// session binds one target file to one fsnotify watcher on its parent
// directory. The watcher handle is owned exclusively by the session.
type session struct {
	id     string
	target string
	dir    string

	fsw    *fsnotify.Watcher
	gate   *Gate
	sink   notify.Sink
	logger *slog.Logger
	now    func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// openSession registers a non-recursive watch on dir and starts draining
// its events. On error nothing is left running.
func openSession(target, dir string, window time.Duration, sink notify.Sink, logger *slog.Logger) (*session, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: creating watcher: %w", ErrWatchSetup, err)
	}

	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("%w: watching directory %s: %w", ErrWatchSetup, dir, err)
	}

	s := newSession(target, dir, window, sink, logger)
	s.fsw = fsw

	go s.run()

	return s, nil
}

func newSession(target, dir string, window time.Duration, sink notify.Sink, logger *slog.Logger) *session {
	id := uuid.NewString()

	return &session{
		id:     id,
		target: target,
		dir:    dir,
		gate:   NewGate(window),
		sink:   sink,
		logger: logger.With(slog.String("session", id)),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// run is the single consumer of the fsnotify channels. It exits once
// the watcher is closed.
func (s *session) run() {
	defer close(s.done)

	for {
		select {
		case ev, ok := <-s.fsw.Events:
			if !ok {
				return
			}

			s.handle(ev)
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}

			s.logger.Debug("dropping watcher error", slog.String("error", err.Error()))
		}
	}
}

// handle classifies a raw event, runs it through the gate, and emits at
// most one signal. Events are never propagated as errors.
func (s *session) handle(raw fsnotify.Event) bool {
	events := EventsFromFsnotify(raw)
	if len(events) == 0 {
		s.logger.Debug("dropping unclassifiable event", slog.String("event", raw.String()))
		return false
	}

	relevant := false

	for _, ev := range events {
		if IsRelevant(ev, s.target) {
			relevant = true
			break
		}
	}

	if !relevant {
		return false
	}

	now := s.now()
	if !s.gate.Allow(now) {
		s.logger.Debug("debounced event", slog.String("op", raw.Op.String()))
		return false
	}

	s.logger.Debug("file changed", slog.String("path", s.target), slog.String("op", raw.Op.String()))

	s.sink.Emit(notify.Signal{
		Name:    notify.SignalFileChanged,
		Path:    s.target,
		Session: s.id,
		At:      now,
	})

	return true
}

// close releases the watcher and waits for run to return, so no signal
// from this session can follow. Safe to call more than once.
func (s *session) close() error {
	s.closeOnce.Do(func() {
		if s.fsw == nil {
			close(s.done)
			return
		}

		s.closeErr = s.fsw.Close()
		<-s.done
	})

	return s.closeErr
}

// closed reports whether the session has released its watcher.
func (s *session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const defaultBufferSize = 16

// BusOptions configures a Bus.
type BusOptions struct {
	// BufferSize is the per-subscriber channel capacity.
	BufferSize int

	// Logger receives drop warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Bus fans signals out to subscribers. Emit never blocks: a subscriber whose
// buffer is full misses the signal and the drop is counted.
type Bus struct {
	mu          sync.Mutex
	subscribers map[uint64]chan Signal
	nextID      uint64
	closed      bool
	bufferSize  int
	logger      *slog.Logger

	emitted atomic.Uint64
	dropped atomic.Uint64
}

var _ Sink = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus(opts BusOptions) *Bus {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Bus{
		subscribers: make(map[uint64]chan Signal),
		bufferSize:  opts.BufferSize,
		logger:      opts.Logger,
	}
}

// Subscribe returns a channel receiving every signal emitted after the call
// and a cancel func that unsubscribes and closes the channel.
func (b *Bus) Subscribe() (<-chan Signal, func()) {
	ch := make(chan Signal, b.bufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)

		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() { b.remove(id) })
	}
}

// Emit delivers sig to every subscriber without blocking.
func (b *Bus) Emit(sig Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.emitted.Add(1)

	for id, ch := range b.subscribers {
		select {
		case ch <- sig:
		default:
			b.dropped.Add(1)
			b.logger.Warn("signal dropped, subscriber is full",
				slog.String("signal", sig.Name),
				slog.Uint64("subscriber", id),
			)
		}
	}
}

// Close closes every subscriber channel. Emit after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Stats returns the number of emitted and dropped deliveries.
func (b *Bus) Stats() (emitted, dropped uint64) {
	return b.emitted.Load(), b.dropped.Load()
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

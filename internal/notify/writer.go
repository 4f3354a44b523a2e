package notify

import (
	"encoding/json"
	"io"
	"sync"
)

// WriterSink encodes each signal as one JSON line on an io.Writer. It lets
// an out-of-process UI follow signals over a pipe.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterSink creates a sink writing JSON lines to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

// Emit writes sig. Encoding errors are dropped: there is no caller to
// report them to.
func (s *WriterSink) Emit(sig Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.enc.Encode(sig)
}

// Fanout emits every signal to all of the given sinks in order.
type Fanout []Sink

// Emit forwards sig to each sink.
func (f Fanout) Emit(sig Signal) {
	for _, s := range f {
		if s != nil {
			s.Emit(sig)
		}
	}
}

// Package notify carries change signals from the file watcher to whatever
// part of the application wants to react to them.
package notify

import "time"

// SignalFileChanged is the name of the signal emitted when the watched
// document changed on disk.
const SignalFileChanged = "file_changed"

// Signal is a fire-and-forget notification.
type Signal struct {
	// Name identifies the signal (e.g. SignalFileChanged).
	Name string `json:"name"`

	// Path is the payload: the watched file path.
	Path string `json:"path"`

	// Session is the ID of the watch session that produced the signal.
	Session string `json:"session,omitempty"`

	// At is the time the signal was emitted.
	At time.Time `json:"at"`
}

// Sink receives signals. Emit must not block and must not call back into
// the watch controller synchronously.
type Sink interface {
	Emit(sig Signal)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(sig Signal)

// Emit calls f(sig).
func (f SinkFunc) Emit(sig Signal) { f(sig) }

// Discard is a Sink that drops every signal.
var Discard Sink = SinkFunc(func(Signal) {})

package watch

import "errors"

var (
	// ErrInvalidPath is returned by Start when the path has no parent
	// directory (empty path or a filesystem root).
	ErrInvalidPath = errors.New("invalid watch path")

	// ErrWatchSetup is returned by Start when the OS watch cannot be created
	// or the parent directory cannot be registered.
	ErrWatchSetup = errors.New("watch setup failed")
)

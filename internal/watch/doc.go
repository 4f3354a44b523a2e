// Package watch provides the live-reload change detector for mdview.
//
// A Controller watches the parent directory of one Markdown file at a time,
// classifies the raw filesystem events against the target path, debounces
// event bursts, and emits a file_changed signal for every logical save.
// Watching the directory rather than the file is what makes rename-based
// (atomic-replace) saves visible on every platform.
package watch

// Package render converts Markdown documents to HTML.
//
// Rendering uses goldmark with the GitHub-flavoured table, strikethrough
// and task-list extensions plus footnotes. Cache memoizes renders by
// document content, and Diff compares two renders of the same document.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md      goldmark.Markdown
	rawHTML bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRawHTML controls whether raw HTML embedded in the Markdown source is
// passed through (true) or replaced by a comment (false).
func WithRawHTML(enabled bool) Option {
	return func(r *Renderer) {
		r.rawHTML = enabled
	}
}

// New creates a Renderer. Raw HTML is passed through by default.
func New(opts ...Option) *Renderer {
	r := &Renderer{rawHTML: true}

	for _, opt := range opts {
		opt(r)
	}

	var rendererOpts []goldmark.Option
	if r.rawHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	r.md = goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Footnote,
		),
	}, rendererOpts...)...)

	return r
}

// Render converts src to an HTML fragment.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return buf.String(), nil
}

// RawHTML reports whether raw HTML passes through.
func (r *Renderer) RawHTML() bool {
	return r.rawHTML
}

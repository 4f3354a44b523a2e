package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of rendered documents kept by NewCache
// when size is not positive.
const DefaultCacheSize = 64

// Cache memoizes renders keyed by the SHA-256 of the Markdown source, so a
// reload of an unchanged file skips rendering.
type Cache struct {
	renderer *Renderer
	entries  *lru.Cache[string, string]
}

// NewCache wraps r with an LRU of the given size.
func NewCache(r *Renderer, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating render cache: %w", err)
	}

	return &Cache{renderer: r, entries: entries}, nil
}

// Render returns the HTML for src, rendering only on a cache miss.
func (c *Cache) Render(src []byte) (string, error) {
	sum := sha256.Sum256(src)
	key := hex.EncodeToString(sum[:])

	if html, ok := c.entries.Get(key); ok {
		return html, nil
	}

	html, err := c.renderer.Render(src)
	if err != nil {
		return "", err
	}

	c.entries.Add(key, html)

	return html, nil
}

// RenderFile reads the Markdown file at path and renders it.
func (c *Cache) RenderFile(path string) (string, error) {
	src, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return c.Render(src)
}

// Len returns the number of cached renders.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached render.
func (c *Cache) Purge() {
	c.entries.Purge()
}

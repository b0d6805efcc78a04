package render

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedRenderer wraps a MarkupRenderer with an LRU cache keyed by the
// markdown source. Hover content re-resolves to identical payloads often
// (the engine re-queries the same region on pointer rest), so caching the
// parsed tree avoids repeated render work.
//
// Cache hits return a deep copy: callers mutate rendered trees (appended
// highlight boxes), and a shared tree would leak one overlay's boxes into
// the next.
type CachedRenderer struct {
	inner MarkupRenderer
	cache *lru.Cache[string, *Element]
}

// NewCachedRenderer wraps inner with a cache of the given size.
func NewCachedRenderer(inner MarkupRenderer, size int) (*CachedRenderer, error) {
	cache, err := lru.New[string, *Element](size)
	if err != nil {
		return nil, err
	}
	return &CachedRenderer{inner: inner, cache: cache}, nil
}

// Render implements MarkupRenderer.
func (r *CachedRenderer) Render(markdown string) (*Element, error) {
	if cached, ok := r.cache.Get(markdown); ok {
		if cached == nil {
			return nil, nil
		}
		return cached.Clone(), nil
	}

	el, err := r.inner.Render(markdown)
	if err != nil {
		return nil, err
	}

	// Negative results are cached too; re-rendering empty payloads is as
	// wasteful as re-rendering full ones.
	if el == nil {
		r.cache.Add(markdown, nil)
		return nil, nil
	}
	r.cache.Add(markdown, el.Clone())
	return el, nil
}

var _ MarkupRenderer = (*CachedRenderer)(nil)

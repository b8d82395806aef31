package vectorindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/tempo/internal/llm"
)

// Selector picks the single best match for a query string.
type Selector struct {
	embedder llm.Embedder
}

func NewSelector(embedder llm.Embedder) *Selector {
	return &Selector{embedder: embedder}
}

// BestMatch embeds query and returns the nearest entry in idx accepted by
// filter. When ctx carries a QueryCache each distinct query is embedded
// only once for the cache's lifetime.
func (s *Selector) BestMatch(ctx context.Context, idx *Index, query string, filter func(Entry) bool) (Match, error) {
	if idx == nil || idx.Len() == 0 {
		return Match{}, ErrEmptyIndex
	}
	vec, err := s.embed(ctx, query)
	if err != nil {
		return Match{}, err
	}
	return idx.Nearest(vec, filter)
}

func (s *Selector) embed(ctx context.Context, query string) ([]float64, error) {
	cache := queryCacheFrom(ctx)
	if cache != nil {
		if vec, ok := cache.get(query); ok {
			return vec, nil
		}
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if cache != nil {
		cache.put(query, vec)
	}
	return vec, nil
}

// QueryCache memoizes query embeddings for one plan run.
type QueryCache struct {
	mu      sync.Mutex
	vectors map[string][]float64
}

// Len reports how many distinct queries have been embedded.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}

func (c *QueryCache) get(q string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vectors[q]
	return v, ok
}

func (c *QueryCache) put(q string, v []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[q] = v
}

type queryCacheKey struct{}

// WithQueryCache returns a context carrying a fresh QueryCache.
func WithQueryCache(ctx context.Context) (context.Context, *QueryCache) {
	c := &QueryCache{vectors: make(map[string][]float64)}
	return context.WithValue(ctx, queryCacheKey{}, c), c
}

func queryCacheFrom(ctx context.Context) *QueryCache {
	c, _ := ctx.Value(queryCacheKey{}).(*QueryCache)
	return c
}

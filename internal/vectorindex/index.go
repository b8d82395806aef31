// Package vectorindex holds precomputed embeddings in memory and answers
// nearest-neighbor queries by cosine similarity.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/tempo/internal/llm"
)

var (
	// ErrEmptyIndex is returned when a query has no candidates at all.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrDimensionMismatch is returned when a query vector's length differs
	// from the indexed vectors.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Item is a document to embed and index.
type Item struct {
	ID   string
	Text string
	Meta map[string]string
}

// Entry is one indexed (id, vector, metadata) triple.
type Entry struct {
	ID     string
	Vector []float64
	Meta   map[string]string
}

// Match is a query result.
type Match struct {
	Entry
	Score float64
}

// Index is an immutable set of entries. Safe for concurrent reads.
type Index struct {
	entries []Entry
	dim     int
}

// Build embeds every item in one batch and indexes the results in item order.
func Build(ctx context.Context, embedder llm.Embedder, items []Item) (*Index, error) {
	if len(items) == 0 {
		return &Index{}, nil
	}
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d documents: %w", len(items), err)
	}
	if len(vecs) != len(items) {
		return nil, fmt.Errorf("%w: got %d vectors for %d documents", llm.ErrEmbeddingShape, len(vecs), len(items))
	}
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{ID: it.ID, Vector: vecs[i], Meta: it.Meta}
	}
	return New(entries)
}

// New indexes precomputed entries. All vectors must share one dimension.
func New(entries []Entry) (*Index, error) {
	idx := &Index{entries: entries}
	for i, e := range entries {
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("entry %s: empty vector", e.ID)
		}
		if i == 0 {
			idx.dim = len(e.Vector)
			continue
		}
		if len(e.Vector) != idx.dim {
			return nil, fmt.Errorf("%w: entry %s has %d, index has %d", ErrDimensionMismatch, e.ID, len(e.Vector), idx.dim)
		}
	}
	return idx, nil
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Nearest returns the entry most similar to query among those accepted by
// filter (nil accepts all). Ties keep the earliest entry. There is no
// similarity threshold: any non-empty candidate set yields a match.
func (x *Index) Nearest(query []float64, filter func(Entry) bool) (Match, error) {
	if len(x.entries) == 0 {
		return Match{}, ErrEmptyIndex
	}
	if len(query) != x.dim {
		return Match{}, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), x.dim)
	}

	best := Match{Score: math.Inf(-1)}
	found := false
	for _, e := range x.entries {
		if filter != nil && !filter(e) {
			continue
		}
		score := Cosine(query, e.Vector)
		if !found || score > best.Score {
			best = Match{Entry: e, Score: score}
			found = true
		}
	}
	if !found {
		return Match{}, ErrEmptyIndex
	}
	return best, nil
}

// Cosine returns the cosine similarity of a and b, or 0 if either has
// zero magnitude. a and b must have equal length.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package vectorindex

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-3, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}

func TestNearest_PicksHighestSimilarity(t *testing.T) {
	idx, err := New([]Entry{
		{ID: "a", Vector: []float64{1, 0, 0}},
		{ID: "b", Vector: []float64{0, 1, 0}},
		{ID: "c", Vector: []float64{0.7, 0.7, 0}},
	})
	require.NoError(t, err)

	m, err := idx.Nearest([]float64{0.1, 1, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", m.ID)
}

func TestNearest_TiesKeepEncounterOrder(t *testing.T) {
	idx, err := New([]Entry{
		{ID: "first", Vector: []float64{1, 1}},
		{ID: "second", Vector: []float64{1, 1}},
	})
	require.NoError(t, err)

	m, err := idx.Nearest([]float64{1, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", m.ID)
}

func TestNearest_Filter(t *testing.T) {
	idx, err := New([]Entry{
		{ID: "a", Vector: []float64{1, 0}, Meta: map[string]string{"ns": "x"}},
		{ID: "b", Vector: []float64{0, 1}, Meta: map[string]string{"ns": "y"}},
	})
	require.NoError(t, err)

	onlyY := func(e Entry) bool { return e.Meta["ns"] == "y" }
	m, err := idx.Nearest([]float64{1, 0}, onlyY)
	require.NoError(t, err)
	assert.Equal(t, "b", m.ID, "the filtered set always yields a winner, however dissimilar")

	none := func(Entry) bool { return false }
	_, err = idx.Nearest([]float64{1, 0}, none)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestNearest_EmptyAndMismatch(t *testing.T) {
	empty, err := New(nil)
	require.NoError(t, err)
	_, err = empty.Nearest([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	idx, err := New([]Entry{{ID: "a", Vector: []float64{1, 0}}})
	require.NoError(t, err)
	_, err = idx.Nearest([]float64{1, 0, 0}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = New([]Entry{{ID: "a", Vector: []float64{1}}, {ID: "b", Vector: []float64{1, 2}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBuild_UsesBatchEmbedding(t *testing.T) {
	emb := &countingEmbedder{inner: NewHashEmbedder()}
	idx, err := Build(context.Background(), emb, []Item{
		{ID: "intervals", Text: "session_type=intervals vo2 repeats"},
		{ID: "easy", Text: "session_type=easy aerobic conversational"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 1, emb.batches)
	assert.Equal(t, 0, emb.singles)
}

func TestBuild_EmbedderFailure(t *testing.T) {
	_, err := Build(context.Background(), brokenEmbedder{}, []Item{{ID: "a", Text: "x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)
}

func TestSelector_EmbedsEachQueryOncePerRun(t *testing.T) {
	emb := &countingEmbedder{inner: NewHashEmbedder()}
	idx, err := Build(context.Background(), emb, []Item{
		{ID: "intervals", Text: "session_type=intervals vo2 repeats hard"},
		{ID: "long", Text: "session_type=long_run steady long aerobic"},
	})
	require.NoError(t, err)

	sel := NewSelector(emb)
	ctx, cache := WithQueryCache(context.Background())
	for range 3 {
		m, err := sel.BestMatch(ctx, idx, "session_type=long_run phase=build", nil)
		require.NoError(t, err)
		assert.Equal(t, "long", m.ID)
	}
	assert.Equal(t, 1, emb.singles)
	assert.Equal(t, 1, cache.Len())

	// Without a cache every call embeds.
	_, err = sel.BestMatch(context.Background(), idx, "session_type=long_run phase=build", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.singles)
}

func TestSelector_EmptyIndex(t *testing.T) {
	sel := NewSelector(NewHashEmbedder())
	_, err := sel.BestMatch(context.Background(), &Index{}, "anything", nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
	_, err = sel.BestMatch(context.Background(), nil, "anything", nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	h := NewHashEmbedder()
	a, _ := h.Embed(context.Background(), "domain=running race_distance=marathon")
	b, _ := h.Embed(context.Background(), "domain=running race_distance=marathon")
	c, _ := h.Embed(context.Background(), "domain=ultra race_distance=100_mile")

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultHashDim)
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)
	assert.Less(t, Cosine(a, c), 1.0)

	empty, _ := h.Embed(context.Background(), "")
	assert.InDelta(t, 1.0, Cosine(empty, empty), 1e-9, "empty text still yields a unit vector")
}

type countingEmbedder struct {
	inner   llm.Embedder
	batches int
	singles int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	c.singles++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	c.batches++
	return c.inner.EmbedBatch(ctx, texts)
}

type brokenEmbedder struct{}

func (brokenEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, llm.ErrProviderUnavailable
}

func (brokenEmbedder) EmbedBatch(context.Context, []string) ([][]float64, error) {
	return nil, errors.Join(llm.ErrProviderUnavailable)
}

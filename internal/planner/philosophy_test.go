package planner

import (
	"context"
	"testing"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/alexanderramin/tempo/internal/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterSelector(c *corpus.Corpus) *PhilosophySelector {
	return NewPhilosophySelector(c, NewFilterPhilosophyStrategy(c))
}

func TestFilterPhilosophy_PriorityThenVersionThenID(t *testing.T) {
	// daniels (prio 10, v2.1) and hansons (prio 10, v1.0) both match an
	// intermediate marathoner; heart-rate (prio 50) is gated on a flag.
	sel := filterSelector(testutil.SampleCorpus())
	athlete := domain.AthleteState{Fitness: 50}

	got, err := sel.Select(context.Background(), raceContext(16, domain.DistanceMarathon), athlete)
	require.NoError(t, err)

	assert.Equal(t, "daniels", got.PhilosophyID)
	assert.Equal(t, domain.DomainRunning, got.Domain)
	assert.Equal(t, domain.AudienceIntermediate, got.Audience)
}

func TestFilterPhilosophy_RequiresFlag(t *testing.T) {
	sel := filterSelector(testutil.SampleCorpus())
	athlete := domain.AthleteState{Fitness: 50, Flags: []string{"hr_monitor"}}

	got, err := sel.Select(context.Background(), raceContext(16, domain.DistanceMarathon), athlete)
	require.NoError(t, err)
	assert.Equal(t, "heart-rate", got.PhilosophyID)
}

func TestFilterPhilosophy_ProhibitsAndAudience(t *testing.T) {
	sel := filterSelector(testutil.SampleCorpus())

	// daniels prohibits "injured"; hansons outranks lydiard on priority.
	injured := domain.AthleteState{Fitness: 50, Flags: []string{"injured"}}
	got, err := sel.Select(context.Background(), raceContext(16, domain.DistanceMarathon), injured)
	require.NoError(t, err)
	assert.Equal(t, "hansons", got.PhilosophyID)

	// daniels excludes beginners.
	beginner := domain.AthleteState{Fitness: 10}
	got, err = sel.Select(context.Background(), raceContext(16, domain.DistanceMarathon), beginner)
	require.NoError(t, err)
	assert.Equal(t, "hansons", got.PhilosophyID)
	assert.Equal(t, domain.AudienceBeginner, got.Audience)
}

func TestFilterPhilosophy_DistanceAliasesAndUltraDomain(t *testing.T) {
	sel := filterSelector(testutil.SampleCorpus())

	pctx := raceContext(12, domain.NormalizeDistance("Half"))
	got, err := sel.Select(context.Background(), pctx, domain.AthleteState{Fitness: 80})
	require.NoError(t, err)
	assert.Equal(t, "daniels", got.PhilosophyID)

	got, err = sel.Select(context.Background(), raceContext(20, domain.Distance100Mile), domain.AthleteState{})
	require.NoError(t, err)
	assert.Equal(t, "koop", got.PhilosophyID)
	assert.Equal(t, domain.DomainUltra, got.Domain)
}

func TestFilterPhilosophy_ZeroCandidatesIsResolutionError(t *testing.T) {
	c := corpus.New([]domain.Philosophy{testutil.SamplePhilosophies()[0]}, nil, nil)
	sel := filterSelector(c)

	_, err := sel.Select(context.Background(), raceContext(10, domain.Distance50K), domain.AthleteState{})
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.ErrResolution))
}

func TestFilterPhilosophy_Deterministic(t *testing.T) {
	sel := filterSelector(testutil.SampleCorpus())
	pctx := raceContext(16, domain.DistanceMarathon)
	athlete := domain.AthleteState{Fitness: 40, Flags: []string{"masters"}}

	first, err := sel.Select(context.Background(), pctx, athlete)
	require.NoError(t, err)
	for range 20 {
		again, err := sel.Select(context.Background(), pctx, athlete)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSelect_Override(t *testing.T) {
	sel := filterSelector(testutil.SampleCorpus())
	pctx := raceContext(16, domain.DistanceMarathon)

	pctx.PhilosophyOverride = "lydiard"
	got, err := sel.Select(context.Background(), pctx, domain.AthleteState{})
	require.NoError(t, err)
	assert.Equal(t, "lydiard", got.PhilosophyID)

	pctx.PhilosophyOverride = "heart-rate"
	_, err = sel.Select(context.Background(), pctx, domain.AthleteState{})
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.ErrContext))
	assert.Contains(t, err.Error(), "requires hr_monitor")

	pctx.PhilosophyOverride = "daniels"
	_, err = sel.Select(context.Background(), pctx, domain.AthleteState{Flags: []string{"injured"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prohibits injured")

	pctx.PhilosophyOverride = "nope"
	_, err = sel.Select(context.Background(), pctx, domain.AthleteState{})
	assert.True(t, app.IsKind(err, app.ErrContext))
}

func TestEmbeddingPhilosophy_AlwaysOneWinner(t *testing.T) {
	c := testutil.SampleCorpus()
	emb := vectorindex.NewHashEmbedder()
	idx, err := BuildIndexes(context.Background(), c, emb)
	require.NoError(t, err)
	sel := NewPhilosophySelector(c, NewEmbeddingPhilosophyStrategy(c, idx, vectorindex.NewSelector(emb)))

	// No filtering: even an athlete the filter strategy would reject gets a philosophy.
	got, err := sel.Select(context.Background(), raceContext(16, domain.Distance100Mile), domain.AthleteState{Flags: []string{"injured"}})
	require.NoError(t, err)
	assert.NotEmpty(t, got.PhilosophyID)

	again, err := sel.Select(context.Background(), raceContext(16, domain.Distance100Mile), domain.AthleteState{Flags: []string{"injured"}})
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEmbeddingPhilosophy_EmptyCorpusIsConfigurationError(t *testing.T) {
	c := corpus.New(nil, nil, nil)
	emb := vectorindex.NewHashEmbedder()
	idx, err := BuildIndexes(context.Background(), c, emb)
	require.NoError(t, err)
	sel := NewPhilosophySelector(c, NewEmbeddingPhilosophyStrategy(c, idx, vectorindex.NewSelector(emb)))

	_, err = sel.Select(context.Background(), raceContext(16, domain.DistanceMarathon), domain.AthleteState{})
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.ErrConfiguration))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 1, CompareVersions("10.0", "9.5"))
	assert.Equal(t, -1, CompareVersions("2.1", "2.10"))
	assert.Equal(t, 0, CompareVersions("1.0", "1.0"))
	assert.Equal(t, 1, CompareVersions("1.0.1", "1.0"))
	assert.Equal(t, 1, CompareVersions("b", "a"))
}

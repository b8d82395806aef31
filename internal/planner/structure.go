package planner

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/vectorindex"
)

// StructureRequest describes the week a structure is resolved for.
type StructureRequest struct {
	PhilosophyID string
	RaceDistance string
	Audience     domain.Audience
	Phase        domain.Focus
	DaysToRace   int
	Week         int
}

// StructureStrategy picks one structure from a philosophy's namespace.
type StructureStrategy interface {
	Choose(ctx context.Context, req StructureRequest) (domain.WeekStructure, error)
}

// StructureResolver resolves one week structure per macro week.
type StructureResolver struct {
	strategy StructureStrategy
}

func NewStructureResolver(strategy StructureStrategy) *StructureResolver {
	return &StructureResolver{strategy: strategy}
}

// Resolve returns one structure per macro week, in week order. The
// context's philosophy must be locked.
func (r *StructureResolver) Resolve(ctx context.Context, pctx domain.PlanContext, weeks []domain.MacroWeek, now time.Time) ([]domain.WeekStructure, error) {
	if pctx.Philosophy == nil {
		return nil, app.Errorf(app.ErrInvariant, "structure resolution requires a locked philosophy")
	}
	anchor := domain.PlanAnchor(pctx, now)

	out := make([]domain.WeekStructure, len(weeks))
	for i, w := range weeks {
		s, err := r.strategy.Choose(ctx, StructureRequest{
			PhilosophyID: pctx.Philosophy.PhilosophyID,
			RaceDistance: pctx.RaceDistance,
			Audience:     pctx.Philosophy.Audience,
			Phase:        w.Focus,
			DaysToRace:   domain.DaysToRace(pctx, anchor, w.Week),
			Week:         w.Week,
		})
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// FilterStructureStrategy filters the namespace on distance, audience and
// phase, then on the days-to-race range, and takes the highest priority.
type FilterStructureStrategy struct {
	corpus *corpus.Corpus
}

func NewFilterStructureStrategy(c *corpus.Corpus) *FilterStructureStrategy {
	return &FilterStructureStrategy{corpus: c}
}

func (f *FilterStructureStrategy) Choose(_ context.Context, req StructureRequest) (domain.WeekStructure, error) {
	var candidates []domain.WeekStructure
	for _, s := range f.corpus.StructuresFor(req.PhilosophyID) {
		if s.PhilosophyID != req.PhilosophyID {
			continue
		}
		if req.RaceDistance != "" && !s.SupportsDistance(req.RaceDistance) {
			continue
		}
		if !s.SupportsAudience(req.Audience) {
			continue
		}
		if s.Phase != req.Phase {
			continue
		}
		if req.DaysToRace != domain.SeasonDaysToRace && !s.DaysToRace.Contains(req.DaysToRace) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return domain.WeekStructure{}, app.Errorf(app.ErrResolution,
			"week %d: no structure for philosophy=%s race_distance=%s audience=%s phase=%s days_to_race=%d",
			req.Week, req.PhilosophyID, req.RaceDistance, req.Audience, req.Phase, req.DaysToRace)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], nil
}

// EmbeddingStructureStrategy picks the namespace structure nearest to a
// canonical rendering of the request. It never filters further, so any
// non-empty namespace yields a structure.
type EmbeddingStructureStrategy struct {
	corpus   *corpus.Corpus
	index    *vectorindex.Index
	selector *vectorindex.Selector
}

func NewEmbeddingStructureStrategy(c *corpus.Corpus, idx *Indexes, sel *vectorindex.Selector) *EmbeddingStructureStrategy {
	return &EmbeddingStructureStrategy{corpus: c, index: idx.Structures, selector: sel}
}

func (e *EmbeddingStructureStrategy) Choose(ctx context.Context, req StructureRequest) (domain.WeekStructure, error) {
	m, err := e.selector.BestMatch(ctx, e.index, StructureQuery(req), inNamespace(req.PhilosophyID))
	if errors.Is(err, vectorindex.ErrEmptyIndex) {
		return domain.WeekStructure{}, app.Wrap(app.ErrConfiguration, err, "no structures in namespace %s", req.PhilosophyID)
	}
	if err != nil {
		return domain.WeekStructure{}, app.Wrap(app.ErrResolution, err, "week %d: semantic structure resolution", req.Week)
	}
	for _, s := range e.corpus.StructuresFor(req.PhilosophyID) {
		if s.ID == m.ID {
			return s, nil
		}
	}
	return domain.WeekStructure{}, app.Errorf(app.ErrConfiguration, "indexed structure %q missing from corpus", m.ID)
}

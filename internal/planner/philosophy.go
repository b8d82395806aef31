package planner

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/vectorindex"
)

// PhilosophyRequest is what automatic selection sees of a plan request.
type PhilosophyRequest struct {
	Domain       domain.TrainingDomain
	RaceDistance string
	Audience     domain.Audience
	Intent       string
	Athlete      domain.AthleteState
}

// PhilosophyStrategy picks one philosophy for a request.
type PhilosophyStrategy interface {
	Choose(ctx context.Context, req PhilosophyRequest) (domain.Philosophy, error)
}

// PhilosophySelector resolves the philosophy a plan run is locked to.
type PhilosophySelector struct {
	corpus   *corpus.Corpus
	strategy PhilosophyStrategy
}

func NewPhilosophySelector(c *corpus.Corpus, strategy PhilosophyStrategy) *PhilosophySelector {
	return &PhilosophySelector{corpus: c, strategy: strategy}
}

// Select returns the philosophy for the run. An explicit override must
// exist and satisfy its own constraints against the athlete's flags.
func (s *PhilosophySelector) Select(ctx context.Context, pctx domain.PlanContext, athlete domain.AthleteState) (domain.PhilosophySelection, error) {
	audience := athlete.AudienceTier()

	if id := pctx.PhilosophyOverride; id != "" {
		p, ok := s.corpus.Philosophy(id)
		if !ok {
			return domain.PhilosophySelection{}, app.Errorf(app.ErrContext, "philosophy override %q not found", id)
		}
		if v := p.ConstraintViolation(athlete.HasFlag); v != "" {
			return domain.PhilosophySelection{}, app.Errorf(app.ErrContext, "philosophy override %q %s", id, v)
		}
		return domain.PhilosophySelection{PhilosophyID: p.ID, Domain: p.Domain, Audience: audience}, nil
	}

	p, err := s.strategy.Choose(ctx, PhilosophyRequest{
		Domain:       domain.DomainForDistance(pctx.RaceDistance),
		RaceDistance: pctx.RaceDistance,
		Audience:     audience,
		Intent:       pctx.Intent,
		Athlete:      athlete,
	})
	if err != nil {
		return domain.PhilosophySelection{}, err
	}
	return domain.PhilosophySelection{PhilosophyID: p.ID, Domain: p.Domain, Audience: audience}, nil
}

// FilterPhilosophyStrategy narrows the corpus by domain, race distance,
// audience and hard constraints, then ranks by priority and version.
type FilterPhilosophyStrategy struct {
	corpus *corpus.Corpus
}

func NewFilterPhilosophyStrategy(c *corpus.Corpus) *FilterPhilosophyStrategy {
	return &FilterPhilosophyStrategy{corpus: c}
}

func (f *FilterPhilosophyStrategy) Choose(_ context.Context, req PhilosophyRequest) (domain.Philosophy, error) {
	var candidates []domain.Philosophy
	for _, p := range f.corpus.Philosophies() {
		if p.Domain != req.Domain {
			continue
		}
		// A plan without a race distance does not filter on it.
		if req.RaceDistance != "" && !p.SupportsDistance(req.RaceDistance) {
			continue
		}
		if !p.SupportsAudience(req.Audience) {
			continue
		}
		if p.ConstraintViolation(req.Athlete.HasFlag) != "" {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return domain.Philosophy{}, app.Errorf(app.ErrResolution,
			"no philosophy for domain=%s race_distance=%s audience=%s", req.Domain, req.RaceDistance, req.Audience)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if c := CompareVersions(a.Version, b.Version); c != 0 {
			return c > 0
		}
		return a.ID < b.ID
	})
	return candidates[0], nil
}

// EmbeddingPhilosophyStrategy picks the philosophy nearest to a canonical
// query, without filtering or a similarity threshold.
type EmbeddingPhilosophyStrategy struct {
	corpus   *corpus.Corpus
	index    *vectorindex.Index
	selector *vectorindex.Selector
}

func NewEmbeddingPhilosophyStrategy(c *corpus.Corpus, idx *Indexes, sel *vectorindex.Selector) *EmbeddingPhilosophyStrategy {
	return &EmbeddingPhilosophyStrategy{corpus: c, index: idx.Philosophies, selector: sel}
}

func (e *EmbeddingPhilosophyStrategy) Choose(ctx context.Context, req PhilosophyRequest) (domain.Philosophy, error) {
	q := PhilosophyQuery(req.Domain, req.RaceDistance, req.Audience, req.Intent)
	m, err := e.selector.BestMatch(ctx, e.index, q, nil)
	if errors.Is(err, vectorindex.ErrEmptyIndex) {
		return domain.Philosophy{}, app.Wrap(app.ErrConfiguration, err, "philosophy corpus is empty")
	}
	if err != nil {
		return domain.Philosophy{}, app.Wrap(app.ErrResolution, err, "semantic philosophy selection")
	}
	p, ok := e.corpus.Philosophy(m.ID)
	if !ok {
		return domain.Philosophy{}, app.Errorf(app.ErrConfiguration, "indexed philosophy %q missing from corpus", m.ID)
	}
	return p, nil
}

// CompareVersions compares dotted version strings segment by segment,
// numerically where both segments are integers and lexically otherwise.
// It returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		if x == y {
			continue
		}
		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			if xn < yn {
				return -1
			}
			if xn > yn {
				return 1
			}
		case x < y:
			return -1
		default:
			return 1
		}
	}
	return 0
}

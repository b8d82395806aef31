package planner

import (
	"context"
	"errors"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/vectorindex"
)

// fallbackSessionTypes maps a day type to a session type when the
// structure does not name one for the day.
var fallbackSessionTypes = map[domain.DayType]string{
	domain.DayRest:     "rest",
	domain.DayEasy:     "easy",
	domain.DayRecovery: "recovery",
	domain.DayModerate: "steady",
	domain.DayHard:     "intervals",
	domain.DayLong:     "long_run",
	domain.DayRace:     "race",
}

// SessionType returns the structure's session type for a day, or the
// fallback for its day type.
func SessionType(s domain.WeekStructure, day domain.DistributedDay) string {
	if t, ok := s.SessionTypes[day.DayIndex]; ok && t != "" {
		return t
	}
	if t, ok := fallbackSessionTypes[day.DayType]; ok {
		return t
	}
	return string(day.DayType)
}

// TemplateSelector picks one session template per allocated day by
// nearest-neighbor similarity within the locked namespace and the shared
// templates.
type TemplateSelector struct {
	corpus   *corpus.Corpus
	index    *vectorindex.Index
	selector *vectorindex.Selector
}

func NewTemplateSelector(c *corpus.Corpus, idx *Indexes, sel *vectorindex.Selector) *TemplateSelector {
	return &TemplateSelector{corpus: c, index: idx.Templates, selector: sel}
}

// Select returns one planned session per day, in day order.
func (t *TemplateSelector) Select(ctx context.Context, pctx domain.PlanContext, week domain.MacroWeek, s domain.WeekStructure, days []domain.DistributedDay) ([]domain.PlannedSession, error) {
	if pctx.Philosophy == nil {
		return nil, app.Errorf(app.ErrInvariant, "template selection requires a locked philosophy")
	}
	ns := pctx.Philosophy.PhilosophyID

	byID := make(map[string]domain.SessionTemplate)
	for _, tpl := range t.corpus.TemplatesFor(ns) {
		byID[tpl.ID] = tpl
	}
	if len(byID) == 0 {
		return nil, app.Errorf(app.ErrConfiguration, "no session templates available to philosophy %s", ns)
	}

	sessions := make([]domain.PlannedSession, len(days))
	for i, day := range days {
		st := SessionType(s, day)
		q := TemplateQuery(pctx.Philosophy.Domain, st, pctx.RaceDistance, week.Focus, ns)

		m, err := t.selector.BestMatch(ctx, t.index, q, inNamespaceOrShared(ns))
		if errors.Is(err, vectorindex.ErrEmptyIndex) {
			return nil, app.Wrap(app.ErrConfiguration, err, "template index has no entries for philosophy %s", ns)
		}
		if err != nil {
			return nil, app.Wrap(app.ErrResolution, err, "week %d day %d: template selection", week.Week, day.DayIndex)
		}
		tpl, ok := byID[m.ID]
		if !ok {
			return nil, app.Errorf(app.ErrConfiguration, "indexed template %q missing from corpus", m.ID)
		}

		sessions[i] = domain.PlannedSession{
			DayIndex:    day.DayIndex,
			DayType:     day.DayType,
			SessionType: st,
			Distance:    day.Distance,
			Template:    &tpl,
		}
	}
	return sessions, nil
}

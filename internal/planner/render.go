package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/alexanderramin/tempo/internal/vectorindex"
)

// MetaPhilosophy is the metadata key holding a document's namespace.
const MetaPhilosophy = "philosophy"

// Indexes holds the embedded corpus. Built once, read concurrently.
type Indexes struct {
	Philosophies *vectorindex.Index
	Structures   *vectorindex.Index
	Templates    *vectorindex.Index
}

// BuildIndexes embeds the canonical rendering of every corpus document.
func BuildIndexes(ctx context.Context, c *corpus.Corpus, embedder llm.Embedder) (*Indexes, error) {
	var items []vectorindex.Item
	for _, p := range c.Philosophies() {
		items = append(items, vectorindex.Item{ID: p.ID, Text: PhilosophyText(p), Meta: map[string]string{MetaPhilosophy: p.ID}})
	}
	philosophies, err := vectorindex.Build(ctx, embedder, items)
	if err != nil {
		return nil, fmt.Errorf("philosophy index: %w", err)
	}

	items = items[:0]
	for _, s := range c.Structures() {
		items = append(items, vectorindex.Item{ID: s.ID, Text: StructureText(s), Meta: map[string]string{MetaPhilosophy: s.PhilosophyID}})
	}
	structures, err := vectorindex.Build(ctx, embedder, items)
	if err != nil {
		return nil, fmt.Errorf("structure index: %w", err)
	}

	items = items[:0]
	for _, t := range c.Templates() {
		items = append(items, vectorindex.Item{ID: t.ID, Text: TemplateText(t), Meta: map[string]string{MetaPhilosophy: t.PhilosophyID}})
	}
	templates, err := vectorindex.Build(ctx, embedder, items)
	if err != nil {
		return nil, fmt.Errorf("template index: %w", err)
	}

	return &Indexes{Philosophies: philosophies, Structures: structures, Templates: templates}, nil
}

// PhilosophyText is the canonical rendering embedded for a philosophy.
func PhilosophyText(p domain.Philosophy) string {
	return strings.Join([]string{
		"domain=" + string(p.Domain),
		"race_distance=" + strings.Join(p.RaceDistances, " "),
		"audience=" + joinAudiences(p.Audiences),
		"philosophy=" + p.ID,
		p.Description,
	}, " ")
}

// PhilosophyQuery is the canonical query for semantic philosophy selection.
func PhilosophyQuery(d domain.TrainingDomain, raceDistance string, a domain.Audience, intent string) string {
	return fmt.Sprintf("domain=%s race_distance=%s audience=%s intent=%s", d, raceDistance, a, intent)
}

// StructureText is the canonical rendering embedded for a week structure.
func StructureText(s domain.WeekStructure) string {
	days := make([]string, len(s.Days))
	for i, d := range s.Days {
		days[i] = string(d.Type)
	}
	return strings.Join([]string{
		"philosophy=" + s.PhilosophyID,
		"phase=" + string(s.Phase),
		"race_distance=" + strings.Join(s.RaceDistances, " "),
		"audience=" + joinAudiences(s.Audiences),
		"days_to_race=" + s.DaysToRace.String(),
		"days=" + strings.Join(days, " "),
		s.Description,
	}, " ")
}

// StructureQuery is the canonical query for semantic structure resolution.
func StructureQuery(req StructureRequest) string {
	dtr := "season"
	if req.DaysToRace != domain.SeasonDaysToRace {
		dtr = fmt.Sprint(req.DaysToRace)
	}
	return fmt.Sprintf("philosophy=%s phase=%s race_distance=%s audience=%s days_to_race=%s",
		req.PhilosophyID, req.Phase, req.RaceDistance, req.Audience, dtr)
}

// TemplateText is the canonical rendering embedded for a session template.
func TemplateText(t domain.SessionTemplate) string {
	params := make([]string, 0, len(t.Params))
	for k := range t.Params {
		params = append(params, k)
	}
	sort.Strings(params)
	return strings.Join([]string{
		"session_type=" + strings.Join(t.SessionTypes, " "),
		"kind=" + string(t.Kind),
		"philosophy=" + t.PhilosophyID,
		t.DescriptionKey,
		strings.Join(t.Tags, " "),
		strings.Join(params, " "),
		t.Description,
	}, " ")
}

// TemplateQuery is the canonical query for template selection.
func TemplateQuery(d domain.TrainingDomain, sessionType, raceDistance string, phase domain.Focus, philosophyID string) string {
	return fmt.Sprintf("domain=%s session_type=%s race_distance=%s phase=%s philosophy=%s",
		d, sessionType, raceDistance, phase, philosophyID)
}

func joinAudiences(as []domain.Audience) string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = string(a)
	}
	return strings.Join(out, " ")
}

// inNamespace accepts index entries belonging to philosophyID.
func inNamespace(philosophyID string) func(vectorindex.Entry) bool {
	return func(e vectorindex.Entry) bool {
		return e.Meta[MetaPhilosophy] == philosophyID
	}
}

// inNamespaceOrShared also accepts shared entries.
func inNamespaceOrShared(philosophyID string) func(vectorindex.Entry) bool {
	return func(e vectorindex.Entry) bool {
		ns := e.Meta[MetaPhilosophy]
		return ns == philosophyID || ns == ""
	}
}

package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
)

// FormatCorpus lists every philosophy, structure and template in c.
func FormatCorpus(c *corpus.Corpus) string {
	var b strings.Builder

	b.WriteString(Header(fmt.Sprintf("Philosophies (%d)", len(c.Philosophies()))))
	b.WriteString("\n")
	var rows [][]string
	for _, p := range c.Philosophies() {
		rows = append(rows, []string{
			Bold(p.ID), string(p.Domain), p.Version, strconv.Itoa(p.Priority),
			strings.Join(p.RaceDistances, ","), audiences(p.Audiences),
		})
	}
	b.WriteString(RenderTable([]string{"ID", "DOMAIN", "VERSION", "PRIORITY", "DISTANCES", "AUDIENCE"}, rows))

	b.WriteString("\n")
	b.WriteString(Header(fmt.Sprintf("Week structures (%d)", len(c.Structures()))))
	b.WriteString("\n")
	rows = nil
	for _, s := range c.Structures() {
		rows = append(rows, []string{
			Bold(s.ID), s.PhilosophyID, FocusStyle(s.Phase).Render(string(s.Phase)),
			daysToRace(s.DaysToRace), strconv.Itoa(s.Priority), layout(s.Days),
		})
	}
	b.WriteString(RenderTable([]string{"ID", "PHILOSOPHY", "PHASE", "DAYS TO RACE", "PRIORITY", "LAYOUT"}, rows))

	b.WriteString("\n")
	b.WriteString(Header(fmt.Sprintf("Session templates (%d)", len(c.Templates()))))
	b.WriteString("\n")
	rows = nil
	for _, t := range c.Templates() {
		ns := t.PhilosophyID
		if ns == "" {
			ns = Dim("shared")
		}
		rows = append(rows, []string{Bold(t.ID), ns, string(t.Kind), strings.Join(t.SessionTypes, ",")})
	}
	b.WriteString(RenderTable([]string{"ID", "PHILOSOPHY", "KIND", "SESSION TYPES"}, rows))
	return b.String()
}

// FormatValidation renders a corpus validation report.
func FormatValidation(errs []error) string {
	if len(errs) == 0 {
		return StyleGreen.Render("✔ corpus is valid") + "\n"
	}
	var b strings.Builder
	b.WriteString(StyleRed.Render(fmt.Sprintf("✖ %d invalid document(s)", len(errs))))
	b.WriteString("\n")
	for _, err := range errs {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func audiences(as []domain.Audience) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

func daysToRace(r domain.DayRange) string {
	switch {
	case r.Unbounded():
		return Dim("any")
	case r.Max == nil:
		return fmt.Sprintf("≥%d", r.Min)
	default:
		return r.String()
	}
}

// layout abbreviates a week's day types, e.g. "R H E H E E L".
func layout(days []domain.StructureDay) string {
	parts := make([]string, len(days))
	for i, d := range days {
		t := strings.ToUpper(string(d.Type))
		if t == "" {
			t = "?"
		}
		parts[i] = t[:1]
	}
	return strings.Join(parts, " ")
}

package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

const volumeBarWidth = 20

var weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// FormatPlanResult renders a generated plan: the persistence summary, a
// weekly volume chart and, with sessions set, every week's sessions.
func FormatPlanResult(resp *app.GeneratePlanResponse, sessions bool) string {
	var b strings.Builder
	r := resp.Result

	status := StyleGreen.Render("✔ persisted")
	if !r.Success {
		status = StyleYellow.Render("⚠ partially persisted")
	}
	summary := []string{
		fmt.Sprintf("%s  %s", Dim("Plan      "), Bold(r.PlanID)),
		fmt.Sprintf("%s  %s (%s, %s)", Dim("Philosophy"), resp.Philosophy.PhilosophyID, resp.Philosophy.Domain, resp.Philosophy.Audience),
		fmt.Sprintf("%s  %d", Dim("Weeks     "), resp.TotalWeeks),
		fmt.Sprintf("%s  %d created, %d updated, %d skipped", Dim("Sessions  "), r.Created, r.Updated, r.Skipped),
		fmt.Sprintf("%s  %s", Dim("Status    "), status),
	}
	b.WriteString(RenderBox("training plan", strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	b.WriteString(Header("Weekly volume"))
	b.WriteString("\n")
	b.WriteString(formatMacroWeeks(resp.MacroWeeks, resp.Weeks))

	if sessions {
		for _, w := range resp.Weeks {
			b.WriteString("\n")
			b.WriteString(Header(fmt.Sprintf("Week %d · %s", w.Week, w.Focus)))
			b.WriteString("\n")
			b.WriteString(formatWeekSessions(w))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Warnings"))
		b.WriteString("\n")
		for _, w := range r.Warnings {
			b.WriteString(StyleYellow.Render("  ⚠ " + w))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatMacroWeeks(macro []domain.MacroWeek, weeks []domain.PlannedWeek) string {
	var peak float64
	for _, m := range macro {
		peak = max(peak, m.TotalDistance)
	}
	structures := make(map[int]string, len(weeks))
	for _, w := range weeks {
		structures[w.Week] = w.StructureID
	}

	rows := make([][]string, len(macro))
	for i, m := range macro {
		style := FocusStyle(m.Focus)
		rows[i] = []string{
			strconv.Itoa(m.Week),
			style.Render(string(m.Focus)),
			Dim(structures[m.Week]),
			RenderVolumeBar(m.TotalDistance, peak, volumeBarWidth, func(s string) string { return style.Render(s) }),
		}
	}
	return RenderTable([]string{"WEEK", "FOCUS", "STRUCTURE", "VOLUME"}, rows)
}

func formatWeekSessions(w domain.PlannedWeek) string {
	rows := make([][]string, 0, len(w.Sessions))
	for _, s := range w.Sessions {
		title, source, duration := string(s.DayType), "", "-"
		if s.Text != nil {
			title = s.Text.Title
			source = SourceBadge(s.Text.Source)
			duration = Minutes(s.Text.Metrics.DurationMin)
		}
		rows = append(rows, []string{weekdayName(s.DayIndex), string(s.DayType), Miles(s.Distance), duration, title, source})
	}
	return RenderTable([]string{"DAY", "TYPE", "DISTANCE", "TIME", "SESSION", "SOURCE"}, rows)
}

// FormatPlanSessions renders persisted calendar rows grouped by week.
func FormatPlanSessions(sessions []*domain.CalendarSession) string {
	if len(sessions) == 0 {
		return Dim("No sessions.") + "\n"
	}
	var b strings.Builder
	var rows [][]string
	week := sessions[0].WeekNumber
	var total float64
	flush := func(phase domain.Focus) {
		b.WriteString(Header(fmt.Sprintf("Week %d · %s · %.1f mi", week, phase, total)))
		b.WriteString("\n")
		b.WriteString(RenderTable([]string{"DATE", "SESSION", "DISTANCE", "TIME", "INTENSITY", "SOURCE"}, rows))
		b.WriteString("\n")
		rows, total = nil, 0
	}

	phase := sessions[0].Phase
	for _, s := range sessions {
		if s.WeekNumber != week {
			flush(phase)
			week, phase = s.WeekNumber, s.Phase
		}
		total += s.DistanceMi
		rows = append(rows, []string{
			DayLabel(s.Date),
			s.Title,
			Miles(s.DistanceMi),
			Minutes(s.DurationMin),
			IntensityStyle(s.Intensity).Render(orDash(s.Intensity)),
			SourceBadge(s.Source),
		})
	}
	flush(phase)
	return b.String()
}

// FormatPlanList renders the plans stored for one athlete.
func FormatPlanList(plans []repository.PlanSummary) string {
	if len(plans) == 0 {
		return Dim("No plans yet. Run 'tempo plan generate' to create one.") + "\n"
	}
	rows := make([][]string, len(plans))
	for i, p := range plans {
		rows[i] = []string{
			Bold(p.PlanID),
			p.FirstDate.Format(repository.DateLayout),
			p.LastDate.Format(repository.DateLayout),
			strconv.Itoa(p.Sessions),
			fmt.Sprintf("%.1f mi", p.TotalDistanceMi),
		}
	}
	return RenderTable([]string{"PLAN", "FIRST", "LAST", "SESSIONS", "VOLUME"}, rows)
}

func weekdayName(day int) string {
	if day < 0 || day >= len(weekdays) {
		return strconv.Itoa(day)
	}
	return weekdays[day]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

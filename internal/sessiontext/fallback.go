package sessiontext

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// Paces in minutes per mile used when a template declares none.
const (
	defaultEasyPace     = 10.0
	defaultRecoveryPace = 11.0
	defaultTempoPace    = 8.0
	defaultIntervalPace = 7.0
)

// RestText is attached to rest days and days allocated no distance.
func RestText() domain.SessionTextOutput {
	return domain.SessionTextOutput{
		Title:       "Rest day",
		Description: "No running today. Light mobility or an easy walk is fine.",
		Metrics:     domain.SessionMetrics{IntensityMinutes: map[string]float64{}},
		Source:      domain.SourceRest,
	}
}

// Fallback derives session text mechanically from the template kind and
// the allocated distance. The result always passes Validate for the same
// template and distance.
func Fallback(tpl domain.SessionTemplate, s domain.PlannedSession, phase domain.Focus) domain.SessionTextOutput {
	total := max(domain.Tenths(s.Distance), 0)
	if domain.FromTenths(total) > s.Distance {
		total--
	}
	easy := tpl.Param("pace_min_per_mi", defaultEasyPace)

	var title string
	var steps []domain.SessionStep
	switch tpl.Kind {
	case domain.KindInterval:
		title, steps = intervalSession(tpl, total, easy)
	case domain.KindTempo:
		title, steps = tempoSession(tpl, total, easy)
	case domain.KindLong:
		title = "Long run"
		steps = aerobicSteps(total, easy, "Settle into a steady, conversational effort")
	case domain.KindEasy:
		title = "Easy run"
		steps = aerobicSteps(total, easy, "Comfortable aerobic running")
	case domain.KindRecovery:
		title = "Recovery run"
		steps = aerobicSteps(total, tpl.Param("pace_min_per_mi", defaultRecoveryPace), "Very easy, short relaxed stride")
	default:
		title = "Steady run"
		steps = aerobicSteps(total, easy, "Even aerobic effort")
	}
	steps = capMinutes(steps, tpl.Constraints)

	return domain.SessionTextOutput{
		Title:       fmt.Sprintf("%s, %.1f mi", title, domain.FromTenths(total)),
		Description: describe(tpl, phase, total),
		Structure:   steps,
		Metrics:     Metrics(steps),
		Source:      domain.SourceFallback,
	}
}

func intervalSession(tpl domain.SessionTemplate, total int64, easy float64) (string, []domain.SessionStep) {
	reps := int(tpl.Param("reps", 5))
	repMin := tpl.Param("rep_minutes", 3)
	recMin := tpl.Param("recovery_minutes", 2)
	pace := tpl.Param("interval_pace_min_per_mi", defaultIntervalPace)
	if limit := hardLimit(tpl.Constraints); limit > 0 && repMin > 0 && float64(reps)*repMin > limit {
		reps = int(limit / repMin)
	}
	reps = max(reps, 1)

	w, m, c := split(total, 20, 15, 15, 10)
	hardMin := float64(reps) * repMin
	hardT := domain.Tenths(hardMin / pace)
	if hardT > m {
		hardT = m
		hardMin = domain.FromTenths(m) * pace
	}

	steps := []domain.SessionStep{warmup(w, easy)}
	steps = append(steps, domain.SessionStep{
		Segment:     domain.SegmentMain,
		Description: fmt.Sprintf("%d x %s min at interval pace", reps, num(repMin)),
		DistanceMi:  domain.FromTenths(hardT),
		DurationMin: roundTenth(hardMin),
		Intensity:   domain.BucketHard,
	})
	if rest := m - hardT; rest > 0 {
		steps = append(steps, step(domain.SegmentMain, fmt.Sprintf("%s min easy jog between reps", num(recMin)), rest, easy, domain.BucketEasy))
	}
	steps = append(steps, cooldown(c, easy))
	return fmt.Sprintf("Intervals %d x %s min", reps, num(repMin)), compact(steps)
}

func tempoSession(tpl domain.SessionTemplate, total int64, easy float64) (string, []domain.SessionStep) {
	tempoMin := tpl.Param("tempo_minutes", 20)
	pace := tpl.Param("tempo_pace_min_per_mi", defaultTempoPace)
	if limit := hardLimit(tpl.Constraints); limit > 0 && tempoMin > limit {
		tempoMin = limit
	}

	w, m, c := split(total, 20, 15, 15, 10)
	tempoT := domain.Tenths(tempoMin / pace)
	if tempoT > m {
		tempoT = m
		tempoMin = domain.FromTenths(m) * pace
	}

	steps := []domain.SessionStep{warmup(w, easy)}
	steps = append(steps, domain.SessionStep{
		Segment:     domain.SegmentMain,
		Description: fmt.Sprintf("%s min continuous at threshold pace", num(roundTenth(tempoMin))),
		DistanceMi:  domain.FromTenths(tempoT),
		DurationMin: roundTenth(tempoMin),
		Intensity:   domain.BucketHard,
	})
	if rest := m - tempoT; rest > 0 {
		steps = append(steps, step(domain.SegmentMain, "Steady aerobic running after the tempo", rest, easy, domain.BucketEasy))
	}
	steps = append(steps, cooldown(c, easy))
	return "Tempo run", compact(steps)
}

func aerobicSteps(total int64, pace float64, main string) []domain.SessionStep {
	w, m, c := split(total, 10, 10, 10, 10)
	return compact([]domain.SessionStep{
		warmup(w, pace),
		step(domain.SegmentMain, main, m, pace, domain.BucketEasy),
		cooldown(c, pace),
	})
}

// split divides total tenths into warmup, main and cooldown. Warmup and
// cooldown take a percentage of total, each capped in tenths; main takes
// the remainder so the parts always sum to total.
func split(total, warmPct, coolPct, warmMax, coolMax int64) (w, m, c int64) {
	w = min(total*warmPct/100, warmMax)
	c = min(total*coolPct/100, coolMax)
	return w, total - w - c, c
}

func warmup(tenths int64, pace float64) domain.SessionStep {
	return step(domain.SegmentWarmup, "Easy running to warm up", tenths, pace, domain.BucketEasy)
}

func cooldown(tenths int64, pace float64) domain.SessionStep {
	return step(domain.SegmentCooldown, "Easy running to cool down", tenths, pace, domain.BucketEasy)
}

func step(seg domain.Segment, desc string, tenths int64, pace float64, intensity string) domain.SessionStep {
	return domain.SessionStep{
		Segment:     seg,
		Description: desc,
		DistanceMi:  domain.FromTenths(tenths),
		DurationMin: roundTenth(domain.FromTenths(tenths) * pace),
		Intensity:   intensity,
	}
}

// compact drops zero-distance warmup and cooldown steps. Main steps stay.
func compact(steps []domain.SessionStep) []domain.SessionStep {
	out := steps[:0]
	for _, s := range steps {
		if s.Segment != domain.SegmentMain && s.DistanceMi == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// hardLimit is the tighter of the template's hard-minute ceilings, or 0.
func hardLimit(c domain.TemplateConstraints) float64 {
	limit := c.MaxHardMinutes
	if b, ok := c.MaxIntensityMinutes[domain.BucketHard]; ok && b > 0 && (limit <= 0 || b < limit) {
		limit = b
	}
	return limit
}

// capMinutes scales step durations down so every bucket ceiling holds.
func capMinutes(steps []domain.SessionStep, c domain.TemplateConstraints) []domain.SessionStep {
	limits := maps.Clone(c.MaxIntensityMinutes)
	if c.MaxHardMinutes > 0 {
		if limits == nil {
			limits = make(map[string]float64)
		}
		if cur, ok := limits[domain.BucketHard]; !ok || c.MaxHardMinutes < cur {
			limits[domain.BucketHard] = c.MaxHardMinutes
		}
	}
	for bucket, limit := range limits {
		var sum float64
		for _, s := range steps {
			if s.Intensity == bucket {
				sum += s.DurationMin
			}
		}
		if sum <= limit {
			continue
		}
		factor := max(limit, 0) / sum
		for i := range steps {
			if steps[i].Intensity == bucket {
				steps[i].DurationMin = math.Floor(steps[i].DurationMin*factor*10) / 10
			}
		}
	}
	return steps
}

func describe(tpl domain.SessionTemplate, phase domain.Focus, total int64) string {
	base := strings.TrimSpace(tpl.Description)
	if base == "" {
		base = "Run the session as written."
	}
	if phase == "" {
		return fmt.Sprintf("%s Total %.1f mi.", base, domain.FromTenths(total))
	}
	return fmt.Sprintf("%s Total %.1f mi, %s phase.", base, domain.FromTenths(total), phase)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

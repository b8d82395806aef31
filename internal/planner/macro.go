package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
)

// TaperFraction is the share of volume kept when a race plan's last week
// is forced to taper.
const TaperFraction = 0.6

// MacroPlanner lays out week-level focus and volume with one provider call.
type MacroPlanner struct {
	client llm.LLMClient
}

func NewMacroPlanner(client llm.LLMClient) *MacroPlanner {
	return &MacroPlanner{client: client}
}

type macroPlanDoc struct {
	Weeks        []macroWeekDoc `json:"weeks"`
	Intent       string         `json:"intent"`
	RaceDistance string         `json:"race_distance"`
}

type macroWeekDoc struct {
	Week          int     `json:"week"`
	Focus         string  `json:"focus"`
	TotalDistance float64 `json:"total_distance"`
}

type macroRequest struct {
	Kind           domain.PlanKind `json:"kind"`
	Weeks          int             `json:"weeks"`
	Intent         string          `json:"intent"`
	RaceDistance   string          `json:"race_distance"`
	RaceDate       string          `json:"race_date,omitempty"`
	Fitness        float64         `json:"fitness"`
	Fatigue        float64         `json:"fatigue"`
	Form           float64         `json:"form"`
	WeeklyVolumeMi float64         `json:"weekly_volume_mi"`
	LongestRunMi   float64         `json:"longest_run_mi"`
	Flags          []string        `json:"flags"`
}

// Plan returns exactly pctx.Weeks macro weeks. The provider is called once
// with retries disabled; any failure is a generation error.
func (p *MacroPlanner) Plan(ctx context.Context, pctx domain.PlanContext, athlete domain.AthleteState) ([]domain.MacroWeek, error) {
	req := macroRequest{
		Kind:           pctx.Kind,
		Weeks:          pctx.Weeks,
		Intent:         pctx.Intent,
		RaceDistance:   pctx.RaceDistance,
		Fitness:        athlete.Fitness,
		Fatigue:        athlete.Fatigue,
		Form:           athlete.Form,
		WeeklyVolumeMi: athlete.WeeklyVolumeMi,
		LongestRunMi:   athlete.LongestRunMi,
		Flags:          athlete.Flags,
	}
	if pctx.TargetDate != nil {
		req.RaceDate = pctx.TargetDate.Format("2006-01-02")
	}
	reqJSON, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, app.Wrap(app.ErrGeneration, err, "encoding macro request")
	}

	noRetry := 0
	resp, err := p.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskMacroPlan,
		SystemPrompt: macroSystemPrompt,
		UserPrompt:   "Plan request:\n\n" + string(reqJSON),
		Format:       json.RawMessage(macroSchema),
		MaxRetries:   &noRetry,
	})
	if err != nil {
		return nil, app.Wrap(app.ErrGeneration, err, "macro plan provider call")
	}

	doc, err := llm.ExtractJSON(resp.Text, macroValidator(pctx))
	if err != nil {
		return nil, app.Wrap(app.ErrGeneration, err, "macro plan output")
	}

	weeks := make([]domain.MacroWeek, len(doc.Weeks))
	for i, w := range doc.Weeks {
		weeks[i] = domain.MacroWeek{
			Week:          w.Week,
			Focus:         domain.Focus(w.Focus),
			TotalDistance: domain.Round1(w.TotalDistance),
		}
	}
	if pctx.IsRace() {
		weeks = ForceTaper(weeks)
	}
	return weeks, nil
}

// macroValidator checks the provider's plan against the request it echoes.
func macroValidator(pctx domain.PlanContext) llm.SchemaValidator[macroPlanDoc] {
	return func(doc macroPlanDoc) error {
		if len(doc.Weeks) != pctx.Weeks {
			return fmt.Errorf("got %d weeks, want %d", len(doc.Weeks), pctx.Weeks)
		}
		for i, w := range doc.Weeks {
			if w.Week != i+1 {
				return fmt.Errorf("weeks[%d]: index %d, want %d", i, w.Week, i+1)
			}
			if !domain.ValidFocuses[w.Focus] {
				return fmt.Errorf("week %d: unknown focus %q", w.Week, w.Focus)
			}
			if w.TotalDistance <= 0 {
				return fmt.Errorf("week %d: total_distance must be > 0, got %g", w.Week, w.TotalDistance)
			}
			if domain.Round1(w.TotalDistance) <= 0 {
				return fmt.Errorf("week %d: total_distance %g rounds to zero", w.Week, w.TotalDistance)
			}
		}
		if doc.Intent != pctx.Intent {
			return fmt.Errorf("intent %q does not echo request %q", doc.Intent, pctx.Intent)
		}
		if domain.NormalizeDistance(doc.RaceDistance) != domain.NormalizeDistance(pctx.RaceDistance) {
			return fmt.Errorf("race_distance %q does not echo request %q", doc.RaceDistance, pctx.RaceDistance)
		}
		return nil
	}
}

// ForceTaper replaces a race plan's final week with a taper week at
// TaperFraction of its volume unless it is already taper or recovery.
// The input is not modified.
func ForceTaper(weeks []domain.MacroWeek) []domain.MacroWeek {
	if len(weeks) == 0 {
		return weeks
	}
	last := weeks[len(weeks)-1]
	if last.Focus.IsTaperOrRecovery() {
		return weeks
	}
	out := make([]domain.MacroWeek, len(weeks))
	copy(out, weeks)
	taper := domain.Round1(last.TotalDistance * TaperFraction)
	if taper <= 0 {
		taper = 0.1
	}
	out[len(out)-1] = domain.MacroWeek{Week: last.Week, Focus: domain.FocusTaper, TotalDistance: taper}
	return out
}

package planner

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raceContext(weeks int, distance string) domain.PlanContext {
	race := time.Date(2027, 4, 18, 0, 0, 0, 0, time.UTC)
	return domain.PlanContext{
		Kind:         domain.PlanRace,
		Intent:       "race",
		Weeks:        weeks,
		RaceDistance: distance,
		TargetDate:   &race,
	}
}

func TestMacroPlanner_WeekCountAndTaper(t *testing.T) {
	for _, n := range []int{1, 4, 12, 16, 24} {
		pctx := raceContext(n, domain.DistanceMarathon)
		weeks := testutil.ProgressiveWeeks(n, 30, domain.FocusBuild)
		client := testutil.NewScriptedLLM(testutil.MacroPlanJSON("race", domain.DistanceMarathon, weeks))

		got, err := NewMacroPlanner(client).Plan(context.Background(), pctx, domain.AthleteState{})
		require.NoError(t, err, "weeks=%d", n)

		require.Len(t, got, n)
		for i, w := range got {
			assert.Equal(t, i+1, w.Week)
			assert.Greater(t, w.TotalDistance, 0.0)
		}
		assert.True(t, got[n-1].Focus.IsTaperOrRecovery(), "weeks=%d ends in %s", n, got[n-1].Focus)
	}
}

func TestMacroPlanner_ForcedTaperVolume(t *testing.T) {
	pctx := raceContext(3, domain.DistanceHalfMarathon)
	weeks := []domain.MacroWeek{
		{Week: 1, Focus: domain.FocusBuild, TotalDistance: 30},
		{Week: 2, Focus: domain.FocusBuild, TotalDistance: 33},
		{Week: 3, Focus: domain.FocusSpecific, TotalDistance: 35.5},
	}
	client := testutil.NewScriptedLLM(testutil.MacroPlanJSON("race", "half", weeks))

	got, err := NewMacroPlanner(client).Plan(context.Background(), pctx, domain.AthleteState{})
	require.NoError(t, err)

	assert.Equal(t, domain.MacroWeek{Week: 3, Focus: domain.FocusTaper, TotalDistance: 21.3}, got[2])
	assert.Equal(t, weeks[:2], got[:2])
}

func TestMacroPlanner_RecoveryFinalWeekKept(t *testing.T) {
	pctx := raceContext(2, domain.Distance10K)
	weeks := []domain.MacroWeek{
		{Week: 1, Focus: domain.FocusBuild, TotalDistance: 25},
		{Week: 2, Focus: domain.FocusRecovery, TotalDistance: 20},
	}
	client := testutil.NewScriptedLLM(testutil.MacroPlanJSON("race", domain.Distance10K, weeks))

	got, err := NewMacroPlanner(client).Plan(context.Background(), pctx, domain.AthleteState{})
	require.NoError(t, err)
	assert.Equal(t, weeks, got)
}

func TestMacroPlanner_SeasonPlanNotTapered(t *testing.T) {
	pctx := domain.PlanContext{Kind: domain.PlanSeason, Intent: "base building", Weeks: 4}
	weeks := testutil.ProgressiveWeeks(4, 20, domain.FocusBuild)
	client := testutil.NewScriptedLLM(testutil.MacroPlanJSON("base building", "", weeks))

	got, err := NewMacroPlanner(client).Plan(context.Background(), pctx, domain.AthleteState{})
	require.NoError(t, err)
	assert.Equal(t, domain.FocusBuild, got[3].Focus)
}

func TestMacroPlanner_SingleCallNoRetry(t *testing.T) {
	pctx := raceContext(4, domain.DistanceMarathon)
	client := testutil.NewScriptedLLM(`{"weeks": [], "intent": "race", "race_distance": "marathon"}`)

	_, err := NewMacroPlanner(client).Plan(context.Background(), pctx, domain.AthleteState{WeeklyVolumeMi: 30})
	require.Error(t, err)

	assert.Equal(t, 1, client.Calls(llm.TaskMacroPlan))
	req := client.Requests()[0]
	require.NotNil(t, req.MaxRetries)
	assert.Equal(t, 0, *req.MaxRetries)
	assert.Contains(t, req.UserPrompt, `"weekly_volume_mi": 30`)
	assert.Contains(t, req.UserPrompt, `"race_date": "2027-04-18"`)
}

func TestMacroPlanner_ValidationFailures(t *testing.T) {
	pctx := raceContext(2, domain.DistanceMarathon)
	good := []domain.MacroWeek{
		{Week: 1, Focus: domain.FocusBuild, TotalDistance: 30},
		{Week: 2, Focus: domain.FocusTaper, TotalDistance: 20},
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"wrong count", testutil.MacroPlanJSON("race", "marathon", good[:1]), "got 1 weeks, want 2"},
		{"not sequential", testutil.MacroPlanJSON("race", "marathon", []domain.MacroWeek{good[0], {Week: 3, Focus: domain.FocusTaper, TotalDistance: 20}}), "index 3, want 2"},
		{"zero distance", testutil.MacroPlanJSON("race", "marathon", []domain.MacroWeek{good[0], {Week: 2, Focus: domain.FocusTaper}}), "must be > 0"},
		{"unknown focus", testutil.MacroPlanJSON("race", "marathon", []domain.MacroWeek{good[0], {Week: 2, Focus: "party", TotalDistance: 5}}), `unknown focus "party"`},
		{"invented intent", testutil.MacroPlanJSON("fun run", "marathon", good), "does not echo"},
		{"invented distance", testutil.MacroPlanJSON("race", "50k", good), "does not echo"},
		{"not json", "I cannot help with that.", "no JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testutil.NewScriptedLLM(tt.text)
			_, err := NewMacroPlanner(client).Plan(context.Background(), pctx, domain.AthleteState{})
			require.Error(t, err)
			assert.True(t, app.IsKind(err, app.ErrGeneration))
			assert.ErrorIs(t, err, llm.ErrInvalidOutput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMacroPlanner_ProviderOutage(t *testing.T) {
	client := &testutil.ScriptedLLM{Respond: func(llm.GenerateRequest) (string, error) {
		return "", llm.ErrProviderUnavailable
	}}
	_, err := NewMacroPlanner(client).Plan(context.Background(), raceContext(2, "marathon"), domain.AthleteState{})
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.ErrGeneration))
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)
	assert.Equal(t, 1, client.Calls(""))
}

func TestForceTaper_DoesNotMutateInput(t *testing.T) {
	in := []domain.MacroWeek{{Week: 1, Focus: domain.FocusBuild, TotalDistance: 10}}
	out := ForceTaper(in)
	assert.Equal(t, domain.FocusBuild, in[0].Focus)
	assert.Equal(t, domain.MacroWeek{Week: 1, Focus: domain.FocusTaper, TotalDistance: 6}, out[0])
}

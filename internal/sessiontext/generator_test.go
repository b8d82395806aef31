package sessiontext

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intervalJSON answers with a warmup mile plus the rest of total as hard reps.
func intervalJSON(total, hardMinutes float64) string {
	return fmt.Sprintf(`{"title":"VO2 repeats","description":"Five hard reps with jog recoveries.","structure":[`+
		`{"segment":"warmup","description":"easy","distance_mi":1,"duration_min":10,"intensity":"easy"},`+
		`{"segment":"main","description":"reps","distance_mi":%.1f,"duration_min":%.1f,"intensity":"hard"}]}`,
		total-1, hardMinutes)
}

const easyJSON = `{"title":"Easy","description":"Relaxed miles.","structure":[` +
	`{"segment":"main","description":"easy","distance_mi":1,"duration_min":10,"intensity":"easy"}]}`

func planWeek(n int, focus domain.Focus, sessions ...domain.PlannedSession) domain.PlannedWeek {
	return domain.PlannedWeek{Week: n, Focus: focus, StructureID: "s", Sessions: sessions}
}

func session(day int, dt domain.DayType, dist float64, tpl domain.SessionTemplate) domain.PlannedSession {
	return domain.PlannedSession{DayIndex: day, DayType: dt, SessionType: "intervals", Distance: dist, Template: &tpl}
}

func TestGenerate_ProviderOutputCachedWithSource(t *testing.T) {
	tpl := templateByID(t, "vo2-intervals")
	client := testutil.NewScriptedLLM(intervalJSON(6.0, 15))
	g := NewGenerator(client, NewCache(time.Hour), NewLimiter(2), nil)

	weeks := []domain.PlannedWeek{planWeek(1, domain.FocusBuild, session(1, domain.DayHard, 6.0, tpl))}
	out, st, err := g.Generate(context.Background(), weeks)
	require.NoError(t, err)

	text := out[0].Sessions[0].Text
	require.NotNil(t, text)
	assert.Equal(t, domain.SourceProvider, text.Source)
	assert.Equal(t, "VO2 repeats", text.Title)
	assert.InDelta(t, 15.0, text.Metrics.HardMinutes, 1e-9)
	assert.Equal(t, Stats{Sessions: 1, Provider: 1, ProviderCalls: 1}, st)

	// Week 3 at 6.2 mi shares the cache bucket of week 1 at 6.0 mi.
	again := []domain.PlannedWeek{planWeek(3, domain.FocusBuild, session(1, domain.DayHard, 6.2, tpl))}
	out, st, err = g.Generate(context.Background(), again)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CacheHits)
	assert.Equal(t, "VO2 repeats", out[0].Sessions[0].Text.Title)
	assert.Equal(t, 1, client.Calls(llm.TaskSessionText))
}

func TestGenerate_CachedTextLongerThanAllocationIsRegenerated(t *testing.T) {
	tpl := templateByID(t, "vo2-intervals")
	client := testutil.NewScriptedLLM(intervalJSON(6.0, 15))
	g := NewGenerator(client, NewCache(time.Hour), NewLimiter(2), nil)

	_, _, err := g.Generate(context.Background(), []domain.PlannedWeek{
		planWeek(1, domain.FocusBuild, session(1, domain.DayHard, 6.0, tpl)),
	})
	require.NoError(t, err)

	// 5.8 mi falls in the 6.0 bucket, but the cached 6.0 mi text overshoots it.
	out, st, err := g.Generate(context.Background(), []domain.PlannedWeek{
		planWeek(2, domain.FocusBuild, session(1, domain.DayHard, 5.8, tpl)),
	})
	require.NoError(t, err)

	text := out[0].Sessions[0].Text
	assert.Zero(t, st.CacheHits)
	assert.Equal(t, domain.SourceFallback, text.Source)
	assert.LessOrEqual(t, text.Metrics.TotalDistanceMi, 5.8+DistanceEpsilon)
	assert.Equal(t, 3, client.Calls(llm.TaskSessionText))
}

func TestGenerate_RestDaysSkipProvider(t *testing.T) {
	client := testutil.NewScriptedLLM(easyJSON)
	g := NewGenerator(client, nil, nil, nil)
	tpl := templateByID(t, "rest-day")

	weeks := []domain.PlannedWeek{planWeek(1, domain.FocusBase,
		session(0, domain.DayRest, 0, tpl),
		session(3, domain.DayEasy, 0, tpl),
	)}
	out, st, err := g.Generate(context.Background(), weeks)
	require.NoError(t, err)
	for _, s := range out[0].Sessions {
		assert.Equal(t, domain.SourceRest, s.Text.Source)
	}
	assert.Equal(t, 2, st.Rest)
	assert.Zero(t, client.Calls(""))
}

// Scenario C: the provider overshoots the allocation on both attempts.
func TestGenerate_DistanceOvershootFallsBack(t *testing.T) {
	tpl := templateByID(t, "vo2-intervals")
	client := testutil.NewScriptedLLM(intervalJSON(8.0, 15))
	g := NewGenerator(client, nil, nil, nil)

	weeks := []domain.PlannedWeek{planWeek(2, domain.FocusBuild, session(1, domain.DayHard, 6.0, tpl))}
	out, st, err := g.Generate(context.Background(), weeks)
	require.NoError(t, err)

	text := out[0].Sessions[0].Text
	assert.Equal(t, domain.SourceFallback, text.Source)
	assert.LessOrEqual(t, text.Metrics.TotalDistanceMi, 6.0+DistanceEpsilon)
	assert.LessOrEqual(t, text.Metrics.HardMinutes, 20.0)
	assert.Equal(t, 2, client.Calls(llm.TaskSessionText), "invalid output is retried once")
	assert.Equal(t, 1, st.Fallback)
}

func TestGenerate_HardMinutesOverCeilingFallsBack(t *testing.T) {
	tpl := templateByID(t, "vo2-intervals")
	client := testutil.NewScriptedLLM(intervalJSON(6.0, 32))
	g := NewGenerator(client, nil, nil, nil)

	out, _, err := g.Generate(context.Background(), []domain.PlannedWeek{
		planWeek(1, domain.FocusBuild, session(1, domain.DayHard, 6.0, tpl)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, out[0].Sessions[0].Text.Source)
	assert.Equal(t, 2, client.Calls(""))
}

func TestGenerate_InvalidThenValidUsesProvider(t *testing.T) {
	tpl := templateByID(t, "vo2-intervals")
	var n atomic.Int32
	client := &testutil.ScriptedLLM{Respond: func(llm.GenerateRequest) (string, error) {
		if n.Add(1) == 1 {
			return "not json at all", nil
		}
		return intervalJSON(6.0, 15), nil
	}}
	g := NewGenerator(client, nil, nil, nil)

	out, st, err := g.Generate(context.Background(), []domain.PlannedWeek{
		planWeek(1, domain.FocusBuild, session(1, domain.DayHard, 6.0, tpl)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceProvider, out[0].Sessions[0].Text.Source)
	assert.Equal(t, 2, st.ProviderCalls)
}

func TestGenerate_OutageIsNotRetried(t *testing.T) {
	tpl := templateByID(t, "easy-aerobic")
	client := &testutil.ScriptedLLM{Respond: func(llm.GenerateRequest) (string, error) {
		return "", llm.ErrProviderUnavailable
	}}
	g := NewGenerator(client, nil, nil, nil)

	out, st, err := g.Generate(context.Background(), []domain.PlannedWeek{
		planWeek(1, domain.FocusBase, session(2, domain.DayEasy, 4.5, tpl)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, out[0].Sessions[0].Text.Source)
	assert.Equal(t, 1, client.Calls(""))
	assert.Equal(t, 1, st.Fallback)

	req := client.Requests()[0]
	require.NotNil(t, req.MaxRetries)
	assert.Zero(t, *req.MaxRetries)
	assert.Contains(t, req.UserPrompt, `"allocated_distance_mi": 4.5`)
}

func TestGenerate_LimiterBoundsInFlightCalls(t *testing.T) {
	tpl := templateByID(t, "easy-aerobic")
	var inFlight, peak atomic.Int32
	client := &testutil.ScriptedLLM{Respond: func(llm.GenerateRequest) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return easyJSON, nil
	}}
	g := NewGenerator(client, nil, NewLimiter(2), nil)

	var sessions []domain.PlannedSession
	for d := 0; d < 7; d++ {
		sessions = append(sessions, session(d, domain.DayEasy, float64(2+d), tpl))
	}
	out, st, err := g.Generate(context.Background(), []domain.PlannedWeek{planWeek(1, domain.FocusBase, sessions...)})
	require.NoError(t, err)
	assert.Len(t, out[0].Sessions, 7)
	assert.Equal(t, 7, st.Provider)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	tpl := templateByID(t, "easy-aerobic")
	g := NewGenerator(testutil.NewScriptedLLM(easyJSON), nil, nil, nil)
	weeks := []domain.PlannedWeek{planWeek(1, domain.FocusBase, session(1, domain.DayEasy, 3, tpl))}

	_, _, err := g.Generate(context.Background(), weeks)
	require.NoError(t, err)
	assert.Nil(t, weeks[0].Sessions[0].Text)
}

func TestGenerate_Canceled(t *testing.T) {
	tpl := templateByID(t, "easy-aerobic")
	g := NewGenerator(testutil.NewScriptedLLM(easyJSON), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Generate(ctx, []domain.PlannedWeek{planWeek(1, domain.FocusBase, session(1, domain.DayEasy, 3, tpl))})
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.ErrCanceled))
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/alexanderramin/tempo/internal/planner"
	"github.com/alexanderramin/tempo/internal/sessiontext"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/alexanderramin/tempo/internal/vectorindex"
	"github.com/stretchr/testify/require"
)

// raceDay is a Sunday; a 16-week plan for it starts Monday 2026-03-02.
var raceDay = time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC)

var errProviderDown = errors.New("provider down")

// macroThenOutage answers macro plan calls with macroJSON and fails every
// session text call, so text always comes from the fallback generator.
func macroThenOutage(macroJSON string) *testutil.ScriptedLLM {
	return &testutil.ScriptedLLM{Respond: func(req llm.GenerateRequest) (string, error) {
		if req.Task == llm.TaskMacroPlan {
			return macroJSON, nil
		}
		return "", errProviderDown
	}}
}

type harness struct {
	client *testutil.ScriptedLLM
	db     *sql.DB
	stages Stages
	events *recordingObserver
}

func newHarness(t *testing.T, client *testutil.ScriptedLLM) *harness {
	t.Helper()
	c := testutil.SampleCorpus()
	emb := vectorindex.NewHashEmbedder()
	idx, err := planner.BuildIndexes(context.Background(), c, emb)
	require.NoError(t, err)
	sel := vectorindex.NewSelector(emb)

	database := testutil.NewTestDB(t)
	return &harness{
		client: client,
		db:     database,
		events: &recordingObserver{},
		stages: Stages{
			Macro:      planner.NewMacroPlanner(client),
			Philosophy: planner.NewPhilosophySelector(c, planner.NewFilterPhilosophyStrategy(c)),
			Structures: planner.NewStructureResolver(planner.NewFilterStructureStrategy(c)),
			Templates:  planner.NewTemplateSelector(c, idx, sel),
			Text:       sessiontext.NewGenerator(client, nil, nil, nil),
			Persist:    NewPersistService(testutil.NewTestUoW(database), nil),
		},
	}
}

// withUoW swaps the persistence transaction boundary.
func (h *harness) withUoW(uow db.UnitOfWork) *harness {
	h.stages.Persist = NewPersistService(uow, nil)
	return h
}

func (h *harness) service() PlanService {
	return NewPlanService(h.stages, h.events)
}

func (h *harness) rowCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, h.db.QueryRow(`SELECT COUNT(*) FROM calendar_sessions`).Scan(&n))
	return n
}

func marathonRequest() app.GeneratePlanRequest {
	return app.GeneratePlanRequest{
		Context:  testutil.RaceContext(16, "Marathon", raceDay),
		Athlete:  testutil.NewTestAthlete(),
		Identity: testutil.TestIdentity(),
	}
}

func marathonMacro() string {
	return testutil.MacroPlanJSON("race", domain.DistanceMarathon, testutil.ProgressiveWeeks(16, 30, domain.FocusBuild))
}

type recordingObserver struct {
	mu     sync.Mutex
	events []StageEvent
}

func (r *recordingObserver) ObserveStage(_ context.Context, e StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) all() []StageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StageEvent(nil), r.events...)
}

func (r *recordingObserver) ofKind(kind StageEventKind) []app.Stage {
	var out []app.Stage
	for _, e := range r.all() {
		if e.Kind == kind {
			out = append(out, e.Stage)
		}
	}
	return out
}

// lockedContext returns a race context already locked to philosophy id.
func lockedContext(t *testing.T, weeks int, id string) domain.PlanContext {
	t.Helper()
	pctx := testutil.RaceContext(weeks, domain.DistanceMarathon, raceDay)
	pctx, err := pctx.WithPhilosophy(domain.PhilosophySelection{
		PhilosophyID: id, Domain: domain.DomainRunning, Audience: domain.AudienceIntermediate,
	})
	require.NoError(t, err)
	return pctx
}

// textedWeek builds a planned week of fully texted sessions, one per
// distance; a zero distance makes a rest day.
func textedWeek(n int, distances ...float64) domain.PlannedWeek {
	w := domain.PlannedWeek{Week: n, Focus: domain.FocusBuild, StructureID: "s"}
	for day, d := range distances {
		ps := domain.PlannedSession{DayIndex: day, DayType: domain.DayEasy, SessionType: "easy", Distance: d}
		out := domain.SessionTextOutput{
			Title:       "Easy run",
			Description: "Relaxed aerobic miles.",
			Structure: []domain.SessionStep{
				{Segment: domain.SegmentMain, Description: "easy", DistanceMi: d, DurationMin: d * 10, Intensity: domain.BucketEasy},
			},
			Metrics: domain.SessionMetrics{
				TotalDistanceMi:  d,
				DurationMin:      d * 10,
				IntensityMinutes: map[string]float64{domain.BucketEasy: d * 10},
			},
			Source: domain.SourceFallback,
		}
		if d == 0 {
			ps.DayType = domain.DayRest
			ps.SessionType = "rest"
			out = sessiontext.RestText()
		}
		w.Sessions = append(w.Sessions, ps.WithText(out))
	}
	return w
}

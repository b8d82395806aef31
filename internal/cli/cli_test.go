package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
	"github.com/alexanderramin/tempo/internal/planner"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/sessiontext"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/alexanderramin/tempo/internal/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// marathonProvider answers macro plan calls with a 16-week ramp and fails
// session text calls, so text comes from the fallback generator.
func marathonProvider() *testutil.ScriptedLLM {
	macro := testutil.MacroPlanJSON("race", domain.DistanceMarathon, testutil.ProgressiveWeeks(16, 30, domain.FocusBuild))
	return &testutil.ScriptedLLM{Respond: func(req llm.GenerateRequest) (string, error) {
		if req.Task == llm.TaskMacroPlan {
			return macro, nil
		}
		return "", llm.ErrProviderUnavailable
	}}
}

// testApp wires a full App over c and an in-memory DB.
func testApp(t *testing.T, c *corpus.Corpus) *App {
	t.Helper()
	client := marathonProvider()
	emb := vectorindex.NewHashEmbedder()
	idx, err := planner.BuildIndexes(context.Background(), c, emb)
	require.NoError(t, err)
	sel := vectorindex.NewSelector(emb)

	database := testutil.NewTestDB(t)
	plans := service.NewPlanService(service.Stages{
		Macro:      planner.NewMacroPlanner(client),
		Philosophy: planner.NewPhilosophySelector(c, planner.NewFilterPhilosophyStrategy(c)),
		Structures: planner.NewStructureResolver(planner.NewFilterStructureStrategy(c)),
		Templates:  planner.NewTemplateSelector(c, idx, sel),
		Text:       sessiontext.NewGenerator(client, nil, nil, nil),
		Persist:    service.NewPersistService(testutil.NewTestUoW(database), nil),
	})

	return &App{
		Plans:    plans,
		Tool:     service.NewPlannerTool(plans),
		Calendar: service.NewCalendarService(repository.NewCalendarRepo(database)),
		Corpus:   c,
		Now:      func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC) },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr without
// color codes.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansi.ReplaceAllString(buf.String(), ""), err
}

var marathonArgs = []string{
	"plan", "generate",
	"--distance", "marathon",
	"--race-date", "2026-06-28",
	"--weeks", "16",
	"--plan-id", "plan-cli",
}

func TestPlanGenerate_Marathon(t *testing.T) {
	app := testApp(t, testutil.SampleCorpus())

	out, err := executeCmd(t, app, marathonArgs...)
	require.NoError(t, err)

	assert.Contains(t, out, "daniels")
	assert.Contains(t, out, "Weekly volume")
	assert.Contains(t, out, "taper")
}

func TestPlanGenerate_ThenShowAndList(t *testing.T) {
	app := testApp(t, testutil.SampleCorpus())

	_, err := executeCmd(t, app, marathonArgs...)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "plan", "show", "plan-cli")
	require.NoError(t, err)
	assert.Contains(t, out, "Week 1")
	assert.Contains(t, out, "Week 16")
	assert.Contains(t, out, "Mon Mar 2")

	out, err = executeCmd(t, app, "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "plan-cli")

	out, err = executeCmd(t, app, "plan", "list", "--athlete", "someone-else")
	require.NoError(t, err)
	assert.Contains(t, out, "No plans found.")
}

func TestPlanGenerate_SeasonUsesStartDate(t *testing.T) {
	app := testApp(t, testutil.SampleCorpus())

	_, err := executeCmd(t, app, "plan", "generate",
		"--weeks", "16", "--intent", "race", "--distance", "marathon",
		"--plan-id", "season-1", "--start", "2026-09-09")
	require.NoError(t, err)

	sessions, err := app.Calendar.ListPlanSessions(context.Background(), domain.Identity{UserID: "local", AthleteID: "local"}, "season-1")
	require.NoError(t, err)
	require.NotEmpty(t, sessions)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), sessions[0].Date.UTC())
}

func TestPlanGenerate_RejectsBadInput(t *testing.T) {
	app := testApp(t, testutil.SampleCorpus())

	_, err := executeCmd(t, app, "plan", "generate", "--distance", "marathon", "--race-date", "28/06/2026", "--weeks", "16")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--race-date")

	_, err = executeCmd(t, app, "plan", "generate", "--distance", "marathon", "--weeks", "16", "--kind", "race")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target date")

	_, err = executeCmd(t, app, append(marathonArgs, "--flag", "replan")...)
	require.Error(t, err)
}

func TestPlanShow_UnknownPlan(t *testing.T) {
	app := testApp(t, testutil.SampleCorpus())

	_, err := executeCmd(t, app, "plan", "show", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlanRequest_RepeatIsIgnored(t *testing.T) {
	app := testApp(t, testutil.SampleCorpus())
	args := []string{"plan", "request", "16 week marathon plan for june 28", "--distance", "marathon", "--race-date", "2026-06-28", "--weeks", "16"}

	out, err := executeCmd(t, app, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "16-week plan using daniels")
	assert.NotContains(t, out, "duplicate request")

	out, err = executeCmd(t, app, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "duplicate request ignored")
}

func TestPlanCommands_UnavailableWithoutCorpus(t *testing.T) {
	app := &App{CorpusErr: corpus.ErrInvalidDocument}

	_, err := executeCmd(t, app, marathonArgs...)
	require.Error(t, err)
	assert.ErrorIs(t, err, corpus.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "plan generation is unavailable")

	_, err = executeCmd(t, app, "corpus", "list")
	require.Error(t, err)
}

func TestCorpusValidate_ReportsEveryProblem(t *testing.T) {
	fsys := fstest.MapFS{
		"p.yaml": {Data: []byte("kind: philosophy\nid: x\ndomain: swimming\nversion: \"1\"\nrace_distances: [5k]\n")},
		"t.yaml": {Data: []byte("kind: template\nid: t\ntemplate_kind: easy\nsession_types: [easy]\n")},
	}
	app := &App{CorpusSource: &corpus.DirSource{FS: fsys}}

	out, err := executeCmd(t, app, "corpus", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "2 invalid document(s)")
	assert.Contains(t, out, `invalid value "swimming"`)
	assert.Contains(t, out, "description_key is required")
}

func TestCorpusValidate_ShippedCorpus(t *testing.T) {
	app := &App{CorpusSource: corpus.NewDirSource("../../corpus")}

	out, err := executeCmd(t, app, "corpus", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "corpus is valid")
}

func TestShippedCorpus_PlansAMarathon(t *testing.T) {
	c, err := corpus.Load(context.Background(), corpus.NewDirSource("../../corpus"))
	require.NoError(t, err)
	app := testApp(t, c)

	out, err := executeCmd(t, app, marathonArgs...)
	require.NoError(t, err)
	assert.Contains(t, out, "daniels")

	out, err = executeCmd(t, app, "corpus", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "koop")
	assert.Contains(t, out, "daniels-build-late")
	assert.Contains(t, out, "hill-circuits")
}

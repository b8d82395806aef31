package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendarRows(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM calendar_sessions`).Scan(&n))
	return n
}

func TestPersist_SecondRunUpdatesInPlace(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewPersistService(testutil.NewTestUoW(database), nil)
	ctx := context.Background()
	req := PersistRequest{
		Context:  lockedContext(t, 2, "daniels"),
		Identity: testutil.TestIdentity(),
		PlanID:   "plan-1",
		Weeks:    []domain.PlannedWeek{textedWeek(1, 0, 5, 6), textedWeek(2, 0, 5.5, 7)},
	}

	first, err := svc.Persist(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 6, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.True(t, first.Success)
	assert.Len(t, first.SessionIDs, 6)

	second, err := svc.Persist(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 6, second.Updated)
	assert.Equal(t, first.SessionIDs, second.SessionIDs)
	assert.Equal(t, 6, calendarRows(t, database))
}

func TestPersist_RowsFollowRaceAnchor(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewPersistService(testutil.NewTestUoW(database), nil)
	ctx := context.Background()

	_, err := svc.Persist(ctx, PersistRequest{
		Context:  lockedContext(t, 2, "daniels"),
		Identity: testutil.TestIdentity(),
		PlanID:   "plan-1",
		Weeks:    []domain.PlannedWeek{textedWeek(1, 0, 5, 6), textedWeek(2, 0, 5.5, 7)},
	})
	require.NoError(t, err)

	sessions, err := repository.NewCalendarRepo(database).ListByPlan(ctx, testutil.TestIdentity(), "plan-1")
	require.NoError(t, err)
	require.Len(t, sessions, 6)

	// Two weeks before 2026-06-28 is Sunday 2026-06-14, in the week of Monday 2026-06-08.
	monday := time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, sessions[0].Date)
	assert.Equal(t, domain.SourceRest, sessions[0].Source)
	assert.Equal(t, "[]", sessions[0].StructureJSON)
	assert.Equal(t, monday.AddDate(0, 0, 1), sessions[1].Date)
	assert.Equal(t, 1, sessions[1].WeekNumber)
	assert.Equal(t, domain.BucketEasy, sessions[1].Intensity)
	assert.Equal(t, "Relaxed aerobic miles.", sessions[1].Notes)
	assert.Contains(t, sessions[1].StructureJSON, `"segment":"main"`)
	assert.Equal(t, monday.AddDate(0, 0, 7), sessions[3].Date)
	assert.Equal(t, 2, sessions[3].WeekNumber)
	assert.Equal(t, 7.0, sessions[5].DistanceMi)
}

func TestPersist_SeasonPlanStartsThisWeek(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewPersistService(testutil.NewTestUoW(database), nil)
	ctx := context.Background()

	pctx, err := domain.PlanContext{Kind: domain.PlanSeason, Intent: "base", Weeks: 1}.
		WithPhilosophy(domain.PhilosophySelection{PhilosophyID: "lydiard", Domain: domain.DomainRunning})
	require.NoError(t, err)
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	res, err := svc.Persist(ctx, PersistRequest{
		Context:  pctx,
		Identity: testutil.TestIdentity(),
		Weeks:    []domain.PlannedWeek{textedWeek(1, 0, 4)},
		Now:      wednesday,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(res.PlanID)
	assert.NoError(t, err)

	sessions, err := repository.NewCalendarRepo(database).ListByPlan(ctx, testutil.TestIdentity(), res.PlanID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), sessions[0].Date)
	assert.Equal(t, wednesday.Truncate(time.Second), sessions[0].CreatedAt)
}

func TestPersist_FailedWeekIsSkipped(t *testing.T) {
	database := testutil.NewTestDB(t)
	// Each week inserts three rows; the fourth write is the first of week 2.
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 4, Err: errors.New("disk full")}
	svc := NewPersistService(uow, nil)

	res, err := svc.Persist(context.Background(), PersistRequest{
		Context:  lockedContext(t, 3, "daniels"),
		Identity: testutil.TestIdentity(),
		PlanID:   "plan-1",
		Weeks:    []domain.PlannedWeek{textedWeek(1, 0, 5, 6), textedWeek(2, 0, 5, 6), textedWeek(3, 0, 5, 6)},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Created)
	assert.Equal(t, 3, res.Skipped)
	assert.False(t, res.Success)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "week 2")
	assert.Contains(t, res.Warnings[0], "disk full")
	assert.Equal(t, 6, calendarRows(t, database))
}

func TestPersist_RejectsUnusableRequests(t *testing.T) {
	svc := NewPersistService(testutil.NewTestUoW(testutil.NewTestDB(t)), nil)
	ctx := context.Background()

	_, err := svc.Persist(ctx, PersistRequest{
		Context:  testutil.RaceContext(1, domain.DistanceMarathon, raceDay),
		Identity: testutil.TestIdentity(),
	})
	assert.True(t, app.IsKind(err, app.ErrInvariant))

	_, err = svc.Persist(ctx, PersistRequest{Context: lockedContext(t, 1, "daniels")})
	assert.True(t, app.IsKind(err, app.ErrContext))
}

func TestWeekWarning_DuplicateKey(t *testing.T) {
	err := fmt.Errorf("inserting 2026-03-02: %w", repository.ErrDuplicate)
	assert.Contains(t, weekWarning(3, err), "week 3: concurrent write")
	assert.Contains(t, weekWarning(3, errors.New("boom")), "week 3: not persisted: boom")
}

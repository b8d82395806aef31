package testutil

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

// TestIdentity is the calendar owner used across tests.
func TestIdentity() domain.Identity {
	return domain.Identity{UserID: "user-1", AthleteID: "athlete-1"}
}

// Athlete options
type AthleteOption func(*domain.AthleteState)

func WithFitness(ctl float64) AthleteOption {
	return func(a *domain.AthleteState) {
		a.Fitness = ctl
		a.Form = ctl - a.Fatigue
	}
}

func WithFlags(flags ...string) AthleteOption {
	return func(a *domain.AthleteState) {
		a.Flags = flags
	}
}

func WithWeeklyVolume(mi float64) AthleteOption {
	return func(a *domain.AthleteState) {
		a.WeeklyVolumeMi = mi
	}
}

// NewTestAthlete returns an intermediate-tier athlete.
func NewTestAthlete(opts ...AthleteOption) domain.AthleteState {
	a := domain.AthleteState{
		Fitness:        50,
		Fatigue:        45,
		Form:           5,
		WeeklyVolumeMi: 30,
		LongestRunMi:   12,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// RaceContext returns a race plan context ending on raceDate.
func RaceContext(weeks int, distance string, raceDate time.Time) domain.PlanContext {
	return domain.PlanContext{
		Kind:         domain.PlanRace,
		Intent:       "race",
		Weeks:        weeks,
		RaceDistance: distance,
		TargetDate:   &raceDate,
	}
}

// Calendar session options
type CalendarOption func(*domain.CalendarSession)

func WithPlanID(id string) CalendarOption {
	return func(s *domain.CalendarSession) {
		s.PlanID = id
	}
}

func WithSessionDate(d time.Time) CalendarOption {
	return func(s *domain.CalendarSession) {
		s.Date = d
		s.DayIndex = (int(d.Weekday()) + 6) % 7
	}
}

func WithOrder(n int) CalendarOption {
	return func(s *domain.CalendarSession) {
		s.Order = n
	}
}

func WithTitle(title string) CalendarOption {
	return func(s *domain.CalendarSession) {
		s.Title = title
	}
}

func WithDistance(mi float64) CalendarOption {
	return func(s *domain.CalendarSession) {
		s.DistanceMi = mi
	}
}

func WithOwner(id domain.Identity) CalendarOption {
	return func(s *domain.CalendarSession) {
		s.UserID = id.UserID
		s.AthleteID = id.AthleteID
	}
}

// NewTestCalendarSession returns an easy run on Monday 2026-03-02 for
// TestIdentity.
func NewTestCalendarSession(opts ...CalendarOption) *domain.CalendarSession {
	now := time.Now().UTC().Truncate(time.Second)
	id := TestIdentity()
	s := &domain.CalendarSession{
		ID:            uuid.New().String(),
		UserID:        id.UserID,
		AthleteID:     id.AthleteID,
		PlanID:        "plan-1",
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		WeekNumber:    1,
		Phase:         domain.FocusBase,
		Title:         "Easy run, 5.0 mi",
		Notes:         "Comfortable aerobic running.",
		DistanceMi:    5,
		DurationMin:   50,
		Intensity:     domain.BucketEasy,
		Tags:          []string{"easy"},
		TemplateID:    "easy-aerobic",
		SessionType:   "easy",
		StructureJSON: "[]",
		Source:        domain.SourceFallback,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

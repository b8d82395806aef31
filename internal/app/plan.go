package app

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// EntryOptions carries the caller-side switches checked by the entry guard.
type EntryOptions struct {
	LegacyMode bool
	Flags      []string
}

type GeneratePlanRequest struct {
	Context  domain.PlanContext
	Athlete  domain.AthleteState
	Identity domain.Identity
	// PlanID is generated when empty.
	PlanID string
	// RequireNonEmpty escalates a plan that persisted nothing to a fatal error.
	RequireNonEmpty bool
	Entry           EntryOptions
	Now             *time.Time
}

type GeneratePlanResponse struct {
	Result     domain.PersistResult
	TotalWeeks int
	Philosophy domain.PhilosophySelection
	MacroWeeks []domain.MacroWeek
	Weeks      []domain.PlannedWeek
}

// ToolInput is the flat request shape used by conversational callers.
type ToolInput struct {
	UserID       string
	AthleteID    string
	Kind         string
	Intent       string
	Weeks        int
	RaceDistance string
	RaceDate     string // YYYY-MM-DD
	Philosophy   string
	RequestText  string
	Athlete      domain.AthleteState
}

type ToolOutput struct {
	PlanID   string
	Summary  string
	Warnings []string
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrPhilosophyLocked is returned when a context's philosophy is set twice.
var ErrPhilosophyLocked = errors.New("philosophy already locked for this plan")

// PlanContext is a caller's planning request. It is treated as a value:
// the only field that changes during a run is Philosophy, set once through
// WithPhilosophy which returns a copy.
type PlanContext struct {
	Kind               PlanKind
	Intent             string
	Weeks              int
	RaceDistance       string // normalized, see NormalizeDistance
	TargetDate         *time.Time
	PhilosophyOverride string
	Philosophy         *PhilosophySelection
}

// Validate checks the request for self-contradictions.
func (c PlanContext) Validate() error {
	if !ValidPlanKinds[string(c.Kind)] {
		return fmt.Errorf("invalid plan kind %q", c.Kind)
	}
	if c.Weeks <= 0 {
		return fmt.Errorf("weeks must be > 0, got %d", c.Weeks)
	}
	if c.Kind == PlanWeek && c.Weeks != 1 {
		return fmt.Errorf("week plans cover exactly 1 week, got %d", c.Weeks)
	}
	if c.Kind == PlanRace {
		if c.RaceDistance == "" {
			return errors.New("race plans require a race distance")
		}
		if c.TargetDate == nil {
			return errors.New("race plans require a target date")
		}
	}
	if c.RaceDistance != "" && !IsKnownDistance(c.RaceDistance) {
		return fmt.Errorf("unknown race distance %q", c.RaceDistance)
	}
	return nil
}

// WithPhilosophy returns a copy of the context with the philosophy locked.
func (c PlanContext) WithPhilosophy(sel PhilosophySelection) (PlanContext, error) {
	if c.Philosophy != nil {
		return c, ErrPhilosophyLocked
	}
	locked := sel
	c.Philosophy = &locked
	return c, nil
}

// IsRace reports whether the plan builds toward a dated race.
func (c PlanContext) IsRace() bool {
	return c.Kind == PlanRace
}

// PhilosophySelection is the training philosophy locked for one run.
type PhilosophySelection struct {
	PhilosophyID string
	Domain       TrainingDomain
	Audience     Audience
}

// AthleteState is the read-only fitness snapshot supplied by the caller.
type AthleteState struct {
	Fitness        float64 // chronic training load
	Fatigue        float64 // acute training load
	Form           float64 // fitness - fatigue
	Flags          []string
	WeeklyVolumeMi float64
	LongestRunMi   float64
}

// Fitness thresholds separating audience tiers.
const (
	intermediateFitness = 35.0
	advancedFitness     = 70.0
)

// AudienceTier derives the audience tier from chronic load.
func (a AthleteState) AudienceTier() Audience {
	switch {
	case a.Fitness >= advancedFitness:
		return AudienceAdvanced
	case a.Fitness >= intermediateFitness:
		return AudienceIntermediate
	default:
		return AudienceBeginner
	}
}

// HasFlag reports whether the athlete carries the given flag.
func (a AthleteState) HasFlag(flag string) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Identity names whose calendar a plan is written to.
type Identity struct {
	UserID    string
	AthleteID string
}

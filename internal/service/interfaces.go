package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/sessiontext"
)

// The stage components the orchestrator drives. The planner, volume and
// sessiontext packages provide the production implementations.

type MacroPlanner interface {
	Plan(ctx context.Context, pctx domain.PlanContext, athlete domain.AthleteState) ([]domain.MacroWeek, error)
}

type PhilosophySelector interface {
	Select(ctx context.Context, pctx domain.PlanContext, athlete domain.AthleteState) (domain.PhilosophySelection, error)
}

type StructureResolver interface {
	Resolve(ctx context.Context, pctx domain.PlanContext, weeks []domain.MacroWeek, now time.Time) ([]domain.WeekStructure, error)
}

type TemplateSelector interface {
	Select(ctx context.Context, pctx domain.PlanContext, week domain.MacroWeek, s domain.WeekStructure, days []domain.DistributedDay) ([]domain.PlannedSession, error)
}

type TextGenerator interface {
	Generate(ctx context.Context, weeks []domain.PlannedWeek) ([]domain.PlannedWeek, sessiontext.Stats, error)
}

type Persister interface {
	Persist(ctx context.Context, req PersistRequest) (domain.PersistResult, error)
}

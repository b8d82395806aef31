package app

import (
	"context"

	"github.com/alexanderramin/tempo/internal/domain"
)

type GeneratePlanUseCase interface {
	GeneratePlan(ctx context.Context, req GeneratePlanRequest) (*GeneratePlanResponse, error)
}

type PlannerToolUseCase interface {
	Run(ctx context.Context, in ToolInput) (*ToolOutput, error)
}

type ListPlanSessionsUseCase interface {
	ListPlanSessions(ctx context.Context, id domain.Identity, planID string) ([]*domain.CalendarSession, error)
}

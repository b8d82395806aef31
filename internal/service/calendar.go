package service

import (
	"context"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

type CalendarService interface {
	app.ListPlanSessionsUseCase
	ListPlans(ctx context.Context, id domain.Identity) ([]repository.PlanSummary, error)
}

type calendarService struct {
	calendar repository.CalendarRepo
}

func NewCalendarService(calendar repository.CalendarRepo) CalendarService {
	return &calendarService{calendar: calendar}
}

func (s *calendarService) ListPlanSessions(ctx context.Context, id domain.Identity, planID string) ([]*domain.CalendarSession, error) {
	sessions, err := s.calendar.ListByPlan(ctx, id, planID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, app.Wrap(app.ErrContext, repository.ErrNotFound, "plan %s has no sessions for athlete %s", planID, id.AthleteID)
	}
	return sessions, nil
}

func (s *calendarService) ListPlans(ctx context.Context, id domain.Identity) ([]repository.PlanSummary, error) {
	return s.calendar.ListPlans(ctx, id)
}

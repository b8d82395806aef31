package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/guard"
	"github.com/alexanderramin/tempo/internal/vectorindex"
	"github.com/alexanderramin/tempo/internal/volume"
	"github.com/google/uuid"
)

// Stages bundles the components of one pipeline. All of them are built
// once and shared by concurrent runs.
type Stages struct {
	Macro      MacroPlanner
	Philosophy PhilosophySelector
	Structures StructureResolver
	Templates  TemplateSelector
	Text       TextGenerator
	Persist    Persister
	Ratios     volume.Ratios
}

type planService struct {
	stages   Stages
	observer StageObserver
	now      func() time.Time
}

// PlanService runs the plan pipeline end to end.
type PlanService interface {
	app.GeneratePlanUseCase
	GenerateSeasonPlan(ctx context.Context, req app.GeneratePlanRequest) (*app.GeneratePlanResponse, error)
	GenerateWeekPlan(ctx context.Context, req app.GeneratePlanRequest) (*app.GeneratePlanResponse, error)
}

func NewPlanService(stages Stages, observers ...StageObserver) PlanService {
	if stages.Ratios == nil {
		stages.Ratios = volume.DefaultRatios()
	}
	return &planService{
		stages:   stages,
		observer: MultiStageObserver(observers...),
		now:      time.Now,
	}
}

// GenerateSeasonPlan plans req.Context.Weeks weeks without a race.
func (s *planService) GenerateSeasonPlan(ctx context.Context, req app.GeneratePlanRequest) (*app.GeneratePlanResponse, error) {
	req.Context.Kind = domain.PlanSeason
	req.Context.TargetDate = nil
	return s.GeneratePlan(ctx, req)
}

// GenerateWeekPlan plans the single week containing the request time.
func (s *planService) GenerateWeekPlan(ctx context.Context, req app.GeneratePlanRequest) (*app.GeneratePlanResponse, error) {
	req.Context.Kind = domain.PlanWeek
	req.Context.Weeks = 1
	req.Context.TargetDate = nil
	return s.GeneratePlan(ctx, req)
}

func (s *planService) GeneratePlan(ctx context.Context, req app.GeneratePlanRequest) (*app.GeneratePlanResponse, error) {
	ctx = guard.Enter(ctx)
	if err := guard.CheckEntry(ctx, req.Entry); err != nil {
		return nil, app.AtStage(app.StageInit, err)
	}

	pctx := req.Context
	pctx.RaceDistance = domain.NormalizeDistance(pctx.RaceDistance)
	if err := pctx.Validate(); err != nil {
		return nil, app.AtStage(app.StageInit, app.Wrap(app.ErrContext, err, "invalid plan request"))
	}
	if req.Identity.UserID == "" || req.Identity.AthleteID == "" {
		return nil, app.AtStage(app.StageInit, app.Errorf(app.ErrContext, "plan request requires a user and athlete id"))
	}
	if pctx.Philosophy != nil {
		return nil, app.AtStage(app.StageInit, app.Errorf(app.ErrContext, "plan request arrived with a locked philosophy"))
	}

	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}
	planID := req.PlanID
	if planID == "" {
		planID = uuid.New().String()
	}

	ctx, _ = vectorindex.WithQueryCache(ctx)
	run := &planRun{svc: s, req: req, now: now}
	st := newPipelineState(planID, pctx)
	steps := []struct {
		stage app.Stage
		fn    stageFunc
	}{
		{app.StageMacroPlan, run.macroPlan},
		{app.StagePhilosophy, run.philosophy},
		{app.StageStructure, run.structure},
		{app.StageVolume, run.volume},
		{app.StageTemplates, run.templates},
		{app.StageSessionText, run.sessionText},
		{app.StagePersist, run.persist},
	}
	for _, step := range steps {
		next, err := s.runStage(ctx, st, step.stage, step.fn)
		if err != nil {
			st = st.failed()
			return nil, err
		}
		st = next
	}
	st, err := st.advance(app.StageDone)
	if err != nil {
		return nil, err
	}

	return &app.GeneratePlanResponse{
		Result:     st.result,
		TotalWeeks: len(st.macro),
		Philosophy: *st.ctx.Philosophy,
		MacroWeeks: st.macro,
		Weeks:      st.weeks,
	}, nil
}

// stageFunc computes one stage. It returns the advanced state and the
// summary fields reported on success.
type stageFunc func(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error)

func (s *planService) runStage(ctx context.Context, st pipelineState, stage app.Stage, fn stageFunc) (pipelineState, error) {
	if err := ctx.Err(); err != nil {
		return st, app.AtStage(stage, app.Wrap(app.ErrCanceled, err, "run canceled"))
	}
	next, err := st.advance(stage)
	if err != nil {
		return st, err
	}

	start := time.Now()
	s.observer.ObserveStage(ctx, StageEvent{PlanID: st.planID, Stage: stage, Kind: StageStarted})
	out, fields, err := fn(ctx, next)
	if err != nil {
		err = app.AtStage(stage, err)
		s.observer.ObserveStage(ctx, StageEvent{
			PlanID: st.planID, Stage: stage, Kind: StageFailed, Duration: time.Since(start), Err: err,
		})
		return st, err
	}
	s.observer.ObserveStage(ctx, StageEvent{
		PlanID: out.planID, Stage: stage, Kind: StageSucceeded, Duration: time.Since(start), Fields: fields,
	})
	return out, nil
}

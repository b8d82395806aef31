package service

import (
	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/sessiontext"
)

// pipelineState is the value threaded through one plan run. Stages never
// modify it; each returns a changed copy built with the with* methods, and
// the artifacts of earlier stages are never written again.
type pipelineState struct {
	stage      app.Stage
	planID     string
	ctx        domain.PlanContext
	macro      []domain.MacroWeek
	structures []domain.WeekStructure
	days       [][]domain.DistributedDay
	weeks      []domain.PlannedWeek
	textStats  sessiontext.Stats
	result     domain.PersistResult
}

func newPipelineState(planID string, pctx domain.PlanContext) pipelineState {
	return pipelineState{stage: app.StageInit, planID: planID, ctx: pctx}
}

// advance moves to stage, which must directly follow the current one.
func (s pipelineState) advance(stage app.Stage) (pipelineState, error) {
	if s.stage.Terminal() || s.stage.Next() != stage {
		return s, app.Errorf(app.ErrInvariant, "illegal stage transition %s -> %s", s.stage, stage)
	}
	s.stage = stage
	return s, nil
}

func (s pipelineState) failed() pipelineState {
	s.stage = app.StageFailed
	return s
}

func (s pipelineState) withMacro(weeks []domain.MacroWeek) pipelineState {
	s.macro = weeks
	return s
}

func (s pipelineState) withContext(pctx domain.PlanContext) pipelineState {
	s.ctx = pctx
	return s
}

func (s pipelineState) withStructures(structures []domain.WeekStructure) pipelineState {
	s.structures = structures
	return s
}

func (s pipelineState) withDays(days [][]domain.DistributedDay) pipelineState {
	s.days = days
	return s
}

func (s pipelineState) withWeeks(weeks []domain.PlannedWeek) pipelineState {
	s.weeks = weeks
	return s
}

func (s pipelineState) withText(weeks []domain.PlannedWeek, st sessiontext.Stats) pipelineState {
	s.weeks = weeks
	s.textStats = st
	return s
}

func (s pipelineState) withResult(r domain.PersistResult) pipelineState {
	s.result = r
	s.planID = r.PlanID
	return s
}

func (s pipelineState) sessionCount() int {
	n := 0
	for _, w := range s.weeks {
		n += len(w.Sessions)
	}
	return n
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/guard"
	"github.com/alexanderramin/tempo/internal/volume"
)

// planRun holds the per-request inputs the stage functions close over.
type planRun struct {
	svc *planService
	req app.GeneratePlanRequest
	now time.Time
}

func (r *planRun) macroPlan(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	weeks, err := r.svc.stages.Macro.Plan(ctx, st.ctx, r.req.Athlete)
	if err != nil {
		return st, nil, err
	}
	if len(weeks) != st.ctx.Weeks {
		return st, nil, app.Errorf(app.ErrGeneration, "macro plan has %d weeks, want %d", len(weeks), st.ctx.Weeks)
	}
	var total float64
	for _, w := range weeks {
		total += w.TotalDistance
	}
	return st.withMacro(weeks), map[string]any{
		"weeks":       len(weeks),
		"last_focus":  string(weeks[len(weeks)-1].Focus),
		"distance_mi": domain.Round1(total),
	}, nil
}

func (r *planRun) philosophy(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	sel, err := r.svc.stages.Philosophy.Select(ctx, st.ctx, r.req.Athlete)
	if err != nil {
		return st, nil, err
	}
	locked, err := st.ctx.WithPhilosophy(sel)
	if err != nil {
		return st, nil, app.Wrap(app.ErrInvariant, err, "locking philosophy")
	}
	return st.withContext(locked), map[string]any{
		"philosophy_id": sel.PhilosophyID,
		"domain":        string(sel.Domain),
		"audience":      string(sel.Audience),
	}, nil
}

func (r *planRun) structure(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	structures, err := r.svc.stages.Structures.Resolve(ctx, st.ctx, st.macro, r.now)
	if err != nil {
		return st, nil, err
	}
	if len(structures) != len(st.macro) {
		return st, nil, app.Errorf(app.ErrResolution, "resolved %d structures for %d weeks", len(structures), len(st.macro))
	}
	ids := make([]string, len(structures))
	for i, s := range structures {
		ids[i] = s.ID
	}
	return st.withStructures(structures), map[string]any{"structure_ids": ids}, nil
}

func (r *planRun) volume(_ context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	days := make([][]domain.DistributedDay, len(st.macro))
	var total float64
	for i, w := range st.macro {
		d, err := volume.Allocate(w.TotalDistance, st.structures[i], r.svc.stages.Ratios)
		if err != nil {
			return st, nil, err
		}
		days[i] = d
		total += volume.Total(d)
	}
	return st.withDays(days), map[string]any{"allocated_mi": domain.Round1(total)}, nil
}

func (r *planRun) templates(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	weeks := make([]domain.PlannedWeek, len(st.macro))
	used := make(map[string]bool)
	for i, w := range st.macro {
		sessions, err := r.svc.stages.Templates.Select(ctx, st.ctx, w, st.structures[i], st.days[i])
		if err != nil {
			return st, nil, err
		}
		for _, s := range sessions {
			if s.Template != nil {
				used[s.Template.ID] = true
			}
		}
		weeks[i] = domain.PlannedWeek{
			Week:        w.Week,
			Focus:       w.Focus,
			StructureID: st.structures[i].ID,
			Sessions:    sessions,
		}
	}
	next := st.withWeeks(weeks)
	return next, map[string]any{"sessions": next.sessionCount(), "templates": len(used)}, nil
}

func (r *planRun) sessionText(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	weeks, stats, err := r.svc.stages.Text.Generate(ctx, st.weeks)
	if err != nil {
		return st, nil, err
	}
	return st.withText(weeks, stats), map[string]any{
		"cache_hits":     stats.CacheHits,
		"provider":       stats.Provider,
		"fallback":       stats.Fallback,
		"rest":           stats.Rest,
		"provider_calls": stats.ProviderCalls,
	}, nil
}

// persist runs the pre-persist guard, then writes the plan. Storage
// failures degrade to a warning-only result unless the caller requires
// sessions to be written.
func (r *planRun) persist(ctx context.Context, st pipelineState) (pipelineState, map[string]any, error) {
	if err := guard.CheckPrePersist(st.macro, st.weeks); err != nil {
		return st, nil, err
	}

	res, err := r.svc.stages.Persist.Persist(ctx, PersistRequest{
		Context:  st.ctx,
		Identity: r.req.Identity,
		PlanID:   st.planID,
		Weeks:    st.weeks,
		Now:      r.now,
	})
	if err != nil {
		if r.req.RequireNonEmpty || !persistenceFailure(err) {
			return st, nil, err
		}
		res = domain.PersistResult{PlanID: st.planID, Warnings: []string{err.Error()}}
	}
	if r.req.RequireNonEmpty && res.Persisted() == 0 {
		return st, nil, app.Errorf(app.ErrPersistence, "no sessions were persisted: %d skipped, %d warnings", res.Skipped, len(res.Warnings))
	}
	return st.withResult(res), map[string]any{
		"created":  res.Created,
		"updated":  res.Updated,
		"skipped":  res.Skipped,
		"warnings": len(res.Warnings),
	}, nil
}

// persistenceFailure reports whether err is a storage problem rather than a
// broken plan or a canceled run.
func persistenceFailure(err error) bool {
	switch app.KindOf(err) {
	case app.ErrInvariant, app.ErrCanceled, app.ErrContext:
		return false
	}
	return !errors.Is(err, context.Canceled)
}

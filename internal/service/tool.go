package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
)

const (
	// DedupWindow suppresses an identical tool request repeated this soon.
	DedupWindow = 10 * time.Second
	// dedupRetention is how long a request key is remembered at all.
	dedupRetention = 30 * time.Second
)

type toolEntry struct {
	at  time.Time
	out *app.ToolOutput // nil while the first request is running
}

// PlannerTool adapts flat tool input to the plan pipeline and drops
// repeats of the same request arriving within DedupWindow.
type PlannerTool struct {
	plans app.GeneratePlanUseCase
	now   func() time.Time

	mu     sync.Mutex
	recent map[string]toolEntry
}

func NewPlannerTool(plans app.GeneratePlanUseCase) *PlannerTool {
	return &PlannerTool{plans: plans, now: time.Now, recent: make(map[string]toolEntry)}
}

// WithClock replaces the tool's time source.
func (t *PlannerTool) WithClock(now func() time.Time) *PlannerTool {
	t.now = now
	return t
}

func (t *PlannerTool) Run(ctx context.Context, in app.ToolInput) (*app.ToolOutput, error) {
	req, err := toolRequest(in)
	if err != nil {
		return nil, err
	}

	key := requestKey(in)
	if out, err := t.claim(key); out != nil || err != nil {
		return out, err
	}

	resp, err := t.plans.GeneratePlan(ctx, req)
	if err != nil {
		t.release(key)
		return nil, err
	}
	out := &app.ToolOutput{
		PlanID:   resp.Result.PlanID,
		Summary:  summarize(resp),
		Warnings: resp.Result.Warnings,
	}
	t.mu.Lock()
	t.recent[key] = toolEntry{at: t.recent[key].at, out: out}
	t.mu.Unlock()
	return out, nil
}

// claim purges stale keys and either records key as running or returns
// the answer to a duplicate.
func (t *PlannerTool) claim(key string) (*app.ToolOutput, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for k, e := range t.recent {
		if now.Sub(e.at) > dedupRetention {
			delete(t.recent, k)
		}
	}
	if e, ok := t.recent[key]; ok && now.Sub(e.at) < DedupWindow {
		if e.out == nil {
			return nil, app.Errorf(app.ErrDuplicate, "an identical plan request is already running")
		}
		dup := *e.out
		dup.Warnings = append(append([]string(nil), e.out.Warnings...), "duplicate request ignored; returning the plan generated moments ago")
		return &dup, nil
	}
	t.recent[key] = toolEntry{at: now}
	return nil, nil
}

func (t *PlannerTool) release(key string) {
	t.mu.Lock()
	delete(t.recent, key)
	t.mu.Unlock()
}

// requestKey hashes the caller identity and the normalized request text,
// or the structured fields when no text was given.
func requestKey(in app.ToolInput) string {
	text := strings.Join(strings.Fields(strings.ToLower(in.RequestText)), " ")
	if text == "" {
		text = fmt.Sprintf("%s|%s|%d|%s|%s|%s", strings.ToLower(in.Kind), strings.ToLower(in.Intent), in.Weeks,
			domain.NormalizeDistance(in.RaceDistance), in.RaceDate, in.Philosophy)
	}
	sum := sha256.Sum256([]byte(in.UserID + "\x00" + in.AthleteID + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func toolRequest(in app.ToolInput) (app.GeneratePlanRequest, error) {
	pctx := domain.PlanContext{
		Kind:               domain.PlanKind(strings.ToLower(strings.TrimSpace(in.Kind))),
		Intent:             in.Intent,
		Weeks:              in.Weeks,
		RaceDistance:       in.RaceDistance,
		PhilosophyOverride: in.Philosophy,
	}
	if in.RaceDate != "" {
		d, err := time.Parse("2006-01-02", in.RaceDate)
		if err != nil {
			return app.GeneratePlanRequest{}, app.Wrap(app.ErrContext, err, "race date %q", in.RaceDate)
		}
		pctx.TargetDate = &d
	}
	if pctx.Kind == "" {
		pctx.Kind = domain.PlanSeason
		if pctx.TargetDate != nil {
			pctx.Kind = domain.PlanRace
		}
	}
	if pctx.Intent == "" {
		pctx.Intent = string(pctx.Kind)
	}
	return app.GeneratePlanRequest{
		Context:  pctx,
		Athlete:  in.Athlete,
		Identity: domain.Identity{UserID: in.UserID, AthleteID: in.AthleteID},
	}, nil
}

func summarize(resp *app.GeneratePlanResponse) string {
	r := resp.Result
	s := fmt.Sprintf("%d-week plan using %s: %d sessions created, %d updated",
		resp.TotalWeeks, resp.Philosophy.PhilosophyID, r.Created, r.Updated)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	return s
}

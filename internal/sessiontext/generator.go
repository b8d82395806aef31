// Package sessiontext turns templated sessions into workout text, from the
// provider when it answers within bounds and from a deterministic
// generator otherwise.
package sessiontext

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/llm"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of provider calls allowed in flight.
const DefaultConcurrency = 4

// NewLimiter returns a limiter with n permits, shared by every generator
// that should count against the same provider budget.
func NewLimiter(n int) *semaphore.Weighted {
	if n <= 0 {
		n = DefaultConcurrency
	}
	return semaphore.NewWeighted(int64(n))
}

// outcome is the modeled result of one provider call.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeInvalid
	outcomeUnavailable
)

type callResult struct {
	outcome outcome
	out     domain.SessionTextOutput
	err     error
}

// Stats summarizes one Generate call.
type Stats struct {
	Sessions      int
	Rest          int
	CacheHits     int
	Provider      int
	Fallback      int
	ProviderCalls int
}

// Generator produces session text. One Generator may serve many runs.
type Generator struct {
	client  llm.LLMClient
	cache   *Cache
	limiter *semaphore.Weighted
	logger  *slog.Logger
}

// NewGenerator creates a generator. A nil limiter gets DefaultConcurrency
// permits; a nil logger discards.
func NewGenerator(client llm.LLMClient, cache *Cache, limiter *semaphore.Weighted, logger *slog.Logger) *Generator {
	if cache == nil {
		cache = NewCache(DefaultCacheTTL)
	}
	if limiter == nil {
		limiter = NewLimiter(DefaultConcurrency)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{client: client, cache: cache, limiter: limiter, logger: logger}
}

type sessionResult struct {
	out      domain.SessionTextOutput
	cacheHit bool
	calls    int
}

// Generate returns copies of weeks with text attached to every session.
// Sessions run concurrently; only cancellation of ctx is an error.
func (g *Generator) Generate(ctx context.Context, weeks []domain.PlannedWeek) ([]domain.PlannedWeek, Stats, error) {
	results := make([][]sessionResult, len(weeks))
	grp, gctx := errgroup.WithContext(ctx)
	for wi, w := range weeks {
		results[wi] = make([]sessionResult, len(w.Sessions))
		for si, s := range w.Sessions {
			grp.Go(func() error {
				results[wi][si] = g.text(gctx, w, s)
				return nil
			})
		}
	}
	_ = grp.Wait()
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, app.Wrap(app.ErrCanceled, err, "session text generation")
	}

	var st Stats
	out := make([]domain.PlannedWeek, len(weeks))
	for wi, w := range weeks {
		texted := w
		texted.Sessions = make([]domain.PlannedSession, len(w.Sessions))
		for si, s := range w.Sessions {
			r := results[wi][si]
			texted.Sessions[si] = s.WithText(r.out)
			st.Sessions++
			st.ProviderCalls += r.calls
			switch {
			case r.out.Source == domain.SourceRest:
				st.Rest++
			case r.cacheHit:
				st.CacheHits++
			case r.out.Source == domain.SourceProvider:
				st.Provider++
			default:
				st.Fallback++
			}
		}
		out[wi] = texted
	}
	return out, st, nil
}

func (g *Generator) text(ctx context.Context, w domain.PlannedWeek, s domain.PlannedSession) sessionResult {
	if s.IsRest() || s.Distance <= 0 {
		return sessionResult{out: RestText()}
	}
	var tpl domain.SessionTemplate
	if s.Template != nil {
		tpl = *s.Template
	}

	// A bucket spans half a unit, so an entry written for a longer session
	// can overshoot this one; such hits are regenerated.
	key := CacheKey(tpl.ID, s.Distance, w.Focus, w.Week)
	if out, ok := g.cache.Get(key); ok && Validate(out, s.Distance, tpl) == nil {
		return sessionResult{out: out, cacheHit: true}
	}

	res := sessionResult{}
	var last callResult
	for attempt := 0; attempt < 2; attempt++ {
		last = g.call(ctx, w, s, tpl)
		res.calls++
		if last.outcome != outcomeInvalid {
			break
		}
	}
	if last.outcome == outcomeOK {
		res.out = last.out
	} else {
		g.logger.Debug("session_text_fallback",
			"template", tpl.ID,
			"week", w.Week,
			"day", s.DayIndex,
			"unavailable", last.outcome == outcomeUnavailable,
			"error", last.err,
		)
		res.out = Fallback(tpl, s, w.Focus)
	}
	g.cache.Put(key, res.out)
	return res
}

var noRetries = 0

// call makes one bounded provider call and classifies its result.
func (g *Generator) call(ctx context.Context, w domain.PlannedWeek, s domain.PlannedSession, tpl domain.SessionTemplate) callResult {
	if err := g.limiter.Acquire(ctx, 1); err != nil {
		return callResult{outcome: outcomeUnavailable, err: err}
	}
	defer g.limiter.Release(1)

	prompt, err := userPrompt(w, s, tpl)
	if err != nil {
		return callResult{outcome: outcomeUnavailable, err: err}
	}
	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSessionText,
		SystemPrompt: sessionTextSystemPrompt,
		UserPrompt:   prompt,
		Format:       json.RawMessage(sessionTextSchema),
		MaxRetries:   &noRetries,
	})
	if err != nil {
		return callResult{outcome: outcomeUnavailable, err: err}
	}

	parsed, err := llm.ExtractJSON[providerText](resp.Text, nil)
	if err != nil {
		return callResult{outcome: outcomeInvalid, err: err}
	}
	out := parsed.output()
	if err := Validate(out, s.Distance, tpl); err != nil {
		return callResult{outcome: outcomeInvalid, err: fmt.Errorf("%w: %v", llm.ErrInvalidOutput, err)}
	}
	return callResult{outcome: outcomeOK, out: out}
}

type providerStep struct {
	Segment     string  `json:"segment"`
	Description string  `json:"description"`
	DistanceMi  float64 `json:"distance_mi"`
	DurationMin float64 `json:"duration_min"`
	Intensity   string  `json:"intensity"`
}

type providerText struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Structure   []providerStep `json:"structure"`
}

// output converts the provider payload. Metrics are always recomputed
// from the steps.
func (p providerText) output() domain.SessionTextOutput {
	steps := make([]domain.SessionStep, len(p.Structure))
	for i, s := range p.Structure {
		steps[i] = domain.SessionStep{
			Segment:     domain.Segment(s.Segment),
			Description: s.Description,
			DistanceMi:  s.DistanceMi,
			DurationMin: s.DurationMin,
			Intensity:   s.Intensity,
		}
	}
	return domain.SessionTextOutput{
		Title:       p.Title,
		Description: p.Description,
		Structure:   steps,
		Metrics:     Metrics(steps),
		Source:      domain.SourceProvider,
	}
}

type promptSession struct {
	TemplateID          string             `json:"template_id"`
	Kind                string             `json:"kind"`
	DescriptionKey      string             `json:"description_key"`
	Description         string             `json:"description,omitempty"`
	SessionType         string             `json:"session_type"`
	Phase               string             `json:"phase"`
	Week                int                `json:"week"`
	AllocatedDistanceMi float64            `json:"allocated_distance_mi"`
	Params              map[string]float64 `json:"params,omitempty"`
	MaxHardMinutes      float64            `json:"max_hard_minutes"`
	MaxIntensityMinutes map[string]float64 `json:"max_intensity_minutes,omitempty"`
}

func userPrompt(w domain.PlannedWeek, s domain.PlannedSession, tpl domain.SessionTemplate) (string, error) {
	data, err := json.MarshalIndent(promptSession{
		TemplateID:          tpl.ID,
		Kind:                string(tpl.Kind),
		DescriptionKey:      tpl.DescriptionKey,
		Description:         tpl.Description,
		SessionType:         s.SessionType,
		Phase:               string(w.Focus),
		Week:                w.Week,
		AllocatedDistanceMi: s.Distance,
		Params:              tpl.Params,
		MaxHardMinutes:      tpl.Constraints.MaxHardMinutes,
		MaxIntensityMinutes: tpl.Constraints.MaxIntensityMinutes,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session prompt: %w", err)
	}
	return "Write this session:\n" + string(data), nil
}

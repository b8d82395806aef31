// Package guard holds the invariant checks run at plan entry and right
// before anything is written. Every failure is an ErrInvariant.
package guard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/domain"
)

// ForbiddenFlags may not be present when a plan run starts.
var ForbiddenFlags = []string{"repair", "adjust", "replan"}

type depthKey struct{}

// Enter returns a context one planning call deeper than ctx.
func Enter(ctx context.Context) context.Context {
	return context.WithValue(ctx, depthKey{}, Depth(ctx)+1)
}

// Depth is the number of planning calls ctx is nested in.
func Depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// CheckEntry rejects legacy mode, re-entrant planning and forbidden flags.
// ctx must already have passed through Enter.
func CheckEntry(ctx context.Context, opts app.EntryOptions) error {
	if opts.LegacyMode {
		return app.Errorf(app.ErrInvariant, "legacy planning mode is not supported")
	}
	if d := Depth(ctx); d > 1 {
		return app.Errorf(app.ErrInvariant, "re-entrant planning call at depth %d", d)
	}
	for _, f := range opts.Flags {
		if slices.Contains(ForbiddenFlags, strings.ToLower(strings.TrimSpace(f))) {
			return app.Errorf(app.ErrInvariant, "flag %q is not allowed at plan entry", f)
		}
	}
	return nil
}

// CheckPrePersist verifies the finished plan before it reaches storage.
// All violations are reported together.
func CheckPrePersist(macro []domain.MacroWeek, weeks []domain.PlannedWeek) error {
	var errs []error
	for i, w := range macro {
		if w.Week != i+1 {
			errs = append(errs, fmt.Errorf("macro week %d: out of sequence, want %d", w.Week, i+1))
		}
	}
	if len(weeks) != len(macro) {
		errs = append(errs, fmt.Errorf("planned %d weeks for %d macro weeks", len(weeks), len(macro)))
	}
	for i, w := range weeks {
		if i < len(macro) && w.Week != macro[i].Week {
			errs = append(errs, fmt.Errorf("planned week %d: does not match macro week %d", w.Week, macro[i].Week))
		}
		for _, s := range w.Sessions {
			where := fmt.Sprintf("week %d day %d", w.Week, s.DayIndex)
			if !s.IsRest() && s.Distance <= 0 {
				errs = append(errs, fmt.Errorf("%s: non-rest session has distance %.1f", where, s.Distance))
			}
			if s.Text == nil {
				if !s.IsRest() {
					errs = append(errs, fmt.Errorf("%s: session has no generated text", where))
				}
				continue
			}
			if strings.TrimSpace(s.Text.Description) == "" {
				errs = append(errs, fmt.Errorf("%s: empty description", where))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return app.Wrap(app.ErrInvariant, errors.Join(errs...), "plan failed pre-persist checks")
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// identityOptions are the persistent --user / --athlete flags.
type identityOptions struct {
	user    string
	athlete string
}

func (o identityOptions) identity() domain.Identity {
	return domain.Identity{UserID: o.user, AthleteID: o.athlete}
}

type athleteOptions struct {
	fitness      float64
	fatigue      float64
	weeklyVolume float64
	longestRun   float64
	flags        []string
}

func addAthleteFlags(fs *pflag.FlagSet, o *athleteOptions) {
	fs.Float64Var(&o.fitness, "fitness", 50, "Chronic training load (CTL)")
	fs.Float64Var(&o.fatigue, "fatigue", 45, "Acute training load (ATL)")
	fs.Float64Var(&o.weeklyVolume, "weekly-volume", 0, "Current weekly volume in miles")
	fs.Float64Var(&o.longestRun, "longest-run", 0, "Longest recent run in miles")
	fs.StringSliceVar(&o.flags, "athlete-flag", nil, "Athlete flag (repeatable)")
}

func (o athleteOptions) state() domain.AthleteState {
	return domain.AthleteState{
		Fitness:        o.fitness,
		Fatigue:        o.fatigue,
		Form:           o.fitness - o.fatigue,
		Flags:          o.flags,
		WeeklyVolumeMi: o.weeklyVolume,
		LongestRunMi:   o.longestRun,
	}
}

func newPlanCmd(app *App) *cobra.Command {
	var id identityOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate and inspect training plans",
	}
	cmd.PersistentFlags().StringVar(&id.user, "user", "local", "User ID")
	cmd.PersistentFlags().StringVar(&id.athlete, "athlete", "local", "Athlete ID")

	cmd.AddCommand(
		newPlanGenerateCmd(app, &id),
		newPlanRequestCmd(app, &id),
		newPlanShowCmd(app, &id),
		newPlanListCmd(app, &id),
	)

	return cmd
}

func newPlanGenerateCmd(app *App, id *identityOptions) *cobra.Command {
	var (
		kind, intent, distance, raceDate string
		philosophy, start, planID        string
		weeks                            int
		sessions, requireNonEmpty        bool
		entryFlags                       []string
		athlete                          athleteOptions
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan and write its sessions to the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.plans()
			if err != nil {
				return err
			}

			pctx := domain.PlanContext{
				Kind:               domain.PlanKind(strings.ToLower(kind)),
				Intent:             intent,
				Weeks:              weeks,
				RaceDistance:       distance,
				PhilosophyOverride: philosophy,
			}
			if raceDate != "" {
				d, err := time.Parse(dateLayout, raceDate)
				if err != nil {
					return fmt.Errorf("invalid --race-date %q (want YYYY-MM-DD)", raceDate)
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

			now := app.now()
			if start != "" {
				d, err := time.Parse(dateLayout, start)
				if err != nil {
					return fmt.Errorf("invalid --start %q (want YYYY-MM-DD)", start)
				}
				now = d
			}

			req := appRequest(pctx, athlete.state(), id.identity(), planID, requireNonEmpty, entryFlags, now)
			resp, err := runPlan(cmd, plans, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanResult(resp, sessions))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", "", "Plan kind (race|season|week); defaults to race when --race-date is set")
	f.IntVar(&weeks, "weeks", 0, "Number of weeks")
	f.StringVar(&distance, "distance", "", "Race distance (5k, 10k, half, marathon, 50k, ...)")
	f.StringVar(&raceDate, "race-date", "", "Race date (YYYY-MM-DD)")
	f.StringVar(&intent, "intent", "", "Free-text training intent")
	f.StringVar(&philosophy, "philosophy", "", "Use this philosophy instead of selecting one")
	f.StringVar(&start, "start", "", "Plan as of this date (YYYY-MM-DD) instead of today")
	f.StringVar(&planID, "plan-id", "", "Reuse a plan ID to regenerate it in place")
	f.BoolVar(&sessions, "sessions", false, "Print every session")
	f.BoolVar(&requireNonEmpty, "require-non-empty", false, "Fail when no session could be written")
	f.StringSliceVar(&entryFlags, "flag", nil, "Caller flag checked at entry (repeatable)")
	addAthleteFlags(f, &athlete)

	return cmd
}

func appRequest(pctx domain.PlanContext, athlete domain.AthleteState, id domain.Identity, planID string, requireNonEmpty bool, flags []string, now time.Time) app.GeneratePlanRequest {
	return app.GeneratePlanRequest{
		Context:         pctx,
		Athlete:         athlete,
		Identity:        id,
		PlanID:          planID,
		RequireNonEmpty: requireNonEmpty,
		Entry:           app.EntryOptions{Flags: flags},
		Now:             &now,
	}
}

// runPlan dispatches on the plan kind so season and week plans go through
// their dedicated entry points.
func runPlan(cmd *cobra.Command, plans service.PlanService, req app.GeneratePlanRequest) (*app.GeneratePlanResponse, error) {
	ctx := cmd.Context()
	switch req.Context.Kind {
	case domain.PlanSeason:
		return plans.GenerateSeasonPlan(ctx, req)
	case domain.PlanWeek:
		return plans.GenerateWeekPlan(ctx, req)
	default:
		return plans.GeneratePlan(ctx, req)
	}
}

func newPlanRequestCmd(app *App, id *identityOptions) *cobra.Command {
	var (
		kind, intent, distance, raceDate, philosophy string
		weeks                                        int
		athlete                                      athleteOptions
	)

	cmd := &cobra.Command{
		Use:   "request [text]",
		Short: "Generate a plan from a conversational request, ignoring quick repeats",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := app.tool()
			if err != nil {
				return err
			}
			in := appToolInput(id.identity(), athlete.state())
			in.Kind = kind
			in.Intent = intent
			in.Weeks = weeks
			in.RaceDistance = distance
			in.RaceDate = raceDate
			in.Philosophy = philosophy
			if len(args) == 1 {
				in.RequestText = args[0]
			}

			out, err := tool.Run(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", formatter.Bold("Plan "+out.PlanID), formatter.Dim(out.Summary))
			for _, warning := range out.Warnings {
				fmt.Fprintf(w, "  ⚠ %s\n", warning)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", "", "Plan kind (race|season|week)")
	f.IntVar(&weeks, "weeks", 0, "Number of weeks")
	f.StringVar(&distance, "distance", "", "Race distance")
	f.StringVar(&raceDate, "race-date", "", "Race date (YYYY-MM-DD)")
	f.StringVar(&intent, "intent", "", "Free-text training intent")
	f.StringVar(&philosophy, "philosophy", "", "Use this philosophy instead of selecting one")
	addAthleteFlags(f, &athlete)

	return cmd
}

func appToolInput(id domain.Identity, athlete domain.AthleteState) app.ToolInput {
	return app.ToolInput{UserID: id.UserID, AthleteID: id.AthleteID, Athlete: athlete}
}

func newPlanShowCmd(app *App, id *identityOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show the calendar sessions of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Calendar == nil {
				return fmt.Errorf("calendar is not configured")
			}
			sessions, err := app.Calendar.ListPlanSessions(cmd.Context(), id.identity(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanSessions(sessions))
			return nil
		},
	}
}

func newPlanListCmd(app *App, id *identityOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Calendar == nil {
				return fmt.Errorf("calendar is not configured")
			}
			plans, err := app.Calendar.ListPlans(cmd.Context(), id.identity())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanList(plans))
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all services used by CLI commands.
type App struct {
	Plans    service.PlanService
	Tool     app.PlannerToolUseCase
	Calendar service.CalendarService

	// CorpusSource is read by "corpus validate"; Corpus is the loaded set
	// the pipeline runs on. CorpusErr records why loading failed, in which
	// case Plans and Tool are nil.
	CorpusSource corpus.Source
	Corpus       *corpus.Corpus
	CorpusErr    error

	// Now overrides the clock used for season and week plans.
	Now func() time.Time
}

func (a *App) plans() (service.PlanService, error) {
	if a.Plans != nil {
		return a.Plans, nil
	}
	return nil, a.unavailable("plan generation")
}

func (a *App) tool() (app.PlannerToolUseCase, error) {
	if a.Tool != nil {
		return a.Tool, nil
	}
	return nil, a.unavailable("planner tool")
}

func (a *App) unavailable(what string) error {
	if a.CorpusErr != nil {
		return fmt.Errorf("%s is unavailable: %w", what, a.CorpusErr)
	}
	return errors.New(what + " is not configured")
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Endurance training plan generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newCorpusCmd(app),
	)

	return root
}

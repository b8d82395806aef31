package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/corpus"
	"github.com/spf13/cobra"
)

func newCorpusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the philosophy, structure and template corpus",
	}

	cmd.AddCommand(
		newCorpusValidateCmd(app),
		newCorpusListCmd(app),
	)

	return cmd
}

func newCorpusValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every corpus document and report all problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.CorpusSource == nil {
				return fmt.Errorf("corpus source is not configured")
			}
			errs, err := corpus.Validate(cmd.Context(), app.CorpusSource)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatValidation(errs))
			if len(errs) > 0 {
				return fmt.Errorf("corpus has %d invalid document(s)", len(errs))
			}
			return nil
		},
	}
}

func newCorpusListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List philosophies, week structures and session templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Corpus == nil {
				return app.unavailable("corpus")
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCorpus(app.Corpus))
			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/migrate"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand(opts *globalOptions) *cobra.Command {
	var (
		strict     bool
		showSchema bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Translate and run every script against the target",
		Long: `Translate every script of the scripts directory and run it against the
target database. Failed statements are reported but never stop the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, strict, showSchema)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any statement failed")
	cmd.Flags().BoolVar(&showSchema, "schema", true, "list the resulting tables")

	return cmd
}

func runApply(cmd *cobra.Command, opts *globalOptions, strict, showSchema bool) error {
	ctx := cmd.Context()
	cfg := opts.cfg

	target, err := openTarget(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() {
		if target.InMemory() {
			target.Drop(ctx)
			return
		}
		target.Close()
	}()

	engine, err := newEngine(cfg, target)
	if err != nil {
		return err
	}

	outcome, err := engine.Run(ctx, migrate.NewSession(), cfg.ScriptsDir)
	if err != nil {
		return err
	}

	if !cfg.Verbose {
		if err := printOutcome(outcome); err != nil {
			return err
		}
	}
	if showSchema {
		if err := printSchema(ctx, target); err != nil {
			return err
		}
	}

	if outcome.Errors > 0 {
		if strict {
			return fmt.Errorf("%d statement(s) failed", outcome.Errors)
		}
		ui.PrintWarning("%d statement(s) failed", outcome.Errors)
		return nil
	}
	ui.PrintSuccess("Applied scripts from %s", cfg.ScriptsDir)
	return nil
}

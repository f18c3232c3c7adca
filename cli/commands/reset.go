package commands

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/migrate/shadow"
)

// NewResetCommand creates the reset command.
func NewResetCommand(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the target database",
		Long: `Delete the target database: the SQLite file, or the <db>_echo database
created on a MySQL or PostgreSQL server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, opts, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runReset(cmd *cobra.Command, opts *globalOptions, yes bool) error {
	cfg := opts.cfg

	engine, err := shadow.NormalizeEngine(cfg.Engine)
	if err != nil {
		return err
	}
	if engine == shadow.EngineSQLite && cfg.DSN == "" {
		ui.PrintInfo("The in-memory database disappears on its own, nothing to reset")
		return nil
	}

	if !yes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: "Delete the target database? All data will be lost.",
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ui.PrintWarning("Reset cancelled")
			return nil
		}
	}

	if engine == shadow.EngineSQLite {
		path := sqlitePath(cfg.DSN)
		if err := removeFile(path); err != nil {
			return err
		}
		ui.PrintSuccess("Removed %s", path)
		return nil
	}

	// opening recreates the echo database, dropping it leaves nothing behind
	target, err := openTarget(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	name := target.Name()
	if err := target.Drop(cmd.Context()); err != nil {
		return err
	}
	ui.PrintSuccess("Dropped %s", name)
	return nil
}

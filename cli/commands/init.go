package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlecho/cli/internal/config"
	"github.com/satishbabariya/sqlecho/cli/internal/ui"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to .sqlecho.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SaveConfig(opts.cfg, dir)
			if err != nil {
				return err
			}
			if err := config.AppFs.MkdirAll(opts.cfg.ScriptsDir, 0755); err != nil {
				return err
			}
			ui.PrintSuccess("Wrote %s", path)
			ui.PrintList([]string{
				"Put migration scripts in " + opts.cfg.ScriptsDir + " named like V1__create_users.sql",
				"Run sqlecho translate to preview the translated statements",
				"Run sqlecho apply to execute them",
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "output", ".", "directory to write the config file to")

	return cmd
}

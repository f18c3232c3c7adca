package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlecho/cli/internal/config"
	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/migrate/script"
	"github.com/satishbabariya/sqlecho/migrate/splitter"
)

// NewListCommand creates the list command.
func NewListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scripts in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts)
		},
	}
}

func runList(opts *globalOptions) error {
	scripts, err := script.Load(config.AppFs, opts.cfg.ScriptsDir)
	if err != nil {
		return err
	}
	if len(scripts) == 0 {
		ui.PrintWarning("No scripts found in %s", opts.cfg.ScriptsDir)
		return nil
	}

	rows := make([][]string, 0, len(scripts))
	for _, sc := range scripts {
		supported, skipped := 0, 0
		for _, stmt := range splitter.Split(sc.Content) {
			if stmt.Supported() {
				supported++
			} else {
				skipped++
			}
		}
		rows = append(rows, []string{
			strconv.FormatFloat(sc.Version, 'f', -1, 64),
			sc.Name,
			fmt.Sprintf("%d", supported),
			fmt.Sprintf("%d", skipped),
		})
	}
	return ui.PrintTable([]string{"Version", "Script", "Statements", "Skipped"}, rows)
}

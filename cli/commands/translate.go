package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/migrate"
)

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(opts *globalOptions) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Print the statements apply would run, without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, markdown)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the output as markdown")

	return cmd
}

func runTranslate(opts *globalOptions, markdown bool) error {
	engine, err := newEngine(opts.cfg, nil)
	if err != nil {
		return err
	}

	plans, err := engine.Plan(opts.cfg.ScriptsDir)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		ui.PrintWarning("No scripts found in %s", opts.cfg.ScriptsDir)
		return nil
	}

	if markdown {
		return ui.PrintMarkdown(renderPlans(plans))
	}

	for _, plan := range plans {
		fmt.Fprintf(ui.Out, "-- %s (%d skipped)\n", plan.Script.Name, plan.Skipped)
		for _, stmt := range plan.Statements {
			fmt.Fprintf(ui.Out, "%s;\n", stmt)
		}
		fmt.Fprintln(ui.Out)
	}
	return nil
}

// renderPlans formats plans as a markdown document
func renderPlans(plans []migrate.ScriptPlan) string {
	var b strings.Builder
	b.WriteString("# Translated scripts\n\n")
	for _, plan := range plans {
		fmt.Fprintf(&b, "## %s\n\n", plan.Script.Name)
		fmt.Fprintf(&b, "Version %g, %d statement(s), %d skipped.\n\n", plan.Script.Version, len(plan.Statements), plan.Skipped)
		if len(plan.Statements) == 0 {
			continue
		}
		b.WriteString("```sql\n")
		for _, stmt := range plan.Statements {
			b.WriteString(stmt)
			b.WriteString(";\n")
		}
		b.WriteString("```\n\n")
	}
	return b.String()
}

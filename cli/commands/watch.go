package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/cli/internal/watch"
	"github.com/satishbabariya/sqlecho/migrate"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the scripts on a fresh database whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}
}

func runWatch(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()
	cfg := opts.cfg

	rerun := func() error {
		target, err := openTarget(ctx, cfg, true)
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
			// a half written script name should not end the watch
			ui.PrintError("%v", err)
			return nil
		}
		return printOutcome(outcome)
	}

	w, err := watch.NewWatcher(cfg.ScriptsDir, rerun)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	ui.PrintInfo("Watching %s, press Ctrl+C to stop", cfg.ScriptsDir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	return w.Stop()
}

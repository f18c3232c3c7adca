// Package commands implements the sqlecho command line.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satishbabariya/sqlecho/cli/internal/config"
	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/cli/internal/version"
	"github.com/satishbabariya/sqlecho/internal/debug"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	dir        string
	dialect    string
	engine     string
	dsn        string
	verbose    bool
	debug      bool
	logLevel   string

	cfg *config.Config
}

// Execute is the main entry point for the CLI
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

// NewRootCommand creates the sqlecho command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "sqlecho",
		Short: "Run MariaDB/MySQL migration scripts against an embedded database",
		Long: `sqlecho translates version-ordered MariaDB/MySQL migration scripts into
statements an embedded engine accepts and runs them, so tests get a real
schema without a second set of scripts.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default .sqlecho.yaml in ., $HOME or $HOME/.config/sqlecho)")
	flags.StringVarP(&opts.dir, "dir", "d", "", "directory holding the migration scripts")
	flags.StringVar(&opts.dialect, "dialect", "", "source dialect: mariadb, mysql, passthrough or h2")
	flags.StringVar(&opts.engine, "engine", "", "target engine: sqlite, mysql or postgres")
	flags.StringVar(&opts.dsn, "dsn", "", "target DSN (sqlite file path, mysql DSN or postgres URL)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print per-script progress and the run summary")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.logLevel, "log-level", "debug", "debug log level: debug, info, warn or error")

	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// load reads the configuration and lets explicit flags override it.
func (o *globalOptions) load(cmd *cobra.Command) error {
	debug.Configure(debug.Options{
		Enabled: o.debug,
		Level:   debug.ParseLevel(o.logLevel),
	})

	cfg, err := config.Load(viper.New(), o.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.ScriptsDir = o.dir
	}
	if flags.Changed("dialect") {
		cfg.Dialect = o.dialect
	}
	if flags.Changed("engine") {
		cfg.Engine = o.engine
	}
	if flags.Changed("dsn") {
		cfg.DSN = o.dsn
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := version.Check(version.Version, cfg.RequiredVersion); err != nil {
		return err
	}

	debug.Debug("configuration loaded",
		"file", cfg.ConfigFile,
		"scripts_dir", cfg.ScriptsDir,
		"dialect", cfg.Dialect,
		"engine", cfg.Engine,
	)
	o.cfg = cfg
	return nil
}

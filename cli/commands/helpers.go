package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/satishbabariya/sqlecho/cli/internal/config"
	"github.com/satishbabariya/sqlecho/cli/internal/ui"
	"github.com/satishbabariya/sqlecho/internal/debug"
	"github.com/satishbabariya/sqlecho/migrate"
	"github.com/satishbabariya/sqlecho/migrate/dialect"
	"github.com/satishbabariya/sqlecho/migrate/executor"
	"github.com/satishbabariya/sqlecho/migrate/history"
	"github.com/satishbabariya/sqlecho/migrate/shadow"
	"github.com/satishbabariya/sqlecho/migrate/sqlgen"
)

// newEngine wires an engine for cfg on top of target. A nil target gives
// an engine that can only Plan.
func newEngine(cfg *config.Config, target *shadow.Database) (*migrate.Engine, error) {
	translator, err := dialect.New(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	engineName, err := shadow.NormalizeEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	finisher, err := sqlgen.NewFinisher(engineName)
	if err != nil {
		return nil, err
	}

	opts := []migrate.Option{
		migrate.WithFs(config.AppFs),
		migrate.WithTranslator(translator),
		migrate.WithFinisher(finisher),
		migrate.WithTarget(engineName),
		migrate.WithVerbose(cfg.Verbose),
		migrate.WithOutput(ui.Out),
		migrate.WithLogger(debug.Logger()),
	}

	if target == nil {
		return migrate.NewEngine(nil, opts...), nil
	}
	if cfg.RecordHistory {
		opts = append(opts, migrate.WithLedger(history.NewLedger(target.DB(), target.Engine())))
	}
	return migrate.NewEngine(target.DB(), opts...), nil
}

// openTarget provisions the configured target. A sqlite file is removed
// first when fresh is set.
func openTarget(ctx context.Context, cfg *config.Config, fresh bool) (*shadow.Database, error) {
	engine, err := shadow.NormalizeEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if fresh && engine == shadow.EngineSQLite && cfg.DSN != "" {
		if err := removeFile(sqlitePath(cfg.DSN)); err != nil {
			return nil, err
		}
	}
	return shadow.Open(ctx, shadow.Config{Engine: engine, DSN: cfg.DSN})
}

func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

func removeFile(path string) error {
	if err := config.AppFs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// printOutcome prints the counters and the error log of a run.
func printOutcome(outcome *executor.Outcome) error {
	ui.PrintSection("Summary")
	ui.PrintCounts(outcome.Run, outcome.Skipped, outcome.Errors, outcome.Ignored)

	if len(outcome.Log) == 0 {
		return nil
	}

	ui.PrintSection("Errors")
	rows := make([][]string, 0, len(outcome.Log))
	for _, entry := range outcome.Log {
		msg := entry.Message
		if msg == "" && entry.Err != nil {
			if cause := errors.Unwrap(entry.Err); cause != nil {
				msg = cause.Error()
			}
		}
		rows = append(rows, []string{entry.Script, ui.Truncate(entry.Statement, 60), ui.Truncate(msg, 60)})
	}
	return ui.PrintTable([]string{"Script", "Statement", "Message"}, rows)
}

// printSchema lists the tables of target with their column counts.
func printSchema(ctx context.Context, target *shadow.Database) error {
	schema, err := target.Introspect(ctx)
	if err != nil {
		return err
	}

	ui.PrintSection(fmt.Sprintf("Tables in %s", target.Name()))
	if len(schema.Tables) == 0 {
		ui.PrintInfo("No tables")
		return nil
	}

	rows := make([][]string, 0, len(schema.Tables))
	for _, table := range schema.Tables {
		if table.Name == history.TableName {
			continue
		}
		rows = append(rows, []string{
			table.Name,
			fmt.Sprintf("%d", len(table.Columns)),
			strings.Join(table.PrimaryKey, ", "),
		})
	}
	return ui.PrintTable([]string{"Table", "Columns", "Primary Key"}, rows)
}

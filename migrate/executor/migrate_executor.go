// Package executor runs translated statements against the target database
// and collects the outcome.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/satishbabariya/sqlecho/internal/debug"
	"github.com/satishbabariya/sqlecho/migrate/dialect"
	"github.com/satishbabariya/sqlecho/migrate/sqlgen"
)

// Execer executes a single statement. *sql.DB, *sql.Tx and *sql.Conn all
// satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Outcome aggregates the result of a run
type Outcome struct {
	Run     int
	Skipped int
	Errors  int
	// Ignored counts failures swallowed because of the IGNORE modifier.
	// They are included in Run.
	Ignored int
	Log     []ErrorEntry
}

// ErrorEntry describes one recorded statement failure
type ErrorEntry struct {
	Script    string
	Statement string
	Message   string
	Err       error
}

// StatementError wraps a driver error with the statement that caused it.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("failed to execute statement %q: %v", e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// ExtractMessage returns the nested cause message of err up to its first ';'.
// It returns "" when err has no nested cause or the message has no ';'.
func ExtractMessage(err error) string {
	cause := errors.Unwrap(err)
	if cause == nil {
		return ""
	}
	msg := cause.Error()
	i := strings.IndexByte(msg, ';')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(msg[:i])
}

// Executor executes statements on a database
type Executor struct {
	db       Execer
	finisher sqlgen.Finisher
	logger   *slog.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithFinisher sets the engine finisher applied after formatting.
func WithFinisher(f sqlgen.Finisher) Option {
	return func(e *Executor) { e.finisher = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates a new statement executor
func NewExecutor(db Execer, opts ...Option) *Executor {
	e := &Executor{
		db:       db,
		finisher: sqlgen.Identity{},
		logger:   debug.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs statements in order and records the result in outcome.
// Statement failures never abort the loop; only a cancelled context does.
func (e *Executor) Execute(ctx context.Context, scriptName string, statements []string, outcome *Outcome) error {
	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return err
		}

		final := e.finisher.Finish(dialect.Format(stmt))
		if final == "" {
			// nothing the target engine can run
			outcome.Skipped++
			continue
		}

		_, err := e.db.ExecContext(ctx, final)
		if err == nil {
			outcome.Run++
			continue
		}

		err = &StatementError{Statement: final, Err: err}
		if dialect.HasIgnore(stmt) {
			e.logger.Debug("ignored statement failure", "script", scriptName, "error", err)
			outcome.Run++
			outcome.Ignored++
			continue
		}

		e.logger.Warn("statement failed", "script", scriptName, "error", err)
		outcome.Errors++
		outcome.Log = append(outcome.Log, ErrorEntry{
			Script:    scriptName,
			Statement: final,
			Message:   ExtractMessage(err),
			Err:       err,
		})
	}
	return nil
}

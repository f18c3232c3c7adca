// Package migrate runs MariaDB/MySQL migration scripts against an embedded
// target database.
//
// An Engine locates the scripts of a directory, orders them by version,
// splits and translates every script and executes the result statement by
// statement. Failures are collected, never fatal. A Session remembers which
// scripts already ran so repeated setup calls are cheap.
package migrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/satishbabariya/sqlecho/internal/debug"
	"github.com/satishbabariya/sqlecho/migrate/dialect"
	"github.com/satishbabariya/sqlecho/migrate/executor"
	"github.com/satishbabariya/sqlecho/migrate/history"
	"github.com/satishbabariya/sqlecho/migrate/script"
	"github.com/satishbabariya/sqlecho/migrate/splitter"
	"github.com/satishbabariya/sqlecho/migrate/sqlgen"
)

// DefaultScriptsDir is where scripts are looked up when no directory is given
const DefaultScriptsDir = "db/migrations"

// Session holds the state shared by every run against one target database.
type Session struct {
	registry *history.Registry

	mu      sync.Mutex
	created bool
}

// NewSession creates a session with an empty registry
func NewSession() *Session {
	return &Session{registry: history.NewRegistry()}
}

// Registry returns the scripts executed in this session
func (s *Session) Registry() *history.Registry {
	return s.registry
}

// Created reports whether a run has completed in this session.
func (s *Session) Created() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *Session) markCreated() {
	s.mu.Lock()
	s.created = true
	s.mu.Unlock()
}

// Engine is the main migration engine
type Engine struct {
	db         executor.Execer
	fs         afero.Fs
	translator dialect.Translator
	finisher   sqlgen.Finisher
	ledger     *history.Ledger
	target     string
	verbose    bool
	out        io.Writer
	logger     *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithFs sets the filesystem scripts are read from.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithTranslator sets the source dialect translator.
func WithTranslator(t dialect.Translator) Option {
	return func(e *Engine) { e.translator = t }
}

// WithFinisher sets the target engine finisher.
func WithFinisher(f sqlgen.Finisher) Option {
	return func(e *Engine) { e.finisher = f }
}

// WithLedger records every executed script in the ledger and seeds the
// session registry from it.
func WithLedger(l *history.Ledger) Option {
	return func(e *Engine) { e.ledger = l }
}

// WithTarget sets the target name shown in diagnostic output.
func WithTarget(name string) Option {
	return func(e *Engine) { e.target = name }
}

// WithVerbose enables the per-script lines and the end of run summary.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) { e.verbose = verbose }
}

// WithOutput sets where diagnostic output goes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a new migration engine executing on db
func NewEngine(db executor.Execer, opts ...Option) *Engine {
	e := &Engine{
		db:         db,
		fs:         afero.NewOsFs(),
		translator: dialect.NewMariaDB(),
		finisher:   sqlgen.Identity{},
		target:     "target",
		out:        os.Stdout,
		logger:     debug.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes every script of dir not yet recorded in session. A malformed
// script name or an unreadable script aborts the run before anything is
// executed; statement failures only end up in the outcome.
func (e *Engine) Run(ctx context.Context, session *Session, dir string) (*executor.Outcome, error) {
	scripts, err := script.Load(e.fs, dir)
	if err != nil {
		return nil, err
	}

	if e.ledger != nil {
		if err := e.ledger.InitTable(ctx); err != nil {
			return nil, err
		}
		if err := e.ledger.Seed(ctx, session.Registry()); err != nil {
			return nil, err
		}
	}

	outcome := &executor.Outcome{}
	exec := executor.NewExecutor(e.db,
		executor.WithFinisher(e.finisher),
		executor.WithLogger(e.logger),
	)

	for _, sc := range scripts {
		if session.Registry().Contains(sc.Name) {
			e.printf("Script already run, not re-running: %s\n", sc.Name)
			continue
		}

		e.printf("Running script on %s: %s\n", e.target, sc.Name)
		e.logger.Debug("running script", "script", sc.Name, "version", sc.Version, "dialect", e.translator.Name())

		start := time.Now()
		run, errs := outcome.Run, outcome.Errors

		statements, skipped := e.translate(sc)
		outcome.Skipped += skipped
		if err := exec.Execute(ctx, sc.Name, statements, outcome); err != nil {
			return outcome, fmt.Errorf("script %s: %w", sc.Name, err)
		}
		session.Registry().Add(sc.Name)

		if e.ledger != nil {
			err := e.ledger.Record(ctx, &history.Record{
				ScriptName:      sc.Name,
				Checksum:        history.CalculateChecksum(sc.Content),
				AppliedAt:       time.Now(),
				ExecutionTime:   time.Since(start).Milliseconds(),
				StatementsRun:   outcome.Run - run,
				StatementErrors: outcome.Errors - errs,
			})
			if err != nil {
				e.logger.Warn("failed to record script", "script", sc.Name, "error", err)
			}
		}
	}

	session.markCreated()

	if e.verbose {
		if err := executor.WriteReport(e.out, outcome); err != nil {
			e.logger.Warn("failed to write report", "error", err)
		}
	}
	return outcome, nil
}

// ScriptPlan is the translation of one script
type ScriptPlan struct {
	Script script.Script
	// Statements are the exact statements Run would execute.
	Statements []string
	Skipped    int
}

// Plan translates every script of dir without executing anything.
func (e *Engine) Plan(dir string) ([]ScriptPlan, error) {
	scripts, err := script.Load(e.fs, dir)
	if err != nil {
		return nil, err
	}

	plans := make([]ScriptPlan, 0, len(scripts))
	for _, sc := range scripts {
		statements, skipped := e.translate(sc)
		plan := ScriptPlan{Script: sc, Skipped: skipped}
		for _, stmt := range statements {
			final := e.finisher.Finish(dialect.Format(stmt))
			if final == "" {
				plan.Skipped++
				continue
			}
			plan.Statements = append(plan.Statements, final)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// translate splits sc and translates every supported statement. It returns
// the statements to execute and the number of skipped candidates.
func (e *Engine) translate(sc script.Script) ([]string, int) {
	var (
		out     []string
		skipped int
	)
	for _, stmt := range splitter.Split(sc.Content) {
		if !stmt.Supported() {
			e.logger.Debug("skipping statement", "script", sc.Name, "category", stmt.Category.String())
			skipped++
			continue
		}
		translated := e.translator.Translate(stmt)
		if len(translated) == 0 {
			skipped++
			continue
		}
		out = append(out, translated...)
	}
	return out, skipped
}

func (e *Engine) printf(format string, args ...any) {
	if e.verbose {
		fmt.Fprintf(e.out, format, args...)
	}
}

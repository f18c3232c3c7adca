// Package echotest gives test suites a database built from production
// migration scripts.
//
// A Fixture is meant to live in a package variable shared by every test of
// a package:
//
//	var schema = echotest.New("../db/migrations")
//
//	func TestUserStore(t *testing.T) {
//		store := echotest.Bind(t, schema, NewUserStore)
//		...
//	}
//
// The first DB call provisions the target and runs the scripts. Later calls
// go through the same session, so scripts that already ran are not run
// again.
package echotest

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/satishbabariya/sqlecho/migrate"
	"github.com/satishbabariya/sqlecho/migrate/dialect"
	"github.com/satishbabariya/sqlecho/migrate/executor"
	"github.com/satishbabariya/sqlecho/migrate/shadow"
	"github.com/satishbabariya/sqlecho/migrate/sqlgen"
)

// Fixture owns one target database and the session that populated it
type Fixture struct {
	dir     string
	fs      afero.Fs
	dialect string
	target  shadow.Config
	strict  bool
	verbose io.Writer

	mu       sync.Mutex
	database *shadow.Database
	engine   *migrate.Engine
	session  *migrate.Session
	outcome  *executor.Outcome
}

// Option configures a Fixture
type Option func(*Fixture)

// WithFs reads scripts from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(f *Fixture) { f.fs = fs }
}

// WithDialect selects the source dialect. Defaults to mariadb.
func WithDialect(name string) Option {
	return func(f *Fixture) { f.dialect = name }
}

// WithTarget selects the target database. Defaults to in-memory SQLite.
func WithTarget(cfg shadow.Config) Option {
	return func(f *Fixture) { f.target = cfg }
}

// WithStrict fails the calling test when any statement failed.
func WithStrict() Option {
	return func(f *Fixture) { f.strict = true }
}

// WithVerbose writes the per-script lines and the run summary to w.
func WithVerbose(w io.Writer) Option {
	return func(f *Fixture) { f.verbose = w }
}

// New creates a fixture for the scripts in dir. Nothing is opened until the
// first DB call.
func New(dir string, opts ...Option) *Fixture {
	f := &Fixture{
		dir:     dir,
		fs:      afero.NewOsFs(),
		dialect: dialect.MariaDB,
		target:  shadow.Config{Engine: shadow.EngineSQLite},
		session: migrate.NewSession(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DB returns the target database with every script applied.
func (f *Fixture) DB(t testing.TB) *sql.DB {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	ctx := context.Background()
	if f.database == nil {
		if err := f.open(ctx); err != nil {
			t.Fatalf("echotest: %v", err)
		}
	}

	outcome, err := f.engine.Run(ctx, f.session, f.dir)
	if err != nil {
		t.Fatalf("echotest: running scripts in %s: %v", f.dir, err)
	}
	if f.outcome == nil || outcome.Run > 0 || outcome.Errors > 0 {
		f.outcome = outcome
	}

	if f.strict {
		for _, entry := range outcome.Log {
			t.Errorf("echotest: %s: %s: %v", entry.Script, entry.Statement, entry.Err)
		}
	}
	return f.database.DB()
}

// Outcome returns the outcome of the last run that executed anything.
func (f *Fixture) Outcome() *executor.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Session returns the session scripts are run through
func (f *Fixture) Session() *migrate.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Close drops the target database. A later DB call provisions a new one
// and starts over with a fresh session.
func (f *Fixture) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.database == nil {
		return nil
	}
	err := f.database.Drop(context.Background())
	f.database = nil
	f.engine = nil
	f.outcome = nil
	f.session = migrate.NewSession()
	return err
}

func (f *Fixture) open(ctx context.Context) error {
	translator, err := dialect.New(f.dialect)
	if err != nil {
		return err
	}

	database, err := shadow.Open(ctx, f.target)
	if err != nil {
		return err
	}

	finisher, err := sqlgen.NewFinisher(database.Engine())
	if err != nil {
		database.Close()
		return err
	}

	opts := []migrate.Option{
		migrate.WithFs(f.fs),
		migrate.WithTranslator(translator),
		migrate.WithFinisher(finisher),
		migrate.WithTarget(database.Engine()),
	}
	if f.verbose != nil {
		opts = append(opts, migrate.WithVerbose(true), migrate.WithOutput(f.verbose))
	}

	f.database = database
	f.engine = migrate.NewEngine(database.DB(), opts...)
	return nil
}

// Bind constructs a data access object on top of the fixture database.
func Bind[T any](t testing.TB, f *Fixture, ctor func(*sql.DB) T) T {
	t.Helper()
	return ctor(f.DB(t))
}

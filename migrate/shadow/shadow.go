// Package shadow provisions the throwaway database that translated scripts
// are executed against.
//
// The default is a private in-memory SQLite database that disappears with
// its connection. A file path keeps the SQLite database on disk. MySQL and
// PostgreSQL DSNs get a fresh "<db>_echo" database created next to the one
// named in the DSN.
package shadow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/satishbabariya/sqlecho/migrate/introspect"
)

// Engine names
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// suffix appended to the database named in a server DSN
const echoSuffix = "_echo"

// ErrUnsupportedEngine is returned for engine names Open does not know.
var ErrUnsupportedEngine = errors.New("unsupported engine")

// NormalizeEngine maps engine aliases onto the canonical names.
func NormalizeEngine(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return EngineSQLite, nil
	case "mysql", "mariadb":
		return EngineMySQL, nil
	case "postgres", "postgresql":
		return EnginePostgres, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEngine, name)
	}
}

// SQLiteDriver returns the registered SQLite driver name and its flavour
// ("purego" or "cgo").
func SQLiteDriver() (name, kind string) {
	return sqliteDriver, sqliteDriverType
}

// Config selects the target database
type Config struct {
	Engine string
	// DSN is a file path for sqlite (empty for in-memory), a go-sql-driver
	// DSN for mysql and a postgres:// URL for postgres.
	DSN string
}

// Database is an open target database
type Database struct {
	engine string
	name   string
	// file backing a sqlite database, empty when in memory
	path string
	// server DSN used to drop the echo database again
	adminDSN string
	db       *sql.DB
}

// Open provisions and connects to the target database.
func Open(ctx context.Context, cfg Config) (*Database, error) {
	engine, err := NormalizeEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}

	var d *Database
	switch engine {
	case EngineSQLite:
		d, err = openSQLite(ctx, cfg.DSN)
	case EngineMySQL:
		d, err = openMySQL(ctx, cfg.DSN)
	case EnginePostgres:
		d, err = openPostgres(ctx, cfg.DSN)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DB returns the database connection
func (d *Database) DB() *sql.DB {
	return d.db
}

// Engine returns the canonical engine name
func (d *Database) Engine() string {
	return d.engine
}

// Name returns the database name, or the file path for a sqlite file.
func (d *Database) Name() string {
	return d.name
}

// InMemory reports whether the database lives only in memory.
func (d *Database) InMemory() bool {
	return d.engine == EngineSQLite && d.path == ""
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Drop closes the connection and removes what Open created.
func (d *Database) Drop(ctx context.Context) error {
	if err := d.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	switch d.engine {
	case EngineSQLite:
		if d.path == "" {
			return nil
		}
		if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", d.path, err)
		}
		return nil
	case EngineMySQL:
		return execAdmin(ctx, "mysql", d.adminDSN, "DROP DATABASE IF EXISTS `"+d.name+"`")
	case EnginePostgres:
		return execAdmin(ctx, "postgres", d.adminDSN, "DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(d.name))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedEngine, d.engine)
	}
}

// Introspect lists the tables of the target database
func (d *Database) Introspect(ctx context.Context) (*introspect.DatabaseSchema, error) {
	if d.db == nil {
		return nil, fmt.Errorf("database %s is closed", d.name)
	}

	introspector, err := introspect.NewIntrospector(d.db, d.engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create introspector: %w", err)
	}

	return introspector.Introspect(ctx)
}

func openSQLite(ctx context.Context, dsn string) (*Database, error) {
	d := &Database{engine: EngineSQLite}

	if dsn == "" {
		d.name = "sqlecho_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		dsn = "file:" + d.name + "?mode=memory&cache=shared"
	} else {
		d.path = strings.TrimPrefix(dsn, "file:")
		if i := strings.IndexByte(d.path, '?'); i >= 0 {
			d.path = d.path[:i]
		}
		d.name = d.path
	}

	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// an in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	d.db = db
	return d, nil
}

func openMySQL(ctx context.Context, dsn string) (*Database, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}

	base := cfg.DBName
	if base == "" {
		base = "sqlecho"
	}
	name := base + echoSuffix

	admin := cfg.Clone()
	admin.DBName = ""
	adminDSN := admin.FormatDSN()

	if err := execAdmin(ctx, "mysql", adminDSN,
		"DROP DATABASE IF EXISTS `"+name+"`",
		"CREATE DATABASE `"+name+"`",
	); err != nil {
		return nil, fmt.Errorf("failed to create echo database: %w", err)
	}

	target := cfg.Clone()
	target.DBName = name
	db, err := connect(ctx, "mysql", target.FormatDSN())
	if err != nil {
		return nil, err
	}

	return &Database{engine: EngineMySQL, name: name, adminDSN: adminDSN, db: db}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Database, error) {
	if _, err := pq.ParseURL(dsn); err != nil {
		return nil, fmt.Errorf("invalid postgres url: %w", err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres url: %w", err)
	}

	base := strings.TrimPrefix(u.Path, "/")
	if base == "" {
		base = "sqlecho"
	}
	name := base + echoSuffix

	admin := *u
	admin.Path = "/postgres"
	adminDSN := admin.String()

	if err := execAdmin(ctx, "postgres", adminDSN,
		"DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name),
		"CREATE DATABASE "+pq.QuoteIdentifier(name),
	); err != nil {
		return nil, fmt.Errorf("failed to create echo database: %w", err)
	}

	target := *u
	target.Path = "/" + name
	db, err := connect(ctx, "postgres", target.String())
	if err != nil {
		return nil, err
	}

	return &Database{engine: EnginePostgres, name: name, adminDSN: adminDSN, db: db}, nil
}

func connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return db, nil
}

// execAdmin runs statements on a short-lived server connection.
func execAdmin(ctx context.Context, driver, dsn string, statements ...string) error {
	db, err := connect(ctx, driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}

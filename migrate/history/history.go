// Package history tracks which scripts have been executed, in memory for a
// session and optionally in a ledger table inside the target database.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// TableName is the ledger table created in the target database
const TableName = "_sqlecho_history"

// Record is one ledger row
type Record struct {
	ID              int64
	ScriptName      string
	Checksum        string
	AppliedAt       time.Time
	ExecutionTime   int64 // milliseconds
	StatementsRun   int
	StatementErrors int
}

// Ledger persists executed scripts in the target database
type Ledger struct {
	db     *sql.DB
	engine string
}

// NewLedger creates a new ledger for the given engine
func NewLedger(db *sql.DB, engine string) *Ledger {
	return &Ledger{
		db:     db,
		engine: engine,
	}
}

// InitTable creates the ledger table
func (l *Ledger) InitTable(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, l.getTableSQL())
	if err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Record records a script execution
func (l *Ledger) Record(ctx context.Context, record *Record) error {
	_, err := l.db.ExecContext(ctx, l.getInsertSQL(),
		record.ScriptName,
		record.Checksum,
		record.AppliedAt.UTC(),
		record.ExecutionTime,
		record.StatementsRun,
		record.StatementErrors,
	)
	if err != nil {
		return fmt.Errorf("failed to record script %s: %w", record.ScriptName, err)
	}
	return nil
}

// GetAll returns all ledger rows in insertion order
func (l *Ledger) GetAll(ctx context.Context) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, script_name, checksum, applied_at, execution_ms, statements_run, statement_errors
		FROM `+TableName+`
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record    Record
			appliedAt string
		)
		err := rows.Scan(
			&record.ID,
			&record.ScriptName,
			&record.Checksum,
			&appliedAt,
			&record.ExecutionTime,
			&record.StatementsRun,
			&record.StatementErrors,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		record.AppliedAt = parseTimestamp(appliedAt)
		records = append(records, record)
	}

	return records, rows.Err()
}

// Seed adds every script name in the ledger to registry.
func (l *Ledger) Seed(ctx context.Context, registry *Registry) error {
	records, err := l.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		registry.Add(record.ScriptName)
	}
	return nil
}

// CalculateChecksum calculates a checksum for script content
func CalculateChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// drivers hand timestamps back in different textual shapes
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// getTableSQL returns SQL to create the ledger table
func (l *Ledger) getTableSQL() string {
	switch l.engine {
	case "postgresql", "postgres":
		return `
			CREATE TABLE IF NOT EXISTS ` + TableName + ` (
				id SERIAL PRIMARY KEY,
				script_name VARCHAR(255) NOT NULL UNIQUE,
				checksum VARCHAR(64) NOT NULL,
				applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				execution_ms BIGINT,
				statements_run INTEGER NOT NULL DEFAULT 0,
				statement_errors INTEGER NOT NULL DEFAULT 0
			)
		`
	case "mysql", "mariadb":
		return `
			CREATE TABLE IF NOT EXISTS ` + TableName + ` (
				id INT AUTO_INCREMENT PRIMARY KEY,
				script_name VARCHAR(255) NOT NULL UNIQUE,
				checksum VARCHAR(64) NOT NULL,
				applied_at DATETIME(6) NOT NULL,
				execution_ms BIGINT,
				statements_run INT NOT NULL DEFAULT 0,
				statement_errors INT NOT NULL DEFAULT 0
			)
		`
	default:
		return `
			CREATE TABLE IF NOT EXISTS ` + TableName + ` (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				script_name TEXT NOT NULL UNIQUE,
				checksum TEXT NOT NULL,
				applied_at TEXT NOT NULL,
				execution_ms INTEGER,
				statements_run INTEGER NOT NULL DEFAULT 0,
				statement_errors INTEGER NOT NULL DEFAULT 0
			)
		`
	}
}

// getInsertSQL returns SQL to insert a ledger row
func (l *Ledger) getInsertSQL() string {
	switch l.engine {
	case "postgresql", "postgres":
		return `
			INSERT INTO ` + TableName + ` (script_name, checksum, applied_at, execution_ms, statements_run, statement_errors)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
	default:
		return `
			INSERT INTO ` + TableName + ` (script_name, checksum, applied_at, execution_ms, statements_run, statement_errors)
			VALUES (?, ?, ?, ?, ?, ?)
		`
	}
}

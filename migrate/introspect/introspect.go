// Package introspect reads the tables and columns of a target database.
package introspect

import (
	"context"
	"database/sql"
	"strings"
)

// Introspector reads the schema of a database
type Introspector interface {
	Introspect(ctx context.Context) (*DatabaseSchema, error)
}

// DatabaseSchema represents the introspected database schema
type DatabaseSchema struct {
	Tables []Table
}

// Table represents a database table
type Table struct {
	Name       string
	Schema     string
	Columns    []Column
	PrimaryKey []string
}

// Column represents a table column
type Column struct {
	Name          string
	Type          string
	Nullable      bool
	DefaultValue  *string
	AutoIncrement bool
}

// Table returns the table with the given name, compared case-insensitively.
func (s *DatabaseSchema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// TableNames returns the table names in introspection order
func (s *DatabaseSchema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Column returns the column with the given name, compared case-insensitively.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// NewIntrospector creates a new introspector for the given database
func NewIntrospector(db *sql.DB, engine string) (Introspector, error) {
	switch engine {
	case "postgresql", "postgres":
		return &PostgresIntrospector{db: db}, nil
	case "mysql", "mariadb":
		return &MySQLIntrospector{db: db}, nil
	case "sqlite", "sqlite3":
		return &SQLiteIntrospector{db: db}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// queryStrings runs query and collects the single string column it returns.
// The rows are closed before returning so the caller can issue follow-up
// queries on a single-connection pool.
func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

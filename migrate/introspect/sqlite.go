package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteIntrospector implements introspection for SQLite
type SQLiteIntrospector struct {
	db *sql.DB
}

// Introspect reads the SQLite database schema
func (i *SQLiteIntrospector) Introspect(ctx context.Context) (*DatabaseSchema, error) {
	names, err := queryStrings(ctx, i.db, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tables: %v", ErrIntrospectionFailed, err)
	}

	schema := &DatabaseSchema{Tables: []Table{}}
	for _, name := range names {
		table := Table{Name: name, Schema: "main"}
		table.Columns, table.PrimaryKey, err = i.introspectColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect columns for %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

// introspectColumns reads all columns for a table using PRAGMA
func (i *SQLiteIntrospector) introspectColumns(ctx context.Context, tableName string) ([]Column, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%q)", tableName)

	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var (
		columns []Column
		pk      []string
	)
	for rows.Next() {
		var (
			cid       int
			col       Column
			notNull   int
			dfltValue sql.NullString
			pkIndex   int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dfltValue, &pkIndex); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Nullable = notNull == 0
		if dfltValue.Valid && dfltValue.String != "" {
			col.DefaultValue = &dfltValue.String
		}
		if pkIndex > 0 {
			pk = append(pk, col.Name)
			// only INTEGER PRIMARY KEY aliases the rowid
			col.AutoIncrement = strings.EqualFold(col.Type, "INTEGER")
		}

		columns = append(columns, col)
	}

	return columns, pk, rows.Err()
}

package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresIntrospector implements introspection for PostgreSQL
type PostgresIntrospector struct {
	db *sql.DB
}

// Introspect reads the public schema of a PostgreSQL database
func (i *PostgresIntrospector) Introspect(ctx context.Context) (*DatabaseSchema, error) {
	names, err := queryStrings(ctx, i.db, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tables: %v", ErrIntrospectionFailed, err)
	}

	schema := &DatabaseSchema{Tables: []Table{}}
	for _, name := range names {
		table := Table{Name: name, Schema: "public"}
		table.Columns, err = i.introspectColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect columns for %s: %w", name, err)
		}
		table.PrimaryKey, err = queryStrings(ctx, i.db, `
			SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			WHERE tc.table_schema = 'public'
			  AND tc.table_name = $1
			  AND tc.constraint_type = 'PRIMARY KEY'
			ORDER BY kcu.ordinal_position
		`, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect primary key for %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

// introspectColumns reads all columns for a table
func (i *PostgresIntrospector) introspectColumns(ctx context.Context, tableName string) ([]Column, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default, is_identity
		FROM information_schema.columns
		WHERE table_schema = 'public'
		  AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			col           Column
			isNullable    string
			columnDefault sql.NullString
			isIdentity    string
		)
		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &columnDefault, &isIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Nullable = isNullable == "YES"
		if columnDefault.Valid {
			col.DefaultValue = &columnDefault.String
			col.AutoIncrement = strings.HasPrefix(columnDefault.String, "nextval(")
		}
		if isIdentity == "YES" {
			col.AutoIncrement = true
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MySQLIntrospector implements introspection for MySQL and MariaDB
type MySQLIntrospector struct {
	db *sql.DB
}

// Introspect reads the MySQL database schema
func (i *MySQLIntrospector) Introspect(ctx context.Context) (*DatabaseSchema, error) {
	var dbName string
	if err := i.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&dbName); err != nil {
		return nil, fmt.Errorf("failed to get database name: %w", err)
	}

	names, err := queryStrings(ctx, i.db, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, dbName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tables: %v", ErrIntrospectionFailed, err)
	}

	schema := &DatabaseSchema{Tables: []Table{}}
	for _, name := range names {
		table := Table{Name: name, Schema: dbName}
		table.Columns, table.PrimaryKey, err = i.introspectColumns(ctx, dbName, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect columns for %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

// introspectColumns reads all columns for a table
func (i *MySQLIntrospector) introspectColumns(ctx context.Context, schema, tableName string) ([]Column, []string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_default, extra, column_key
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name = ?
		ORDER BY ordinal_position
	`, schema, tableName)
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
			col           Column
			isNullable    string
			columnDefault sql.NullString
			extra         string
			columnKey     string
		)
		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &columnDefault, &extra, &columnKey); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Nullable = isNullable == "YES"
		if columnDefault.Valid {
			col.DefaultValue = &columnDefault.String
		}
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		if columnKey == "PRI" {
			pk = append(pk, col.Name)
		}

		columns = append(columns, col)
	}

	return columns, pk, rows.Err()
}

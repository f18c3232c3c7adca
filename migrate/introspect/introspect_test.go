package introspect

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewIntrospector(t *testing.T) {
	for _, engine := range []string{"sqlite", "mysql", "mariadb", "postgres"} {
		_, err := NewIntrospector(nil, engine)
		assert.NoError(t, err, engine)
	}

	_, err := NewIntrospector(nil, "mongodb")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestSQLiteIntrospector(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, email VARCHAR(255) NOT NULL, nickname TEXT DEFAULT 'anon')",
		"CREATE TABLE tags (user_id INT NOT NULL, tag TEXT NOT NULL, PRIMARY KEY (user_id, tag))",
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	introspector, err := NewIntrospector(db, "sqlite")
	require.NoError(t, err)
	schema, err := introspector.Introspect(ctx)
	require.NoError(t, err)

	// sqlite_sequence is internal
	assert.Equal(t, []string{"tags", "users"}, schema.TableNames())

	users, ok := schema.Table("USERS")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, users.PrimaryKey)

	id, ok := users.Column("id")
	require.True(t, ok)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.Nullable)

	nickname, ok := users.Column("nickname")
	require.True(t, ok)
	assert.True(t, nickname.Nullable)
	require.NotNil(t, nickname.DefaultValue)
	assert.Equal(t, "'anon'", *nickname.DefaultValue)

	tags, ok := schema.Table("tags")
	require.True(t, ok)
	assert.Equal(t, []string{"user_id", "tag"}, tags.PrimaryKey)

	_, ok = schema.Table("missing")
	assert.False(t, ok)
}

package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFinisher(t *testing.T) {
	f, err := NewFinisher("sqlite")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteFinisher{}, f)

	for _, engine := range []string{"h2", "mysql", "postgres"} {
		f, err := NewFinisher(engine)
		require.NoError(t, err)
		assert.IsType(t, Identity{}, f, engine)
	}

	_, err = NewFinisher("oracle")
	assert.Error(t, err)
}

func TestIdentity(t *testing.T) {
	sql := "DROP TABLE IF EXISTS foo CASCADE"
	assert.Equal(t, sql, Identity{}.Finish(sql))
}

func TestSQLiteFinisher(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drop cascade",
			in:   "DROP TABLE IF EXISTS foo CASCADE",
			want: "DROP TABLE IF EXISTS foo",
		},
		{
			name: "identity column",
			in:   "CREATE TABLE foo ( id IDENTITY NOT NULL PRIMARY KEY, name TEXT)",
			want: "CREATE TABLE foo ( id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, name TEXT)",
		},
		{
			name: "column rename",
			in:   "ALTER TABLE foo ALTER COLUMN a RENAME TO b",
			want: "ALTER TABLE foo RENAME COLUMN a TO b",
		},
		{
			name: "column retype dropped",
			in:   "ALTER TABLE foo ALTER COLUMN b BIGINT NOT NULL",
			want: "",
		},
		{
			name: "table options",
			in:   "CREATE TABLE foo (id INT) ENGINE=InnoDB AUTO_INCREMENT=7 DEFAULT CHARSET=utf8mb4",
			want: "CREATE TABLE foo (id INT)",
		},
		{
			name: "column default kept",
			in:   "CREATE TABLE foo (name VARCHAR(10) DEFAULT 'x)', n INT) ENGINE=InnoDB",
			want: "CREATE TABLE foo (name VARCHAR(10) DEFAULT 'x)', n INT)",
		},
		{
			name: "leftover auto increment",
			in:   "CREATE TABLE foo (id INTEGER AUTO_INCREMENT, n INT)",
			want: "CREATE TABLE foo (id INTEGER, n INT)",
		},
		{
			name: "cascade outside drop untouched",
			in:   "ALTER TABLE foo ADD bar_id INT REFERENCES bar(id) ON DELETE CASCADE",
			want: "ALTER TABLE foo ADD bar_id INT REFERENCES bar(id) ON DELETE CASCADE",
		},
	}
	f := NewSQLiteFinisher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Finish(tt.in))
		})
	}
}

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sqlecho/cli/internal/ui"
)

const usersScript = `CREATE TABLE users (
  id INT UNSIGNED NOT NULL AUTO_INCREMENT,
  name VARCHAR(64) NOT NULL,
  PRIMARY KEY (id),
  KEY idx_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
INSERT INTO users (name) VALUES ('ada');
`

const ordersScript = `CREATE TABLE orders (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  user_id INT UNSIGNED NOT NULL,
  PRIMARY KEY (id)
);
CREATE PROCEDURE noop() BEGIN SELECT 1; END;
`

func writeScripts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V1__users.sql"), []byte(usersScript), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V2__orders.sql"), []byte(ordersScript), 0644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr := ui.Out, ui.Err
	ui.Out, ui.Err = &out, &errOut
	t.Cleanup(func() { ui.Out, ui.Err = prevOut, prevErr })

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String() + errOut.String(), err
}

func TestListCommand(t *testing.T) {
	dir := writeScripts(t)

	out, err := run(t, "list", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "V1__users.sql")
	assert.Contains(t, out, "V2__orders.sql")
	assert.Less(t, bytes.Index([]byte(out), []byte("V1__users.sql")), bytes.Index([]byte(out), []byte("V2__orders.sql")))
}

func TestTranslateCommand(t *testing.T) {
	dir := writeScripts(t)

	out, err := run(t, "translate", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "-- V1__users.sql")
	assert.Contains(t, out, "INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT")
	assert.NotContains(t, out, "ENGINE=InnoDB")
	assert.NotContains(t, out, "UNSIGNED")
	assert.NotContains(t, out, "PROCEDURE")
}

func TestApplyCommand(t *testing.T) {
	dir := writeScripts(t)

	out, err := run(t, "apply", "--dir", dir, "--strict")
	require.NoError(t, err)

	assert.Contains(t, out, "Statements run:     3")
	assert.Contains(t, out, "Statement errors:   0")
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "orders")
}

func TestApplyStrictFailsOnErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V1__broken.sql"), []byte("INSERT INTO missing (id) VALUES (1);"), 0644))

	out, err := run(t, "apply", "--dir", dir, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 statement(s) failed")
	assert.Contains(t, out, "V1__broken.sql")
}

func TestApplyFileDatabase(t *testing.T) {
	dir := writeScripts(t)
	dbPath := filepath.Join(t.TempDir(), "echo.db")

	_, err := run(t, "apply", "--dir", dir, "--dsn", dbPath, "--schema=false")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	_, err = run(t, "reset", "--dsn", dbPath, "--yes")
	require.NoError(t, err)
	assert.NoFileExists(t, dbPath)
}

func TestMalformedScriptNameFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.sql"), []byte("CREATE TABLE t (id INT);"), 0644))

	_, err := run(t, "apply", "--dir", dir)
	assert.Error(t, err)
}

func TestInvalidDialect(t *testing.T) {
	_, err := run(t, "list", "--dir", t.TempDir(), "--dialect", "oracle")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	out := t.TempDir()
	scripts := filepath.Join(out, "sql")

	_, err := run(t, "init", "--dir", scripts, "--output", out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, ".sqlecho.yaml"))
	assert.DirExists(t, scripts)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlecho version")
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "/tmp/a.db", sqlitePath("/tmp/a.db"))
	assert.Equal(t, "/tmp/a.db", sqlitePath("file:/tmp/a.db?cache=shared"))
}

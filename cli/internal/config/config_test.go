package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	fs := afero.NewMemMapFs()
	AppFs = fs
	t.Cleanup(func() { AppFs = prev })
	return fs
}

func TestLoadDefaults(t *testing.T) {
	withMemFs(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/app")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "db/migrations", cfg.ScriptsDir)
	assert.Equal(t, "mariadb", cfg.Dialect)
	assert.Equal(t, "sqlite", cfg.Engine)
	assert.Empty(t, cfg.DSN, "DATABASE_URL only applies to server engines")
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.ConfigFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitFile(t *testing.T) {
	fs := withMemFs(t)
	content := `
scripts_dir: sql
dialect: mysql
engine: sqlite
dsn: /tmp/echo.db
verbose: true
record_history: true
required_version: ">= 0.1"
`
	require.NoError(t, afero.WriteFile(fs, "/work/.sqlecho.yaml", []byte(content), 0644))

	cfg, err := Load(viper.New(), "/work/.sqlecho.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sql", cfg.ScriptsDir)
	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, "/tmp/echo.db", cfg.DSN)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.RecordHistory)
	assert.Equal(t, ">= 0.1", cfg.RequiredVersion)
	assert.Equal(t, "/work/.sqlecho.yaml", cfg.ConfigFile)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	withMemFs(t)

	_, err := Load(viper.New(), "/nowhere/.sqlecho.yaml")
	assert.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	withMemFs(t)
	t.Setenv("SQLECHO_ENGINE", "postgres")
	t.Setenv("SQLECHO_SCRIPTS_DIR", "migrations")
	t.Setenv("DATABASE_URL", "postgres://user:pw@localhost:5432/app?sslmode=disable")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Engine)
	assert.Equal(t, "migrations", cfg.ScriptsDir)
	assert.Equal(t, "postgres://user:pw@localhost:5432/app?sslmode=disable", cfg.DSN)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{ScriptsDir: "db/migrations", Dialect: "mariadb", Engine: "sqlite"}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, ok: true},
		{name: "passthrough dialect", mutate: func(c *Config) { c.Dialect = "h2" }, ok: true},
		{name: "empty scripts dir", mutate: func(c *Config) { c.ScriptsDir = "" }},
		{name: "unknown dialect", mutate: func(c *Config) { c.Dialect = "oracle" }},
		{name: "unknown engine", mutate: func(c *Config) { c.Engine = "mongodb" }},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Engine = "mysql" }},
		{name: "mysql dsn", mutate: func(c *Config) {
			c.Engine = "mariadb"
			c.DSN = "root:secret@tcp(localhost:3306)/app"
		}, ok: true},
		{name: "bad mysql dsn", mutate: func(c *Config) {
			c.Engine = "mysql"
			c.DSN = "root:secret@tcp(localhost:3306"
		}},
		{name: "postgres url", mutate: func(c *Config) {
			c.Engine = "postgresql"
			c.DSN = "postgres://localhost/app"
		}, ok: true},
		{name: "bad postgres url", mutate: func(c *Config) {
			c.Engine = "postgres"
			c.DSN = "mysql://localhost/app"
		}},
		{name: "bad version constraint", mutate: func(c *Config) { c.RequiredVersion = "soon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	withMemFs(t)

	saved := &Config{
		ScriptsDir:    "sql",
		Dialect:       "mysql",
		Engine:        "sqlite",
		DSN:           "echo.db",
		RecordHistory: true,
	}
	path, err := SaveConfig(saved, "/project")
	require.NoError(t, err)
	assert.Equal(t, "/project/.sqlecho.yaml", path)

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, saved.ScriptsDir, loaded.ScriptsDir)
	assert.Equal(t, saved.Dialect, loaded.Dialect)
	assert.Equal(t, saved.DSN, loaded.DSN)
	assert.True(t, loaded.RecordHistory)
}

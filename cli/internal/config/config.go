// Package config loads the sqlecho settings from the config file, the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	goversion "github.com/hashicorp/go-version"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/sqlecho/migrate"
	"github.com/satishbabariya/sqlecho/migrate/dialect"
	"github.com/satishbabariya/sqlecho/migrate/shadow"
)

var AppFs = afero.NewOsFs()

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	ScriptsDir      string
	Dialect         string
	Engine          string
	DSN             string
	Verbose         bool
	RecordHistory   bool
	RequiredVersion string
	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string
}

// LoadConfig loads configuration from the default locations
func LoadConfig() (*Config, error) {
	return Load(viper.New(), "")
}

// Load reads the configuration into v. An explicit file replaces the
// search of the default locations.
func Load(v *viper.Viper, file string) (*Config, error) {
	// .env first so its values are visible to the environment lookups below
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	// .env.local wins over .env
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(".sqlecho")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "sqlecho"))
	}
	v.SetFs(AppFs)

	v.SetEnvPrefix("SQLECHO")
	v.AutomaticEnv()

	v.SetDefault("scripts_dir", migrate.DefaultScriptsDir)
	v.SetDefault("dialect", dialect.MariaDB)
	v.SetDefault("engine", shadow.EngineSQLite)
	v.SetDefault("verbose", false)
	v.SetDefault("record_history", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		ScriptsDir:      v.GetString("scripts_dir"),
		Dialect:         v.GetString("dialect"),
		Engine:          v.GetString("engine"),
		DSN:             v.GetString("dsn"),
		Verbose:         v.GetBool("verbose"),
		RecordHistory:   v.GetBool("record_history"),
		RequiredVersion: v.GetString("required_version"),
		ConfigFile:      v.ConfigFileUsed(),
	}
	if engine, err := shadow.NormalizeEngine(cfg.Engine); err == nil && engine != shadow.EngineSQLite && cfg.DSN == "" {
		cfg.DSN = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

// Validate checks names and DSNs without connecting anywhere.
func (c *Config) Validate() error {
	if c.ScriptsDir == "" {
		return fmt.Errorf("%w: scripts_dir is empty", ErrInvalidConfig)
	}
	if _, err := dialect.New(c.Dialect); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	engine, err := shadow.NormalizeEngine(c.Engine)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch engine {
	case shadow.EngineMySQL:
		if c.DSN == "" {
			return fmt.Errorf("%w: engine mysql needs a dsn", ErrInvalidConfig)
		}
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	case shadow.EnginePostgres:
		if c.DSN == "" {
			return fmt.Errorf("%w: engine postgres needs a dsn", ErrInvalidConfig)
		}
		if _, err := pq.ParseURL(c.DSN); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if c.RequiredVersion != "" {
		if _, err := goversion.NewConstraint(c.RequiredVersion); err != nil {
			return fmt.Errorf("%w: required_version: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// SaveConfig writes cfg as .sqlecho.yaml into dir
func SaveConfig(cfg *Config, dir string) (string, error) {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("scripts_dir", cfg.ScriptsDir)
	v.Set("dialect", cfg.Dialect)
	v.Set("engine", cfg.Engine)
	if cfg.DSN != "" {
		v.Set("dsn", cfg.DSN)
	}
	v.Set("verbose", cfg.Verbose)
	v.Set("record_history", cfg.RecordHistory)
	if cfg.RequiredVersion != "" {
		v.Set("required_version", cfg.RequiredVersion)
	}

	if err := AppFs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	configFile := filepath.Join(dir, ".sqlecho.yaml")
	return configFile, v.WriteConfigAs(configFile)
}

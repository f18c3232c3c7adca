// Package version holds build information and the required_version check.
package version

import (
	"errors"
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"

	"github.com/satishbabariya/sqlecho/migrate/shadow"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// ErrVersionMismatch is returned when the running version does not satisfy
// the configured constraint.
var ErrVersionMismatch = errors.New("version does not satisfy constraint")

// Info holds version information
type Info struct {
	Version      string
	BuildDate    string
	GitCommit    string
	GoVersion    string
	Platform     string
	SQLiteDriver string
}

// Get returns version information
func Get() Info {
	name, kind := shadow.SQLiteDriver()
	return Info{
		Version:      Version,
		BuildDate:    BuildDate,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SQLiteDriver: fmt.Sprintf("%s (%s)", name, kind),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("sqlecho version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	return fmt.Sprintf(`sqlecho version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s
SQLite Driver: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion, i.SQLiteDriver)
}

// Check verifies that current satisfies constraint, e.g. ">= 0.1, < 1.0".
func Check(current, constraint string) error {
	if constraint == "" {
		return nil
	}

	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := goversion.NewVersion(current)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	if !c.Check(v) {
		return fmt.Errorf("%w: sqlecho %s, required %s", ErrVersionMismatch, current, constraint)
	}
	return nil
}

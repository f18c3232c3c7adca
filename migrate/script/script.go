// Package script locates migration scripts and orders them by version.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// VersionTerminator separates the version field from the description.
const VersionTerminator = "__"

// plain decimal only; ParseFloat alone would let NaN, Inf and exponents through
var versionRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// ErrInvalidVersion is returned when a file name carries no parsable version.
var ErrInvalidVersion = errors.New("invalid script version")

// Script is a single migration file
type Script struct {
	Name    string
	Path    string
	Version float64
	Content string
}

// Locate returns the name of every file in dir. Subdirectories are ignored
// and a directory that does not exist yields no files and no error.
func Locate(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read script directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// ParseVersion extracts the numeric version from a name such as
// "V1.5__add_users.sql".
func ParseVersion(name string) (float64, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("%w: %q is too short", ErrInvalidVersion, name)
	}

	// Drop the one character version marker.
	rest := name[1:]
	end := strings.Index(rest, VersionTerminator)
	if end < 0 {
		return 0, fmt.Errorf("%w: %q has no %q terminator", ErrInvalidVersion, name, VersionTerminator)
	}

	if !versionRe.MatchString(rest[:end]) {
		return 0, fmt.Errorf("%w: %q is not a decimal version", ErrInvalidVersion, name)
	}

	version, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, name, err)
	}
	return version, nil
}

// SortByVersion orders names by ascending numeric version. Every name is
// parsed before anything is reordered, so a single bad name fails the whole
// sort and the input is left untouched.
func SortByVersion(names []string) ([]string, error) {
	versions := make(map[string]float64, len(names))
	for _, name := range names {
		v, err := ParseVersion(name)
		if err != nil {
			return nil, err
		}
		versions[name] = v
	}

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := versions[sorted[i]], versions[sorted[j]]
		if vi != vj {
			return vi < vj
		}
		return sorted[i] < sorted[j]
	})
	return sorted, nil
}

// Load locates, orders and reads every script in dir.
func Load(fs afero.Fs, dir string) ([]Script, error) {
	names, err := Locate(fs, dir)
	if err != nil {
		return nil, err
	}

	sorted, err := SortByVersion(names)
	if err != nil {
		return nil, err
	}

	scripts := make([]Script, 0, len(sorted))
	for _, name := range sorted {
		s, err := Read(fs, dir, name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// Read loads a single script from dir.
func Read(fs afero.Fs, dir, name string) (Script, error) {
	version, err := ParseVersion(name)
	if err != nil {
		return Script{}, err
	}

	path := filepath.Join(dir, name)
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script %s: %w", name, err)
	}

	return Script{
		Name:    name,
		Path:    path,
		Version: version,
		Content: string(content),
	}, nil
}

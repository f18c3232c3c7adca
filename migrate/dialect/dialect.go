// Package dialect translates statements written for a source SQL dialect into
// statements the embedded target engine accepts.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/satishbabariya/sqlecho/migrate/splitter"
)

// Dialect names accepted by New
const (
	PassThrough = "passthrough"
	H2          = "h2"
	MariaDB     = "mariadb"
	MySQL       = "mysql"
)

// ErrUnknownDialect is returned by New for names it does not recognise.
var ErrUnknownDialect = errors.New("unknown dialect")

// Translator rewrites one statement into zero or more target statements
type Translator interface {
	// Name returns the canonical dialect name
	Name() string

	// Translate returns the statements to execute, in order. An empty result
	// means there is nothing to run for the statement.
	Translate(stmt splitter.Statement) []string
}

// New returns the translator registered under name.
func New(name string) (Translator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PassThrough, H2:
		return NewPassThrough(), nil
	case MariaDB, MySQL, "":
		return NewMariaDB(), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownDialect, name, strings.Join(Names(), ", "))
	}
}

// Names lists every accepted dialect name.
func Names() []string {
	names := []string{PassThrough, H2, MariaDB, MySQL}
	sort.Strings(names)
	return names
}

// Package sqlgen adjusts translated statements to the engine that finally
// executes them.
package sqlgen

import (
	"fmt"
	"strings"
)

// Finisher is the last rewrite applied to a statement before execution
type Finisher interface {
	Finish(stmt string) string
}

// NewFinisher creates the finisher for the given target engine
func NewFinisher(engine string) (Finisher, error) {
	switch strings.ToLower(engine) {
	case "sqlite", "sqlite3", "":
		return NewSQLiteFinisher(), nil
	case "h2", "mysql", "mariadb", "postgresql", "postgres":
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("unsupported engine: %s", engine)
	}
}

// Identity leaves statements untouched. Engines that understand the
// translated grammar natively use it.
type Identity struct{}

func (Identity) Finish(stmt string) string { return stmt }

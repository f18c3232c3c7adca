//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package shadow

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite
)

const (
	sqliteDriver     = "sqlite3"
	sqliteDriverType = "cgo"
)

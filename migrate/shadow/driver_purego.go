//go:build !cgo_sqlite

package shadow

import (
	_ "modernc.org/sqlite" // pure Go SQLite
)

const (
	sqliteDriver     = "sqlite"
	sqliteDriverType = "purego"
)

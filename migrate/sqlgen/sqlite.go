package sqlgen

import (
	"regexp"
	"strings"
)

const sqliteIdent = "[A-Za-z0-9_.`\"]+"

var (
	dropTableRe     = regexp.MustCompile(`(?i)^\s*DROP\s+TABLE\b`)
	trailingCascade = regexp.MustCompile(`(?i)\s+CASCADE\s*$`)
	renameColumnRe  = regexp.MustCompile(`(?i)\bALTER\s+COLUMN\s+(` + sqliteIdent + `)\s+RENAME\s+TO\s+(` + sqliteIdent + `)`)
	alterColumnDef  = regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE\s+` + sqliteIdent + `\s+ALTER\s+COLUMN\b`)
	identityRe      = regexp.MustCompile(`(?i)\bIDENTITY\s+NOT\s+NULL\s+PRIMARY\s+KEY\b`)
	autoIncrementRe = regexp.MustCompile(`(?i)\s*\bAUTO_INCREMENT\b`)
	createTableRe   = regexp.MustCompile(`(?i)^\s*CREATE\s+TABLE\b`)
	tableOptionsRe  = regexp.MustCompile(`(?i)^\s*(?:ENGINE|DEFAULT|CHARSET|CHARACTER|COLLATE|AUTO_INCREMENT|COMMENT|ROW_FORMAT)\b`)
)

// SQLiteFinisher maps the translated grammar onto what SQLite accepts.
type SQLiteFinisher struct{}

// NewSQLiteFinisher creates a new SQLite finisher
func NewSQLiteFinisher() *SQLiteFinisher {
	return &SQLiteFinisher{}
}

// Finish rewrites stmt for SQLite. It returns "" for statements SQLite has
// no equivalent for.
func (f *SQLiteFinisher) Finish(stmt string) string {
	if dropTableRe.MatchString(stmt) {
		stmt = trailingCascade.ReplaceAllString(stmt, "")
	}

	// table options first, they may carry AUTO_INCREMENT=n
	if createTableRe.MatchString(stmt) {
		stmt = stripTableOptions(stmt)
	}

	stmt = renameColumnRe.ReplaceAllString(stmt, "RENAME COLUMN $1 TO $2")
	// SQLite cannot change a column definition
	if alterColumnDef.MatchString(stmt) {
		return ""
	}
	stmt = identityRe.ReplaceAllString(stmt, "INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT")
	stmt = autoIncrementRe.ReplaceAllString(stmt, "")

	return strings.TrimSpace(stmt)
}

// stripTableOptions cuts everything after the parenthesis closing the column
// list when it starts with a MySQL table option.
func stripTableOptions(stmt string) string {
	open := strings.IndexByte(stmt, '(')
	if open < 0 {
		return stmt
	}
	depth := 0
	var quote byte
	for i := open; i < len(stmt); i++ {
		c := stmt[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				if tableOptionsRe.MatchString(stmt[i+1:]) {
					return stmt[:i+1]
				}
				return stmt
			}
		}
	}
	return stmt
}

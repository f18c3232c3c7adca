package dialect

import (
	"regexp"
	"strings"

	"github.com/satishbabariya/sqlecho/migrate/splitter"
)

const (
	identPattern = "[A-Za-z0-9_.`\"]+"
	// a parenthesised group allowing one level of nesting, e.g. (name(10), id)
	parenGroup = `\((?:[^()]|\([^()]*\))*\)`
)

var (
	createIfNotExistsRe = regexp.MustCompile(`(?i)\bCREATE\s+TABLE\s+IF\s+NOT\s+EXISTS\s+(` + identPattern + `)`)
	constraintPKRe      = regexp.MustCompile("(?i)\\bCONSTRAINT\\s*[A-Za-z0-9_`]*\\s*PRIMARY\\s+KEY\\s*" + parenGroup + `\s*,?`)
	primaryKeyRe        = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\s*` + parenGroup)
	identityRe          = regexp.MustCompile(`(?i)\s(?:BIG)?INT(?:\s*\(\s*\d+\s*\))?\s+UNSIGNED\s+NOT\s+NULL\s+AUTO_INCREMENT\b(?:\s+PRIMARY\s+KEY\b)?`)
	unsignedRe          = regexp.MustCompile(`(?i)\s*\bUNSIGNED\b`)
	indexRe             = regexp.MustCompile("(?i)\\b(?:(?:UNIQUE|FULLTEXT|SPATIAL)\\s+)?INDEX\\s*[A-Za-z0-9_`]*\\s*" + parenGroup)
	keyRe               = regexp.MustCompile("(?i),\\s*(?:(?:UNIQUE|FULLTEXT|SPATIAL)\\s+)?KEY\\s+[A-Za-z0-9_`]+\\s*" + parenGroup)

	alterTableRe = regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE\s+(` + identPattern + `)\s`)

	alterAllowList = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bADD\s+COLUMN\b`),
		regexp.MustCompile(`(?i)\bCHANGE\s+COLUMN\b`),
		regexp.MustCompile(`(?i)\bALTER\s+COLUMN\b`),
		regexp.MustCompile(`(?i)\bRENAME\s+TO\b`),
		regexp.MustCompile(`(?i)\bDROP\s+PRIMARY\s+KEY\b`),
		regexp.MustCompile(`(?i)\bADD\s+PRIMARY\s+KEY\b`),
		regexp.MustCompile(`(?i)\bDROP\s+FOREIGN\s+KEY\b`),
	}

	addColumnRe      = regexp.MustCompile(`(?i)\bADD\s+COLUMN\s+`)
	changeColumnRe   = regexp.MustCompile(`(?i)\bCHANGE\s+COLUMN\s+`)
	dropForeignKeyRe = regexp.MustCompile(`(?i)\bDROP\s+FOREIGN\s+KEY\s+`)
	alterColumnRe    = regexp.MustCompile(`(?is)^ALTER\s+COLUMN\s+(` + identPattern + `)\s+(` + identPattern + `)(?:\s+(.*))?$`)
)

// words that follow ALTER COLUMN <name> in MySQL's own ALTER COLUMN forms and
// must not be read as a new column name
var alterColumnActions = map[string]bool{
	"SET":       true,
	"DROP":      true,
	"TYPE":      true,
	"RENAME":    true,
	"RESTART":   true,
	"VISIBLE":   true,
	"INVISIBLE": true,
}

// MariaDBTranslator rewrites MariaDB/MySQL DDL into the target grammar.
type MariaDBTranslator struct{}

// NewMariaDB creates the MariaDB/MySQL translator
func NewMariaDB() Translator {
	return &MariaDBTranslator{}
}

func (t *MariaDBTranslator) Name() string { return MariaDB }

// Translate dispatches on the statement category. Kinds without a rewrite
// are returned as they are.
func (t *MariaDBTranslator) Translate(stmt splitter.Statement) []string {
	switch stmt.Category {
	case splitter.CategoryTableCreate:
		return translateCreate(stmt.Text)
	case splitter.CategoryTableAlter:
		return translateAlter(stmt.Text)
	default:
		if stmt.Text == "" {
			return nil
		}
		return []string{stmt.Text}
	}
}

func translateCreate(sql string) []string {
	var out []string

	if m := createIfNotExistsRe.FindStringSubmatch(sql); m != nil {
		out = append(out, "DROP TABLE IF EXISTS "+m[1]+" CASCADE")
	}

	sql = constraintPKRe.ReplaceAllString(sql, "")
	sql = primaryKeyRe.ReplaceAllString(sql, "")
	sql = identityRe.ReplaceAllString(sql, " IDENTITY NOT NULL PRIMARY KEY")
	sql = unsignedRe.ReplaceAllString(sql, "")
	sql = keyRe.ReplaceAllString(sql, "")
	sql = indexRe.ReplaceAllString(sql, "")

	return append(out, strings.TrimLeft(sql, " \t\r\n"))
}

func translateAlter(sql string) []string {
	loc := alterTableRe.FindStringSubmatchIndex(sql)
	if loc == nil {
		return nil
	}
	table := sql[loc[2]:loc[3]]
	rest := sql[loc[1]:]

	var out []string
	for _, clause := range splitTopLevel(rest) {
		if !alterAllowed(clause) {
			continue
		}
		for _, rewritten := range rewriteAlterClause(clause) {
			out = append(out, "ALTER TABLE "+table+" "+rewritten)
		}
	}
	return out
}

func alterAllowed(clause string) bool {
	for _, re := range alterAllowList {
		if re.MatchString(clause) {
			return true
		}
	}
	return false
}

func rewriteAlterClause(clause string) []string {
	clause = addColumnRe.ReplaceAllString(clause, "ADD ")
	clause = changeColumnRe.ReplaceAllString(clause, "ALTER COLUMN ")
	clause = dropForeignKeyRe.ReplaceAllString(clause, "DROP CONSTRAINT ")
	clause = strings.TrimSpace(unsignedRe.ReplaceAllString(clause, ""))

	m := alterColumnRe.FindStringSubmatch(clause)
	if m == nil || alterColumnActions[strings.ToUpper(m[2])] {
		return []string{clause}
	}

	oldName, newName, definition := m[1], m[2], strings.TrimSpace(m[3])
	if definition == "" {
		return []string{"ALTER COLUMN " + oldName + " RENAME TO " + newName}
	}
	if strings.EqualFold(oldName, newName) {
		return []string{"ALTER COLUMN " + newName + " " + definition}
	}
	return []string{
		"ALTER COLUMN " + oldName + " RENAME TO " + newName,
		"ALTER COLUMN " + newName + " " + definition,
	}
}

// splitTopLevel cuts s on commas that are outside parentheses and quotes.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

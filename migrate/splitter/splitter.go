// Package splitter turns the text of a migration script into classified
// statements.
//
// Splitting is deliberately naive: the script is cut on every ';' after
// comments are removed. Stored routine bodies contain their own semicolons,
// so a small state machine recognises a routine opener and marks every
// candidate up to the closing END as part of the body. Those bodies are never
// translated, only skipped.
package splitter

import (
	"regexp"
	"strings"
)

// Category classifies a statement by its leading keywords
type Category int

const (
	CategoryUnsupported Category = iota
	CategorySchemaCreate
	CategoryTableCreate
	CategoryTableDrop
	CategoryTableAlter
	CategoryRowInsert
	CategoryRowDelete
	CategoryProcedureBody
)

var categoryNames = map[Category]string{
	CategoryUnsupported:   "unsupported",
	CategorySchemaCreate:  "schema-create",
	CategoryTableCreate:   "table-create",
	CategoryTableDrop:     "table-drop",
	CategoryTableAlter:    "table-alter",
	CategoryRowInsert:     "row-insert",
	CategoryRowDelete:     "row-delete",
	CategoryProcedureBody: "procedure-body",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Statement is one candidate statement of a script
type Statement struct {
	// Raw is the candidate exactly as split, comments already removed.
	Raw string
	// Text is Raw without surrounding whitespace.
	Text string
	// Normalized is Text upper-cased with whitespace runs collapsed. It is
	// only used for classification.
	Normalized string
	Category   Category
}

// Supported reports whether the statement passes the support filter.
func (s Statement) Supported() bool {
	switch s.Category {
	case CategoryUnsupported, CategoryProcedureBody:
		return false
	default:
		return true
	}
}

var (
	commentRe    = regexp.MustCompile(`--[^\r\n]*`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	routineOpenerRe = regexp.MustCompile(`\bCREATE (?:OR REPLACE )?(?:DEFINER ?= ?\S+ )?(?:PROCEDURE|FUNCTION)\b`)
	blockOpenerRe   = regexp.MustCompile(`\bCREATE (?:OR REPLACE )?(?:DEFINER ?= ?\S+ )?(?:TRIGGER|EVENT)\b`)
	beginRe         = regexp.MustCompile(`\bBEGIN\b`)
	closedBlockRe   = regexp.MustCompile(`\bEND\W*$`)
	terminatorRe    = regexp.MustCompile(`^END\b`)
	innerEndRe      = regexp.MustCompile(`^END (?:IF|LOOP|WHILE|REPEAT|CASE)\b`)

	supportedPrefixes = []struct {
		re       *regexp.Regexp
		category Category
	}{
		{regexp.MustCompile(`^CREATE SCHEMA\b`), CategorySchemaCreate},
		{regexp.MustCompile(`^CREATE TABLE\b`), CategoryTableCreate},
		{regexp.MustCompile(`^DROP TABLE\b`), CategoryTableDrop},
		{regexp.MustCompile(`^ALTER TABLE\b`), CategoryTableAlter},
		{regexp.MustCompile(`^INSERT\b`), CategoryRowInsert},
		{regexp.MustCompile(`^DELETE\b`), CategoryRowDelete},
	}
)

// StripComments removes single line comments and the blank lines they leave
// behind.
func StripComments(text string) string {
	text = commentRe.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, "\r\n\r\n", "\n")
}

// Normalize upper-cases a statement and collapses its whitespace.
func Normalize(text string) string {
	return strings.ToUpper(whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " "))
}

// Classify determines the category of a single statement outside of any
// routine body.
func Classify(normalized string) Category {
	for _, p := range supportedPrefixes {
		if p.re.MatchString(normalized) {
			return p.category
		}
	}
	return CategoryUnsupported
}

// Split breaks a script into statements. Blank candidates, such as the one
// following the final ';', are dropped.
func Split(content string) []Statement {
	content = StripComments(content)
	// Runs of exactly two spaces become one; longer runs are halved.
	content = strings.ReplaceAll(content, "  ", " ")

	var (
		statements []Statement
		inside     bool
	)

	for _, candidate := range strings.Split(content, ";") {
		text := strings.TrimSpace(candidate)
		if text == "" {
			continue
		}

		stmt := Statement{
			Raw:        candidate,
			Text:       text,
			Normalized: Normalize(text),
		}

		switch {
		case inside:
			stmt.Category = CategoryProcedureBody
			if terminatorRe.MatchString(stmt.Normalized) && !innerEndRe.MatchString(stmt.Normalized) {
				inside = false
			}
		case routineOpenerRe.MatchString(stmt.Normalized):
			stmt.Category = CategoryProcedureBody
			inside = opensBlock(stmt.Normalized)
		case blockOpenerRe.MatchString(stmt.Normalized) && beginRe.MatchString(stmt.Normalized):
			stmt.Category = CategoryProcedureBody
			inside = opensBlock(stmt.Normalized)
		default:
			stmt.Category = Classify(stmt.Normalized)
		}

		statements = append(statements, stmt)
	}

	return statements
}

// opensBlock reports whether a routine opener leaves a BEGIN block open for
// the following candidates.
func opensBlock(normalized string) bool {
	return beginRe.MatchString(normalized) && !closedBlockRe.MatchString(normalized)
}

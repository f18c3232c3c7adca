package dialect

import (
	"regexp"
	"strings"
)

var (
	doubleCommaRe   = regexp.MustCompile(`,\s*,`)
	danglingCommaRe = regexp.MustCompile(`,\s*\)`)
	leadingCommaRe  = regexp.MustCompile(`\(\s*,`)
	lineBreakRe     = regexp.MustCompile(`[\r\n]`)
	spaceRunRe      = regexp.MustCompile(`\s{2,}`)
	// IGNORE only counts as a modifier right after the leading keywords,
	// never inside identifiers or string literals further on.
	ignoreModRe = regexp.MustCompile(`(?i)^(\s*(?:INSERT|DELETE|UPDATE|ALTER(?:\s+(?:ONLINE|OFFLINE))?|CREATE\s+(?:UNIQUE\s+)?INDEX)(?:\s+(?:LOW_PRIORITY|DELAYED|HIGH_PRIORITY|QUICK))*)\s+IGNORE\b`)
)

// Format cleans up the debris the rewrites leave behind and removes the
// IGNORE modifier. It is applied to every statement right before execution.
func Format(stmt string) string {
	for doubleCommaRe.MatchString(stmt) {
		stmt = doubleCommaRe.ReplaceAllString(stmt, ",")
	}
	stmt = danglingCommaRe.ReplaceAllString(stmt, ")")
	stmt = leadingCommaRe.ReplaceAllString(stmt, "(")
	stmt = lineBreakRe.ReplaceAllString(stmt, " ")
	stmt = spaceRunRe.ReplaceAllString(stmt, " ")
	stmt = ignoreModRe.ReplaceAllString(stmt, "${1}")
	return strings.TrimSpace(stmt)
}

// HasIgnore reports whether stmt carries the IGNORE modifier.
func HasIgnore(stmt string) bool {
	return ignoreModRe.MatchString(stmt)
}

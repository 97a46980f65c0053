// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Syntactic allow-list for SQL produced by the planner. Not a parser and
// not a security boundary: the database role should be read-only too.

package safety

import (
	"regexp"
	"strconv"
	"strings"

	serr "crimewatch-mcp/internal/errors"
)

// DefaultRowLimit is appended to guarded statements that carry no LIMIT.
const DefaultRowLimit = 1000

var (
	// Leading clause must be SELECT or WITH ... SELECT.
	selectPattern = regexp.MustCompile(`(?is)^\s*(?:with\b.*?\bselect\b|select\b)`)

	// Any of these as a standalone word rejects the statement, even inside
	// string literals ('DELETE' in a quoted value false-positives).
	mutatingKeywords = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|grant|revoke|truncate|attach|detach|pragma|vacuum)\b`)

	limitClause = regexp.MustCompile(`(?i)\blimit\s+\d+\b`)
)

// Sanitize validates a candidate statement and returns the guarded form.
// Trailing semicolons are stripped; a LIMIT 1000 is appended when the
// statement has no LIMIT clause. Sanitize is idempotent on its own output.
func Sanitize(candidate string) (string, error) {
	s := strings.TrimSpace(candidate)
	s = strings.TrimRight(s, "; \t\n\r")
	if s == "" {
		return "", serr.NewRejectedStatement("empty statement")
	}
	if !selectPattern.MatchString(s) {
		return "", serr.NewRejectedStatement("only SELECT queries are allowed")
	}
	if kw := mutatingKeywords.FindString(s); kw != "" {
		return "", serr.NewRejectedStatement("mutating SQL is not allowed: " + strings.ToUpper(kw))
	}
	if !limitClause.MatchString(s) {
		s += "\nLIMIT " + strconv.Itoa(DefaultRowLimit)
	}
	return s, nil
}

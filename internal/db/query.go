// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Read-only execution of guarded statements with named-parameter binding.

package db

import (
	"context"
	"strconv"
	"strings"

	serr "crimewatch-mcp/internal/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultSet holds rows as ordered column->value maps plus the column names
// observed on the result. Columns is empty when no rows came back.
type ResultSet struct {
	Rows    []map[string]any `json:"rows"`
	Columns []string         `json:"columns"`
}

// Store wraps the connection pool with the read paths the tools need.
// A Store over a nil pool reports MISSING_BINDING on every call.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// RewriteNamed converts :name placeholders to positional $n arguments in
// first-occurrence order. Duplicate names share one ordinal; names missing
// from params bind nil. Postgres casts (::type) pass through untouched.
func RewriteNamed(stmt string, params map[string]any) (string, []any) {
	var out strings.Builder
	out.Grow(len(stmt))
	var args []any
	ordinals := map[string]int{}
	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]
		if ch != ':' {
			out.WriteByte(ch)
			continue
		}
		if i+1 < len(stmt) && stmt[i+1] == ':' {
			out.WriteString("::")
			i++
			continue
		}
		if i+1 >= len(stmt) || !isIdentStart(stmt[i+1]) {
			out.WriteByte(ch)
			continue
		}
		j := i + 1
		for j < len(stmt) && isIdentByte(stmt[j]) {
			j++
		}
		name := stmt[i+1 : j]
		ord, ok := ordinals[name]
		if !ok {
			args = append(args, params[name])
			ord = len(args)
			ordinals[name] = ord
		}
		out.WriteString("$" + strconv.Itoa(ord))
		i = j - 1
	}
	return out.String(), args
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// Execute runs one read query. Store errors wrap as EXECUTION_FAILED with
// the attempted SQL kept for caller diagnostics.
func (s *Store) Execute(ctx context.Context, stmt string, params map[string]any) (*ResultSet, error) {
	if s == nil || s.pool == nil {
		return nil, serr.NewMissingBinding("database")
	}
	sqlText, args := RewriteNamed(stmt, params)
	rows, err := s.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, serr.NewExecutionFailed(err, stmt)
	}
	defer rows.Close()

	flds := rows.FieldDescriptions()
	names := make([]string, len(flds))
	for i, f := range flds {
		names[i] = string(f.Name)
	}

	out := []map[string]any{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, serr.NewExecutionFailed(err, stmt)
		}
		m := make(map[string]any, len(names))
		for i, n := range names {
			if i < len(vals) {
				m[n] = vals[i]
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, serr.NewExecutionFailed(err, stmt)
	}

	rs := &ResultSet{Rows: out, Columns: []string{}}
	if len(out) > 0 {
		rs.Columns = names
	}
	return rs, nil
}

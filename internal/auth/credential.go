// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Credential resolution. A secret arrives either as a literal value or as a
// lazily-fetched one; the two variants are an explicit tagged union rather
// than shape-sniffing at the call site.

package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"crimewatch-mcp/internal/cache"
)

type credentialKind int

const (
	kindNone credentialKind = iota
	kindLiteral
	kindFetcher
)

// Credential is a resolvable secret. The zero value resolves to "".
type Credential struct {
	kind    credentialKind
	key     string
	literal string
	fetch   func(context.Context) (string, error)
}

// Literal wraps an already-known secret value.
func Literal(value string) Credential {
	return Credential{kind: kindLiteral, literal: value}
}

// FromFetcher wraps a lazily-fetched secret. key identifies the secret in
// the resolution cache; fetch runs at most once per cache lifetime.
func FromFetcher(key string, fetch func(context.Context) (string, error)) Credential {
	return Credential{kind: kindFetcher, key: key, fetch: fetch}
}

// FromFile is a fetcher variant reading the secret from a file, trimmed.
func FromFile(path string) Credential {
	return FromFetcher("file:"+path, func(context.Context) (string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read credential file: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	})
}

// IsZero reports whether no credential was configured.
func (c Credential) IsZero() bool { return c.kind == kindNone }

// Resolve returns the secret value. Fetcher results are memoized through
// the provided cache; a nil cache fetches every time.
func (c Credential) Resolve(ctx context.Context, memo *cache.Cache) (string, error) {
	switch c.kind {
	case kindLiteral:
		return c.literal, nil
	case kindFetcher:
		if memo == nil {
			return c.fetch(ctx)
		}
		v, err := memo.Fetch(c.key, 0, func() (any, error) {
			return c.fetch(ctx)
		})
		if err != nil {
			return "", err
		}
		return v.(string), nil
	default:
		return "", nil
	}
}

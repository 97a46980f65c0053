// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Bearer-token verification for the HTTP proxy surface.

package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"crimewatch-mcp/internal/cache"
	serr "crimewatch-mcp/internal/errors"
)

// Verifier checks Authorization headers against a configured credential.
// It owns the resolution cache for lazily-fetched credentials.
type Verifier struct {
	cred Credential
	memo *cache.Cache
}

func NewVerifier(cred Credential) *Verifier {
	return &Verifier{cred: cred, memo: cache.New()}
}

// Enabled reports whether a credential is configured. A disabled verifier
// authorizes every request.
func (v *Verifier) Enabled() bool { return v != nil && !v.cred.IsZero() }

// Authorize validates the request's bearer token.
func (v *Verifier) Authorize(r *http.Request) error {
	if !v.Enabled() {
		return nil
	}
	want, err := v.cred.Resolve(r.Context(), v.memo)
	if err != nil {
		return serr.NewInternal(err)
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return serr.NewUnauthorized("missing bearer token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(want)) != 1 {
		return serr.NewUnauthorized("invalid bearer token")
	}
	return nil
}

// Middleware rejects unauthorized requests with 401 before next runs.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.Authorize(r); err != nil {
			http.Error(w, serr.ToToolError(err).Message, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

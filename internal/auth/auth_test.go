package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"crimewatch-mcp/internal/cache"
)

func TestLiteralResolve(t *testing.T) {
	v, err := Literal("s3cret").Resolve(context.Background(), nil)
	if err != nil || v != "s3cret" {
		t.Fatalf("expected s3cret, got %q, %v", v, err)
	}
}

func TestFetcherResolveMemoized(t *testing.T) {
	calls := 0
	cred := FromFetcher("k", func(context.Context) (string, error) {
		calls++
		return "fetched", nil
	})
	memo := cache.New()
	for i := 0; i < 3; i++ {
		v, err := cred.Resolve(context.Background(), memo)
		if err != nil || v != "fetched" {
			t.Fatalf("expected fetched, got %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}

func TestFromFileTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok-123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	v, err := FromFile(path).Resolve(context.Background(), nil)
	if err != nil || v != "tok-123" {
		t.Fatalf("expected tok-123, got %q, %v", v, err)
	}
}

func TestZeroCredential(t *testing.T) {
	var c Credential
	if !c.IsZero() {
		t.Fatalf("expected zero credential")
	}
	v, err := c.Resolve(context.Background(), nil)
	if err != nil || v != "" {
		t.Fatalf("expected empty resolution, got %q, %v", v, err)
	}
}

func TestVerifierDisabledAllowsAll(t *testing.T) {
	v := NewVerifier(Credential{})
	r := httptest.NewRequest(http.MethodPost, "/proxy/db/query", nil)
	if err := v.Authorize(r); err != nil {
		t.Fatalf("disabled verifier should allow, got %v", err)
	}
}

func TestVerifierAcceptsAndRejects(t *testing.T) {
	v := NewVerifier(Literal("tok-123"))

	r := httptest.NewRequest(http.MethodPost, "/proxy/db/query", nil)
	if err := v.Authorize(r); err == nil {
		t.Fatalf("expected rejection without header")
	}

	r.Header.Set("Authorization", "Bearer wrong")
	if err := v.Authorize(r); err == nil {
		t.Fatalf("expected rejection for wrong token")
	}

	r.Header.Set("Authorization", "Bearer tok-123")
	if err := v.Authorize(r); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
}

func TestMiddlewareReturns401(t *testing.T) {
	v := NewVerifier(Literal("tok-123"))
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/proxy/db/query", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proxy/db/query", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Read-only HTTP proxy exposing the guarded query path and the articles
// listing to non-MCP callers. Same guardrail, same store, no write surface.

package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"crimewatch-mcp/internal/auth"
	"crimewatch-mcp/internal/db"
	serr "crimewatch-mcp/internal/errors"
	"crimewatch-mcp/internal/logging"
	"crimewatch-mcp/internal/safety"
	"go.uber.org/zap"
)

// Store is the slice of the database surface the proxy forwards to.
type Store interface {
	Execute(ctx context.Context, stmt string, params map[string]any) (*db.ResultSet, error)
	FetchArticles(ctx context.Context, f db.ArticlesFilter) ([]db.Article, error)
}

type Proxy struct {
	store    Store
	verifier *auth.Verifier
	logger   *zap.Logger
}

func New(store Store, verifier *auth.Verifier, logger *zap.Logger) *Proxy {
	return &Proxy{store: store, verifier: verifier, logger: logging.WithComponent(logger, "proxy")}
}

// Handler mounts the proxy routes. Bearer auth applies to /proxy/* only;
// /health stays open for liveness checks.
func (p *Proxy) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", p.handleHealth)
	mux.Handle("/proxy/db/query", p.verifier.Middleware(http.HandlerFunc(p.handleQuery)))
	mux.Handle("/proxy/news_articles", p.verifier.Middleware(http.HandlerFunc(p.handleArticles)))
	return mux
}

func (p *Proxy) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

type queryRequest struct {
	SQL    string         `json:"sql"`
	Params map[string]any `json:"params,omitempty"`
}

type queryResponse struct {
	Rows    []map[string]any `json:"rows"`
	Columns []string         `json:"columns"`
}

func (p *Proxy) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	guarded, err := safety.Sanitize(req.SQL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rs, err := p.store.Execute(r.Context(), guarded, req.Params)
	if err != nil {
		p.logger.Warn("proxied query failed", zap.Error(err))
		http.Error(w, serr.ToToolError(err).Error(), statusFor(err))
		return
	}

	writeJSON(w, queryResponse{Rows: rs.Rows, Columns: rs.Columns})
}

type articlesRequest struct {
	Limit     int     `json:"limit,omitempty"`
	Since     string  `json:"since,omitempty"`
	Query     string  `json:"query,omitempty"`
	SourceIDs []int64 `json:"sourceIds,omitempty"`
	CityID    *int64  `json:"cityId,omitempty"`
}

type articlesResponse struct {
	Count    int          `json:"count"`
	Articles []db.Article `json:"articles"`
}

func (p *Proxy) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req articlesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Limit < 0 || req.Limit > 50 {
		http.Error(w, "limit must be between 1 and 50", http.StatusBadRequest)
		return
	}

	articles, err := p.store.FetchArticles(r.Context(), db.ArticlesFilter{
		Limit:     req.Limit,
		Since:     req.Since,
		Query:     req.Query,
		SourceIDs: req.SourceIDs,
		CityID:    req.CityID,
	})
	if err != nil {
		p.logger.Warn("proxied articles lookup failed", zap.Error(err))
		http.Error(w, serr.ToToolError(err).Error(), statusFor(err))
		return
	}

	writeJSON(w, articlesResponse{Count: len(articles), Articles: articles})
}

// statusFor maps tool-error codes onto HTTP statuses. Guard rejections are
// handled before execution; anything reaching here is 500 unless a binding
// is missing.
func statusFor(err error) int {
	var me *serr.MCPError
	if errors.As(err, &me) {
		switch me.Code {
		case serr.CodeRejectedStatement, serr.CodeInvalidInput:
			return http.StatusBadRequest
		case serr.CodeUnauthorized:
			return http.StatusUnauthorized
		case serr.CodeMissingBinding:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}

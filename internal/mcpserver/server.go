// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"net/http"

	"crimewatch-mcp/internal/auth"
	"crimewatch-mcp/internal/config"
	"crimewatch-mcp/internal/db"
	"crimewatch-mcp/internal/llm"
	"crimewatch-mcp/internal/logging"
	"crimewatch-mcp/internal/mcpserver/prompts"
	"crimewatch-mcp/internal/mcpserver/resources"
	"crimewatch-mcp/internal/mcpserver/tools"
	"crimewatch-mcp/internal/proxy"
	"crimewatch-mcp/internal/schema"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	store  *db.Store
	model  *llm.Client
	srv    *mcp.Server
}

// New wires the MCP server. An empty DSN leaves the pool nil; tools then
// report MISSING_BINDING instead of failing startup, so schema-only clients
// still work.
func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	var pool *pgxpool.Pool
	if cfg.DatabaseDSN != "" {
		p, err := db.NewPool(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		pool = p
		logger.Info("database pool ready", logging.FieldDSN("dsn", cfg.DatabaseDSN))
	} else {
		logger.Warn("no database DSN configured; data tools will report MISSING_BINDING")
	}

	store := db.NewStore(pool)
	model := llm.New(cfg, logger)

	m := mcp.NewServer(&mcp.Implementation{Name: "crimewatch-mcp", Version: "0.1.0"}, nil)
	deps := tools.Dependencies{
		Store:  store,
		LLM:    model,
		Schema: schema.Default(),
		Logger: logging.WithComponent(logger, "tools"),
		Config: cfg,
	}
	tools.Register(m, deps)
	prompts.RegisterAll(m, deps)
	resources.RegisterAll(m, deps)

	return &Server{cfg: cfg, logger: logger, pool: pool, store: store, model: model, srv: m}, nil
}

// Run runs the server with the provided transport (e.g., &mcp.StdioTransport{}).
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.srv.Run(ctx, transport)
}

// ProxyHandler builds the read-only HTTP surface mounted next to the SSE and
// streamable transports.
func (s *Server) ProxyHandler() (http.Handler, error) {
	var cred auth.Credential
	switch {
	case s.cfg.GatewayToken != "":
		cred = auth.Literal(s.cfg.GatewayToken)
	case s.cfg.GatewayTokenFile != "":
		cred = auth.FromFile(s.cfg.GatewayTokenFile)
	}
	return proxy.New(s.store, auth.NewVerifier(cred), s.logger).Handler(), nil
}

func (s *Server) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

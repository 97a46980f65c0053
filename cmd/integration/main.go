// Smoke runner: exercises the tool handlers directly against a live crime
// database. Not an automated test; run by hand when touching the data paths.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"crimewatch-mcp/internal/config"
	"crimewatch-mcp/internal/db"
	"crimewatch-mcp/internal/llm"
	"crimewatch-mcp/internal/mcpserver/tools"
	"crimewatch-mcp/internal/schema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	dsn := os.Getenv("CRIMEWATCH_MCP_DATABASE_DSN")
	if dsn == "" {
		dsn = "postgres://localhost:5432/crimewatch?sslmode=disable"
	}
	fmt.Println("Using DSN:", dsn)

	cfg := config.Config{
		DatabaseDSN:           dsn,
		ConnectTimeoutSeconds: 5,
		StatementTimeoutMs:    30000,
		AppName:               "crimewatch-mcp-integration",
		DefaultModel:          "gpt-4o-mini",
		AllowedModels:         []string{"gpt-4o-mini"},
		LLMTimeoutSeconds:     45,
		OpenAIAPIKey:          os.Getenv("CRIMEWATCH_MCP_OPENAI_API_KEY"),
		LogLevel:              "info",
	}

	logger, _ := zap.NewDevelopment()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	deps := tools.Dependencies{
		Store:  db.NewStore(pool),
		LLM:    llm.New(cfg, logger),
		Schema: schema.Default(),
		Logger: logger,
		Config: cfg,
	}

	run("ping", func() (*mcp.CallToolResult, any, error) {
		return tools.Ping(ctx, tools.PingInput{Message: "hello"})
	})
	run("server_info", func() (*mcp.CallToolResult, any, error) { return tools.ServerInfo(ctx, deps) })
	run("crime_insights_raw", func() (*mcp.CallToolResult, any, error) {
		off := false
		return tools.CrimeInsights(ctx, deps, tools.CrimeInsightsInput{Q: "most recent incidents", Summarize: &off})
	})
	run("crime_insights_bad_model", func() (*mcp.CallToolResult, any, error) {
		return tools.CrimeInsights(ctx, deps, tools.CrimeInsightsInput{Q: "anything", Model: "gpt-9-ultra"})
	})
	run("news_articles", func() (*mcp.CallToolResult, any, error) {
		return tools.NewsArticles(ctx, deps, tools.NewsArticlesInput{Limit: 5})
	})
	run("recent_day_summary", func() (*mcp.CallToolResult, any, error) {
		return tools.RecentDaySummary(ctx, deps, tools.RecentDaySummaryInput{Limit: 10})
	})

	fmt.Println("Done at", time.Now().Format(time.RFC3339))
}

// run executes a tool function and prints the result.
func run(name string, fn func() (*mcp.CallToolResult, any, error)) {
	fmt.Printf("\n=== %s ===\n", name)
	res, out, err := fn()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if res != nil && res.IsError {
		fmt.Printf("tool error: %s\n", toJSON(res.StructuredContent))
		return
	}
	fmt.Println(toJSON(out))
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<json error: %v>", err)
	}
	return string(b)
}

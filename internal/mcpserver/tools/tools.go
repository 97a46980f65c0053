// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Tool registration and shared helpers. Handlers never propagate errors
// past their boundary; every failure becomes an isError result.

package tools

import (
	"context"
	"fmt"

	"crimewatch-mcp/internal/config"
	"crimewatch-mcp/internal/db"
	serr "crimewatch-mcp/internal/errors"
	"crimewatch-mcp/internal/llm"
	"crimewatch-mcp/internal/schema"
	"crimewatch-mcp/internal/version"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Store is the read surface of the crime database the tools depend on.
type Store interface {
	Execute(ctx context.Context, stmt string, params map[string]any) (*db.ResultSet, error)
	FetchArticles(ctx context.Context, f db.ArticlesFilter) ([]db.Article, error)
	RecentDaySummary(ctx context.Context, limit int) (string, []db.IncidentDigest, error)
}

// LLM is the chat-completion surface used by the planner and summarizer.
type LLM interface {
	Configured() bool
	ValidateModel(model string) (string, error)
	AllowedModels() []string
	Plan(ctx context.Context, question, schemaJSON, model string) (llm.QueryPlan, error)
	Summarize(ctx context.Context, req llm.SummaryRequest) (string, error)
	Chat(ctx context.Context, req llm.ChatRequest) (string, error)
}

type Dependencies struct {
	Store  Store
	LLM    LLM
	Schema *schema.Descriptor
	Logger *zap.Logger
	Config config.Config
}

func Register(server *mcp.Server, deps Dependencies) *Registry {
	reg := NewRegistry()

	add := func(name, description string) {
		reg.Add(Descriptor{Name: name, Description: description})
	}

	add("crime_insights", "Ask natural questions about the crime dataset.")
	mcp.AddTool(server, &mcp.Tool{Name: "crime_insights", Description: "Ask natural questions about the crime dataset."}, func(ctx context.Context, req *mcp.CallToolRequest, input CrimeInsightsInput) (*mcp.CallToolResult, CrimeInsightsOutput, error) {
		return CrimeInsights(ctx, deps, input)
	})

	add("news_articles", "Fetch recent crime-related news articles.")
	mcp.AddTool(server, &mcp.Tool{Name: "news_articles", Description: "Fetch recent crime-related news articles."}, func(ctx context.Context, req *mcp.CallToolRequest, input NewsArticlesInput) (*mcp.CallToolResult, NewsArticlesOutput, error) {
		return NewsArticles(ctx, deps, input)
	})

	add("recent_day_summary", "Summarize incidents from the most recent reported day with article links if available.")
	mcp.AddTool(server, &mcp.Tool{Name: "recent_day_summary", Description: "Summarize incidents from the most recent reported day with article links if available."}, func(ctx context.Context, req *mcp.CallToolRequest, input RecentDaySummaryInput) (*mcp.CallToolResult, RecentDaySummaryOutput, error) {
		return RecentDaySummary(ctx, deps, input)
	})

	add("openai_chat", "General-purpose chat completion via the server.")
	mcp.AddTool(server, &mcp.Tool{Name: "openai_chat", Description: "General-purpose chat completion via the server."}, func(ctx context.Context, req *mcp.CallToolRequest, input OpenAIChatInput) (*mcp.CallToolResult, OpenAIChatOutput, error) {
		return OpenAIChat(ctx, deps, input)
	})

	add("list_tools", "List tools currently registered on the server.")
	mcp.AddTool(server, &mcp.Tool{Name: "list_tools", Description: "List tools currently registered on the server."}, func(ctx context.Context, req *mcp.CallToolRequest, input ListToolsInput) (*mcp.CallToolResult, ListToolsOutput, error) {
		return ListTools(ctx, reg)
	})

	add("ping", "Ping the server.")
	mcp.AddTool(server, &mcp.Tool{Name: "ping", Description: "Ping the server."}, func(ctx context.Context, req *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, PingOutput, error) {
		return Ping(ctx, input)
	})

	add("server_info", "Returns server metadata.")
	mcp.AddTool(server, &mcp.Tool{Name: "server_info", Description: "Returns server metadata."}, func(ctx context.Context, req *mcp.CallToolRequest, input ServerInfoInput) (*mcp.CallToolResult, ServerInfoOutput, error) {
		return ServerInfo(ctx, deps)
	})

	return reg
}

// resultFromError renders an error as an isError tool result. Allow-list
// and SQL details surface in the text so callers can act without digging
// through structured content.
func resultFromError(err error) *mcp.CallToolResult {
	me := serr.ToToolError(err)
	text := fmt.Sprintf("%s: %s", me.Code, me.Message)
	if v, ok := me.Details["allowed_models"]; ok {
		text += fmt.Sprintf(" (allowed: %v)", v)
	}
	if v, ok := me.Details["sql"]; ok {
		text += fmt.Sprintf("\n\nSQL:\n%v", v)
	}
	errObj := map[string]any{"code": me.Code, "message": me.Message}
	if me.Hint != "" {
		errObj["hint"] = me.Hint
	}
	if len(me.Details) > 0 {
		errObj["details"] = me.Details
	}
	return &mcp.CallToolResult{
		IsError:           true,
		StructuredContent: errObj,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// Ping tool

type PingInput struct {
	Message string `json:"message,omitempty" jsonschema:"optional message to echo"`
}

type PingOutput struct {
	Pong string `json:"pong"`
}

func Ping(ctx context.Context, input PingInput) (*mcp.CallToolResult, PingOutput, error) {
	msg := input.Message
	if msg == "" {
		msg = "pong"
	}
	return nil, PingOutput{Pong: msg}, nil
}

// ServerInfo tool

type ServerInfoInput struct{}

type ServerInfoOutput struct {
	Build              version.BuildInfo `json:"build"`
	DefaultModel       string            `json:"default_model"`
	AllowedModels      []string          `json:"allowed_models"`
	LLMConfigured      bool              `json:"llm_configured"`
	DatabaseConfigured bool              `json:"database_configured"`
}

func ServerInfo(ctx context.Context, deps Dependencies) (*mcp.CallToolResult, ServerInfoOutput, error) {
	return nil, ServerInfoOutput{
		Build:              version.Info(),
		DefaultModel:       deps.Config.DefaultModel,
		AllowedModels:      deps.LLM.AllowedModels(),
		LLMConfigured:      deps.LLM.Configured(),
		DatabaseConfigured: deps.Config.DatabaseDSN != "",
	}, nil
}

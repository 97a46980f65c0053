// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT

package tools

import (
	"context"
	"strings"

	serr "crimewatch-mcp/internal/errors"
	"crimewatch-mcp/internal/llm"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type OpenAIChatInput struct {
	Prompt      string   `json:"prompt" jsonschema:"user prompt"`
	Model       string   `json:"model,omitempty" jsonschema:"chat model override; must be on the allow-list"`
	System      string   `json:"system,omitempty" jsonschema:"optional system prompt"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
}

type OpenAIChatOutput struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

func OpenAIChat(ctx context.Context, deps Dependencies, input OpenAIChatInput) (*mcp.CallToolResult, OpenAIChatOutput, error) {
	var out OpenAIChatOutput

	if strings.TrimSpace(input.Prompt) == "" {
		return resultFromError(serr.NewInvalidInput("prompt must be non-empty", "", nil)), out, nil
	}
	model, err := deps.LLM.ValidateModel(input.Model)
	if err != nil {
		return resultFromError(err), out, nil
	}

	text, err := deps.LLM.Chat(ctx, llm.ChatRequest{
		Prompt:      input.Prompt,
		Model:       model,
		System:      input.System,
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
	})
	if err != nil {
		return resultFromError(err), out, nil
	}

	out = OpenAIChatOutput{Text: text, Model: model}
	return textResult(text), out, nil
}

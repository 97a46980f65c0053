// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Chat-completion client wrapper with model allow-list and request timeout.

package llm

import (
	"context"
	"errors"
	"slices"
	"time"

	"crimewatch-mcp/internal/config"
	serr "crimewatch-mcp/internal/errors"
	"crimewatch-mcp/internal/logging"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Client struct {
	api          *openai.Client
	defaultModel string
	allowed      []string
	timeout      time.Duration
	logger       *zap.Logger
}

// New builds a client from config. When no API key is configured the client
// is still usable for model validation; completion calls return
// MISSING_BINDING and callers fall back accordingly.
func New(cfg config.Config, logger *zap.Logger) *Client {
	var api *openai.Client
	if cfg.OpenAIAPIKey != "" {
		oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			oc.BaseURL = cfg.OpenAIBaseURL
		}
		api = openai.NewClientWithConfig(oc)
	}
	return &Client{
		api:          api,
		defaultModel: cfg.DefaultModel,
		allowed:      cfg.AllowedModels,
		timeout:      time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		logger:       logging.WithComponent(logger, "llm"),
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool { return c != nil && c.api != nil }

func (c *Client) DefaultModel() string { return c.defaultModel }

func (c *Client) AllowedModels() []string { return c.allowed }

// ValidateModel checks the requested model against the allow-list.
// Empty input resolves to the default model.
func (c *Client) ValidateModel(model string) (string, error) {
	if model == "" {
		model = c.defaultModel
	}
	if !slices.Contains(c.allowed, model) {
		return "", serr.NewUnsupportedModel(model, c.allowed)
	}
	return model, nil
}

// complete performs one non-streaming chat completion bounded by the
// configured timeout.
func (c *Client) complete(ctx context.Context, model, system, user string, temperature *float32, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", serr.NewMissingBinding("openai_api_key")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if temperature != nil {
		req.Temperature = *temperature
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", serr.NewTimeout("chat completion timed out")
		}
		return "", serr.NewInternal(err)
	}
	if len(resp.Choices) == 0 {
		return "", serr.NewPlannerFormat("chat completion returned no choices")
	}
	c.logger.Debug("chat completion",
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// ChatRequest is a general-purpose completion request for the openai_chat tool.
type ChatRequest struct {
	Prompt      string
	Model       string
	System      string
	Temperature *float32
	MaxTokens   int
}

// Chat runs a single pass-through completion.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return c.complete(ctx, req.Model, req.System, req.Prompt, req.Temperature, req.MaxTokens)
}

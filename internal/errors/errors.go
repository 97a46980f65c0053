// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Custom error types and error codes for MCP responses.

package errors

import (
	"fmt"
	"strings"
)

type ErrorCode string

const (
	CodeUnsupportedModel  ErrorCode = "UNSUPPORTED_MODEL"
	CodePlannerFormat     ErrorCode = "PLANNER_FORMAT"
	CodePlannerParse      ErrorCode = "PLANNER_PARSE"
	CodeRejectedStatement ErrorCode = "REJECTED_STATEMENT"
	CodeExecutionFailed   ErrorCode = "EXECUTION_FAILED"
	CodeMissingBinding    ErrorCode = "MISSING_BINDING"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

type MCPError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *MCPError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func New(code ErrorCode, msg, hint string, details map[string]any) *MCPError {
	return &MCPError{Code: code, Message: msg, Hint: hint, Details: sanitize(details)}
}

func NewInvalidInput(msg, hint string, details map[string]any) *MCPError {
	return New(CodeInvalidInput, msg, hint, details)
}

func NewUnsupportedModel(model string, allowed []string) *MCPError {
	msg := fmt.Sprintf("unsupported model %q", model)
	return New(CodeUnsupportedModel, msg, "pick one of the allowed models", map[string]any{"allowed_models": strings.Join(allowed, ", ")})
}

func NewPlannerFormat(msg string) *MCPError {
	return New(CodePlannerFormat, msg, "planner must return a single JSON object", nil)
}

func NewPlannerParse(err error) *MCPError {
	return New(CodePlannerParse, "planner returned malformed JSON", "", map[string]any{"cause": scrub(err.Error())})
}

func NewRejectedStatement(msg string) *MCPError {
	return New(CodeRejectedStatement, msg, "only single read-only SELECT statements are executed", nil)
}

func NewExecutionFailed(err error, sql string) *MCPError {
	return New(CodeExecutionFailed, "query execution failed", "check the generated SQL against the schema", map[string]any{
		"cause": scrub(err.Error()),
		"sql":   sql,
	})
}

func NewMissingBinding(name string) *MCPError {
	return New(CodeMissingBinding, "required binding missing: "+name, "configure the binding and restart", map[string]any{"binding": name})
}

func NewTimeout(msg string) *MCPError {
	return New(CodeTimeout, msg, "retry or increase timeout", nil)
}

func NewUnauthorized(msg string) *MCPError {
	return New(CodeUnauthorized, msg, "provide a valid bearer token", nil)
}

func NewInternal(err error) *MCPError {
	if err == nil {
		return New(CodeInternalError, "internal error", "see logs", nil)
	}
	return New(CodeInternalError, "internal error", "see logs", map[string]any{"cause": scrub(err.Error())})
}

// ToToolError converts any error to an MCPError;
// unknown errors are wrapped as internal error with scrubbed message.
func ToToolError(err error) *MCPError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MCPError); ok {
		return me
	}
	return NewInternal(err)
}

func sanitize(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = scrub(fmt.Sprint(v))
	}
	return out
}

// scrub best-effort masks secrets/DSNs by replacing common patterns.
func scrub(s string) string {
	// lightweight scrub: do not leak raw DSNs or API keys
	replacements := []struct{ find, repl string }{
		{"postgres://", "postgres://***:***@"},
		{"postgresql://", "postgresql://***:***@"},
		{"password=", "password=***"},
		{"pwd=", "pwd=***"},
		{"Bearer ", "Bearer ***"},
		{"sk-", "sk-***"},
	}
	out := s
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r.find, r.repl)
	}
	return out
}

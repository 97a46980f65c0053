// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Translates a natural-language question plus the schema descriptor into a
// query plan via one low-temperature chat completion. The planner does not
// validate the SQL; the guardrail downstream owns that.

package llm

import (
	"context"
	"encoding/json"
	"strings"

	serr "crimewatch-mcp/internal/errors"
)

// QueryPlan is the planner's output: SQL, named parameters, and a short
// rationale. Produced once per request, never persisted.
type QueryPlan struct {
	SQL     string         `json:"sql"`
	Params  map[string]any `json:"params,omitempty"`
	Explain string         `json:"explain,omitempty"`
}

const planTemperature float32 = 0.2

const planResponseSchema = `{
  "type": "object",
  "properties": {
    "sql": { "type": "string", "description": "A single read-only SELECT for PostgreSQL. Use named parameters like :p1" },
    "params": { "type": "object", "additionalProperties": true },
    "explain": { "type": "string" }
  },
  "required": ["sql"]
}`

func plannerSystemPrompt() string {
	return strings.Join([]string{
		"You translate natural-language questions into SAFE PostgreSQL SELECT queries for the crime database.",
		"Rules:",
		" - Return STRICT JSON matching the schema below, nothing else.",
		" - Read-only: SELECT only. No CREATE/INSERT/UPDATE/DELETE/ALTER/DROP.",
		" - Always include a LIMIT (<= 1000).",
		" - Prefer named parameters (:p1, :p2) instead of string concatenation.",
		" - Dates: use PostgreSQL date functions relative to now() (e.g., now() - interval '30 days').",
		" - To connect articles with incidents, join incident_article_link (incident_id -> incidents.id, article_id -> article.article_id).",
	}, "\n")
}

func plannerUserPrompt(question, schemaJSON string) string {
	return strings.Join([]string{
		"User question:",
		question,
		"",
		"Database schema (JSON):",
		schemaJSON,
		"",
		"Return JSON per this JSON Schema:",
		planResponseSchema,
	}, "\n")
}

// Plan asks the model for a query plan and parses the strict-JSON reply.
func (c *Client) Plan(ctx context.Context, question, schemaJSON, model string) (QueryPlan, error) {
	temp := planTemperature
	raw, err := c.complete(ctx, model, plannerSystemPrompt(), plannerUserPrompt(question, schemaJSON), &temp, 0)
	if err != nil {
		return QueryPlan{}, err
	}
	return ParsePlan(raw)
}

// ParsePlan extracts the first top-level JSON object from raw model output
// and decodes it. Models occasionally wrap the object in prose or fences;
// taking first '{' to last '}' tolerates both.
func ParsePlan(raw string) (QueryPlan, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return QueryPlan{}, serr.NewPlannerFormat("planner did not return JSON")
	}
	var plan QueryPlan
	if err := json.Unmarshal([]byte(raw[start:end+1]), &plan); err != nil {
		return QueryPlan{}, serr.NewPlannerParse(err)
	}
	return plan, nil
}

// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// The crime_insights pipeline: plan, guard, execute, summarize. Every stage
// failure is reported as an isError result with a stable code.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	serr "crimewatch-mcp/internal/errors"
	"crimewatch-mcp/internal/llm"
	"crimewatch-mcp/internal/safety"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// fallbackPlanSQL runs when no API key is configured: a recent-incidents
// listing that still exercises the full guard-and-execute path.
const fallbackPlanSQL = "SELECT id, offence_summary FROM incidents ORDER BY id DESC LIMIT 20"

const (
	previewDefault = 20
	previewMax     = 50
)

type CrimeInsightsInput struct {
	Q            string `json:"q" jsonschema:"natural-language question about the crime data"`
	Model        string `json:"model,omitempty" jsonschema:"chat model override; must be on the allow-list"`
	Summarize    *bool  `json:"summarize,omitempty" jsonschema:"set false to skip the natural-language summary"`
	PreviewLimit int    `json:"preview_limit,omitempty" jsonschema:"rows included in the preview, 1-50, default 20"`
}

type CrimeInsightsOutput struct {
	Answer   string   `json:"answer"`
	SQL      string   `json:"sql"`
	RowCount int      `json:"rowCount"`
	Columns  []string `json:"columns"`
	Model    string   `json:"model"`
}

func CrimeInsights(ctx context.Context, deps Dependencies, input CrimeInsightsInput) (*mcp.CallToolResult, CrimeInsightsOutput, error) {
	var out CrimeInsightsOutput

	if strings.TrimSpace(input.Q) == "" {
		return resultFromError(serr.NewInvalidInput("q must be a non-empty question", "", nil)), out, nil
	}
	previewLimit := input.PreviewLimit
	if previewLimit == 0 {
		previewLimit = previewDefault
	}
	if previewLimit < 1 || previewLimit > previewMax {
		return resultFromError(serr.NewInvalidInput(
			fmt.Sprintf("preview_limit must be between 1 and %d", previewMax), "", nil)), out, nil
	}

	model, err := deps.LLM.ValidateModel(input.Model)
	if err != nil {
		return resultFromError(err), out, nil
	}

	plan, err := planQuery(ctx, deps, input.Q, model)
	if err != nil {
		return resultFromError(err), out, nil
	}

	guarded, err := safety.Sanitize(plan.SQL)
	if err != nil {
		return resultFromError(err), out, nil
	}

	rs, err := deps.Store.Execute(ctx, guarded, plan.Params)
	if err != nil {
		return resultFromError(err), out, nil
	}

	preview := rs.Rows
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	wantSummary := input.Summarize == nil || *input.Summarize
	var answer string
	if wantSummary && deps.LLM.Configured() {
		answer, err = deps.LLM.Summarize(ctx, llm.SummaryRequest{
			Question:     input.Q,
			PlannerNotes: plan.Explain,
			SQL:          guarded,
			RowCount:     len(rs.Rows),
			Preview:      preview,
			Model:        model,
		})
		if err != nil {
			return resultFromError(err), out, nil
		}
	} else {
		answer = rawAnswer(guarded, len(rs.Rows), preview)
	}

	deps.Logger.Info("crime_insights served",
		zap.String("model", model),
		zap.Int("row_count", len(rs.Rows)),
		zap.Bool("summarized", wantSummary && deps.LLM.Configured()),
	)

	out = CrimeInsightsOutput{
		Answer:   answer,
		SQL:      guarded,
		RowCount: len(rs.Rows),
		Columns:  rs.Columns,
		Model:    model,
	}
	return textResult(answer), out, nil
}

// planQuery asks the model for a plan, or falls back to the canned recent
// listing when no completion backend is configured.
func planQuery(ctx context.Context, deps Dependencies, question, model string) (llm.QueryPlan, error) {
	if !deps.LLM.Configured() {
		return llm.QueryPlan{SQL: fallbackPlanSQL, Explain: "no completion backend configured; listing recent incidents"}, nil
	}
	schemaJSON, err := deps.Schema.JSON()
	if err != nil {
		return llm.QueryPlan{}, serr.NewInternal(err)
	}
	return deps.LLM.Plan(ctx, question, schemaJSON, model)
}

func rawAnswer(sql string, rowCount int, preview []map[string]any) string {
	previewJSON, err := json.MarshalIndent(preview, "", "  ")
	if err != nil {
		previewJSON = []byte("[]")
	}
	return fmt.Sprintf("Rows: %d\n\nSQL:\n%s\n\nPreview:\n%s", rowCount, sql, previewJSON)
}

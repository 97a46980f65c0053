// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Turns a bounded result preview back into prose via a second completion.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SummaryRequest carries everything the summarization prompt needs.
type SummaryRequest struct {
	Question     string
	PlannerNotes string
	SQL          string
	RowCount     int
	Preview      []map[string]any
	Model        string
}

const summarySystemPrompt = "You are a precise crime analyst."

func summaryUserPrompt(req SummaryRequest) string {
	previewJSON, err := json.MarshalIndent(req.Preview, "", "  ")
	if err != nil {
		previewJSON = []byte("[]")
	}
	parts := []string{
		fmt.Sprintf("Question: %s", req.Question),
		fmt.Sprintf("SQL:\n%s", req.SQL),
		fmt.Sprintf("Returned rows: %d (showing first %d)", req.RowCount, len(req.Preview)),
		string(previewJSON),
		"Write a concise, factual answer. Include concrete counts and time ranges if present.",
	}
	if req.PlannerNotes != "" {
		parts = append(parts[:1], append([]string{fmt.Sprintf("Planner notes: %s", req.PlannerNotes)}, parts[1:]...)...)
	}
	return strings.Join(parts, "\n\n")
}

// Summarize produces a natural-language answer from the result preview.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	temp := planTemperature
	return c.complete(ctx, req.Model, summarySystemPrompt, summaryUserPrompt(req), &temp, 0)
}

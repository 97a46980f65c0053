// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT

package tools

import (
	"context"
	"fmt"
	"strings"

	"crimewatch-mcp/internal/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RecentDaySummaryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max incidents to include, 1-200, default 25"`
}

type RecentDaySummaryOutput struct {
	LatestDate string              `json:"latestDate"`
	Count      int                 `json:"count"`
	Incidents  []db.IncidentDigest `json:"incidents"`
}

func RecentDaySummary(ctx context.Context, deps Dependencies, input RecentDaySummaryInput) (*mcp.CallToolResult, RecentDaySummaryOutput, error) {
	var out RecentDaySummaryOutput

	latest, incidents, err := deps.Store.RecentDaySummary(ctx, input.Limit)
	if err != nil {
		return resultFromError(err), out, nil
	}
	if latest == "" {
		out = RecentDaySummaryOutput{Incidents: []db.IncidentDigest{}}
		return textResult("No incidents found."), out, nil
	}

	out = RecentDaySummaryOutput{LatestDate: latest, Count: len(incidents), Incidents: incidents}
	return textResult(renderDigest(latest, incidents)), out, nil
}

func renderDigest(latest string, incidents []db.IncidentDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Most recent day (%s) incidents (%d shown):\n", latest, len(incidents))
	for _, d := range incidents {
		fmt.Fprintf(&b, "- %s | %s | %s",
			strOr(d.ReportedDate, latest),
			strOr(d.Neighbourhood, "unknown area"),
			strOr(d.CrimeType, "unclassified"))
		if d.ArticleURL != nil && *d.ArticleURL != "" {
			fmt.Fprintf(&b, " | article: %s", *d.ArticleURL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func strOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

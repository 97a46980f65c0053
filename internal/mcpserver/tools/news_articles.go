// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT

package tools

import (
	"context"
	"fmt"
	"strings"

	"crimewatch-mcp/internal/db"
	serr "crimewatch-mcp/internal/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type NewsArticlesInput struct {
	Limit     int     `json:"limit,omitempty" jsonschema:"max articles to return, 1-50, default 10"`
	Since     string  `json:"since,omitempty" jsonschema:"only articles published at or after this timestamp"`
	Query     string  `json:"query,omitempty" jsonschema:"substring match on title or body"`
	SourceIDs []int64 `json:"sourceIds,omitempty" jsonschema:"restrict to these source ids"`
	CityID    *int64  `json:"cityId,omitempty" jsonschema:"restrict to one city id"`
}

type NewsArticlesOutput struct {
	Count    int          `json:"count"`
	Articles []db.Article `json:"articles"`
}

func NewsArticles(ctx context.Context, deps Dependencies, input NewsArticlesInput) (*mcp.CallToolResult, NewsArticlesOutput, error) {
	var out NewsArticlesOutput

	if input.Limit < 0 || input.Limit > 50 {
		return resultFromError(serr.NewInvalidInput("limit must be between 1 and 50", "", nil)), out, nil
	}

	articles, err := deps.Store.FetchArticles(ctx, db.ArticlesFilter{
		Limit:     input.Limit,
		Since:     strings.TrimSpace(input.Since),
		Query:     strings.TrimSpace(input.Query),
		SourceIDs: input.SourceIDs,
		CityID:    input.CityID,
	})
	if err != nil {
		return resultFromError(err), out, nil
	}

	out = NewsArticlesOutput{Count: len(articles), Articles: articles}
	return textResult(renderArticles(articles)), out, nil
}

func renderArticles(articles []db.Article) string {
	if len(articles) == 0 {
		return "No articles found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d articles:\n", len(articles))
	for _, a := range articles {
		title := "(untitled)"
		if a.Title != nil && *a.Title != "" {
			title = *a.Title
		}
		fmt.Fprintf(&b, "- %s", title)
		if a.PublishedAt != nil && *a.PublishedAt != "" {
			fmt.Fprintf(&b, " (%s)", *a.PublishedAt)
		}
		if a.URL != nil && *a.URL != "" {
			fmt.Fprintf(&b, " -> %s", *a.URL)
		}
		if n := len(a.RelatedIncidents); n > 0 {
			fmt.Fprintf(&b, " [%d related incidents]", n)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

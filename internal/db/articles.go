// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// News article lookup with dynamic filters plus best-effort related-incident
// loading from the link table.

package db

import (
	"context"
	"fmt"
	"strings"

	serr "crimewatch-mcp/internal/errors"
)

// ArticlesFilter narrows the article listing. Each filter only contributes a
// WHERE clause when present.
type ArticlesFilter struct {
	Limit     int
	Since     string
	Query     string
	SourceIDs []int64
	CityID    *int64
}

type RelatedIncident struct {
	IncidentID     int64    `json:"incidentId"`
	GoNumber       *string  `json:"goNumber,omitempty"`
	OffenceSummary *string  `json:"offenceSummary,omitempty"`
	Neighbourhood  *string  `json:"neighbourhood,omitempty"`
	ReportedDate   *string  `json:"reportedDate,omitempty"`
	MatchScore     *float64 `json:"matchScore,omitempty"`
	Method         *string  `json:"method,omitempty"`
}

type Article struct {
	ArticleID        int64             `json:"articleId"`
	SourceID         *int64            `json:"sourceId,omitempty"`
	URL              *string           `json:"url,omitempty"`
	Title            *string           `json:"title,omitempty"`
	Byline           *string           `json:"byline,omitempty"`
	PublishedAt      *string           `json:"publishedAt,omitempty"`
	CityID           *int64            `json:"cityId,omitempty"`
	RelatedIncidents []RelatedIncident `json:"relatedIncidents"`
}

const (
	articlesDefaultLimit = 10
	articlesMaxLimit     = 50
)

// buildArticlesQuery appends clauses conditionally and binds parameters in
// the same order the clauses were appended. Ordering puts null published_at
// last, then published_at descending, then article_id descending as a
// deterministic tie-break.
func buildArticlesQuery(f ArticlesFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT article_id, source_id, COALESCE(url_canonical, url_landing) AS url, title, byline, published_at, city_id FROM article")

	var conds []string
	var args []any
	if f.Since != "" {
		args = append(args, f.Since)
		conds = append(conds, fmt.Sprintf("published_at >= $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR body_text ILIKE $%d)", n, n))
	}
	if len(f.SourceIDs) > 0 {
		args = append(args, f.SourceIDs)
		conds = append(conds, fmt.Sprintf("source_id = ANY($%d)", len(args)))
	}
	if f.CityID != nil {
		args = append(args, *f.CityID)
		conds = append(conds, fmt.Sprintf("city_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	b.WriteString(" ORDER BY (published_at IS NULL) ASC, published_at DESC, article_id DESC")
	args = append(args, normalizeArticlesLimit(f.Limit))
	b.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	return b.String(), args
}

func normalizeArticlesLimit(limit int) int {
	if limit <= 0 {
		return articlesDefaultLimit
	}
	if limit > articlesMaxLimit {
		return articlesMaxLimit
	}
	return limit
}

// FetchArticles lists articles and then loads their related incidents in one
// pass over the returned identifier set. A missing link table degrades to
// empty related-incident lists; any other error propagates.
func (s *Store) FetchArticles(ctx context.Context, f ArticlesFilter) ([]Article, error) {
	if s == nil || s.pool == nil {
		return nil, serr.NewMissingBinding("database")
	}
	sqlText, args := buildArticlesQuery(f)
	rows, err := s.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ArticleID, &a.SourceID, &a.URL, &a.Title, &a.Byline, &a.PublishedAt, &a.CityID); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.RelatedIncidents = []RelatedIncident{}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	if len(articles) == 0 {
		return articles, nil
	}

	ids := make([]int64, len(articles))
	for i, a := range articles {
		ids[i] = a.ArticleID
	}
	related, err := s.loadRelatedIncidents(ctx, ids)
	if err != nil {
		if isMissingTable(err) {
			// link table not provisioned yet; articles ship without relations
			return articles, nil
		}
		return nil, err
	}
	for i := range articles {
		if rel, ok := related[articles[i].ArticleID]; ok {
			articles[i].RelatedIncidents = rel
		}
	}
	return articles, nil
}

func (s *Store) loadRelatedIncidents(ctx context.Context, articleIDs []int64) (map[int64][]RelatedIncident, error) {
	const q = `
SELECT l.article_id, l.incident_id, l.match_score, l.method,
       i.go_number, i.offence_summary, i.neighbourhood, i.reported_date
FROM incident_article_link l
JOIN incidents i ON i.id = l.incident_id
WHERE l.article_id = ANY($1)
ORDER BY l.article_id, COALESCE(l.match_score, 0) DESC`

	rows, err := s.pool.Query(ctx, q, articleIDs)
	if err != nil {
		return nil, fmt.Errorf("query related incidents: %w", err)
	}
	defer rows.Close()

	out := map[int64][]RelatedIncident{}
	for rows.Next() {
		var articleID int64
		var r RelatedIncident
		if err := rows.Scan(&articleID, &r.IncidentID, &r.MatchScore, &r.Method, &r.GoNumber, &r.OffenceSummary, &r.Neighbourhood, &r.ReportedDate); err != nil {
			return nil, fmt.Errorf("scan related incident: %w", err)
		}
		out[articleID] = append(out[articleID], r)
	}
	return out, rows.Err()
}

// isMissingTable detects the undefined-table case by substring. Loose on
// purpose: the original behavior keyed off the error text, not a code.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "no such table")
}

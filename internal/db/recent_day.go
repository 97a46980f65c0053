// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Digest of incidents from the most recent reported day, with any linked
// article attached.

package db

import (
	"context"
	"fmt"

	serr "crimewatch-mcp/internal/errors"
)

type IncidentDigest struct {
	IncidentID    int64    `json:"incidentId"`
	ReportedDate  *string  `json:"reportedDate,omitempty"`
	Neighbourhood *string  `json:"neighbourhood,omitempty"`
	CrimeType     *string  `json:"crimeType,omitempty"`
	ArticleTitle  *string  `json:"articleTitle,omitempty"`
	ArticleURL    *string  `json:"articleUrl,omitempty"`
	MatchScore    *float64 `json:"matchScore,omitempty"`
	Method        *string  `json:"method,omitempty"`
}

const recentDayQuery = `
WITH latest AS (
    SELECT MAX(reported_date) AS d
    FROM incidents
    WHERE reported_date IS NOT NULL
)
SELECT
    i.id AS incident_id,
    i.reported_date,
    i.neighbourhood,
    COALESCE(i.offence_summary, i.offence_category) AS crime_type,
    a.title AS article_title,
    COALESCE(a.url_canonical, a.url_landing) AS article_url,
    l.match_score,
    l.method
FROM incidents i
CROSS JOIN latest
LEFT JOIN incident_article_link l ON l.incident_id = i.id
LEFT JOIN article a ON a.article_id = l.article_id
WHERE i.reported_date = latest.d
ORDER BY i.reported_date DESC, i.id DESC, COALESCE(l.match_score, 0) DESC
LIMIT $1`

// RecentDaySummary returns the latest reported date and the incidents filed
// on it. The date is empty when the incidents table is empty.
func (s *Store) RecentDaySummary(ctx context.Context, limit int) (string, []IncidentDigest, error) {
	if s == nil || s.pool == nil {
		return "", nil, serr.NewMissingBinding("database")
	}
	if limit < 1 {
		limit = 25
	}
	if limit > 200 {
		limit = 200
	}

	var latest *string
	if err := s.pool.QueryRow(ctx, `SELECT MAX(reported_date) FROM incidents WHERE reported_date IS NOT NULL`).Scan(&latest); err != nil {
		return "", nil, fmt.Errorf("query latest reported date: %w", err)
	}
	if latest == nil || *latest == "" {
		return "", nil, nil
	}

	rows, err := s.pool.Query(ctx, recentDayQuery, limit)
	if err != nil {
		return "", nil, fmt.Errorf("query recent day incidents: %w", err)
	}
	defer rows.Close()

	var out []IncidentDigest
	for rows.Next() {
		var d IncidentDigest
		if err := rows.Scan(&d.IncidentID, &d.ReportedDate, &d.Neighbourhood, &d.CrimeType, &d.ArticleTitle, &d.ArticleURL, &d.MatchScore, &d.Method); err != nil {
			return "", nil, fmt.Errorf("scan incident digest: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return "", nil, err
	}
	return *latest, out, nil
}

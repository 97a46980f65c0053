// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Static descriptor of the queryable tables. Handed to the planner as
// read-only context; never executed.

package schema

import "encoding/json"

// Column describes a single column: name, semantic type tag, description.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Table describes one queryable table.
type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
}

// Descriptor is the ordered set of tables the planner may query.
type Descriptor struct {
	Tables []Table `json:"tables"`
}

// JSON serializes the descriptor for planner context.
func (d *Descriptor) JSON() (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Default returns the crime dataset descriptor.
func Default() *Descriptor {
	return &Descriptor{Tables: []Table{
		{
			Name:        "incidents",
			Description: "One row per reported incident sourced from the municipal JSON feed.",
			Columns: []Column{
				{Name: "id", Type: "integer", Description: "Primary key assigned when the row is inserted."},
				{Name: "layer_id", Type: "integer", Description: "Identifier of the upstream layer the feature originated from."},
				{Name: "object_id", Type: "integer", Description: "Source OBJECTID value."},
				{Name: "go_number", Type: "text", Description: "Incident number from the source system."},
				{Name: "offence_summary", Type: "text", Description: "Summary description for the incident."},
				{Name: "offence_category", Type: "text", Description: "Categorized offence type."},
				{Name: "time_of_day", Type: "text", Description: "Bucketed time of day description."},
				{Name: "week_day", Type: "text", Description: "Weekday on which the incident occurred."},
				{Name: "intersection", Type: "text", Description: "Nearest intersection based on the data feed."},
				{Name: "neighbourhood", Type: "text", Description: "Neighbourhood label reported by the feed."},
				{Name: "sector", Type: "text", Description: "Sector identifier used by local police reporting."},
				{Name: "division", Type: "text", Description: "Police division or precinct reported for the incident."},
				{Name: "ward", Type: "text", Description: "Municipal ward identifier."},
				{Name: "reported_date", Type: "text", Description: "Date the incident was reported (string format from source)."},
				{Name: "reported_year", Type: "text", Description: "Reported year string."},
				{Name: "reported_hour", Type: "text", Description: "Reported hour string."},
				{Name: "occurred_date", Type: "text", Description: "Date the incident occurred (string format from source)."},
				{Name: "occurred_year", Type: "text", Description: "Occurred year string."},
				{Name: "occurred_hour", Type: "text", Description: "Occurred hour string."},
				{Name: "x", Type: "real", Description: "Projected X coordinate supplied by the dataset."},
				{Name: "y", Type: "real", Description: "Projected Y coordinate supplied by the dataset."},
			},
		},
		{
			Name:        "article",
			Description: "News articles that may be related to incidents.",
			Columns: []Column{
				{Name: "article_id", Type: "integer", Description: "Primary key for the article."},
				{Name: "source_id", Type: "integer", Description: "News source identifier."},
				{Name: "url_canonical", Type: "text", Description: "Canonical article URL."},
				{Name: "url_landing", Type: "text", Description: "Landing page URL if different."},
				{Name: "title", Type: "text", Description: "Article headline."},
				{Name: "byline", Type: "text", Description: "Author/byline text."},
				{Name: "published_at", Type: "text", Description: "Publication timestamp (ISO string)."},
				{Name: "fetched_at", Type: "text", Description: "Time the article was ingested."},
				{Name: "body_text", Type: "text", Description: "Full article body text."},
				{Name: "body_sha256", Type: "text", Description: "Hash of the article body."},
				{Name: "main_image_url", Type: "text", Description: "Primary image URL."},
				{Name: "is_paywalled", Type: "integer", Description: "1 if paywalled, else 0/null."},
				{Name: "city_id", Type: "integer", Description: "City identifier for the article."},
				{Name: "lat", Type: "real", Description: "Latitude if geocoded."},
				{Name: "lng", Type: "real", Description: "Longitude if geocoded."},
				{Name: "geocell", Type: "text", Description: "Geospatial cell identifier."},
				{Name: "entities_json", Type: "text", Description: "JSON of extracted entities."},
				{Name: "categories", Type: "text", Description: "Comma-separated category labels."},
			},
		},
		{
			Name:        "incident_article_link",
			Description: "Links articles to incidents with match scores and methods.",
			Columns: []Column{
				{Name: "link_id", Type: "integer", Description: "Primary key for the link."},
				{Name: "incident_id", Type: "integer", Description: "FK to incidents.id."},
				{Name: "article_id", Type: "integer", Description: "FK to article.article_id."},
				{Name: "match_score", Type: "real", Description: "Confidence score for the link."},
				{Name: "method", Type: "text", Description: "How the link was generated (manual/heuristic/llm)."},
				{Name: "created_at", Type: "text", Description: "Timestamp when the link was created."},
			},
		},
	}}
}

package arcgis

import (
	"strings"
	"testing"
)

func sampleFeature() Feature {
	return Feature{Attributes: map[string]any{
		"OBJECTID":        float64(42),
		"GO_NUMBER":       "GO123",
		"OFFENCE_SUMMARY": "Break and Enter - Resident's Home",
		"NEIGHBOURHOOD":   "Downtown",
		"X":               float64(-75.69),
		"Y":               float64(45.42),
	}}
}

func TestIncidentRowsMapsAttributes(t *testing.T) {
	rows := IncidentRows([]Feature{sampleFeature()}, 7)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	row := rows[0]
	if len(row) != len(IncidentColumns) {
		t.Fatalf("expected %d values, got %d", len(IncidentColumns), len(row))
	}
	if row[0] != 7 {
		t.Fatalf("expected layer_id 7, got %v", row[0])
	}
	if row[1] != float64(42) {
		t.Fatalf("expected object_id 42, got %v", row[1])
	}
	if row[2] != "GO123" {
		t.Fatalf("expected go_number GO123, got %v", row[2])
	}
	// unknown attributes bind NULL
	if row[5] != nil {
		t.Fatalf("expected nil time_of_day, got %v", row[5])
	}
}

func TestGenerateInsertSQLEscapesQuotes(t *testing.T) {
	sql := GenerateInsertSQL([]Feature{sampleFeature()}, 7)
	if !strings.Contains(sql, "Break and Enter - Resident''s Home") {
		t.Fatalf("expected escaped quote in:\n%s", sql)
	}
	if !strings.HasPrefix(sql, "BEGIN;") || !strings.Contains(sql, "COMMIT;") {
		t.Fatalf("expected transaction wrapper in:\n%s", sql)
	}
	if !strings.Contains(sql, "INSERT INTO incidents (layer_id, object_id, go_number") {
		t.Fatalf("unexpected column order in:\n%s", sql)
	}
	if !strings.Contains(sql, "NULL") {
		t.Fatalf("expected NULL for missing attributes in:\n%s", sql)
	}
}

func TestSQLLiteralNumbers(t *testing.T) {
	if got := sqlLiteral(float64(42)); got != "42" {
		t.Fatalf("expected 42, got %s", got)
	}
	if got := sqlLiteral(45.42); got != "45.42" {
		t.Fatalf("expected 45.42, got %s", got)
	}
	if got := sqlLiteral(nil); got != "NULL" {
		t.Fatalf("expected NULL, got %s", got)
	}
}

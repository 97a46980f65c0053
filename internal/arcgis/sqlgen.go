// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Converts exported features into incidents rows and bulk-load SQL.

package arcgis

import (
	"fmt"
	"strconv"
	"strings"
)

// IncidentColumns is the insert column order for the incidents table.
var IncidentColumns = []string{
	"layer_id", "object_id", "go_number",
	"offence_summary", "offence_category",
	"time_of_day", "week_day", "intersection", "neighbourhood",
	"sector", "division", "ward",
	"reported_date", "reported_year", "reported_hour",
	"occurred_date", "occurred_year", "occurred_hour",
	"x", "y",
}

// IncidentRows maps features onto IncidentColumns. Attribute keys are
// matched case-insensitively against the column name; OBJECTID is special.
func IncidentRows(features []Feature, layerID int) [][]any {
	rows := make([][]any, 0, len(features))
	for _, f := range features {
		attrs := lowerKeys(f.Attributes)
		row := make([]any, 0, len(IncidentColumns))
		for _, col := range IncidentColumns {
			switch col {
			case "layer_id":
				row = append(row, layerID)
			case "object_id":
				row = append(row, firstOf(attrs, "objectid", "object_id"))
			default:
				row = append(row, attrs[col])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func firstOf(attrs map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := attrs[k]; ok {
			return v
		}
	}
	return nil
}

const insertBatchSize = 500

// GenerateInsertSQL renders batched INSERT statements for a bulk load.
func GenerateInsertSQL(features []Feature, layerID int) string {
	rows := IncidentRows(features, layerID)
	var b strings.Builder
	b.WriteString("BEGIN;\n")
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		b.WriteString("INSERT INTO incidents (")
		b.WriteString(strings.Join(IncidentColumns, ", "))
		b.WriteString(") VALUES\n")
		for i, row := range rows[start:end] {
			b.WriteString("  (")
			for j, v := range row {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(sqlLiteral(v))
			}
			b.WriteString(")")
			if i < end-start-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(";\n")
	}
	b.WriteString("COMMIT;\n")
	return b.String()
}

func sqlLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		// JSON numbers decode as float64; keep integers unquoted and whole
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(x), "'", "''") + "'"
	}
}

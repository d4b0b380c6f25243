// Package viz picks a chart type for a query result. The choice is a
// heuristic over the result shape; an explicit keyword in the question
// always wins.
package viz

import (
	"regexp"
	"strings"

	"github.com/dealsight/dealsight-engine/pkg/analyzer"
	"github.com/dealsight/dealsight-engine/pkg/datasource"
)

// Chart type names returned by Resolve.
const (
	ChartBar   = "bar"
	ChartLine  = "line"
	ChartPie   = "pie"
	ChartTable = "table"
)

// DefaultChart is used when the result is empty and the question named no
// chart type.
const DefaultChart = ChartTable

var numericStringPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// date-ish column names suggest a series axis.
var dateNameHints = []string{"date", "month", "day", "week", "quarter", "year"}

// Resolve picks the chart type for a result. Priority order: an explicit
// chart keyword in the question, then the result-shape heuristic, then
// fallback for empty results.
func Resolve(prompt string, result *datasource.QueryExecutionResult, fallback string) string {
	if hint := analyzer.DetectChartKeyword(prompt); hint != "" {
		return hint
	}

	if fallback == "" {
		fallback = DefaultChart
	}
	if result == nil || result.RowCount == 0 || len(result.Columns) == 0 {
		return fallback
	}

	numericCols := 0
	dateCols := 0
	for _, col := range result.Columns {
		if isNumericColumn(col, result.Rows) {
			numericCols++
			continue
		}
		if col.IsTemporal() || isDateLikeName(col.Name) {
			dateCols++
		}
	}

	if dateCols > 0 && numericCols > 0 {
		return ChartLine
	}
	if numericCols > 0 && len(result.Columns) <= 3 {
		return ChartBar
	}
	return ChartTable
}

// isNumericColumn treats a column as numeric when its declared type is
// numeric, or when every sampled value is a number or a numeric-looking
// string. Gross columns arrive as text, so the value scan matters.
func isNumericColumn(col datasource.ColumnInfo, rows []map[string]any) bool {
	if col.IsNumeric() {
		return true
	}

	seen := false
	for _, row := range rows {
		v, ok := row[col.Name]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case int, int32, int64, float32, float64:
			seen = true
		case string:
			if !numericStringPattern.MatchString(strings.ReplaceAll(val, ",", "")) {
				return false
			}
			seen = true
		default:
			return false
		}
	}
	return seen
}

func isDateLikeName(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range dateNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

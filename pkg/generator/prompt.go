package generator

import (
	"fmt"
	"strings"

	"github.com/dealsight/dealsight-engine/pkg/analyzer"
	"github.com/dealsight/dealsight-engine/pkg/schema"
)

// BuildSystemPrompt assembles the system message for SQL generation: the
// schema catalog, the dealership business rules, and hints distilled from
// rule-based analysis of the question.
func BuildSystemPrompt(snap *schema.Snapshot, analysis *analyzer.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("You are a SQL Server query generator for a car dealership reporting database.\n")
	b.WriteString("Generate exactly one T-SQL SELECT statement answering the user's question.\n\n")

	b.WriteString("Database schema:\n")
	b.WriteString(snap.Describe())
	b.WriteString("\n")

	b.WriteString("Business rules:\n")
	b.WriteString("- Exclude deleted and carried-over deals: always add IsDeleted = 0 AND IsCarryOver = 0 when querying DailySales.\n")
	b.WriteString("- When counting deals, count only rows with IsCounted = 1.\n")
	b.WriteString("- FrontGross, BackGross and TotalGross are stored as text with thousands separators. Convert with TRY_CAST(REPLACE(col, ',', '') AS DECIMAL(18,2)) before any arithmetic or aggregation.\n")
	b.WriteString("- DATE_SOLD is a datetime; compare dates with CAST(DATE_SOLD AS date).\n")
	b.WriteString("- MONTH_REPORTED holds lowercase month names; compare with LOWER(MONTH_REPORTED).\n")
	b.WriteString("- A month named without a year means that month of the current year.\n")
	b.WriteString("- Cap result size with TOP when the question does not ask for a specific row.\n\n")

	if analysis != nil {
		writeHints(&b, analysis)
	}

	b.WriteString("Rules for output:\n")
	b.WriteString("- Return only the SQL statement, no explanation, no markdown fences.\n")
	b.WriteString("- Use only the tables and columns listed in the schema.\n")
	b.WriteString("- Never modify data; SELECT statements only.\n")

	return b.String()
}

func writeHints(b *strings.Builder, analysis *analyzer.AnalysisResult) {
	b.WriteString("Hints from question analysis:\n")
	b.WriteString(fmt.Sprintf("- Most likely table: %s\n", analysis.Table.Table))

	for _, agg := range analysis.Aggregates {
		b.WriteString(fmt.Sprintf("- Aggregate %s(%s)", agg.Function, agg.Column))
		if agg.Alias != "" {
			b.WriteString(fmt.Sprintf(" AS %s", agg.Alias))
		}
		b.WriteString("\n")
	}

	for _, f := range analysis.Filters {
		if f.Value == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("- Filter %s matching %q\n", f.Column, f.Value))
	}

	if analysis.TimeRange.IsSet() && analysis.TimeRange.Predicate != "" {
		b.WriteString(fmt.Sprintf("- Time filter: %s\n", analysis.TimeRange.Predicate))
	}

	if analysis.GroupBy != "" {
		b.WriteString(fmt.Sprintf("- Group results by %s\n", analysis.GroupBy))
	}

	b.WriteString("\n")
}

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_TotalGrossByDealershipForMonth(t *testing.T) {
	result := Analyze("Show total gross by dealership for October 2025")

	assert.Equal(t, "sales", result.Table.Key)
	assert.Equal(t, "DailySales", result.Table.Table)

	require.NotEmpty(t, result.Aggregates)
	sum := result.Aggregates[0]
	assert.Equal(t, "SUM", sum.Function)
	assert.Equal(t, "TotalGross", sum.Column)

	assert.Equal(t, "DealershipName", result.GroupBy)

	assert.Equal(t, TimeRangeSpecificMonthYear, result.TimeRange.Kind)
	assert.Equal(t, "october", result.TimeRange.Month)
	assert.Equal(t, "2025", result.TimeRange.Year)
}

func TestAnalyze_CountDealsThisMonth(t *testing.T) {
	result := Analyze("count deals this month")

	var counts []Aggregate
	for _, a := range result.Aggregates {
		if a.Function == "COUNT" {
			counts = append(counts, a)
		}
	}
	require.Len(t, counts, 1, "exactly one COUNT aggregate")
	assert.Equal(t, "TotalDeals", counts[0].Alias)
	assert.Equal(t, "ID", counts[0].Column)

	assert.Equal(t, TimeRangeRelativeMonth, result.TimeRange.Kind)
	assert.Equal(t, "this", result.TimeRange.Relative)
}

func TestAnalyze_CountSynthesizedFromBareToken(t *testing.T) {
	// "count" appears but no count synonym phrase resolves first; the
	// synthesized aggregate must still be a single COUNT(ID) AS TotalDeals.
	result := Analyze("deal count for last week")

	var counts int
	for _, a := range result.Aggregates {
		if a.Function == "COUNT" {
			counts++
			assert.Equal(t, "TotalDeals", a.Alias)
		}
	}
	assert.Equal(t, 1, counts)
}

func TestDetectTable(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"default to sales", "show me something interesting", "sales"},
		{"sales keywords", "total gross for deals sold in march", "sales"},
		{"inventory keywords", "vehicles in stock with aging over 60 days", "inventory"},
		{"warranty keywords", "warranty claims denied last month", "warranty"},
		{"plural synonym", "how many warranty claims by store", "warranty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.prompt)
			assert.Equal(t, tt.want, got.Table.Key)
		})
	}
}

func TestDetectTable_TieKeepsEarlierEntry(t *testing.T) {
	// A single inventory synonym (+0.3) scores below the sales baseline
	// (0.5), and equal scores keep the earlier entry because only a
	// strictly greater score replaces the leader.
	result := Analyze("anything about aging")
	assert.Equal(t, "sales", result.Table.Key)
	assert.InDelta(t, 0.5, result.Table.Confidence, 1e-9)
}

func TestDetectConcepts_AggregateNeverFilters(t *testing.T) {
	result := Analyze("total gross by dealership")

	for _, f := range result.Filters {
		assert.NotEqual(t, "gross", f.Concept, "aggregate concepts must not appear in filters")
	}
}

func TestDetectConcepts_FilterValueExtraction(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		concept string
		value   string
	}{
		{"quoted value", `deals for dealership "Route 9 Motors"`, "dealership", "Route 9 Motors"},
		{"next token after keyword", "deals for salesperson Smith", "salesperson", "smith"},
		{"stopwords skipped", "gross by the dealership for Hillcrest", "dealership", "hillcrest"},
		{"month concept literal", "gross for month of March", "month", "march"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze(tt.prompt)
			var found *Filter
			for i := range result.Filters {
				if result.Filters[i].Concept == tt.concept {
					found = &result.Filters[i]
					break
				}
			}
			require.NotNil(t, found, "concept %s not detected", tt.concept)
			assert.Equal(t, tt.value, found.Value)
		})
	}
}

func TestDetectConcepts_PatternBeatsSynonym(t *testing.T) {
	result := Analyze("show deals for vin 1HGCM82633A004352")

	var vin *Filter
	for i := range result.Filters {
		if result.Filters[i].Concept == "vin" {
			vin = &result.Filters[i]
		}
	}
	require.NotNil(t, vin)
	assert.Equal(t, "1HGCM82633A004352", vin.Value)
}

func TestDetectGroupBy(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"gross by dealership", "DealershipName"},
		{"deals by location", "DealershipName"},
		{"gross by month", "MONTH_REPORTED"},
		{"deals by quarter", "DATEPART(quarter, DATE_SOLD)"},
		{"deals by week", "DATEPART(week, DATE_SOLD)"},
		{"deals by day", "CAST(DATE_SOLD AS date)"},
		{"deals per salesperson", "SalesPerson"},
		{"just the totals", ""},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, detectGroupBy(tt.prompt))
		})
	}
}

func TestDetectChartKeyword(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"show gross as a bar chart", "bar"},
		{"monthly trend of deals", "line"},
		{"pie chart of makes", "pie"},
		{"give me a table format", "table"},
		{"show results in a grid", "table"},
		{"total gross by month", ""},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChartKeyword(tt.prompt))
		})
	}
}

func TestAnalyze_TableFormatHintIsNotAFilter(t *testing.T) {
	result := Analyze("count deals this month in table format")

	assert.True(t, result.TableFormat)
	for _, f := range result.Filters {
		assert.NotContains(t, f.Value, "table")
		assert.NotContains(t, f.Value, "format")
	}
}

func TestNextToken_SkipsPresentationVocabulary(t *testing.T) {
	assert.Empty(t, nextToken("sales this month in table format", "month"))
	assert.Empty(t, nextToken("gross by salesperson in a grid", "in"))
	assert.Equal(t, "october", nextToken("sales for the month of october", "month"))
}

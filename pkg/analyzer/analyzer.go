// Package analyzer performs rule-based analysis of natural-language business
// questions: target table, filters, aggregates, time range, grouping and
// presentation hints. The output steers prompt construction; it is advisory,
// never authoritative, and is recomputed fresh per request.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"
)

// Confidence weights for table detection. The relative weighting and the
// strictly-greater-than comparison are load-bearing: which table wins depends
// on exact comparison outcomes, including first-wins tie-breaking.
const (
	salesBaseline = 0.5
	synonymWeight = 0.3
	patternWeight = 0.5
)

// TableDetection identifies the reporting table a prompt is about.
type TableDetection struct {
	Key        string
	Table      string
	Confidence float64
}

// Filter is a detected equality-style constraint on one column.
type Filter struct {
	Column  string
	Concept string
	Value   string
}

// Aggregate is a detected aggregate on one column with its output alias.
type Aggregate struct {
	Column   string
	Function string
	Alias    string
}

// AnalysisResult is the full outcome of analyzing one prompt.
type AnalysisResult struct {
	Table       TableDetection
	Filters     []Filter
	Aggregates  []Aggregate
	TimeRange   TimeRange
	GroupBy     string
	ChartHint   string
	TableFormat bool
}

var (
	yearPattern    = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	monthPattern   = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	quotedPattern  = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	tokenSeparator = regexp.MustCompile(`[\s,.!?]+`)
)

// stopwords are skipped when taking the token that follows a matched keyword.
var stopwords = map[string]bool{
	"for": true, "in": true, "by": true, "with": true, "of": true,
	"and": true, "the": true, "a": true, "an": true,
}

// presentationWords is the chart/format vocabulary. These are display hints,
// never data values, so value extraction skips them.
var presentationWords = map[string]bool{
	"bar": true, "line": true, "pie": true, "chart": true, "graph": true,
	"trend": true, "table": true, "format": true, "tabular": true,
	"grid": true, "spreadsheet": true,
}

// Analyze runs all detection passes over the prompt.
func Analyze(prompt string) AnalysisResult {
	lower := strings.ToLower(prompt)

	result := AnalysisResult{
		Table:       detectTable(lower),
		TimeRange:   detectTimeRange(prompt),
		GroupBy:     detectGroupBy(prompt),
		ChartHint:   DetectChartKeyword(prompt),
		TableFormat: tableFormatPattern.MatchString(prompt),
	}
	result.Filters, result.Aggregates = detectConcepts(prompt, lower)

	return result
}

// detectTable scores every table mapping and picks the highest. The sales
// table starts with a baseline so ambiguous prompts default to it; ties keep
// the earlier-evaluated entry because only a strictly greater score wins.
func detectTable(lower string) TableDetection {
	best := TableDetection{}
	for i, m := range tableMappings {
		score := 0.0
		if m.Key == "sales" {
			score = salesBaseline
		}
		for _, syn := range m.Synonyms {
			if containsSynonym(lower, syn) {
				score += synonymWeight
			}
		}
		for _, p := range m.Patterns {
			if p.MatchString(lower) {
				score += patternWeight
			}
		}
		if i == 0 || score > best.Confidence {
			best = TableDetection{Key: m.Key, Table: m.Table, Confidence: score}
		}
	}
	return best
}

// detectConcepts walks the column mappings in order. Detection patterns are
// checked first; when none match, synonyms are scanned and the first hit for
// a concept stops the scan for that concept. Aggregate concepts contribute
// aggregate records and never filters.
func detectConcepts(prompt, lower string) ([]Filter, []Aggregate) {
	var filters []Filter
	var aggregates []Aggregate

	for _, m := range columnMappings {
		matched, captured, ok := matchConcept(prompt, lower, m)
		if !ok {
			continue
		}

		if m.Function != "" {
			aggregates = append(aggregates, Aggregate{
				Column:   m.Column,
				Function: m.Function,
				Alias:    m.Alias,
			})
			continue
		}

		value := captured
		// The year and month concepts normalize through extractValue even
		// when a pattern captured text, so values come out lowercased and
		// consistent with the time-range literals.
		if value == "" || m.Key == "year" || m.Key == "month" {
			value = extractValue(prompt, lower, matched, m.Key)
		}
		filters = append(filters, Filter{Column: m.Column, Concept: m.Key, Value: value})
	}

	// A bare "count" anywhere in the prompt implies a deal count even when no
	// count synonym resolved to an aggregate.
	if strings.Contains(lower, "count") && !hasCountAggregate(aggregates) {
		aggregates = append(aggregates, Aggregate{Column: "ID", Function: "COUNT", Alias: "TotalDeals"})
	}

	return filters, aggregates
}

// matchConcept returns the matched text for a concept, plus any value
// captured by a detection pattern.
func matchConcept(prompt, lower string, m ColumnMapping) (matched, captured string, ok bool) {
	for _, p := range m.Patterns {
		sub := p.FindStringSubmatch(prompt)
		if sub == nil {
			continue
		}
		for _, group := range sub[1:] {
			if group != "" {
				captured = group
				break
			}
		}
		return sub[0], captured, true
	}
	for _, syn := range m.Synonyms {
		if containsSynonym(lower, syn) {
			return syn, "", true
		}
	}
	return "", "", false
}

func hasCountAggregate(aggregates []Aggregate) bool {
	for _, a := range aggregates {
		if a.Function == "COUNT" {
			return true
		}
	}
	return false
}

// containsSynonym matches a synonym phrase as a case-insensitive substring,
// tolerating the plural form of its final word.
func containsSynonym(lower, syn string) bool {
	if strings.Contains(lower, syn) {
		return true
	}
	if plural := inflection.Plural(syn); plural != syn && strings.Contains(lower, plural) {
		return true
	}
	return false
}

// extractValue pulls the value for a filter concept out of the prompt:
// an explicit year or month in the matched text, else a quoted substring,
// else the next non-stopword token after the keyword occurrence. The year
// and month concepts always scan the whole prompt for their literal.
func extractValue(prompt, lower, matched, conceptKey string) string {
	switch conceptKey {
	case "year":
		if y := yearPattern.FindString(prompt); y != "" {
			return y
		}
	case "month":
		if m := monthPattern.FindString(prompt); m != "" {
			return strings.ToLower(m)
		}
	}

	if y := yearPattern.FindString(matched); y != "" {
		return y
	}
	if m := monthPattern.FindString(matched); m != "" {
		return strings.ToLower(m)
	}

	if sub := quotedPattern.FindStringSubmatch(prompt); sub != nil {
		if sub[1] != "" {
			return sub[1]
		}
		return sub[2]
	}

	return nextToken(lower, strings.ToLower(matched))
}

// nextToken returns the first token after the keyword occurrence that is
// neither a stopword nor part of the presentation vocabulary.
func nextToken(lower, keyword string) string {
	idx := strings.Index(lower, keyword)
	if idx < 0 {
		return ""
	}
	rest := lower[idx+len(keyword):]
	for _, tok := range tokenSeparator.Split(rest, -1) {
		if tok == "" || stopwords[tok] || presentationWords[tok] {
			continue
		}
		return tok
	}
	return ""
}

// detectGroupBy returns the grouping expression for the first matching
// grouping phrase, or empty when the prompt asks for no grouping.
func detectGroupBy(prompt string) string {
	for _, rule := range groupByRules {
		if rule.pattern.MatchString(prompt) {
			return rule.column
		}
	}
	return ""
}

// DetectChartKeyword returns the chart kind explicitly requested in the
// prompt, or empty when none is named. Exported for the visualization
// heuristic, where an explicit request always wins.
func DetectChartKeyword(prompt string) string {
	for _, rule := range chartRules {
		if rule.pattern.MatchString(prompt) {
			return rule.kind
		}
	}
	return ""
}

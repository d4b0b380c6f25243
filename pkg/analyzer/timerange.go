package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeRangeKind labels the mutually exclusive time-range variants.
type TimeRangeKind string

const (
	TimeRangeNone               TimeRangeKind = "none"
	TimeRangeSpecificMonthYear  TimeRangeKind = "specific_month_year"
	TimeRangeRelativeMonth      TimeRangeKind = "relative_month"
	TimeRangeSpecificYear       TimeRangeKind = "specific_year"
	TimeRangeQuarterYear        TimeRangeKind = "quarter_year"
	TimeRangeSpecificDate       TimeRangeKind = "specific_date"
	TimeRangeYTD                TimeRangeKind = "ytd"
	TimeRangeMTD                TimeRangeKind = "mtd"
	TimeRangeRelativeYear       TimeRangeKind = "relative_year"
	TimeRangeRelativeQuarter    TimeRangeKind = "relative_quarter"
	TimeRangeToday              TimeRangeKind = "today"
	TimeRangeYesterday          TimeRangeKind = "yesterday"
	TimeRangeDayBeforeYesterday TimeRangeKind = "day_before_yesterday"
	TimeRangeThisWeek           TimeRangeKind = "this_week"
	TimeRangeLastWeek           TimeRangeKind = "last_week"
	TimeRangeLast7Days          TimeRangeKind = "last_7_days"
	TimeRangeLast30Days         TimeRangeKind = "last_30_days"
	TimeRangeCustomRange        TimeRangeKind = "custom_range"
)

// TimeRange is the tagged time-range variant. It carries the literal matched
// values plus a ready-to-embed boolean SQL predicate over the reporting date
// columns. Predicate is empty only for the none variant.
type TimeRange struct {
	Kind      TimeRangeKind
	Year      string
	Month     string
	Date      string
	Quarter   int
	Relative  string // "this" or "last" for the relative variants
	Start     string
	End       string
	Predicate string
}

// IsSet reports whether a time range was detected.
func (t TimeRange) IsSet() bool {
	return t.Kind != TimeRangeNone && t.Kind != ""
}

// saleDate is the date expression every predicate filters on.
const saleDate = "CAST(DATE_SOLD AS date)"

type timeRangeRule struct {
	pattern *regexp.Regexp
	build   func(sub []string) TimeRange
}

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december`

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// timeRangeRules is evaluated in order and the first matching rule wins.
// Literal date forms come first, the bare year pattern last, so that
// "October 5, 2025" never degrades into a plain 2025 match.
var timeRangeRules = []timeRangeRule{
	{
		pattern: regexp.MustCompile(`(?i)\b(?:from|between)\s+(\d{4}-\d{2}-\d{2})\s+(?:to|and)\s+(\d{4}-\d{2}-\d{2})\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:  TimeRangeCustomRange,
				Start: sub[1],
				End:   sub[2],
				Predicate: fmt.Sprintf("%s >= '%s' AND %s <= '%s'",
					saleDate, sub[1], saleDate, sub[2]),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+((?:19|20)\d{2})\b`),
		build: func(sub []string) TimeRange {
			month := strings.ToLower(sub[1])
			day, _ := strconv.Atoi(sub[2])
			date := fmt.Sprintf("%s-%02d-%02d", sub[3], monthNumbers[month], day)
			return TimeRange{
				Kind:      TimeRangeSpecificDate,
				Year:      sub[3],
				Month:     month,
				Date:      date,
				Predicate: fmt.Sprintf("%s = '%s'", saleDate, date),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:      TimeRangeSpecificDate,
				Date:      sub[1],
				Predicate: fmt.Sprintf("%s = '%s'", saleDate, sub[1]),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\bday\s+before\s+yesterday\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:      TimeRangeDayBeforeYesterday,
				Predicate: fmt.Sprintf("%s = DATEADD(day, -2, CAST(GETDATE() AS date))", saleDate),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\byesterday\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:      TimeRangeYesterday,
				Predicate: fmt.Sprintf("%s = DATEADD(day, -1, CAST(GETDATE() AS date))", saleDate),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\btoday\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:      TimeRangeToday,
				Predicate: fmt.Sprintf("%s = CAST(GETDATE() AS date)", saleDate),
			}
		},
	},
	{
		// The week starts on the engine's first weekday (Sunday under the
		// default DATEFIRST), i.e. the most recent week boundary.
		pattern: regexp.MustCompile(`(?i)\bthis\s+week\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:     TimeRangeThisWeek,
				Relative: "this",
				Predicate: fmt.Sprintf(
					"%s >= DATEADD(day, 1 - DATEPART(weekday, GETDATE()), CAST(GETDATE() AS date)) AND %s <= CAST(GETDATE() AS date)",
					saleDate, saleDate),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\blast\s+week\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:     TimeRangeLastWeek,
				Relative: "last",
				Predicate: fmt.Sprintf(
					"%s >= DATEADD(day, 1 - DATEPART(weekday, GETDATE()) - 7, CAST(GETDATE() AS date)) AND %s < DATEADD(day, 1 - DATEPART(weekday, GETDATE()), CAST(GETDATE() AS date))",
					saleDate, saleDate),
			}
		},
	},
	{
		// Half-open interval [now - N days, now).
		pattern: regexp.MustCompile(`(?i)\blast\s+(\d+)\s+days\b`),
		build: func(sub []string) TimeRange {
			n, _ := strconv.Atoi(sub[1])
			kind := TimeRangeCustomRange
			switch n {
			case 7:
				kind = TimeRangeLast7Days
			case 30:
				kind = TimeRangeLast30Days
			}
			return TimeRange{
				Kind: kind,
				Predicate: fmt.Sprintf(
					"%s >= DATEADD(day, -%d, CAST(GETDATE() AS date)) AND %s < CAST(GETDATE() AS date)",
					saleDate, n, saleDate),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(?:mtd|month\s+to\s+date)\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind: TimeRangeMTD,
				Predicate: fmt.Sprintf(
					"DATEPART(year, DATE_SOLD) = DATEPART(year, GETDATE()) AND DATEPART(month, DATE_SOLD) = DATEPART(month, GETDATE()) AND %s <= CAST(GETDATE() AS date)",
					saleDate),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(?:ytd|year\s+to\s+date)\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind: TimeRangeYTD,
				Predicate: fmt.Sprintf(
					"DATEPART(year, DATE_SOLD) = DATEPART(year, GETDATE()) AND %s <= CAST(GETDATE() AS date)",
					saleDate),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(this|last|current|previous)\s+month\b`),
		build: func(sub []string) TimeRange {
			rel := normalizeRelative(sub[1])
			anchor := "GETDATE()"
			if rel == "last" {
				anchor = "DATEADD(month, -1, GETDATE())"
			}
			return TimeRange{
				Kind:     TimeRangeRelativeMonth,
				Relative: rel,
				Predicate: fmt.Sprintf(
					"DATEPART(year, DATE_SOLD) = DATEPART(year, %s) AND DATEPART(month, DATE_SOLD) = DATEPART(month, %s)",
					anchor, anchor),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(this|last|current|previous)\s+quarter\b`),
		build: func(sub []string) TimeRange {
			rel := normalizeRelative(sub[1])
			anchor := "GETDATE()"
			if rel == "last" {
				anchor = "DATEADD(quarter, -1, GETDATE())"
			}
			return TimeRange{
				Kind:     TimeRangeRelativeQuarter,
				Relative: rel,
				Predicate: fmt.Sprintf(
					"DATEPART(year, DATE_SOLD) = DATEPART(year, %s) AND DATEPART(quarter, DATE_SOLD) = DATEPART(quarter, %s)",
					anchor, anchor),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(this|last|current|previous)\s+year\b`),
		build: func(sub []string) TimeRange {
			rel := normalizeRelative(sub[1])
			anchor := "GETDATE()"
			if rel == "last" {
				anchor = "DATEADD(year, -1, GETDATE())"
			}
			return TimeRange{
				Kind:     TimeRangeRelativeYear,
				Relative: rel,
				Predicate: fmt.Sprintf(
					"DATEPART(year, DATE_SOLD) = DATEPART(year, %s)", anchor),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\bq([1-4])[\s,]*((?:19|20)\d{2})\b`),
		build: func(sub []string) TimeRange {
			q, _ := strconv.Atoi(sub[1])
			return TimeRange{
				Kind:    TimeRangeQuarterYear,
				Quarter: q,
				Year:    sub[2],
				Predicate: fmt.Sprintf(
					"DATEPART(quarter, DATE_SOLD) = %d AND DATEPART(year, DATE_SOLD) = %s",
					q, sub[2]),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+((?:19|20)\d{2})\b`),
		build: func(sub []string) TimeRange {
			month := strings.ToLower(sub[1])
			return TimeRange{
				Kind:  TimeRangeSpecificMonthYear,
				Month: month,
				Year:  sub[2],
				Predicate: fmt.Sprintf(
					"LOWER(MONTH_REPORTED) = '%s' AND DATEPART(year, DATE_SOLD) = %s",
					month, sub[2]),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`\b((?:19|20)\d{2})\b`),
		build: func(sub []string) TimeRange {
			return TimeRange{
				Kind:      TimeRangeSpecificYear,
				Year:      sub[1],
				Predicate: fmt.Sprintf("DATEPART(year, DATE_SOLD) = %s", sub[1]),
			}
		},
	},
}

func normalizeRelative(word string) string {
	switch strings.ToLower(word) {
	case "last", "previous":
		return "last"
	default:
		return "this"
	}
}

// detectTimeRange evaluates the ordered rule list and returns the first
// matching variant, or the none variant.
func detectTimeRange(prompt string) TimeRange {
	for _, rule := range timeRangeRules {
		if sub := rule.pattern.FindStringSubmatch(prompt); sub != nil {
			return rule.build(sub)
		}
	}
	return TimeRange{Kind: TimeRangeNone}
}

package analyzer

import "regexp"

// TableMapping binds a business concept to one physical reporting table.
// Synonyms are matched as case-insensitive substrings, patterns as regexes;
// both feed the confidence score in detectTable.
type TableMapping struct {
	Key         string
	Table       string
	Synonyms    []string
	Patterns    []*regexp.Regexp
	Description string
}

// ColumnMapping binds a business concept to one physical column expression.
// A non-empty Function marks the concept as an aggregate; it then never
// produces a filter. Patterns are checked before synonyms.
type ColumnMapping struct {
	Key      string
	Column   string
	Function string
	Alias    string
	Synonyms []string
	Patterns []*regexp.Regexp
}

// tableMappings is evaluated in order; earlier entries win score ties.
// The sales table is first and carries the default confidence baseline.
var tableMappings = []TableMapping{
	{
		Key:      "sales",
		Table:    "DailySales",
		Synonyms: []string{"sale", "deal", "sold", "gross", "revenue", "front end", "back end"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bhow many\s+(deals?|sales?|units?)\b`),
			regexp.MustCompile(`(?i)\b(total|front|back)\s+gross\b`),
		},
		Description: "One row per retail deal reported by a dealership.",
	},
	{
		Key:      "inventory",
		Table:    "VehicleInventory",
		Synonyms: []string{"inventory", "in stock", "on the lot", "aging", "days in stock", "list price"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(vehicles?|cars?|units?)\s+(in|on)\s+(stock|the lot)\b`),
			regexp.MustCompile(`(?i)\bstock(ed)?\s+(vehicles?|cars?|units?)\b`),
		},
		Description: "Current vehicle inventory across dealerships.",
	},
	{
		Key:      "warranty",
		Table:    "WarrantyClaims",
		Synonyms: []string{"warranty", "claim", "repair order"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bwarranty\s+(claims?|work|repairs?)\b`),
		},
		Description: "Warranty claims with labor and parts amounts.",
	},
}

// columnMappings is evaluated in order. Aggregate concepts precede filter
// concepts so that phrases like "total gross" resolve before the bare
// "gross" table synonym would suggest a filter.
var columnMappings = []ColumnMapping{
	{
		Key:      "gross",
		Column:   "TotalGross",
		Function: "SUM",
		Alias:    "TotalGross",
		Synonyms: []string{"total gross", "gross", "total cost", "revenue"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(sum|total)\s+(of\s+)?gross\b`),
		},
	},
	{
		Key:      "front_gross",
		Column:   "FrontGross",
		Function: "SUM",
		Alias:    "FrontGross",
		Synonyms: []string{"front gross", "front end gross"},
	},
	{
		Key:      "back_gross",
		Column:   "BackGross",
		Function: "SUM",
		Alias:    "BackGross",
		Synonyms: []string{"back gross", "back end gross", "f&i gross"},
	},
	{
		Key:      "count",
		Column:   "ID",
		Function: "COUNT",
		Alias:    "TotalDeals",
		Synonyms: []string{"count", "how many", "number of"},
	},
	{
		Key:      "avg_days_in_stock",
		Column:   "DaysInStock",
		Function: "AVG",
		Alias:    "AvgDaysInStock",
		Synonyms: []string{"average days in stock", "average age"},
	},
	{
		Key:      "dealership",
		Column:   "DealershipName",
		Synonyms: []string{"dealership", "dealer", "store", "location"},
	},
	{
		Key:      "salesperson",
		Column:   "SalesPerson",
		Synonyms: []string{"salesperson", "sales person", "sales rep", "salesman"},
	},
	{
		Key:      "customer",
		Column:   "CustomerName",
		Synonyms: []string{"customer", "buyer"},
	},
	{
		Key:      "vin",
		Column:   "VIN",
		Synonyms: []string{"vin"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bvin\s+([A-HJ-NPR-Z0-9]{11,17})\b`),
		},
	},
	{
		Key:      "make",
		Column:   "Make",
		Synonyms: []string{"make"},
	},
	{
		Key:      "model",
		Column:   "Model",
		Synonyms: []string{"model"},
	},
	{
		Key:    "new_used",
		Column: "NewUsed",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(new|used)\s+(cars?|vehicles?|units?|deals?)\b`),
		},
	},
	{
		Key:      "year",
		Column:   "DATEPART(year, DATE_SOLD)",
		Synonyms: []string{"year"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:in|for|during)\s+((?:19|20)\d{2})\b`),
		},
	},
	{
		Key:      "month",
		Column:   "MONTH_REPORTED",
		Synonyms: []string{"month"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`),
		},
	},
	{
		Key:      "claim_status",
		Column:   "Status",
		Synonyms: []string{"claim status", "open claims", "denied claims"},
	},
}

// groupByRule maps a grouping phrase to a physical grouping expression.
type groupByRule struct {
	pattern *regexp.Regexp
	column  string
}

// groupByRules is evaluated in order; the first match wins. More specific
// phrases come before the generic date groupings.
var groupByRules = []groupByRule{
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+(?:dealership|dealer|store|location)\b`), "DealershipName"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+(?:salesperson|sales person|sales rep|salesman)\b`), "SalesPerson"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+make\b`), "Make"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+model\b`), "Model"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+month\b`), "MONTH_REPORTED"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+quarter\b`), "DATEPART(quarter, DATE_SOLD)"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+week\b`), "DATEPART(week, DATE_SOLD)"},
	{regexp.MustCompile(`(?i)\b(?:by|per)\s+day\b`), "CAST(DATE_SOLD AS date)"},
}

// chartRule maps an explicit presentation phrase to a chart kind.
type chartRule struct {
	pattern *regexp.Regexp
	kind    string
}

// chartRules is evaluated in order; the first match wins. An explicit
// request always beats the shape heuristic downstream.
var chartRules = []chartRule{
	{regexp.MustCompile(`(?i)\bbar\s*(chart|graph)?\b`), "bar"},
	{regexp.MustCompile(`(?i)\b(line\s*(chart|graph)?|trend)\b`), "line"},
	{regexp.MustCompile(`(?i)\bpie\s*(chart|graph)?\b`), "pie"},
	{regexp.MustCompile(`(?i)\b(table\s+format|tabular|grid|spreadsheet)\b`), "table"},
}

// tableFormatPattern flags an explicit tabular-presentation request. This is
// a display hint, never a data filter.
var tableFormatPattern = regexp.MustCompile(`(?i)\b(table\s+format|tabular|grid|spreadsheet)\b`)

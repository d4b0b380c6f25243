package sqlsafe

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identifierPattern    = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)
	stringLiteralPattern = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// sqlAllowList holds SQL keywords and functions that are never schema
// identifiers. It deliberately includes the date functions the business
// rules instruct the model to use (DATEPART, DATEADD, DATENAME, GETDATE and
// friends); a conformance check that rejects rule-compliant SQL is worse
// than none.
var sqlAllowList = map[string]bool{
	// Keywords
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "in": true, "is": true, "null": true, "as": true,
	"on": true, "join": true, "inner": true, "left": true, "right": true,
	"outer": true, "full": true, "cross": true, "group": true, "by": true,
	"order": true, "having": true, "asc": true, "desc": true, "top": true,
	"distinct": true, "with": true, "union": true, "all": true, "case": true,
	"when": true, "then": true, "else": true, "end": true, "between": true,
	"like": true, "exists": true, "over": true, "partition": true,
	"offset": true, "fetch": true, "next": true, "rows": true, "only": true,
	"percent": true, "ties": true, "apply": true, "pivot": true,

	// Aggregate and scalar functions
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"cast": true, "convert": true, "try_cast": true, "try_convert": true,
	"coalesce": true, "isnull": true, "nullif": true, "iif": true,
	"replace": true, "upper": true, "lower": true, "ltrim": true,
	"rtrim": true, "trim": true, "len": true,
	"substring": true, "concat": true, "format": true, "round": true,
	"abs": true, "floor": true, "ceiling": true, "row_number": true,
	"rank": true, "dense_rank": true,

	// Date functions the generation rules require
	"datepart": true, "dateadd": true, "datename": true, "datediff": true,
	"getdate": true, "sysdatetime": true, "eomonth": true, "datefromparts": true,
	"year": true, "month": true, "day": true, "quarter": true, "week": true,
	"weekday": true, "date": true,

	// Type names appearing in casts
	"int": true, "bigint": true, "decimal": true, "numeric": true,
	"float": true, "varchar": true, "nvarchar": true, "datetime": true,
	"bit": true, "money": true,

	// Aliases the generation rules produce
	"totaldeals": true, "totalgross": true, "frontgross": true,
	"backgross": true, "avgdaysinstock": true, "dealcount": true,
}

// checkSchemaConformance tokenizes candidate identifiers and verifies every
// token that is not a known SQL keyword or function resolves to a table or
// column in the schema. String literal contents are excluded first so values
// like 'october' are never treated as identifiers.
func checkSchemaConformance(cleaned string, schema SchemaChecker) error {
	withoutLiterals := stringLiteralPattern.ReplaceAllString(cleaned, "''")

	for _, token := range identifierPattern.FindAllString(withoutLiterals, -1) {
		lower := strings.ToLower(token)
		if sqlAllowList[lower] {
			continue
		}
		// Single-letter tokens are table aliases.
		if len(token) == 1 {
			continue
		}
		if !schema.IsKnownIdentifier(token) {
			return fmt.Errorf("%w: %s", ErrUnknownIdentifier, token)
		}
	}
	return nil
}

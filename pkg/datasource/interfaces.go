// Package datasource defines the query-execution contract the reporting
// engine runs validated SQL through.
package datasource

import "context"

// MaxQueryLimit is the hard cap on rows returned by Query.
// This protects against unbounded queries that could crash the server.
const MaxQueryLimit = 1000

// QueryExecutor executes validated SELECT statements against the
// dealership database. Every query is wrapped with a dialect-specific
// row limit before execution:
//   - limit <= 0: uses MaxQueryLimit
//   - limit > MaxQueryLimit: capped to MaxQueryLimit
//   - otherwise: uses the specified limit
//
// Implementations own their connection pool and must be closed when done.
type QueryExecutor interface {
	Query(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)

	// Ping verifies the datasource is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// ColumnInfo describes one result column.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // Normalized type name (e.g. "VARCHAR", "NUMERIC")
}

// IsNumeric reports whether the column's normalized type is numeric.
func (c ColumnInfo) IsNumeric() bool {
	switch c.Type {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT",
		"NUMERIC", "MONEY", "DOUBLE PRECISION", "REAL":
		return true
	}
	return false
}

// IsTemporal reports whether the column's normalized type is a date or time.
func (c ColumnInfo) IsTemporal() bool {
	switch c.Type {
	case "DATE", "TIME", "TIMESTAMP", "TIMESTAMP WITH TIME ZONE":
		return true
	}
	return false
}

// QueryExecutionResult holds the results from executing a query.
type QueryExecutionResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

package schema

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InformationSchemaRefresher fetches the reporting schema from
// INFORMATION_SCHEMA.COLUMNS on the live SQL Server database. Only the three
// reporting tables are fetched; anything else in the catalog is irrelevant to
// generation and would only dilute the prompt.
type InformationSchemaRefresher struct {
	db      *sql.DB
	catalog string
}

// NewInformationSchemaRefresher creates a refresher bound to a catalog
// (database) name.
func NewInformationSchemaRefresher(db *sql.DB, catalog string) *InformationSchemaRefresher {
	return &InformationSchemaRefresher{db: db, catalog: catalog}
}

// Fetch implements Refresher.
func (r *InformationSchemaRefresher) Fetch(ctx context.Context) (*Snapshot, error) {
	query := `
	SET NOCOUNT ON;
	SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_CATALOG = @catalog
	  AND TABLE_NAME IN ('DailySales', 'VehicleInventory', 'WarrantyClaims')
	ORDER BY TABLE_NAME, ORDINAL_POSITION
	`

	rows, err := r.db.QueryContext(ctx, query, sql.Named("catalog", r.catalog))
	if err != nil {
		return nil, fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{FetchedAt: time.Now()}
	var current *Table
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		if current == nil || current.Name != tableName {
			snap.Tables = append(snap.Tables, Table{Name: tableName})
			current = &snap.Tables[len(snap.Tables)-1]
		}
		current.Columns = append(current.Columns, Column{Name: columnName, DataType: dataType})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}

	return snap, nil
}

// Ensure InformationSchemaRefresher implements Refresher at compile time.
var _ Refresher = (*InformationSchemaRefresher)(nil)

// Package schema maintains the registry of reporting tables used for prompt
// construction and generated-SQL validation.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// Column describes one column of a reporting table.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// Table describes one reporting table with its ordered columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Snapshot is an immutable view of the reporting schema at a point in time.
type Snapshot struct {
	Tables    []Table   `json:"tables"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Describe renders the compact per-table column listing embedded in the
// model's system prompt.
func (s *Snapshot) Describe() string {
	var b strings.Builder
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "Table %s:\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  %s %s\n", c.Name, c.DataType)
		}
	}
	return b.String()
}

// IsKnownIdentifier reports whether name matches a table or column of the
// snapshot, case-insensitively.
func (s *Snapshot) IsKnownIdentifier(name string) bool {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return true
		}
		for _, c := range t.Columns {
			if strings.EqualFold(c.Name, name) {
				return true
			}
		}
	}
	return false
}

// TableNames returns the table names of the snapshot in order.
func (s *Snapshot) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Static returns the compiled-in schema of the three reporting tables.
// It is the refresh-free default and the permanent fallback when a live
// refresh fails.
func Static() *Snapshot {
	return &Snapshot{
		FetchedAt: time.Now(),
		Tables: []Table{
			{
				Name: "DailySales",
				Columns: []Column{
					{Name: "ID", DataType: "int"},
					{Name: "DealNo", DataType: "varchar"},
					{Name: "DATE_SOLD", DataType: "datetime"},
					{Name: "MONTH_REPORTED", DataType: "varchar"},
					{Name: "DealershipName", DataType: "varchar"},
					{Name: "SalesPerson", DataType: "varchar"},
					{Name: "CustomerName", DataType: "varchar"},
					{Name: "VIN", DataType: "varchar"},
					{Name: "StockNo", DataType: "varchar"},
					{Name: "NewUsed", DataType: "varchar"},
					{Name: "FrontGross", DataType: "varchar"},
					{Name: "BackGross", DataType: "varchar"},
					{Name: "TotalGross", DataType: "varchar"},
					{Name: "IsDeleted", DataType: "bit"},
					{Name: "IsCarryOver", DataType: "bit"},
					{Name: "IsCounted", DataType: "bit"},
				},
			},
			{
				Name: "VehicleInventory",
				Columns: []Column{
					{Name: "ID", DataType: "int"},
					{Name: "VIN", DataType: "varchar"},
					{Name: "StockNo", DataType: "varchar"},
					{Name: "Make", DataType: "varchar"},
					{Name: "Model", DataType: "varchar"},
					{Name: "ModelYear", DataType: "int"},
					{Name: "Color", DataType: "varchar"},
					{Name: "DealershipName", DataType: "varchar"},
					{Name: "DaysInStock", DataType: "int"},
					{Name: "ListPrice", DataType: "decimal"},
					{Name: "Cost", DataType: "decimal"},
					{Name: "Status", DataType: "varchar"},
					{Name: "ReceivedDate", DataType: "datetime"},
				},
			},
			{
				Name: "WarrantyClaims",
				Columns: []Column{
					{Name: "ID", DataType: "int"},
					{Name: "ClaimNo", DataType: "varchar"},
					{Name: "VIN", DataType: "varchar"},
					{Name: "DealershipName", DataType: "varchar"},
					{Name: "ClaimDate", DataType: "datetime"},
					{Name: "RepairOrderNo", DataType: "varchar"},
					{Name: "LaborAmount", DataType: "decimal"},
					{Name: "PartsAmount", DataType: "decimal"},
					{Name: "TotalAmount", DataType: "decimal"},
					{Name: "Status", DataType: "varchar"},
				},
			},
		},
	}
}

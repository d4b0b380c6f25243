package mssql

import "testing"

func TestMapSQLServerType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INT", "INTEGER"},
		{"int", "INTEGER"},
		{"BIGINT", "BIGINT"},
		{"DECIMAL", "NUMERIC"},
		{"NUMERIC", "NUMERIC"},
		{"MONEY", "MONEY"},
		{"FLOAT", "DOUBLE PRECISION"},
		{"NVARCHAR", "VARCHAR"},
		{"VARCHAR", "VARCHAR"},
		{"NTEXT", "TEXT"},
		{"DATETIME", "TIMESTAMP"},
		{"DATETIME2", "TIMESTAMP"},
		{"DATETIMEOFFSET", "TIMESTAMP WITH TIME ZONE"},
		{"BIT", "BOOLEAN"},
		{"UNIQUEIDENTIFIER", "UUID"},
		{"GEOGRAPHY", "GEOGRAPHY"},
	}

	for _, tt := range tests {
		if got := mapSQLServerType(tt.in); got != tt.want {
			t.Errorf("mapSQLServerType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsStringType(t *testing.T) {
	if !isStringType("nvarchar") {
		t.Error("nvarchar should classify as string")
	}
	if isStringType("INT") {
		t.Error("INT should not classify as string")
	}
}

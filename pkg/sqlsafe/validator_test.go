package sqlsafe

import (
	"errors"
	"testing"
)

func TestCheck_ValidStatements(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select",
			input:    "SELECT * FROM DailySales",
			expected: "SELECT * FROM DailySales",
		},
		{
			name:     "trailing semicolon stripped",
			input:    "SELECT * FROM DailySales;",
			expected: "SELECT * FROM DailySales",
		},
		{
			name:     "leading whitespace trimmed",
			input:    "  SELECT ID FROM DailySales  ",
			expected: "SELECT ID FROM DailySales",
		},
		{
			name:     "cte allowed",
			input:    "WITH g AS (SELECT TotalGross FROM DailySales) SELECT * FROM g",
			expected: "WITH g AS (SELECT TotalGross FROM DailySales) SELECT * FROM g",
		},
		{
			name:     "fenced sql block",
			input:    "```sql\nSELECT ID FROM DailySales\n```",
			expected: "SELECT ID FROM DailySales",
		},
		{
			name:     "fenced block without language tag",
			input:    "```\nSELECT ID FROM DailySales;\n```",
			expected: "SELECT ID FROM DailySales",
		},
		{
			name:     "lowercase select",
			input:    "select id from DailySales",
			expected: "select id from DailySales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Check(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCheck_Rejections(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyStatement,
		},
		{
			name:    "whitespace only",
			input:   "   \n\t",
			wantErr: ErrEmptyStatement,
		},
		{
			name:    "two statements",
			input:   "SELECT 1; SELECT 2",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "two statements with trailing terminator",
			input:   "SELECT 1; SELECT 2;",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "mid-statement semicolon",
			input:   "SELECT 1; DROP TABLE Users",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "does not start with select or with",
			input:   "DELETE FROM DailySales",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "explain prefix rejected",
			input:   "EXPLAIN SELECT * FROM DailySales",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "embedded drop keyword",
			input:   "SELECT * FROM DailySales WHERE DROP = 1",
			wantErr: ErrForbiddenKeyword,
		},
		{
			name:    "embedded truncate keyword uppercase",
			input:   "SELECT TRUNCATE FROM DailySales",
			wantErr: ErrForbiddenKeyword,
		},
		{
			name:    "mixed case forbidden keyword",
			input:   "SELECT * FROM DailySales WHERE x = MeRgE",
			wantErr: ErrForbiddenKeyword,
		},
		{
			name:    "exec keyword",
			input:   "SELECT * FROM DailySales exec sp_who",
			wantErr: ErrForbiddenKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Check(tt.input)
			if err == nil {
				t.Fatal("expected rejection, got nil error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheck_KeywordInsideIdentifierAllowed(t *testing.T) {
	v := NewValidator(nil)

	// Forbidden keywords match whole words only; substrings of identifiers
	// must pass.
	got, err := v.Check("SELECT updated_at FROM DailySales")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SELECT updated_at FROM DailySales" {
		t.Errorf("unexpected rewrite: %q", got)
	}
}

func TestValidateAndClean_FallbackOnRejection(t *testing.T) {
	v := NewValidator(nil)

	tests := []string{
		"",
		"SELECT * FROM Users; DROP TABLE Users; --",
		"DROP TABLE DailySales",
		"UPDATE DailySales SET TotalGross = 0",
		"not sql at all",
	}

	for _, input := range tests {
		if got := v.ValidateAndClean(input); got != FallbackStatement {
			t.Errorf("input %q: got %q, want fallback", input, got)
		}
	}
}

func TestValidateAndClean_Idempotent(t *testing.T) {
	v := NewValidator(nil)

	stmt := "SELECT DealershipName, TotalGross FROM DailySales"
	once := v.ValidateAndClean(stmt)
	twice := v.ValidateAndClean(once)

	if once != stmt {
		t.Errorf("clean statement was altered: %q", once)
	}
	if twice != once {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}

	// The fallback itself must also survive validation unchanged.
	if got := v.ValidateAndClean(FallbackStatement); got != FallbackStatement {
		t.Errorf("fallback does not pass its own validator: %q", got)
	}
}

func TestIsSafe(t *testing.T) {
	v := NewValidator(nil)

	if !v.IsSafe("SELECT 1") {
		t.Error("plain select should be safe")
	}
	if v.IsSafe("SELECT 1; DELETE FROM DailySales") {
		t.Error("multi-statement should be unsafe")
	}
}

type fakeSchema struct {
	known map[string]bool
}

func (f *fakeSchema) IsKnownIdentifier(name string) bool {
	return f.known[name]
}

func TestCheck_SchemaConformance(t *testing.T) {
	schema := &fakeSchema{known: map[string]bool{
		"DailySales": true, "TotalGross": true, "DealershipName": true,
		"MONTH_REPORTED": true, "DATE_SOLD": true, "IsDeleted": true,
	}}
	v := NewValidator(schema)

	t.Run("known identifiers pass", func(t *testing.T) {
		stmt := "SELECT DealershipName, SUM(TRY_CAST(REPLACE(TotalGross, ',', '') AS DECIMAL(18,2))) AS TotalGross FROM DailySales WHERE IsDeleted = 0 GROUP BY DealershipName"
		if _, err := v.Check(stmt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("date functions allowed", func(t *testing.T) {
		stmt := "SELECT DATEPART(year, DATE_SOLD) FROM DailySales WHERE CAST(DATE_SOLD AS date) >= DATEADD(day, -7, CAST(GETDATE() AS date))"
		if _, err := v.Check(stmt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown table rejected", func(t *testing.T) {
		_, err := v.Check("SELECT * FROM Users")
		if !errors.Is(err, ErrUnknownIdentifier) {
			t.Fatalf("got %v, want ErrUnknownIdentifier", err)
		}
	})

	t.Run("string literal contents ignored", func(t *testing.T) {
		stmt := "SELECT TotalGross FROM DailySales WHERE LOWER(MONTH_REPORTED) = 'october'"
		if _, err := v.Check(stmt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", "SELECT 1", "SELECT 1"},
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"plain fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"surrounding prose kept out", "```sql\nSELECT 1\n```", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

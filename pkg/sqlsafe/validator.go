// Package sqlsafe enforces the lexical safety policy on generated SQL: one
// statement, SELECT or WITH only, and none of the forbidden keywords. It is
// the only gate between model output and the database.
package sqlsafe

import (
	"errors"
	"regexp"
	"strings"
)

// FallbackStatement is the fixed, parameter-free statement returned whenever
// generation or validation fails. It selects zero rows from the primary
// sales table and must stay syntactically valid against the schema.
const FallbackStatement = "SELECT TOP 0 * FROM DailySales"

var (
	// ErrEmptyStatement indicates the candidate text was empty after cleanup.
	ErrEmptyStatement = errors.New("empty SQL statement")
	// ErrMultipleStatements indicates the candidate contains more than one statement.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")
	// ErrNotReadOnly indicates the candidate does not start with SELECT or WITH.
	ErrNotReadOnly = errors.New("only SELECT and WITH statements are permitted")
	// ErrForbiddenKeyword indicates a write/DDL/exec keyword was found.
	ErrForbiddenKeyword = errors.New("forbidden SQL keyword")
	// ErrUnknownIdentifier indicates an identifier outside the known schema.
	ErrUnknownIdentifier = errors.New("identifier not found in schema")
)

var (
	codeFencePattern = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")

	// Write, DDL and execution keywords, matched as whole words.
	forbiddenPattern = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|exec|merge|grant|revoke)\b`)
)

// SchemaChecker answers whether an identifier belongs to the known schema.
// A nil checker disables the schema-conformance pass.
type SchemaChecker interface {
	IsKnownIdentifier(name string) bool
}

// Validator applies the safety policy. The zero value applies the baseline
// policy with no schema conformance check.
type Validator struct {
	schema SchemaChecker
}

// NewValidator creates a validator. schema may be nil to skip the
// schema-conformance check.
func NewValidator(schema SchemaChecker) *Validator {
	return &Validator{schema: schema}
}

// IsSafe reports whether the candidate text passes the safety policy.
func (v *Validator) IsSafe(candidate string) bool {
	_, err := v.Check(candidate)
	return err == nil
}

// ValidateAndClean returns the cleaned statement when the candidate passes
// the policy, or the fallback statement otherwise. It is idempotent: a
// statement it has already cleaned passes through unchanged.
func (v *Validator) ValidateAndClean(candidate string) string {
	cleaned, err := v.Check(candidate)
	if err != nil {
		return FallbackStatement
	}
	return cleaned
}

// Check strips markdown fences, applies the lexical policy and the optional
// schema-conformance pass, and returns the cleaned statement. The returned
// error names the first policy violation.
func (v *Validator) Check(candidate string) (string, error) {
	cleaned := strings.TrimSpace(StripCodeFences(candidate))
	if cleaned == "" {
		return "", ErrEmptyStatement
	}

	// At most one statement: a single trailing terminator is tolerated,
	// any other semicolon is a multi-statement sequence.
	semicolons := strings.Count(cleaned, ";")
	if semicolons > 1 {
		return "", ErrMultipleStatements
	}
	if semicolons == 1 {
		if !strings.HasSuffix(cleaned, ";") {
			return "", ErrMultipleStatements
		}
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, ";"))
		if cleaned == "" {
			return "", ErrEmptyStatement
		}
	}

	lower := strings.ToLower(cleaned)
	if !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		return "", ErrNotReadOnly
	}

	if forbiddenPattern.MatchString(cleaned) {
		return "", ErrForbiddenKeyword
	}

	if v.schema != nil {
		if err := checkSchemaConformance(cleaned, v.schema); err != nil {
			return "", err
		}
	}

	return cleaned, nil
}

// StripCodeFences removes a markdown code-fence wrapper, with or without a
// language tag, from model output.
func StripCodeFences(s string) string {
	if sub := codeFencePattern.FindStringSubmatch(s); sub != nil {
		return strings.TrimSpace(sub[1])
	}
	return strings.TrimSpace(s)
}

package sqlsafe

import (
	"errors"
	"regexp"

	libinjection "github.com/corazawaf/libinjection-go"
)

// DefaultMaxStatementLength bounds the size of a statement the strict
// validator will accept.
const DefaultMaxStatementLength = 4000

var (
	// ErrStatementTooLong indicates the candidate exceeds the length bound.
	ErrStatementTooLong = errors.New("SQL statement exceeds maximum length")
	// ErrCommentMarker indicates an inline comment marker in the candidate.
	ErrCommentMarker = errors.New("SQL comments are not permitted")
	// ErrProcedureCall indicates an extended or system procedure reference.
	ErrProcedureCall = errors.New("procedure calls are not permitted")
)

var (
	commentPattern   = regexp.MustCompile(`--|/\*`)
	procedurePattern = regexp.MustCompile(`(?i)\b(execute|xp_cmdshell|sp_[A-Za-z0-9_]+)\b`)
)

// StrictValidator layers additional rejections on top of Validator:
// a length bound, inline comment markers, EXECUTE and system procedure
// references.
type StrictValidator struct {
	Validator
	maxLength int
}

// NewStrictValidator creates a strict validator. maxLength <= 0 selects
// DefaultMaxStatementLength.
func NewStrictValidator(schema SchemaChecker, maxLength int) *StrictValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxStatementLength
	}
	return &StrictValidator{
		Validator: Validator{schema: schema},
		maxLength: maxLength,
	}
}

// Check applies the baseline policy plus the strict rejections.
func (v *StrictValidator) Check(candidate string) (string, error) {
	cleaned, err := v.Validator.Check(candidate)
	if err != nil {
		return "", err
	}

	if len(cleaned) > v.maxLength {
		return "", ErrStatementTooLong
	}
	if commentPattern.MatchString(cleaned) {
		return "", ErrCommentMarker
	}
	if procedurePattern.MatchString(cleaned) {
		return "", ErrProcedureCall
	}

	return cleaned, nil
}

// IsSafe reports whether the candidate passes the strict policy.
func (v *StrictValidator) IsSafe(candidate string) bool {
	_, err := v.Check(candidate)
	return err == nil
}

// ValidateAndClean returns the cleaned statement or the fallback.
func (v *StrictValidator) ValidateAndClean(candidate string) string {
	cleaned, err := v.Check(candidate)
	if err != nil {
		return FallbackStatement
	}
	return cleaned
}

// LooksLikeInjection screens a free-text value (an analyzer-extracted filter
// value, never whole SQL) for injection patterns. Values that trip the check
// are dropped from prompt hints rather than embedded.
func LooksLikeInjection(value string) bool {
	if value == "" {
		return false
	}
	isSQLi, _ := libinjection.IsSQLi(value)
	return isSQLi
}

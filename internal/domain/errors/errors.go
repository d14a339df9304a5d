package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRowNotFound is returned when an update or delete targets a row whose
// identity value is not present in the table.
var ErrRowNotFound = errors.New("row not found")

// ConstraintError represents a violation of a table constraint
// (unique index collision, missing identity, etc.)
type ConstraintError struct {
	Table      string   // table name
	Index      string   // index name (empty if not index-related)
	Columns    []string // columns participating in the constraint
	Values     []any    // offending values (may be nil)
	Constraint string   // "unique", "identity", etc.
	Reason     string   // human-readable explanation (optional)
}

func (e *ConstraintError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("constraint violation in %s", e.Table))

	if e.Index != "" {
		parts = append(parts, fmt.Sprintf("index %s", e.Index))
	}

	if len(e.Columns) > 0 {
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(e.Columns, ", ")))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Constraint))
	}

	if len(e.Values) > 0 {
		parts = append(parts, fmt.Sprintf("values=%v", e.Values))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

// NewUniqueViolation builds the error reported when an insert collides with an
// existing entry in a uniqueness index.
func NewUniqueViolation(table, index string, columns []string, values []any) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Index:      index,
		Columns:    columns,
		Values:     values,
		Constraint: "unique",
		Reason:     "duplicate value",
	}
}

// NewIdentityViolation is returned when a row carries an invalid value in the
// table's identity column.
func NewIdentityViolation(table, column string, value any, reason string) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Columns:    []string{column},
		Values:     []any{value},
		Constraint: "identity",
		Reason:     reason,
	}
}

// IsUniqueViolation reports whether err is (or wraps) a uniqueness-violation
// constraint error. Callers use this to map duplicates to domain-level
// conflict responses instead of transient storage failures.
func IsUniqueViolation(err error) bool {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint == "unique"
	}
	return false
}

package index

import (
	"fmt"
	"strings"

	"github.com/leengari/eventsync/internal/storage/table"
)

// Entry is the ordered value-tuple of one row under one index definition.
// Equality is structural: two entries are equal iff their value lists have the
// same length and equal values at every position. Entries are ephemeral; they
// are recomputed from live rows and never persisted on their own.
type Entry struct {
	values []any
	key    string
}

// NewEntry builds an entry from an ordered list of column values
func NewEntry(values []any) Entry {
	return Entry{
		values: values,
		key:    encodeValues(values),
	}
}

// Derive computes the row's entry under the given definition. The second
// return value is false when the row lacks a value for any selected column;
// such rows are not covered by that definition.
func Derive(row table.Row, def Definition) (Entry, bool) {
	values := make([]any, 0, len(def.Columns))
	for _, col := range def.Columns {
		val, exists := row[col]
		if !exists {
			return Entry{}, false
		}
		values = append(values, normalizeValue(val))
	}
	return NewEntry(values), true
}

// Key returns a string form of the entry consistent with structural
// equality: equal entries share a key, distinct entries do not. Index sets
// use it as their map key.
func (e Entry) Key() string {
	return e.key
}

// Values returns the entry's ordered column values
func (e Entry) Values() []any {
	return e.values
}

// Equal reports structural equality with another entry
func (e Entry) Equal(other Entry) bool {
	return e.key == other.key
}

// encodeValues renders values into an unambiguous order-sensitive key.
// Each segment is length-prefixed so no value can fake a boundary.
func encodeValues(values []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", len(values))
	for _, v := range values {
		seg := fmt.Sprintf("%T:%v", v, v)
		fmt.Fprintf(&b, "%d;%s", len(seg), seg)
	}
	return b.String()
}

// normalizeValue folds the integer representations that appear in rows
// (JSON float64, int, int64) into int64 so equal keys compare equal
// regardless of how the row was built.
func normalizeValue(val any) any {
	switch v := val.(type) {
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
	case int:
		return int64(v)
	}
	return val
}

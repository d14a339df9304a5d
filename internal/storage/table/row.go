package table

// Row represents a single table row.
// Key = column name, Value = cell value.
type Row map[string]any

// Copy creates a deep copy of the row to prevent mutation of shared data
func (r Row) Copy() Row {
	copied := make(Row, len(r))
	for k, v := range r {
		copied[k] = v
	}
	return copied
}

package table

import (
	"sync"

	dberrors "github.com/leengari/eventsync/internal/domain/errors"
)

// MemoryTable is a process-local, slice-backed Table. It is the storage
// backend for tests and lightweight projections; it is not a persistent
// database.
//
// The table guards its own slice with a RWMutex so snapshots are consistent,
// but it does not serialize logical write sequences for callers. Writers that
// depend on check-then-act semantics (e.g. uniqueness decorators) must be
// externally serialized per table.
type MemoryTable struct {
	mu        sync.RWMutex
	name      string
	identity  string // identity column name, e.g. "id"
	rows      []Row
	sequences map[string]int64 // per-column identity sequences
}

// NewMemoryTable creates an empty table whose rows are keyed by the given
// identity column.
func NewMemoryTable(name, identityColumn string) *MemoryTable {
	return &MemoryTable{
		name:      name,
		identity:  identityColumn,
		rows:      make([]Row, 0),
		sequences: make(map[string]int64),
	}
}

// Name returns the table name
func (t *MemoryTable) Name() string {
	return t.name
}

// Insert adds a new row with auto-increment identity support
func (t *MemoryTable) Insert(mutRow Row) error {
	row := mutRow.Copy() // prevent mutation of caller's data

	t.mu.Lock()
	defer t.mu.Unlock()

	// 1. Handle the identity column FIRST (before storing)
	if val, exists := row[t.identity]; exists {
		// Allow caller to override auto-increment (for imports, migrations, etc.)
		id, ok := normalizeToInt64(val)
		if !ok {
			return dberrors.NewIdentityViolation(t.name, t.identity, val,
				"identity column must be integer")
		}
		// Prevent sequence conflicts
		if id <= t.sequences[t.identity] {
			return dberrors.NewIdentityViolation(t.name, t.identity, id,
				"provided value is not greater than current sequence")
		}
		row[t.identity] = id
		t.sequences[t.identity] = id
	} else {
		next := t.sequences[t.identity] + 1
		row[t.identity] = next
		t.sequences[t.identity] = next
	}

	// 2. Everything passed → safe to append
	t.rows = append(t.rows, row)

	return nil
}

// Update replaces the stored row with the same identity value
func (t *MemoryTable) Update(mutRow Row) error {
	row := mutRow.Copy()

	t.mu.Lock()
	defer t.mu.Unlock()

	pos, err := t.findByIdentity(row)
	if err != nil {
		return err
	}

	t.rows[pos] = row
	return nil
}

// Delete removes the stored row with the same identity value
func (t *MemoryTable) Delete(row Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, err := t.findByIdentity(row)
	if err != nil {
		return err
	}

	t.rows = append(t.rows[:pos], t.rows[pos+1:]...)
	return nil
}

// Snapshot returns a deep copy of all live rows. Rows are copied so later
// updates never bleed into a snapshot a caller is still holding.
func (t *MemoryTable) Snapshot() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row.Copy()
	}
	return rows
}

// NextIdentity returns the next generated value for the given column and
// advances its sequence.
func (t *MemoryTable) NextIdentity(column string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.sequences[column] + 1
	t.sequences[column] = next
	return next
}

// findByIdentity locates the position of the row sharing the given row's
// identity value. Caller must hold the lock.
func (t *MemoryTable) findByIdentity(row Row) (int, error) {
	val, exists := row[t.identity]
	if !exists {
		return -1, dberrors.NewIdentityViolation(t.name, t.identity, nil,
			"identity value required")
	}

	want, ok := normalizeToInt64(val)
	if !ok {
		return -1, dberrors.NewIdentityViolation(t.name, t.identity, val,
			"identity column must be integer")
	}

	for pos, stored := range t.rows {
		have, ok := normalizeToInt64(stored[t.identity])
		if ok && have == want {
			return pos, nil
		}
	}

	return -1, dberrors.ErrRowNotFound
}

// normalizeToInt64 normalizes JSON-style numbers to int64
func normalizeToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

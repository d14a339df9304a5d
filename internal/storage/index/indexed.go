package index

import (
	"github.com/leengari/eventsync/internal/domain/errors"
	"github.com/leengari/eventsync/internal/storage/table"
)

// Definition is a named, ordered list of columns forming one uniqueness
// constraint. Definitions are declared once at table construction and
// evaluated independently of each other.
type Definition struct {
	Name    string
	Columns []string
}

// Def is a convenience constructor for a Definition
func Def(name string, columns ...string) Definition {
	return Definition{Name: name, Columns: columns}
}

// IndexedTable decorates an inner Table with uniqueness enforcement over one
// or more composite indexes. Inserts are validated against every index before
// any mutation happens; all other operations pass through unchanged.
//
// The decorator keeps one in-memory entry set per definition and provides no
// locking of its own. Callers must serialize writes to a given table;
// concurrent inserts racing on colliding keys are undefined.
//
// Pre-existing rows in the inner table are not indexed at construction; the
// inner table is expected to be empty when the decorator is created.
type IndexedTable struct {
	name  string
	inner table.Table
	defs  []Definition
	sets  []map[string]Entry // parallel to defs
}

// NewIndexedTable wraps inner with the given uniqueness definitions
func NewIndexedTable(name string, inner table.Table, defs ...Definition) *IndexedTable {
	sets := make([]map[string]Entry, len(defs))
	for i := range defs {
		sets[i] = make(map[string]Entry)
	}
	return &IndexedTable{
		name:  name,
		inner: inner,
		defs:  defs,
		sets:  sets,
	}
}

// Name returns the table name
func (t *IndexedTable) Name() string {
	return t.name
}

// Insert validates the candidate row against every index definition and, only
// if no definition collides, delegates to the inner table. Index sets are
// updated after the inner insert succeeds; on any failure nothing is mutated.
func (t *IndexedTable) Insert(row table.Row) error {
	// 1. Derive entries for every definition up front (all-or-nothing check)
	entries := make([]*Entry, len(t.defs))
	for i, def := range t.defs {
		entry, ok := Derive(row, def)
		if !ok {
			continue // row not covered by this definition
		}
		entries[i] = &entry
	}

	// 2. Check every index in declared order; report the first collision
	for i, def := range t.defs {
		if entries[i] == nil {
			continue
		}
		if _, found := t.sets[i][entries[i].Key()]; found {
			return errors.NewUniqueViolation(t.name, def.Name, def.Columns, entries[i].Values())
		}
	}

	// 3. Delegate to the inner table; its failure leaves index sets untouched
	if err := t.inner.Insert(row); err != nil {
		return err
	}

	// 4. Record the new row in every index set
	for i, entry := range entries {
		if entry != nil {
			t.sets[i][entry.Key()] = *entry
		}
	}

	return nil
}

// Delete delegates to the inner table and, once the row is gone, retires its
// entries from every index set so the keys become available for reuse. The
// entries are derived from the row's pre-delete values.
func (t *IndexedTable) Delete(row table.Row) error {
	if err := t.inner.Delete(row); err != nil {
		return err
	}

	for i, def := range t.defs {
		if entry, ok := Derive(row, def); ok {
			delete(t.sets[i], entry.Key())
		}
	}

	return nil
}

// Update passes through unchanged. Uniqueness is not re-validated on update;
// callers must not change indexed columns through this operation.
func (t *IndexedTable) Update(row table.Row) error {
	return t.inner.Update(row)
}

// Snapshot delegates to the inner table
func (t *IndexedTable) Snapshot() []table.Row {
	return t.inner.Snapshot()
}

// NextIdentity delegates to the inner table; the decorator has no opinion on
// key generation.
func (t *IndexedTable) NextIdentity(column string) int64 {
	return t.inner.NextIdentity(column)
}

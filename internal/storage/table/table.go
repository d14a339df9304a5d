package table

// Table is the row-storage contract the rest of the system writes through.
// Implementations store whole rows; constraint enforcement (uniqueness
// indexes) is layered on top by decorators.
type Table interface {
	// Insert adds a new row. The implementation must not retain or mutate
	// the caller's map.
	Insert(row Row) error

	// Update replaces the stored row that shares the given row's identity
	// value. Returns ErrRowNotFound if no such row exists.
	Update(row Row) error

	// Delete removes the stored row that shares the given row's identity
	// value. Returns ErrRowNotFound if no such row exists.
	Delete(row Row) error

	// Snapshot returns a point-in-time deep copy of all live rows,
	// unaffected by later mutation.
	Snapshot() []Row

	// NextIdentity returns the next generated identity value for the given
	// column and advances the sequence.
	NextIdentity(column string) int64
}

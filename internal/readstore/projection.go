package readstore

import (
	"context"
	"fmt"

	"github.com/leengari/eventsync/internal/domain/event"
	"github.com/leengari/eventsync/internal/storage/table"
)

// Projection maintains one read model from committed event batches
type Projection interface {
	// Name identifies the projection in logs and errors
	Name() string

	// Apply folds a batch of events into the read model. All events in the
	// batch belong to the aggregate identified by ref and arrive in commit
	// order.
	Apply(ctx context.Context, ref event.AggregateRef, events []event.Event) error
}

// Applier folds a single event into a table-backed read model
type Applier func(ctx context.Context, tbl table.Table, ref event.AggregateRef, e event.Event) error

// TableProjection routes events by type to registered applier funcs that
// write through a Table. Event types without an applier are skipped; a
// projection only cares about the slice of the stream it can fold.
type TableProjection struct {
	name     string
	table    table.Table
	appliers map[string]Applier
}

// NewTableProjection creates a projection writing into the given table
func NewTableProjection(name string, tbl table.Table) *TableProjection {
	return &TableProjection{
		name:     name,
		table:    tbl,
		appliers: make(map[string]Applier),
	}
}

// Name implements the Projection interface
func (p *TableProjection) Name() string {
	return p.name
}

// On registers the applier for an event type, replacing any previous one
func (p *TableProjection) On(eventType string, fn Applier) *TableProjection {
	p.appliers[eventType] = fn
	return p
}

// Apply implements the Projection interface
func (p *TableProjection) Apply(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
	for _, e := range events {
		fn, ok := p.appliers[e.Type]
		if !ok {
			continue
		}
		if err := fn(ctx, p.table, ref, e); err != nil {
			return fmt.Errorf("projection %s: apply %s (seq %d): %w", p.name, e.Type, e.Sequence, err)
		}
	}
	return nil
}

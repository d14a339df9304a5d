package readstore

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/leengari/eventsync/internal/domain/event"
)

// Manager drives committed event batches into every registered projection.
// It implements the read-store-manager contract the publisher depends on.
type Manager struct {
	projections []Projection
	logger      *slog.Logger
}

// NewManager creates a manager with the given projections. Projections are
// applied in registration order.
func NewManager(logger *slog.Logger, projections ...Projection) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		projections: projections,
		logger:      logger,
	}
}

// Register adds a projection after construction
func (m *Manager) Register(p Projection) {
	m.projections = append(m.projections, p)
}

// UpdateProjections applies the batch to every projection. A failing
// projection does not stop the others; all failures are collected and
// returned together.
func (m *Manager) UpdateProjections(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
	var errs error
	for _, p := range m.projections {
		if err := p.Apply(ctx, ref, events); err != nil {
			m.logger.ErrorContext(ctx, "projection update failed",
				"projection", p.Name(),
				"aggregate_type", ref.AggregateType,
				"aggregate_id", ref.ID.String(),
				"error", err,
			)
			errs = multierr.Append(errs, err)
			continue
		}
		m.logger.DebugContext(ctx, "projection updated",
			"projection", p.Name(),
			"aggregate_type", ref.AggregateType,
			"aggregate_id", ref.ID.String(),
			"events", len(events),
		)
	}
	return errs
}

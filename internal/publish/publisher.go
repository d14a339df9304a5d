package publish

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/leengari/eventsync/internal/domain/event"
)

// ReadStoreManager updates read-model projections from a committed batch
type ReadStoreManager interface {
	UpdateProjections(ctx context.Context, ref event.AggregateRef, events []event.Event) error
}

// SubscriberDispatcher notifies independent observers of a committed batch
type SubscriberDispatcher interface {
	Dispatch(ctx context.Context, events []event.Event) error
}

// Publisher fans one committed event batch out to the read store and the
// subscriber dispatcher concurrently and reports a single combined outcome.
//
// The two branches have different cancellation semantics: projection updates
// run to completion once started (a partially applied projection is worse
// than a late-cancelling caller), while subscriber dispatch honors the
// caller's context. Callers must serialize Publish calls per aggregate; the
// publisher does not reorder or buffer batches.
type Publisher struct {
	readStore  ReadStoreManager
	dispatcher SubscriberDispatcher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewPublisher creates a publisher over the given collaborators
func NewPublisher(readStore ReadStoreManager, dispatcher SubscriberDispatcher, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		readStore:  readStore,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("eventsync/publish"),
	}
}

// Publish drives both side effects for the batch and resolves only once both
// have reached a terminal state. If both branches fail, both failures are
// present in the returned error.
func (p *Publisher) Publish(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "publish",
		trace.WithAttributes(
			attribute.String("aggregate.type", ref.AggregateType),
			attribute.String("aggregate.id", ref.ID.String()),
			attribute.Int("event.count", len(events)),
		))
	defer span.End()

	// Projection updates keep the span's values but never its cancellation
	projCtx := context.WithoutCancel(ctx)

	projCh := make(chan error, 1)
	dispCh := make(chan error, 1)

	go func() {
		projCh <- p.readStore.UpdateProjections(projCtx, ref, events)
	}()
	go func() {
		dispCh <- p.dispatcher.Dispatch(ctx, events)
	}()

	// Join: both branches must reach a terminal state before resolving
	projErr := <-projCh
	dispErr := <-dispCh

	if projErr != nil {
		span.AddEvent("projection update failed")
		p.logger.ErrorContext(projCtx, "projection update failed",
			"aggregate_type", ref.AggregateType,
			"aggregate_id", ref.ID.String(),
			"error", projErr,
		)
	}
	if dispErr != nil {
		span.AddEvent("subscriber dispatch failed")
		p.logger.ErrorContext(projCtx, "subscriber dispatch failed",
			"aggregate_type", ref.AggregateType,
			"aggregate_id", ref.ID.String(),
			"error", dispErr,
		)
	}

	err := multierr.Append(projErr, dispErr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

package dispatch

import (
	"context"
	"log/slog"

	"github.com/leengari/eventsync/internal/domain/event"
)

// LoggingSubscriber is a simple subscriber that logs every event using
// structured logging
type LoggingSubscriber struct {
	logger *slog.Logger
}

// NewLoggingSubscriber creates a new logging subscriber
func NewLoggingSubscriber(logger *slog.Logger) *LoggingSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingSubscriber{logger: logger}
}

// OnEvents implements the Subscriber interface.
// It logs each event with structured fields for easy filtering and analysis.
func (ls *LoggingSubscriber) OnEvents(ctx context.Context, events []event.Event) error {
	for _, e := range events {
		ls.logger.InfoContext(ctx, "domain_event",
			"event_id", e.ID.String(),
			"event_type", e.Type,
			"aggregate_id", e.AggregateID.String(),
			"sequence", e.Sequence,
		)
	}
	return nil
}

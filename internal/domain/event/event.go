package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a single committed domain event.
// Events are immutable facts; consumers must not mutate the payload.
type Event struct {
	ID          uuid.UUID      // Unique event identifier
	Type        string         // Event type name, e.g. "user_registered"
	AggregateID uuid.UUID      // Identity of the aggregate that emitted the event
	Sequence    int64          // Position within the aggregate's stream (1-based)
	Timestamp   time.Time      // When the event was committed
	Payload     map[string]any // Event-specific data
}

// AggregateRef identifies the aggregate instance a batch of events belongs to.
// It travels from the publisher to the read-store manager so projections know
// which stream they are applying.
type AggregateRef struct {
	AggregateType string    // e.g. "user"
	IdentityType  string    // e.g. "uuid"
	ID            uuid.UUID
}

// New creates an event with a fresh ID and the current timestamp
func New(aggregateID uuid.UUID, eventType string, sequence int64, payload map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		Sequence:    sequence,
		Timestamp:   time.Now(),
		Payload:     payload,
	}
}

// CopyPayload returns a shallow copy of the event's payload so projections
// can build rows without aliasing the event's data.
func (e Event) CopyPayload() map[string]any {
	copied := make(map[string]any, len(e.Payload))
	for k, v := range e.Payload {
		copied[k] = v
	}
	return copied
}

package dispatch

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/leengari/eventsync/internal/domain/event"
)

// Subscriber receives committed event batches
type Subscriber interface {
	OnEvents(ctx context.Context, events []event.Event) error
}

// Dispatcher fans event batches out to registered subscribers in
// registration order. Dispatch honors the caller's cancellation signal
// between subscribers; subscribers that already ran are not rolled back.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

// New creates an empty dispatcher
func New() *Dispatcher {
	return &Dispatcher{
		subscribers: make([]Subscriber, 0),
	}
}

// AddSubscriber registers a subscriber to receive event batches
func (d *Dispatcher) AddSubscriber(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

// RemoveSubscriber unregisters a subscriber
func (d *Dispatcher) RemoveSubscriber(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subscribers {
		if sub == s {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the batch to every subscriber. Subscriber failures are
// collected rather than short-circuiting, so one failing subscriber does not
// starve the rest. A cancelled context abandons the remaining subscribers.
func (d *Dispatcher) Dispatch(ctx context.Context, events []event.Event) error {
	d.mu.RLock()
	subscribers := make([]Subscriber, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.RUnlock()

	var errs error
	for _, sub := range subscribers {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := sub.OnEvents(ctx, events); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

package publish

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/leengari/eventsync/internal/domain/event"
)

type mockReadStore struct {
	fn    func(ctx context.Context, ref event.AggregateRef, events []event.Event) error
	calls atomic.Int32
}

func (m *mockReadStore) UpdateProjections(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
	m.calls.Add(1)
	if m.fn != nil {
		return m.fn(ctx, ref, events)
	}
	return nil
}

type mockDispatcher struct {
	fn    func(ctx context.Context, events []event.Event) error
	calls atomic.Int32
}

func (m *mockDispatcher) Dispatch(ctx context.Context, events []event.Event) error {
	m.calls.Add(1)
	if m.fn != nil {
		return m.fn(ctx, events)
	}
	return nil
}

func sampleRef() event.AggregateRef {
	return event.AggregateRef{AggregateType: "user", IdentityType: "uuid", ID: uuid.New()}
}

func sampleBatch(ref event.AggregateRef, n int) []event.Event {
	events := make([]event.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, event.New(ref.ID, "user_registered", int64(i+1), nil))
	}
	return events
}

func TestPublishRunsBothBranches(t *testing.T) {
	rs := &mockReadStore{}
	d := &mockDispatcher{}
	p := NewPublisher(rs, d, nil)

	ref := sampleRef()
	err := p.Publish(context.Background(), ref, sampleBatch(ref, 2))

	require.NoError(t, err)
	require.Equal(t, int32(1), rs.calls.Load())
	require.Equal(t, int32(1), d.calls.Load())
}

func TestPublishEmptyBatchIsNoOp(t *testing.T) {
	rs := &mockReadStore{}
	d := &mockDispatcher{}
	p := NewPublisher(rs, d, nil)

	require.NoError(t, p.Publish(context.Background(), sampleRef(), nil))
	require.Zero(t, rs.calls.Load())
	require.Zero(t, d.calls.Load())
}

func TestPublishStartsBranchesConcurrently(t *testing.T) {
	projStarted := make(chan struct{})
	dispStarted := make(chan struct{})

	// Each branch waits for the other to start. A sequential publisher
	// would deadlock here; a concurrent one sails through.
	rs := &mockReadStore{fn: func(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
		close(projStarted)
		select {
		case <-dispStarted:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("dispatch branch never started")
		}
	}}
	d := &mockDispatcher{fn: func(ctx context.Context, events []event.Event) error {
		close(dispStarted)
		select {
		case <-projStarted:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("projection branch never started")
		}
	}}

	p := NewPublisher(rs, d, nil)
	ref := sampleRef()
	require.NoError(t, p.Publish(context.Background(), ref, sampleBatch(ref, 1)))
}

func TestPublishDoesNotResolveBeforeSlowBranch(t *testing.T) {
	dispErr := errors.New("dispatch failed fast")
	projDone := make(chan struct{})
	var projFinished atomic.Bool

	rs := &mockReadStore{fn: func(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
		<-projDone
		projFinished.Store(true)
		return nil
	}}
	d := &mockDispatcher{fn: func(ctx context.Context, events []event.Event) error {
		return dispErr
	}}

	p := NewPublisher(rs, d, nil)
	ref := sampleRef()

	resolved := make(chan error, 1)
	go func() {
		resolved <- p.Publish(context.Background(), ref, sampleBatch(ref, 1))
	}()

	// Dispatch has already failed, but publish must keep waiting
	select {
	case err := <-resolved:
		t.Fatalf("publish resolved before projection finished: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(projDone)

	select {
	case err := <-resolved:
		require.ErrorIs(t, err, dispErr)
		require.True(t, projFinished.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("publish never resolved")
	}
}

func TestPublishCancellationScope(t *testing.T) {
	var projSawCancel atomic.Bool
	var projRan atomic.Bool

	rs := &mockReadStore{fn: func(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
		// The projection context must never carry the caller's cancellation
		time.Sleep(50 * time.Millisecond)
		if ctx.Err() != nil {
			projSawCancel.Store(true)
		}
		projRan.Store(true)
		return nil
	}}
	d := &mockDispatcher{fn: func(ctx context.Context, events []event.Event) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	p := NewPublisher(rs, d, nil)
	ref := sampleRef()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, ref, sampleBatch(ref, 1))

	require.ErrorIs(t, err, context.Canceled)
	require.True(t, projRan.Load(), "projection must run to completion")
	require.False(t, projSawCancel.Load(), "projection context was cancellable")
}

func TestPublishAggregatesBothFailures(t *testing.T) {
	projErr := errors.New("projection failed")
	dispErr := errors.New("dispatch failed")

	rs := &mockReadStore{fn: func(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
		return projErr
	}}
	d := &mockDispatcher{fn: func(ctx context.Context, events []event.Event) error {
		return dispErr
	}}

	p := NewPublisher(rs, d, nil)
	ref := sampleRef()
	err := p.Publish(context.Background(), ref, sampleBatch(ref, 1))

	require.ErrorIs(t, err, projErr)
	require.ErrorIs(t, err, dispErr)
}

package readstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	dberrors "github.com/leengari/eventsync/internal/domain/errors"
	"github.com/leengari/eventsync/internal/domain/event"
	"github.com/leengari/eventsync/internal/storage/index"
	"github.com/leengari/eventsync/internal/storage/table"
)

func registerUser(ctx context.Context, tbl table.Table, ref event.AggregateRef, e event.Event) error {
	row := table.Row(e.CopyPayload())
	row["user_id"] = e.AggregateID.String()
	return tbl.Insert(row)
}

func suspendUser(ctx context.Context, tbl table.Table, ref event.AggregateRef, e event.Event) error {
	for _, row := range tbl.Snapshot() {
		if row["user_id"] == e.AggregateID.String() {
			row["suspended"] = true
			return tbl.Update(row)
		}
	}
	return dberrors.ErrRowNotFound
}

func newUsersProjection() (*TableProjection, *index.IndexedTable) {
	tbl := index.NewIndexedTable("users",
		table.NewMemoryTable("users", "id"),
		index.Def("email", "email"),
	)
	p := NewTableProjection("users", tbl).
		On("user_registered", registerUser).
		On("user_suspended", suspendUser)
	return p, tbl
}

func userRef(id uuid.UUID) event.AggregateRef {
	return event.AggregateRef{AggregateType: "user", IdentityType: "uuid", ID: id}
}

func TestManagerProjectsBatchIntoTable(t *testing.T) {
	p, tbl := newUsersProjection()
	m := NewManager(nil, p)

	userID := uuid.New()
	batch := []event.Event{
		event.New(userID, "user_registered", 1, map[string]any{"email": "a@x.com"}),
		event.New(userID, "user_suspended", 2, nil),
	}

	err := m.UpdateProjections(context.Background(), userRef(userID), batch)
	require.NoError(t, err)

	rows := tbl.Snapshot()
	require.Len(t, rows, 1)
	require.Equal(t, "a@x.com", rows[0]["email"])
	require.Equal(t, userID.String(), rows[0]["user_id"])
	require.Equal(t, true, rows[0]["suspended"])
}

func TestManagerSkipsUnknownEventTypes(t *testing.T) {
	p, tbl := newUsersProjection()
	m := NewManager(nil, p)

	userID := uuid.New()
	batch := []event.Event{
		event.New(userID, "user_logged_in", 1, nil),
	}

	require.NoError(t, m.UpdateProjections(context.Background(), userRef(userID), batch))
	require.Empty(t, tbl.Snapshot())
}

func TestManagerSurfacesUniquenessViolation(t *testing.T) {
	p, _ := newUsersProjection()
	m := NewManager(nil, p)

	first := uuid.New()
	err := m.UpdateProjections(context.Background(), userRef(first), []event.Event{
		event.New(first, "user_registered", 1, map[string]any{"email": "a@x.com"}),
	})
	require.NoError(t, err)

	second := uuid.New()
	err = m.UpdateProjections(context.Background(), userRef(second), []event.Event{
		event.New(second, "user_registered", 1, map[string]any{"email": "a@x.com"}),
	})
	require.Error(t, err)
	require.True(t, dberrors.IsUniqueViolation(err), "expected duplicate to surface as uniqueness violation")
}

type failingProjection struct {
	err error
}

func (f *failingProjection) Name() string { return "failing" }

func (f *failingProjection) Apply(ctx context.Context, ref event.AggregateRef, events []event.Event) error {
	return f.err
}

func TestManagerCollectsFailuresAcrossProjections(t *testing.T) {
	p, tbl := newUsersProjection()
	boom := errors.New("boom")
	m := NewManager(nil, &failingProjection{err: boom}, p)

	userID := uuid.New()
	err := m.UpdateProjections(context.Background(), userRef(userID), []event.Event{
		event.New(userID, "user_registered", 1, map[string]any{"email": "a@x.com"}),
	})

	require.ErrorIs(t, err, boom)
	// Healthy projection still ran
	require.Len(t, tbl.Snapshot(), 1)
}

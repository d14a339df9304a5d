package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/leengari/eventsync/internal/config"
	"github.com/leengari/eventsync/internal/dispatch"
	dberrors "github.com/leengari/eventsync/internal/domain/errors"
	"github.com/leengari/eventsync/internal/domain/event"
	"github.com/leengari/eventsync/internal/logging"
	"github.com/leengari/eventsync/internal/publish"
	"github.com/leengari/eventsync/internal/readstore"
	"github.com/leengari/eventsync/internal/storage/index"
	"github.com/leengari/eventsync/internal/storage/table"
	"github.com/leengari/eventsync/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeFn := logging.Setup(cfg.ServiceName, cfg.SeqURL)
	defer closeFn()
	slog.SetDefault(logger)

	shutdown, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		closeFn()
		os.Exit(1)
	}
	defer shutdown(ctx)

	logger.Info("starting eventsync demo")

	// 1. Users read model: unique email, unique (tenant_id, username)
	usersTable := index.NewIndexedTable("users",
		table.NewMemoryTable("users", "id"),
		index.Def("email", "email"),
		index.Def("tenant_user", "tenant_id", "username"),
	)

	usersProjection := readstore.NewTableProjection("users", usersTable).
		On("user_registered", func(ctx context.Context, tbl table.Table, ref event.AggregateRef, e event.Event) error {
			row := table.Row(e.CopyPayload())
			row["user_id"] = e.AggregateID.String()
			return tbl.Insert(row)
		})

	// 2. Wire the fan-out: read store on one side, subscribers on the other
	manager := readstore.NewManager(logger, usersProjection)

	dispatcher := dispatch.New()
	dispatcher.AddSubscriber(dispatch.NewLoggingSubscriber(logger))

	publisher := publish.NewPublisher(manager, dispatcher, logger)

	// 3. Publish a few committed batches
	alice := uuid.New()
	if err := publisher.Publish(ctx, userRef(alice), []event.Event{
		event.New(alice, "user_registered", 1, map[string]any{
			"email": "alice@example.com", "tenant_id": int64(1), "username": "alice",
		}),
	}); err != nil {
		logger.Error("publish failed", "error", err)
		closeFn()
		os.Exit(1)
	}

	bob := uuid.New()
	if err := publisher.Publish(ctx, userRef(bob), []event.Event{
		event.New(bob, "user_registered", 1, map[string]any{
			"email": "bob@example.com", "tenant_id": int64(1), "username": "bob",
		}),
	}); err != nil {
		logger.Error("publish failed", "error", err)
		closeFn()
		os.Exit(1)
	}

	// 4. A duplicate email is rejected by the uniqueness index, not overwritten
	mallory := uuid.New()
	err = publisher.Publish(ctx, userRef(mallory), []event.Event{
		event.New(mallory, "user_registered", 1, map[string]any{
			"email": "alice@example.com", "tenant_id": int64(2), "username": "mallory",
		}),
	})
	if dberrors.IsUniqueViolation(err) {
		logger.Info("duplicate registration rejected", "error", err)
	} else if err != nil {
		logger.Error("publish failed", "error", err)
		closeFn()
		os.Exit(1)
	}

	for _, row := range usersTable.Snapshot() {
		logger.Info("users row", "id", row["id"], "email", row["email"], "username", row["username"])
	}

	logger.Info("eventsync demo finished")
}

func userRef(id uuid.UUID) event.AggregateRef {
	return event.AggregateRef{AggregateType: "user", IdentityType: "uuid", ID: id}
}

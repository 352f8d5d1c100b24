//go:build integration

package bunstore_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/id"
	bunstore "github.com/xraph/correlate/store/bun"
	"github.com/xraph/correlate/subscription"
)

// setupTestStore creates a Postgres container and returns a connected Bun Store.
func setupTestStore(t *testing.T) *bunstore.Store {
	t.Helper()

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("correlate_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	// Create Bun DB from pgdriver.
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())

	t.Cleanup(func() {
		_ = db.Close()
	})

	store := bunstore.New(db)

	if migErr := store.Migrate(ctx); migErr != nil {
		t.Fatalf("migrate: %v", migErr)
	}

	return store
}

// ──────────────────────────────────────────────────
// Lifecycle tests
// ──────────────────────────────────────────────────

func TestStore_Ping(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestStore_MigrateIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	// Second migrate should be a no-op.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

// ──────────────────────────────────────────────────
// Definition Store tests
// ──────────────────────────────────────────────────

func newTestDefinition(key, tenantID string, dep id.DeploymentID) *definition.Definition {
	return &definition.Definition{
		Entity:       correlate.NewEntity(),
		ID:           id.NewDefinitionID(),
		Key:          key,
		TenantID:     tenantID,
		DeploymentID: dep,
		CorrelationParameters: []definition.Parameter{
			{Name: "orderId", Type: definition.TypeString},
		},
		PayloadFields: []definition.Parameter{
			{Name: "amount", Type: definition.TypeNumber},
		},
	}
}

func TestDefinitionStore_IndexAndFind(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	def := newTestDefinition("order-paid", "acme", id.NewDeploymentID())
	if err := s.IndexDefinition(ctx, def); err != nil {
		t.Fatalf("IndexDefinition: %v", err)
	}

	got, err := s.FindDefinition(ctx, "order-paid", "acme")
	if err != nil {
		t.Fatalf("FindDefinition: %v", err)
	}
	if got.Key != "order-paid" || got.TenantID != "acme" {
		t.Errorf("got (%q,%q), want (order-paid,acme)", got.Key, got.TenantID)
	}
	if len(got.CorrelationParameters) != 1 || got.CorrelationParameters[0].Name != "orderId" {
		t.Errorf("correlation parameters not round-tripped: %+v", got.CorrelationParameters)
	}
	if len(got.PayloadFields) != 1 || got.PayloadFields[0].Type != definition.TypeNumber {
		t.Errorf("payload fields not round-tripped: %+v", got.PayloadFields)
	}

	if _, err := s.FindDefinition(ctx, "order-paid", "globex"); !errors.Is(err, correlate.ErrDefinitionNotFound) {
		t.Errorf("expected ErrDefinitionNotFound for other tenant, got %v", err)
	}
}

func TestDefinitionStore_RedeployReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newTestDefinition("order-paid", "acme", id.NewDeploymentID())
	if err := s.IndexDefinition(ctx, first); err != nil {
		t.Fatalf("IndexDefinition first: %v", err)
	}

	second := newTestDefinition("order-paid", "acme", id.NewDeploymentID())
	if err := s.IndexDefinition(ctx, second); err != nil {
		t.Fatalf("IndexDefinition second: %v", err)
	}

	got, err := s.FindDefinition(ctx, "order-paid", "acme")
	if err != nil {
		t.Fatalf("FindDefinition: %v", err)
	}
	if got.ID.String() != second.ID.String() {
		t.Error("expected redeployed definition to replace the first")
	}
}

func TestDefinitionStore_UnindexDeployment(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	dep := id.NewDeploymentID()
	_ = s.IndexDefinition(ctx, newTestDefinition("order-paid", "acme", dep))
	_ = s.IndexDefinition(ctx, newTestDefinition("order-shipped", "acme", dep))
	_ = s.IndexDefinition(ctx, newTestDefinition("invoice-sent", "acme", id.NewDeploymentID()))

	removed, err := s.UnindexDeployment(ctx, dep)
	if err != nil {
		t.Fatalf("UnindexDeployment: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := s.FindDefinition(ctx, "invoice-sent", "acme"); err != nil {
		t.Errorf("invoice-sent should survive, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// Subscription Store tests
// ──────────────────────────────────────────────────

func TestSubscriptionStore_CreateFindDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	owner := id.NewInstanceID()
	sub := &subscription.Subscription{
		Entity:          correlate.NewEntity(),
		ID:              id.NewSubscriptionID(),
		Kind:            subscription.KindRuntime,
		EventKey:        "order-paid",
		TenantID:        "acme",
		Correlation:     map[string]any{"orderId": "o-1", "amount": float64(10)},
		OwnerInstanceID: owner,
	}
	if err := s.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	subs, err := s.FindSubscriptions(ctx, "order-paid", "acme")
	if err != nil {
		t.Fatalf("FindSubscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	got := subs[0]
	if got.Correlation["orderId"] != "o-1" {
		t.Errorf("correlation not round-tripped: %+v", got.Correlation)
	}
	if got.OwnerInstanceID.String() != owner.String() {
		t.Errorf("owner = %v, want %v", got.OwnerInstanceID, owner)
	}

	if err := s.DeleteSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if err := s.DeleteSubscription(ctx, sub.ID); !errors.Is(err, correlate.ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestSubscriptionStore_DeleteByInstance(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	owner := id.NewInstanceID()
	for _, key := range []string{"order-paid", "order-shipped"} {
		sub := &subscription.Subscription{
			Entity:          correlate.NewEntity(),
			ID:              id.NewSubscriptionID(),
			Kind:            subscription.KindRuntime,
			EventKey:        key,
			TenantID:        "acme",
			OwnerInstanceID: owner,
		}
		if err := s.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
	}

	removed, err := s.DeleteByInstance(ctx, owner)
	if err != nil {
		t.Fatalf("DeleteByInstance: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
}

func TestSubscriptionStore_DeleteByDeployment(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	dep := id.NewDeploymentID()
	trigger := &subscription.Subscription{
		Entity:            correlate.NewEntity(),
		ID:                id.NewSubscriptionID(),
		Kind:              subscription.KindStart,
		EventKey:          "order-paid",
		TenantID:          "acme",
		CaseDefinitionKey: "order-case",
		DeploymentID:      dep,
		Unique:            true,
	}
	if err := s.CreateSubscription(ctx, trigger); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	removed, err := s.DeleteByDeployment(ctx, dep)
	if err != nil {
		t.Fatalf("DeleteByDeployment: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

// ──────────────────────────────────────────────────
// Reservation Store tests
// ──────────────────────────────────────────────────

func TestReservationStore_TryReserveRelease(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	held, err := s.TryReserve(ctx, "order-case/acme/orderId=o-1")
	if err != nil {
		t.Fatalf("TryReserve: %v", err)
	}
	if !held {
		t.Fatal("first TryReserve should succeed")
	}

	held, err = s.TryReserve(ctx, "order-case/acme/orderId=o-1")
	if err != nil {
		t.Fatalf("second TryReserve: %v", err)
	}
	if held {
		t.Fatal("second TryReserve on same key should fail")
	}

	if err := s.ReleaseReservation(ctx, "order-case/acme/orderId=o-1"); err != nil {
		t.Fatalf("ReleaseReservation: %v", err)
	}
	held, _ = s.TryReserve(ctx, "order-case/acme/orderId=o-1")
	if !held {
		t.Fatal("TryReserve should succeed after release")
	}
}

func TestReservationStore_ConcurrentReserve(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			held, err := s.TryReserve(ctx, "contested-key")
			if err != nil {
				t.Errorf("TryReserve: %v", err)
				return
			}
			if held {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for range wins {
		winners++
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 winner, got %d", winners)
	}
}

// ──────────────────────────────────────────────────
// Drop Log Store tests
// ──────────────────────────────────────────────────

func TestDropLogStore_PushGetMarkPurge(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	entry := &droplog.Entry{
		ID:         id.NewDropID(),
		ChannelKey: "orders",
		EventKey:   "order-paid",
		TenantID:   "acme",
		Payload:    []byte(`{"bad":true}`),
		Reason:     correlate.DropDefinitionNotFound,
		Error:      "no definition",
		DroppedAt:  now,
		CreatedAt:  now,
	}
	if err := s.PushDrop(ctx, entry); err != nil {
		t.Fatalf("PushDrop: %v", err)
	}

	got, err := s.GetDrop(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetDrop: %v", err)
	}
	if got.Reason != correlate.DropDefinitionNotFound || got.ChannelKey != "orders" {
		t.Errorf("entry not round-tripped: %+v", got)
	}

	if err := s.MarkReplayed(ctx, entry.ID); err != nil {
		t.Fatalf("MarkReplayed: %v", err)
	}
	got, _ = s.GetDrop(ctx, entry.ID)
	if got.ReplayedAt == nil {
		t.Error("expected ReplayedAt to be set")
	}

	purged, err := s.PurgeDrops(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("PurgeDrops: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	count, err := s.CountDrops(ctx)
	if err != nil {
		t.Fatalf("CountDrops: %v", err)
	}
	if count != 0 {
		t.Errorf("CountDrops = %d, want 0", count)
	}
}

func TestDropLogStore_ListFilters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, channel := range []string{"orders", "orders", "payments"} {
		entry := &droplog.Entry{
			ID:         id.NewDropID(),
			ChannelKey: channel,
			Payload:    []byte(`{}`),
			Reason:     correlate.DropDeserialization,
			DroppedAt:  now.Add(time.Duration(i) * time.Second),
			CreatedAt:  now,
		}
		if err := s.PushDrop(ctx, entry); err != nil {
			t.Fatalf("PushDrop: %v", err)
		}
	}

	orders, err := s.ListDrops(ctx, droplog.ListOpts{Channel: "orders"})
	if err != nil {
		t.Fatalf("ListDrops: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("expected 2 orders entries, got %d", len(orders))
	}

	paged, err := s.ListDrops(ctx, droplog.ListOpts{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListDrops paged: %v", err)
	}
	if len(paged) != 1 {
		t.Errorf("expected 1 paged entry, got %d", len(paged))
	}
}

package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/rodify-dispatch/internal/config"
	"github.com/nurpe/rodify-dispatch/internal/db"
	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

// TestPostgresCodeMatchesIDAfterRollback needs a disposable database in
// TEST_DB_DSN.
func TestPostgresCodeMatchesIDAfterRollback(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	database, err := db.New(&config.Config{
		Environment: "test",
		DB:          config.DBConfig{Driver: config.DriverPostgres, DSN: dsn, Seed: true},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	repo := repository.NewRepository(database)
	ctx := context.Background()

	customer, err := repo.FirstUser(ctx)
	if err != nil {
		t.Fatalf("first user: %v", err)
	}
	input := batteryInCiudad()
	input.CustomerID = customer.ID

	clock := func() time.Time { return daytime }
	pricing := NewPricingService(repo, time.UTC, "USD")

	// The insert succeeds and the event fails, so the transaction rolls back
	// after consuming a sequence value.
	boom := errors.New("event store down")
	failing := &failingEventStore{Store: repo, err: boom}
	if _, err := NewLifecycleService(failing, pricing, clock).Create(ctx, input); !errors.Is(err, boom) {
		t.Fatalf("expected event failure, got %v", err)
	}

	lifecycle := NewLifecycleService(repo, pricing, clock)
	for i := 0; i < 2; i++ {
		svc, err := lifecycle.Create(ctx, input)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if svc.Code != model.FormatServiceCode(svc.ID) {
			t.Fatalf("code %s does not match id %d", svc.Code, svc.ID)
		}
		loaded, err := lifecycle.GetByCode(ctx, svc.Code)
		if err != nil {
			t.Fatalf("get by code: %v", err)
		}
		if loaded.ID != svc.ID {
			t.Fatalf("stored id %d, created id %d", loaded.ID, svc.ID)
		}
	}
}

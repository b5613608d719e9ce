package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	catalogRepo "github.com/fekuna/omnipos-catalog-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func TestNewMemorySharesOneStore(t *testing.T) {
	repos, err := New(DriverMemory, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	id := uuid.NewString()
	entry := &model.CatalogEntry{
		BaseModel:  model.NewBaseModel(id, "u1", now),
		TenantID:   "t1",
		Name:       "Mug",
		IsActive:   true,
		TrackStock: true,
		Item:       &model.SimpleItem{SKU: "MUG", Stock: model.Stock{StockQuantity: 5}},
	}
	if err := repos.Catalog.Create(ctx, entry); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := repos.Inventory.GetCounter(ctx, model.EntryCounter("t1", id, ""))
	if err != nil {
		t.Fatalf("inventory cannot see catalog entry: %v", err)
	}
	if snap.StockQuantity != 5 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestNewPostgres(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	repos, err := New(DriverPostgres, sqlx.NewDb(mockDB, "pgx"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repos.Catalog.(*catalogRepo.PGRepository); !ok {
		t.Errorf("expected postgres catalog repository, got %T", repos.Catalog)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(DriverPostgres, nil); err == nil {
		t.Error("expected error without a database")
	}
	if _, err := New("sqlite", nil); err == nil {
		t.Error("expected error for unknown driver")
	}
}

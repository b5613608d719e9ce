package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewPGRepository(sqlx.NewDb(mockDB, "pgx")), mock
}

func TestStatementCarriesPrecondition(t *testing.T) {
	tests := []struct {
		name string
		ref  model.CounterRef
		op   ledgerOp
		want string
	}{
		{"simple reserve", model.EntryCounter("t1", "e1", ""), opReserve,
			"UPDATE catalog_entries SET stock_quantity = stock_quantity - $1, sold_quantity = sold_quantity + $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4 AND kind = 'SIMPLE' AND is_deleted = false AND stock_quantity >= $1 RETURNING stock_quantity, sold_quantity"},
		{"variant release", model.EntryCounter("t1", "e1", "v1"), opRelease,
			"UPDATE catalog_variants v SET stock_quantity = v.stock_quantity + $1, sold_quantity = v.sold_quantity - $1, updated_at = $2 FROM catalog_entries e WHERE v.id = $3 AND v.entry_id = $4 AND e.id = v.entry_id AND e.tenant_id = $5 AND e.is_deleted = false AND v.sold_quantity >= $1 RETURNING v.stock_quantity, v.sold_quantity"},
		{"ticket reserve", model.TicketCounter("t1", "tt1"), opReserve,
			"UPDATE ticket_types SET quantity_sold = quantity_sold + $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4 AND is_deleted = false AND quantity_sold + $1 <= capacity RETURNING capacity - quantity_sold, quantity_sold"},
		{"ticket adjust", model.TicketCounter("t1", "tt1"), opAdjust,
			"UPDATE ticket_types SET capacity = capacity + $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4 AND is_deleted = false AND capacity + $1 >= quantity_sold RETURNING capacity - quantity_sold, quantity_sold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := targetFor(tt.ref).statement(tt.op); got != tt.want {
				t.Errorf("statement mismatch\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestPGReserveWritesMovementInSameTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := model.EntryCounter("t1", "e1", "")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE catalog_entries SET stock_quantity = stock_quantity - $1")).
		WithArgs(int64(3), now, "e1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "sold_quantity"}).AddRow(7, 3))
	mock.ExpectExec("INSERT INTO inventory_movements").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := &model.InventoryMovement{ID: "m1", MovementType: model.MovementSale, Quantity: 3, CreatedAt: now}
	snap, err := repo.Reserve(context.Background(), ref, 3, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.StockQuantity != 7 || snap.SoldQuantity != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if m.StockBefore != 10 || m.SoldBefore != 0 || m.TargetID != "e1" || m.Scope != model.CounterScopeEntry {
		t.Errorf("movement not filled from returned row: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGReserveInsufficientRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	ref := model.EntryCounter("t1", "e1", "")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE catalog_entries").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "sold_quantity"}))
	mock.ExpectRollback()
	mock.ExpectQuery("SELECT kind").
		WithArgs("e1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "stock_quantity", "sold_quantity"}).AddRow("SIMPLE", 2, 8))

	_, err := repo.Reserve(context.Background(), ref, 3, &model.InventoryMovement{CreatedAt: time.Now()})
	if !model.IsInsufficientInventoryError(err) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGReleaseMissingCounterIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	ref := model.TicketCounter("t1", "tt1")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE ticket_types").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "sold_quantity"}))
	mock.ExpectRollback()
	mock.ExpectQuery("FROM ticket_types").
		WithArgs("tt1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "sold_quantity"}))

	_, err := repo.Release(context.Background(), ref, 1, &model.InventoryMovement{CreatedAt: time.Now()})
	if !model.IsNotFoundError(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGReleaseOverRelease(t *testing.T) {
	repo, mock := newMockRepo(t)
	ref := model.EntryCounter("t1", "e1", "v1")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE catalog_variants v").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "sold_quantity"}))
	mock.ExpectRollback()
	mock.ExpectQuery("FROM catalog_variants v").
		WithArgs("v1", "e1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "sold_quantity"}).AddRow(5, 1))

	_, err := repo.Release(context.Background(), ref, 2, &model.InventoryMovement{CreatedAt: time.Now()})
	if !model.IsOverReleaseError(err) {
		t.Fatalf("expected OverReleaseError, got %v", err)
	}
}

func TestPGListMovementsFiltersByReference(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM inventory_movements WHERE tenant_id = $1 AND reference_id = $2")).
		WithArgs("t1", "order-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM inventory_movements WHERE tenant_id = $1 AND reference_id = $2 ORDER BY created_at DESC, id")).
		ExpectQuery().
		WithArgs("t1", "order-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "scope", "target_id", "movement_type", "quantity", "reference_type", "reference_id"}).
			AddRow("m1", "t1", "ticket_type", "tt1", "sale", 2, "order", "order-1"))

	mvs, count, err := repo.ListMovements(context.Background(), &dto.MovementFilters{TenantID: "t1", ReferenceID: "order-1"})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if count != 1 || len(mvs) != 1 {
		t.Fatalf("expected 1 movement, got %d/%d", len(mvs), count)
	}
	if mvs[0].ReferenceID == nil || *mvs[0].ReferenceID != "order-1" || mvs[0].Quantity != 2 {
		t.Errorf("unexpected movement %+v", mvs[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

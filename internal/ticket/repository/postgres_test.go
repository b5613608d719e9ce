package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
	"github.com/jmoiron/sqlx"
)

var ticketCols = []string{
	"id", "tenant_id", "event_id", "name", "base_price", "cost", "sale_price", "sale_start", "sale_end",
	"capacity", "quantity_sold", "is_active", "created_at", "updated_at", "created_by", "updated_by", "is_deleted", "deleted_at",
}

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewPGRepository(sqlx.NewDb(mockDB, "pgx")), mock
}

func TestPGFindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ticket_types")).
		WithArgs("tt1", "t1").
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow(
			"tt1", "t1", "ev1", "GA", "50.00", "0", "40.00", nil, now,
			100, 12, true, now, now, "u1", nil, false, nil,
		))

	tt, err := repo.FindByID(context.Background(), "t1", "tt1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt.Available() != 88 || tt.SalePrice == nil || tt.SaleStart != nil || *tt.CreatedBy != "u1" {
		t.Errorf("unexpected ticket type %+v", tt)
	}
}

func TestPGFindAllCountsThenSelects(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM ticket_types WHERE tenant_id = $1 AND is_deleted = false AND event_id = $2")).
		WithArgs("t1", "ev1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectPrepare(regexp.QuoteMeta("ORDER BY created_at, id LIMIT 10 OFFSET 10")).
		ExpectQuery().
		WithArgs("t1", "ev1").
		WillReturnRows(sqlmock.NewRows(ticketCols))

	types, count, err := repo.FindAll(context.Background(), &dto.TicketTypeFilters{TenantID: "t1", EventID: "ev1", Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(types) != 0 {
		t.Errorf("unexpected result count=%d types=%v", count, types)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGUpdateDoesNotTouchCounters(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE ticket_types").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.TicketType{BaseModel: model.BaseModel{ID: "tt1"}, TenantID: "t1"})
	if !model.IsNotFoundError(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateStatementHasNoCounterColumns(t *testing.T) {
	for _, col := range []string{"capacity", "quantity_sold"} {
		if regexp.MustCompile(`\b` + col + `\b`).MatchString(updateQuery) {
			t.Errorf("update must not write %s", col)
		}
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket/dto"
	"github.com/jmoiron/sqlx"
)

const ticketColumns = `id, tenant_id, event_id, name, base_price, cost, sale_price, sale_start, sale_end,
	capacity, quantity_sold, is_active, created_at, updated_at, created_by, updated_by, is_deleted, deleted_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ ticket.Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, t *model.TicketType) error {
	query := `
        INSERT INTO ticket_types (
            id, tenant_id, event_id, name, base_price, cost, sale_price, sale_start, sale_end,
            capacity, quantity_sold, is_active, created_at, updated_at, created_by, updated_by
        )
        VALUES (
            :id, :tenant_id, :event_id, :name, :base_price, :cost, :sale_price, :sale_start, :sale_end,
            :capacity, :quantity_sold, :is_active, :created_at, :updated_at, :created_by, :updated_by
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.TicketType, error) {
	var t model.TicketType
	query := `SELECT ` + ticketColumns + ` FROM ticket_types
        WHERE id = $1 AND tenant_id = $2 AND is_deleted = false LIMIT 1`
	err := r.DB.GetContext(ctx, &t, query, id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("ticket_type", id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.TicketTypeFilters) ([]model.TicketType, int, error) {
	var count int

	conditions := []string{"tenant_id = :tenant_id", "is_deleted = false"}
	args := map[string]interface{}{"tenant_id": f.TenantID}
	if f.EventID != "" {
		conditions = append(conditions, "event_id = :event_id")
		args["event_id"] = f.EventID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM ticket_types"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM ticket_types%s ORDER BY created_at, id", ticketColumns, whereClause)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var types []model.TicketType
	if err := nstmt.SelectContext(ctx, &types, args); err != nil {
		return nil, 0, err
	}
	return types, count, nil
}

// updateQuery writes structural columns only; capacity and quantity_sold belong to the ledger.
const updateQuery = `
        UPDATE ticket_types
        SET name = :name,
            base_price = :base_price,
            cost = :cost,
            sale_price = :sale_price,
            sale_start = :sale_start,
            sale_end = :sale_end,
            is_active = :is_active,
            updated_at = :updated_at,
            updated_by = :updated_by
        WHERE id = :id AND tenant_id = :tenant_id AND is_deleted = false
    `

func (r *PGRepository) Update(ctx context.Context, t *model.TicketType) error {
	res, err := r.DB.NamedExecContext(ctx, updateQuery, t)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewNotFoundError("ticket_type", t.ID)
	}
	return nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error {
	query := `
        UPDATE ticket_types
        SET is_deleted = true, deleted_at = $1, updated_at = $1, updated_by = $2
        WHERE id = $3 AND tenant_id = $4 AND is_deleted = false
    `
	res, err := r.DB.ExecContext(ctx, query, at, model.ActorRef(actorID), id, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewNotFoundError("ticket_type", id)
	}
	return nil
}

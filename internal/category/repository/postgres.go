package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const categoryColumns = `id, tenant_id, parent_id, name, description, sort_order, is_active,
	created_at, updated_at, created_by, updated_by, is_deleted, deleted_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ category.Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, tenant_id, parent_id, name, description, sort_order, is_active,
            created_at, updated_at, created_by, updated_by)
        VALUES (:id, :tenant_id, :parent_id, :name, :description, :sort_order, :is_active,
            :created_at, :updated_at, :created_by, :updated_by)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Category, error) {
	var c model.Category
	query := `SELECT ` + categoryColumns + ` FROM categories
        WHERE id = $1 AND tenant_id = $2 AND is_deleted = false LIMIT 1`
	err := r.DB.GetContext(ctx, &c, query, id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("category", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	conditions := []string{"tenant_id = :tenant_id", "is_deleted = false"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM categories"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM categories%s ORDER BY sort_order ASC, name ASC, id", categoryColumns, whereClause)
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

	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            description = :description,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at,
            updated_by = :updated_by
        WHERE id = :id AND tenant_id = :tenant_id AND is_deleted = false
    `
	res, err := r.DB.NamedExecContext(ctx, query, c)
	if err != nil {
		return err
	}
	return expectRow(res, c.ID)
}

func (r *PGRepository) SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE categories
        SET is_deleted = true, deleted_at = $1, updated_at = $1, updated_by = $2
        WHERE id = $3 AND tenant_id = $4 AND is_deleted = false
    `, at, model.ActorRef(actorID), id, tenantID)
	if err != nil {
		return err
	}
	if err := expectRow(res, id); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE categories
        SET parent_id = NULL, updated_at = $1, updated_by = $2
        WHERE parent_id = $3 AND tenant_id = $4 AND is_deleted = false
    `, at, model.ActorRef(actorID), id, tenantID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) ExistingIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM categories
        WHERE tenant_id = ? AND is_deleted = false AND id IN (?)`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	var found []string
	err = r.DB.SelectContext(ctx, &found, r.DB.Rebind(query), args...)
	return found, err
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewNotFoundError("category", id)
	}
	return nil
}

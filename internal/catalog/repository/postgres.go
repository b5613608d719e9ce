package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	uniqueViolation = "23505"

	nameIndex = "uq_catalog_entries_tenant_name"
	skuIndex  = "uq_catalog_entries_tenant_sku"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ catalog.Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, e *model.CatalogEntry) error {
	row, variants := toRows(e)

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO catalog_entries (
            id, tenant_id, category_id, kind, name, is_active, track_stock, sku,
            base_price, cost, sale_price, sale_start, sale_end, stock_quantity, sold_quantity,
            options, created_at, updated_at, created_by, updated_by
        )
        VALUES (
            :id, :tenant_id, :category_id, :kind, :name, :is_active, :track_stock, :sku,
            :base_price, :cost, :sale_price, :sale_start, :sale_end, :stock_quantity, :sold_quantity,
            :options, :created_at, :updated_at, :created_by, :updated_by
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return mapWriteError(e, err)
	}
	for _, v := range variants {
		if _, err := tx.NamedExecContext(ctx, insertVariantQuery, v); err != nil {
			return fmt.Errorf("insert variant %s: %w", v.SKU, err)
		}
	}
	return tx.Commit()
}

const insertVariantQuery = `
        INSERT INTO catalog_variants (
            id, entry_id, position, sku, attributes, base_price, cost, sale_price,
            sale_start, sale_end, stock_quantity, sold_quantity, created_at, updated_at
        )
        VALUES (
            :id, :entry_id, :position, :sku, :attributes, :base_price, :cost, :sale_price,
            :sale_start, :sale_end, :stock_quantity, :sold_quantity, :created_at, :updated_at
        )
    `

// upsertVariantQuery leaves the counter columns of an existing variant untouched; only a
// freshly inserted variant takes its stock from the payload.
const upsertVariantQuery = insertVariantQuery + `
        ON CONFLICT (id) DO UPDATE SET
            position = EXCLUDED.position,
            sku = EXCLUDED.sku,
            attributes = EXCLUDED.attributes,
            base_price = EXCLUDED.base_price,
            cost = EXCLUDED.cost,
            sale_price = EXCLUDED.sale_price,
            sale_start = EXCLUDED.sale_start,
            sale_end = EXCLUDED.sale_end,
            updated_at = EXCLUDED.updated_at
        WHERE catalog_variants.entry_id = EXCLUDED.entry_id
    `

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.CatalogEntry, error) {
	var row entryRow
	query := `SELECT ` + entryColumns + ` FROM catalog_entries
        WHERE id = $1 AND tenant_id = $2 AND is_deleted = false LIMIT 1`
	err := r.DB.GetContext(ctx, &row, query, id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("catalog_entry", id)
		}
		return nil, err
	}

	entries, err := r.hydrate(ctx, []entryRow{row})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]model.CatalogEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+entryColumns+` FROM catalog_entries
        WHERE tenant_id = ? AND is_deleted = false AND id IN (?)`, tenantID, ids)
	if err != nil {
		return nil, err
	}

	var rows []entryRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.EntryFilters) ([]model.CatalogEntry, int, error) {
	var count int

	conditions := []string{"tenant_id = :tenant_id", "is_deleted = false"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.Kind != "" {
		conditions = append(conditions, "kind = :kind")
		args["kind"] = f.Kind
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR sku ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	// Count
	countQuery := "SELECT count(*) FROM catalog_entries" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	// List
	orderBy := "created_at DESC"
	if f.SortBy != "" {
		switch f.SortBy {
		case "name":
			orderBy = "lower(name)"
		default:
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT %s FROM catalog_entries%s ORDER BY %s, id", entryColumns, whereClause, orderBy)
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

	var entryRows []entryRow
	if err := nstmt.SelectContext(ctx, &entryRows, args); err != nil {
		return nil, 0, err
	}

	entries, err := r.hydrate(ctx, entryRows)
	if err != nil {
		return nil, 0, err
	}
	return entries, count, nil
}

// hydrate loads variants for the VARIABLE rows in one query and assembles entries in row order.
func (r *PGRepository) hydrate(ctx context.Context, rows []entryRow) ([]model.CatalogEntry, error) {
	var variableIDs []string
	for _, row := range rows {
		if row.Kind == model.EntryKindVariable {
			variableIDs = append(variableIDs, row.ID)
		}
	}

	byEntry := make(map[string][]variantRow)
	if len(variableIDs) > 0 {
		query, args, err := sqlx.In(`SELECT `+variantColumns+` FROM catalog_variants
            WHERE entry_id IN (?) ORDER BY entry_id, position`, variableIDs)
		if err != nil {
			return nil, err
		}
		var variants []variantRow
		if err := r.DB.SelectContext(ctx, &variants, r.DB.Rebind(query), args...); err != nil {
			return nil, err
		}
		for _, v := range variants {
			byEntry[v.EntryID] = append(byEntry[v.EntryID], v)
		}
	}

	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		e, err := fromRows(row, byEntry[row.ID])
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (r *PGRepository) Update(ctx context.Context, e *model.CatalogEntry) error {
	row, variants := toRows(e)

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        UPDATE catalog_entries
        SET category_id = :category_id,
            name = :name,
            is_active = :is_active,
            track_stock = :track_stock,
            sku = :sku,
            base_price = :base_price,
            cost = :cost,
            sale_price = :sale_price,
            sale_start = :sale_start,
            sale_end = :sale_end,
            options = :options,
            updated_at = :updated_at,
            updated_by = :updated_by
        WHERE id = :id AND tenant_id = :tenant_id AND is_deleted = false
    `
	res, err := tx.NamedExecContext(ctx, query, row)
	if err != nil {
		return mapWriteError(e, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return model.NewNotFoundError("catalog_entry", e.ID)
	}

	if e.Kind() == model.EntryKindVariable {
		keep := make([]string, len(variants))
		for i, v := range variants {
			keep[i] = v.ID
		}
		del, args, err := sqlx.In(`DELETE FROM catalog_variants WHERE entry_id = ? AND id NOT IN (?)`, e.ID, keep)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(del), args...); err != nil {
			return fmt.Errorf("delete removed variants: %w", err)
		}
		for _, v := range variants {
			if _, err := tx.NamedExecContext(ctx, upsertVariantQuery, v); err != nil {
				return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
			}
		}
	}
	return tx.Commit()
}

func (r *PGRepository) SoftDelete(ctx context.Context, tenantID, id, actorID string, at time.Time) error {
	query := `
        UPDATE catalog_entries
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
		return model.NewNotFoundError("catalog_entry", id)
	}
	return nil
}

func (r *PGRepository) FindIDsByName(ctx context.Context, tenantID, name string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM catalog_entries
        WHERE tenant_id = $1 AND lower(name) = lower($2) AND is_deleted = false ORDER BY id`
	err := r.DB.SelectContext(ctx, &ids, query, tenantID, name)
	return ids, err
}

func (r *PGRepository) FindIDsBySKU(ctx context.Context, tenantID, sku string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM catalog_entries
        WHERE tenant_id = $1 AND kind = 'SIMPLE' AND lower(sku) = lower($2) AND is_deleted = false ORDER BY id`
	err := r.DB.SelectContext(ctx, &ids, query, tenantID, sku)
	return ids, err
}

func (r *PGRepository) ExistingIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM catalog_entries
        WHERE tenant_id = ? AND is_deleted = false AND id IN (?)`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	var found []string
	err = r.DB.SelectContext(ctx, &found, r.DB.Rebind(query), args...)
	return found, err
}

// mapWriteError turns a unique index violation that slipped past the pre-write checks
// into the same ConflictError those checks produce.
func mapWriteError(e *model.CatalogEntry, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case nameIndex:
		return model.NewConflictError("name", e.Name)
	case skuIndex:
		if s, ok := e.Simple(); ok {
			return model.NewConflictError("sku", s.SKU)
		}
	}
	return model.NewConflictError("id", e.ID)
}

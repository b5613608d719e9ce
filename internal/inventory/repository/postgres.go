package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type ledgerOp int

const (
	opReserve ledgerOp = iota
	opRelease
	opAdjust
)

// counterTarget describes where one counter pair lives. $1 is always the quantity,
// $2 the update time and identity arguments start at $3.
type counterTarget struct {
	table     string
	from      string
	col       string
	where     string
	args      []interface{}
	ticket    bool
	returning string
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ inventory.Repository = (*PGRepository)(nil)

func (r *PGRepository) Reserve(ctx context.Context, ref model.CounterRef, quantity int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	return r.mutate(ctx, ref, opReserve, quantity, m)
}

func (r *PGRepository) Release(ctx context.Context, ref model.CounterRef, quantity int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	return r.mutate(ctx, ref, opRelease, quantity, m)
}

func (r *PGRepository) Adjust(ctx context.Context, ref model.CounterRef, delta int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	return r.mutate(ctx, ref, opAdjust, delta, m)
}

func targetFor(ref model.CounterRef) counterTarget {
	switch {
	case ref.Scope == model.CounterScopeTicketType:
		return counterTarget{
			table:     "ticket_types",
			where:     "id = $3 AND tenant_id = $4 AND is_deleted = false",
			args:      []interface{}{ref.ID, ref.TenantID},
			ticket:    true,
			returning: "capacity - quantity_sold, quantity_sold",
		}
	case ref.VariantID != "":
		return counterTarget{
			table:     "catalog_variants v",
			from:      " FROM catalog_entries e",
			col:       "v.",
			where:     "v.id = $3 AND v.entry_id = $4 AND e.id = v.entry_id AND e.tenant_id = $5 AND e.is_deleted = false",
			args:      []interface{}{ref.VariantID, ref.ID, ref.TenantID},
			returning: "v.stock_quantity, v.sold_quantity",
		}
	default:
		return counterTarget{
			table:     "catalog_entries",
			where:     "id = $3 AND tenant_id = $4 AND kind = 'SIMPLE' AND is_deleted = false",
			args:      []interface{}{ref.ID, ref.TenantID},
			returning: "stock_quantity, sold_quantity",
		}
	}
}

// clauses returns the SET list and the precondition for op. The precondition is what
// makes the write atomic: a row that no longer satisfies it is simply not updated.
func (t counterTarget) clauses(op ledgerOp) (set, cond string) {
	c := t.col
	if t.ticket {
		switch op {
		case opReserve:
			return "quantity_sold = quantity_sold + $1", "quantity_sold + $1 <= capacity"
		case opRelease:
			return "quantity_sold = quantity_sold - $1", "quantity_sold >= $1"
		default:
			return "capacity = capacity + $1", "capacity + $1 >= quantity_sold"
		}
	}
	switch op {
	case opReserve:
		return fmt.Sprintf("stock_quantity = %[1]sstock_quantity - $1, sold_quantity = %[1]ssold_quantity + $1", c),
			c + "stock_quantity >= $1"
	case opRelease:
		return fmt.Sprintf("stock_quantity = %[1]sstock_quantity + $1, sold_quantity = %[1]ssold_quantity - $1", c),
			c + "sold_quantity >= $1"
	default:
		return fmt.Sprintf("stock_quantity = %[1]sstock_quantity + $1", c),
			c + "stock_quantity + $1 >= 0"
	}
}

func (t counterTarget) statement(op ledgerOp) string {
	set, cond := t.clauses(op)
	return fmt.Sprintf("UPDATE %s SET %s, updated_at = $2%s WHERE %s AND %s RETURNING %s",
		t.table, set, t.from, t.where, cond, t.returning)
}

func (r *PGRepository) mutate(ctx context.Context, ref model.CounterRef, op ledgerOp, quantity int64, m *model.InventoryMovement) (*model.CounterSnapshot, error) {
	t := targetFor(ref)

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	args := append([]interface{}{quantity, m.CreatedAt}, t.args...)
	var after model.CounterSnapshot
	err = tx.QueryRowxContext(ctx, t.statement(op), args...).Scan(&after.StockQuantity, &after.SoldQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			tx.Rollback()
			return nil, r.classify(ctx, ref, op, quantity)
		}
		return nil, fmt.Errorf("failed to update counter %s: %w", ref, err)
	}
	after.Ref = ref

	fillMovement(m, ref, op, quantity, &after)
	if err := insertMovement(ctx, tx, m); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &after, nil
}

// classify explains why the conditional update matched no row. It only reads; the
// outcome it reports was already decided by the write.
func (r *PGRepository) classify(ctx context.Context, ref model.CounterRef, op ledgerOp, quantity int64) error {
	current, err := r.GetCounter(ctx, ref)
	if err != nil {
		return err
	}
	switch op {
	case opRelease:
		return model.NewOverReleaseError(ref, quantity, current.SoldQuantity)
	case opAdjust:
		return model.NewInsufficientInventoryError(ref, -quantity, current.StockQuantity)
	default:
		return model.NewInsufficientInventoryError(ref, quantity, current.StockQuantity)
	}
}

// fillMovement derives the before values from the returned after values, which is exact
// because the whole change happened in one statement.
func fillMovement(m *model.InventoryMovement, ref model.CounterRef, op ledgerOp, quantity int64, after *model.CounterSnapshot) {
	m.TenantID = ref.TenantID
	m.Scope = ref.Scope
	m.TargetID = ref.ID
	m.VariantID = nil
	if ref.VariantID != "" {
		v := ref.VariantID
		m.VariantID = &v
	}
	m.StockAfter = after.StockQuantity
	m.SoldAfter = after.SoldQuantity
	switch op {
	case opReserve:
		m.StockBefore = after.StockQuantity + quantity
		m.SoldBefore = after.SoldQuantity - quantity
	case opRelease:
		m.StockBefore = after.StockQuantity - quantity
		m.SoldBefore = after.SoldQuantity + quantity
	default:
		m.StockBefore = after.StockQuantity - quantity
		m.SoldBefore = after.SoldQuantity
	}
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, tenant_id, scope, target_id, variant_id,
            movement_type, quantity, stock_before, stock_after, sold_before, sold_after,
            reference_type, reference_id, created_by, created_at
        )
        VALUES (
            :id, :tenant_id, :scope, :target_id, :variant_id,
            :movement_type, :quantity, :stock_before, :stock_after, :sold_before, :sold_after,
            :reference_type, :reference_id, :created_by, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

type entryCounterRow struct {
	Kind          model.EntryKind `db:"kind"`
	StockQuantity int64           `db:"stock_quantity"`
	SoldQuantity  int64           `db:"sold_quantity"`
}

func (r *PGRepository) GetCounter(ctx context.Context, ref model.CounterRef) (*model.CounterSnapshot, error) {
	snap := &model.CounterSnapshot{Ref: ref}

	switch {
	case ref.Scope == model.CounterScopeTicketType:
		query := `
            SELECT capacity - quantity_sold AS stock_quantity, quantity_sold AS sold_quantity
            FROM ticket_types
            WHERE id = $1 AND tenant_id = $2 AND is_deleted = false`
		var row entryCounterRow
		if err := r.DB.GetContext(ctx, &row, query, ref.ID, ref.TenantID); err != nil {
			return nil, notFoundOr(err, ref)
		}
		snap.StockQuantity, snap.SoldQuantity = row.StockQuantity, row.SoldQuantity

	case ref.VariantID != "":
		query := `
            SELECT v.stock_quantity, v.sold_quantity
            FROM catalog_variants v
            JOIN catalog_entries e ON e.id = v.entry_id
            WHERE v.id = $1 AND v.entry_id = $2 AND e.tenant_id = $3 AND e.is_deleted = false`
		var row entryCounterRow
		if err := r.DB.GetContext(ctx, &row, query, ref.VariantID, ref.ID, ref.TenantID); err != nil {
			return nil, notFoundOr(err, ref)
		}
		snap.StockQuantity, snap.SoldQuantity = row.StockQuantity, row.SoldQuantity

	default:
		query := `
            SELECT kind, COALESCE(stock_quantity, 0) AS stock_quantity, COALESCE(sold_quantity, 0) AS sold_quantity
            FROM catalog_entries
            WHERE id = $1 AND tenant_id = $2 AND is_deleted = false`
		var row entryCounterRow
		if err := r.DB.GetContext(ctx, &row, query, ref.ID, ref.TenantID); err != nil {
			return nil, notFoundOr(err, ref)
		}
		if row.Kind == model.EntryKindVariable {
			return nil, model.NewStructuralError("variant_id", "required for VARIABLE entries", ref.ID)
		}
		snap.StockQuantity, snap.SoldQuantity = row.StockQuantity, row.SoldQuantity
	}
	return snap, nil
}

func notFoundOr(err error, ref model.CounterRef) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(ref)
	}
	return err
}

func notFound(ref model.CounterRef) error {
	if ref.Scope == model.CounterScopeEntry && ref.VariantID != "" {
		return model.NewNotFoundError(ref.Resource(), ref.VariantID)
	}
	return model.NewNotFoundError(ref.Resource(), ref.ID)
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var items []model.InventoryMovement
	var count int

	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.Scope != "" {
		conditions = append(conditions, "scope = :scope")
		args["scope"] = f.Scope
	}
	if f.TargetID != "" {
		conditions = append(conditions, "target_id = :target_id")
		args["target_id"] = f.TargetID
	}
	if f.VariantID != "" {
		conditions = append(conditions, "variant_id = :variant_id")
		args["variant_id"] = f.VariantID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM inventory_movements" + whereClause
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

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC, id"
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

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

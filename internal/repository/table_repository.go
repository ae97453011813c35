package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jarimae/jarimae-api/internal/model"
)

// TableRepo provides access to a store's dining tables.  All write
// operations verify that the acting owner owns the containing store
// and return ErrForbidden otherwise.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

// Create inserts a table into a store owned by ownerID.
func (r *TableRepo) Create(ctx context.Context, storeID, ownerID uint64, name string, seats int) (uint64, error) {
	if err := r.checkStoreOwner(ctx, storeID, ownerID); err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO dining_tables (store_id, name, seats) VALUES (?,?,?)`,
		storeID, name, seats)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update applies a partial update to a table owned (via its store)
// by ownerID.  Returns sql.ErrNoRows when the table does not exist.
func (r *TableRepo) Update(ctx context.Context, tableID, ownerID uint64, name *string, seats *int, isActive *bool) error {
	if err := r.checkTableOwner(ctx, tableID, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE dining_tables SET
		    name = COALESCE(?, name),
		    seats = COALESCE(?, seats),
		    is_active = COALESCE(?, is_active)
		 WHERE id = ?`,
		name, seats, isActive, tableID)
	return err
}

// Delete removes a table.  Reservations keep their table_id as a
// historical reference; the FK is ON DELETE SET NULL.
func (r *TableRepo) Delete(ctx context.Context, tableID, ownerID uint64) error {
	if err := r.checkTableOwner(ctx, tableID, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, `DELETE FROM dining_tables WHERE id = ?`, tableID)
	return err
}

// ListByStore returns all tables of a store ordered by name.
func (r *TableRepo) ListByStore(ctx context.Context, storeID uint64) ([]model.DiningTable, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, store_id, name, seats, is_active, created_at, updated_at
		 FROM dining_tables WHERE store_id = ? ORDER BY name`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.DiningTable, 0)
	for rows.Next() {
		var t model.DiningTable
		if err := rows.Scan(&t.ID, &t.StoreID, &t.Name, &t.Seats, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *TableRepo) checkStoreOwner(ctx context.Context, storeID, ownerID uint64) error {
	var actualOwner uint64
	err := r.DB.QueryRowContext(ctx, `SELECT owner_id FROM stores WHERE id = ?`, storeID).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStoreNotFound
		}
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	return nil
}

func (r *TableRepo) checkTableOwner(ctx context.Context, tableID, ownerID uint64) error {
	var actualOwner uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT s.owner_id FROM dining_tables t JOIN stores s ON s.id = t.store_id WHERE t.id = ?`,
		tableID).Scan(&actualOwner)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	return nil
}

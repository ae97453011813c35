package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jarimae/jarimae-api/internal/model"
)

// MenuRepo provides access to a store's menu items.  Writes verify
// store ownership the same way TableRepo does.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// Create inserts a menu item into a store owned by ownerID.
func (r *MenuRepo) Create(ctx context.Context, storeID, ownerID uint64, name string, description *string, price int64) (uint64, error) {
	var actualOwner uint64
	err := r.DB.QueryRowContext(ctx, `SELECT owner_id FROM stores WHERE id = ?`, storeID).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrStoreNotFound
		}
		return 0, err
	}
	if actualOwner != ownerID {
		return 0, ErrForbidden
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO menu_items (store_id, name, description, price) VALUES (?,?,?,?)`,
		storeID, name, description, price)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update applies a partial update to a menu item after checking
// ownership through the containing store.
func (r *MenuRepo) Update(ctx context.Context, itemID, ownerID uint64, name, description *string, price *int64, isAvailable *bool) error {
	if err := r.checkItemOwner(ctx, itemID, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE menu_items SET
		    name = COALESCE(?, name),
		    description = COALESCE(?, description),
		    price = COALESCE(?, price),
		    is_available = COALESCE(?, is_available)
		 WHERE id = ?`,
		name, description, price, isAvailable, itemID)
	return err
}

// Delete removes a menu item.
func (r *MenuRepo) Delete(ctx context.Context, itemID, ownerID uint64) error {
	if err := r.checkItemOwner(ctx, itemID, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, itemID)
	return err
}

// ListByStore returns a store's menu ordered by name.
func (r *MenuRepo) ListByStore(ctx context.Context, storeID uint64) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, store_id, name, description, price, is_available, created_at, updated_at
		 FROM menu_items WHERE store_id = ? ORDER BY name`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var (
			m           model.MenuItem
			description sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.StoreID, &m.Name, &description, &m.Price,
			&m.IsAvailable, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			d := description.String
			m.Description = &d
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *MenuRepo) checkItemOwner(ctx context.Context, itemID, ownerID uint64) error {
	var actualOwner uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT s.owner_id FROM menu_items m JOIN stores s ON s.id = m.store_id WHERE m.id = ?`,
		itemID).Scan(&actualOwner)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	return nil
}

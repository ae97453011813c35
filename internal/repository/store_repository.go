package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/model"
)

// StoreRepo provides access to stores and their weekly business
// hours.  Ownership checks live here so handlers can rely on the
// ErrForbidden sentinel instead of re-querying owner ids.
type StoreRepo struct{ DB *sql.DB }

func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{DB: db} }

const storeColumns = `id, owner_id, name, description, address, phone, capacity,
       rating_avg, review_count, is_active, created_at, updated_at`

func scanStore(row *sql.Row) (*model.Store, error) {
	var (
		s           model.Store
		description sql.NullString
		phone       sql.NullString
	)
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &description, &s.Address, &phone,
		&s.Capacity, &s.RatingAvg, &s.ReviewCount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if description.Valid {
		d := description.String
		s.Description = &d
	}
	if phone.Valid {
		p := phone.String
		s.Phone = &p
	}
	return &s, nil
}

// Create inserts a new store for the owner and returns its ID.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO stores (owner_id, name, description, address, phone, capacity) VALUES (?,?,?,?,?,?)`,
		s.OwnerID, s.Name, s.Description, s.Address, s.Phone, s.Capacity)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID loads a single store.  Returns ErrStoreNotFound when the
// id does not resolve.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (*model.Store, error) {
	return scanStore(r.DB.QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = ?`, id))
}

// UpdateOwned applies a partial update to a store after verifying
// that the caller owns it.  Nil fields are left untouched via
// COALESCE.  Returns ErrStoreNotFound or ErrForbidden accordingly.
func (r *StoreRepo) UpdateOwned(ctx context.Context, id, ownerID uint64, name, description, address, phone *string, capacity *int, isActive *bool) error {
	var actualOwner uint64
	err := r.DB.QueryRowContext(ctx, `SELECT owner_id FROM stores WHERE id = ?`, id).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStoreNotFound
		}
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE stores SET
		    name = COALESCE(?, name),
		    description = COALESCE(?, description),
		    address = COALESCE(?, address),
		    phone = COALESCE(?, phone),
		    capacity = COALESCE(?, capacity),
		    is_active = COALESCE(?, is_active)
		 WHERE id = ?`,
		name, description, address, phone, capacity, isActive, id)
	return err
}

// List returns active stores, optionally filtered by a name
// substring, newest first.
func (r *StoreRepo) List(ctx context.Context, nameFilter string) ([]model.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE is_active = 1`
	args := []interface{}{}
	if nameFilter != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+nameFilter+"%")
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stores := make([]model.Store, 0)
	for rows.Next() {
		var (
			s           model.Store
			description sql.NullString
			phone       sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &description, &s.Address, &phone,
			&s.Capacity, &s.RatingAvg, &s.ReviewCount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			d := description.String
			s.Description = &d
		}
		if phone.Valid {
			p := phone.String
			s.Phone = &p
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// HoursByStore loads the weekly business-hours table for a store as
// both raw rows (for responses) and the booking.WeekHours view the
// slot validator consumes.
func (r *StoreRepo) HoursByStore(ctx context.Context, storeID uint64) ([]model.BusinessHour, booking.WeekHours, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, store_id, day_of_week, is_closed, open_time, close_time, break_start, break_end
		 FROM business_hours WHERE store_id = ? ORDER BY day_of_week`, storeID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	entries := make([]model.BusinessHour, 0, 7)
	week := booking.WeekHours{}
	for rows.Next() {
		var (
			h          model.BusinessHour
			openTime   sql.NullString
			closeTime  sql.NullString
			breakStart sql.NullString
			breakEnd   sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.StoreID, &h.DayOfWeek, &h.IsClosed,
			&openTime, &closeTime, &breakStart, &breakEnd); err != nil {
			return nil, nil, err
		}
		h.OpenTime = trimSeconds(openTime.String)
		h.CloseTime = trimSeconds(closeTime.String)
		if breakStart.Valid {
			b := trimSeconds(breakStart.String)
			h.BreakStart = &b
		}
		if breakEnd.Valid {
			b := trimSeconds(breakEnd.String)
			h.BreakEnd = &b
		}
		entries = append(entries, h)
		week[time.Weekday(h.DayOfWeek)] = booking.DayHours{
			IsClosed:   h.IsClosed,
			Open:       h.OpenTime,
			Close:      h.CloseTime,
			BreakStart: h.BreakStart,
			BreakEnd:   h.BreakEnd,
		}
	}
	return entries, week, rows.Err()
}

// ReplaceHours swaps a store's full weekly hours table inside one
// transaction after verifying ownership.
func (r *StoreRepo) ReplaceHours(ctx context.Context, storeID, ownerID uint64, entries []model.BusinessHour) error {
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
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM business_hours WHERE store_id = ?`, storeID); err != nil {
		return err
	}
	for _, h := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO business_hours (store_id, day_of_week, is_closed, open_time, close_time, break_start, break_end)
			 VALUES (?,?,?,?,?,?,?)`,
			storeID, h.DayOfWeek, h.IsClosed, nullIfEmpty(h.OpenTime), nullIfEmpty(h.CloseTime), h.BreakStart, h.BreakEnd); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// RecalculateRatingTx refreshes the store's rating aggregate from
// the reviews table within the caller's transaction.  Invoked after
// a review insert so the aggregate and the review commit together.
func (r *StoreRepo) RecalculateRatingTx(ctx context.Context, tx *sql.Tx, storeID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE stores s SET
		    s.rating_avg   = COALESCE((SELECT AVG(v.rating) FROM reviews v WHERE v.store_id = s.id), 0),
		    s.review_count = (SELECT COUNT(*) FROM reviews v WHERE v.store_id = s.id)
		 WHERE s.id = ?`, storeID)
	return err
}

// trimSeconds normalizes a MySQL TIME string ("HH:MM:SS") into the
// "HH:MM" form used across the API.
func trimSeconds(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

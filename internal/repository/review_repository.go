package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jarimae/jarimae-api/internal/model"
)

// ReviewRepo provides access to reviews.  A reservation carries at
// most one review; the unique key on reservation_id backs both the
// can_review flag and the ErrReviewExists sentinel.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// ExistsForReservation reports whether the reservation already has a
// review.
func (r *ReviewRepo) ExistsForReservation(ctx context.Context, reservationID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE reservation_id = ?`, reservationID).Scan(&n)
	return n > 0, err
}

// CreateTx inserts a review within the caller's transaction so the
// store rating recalculation commits together with it.  Duplicate
// reviews surface as ErrReviewExists (MySQL error 1062).
func (r *ReviewRepo) CreateTx(ctx context.Context, tx *sql.Tx, rev *model.Review) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (reservation_id, store_id, customer_id, rating, comment) VALUES (?,?,?,?,?)`,
		rev.ReservationID, rev.StoreID, rev.CustomerID, rev.Rating, rev.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrReviewExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return nil
}

// ListByStore returns a store's reviews, newest first.
func (r *ReviewRepo) ListByStore(ctx context.Context, storeID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, reservation_id, store_id, customer_id, rating, comment, created_at
		 FROM reviews WHERE store_id = ? ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.ReservationID, &rev.StoreID, &rev.CustomerID,
			&rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

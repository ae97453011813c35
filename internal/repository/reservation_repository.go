package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/model"
)

// ReservationRepo provides access to reservations.  Write paths are
// Tx methods executed inside a caller-owned transaction so the
// conflict count and the eventual write share the same isolation
// scope; two concurrent requests for one slot serialize on the
// FOR UPDATE lock instead of racing past the check.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// ReservationInfo is a reservation row joined with the store and
// customer facts the lifecycle logic and response shaping need.
type ReservationInfo struct {
	model.Reservation
	StoreOwnerID  uint64
	StoreName     string
	StoreCapacity int
	CustomerName  string
	CustomerPhone *string
}

const reservationSelect = `SELECT r.id, r.reservation_number, r.store_id, r.customer_id, r.table_id,
       r.reservation_date, TIME_FORMAT(r.reservation_time, '%H:%i'),
       r.party_size, r.estimated_duration, r.deposit_amount, r.total_amount,
       r.special_requests, r.contact_name, r.contact_phone,
       r.status, r.cancellation_reason, r.confirmed_at, r.completed_at,
       r.created_at, r.updated_at,
       s.owner_id, s.name, s.capacity,
       u.name, u.phone
FROM reservations r
JOIN stores s ON s.id = r.store_id
JOIN users u ON u.id = r.customer_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*ReservationInfo, error) {
	var (
		info               ReservationInfo
		tableID            sql.NullInt64
		estimatedDuration  sql.NullInt64
		totalAmount        sql.NullInt64
		specialRequests    sql.NullString
		contactName        sql.NullString
		contactPhone       sql.NullString
		cancellationReason sql.NullString
		confirmedAt        sql.NullTime
		completedAt        sql.NullTime
		customerPhone      sql.NullString
	)
	err := row.Scan(
		&info.ID, &info.ReservationNumber, &info.StoreID, &info.CustomerID, &tableID,
		&info.ReservationDate, &info.ReservationTime,
		&info.PartySize, &estimatedDuration, &info.DepositAmount, &totalAmount,
		&specialRequests, &contactName, &contactPhone,
		&info.Status, &cancellationReason, &confirmedAt, &completedAt,
		&info.CreatedAt, &info.UpdatedAt,
		&info.StoreOwnerID, &info.StoreName, &info.StoreCapacity,
		&info.CustomerName, &customerPhone,
	)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		v := uint64(tableID.Int64)
		info.TableID = &v
	}
	if estimatedDuration.Valid {
		v := int(estimatedDuration.Int64)
		info.EstimatedDuration = &v
	}
	if totalAmount.Valid {
		v := totalAmount.Int64
		info.TotalAmount = &v
	}
	if specialRequests.Valid {
		v := specialRequests.String
		info.SpecialRequests = &v
	}
	if contactName.Valid {
		v := contactName.String
		info.ContactName = &v
	}
	if contactPhone.Valid {
		v := contactPhone.String
		info.ContactPhone = &v
	}
	if cancellationReason.Valid {
		v := cancellationReason.String
		info.CancellationReason = &v
	}
	if confirmedAt.Valid {
		v := confirmedAt.Time
		info.ConfirmedAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		info.CompletedAt = &v
	}
	if customerPhone.Valid {
		v := customerPhone.String
		info.CustomerPhone = &v
	}
	return &info, nil
}

// FindByID loads one reservation with its joined store and customer
// facts.  Returns ErrReservationNotFound when the id does not
// resolve.
func (r *ReservationRepo) FindByID(ctx context.Context, id uint64) (*ReservationInfo, error) {
	info, err := scanReservation(r.DB.QueryRowContext(ctx, reservationSelect+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return info, nil
}

// FindByIDTx is FindByID inside a transaction, locking the
// reservation row for the duration of the lifecycle operation.
func (r *ReservationRepo) FindByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*ReservationInfo, error) {
	info, err := scanReservation(tx.QueryRowContext(ctx, reservationSelect+` WHERE r.id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return info, nil
}

// CountActiveSlotTx counts PENDING/CONFIRMED reservations holding an
// exact (store, date, time) slot, excluding excludeID (0 when
// creating).  The FOR UPDATE lock keeps the count valid until the
// transaction writes.
func (r *ReservationRepo) CountActiveSlotTx(ctx context.Context, tx *sql.Tx, storeID uint64, date time.Time, clock string, excludeID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE store_id = ? AND reservation_date = ? AND reservation_time = ?
		   AND status IN ('PENDING','CONFIRMED') AND id <> ?
		 FOR UPDATE`,
		storeID, date.Format("2006-01-02"), clock, excludeID).Scan(&n)
	return n, err
}

// CreateTx inserts a new reservation within the transaction and
// populates the generated ID and timestamps on the record.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.Reservation) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reservations
		   (reservation_number, store_id, customer_id, table_id,
		    reservation_date, reservation_time, party_size, estimated_duration,
		    deposit_amount, special_requests, contact_name, contact_phone,
		    status, confirmed_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ReservationNumber, rec.StoreID, rec.CustomerID, rec.TableID,
		rec.ReservationDate.Format("2006-01-02"), rec.ReservationTime, rec.PartySize, rec.EstimatedDuration,
		rec.DepositAmount, rec.SpecialRequests, rec.ContactName, rec.ContactPhone,
		rec.Status, rec.ConfirmedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM reservations WHERE id = ?`, rec.ID).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// UpdateDetailsTx persists the merged detail fields of a reservation
// within the transaction.  Status and side-effect columns are not
// touched here; that is UpdateStatusTx's job.
func (r *ReservationRepo) UpdateDetailsTx(ctx context.Context, tx *sql.Tx, rec *model.Reservation) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET
		    reservation_date = ?, reservation_time = ?, party_size = ?,
		    table_id = ?, estimated_duration = ?,
		    special_requests = ?, contact_name = ?, contact_phone = ?
		 WHERE id = ?`,
		rec.ReservationDate.Format("2006-01-02"), rec.ReservationTime, rec.PartySize,
		rec.TableID, rec.EstimatedDuration,
		rec.SpecialRequests, rec.ContactName, rec.ContactPhone,
		rec.ID)
	return err
}

// UpdateStatusTx persists a validated status change together with
// its side-effect columns in a single statement, keeping the
// transition atomic.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, change booking.StatusChange) error {
	var err error
	switch change.Status {
	case booking.StatusConfirmed:
		_, err = tx.ExecContext(ctx,
			`UPDATE reservations SET status = ?, confirmed_at = ? WHERE id = ?`,
			change.Status, change.ConfirmedAt, id)
	case booking.StatusCompleted:
		if change.TotalAmount != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE reservations SET status = ?, completed_at = ?, total_amount = ? WHERE id = ?`,
				change.Status, change.CompletedAt, change.TotalAmount, id)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE reservations SET status = ?, completed_at = ? WHERE id = ?`,
				change.Status, change.CompletedAt, id)
		}
	case booking.StatusCancelled:
		_, err = tx.ExecContext(ctx,
			`UPDATE reservations SET status = ?, cancellation_reason = ?, total_amount = NULL WHERE id = ?`,
			change.Status, change.CancellationReason, id)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE reservations SET status = ? WHERE id = ?`, change.Status, id)
	}
	return err
}

// ListByCustomer returns all reservations of one customer, newest
// slot first.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]ReservationInfo, error) {
	return r.list(ctx, ` WHERE r.customer_id = ? ORDER BY r.reservation_date DESC, r.reservation_time DESC`, customerID)
}

// ListByStoreForOwner returns all reservations of a store after
// verifying the caller owns it.  Returns ErrStoreNotFound when the
// store does not exist and ErrForbidden on an ownership mismatch.
func (r *ReservationRepo) ListByStoreForOwner(ctx context.Context, storeID, ownerID uint64) ([]ReservationInfo, error) {
	var actualOwner uint64
	err := r.DB.QueryRowContext(ctx, `SELECT owner_id FROM stores WHERE id = ?`, storeID).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}
	return r.list(ctx, ` WHERE r.store_id = ? ORDER BY r.reservation_date DESC, r.reservation_time DESC`, storeID)
}

func (r *ReservationRepo) list(ctx context.Context, where string, args ...interface{}) ([]ReservationInfo, error) {
	rows, err := r.DB.QueryContext(ctx, reservationSelect+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	infos := make([]ReservationInfo, 0)
	for rows.Next() {
		info, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, rows.Err()
}

// TakenSlot is one occupied time on a store's availability view.
type TakenSlot struct {
	Time   string `json:"time"`
	Status string `json:"status"`
}

// TakenSlots lists the active reservation times of a store on one
// date, for the public availability endpoint.
func (r *ReservationRepo) TakenSlots(ctx context.Context, storeID uint64, date time.Time) ([]TakenSlot, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT TIME_FORMAT(reservation_time, '%H:%i'), status FROM reservations
		 WHERE store_id = ? AND reservation_date = ? AND status IN ('PENDING','CONFIRMED')
		 ORDER BY reservation_time`,
		storeID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]TakenSlot, 0)
	for rows.Next() {
		var s TakenSlot
		if err := rows.Scan(&s.Time, &s.Status); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

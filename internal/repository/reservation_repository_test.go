package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarimae/jarimae-api/internal/booking"
)

var reservationCols = []string{
	"id", "reservation_number", "store_id", "customer_id", "table_id",
	"reservation_date", "reservation_time",
	"party_size", "estimated_duration", "deposit_amount", "total_amount",
	"special_requests", "contact_name", "contact_phone",
	"status", "cancellation_reason", "confirmed_at", "completed_at",
	"created_at", "updated_at",
	"owner_id", "store_name", "capacity",
	"customer_name", "customer_phone",
}

func pendingRow(id uint64) *sqlmock.Rows {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(reservationCols).AddRow(
		id, "JM-20260910-AB12CD", 7, 42, nil,
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), "18:00",
		4, nil, 0, nil,
		nil, nil, nil,
		"PENDING", nil, nil, nil,
		now, now,
		9, "Jarimae Kitchen", 20,
		"Kim Minji", nil,
	)
}

func TestCountActiveSlotTx_ExcludesSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservations")).
		WithArgs(uint64(7), "2026-09-10", "18:00", uint64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	repo := NewReservationRepo(db)
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	n, err := repo.CountActiveSlotTx(ctx, tx, 7,
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), "18:00", 55)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT r.id").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	repo := NewReservationRepo(db)
	_, err = repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDTx_LocksRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(55)).
		WillReturnRows(pendingRow(55))

	repo := NewReservationRepo(db)
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	info, err := repo.FindByIDTx(ctx, tx, 55)
	require.NoError(t, err)
	assert.Equal(t, uint64(55), info.ID)
	assert.Equal(t, "18:00", info.ReservationTime)
	assert.Equal(t, uint64(9), info.StoreOwnerID)
	assert.Equal(t, 20, info.StoreCapacity)
	assert.Nil(t, info.TableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusTx_ConfirmStampsTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ?, confirmed_at = ? WHERE id = ?")).
		WithArgs(booking.StatusConfirmed, &ts, uint64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewReservationRepo(db)
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = repo.UpdateStatusTx(ctx, tx, 55, booking.StatusChange{
		Status:      booking.StatusConfirmed,
		ConfirmedAt: &ts,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusTx_CancelClearsTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	reason := "customer asked"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ?, cancellation_reason = ?, total_amount = NULL WHERE id = ?")).
		WithArgs(booking.StatusCancelled, &reason, uint64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewReservationRepo(db)
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = repo.UpdateStatusTx(ctx, tx, 55, booking.StatusChange{
		Status:             booking.StatusCancelled,
		CancellationReason: &reason,
		ClearTotalAmount:   true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusTx_CompleteWithTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 9, 10, 20, 0, 0, 0, time.UTC)
	total := int64(85000)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ?, completed_at = ?, total_amount = ? WHERE id = ?")).
		WithArgs(booking.StatusCompleted, &ts, &total, uint64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewReservationRepo(db)
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = repo.UpdateStatusTx(ctx, tx, 55, booking.StatusChange{
		Status:      booking.StatusCompleted,
		CompletedAt: &ts,
		TotalAmount: &total,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStoreForOwner_OwnershipMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT owner_id FROM stores WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(9))

	repo := NewReservationRepo(db)
	_, err = repo.ListByStoreForOwner(context.Background(), 7, 10)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

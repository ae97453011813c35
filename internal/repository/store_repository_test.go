package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoursByStore_NormalizesTimeStrings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "store_id", "day_of_week", "is_closed", "open_time", "close_time", "break_start", "break_end",
	}).
		AddRow(1, 7, 0, true, "", "", nil, nil).
		AddRow(2, 7, 3, false, "10:00:00", "21:00:00", "15:00:00", "17:00:00")

	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE store_id = ?")).
		WithArgs(uint64(7)).WillReturnRows(rows)

	repo := NewStoreRepo(db)
	entries, week, err := repo.HoursByStore(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// MySQL TIME comes back with seconds; the API works in HH:MM.
	assert.Equal(t, "10:00", entries[1].OpenTime)
	assert.Equal(t, "21:00", entries[1].CloseTime)
	require.NotNil(t, entries[1].BreakStart)
	assert.Equal(t, "15:00", *entries[1].BreakStart)

	sunday := week[time.Sunday]
	assert.True(t, sunday.IsClosed)
	wednesday := week[time.Wednesday]
	assert.False(t, wednesday.IsClosed)
	assert.Equal(t, "10:00", wednesday.Open)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOwned_ForeignOwnerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT owner_id FROM stores WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(9))

	repo := NewStoreRepo(db)
	err = repo.UpdateOwned(context.Background(), 7, 10, nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM stores WHERE id = ?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewStoreRepo(db)
	_, err = repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrStoreNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/config"
	"github.com/jarimae/jarimae-api/internal/repository"
)

// Fixture: reservation 55 at store 7 (owner 9, capacity 20), made by
// customer 42 for 2030-05-15 18:00, PENDING, no deposit.
var fixtureDate = time.Date(2030, 5, 15, 0, 0, 0, 0, time.UTC)

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

func pendingRow(date time.Time) *sqlmock.Rows {
	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(reservationCols).AddRow(
		55, "JM-20300515-AB12CD", 7, 42, nil,
		date, "18:00",
		4, nil, 0, nil,
		nil, nil, nil,
		"PENDING", nil, nil, nil,
		created, created,
		9, "Jarimae Kitchen", 20,
		"Kim Minji", nil,
	)
}

func storeRow() *sqlmock.Rows {
	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "description", "address", "phone", "capacity",
		"rating_avg", "review_count", "is_active", "created_at", "updated_at",
	}).AddRow(7, 9, "Jarimae Kitchen", nil, "Seoul, Mapo-gu", nil, 20, 4.5, 12, true, created, created)
}

func hoursRows(day int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "store_id", "day_of_week", "is_closed", "open_time", "close_time", "break_start", "break_end",
	}).AddRow(1, 7, day, false, "10:00:00", "21:00:00", nil, nil)
}

func newTestHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewReservationHandler(config.Config{},
		repository.NewReservationRepo(db),
		repository.NewStoreRepo(db),
		repository.NewReviewRepo(db))
	return h, mock
}

func newCtx(method, target, body string, userID uint64, role booking.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected structured error, got %s", rec.Body.String())
	code, _ := e["code"].(string)
	return code
}

func TestUpdateStatus_OwnerConfirmsPending(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ?, confirmed_at = ? WHERE id = ?")).
		WithArgs(booking.StatusConfirmed, sqlmock.AnyArg(), uint64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newCtx(http.MethodPatch, "/v1/reservations/55", `{"status":"CONFIRMED"}`, 9, booking.RoleOwner)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	item := body["item"].(map[string]interface{})
	assert.Equal(t, "CONFIRMED", item["status"])
	assert.NotNil(t, item["confirmed_at"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_ForeignCustomerGets403NotValidation(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))
	mock.ExpectRollback()

	// COMPLETED from PENDING would be an invalid transition, but the
	// outsider must see 403 before any state validation runs.
	c, rec := newCtx(http.MethodPatch, "/v1/reservations/55", `{"status":"COMPLETED"}`, 100, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_CustomerMayOnlyCancel(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))
	mock.ExpectRollback()

	c, rec := newCtx(http.MethodPatch, "/v1/reservations/55", `{"status":"CONFIRMED"}`, 42, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_InvalidTransitionRejected(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))
	mock.ExpectRollback()

	c, rec := newCtx(http.MethodPatch, "/v1/reservations/55", `{"status":"COMPLETED"}`, 9, booking.RoleOwner)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_CustomerCancelsPastReservation(t *testing.T) {
	h, mock := newTestHandler(t)

	past := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(past))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ?, cancellation_reason = ?, total_amount = NULL WHERE id = ?")).
		WithArgs(booking.StatusCancelled, "no longer needed", uint64(55)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Cancellation authority carries no time condition: a customer may
	// close out a reservation whose slot has already passed.
	c, rec := newCtx(http.MethodPatch, "/v1/reservations/55",
		`{"status":"CANCELLED","cancellation_reason":"no longer needed"}`, 42, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	item := body["item"].(map[string]interface{})
	assert.Equal(t, "CANCELLED", item["status"])
	assert.Equal(t, "no longer needed", item["cancellation_reason"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PartySizeExceedsCapacity(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stores WHERE id = ?")).
		WithArgs(uint64(7)).WillReturnRows(storeRow())
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE store_id = ?")).
		WithArgs(uint64(7)).WillReturnRows(hoursRows(int(fixtureDate.Weekday())))

	body := fmt.Sprintf(`{"store_id":7,"reservation_date":%q,"reservation_time":"18:00","party_size":30}`,
		fixtureDate.Format("2006-01-02"))
	c, rec := newCtx(http.MethodPost, "/v1/reservations", body, 42, booking.RoleCustomer)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARTY_SIZE_EXCEEDS_CAPACITY", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OutsideBusinessHours(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stores WHERE id = ?")).
		WithArgs(uint64(7)).WillReturnRows(storeRow())
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE store_id = ?")).
		WithArgs(uint64(7)).WillReturnRows(hoursRows(int(fixtureDate.Weekday())))

	body := fmt.Sprintf(`{"store_id":7,"reservation_date":%q,"reservation_time":"22:30","party_size":4}`,
		fixtureDate.Format("2006-01-02"))
	c, rec := newCtx(http.MethodPost, "/v1/reservations", body, 42, booking.RoleCustomer)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OUTSIDE_BUSINESS_HOURS", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_SlotAlreadyTaken(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stores WHERE id = ?")).
		WithArgs(uint64(7)).WillReturnRows(storeRow())
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE store_id = ?")).
		WithArgs(uint64(7)).WillReturnRows(hoursRows(int(fixtureDate.Weekday())))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservations")).
		WithArgs(uint64(7), fixtureDate.Format("2006-01-02"), "18:00", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	body := fmt.Sprintf(`{"store_id":7,"reservation_date":%q,"reservation_time":"18:00","party_size":4}`,
		fixtureDate.Format("2006-01-02"))
	c, rec := newCtx(http.MethodPost, "/v1/reservations", body, 42, booking.RoleCustomer)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TIME_SLOT_UNAVAILABLE", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DepositConfirmsImmediately(t *testing.T) {
	h, mock := newTestHandler(t)

	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM stores WHERE id = ?")).
		WithArgs(uint64(7)).WillReturnRows(storeRow())
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE store_id = ?")).
		WithArgs(uint64(7)).WillReturnRows(hoursRows(int(fixtureDate.Weekday())))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservations")).
		WithArgs(uint64(7), fixtureDate.Format("2006-01-02"), "18:00", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnResult(sqlmock.NewResult(56, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM reservations WHERE id = ?")).
		WithArgs(uint64(56)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectCommit()

	body := fmt.Sprintf(`{"store_id":7,"reservation_date":%q,"reservation_time":"18:00","party_size":4,"deposit_amount":10000}`,
		fixtureDate.Format("2006-01-02"))
	c, rec := newCtx(http.MethodPost, "/v1/reservations", body, 42, booking.RoleCustomer)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := decode(t, rec)
	item := resp["item"].(map[string]interface{})
	assert.Equal(t, "CONFIRMED", item["status"])
	assert.NotNil(t, item["confirmed_at"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_PastReservationRejected(t *testing.T) {
	h, mock := newTestHandler(t)

	past := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(past))
	mock.ExpectRollback()

	c, rec := newCtx(http.MethodPut, "/v1/reservations/55", `{"party_size":2}`, 42, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RESERVATION_IN_PAST", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_SlotConflictExcludesSelf(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE store_id = ?")).
		WithArgs(uint64(7)).WillReturnRows(hoursRows(int(fixtureDate.Weekday())))
	// The conflict count must carry the reservation's own id so it can
	// keep its current slot.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservations")).
		WithArgs(uint64(7), fixtureDate.Format("2006-01-02"), "18:00", uint64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newCtx(http.MethodPut, "/v1/reservations/55", `{"party_size":6}`, 42, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	item := resp["item"].(map[string]interface{})
	assert.Equal(t, float64(6), item["party_size"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ForeignCallerForbidden(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))
	mock.ExpectRollback()

	c, rec := newCtx(http.MethodPut, "/v1/reservations/55", `{"party_size":2}`, 100, booking.RoleOwner)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_CustomerViewHidesCustomerBlock(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT r.id").WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))

	c, rec := newCtx(http.MethodGet, "/v1/reservations/55", "", 42, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	item := resp["item"].(map[string]interface{})
	_, hasCustomer := item["customer"]
	assert.False(t, hasCustomer, "customer block must be omitted for customer callers")

	perms := item["permissions"].(map[string]interface{})
	assert.Equal(t, true, perms["can_cancel"])
	assert.Equal(t, perms["can_cancel"], perms["can_modify"])
	assert.Equal(t, false, perms["can_review"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_OwnerViewIncludesCustomerBlock(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT r.id").WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))

	c, rec := newCtx(http.MethodGet, "/v1/reservations/55", "", 9, booking.RoleOwner)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	item := resp["item"].(map[string]interface{})
	customer := item["customer"].(map[string]interface{})
	assert.Equal(t, "Kim Minji", customer["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_ForeignCallerForbidden(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT r.id").WithArgs(uint64(55)).WillReturnRows(pendingRow(fixtureDate))

	c, rec := newCtx(http.MethodGet, "/v1/reservations/55", "", 100, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("55")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT r.id").WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	c, rec := newCtx(http.MethodGet, "/v1/reservations/99", "", 42, booking.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RESERVATION_NOT_FOUND", errCode(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

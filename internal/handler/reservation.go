package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/config"
	"github.com/jarimae/jarimae-api/internal/queue"
	"github.com/jarimae/jarimae-api/internal/repository"
	queuepub "github.com/jarimae/jarimae-api/internal/service"
	"github.com/jarimae/jarimae-api/internal/utils"
)

// ReservationHandler orchestrates the reservation lifecycle: creation,
// reads with derived permissions, detail edits and status transitions.
// Permission checks always run before state validation so an outsider
// probing someone else's reservation learns nothing about its state
// (403 wins over 400).  All write paths run inside a transaction that
// row-locks the reservation and the competing slot rows.
type ReservationHandler struct {
	Cfg          config.Config
	Reservations *repository.ReservationRepo
	Stores       *repository.StoreRepo
	Reviews      *repository.ReviewRepo
}

func NewReservationHandler(cfg config.Config, r *repository.ReservationRepo, s *repository.StoreRepo, v *repository.ReviewRepo) *ReservationHandler {
	if r == nil || s == nil || v == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Cfg: cfg, Reservations: r, Stores: s, Reviews: v}
}

// ----- DTOs -----

type createReservationReq struct {
	StoreID           uint64  `json:"store_id"`
	ReservationDate   string  `json:"reservation_date"` // "2006-01-02"
	ReservationTime   string  `json:"reservation_time"` // "HH:MM"
	PartySize         int     `json:"party_size"`
	TableID           *uint64 `json:"table_id"`
	EstimatedDuration *int    `json:"estimated_duration"`
	DepositAmount     *int64  `json:"deposit_amount"`
	SpecialRequests   *string `json:"special_requests"`
	ContactName       *string `json:"contact_name"`
	ContactPhone      *string `json:"contact_phone"`
}

type updateReservationReq struct {
	ReservationDate   *string `json:"reservation_date"`
	ReservationTime   *string `json:"reservation_time"`
	PartySize         *int    `json:"party_size"`
	TableID           *uint64 `json:"table_id"`
	EstimatedDuration *int    `json:"estimated_duration"`
	SpecialRequests   *string `json:"special_requests"`
	ContactName       *string `json:"contact_name"`
	ContactPhone      *string `json:"contact_phone"`
}

type updateStatusReq struct {
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellation_reason"`
	TotalAmount        *int64  `json:"total_amount"`
}

type storePart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type customerPart struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

type permissionsPart struct {
	CanModify bool `json:"can_modify"`
	CanCancel bool `json:"can_cancel"`
	CanReview bool `json:"can_review"`
}

type reservationView struct {
	ID                 uint64           `json:"id"`
	ReservationNumber  string           `json:"reservation_number"`
	Store              storePart        `json:"store"`
	Customer           *customerPart    `json:"customer,omitempty"`
	TableID            *uint64          `json:"table_id"`
	ReservationDate    string           `json:"reservation_date"`
	ReservationTime    string           `json:"reservation_time"`
	PartySize          int              `json:"party_size"`
	EstimatedDuration  *int             `json:"estimated_duration"`
	DepositAmount      int64            `json:"deposit_amount"`
	TotalAmount        *int64           `json:"total_amount"`
	SpecialRequests    *string          `json:"special_requests"`
	ContactName        *string          `json:"contact_name"`
	ContactPhone       *string          `json:"contact_phone"`
	Status             string           `json:"status"`
	CancellationReason *string          `json:"cancellation_reason"`
	ConfirmedAt        *time.Time       `json:"confirmed_at"`
	CompletedAt        *time.Time       `json:"completed_at"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Permissions        *permissionsPart `json:"permissions,omitempty"`
}

// accessOf assembles the permission facts from a loaded reservation.
func accessOf(info *repository.ReservationInfo, hasReview bool) booking.Access {
	return booking.Access{
		CustomerID:   info.CustomerID,
		StoreOwnerID: info.StoreOwnerID,
		Status:       booking.Status(info.Status),
		StartsAt:     booking.SlotStart(info.ReservationDate, info.ReservationTime),
		HasReview:    hasReview,
	}
}

// shapeReservation builds the API view of a reservation for the given
// caller.  Customers do not get their own contact block echoed back as
// a separate customer object; owners and admins see who is coming.
// withPerms controls whether the derived permissions block is
// included; list endpoints leave it out to keep rows lean.
func shapeReservation(info *repository.ReservationInfo, who booking.Caller, access booking.Access, withPerms bool, now time.Time) reservationView {
	v := reservationView{
		ID:                 info.ID,
		ReservationNumber:  info.ReservationNumber,
		Store:              storePart{ID: info.StoreID, Name: info.StoreName},
		TableID:            info.TableID,
		ReservationDate:    info.ReservationDate.Format("2006-01-02"),
		ReservationTime:    info.ReservationTime,
		PartySize:          info.PartySize,
		EstimatedDuration:  info.EstimatedDuration,
		DepositAmount:      info.DepositAmount,
		TotalAmount:        info.TotalAmount,
		SpecialRequests:    info.SpecialRequests,
		ContactName:        info.ContactName,
		ContactPhone:       info.ContactPhone,
		Status:             info.Status,
		CancellationReason: info.CancellationReason,
		ConfirmedAt:        info.ConfirmedAt,
		CompletedAt:        info.CompletedAt,
		CreatedAt:          info.CreatedAt,
		UpdatedAt:          info.UpdatedAt,
	}
	if who.Role != booking.RoleCustomer {
		v.Customer = &customerPart{ID: info.CustomerID, Name: info.CustomerName, Phone: info.CustomerPhone}
	}
	if withPerms {
		canCancel := booking.CanCancel(who, access, now)
		v.Permissions = &permissionsPart{
			CanModify: canCancel, // editable exactly while still cancellable
			CanCancel: canCancel,
			CanReview: booking.CanReview(who, access),
		}
	}
	return v
}

// validateSlot runs the pre-write checks shared by creation and detail
// edits: the slot must be in the future, inside business hours and the
// party must fit the store's capacity.  Conflict checking happens
// separately because it needs the transaction.
func (h *ReservationHandler) validateSlot(ctx context.Context, storeID uint64, capacity int, date time.Time, clock string, partySize int, now time.Time) *booking.Error {
	if !booking.SlotStart(date, clock).After(now) {
		return booking.NewError(booking.CodeReservationInPast, "the reservation time must be in the future")
	}
	_, week, err := h.Stores.HoursByStore(ctx, storeID)
	if err != nil {
		return booking.NewError(booking.CodeStoreClosed, "failed to load the store's business hours")
	}
	if e := week.Validate(date, clock, h.Cfg.EnforceBreakHours); e != nil {
		return e
	}
	if partySize > capacity {
		return booking.NewError(booking.CodePartySizeExceedsCapacity, "party size exceeds the store's capacity")
	}
	return nil
}

// Create handles POST /v1/reservations.  The new reservation starts as
// PENDING unless a deposit is captured up front, in which case it is
// born CONFIRMED with confirmed_at stamped.  The slot conflict count
// and the insert share one transaction.
func (h *ReservationHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StoreID == 0 || req.ReservationDate == "" || req.ReservationTime == "" || req.PartySize <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "store_id, reservation_date, reservation_time and party_size are required"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.ReservationDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation_date, expected YYYY-MM-DD"})
	}
	clock := strings.TrimSpace(req.ReservationTime)
	if _, err := booking.MinutesOfDay(clock); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation_time, expected HH:MM"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	store, err := h.Stores.GetByID(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !store.IsActive {
		return bizError(c, booking.NewError(booking.CodeStoreClosed, "the store is not accepting reservations"))
	}
	if e := h.validateSlot(ctx, store.ID, store.Capacity, date, clock, req.PartySize, now); e != nil {
		return bizError(c, e)
	}

	number, err := utils.NewReservationNumber(date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate reservation number"})
	}
	deposit := int64(0)
	if req.DepositAmount != nil && *req.DepositAmount > 0 {
		deposit = *req.DepositAmount
	}
	rec := repository.ReservationInfo{}
	rec.ReservationNumber = number
	rec.StoreID = store.ID
	rec.CustomerID = who.ID
	rec.TableID = req.TableID
	rec.ReservationDate = date
	rec.ReservationTime = clock
	rec.PartySize = req.PartySize
	rec.EstimatedDuration = req.EstimatedDuration
	rec.DepositAmount = deposit
	rec.SpecialRequests = req.SpecialRequests
	rec.ContactName = req.ContactName
	rec.ContactPhone = req.ContactPhone
	rec.Status = string(booking.StatusPending)
	if deposit > 0 {
		rec.Status = string(booking.StatusConfirmed)
		ts := now
		rec.ConfirmedAt = &ts
	}

	tx, err := h.Reservations.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	taken, err := h.Reservations.CountActiveSlotTx(ctx, tx, store.ID, date, clock, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if taken > 0 {
		return bizError(c, booking.NewError(booking.CodeTimeSlotUnavailable, "the requested time slot is already booked"))
	}
	if err := h.Reservations.CreateTx(ctx, tx, &rec.Reservation); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	rec.StoreOwnerID = store.OwnerID
	rec.StoreName = store.Name
	rec.StoreCapacity = store.Capacity
	access := accessOf(&rec, false)
	return c.JSON(http.StatusCreated, echo.Map{"item": shapeReservation(&rec, who, access, true, now)})
}

// Get handles GET /v1/reservations/:id.  The response includes the
// derived permissions block so clients can render their action buttons
// without re-implementing the rules.
func (h *ReservationHandler) Get(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	info, err := h.Reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return bizError(c, booking.NewError(booking.CodeReservationNotFound, "reservation not found"))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	hasReview := false
	if booking.Status(info.Status) == booking.StatusCompleted {
		hasReview, err = h.Reviews.ExistsForReservation(ctx, info.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	access := accessOf(info, hasReview)
	if !booking.CanView(who, access) {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": shapeReservation(info, who, access, true, time.Now().UTC())})
}

// Update handles PUT /v1/reservations/:id for detail edits (slot,
// party size, table, contact fields).  Only active reservations whose
// current slot still lies in the future may be edited; slot and party
// changes re-run the business-hours, capacity and conflict checks with
// the merged values, excluding the reservation itself from the
// conflict count.
func (h *ReservationHandler) Update(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.Reservations.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.Reservations.FindByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return bizError(c, booking.NewError(booking.CodeReservationNotFound, "reservation not found"))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	access := accessOf(info, false)
	if !booking.CanUpdate(who, access) {
		return forbidden(c)
	}
	if !access.Status.Active() {
		return bizError(c, booking.NewError(booking.CodeReservationNotModifiable, "only pending or confirmed reservations can be modified"))
	}
	if !access.StartsAt.After(now) {
		return bizError(c, booking.NewError(booking.CodeReservationInPast, "past reservations cannot be modified"))
	}

	// Merge the patch onto the current record.
	date := info.ReservationDate
	clock := info.ReservationTime
	partySize := info.PartySize
	slotChanged := false
	if req.ReservationDate != nil {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(*req.ReservationDate))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation_date, expected YYYY-MM-DD"})
		}
		date = d
		slotChanged = true
	}
	if req.ReservationTime != nil {
		t := strings.TrimSpace(*req.ReservationTime)
		if _, err := booking.MinutesOfDay(t); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation_time, expected HH:MM"})
		}
		clock = t
		slotChanged = true
	}
	if req.PartySize != nil {
		if *req.PartySize <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
		}
		partySize = *req.PartySize
		slotChanged = true
	}

	if slotChanged {
		if e := h.validateSlot(ctx, info.StoreID, info.StoreCapacity, date, clock, partySize, now); e != nil {
			return bizError(c, e)
		}
		taken, err := h.Reservations.CountActiveSlotTx(ctx, tx, info.StoreID, date, clock, info.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if taken > 0 {
			return bizError(c, booking.NewError(booking.CodeTimeSlotUnavailable, "the requested time slot is already booked"))
		}
	}

	info.ReservationDate = date
	info.ReservationTime = clock
	info.PartySize = partySize
	if req.TableID != nil {
		info.TableID = req.TableID
	}
	if req.EstimatedDuration != nil {
		info.EstimatedDuration = req.EstimatedDuration
	}
	if req.SpecialRequests != nil {
		info.SpecialRequests = req.SpecialRequests
	}
	if req.ContactName != nil {
		info.ContactName = req.ContactName
	}
	if req.ContactPhone != nil {
		info.ContactPhone = req.ContactPhone
	}

	if err := h.Reservations.UpdateDetailsTx(ctx, tx, &info.Reservation); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	access = accessOf(info, false)
	return c.JSON(http.StatusOK, echo.Map{"item": shapeReservation(info, who, access, true, now)})
}

// UpdateStatus handles PATCH /v1/reservations/:id for lifecycle
// transitions.  The permission check runs before the transition table
// so callers without authority get a 403 regardless of whether the
// requested transition would have been legal.  A successful transition
// is published to the message broker after commit for settlement and
// notification consumers.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	requested, ok := booking.ParseStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.Reservations.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	info, err := h.Reservations.FindByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return bizError(c, booking.NewError(booking.CodeReservationNotFound, "reservation not found"))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	access := accessOf(info, false)
	if !booking.CanUpdateStatus(who, access, requested) {
		return forbidden(c)
	}
	change, bizErr := booking.Transition(access.Status, requested, req.CancellationReason, req.TotalAmount, now)
	if bizErr != nil {
		return bizError(c, bizErr)
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, info.ID, change); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	previous := info.Status
	applyStatusChange(info, change)

	// Best effort: a broker outage must not fail the transition.
	go func(ev queue.ReservationStatusEvent) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepub.PublishReservationStatus(pubCtx, ev)
	}(statusEvent(info, previous, now))

	access = accessOf(info, false)
	return c.JSON(http.StatusOK, echo.Map{"item": shapeReservation(info, who, access, true, now)})
}

// applyStatusChange mirrors the committed column updates onto the
// in-memory record so the response reflects the new state without a
// re-read.
func applyStatusChange(info *repository.ReservationInfo, change booking.StatusChange) {
	info.Status = string(change.Status)
	if change.ConfirmedAt != nil {
		info.ConfirmedAt = change.ConfirmedAt
	}
	if change.CompletedAt != nil {
		info.CompletedAt = change.CompletedAt
	}
	if change.TotalAmount != nil {
		info.TotalAmount = change.TotalAmount
	}
	if change.Status == booking.StatusCancelled {
		info.CancellationReason = change.CancellationReason
	}
	if change.ClearTotalAmount {
		info.TotalAmount = nil
	}
}

func statusEvent(info *repository.ReservationInfo, previous string, now time.Time) queue.ReservationStatusEvent {
	return queue.ReservationStatusEvent{
		ReservationID:     info.ID,
		ReservationNumber: info.ReservationNumber,
		StoreID:           info.StoreID,
		StoreName:         info.StoreName,
		CustomerID:        info.CustomerID,
		ReservationDate:   info.ReservationDate.Format("2006-01-02"),
		ReservationTime:   info.ReservationTime,
		PartySize:         info.PartySize,
		PreviousStatus:    previous,
		Status:            info.Status,
		TotalAmount:       info.TotalAmount,
		OccurredAt:        now.Format(time.RFC3339),
	}
}

// ListMine handles GET /v1/my-reservations: everything the caller
// booked as a customer, newest slot first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	infos, err := h.Reservations.ListByCustomer(c.Request().Context(), who.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	now := time.Now().UTC()
	items := make([]reservationView, 0, len(infos))
	for i := range infos {
		items = append(items, shapeReservation(&infos[i], who, accessOf(&infos[i], false), false, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// ListForStore handles GET /v1/stores/:id/reservations for owners and
// admins.  Owners only see stores they own; admins see any store.
func (h *ReservationHandler) ListForStore(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	ctx := c.Request().Context()

	ownerID := who.ID
	if who.Role == booking.RoleAdmin {
		store, err := h.Stores.GetByID(ctx, storeID)
		if err != nil {
			if errors.Is(err, repository.ErrStoreNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		ownerID = store.OwnerID
	}
	infos, err := h.Reservations.ListByStoreForOwner(ctx, storeID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return forbidden(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	now := time.Now().UTC()
	items := make([]reservationView, 0, len(infos))
	for i := range infos {
		items = append(items, shapeReservation(&infos[i], who, accessOf(&infos[i], false), false, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/model"
	"github.com/jarimae/jarimae-api/internal/repository"
)

// ReviewHandler creates reviews for completed reservations and keeps
// the store rating aggregate in sync within the same transaction.
type ReviewHandler struct {
	Reservations *repository.ReservationRepo
	Reviews      *repository.ReviewRepo
	Stores       *repository.StoreRepo
}

func NewReviewHandler(r *repository.ReservationRepo, v *repository.ReviewRepo, s *repository.StoreRepo) *ReviewHandler {
	if r == nil || v == nil || s == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Reservations: r, Reviews: v, Stores: s}
}

type createReviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewView struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	StoreID       uint64    `json:"store_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// Create handles POST /v1/reservations/:id/review.  Only the customer
// who completed the reservation may review it, exactly once.
func (h *ReviewHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	req.Comment = strings.TrimSpace(req.Comment)

	ctx := c.Request().Context()
	info, err := h.Reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return bizError(c, booking.NewError(booking.CodeReservationNotFound, "reservation not found"))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	hasReview, err := h.Reviews.ExistsForReservation(ctx, info.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// Reviews are strictly first-person: only the reservation's customer
	// may write one, so admins get the same 403 as any other outsider.
	access := accessOf(info, hasReview)
	if who.ID != info.CustomerID {
		return forbidden(c)
	}
	if !booking.CanReview(who, access) {
		if hasReview {
			return c.JSON(http.StatusConflict, echo.Map{"error": "review already exists"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only completed reservations can be reviewed"})
	}

	rev := model.Review{
		ReservationID: info.ID,
		StoreID:       info.StoreID,
		CustomerID:    who.ID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}

	tx, err := h.Reviews.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Reviews.CreateTx(ctx, tx, &rev); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "review already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
	}
	if err := h.Stores.RecalculateRatingTx(ctx, tx, info.StoreID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update store rating"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{"item": reviewView{
		ID:            rev.ID,
		ReservationID: rev.ReservationID,
		StoreID:       rev.StoreID,
		Rating:        rev.Rating,
		Comment:       rev.Comment,
		CreatedAt:     time.Now().UTC(),
	}})
}

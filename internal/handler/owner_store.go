package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/booking"
	"github.com/jarimae/jarimae-api/internal/model"
	"github.com/jarimae/jarimae-api/internal/repository"
)

// OwnerHandler bundles repositories for owners to manage their stores,
// business hours, tables and menus.  All methods assume JWT auth and
// role validation ran in middleware.
type OwnerHandler struct {
	Stores *repository.StoreRepo
	Tables *repository.TableRepo
	Menus  *repository.MenuRepo
}

func NewOwnerHandler(s *repository.StoreRepo, t *repository.TableRepo, m *repository.MenuRepo) *OwnerHandler {
	if s == nil || t == nil || m == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{Stores: s, Tables: t, Menus: m}
}

type createStoreReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Address     string  `json:"address"`
	Phone       *string `json:"phone"`
	Capacity    int     `json:"capacity"`
}

type updateStoreReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Capacity    *int    `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

type hoursEntryReq struct {
	DayOfWeek  int     `json:"day_of_week"` // 0 = Sunday
	IsClosed   bool    `json:"is_closed"`
	OpenTime   string  `json:"open_time"`
	CloseTime  string  `json:"close_time"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

// CreateStore handles POST /v1/owner/stores.
func (h *OwnerHandler) CreateStore(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createStoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Address == "" || req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, address and a positive capacity are required"})
	}
	s := model.Store{
		OwnerID:     uid,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Capacity:    req.Capacity,
	}
	id, err := h.Stores.Create(c.Request().Context(), &s)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create store"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateStore handles PATCH /v1/owner/stores/:id with a partial update.
func (h *OwnerHandler) UpdateStore(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var req updateStoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	err = h.Stores.UpdateOwned(c.Request().Context(), id, uid,
		req.Name, req.Description, req.Address, req.Phone, req.Capacity, req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return forbidden(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update store"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplaceHours handles PUT /v1/owner/stores/:id/hours, swapping the
// store's full weekly hours table in one transaction.
func (h *OwnerHandler) ReplaceHours(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var body struct {
		Hours []hoursEntryReq `json:"hours"`
	}
	if err := c.Bind(&body); err != nil || len(body.Hours) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours is required"})
	}
	entries := make([]model.BusinessHour, 0, len(body.Hours))
	seen := make(map[int]bool, 7)
	for _, e := range body.Hours {
		if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_of_week must be 0 through 6"})
		}
		if seen[e.DayOfWeek] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate day_of_week entry"})
		}
		seen[e.DayOfWeek] = true
		if !e.IsClosed {
			open, errO := booking.MinutesOfDay(e.OpenTime)
			closeAt, errC := booking.MinutesOfDay(e.CloseTime)
			if errO != nil || errC != nil || open >= closeAt {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "open_time must precede close_time, HH:MM"})
			}
			if (e.BreakStart == nil) != (e.BreakEnd == nil) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "break_start and break_end must be set together"})
			}
		}
		entries = append(entries, model.BusinessHour{
			StoreID:    id,
			DayOfWeek:  e.DayOfWeek,
			IsClosed:   e.IsClosed,
			OpenTime:   strings.TrimSpace(e.OpenTime),
			CloseTime:  strings.TrimSpace(e.CloseTime),
			BreakStart: e.BreakStart,
			BreakEnd:   e.BreakEnd,
		})
	}
	err = h.Stores.ReplaceHours(c.Request().Context(), id, uid, entries)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return forbidden(c)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to replace hours"})
	}
	return c.NoContent(http.StatusNoContent)
}

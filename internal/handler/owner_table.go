package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/repository"
)

type createTableReq struct {
	Name  string `json:"name"`
	Seats int    `json:"seats"`
}

type updateTableReq struct {
	Name     *string `json:"name"`
	Seats    *int    `json:"seats"`
	IsActive *bool   `json:"is_active"`
}

// CreateTable handles POST /v1/owner/stores/:id/tables.
func (h *OwnerHandler) CreateTable(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Seats <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive seats count are required"})
	}
	id, err := h.Tables.Create(c.Request().Context(), storeID, uid, req.Name, req.Seats)
	if err != nil {
		return tableWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateTable handles PATCH /v1/owner/tables/:id.
func (h *OwnerHandler) UpdateTable(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req updateTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Seats != nil && *req.Seats <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be positive"})
	}
	if err := h.Tables.Update(c.Request().Context(), tableID, uid, req.Name, req.Seats, req.IsActive); err != nil {
		return tableWriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTable handles DELETE /v1/owner/tables/:id.  Reservations keep
// their historical table reference; the FK nulls it out.
func (h *OwnerHandler) DeleteTable(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), tableID, uid); err != nil {
		return tableWriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTables handles GET /v1/owner/stores/:id/tables.
func (h *OwnerHandler) ListTables(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	store, err := h.Stores.GetByID(c.Request().Context(), storeID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if store.OwnerID != uid {
		return forbidden(c)
	}
	tables, err := h.Tables.ListByStore(c.Request().Context(), storeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tables"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tables, "count": len(tables)})
}

func tableWriteError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrStoreNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}
	if errors.Is(err, repository.ErrForbidden) {
		return forbidden(c)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/repository"
)

type createMenuItemReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       int64   `json:"price"`
}

type updateMenuItemReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	IsAvailable *bool   `json:"is_available"`
}

// CreateMenuItem handles POST /v1/owner/stores/:id/menu.
func (h *OwnerHandler) CreateMenuItem(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var req createMenuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a non-negative price are required"})
	}
	id, err := h.Menus.Create(c.Request().Context(), storeID, uid, req.Name, req.Description, req.Price)
	if err != nil {
		return menuWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateMenuItem handles PATCH /v1/owner/menu/:id.
func (h *OwnerHandler) UpdateMenuItem(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	var req updateMenuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Price != nil && *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be non-negative"})
	}
	if err := h.Menus.Update(c.Request().Context(), itemID, uid, req.Name, req.Description, req.Price, req.IsAvailable); err != nil {
		return menuWriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMenuItem handles DELETE /v1/owner/menu/:id.
func (h *OwnerHandler) DeleteMenuItem(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	if err := h.Menus.Delete(c.Request().Context(), itemID, uid); err != nil {
		return menuWriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func menuWriteError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrStoreNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
	}
	if errors.Is(err, repository.ErrForbidden) {
		return forbidden(c)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

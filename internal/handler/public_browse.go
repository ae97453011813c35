package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/model"
	"github.com/jarimae/jarimae-api/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: store
// listings, store detail with hours and menu, and slot availability.
type PublicHandler struct {
	Stores       *repository.StoreRepo
	Menus        *repository.MenuRepo
	Reviews      *repository.ReviewRepo
	Reservations *repository.ReservationRepo
}

func NewPublicHandler(s *repository.StoreRepo, m *repository.MenuRepo, v *repository.ReviewRepo, r *repository.ReservationRepo) *PublicHandler {
	if s == nil || m == nil || v == nil || r == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Stores: s, Menus: m, Reviews: v, Reservations: r}
}

type storeListView struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Address     string  `json:"address"`
	Phone       *string `json:"phone"`
	Capacity    int     `json:"capacity"`
	RatingAvg   float64 `json:"rating_avg"`
	ReviewCount int     `json:"review_count"`
}

type hoursView struct {
	DayOfWeek  int     `json:"day_of_week"`
	IsClosed   bool    `json:"is_closed"`
	OpenTime   string  `json:"open_time"`
	CloseTime  string  `json:"close_time"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

type menuItemView struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       int64   `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

type reviewListView struct {
	ID        uint64    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toStoreListView(s model.Store) storeListView {
	return storeListView{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Address:     s.Address,
		Phone:       s.Phone,
		Capacity:    s.Capacity,
		RatingAvg:   s.RatingAvg,
		ReviewCount: s.ReviewCount,
	}
}

// ListStores handles GET /v1/stores with an optional ?name= filter.
func (h *PublicHandler) ListStores(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	stores, err := h.Stores.List(c.Request().Context(), name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stores"})
	}
	items := make([]storeListView, 0, len(stores))
	for _, s := range stores {
		items = append(items, toStoreListView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// GetStore handles GET /v1/stores/:id, returning the store with its
// weekly hours, menu and recent reviews in one response.
func (h *PublicHandler) GetStore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	ctx := c.Request().Context()
	store, err := h.Stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	entries, _, err := h.Stores.HoursByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load hours"})
	}
	menu, err := h.Menus.ListByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu"})
	}
	reviews, err := h.Reviews.ListByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reviews"})
	}

	hours := make([]hoursView, 0, len(entries))
	for _, e := range entries {
		hours = append(hours, hoursView{
			DayOfWeek:  e.DayOfWeek,
			IsClosed:   e.IsClosed,
			OpenTime:   e.OpenTime,
			CloseTime:  e.CloseTime,
			BreakStart: e.BreakStart,
			BreakEnd:   e.BreakEnd,
		})
	}
	menuItems := make([]menuItemView, 0, len(menu))
	for _, m := range menu {
		menuItems = append(menuItems, menuItemView{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Price:       m.Price,
			IsAvailable: m.IsAvailable,
		})
	}
	reviewItems := make([]reviewListView, 0, len(reviews))
	for _, r := range reviews {
		reviewItems = append(reviewItems, reviewListView{
			ID:        r.ID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":    toStoreListView(*store),
		"hours":   hours,
		"menu":    menuItems,
		"reviews": reviewItems,
	})
}

// Availability handles GET /v1/stores/:id/availability?date=YYYY-MM-DD,
// returning the store's hours for that day plus the already taken
// slots so clients can render a picker.
func (h *PublicHandler) Availability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(c.QueryParam("date")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required, YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	if _, err := h.Stores.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	_, week, err := h.Stores.HoursByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load hours"})
	}
	taken, err := h.Reservations.TakenSlots(ctx, id, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}

	day, ok := week[date.Weekday()]
	resp := echo.Map{
		"date":        date.Format("2006-01-02"),
		"is_closed":   !ok || day.IsClosed,
		"taken_slots": taken,
	}
	if ok && !day.IsClosed {
		resp["open_time"] = day.Open
		resp["close_time"] = day.Close
		if day.BreakStart != nil && day.BreakEnd != nil {
			resp["break_start"] = *day.BreakStart
			resp["break_end"] = *day.BreakEnd
		}
	}
	return c.JSON(http.StatusOK, resp)
}

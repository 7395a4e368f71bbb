package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/service"
)

// BookingHandler serves the seeker booking endpoints and owner confirmation.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(b *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

// Create handles POST /v1/bookings.  The request context is not bounded by
// the usual five seconds because receipt generation has its own budget.
func (h *BookingHandler) Create(c echo.Context) error {
	seeker, ok := seekerFrom(c)
	if !ok {
		return forbidden(c)
	}
	var in service.CreateBookingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Bookings.Create(c.Request().Context(), seeker, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListMine handles GET /v1/bookings/my, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	seeker, ok := seekerFrom(c)
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListMine(ctx, seeker)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Cancel handles DELETE /v1/bookings/:id.  Confirmed bookings stay.
func (h *BookingHandler) Cancel(c echo.Context) error {
	seeker, ok := seekerFrom(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.Cancel(ctx, seeker, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Receipt handles GET /v1/bookings/:id/receipt
func (h *BookingHandler) Receipt(c echo.Context) error {
	seeker, ok := seekerFrom(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rc, err := h.Bookings.Receipt(ctx, seeker, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rc)
}

// Confirm handles POST /v1/owner/bookings/:id/confirm
func (h *BookingHandler) Confirm(c echo.Context) error {
	owner, ok := ownerFrom(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.Confirm(ctx, owner, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

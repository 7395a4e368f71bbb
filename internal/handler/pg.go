package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/service"
)

// PGHandler serves listing browse, owner management and ratings.
type PGHandler struct {
	Props    *service.PropertyService
	Ratings  *service.RatingService
	Bookings *service.BookingService
}

func NewPGHandler(props *service.PropertyService, ratings *service.RatingService, bookings *service.BookingService) *PGHandler {
	return &PGHandler{Props: props, Ratings: ratings, Bookings: bookings}
}

// Search handles GET /v1/pgs?area=&minRating=&sharing=&sort=&limit=
func (h *PGHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Props.Search(ctx, service.SearchParams{
		Area:        c.QueryParam("area"),
		MinRating:   c.QueryParam("minRating"),
		SharingKind: c.QueryParam("sharing"),
		Sort:        c.QueryParam("sort"),
		Limit:       c.QueryParam("limit"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Top handles GET /v1/pgs/top?limit=
func (h *PGHandler) Top(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Props.ListTop(ctx, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/pgs/:id
func (h *PGHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Props.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /v1/owner/pgs
func (h *PGHandler) Create(c echo.Context) error {
	owner, ok := ownerFrom(c)
	if !ok {
		return forbidden(c)
	}
	var in service.CreatePGInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Props.Create(ctx, owner, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ListMine handles GET /v1/owner/pgs
func (h *PGHandler) ListMine(c echo.Context) error {
	owner, ok := ownerFrom(c)
	if !ok {
		return forbidden(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Props.ListByOwner(ctx, owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Delete handles DELETE /v1/owner/pgs/:id.  Active bookings on the listing
// are cancelled in the same transaction.
func (h *PGHandler) Delete(c echo.Context) error {
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

	if err := h.Props.Delete(ctx, owner, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PGBookings handles GET /v1/owner/pgs/:id/bookings
func (h *PGHandler) PGBookings(c echo.Context) error {
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

	items, err := h.Bookings.ListForPG(ctx, owner, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

type rateReq struct {
	Rating int `json:"rating"`
}

// Rate handles POST /v1/pgs/:id/rate with {"rating": 1..5}.  A second
// submission by the same seeker replaces the first.
func (h *PGHandler) Rate(c echo.Context) error {
	seeker, ok := seekerFrom(c)
	if !ok {
		return forbidden(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Ratings.Submit(ctx, seeker, id, req.Rating)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/handler"
	"github.com/iliyamo/campusnest/internal/middleware"
	"github.com/iliyamo/campusnest/internal/model"
)

// RegisterOwner registers owner-scoped endpoints under /v1/owner.  All
// routes require a valid JWT and the owner role.  Ownership of the PG or
// booking is checked by the services.
func RegisterOwner(e *echo.Echo, p *handler.PGHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	)
	g.POST("/pgs", p.Create)
	g.GET("/pgs", p.ListMine)
	g.DELETE("/pgs/:id", p.Delete)
	g.GET("/pgs/:id/bookings", p.PGBookings)
	g.POST("/bookings/:id/confirm", b.Confirm)
}

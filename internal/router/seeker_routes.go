package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/handler"
	"github.com/iliyamo/campusnest/internal/middleware"
	"github.com/iliyamo/campusnest/internal/model"
)

// RegisterSeeker registers seeker-scoped endpoints.  All routes require a
// valid JWT and the seeker role.  Seekers book, list and cancel their own
// bookings and rate PGs.
func RegisterSeeker(e *echo.Echo, p *handler.PGHandler, b *handler.BookingHandler, jwtSecret string) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSeeker),
	}

	g := e.Group("/v1/bookings", auth...)
	g.POST("", b.Create)
	g.GET("/my", b.ListMine)
	g.DELETE("/:id", b.Cancel)
	g.GET("/:id/receipt", b.Receipt)

	e.POST("/v1/pgs/:id/rate", p.Rate, auth...)
}

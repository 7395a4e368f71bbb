package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/handler"
	"github.com/iliyamo/campusnest/internal/middleware"
)

// Ops groups the operational endpoints that live outside /v1.
type Ops struct {
	DB          handler.Pinger // checked by /healthz; nil skips the check
	Metrics     http.Handler   // served at /metrics when set
	ReceiptsURL string         // URL prefix for generated receipts
	ReceiptsDir string         // directory the receipts are read from
}

// RegisterRoutes registers the health check, the Prometheus endpoint and the
// static receipt files.
func RegisterRoutes(e *echo.Echo, o Ops) {
	e.GET("/healthz", handler.Health(o.DB))
	if o.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(o.Metrics))
	}
	// an absolute receipts URL points at another host, nothing to serve here
	if strings.HasPrefix(o.ReceiptsURL, "/") && o.ReceiptsDir != "" {
		e.Static(o.ReceiptsURL, o.ReceiptsDir)
	}
}

// RegisterAuth registers the session endpoints under /v1/auth and the
// identity echo at /v1/me.  Logout does not require an access token: a
// refresh_token in the body is enough.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers unauthenticated browse endpoints.  cache wraps the
// list endpoints only; a single PG is always read fresh.
func RegisterPublic(e *echo.Echo, p *handler.PGHandler, ct *handler.ContactHandler, cache echo.MiddlewareFunc) {
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	e.GET("/v1/pgs", p.Search, cache)
	e.GET("/v1/pgs/top", p.Top, cache)
	e.GET("/v1/pgs/:id", p.Get)
	e.POST("/v1/contact", ct.Submit)
}

package observability

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Metrics records request count and latency per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			ObserveHTTP(routeOf(c), c.Request().Method, c.Response().Status, time.Since(start))
			return nil
		}
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(l zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			ev := l.Info()
			if c.Response().Status >= 500 {
				ev = l.Error().Err(err)
			}
			ev.Str("route", routeOf(c)).
				Str("method", c.Request().Method).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Str("remote", c.RealIP()).
				Interface("user_id", c.Get("user_id")).
				Msg("http_request")
			return nil
		}
	}
}

func routeOf(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}

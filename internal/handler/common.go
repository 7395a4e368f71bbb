package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campusnest/internal/middleware"
	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/service"
)

// writeError maps a service error onto its HTTP status.  Internal errors are
// logged and answered with a generic message.
func writeError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	status := http.StatusInternalServerError
	switch se.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindAuth:
		status = http.StatusUnauthorized
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict, service.KindInvalidState:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
	}
	return c.JSON(status, echo.Map{"error": se.Msg})
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// seekerFrom and ownerFrom return the role capability of the caller.  The
// routes are already role-gated, so a miss means the middleware is missing.
func seekerFrom(c echo.Context) (model.Seeker, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Seeker{}, false
	}
	return id.AsSeeker()
}

func ownerFrom(c echo.Context) (model.Owner, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Owner{}, false
	}
	return id.AsOwner()
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

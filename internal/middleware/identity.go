package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/utils"
)

// IdentityFrom returns the identity JWTAuth stored on c.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(model.Identity)
	return id, ok && id.ID != 0
}

// currentUserID returns the caller's user ID for rate-limit keys.  It uses
// the ID set by JWTAuth when present, otherwise it verifies the bearer token
// with secret.  Missing or invalid tokens yield "anon".
func currentUserID(c echo.Context, secret string) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	if secret == "" {
		return "anon"
	}
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "anon"
	}
	id, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	if err != nil {
		return "anon"
	}
	return strconv.FormatUint(id.ID, 10)
}

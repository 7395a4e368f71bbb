package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxIdentity = "identity"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller's identity in the request context.  Handlers read it with
// IdentityFrom; "user_id" and "role" are also set for logging.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ctxIdentity, id)
			c.Set(ctxUserID, strconv.FormatUint(id.ID, 10))
			c.Set(ctxRole, string(id.Role))
			return next(c)
		}
	}
}

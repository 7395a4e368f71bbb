package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/utils"
)

const testSecret = "test-secret"

func bearer(t *testing.T, id uint64, role model.Role) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, id, role, 5)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + at.Token
}

func newAuthEcho() *echo.Echo {
	e := echo.New()
	g := e.Group("/owner", JWTAuth(testSecret), RequireRole(model.RoleOwner))
	g.GET("/whoami", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		owner, ok := id.AsOwner()
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": owner.ID, "user_id": c.Get("user_id")})
	})
	return e
}

func TestJWTAuthAndRole(t *testing.T) {
	e := newAuthEcho()
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"seeker on owner route", bearer(t, 3, model.RoleSeeker), http.StatusForbidden},
		{"owner", bearer(t, 9, model.RoleOwner), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/owner/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && rec.Body.String() != "{\"id\":9,\"user_id\":\"9\"}\n" {
				t.Fatalf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(model.RoleSeeker))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

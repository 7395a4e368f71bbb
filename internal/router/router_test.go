package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/config"
	"github.com/iliyamo/campusnest/internal/handler"
	"github.com/iliyamo/campusnest/internal/middleware"
	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/utils"
)

const secret = "router-secret"

func newTestEcho() *echo.Echo {
	e := echo.New()
	pg := handler.NewPGHandler(nil, nil, nil)
	b := handler.NewBookingHandler(nil)
	RegisterRoutes(e, Ops{})
	RegisterAuth(e, handler.NewAuthHandler(config.Config{JWTSecret: secret}, nil, nil), secret)
	RegisterPublic(e, pg, handler.NewContactHandler(nil), nil)
	RegisterOwner(e, pg, b, secret)
	RegisterSeeker(e, pg, b, secret)
	return e
}

func TestRouteTable(t *testing.T) {
	e := newTestEcho()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/refresh-access",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/pgs",
		"GET /v1/pgs/top",
		"GET /v1/pgs/:id",
		"POST /v1/contact",
		"POST /v1/owner/pgs",
		"GET /v1/owner/pgs",
		"DELETE /v1/owner/pgs/:id",
		"GET /v1/owner/pgs/:id/bookings",
		"POST /v1/owner/bookings/:id/confirm",
		"POST /v1/bookings",
		"GET /v1/bookings/my",
		"DELETE /v1/bookings/:id",
		"GET /v1/bookings/:id/receipt",
		"POST /v1/pgs/:id/rate",
	} {
		if !have[want] {
			t.Errorf("missing route %s", want)
		}
	}
}

func TestRoleGating(t *testing.T) {
	e := newTestEcho()
	token := func(role model.Role) string {
		at, err := utils.NewAccessToken(secret, 5, role, 5)
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + at.Token
	}
	cases := []struct {
		name, method, path, auth string
		want                     int
	}{
		{"owner route anonymous", http.MethodGet, "/v1/owner/pgs", "", http.StatusUnauthorized},
		{"owner route as seeker", http.MethodGet, "/v1/owner/pgs", token(model.RoleSeeker), http.StatusForbidden},
		{"booking as owner", http.MethodGet, "/v1/bookings/my", token(model.RoleOwner), http.StatusForbidden},
		{"rate anonymous", http.MethodPost, "/v1/pgs/1/rate", "", http.StatusUnauthorized},
		{"rate as owner", http.MethodPost, "/v1/pgs/1/rate", token(model.RoleOwner), http.StatusForbidden},
		{"me anonymous", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRateLimitKeysByBearer(t *testing.T) {
	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "user",
		Prefix:         "rl",
		LocalFallback:  true,
		JWTSecret:      secret,
	}, nil))
	RegisterOwner(e, handler.NewPGHandler(nil, nil, nil), handler.NewBookingHandler(nil), secret)

	send := func(uid uint64) int {
		at, err := utils.NewAccessToken(secret, uid, model.RoleSeeker, 5)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/v1/owner/pgs", nil)
		req.Header.Set("Authorization", "Bearer "+at.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	// seekers pass the limiter and are then refused by the owner role check
	if got := send(5); got != http.StatusForbidden {
		t.Fatalf("user 5 first: %d", got)
	}
	if got := send(6); got != http.StatusForbidden {
		t.Fatalf("user 6 shares user 5's bucket: %d", got)
	}
	if got := send(5); got != http.StatusTooManyRequests {
		t.Fatalf("user 5 second: %d", got)
	}
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/middleware"
	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/repository"
	"github.com/iliyamo/campusnest/internal/service"
	"github.com/iliyamo/campusnest/internal/utils"
)

const testSecret = "handler-secret"

func TestWriteErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.Validation("bad %s", "input"), http.StatusBadRequest},
		{service.Auth("login"), http.StatusUnauthorized},
		{service.Forbidden("nope"), http.StatusForbidden},
		{service.NotFound("pg not found"), http.StatusNotFound},
		{service.Conflict("active booking"), http.StatusConflict},
		{service.InvalidState("confirmed"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", service.NotFound("x")), http.StatusNotFound},
		{service.IOError("disk", errors.New("full")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := writeError(c, tc.err); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tc.want {
			t.Errorf("%v: status %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = writeError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))
	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}

func TestPGGetRejectsBadID(t *testing.T) {
	e := echo.New()
	h := NewPGHandler(nil, nil, nil)
	e.GET("/v1/pgs/:id", h.Get)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/pgs/"+id, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status %d", id, rec.Code)
		}
	}
}

func TestSeekerHandlersNeedSeekerIdentity(t *testing.T) {
	e := echo.New()
	b := NewBookingHandler(nil)
	e.DELETE("/v1/bookings/:id", b.Cancel, middleware.JWTAuth(testSecret))

	at, err := utils.NewAccessToken(testSecret, 4, model.RoleOwner, 5)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/1", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("owner cancelling a booking: status %d", rec.Code)
	}
}

type memContacts struct{ saved []*model.ContactRequest }

func (m *memContacts) Create(_ context.Context, c *model.ContactRequest) error {
	c.ID = uint64(len(m.saved) + 1)
	m.saved = append(m.saved, c)
	return nil
}

func TestContactSubmit(t *testing.T) {
	store := &memContacts{}
	e := echo.New()
	e.POST("/v1/contact", NewContactHandler(service.NewContactService(store)).Submit)

	cases := []struct {
		body string
		want int
	}{
		{`{"name":"Asha","email":"asha@example.com","message":"Is the double room free?"}`, http.StatusCreated},
		{`{"name":"Asha","email":"not-an-email","message":"hi"}`, http.StatusBadRequest},
		{`{"email":"asha@example.com","message":"hi"}`, http.StatusBadRequest},
		{`{"name":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(tc.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status %d, want %d (%s)", tc.body, rec.Code, tc.want, rec.Body.String())
		}
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d requests, want 1", len(store.saved))
	}
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		db   Pinger
		want int
	}{
		{pinger{}, http.StatusOK},
		{pinger{errors.New("down")}, http.StatusServiceUnavailable},
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
		if err := Health(tc.db)(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tc.want {
			t.Errorf("status %d, want %d", rec.Code, tc.want)
		}
	}
}

// ownedPGs is a PG store holding one owner's listings by id.
type ownedPGs map[uint64]uint64

func (o ownedPGs) Create(context.Context, *model.PG) error { return nil }
func (o ownedPGs) GetByID(_ context.Context, id uint64) (*model.PG, error) {
	owner, ok := o[id]
	if !ok {
		return nil, repository.ErrPGNotFound
	}
	return &model.PG{ID: id, OwnerID: owner}, nil
}
func (o ownedPGs) ListByOwner(context.Context, uint64) ([]model.PG, error) { return nil, nil }
func (o ownedPGs) ListTop(context.Context, int) ([]model.PG, error)        { return nil, nil }
func (o ownedPGs) Search(context.Context, repository.PGSearchQuery) ([]model.PG, error) {
	return nil, nil
}
func (o ownedPGs) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) (int64, error) {
	owner, ok := o[id]
	if !ok {
		return 0, repository.ErrPGNotFound
	}
	if owner != ownerID {
		return 0, repository.ErrForbidden
	}
	delete(o, id)
	return 0, nil
}

func TestPGDelete(t *testing.T) {
	store := ownedPGs{1: 4, 2: 9}
	e := echo.New()
	h := NewPGHandler(service.NewPropertyService(store, 0, 0), nil, nil)
	e.DELETE("/v1/owner/pgs/:id", h.Delete, middleware.JWTAuth(testSecret))

	at, err := utils.NewAccessToken(testSecret, 4, model.RoleOwner, 5)
	if err != nil {
		t.Fatal(err)
	}
	del := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/v1/owner/pgs/"+id, nil)
		req.Header.Set("Authorization", "Bearer "+at.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := del("1")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"success\":true}\n" {
		t.Fatalf("own pg: %d %q", rec.Code, rec.Body.String())
	}
	if rec := del("2"); rec.Code != http.StatusForbidden {
		t.Fatalf("other owner's pg: %d", rec.Code)
	}
	if rec := del("1"); rec.Code != http.StatusNotFound {
		t.Fatalf("already deleted: %d", rec.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/campusnest/internal/config"
)

func cachedEcho(t *testing.T) (*echo.Echo, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "pgcache", MaxBodyBytes: 1 << 20,
	}
	calls := 0
	e := echo.New()
	e.GET("/v1/pgs", func(c echo.Context) error {
		calls++
		if c.QueryParam("fail") != "" {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "boom"})
		}
		return c.JSON(http.StatusOK, []echo.Map{{"name": "Sunrise PG", "area": c.QueryParam("area")}})
	}, NewRedisCache(cfg, rdb))
	return e, &calls
}

func get(e *echo.Echo, target string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCacheHit(t *testing.T) {
	e, calls := cachedEcho(t)

	first := get(e, "/v1/pgs?area=btm")
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first: %d %s", first.Code, first.Header().Get("X-Cache"))
	}
	second := get(e, "/v1/pgs?area=btm")
	if second.Header().Get("X-Cache") != "HIT" || second.Body.String() != first.Body.String() {
		t.Fatalf("second: %s %q", second.Header().Get("X-Cache"), second.Body.String())
	}
	if second.Header().Get(echo.HeaderContentType) != first.Header().Get(echo.HeaderContentType) {
		t.Fatalf("content type lost")
	}
	if *calls != 1 {
		t.Fatalf("handler calls = %d", *calls)
	}

	// different query is a different key
	get(e, "/v1/pgs?area=hsr")
	if *calls != 2 {
		t.Fatalf("handler calls = %d", *calls)
	}
}

func TestRedisCacheSkipsErrorsAndBypass(t *testing.T) {
	e, calls := cachedEcho(t)

	get(e, "/v1/pgs?fail=1")
	get(e, "/v1/pgs?fail=1")
	if *calls != 2 {
		t.Fatalf("error response cached: calls = %d", *calls)
	}

	get(e, "/v1/pgs")
	get(e, "/v1/pgs", "Cache-Control", "no-cache")
	if *calls != 4 {
		t.Fatalf("no-cache not honoured: calls = %d", *calls)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(201, h, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok || status != 201 || hdr.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Fatalf("decoded %d %v %q %v", status, hdr, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{1, 2}); ok {
		t.Fatal("short payload accepted")
	}
}

func TestRedisCacheHitKeepsCurrentRateLimitHeaders(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := rlConfig(5)
	rl.LocalFallback = true
	e := echo.New()
	e.Use(NewTokenBucket(rl, nil))
	e.GET("/v1/pgs/top", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []echo.Map{{"name": "Sunrise PG"}})
	}, NewRedisCache(config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "pgcache", MaxBodyBytes: 1 << 20,
	}, rdb))

	get(e, "/v1/pgs/top")
	second := get(e, "/v1/pgs/top")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected hit, got %q", second.Header().Get("X-Cache"))
	}
	if vals := second.Header().Values("X-RateLimit-Remaining"); len(vals) != 1 || vals[0] != "3" {
		t.Fatalf("X-RateLimit-Remaining = %v, want [3]", vals)
	}
	if vals := second.Header().Values("X-RateLimit-Limit"); len(vals) != 1 {
		t.Fatalf("X-RateLimit-Limit = %v", vals)
	}
}

func TestReplayable(t *testing.T) {
	for k, want := range map[string]bool{
		"Content-Type":          true,
		"content-length":        false,
		"X-Cache":               false,
		"X-RateLimit-Remaining": false,
		"x-ratelimit-limit":     false,
		"Retry-After":           false,
	} {
		if got := replayable(k); got != want {
			t.Errorf("replayable(%q) = %v", k, got)
		}
	}
}

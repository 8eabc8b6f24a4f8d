package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/config"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/utils"
)

const secret = "test-secret"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, utils.Identity{UserID: id, Role: role, Name: "u" + strconv.FormatUint(id, 10)}, 5)
	if err != nil {
		t.Fatal(err)
	}
	return tok.Token
}

func TestJWTAuthAndRequireAdmin(t *testing.T) {
	e := echo.New()
	g := e.Group("/admin", JWTAuth(secret), RequireAdmin())
	g.GET("/who", func(c echo.Context) error {
		id, ok := ActorID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": ok, "admin": IsAdmin(c), "name": ActorName(c)})
	})

	if rec := do(e, http.MethodGet, "/admin/who", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/admin/who", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/admin/who", token(t, 5, model.RoleUser)); rec.Code != http.StatusForbidden {
		t.Fatalf("user token on admin route: %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/admin/who", token(t, 7, model.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin token: %d %s", rec.Code, rec.Body)
	}
	if want := `{"admin":true,"id":7,"name":"u7","ok":true}`; rec.Body.String() != want+"\n" {
		t.Fatalf("body = %s", rec.Body)
	}
}

func rateCfg(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
		LocalFallback:  true,
	}
}

func limitedEcho(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	return e
}

func TestTokenBucketRedis(t *testing.T) {
	mr, rdb := newRedis(t)
	e := limitedEcho(rateCfg(2), rdb)

	for i := 0; i < 2; i++ {
		if rec := do(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, rec.Code)
		}
	}
	rec := do(e, http.MethodGet, "/ping", "")
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("third request: %d retry-after=%q", rec.Code, rec.Header().Get("Retry-After"))
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one bucket key, got %v", mr.Keys())
	}
}

func TestTokenBucketFallsBackWhenRedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	e := limitedEcho(rateCfg(1), rdb)

	if rec := do(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request: %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/ping", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("local bucket should block the second request, got %d", rec.Code)
	}

	cfg := rateCfg(1)
	cfg.LocalFallback = false
	open := limitedEcho(cfg, rdb)
	for i := 0; i < 3; i++ {
		if rec := do(open, http.MethodGet, "/ping", ""); rec.Code != http.StatusOK {
			t.Fatalf("without fallback the limiter must fail open, got %d", rec.Code)
		}
	}
}

func TestTokenBucketLocalOnly(t *testing.T) {
	e := limitedEcho(rateCfg(3), nil)
	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		codes[do(e, http.MethodGet, "/ping", "").Code]++
	}
	if codes[http.StatusOK] != 3 || codes[http.StatusTooManyRequests] != 2 {
		t.Fatalf("codes = %v", codes)
	}
}

func TestRedisCacheHitMissAndPurge(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "rooms-cache", KeyStrategy: "route_query"}

	var calls int32
	e := echo.New()
	e.GET("/v1/rooms", func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusOK, echo.Map{"call": n})
	}, NewRedisCache(cfg, rdb))

	first := do(e, http.MethodGet, "/v1/rooms", "")
	second := do(e, http.MethodGet, "/v1/rooms", "")
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("x-cache = %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() || calls != 1 {
		t.Fatalf("cached body differs or handler ran twice: %q %q calls=%d", first.Body, second.Body, calls)
	}
	if second.Header().Get(echo.HeaderContentType) != echo.MIMEApplicationJSON {
		t.Fatalf("content type not replayed: %q", second.Header().Get(echo.HeaderContentType))
	}

	other := do(e, http.MethodGet, "/v1/rooms?at=2024-06-01T09:00:00Z", "")
	if other.Header().Get("X-Cache") != "MISS" {
		t.Fatal("a different query must miss")
	}

	n, err := PurgeCache(context.Background(), rdb, cfg.Prefix)
	if err != nil || n != 2 {
		t.Fatalf("purge removed %d keys, err %v", n, err)
	}
	if rec := do(e, http.MethodGet, "/v1/rooms", ""); rec.Header().Get("X-Cache") != "MISS" || calls != 3 {
		t.Fatalf("after purge: x-cache=%q calls=%d", rec.Header().Get("X-Cache"), calls)
	}
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "c"}
	e := echo.New()
	e.GET("/missing", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}, NewRedisCache(cfg, rdb))

	do(e, http.MethodGet, "/missing", "")
	if len(mr.Keys()) != 0 {
		t.Fatalf("non-200 responses must not be cached: %v", mr.Keys())
	}
	if n, err := PurgeCache(context.Background(), nil, "c"); n != 0 || err != nil {
		t.Fatal("nil client purge should be a no-op")
	}
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS("https://app.example.com"))
	e.GET("/v1/rooms", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/rooms", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow-origin = %q (status %d)", got, rec.Code)
	}
}

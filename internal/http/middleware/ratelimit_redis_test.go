package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
)

func limiterRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", mw, func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRedisRateLimitBlocksOverBudget(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedisRateLimiter(mr.Addr(), "", 0)
	defer func() { redisClient = nil }()

	r := limiterRouter(RedisRateLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		if code := doGet(t, r); code != 200 {
			t.Fatalf("request %d: expected 200 got %d", i, code)
		}
	}
	if code := doGet(t, r); code != 429 {
		t.Fatalf("expected 429 got %d", code)
	}
}

func TestRedisRateLimitWindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedisRateLimiter(mr.Addr(), "", 0)
	defer func() { redisClient = nil }()

	r := limiterRouter(RedisRateLimit(1, time.Minute))

	if code := doGet(t, r); code != 200 {
		t.Fatalf("expected 200 got %d", code)
	}
	if code := doGet(t, r); code != 429 {
		t.Fatalf("expected 429 got %d", code)
	}

	mr.FastForward(time.Minute + time.Second)

	if code := doGet(t, r); code != 200 {
		t.Fatalf("after window: expected 200 got %d", code)
	}
}

func TestRateLimitFailOpenWithoutRedis(t *testing.T) {
	redisClient = nil

	r := limiterRouter(RedisRateLimit(1, time.Minute))
	for i := 0; i < 5; i++ {
		if code := doGet(t, r); code != 200 {
			t.Fatalf("expected fail-open 200 got %d", code)
		}
	}
}

func TestScopedRateLimitKeyedByUser(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedisRateLimiter(mr.Addr(), "", 0)
	defer func() { redisClient = nil }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
	}, ScopedRateLimit("tasks:create", 1, time.Minute), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	get := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Test-User", user)
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := get("alice"); code != 200 {
		t.Fatalf("alice first: expected 200 got %d", code)
	}
	if code := get("alice"); code != 429 {
		t.Fatalf("alice second: expected 429 got %d", code)
	}
	// a different user has their own budget
	if code := get("bob"); code != 200 {
		t.Fatalf("bob: expected 200 got %d", code)
	}
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	pass := os.Getenv("REDIS_PASSWORD")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	InitRedisRateLimiter(addr, pass, db)
	defer func() { redisClient = nil }()

	r := limiterRouter(RedisRateLimit(2, 2*time.Second))

	srv := httptest.NewServer(r)
	defer srv.Close()

	for i := 0; i < 2; i++ {
		res, err := http.Get(srv.URL + "/test")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != 200 {
			t.Fatalf("expected 200 got %d", res.StatusCode)
		}
	}

	res, err := http.Get(srv.URL + "/test")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 429 {
		t.Fatalf("expected 429 got %d", res.StatusCode)
	}
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// Provide addr (host:port), password and db index. If connection fails, redisClient remains nil
// and middleware will act as fail-open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// on ping failure, disable redis client to keep server available
		redisClient = nil
	}
}

// RedisClient exposes the shared client, nil when rate limiting is
// disabled. Health checks use it to report limiter state.
func RedisClient() *redis.Client {
	return redisClient
}

// RedisRateLimit implements a fixed-window rate limiter using Redis
// INCR/EXPIRE, keyed by client IP. Counters live in Redis so the window is
// shared across instances. key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return limit(maxRequests, window, "rl", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// ScopedRateLimit is a fixed-window limiter keyed by authenticated user and
// scope, for per-operation write budgets (task creation, wiki creation and
// the like). Unauthenticated requests fall back to the client IP.
func ScopedRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return limit(maxRequests, window, "rl:"+scope, func(c *gin.Context) string {
		if userID, ok := GetUserID(c); ok {
			return userID
		}
		return c.ClientIP()
	})
}

func limit(maxRequests int, window time.Duration, prefix string, ident func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// fallback to allowing requests if Redis not configured
			c.Next()
			return
		}

		key := prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident(c)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// on Redis error, fail-open (allow) but set header
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			// first increment, set expiry
			redisClient.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()

		c.Next()
	}
}

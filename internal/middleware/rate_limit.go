package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter is a fixed-window request counter kept in Redis
type RateLimiter struct {
	Redis  redis.Cmdable
	Prefix string
	Limit  int // requests
	Window time.Duration
	log    *zap.Logger
}

func NewRateLimiter(r redis.Cmdable, prefix string, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return &RateLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window, log: log}
}

// Middleware limits requests per client IP. Requests pass when Redis is unreachable.
func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			redisKey := fmt.Sprintf("%s:%s", r.Prefix, c.RealIP())
			count, err := r.Redis.Incr(ctx, redisKey).Result()
			if err != nil {
				r.log.Warn("rate limiter unavailable", zap.String("key", redisKey), zap.Error(err))
				return next(c)
			}
			if count == 1 {
				if err := r.Redis.Expire(ctx, redisKey, r.Window).Err(); err != nil {
					// a key without a TTL would block this client for good
					r.log.Warn("rate limiter expire failed", zap.String("key", redisKey), zap.Error(err))
					if err := r.Redis.Del(ctx, redisKey).Err(); err != nil {
						r.log.Error("rate limiter cleanup failed", zap.String("key", redisKey), zap.Error(err))
					}
				}
			}
			if count > int64(r.Limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
			}
			return next(c)
		}
	}
}

// MemoryRateLimit limits requests per client IP inside this process
func MemoryRateLimit(perMinute int) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
	"github.com/labstack/echo/v4"
)

// RateLimiter is the counter backing RateLimitMiddleware.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, count int64, ttlMs int64, err error)
}

// RateLimitMiddleware creates per-IP (anonymous) or per-user (authenticated)
// rate limiting. Sets standard rate limit response headers. A nil limiter
// disables limiting.
func RateLimitMiddleware(limiter RateLimiter, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(c echo.Context) error {
			var key string
			if uid := auth.GetUserID(c); uid != "" {
				key = "rl:user:" + uid + ":" + c.Path()
			} else {
				key = "rl:ip:" + c.RealIP() + ":" + c.Path()
			}

			allowed, count, ttlMs, err := limiter.CheckRateLimit(c.Request().Context(), key, limit, window)
			if err != nil {
				// Redis outages do not block chat traffic.
				slog.Warn("rate limit check failed", "key", key, "error", err)
				return next(c)
			}

			remaining := max(int64(limit)-count, 0)
			resetAt := time.Now().Add(time.Duration(ttlMs) * time.Millisecond).Unix()

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

			if !allowed {
				retryAfterSec := (ttlMs + 999) / 1000
				h.Set("Retry-After", strconv.FormatInt(retryAfterSec, 10))
				return Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
			}

			return next(c)
		}
	}
}

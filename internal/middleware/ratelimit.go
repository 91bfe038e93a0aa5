package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/leads-generator/discovery/internal/config"
)

// RateLimiter applies a token bucket shared by every request passing
// through it. A zero config disables limiting.
func RateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	retryAfter := strconv.Itoa(int(math.Ceil(perRequest.Seconds())))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				c.Response().Header().Set("Retry-After", retryAfter)
				return deny(c, http.StatusTooManyRequests, "discovery rate limit exceeded")
			}
			return next(c)
		}
	}
}

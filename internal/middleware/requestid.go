package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/discovery/internal/provider"
)

const headerRequestID = "X-Request-ID"

// RequestID tags every request with an identifier, reusing the caller's
// X-Request-ID when present. The id is also attached to the request
// context so provider calls forward it upstream.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(headerRequestID, rid)
			c.SetRequest(req.WithContext(provider.WithRequestID(req.Context(), rid)))

			return next(c)
		}
	}
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}

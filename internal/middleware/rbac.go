package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/leads-generator/discovery/internal/auth"
)

// RequireRole admits callers whose role satisfies want. Admins satisfy
// operator routes. Must run after JWT.
func RequireRole(want string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have, _ := c.Get(ContextKeyRole).(string)
			switch {
			case have == "":
				return deny(c, http.StatusForbidden, "missing role")
			case !authpkg.Satisfies(have, want):
				return deny(c, http.StatusForbidden, "requires "+want+" role")
			}
			return next(c)
		}
	}
}

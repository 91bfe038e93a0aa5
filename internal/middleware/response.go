package middleware

import "github.com/labstack/echo/v4"

// deny aborts the request with the API error envelope.
func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"status": "error", "message": message})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/discovery/internal/service"
	"github.com/octobees/leads-generator/discovery/internal/service/discovery"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var errDiscoveryBusy = errors.New("a discovery run is already in progress")

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:  "error",
		Message: message,
	})
}

// Fail maps a service error onto its HTTP status. Unknown errors are
// reported with fallback as the message so internals do not leak.
func Fail(c echo.Context, err error, fallback string) error {
	var validationErr service.ValidationError
	var csvErr service.CSVValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &csvErr):
		return Error(c, http.StatusBadRequest, csvErr.Error())
	case errors.Is(err, errDiscoveryBusy):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, discovery.ErrNoProviders):
		return Error(c, http.StatusServiceUnavailable, "no lead provider is configured")
	case errors.Is(err, service.ErrInvalidKey):
		return Error(c, http.StatusUnauthorized, "invalid key")
	case errors.Is(err, service.ErrTokensDisabled):
		return Error(c, http.StatusServiceUnavailable, "token issuing is disabled")
	default:
		return Error(c, http.StatusInternalServerError, fallback)
	}
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token handles POST /auth/token requests.
func (h *AuthHandler) Token(c echo.Context) error {
	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		return Error(c, http.StatusBadRequest, "key is required")
	}

	token, role, err := h.authService.IssueToken(req.Key)
	if err != nil {
		return Fail(c, err, "unable to issue token")
	}

	return Success(c, http.StatusOK, "token issued", dto.TokenResponse{AccessToken: token, Role: role})
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/leads-generator/discovery/internal/auth"
)

var (
	errMissingAuthorization   = errors.New("missing authorization header")
	errMalformedAuthorization = errors.New("invalid authorization header")
)

// JWT validates bearer tokens and stores the caller's subject and role
// in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return deny(c, http.StatusUnauthorized, err.Error())
			}

			claims, err := manager.ParseToken(token)
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
				return deny(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextKeySubject, claims.Subject)
			c.Set(ContextKeyRole, claims.Role)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errMalformedAuthorization
	}
	return token, nil
}

// Package middleware authenticates requests and gates routes by account type.
package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

const (
	userKey = "user"

	// userIDKey is only read by logging.RequestLogger; handlers use CurrentUser.
	userIDKey = "user_id"

	msgNoCredentials = "Authentication credentials were not provided."
	msgInvalidToken  = "Invalid token."
	msgInactiveUser  = "User inactive or deleted."
)

// TokenAuth resolves "Authorization: Token <key>" to a user and stores it on the context.
func TokenAuth(tokens repository.TokenRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, key, found := strings.Cut(strings.TrimSpace(header), " ")
			if header == "" || !strings.EqualFold(scheme, "Token") {
				return apperr.Unauthenticated(msgNoCredentials)
			}
			key = strings.TrimSpace(key)
			if !found || key == "" || strings.Contains(key, " ") {
				return apperr.Unauthenticated("Invalid token header.")
			}

			u, err := tokens.UserByKey(c.Request().Context(), key)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Unauthenticated(msgInvalidToken)
			}
			if err != nil {
				return err
			}
			if !u.IsActive {
				return apperr.Unauthenticated(msgInactiveUser)
			}

			c.Set(userKey, u)
			c.Set(userIDKey, u.ID)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

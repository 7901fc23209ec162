package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/models"
)

const msgWrongType = "You do not have permission to perform this action."

// RequireType ensures the requester's account type is one of the allowed types.
// detail is the 403 message; empty uses the generic one.
// Usage: route(..., TokenAuth(tokens), RequireType("Only business users can create offers.", models.Business))
func RequireType(detail string, types ...models.UserType) echo.MiddlewareFunc {
	if detail == "" {
		detail = msgWrongType
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return apperr.Unauthenticated(msgNoCredentials)
			}
			for _, t := range types {
				if u.Type == t {
					return next(c)
				}
			}
			return apperr.Forbidden(detail)
		}
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
)

// StaffGuard ensures only staff users can access the route
func StaffGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := CurrentUser(c)
		if u == nil {
			return apperr.Unauthenticated(msgNoCredentials)
		}
		if !u.IsStaff {
			return apperr.Forbidden("Only staff users may perform this action.")
		}
		return next(c)
	}
}

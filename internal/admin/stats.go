// Package admin serves platform wide numbers and the staff user console.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/repository"
)

type Handler struct {
	Users repository.UserRepository
	Stats repository.StatsRepository
}

// GET /api/base-info/
// Counted on every call, never cached.
func (h *Handler) BaseInfo(c echo.Context) error {
	s, err := h.Stats.PlatformStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/repository"
)

func (h *Handler) setActive(c echo.Context, active bool, message string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperr.NotFound("User not found.")
	}
	if err := h.Users.SetActive(c.Request().Context(), id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message, "user_id": id})
}

// POST /api/admin/users/:id/suspend
// A suspended user keeps their data but every token stops authenticating.
func (h *Handler) SuspendUser(c echo.Context) error {
	return h.setActive(c, false, "user suspended")
}

// POST /api/admin/users/:id/activate
func (h *Handler) ActivateUser(c echo.Context) error {
	return h.setActive(c, true, "user activated")
}

package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

type BootstrapStaffRequest struct {
	Username string `json:"username" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
}

// BootstrapStaff grants staff rights when the caller knows STAFF_BOOTSTRAP_SECRET.
func (h *Handler) BootstrapStaff(c echo.Context) error {
	if h.BootstrapSecret == "" {
		return apperr.Forbidden("Bootstrap disabled.")
	}
	req := new(BootstrapStaffRequest)
	if err := validation.Bind(c, req); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.BootstrapSecret)) != 1 {
		return apperr.Forbidden("Invalid secret.")
	}

	if err := h.Users.SetStaff(c.Request().Context(), req.Username, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user promoted to staff", "username": req.Username})
}

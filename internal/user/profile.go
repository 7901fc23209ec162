// Package user serves the profile pages attached to every account.
package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type Handler struct {
	Profiles repository.ProfileRepository
}

func profileID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("pk"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("Not found.")
	}
	return id, nil
}

// GET /api/profile/:pk/
func (h *Handler) GetProfile(c echo.Context) error {
	id, err := profileID(c)
	if err != nil {
		return err
	}
	v, err := h.Profiles.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Not found.")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(v))
}

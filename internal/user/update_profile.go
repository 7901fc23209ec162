package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

// UpdateProfileRequest leaves a field untouched when it is absent from the body.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name" validate:"omitnil,max=150"`
	LastName     *string `json:"last_name" validate:"omitnil,max=150"`
	File         *string `json:"file"`
	Location     *string `json:"location" validate:"omitnil,max=255"`
	Tel          *string `json:"tel" validate:"omitnil,max=50"`
	Description  *string `json:"description"`
	WorkingHours *string `json:"working_hours" validate:"omitnil,max=100"`
	Email        *string `json:"email" validate:"omitnil,email"`
}

func (r *UpdateProfileRequest) patch() models.ProfilePatch {
	if r.Email != nil {
		trimmed := strings.TrimSpace(*r.Email)
		r.Email = &trimmed
	}
	return models.ProfilePatch{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		File:         r.File,
		Location:     r.Location,
		Tel:          r.Tel,
		Description:  r.Description,
		WorkingHours: r.WorkingHours,
		Email:        r.Email,
	}
}

// PATCH /api/profile/:pk/
func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := profileID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Profiles.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Not found.")
		}
		return err
	}
	if middleware.CurrentUser(c).ID != id {
		return apperr.Forbidden("You can only edit your own profile.")
	}

	req := new(UpdateProfileRequest)
	if err := validation.Bind(c, req); err != nil {
		return err
	}

	v, err := h.Profiles.Update(ctx, id, req.patch())
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Invalid("email", "A user with this email already exists.")
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Not found.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, toResponse(v))
}

package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/models"
)

// GET /api/profiles/business/
func (h *Handler) ListBusinessProfiles(c echo.Context) error {
	return h.list(c, models.Business)
}

// GET /api/profiles/customer/
func (h *Handler) ListCustomerProfiles(c echo.Context) error {
	return h.list(c, models.Customer)
}

func (h *Handler) list(c echo.Context, t models.UserType) error {
	views, err := h.Profiles.ListByType(c.Request().Context(), t)
	if err != nil {
		return err
	}
	out := make([]ListedProfile, 0, len(views))
	for i := range views {
		out = append(out, toListed(&views[i]))
	}
	return c.JSON(http.StatusOK, out)
}

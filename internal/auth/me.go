package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
)

type MeResponse struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Type     models.UserType `json:"type"`
	IsStaff  bool            `json:"is_staff"`
}

// ===== Me =====
func (h *Handler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, MeResponse{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Type:     u.Type,
		IsStaff:  u.IsStaff,
	})
}

package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

const msgBadCredentials = "Unable to log in with provided credentials."

// ===== Login =====
// Login hands out the user's existing token, creating it on first use.
func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := validation.Bind(c, req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Unauthenticated(msgBadCredentials)
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return apperr.Unauthenticated(msgBadCredentials)
	}
	if !u.IsActive {
		return apperr.Unauthenticated("User account is disabled.")
	}

	key, err := h.Tokens.GetOrCreate(ctx, u.ID, NewTokenKey())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: key, Username: u.Username, Email: u.Email, UserID: u.ID})
}

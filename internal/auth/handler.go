// Package auth issues and checks the opaque API tokens and owns the
// password flows.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/coderr/internal/alerts"
	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type Handler struct {
	Users    repository.UserRepository
	Tokens   repository.TokenRepository
	Notifier alerts.Notifier
	Logger   *zap.Logger

	JWTSecret       []byte
	ResetExpiry     time.Duration
	AppURL          string
	BootstrapSecret string
}

// bcrypt refuses passwords longer than 72 bytes.
const (
	maxPasswordBytes   = 72
	msgPasswordTooLong = "Ensure this field has no more than 72 bytes."
)

// NewTokenKey returns a fresh opaque token.
func NewTokenKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type RegistrationRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
	RepeatedPassword string `json:"repeated_password" validate:"required"`
	Type             string `json:"type" validate:"required,oneof=customer business"`
}

// TokenResponse is returned by registration and login.
type TokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

func (h *Handler) notify(kind string, fn func() error) {
	if err := fn(); err != nil {
		h.Logger.Warn("notification not queued", zap.String("kind", kind), zap.Error(err))
	}
}

// ===== Register =====
func (h *Handler) Register(c echo.Context) error {
	req := new(RegistrationRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Invalid(apperr.NonFieldErrors, "Invalid request body.")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	verr := apperr.NewValidation()
	var fieldErrs *apperr.ValidationError
	if err := c.Validate(req); errors.As(err, &fieldErrs) {
		verr = fieldErrs
	} else if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if !verr.Has("username") {
		if taken, err := h.exists(ctx, h.Users.GetByUsername, req.Username); err != nil {
			return err
		} else if taken {
			verr.Add("username", "A user with this username already exists.")
		}
	}
	if !verr.Has("email") {
		if taken, err := h.exists(ctx, h.Users.GetByEmail, req.Email); err != nil {
			return err
		} else if taken {
			verr.Add("email", "A user with this email already exists.")
		}
	}
	if !verr.Has("password") && len(req.Password) > maxPasswordBytes {
		verr.Add("password", msgPasswordTooLong)
	}
	if len(verr.Fields) == 0 && req.Password != req.RepeatedPassword {
		verr.Add("repeated_password", "Passwords do not match.")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	userType, _ := models.ParseUserType(req.Type)
	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Type:         userType,
		IsActive:     true,
	}
	key := NewTokenKey()
	if err := h.Users.Register(ctx, u, key); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Invalid(apperr.NonFieldErrors, "A user with this username or email already exists.")
		}
		return err
	}

	h.notify("welcome", func() error { return h.Notifier.Welcome(ctx, u) })

	return c.JSON(http.StatusCreated, TokenResponse{Token: key, Username: u.Username, Email: u.Email, UserID: u.ID})
}

func (h *Handler) exists(ctx context.Context, get func(context.Context, string) (*models.User, error), value string) (bool, error) {
	_, err := get(ctx, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	}
	return false, err
}

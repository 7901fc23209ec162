package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/validation"
)

const (
	resetPurpose    = "password_reset"
	msgResetRequest = "If the email exists, a reset link has been sent."
)

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SignResetToken issues a short lived token bound to the user id.
func (h *Handler) SignResetToken(userID int64, now time.Time) (string, error) {
	claims := resetClaims{
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ResetExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.JWTSecret)
}

// parseResetToken returns the user id carried by a valid reset token.
func (h *Handler) parseResetToken(token string) (int64, error) {
	claims := new(resetClaims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return h.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if claims.Purpose != resetPurpose {
		return 0, errors.New("invalid token purpose")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid token subject")
	}
	return id, nil
}

// POST /api/password/request/
// Always responds with success message to avoid user enumeration.
func (h *Handler) RequestPasswordReset(c echo.Context) error {
	generic := MessageResponse{Message: msgResetRequest}

	req := new(RequestPasswordResetRequest)
	if err := validation.Bind(c, req); err != nil {
		return c.JSON(http.StatusOK, generic)
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.Logger.Error("password reset lookup failed", zap.Error(err))
		}
		return c.JSON(http.StatusOK, generic)
	}

	signed, err := h.SignResetToken(u.ID, time.Now())
	if err != nil {
		h.Logger.Error("password reset token", zap.Error(err))
		return c.JSON(http.StatusOK, generic)
	}
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(h.AppURL, "/"), url.QueryEscape(signed))
	h.notify("password_reset", func() error { return h.Notifier.PasswordReset(ctx, u, resetURL) })

	return c.JSON(http.StatusOK, generic)
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// POST /api/password/reset/
func (h *Handler) ResetPassword(c echo.Context) error {
	req := new(ResetPasswordRequest)
	if err := validation.Bind(c, req); err != nil {
		return err
	}
	if len(req.NewPassword) > maxPasswordBytes {
		return apperr.Invalid("new_password", msgPasswordTooLong)
	}

	userID, err := h.parseResetToken(req.Token)
	if err != nil {
		return apperr.Unauthenticated("Invalid or expired token.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(c.Request().Context(), userID, string(hashed)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password updated successfully."})
}

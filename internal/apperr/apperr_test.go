package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Invalid("rating", "too high"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create review: %w", Invalid("rating", "x")), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("Invalid token."), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"not found", NotFound("Offer not found."), http.StatusNotFound},
		{"bare sentinel", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := Status(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestValidationErrorCollects(t *testing.T) {
	v := NewValidation()
	require.NoError(t, v.Err())

	v.Add("username", "taken")
	v.Add("username", "too short")
	nested := Invalid("price", "Price cannot be negative.")
	v.Nest("details", nested)

	require.Error(t, v.Err())
	assert.True(t, v.Has("username"))
	assert.Equal(t, []string{"taken", "too short"}, v.Fields["username"])
	assert.Equal(t, []string{"Price cannot be negative."}, v.Fields["details.price"])
	assert.Contains(t, v.Error(), "username: taken; too short")
}

func TestHTTPErrorHandlerBodies(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zap.New(core))
	e.GET("/v", func(c echo.Context) error { return Invalid("email", "Enter a valid email address.") })
	e.GET("/f", func(c echo.Context) error { return Forbidden("Only business users can create offers.") })
	e.GET("/boom", func(c echo.Context) error { return errors.New("db down") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"email":["Enter a valid email address."]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/f", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"Only business users can create offers."}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "db down", body["detail"])
	assert.Equal(t, 1, logs.Len())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

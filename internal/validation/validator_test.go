package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/coderr/internal/apperr"
)

type signup struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Kind     string `json:"type" validate:"oneof=customer business"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := New().Validate(&signup{Email: "nope", Rating: 9, Kind: "admin"})

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"This field is required."}, verr.Fields["username"])
	assert.Equal(t, []string{"Enter a valid email address."}, verr.Fields["email"])
	assert.Equal(t, []string{"Ensure this value is less than or equal to 5."}, verr.Fields["rating"])
	assert.Equal(t, []string{`"admin" is not a valid choice.`}, verr.Fields["type"])
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, New().Validate(&signup{Username: "a", Email: "a@b.io", Rating: 3, Kind: "business"}))
}

func TestBindRejectsMalformedJSON(t *testing.T) {
	e := echo.New()
	e.Validator = New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var dst signup
	err := Bind(c, &dst)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has(apperr.NonFieldErrors))
}

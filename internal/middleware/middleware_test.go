package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/repository/memory"
)

func newEcho(t *testing.T) (*echo.Echo, *repository.Store) {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	ctx := context.Background()
	for _, u := range []*models.User{
		{Username: "cust", Email: "c@example.com", Type: models.Customer, IsActive: true},
		{Username: "biz", Email: "b@example.com", Type: models.Business, IsActive: true},
		{Username: "staff", Email: "s@example.com", Type: models.Customer, IsActive: true, IsStaff: true},
		{Username: "gone", Email: "g@example.com", Type: models.Customer, IsActive: false},
	} {
		require.NoError(t, store.Users.Register(ctx, u, u.Username+"-key"))
	}

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zap.NewNop())
	ok := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id")})
	}
	auth := TokenAuth(store.Tokens)
	e.GET("/any", ok, auth)
	e.GET("/business", ok, auth, RequireType("", models.Business))
	e.GET("/customer", ok, auth, RequireType("Customers only.", models.Customer))
	e.GET("/staff", ok, auth, StaffGuard)
	return e, store
}

func do(e *echo.Echo, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenAuth(t *testing.T) {
	e, _ := newEcho(t)

	cases := []struct {
		name   string
		header string
		status int
		detail string
	}{
		{"missing", "", http.StatusUnauthorized, msgNoCredentials},
		{"wrong scheme", "Bearer cust-key", http.StatusUnauthorized, msgNoCredentials},
		{"empty key", "Token ", http.StatusUnauthorized, "Invalid token header."},
		{"unknown key", "Token nope", http.StatusUnauthorized, msgInvalidToken},
		{"inactive", "Token gone-key", http.StatusUnauthorized, msgInactiveUser},
		{"valid", "Token cust-key", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, "/any", tc.header)
			assert.Equal(t, tc.status, rec.Code)
			if tc.detail != "" {
				assert.Contains(t, rec.Body.String(), tc.detail)
			}
		})
	}
}

func TestRequireTypeAndStaffGuard(t *testing.T) {
	e, _ := newEcho(t)

	assert.Equal(t, http.StatusForbidden, do(e, "/business", "Token cust-key").Code)
	assert.Equal(t, http.StatusOK, do(e, "/business", "Token biz-key").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/business", "").Code)
	assert.Contains(t, do(e, "/business", "Token cust-key").Body.String(), msgWrongType)

	rec := do(e, "/customer", "Token biz-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customers only.")
	assert.Equal(t, http.StatusOK, do(e, "/customer", "Token cust-key").Code)

	assert.Equal(t, http.StatusForbidden, do(e, "/staff", "Token biz-key").Code)
	assert.Equal(t, http.StatusOK, do(e, "/staff", "Token staff-key").Code)
}

package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/alerts"
	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/repository/memory"
	"github.com/sudo-init-do/coderr/internal/validation"
)

type recordingNotifier struct {
	alerts.Noop
	mu      sync.Mutex
	placed  []string
	changed []string
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, _ *models.Order, to string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, to)
	return nil
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o *models.Order, to string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, to+":"+string(o.Status))
	return nil
}

type recordingLive struct {
	events []int64
}

func (l *recordingLive) BroadcastOrder(orderID int64, _ any) {
	l.events = append(l.events, orderID)
}

type env struct {
	e        *echo.Echo
	store    *repository.Store
	notifier *recordingNotifier
	live     *recordingLive
}

// Users: 1 biz, 2 cust, 3 biz2, 4 cust2, 5 staff.
func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	ctx := context.Background()
	for _, u := range []*models.User{
		{Username: "biz", Email: "biz@example.com", Type: models.Business, IsActive: true},
		{Username: "cust", Email: "cust@example.com", Type: models.Customer, IsActive: true},
		{Username: "biz2", Email: "biz2@example.com", Type: models.Business, IsActive: true},
		{Username: "cust2", Email: "cust2@example.com", Type: models.Customer, IsActive: true},
		{Username: "staff", Email: "staff@example.com", Type: models.Customer, IsActive: true, IsStaff: true},
	} {
		require.NoError(t, store.Users.Register(ctx, u, u.Username+"-key"))
	}

	n := &recordingNotifier{}
	live := &recordingLive{}
	h := &Handler{
		Users:    store.Users,
		Offers:   store.Offers,
		Orders:   store.Orders,
		Reviews:  store.Reviews,
		Notifier: n,
		Live:     live,
		Logger:   zap.NewNop(),
	}

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zap.NewNop())
	auth := middleware.TokenAuth(store.Tokens)
	e.GET("/api/offers/", h.ListOffers)
	g := e.Group("/api", auth)
	g.POST("/offers/", h.CreateOffer, middleware.RequireType(MsgOfferBusinessOnly, models.Business))
	g.GET("/offers/:id/", h.GetOffer)
	g.PATCH("/offers/:id/", h.UpdateOffer)
	g.DELETE("/offers/:id/", h.DeleteOffer)
	g.GET("/offerdetails/:id/", h.GetOfferDetail)
	g.GET("/orders/", h.ListOrders)
	g.POST("/orders/", h.CreateOrder, middleware.RequireType(MsgOrderCustomerOnly, models.Customer))
	g.PATCH("/orders/:id/", h.UpdateOrderStatus)
	g.DELETE("/orders/:id/", h.DeleteOrder)
	g.GET("/order-count/:business_user_id/", h.CountInProgressOrders)
	g.GET("/completed-order-count/:business_user_id/", h.CountCompletedOrders)
	g.GET("/reviews/", h.ListReviews)
	g.POST("/reviews/", h.CreateReview, middleware.RequireType(MsgReviewCustomerOnly, models.Customer))
	g.PATCH("/reviews/:id/", h.UpdateReview)
	g.DELETE("/reviews/:id/", h.DeleteReview)
	return &env{e: e, store: store, notifier: n, live: live}
}

func (v *env) do(method, path, key, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if key != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+key)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const logoOffer = `{
  "title": "Logo design",
  "description": "Vector logos",
  "details": [
    {"title": "Basic", "revisions": 1, "delivery_time_in_days": 7, "price": 100.00, "features": ["Logo"], "offer_type": "basic"},
    {"title": "Premium", "revisions": 5, "delivery_time_in_days": 2, "price": "250.75", "features": "Logo, Card, Flyer", "offer_type": "premium"}
  ]
}`

// createOffer posts an offer as the given business user and returns its write response.
func (v *env) createOffer(t *testing.T, key, body string) OfferWriteResponse {
	t.Helper()
	rec := v.do(http.MethodPost, "/api/offers/", key, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[OfferWriteResponse](t, rec)
}

func defaultFilter() repository.OfferFilter {
	return repository.OfferFilter{Ordering: repository.DefaultOfferOrdering, Limit: 100}
}

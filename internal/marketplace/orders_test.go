package marketplace

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/coderr/internal/models"
)

func (v *env) placeOrder(t *testing.T, key string, detailID int64) OrderResponse {
	t.Helper()
	rec := v.do(http.MethodPost, "/api/orders/", key, fmt.Sprintf(`{"offer_detail_id": %d}`, detailID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[OrderResponse](t, rec)
}

func TestCreateOrderSnapshotsTier(t *testing.T) {
	v := newEnv(t)
	offer := v.createOffer(t, "biz-key", logoOffer)
	basic := offer.Details[0]

	rec := v.do(http.MethodPost, "/api/orders/", "cust-key", fmt.Sprintf(`{"offer_detail_id": %d}`, basic.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"price":100.00`)

	order := decode[OrderResponse](t, rec)
	assert.Equal(t, int64(2), order.CustomerUser)
	assert.Equal(t, int64(1), order.BusinessUser)
	assert.Equal(t, models.OrderInProgress, order.Status)
	assert.Equal(t, "Basic", order.Title)
	assert.Equal(t, []string{"Logo"}, order.Features)
	assert.Equal(t, []string{"biz@example.com"}, v.notifier.placed)

	// later catalog edits leave the order alone
	rec = v.do(http.MethodPatch, fmt.Sprintf("/api/offers/%d/", offer.ID), "biz-key", `{"details":[{"offer_type":"basic","title":"Changed","price":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]OrderResponse](t, v.do(http.MethodGet, "/api/orders/", "cust-key", ""))
	require.Len(t, orders, 1)
	assert.Equal(t, "Basic", orders[0].Title)
	assert.Equal(t, "100.00", orders[0].Price.String())
}

func TestCreateOrderRejects(t *testing.T) {
	v := newEnv(t)
	offer := v.createOffer(t, "biz-key", logoOffer)

	assert.Equal(t, http.StatusForbidden, v.do(http.MethodPost, "/api/orders/", "biz-key", fmt.Sprintf(`{"offer_detail_id": %d}`, offer.Details[0].ID)).Code)
	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodPost, "/api/orders/", "", `{"offer_detail_id": 1}`).Code)

	for _, body := range []string{`{}`, `{"offer_detail_id": null}`, `{"offer_detail_id": "abc"}`, `{"offer_detail_id": -3}`, `{"offer_detail_id": 1.5}`} {
		rec := v.do(http.MethodPost, "/api/orders/", "cust-key", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "offer_detail_id", body)
	}
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodPost, "/api/orders/", "cust-key", `{"offer_detail_id": 999}`).Code)

	rec := v.do(http.MethodPost, "/api/orders/", "cust-key", fmt.Sprintf(`{"offer_detail_id": "%d"}`, offer.Details[0].ID))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListOrdersForBothSides(t *testing.T) {
	v := newEnv(t)
	offer := v.createOffer(t, "biz-key", logoOffer)
	first := v.placeOrder(t, "cust-key", offer.Details[0].ID)
	second := v.placeOrder(t, "cust2-key", offer.Details[1].ID)

	mine := decode[[]OrderResponse](t, v.do(http.MethodGet, "/api/orders/", "cust-key", ""))
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	sold := decode[[]OrderResponse](t, v.do(http.MethodGet, "/api/orders/", "biz-key", ""))
	require.Len(t, sold, 2)
	assert.Equal(t, second.ID, sold[0].ID)

	none := v.do(http.MethodGet, "/api/orders/", "biz2-key", "")
	require.Equal(t, http.StatusOK, none.Code)
	assert.JSONEq(t, `[]`, none.Body.String())
}

func TestUpdateOrderStatus(t *testing.T) {
	v := newEnv(t)
	offer := v.createOffer(t, "biz-key", logoOffer)
	order := v.placeOrder(t, "cust-key", offer.Details[0].ID)
	path := fmt.Sprintf("/api/orders/%d/", order.ID)

	assert.Equal(t, http.StatusForbidden, v.do(http.MethodPatch, path, "cust-key", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusForbidden, v.do(http.MethodPatch, path, "biz2-key", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodPatch, "/api/orders/999/", "biz-key", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPatch, path, "biz-key", `{"status":"shipped"}`).Code)
	assert.Equal(t, http.StatusBadRequest, v.do(http.MethodPatch, path, "biz-key", `{"title":"x"}`).Code)
	assert.Empty(t, v.live.events)

	rec := v.do(http.MethodPatch, path, "biz-key", `{"status":"completed","title":"ignored","price":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[OrderResponse](t, rec)
	assert.Equal(t, models.OrderCompleted, got.Status)
	assert.Equal(t, "Basic", got.Title)
	assert.Equal(t, "100.00", got.Price.String())
	assert.Equal(t, []int64{order.ID}, v.live.events)
	assert.Equal(t, []string{"cust@example.com:completed"}, v.notifier.changed)

	// any state may follow any other
	rec = v.do(http.MethodPatch, path, "biz-key", `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderInProgress, decode[OrderResponse](t, rec).Status)
}

func TestDeleteOrderIsStaffOnly(t *testing.T) {
	v := newEnv(t)
	offer := v.createOffer(t, "biz-key", logoOffer)
	order := v.placeOrder(t, "cust-key", offer.Details[0].ID)
	path := fmt.Sprintf("/api/orders/%d/", order.ID)

	assert.Equal(t, http.StatusForbidden, v.do(http.MethodDelete, path, "biz-key", "").Code)
	assert.Equal(t, http.StatusForbidden, v.do(http.MethodDelete, path, "cust-key", "").Code)
	require.Equal(t, http.StatusNoContent, v.do(http.MethodDelete, path, "staff-key", "").Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodDelete, path, "staff-key", "").Code)
}

func TestOrderCounts(t *testing.T) {
	v := newEnv(t)
	offer := v.createOffer(t, "biz-key", logoOffer)
	a := v.placeOrder(t, "cust-key", offer.Details[0].ID)
	v.placeOrder(t, "cust2-key", offer.Details[1].ID)
	require.Equal(t, http.StatusOK, v.do(http.MethodPatch, fmt.Sprintf("/api/orders/%d/", a.ID), "biz-key", `{"status":"completed"}`).Code)

	rec := v.do(http.MethodGet, "/api/order-count/1/", "cust-key", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"order_count":1}`, rec.Body.String())

	rec = v.do(http.MethodGet, "/api/completed-order-count/1/", "cust-key", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"completed_order_count":1}`, rec.Body.String())

	rec = v.do(http.MethodGet, "/api/order-count/3/", "cust-key", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"order_count":0}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/api/order-count/99/", "cust-key", "").Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/api/completed-order-count/99/", "cust-key", "").Code)
}

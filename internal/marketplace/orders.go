package marketplace

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

const msgOrderNotFound = "Order not found."

type CreateOrderRequest struct {
	OfferDetailID json.RawMessage `json:"offer_detail_id"`
}

// detailID accepts a positive integer given as a number or a numeric string.
func (r *CreateOrderRequest) detailID() (int64, error) {
	raw := bytes.TrimSpace(r.OfferDetailID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, apperr.Invalid("offer_detail_id", msgRequired)
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, apperr.Invalid("offer_detail_id", "A valid integer is required.")
		}
	} else {
		s = string(raw)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("offer_detail_id", "A valid integer is required.")
	}
	return id, nil
}

// =========================
// CreateOrder - customer buys one tier
// =========================
func (h *Handler) CreateOrder(c echo.Context) error {
	u := middleware.CurrentUser(c)

	req := new(CreateOrderRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Invalid(apperr.NonFieldErrors, "Invalid request body.")
	}
	detailID, err := req.detailID()
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	d, err := h.Offers.GetDetail(ctx, detailID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgDetailNotFound)
	}
	if err != nil {
		return err
	}

	order := models.NewOrderFromDetail(d, u.ID)
	if err := h.Orders.Create(ctx, order); err != nil {
		return err
	}

	h.notify("order_placed", func() error {
		return h.Notifier.OrderPlaced(ctx, order, h.emailOf(ctx, order.BusinessUserID))
	})
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// =========================
// ListOrders - orders the caller buys or sells
// =========================
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.Orders.ListForUser(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// =========================
// DeleteOrder - staff only
// =========================
func (h *Handler) DeleteOrder(c echo.Context) error {
	if !middleware.CurrentUser(c).IsStaff {
		return apperr.Forbidden("You do not have permission to perform this action.")
	}
	id, err := pathID(c.Param("id"), msgOrderNotFound)
	if err != nil {
		return err
	}
	if err := h.Orders.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgOrderNotFound)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) countOrders(c echo.Context, status models.OrderStatus, key string) error {
	id, err := pathID(c.Param("business_user_id"), "Business user not found.")
	if err != nil {
		return err
	}
	n, err := h.Orders.CountForBusiness(c.Request().Context(), id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Business user not found.")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{key: n})
}

// GET /api/order-count/:business_user_id/
func (h *Handler) CountInProgressOrders(c echo.Context) error {
	return h.countOrders(c, models.OrderInProgress, "order_count")
}

// GET /api/completed-order-count/:business_user_id/
func (h *Handler) CountCompletedOrders(c echo.Context) error {
	return h.countOrders(c, models.OrderCompleted, "completed_order_count")
}

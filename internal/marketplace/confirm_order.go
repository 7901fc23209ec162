package marketplace

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

// UpdateOrderStatusRequest ignores every field but status.
type UpdateOrderStatusRequest struct {
	Status *string `json:"status"`
}

// =========================
// UpdateOrderStatus - the selling business moves the order
// =========================
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c.Param("id"), msgOrderNotFound)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	order, err := h.Orders.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgOrderNotFound)
	}
	if err != nil {
		return err
	}
	u := middleware.CurrentUser(c)
	if u.Type != models.Business || order.BusinessUserID != u.ID {
		return apperr.Forbidden("Only the business user of this order can update its status.")
	}

	req := new(UpdateOrderStatusRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Invalid(apperr.NonFieldErrors, "Invalid request body.")
	}
	switch {
	case req.Status == nil:
		return apperr.Invalid("status", msgRequired)
	case !models.OrderStatus(*req.Status).Valid():
		return apperr.Invalid("status", fmt.Sprintf("%q is not a valid choice.", *req.Status))
	}

	updated, err := h.Orders.UpdateStatus(ctx, id, models.OrderStatus(*req.Status))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgOrderNotFound)
	}
	if err != nil {
		return err
	}

	resp := toOrderResponse(updated)
	if h.Live != nil {
		h.Live.BroadcastOrder(updated.ID, resp)
	}
	h.notify("order_status", func() error {
		return h.Notifier.OrderStatusChanged(ctx, updated, h.emailOf(ctx, updated.CustomerUserID))
	})
	return c.JSON(http.StatusOK, resp)
}

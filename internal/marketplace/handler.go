// Package marketplace serves the offer catalog, orders and reviews.
package marketplace

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/alerts"
	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/repository"
)

// OrderBroadcaster pushes an updated order to live subscribers.
type OrderBroadcaster interface {
	BroadcastOrder(orderID int64, order any)
}

// 403 details for the routes gated by middleware.RequireType.
const (
	MsgOfferBusinessOnly  = "Only business users can create offers."
	MsgOrderCustomerOnly  = "Only customer users can create orders."
	MsgReviewCustomerOnly = "Only users with a customer profile can create reviews."
)

type Handler struct {
	Users    repository.UserRepository
	Offers   repository.OfferRepository
	Orders   repository.OrderRepository
	Reviews  repository.ReviewRepository
	Notifier alerts.Notifier
	Live     OrderBroadcaster
	Logger   *zap.Logger
}

func (h *Handler) notify(kind string, fn func() error) {
	if err := fn(); err != nil {
		h.Logger.Warn("notification not queued", zap.String("kind", kind), zap.Error(err))
	}
}

// emailOf looks up a participant's address for notifications. Failures only log.
func (h *Handler) emailOf(ctx context.Context, userID int64) string {
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.Logger.Warn("notification recipient lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return ""
	}
	return u.Email
}

// pathID parses a positive integer path parameter; anything else is a 404.
func pathID(raw, notFound string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(notFound)
	}
	return id, nil
}

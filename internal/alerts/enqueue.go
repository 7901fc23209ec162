// Package alerts turns marketplace events into queued emails.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/models"
)

// Notifier is what handlers call after a successful write. Failures are
// logged by the caller and never fail the request.
type Notifier interface {
	Welcome(ctx context.Context, u *models.User) error
	PasswordReset(ctx context.Context, u *models.User, resetURL string) error
	OrderPlaced(ctx context.Context, o *models.Order, businessEmail string) error
	OrderStatusChanged(ctx context.Context, o *models.Order, customerEmail string) error
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Welcome(context.Context, *models.User) error {
	return nil
}

func (Noop) PasswordReset(context.Context, *models.User, string) error {
	return nil
}

func (Noop) OrderPlaced(context.Context, *models.Order, string) error {
	return nil
}

func (Noop) OrderStatusChanged(context.Context, *models.Order, string) error {
	return nil
}

// Enqueuer is the part of *asynq.Client the queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue schedules notifications as asynq tasks on the emails queue.
type Queue struct {
	client      Enqueuer
	appURL      string
	resetExpiry time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewQueue(client Enqueuer, appURL string, resetExpiry time.Duration, logger *zap.Logger) *Queue {
	return &Queue{
		client:      client,
		appURL:      strings.TrimRight(appURL, "/"),
		resetExpiry: resetExpiry,
		logger:      logger,
		now:         time.Now,
	}
}

func (q *Queue) enqueue(ctx context.Context, taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", taskType, err)
	}
	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(taskType, b), asynq.Queue(queueEmails), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	q.logger.Debug("notification queued", zap.String("type", taskType), zap.String("task_id", info.ID))
	return nil
}

// Welcome schedules a welcome email to the user
func (q *Queue) Welcome(ctx context.Context, u *models.User) error {
	env := EmailEnvelope{
		To:      u.Email,
		Subject: fmt.Sprintf("Welcome to Coderr, %s!", u.Username),
		Body: fmt.Sprintf("Hi %s, thanks for joining Coderr as a %s user.\n\nOpen Coderr: %s\n\nIf the link doesn't work, copy and paste the URL above.",
			u.Username, u.Type, q.appURL),
	}
	return q.enqueue(ctx, TaskWelcomeEmail, WelcomeEmailPayload{
		UserID: u.ID, Username: u.Username, Email: u.Email, Envelope: env, SentAt: q.now(),
	})
}

// PasswordReset schedules a password reset notification
func (q *Queue) PasswordReset(ctx context.Context, u *models.User, resetURL string) error {
	env := EmailEnvelope{
		To:      u.Email,
		Subject: "Password reset instructions",
		Body: fmt.Sprintf("Hello %s,\n\nWe received a request to reset your Coderr password.\n\nTo proceed, open the link below:\n%s\n\nThis link expires in %d minutes. If you did not request this, no action is required.",
			u.Username, resetURL, int(q.resetExpiry.Minutes())),
	}
	return q.enqueue(ctx, TaskPasswordReset, PasswordResetPayload{
		UserID: u.ID, Email: u.Email, ResetURL: resetURL, Envelope: env, Requested: q.now(),
	})
}

// OrderPlaced tells the business user a customer bought one of their tiers
func (q *Queue) OrderPlaced(ctx context.Context, o *models.Order, businessEmail string) error {
	price := o.Price.StringFixed(2)
	env := EmailEnvelope{
		To:      businessEmail,
		Subject: "New order received",
		Body:    fmt.Sprintf("Order #%d for %q (%s) was placed. Price %s, delivery in %d days.", o.ID, o.Title, o.OfferType, price, o.DeliveryTimeInDays),
	}
	return q.enqueue(ctx, TaskOrderPlaced, OrderPlacedPayload{
		OrderID: o.ID, CustomerID: o.CustomerUserID, BusinessID: o.BusinessUserID,
		Email: businessEmail, Price: price, Envelope: env, SentAt: q.now(),
	})
}

// OrderStatusChanged tells the customer where their order stands
func (q *Queue) OrderStatusChanged(ctx context.Context, o *models.Order, customerEmail string) error {
	env := EmailEnvelope{
		To:      customerEmail,
		Subject: "Your order status changed",
		Body:    fmt.Sprintf("Order #%d for %q is now %s.", o.ID, o.Title, strings.ReplaceAll(string(o.Status), "_", " ")),
	}
	return q.enqueue(ctx, TaskOrderStatusChanged, OrderStatusPayload{
		OrderID: o.ID, Status: string(o.Status), Email: customerEmail, Envelope: env, SentAt: q.now(),
	})
}

package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail       = "email:welcome"
	TaskPasswordReset      = "email:password_reset"
	TaskOrderPlaced        = "email:order_placed"
	TaskOrderStatusChanged = "email:order_status_changed"
)

const queueEmails = "emails"

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   int64         `json:"user_id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Password reset payload
type PasswordResetPayload struct {
	UserID    int64         `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// Order placed payload (sent to the business user)
type OrderPlacedPayload struct {
	OrderID    int64         `json:"order_id"`
	CustomerID int64         `json:"customer_id"`
	BusinessID int64         `json:"business_id"`
	Email      string        `json:"email"`
	Price      string        `json:"price"`
	Envelope   EmailEnvelope `json:"envelope"`
	SentAt     time.Time     `json:"sent_at"`
}

// Order status payload (sent to the customer)
type OrderStatusPayload struct {
	OrderID  int64         `json:"order_id"`
	Status   string        `json:"status"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

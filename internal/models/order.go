package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a copy of an offer tier taken when the customer bought it.
type Order struct {
	ID                 int64
	CustomerUserID     int64
	BusinessUserID     int64
	Title              string
	Revisions          int
	DeliveryTimeInDays int
	Price              decimal.Decimal
	Features           []string
	OfferType          OfferType
	Status             OrderStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrderFromDetail snapshots a tier for the given customer.
func NewOrderFromDetail(d *OfferDetail, customerID int64) *Order {
	features := make([]string, len(d.Features))
	copy(features, d.Features)
	return &Order{
		CustomerUserID:     customerID,
		BusinessUserID:     d.BusinessUserID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          d.OfferType,
		Status:             OrderInProgress,
	}
}

// IsParticipant reports whether the user is the buyer or the seller.
func (o *Order) IsParticipant(userID int64) bool {
	return o.CustomerUserID == userID || o.BusinessUserID == userID
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferType names a pricing tier.
type OfferType string

const (
	Basic    OfferType = "basic"
	Standard OfferType = "standard"
	Premium  OfferType = "premium"
)

// MaxOfferDetails is the number of tiers an offer may hold.
const MaxOfferDetails = 3

func (t OfferType) Valid() bool {
	switch t {
	case Basic, Standard, Premium:
		return true
	}
	return false
}

type Offer struct {
	ID          int64
	UserID      int64
	Title       string
	Image       *string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Details     []OfferDetail

	// Owner is filled by listing queries only.
	Owner *UserDetails
}

// MinPrice is the cheapest tier, or zero when the offer has no tiers.
func (o *Offer) MinPrice() decimal.Decimal {
	if len(o.Details) == 0 {
		return decimal.Zero
	}
	min := o.Details[0].Price
	for _, d := range o.Details[1:] {
		if d.Price.LessThan(min) {
			min = d.Price
		}
	}
	return min
}

// MinDeliveryTime is the fastest tier in days, or zero when the offer has no tiers.
func (o *Offer) MinDeliveryTime() int {
	if len(o.Details) == 0 {
		return 0
	}
	min := o.Details[0].DeliveryTimeInDays
	for _, d := range o.Details[1:] {
		if d.DeliveryTimeInDays < min {
			min = d.DeliveryTimeInDays
		}
	}
	return min
}

type OfferDetail struct {
	ID                 int64           `json:"id"`
	OfferID            int64           `json:"offer_id"`
	Title              string          `json:"title"`
	Revisions          int             `json:"revisions"`
	DeliveryTimeInDays int             `json:"delivery_time_in_days"`
	Price              decimal.Decimal `json:"price"`
	Features           []string        `json:"features"`
	OfferType          OfferType       `json:"offer_type"`

	// BusinessUserID is the owner of the parent offer.
	BusinessUserID int64 `json:"business_user_id"`
}

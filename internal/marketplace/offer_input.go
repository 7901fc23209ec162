package marketplace

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/features"
	"github.com/sudo-init-do/coderr/internal/models"
)

const (
	msgRequired = "This field is required."
	msgTitleLen = "Ensure this field has no more than 200 characters."

	maxTitleLen = 200
)

// Prices are stored as NUMERIC(10,2).
var maxPrice = decimal.New(1, 8)

func checkTitle(verr *apperr.ValidationError, field string, title *string) {
	switch {
	case title == nil:
	case strings.TrimSpace(*title) == "":
		verr.Add(field, "This field may not be blank.")
	case utf8.RuneCountInString(strings.TrimSpace(*title)) > maxTitleLen:
		verr.Add(field, msgTitleLen)
	}
}

// nullableString tells an absent field apart from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// OfferDetailInput is one submitted tier. Nil fields were not sent.
type OfferDetailInput struct {
	ID                 *int64           `json:"id"`
	Title              *string          `json:"title"`
	Revisions          *int             `json:"revisions"`
	DeliveryTimeInDays *int             `json:"delivery_time_in_days"`
	Price              *decimal.Decimal `json:"price"`
	Features           json.RawMessage  `json:"features"`
	OfferType          *string          `json:"offer_type"`
}

type OfferInput struct {
	Title       *string            `json:"title"`
	Image       nullableString     `json:"image"`
	Description *string            `json:"description"`
	Details     []OfferDetailInput `json:"details"`
}

func (in *OfferDetailInput) validNumbers(verr *apperr.ValidationError) {
	switch {
	case in.Price == nil:
	case in.Price.IsNegative():
		verr.Add("price", "Price cannot be negative.")
	case !in.Price.Equal(in.Price.Truncate(2)):
		verr.Add("price", "Ensure that there are no more than 2 decimal places.")
	case in.Price.GreaterThanOrEqual(maxPrice):
		verr.Add("price", "Ensure that there are no more than 8 digits before the decimal point.")
	}
	if in.DeliveryTimeInDays != nil && *in.DeliveryTimeInDays <= 0 {
		verr.Add("delivery_time_in_days", "Delivery time must be positive.")
	}
	if in.Revisions != nil && *in.Revisions < 0 {
		verr.Add("revisions", "Revisions cannot be negative.")
	}
	checkTitle(verr, "title", in.Title)
}

func (in *OfferDetailInput) features() ([]string, bool) {
	if in.Features == nil {
		return nil, true
	}
	items, err := features.FromJSON(in.Features)
	return items, err == nil
}

// validate checks a tier. Complete tiers must carry every required field.
func (in *OfferDetailInput) validate(complete bool) *apperr.ValidationError {
	verr := apperr.NewValidation()
	if complete {
		if in.Title == nil {
			verr.Add("title", msgRequired)
		}
		if in.DeliveryTimeInDays == nil {
			verr.Add("delivery_time_in_days", msgRequired)
		}
		if in.Price == nil {
			verr.Add("price", msgRequired)
		}
	}
	switch {
	case in.OfferType == nil || *in.OfferType == "":
		verr.Add("offer_type", "Each detail must include 'offer_type' (basic, standard or premium).")
	case !models.OfferType(*in.OfferType).Valid():
		verr.Add("offer_type", fmt.Sprintf("Invalid offer_type '%s'. Must be one of: basic, standard, premium.", *in.OfferType))
	}
	in.validNumbers(verr)
	if _, ok := in.features(); !ok {
		verr.Add("features", "Features must be a list or a string.")
	}
	return verr
}

// apply copies every sent field onto the tier.
func (in *OfferDetailInput) apply(d *models.OfferDetail) {
	if in.Title != nil {
		d.Title = strings.TrimSpace(*in.Title)
	}
	if in.Revisions != nil {
		d.Revisions = *in.Revisions
	}
	if in.DeliveryTimeInDays != nil {
		d.DeliveryTimeInDays = *in.DeliveryTimeInDays
	}
	if in.Price != nil {
		d.Price = *in.Price
	}
	if items, _ := in.features(); items != nil {
		d.Features = items
	}
	if in.OfferType != nil {
		d.OfferType = models.OfferType(*in.OfferType)
	}
}

// applyOffer copies the top level fields that were sent.
func (in *OfferInput) applyOffer(o *models.Offer) {
	if in.Title != nil {
		o.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		o.Description = *in.Description
	}
	if in.Image.Set {
		o.Image = in.Image.Value
	}
}

func (in *OfferInput) validateOffer(verr *apperr.ValidationError, complete bool) {
	if in.Title == nil && complete {
		verr.Add("title", msgRequired)
	}
	checkTitle(verr, "title", in.Title)
	if in.Description == nil && complete {
		verr.Add("description", msgRequired)
	}
}

// detailKey names the i-th submitted tier in error maps.
func detailKey(i int) string {
	return fmt.Sprintf("details.%d", i)
}

// duplicateTypes reports whether two tiers share an offer type.
func duplicateTypes(details []models.OfferDetail) bool {
	seen := make(map[models.OfferType]bool, len(details))
	for _, d := range details {
		if seen[d.OfferType] {
			return true
		}
		seen[d.OfferType] = true
	}
	return false
}

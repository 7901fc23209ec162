package marketplace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sudo-init-do/coderr/internal/models"
)

// OfferDetailResponse is a full tier. Price is shown in whole units.
type OfferDetailResponse struct {
	ID                 int64            `json:"id"`
	Title              string           `json:"title"`
	Revisions          int              `json:"revisions"`
	DeliveryTimeInDays int              `json:"delivery_time_in_days"`
	Price              int64            `json:"price"`
	Features           []string         `json:"features"`
	OfferType          models.OfferType `json:"offer_type"`
}

// DetailLink points at a tier from an offer.
type DetailLink struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// OfferResponse is returned by GET /api/offers/:id/.
type OfferResponse struct {
	ID              int64        `json:"id"`
	User            int64        `json:"user"`
	Title           string       `json:"title"`
	Image           *string      `json:"image"`
	Description     string       `json:"description"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Details         []DetailLink `json:"details"`
	MinPrice        json.Number  `json:"min_price"`
	MinDeliveryTime int          `json:"min_delivery_time"`
}

// OfferListItem adds the owner's names to the listing.
type OfferListItem struct {
	OfferResponse
	UserDetails models.UserDetails `json:"user_details"`
}

// OfferWriteResponse answers create and update.
type OfferWriteResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Image       *string               `json:"image"`
	Description string                `json:"description"`
	Details     []OfferDetailResponse `json:"details"`
}

// Page is the paginated envelope of the offer listing.
type Page struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []OfferListItem `json:"results"`
}

func detailURL(id int64) string {
	return fmt.Sprintf("/api/offerdetails/%d/", id)
}

func toDetailResponse(d *models.OfferDetail) OfferDetailResponse {
	feats := d.Features
	if feats == nil {
		feats = []string{}
	}
	return OfferDetailResponse{
		ID:                 d.ID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price.IntPart(),
		Features:           feats,
		OfferType:          d.OfferType,
	}
}

func toOfferResponse(o *models.Offer) OfferResponse {
	links := make([]DetailLink, 0, len(o.Details))
	for _, d := range o.Details {
		links = append(links, DetailLink{ID: d.ID, URL: detailURL(d.ID)})
	}
	return OfferResponse{
		ID:              o.ID,
		User:            o.UserID,
		Title:           o.Title,
		Image:           o.Image,
		Description:     o.Description,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Details:         links,
		MinPrice:        json.Number(o.MinPrice().String()),
		MinDeliveryTime: o.MinDeliveryTime(),
	}
}

func toListItem(o *models.Offer) OfferListItem {
	item := OfferListItem{OfferResponse: toOfferResponse(o)}
	if o.Owner != nil {
		item.UserDetails = *o.Owner
	}
	return item
}

func toWriteResponse(o *models.Offer) OfferWriteResponse {
	details := make([]OfferDetailResponse, 0, len(o.Details))
	for i := range o.Details {
		details = append(details, toDetailResponse(&o.Details[i]))
	}
	return OfferWriteResponse{
		ID:          o.ID,
		Title:       o.Title,
		Image:       o.Image,
		Description: o.Description,
		Details:     details,
	}
}

// OrderResponse is the full order. Price keeps its two decimals.
type OrderResponse struct {
	ID                 int64              `json:"id"`
	CustomerUser       int64              `json:"customer_user"`
	BusinessUser       int64              `json:"business_user"`
	Title              string             `json:"title"`
	Revisions          int                `json:"revisions"`
	DeliveryTimeInDays int                `json:"delivery_time_in_days"`
	Price              json.Number        `json:"price"`
	Features           []string           `json:"features"`
	OfferType          models.OfferType   `json:"offer_type"`
	Status             models.OrderStatus `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	feats := o.Features
	if feats == nil {
		feats = []string{}
	}
	return OrderResponse{
		ID:                 o.ID,
		CustomerUser:       o.CustomerUserID,
		BusinessUser:       o.BusinessUserID,
		Title:              o.Title,
		Revisions:          o.Revisions,
		DeliveryTimeInDays: o.DeliveryTimeInDays,
		Price:              json.Number(o.Price.StringFixed(2)),
		Features:           feats,
		OfferType:          o.OfferType,
		Status:             o.Status,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a business user, one per pair.
type Review struct {
	ID             int64     `json:"id"`
	BusinessUserID int64     `json:"business_user"`
	ReviewerID     int64     `json:"reviewer"`
	Rating         int       `json:"rating"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PlatformStats backs the dashboard counters.
type PlatformStats struct {
	ReviewCount          int     `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int     `json:"business_profile_count"`
	OfferCount           int     `json:"offer_count"`
}

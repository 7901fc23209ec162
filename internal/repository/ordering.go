package repository

import "strings"

const DefaultOfferOrdering = "-created_at"

var offerOrderings = map[string]bool{
	"created_at":  true,
	"-created_at": true,
	"updated_at":  true,
	"-updated_at": true,
	"min_price":   true,
	"-min_price":  true,
}

// OfferOrdering falls back to newest first for anything unknown.
func OfferOrdering(s string) string {
	s = strings.TrimSpace(s)
	if offerOrderings[s] {
		return s
	}
	return DefaultOfferOrdering
}

// ReviewOrdering maps "rating" to highest rating first; anything else is newest update first.
func ReviewOrdering(s string) string {
	if strings.TrimSpace(s) == "rating" {
		return "-rating"
	}
	return "-updated_at"
}

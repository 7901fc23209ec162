package marketplace

// CreateReviewRequest is the body of POST /api/reviews/.
type CreateReviewRequest struct {
	BusinessUser *int64  `json:"business_user" validate:"required"`
	Rating       *int    `json:"rating" validate:"required"`
	Description  *string `json:"description" validate:"required"`
}

// UpdateReviewRequest may change only rating and description.
type UpdateReviewRequest struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}

const msgRatingRange = "Rating must be between 1 and 5."

func ratingInRange(r int) bool {
	return r >= 1 && r <= 5
}

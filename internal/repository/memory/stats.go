package memory

import (
	"context"
	"math"

	"github.com/sudo-init-do/coderr/internal/models"
)

type statsRepo struct {
	db *DB
}

func (r *statsRepo) PlatformStats(_ context.Context) (*models.PlatformStats, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	reviews, err := all(txn, tableReviews, "id")
	if err != nil {
		return nil, err
	}
	business, err := all(txn, tableUsers, "type", string(models.Business))
	if err != nil {
		return nil, err
	}
	offers, err := all(txn, tableOffers, "id")
	if err != nil {
		return nil, err
	}

	s := &models.PlatformStats{
		ReviewCount:          len(reviews),
		BusinessProfileCount: len(business),
		OfferCount:           len(offers),
	}
	if len(reviews) > 0 {
		sum := 0
		for _, raw := range reviews {
			sum += raw.(*models.Review).Rating
		}
		s.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return s, nil
}

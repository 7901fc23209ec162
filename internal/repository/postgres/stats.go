package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/coderr/internal/models"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

// PlatformStats counts in one round trip; the average is rounded to one decimal.
func (r *StatsRepo) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var s models.PlatformStats
	err := r.pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM reviews),
            COALESCE((SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews), 0)::float8,
            (SELECT COUNT(*) FROM users WHERE type = 'business'),
            (SELECT COUNT(*) FROM offers)`,
	).Scan(&s.ReviewCount, &s.AverageRating, &s.BusinessProfileCount, &s.OfferCount)
	if err != nil {
		return nil, mapErr("StatsRepo.PlatformStats", err)
	}
	return &s, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

const reviewColumns = `id, business_user_id, reviewer_id, rating, description, created_at, updated_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.BusinessUserID, &rv.ReviewerID, &rv.Rating, &rv.Description, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, rv *models.Review) error {
	err := r.pool.QueryRow(ctx, `
        INSERT INTO reviews (business_user_id, reviewer_id, rating, description)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`,
		rv.BusinessUserID, rv.ReviewerID, rv.Rating, rv.Description,
	).Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	return mapErr("ReviewRepo.Create", err)
}

func (r *ReviewRepo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	return rv, mapErr("ReviewRepo.GetByID", err)
}

func (r *ReviewRepo) Exists(ctx context.Context, businessUserID, reviewerID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM reviews WHERE business_user_id = $1 AND reviewer_id = $2)`,
		businessUserID, reviewerID,
	).Scan(&exists)
	return exists, mapErr("ReviewRepo.Exists", err)
}

func (r *ReviewRepo) List(ctx context.Context, f repository.ReviewFilter) ([]models.Review, error) {
	var (
		where []string
		args  []any
	)
	if f.BusinessUserID != nil {
		args = append(args, *f.BusinessUserID)
		where = append(where, fmt.Sprintf("business_user_id = $%d", len(args)))
	}
	if f.ReviewerID != nil {
		args = append(args, *f.ReviewerID)
		where = append(where, fmt.Sprintf("reviewer_id = $%d", len(args)))
	}
	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if repository.ReviewOrdering(f.Ordering) == "-rating" {
		query += " ORDER BY rating DESC, updated_at DESC, id DESC"
	} else {
		query += " ORDER BY updated_at DESC, id DESC"
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("ReviewRepo.List", err)
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, mapErr("ReviewRepo.List", err)
		}
		out = append(out, *rv)
	}
	return out, mapErr("ReviewRepo.List", rows.Err())
}

func (r *ReviewRepo) Update(ctx context.Context, rv *models.Review) error {
	updated, err := scanReview(r.pool.QueryRow(ctx, `
        UPDATE reviews SET rating = $1, description = $2, updated_at = NOW()
        WHERE id = $3
        RETURNING `+reviewColumns, rv.Rating, rv.Description, rv.ID))
	if err != nil {
		return mapErr("ReviewRepo.Update", err)
	}
	*rv = *updated
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapErr("ReviewRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

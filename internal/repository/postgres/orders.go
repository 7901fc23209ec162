package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/coderr/internal/features"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

const orderColumns = `id, customer_user_id, business_user_id, title, revisions, delivery_time_in_days,
    price::text, features, offer_type, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o     models.Order
		price string
		feats string
	)
	err := row.Scan(&o.ID, &o.CustomerUserID, &o.BusinessUserID, &o.Title, &o.Revisions, &o.DeliveryTimeInDays,
		&price, &feats, &o.OfferType, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if o.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("price %q: %w", price, err)
	}
	o.Features = features.Parse(feats)
	return &o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	if o.Status == "" {
		o.Status = models.OrderInProgress
	}
	err := r.pool.QueryRow(ctx, `
        INSERT INTO orders (customer_user_id, business_user_id, title, revisions, delivery_time_in_days,
            price, features, offer_type, status)
        VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
        RETURNING id, created_at, updated_at`,
		o.CustomerUserID, o.BusinessUserID, o.Title, o.Revisions, o.DeliveryTimeInDays,
		o.Price.String(), features.Encode(o.Features), string(o.OfferType), string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return mapErr("OrderRepo.Create", err)
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	return o, mapErr("OrderRepo.GetByID", err)
}

func (r *OrderRepo) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+orderColumns+` FROM orders
        WHERE customer_user_id = $1 OR business_user_id = $1
        ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, mapErr("OrderRepo.ListForUser", err)
	}
	defer rows.Close()

	out := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, mapErr("OrderRepo.ListForUser", err)
		}
		out = append(out, *o)
	}
	return out, mapErr("OrderRepo.ListForUser", rows.Err())
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `
        UPDATE orders SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING `+orderColumns, string(status), id))
	return o, mapErr("OrderRepo.UpdateStatus", err)
}

func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapErr("OrderRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) CountForBusiness(ctx context.Context, businessUserID int64, status models.OrderStatus) (int, error) {
	var (
		exists bool
		n      int
	)
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM users WHERE id = $1),
               (SELECT COUNT(*) FROM orders WHERE business_user_id = $1 AND status = $2)`,
		businessUserID, string(status),
	).Scan(&exists, &n)
	if err != nil {
		return 0, mapErr("OrderRepo.CountForBusiness", err)
	}
	if !exists {
		return 0, repository.ErrNotFound
	}
	return n, nil
}

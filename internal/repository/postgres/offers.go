package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/coderr/internal/features"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type OfferRepo struct {
	pool *pgxpool.Pool
}

var offerOrderBy = map[string]string{
	"created_at":  "o.created_at ASC, o.id ASC",
	"-created_at": "o.created_at DESC, o.id DESC",
	"updated_at":  "o.updated_at ASC, o.id ASC",
	"-updated_at": "o.updated_at DESC, o.id DESC",
	"min_price":   "agg.min_price ASC NULLS LAST, o.id ASC",
	"-min_price":  "agg.min_price DESC NULLS FIRST, o.id DESC",
}

const detailColumns = `id, offer_id, title, revisions, delivery_time_in_days, price::text, features, offer_type`

func scanDetail(row pgx.Row) (models.OfferDetail, error) {
	var (
		d     models.OfferDetail
		price string
		feats string
	)
	if err := row.Scan(&d.ID, &d.OfferID, &d.Title, &d.Revisions, &d.DeliveryTimeInDays, &price, &feats, &d.OfferType); err != nil {
		return d, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return d, fmt.Errorf("price %q: %w", price, err)
	}
	d.Price = p
	d.Features = features.Parse(feats)
	return d, nil
}

func insertDetail(ctx context.Context, tx pgx.Tx, offerID int64, d *models.OfferDetail) error {
	d.OfferID = offerID
	return tx.QueryRow(ctx, `
        INSERT INTO offer_details (offer_id, title, revisions, delivery_time_in_days, price, features, offer_type)
        VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
        RETURNING id`,
		offerID, d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price.String(), features.Encode(d.Features), string(d.OfferType),
	).Scan(&d.ID)
}

func (r *OfferRepo) Create(ctx context.Context, o *models.Offer) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO offers (user_id, title, image, description)
            VALUES ($1, $2, $3, $4)
            RETURNING id, created_at, updated_at`,
			o.UserID, o.Title, o.Image, o.Description,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range o.Details {
			if err := insertDetail(ctx, tx, o.ID, &o.Details[i]); err != nil {
				return err
			}
			o.Details[i].BusinessUserID = o.UserID
		}
		return nil
	})
	return mapErr("OfferRepo.Create", err)
}

// loadDetails attaches details to the offers, ordered by price then id.
func (r *OfferRepo) loadDetails(ctx context.Context, offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	ids := make([]int64, len(offers))
	index := make(map[int64]int, len(offers))
	for i := range offers {
		ids[i] = offers[i].ID
		index[offers[i].ID] = i
		offers[i].Details = []models.OfferDetail{}
	}

	rows, err := r.pool.Query(ctx, `SELECT `+detailColumns+` FROM offer_details WHERE offer_id = ANY($1) ORDER BY price, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return err
		}
		o := &offers[index[d.OfferID]]
		d.BusinessUserID = o.UserID
		o.Details = append(o.Details, d)
	}
	return rows.Err()
}

func (r *OfferRepo) GetByID(ctx context.Context, id int64) (*models.Offer, error) {
	var o models.Offer
	err := r.pool.QueryRow(ctx, `
        SELECT id, user_id, title, image, description, created_at, updated_at
        FROM offers WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Title, &o.Image, &o.Description, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapErr("OfferRepo.GetByID", err)
	}
	list := []models.Offer{o}
	if err := r.loadDetails(ctx, list); err != nil {
		return nil, mapErr("OfferRepo.GetByID", err)
	}
	return &list[0], nil
}

// escapeLike quotes the LIKE wildcards in a user supplied search term.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *OfferRepo) List(ctx context.Context, f repository.OfferFilter) ([]models.Offer, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.CreatorID != nil {
		where = append(where, "o.user_id = "+arg(*f.CreatorID))
	}
	if f.MinPrice != nil {
		where = append(where, "EXISTS (SELECT 1 FROM offer_details d WHERE d.offer_id = o.id AND d.price >= "+arg(f.MinPrice.String())+"::numeric)")
	}
	if f.MaxDeliveryTime != nil {
		where = append(where, "EXISTS (SELECT 1 FROM offer_details d WHERE d.offer_id = o.id AND d.delivery_time_in_days <= "+arg(*f.MaxDeliveryTime)+")")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		where = append(where, "(o.title ILIKE "+p+" OR o.description ILIKE "+p+")")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers o`+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("OfferRepo.List: count", err)
	}

	query := `
        SELECT o.id, o.user_id, o.title, o.image, o.description, o.created_at, o.updated_at,
               COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), u.username
        FROM offers o
        JOIN users u ON u.id = o.user_id
        LEFT JOIN profiles p ON p.user_id = o.user_id
        LEFT JOIN LATERAL (
            SELECT MIN(d.price) AS min_price FROM offer_details d WHERE d.offer_id = o.id
        ) agg ON TRUE` + cond + `
        ORDER BY ` + offerOrderBy[repository.OfferOrdering(f.Ordering)]
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr("OfferRepo.List", err)
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		var (
			o     models.Offer
			owner models.UserDetails
		)
		err := rows.Scan(&o.ID, &o.UserID, &o.Title, &o.Image, &o.Description, &o.CreatedAt, &o.UpdatedAt,
			&owner.FirstName, &owner.LastName, &owner.Username)
		if err != nil {
			return nil, 0, mapErr("OfferRepo.List", err)
		}
		o.Owner = &owner
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr("OfferRepo.List", err)
	}
	rows.Close()

	if err := r.loadDetails(ctx, offers); err != nil {
		return nil, 0, mapErr("OfferRepo.List: details", err)
	}
	return offers, total, nil
}

func (r *OfferRepo) Save(ctx context.Context, o *models.Offer) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            UPDATE offers SET title = $1, image = $2, description = $3, updated_at = NOW()
            WHERE id = $4
            RETURNING user_id, created_at, updated_at`,
			o.Title, o.Image, o.Description, o.ID,
		).Scan(&o.UserID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range o.Details {
			d := &o.Details[i]
			if d.ID == 0 {
				if err := insertDetail(ctx, tx, o.ID, d); err != nil {
					return err
				}
			} else {
				tag, err := tx.Exec(ctx, `
                    UPDATE offer_details
                    SET title = $1, revisions = $2, delivery_time_in_days = $3, price = $4::numeric,
                        features = $5, offer_type = $6
                    WHERE id = $7 AND offer_id = $8`,
					d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price.String(),
					features.Encode(d.Features), string(d.OfferType), d.ID, o.ID)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return fmt.Errorf("detail %d: %w", d.ID, repository.ErrInvalidInput)
				}
			}
			d.OfferID = o.ID
			d.BusinessUserID = o.UserID
		}
		return nil
	})
	return mapErr("OfferRepo.Save", err)
}

func (r *OfferRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return mapErr("OfferRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OfferRepo) GetDetail(ctx context.Context, id int64) (*models.OfferDetail, error) {
	var (
		d     models.OfferDetail
		price string
		feats string
	)
	err := r.pool.QueryRow(ctx, `
        SELECT d.id, d.offer_id, d.title, d.revisions, d.delivery_time_in_days, d.price::text,
               d.features, d.offer_type, o.user_id
        FROM offer_details d JOIN offers o ON o.id = d.offer_id
        WHERE d.id = $1`, id,
	).Scan(&d.ID, &d.OfferID, &d.Title, &d.Revisions, &d.DeliveryTimeInDays, &price, &feats, &d.OfferType, &d.BusinessUserID)
	if err != nil {
		return nil, mapErr("OfferRepo.GetDetail", err)
	}
	if d.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("OfferRepo.GetDetail: price %q: %w", price, err)
	}
	d.Features = features.Parse(feats)
	return &d, nil
}

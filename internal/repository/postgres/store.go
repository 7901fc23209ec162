// Package postgres implements repository.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/coderr/internal/repository"
)

const uniqueViolation = "23505"

// NewStore wires every repository onto the given pool.
func NewStore(pool *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Users:    &UserRepo{pool: pool},
		Tokens:   &TokenRepo{pool: pool},
		Profiles: &ProfileRepo{pool: pool},
		Offers:   &OfferRepo{pool: pool},
		Orders:   &OrderRepo{pool: pool},
		Reviews:  &ReviewRepo{pool: pool},
		Stats:    &StatsRepo{pool: pool},
		Ping:     pool.Ping,
	}
}

// mapErr converts driver errors into repository sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withTx runs fn in a transaction and commits when it returns nil.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

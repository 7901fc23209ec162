package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Connect opens a pool and pings Postgres once.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables the repositories expect and patches columns
// that older deployments may lack.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	steps := []struct {
		name string
		fn   func(context.Context, *pgxpool.Pool) error
	}{
		{"users", ensureUsersTable},
		{"users.is_active", ensureIsActiveColumn},
		{"auth_tokens", ensureTokensTable},
		{"profiles", ensureProfilesTable},
		{"offers", ensureOffersTables},
		{"orders", ensureOrdersSchema},
		{"reviews", ensureReviewsTable},
	}
	for _, s := range steps {
		if err := s.fn(ctx, pool); err != nil {
			return fmt.Errorf("ensure %s: %w", s.name, err)
		}
		logger.Debug("schema ensured", zap.String("step", s.name))
	}
	logger.Info("database schema ready")
	return nil
}

func ensureUsersTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('customer', 'business')),
            is_staff BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_users_type ON users(type);
    `)
	return err
}

// ensureIsActiveColumn adds users.is_active if missing
func ensureIsActiveColumn(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.columns
            WHERE table_schema = 'public' AND table_name = 'users' AND column_name = 'is_active'
        )`).Scan(&exists)
	if err != nil || exists {
		return err
	}
	if _, err := pool.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS is_active BOOLEAN DEFAULT TRUE`); err != nil {
		return err
	}
	// Backfill any NULLs
	_, err = pool.Exec(ctx, `UPDATE users SET is_active = TRUE WHERE is_active IS NULL`)
	return err
}

func ensureTokensTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS auth_tokens (
            user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            key TEXT NOT NULL UNIQUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `)
	return err
}

func ensureProfilesTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS profiles (
            user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            file TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            tel TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            working_hours TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `)
	return err
}

func ensureOffersTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS offers (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            image TEXT NULL,
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_offers_user ON offers(user_id);
        CREATE TABLE IF NOT EXISTS offer_details (
            id BIGSERIAL PRIMARY KEY,
            offer_id BIGINT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            revisions INTEGER NOT NULL DEFAULT 0 CHECK (revisions >= 0),
            delivery_time_in_days INTEGER NOT NULL CHECK (delivery_time_in_days > 0),
            price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
            features TEXT NOT NULL DEFAULT '[]',
            offer_type TEXT NOT NULL CHECK (offer_type IN ('basic', 'standard', 'premium'))
        );
        CREATE INDEX IF NOT EXISTS idx_offer_details_offer ON offer_details(offer_id);
    `)
	return err
}

// ensureOrdersSchema creates orders and keeps the status constraint in line with the handlers
func ensureOrdersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            customer_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            business_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            revisions INTEGER NOT NULL DEFAULT 0,
            delivery_time_in_days INTEGER NOT NULL,
            price NUMERIC(10, 2) NOT NULL,
            features TEXT NOT NULL DEFAULT '[]',
            offer_type TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'in_progress',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_user_id);
        CREATE INDEX IF NOT EXISTS idx_orders_business_status ON orders(business_user_id, status);
        ALTER TABLE orders ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW();
    `)
	if err != nil {
		return err
	}

	// Replace the auto-named check constraint with the current status set
	if _, err := pool.Exec(ctx, `ALTER TABLE orders DROP CONSTRAINT IF EXISTS orders_status_check`); err != nil {
		return fmt.Errorf("drop orders_status_check: %w", err)
	}
	_, err = pool.Exec(ctx, `
        ALTER TABLE orders
        ADD CONSTRAINT orders_status_check
        CHECK (status IN ('in_progress', 'completed', 'cancelled'))`)
	return err
}

func ensureReviewsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS reviews (
            id BIGSERIAL PRIMARY KEY,
            business_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            reviewer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT reviews_business_reviewer_key UNIQUE (business_user_id, reviewer_id)
        );
    `)
	return err
}

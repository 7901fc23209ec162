package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

const (
	userColumns       = `id, username, email, password_hash, type, COALESCE(is_active, TRUE), is_staff, created_at`
	joinedUserColumns = `u.id, u.username, u.email, u.password_hash, u.type, COALESCE(u.is_active, TRUE), u.is_staff, u.created_at`
)

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Type, &u.IsActive, &u.IsStaff, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Register(ctx context.Context, u *models.User, tokenKey string) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO users (username, email, password_hash, type, is_active, is_staff)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at`,
			u.Username, u.Email, u.PasswordHash, string(u.Type), u.IsActive, u.IsStaff,
		).Scan(&u.ID, &u.CreatedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, u.ID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO auth_tokens (user_id, key) VALUES ($1, $2)`, u.ID, tokenKey)
		return err
	})
	return mapErr("UserRepo.Register", err)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr("UserRepo.GetByID", err)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, mapErr("UserRepo.GetByUsername", err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, mapErr("UserRepo.GetByEmail", err)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return mapErr("UserRepo.UpdatePassword", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetStaff(ctx context.Context, username string, staff bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_staff = $1 WHERE username = $2`, staff, username)
	if err != nil {
		return mapErr("UserRepo.SetStaff", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return mapErr("UserRepo.SetActive", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type TokenRepo struct {
	pool *pgxpool.Pool
}

func (r *TokenRepo) GetOrCreate(ctx context.Context, userID int64, newKey string) (string, error) {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO auth_tokens (user_id, key) VALUES ($1, $2)
        ON CONFLICT (user_id) DO NOTHING`, userID, newKey)
	if err != nil {
		return "", mapErr("TokenRepo.GetOrCreate", err)
	}
	var key string
	err = r.pool.QueryRow(ctx, `SELECT key FROM auth_tokens WHERE user_id = $1`, userID).Scan(&key)
	return key, mapErr("TokenRepo.GetOrCreate", err)
}

func (r *TokenRepo) UserByKey(ctx context.Context, key string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
        SELECT `+joinedUserColumns+`
        FROM auth_tokens t JOIN users u ON u.id = t.user_id
        WHERE t.key = $1`, key))
	return u, mapErr("TokenRepo.UserByKey", err)
}

type ProfileRepo struct {
	pool *pgxpool.Pool
}

const profileSelect = `
    SELECT p.user_id, p.first_name, p.last_name, p.file, p.location, p.tel, p.description,
           p.working_hours, p.created_at, p.updated_at, u.username, u.email, u.type
    FROM profiles p JOIN users u ON u.id = p.user_id`

func scanProfile(row pgx.Row) (*models.ProfileView, error) {
	var v models.ProfileView
	err := row.Scan(&v.UserID, &v.FirstName, &v.LastName, &v.File, &v.Location, &v.Tel, &v.Description,
		&v.WorkingHours, &v.CreatedAt, &v.UpdatedAt, &v.Username, &v.Email, &v.Type)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (*models.ProfileView, error) {
	v, err := scanProfile(r.pool.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1`, userID))
	return v, mapErr("ProfileRepo.Get", err)
}

func (r *ProfileRepo) Update(ctx context.Context, userID int64, patch models.ProfilePatch) (*models.ProfileView, error) {
	var view *models.ProfileView
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		v, err := scanProfile(tx.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1 FOR UPDATE OF p`, userID))
		if err != nil {
			return err
		}
		patch.Apply(v)
		err = tx.QueryRow(ctx, `
            UPDATE profiles SET first_name = $1, last_name = $2, file = $3, location = $4, tel = $5,
                description = $6, working_hours = $7, updated_at = NOW()
            WHERE user_id = $8
            RETURNING updated_at`,
			v.FirstName, v.LastName, v.File, v.Location, v.Tel, v.Description, v.WorkingHours, userID,
		).Scan(&v.UpdatedAt)
		if err != nil {
			return err
		}
		if patch.Email != nil {
			if _, err := tx.Exec(ctx, `UPDATE users SET email = $1 WHERE id = $2`, *patch.Email, userID); err != nil {
				return err
			}
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, mapErr("ProfileRepo.Update", err)
	}
	return view, nil
}

func (r *ProfileRepo) ListByType(ctx context.Context, t models.UserType) ([]models.ProfileView, error) {
	rows, err := r.pool.Query(ctx, profileSelect+` WHERE u.type = $1 ORDER BY p.user_id`, string(t))
	if err != nil {
		return nil, mapErr("ProfileRepo.ListByType", err)
	}
	defer rows.Close()

	out := []models.ProfileView{}
	for rows.Next() {
		v, err := scanProfile(rows)
		if err != nil {
			return nil, mapErr("ProfileRepo.ListByType", err)
		}
		out = append(out, *v)
	}
	return out, mapErr("ProfileRepo.ListByType", rows.Err())
}

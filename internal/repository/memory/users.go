package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type tokenRow struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}

type userRepo struct {
	db *DB
}

func (r *userRepo) Register(_ context.Context, u *models.User, tokenKey string) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	for index, value := range map[string]string{"username": u.Username, "email": u.Email} {
		if _, err := first(txn, tableUsers, index, value); err == nil {
			return fmt.Errorf("UserRepo.Register: %s: %w", index, repository.ErrDuplicate)
		}
	}

	now := r.db.now()
	row := *u
	row.ID = r.db.userSeq.Add(1)
	row.CreatedAt = now
	if err := txn.Insert(tableUsers, &row); err != nil {
		return fmt.Errorf("UserRepo.Register: %w", err)
	}
	if err := txn.Insert(tableProfiles, &models.Profile{UserID: row.ID, CreatedAt: now, UpdatedAt: now}); err != nil {
		return fmt.Errorf("UserRepo.Register: profile: %w", err)
	}
	if err := txn.Insert(tableTokens, &tokenRow{Key: tokenKey, UserID: row.ID, CreatedAt: now}); err != nil {
		return fmt.Errorf("UserRepo.Register: token: %w", err)
	}
	txn.Commit()

	u.ID = row.ID
	u.CreatedAt = now
	return nil
}

func (r *userRepo) get(index string, arg any) (*models.User, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()
	raw, err := first(txn, tableUsers, index, arg)
	if err != nil {
		return nil, err
	}
	u := *raw.(*models.User)
	return &u, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.get("id", id)
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.get("username", username)
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.get("email", email)
}

func (r *userRepo) update(index string, arg any, mutate func(*models.User)) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()
	raw, err := first(txn, tableUsers, index, arg)
	if err != nil {
		return err
	}
	u := *raw.(*models.User)
	mutate(&u)
	if err := txn.Insert(tableUsers, &u); err != nil {
		return fmt.Errorf("UserRepo.update: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.update("id", id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *userRepo) SetStaff(_ context.Context, username string, staff bool) error {
	return r.update("username", username, func(u *models.User) { u.IsStaff = staff })
}

func (r *userRepo) SetActive(_ context.Context, id int64, active bool) error {
	return r.update("id", id, func(u *models.User) { u.IsActive = active })
}

type tokenRepo struct {
	db *DB
}

func (r *tokenRepo) GetOrCreate(_ context.Context, userID int64, newKey string) (string, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	if raw, err := first(txn, tableTokens, "user_id", userID); err == nil {
		return raw.(*tokenRow).Key, nil
	}
	if _, err := first(txn, tableUsers, "id", userID); err != nil {
		return "", err
	}
	if err := txn.Insert(tableTokens, &tokenRow{Key: newKey, UserID: userID, CreatedAt: r.db.now()}); err != nil {
		return "", fmt.Errorf("TokenRepo.GetOrCreate: %w", err)
	}
	txn.Commit()
	return newKey, nil
}

func (r *tokenRepo) UserByKey(_ context.Context, key string) (*models.User, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	raw, err := first(txn, tableTokens, "id", key)
	if err != nil {
		return nil, err
	}
	rawUser, err := first(txn, tableUsers, "id", raw.(*tokenRow).UserID)
	if err != nil {
		return nil, err
	}
	u := *rawUser.(*models.User)
	return &u, nil
}

type profileRepo struct {
	db *DB
}

func profileView(txn *memdb.Txn, p *models.Profile) (*models.ProfileView, error) {
	rawUser, err := first(txn, tableUsers, "id", p.UserID)
	if err != nil {
		return nil, err
	}
	u := rawUser.(*models.User)
	return &models.ProfileView{Profile: *p, Username: u.Username, Email: u.Email, Type: u.Type}, nil
}

func (r *profileRepo) Get(_ context.Context, userID int64) (*models.ProfileView, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	raw, err := first(txn, tableProfiles, "id", userID)
	if err != nil {
		return nil, err
	}
	return profileView(txn, raw.(*models.Profile))
}

func (r *profileRepo) Update(_ context.Context, userID int64, patch models.ProfilePatch) (*models.ProfileView, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableProfiles, "id", userID)
	if err != nil {
		return nil, err
	}
	view, err := profileView(txn, raw.(*models.Profile))
	if err != nil {
		return nil, err
	}
	patch.Apply(view)
	view.UpdatedAt = r.db.now()

	if patch.Email != nil {
		if other, err := first(txn, tableUsers, "email", *patch.Email); err == nil && other.(*models.User).ID != userID {
			return nil, fmt.Errorf("ProfileRepo.Update: email: %w", repository.ErrDuplicate)
		}
		rawUser, err := first(txn, tableUsers, "id", userID)
		if err != nil {
			return nil, err
		}
		u := *rawUser.(*models.User)
		u.Email = *patch.Email
		if err := txn.Insert(tableUsers, &u); err != nil {
			return nil, fmt.Errorf("ProfileRepo.Update: user: %w", err)
		}
	}

	p := view.Profile
	if err := txn.Insert(tableProfiles, &p); err != nil {
		return nil, fmt.Errorf("ProfileRepo.Update: %w", err)
	}
	txn.Commit()
	return view, nil
}

func (r *profileRepo) ListByType(_ context.Context, t models.UserType) ([]models.ProfileView, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	users, err := all(txn, tableUsers, "type", string(t))
	if err != nil {
		return nil, err
	}
	out := make([]models.ProfileView, 0, len(users))
	for _, raw := range users {
		u := raw.(*models.User)
		rawProfile, err := first(txn, tableProfiles, "id", u.ID)
		if err != nil {
			continue
		}
		out = append(out, models.ProfileView{
			Profile:  *rawProfile.(*models.Profile),
			Username: u.Username,
			Email:    u.Email,
			Type:     u.Type,
		})
	}
	sortByUserID(out)
	return out, nil
}

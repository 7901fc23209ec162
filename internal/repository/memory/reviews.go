package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type reviewRepo struct {
	db *DB
}

func (r *reviewRepo) Create(_ context.Context, rv *models.Review) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	if _, err := first(txn, tableReviews, "pair", rv.BusinessUserID, rv.ReviewerID); err == nil {
		return fmt.Errorf("ReviewRepo.Create: %w", repository.ErrDuplicate)
	}
	now := r.db.now()
	rv.ID = r.db.reviewSeq.Add(1)
	rv.CreatedAt, rv.UpdatedAt = now, now
	row := *rv
	if err := txn.Insert(tableReviews, &row); err != nil {
		return fmt.Errorf("ReviewRepo.Create: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *reviewRepo) GetByID(_ context.Context, id int64) (*models.Review, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	raw, err := first(txn, tableReviews, "id", id)
	if err != nil {
		return nil, err
	}
	rv := *raw.(*models.Review)
	return &rv, nil
}

func (r *reviewRepo) Exists(_ context.Context, businessUserID, reviewerID int64) (bool, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	_, err := first(txn, tableReviews, "pair", businessUserID, reviewerID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (r *reviewRepo) List(_ context.Context, f repository.ReviewFilter) ([]models.Review, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	index, args := "id", []any{}
	switch {
	case f.BusinessUserID != nil:
		index, args = "business", []any{*f.BusinessUserID}
	case f.ReviewerID != nil:
		index, args = "reviewer", []any{*f.ReviewerID}
	}
	rows, err := all(txn, tableReviews, index, args...)
	if err != nil {
		return nil, err
	}

	out := make([]models.Review, 0, len(rows))
	for _, raw := range rows {
		rv := raw.(*models.Review)
		if f.ReviewerID != nil && rv.ReviewerID != *f.ReviewerID {
			continue
		}
		out = append(out, *rv)
	}

	byRating := repository.ReviewOrdering(f.Ordering) == "-rating"
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if byRating && a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (r *reviewRepo) Update(_ context.Context, rv *models.Review) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableReviews, "id", rv.ID)
	if err != nil {
		return err
	}
	row := *raw.(*models.Review)
	row.Rating, row.Description = rv.Rating, rv.Description
	row.UpdatedAt = r.db.now()
	if err := txn.Insert(tableReviews, &row); err != nil {
		return fmt.Errorf("ReviewRepo.Update: %w", err)
	}
	txn.Commit()
	*rv = row
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id int64) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableReviews, "id", id)
	if err != nil {
		return err
	}
	if err := txn.Delete(tableReviews, raw); err != nil {
		return fmt.Errorf("ReviewRepo.Delete: %w", err)
	}
	txn.Commit()
	return nil
}

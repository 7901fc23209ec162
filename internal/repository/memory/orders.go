package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type orderRepo struct {
	db *DB
}

func cloneOrder(o models.Order) *models.Order {
	o.Features = append([]string(nil), o.Features...)
	return &o
}

func (r *orderRepo) Create(_ context.Context, o *models.Order) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	now := r.db.now()
	o.ID = r.db.orderSeq.Add(1)
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Status == "" {
		o.Status = models.OrderInProgress
	}
	if err := txn.Insert(tableOrders, cloneOrder(*o)); err != nil {
		return fmt.Errorf("OrderRepo.Create: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id int64) (*models.Order, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	raw, err := first(txn, tableOrders, "id", id)
	if err != nil {
		return nil, err
	}
	return cloneOrder(*raw.(*models.Order)), nil
}

// ListForUser returns orders where the user is buyer or seller, newest first.
func (r *orderRepo) ListForUser(_ context.Context, userID int64) ([]models.Order, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	seen := map[int64]bool{}
	var out []models.Order
	for _, index := range []string{"customer", "business"} {
		rows, err := all(txn, tableOrders, index, userID)
		if err != nil {
			return nil, err
		}
		for _, raw := range rows {
			o := raw.(*models.Order)
			if seen[o.ID] {
				continue
			}
			seen[o.ID] = true
			out = append(out, *cloneOrder(*o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableOrders, "id", id)
	if err != nil {
		return nil, err
	}
	o := cloneOrder(*raw.(*models.Order))
	o.Status = status
	o.UpdatedAt = r.db.now()
	if err := txn.Insert(tableOrders, o); err != nil {
		return nil, fmt.Errorf("OrderRepo.UpdateStatus: %w", err)
	}
	txn.Commit()
	return cloneOrder(*o), nil
}

func (r *orderRepo) Delete(_ context.Context, id int64) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableOrders, "id", id)
	if err != nil {
		return err
	}
	if err := txn.Delete(tableOrders, raw); err != nil {
		return fmt.Errorf("OrderRepo.Delete: %w", err)
	}
	txn.Commit()
	return nil
}

// CountForBusiness fails with ErrNotFound when the user does not exist.
func (r *orderRepo) CountForBusiness(_ context.Context, businessUserID int64, status models.OrderStatus) (int, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	if _, err := first(txn, tableUsers, "id", businessUserID); err != nil {
		return 0, err
	}
	rows, err := all(txn, tableOrders, "business", businessUserID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, raw := range rows {
		if raw.(*models.Order).Status == status {
			n++
		}
	}
	return n, nil
}

var _ repository.OrderRepository = (*orderRepo)(nil)

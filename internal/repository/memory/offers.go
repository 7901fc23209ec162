package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-memdb"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

type offerRepo struct {
	db *DB
}

func cloneDetail(d models.OfferDetail) models.OfferDetail {
	d.Features = append([]string(nil), d.Features...)
	return d
}

func (r *offerRepo) insertDetail(txn *memdb.Txn, offerID int64, d *models.OfferDetail) error {
	d.ID = r.db.detailSeq.Add(1)
	d.OfferID = offerID
	row := cloneDetail(*d)
	row.BusinessUserID = 0
	return txn.Insert(tableDetails, &row)
}

func (r *offerRepo) Create(_ context.Context, o *models.Offer) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	now := r.db.now()
	o.ID = r.db.offerSeq.Add(1)
	o.CreatedAt, o.UpdatedAt = now, now

	row := *o
	row.Details, row.Owner = nil, nil
	if err := txn.Insert(tableOffers, &row); err != nil {
		return fmt.Errorf("OfferRepo.Create: %w", err)
	}
	for i := range o.Details {
		if err := r.insertDetail(txn, o.ID, &o.Details[i]); err != nil {
			return fmt.Errorf("OfferRepo.Create: detail: %w", err)
		}
		o.Details[i].BusinessUserID = o.UserID
	}
	txn.Commit()
	return nil
}

// loadOffer copies the stored offer and attaches its details ordered by price, then id.
func loadOffer(txn *memdb.Txn, raw any) (models.Offer, error) {
	o := *raw.(*models.Offer)
	rows, err := all(txn, tableDetails, "offer_id", o.ID)
	if err != nil {
		return o, err
	}
	o.Details = make([]models.OfferDetail, 0, len(rows))
	for _, rd := range rows {
		d := cloneDetail(*rd.(*models.OfferDetail))
		d.BusinessUserID = o.UserID
		o.Details = append(o.Details, d)
	}
	sort.SliceStable(o.Details, func(i, j int) bool {
		a, b := o.Details[i], o.Details[j]
		if !a.Price.Equal(b.Price) {
			return a.Price.LessThan(b.Price)
		}
		return a.ID < b.ID
	})
	return o, nil
}

func (r *offerRepo) GetByID(_ context.Context, id int64) (*models.Offer, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	raw, err := first(txn, tableOffers, "id", id)
	if err != nil {
		return nil, err
	}
	o, err := loadOffer(txn, raw)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func matchesFilter(o *models.Offer, f repository.OfferFilter, search string) bool {
	if f.CreatorID != nil && o.UserID != *f.CreatorID {
		return false
	}
	if f.MinPrice != nil {
		ok := false
		for _, d := range o.Details {
			if d.Price.GreaterThanOrEqual(*f.MinPrice) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.MaxDeliveryTime != nil {
		ok := false
		for _, d := range o.Details {
			if d.DeliveryTimeInDays <= *f.MaxDeliveryTime {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if search != "" {
		hay := strings.ToLower(o.Title + "\n" + o.Description)
		if !strings.Contains(hay, search) {
			return false
		}
	}
	return true
}

// lessOffer orders by the given key with id as tie breaker in the same direction.
// Offers without details have no min price and sort after priced ones ascending.
func lessOffer(ordering string) func(a, b *models.Offer) bool {
	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")

	cmp := func(a, b *models.Offer) int {
		switch key {
		case "updated_at":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "min_price":
			an, bn := len(a.Details) == 0, len(b.Details) == 0
			switch {
			case an && bn:
				return 0
			case an:
				return 1
			case bn:
				return -1
			}
			return a.MinPrice().Cmp(b.MinPrice())
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	return func(a, b *models.Offer) bool {
		c := cmp(a, b)
		if c == 0 {
			if a.ID == b.ID {
				return false
			}
			if a.ID < b.ID {
				c = -1
			} else {
				c = 1
			}
		}
		if desc {
			return c > 0
		}
		return c < 0
	}
}

func (r *offerRepo) List(_ context.Context, f repository.OfferFilter) ([]models.Offer, int, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	rows, err := all(txn, tableOffers, "id")
	if err != nil {
		return nil, 0, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]models.Offer, 0, len(rows))
	for _, raw := range rows {
		o, err := loadOffer(txn, raw)
		if err != nil {
			return nil, 0, err
		}
		if matchesFilter(&o, f, search) {
			matched = append(matched, o)
		}
	}

	less := lessOffer(repository.OfferOrdering(f.Ordering))
	sort.SliceStable(matched, func(i, j int) bool { return less(&matched[i], &matched[j]) })

	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	page := matched[start:end]

	for i := range page {
		owner := &models.UserDetails{}
		if rawUser, err := first(txn, tableUsers, "id", page[i].UserID); err == nil {
			owner.Username = rawUser.(*models.User).Username
		}
		if rawProfile, err := first(txn, tableProfiles, "id", page[i].UserID); err == nil {
			p := rawProfile.(*models.Profile)
			owner.FirstName, owner.LastName = p.FirstName, p.LastName
		}
		page[i].Owner = owner
	}
	return page, total, nil
}

func (r *offerRepo) Save(_ context.Context, o *models.Offer) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableOffers, "id", o.ID)
	if err != nil {
		return err
	}
	row := *raw.(*models.Offer)
	row.Title, row.Image, row.Description = o.Title, o.Image, o.Description
	row.UpdatedAt = r.db.now()
	if err := txn.Insert(tableOffers, &row); err != nil {
		return fmt.Errorf("OfferRepo.Save: %w", err)
	}

	for i := range o.Details {
		d := &o.Details[i]
		if d.ID == 0 {
			if err := r.insertDetail(txn, o.ID, d); err != nil {
				return fmt.Errorf("OfferRepo.Save: insert detail: %w", err)
			}
		} else {
			existing, err := first(txn, tableDetails, "id", d.ID)
			if err != nil {
				return err
			}
			if existing.(*models.OfferDetail).OfferID != o.ID {
				return fmt.Errorf("OfferRepo.Save: detail %d: %w", d.ID, repository.ErrInvalidInput)
			}
			upd := cloneDetail(*d)
			upd.OfferID, upd.BusinessUserID = o.ID, 0
			if err := txn.Insert(tableDetails, &upd); err != nil {
				return fmt.Errorf("OfferRepo.Save: update detail: %w", err)
			}
		}
		d.OfferID = o.ID
		d.BusinessUserID = row.UserID
	}
	txn.Commit()

	o.UserID, o.CreatedAt, o.UpdatedAt = row.UserID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *offerRepo) Delete(_ context.Context, id int64) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	raw, err := first(txn, tableOffers, "id", id)
	if err != nil {
		return err
	}
	if _, err := txn.DeleteAll(tableDetails, "offer_id", id); err != nil {
		return fmt.Errorf("OfferRepo.Delete: details: %w", err)
	}
	if err := txn.Delete(tableOffers, raw); err != nil {
		return fmt.Errorf("OfferRepo.Delete: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *offerRepo) GetDetail(_ context.Context, id int64) (*models.OfferDetail, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	raw, err := first(txn, tableDetails, "id", id)
	if err != nil {
		return nil, err
	}
	d := cloneDetail(*raw.(*models.OfferDetail))
	rawOffer, err := first(txn, tableOffers, "id", d.OfferID)
	if err != nil {
		return nil, err
	}
	d.BusinessUserID = rawOffer.(*models.Offer).UserID
	return &d, nil
}

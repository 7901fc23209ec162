package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/coderr/internal/models"
)

type UserRepository interface {
	// Register stores the user, an empty profile and the auth token key in one transaction.
	Register(ctx context.Context, u *models.User, tokenKey string) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetStaff(ctx context.Context, username string, staff bool) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type TokenRepository interface {
	// GetOrCreate returns the user's existing key, storing newKey only when none exists.
	GetOrCreate(ctx context.Context, userID int64, newKey string) (string, error)
	UserByKey(ctx context.Context, key string) (*models.User, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID int64) (*models.ProfileView, error)
	Update(ctx context.Context, userID int64, patch models.ProfilePatch) (*models.ProfileView, error)
	ListByType(ctx context.Context, t models.UserType) ([]models.ProfileView, error)
}

// OfferFilter narrows ListOffers. Nil pointers are not applied.
type OfferFilter struct {
	CreatorID       *int64
	MinPrice        *decimal.Decimal
	MaxDeliveryTime *int
	Search          string
	Ordering        string
	Limit           int
	Offset          int
}

type OfferRepository interface {
	// Create inserts the offer with its details and fills in their ids.
	Create(ctx context.Context, o *models.Offer) error
	GetByID(ctx context.Context, id int64) (*models.Offer, error)
	List(ctx context.Context, f OfferFilter) ([]models.Offer, int, error)
	// Save persists offer fields and details; details with ID 0 are inserted.
	Save(ctx context.Context, o *models.Offer) error
	Delete(ctx context.Context, id int64) error
	GetDetail(ctx context.Context, id int64) (*models.OfferDetail, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
	CountForBusiness(ctx context.Context, businessUserID int64, status models.OrderStatus) (int, error)
}

// ReviewFilter narrows ListReviews. Ordering is "-updated_at" (default) or "rating".
type ReviewFilter struct {
	BusinessUserID *int64
	ReviewerID     *int64
	Ordering       string
}

type ReviewRepository interface {
	// Create fails with ErrDuplicate when the reviewer already rated the business user.
	Create(ctx context.Context, r *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	Exists(ctx context.Context, businessUserID, reviewerID int64) (bool, error)
	List(ctx context.Context, f ReviewFilter) ([]models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id int64) error
}

type StatsRepository interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// Store bundles every repository a server needs.
type Store struct {
	Users    UserRepository
	Tokens   TokenRepository
	Profiles ProfileRepository
	Offers   OfferRepository
	Orders   OrderRepository
	Reviews  ReviewRepository
	Stats    StatsRepository

	// Ping reports whether the backing store is reachable.
	Ping func(ctx context.Context) error
}

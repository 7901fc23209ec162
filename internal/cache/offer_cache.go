package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// CachedOfferRepository serves GetDetail from Redis and forwards everything
// else to the wrapped repository. Writes drop the affected detail keys.
type CachedOfferRepository struct {
	repository.OfferRepository
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedOfferRepository(realRepo repository.OfferRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedOfferRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedOfferRepository{OfferRepository: realRepo, redis: rdb, ttl: ttl, logger: logger}
}

func detailKey(id int64) string {
	return fmt.Sprintf("offerdetail:%d", id)
}

func (c *CachedOfferRepository) GetDetail(ctx context.Context, id int64) (*models.OfferDetail, error) {
	key := detailKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}
		var d models.OfferDetail
		if err := json.Unmarshal(data, &d); err != nil {
			c.logger.Warn("bad cached offer detail, reading through", zap.String("key", key), zap.Error(err))
			break
		}
		return &d, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("redis error, reading through", zap.String("key", key), zap.Error(err))
	}

	d, err := c.OfferRepository.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				c.logger.Warn("failed to cache notfound", zap.String("key", key), zap.Error(setErr))
			}
		}
		return nil, err
	}

	jsonData, err := json.Marshal(d)
	if err != nil {
		c.logger.Warn("failed to marshal offer detail", zap.Error(err))
		return d, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache offer detail", zap.String("key", key), zap.Error(err))
	}
	return d, nil
}

func (c *CachedOfferRepository) invalidate(ctx context.Context, details []models.OfferDetail) {
	keys := make([]string, 0, len(details))
	for _, d := range details {
		if d.ID != 0 {
			keys = append(keys, detailKey(d.ID))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("failed to delete offer detail cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Create clears any notfound markers left for the freshly assigned ids.
func (c *CachedOfferRepository) Create(ctx context.Context, o *models.Offer) error {
	if err := c.OfferRepository.Create(ctx, o); err != nil {
		return err
	}
	c.invalidate(ctx, o.Details)
	return nil
}

func (c *CachedOfferRepository) Save(ctx context.Context, o *models.Offer) error {
	err := c.OfferRepository.Save(ctx, o)
	c.invalidate(ctx, o.Details)
	return err
}

func (c *CachedOfferRepository) Delete(ctx context.Context, id int64) error {
	existing, err := c.OfferRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.OfferRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, existing.Details)
	return nil
}

package cache

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/repository/memory"
)

// fakeRedis answers GET/SET/DEL from a map so no server is needed.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	down bool
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.down {
			return errors.New("connection refused")
		}
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[args[1].(string)]
			if !ok {
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			switch v := args[2].(type) {
			case []byte:
				f.data[args[1].(string)] = string(v)
			case string:
				f.data[args[1].(string)] = v
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			var n int64
			for _, k := range args[1:] {
				if _, ok := f.data[k.(string)]; ok {
					delete(f.data, k.(string))
					n++
				}
			}
			c.SetVal(n)
		}
		return nil
	}
}

type countingRepo struct {
	repository.OfferRepository
	detailReads int
}

func (r *countingRepo) GetDetail(ctx context.Context, id int64) (*models.OfferDetail, error) {
	r.detailReads++
	return r.OfferRepository.GetDetail(ctx, id)
}

func setup(t *testing.T) (*CachedOfferRepository, *countingRepo, *fakeRedis, *models.Offer) {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	ctx := context.Background()

	u := &models.User{Username: "biz", Email: "biz@example.com", Type: models.Business, IsActive: true}
	require.NoError(t, store.Users.Register(ctx, u, "k"))

	fake := &fakeRedis{data: map[string]string{}}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(fake)
	t.Cleanup(func() { _ = rdb.Close() })

	counting := &countingRepo{OfferRepository: store.Offers}
	cached := NewCachedOfferRepository(counting, rdb, time.Minute, zap.NewNop())

	o := &models.Offer{UserID: u.ID, Title: "Logo", Details: []models.OfferDetail{{
		Title: "Basic", DeliveryTimeInDays: 5, Price: decimal.NewFromInt(100), Features: []string{"a"}, OfferType: models.Basic,
	}}}
	require.NoError(t, cached.Create(ctx, o))
	return cached, counting, fake, o
}

func TestGetDetailReadsThrough(t *testing.T) {
	cached, counting, _, o := setup(t)
	ctx := context.Background()
	id := o.Details[0].ID

	first, err := cached.GetDetail(ctx, id)
	require.NoError(t, err)
	second, err := cached.GetDetail(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1, counting.detailReads)
	assert.Equal(t, first.Title, second.Title)
	assert.True(t, second.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"a"}, second.Features)
	assert.Equal(t, o.UserID, second.BusinessUserID)
}

func TestSaveInvalidatesDetail(t *testing.T) {
	cached, counting, _, o := setup(t)
	ctx := context.Background()
	id := o.Details[0].ID

	_, err := cached.GetDetail(ctx, id)
	require.NoError(t, err)

	o.Details[0].Price = decimal.NewFromInt(80)
	require.NoError(t, cached.Save(ctx, o))

	d, err := cached.GetDetail(ctx, id)
	require.NoError(t, err)
	assert.True(t, d.Price.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 2, counting.detailReads)
}

func TestDeleteInvalidatesAndCachesMiss(t *testing.T) {
	cached, counting, fake, o := setup(t)
	ctx := context.Background()
	id := o.Details[0].ID

	_, err := cached.GetDetail(ctx, id)
	require.NoError(t, err)
	require.NoError(t, cached.Delete(ctx, o.ID))

	_, err = cached.GetDetail(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, notFoundMarker, fake.data[detailKey(id)])

	_, err = cached.GetDetail(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 2, counting.detailReads)
}

func TestRedisOutageFallsBackToRepository(t *testing.T) {
	cached, counting, fake, o := setup(t)
	fake.down = true

	d, err := cached.GetDetail(context.Background(), o.Details[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Basic", d.Title)
	assert.Equal(t, 1, counting.detailReads)
}

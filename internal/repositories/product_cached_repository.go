package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"inventario/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	cacheKeyPrefix     = "inventario:products:"
	cacheGenerationKey = cacheKeyPrefix + "generation"
)

// errCacheSuperseded aborts a cache store when a write bumped the generation
// after the entry was read from the wrapped repository.
var errCacheSuperseded = errors.New("product cache generation changed")

// CachedProductRepository is a read-through Redis cache in front of another
// ProductRepository. Entries are keyed by a generation counter that every
// write increments, so a write makes all earlier entries unreachable. A read
// only stores its result while the generation it started from is current.
// Redis failures are logged and fall back to the wrapped repository.
type CachedProductRepository struct {
	next ProductRepository
	rdb  *redis.Client
	ttl  time.Duration

	// stale is set while a write could not bump the generation. Reads bypass
	// the cache until a retried bump succeeds.
	stale atomic.Bool
}

// NewCachedProductRepository wraps next with a cache whose entries expire after ttl.
func NewCachedProductRepository(next ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
	}
}

func activeProductsKey(gen int64) string {
	return fmt.Sprintf("%s%d:active", cacheKeyPrefix, gen)
}

func productKey(gen int64, id string) string {
	return fmt.Sprintf("%s%d:product:%s", cacheKeyPrefix, gen, id)
}

func (r *CachedProductRepository) GetAllActive(ctx context.Context) ([]models.Product, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.next.GetAllActive(ctx)
	}

	var products []models.Product
	if r.load(ctx, activeProductsKey(gen), &products) {
		return products, nil
	}

	products, err := r.next.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, gen, activeProductsKey(gen), products)
	return products, nil
}

func (r *CachedProductRepository) GetActiveByID(ctx context.Context, id string) (*models.Product, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.next.GetActiveByID(ctx, id)
	}

	var product models.Product
	if r.load(ctx, productKey(gen, id), &product) {
		return &product, nil
	}

	found, err := r.next.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, gen, productKey(gen, id), found)
	return found, nil
}

func (r *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.next.Create(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.next.Update(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) Deactivate(ctx context.Context, id string) error {
	if err := r.next.Deactivate(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) FirstOrCreateByName(ctx context.Context, product *models.Product) (bool, error) {
	created, err := r.next.FirstOrCreateByName(ctx, product)
	if err != nil {
		return false, err
	}
	if created {
		r.invalidate(ctx)
	}
	return created, nil
}

// generation returns the current cache generation. ok is false when Redis
// cannot be reached, in which case the cache is bypassed.
func (r *CachedProductRepository) generation(ctx context.Context) (int64, bool) {
	if r.stale.Load() {
		gen, err := r.rdb.Incr(ctx, cacheGenerationKey).Result()
		if err != nil {
			return 0, false
		}
		r.stale.Store(false)
		return gen, true
	}

	gen, err := r.rdb.Get(ctx, cacheGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		logrus.WithError(err).Warn("product cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (r *CachedProductRepository) load(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("product cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("discarding undecodable product cache entry")
		if err := r.rdb.Del(ctx, key).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("product cache delete failed")
		}
		return false
	}
	return true
}

// store writes value under key only if the generation is still gen.
func (r *CachedProductRepository) store(ctx context.Context, gen int64, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to encode product cache entry")
		return
	}

	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, cacheGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errCacheSuperseded
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		return err
	}, cacheGenerationKey)

	switch {
	case err == nil:
	case errors.Is(err, errCacheSuperseded), errors.Is(err, redis.TxFailedErr):
		logrus.WithField("key", key).Debug("skipping stale product cache entry")
	default:
		logrus.WithError(err).WithField("key", key).Warn("product cache write failed")
	}
}

// invalidate bumps the generation, orphaning every cached entry.
func (r *CachedProductRepository) invalidate(ctx context.Context) {
	if err := r.rdb.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		r.stale.Store(true)
		logrus.WithError(err).Error("product cache invalidation failed, bypassing cache until it recovers")
	}
}

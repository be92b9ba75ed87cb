package repo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

// TotalsKey is the cache key holding the last computed report.
const TotalsKey = "inventory:report:totals"

// Cache is the subset of redissvc.RedisService used by CachedProductRepository.
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedProductRepository caches Totals in front of another repository and
// drops the cached report on every successful write. Cache failures are
// logged and never surface to the caller. While a cached report may be stale
// (its invalidation failed) reads skip the cache until a Delete or Set
// succeeds.
type CachedProductRepository struct {
	ProductRepository
	cache  Cache
	logger zerolog.Logger
	stale  bool
}

func NewCachedProductRepository(next ProductRepository, cache Cache, logger zerolog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		ProductRepository: next,
		cache:             cache,
		logger:            logger.With().Str("component", "report-cache").Logger(),
	}
}

func (r *CachedProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	created, err := r.ProductRepository.Create(ctx, p)
	if err == nil {
		r.invalidate(ctx)
	}
	return created, err
}

func (r *CachedProductRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	deleted, err := r.ProductRepository.DeleteByName(ctx, name)
	if err == nil && deleted {
		r.invalidate(ctx)
	}
	return deleted, err
}

func (r *CachedProductRepository) UpdateQuantity(ctx context.Context, pattern string, quantity int, mode UpdateMode) (int64, error) {
	n, err := r.ProductRepository.UpdateQuantity(ctx, pattern, quantity, mode)
	if err == nil {
		r.invalidate(ctx)
	}
	return n, err
}

func (r *CachedProductRepository) Totals(ctx context.Context) (Totals, error) {
	if r.stale {
		r.invalidate(ctx)
	}

	if r.stale {
		r.logger.Debug().Msg("report cache bypassed")
	} else {
		var cached Totals
		hit, err := r.cache.GetJSON(ctx, TotalsKey, &cached)
		switch {
		case err != nil:
			r.logger.Warn().Err(err).Msg("report cache read failed")
		case hit:
			r.logger.Debug().Msg("report cache hit")
			return cached, nil
		default:
			r.logger.Debug().Msg("report cache miss")
		}
	}

	t, err := r.ProductRepository.Totals(ctx)
	if err != nil {
		return Totals{}, err
	}
	if err := r.cache.SetJSON(ctx, TotalsKey, t); err != nil {
		r.logger.Warn().Err(err).Msg("report cache write failed")
	} else {
		r.stale = false
	}
	return t, nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, TotalsKey); err != nil {
		r.stale = true
		r.logger.Warn().Err(err).Msg("report cache invalidation failed")
		return
	}
	r.stale = false
}

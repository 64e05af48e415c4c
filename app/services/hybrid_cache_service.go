package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/models"
)

// HybridCacheService reads Redis first and falls back to Mongo, back-filling
// Redis on a Mongo hit. Writes go to both.
type HybridCacheService struct {
	redisCache *RedisCacheService
	mongoCache *MongoCacheService
	logger     *zap.Logger
}

func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{redisCache: redisCache, mongoCache: mongoCache, logger: logger}
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.AdResult, bool, error) {
	result, found, err := hcs.redisCache.Get(ctx, key)
	switch {
	case err != nil:
		hcs.logger.Warn("redis read failed, falling back to mongo", zap.Error(err))
	case found:
		return result, true, nil
	}

	result, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.redisCache.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("redis back-fill failed", zap.String("key", key), zap.Error(err))
		}
	}()
	return result, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.AdResult) error {
	return hcs.both(
		func() error { return hcs.redisCache.Set(ctx, key, result) },
		func() error { return hcs.mongoCache.Set(ctx, key, result) },
	)
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(
		func() error { return hcs.redisCache.Delete(ctx, key) },
		func() error { return hcs.mongoCache.Delete(ctx, key) },
	)
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	return hcs.both(
		func() error { return hcs.redisCache.Clear(ctx) },
		func() error { return hcs.mongoCache.Clear(ctx) },
	)
}

func (hcs *HybridCacheService) InvalidateByReferenceVersion(ctx context.Context, version string) error {
	return hcs.both(
		func() error { return hcs.redisCache.InvalidateByReferenceVersion(ctx, version) },
		func() error { return hcs.mongoCache.InvalidateByReferenceVersion(ctx, version) },
	)
}

// GetStats adds up both tiers; if one tier fails the other's stats are
// returned alone.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	rs, rerr := hcs.redisCache.GetStats(ctx)
	ms, merr := hcs.mongoCache.GetStats(ctx)
	switch {
	case rerr != nil && merr != nil:
		return nil, errors.Join(rerr, merr)
	case rerr != nil:
		return ms, nil
	case merr != nil:
		return rs, nil
	}
	return newCacheStats(rs.TotalHits+ms.TotalHits, rs.TotalMiss+ms.TotalMiss, ms.TotalItems), nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := hcs.redisCache.Exists(ctx, key)
	if err == nil && ok {
		return true, nil
	}
	if err != nil {
		hcs.logger.Warn("redis exists failed, falling back to mongo", zap.Error(err))
	}
	return hcs.mongoCache.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.redisCache.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	return hcs.both(hcs.redisCache.Close, hcs.mongoCache.Close)
}

// both runs the two tier operations concurrently and joins their errors.
func (hcs *HybridCacheService) both(redisOp, mongoOp func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- redisOp() }()
	merr := mongoOp()
	return errors.Join(<-errCh, merr)
}

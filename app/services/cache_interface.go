package services

import (
	"context"
	"time"

	"github.com/classified-extractor/app/models"
)

// CacheStats summarizes hit counters of a cache backend.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

func newCacheStats(hits, misses, items int64) *CacheStats {
	s := &CacheStats{TotalHits: hits, TotalMiss: misses, TotalItems: items}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// ICacheService stores extraction results keyed by ad fingerprint.
type ICacheService interface {
	Get(ctx context.Context, key string) (*models.AdResult, bool, error)
	Set(ctx context.Context, key string, result *models.AdResult) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// InvalidateByReferenceVersion drops every entry produced against
	// reference tables other than version.
	InvalidateByReferenceVersion(ctx context.Context, version string) error

	GetStats(ctx context.Context) (*CacheStats, error)
	Exists(ctx context.Context, key string) (bool, error)
	GetTTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}

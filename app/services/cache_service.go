package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/classified-extractor/app/models"
)

type memoryEntry struct {
	result   *models.AdResult
	storedAt time.Time
}

// CacheService is an in-memory TTL cache, the default API backend.
type CacheService struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService creates an in-memory cache. A non-positive ttl keeps
// entries forever.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.AdResult, bool, error) {
	cs.mu.RLock()
	e, ok := cs.entries[key]
	cs.mu.RUnlock()

	if !ok || cs.expired(e) {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return e.result, true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.AdResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.entries[key] = memoryEntry{result: result, storedAt: cs.now()}
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.entries, key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.entries = make(map[string]memoryEntry)
	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

func (cs *CacheService) InvalidateByReferenceVersion(ctx context.Context, version string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for key, e := range cs.entries {
		if e.result.ReferenceVersion != version {
			delete(cs.entries, key)
		}
	}
	return nil
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	return newCacheStats(cs.hits.Load(), cs.misses.Load(), int64(cs.Size())), nil
}

// Size returns the number of live entries.
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	n := 0
	for _, e := range cs.entries {
		if !cs.expired(e) {
			n++
		}
	}
	return n
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	e, ok := cs.entries[key]
	return ok && !cs.expired(e), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	e, ok := cs.entries[key]
	if !ok || cs.ttl <= 0 {
		return 0, nil
	}
	if remaining := cs.ttl - cs.now().Sub(e.storedAt); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// CleanupExpired drops expired entries.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for key, e := range cs.entries {
		if cs.expired(e) {
			delete(cs.entries, key)
		}
	}
}

// StartCleanupWorker runs CleanupExpired every interval until ctx is done.
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

func (cs *CacheService) Close() error { return nil }

func (cs *CacheService) expired(e memoryEntry) bool {
	return cs.ttl > 0 && cs.now().Sub(e.storedAt) > cs.ttl
}

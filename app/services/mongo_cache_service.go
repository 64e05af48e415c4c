package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/classified-extractor/app/models"
)

const adCacheCollection = "ad_cache"

// MongoCacheService persists results in MongoDB behind an in-process LRU.
type MongoCacheService struct {
	collection *mongo.Collection
	l1         *lru.Cache[string, *models.AdResult]
	logger     *zap.Logger

	l1Hits    atomic.Int64
	mongoHits atomic.Int64
	misses    atomic.Int64
}

// NewMongoCacheService opens the ad_cache collection of db and ensures its
// indexes. Index creation failures are logged, not fatal.
func NewMongoCacheService(ctx context.Context, db *mongo.Database, l1Size int, logger *zap.Logger) (*MongoCacheService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l1, err := lru.New[string, *models.AdResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create l1 cache: %w", err)
	}

	collection := db.Collection(adCacheCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "fingerprint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reference_version", Value: 1}}},
		{Keys: bson.D{{Key: "newspaper", Value: 1}}},
		{Keys: bson.D{{Key: "last_accessed", Value: 1}}},
	}
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(idxCtx, indexes); err != nil {
		logger.Warn("ad_cache index creation failed", zap.Error(err))
	}

	return &MongoCacheService{collection: collection, l1: l1, logger: logger}, nil
}

func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.AdResult, bool, error) {
	if result, ok := mcs.l1.Get(key); ok {
		mcs.l1Hits.Add(1)
		return result, true, nil
	}

	var entry models.AdCache
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find cached ad %s: %w", key, err)
	}
	mcs.mongoHits.Add(1)

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateByID(ctx, entry.ID, update); err != nil {
		mcs.logger.Warn("ad_cache access update failed", zap.String("fingerprint", key), zap.Error(err))
	}

	result := entry.Result
	mcs.l1.Add(key, &result)
	return &result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.AdResult) error {
	mcs.l1.Add(key, result)

	entry := models.NewAdCache(*result)
	entry.Fingerprint = key
	_, err := mcs.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store cached ad %s: %w", key, err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1.Remove(key)
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		return fmt.Errorf("delete cached ad %s: %w", key, err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1.Purge()
	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear ad cache: %w", err)
	}
	mcs.l1Hits.Store(0)
	mcs.mongoHits.Store(0)
	mcs.misses.Store(0)
	return nil
}

func (mcs *MongoCacheService) InvalidateByReferenceVersion(ctx context.Context, version string) error {
	mcs.l1.Purge()
	res, err := mcs.collection.DeleteMany(ctx, bson.M{"reference_version": bson.M{"$ne": version}})
	if err != nil {
		return fmt.Errorf("invalidate ad cache: %w", err)
	}
	mcs.logger.Info("ad cache invalidated",
		zap.String("reference_version", version),
		zap.Int64("deleted", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count ad cache: %w", err)
	}
	hits := mcs.l1Hits.Load() + mcs.mongoHits.Load()
	mcs.logger.Debug("ad cache stats",
		zap.Int("l1_size", mcs.l1.Len()),
		zap.Int64("l1_hits", mcs.l1Hits.Load()),
		zap.Int64("mongo_hits", mcs.mongoHits.Load()))
	return newCacheStats(hits, mcs.misses.Load(), count), nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1.Contains(key) {
		return true, nil
	}
	n, err := mcs.collection.CountDocuments(ctx, bson.M{"fingerprint": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count cached ad %s: %w", key, err)
	}
	return n > 0, nil
}

// GetTTL is always zero; Mongo entries live until invalidated.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close is a no-op; the client belongs to the caller.
func (mcs *MongoCacheService) Close() error { return nil }

// WarmUp loads the most accessed entries into the LRU.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up ad cache: %w", err)
	}
	defer cursor.Close(ctx)

	loaded := 0
	for cursor.Next(ctx) {
		var entry models.AdCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("skip undecodable cache entry", zap.Error(err))
			continue
		}
		result := entry.Result
		mcs.l1.Add(entry.Fingerprint, &result)
		loaded++
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("warm up ad cache: %w", err)
	}
	mcs.logger.Info("ad cache warmed", zap.Int("loaded", loaded))
	return nil
}

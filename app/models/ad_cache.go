package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdCache is the persisted form of a cached AdResult.
type AdCache struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint      string             `bson:"fingerprint" json:"fingerprint"`
	Newspaper        string             `bson:"newspaper" json:"newspaper"`
	Result           AdResult           `bson:"result" json:"result"`
	ReferenceVersion string             `bson:"reference_version" json:"reference_version"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed     time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount      int                `bson:"access_count" json:"access_count"`
}

// NewAdCache wraps result for storage.
func NewAdCache(result AdResult) *AdCache {
	now := time.Now()
	return &AdCache{
		Fingerprint:      result.Fingerprint,
		Newspaper:        result.Newspaper,
		Result:           result,
		ReferenceVersion: result.ReferenceVersion,
		CreatedAt:        now,
		LastAccessed:     now,
		AccessCount:      1,
	}
}

// UpdateAccess records a cache hit.
func (ac *AdCache) UpdateAccess() {
	ac.LastAccessed = time.Now()
	ac.AccessCount++
}

// IsExpired reports whether the entry is older than ttl.
func (ac *AdCache) IsExpired(ttl time.Duration) bool {
	return time.Since(ac.CreatedAt) > ttl
}

// IsValidReferenceVersion reports whether the entry was produced against
// the given reference tables.
func (ac *AdCache) IsValidReferenceVersion(version string) bool {
	return ac.ReferenceVersion == version
}

// Package storage caches serialized pipeline outputs in Postgres so repeated
// analysis of the same input is free.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB instance and provides helper methods for the analysis
// cache. A nil store is valid and turns every operation into a miss/no-op, so
// the pipeline runs unchanged without a database.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// AnalysisKey derives the content address for a cached analysis. The content
// is trimmed before hashing so whitespace variants of the same PGN share a
// row.
func AnalysisKey(contentType, content string) string {
	h := sha256.New()
	h.Write([]byte(contentType))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(h.Sum(nil))
}

// GetAnalysis fetches a cached payload by key. Returns ErrNotFound on a miss
// (including when no database is configured).
func (s *Store) GetAnalysis(ctx context.Context, key string) ([]byte, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	var row Analysis
	if err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return row.Payload, nil
}

// PutAnalysis stores a payload under key. Writes of an existing key are
// dropped; content addressing makes them identical anyway.
func (s *Store) PutAnalysis(ctx context.Context, key, contentType string, payload []byte) error {
	if s == nil {
		return nil
	}
	row := Analysis{
		Key:         key,
		ContentType: contentType,
		Payload:     payload,
		CreatedAt:   time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Stats represents aggregate counts for the cache.
type Stats struct {
	Analyses int64 `json:"analyses"`
}

// FetchStats aggregates cache counts.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Analysis{}).Count(&stats.Analyses).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

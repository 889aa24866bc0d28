package storage

import "time"

// Analysis is a cached pipeline output, keyed by the content hash of its
// input. Rows are append-only; identical inputs always map to the same key.
type Analysis struct {
	Key         string `gorm:"primaryKey;size:64"`
	ContentType string `gorm:"index"`
	Payload     []byte
	CreatedAt   time.Time
}

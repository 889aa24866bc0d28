package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"chesswire/internal/logging"
)

// CacheKey derives the content address for a synthesis request. The triple is
// hashed exactly as given; callers own text canonicalization.
func CacheKey(text string, mode Mode, tone string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write([]byte(tone))
	return hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	Key      string    `json:"key"`
	Size     int64     `json:"size"`
	LastUsed time.Time `json:"last_used"`
}

// Cache is a content-addressed audio store on disk with an LRU entry bound.
// Entries are immutable once written, so concurrent writes of the same key
// are idempotent. An empty dir makes every operation a no-op.
type Cache struct {
	dir        string
	maxEntries int
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	now     func() time.Time
}

// NewCache opens (or starts) a cache under dir, loading the existing index if
// present.
func NewCache(dir string, maxEntries int, logger *slog.Logger) *Cache {
	c := &Cache{
		dir:        dir,
		maxEntries: maxEntries,
		logger:     logging.WithComponent(logger, "speechcache"),
		entries:    make(map[string]*cacheEntry),
		now:        time.Now,
	}
	if dir == "" {
		return c
	}
	if err := c.load(); err != nil {
		c.logger.Warn("failed to load speech cache index, starting empty", logging.Error(err))
	}
	return c
}

// Get returns the cached audio for key, marking the entry as recently used.
// The recency touch is flushed to the index so LRU order survives a restart.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok {
		entry.LastUsed = c.now()
		if err := c.saveLocked(); err != nil {
			c.logger.Warn("failed to persist cache recency", slog.String("key", key), logging.Error(err))
		}
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(c.audioPath(key))
	if err != nil {
		// index said yes but the file is gone; drop the entry
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return data, true
}

// Put stores audio under key, evicting least-recently-used entries past the
// configured bound.
func (c *Cache) Put(key string, audio []byte) error {
	if c.dir == "" {
		return nil
	}
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp := c.audioPath(key) + ".tmp"
	if err := os.WriteFile(tmp, audio, 0o644); err != nil {
		return fmt.Errorf("write audio temp file: %w", err)
	}
	if err := os.Rename(tmp, c.audioPath(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename audio file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{Key: key, Size: int64(len(audio)), LastUsed: c.now()}
	c.evictLocked()
	if err := c.saveLocked(); err != nil {
		return fmt.Errorf("persist cache index: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 || len(c.entries) <= c.maxEntries {
		return
	}
	ordered := make([]*cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LastUsed.Before(ordered[j].LastUsed)
	})
	for _, e := range ordered[:len(ordered)-c.maxEntries] {
		delete(c.entries, e.Key)
		if err := os.Remove(c.audioPath(e.Key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to remove evicted audio", slog.String("key", e.Key), logging.Error(err))
		}
		c.logger.Debug("evicted audio entry", slog.String("key", e.Key))
	}
}

func (c *Cache) audioPath(key string) string {
	return filepath.Join(c.dir, key+".mp3")
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}
	var entries []cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache index: %w", err)
	}
	for i := range entries {
		e := entries[i]
		c.entries[e.Key] = &e
	}
	return nil
}

// saveLocked writes the index atomically via a temp file.
func (c *Cache) saveLocked() error {
	entries := make([]cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastUsed.After(entries[j].LastUsed)
	})
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.indexPath()); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

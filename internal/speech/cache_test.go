package speech

import (
	"testing"
	"time"

	"chesswire/internal/logging"
)

func TestCacheKeyStable(t *testing.T) {
	a := CacheKey("hello", ModeCalm, "soft")
	b := CacheKey("hello", ModeCalm, "soft")
	if a != b {
		t.Fatalf("identical triples produced different keys")
	}
	for _, other := range []string{
		CacheKey("hello!", ModeCalm, "soft"),
		CacheKey("hello", ModeDramatic, "soft"),
		CacheKey("hello", ModeCalm, "hard"),
	} {
		if other == a {
			t.Errorf("distinct triples collided")
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(t.TempDir(), 10, logging.NewNop())
	key := CacheKey("line one", ModeCalm, "")
	if _, ok := c.Get(key); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	if err := c.Put(key, []byte("audio-bytes")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != "audio-bytes" {
		t.Fatalf("round trip failed: ok=%v data=%q", ok, got)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey("persisted", ModeCalm, "")
	first := NewCache(dir, 10, logging.NewNop())
	if err := first.Put(key, []byte("persisted-audio")); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := NewCache(dir, 10, logging.NewNop())
	got, ok := second.Get(key)
	if !ok || string(got) != "persisted-audio" {
		t.Fatalf("expected entry after reopen, ok=%v", ok)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(t.TempDir(), 2, logging.NewNop())
	now := time.Unix(1000, 0)
	c.now = func() time.Time { now = now.Add(time.Second); return now }

	keyA := CacheKey("a", ModeCalm, "")
	keyB := CacheKey("b", ModeCalm, "")
	keyC := CacheKey("c", ModeCalm, "")
	for _, kv := range []struct {
		key  string
		data string
	}{{keyA, "aa"}, {keyB, "bb"}} {
		if err := c.Put(kv.key, []byte(kv.data)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	// touch A so B becomes the eviction candidate
	if _, ok := c.Get(keyA); !ok {
		t.Fatalf("expected hit on A")
	}
	if err := c.Put(keyC, []byte("cc")); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := c.Get(keyB); ok {
		t.Errorf("expected B to be evicted")
	}
	if _, ok := c.Get(keyA); !ok {
		t.Errorf("expected A to survive")
	}
	if _, ok := c.Get(keyC); !ok {
		t.Errorf("expected C to survive")
	}
	if c.Count() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Count())
	}
}

func TestCacheRecencySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first := NewCache(dir, 2, logging.NewNop())
	now := time.Unix(1000, 0)
	first.now = func() time.Time { now = now.Add(time.Second); return now }

	keyA := CacheKey("a", ModeCalm, "")
	keyB := CacheKey("b", ModeCalm, "")
	keyC := CacheKey("c", ModeCalm, "")
	if err := first.Put(keyA, []byte("aa")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := first.Put(keyB, []byte("bb")); err != nil {
		t.Fatalf("put: %v", err)
	}
	// touch A last; the touch must reach the index, not just memory
	if _, ok := first.Get(keyA); !ok {
		t.Fatalf("expected hit on A")
	}

	second := NewCache(dir, 2, logging.NewNop())
	later := time.Unix(2000, 0)
	second.now = func() time.Time { later = later.Add(time.Second); return later }
	if err := second.Put(keyC, []byte("cc")); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := second.Get(keyB); ok {
		t.Errorf("expected B evicted after reopen; its recency predates A's touch")
	}
	if _, ok := second.Get(keyA); !ok {
		t.Errorf("expected A to survive; its touch was persisted before reopen")
	}
}

func TestCacheWithoutDirIsNoop(t *testing.T) {
	c := NewCache("", 10, logging.NewNop())
	if err := c.Put("key", []byte("data")); err != nil {
		t.Fatalf("no-op put errored: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Errorf("no-op cache should never hit")
	}
}

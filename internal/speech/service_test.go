package speech

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"chesswire/internal/logging"
)

type fakeVendor struct {
	calls    int
	lastText string
	err      error
}

func (f *fakeVendor) Synthesize(ctx context.Context, text string, profile Profile) ([]byte, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio:" + text), nil
}

func newTestService(t *testing.T, vendor Synthesizer) *Service {
	t.Helper()
	cache := NewCache(t.TempDir(), 16, logging.NewNop())
	return NewService(cache, vendor, rand.New(rand.NewSource(1)), logging.NewNop())
}

func TestSynthesizeIdempotent(t *testing.T) {
	vendor := &fakeVendor{}
	svc := newTestService(t, vendor)

	first, err := svc.Synthesize(context.Background(), "The storm gathers.", ModeDramatic, "urgent")
	if err != nil {
		t.Fatalf("first synthesize: %v", err)
	}
	second, err := svc.Synthesize(context.Background(), "The storm gathers.", ModeDramatic, "urgent")
	if err != nil {
		t.Fatalf("second synthesize: %v", err)
	}
	if vendor.calls != 1 {
		t.Errorf("expected exactly one vendor call, got %d", vendor.calls)
	}
	if string(first) != string(second) {
		t.Errorf("cache returned different audio")
	}
}

func TestSynthesizePrepopulatedCacheSkipsVendor(t *testing.T) {
	dir := t.TempDir()
	warm := NewService(NewCache(dir, 16, logging.NewNop()), &fakeVendor{}, rand.New(rand.NewSource(1)), logging.NewNop())
	if _, err := warm.Synthesize(context.Background(), "cached line", ModeCalm, ""); err != nil {
		t.Fatalf("warm synthesize: %v", err)
	}

	cold := &fakeVendor{}
	svc := NewService(NewCache(dir, 16, logging.NewNop()), cold, rand.New(rand.NewSource(2)), logging.NewNop())
	if _, err := svc.Synthesize(context.Background(), "cached line", ModeCalm, ""); err != nil {
		t.Fatalf("cold synthesize: %v", err)
	}
	if cold.calls != 0 {
		t.Errorf("expected zero vendor calls with a prepopulated cache, got %d", cold.calls)
	}
}

func TestSynthesizeVendorFailure(t *testing.T) {
	vendor := &fakeVendor{err: errors.New("vendor down")}
	svc := newTestService(t, vendor)

	_, err := svc.Synthesize(context.Background(), "doomed line", ModeCalm, "")
	if !errors.Is(err, ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
}

func TestSynthesizeExpandsMarkup(t *testing.T) {
	vendor := &fakeVendor{}
	svc := newTestService(t, vendor)
	if _, err := svc.Synthesize(context.Background(), "Short line.", ModeCalm, "somber"); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if vendor.lastText == "Short line." {
		t.Errorf("expected markup-expanded text sent to vendor, got raw input")
	}
}

func TestSynthesizeAutoSelectsMode(t *testing.T) {
	vendor := &fakeVendor{}
	svc := newTestService(t, vendor)
	// no explicit mode; the collapse keyword should select melancholy without
	// erroring, and the call still caches under the empty-mode key
	if _, err := svc.Synthesize(context.Background(), "a tragic collapse", "", ""); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if _, err := svc.Synthesize(context.Background(), "a tragic collapse", "", ""); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if vendor.calls != 1 {
		t.Errorf("expected one vendor call, got %d", vendor.calls)
	}
}

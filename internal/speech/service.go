package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"chesswire/internal/logging"
)

// ErrSynthesis marks vendor or network failures. The replay controller checks
// for it to degrade to silent board advancement.
var ErrSynthesis = errors.New("speech synthesis failed")

// Service is the cache-through synthesizer: cache hits cost nothing, misses
// perform exactly one vendor call and persist the result.
type Service struct {
	cache  *Cache
	vendor Synthesizer
	rng    *rand.Rand
	logger *slog.Logger
}

// NewService wires a cache and vendor together. The random source drives the
// per-call voice-parameter variation.
func NewService(cache *Cache, vendor Synthesizer, rng *rand.Rand, logger *slog.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Service{
		cache:  cache,
		vendor: vendor,
		rng:    rng,
		logger: logging.WithComponent(logger, "speech"),
	}
}

// Synthesize returns audio for the triple, from cache when possible. Vendor
// failures wrap ErrSynthesis; a cache write failure is logged and swallowed
// because it must never block narration delivery.
func (s *Service) Synthesize(ctx context.Context, text string, mode Mode, tone string) ([]byte, error) {
	key := CacheKey(text, mode, tone)
	if audio, ok := s.cache.Get(key); ok {
		s.logger.Debug("speech cache hit", slog.String("key", key))
		return audio, nil
	}

	if mode == "" {
		mode = DetectMode(text)
	}
	expanded := ExpandMarkup(text, tone)
	profile := perturb(profileFor(mode), s.rng)

	audio, err := s.vendor.Synthesize(ctx, expanded, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	if err := s.cache.Put(key, audio); err != nil {
		s.logger.Warn("failed to persist synthesized audio",
			slog.String("key", key), logging.Error(err))
	}
	return audio, nil
}

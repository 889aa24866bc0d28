package replay

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chesswire/internal/emotion"
	"chesswire/internal/logging"
	"chesswire/internal/pgn"
)

// ErrInvalidPGN is returned when a session is requested for unparseable PGN.
var ErrInvalidPGN = errors.New("invalid pgn")

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("replay session not found")

// Hub owns all active replay sessions and sweeps idle ones.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session

	scheduler Scheduler
	narrator  Narrator
	logger    *slog.Logger
}

// NewHub creates a session hub with a cleanup goroutine. A nil scheduler
// falls back to real timers.
func NewHub(scheduler Scheduler, narrator Narrator, logger *slog.Logger) *Hub {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	h := &Hub{
		sessions:  make(map[string]*Session),
		scheduler: scheduler,
		narrator:  narrator,
		logger:    logging.WithComponent(logger, "replayhub"),
	}
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			h.sweep()
		}
	}()
	return h
}

// Create builds a new session from PGN text and an optional heatmap whose
// moves annotate the playback.
func (h *Hub) Create(pgnText string, hm *emotion.Heatmap, cfg Config) (*Session, error) {
	extraction := pgn.Extract(pgnText)
	if !extraction.IsValid {
		return nil, ErrInvalidPGN
	}

	var annotations []emotion.Move
	if hm != nil {
		annotations = hm.Moves
	}

	id := uuid.NewString()
	s := newSession(id, extraction.Moves, annotations, cfg, h.scheduler, h.narrator, h.logger)

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	h.logger.Info("created replay session",
		slog.String("id", id), slog.Int("moves", len(extraction.Moves)))
	return s, nil
}

// Get returns the session for id.
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Remove drops a session, superseding any pending work.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if ok {
		s.mu.Lock()
		s.supersedeLocked()
		s.mu.Unlock()
	}
}

func (h *Hub) sweep() {
	h.mu.Lock()
	var stale []string
	for id, s := range h.sessions {
		if s.idleFor() > time.Hour {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()
	for _, id := range stale {
		h.Remove(id)
		h.logger.Debug("swept idle replay session", slog.String("id", id))
	}
}

package replay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/notnil/chess"

	"chesswire/internal/emotion"
	"chesswire/internal/logging"
	"chesswire/internal/pgn"
	"chesswire/internal/speech"
	"chesswire/pkg/utils"
)

// Narrator is the synthesis boundary consumed by sessions. speech.Service
// satisfies it.
type Narrator interface {
	Synthesize(ctx context.Context, text string, mode speech.Mode, tone string) ([]byte, error)
}

// Session walks a move list with cinematic timing, triggering narration for
// each applied move. All mutation happens under mu in response to transport
// commands and scheduled advances.
type Session struct {
	ID string

	mu            sync.Mutex
	moves         []pgn.Move
	annotations   []emotion.Move
	state         State
	currentIndex  int
	position      string
	speed         float64
	cfg           Config
	generation    uint64
	cancelPending func()
	lastSeen      time.Time

	watchers  map[chan []byte]struct{}
	scheduler Scheduler
	narrator  Narrator
	logger    *slog.Logger
}

func newSession(id string, moves []pgn.Move, annotations []emotion.Move, cfg Config, scheduler Scheduler, narrator Narrator, logger *slog.Logger) *Session {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelayMS * time.Millisecond
	}
	s := &Session{
		ID:          id,
		moves:       moves,
		annotations: annotations,
		state:       StateReady,
		speed:       1.0,
		cfg:         cfg,
		watchers:    make(map[chan []byte]struct{}),
		scheduler:   scheduler,
		narrator:    narrator,
		logger:      logging.WithComponent(logger, "replay"),
		lastSeen:    time.Now(),
	}
	s.currentIndex = initialPositionIndex
	s.position = s.positionAt(initialPositionIndex)
	if len(moves) == 0 {
		s.state = StateIdle
	}
	return s
}

// Touch updates the last seen timestamp for a session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Play starts or resumes playback. Only Ready and Paused sessions start.
func (s *Session) Play() Snapshot {
	s.mu.Lock()
	if s.state == StateReady || s.state == StatePaused {
		s.state = StatePlaying
		s.scheduleAdvanceLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.broadcast(snap)
	return snap
}

// Pause halts playback and cancels any pending advancement. Pausing a
// session that is not playing is a no-op.
func (s *Session) Pause() Snapshot {
	s.mu.Lock()
	if s.state == StatePlaying {
		s.state = StatePaused
		s.supersedeLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.broadcast(snap)
	return snap
}

// Seek jumps to the given move index, clamped to [-1, len(moves)-1]. The
// position is recomputed by replaying from the initial position, never by
// reconstructing deltas. Any in-flight advancement or narration is
// superseded.
func (s *Session) Seek(index int) Snapshot {
	s.mu.Lock()
	if index < initialPositionIndex {
		index = initialPositionIndex
	}
	if index > len(s.moves)-1 {
		index = len(s.moves) - 1
	}
	s.supersedeLocked()
	s.currentIndex = index
	s.position = s.positionAt(index)
	if index == initialPositionIndex {
		s.state = StateReady
	} else {
		s.state = StatePaused
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.broadcast(snap)
	return snap
}

// SetSpeed clamps the multiplier to [0.25, 3.0]. Already-scheduled advances
// keep their original delay; the new speed applies from the next one.
func (s *Session) SetSpeed(multiplier float64) Snapshot {
	s.mu.Lock()
	s.speed = utils.Clamp(multiplier, minSpeed, maxSpeed)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.broadcast(snap)
	return snap
}

// State returns the current snapshot.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a watcher channel for state and narration events.
func (s *Session) Subscribe(ch chan []byte) {
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()
}

// Unsubscribe removes a watcher channel.
func (s *Session) Unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.watchers, ch)
	s.mu.Unlock()
}

// supersedeLocked cancels any pending advance and bumps the generation so
// in-flight synthesis results are discarded on arrival. Safe to call when
// nothing is pending.
func (s *Session) supersedeLocked() {
	if s.cancelPending != nil {
		s.cancelPending()
		s.cancelPending = nil
	}
	s.generation++
}

func (s *Session) scheduleAdvanceLocked() {
	if s.currentIndex+1 >= len(s.moves) {
		return
	}
	gen := s.generation
	delay := s.delayForLocked(s.moves[s.currentIndex+1])
	s.cancelPending = s.scheduler.Schedule(delay, func() { s.advance(gen) })
}

// delayForLocked computes the cinematic delay for the upcoming move. The
// per-move factors do not stack; the single largest applicable one wins.
func (s *Session) delayForLocked(mv pgn.Move) time.Duration {
	delay := time.Duration(float64(s.cfg.BaseDelay) / s.speed)
	if !s.cfg.CinematicMode {
		return delay
	}
	factor := 1.0
	if mv.IsCapture && captureDelayFactor > factor {
		factor = captureDelayFactor
	}
	if (mv.IsCastle || mv.Promotion != "") && castlePromoteFactor > factor {
		factor = castlePromoteFactor
	}
	if mv.GivesCheck && checkDelayFactor > factor {
		factor = checkDelayFactor
	}
	return time.Duration(float64(delay) * factor)
}

// advance applies the next move. It is the only internal transition; it runs
// from the scheduler and re-checks its generation under the lock so a
// pause or seek issued in the meantime wins.
func (s *Session) advance(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.state != StatePlaying || s.currentIndex+1 >= len(s.moves) {
		s.mu.Unlock()
		return
	}
	s.cancelPending = nil
	s.currentIndex++
	mv := s.moves[s.currentIndex]
	s.position = mv.ResultingPosition
	if s.currentIndex == len(s.moves)-1 {
		s.state = StateFinished
	}
	var annotation *emotion.Move
	if s.currentIndex < len(s.annotations) {
		a := s.annotations[s.currentIndex]
		annotation = &a
	}
	finished := s.state == StateFinished
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.broadcast(snap)

	if s.cfg.VoiceNarration && annotation != nil && s.narrator != nil {
		s.narrate(gen, *annotation)
	}

	s.mu.Lock()
	if !finished && s.state == StatePlaying && gen == s.generation {
		s.scheduleAdvanceLocked()
	}
	s.mu.Unlock()
}

// narrate synthesizes and broadcasts narration for the move just applied.
// Failure degrades to silent advancement; a stale generation drops the
// result instead of applying it after a seek.
func (s *Session) narrate(gen uint64, annotation emotion.Move) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	audio, err := s.narrator.Synthesize(ctx, annotation.Narrative, s.cfg.VoiceMode, s.cfg.Tone)
	if err != nil {
		s.logger.Warn("narration synthesis failed, advancing silently",
			slog.Int("move", annotation.MoveNumber), logging.Error(err))
		return
	}

	s.mu.Lock()
	stale := gen != s.generation
	s.mu.Unlock()
	if stale {
		s.logger.Debug("dropping stale narration", slog.Int("move", annotation.MoveNumber))
		return
	}

	event := NarrationEvent{
		Kind:       "narration",
		ID:         s.ID,
		MoveNumber: annotation.MoveNumber,
		Text:       annotation.Narrative,
		AudioB64:   base64.StdEncoding.EncodeToString(audio),
	}
	data, _ := json.Marshal(event)
	s.send(data)
}

// positionAt replays moves[0..index] from the initial position and returns
// the resulting FEN. index -1 yields the starting position.
func (s *Session) positionAt(index int) string {
	game := chess.NewGame()
	for i := 0; i <= index && i < len(s.moves); i++ {
		if err := game.MoveStr(s.moves[i].Notation); err != nil {
			s.logger.Warn("position replay failed",
				slog.Int("move", i), slog.String("san", s.moves[i].Notation), logging.Error(err))
			break
		}
	}
	return game.Position().String()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Kind:         "state",
		ID:           s.ID,
		State:        s.state,
		CurrentIndex: s.currentIndex,
		MoveCount:    len(s.moves),
		Position:     s.position,
		Speed:        s.speed,
	}
	if s.currentIndex >= 0 && s.currentIndex < len(s.moves) {
		snap.LastMove = s.moves[s.currentIndex].Notation
	}
	if s.currentIndex >= 0 && s.currentIndex < len(s.annotations) {
		snap.Narrative = s.annotations[s.currentIndex].Narrative
	}
	return snap
}

// broadcast fans a snapshot out to all watchers without blocking on slow
// consumers.
func (s *Session) broadcast(snap Snapshot) {
	data, _ := json.Marshal(snap)
	s.send(data)
}

func (s *Session) send(data []byte) {
	s.mu.Lock()
	for ch := range s.watchers {
		select {
		case ch <- data:
		default:
		}
	}
	s.mu.Unlock()
}

// idleFor reports how long the session has been untouched.
func (s *Session) idleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeen)
}

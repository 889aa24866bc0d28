// Package replay sequences analyzed games as timed playback sessions with
// transport controls and SSE state broadcast.
package replay

import (
	"time"

	"chesswire/internal/speech"
)

// State names a phase of the session state machine.
type State string

const (
	StateIdle     State = "idle"
	StateReady    State = "ready"
	StatePlaying  State = "playing"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

// Config holds per-session playback options. Unrecognized values fall back to
// defaults during hub creation.
type Config struct {
	VoiceNarration bool          `json:"voiceNarration"`
	CinematicMode  bool          `json:"cinematicMode"`
	VoiceMode      speech.Mode   `json:"voiceMode,omitempty"`
	Tone           string        `json:"tone,omitempty"`
	BaseDelay      time.Duration `json:"-"`
}

// Snapshot is the state payload broadcast to watchers and returned by the
// transport endpoints.
type Snapshot struct {
	Kind         string  `json:"kind"`
	ID           string  `json:"id"`
	State        State   `json:"state"`
	CurrentIndex int     `json:"currentIndex"`
	MoveCount    int     `json:"moveCount"`
	Position     string  `json:"position"`
	Speed        float64 `json:"speed"`
	LastMove     string  `json:"lastMove,omitempty"`
	Narrative    string  `json:"narrative,omitempty"`
}

// NarrationEvent is broadcast when synthesized narration for a move is ready.
type NarrationEvent struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	MoveNumber int    `json:"moveNumber"`
	Text       string `json:"text"`
	AudioB64   string `json:"audio"`
}

// Delay bounds and multipliers for cinematic pacing.
const (
	minSpeed = 0.25
	maxSpeed = 3.0

	captureDelayFactor   = 1.5
	castlePromoteFactor  = 2.0
	checkDelayFactor     = 1.3
	defaultBaseDelayMS   = 2000
	initialPositionIndex = -1
)

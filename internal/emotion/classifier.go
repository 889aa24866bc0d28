// Package emotion scores extracted moves along four heuristic axes and
// aggregates the per-move scores into a game heatmap.
package emotion

import (
	"log/slog"
	"math/rand"

	"chesswire/internal/logging"
	"chesswire/internal/pgn"
	"chesswire/pkg/utils"
)

// Axis baselines before feature adjustments.
const (
	baseTension    = 30.0
	baseHope       = 40.0
	baseAggression = 20.0
	baseCollapse   = 10.0
)

// Vector holds the four 0-100 axis scores for one move.
type Vector struct {
	Tension    float64 `json:"tension"`
	Hope       float64 `json:"hope"`
	Aggression float64 `json:"aggression"`
	Collapse   float64 `json:"collapse"`
}

// Intensity buckets the dominant axis value.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityMedium   Intensity = "medium"
	IntensityHigh     Intensity = "high"
	IntensityCritical Intensity = "critical"
)

// Move is one classified move. Ordering matches the extracted move sequence.
type Move struct {
	MoveNumber  int       `json:"moveNumber"`
	Move        string    `json:"move"`
	PositionRef string    `json:"positionRef"`
	Emotions    Vector    `json:"emotions"`
	Narrative   string    `json:"narrative"`
	Intensity   Intensity `json:"intensity"`
}

// Classifier scores moves. The random source drives the per-axis jitter and
// template choice; tests inject a fixed seed for reproducible output.
type Classifier struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewClassifier constructs a classifier around the given random source. A nil
// rng or logger falls back to a fixed-seed source and a nop logger.
func NewClassifier(rng *rand.Rand, logger *slog.Logger) *Classifier {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Classifier{
		rng:    rng,
		logger: logging.WithComponent(logger, "classifier"),
	}
}

// ClassifyAll scores every move in order. The previous move's evaluation
// feeds the swing-based collapse detection.
func (c *Classifier) ClassifyAll(moves []pgn.Move) []Move {
	out := make([]Move, 0, len(moves))
	prevEval := 0.0
	for _, mv := range moves {
		out = append(out, c.classify(mv, prevEval, len(moves)))
		prevEval = mv.Eval
	}
	return out
}

func (c *Classifier) classify(mv pgn.Move, prevEval float64, total int) Move {
	tension := baseTension
	hope := baseHope
	aggression := baseAggression
	collapse := baseCollapse

	if mv.IsCapture {
		aggression += 25
		tension += 15
	}
	if mv.GivesCheck {
		aggression += 15
		tension += 20
		hope += 10
	}
	if mv.Promotion != "" {
		hope += 30
		tension += 15
	}
	if mv.IsCastle {
		tension -= 15
		hope += 10
	}
	if mv.GivesMate {
		hope += 30
		aggression += 25
	}

	// A large evaluation swing against the mover reads as a collapse. The
	// underlying eval is a material+mobility heuristic, so this labels
	// obvious blunders only.
	swing := swingForMover(mv, prevEval)
	if swing <= -blunderSwing {
		collapse += 45
		tension += 20
	} else if swing >= blunderSwing {
		hope += 20
		aggression += 10
	}

	switch phase(mv.Index, total) {
	case phaseOpening:
		tension *= 0.9
		hope *= 1.1
	case phaseMiddlegame:
		tension *= 1.15
		aggression *= 1.2
	case phaseEndgame:
		tension *= 1.25
		hope *= 1.1
	}

	tension += c.jitter()
	hope += c.jitter()
	aggression += c.jitter()
	collapse += c.jitter()

	vec := Vector{
		Tension:    utils.Clamp(tension, 0, 100),
		Hope:       utils.Clamp(hope, 0, 100),
		Aggression: utils.Clamp(aggression, 0, 100),
		Collapse:   utils.Clamp(collapse, 0, 100),
	}
	if mv.GivesMate {
		vec.Tension = 100
	}

	classified := Move{
		MoveNumber:  mv.Index + 1,
		Move:        mv.Notation,
		PositionRef: mv.ResultingPosition,
		Emotions:    vec,
		Intensity:   intensity(vec),
	}
	classified.Narrative = c.narrativeFor(mv, vec)

	c.logger.Debug("classified move",
		slog.Int("move", classified.MoveNumber),
		slog.String("san", classified.Move),
		slog.String("intensity", string(classified.Intensity)))
	return classified
}

// jitter returns a symmetric perturbation in [-10, 10].
func (c *Classifier) jitter() float64 {
	return c.rng.Float64()*20 - 10
}

// blunderSwing is the eval swing, in pawns, treated as a key moment.
const blunderSwing = 3.0

func swingForMover(mv pgn.Move, prevEval float64) float64 {
	swing := mv.Eval - prevEval
	if mv.Index%2 == 1 { // black moved
		swing = -swing
	}
	return swing
}

type gamePhase int

const (
	phaseOpening gamePhase = iota
	phaseMiddlegame
	phaseEndgame
)

func phase(index, total int) gamePhase {
	if total <= 0 {
		return phaseOpening
	}
	third := total / 3
	switch {
	case index < third:
		return phaseOpening
	case index < 2*third:
		return phaseMiddlegame
	default:
		return phaseEndgame
	}
}

func intensity(v Vector) Intensity {
	m := maxAxis(v)
	switch {
	case m >= 90:
		return IntensityCritical
	case m >= 70:
		return IntensityHigh
	case m >= 50:
		return IntensityMedium
	default:
		return IntensityLow
	}
}

func maxAxis(v Vector) float64 {
	m := v.Tension
	if v.Hope > m {
		m = v.Hope
	}
	if v.Aggression > m {
		m = v.Aggression
	}
	if v.Collapse > m {
		m = v.Collapse
	}
	return m
}

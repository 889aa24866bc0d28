package emotion

import (
	"sort"

	"chesswire/internal/pgn"
)

// peakThreshold is the minimum axis value for a move to enter a peak list.
const peakThreshold = 75.0

// peakLimit caps each per-axis peak list.
const peakLimit = 3

// Peaks holds the top moves per axis, sorted descending by that axis.
type Peaks struct {
	Tension    []Move `json:"tension"`
	Hope       []Move `json:"hope"`
	Aggression []Move `json:"aggression"`
	Collapse   []Move `json:"collapse"`
}

// Heatmap is the full analysis of one game.
type Heatmap struct {
	Moves      []Move      `json:"moves"`
	Peaks      Peaks       `json:"peaks"`
	OverallArc string      `json:"overallArc"`
	KeyMoments []KeyMoment `json:"keyMoments,omitempty"`
}

// KeyMoment flags a move whose heuristic evaluation swing crossed the
// blunder threshold. The labels are heuristic, not engine verdicts.
type KeyMoment struct {
	MoveNumber  int     `json:"moveNumber"`
	Move        string  `json:"move"`
	Swing       float64 `json:"swing"`
	IsBrilliant bool    `json:"isBrilliant"`
	IsBlunder   bool    `json:"isBlunder"`
}

// AnalyzeGame classifies every move and derives peak lists, key moments, and
// the overall narrative arc.
func (c *Classifier) AnalyzeGame(moves []pgn.Move) Heatmap {
	classified := c.ClassifyAll(moves)
	hm := Heatmap{
		Moves: classified,
		Peaks: Peaks{
			Tension:    peaksBy(classified, func(v Vector) float64 { return v.Tension }),
			Hope:       peaksBy(classified, func(v Vector) float64 { return v.Hope }),
			Aggression: peaksBy(classified, func(v Vector) float64 { return v.Aggression }),
			Collapse:   peaksBy(classified, func(v Vector) float64 { return v.Collapse }),
		},
		KeyMoments: keyMoments(moves),
	}
	hm.OverallArc = overallArc(classified)
	return hm
}

func peaksBy(moves []Move, axis func(Vector) float64) []Move {
	var peaks []Move
	for _, m := range moves {
		if axis(m.Emotions) >= peakThreshold {
			peaks = append(peaks, m)
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return axis(peaks[i].Emotions) > axis(peaks[j].Emotions)
	})
	if len(peaks) > peakLimit {
		peaks = peaks[:peakLimit]
	}
	return peaks
}

func keyMoments(moves []pgn.Move) []KeyMoment {
	var out []KeyMoment
	prevEval := 0.0
	for _, mv := range moves {
		swing := swingForMover(mv, prevEval)
		prevEval = mv.Eval
		if swing >= blunderSwing {
			out = append(out, KeyMoment{
				MoveNumber:  mv.Index + 1,
				Move:        mv.Notation,
				Swing:       swing,
				IsBrilliant: true,
			})
		} else if swing <= -blunderSwing {
			out = append(out, KeyMoment{
				MoveNumber: mv.Index + 1,
				Move:       mv.Notation,
				Swing:      swing,
				IsBlunder:  true,
			})
		}
	}
	return out
}

// overallArc reduces the move sequence to one categorical sentence. The first
// matching branch wins.
func overallArc(moves []Move) string {
	if len(moves) == 0 {
		return "A game without moves tells no story."
	}

	var critical, high int
	var sumTension, sumHope, sumAggression, sumCollapse float64
	for _, m := range moves {
		switch m.Intensity {
		case IntensityCritical:
			critical++
		case IntensityHigh:
			high++
		}
		sumTension += m.Emotions.Tension
		sumHope += m.Emotions.Hope
		sumAggression += m.Emotions.Aggression
		sumCollapse += m.Emotions.Collapse
	}
	n := float64(len(moves))
	meanTension := sumTension / n
	meanHope := sumHope / n
	meanAggression := sumAggression / n
	meanCollapse := sumCollapse / n

	switch {
	case critical >= 3:
		return "A dramatic battle swinging violently between triumph and disaster."
	case meanAggression > 60 && meanTension > 60:
		return "A tactical slugfest where neither side ever found safety."
	case meanHope > 70:
		return "A story of hope and redemption carried by relentless optimism."
	case meanCollapse > 40:
		return "A tragic decline from a promising position into ruin."
	case high >= 5:
		return "A tense strategic battle decided by the smallest of margins."
	}
	return "A thoughtful game of patient maneuvering and quiet ideas."
}

// Package speech provides the content-addressed audio cache and the
// speech-synthesis service in front of the external vendor.
package speech

import (
	"fmt"
	"math/rand"
	"strings"

	"chesswire/pkg/utils"
)

// Mode names a voice preset.
type Mode string

const (
	ModeCalm       Mode = "calm"
	ModeDramatic   Mode = "dramatic"
	ModeExcited    Mode = "excited"
	ModeMelancholy Mode = "melancholy"
	ModeIntense    Mode = "intense"
)

// Profile holds the numeric synthesis parameters for a voice mode.
type Profile struct {
	Stability  float64 `json:"stability"`
	Similarity float64 `json:"similarity_boost"`
	Style      float64 `json:"style"`
}

var profiles = map[Mode]Profile{
	ModeCalm:       {Stability: 0.80, Similarity: 0.75, Style: 0.20},
	ModeDramatic:   {Stability: 0.45, Similarity: 0.80, Style: 0.70},
	ModeExcited:    {Stability: 0.30, Similarity: 0.75, Style: 0.85},
	ModeMelancholy: {Stability: 0.70, Similarity: 0.70, Style: 0.40},
	ModeIntense:    {Stability: 0.35, Similarity: 0.85, Style: 0.80},
}

// profileFor returns the preset for a mode, defaulting to calm for
// unrecognized values.
func profileFor(mode Mode) Profile {
	if p, ok := profiles[mode]; ok {
		return p
	}
	return profiles[ModeCalm]
}

// Emotion keyword groups checked in priority order by DetectMode. The order
// mirrors the classifier's template precedence so the selected voice agrees
// with the narration text.
var modeLexicon = []struct {
	mode     Mode
	keywords []string
}{
	{ModeMelancholy, []string{"collapse", "blunder", "disaster", "tragic", "ruin", "falls apart"}},
	{ModeIntense, []string{"attack", "strike", "crush", "ferocious", "blood", "assault"}},
	{ModeDramatic, []string{"tension", "checkmate", "decisive", "edge", "storm", "nerves"}},
	{ModeExcited, []string{"brilliant", "hope", "breakthrough", "stunning", "triumph"}},
}

// DetectMode picks a voice mode from emotion keywords in the text, falling
// back to calm when nothing matches.
func DetectMode(text string) Mode {
	lower := strings.ToLower(text)
	for _, group := range modeLexicon {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.mode
			}
		}
	}
	return ModeCalm
}

// perturb shifts each profile parameter by a bounded random amount so
// repeated synthesis of similar lines does not sound mechanically identical.
func perturb(p Profile, rng *rand.Rand) Profile {
	jitter := func(v float64) float64 {
		return utils.Clamp(v+(rng.Float64()*0.1-0.05), 0, 1)
	}
	return Profile{
		Stability:  jitter(p.Stability),
		Similarity: jitter(p.Similarity),
		Style:      jitter(p.Style),
	}
}

// ExpandMarkup inserts timing and emphasis markup: pauses after sentence
// punctuation, emphasis around *starred* spans, and a tone prosody wrapper.
func ExpandMarkup(text, tone string) string {
	var b strings.Builder
	emphasisOpen := false
	for _, r := range text {
		switch r {
		case '*':
			if emphasisOpen {
				b.WriteString("</emphasis>")
			} else {
				b.WriteString(`<emphasis level="strong">`)
			}
			emphasisOpen = !emphasisOpen
		case '.', '!', '?':
			b.WriteRune(r)
			b.WriteString(`<break time="400ms"/>`)
		case ',', ';':
			b.WriteRune(r)
			b.WriteString(`<break time="200ms"/>`)
		default:
			b.WriteRune(r)
		}
	}
	if emphasisOpen {
		b.WriteString("</emphasis>")
	}

	body := b.String()
	rate, pitch := toneProsody(tone)
	return fmt.Sprintf(`<prosody rate="%s" pitch="%s">%s</prosody>`, rate, pitch, body)
}

func toneProsody(tone string) (rate, pitch string) {
	switch strings.ToLower(strings.TrimSpace(tone)) {
	case "urgent", "intense":
		return "fast", "+2st"
	case "somber", "melancholy":
		return "slow", "-2st"
	case "excited":
		return "fast", "+3st"
	default:
		return "medium", "+0st"
	}
}

// Package narrative renders analyzed games into style-specific prose and
// short social-ready snippets.
package narrative

import (
	"fmt"
	"log/slog"
	"strings"

	"chesswire/internal/emotion"
	"chesswire/internal/logging"
	"chesswire/pkg/utils"
)

// Style names one of the four parallel renderings.
type Style string

const (
	StyleDramatic    Style = "dramatic"
	StyleEducational Style = "educational"
	StylePoetic      Style = "poetic"
	StyleAnalytical  Style = "analytical"
)

// Adaptation carries all four renderings of the same content plus the
// derived metadata.
type Adaptation struct {
	Dramatic    string   `json:"dramatic"`
	Educational string   `json:"educational"`
	Poetic      string   `json:"poetic"`
	Analytical  string   `json:"analytical"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty"`
	Engagement  float64  `json:"engagement"`
}

// Snippet is a short social-media-ready rendering.
type Snippet struct {
	Platform string   `json:"platform"`
	Text     string   `json:"text"`
	Hashtags []string `json:"hashtags"`
}

// Adapter turns content plus a heatmap into the style renderings.
type Adapter struct {
	logger *slog.Logger
}

// NewAdapter constructs an adapter. A nil logger falls back to nop.
func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logging.WithComponent(logger, "narrative")}
}

// Adapt produces all four style renderings at once. The framing sentence per
// style depends on the maximum emotion value seen anywhere in the game.
func (a *Adapter) Adapt(content string, hm *emotion.Heatmap) Adaptation {
	excerpt := excerptOf(content, 240)
	peak := peakEmotion(hm)
	tags := ContentTags(content, hm)

	adapt := Adaptation{
		Dramatic:    frameDramatic(excerpt, peak),
		Educational: frameEducational(excerpt, peak),
		Poetic:      framePoetic(excerpt, peak),
		Analytical:  frameAnalytical(excerpt, peak),
		Tags:        tags,
		Difficulty:  Difficulty(content),
		Engagement:  Engagement(hm, tags),
	}
	a.logger.Debug("adapted narrative",
		slog.Int("tags", len(tags)),
		slog.String("difficulty", adapt.Difficulty))
	return adapt
}

// Render returns the single rendering for one style, defaulting to dramatic
// for unrecognized values.
func (a Adaptation) Render(style Style) string {
	switch style {
	case StyleEducational:
		return a.Educational
	case StylePoetic:
		return a.Poetic
	case StyleAnalytical:
		return a.Analytical
	}
	return a.Dramatic
}

func frameDramatic(excerpt string, peak float64) string {
	if peak >= 90 {
		return "The board trembles on the edge of catastrophe. " + excerpt + " Nothing will ever be the same."
	}
	if peak >= 70 {
		return "Tension crackles across all sixty-four squares. " + excerpt + " The storm is only gathering."
	}
	return "A duel of wills unfolds move by move. " + excerpt
}

func frameEducational(excerpt string, peak float64) string {
	if peak >= 90 {
		return "This game contains a critical teaching moment. " + excerpt + " Study the turning point carefully."
	}
	return "Let's walk through what happened here. " + excerpt + " Notice how each decision shapes the position."
}

func framePoetic(excerpt string, peak float64) string {
	if peak >= 90 {
		return "Like a wave breaking against stone, the game reaches its crescendo. " + excerpt
	}
	return "Sixty-four squares, two minds, one quiet unfolding story. " + excerpt
}

func frameAnalytical(excerpt string, peak float64) string {
	if peak >= 90 {
		return "The decisive phase merits close inspection. " + excerpt + " The evaluation swing here is the story of the game."
	}
	return "Objectively considered: " + excerpt + " The position remained within normal bounds throughout."
}

// Snippets derives platform-ready shorts from the first stretch of content and
// the top key moment, when the analysis produced one.
func (a *Adapter) Snippets(content string, hm *emotion.Heatmap) []Snippet {
	lead := excerptOf(content, 100)
	tags := ContentTags(content, hm)
	hashtags := hashtagsFor(tags)

	var momentLine string
	if hm != nil && len(hm.KeyMoments) > 0 {
		top := hm.KeyMoments[0]
		for _, km := range hm.KeyMoments[1:] {
			if abs(km.Swing) > abs(top.Swing) {
				top = km
			}
		}
		verdict := "a brilliant find"
		if top.IsBlunder {
			verdict = "a heartbreaking blunder"
		}
		momentLine = fmt.Sprintf(" Move %d (%s) was %s.", top.MoveNumber, top.Move, verdict)
	}

	snippets := []Snippet{
		{Platform: "twitter", Text: truncate(lead+momentLine, 280), Hashtags: hashtags},
		{Platform: "instagram", Text: truncate(lead, 280), Hashtags: hashtags},
	}
	return snippets
}

func hashtagsFor(tags []string) []string {
	out := []string{"#chess"}
	for _, t := range tags {
		if len(out) >= 4 {
			break
		}
		out = append(out, "#"+strings.ReplaceAll(t, " ", ""))
	}
	return out
}

// ContentTags labels content from emotion-axis means plus literal chess-phase
// keywords found in the text.
func ContentTags(content string, hm *emotion.Heatmap) []string {
	var tags []string
	seen := make(map[string]struct{})
	add := func(ts ...string) {
		for _, t := range ts {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}

	if hm != nil && len(hm.Moves) > 0 {
		var tension, hope, aggression, collapse float64
		for _, m := range hm.Moves {
			tension += m.Emotions.Tension
			hope += m.Emotions.Hope
			aggression += m.Emotions.Aggression
			collapse += m.Emotions.Collapse
		}
		n := float64(len(hm.Moves))
		if tension/n > 60 {
			add("tactical", "complex")
		}
		if hope/n > 60 {
			add("inspiring", "breakthrough")
		}
		if aggression/n > 60 {
			add("aggressive", "attacking")
		}
		if collapse/n > 40 {
			add("blunder", "learning")
		}
	}

	lower := strings.ToLower(content)
	for _, kw := range []string{"opening", "endgame", "middlegame", "sacrifice", "checkmate"} {
		if strings.Contains(lower, kw) {
			add(kw)
		}
	}
	return tags
}

// complexityMarkers are the keywords counted toward the difficulty level.
var complexityMarkers = []string{
	"zugzwang", "prophylaxis", "zwischenzug", "fortress", "underpromotion",
	"sacrifice", "combination", "initiative", "counterplay", "imbalance",
}

// Difficulty buckets content by how many complexity markers it mentions.
func Difficulty(content string) string {
	lower := strings.ToLower(content)
	hits := 0
	for _, kw := range complexityMarkers {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	switch {
	case hits >= 4:
		return "master"
	case hits >= 3:
		return "advanced"
	case hits >= 2:
		return "intermediate"
	}
	return "beginner"
}

// Engagement scores predicted audience engagement on [0,100].
func Engagement(hm *emotion.Heatmap, tags []string) float64 {
	score := 50.0
	if hm != nil && len(hm.Moves) > 0 {
		var sum float64
		for _, m := range hm.Moves {
			sum += maxOf(m.Emotions)
		}
		meanMax := sum / float64(len(hm.Moves))
		score += (meanMax - 50) * 0.5
		score += 5 * float64(len(hm.KeyMoments))
	}
	score += 2 * float64(len(tags))
	return utils.Clamp(score, 0, 100)
}

func peakEmotion(hm *emotion.Heatmap) float64 {
	if hm == nil {
		return 0
	}
	peak := 0.0
	for _, m := range hm.Moves {
		if v := maxOf(m.Emotions); v > peak {
			peak = v
		}
	}
	return peak
}

func maxOf(v emotion.Vector) float64 {
	m := v.Tension
	for _, x := range []float64{v.Hope, v.Aggression, v.Collapse} {
		if x > m {
			m = x
		}
	}
	return m
}

func excerptOf(content string, n int) string {
	content = strings.TrimSpace(content)
	return truncate(content, n)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

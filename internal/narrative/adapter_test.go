package narrative

import (
	"strings"
	"testing"

	"chesswire/internal/emotion"
	"chesswire/internal/logging"
)

func heatmapWith(vectors []emotion.Vector, moments ...emotion.KeyMoment) *emotion.Heatmap {
	hm := &emotion.Heatmap{KeyMoments: moments}
	for i, v := range vectors {
		hm.Moves = append(hm.Moves, emotion.Move{MoveNumber: i + 1, Move: "e4", Emotions: v})
	}
	return hm
}

func TestAdaptProducesAllStyles(t *testing.T) {
	a := NewAdapter(logging.NewNop())
	hm := heatmapWith([]emotion.Vector{{Tension: 95, Hope: 40, Aggression: 30, Collapse: 10}})
	adapt := a.Adapt("A sharp struggle in the middlegame.", hm)

	for style, text := range map[string]string{
		"dramatic":    adapt.Dramatic,
		"educational": adapt.Educational,
		"poetic":      adapt.Poetic,
		"analytical":  adapt.Analytical,
	} {
		if text == "" {
			t.Errorf("%s rendering is empty", style)
		}
		if !strings.Contains(text, "sharp struggle") {
			t.Errorf("%s rendering lost the content excerpt: %q", style, text)
		}
	}
}

func TestRenderUnknownStyleFallsBack(t *testing.T) {
	a := NewAdapter(logging.NewNop())
	adapt := a.Adapt("content", nil)
	if adapt.Render(Style("klingon")) != adapt.Dramatic {
		t.Errorf("unknown style should fall back to dramatic")
	}
}

func TestContentTagsFromAxisMeans(t *testing.T) {
	hm := heatmapWith([]emotion.Vector{
		{Tension: 80, Hope: 70, Aggression: 65, Collapse: 50},
		{Tension: 70, Hope: 65, Aggression: 70, Collapse: 45},
	})
	tags := ContentTags("", hm)
	for _, want := range []string{"tactical", "complex", "inspiring", "breakthrough", "aggressive", "attacking", "blunder", "learning"} {
		if !containsString(tags, want) {
			t.Errorf("missing tag %q in %v", want, tags)
		}
	}
}

func TestContentTagsFromKeywords(t *testing.T) {
	tags := ContentTags("A queen sacrifice in the endgame led to checkmate.", nil)
	for _, want := range []string{"sacrifice", "endgame", "checkmate"} {
		if !containsString(tags, want) {
			t.Errorf("missing keyword tag %q in %v", want, tags)
		}
	}
	if containsString(tags, "opening") {
		t.Errorf("unexpected tag in %v", tags)
	}
}

func TestDifficultyBuckets(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"a simple game", "beginner"},
		{"a sacrifice unlocked the initiative", "intermediate"},
		{"sacrifice, initiative and counterplay everywhere", "advanced"},
		{"zugzwang, prophylaxis, a sacrifice and endless counterplay", "master"},
	}
	for _, tc := range cases {
		if got := Difficulty(tc.content); got != tc.want {
			t.Errorf("Difficulty(%q) = %s, want %s", tc.content, got, tc.want)
		}
	}
}

func TestEngagementClamped(t *testing.T) {
	// many key moments and tags push the raw score past 100
	hm := heatmapWith(
		[]emotion.Vector{{Tension: 100}, {Tension: 100}},
		make([]emotion.KeyMoment, 20)...,
	)
	score := Engagement(hm, []string{"a", "b", "c", "d", "e"})
	if score != 100 {
		t.Errorf("expected clamp to 100, got %f", score)
	}
	if got := Engagement(nil, nil); got != 50 {
		t.Errorf("expected neutral baseline 50, got %f", got)
	}
}

func TestSnippetsBoundedAndTagged(t *testing.T) {
	a := NewAdapter(logging.NewNop())
	long := strings.Repeat("An extraordinary battle raged across the board. ", 20)
	hm := heatmapWith(
		[]emotion.Vector{{Tension: 90}},
		emotion.KeyMoment{MoveNumber: 12, Move: "Qxh7+", Swing: 5.5, IsBrilliant: true},
		emotion.KeyMoment{MoveNumber: 20, Move: "Rd8??", Swing: -7.2, IsBlunder: true},
	)
	snippets := a.Snippets(long, hm)
	if len(snippets) == 0 {
		t.Fatalf("expected snippets")
	}
	for _, s := range snippets {
		if len([]rune(s.Text)) > 280 {
			t.Errorf("%s snippet too long: %d runes", s.Platform, len([]rune(s.Text)))
		}
		if len(s.Hashtags) == 0 || s.Hashtags[0] != "#chess" {
			t.Errorf("%s snippet missing base hashtag: %v", s.Platform, s.Hashtags)
		}
	}
	// the biggest swing is the blunder; the twitter snippet mentions it
	if !strings.Contains(snippets[0].Text, "Rd8??") {
		t.Errorf("expected top key moment in snippet, got %q", snippets[0].Text)
	}
}

func containsString(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

package speech

import (
	"math/rand"
	"strings"
	"testing"
)

func TestDetectModePriority(t *testing.T) {
	cases := []struct {
		text string
		want Mode
	}{
		{"The defense falls apart in a tragic collapse", ModeMelancholy},
		{"A ferocious attack crashes through", ModeIntense},
		{"Checkmate ends the game", ModeDramatic},
		{"A brilliant breakthrough appears", ModeExcited},
		{"A quiet developing move", ModeCalm},
		// collapse keywords outrank attack keywords
		{"The attack collapses into a blunder", ModeMelancholy},
	}
	for _, tc := range cases {
		if got := DetectMode(tc.text); got != tc.want {
			t.Errorf("DetectMode(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestExpandMarkupPausesAndEmphasis(t *testing.T) {
	out := ExpandMarkup("A *stunning* move. Truly, remarkable!", "urgent")
	if !strings.Contains(out, `<emphasis level="strong">stunning</emphasis>`) {
		t.Errorf("missing emphasis wrap: %q", out)
	}
	if strings.Count(out, `<break time="400ms"/>`) != 2 {
		t.Errorf("expected two sentence breaks: %q", out)
	}
	if !strings.Contains(out, `<break time="200ms"/>`) {
		t.Errorf("expected comma break: %q", out)
	}
	if !strings.HasPrefix(out, `<prosody rate="fast" pitch="+2st">`) {
		t.Errorf("expected urgent prosody wrapper: %q", out)
	}
}

func TestExpandMarkupClosesDanglingEmphasis(t *testing.T) {
	out := ExpandMarkup("a *dangling marker", "")
	if strings.Count(out, "<emphasis") != strings.Count(out, "</emphasis>") {
		t.Errorf("unbalanced emphasis tags: %q", out)
	}
}

func TestPerturbStaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	base := profileFor(ModeDramatic)
	for i := 0; i < 100; i++ {
		p := perturb(base, rng)
		for name, pair := range map[string][2]float64{
			"stability":  {base.Stability, p.Stability},
			"similarity": {base.Similarity, p.Similarity},
			"style":      {base.Style, p.Style},
		} {
			want, got := pair[0], pair[1]
			if got < 0 || got > 1 {
				t.Fatalf("%s out of [0,1]: %f", name, got)
			}
			if diff := got - want; diff > 0.05 || diff < -0.05 {
				t.Fatalf("%s drifted too far: %f", name, diff)
			}
		}
	}
}

func TestProfileForUnknownModeDefaultsToCalm(t *testing.T) {
	if profileFor(Mode("operatic")) != profiles[ModeCalm] {
		t.Errorf("unknown mode should use the calm preset")
	}
}

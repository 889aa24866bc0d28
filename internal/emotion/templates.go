package emotion

import "chesswire/internal/pgn"

// Per-axis narrative template sets. Selection is tiered: the checks in
// narrativeFor run in precedence order, so a move that clears several
// thresholds takes the highest-ranked phrasing.
var (
	mateTemplates = []string{
		"Checkmate! The final blow lands and the king has nowhere left to run.",
		"Checkmate! Every escape square is covered; the game ends here.",
	}
	collapseTemplates = []string{
		"A terrible slip! The position crumbles in a single move.",
		"Disaster strikes; what was held together now falls apart.",
		"The defense gives way and the collapse begins.",
	}
	assaultTemplates = []string{
		"A ferocious strike lands under maximum pressure!",
		"The attack crashes through as the tension peaks.",
	}
	hopeSurgeTemplates = []string{
		"A brilliant resource! New life floods into the position.",
		"Against the odds, a path forward appears.",
	}
	tensionTemplates = []string{
		"The position coils tighter; one slip now decides everything.",
		"Nerves stretch to breaking point as the pieces lock together.",
	}
	aggressionTemplates = []string{
		"Pieces fly forward; the initiative demands blood.",
		"An aggressive lunge that dares the opponent to respond.",
	}
	hopeTemplates = []string{
		"A confident step toward brighter prospects.",
		"Quiet optimism guides this move.",
	}
	calmTemplates = []string{
		"A measured move keeps the balance intact.",
		"The game develops with cautious purpose.",
		"Both sides maneuver, waiting for a mistake.",
	}
)

// narrativeFor picks the per-move phrase. Tier order is load-bearing.
func (c *Classifier) narrativeFor(mv pgn.Move, v Vector) string {
	switch {
	case mv.GivesMate:
		return c.pick(mateTemplates)
	case v.Collapse > 80:
		return c.pick(collapseTemplates)
	case v.Aggression > 85 && v.Tension > 70:
		return c.pick(assaultTemplates)
	case v.Hope > 90:
		return c.pick(hopeSurgeTemplates)
	case v.Tension > 85:
		return c.pick(tensionTemplates)
	case v.Aggression > 70:
		return c.pick(aggressionTemplates)
	case v.Hope > 70:
		return c.pick(hopeTemplates)
	}
	return c.pick(dominantTemplates(v))
}

func dominantTemplates(v Vector) []string {
	m := maxAxis(v)
	if m < 50 {
		return calmTemplates
	}
	switch m {
	case v.Collapse:
		return collapseTemplates
	case v.Aggression:
		return aggressionTemplates
	case v.Tension:
		return tensionTemplates
	case v.Hope:
		return hopeTemplates
	}
	return calmTemplates
}

func (c *Classifier) pick(set []string) string {
	if len(set) == 0 {
		return ""
	}
	return set[c.rng.Intn(len(set))]
}

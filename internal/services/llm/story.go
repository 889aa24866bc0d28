package llm

import (
	"context"
	"fmt"
	"strings"

	"chesswire/internal/emotion"
	"chesswire/internal/pgn"
)

const storySystemPrompt = "You are a chess storyteller. Write a vivid, " +
	"accurate account of the game described below. Stay faithful to the " +
	"listed moves and key moments; do not invent moves that did not happen."

// GenerateStory produces a long-form narrative for an analyzed game.
func (c *Client) GenerateStory(ctx context.Context, info pgn.GameInfo, hm *emotion.Heatmap) (string, error) {
	return c.Complete(ctx, storySystemPrompt, storyPrompt(info, hm))
}

func storyPrompt(info pgn.GameInfo, hm *emotion.Heatmap) string {
	var b strings.Builder
	if info.White != "" || info.Black != "" {
		fmt.Fprintf(&b, "Game: %s vs %s.\n", orUnknown(info.White), orUnknown(info.Black))
	}
	if info.Event != "" {
		fmt.Fprintf(&b, "Event: %s.\n", info.Event)
	}
	if info.Result != "" {
		fmt.Fprintf(&b, "Result: %s.\n", info.Result)
	}
	if hm != nil {
		fmt.Fprintf(&b, "Arc: %s\n", hm.OverallArc)
		for _, km := range hm.KeyMoments {
			verdict := "brilliant"
			if km.IsBlunder {
				verdict = "blunder"
			}
			fmt.Fprintf(&b, "Key moment: move %d (%s), %s, swing %.1f pawns.\n",
				km.MoveNumber, km.Move, verdict, km.Swing)
		}
		if len(hm.Moves) > 0 {
			sans := make([]string, 0, len(hm.Moves))
			for _, m := range hm.Moves {
				sans = append(sans, m.Move)
			}
			fmt.Fprintf(&b, "Moves: %s\n", strings.Join(sans, " "))
		}
	}
	b.WriteString("Write the story in four paragraphs.")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

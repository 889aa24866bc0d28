// Package pgn turns PGN text into an ordered move list with the per-move
// features the narration pipeline scores on. Legality and position tracking
// are delegated to notnil/chess.
package pgn

import (
	"strings"

	"github.com/notnil/chess"
)

// Move is a single extracted move. Immutable once produced.
type Move struct {
	Index             int     `json:"index"`
	Notation          string  `json:"notation"`
	ResultingPosition string  `json:"resultingPosition"`
	Captured          string  `json:"captured,omitempty"`
	Promotion         string  `json:"promotion,omitempty"`
	GivesCheck        bool    `json:"givesCheck"`
	GivesMate         bool    `json:"givesMate"`
	IsCapture         bool    `json:"isCapture"`
	IsCastle          bool    `json:"isCastle"`
	Eval              float64 `json:"eval"`
}

// GameInfo holds the tag-pair metadata. Missing tags stay empty.
type GameInfo struct {
	White  string `json:"white,omitempty"`
	Black  string `json:"black,omitempty"`
	Event  string `json:"event,omitempty"`
	Date   string `json:"date,omitempty"`
	Result string `json:"result,omitempty"`
}

// Extraction is the result of parsing a PGN string.
type Extraction struct {
	IsValid  bool     `json:"isValid"`
	Moves    []Move   `json:"moves"`
	GameInfo GameInfo `json:"gameInfo"`
}

// Extract parses PGN text. Malformed movetext yields IsValid=false and an
// empty move list; it never returns an error.
func Extract(pgnText string) Extraction {
	trimmed := strings.TrimSpace(pgnText)
	if trimmed == "" {
		return Extraction{}
	}

	opt, err := chess.PGN(strings.NewReader(trimmed))
	if err != nil {
		return Extraction{}
	}
	game := chess.NewGame(opt)

	moves := game.Moves()
	positions := game.Positions()
	if len(moves) == 0 || len(positions) != len(moves)+1 {
		return Extraction{GameInfo: tagInfo(game)}
	}

	notation := chess.AlgebraicNotation{}
	out := make([]Move, 0, len(moves))
	for i, m := range moves {
		before, after := positions[i], positions[i+1]
		mv := Move{
			Index:      i,
			Notation:   notation.Encode(before, m),
			GivesCheck: m.HasTag(chess.Check),
			GivesMate:  after.Status() == chess.Checkmate,
			IsCapture:  m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant),
			IsCastle:   m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle),
			Eval:       evaluate(after),
		}
		mv.ResultingPosition = after.String()
		if mv.IsCapture {
			mv.Captured = capturedPiece(before, m)
		}
		if m.Promo() != chess.NoPieceType {
			mv.Promotion = pieceLetter(m.Promo())
		}
		out = append(out, mv)
	}

	return Extraction{IsValid: true, Moves: out, GameInfo: tagInfo(game)}
}

func tagInfo(game *chess.Game) GameInfo {
	return GameInfo{
		White:  tagValue(game, "White"),
		Black:  tagValue(game, "Black"),
		Event:  tagValue(game, "Event"),
		Date:   tagValue(game, "Date"),
		Result: tagValue(game, "Result"),
	}
}

func tagValue(game *chess.Game, key string) string {
	if tp := game.GetTagPair(key); tp != nil {
		return tp.Value
	}
	return ""
}

func capturedPiece(before *chess.Position, m *chess.Move) string {
	piece := before.Board().Piece(m.S2())
	if piece == chess.NoPiece {
		// en passant: the captured pawn is not on the destination square
		return pieceLetter(chess.Pawn)
	}
	return pieceLetter(piece.Type())
}

func pieceLetter(t chess.PieceType) string {
	switch t {
	case chess.Pawn:
		return "p"
	case chess.Knight:
		return "n"
	case chess.Bishop:
		return "b"
	case chess.Rook:
		return "r"
	case chess.Queen:
		return "q"
	case chess.King:
		return "k"
	}
	return ""
}

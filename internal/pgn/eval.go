package pgn

import "github.com/notnil/chess"

// Material values in pawns.
var pieceValue = map[chess.PieceType]float64{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// evaluate returns a heuristic score for the position from White's
// perspective: material count plus a small mobility term. This is not an
// engine evaluation; it only exists to flag large swings for the
// key-moment labeling downstream and may mislabel non-trivial positions.
func evaluate(pos *chess.Position) float64 {
	var score float64
	board := pos.Board()
	for sq := 0; sq < 64; sq++ {
		piece := board.Piece(chess.Square(sq))
		if piece == chess.NoPiece {
			continue
		}
		v := pieceValue[piece.Type()]
		if piece.Color() == chess.White {
			score += v
		} else {
			score -= v
		}
	}

	mobility := 0.1 * float64(len(pos.ValidMoves()))
	if pos.Turn() == chess.White {
		score += mobility
	} else {
		score -= mobility
	}
	return score
}

package review

import "github.com/notnil/chess"

// PatternTag marks a move shape that can qualify it as brilliant.
type PatternTag string

const (
	PatternNone      PatternTag = ""
	PatternSacrifice PatternTag = "sacrifice"
	PatternExposed   PatternTag = "exposed"
)

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
	chess.King:   0,
}

// DetectPattern checks the two shapes that make a move a brilliancy
// candidate: a real sacrifice (capturing a cheaper piece on a square the
// opponent wins) or parking a piece on such a square without a capture.
// The king is never treated as sacrificeable.
func DetectPattern(move *chess.Move, before, after *chess.Position, mover chess.Color) PatternTag {
	moving := before.Board().Piece(move.S1())
	if moving == chess.NoPiece || moving.Type() == chess.King {
		return PatternNone
	}

	dest := move.S2()
	attackers := CountAttackers(after.Board(), dest, mover.Other())
	defenders := CountAttackers(after.Board(), dest, mover)
	if attackers <= defenders {
		return PatternNone
	}

	if move.HasTag(chess.Capture) || move.HasTag(chess.EnPassant) {
		capturedValue := pieceValues[chess.Pawn] // en passant leaves the target square empty
		if captured := before.Board().Piece(dest); captured != chess.NoPiece {
			capturedValue = pieceValues[captured.Type()]
		}
		if capturedValue < pieceValues[moving.Type()] {
			return PatternSacrifice
		}
		return PatternNone
	}
	return PatternExposed
}

package review

import (
	"github.com/notnil/chess"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
)

const (
	openingHardCutoff   = 20
	openingAlwaysBelow  = 3
	shockLossThreshold  = 80
	theoryCapturePly    = 8
	developedMinorsPly  = 12
	developedMinorCount = 3
)

// IsOpening decides whether a ply still belongs to opening theory. The rules
// form a priority ladder: the first one that fires wins.
func IsOpening(plyIndex int, move *chess.Move, before *chess.Position, loss analysis.LossMetrics) bool {
	if plyIndex >= openingHardCutoff {
		return false
	}
	if plyIndex < openingAlwaysBelow {
		return true
	}
	// En passant carries its own tag instead of Capture.
	if move.HasTag(chess.Capture) || move.HasTag(chess.EnPassant) || move.HasTag(chess.Check) {
		// Sharp play means theory has been abandoned.
		if loss.ScoreLoss > shockLossThreshold || plyIndex >= theoryCapturePly {
			return false
		}
	}
	if bothSidesLostCastling(before) {
		return false
	}
	if !queensOnBoard(before) {
		return false
	}
	if plyIndex >= developedMinorsPly &&
		minorsDeveloped(before, chess.White) >= developedMinorCount &&
		minorsDeveloped(before, chess.Black) >= developedMinorCount {
		return false
	}
	return true
}

func bothSidesLostCastling(pos *chess.Position) bool {
	cr := pos.CastleRights()
	white := cr.CanCastle(chess.White, chess.KingSide) || cr.CanCastle(chess.White, chess.QueenSide)
	black := cr.CanCastle(chess.Black, chess.KingSide) || cr.CanCastle(chess.Black, chess.QueenSide)
	return !white && !black
}

func queensOnBoard(pos *chess.Position) bool {
	for _, p := range pos.Board().SquareMap() {
		if p.Type() == chess.Queen {
			return true
		}
	}
	return false
}

// minorsDeveloped counts the knights and bishops of one side that are no
// longer sitting on their starting squares.
func minorsDeveloped(pos *chess.Position, c chess.Color) int {
	type home struct {
		sq chess.Square
		pt chess.PieceType
	}
	var homes [4]home
	if c == chess.White {
		homes = [4]home{
			{chess.B1, chess.Knight}, {chess.G1, chess.Knight},
			{chess.C1, chess.Bishop}, {chess.F1, chess.Bishop},
		}
	} else {
		homes = [4]home{
			{chess.B8, chess.Knight}, {chess.G8, chess.Knight},
			{chess.C8, chess.Bishop}, {chess.F8, chess.Bishop},
		}
	}
	n := 0
	for _, h := range homes {
		p := pos.Board().Piece(h.sq)
		if p == chess.NoPiece || p.Color() != c || p.Type() != h.pt {
			n++
		}
	}
	return n
}

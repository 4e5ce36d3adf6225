package review

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
)

func positionFromFEN(t *testing.T, fen string) *chess.Position {
	t.Helper()
	opt, err := chess.FEN(fen)
	require.NoError(t, err)
	return chess.NewGame(opt).Position()
}

// findMove resolves a UCI string against the position's legal moves so the
// returned move carries its capture/check tags.
func findMove(t *testing.T, pos *chess.Position, uci string) *chess.Move {
	t.Helper()
	notation := chess.UCINotation{}
	for _, m := range pos.ValidMoves() {
		if notation.Encode(pos, m) == uci {
			return m
		}
	}
	t.Fatalf("move %s is not legal in %s", uci, pos.String())
	return nil
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestIsOpeningFirstPliesAlways(t *testing.T) {
	pos := positionFromFEN(t, startFEN)
	move := findMove(t, pos, "e2e4")
	for ply := 0; ply < 3; ply++ {
		require.True(t, IsOpening(ply, move, pos, analysis.LossMetrics{}), "ply %d", ply)
	}
}

func TestIsOpeningHardCutoff(t *testing.T) {
	pos := positionFromFEN(t, startFEN)
	move := findMove(t, pos, "e2e4")
	require.False(t, IsOpening(20, move, pos, analysis.LossMetrics{}))
	require.False(t, IsOpening(35, move, pos, analysis.LossMetrics{}))
}

func TestIsOpeningCaptureRules(t *testing.T) {
	pos := positionFromFEN(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKB1R w KQkq d6 0 2")
	capture := findMove(t, pos, "e4d5")

	// An early quiet exchange stays in book.
	require.True(t, IsOpening(4, capture, pos, analysis.LossMetrics{ScoreLoss: 10}))
	// A shocking capture ends the opening immediately.
	require.False(t, IsOpening(4, capture, pos, analysis.LossMetrics{ScoreLoss: 150}))
	// Past the quiet window any capture ends it.
	require.False(t, IsOpening(8, capture, pos, analysis.LossMetrics{ScoreLoss: 0}))
}

func TestIsOpeningEnPassantCountsAsCapture(t *testing.T) {
	pos := positionFromFEN(t, "rnbqk2r/ppp2ppp/8/8/3pP3/8/PPPP1PPP/RNBQK2R b KQkq e3 0 5")
	enPassant := findMove(t, pos, "d4e3")

	// Past the quiet window the en passant capture ends the opening.
	require.False(t, IsOpening(8, enPassant, pos, analysis.LossMetrics{}))
	// A shocking one ends it even earlier.
	require.False(t, IsOpening(4, enPassant, pos, analysis.LossMetrics{ScoreLoss: 150}))
	// A quiet early one stays in book.
	require.True(t, IsOpening(4, enPassant, pos, analysis.LossMetrics{ScoreLoss: 10}))
}

func TestIsOpeningEndsWithoutCastlingRights(t *testing.T) {
	pos := positionFromFEN(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1")
	move := findMove(t, pos, "e2e4")
	require.False(t, IsOpening(4, move, pos, analysis.LossMetrics{}))
}

func TestIsOpeningEndsWithoutQueens(t *testing.T) {
	pos := positionFromFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w KQkq - 0 1")
	move := findMove(t, pos, "e2e4")
	require.False(t, IsOpening(4, move, pos, analysis.LossMetrics{}))
}

func TestIsOpeningEndsWhenMinorsDeveloped(t *testing.T) {
	// Three minors off their home squares on both sides.
	pos := positionFromFEN(t, "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R w KQkq - 6 5")
	castle := findMove(t, pos, "e1g1")

	require.False(t, IsOpening(12, castle, pos, analysis.LossMetrics{}))
	// Before the development rule kicks in the same position is still book.
	require.True(t, IsOpening(10, castle, pos, analysis.LossMetrics{}))
}

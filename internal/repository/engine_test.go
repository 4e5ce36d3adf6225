package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
)

func TestParseInfoScoreCentipawns(t *testing.T) {
	line := "info depth 12 seldepth 17 multipv 1 score cp 34 nodes 90210 pv e2e4 e7e5"
	score, ok := parseInfoScore(line)
	require.True(t, ok)
	assert.Equal(t, analysis.ScoreCentipawns, score.Kind)
	assert.Equal(t, 34, score.Value)
}

func TestParseInfoScoreMate(t *testing.T) {
	line := "info depth 20 score mate -2 nodes 1234 pv d8h4"
	score, ok := parseInfoScore(line)
	require.True(t, ok)
	assert.Equal(t, analysis.ScoreMate, score.Kind)
	assert.Equal(t, -2, score.Value)
}

func TestParseInfoScoreMissing(t *testing.T) {
	_, ok := parseInfoScore("info depth 5 currmove e2e4 currmovenumber 1")
	assert.False(t, ok)
}

func TestToWhiteViewpoint(t *testing.T) {
	whiteToMove := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	blackToMove := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	score := analysis.EvalScore{Kind: analysis.ScoreCentipawns, Value: 25}

	assert.Equal(t, 25, toWhiteViewpoint(score, whiteToMove).Value)
	assert.Equal(t, -25, toWhiteViewpoint(score, blackToMove).Value)

	mate := analysis.EvalScore{Kind: analysis.ScoreMate, Value: 3}
	assert.Equal(t, -3, toWhiteViewpoint(mate, blackToMove).Value)
}

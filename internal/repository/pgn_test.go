package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

const foolsMatePGN = `[Event "casual"]
[White "anna"]
[Black "boris"]

1. f3 e5 2. g4 Qh4# 0-1`

func TestParseGame(t *testing.T) {
	moves, headers, err := ParseGame(foolsMatePGN, 0)
	require.NoError(t, err)
	assert.Len(t, moves, 4)
	assert.Equal(t, "casual", headers["Event"])
	assert.Equal(t, "anna", headers["White"])
	assert.Equal(t, "boris", headers["Black"])
}

func TestParseGameInvalidMovetext(t *testing.T) {
	_, _, err := ParseGame("1. e9 Zz4", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidPGN)
}

func TestParseGameNoMoves(t *testing.T) {
	_, _, err := ParseGame(`[Event "empty"]

*`, 0)
	assert.ErrorIs(t, err, errs.ErrEmptyGame)
}

func TestParseGameTooLong(t *testing.T) {
	long := strings.Repeat("1. e4 e5 ", 100)
	_, _, err := ParseGame(long, 50)
	assert.ErrorIs(t, err, errs.ErrPGNTooLong)
}

package repository

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

// ParseGame turns a PGN string into the validated move list plus the header
// map. The parser rejects illegal movetext, so the pipeline can trust the
// sequence without re-checking legality.
func ParseGame(pgn string, maxLength int) ([]*chess.Move, map[string]string, error) {
	if maxLength > 0 && len(pgn) > maxLength {
		return nil, nil, fmt.Errorf("%w: %d bytes (limit %d)", errs.ErrPGNTooLong, len(pgn), maxLength)
	}

	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrInvalidPGN, err)
	}
	game := chess.NewGame(opt)

	moves := game.Moves()
	if len(moves) == 0 {
		return nil, nil, errs.ErrEmptyGame
	}

	headers := make(map[string]string)
	for _, pair := range game.TagPairs() {
		headers[pair.Key] = pair.Value
	}
	return moves, headers, nil
}

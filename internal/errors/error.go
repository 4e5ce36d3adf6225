package errors

import "errors"

var (
	ErrEngineUnavailable = errors.New("engine process is not available")
	ErrInvalidPGN        = errors.New("could not parse pgn")
	ErrPGNTooLong        = errors.New("pgn exceeds maximum length")
	ErrEmptyGame         = errors.New("game contains no moves")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrResultExists      = errors.New("result already stored for task")
	ErrInternal          = errors.New("internal error")
)

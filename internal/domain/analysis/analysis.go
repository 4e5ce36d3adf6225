package analysis

// Perspective says which side a score is expressed for. Engine output is
// always white-fixed; the review pipeline works in mover perspective.
type Perspective string

const (
	FixedWhite       Perspective = "white"
	MoverPerspective Perspective = "mover"
)

type ScoreKind string

const (
	ScoreCentipawns ScoreKind = "cp"
	ScoreMate       ScoreKind = "mate"
)

// EvalScore is a raw engine evaluation, white-fixed viewpoint.
type EvalScore struct {
	Kind  ScoreKind `json:"kind"`
	Value int       `json:"value"`
}

// EngineReply is a single search result: suggested best move (UCI, may be
// empty at terminal positions) and the position score.
type EngineReply struct {
	BestMove string    `json:"best_move"`
	Score    EvalScore `json:"score"`
}

// ScoreSample is a centipawn score tagged with its perspective. Mate
// indicators are already mapped to a saturating magnitude when a sample is
// built, so CP is always comparable.
type ScoreSample struct {
	CP          int         `json:"cp" bson:"cp"`
	Perspective Perspective `json:"perspective" bson:"perspective"`
	FromMate    bool        `json:"from_mate" bson:"from_mate"`
}

// LossMetrics holds both flavors of per-move loss, non-negative by
// construction.
type LossMetrics struct {
	ScoreLoss   int     `json:"score_loss_cp" bson:"score_loss_cp"`
	WinProbLoss float64 `json:"win_prob_loss" bson:"win_prob_loss"`
}

type Classification string

const (
	ClassTheory     Classification = "theory"
	ClassBrilliant  Classification = "brilliant"
	ClassBest       Classification = "best"
	ClassExcellent  Classification = "excellent"
	ClassGreat      Classification = "great"
	ClassGood       Classification = "good"
	ClassInaccuracy Classification = "inaccuracy"
	ClassMistake    Classification = "mistake"
	ClassBlunder    Classification = "blunder"
)

// MoveArrow points at the engine's suggestion for plies that missed it badly.
type MoveArrow struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Type string `json:"type" bson:"type"`
}

// PlyRecord is the immutable analysis of one half-move.
type PlyRecord struct {
	Index          int            `json:"index" bson:"index"`
	Side           string         `json:"side" bson:"side"`
	SAN            string         `json:"san" bson:"san"`
	UCI            string         `json:"uci" bson:"uci"`
	FENBefore      string         `json:"fen_before" bson:"fen_before"`
	FENAfter       string         `json:"fen_after" bson:"fen_after"`
	BestMove       string         `json:"best_move" bson:"best_move"`
	BestScore      ScoreSample    `json:"best_score" bson:"best_score"`
	PlayedScore    ScoreSample    `json:"played_score" bson:"played_score"`
	Loss           LossMetrics    `json:"loss" bson:"loss"`
	WinProbability float64        `json:"win_probability" bson:"win_probability"`
	Classification Classification `json:"classification" bson:"classification"`
	Accuracy       float64        `json:"accuracy" bson:"accuracy"`
	Opening        bool           `json:"opening" bson:"opening"`
	Arrows         []MoveArrow    `json:"arrows,omitempty" bson:"arrows,omitempty"`
}

// PlayerSummary counts classifications for one side plus aggregate accuracy.
type PlayerSummary struct {
	Accuracy     float64 `json:"accuracy" bson:"accuracy"`
	Theory       int     `json:"theory" bson:"theory"`
	Brilliant    int     `json:"brilliant" bson:"brilliant"`
	Best         int     `json:"best" bson:"best"`
	Excellent    int     `json:"excellent" bson:"excellent"`
	Great        int     `json:"great" bson:"great"`
	Good         int     `json:"good" bson:"good"`
	Inaccuracies int     `json:"inaccuracies" bson:"inaccuracies"`
	Mistakes     int     `json:"mistakes" bson:"mistakes"`
	Blunders     int     `json:"blunders" bson:"blunders"`
}

func (s *PlayerSummary) Add(c Classification) {
	switch c {
	case ClassTheory:
		s.Theory++
	case ClassBrilliant:
		s.Brilliant++
	case ClassBest:
		s.Best++
	case ClassExcellent:
		s.Excellent++
	case ClassGreat:
		s.Great++
	case ClassGood:
		s.Good++
	case ClassInaccuracy:
		s.Inaccuracies++
	case ClassMistake:
		s.Mistakes++
	case ClassBlunder:
		s.Blunders++
	}
}

type GameSummary struct {
	White PlayerSummary `json:"white" bson:"white"`
	Black PlayerSummary `json:"black" bson:"black"`
}

// GameAnalysisResult is the finished review of one game. Built once at the
// end of the pipeline, read-only afterwards.
type GameAnalysisResult struct {
	TaskID  string            `json:"task_id" bson:"task_id"`
	Headers map[string]string `json:"headers" bson:"headers"`
	Moves   []PlyRecord       `json:"moves" bson:"moves"`
	Summary GameSummary       `json:"summary" bson:"summary"`
}

// ProgressEvent is published after every analyzed ply.
type ProgressEvent struct {
	TaskID         string         `json:"task_id"`
	MoveIndex      int            `json:"move_index"`
	Classification Classification `json:"classification"`
	PlayedEvalCP   int            `json:"played_eval_cp"`
	BestEvalCP     int            `json:"best_eval_cp"`
	ScoreLossCP    int            `json:"score_loss_cp"`
	WinProbLoss    float64        `json:"win_prob_loss"`
	BestMove       string         `json:"best_move"`
	FEN            string         `json:"fen"`
	Progress       float64        `json:"progress"`
}

// CompletionEvent closes the stream for a task.
type CompletionEvent struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	TotalPlies int    `json:"total_plies"`
}

type AnalyzeRequest struct {
	PGN         string `json:"pgn"`
	EngineDepth int    `json:"engine_depth,omitempty"`
}

type AnalyzeStartResponse struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	TotalMoves int    `json:"total_moves"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	EngineAvailable bool   `json:"engine_available"`
	Message         string `json:"message,omitempty"`
}

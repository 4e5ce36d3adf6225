package review

import (
	"context"
	"fmt"
	"math"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

// Evaluator is one exclusive engine session. Scores come back in the
// white-fixed viewpoint; a failed query is substituted with a fallback by
// the analyzer, never retried.
type Evaluator interface {
	Analyze(ctx context.Context, fen string) (analysis.EngineReply, error)
	Evaluate(ctx context.Context, fen string) (analysis.EvalScore, error)
}

// EventSink receives per-ply progress events and the terminal completion
// event. Delivery is fire-and-forget.
type EventSink interface {
	Publish(taskID string, event any)
}

// ResultStore receives the finished result exactly once per analysis.
type ResultStore interface {
	Save(ctx context.Context, result *analysis.GameAnalysisResult) error
}

type Options struct {
	AccuracyK float64
	// MateGuard enables the mate-in-one blunder check on every reply
	// position.
	MateGuard bool
}

// Analyzer drives the ply loop for one game at a time. It owns the
// classification memory and the growing record sequence for the duration of
// a run; nothing else mutates them.
type Analyzer struct {
	log     *zap.SugaredLogger
	engine  Evaluator
	results ResultStore
	events  EventSink
	opts    Options
}

func NewAnalyzer(log *zap.SugaredLogger, engine Evaluator, results ResultStore, events EventSink, opts Options) *Analyzer {
	return &Analyzer{
		log:     log,
		engine:  engine,
		results: results,
		events:  events,
		opts:    opts,
	}
}

// AnalyzeGame replays a validated move list, classifying every ply and
// aggregating per-player summaries. Cancellation discards the partial run:
// no further engine queries, no further events, nothing stored.
func (a *Analyzer) AnalyzeGame(ctx context.Context, taskID string, moves []*chess.Move, headers map[string]string) (*analysis.GameAnalysisResult, error) {
	if len(moves) == 0 {
		return nil, errs.ErrEmptyGame
	}

	a.log.Infow("starting game analysis", "task", taskID, "total_moves", len(moves))

	game := chess.NewGame()
	memory := &ClassificationMemory{}
	records := make([]analysis.PlyRecord, 0, len(moves))
	losses := map[chess.Color][]int{}
	summaries := map[chess.Color]*analysis.PlayerSummary{
		chess.White: {},
		chess.Black: {},
	}

	for i, move := range moves {
		select {
		case <-ctx.Done():
			a.log.Infow("analysis cancelled", "task", taskID, "ply", i)
			return nil, ctx.Err()
		default:
		}

		before := game.Position()
		mover := before.Turn()

		if err := game.Move(move); err != nil {
			// The move source is pre-validated, so the board state is
			// unrecoverable here.
			return nil, fmt.Errorf("apply move %d: %w", i, err)
		}
		after := game.Position()

		record, err := a.reviewPly(ctx, taskID, i, move, before, after, mover, memory)
		if err != nil {
			if ctx.Err() != nil {
				a.log.Infow("analysis cancelled", "task", taskID, "ply", i)
				return nil, ctx.Err()
			}
			a.log.Errorw("ply skipped", "task", taskID, "ply", i, "error", err)
			continue
		}

		records = append(records, record)
		losses[mover] = append(losses[mover], record.Loss.ScoreLoss)
		summaries[mover].Add(record.Classification)
		memory.Record(mover, record.Classification)

		if a.events != nil {
			a.events.Publish(taskID, analysis.ProgressEvent{
				TaskID:         taskID,
				MoveIndex:      i,
				Classification: record.Classification,
				PlayedEvalCP:   record.PlayedScore.CP,
				BestEvalCP:     record.BestScore.CP,
				ScoreLossCP:    record.Loss.ScoreLoss,
				WinProbLoss:    record.Loss.WinProbLoss,
				BestMove:       record.BestMove,
				FEN:            record.FENAfter,
				Progress:       round3(float64(i+1) / float64(len(moves))),
			})
		}
	}

	white := summaries[chess.White]
	black := summaries[chess.Black]
	white.Accuracy = Accuracy(losses[chess.White], a.opts.AccuracyK)
	black.Accuracy = Accuracy(losses[chess.Black], a.opts.AccuracyK)

	result := &analysis.GameAnalysisResult{
		TaskID:  taskID,
		Headers: headers,
		Moves:   records,
		Summary: analysis.GameSummary{White: *white, Black: *black},
	}

	if a.results != nil {
		if err := a.results.Save(ctx, result); err != nil {
			a.log.Errorw("failed to store result", "task", taskID, "error", err)
		}
	}

	a.log.Infow("analysis complete", "task", taskID,
		"recorded", len(records),
		"white_accuracy", white.Accuracy,
		"black_accuracy", black.Accuracy)

	if a.events != nil {
		a.events.Publish(taskID, analysis.CompletionEvent{
			TaskID:     taskID,
			Status:     "complete",
			TotalPlies: len(records),
		})
	}

	return result, nil
}

func (a *Analyzer) reviewPly(
	ctx context.Context,
	taskID string,
	index int,
	move *chess.Move,
	before, after *chess.Position,
	mover chess.Color,
	memory *ClassificationMemory,
) (analysis.PlyRecord, error) {
	san := chess.AlgebraicNotation{}.Encode(before, move)
	uciMove := chess.UCINotation{}.Encode(before, move)
	if uciMove == "" {
		return analysis.PlyRecord{}, fmt.Errorf("move %d has no uci encoding", index)
	}
	fenBefore := before.String()
	fenAfter := after.String()

	reply, err := a.engine.Analyze(ctx, fenBefore)
	if err != nil {
		// Cancellation is not a query failure: stop instead of substituting.
		if ctx.Err() != nil {
			return analysis.PlyRecord{}, ctx.Err()
		}
		a.log.Warnw("engine query failed, using fallback", "task", taskID, "ply", index, "error", err)
		reply = analysis.EngineReply{Score: analysis.EvalScore{Kind: analysis.ScoreCentipawns}}
	}
	if reply.BestMove == "" {
		reply.BestMove = uciMove
	}
	bestSample := ToMover(NewFixedScore(reply.Score), mover)

	deliversMate := after.Status() == chess.Checkmate
	var playedSample analysis.ScoreSample
	if deliversMate {
		playedSample = MateDelivered()
	} else {
		score, err := a.engine.Evaluate(ctx, fenAfter)
		if err != nil {
			if ctx.Err() != nil {
				return analysis.PlyRecord{}, ctx.Err()
			}
			a.log.Warnw("engine query failed, using fallback", "task", taskID, "ply", index, "error", err)
			score = analysis.EvalScore{Kind: analysis.ScoreCentipawns}
		}
		playedSample = ToMover(NewFixedScore(score), mover)
	}

	loss := NewLossMetrics(bestSample, playedSample)
	opening := IsOpening(index, move, before, loss)
	pattern := DetectPattern(move, before, after, mover)

	allowsMate := false
	if a.opts.MateGuard && !deliversMate {
		allowsMate = allowsMateInOne(after)
	}

	label := Classify(MoveContext{
		Loss:             loss,
		IsEngineBest:     uciMove == reply.BestMove,
		DeliversMate:     deliversMate,
		AllowsMateInOne:  allowsMate,
		GarbageTime:      abs(bestSample.CP) > garbageTimeThreshold,
		Opening:          opening,
		Pattern:          pattern,
		OwnPrevious:      memory.Previous(mover),
		OpponentPrevious: memory.Previous(mover.Other()),
	})

	record := analysis.PlyRecord{
		Index:          index,
		Side:           sideName(mover),
		SAN:            san,
		UCI:            uciMove,
		FENBefore:      fenBefore,
		FENAfter:       fenAfter,
		BestMove:       reply.BestMove,
		BestScore:      bestSample,
		PlayedScore:    playedSample,
		Loss:           loss,
		WinProbability: WinProbability(playedSample.CP),
		Classification: label,
		Accuracy:       MoveAccuracy(loss.ScoreLoss, a.opts.AccuracyK),
		Opening:        opening,
		Arrows:         bestMoveArrows(label, reply.BestMove),
	}
	return record, nil
}

// allowsMateInOne reports whether the side to move can checkmate at once.
func allowsMateInOne(pos *chess.Position) bool {
	for _, m := range pos.ValidMoves() {
		if pos.Update(m).Status() == chess.Checkmate {
			return true
		}
	}
	return false
}

func bestMoveArrows(label analysis.Classification, bestMove string) []analysis.MoveArrow {
	switch label {
	case analysis.ClassInaccuracy, analysis.ClassMistake, analysis.ClassBlunder:
	default:
		return nil
	}
	if len(bestMove) < 4 {
		return nil
	}
	return []analysis.MoveArrow{{From: bestMove[:2], To: bestMove[2:4], Type: "best"}}
}

func sideName(c chess.Color) string {
	if c == chess.White {
		return "white"
	}
	return "black"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

// scriptedEngine replays canned replies in call order, white-fixed viewpoint
// like the real adapter.
type scriptedEngine struct {
	replies []analysis.EngineReply
	evals   []analysis.EvalScore
	ri, ei  int
}

func (s *scriptedEngine) Analyze(ctx context.Context, fen string) (analysis.EngineReply, error) {
	if s.ri >= len(s.replies) {
		return analysis.EngineReply{}, errors.New("script exhausted")
	}
	r := s.replies[s.ri]
	s.ri++
	return r, nil
}

func (s *scriptedEngine) Evaluate(ctx context.Context, fen string) (analysis.EvalScore, error) {
	if s.ei >= len(s.evals) {
		return analysis.EvalScore{}, errors.New("script exhausted")
	}
	e := s.evals[s.ei]
	s.ei++
	return e, nil
}

type failingEngine struct{}

func (failingEngine) Analyze(ctx context.Context, fen string) (analysis.EngineReply, error) {
	return analysis.EngineReply{}, errors.New("engine down")
}

func (failingEngine) Evaluate(ctx context.Context, fen string) (analysis.EvalScore, error) {
	return analysis.EvalScore{}, errors.New("engine down")
}

// cancellingEngine behaves like its inner script until the failAt-th search,
// where it cancels the run's context and fails the query.
type cancellingEngine struct {
	inner  *scriptedEngine
	cancel context.CancelFunc
	failAt int
	calls  int
}

func (c *cancellingEngine) Analyze(ctx context.Context, fen string) (analysis.EngineReply, error) {
	c.calls++
	if c.calls >= c.failAt {
		c.cancel()
		return analysis.EngineReply{}, ctx.Err()
	}
	return c.inner.Analyze(ctx, fen)
}

func (c *cancellingEngine) Evaluate(ctx context.Context, fen string) (analysis.EvalScore, error) {
	return c.inner.Evaluate(ctx, fen)
}

type recordingSink struct {
	events []any
}

func (r *recordingSink) Publish(taskID string, event any) {
	r.events = append(r.events, event)
}

type recordingStore struct {
	saved *analysis.GameAnalysisResult
}

func (r *recordingStore) Save(ctx context.Context, result *analysis.GameAnalysisResult) error {
	r.saved = result
	return nil
}

func parsePGN(t *testing.T, pgn string) []*chess.Move {
	t.Helper()
	opt, err := chess.PGN(strings.NewReader(pgn))
	require.NoError(t, err)
	return chess.NewGame(opt).Moves()
}

func foolsMateEngine() *scriptedEngine {
	return &scriptedEngine{
		replies: []analysis.EngineReply{
			{BestMove: "e2e4", Score: analysis.EvalScore{Kind: analysis.ScoreCentipawns, Value: 30}},
			{BestMove: "e7e5", Score: analysis.EvalScore{Kind: analysis.ScoreCentipawns, Value: -40}},
			{BestMove: "g1f3", Score: analysis.EvalScore{Kind: analysis.ScoreCentipawns, Value: -50}},
			{BestMove: "d8h4", Score: analysis.EvalScore{Kind: analysis.ScoreMate, Value: -1}},
		},
		evals: []analysis.EvalScore{
			{Kind: analysis.ScoreCentipawns, Value: -60},
			{Kind: analysis.ScoreCentipawns, Value: -40},
			{Kind: analysis.ScoreMate, Value: -1},
			// Qh4# delivers mate: no evaluation of the final position.
		},
	}
}

func TestAnalyzeGameFoolsMate(t *testing.T) {
	moves := parsePGN(t, "1. f3 e5 2. g4 Qh4# 0-1")
	require.Len(t, moves, 4)

	sink := &recordingSink{}
	store := &recordingStore{}
	a := NewAnalyzer(zap.NewNop().Sugar(), foolsMateEngine(), store, sink, Options{AccuracyK: 120, MateGuard: true})

	result, err := a.AnalyzeGame(context.Background(), "task-1", moves, map[string]string{"Event": "casual"})
	require.NoError(t, err)
	require.Len(t, result.Moves, 4)

	labels := make([]analysis.Classification, 0, 4)
	for _, m := range result.Moves {
		labels = append(labels, m.Classification)
	}
	assert.Equal(t, []analysis.Classification{
		analysis.ClassGood,
		analysis.ClassTheory,
		analysis.ClassBlunder,
		analysis.ClassBest,
	}, labels)

	// The checkmating ply is the best possible move, whatever the numbers said.
	final := result.Moves[3]
	assert.Equal(t, "black", final.Side)
	assert.Equal(t, "Qh4#", final.SAN)
	assert.Equal(t, maxScoreMagnitude, final.PlayedScore.CP)
	assert.Equal(t, 0, final.Loss.ScoreLoss)

	// The losing ply points at the engine's suggestion.
	blunder := result.Moves[2]
	require.Len(t, blunder.Arrows, 1)
	assert.Equal(t, "g1", blunder.Arrows[0].From)
	assert.Equal(t, "f3", blunder.Arrows[0].To)

	assert.InDelta(t, 23.62, result.Summary.White.Accuracy, 0.01)
	assert.InDelta(t, 100.0, result.Summary.Black.Accuracy, 0.001)
	assert.Equal(t, 1, result.Summary.White.Blunders)
	assert.Equal(t, 1, result.Summary.Black.Best)
	assert.Equal(t, 1, result.Summary.Black.Theory)

	require.NotNil(t, store.saved)
	assert.Equal(t, "task-1", store.saved.TaskID)
	assert.Equal(t, "casual", store.saved.Headers["Event"])

	// One progress event per ply plus the terminal completion event.
	require.Len(t, sink.events, 5)
	progress := []float64{0.25, 0.5, 0.75, 1}
	for i, want := range progress {
		ev, ok := sink.events[i].(analysis.ProgressEvent)
		require.True(t, ok)
		assert.Equal(t, i, ev.MoveIndex)
		assert.InDelta(t, want, ev.Progress, 0.001)
	}
	done, ok := sink.events[4].(analysis.CompletionEvent)
	require.True(t, ok)
	assert.Equal(t, "complete", done.Status)
	assert.Equal(t, 4, done.TotalPlies)
}

func TestAnalyzeGameDeterministic(t *testing.T) {
	moves := parsePGN(t, "1. f3 e5 2. g4 Qh4# 0-1")

	run := func() []analysis.Classification {
		a := NewAnalyzer(zap.NewNop().Sugar(), foolsMateEngine(), nil, nil, Options{AccuracyK: 120, MateGuard: true})
		result, err := a.AnalyzeGame(context.Background(), "task-d", moves, nil)
		require.NoError(t, err)
		labels := make([]analysis.Classification, 0, len(result.Moves))
		for _, m := range result.Moves {
			labels = append(labels, m.Classification)
		}
		return labels
	}

	assert.Equal(t, run(), run())
}

func TestAnalyzeGameEmpty(t *testing.T) {
	a := NewAnalyzer(zap.NewNop().Sugar(), &scriptedEngine{}, nil, nil, Options{})
	_, err := a.AnalyzeGame(context.Background(), "task-e", nil, nil)
	assert.ErrorIs(t, err, errs.ErrEmptyGame)
}

func TestAnalyzeGameCancelled(t *testing.T) {
	moves := parsePGN(t, "1. f3 e5 2. g4 Qh4# 0-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	store := &recordingStore{}
	a := NewAnalyzer(zap.NewNop().Sugar(), foolsMateEngine(), store, sink, Options{AccuracyK: 120})

	_, err := a.AnalyzeGame(ctx, "task-c", moves, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.events)
	assert.Nil(t, store.saved)
}

func TestAnalyzeGameCancelledMidQuery(t *testing.T) {
	moves := parsePGN(t, "1. f3 e5 2. g4 Qh4# 0-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	store := &recordingStore{}
	engine := &cancellingEngine{inner: foolsMateEngine(), cancel: cancel, failAt: 2}
	a := NewAnalyzer(zap.NewNop().Sugar(), engine, store, sink, Options{AccuracyK: 120, MateGuard: true})

	_, err := a.AnalyzeGame(ctx, "task-m", moves, nil)
	assert.ErrorIs(t, err, context.Canceled)

	// Cancellation mid-search must not be absorbed as an engine fallback:
	// only the ply finished beforehand produced an event, and nothing is stored.
	require.Len(t, sink.events, 1)
	_, ok := sink.events[0].(analysis.ProgressEvent)
	assert.True(t, ok)
	assert.Nil(t, store.saved)
}

func TestAnalyzeGameEngineFallback(t *testing.T) {
	moves := parsePGN(t, "1. e4 *")
	require.Len(t, moves, 1)

	a := NewAnalyzer(zap.NewNop().Sugar(), failingEngine{}, nil, nil, Options{AccuracyK: 120})
	result, err := a.AnalyzeGame(context.Background(), "task-f", moves, nil)
	require.NoError(t, err)
	require.Len(t, result.Moves, 1)

	// With no engine data the played move is treated as the best move.
	ply := result.Moves[0]
	assert.Equal(t, "e2e4", ply.BestMove)
	assert.Equal(t, 0, ply.Loss.ScoreLoss)
	assert.Equal(t, analysis.ClassTheory, ply.Classification)
	assert.Equal(t, 100.0, result.Summary.White.Accuracy)
	assert.Equal(t, 100.0, result.Summary.Black.Accuracy)
}

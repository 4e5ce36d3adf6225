package repository

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/bootstrap"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// EngineSession owns one UCI engine process: writes commands to its stdin,
// reads results from its stdout. The process holds a single current
// position, so every query runs under the session mutex.
type EngineSession struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout *bufio.Scanner
	mu     sync.Mutex
	depth  int
	log    *zap.SugaredLogger
}

func NewEngineSession(cfg *bootstrap.Config, log *zap.SugaredLogger) (*EngineSession, error) {
	path := cfg.StockfishPath
	if path == "" {
		path = "stockfish"
	}
	cmd := exec.Command(path)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEngineUnavailable, err)
	}

	depth := cfg.EngineDepth
	if depth <= 0 {
		depth = 12
	}

	s := &EngineSession{
		cmd:    cmd,
		stdin:  bufio.NewWriter(stdinPipe),
		stdout: bufio.NewScanner(stdoutPipe),
		depth:  depth,
		log:    log,
	}

	if err := s.handshake(cfg); err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("%w: %v", errs.ErrEngineUnavailable, err)
	}
	return s, nil
}

func (s *EngineSession) handshake(cfg *bootstrap.Config) error {
	if err := s.send("uci"); err != nil {
		return err
	}
	if err := s.waitFor("uciok"); err != nil {
		return err
	}
	if cfg.EngineThreads > 0 {
		if err := s.send(fmt.Sprintf("setoption name Threads value %d", cfg.EngineThreads)); err != nil {
			return err
		}
	}
	if cfg.EngineHashMB > 0 {
		if err := s.send(fmt.Sprintf("setoption name Hash value %d", cfg.EngineHashMB)); err != nil {
			return err
		}
	}
	if err := s.send("isready"); err != nil {
		return err
	}
	return s.waitFor("readyok")
}

// SetDepth overrides the search depth for the queries that follow. Callers
// hold the session exclusively, so this is set once per acquisition.
func (s *EngineSession) SetDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if depth > 0 {
		s.depth = depth
	}
}

// Analyze runs a depth-limited search and returns the suggested best move
// plus the position score converted to the white-fixed viewpoint.
func (s *EngineSession) Analyze(ctx context.Context, fen string) (analysis.EngineReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return analysis.EngineReply{}, err
	}
	if err := s.send("position fen " + fen); err != nil {
		return analysis.EngineReply{}, err
	}
	if err := s.send(fmt.Sprintf("go depth %d", s.depth)); err != nil {
		return analysis.EngineReply{}, err
	}

	best, score, err := s.readSearchResult()
	if err != nil {
		return analysis.EngineReply{}, err
	}
	return analysis.EngineReply{BestMove: best, Score: toWhiteViewpoint(score, fen)}, nil
}

// Evaluate returns just the score for a position.
func (s *EngineSession) Evaluate(ctx context.Context, fen string) (analysis.EvalScore, error) {
	reply, err := s.Analyze(ctx, fen)
	if err != nil {
		return analysis.EvalScore{}, err
	}
	return reply.Score, nil
}

// IsAvailable probes the process with a shallow search of the starting
// position.
func (s *EngineSession) IsAvailable(ctx context.Context) bool {
	_, err := s.Analyze(ctx, startingFEN)
	return err == nil
}

func (s *EngineSession) Close() {
	_ = s.send("quit")
	_ = s.cmd.Wait()
}

func (s *EngineSession) send(cmd string) error {
	if _, err := s.stdin.WriteString(cmd + "\n"); err != nil {
		return err
	}
	return s.stdin.Flush()
}

func (s *EngineSession) waitFor(expected string) error {
	for s.stdout.Scan() {
		if strings.Contains(s.stdout.Text(), expected) {
			return nil
		}
	}
	return fmt.Errorf("engine closed stream waiting for %q", expected)
}

// readSearchResult consumes info lines until the bestmove line, keeping the
// score from the deepest info line seen.
func (s *EngineSession) readSearchResult() (string, analysis.EvalScore, error) {
	score := analysis.EvalScore{Kind: analysis.ScoreCentipawns}
	for s.stdout.Scan() {
		line := s.stdout.Text()
		if strings.HasPrefix(line, "info") {
			if parsed, ok := parseInfoScore(line); ok {
				score = parsed
			}
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			best := ""
			if len(fields) > 1 && fields[1] != "(none)" {
				best = fields[1]
			}
			return best, score, nil
		}
	}
	return "", score, fmt.Errorf("engine closed stream during search")
}

func parseInfoScore(line string) (analysis.EvalScore, bool) {
	fields := strings.Fields(line)
	for i := 0; i+2 < len(fields); i++ {
		if fields[i] != "score" {
			continue
		}
		value, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return analysis.EvalScore{}, false
		}
		switch fields[i+1] {
		case "cp":
			return analysis.EvalScore{Kind: analysis.ScoreCentipawns, Value: value}, true
		case "mate":
			return analysis.EvalScore{Kind: analysis.ScoreMate, Value: value}, true
		}
	}
	return analysis.EvalScore{}, false
}

// toWhiteViewpoint converts a UCI score, which is always relative to the
// side to move, into the fixed white viewpoint.
func toWhiteViewpoint(score analysis.EvalScore, fen string) analysis.EvalScore {
	fields := strings.Fields(fen)
	if len(fields) > 1 && fields[1] == "b" {
		score.Value = -score.Value
	}
	return score
}

// EnginePool hands out exclusive sessions: one per concurrently running
// analysis, serialized per session because the engine process tracks a
// single current position.
type EnginePool struct {
	sessions chan *EngineSession
	log      *zap.SugaredLogger
}

func NewEnginePool(cfg *bootstrap.Config, log *zap.SugaredLogger) (*EnginePool, error) {
	size := cfg.EngineSessions
	if size <= 0 {
		size = 1
	}
	pool := &EnginePool{
		sessions: make(chan *EngineSession, size),
		log:      log,
	}
	for i := 0; i < size; i++ {
		session, err := NewEngineSession(cfg, log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.sessions <- session
	}
	log.Infof("engine pool ready with %d session(s)", size)
	return pool, nil
}

func (p *EnginePool) Acquire(ctx context.Context) (*EngineSession, error) {
	select {
	case session := <-p.sessions:
		return session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *EnginePool) Release(session *EngineSession) {
	p.sessions <- session
}

func (p *EnginePool) Close() {
	for {
		select {
		case session := <-p.sessions:
			session.Close()
		default:
			return
		}
	}
}

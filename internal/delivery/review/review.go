package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/adapters"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/bootstrap"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/delivery/ws"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/httpresponse"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/repository"
	reviewuc "github.com/H0NEYP0T-466/ChessReviewEngine/internal/usecase/review"
)

const (
	minEngineDepth = 1
	maxEngineDepth = 30

	defaultMaxPGNLength = 20000
)

// ReviewHandler exposes the analysis API: start a review, fetch its result,
// probe engine health.
type ReviewHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	engines *repository.EnginePool
	results *repository.ResultStorage
	archive *repository.ArchiveStorage
	hub     *ws.Hub

	// serverCtx bounds every background analysis: shutdown cancels them.
	serverCtx context.Context
}

func NewReviewHandler(
	serverCtx context.Context,
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	engines *repository.EnginePool,
	redisAdapter *adapters.AdapterRedis,
	mongoAdapter *adapters.AdapterMongo,
	hub *ws.Hub,
) *ReviewHandler {
	return &ReviewHandler{
		cfg:       cfg,
		log:       log,
		engines:   engines,
		results:   repository.NewResultStorage(&cfg, redisAdapter, log),
		archive:   repository.NewArchiveStorage(mongoAdapter, log),
		hub:       hub,
		serverCtx: serverCtx,
	}
}

func (h *ReviewHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req analysis.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("JSON decode error: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	maxLen := h.cfg.MaxPGNLength
	if maxLen <= 0 {
		maxLen = defaultMaxPGNLength
	}
	moves, headers, err := repository.ParseGame(req.PGN, maxLen)
	if err != nil {
		h.log.Error("pgn rejected: ", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	taskID := uuid.New().String()
	h.log.Infow("received analyze request", "task", taskID, "moves", len(moves), "depth", req.EngineDepth)

	go h.runAnalysis(taskID, moves, headers, req.EngineDepth)

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, analysis.AnalyzeStartResponse{
		TaskID:     taskID,
		Status:     "started",
		TotalMoves: len(moves),
	})
}

func (h *ReviewHandler) runAnalysis(taskID string, moves []*chess.Move, headers map[string]string, depth int) {
	ctx := h.serverCtx

	session, err := h.engines.Acquire(ctx)
	if err != nil {
		h.log.Errorw("could not acquire engine session", "task", taskID, "error", err)
		return
	}
	defer h.engines.Release(session)

	if depth < minEngineDepth || depth > maxEngineDepth {
		depth = h.cfg.EngineDepth
	}
	session.SetDepth(depth)

	analyzer := reviewuc.NewAnalyzer(h.log, session, h.resultSink(), h.hub, reviewuc.Options{
		AccuracyK: float64(h.cfg.AccuracyK),
		MateGuard: h.cfg.MateGuard,
	})

	if _, err := analyzer.AnalyzeGame(ctx, taskID, moves, headers); err != nil {
		h.log.Errorw("analysis failed", "task", taskID, "error", err)
	}
}

func (h *ReviewHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.log.Error("only GET method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	taskID := chi.URLParam(r, "taskID")
	ctx := r.Context()

	result, err := h.results.Get(ctx, taskID)
	if errors.Is(err, errs.ErrAnalysisNotFound) {
		// The cache entry may have expired; the archive keeps everything.
		result, err = h.archive.FindByTaskID(ctx, taskID)
	}
	if errors.Is(err, errs.ErrAnalysisNotFound) {
		httpresponse.WriteResponseWithStatus(w, http.StatusNotFound, "Analysis not found or still in progress")
		return
	}
	if err != nil {
		h.log.Errorw("failed to load result", "task", taskID, "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, result)
}

func (h *ReviewHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.log.Error("only GET method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	session, err := h.engines.Acquire(ctx)
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusServiceUnavailable, analysis.HealthResponse{
			Status:          "unhealthy",
			EngineAvailable: false,
			Message:         "all engine sessions busy",
		})
		return
	}
	available := session.IsAvailable(ctx)
	h.engines.Release(session)

	if !available {
		httpresponse.WriteResponseWithStatus(w, http.StatusServiceUnavailable, analysis.HealthResponse{
			Status:          "unhealthy",
			EngineAvailable: false,
			Message:         "engine is not responding",
		})
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, analysis.HealthResponse{
		Status:          "healthy",
		EngineAvailable: true,
		Message:         "engine is operational",
	})
}

// resultSink stores each finished review in the Redis cache and the Mongo
// archive in one step.
func (h *ReviewHandler) resultSink() reviewuc.ResultStore {
	return &combinedStore{results: h.results, archive: h.archive, log: h.log}
}

type combinedStore struct {
	results *repository.ResultStorage
	archive *repository.ArchiveStorage
	log     *zap.SugaredLogger
}

func (c *combinedStore) Save(ctx context.Context, result *analysis.GameAnalysisResult) error {
	if err := c.archive.Insert(ctx, result); err != nil {
		c.log.Errorw("archive insert failed", "task", result.TaskID, "error", err)
	}
	return c.results.Save(ctx, result)
}

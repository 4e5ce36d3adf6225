package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/adapters"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/bootstrap"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

// ResultStorage caches finished reviews in Redis keyed by task id. Entries
// are written exactly once and expire after the configured TTL; the Mongo
// archive keeps the durable copy.
type ResultStorage struct {
	cfg   *bootstrap.Config
	redis *adapters.AdapterRedis
	log   *zap.SugaredLogger
}

func NewResultStorage(cfg *bootstrap.Config, redisAdapter *adapters.AdapterRedis, log *zap.SugaredLogger) *ResultStorage {
	return &ResultStorage{
		cfg:   cfg,
		redis: redisAdapter,
		log:   log,
	}
}

func (r *ResultStorage) Save(ctx context.Context, result *analysis.GameAnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	ttl := time.Duration(r.cfg.ResultTTLHours) * time.Hour
	ok, err := r.redis.GetClient().SetNX(ctx, resultKey(result.TaskID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	if !ok {
		return errs.ErrResultExists
	}
	return nil
}

func (r *ResultStorage) Get(ctx context.Context, taskID string) (*analysis.GameAnalysisResult, error) {
	val, err := r.redis.GetClient().Get(ctx, resultKey(taskID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}

	var result analysis.GameAnalysisResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

func resultKey(taskID string) string {
	return "review:" + taskID
}

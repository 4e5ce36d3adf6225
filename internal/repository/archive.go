package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/adapters"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/domain/analysis"
	errs "github.com/H0NEYP0T-466/ChessReviewEngine/internal/errors"
)

const archiveCollection = "analyses"

// ArchiveStorage keeps the durable copy of every finished review in Mongo.
type ArchiveStorage struct {
	mongo *adapters.AdapterMongo
	log   *zap.SugaredLogger
}

func NewArchiveStorage(mongoAdapter *adapters.AdapterMongo, log *zap.SugaredLogger) *ArchiveStorage {
	return &ArchiveStorage{
		mongo: mongoAdapter,
		log:   log,
	}
}

func (a *ArchiveStorage) Insert(ctx context.Context, result *analysis.GameAnalysisResult) error {
	_, err := a.mongo.Database.Collection(archiveCollection).InsertOne(ctx, result)
	if err != nil {
		return fmt.Errorf("archive result: %w", err)
	}
	return nil
}

func (a *ArchiveStorage) FindByTaskID(ctx context.Context, taskID string) (*analysis.GameAnalysisResult, error) {
	var result analysis.GameAnalysisResult
	err := a.mongo.Database.Collection(archiveCollection).
		FindOne(ctx, bson.M{"task_id": taskID}).
		Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load archived result: %w", err)
	}
	return &result, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hooplytics/courtline/internal/models"
)

// GameRepository persists completed games.
type GameRepository interface {
	Upsert(ctx context.Context, game *models.GameRecord) error
	UpsertBatch(ctx context.Context, games []models.GameRecord) (int, error)
	GetByID(ctx context.Context, id string) (*models.GameRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.GameRecord, error)
	GetByTeam(ctx context.Context, team string, start, end time.Time) ([]models.GameRecord, error)
}

// PredictionRepository persists backtest output records.
type PredictionRepository interface {
	CreateBatch(ctx context.Context, records []models.PredictionRecord) error
	GetByRun(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) (int64, error)
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hooplytics/courtline/internal/database"
	"github.com/hooplytics/courtline/internal/models"
)

const errScanPrediction = "failed to scan prediction: %w"

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// CreateBatch inserts a run's records inside one transaction.
func (r *PostgresPredictionRepository) CreateBatch(ctx context.Context, records []models.PredictionRecord) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO predictions (id, run_id, game_id, played_at, home_team, away_team,
			                         predicted_margin, elo_component, nr_component, actual_margin,
			                         abs_error, opponent_tier, is_home, rest_days, is_qualified,
			                         combined_pace, spread, su_correct, ats_correct, push)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`
		for i := range records {
			p := &records[i]
			if _, err := tx.Exec(ctx, query,
				p.ID, p.RunID, p.GameID, p.Date, p.HomeTeam, p.AwayTeam,
				p.Predicted, p.EloComponent, p.NRComponent, p.ActualMargin,
				p.AbsError, p.OpponentTier, p.Home, p.RestDays, p.Qualified,
				p.CombinedPace, p.Spread, p.SUCorrect, p.ATSCorrect, p.Push,
			); err != nil {
				return fmt.Errorf("failed to insert prediction %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// GetByRun retrieves a run's records in replay order.
func (r *PostgresPredictionRepository) GetByRun(ctx context.Context, runID uuid.UUID) ([]models.PredictionRecord, error) {
	query := `
		SELECT id, run_id, game_id, played_at, home_team, away_team,
		       predicted_margin, elo_component, nr_component, actual_margin,
		       abs_error, opponent_tier, is_home, rest_days, is_qualified,
		       combined_pace, spread, su_correct, ats_correct, push
		FROM predictions
		WHERE run_id = $1
		ORDER BY played_at ASC, game_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by run: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		err := rows.Scan(
			&p.ID, &p.RunID, &p.GameID, &p.Date, &p.HomeTeam, &p.AwayTeam,
			&p.Predicted, &p.EloComponent, &p.NRComponent, &p.ActualMargin,
			&p.AbsError, &p.OpponentTier, &p.Home, &p.RestDays, &p.Qualified,
			&p.CombinedPace, &p.Spread, &p.SUCorrect, &p.ATSCorrect, &p.Push,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

// DeleteRun removes a run's records and reports how many were deleted.
func (r *PostgresPredictionRepository) DeleteRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM predictions WHERE run_id = $1`, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete run: %w", err)
	}
	return tag.RowsAffected(), nil
}

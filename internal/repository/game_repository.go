package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hooplytics/courtline/internal/database"
	"github.com/hooplytics/courtline/internal/models"
)

const errScanGame = "failed to scan game: %w"

const gameColumns = `id, played_at, home_team, away_team, home_score, away_score,
	       spread, home_qualified, away_qualified, home_pace, away_pace`

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Upsert inserts a game or refreshes its mutable columns. Ingestion
// re-fetches recent days, so the same game id arrives repeatedly.
func (r *PostgresGameRepository) Upsert(ctx context.Context, game *models.GameRecord) error {
	query := `
		INSERT INTO games (id, played_at, home_team, away_team, home_score, away_score,
		                   spread, home_qualified, away_qualified, home_pace, away_pace)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			spread = EXCLUDED.spread,
			home_qualified = EXCLUDED.home_qualified,
			away_qualified = EXCLUDED.away_qualified,
			home_pace = EXCLUDED.home_pace,
			away_pace = EXCLUDED.away_pace,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.Date, game.HomeTeam, game.AwayTeam, game.HomeScore, game.AwayScore,
		game.Spread, game.HomeQualified, game.AwayQualified, game.HomePace, game.AwayPace,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// UpsertBatch upserts games inside one transaction and returns how many
// were written.
func (r *PostgresGameRepository) UpsertBatch(ctx context.Context, games []models.GameRecord) (int, error) {
	written := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO games (id, played_at, home_team, away_team, home_score, away_score,
			                   spread, home_qualified, away_qualified, home_pace, away_pace)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				home_score = EXCLUDED.home_score,
				away_score = EXCLUDED.away_score,
				spread = EXCLUDED.spread,
				home_qualified = EXCLUDED.home_qualified,
				away_qualified = EXCLUDED.away_qualified,
				home_pace = EXCLUDED.home_pace,
				away_pace = EXCLUDED.away_pace,
				updated_at = NOW()
		`
		for i := range games {
			g := &games[i]
			if _, err := tx.Exec(ctx, query,
				g.ID, g.Date, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore,
				g.Spread, g.HomeQualified, g.AwayQualified, g.HomePace, g.AwayPace,
			); err != nil {
				return fmt.Errorf("failed to upsert game %s: %w", g.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id string) (*models.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game := &models.GameRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.Date, &game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
		&game.Spread, &game.HomeQualified, &game.AwayQualified, &game.HomePace, &game.AwayPace,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByDateRange retrieves games within a date range in replay order.
// The id tie-break keeps same-day ordering stable across runs.
func (r *PostgresGameRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.GameRecord, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE played_at >= $1 AND played_at <= $2
		ORDER BY played_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by date range: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetByTeam retrieves one team's games within a date range in replay order.
func (r *PostgresGameRepository) GetByTeam(ctx context.Context, team string, start, end time.Time) ([]models.GameRecord, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE (home_team = $1 OR away_team = $1) AND played_at >= $2 AND played_at <= $3
		ORDER BY played_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, team, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by team: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

func scanGames(rows pgx.Rows) ([]models.GameRecord, error) {
	var games []models.GameRecord
	for rows.Next() {
		var game models.GameRecord
		err := rows.Scan(
			&game.ID, &game.Date, &game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
			&game.Spread, &game.HomeQualified, &game.AwayQualified, &game.HomePace, &game.AwayPace,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

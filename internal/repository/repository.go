package repository

import (
	"fmt"

	"github.com/hooplytics/courtline/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game       GameRepository
	Prediction PredictionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game:       NewPostgresGameRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
	}, nil
}

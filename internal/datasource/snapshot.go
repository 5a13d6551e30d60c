package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hooplytics/courtline/internal/models"
)

const snapshotSourceName = "snapshot"

// SnapshotSource implements GameSource over a local JSON file, the
// offline path for replaying archived seasons without API access.
type SnapshotSource struct {
	path string
}

// NewSnapshotSource creates a snapshot source for the given file.
func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{path: path}
}

// Name returns the name of the data source
func (s *SnapshotSource) Name() string {
	return snapshotSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (s *SnapshotSource) IsEnabled() bool {
	return s.path != ""
}

// FetchGames loads the snapshot and returns games inside the range,
// sorted into replay order.
func (s *SnapshotSource) FetchGames(ctx context.Context, startDate, endDate time.Time) ([]models.GameRecord, error) {
	if s.path == "" {
		return nil, NewDataSourceError(snapshotSourceName, ErrCodeNetworkError, "source disabled", ErrSourceDisabled)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, NewDataSourceError(snapshotSourceName, ErrCodeNotFound, fmt.Sprintf("failed to read snapshot %s", s.path), err)
	}

	var all []models.GameRecord
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, NewDataSourceError(snapshotSourceName, ErrCodeInvalidData, "failed to parse snapshot", err)
	}

	var games []models.GameRecord
	for _, g := range all {
		if g.Date.Before(startDate) || g.Date.After(endDate) {
			continue
		}
		games = append(games, g)
	}

	sort.Slice(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].ID < games[j].ID
	})

	return games, nil
}

// WriteSnapshot saves games to a JSON file, the inverse of FetchGames.
func WriteSnapshot(path string, games []models.GameRecord) error {
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

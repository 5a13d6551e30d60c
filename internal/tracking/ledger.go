// Package tracking records pre-game predictions for upcoming games and
// settles them against final scores, the forward-testing counterpart to
// the historical replay.
package tracking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hooplytics/courtline/internal/models"
)

// TrackedPrediction is one forward prediction: recorded before tip-off,
// settled once the final score is known.
type TrackedPrediction struct {
	GameID       string    `json:"game_id"`
	Date         time.Time `json:"date"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Predicted    float64   `json:"predicted_margin"`
	EloComponent float64   `json:"elo_component"`
	NRComponent  float64   `json:"nr_component"`
	Spread       *float64  `json:"spread,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`

	Settled      bool  `json:"settled"`
	HomeScore    int   `json:"home_score,omitempty"`
	AwayScore    int   `json:"away_score,omitempty"`
	ActualMargin int   `json:"actual_margin,omitempty"`
	SUCorrect    *bool `json:"su_correct,omitempty"`
	ATSCorrect   *bool `json:"ats_correct,omitempty"`
	Push         bool  `json:"push,omitempty"`
}

// Ledger is the on-disk collection of tracked predictions.
type Ledger struct {
	Predictions []TrackedPrediction `json:"predictions"`
	LastUpdated time.Time           `json:"last_updated"`
}

// LoadLedger reads a ledger file; a missing file yields an empty ledger
// so the first record run needs no setup.
func LoadLedger(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{}, nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	return &l, nil
}

// Save writes the ledger, creating the parent directory when needed.
func (l *Ledger) Save(path string) error {
	l.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", path, err)
	}
	return nil
}

// Add appends a new prediction. Recording the same game twice is an
// error so reruns over overlapping slates cannot double-count.
func (l *Ledger) Add(p TrackedPrediction) error {
	if l.Find(p.GameID) != nil {
		return fmt.Errorf("game %s already tracked: %w", p.GameID, models.ErrDuplicateKey)
	}
	l.Predictions = append(l.Predictions, p)
	return nil
}

// Find returns the tracked prediction for a game, or nil.
func (l *Ledger) Find(gameID string) *TrackedPrediction {
	for i := range l.Predictions {
		if l.Predictions[i].GameID == gameID {
			return &l.Predictions[i]
		}
	}
	return nil
}

// Pending returns pointers to the unsettled predictions so settling
// mutates the ledger in place.
func (l *Ledger) Pending() []*TrackedPrediction {
	var out []*TrackedPrediction
	for i := range l.Predictions {
		if !l.Predictions[i].Settled {
			out = append(out, &l.Predictions[i])
		}
	}
	return out
}

// Settled returns the completed predictions.
func (l *Ledger) Settled() []TrackedPrediction {
	var out []TrackedPrediction
	for _, p := range l.Predictions {
		if p.Settled {
			out = append(out, p)
		}
	}
	return out
}

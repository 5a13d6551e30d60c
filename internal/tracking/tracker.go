package tracking

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hooplytics/courtline/internal/backtest"
	"github.com/hooplytics/courtline/internal/datasource"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/predictor"
	"github.com/hooplytics/courtline/internal/rating"
)

const pushMargin = 0.5

// Tracker produces forward predictions from current team states and
// settles them against results.
type Tracker struct {
	params        predictor.Params
	predictor     *predictor.Predictor
	minPriorGames int
	logger        *logrus.Logger
}

// NewTracker creates a tracker. minPriorGames gates predictions the
// same way the replay does.
func NewTracker(params predictor.Params, minPriorGames int, logger *logrus.Logger) *Tracker {
	if logger == nil {
		logger = logrus.New()
	}
	return &Tracker{
		params:        params,
		predictor:     predictor.New(params),
		minPriorGames: minPriorGames,
		logger:        logger,
	}
}

// BuildStates folds completed games into per-team states and then seeds
// each team's Elo from its season standings: the record-based logistic
// transform blended with the point-differential seed, the record weight
// decaying as games accumulate. Forward predictions work from the
// standings seed, not the game-by-game transfer, so a run's ratings
// depend only on the current standings and recent form.
func (t *Tracker) BuildStates(games []models.GameRecord) map[string]*rating.TeamState {
	sorted := make([]models.GameRecord, len(games))
	copy(sorted, games)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	states := map[string]*rating.TeamState{}
	update := rating.UpdateParams{EloK: t.params.EloK, EloHomeAdvantage: t.params.EloHomeAdvantage}
	for _, g := range sorted {
		if g.Tied() {
			t.logger.WithField("game_id", g.ID).Warn("Skipping tied game")
			continue
		}
		home := t.state(states, g.HomeTeam)
		away := t.state(states, g.AwayTeam)
		if err := rating.ApplyResult(home, away, g, update); err != nil {
			t.logger.WithError(err).WithField("game_id", g.ID).Warn("Skipping game")
		}
	}

	for _, s := range states {
		s.Elo = rating.BlendedElo(s.Wins, s.Losses, s.PointsFor-s.PointsAgainst,
			t.params.BlendWeightFloor, t.params.BlendDecayGames)
	}
	return states
}

func (t *Tracker) state(states map[string]*rating.TeamState, team string) *rating.TeamState {
	if s, ok := states[team]; ok {
		return s
	}
	s := rating.NewTeamState(team, t.params.WindowCapacity)
	states[team] = s
	return s
}

// Predict forecasts one upcoming game from the built states. Teams
// below the prior-games gate cannot be predicted.
func (t *Tracker) Predict(states map[string]*rating.TeamState, g models.GameRecord) (predictor.Prediction, error) {
	home, away := states[g.HomeTeam], states[g.AwayTeam]
	if home == nil || home.Games() < t.minPriorGames {
		return predictor.Prediction{}, fmt.Errorf("%s has %d prior games, need %d: %w",
			g.HomeTeam, gamesOrZero(home), t.minPriorGames, models.ErrInsufficientHistory)
	}
	if away == nil || away.Games() < t.minPriorGames {
		return predictor.Prediction{}, fmt.Errorf("%s has %d prior games, need %d: %w",
			g.AwayTeam, gamesOrZero(away), t.minPriorGames, models.ErrInsufficientHistory)
	}
	return t.predictor.Predict(home, away, g), nil
}

func gamesOrZero(s *rating.TeamState) int {
	if s == nil {
		return 0
	}
	return s.Games()
}

// Record predicts each upcoming game and appends it to the ledger.
// Games already tracked or below the history gate are skipped, not
// errors: the slate is recorded best-effort and reruns are idempotent.
// Spreads are keyed by matchup.
func (t *Tracker) Record(ledger *Ledger, states map[string]*rating.TeamState, upcoming []models.GameRecord, spreads map[string]float64) int {
	added := 0
	for _, g := range upcoming {
		pred, err := t.Predict(states, g)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientHistory) {
				t.logger.WithError(err).WithField("game_id", g.ID).Warn("Skipping prediction")
				continue
			}
			t.logger.WithError(err).WithField("game_id", g.ID).Error("Prediction failed")
			continue
		}

		entry := TrackedPrediction{
			GameID:       g.ID,
			Date:         g.Date,
			HomeTeam:     g.HomeTeam,
			AwayTeam:     g.AwayTeam,
			Predicted:    pred.Margin,
			EloComponent: pred.EloComponent,
			NRComponent:  pred.NRComponent,
			RecordedAt:   time.Now().UTC(),
		}
		if point, ok := spreads[datasource.MatchupKey(g.Date, g.HomeTeam, g.AwayTeam)]; ok {
			spread := point
			entry.Spread = &spread
		}

		if err := ledger.Add(entry); err != nil {
			if errors.Is(err, models.ErrDuplicateKey) {
				t.logger.WithField("game_id", g.ID).Debug("Already tracked")
				continue
			}
			t.logger.WithError(err).Error("Failed to track prediction")
			continue
		}

		t.logger.WithFields(logrus.Fields{
			"game":      fmt.Sprintf("%s @ %s", g.AwayTeam, g.HomeTeam),
			"date":      g.Date.Format("2006-01-02"),
			"predicted": fmt.Sprintf("%+.1f", pred.Margin),
		}).Info("Prediction recorded")
		added++
	}
	return added
}

// Settle fills in outcomes for pending predictions from final scores,
// matched by game ID. Tied finals stay pending.
func (t *Tracker) Settle(ledger *Ledger, results []models.GameRecord) int {
	byID := make(map[string]models.GameRecord, len(results))
	for _, g := range results {
		byID[g.ID] = g
	}

	settled := 0
	for _, p := range ledger.Pending() {
		g, ok := byID[p.GameID]
		if !ok {
			continue
		}
		if g.Tied() {
			t.logger.WithField("game_id", g.ID).Warn("Tied final, leaving prediction pending")
			continue
		}

		actual := g.Margin()
		p.HomeScore = g.HomeScore
		p.AwayScore = g.AwayScore
		p.ActualMargin = actual

		su := (p.Predicted > 0) == (actual > 0)
		p.SUCorrect = &su

		if p.Spread != nil {
			spread := *p.Spread
			if math.Abs(float64(actual)+spread) < pushMargin {
				p.Push = true
			} else {
				ats := (p.Predicted+spread > 0) == (float64(actual)+spread > 0)
				p.ATSCorrect = &ats
			}
		}

		p.Settled = true
		settled++
	}
	return settled
}

// Summarize computes replay-style accuracy over the settled entries.
func Summarize(l *Ledger) backtest.Summary {
	settled := l.Settled()
	records := make([]models.PredictionRecord, 0, len(settled))
	for _, p := range settled {
		records = append(records, models.PredictionRecord{
			GameID:       p.GameID,
			Date:         p.Date,
			HomeTeam:     p.HomeTeam,
			AwayTeam:     p.AwayTeam,
			Predicted:    p.Predicted,
			ActualMargin: p.ActualMargin,
			AbsError:     math.Abs(p.Predicted - float64(p.ActualMargin)),
			SUCorrect:    p.SUCorrect != nil && *p.SUCorrect,
			ATSCorrect:   p.ATSCorrect,
			Push:         p.Push,
			Spread:       p.Spread,
		})
	}
	return backtest.Summarize(records)
}

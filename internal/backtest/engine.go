package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hooplytics/courtline/internal/metrics"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/predictor"
	"github.com/hooplytics/courtline/internal/rating"
)

// pushMargin is the half-point band around the spread inside which an
// against-the-spread result counts as a push.
const pushMargin = 0.5

// Engine replays a season chronologically. For every game it first
// predicts from state built on strictly earlier games, then folds the
// result in, so no forecast can see its own outcome.
type Engine struct {
	config    Config
	predictor *predictor.Predictor
	states    map[string]*rating.TeamState
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	runID    uuid.UUID
	lastDate time.Time
}

// Result collects everything one run produced.
type Result struct {
	RunID       uuid.UUID
	Records     []models.PredictionRecord
	Summary     Summary
	SkippedTies int
	SkippedGate int
}

// NewEngine creates a replay engine.
func NewEngine(cfg Config, logger *logrus.Logger, m *metrics.Metrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config:    cfg,
		predictor: predictor.New(cfg.Params),
		states:    make(map[string]*rating.TeamState),
		metrics:   m,
		logger:    logger,
		runID:     uuid.New(),
	}, nil
}

// Config returns the replay configuration.
func (e *Engine) Config() Config {
	return e.config
}

// RunID identifies this engine's run in persisted records.
func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// State returns the accumulated state for a team, or nil before its
// first processed game.
func (e *Engine) State(team string) *rating.TeamState {
	return e.states[team]
}

// Run replays games in the order given. Games must be sorted by date
// ascending; a regression in dates aborts the run, since folding games
// out of order corrupts every downstream rating.
func (e *Engine) Run(ctx context.Context, games []models.GameRecord) (*Result, error) {
	e.logger.WithFields(logrus.Fields{
		"run_id": e.runID,
		"games":  len(games),
		"start":  e.config.StartDate.Format("2006-01-02"),
		"end":    e.config.EndDate.Format("2006-01-02"),
	}).Info("Starting backtest run")

	started := time.Now()
	result := &Result{RunID: e.runID}

	for i := range games {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := e.processGame(&games[i], result); err != nil {
			return nil, err
		}
	}

	result.Summary = Summarize(result.Records)
	if e.metrics != nil {
		e.metrics.BacktestDuration.Observe(time.Since(started).Seconds())
		e.metrics.TrackedTeams.Set(float64(len(e.states)))
	}

	e.logger.WithFields(logrus.Fields{
		"run_id":       e.runID,
		"predictions":  len(result.Records),
		"skipped_ties": result.SkippedTies,
		"skipped_gate": result.SkippedGate,
		"mae":          result.Summary.MAE,
	}).Info("Backtest run complete")

	return result, nil
}

func (e *Engine) processGame(g *models.GameRecord, result *Result) error {
	if g.Date.Before(e.lastDate) {
		return fmt.Errorf("game %s on %s after %s: %w",
			g.ID, g.Date.Format("2006-01-02"), e.lastDate.Format("2006-01-02"), models.ErrOutOfOrderGame)
	}
	e.lastDate = g.Date

	if g.Tied() {
		e.logger.WithFields(logrus.Fields{
			"game_id": g.ID,
			"date":    g.Date.Format("2006-01-02"),
		}).Warn("Skipping tied game")
		result.SkippedTies++
		if e.metrics != nil {
			e.metrics.SkippedTiesTotal.Inc()
		}
		return nil
	}

	home := e.stateFor(g.HomeTeam)
	away := e.stateFor(g.AwayTeam)

	// Predict before folding the result; the gate keeps early-season
	// noise out of the record set but the fold below always happens.
	if e.shouldPredict(g, home, away) {
		pred := e.predictor.Predict(home, away, *g)
		result.Records = append(result.Records, e.buildRecord(g, home, away, pred))
		if e.metrics != nil {
			e.metrics.PredictionsTotal.Inc()
		}
	} else {
		result.SkippedGate++
		if e.metrics != nil {
			e.metrics.PredictionsSkippedTotal.Inc()
		}
	}

	if err := rating.ApplyResult(home, away, *g, rating.UpdateParams{
		EloK:             e.config.Params.EloK,
		EloHomeAdvantage: e.config.Params.EloHomeAdvantage,
	}); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.GamesProcessedTotal.Inc()
	}
	return nil
}

func (e *Engine) stateFor(team string) *rating.TeamState {
	if s, ok := e.states[team]; ok {
		return s
	}
	s := rating.NewTeamState(team, e.config.Params.WindowCapacity)
	e.states[team] = s
	return s
}

// shouldPredict gates predictions on the configured date range, a focus
// team when one is set, and enough prior games on both sides.
func (e *Engine) shouldPredict(g *models.GameRecord, home, away *rating.TeamState) bool {
	if g.Date.Before(e.config.StartDate) || g.Date.After(e.config.EndDate) {
		return false
	}
	if e.config.FocusTeam != "" && g.HomeTeam != e.config.FocusTeam && g.AwayTeam != e.config.FocusTeam {
		return false
	}
	return home.Games() >= e.config.MinPriorGames && away.Games() >= e.config.MinPriorGames
}

func (e *Engine) buildRecord(g *models.GameRecord, home, away *rating.TeamState, pred predictor.Prediction) models.PredictionRecord {
	actual := g.Margin()
	focusIsHome := e.config.FocusTeam == "" || g.HomeTeam == e.config.FocusTeam

	perspective, opponent := home, away
	if !focusIsHome {
		perspective, opponent = away, home
	}

	rec := models.PredictionRecord{
		ID:           uuid.New(),
		RunID:        e.runID,
		GameID:       g.ID,
		Date:         g.Date,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		Predicted:    pred.Margin,
		EloComponent: pred.EloComponent,
		NRComponent:  pred.NRComponent,
		ActualMargin: actual,
		AbsError:     math.Abs(pred.Margin - float64(actual)),
		OpponentTier: models.TierFor(opponent.WeightedNetRating(e.config.Params.WindowWeights)),
		Home:         focusIsHome,
		RestDays:     perspective.RestDays(g.Date),
		Qualified:    g.QualifiedSide(focusIsHome),
		CombinedPace: g.CombinedPace(),
		Spread:       g.Spread,
		SUCorrect:    (pred.Margin > 0) == (actual > 0),
	}

	if g.Spread != nil {
		line := *g.Spread
		if math.Abs(float64(actual)+line) < pushMargin {
			rec.Push = true
		} else {
			covered := float64(actual)+line > 0
			picked := pred.Margin+line > 0
			correct := covered == picked
			rec.ATSCorrect = &correct
		}
	}

	return rec
}

package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/predictor"
	"github.com/hooplytics/courtline/internal/rating"
)

func testConfig() Config {
	return Config{
		StartDate:     time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		MinPriorGames: 2,
		Params:        predictor.DefaultParams(),
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testGame(day int, home, away string, homeScore, awayScore int) models.GameRecord {
	date := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return models.GameRecord{
		ID:        date.Format("20060102") + "-" + home + "-" + away,
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
}

// Four teams playing each other so everyone reaches two prior games.
func testSeason() []models.GameRecord {
	return []models.GameRecord{
		testGame(0, "BOS", "NYK", 112, 100),
		testGame(0, "MIA", "PHI", 98, 104),
		testGame(2, "NYK", "MIA", 105, 99),
		testGame(2, "PHI", "BOS", 96, 110),
		testGame(4, "BOS", "MIA", 108, 101), // first game with history on both sides
		testGame(4, "NYK", "PHI", 99, 97),
		testGame(6, "MIA", "BOS", 95, 103),
		testGame(6, "PHI", "NYK", 101, 94),
	}
}

func TestRunGatesOnPriorGames(t *testing.T) {
	engine, err := NewEngine(testConfig(), quietLogger(), nil)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), testSeason())
	require.NoError(t, err)

	// Games before day 4 lack two prior games on at least one side.
	assert.Len(t, result.Records, 4)
	assert.Equal(t, 4, result.SkippedGate)
	assert.Equal(t, 0, result.SkippedTies)
	for _, r := range result.Records {
		assert.False(t, r.Date.Before(time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)))
	}

	// Every game was folded regardless of the gate.
	assert.Equal(t, 4, engine.State("BOS").Games())
	assert.Equal(t, 4, engine.State("NYK").Games())
}

// The prediction for a game must equal what the model computes from
// state built on strictly earlier games only.
func TestRunNeverSeesOwnResult(t *testing.T) {
	games := testSeason()
	engine, err := NewEngine(testConfig(), quietLogger(), nil)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), games)
	require.NoError(t, err)
	require.NotEmpty(t, result.Records)

	last := result.Records[len(result.Records)-1]

	// Rebuild state by hand from every game before the last one.
	states := map[string]*rating.TeamState{}
	stateFor := func(team string) *rating.TeamState {
		if s, ok := states[team]; ok {
			return s
		}
		s := rating.NewTeamState(team, 15)
		states[team] = s
		return s
	}
	params := rating.UpdateParams{EloK: 20, EloHomeAdvantage: 70}
	var lastGame models.GameRecord
	for _, g := range games {
		if g.ID == last.GameID {
			lastGame = g
			break
		}
		require.NoError(t, rating.ApplyResult(stateFor(g.HomeTeam), stateFor(g.AwayTeam), g, params))
	}

	pred := predictor.New(predictor.DefaultParams()).
		Predict(stateFor(lastGame.HomeTeam), stateFor(lastGame.AwayTeam), lastGame)
	assert.InDelta(t, pred.Margin, last.Predicted, 1e-9)
}

func TestRunRejectsOutOfOrderGames(t *testing.T) {
	games := testSeason()
	games[2], games[5] = games[5], games[2]

	engine, err := NewEngine(testConfig(), quietLogger(), nil)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), games)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrOutOfOrderGame)
}

func TestRunSkipsTiedGames(t *testing.T) {
	games := []models.GameRecord{
		testGame(0, "BOS", "NYK", 100, 100),
		testGame(2, "BOS", "NYK", 110, 102),
	}

	engine, err := NewEngine(testConfig(), quietLogger(), nil)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), games)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedTies)
	// The tie left no trace in team state.
	assert.Equal(t, 1, engine.State("BOS").Games())
	assert.True(t, engine.State("BOS").Recent.Len() == 1)
}

func TestRunFocusTeam(t *testing.T) {
	cfg := testConfig()
	cfg.FocusTeam = "MIA"
	engine, err := NewEngine(cfg, quietLogger(), nil)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), testSeason())
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	for _, r := range result.Records {
		assert.True(t, r.HomeTeam == "MIA" || r.AwayTeam == "MIA")
	}
	// Day 4: MIA away at BOS, day 6: MIA home.
	assert.False(t, result.Records[0].Home)
	assert.True(t, result.Records[1].Home)
}

func TestRunDateRangeGate(t *testing.T) {
	cfg := testConfig()
	cfg.StartDate = time.Date(2024, 11, 7, 0, 0, 0, 0, time.UTC)
	engine, err := NewEngine(cfg, quietLogger(), nil)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), testSeason())
	require.NoError(t, err)

	// Only day-6 games fall inside the window, but earlier games still
	// built the state that qualifies them.
	assert.Len(t, result.Records, 2)
}

func TestRunSpreadOutcomes(t *testing.T) {
	spread := func(v float64) *float64 { return &v }

	games := []models.GameRecord{
		testGame(0, "BOS", "NYK", 112, 100),
		testGame(2, "NYK", "BOS", 100, 95),
		testGame(4, "BOS", "NYK", 108, 100),
		testGame(6, "BOS", "NYK", 105, 100),
		testGame(8, "BOS", "NYK", 90, 100),
	}
	games[2].Spread = spread(-8.0)  // won by 8 against -8: push
	games[3].Spread = spread(-2.5)  // won by 5: home covers
	games[4].Spread = spread(-2.5)  // lost by 10: home fails to cover

	engine, err := NewEngine(testConfig(), quietLogger(), nil)
	require.NoError(t, err)
	result, err := engine.Run(context.Background(), games)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	push, cover, miss := result.Records[0], result.Records[1], result.Records[2]

	assert.True(t, push.Push)
	assert.Nil(t, push.ATSCorrect)

	// BOS is rated higher and at home, so the model lays the points.
	require.NotNil(t, cover.ATSCorrect)
	assert.False(t, cover.Push)
	assert.True(t, *cover.ATSCorrect)

	require.NotNil(t, miss.ATSCorrect)
	assert.False(t, *miss.ATSCorrect)

	assert.Equal(t, 1, result.Summary.Pushes)
	assert.Equal(t, 2, result.Summary.ATSGames)
	require.NotNil(t, result.Summary.ATSAccuracy)
	assert.InDelta(t, 0.5, *result.Summary.ATSAccuracy, 1e-9)
}

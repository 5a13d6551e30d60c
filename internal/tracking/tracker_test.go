package tracking

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplytics/courtline/internal/datasource"
	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/predictor"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func day(n int) time.Time {
	return time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func completedGames() []models.GameRecord {
	return []models.GameRecord{
		{ID: "g1", Date: day(0), HomeTeam: "BOS", AwayTeam: "NYK", HomeScore: 110, AwayScore: 100},
		{ID: "g2", Date: day(2), HomeTeam: "NYK", AwayTeam: "BOS", HomeScore: 110, AwayScore: 120},
	}
}

func TestBuildStatesSeedsEloFromStandings(t *testing.T) {
	tracker := NewTracker(predictor.DefaultParams(), 2, quietLogger())
	states := tracker.BuildStates(completedGames())

	bos := states["BOS"]
	require.NotNil(t, bos)
	assert.Equal(t, 2, bos.Wins)
	assert.Equal(t, 0, bos.Losses)
	assert.Equal(t, 2, bos.Streak)
	assert.Equal(t, 2, bos.Recent.Len())

	// Record weight 1 - 2/82; a 2-0 record pins the logistic seed to the
	// 1800 ceiling, the +20 differential seeds 1500 + 10*(20/2) = 1600.
	w := 1.0 - 2.0/82.0
	assert.InDelta(t, w*1800+(1-w)*1600, bos.Elo, 1e-9)

	nyk := states["NYK"]
	require.NotNil(t, nyk)
	assert.InDelta(t, w*1200+(1-w)*1400, nyk.Elo, 1e-9)
	assert.Equal(t, -2, nyk.Streak)
}

func TestBuildStatesSortsInput(t *testing.T) {
	games := completedGames()
	games[0], games[1] = games[1], games[0]

	tracker := NewTracker(predictor.DefaultParams(), 2, quietLogger())
	states := tracker.BuildStates(games)

	// Out-of-order input folds in date order: BOS ends on a 2-game
	// streak, not a fresh one.
	assert.Equal(t, 2, states["BOS"].Streak)
	assert.Equal(t, day(2), states["BOS"].LastGame)
}

func TestPredictGatesOnPriorGames(t *testing.T) {
	tracker := NewTracker(predictor.DefaultParams(), 3, quietLogger())
	states := tracker.BuildStates(completedGames())

	_, err := tracker.Predict(states, models.GameRecord{
		ID: "u1", Date: day(4), HomeTeam: "BOS", AwayTeam: "NYK",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)

	_, err = tracker.Predict(states, models.GameRecord{
		ID: "u2", Date: day(4), HomeTeam: "MIA", AwayTeam: "NYK",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func TestRecordAndSettle(t *testing.T) {
	tracker := NewTracker(predictor.DefaultParams(), 2, quietLogger())
	states := tracker.BuildStates(completedGames())
	ledger := &Ledger{}

	upcoming := []models.GameRecord{
		{ID: "u1", Date: day(4), HomeTeam: "BOS", AwayTeam: "NYK"},
		{ID: "u2", Date: day(6), HomeTeam: "BOS", AwayTeam: "NYK"},
		{ID: "u3", Date: day(4), HomeTeam: "MIA", AwayTeam: "PHI"}, // no history
	}
	spreads := map[string]float64{
		datasource.MatchupKey(day(4), "BOS", "NYK"): -6.5,
		datasource.MatchupKey(day(6), "BOS", "NYK"): -8.0,
	}

	added := tracker.Record(ledger, states, upcoming, spreads)
	assert.Equal(t, 2, added, "game without history is skipped")

	entry := ledger.Find("u1")
	require.NotNil(t, entry)
	assert.False(t, entry.Settled)
	assert.Greater(t, entry.Predicted, 0.0, "2-0 home side is favored")
	require.NotNil(t, entry.Spread)
	assert.InDelta(t, -6.5, *entry.Spread, 1e-9)

	// Recording the same slate again adds nothing.
	assert.Equal(t, 0, tracker.Record(ledger, states, upcoming, spreads))

	results := []models.GameRecord{
		{ID: "u1", Date: day(4), HomeTeam: "BOS", AwayTeam: "NYK", HomeScore: 118, AwayScore: 110},
		{ID: "u2", Date: day(6), HomeTeam: "BOS", AwayTeam: "NYK", HomeScore: 112, AwayScore: 104},
	}
	assert.Equal(t, 2, tracker.Settle(ledger, results))

	settled := ledger.Find("u1")
	require.True(t, settled.Settled)
	assert.Equal(t, 8, settled.ActualMargin)
	require.NotNil(t, settled.SUCorrect)
	assert.True(t, *settled.SUCorrect)
	require.NotNil(t, settled.ATSCorrect)
	assert.True(t, *settled.ATSCorrect, "won by 8 against -6.5")
	assert.False(t, settled.Push)

	pushed := ledger.Find("u2")
	require.True(t, pushed.Settled)
	assert.True(t, pushed.Push, "won by 8 against -8 lands on the number")
	assert.Nil(t, pushed.ATSCorrect)

	assert.Empty(t, ledger.Pending())
}

func TestSettleLeavesUnmatchedAndTiedPending(t *testing.T) {
	tracker := NewTracker(predictor.DefaultParams(), 2, quietLogger())
	ledger := &Ledger{Predictions: []TrackedPrediction{
		{GameID: "u1", Predicted: 4.0},
		{GameID: "u2", Predicted: 2.0},
	}}

	settled := tracker.Settle(ledger, []models.GameRecord{
		{ID: "u2", HomeTeam: "BOS", AwayTeam: "NYK", HomeScore: 100, AwayScore: 100},
	})
	assert.Equal(t, 0, settled)
	assert.Len(t, ledger.Pending(), 2)
}

func TestSummarize(t *testing.T) {
	su, notSU := true, false
	ats := true
	ledger := &Ledger{Predictions: []TrackedPrediction{
		{GameID: "a", Settled: true, Predicted: 5, ActualMargin: 2, SUCorrect: &su, ATSCorrect: &ats},
		{GameID: "b", Settled: true, Predicted: -3, ActualMargin: 4, SUCorrect: &notSU},
		{GameID: "c", Predicted: 1}, // pending, excluded
	}}

	s := Summarize(ledger)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 5.0, s.MAE, 1e-9) // errors 3 and 7
	assert.InDelta(t, 0.5, s.StraightUp, 1e-9)
	assert.Equal(t, 1, s.ATSGames)
	require.NotNil(t, s.ATSAccuracy)
	assert.InDelta(t, 1.0, *s.ATSAccuracy, 1e-9)
}

func TestLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tracker.json")
	ledger := &Ledger{}

	require.NoError(t, ledger.Add(TrackedPrediction{GameID: "g1", HomeTeam: "BOS", AwayTeam: "NYK"}))
	err := ledger.Add(TrackedPrediction{GameID: "g1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	require.NoError(t, ledger.Save(path))

	loaded, err := LoadLedger(path)
	require.NoError(t, err)
	require.Len(t, loaded.Predictions, 1)
	assert.Equal(t, "BOS", loaded.Predictions[0].HomeTeam)
	assert.False(t, loaded.LastUpdated.IsZero())
}

func TestLoadLedgerMissingFile(t *testing.T) {
	ledger, err := LoadLedger(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, ledger.Predictions)
}

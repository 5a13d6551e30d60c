package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplytics/courtline/internal/models"
)

func testParams() UpdateParams {
	return UpdateParams{EloK: 20, EloHomeAdvantage: 70}
}

func game(date string, home, away string, homeScore, awayScore int) models.GameRecord {
	d, _ := time.Parse("2006-01-02", date)
	return models.GameRecord{
		ID:        home + "-" + away + "-" + date,
		Date:      d,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
}

func TestApplyResult(t *testing.T) {
	home := NewTeamState("BOS", 15)
	away := NewTeamState("NYK", 15)

	err := ApplyResult(home, away, game("2024-11-01", "BOS", "NYK", 110, 102), testParams())
	require.NoError(t, err)

	assert.Equal(t, 1, home.Wins)
	assert.Equal(t, 0, home.Losses)
	assert.Equal(t, 0, away.Wins)
	assert.Equal(t, 1, away.Losses)
	assert.Equal(t, 110, home.PointsFor)
	assert.Equal(t, 102, home.PointsAgainst)
	assert.Equal(t, 102, away.PointsFor)
	assert.Equal(t, 110, away.PointsAgainst)
	assert.Equal(t, 1, home.Streak)
	assert.Equal(t, -1, away.Streak)
	assert.Equal(t, []float64{8}, home.Recent.Values())
	assert.Equal(t, []float64{-8}, away.Recent.Values())
	assert.Greater(t, home.Elo, EloInitial)
	assert.Less(t, away.Elo, EloInitial)
}

func TestApplyResultZeroSum(t *testing.T) {
	home := NewTeamState("DEN", 15)
	away := NewTeamState("LAL", 15)
	home.Elo = 1580
	away.Elo = 1470

	before := home.Elo + away.Elo
	require.NoError(t, ApplyResult(home, away, game("2024-11-03", "DEN", "LAL", 98, 105), testParams()))
	assert.InDelta(t, before, home.Elo+away.Elo, 1e-9)
}

func TestApplyResultTiedGame(t *testing.T) {
	home := NewTeamState("BOS", 15)
	away := NewTeamState("NYK", 15)

	err := ApplyResult(home, away, game("2024-11-01", "BOS", "NYK", 100, 100), testParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTiedGame)

	// State untouched on rejection.
	assert.Equal(t, 0, home.Games())
	assert.Equal(t, EloInitial, home.Elo)
	assert.True(t, home.LastGame.IsZero())
}

func TestStreakProgression(t *testing.T) {
	home := NewTeamState("BOS", 15)
	p := testParams()

	for i, date := range []string{"2024-11-01", "2024-11-03", "2024-11-05"} {
		opp := NewTeamState("OPP", 15)
		require.NoError(t, ApplyResult(home, opp, game(date, "BOS", "OPP", 110, 100), p))
		assert.Equal(t, i+1, home.Streak)
	}

	opp := NewTeamState("OPP", 15)
	require.NoError(t, ApplyResult(home, opp, game("2024-11-07", "BOS", "OPP", 95, 100), p))
	assert.Equal(t, -1, home.Streak, "loss resets a win streak")
}

func TestRestDays(t *testing.T) {
	s := NewTeamState("BOS", 15)
	at := func(date string) time.Time {
		d, _ := time.Parse("2006-01-02", date)
		return d
	}

	// No prior game: treated as normally rested.
	assert.Equal(t, 1, s.RestDays(at("2024-11-01")))

	s.LastGame = at("2024-11-01")
	assert.Equal(t, 0, s.RestDays(at("2024-11-02")), "back-to-back")
	assert.Equal(t, 1, s.RestDays(at("2024-11-03")))
	assert.Equal(t, 3, s.RestDays(at("2024-11-05")))
	assert.Equal(t, 0, s.RestDays(at("2024-11-01")), "same-day floor")
}

func TestSeasonNetRating(t *testing.T) {
	s := NewTeamState("BOS", 15)
	assert.Equal(t, 0.0, s.SeasonNetRating())

	s.Wins, s.Losses = 6, 4
	s.PointsFor, s.PointsAgainst = 1120, 1080
	assert.InDelta(t, 4.0, s.SeasonNetRating(), 1e-9)
}

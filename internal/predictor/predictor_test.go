package predictor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/rating"
)

func rested(team string, elo float64, date time.Time) *rating.TeamState {
	s := rating.NewTeamState(team, 15)
	s.Elo = elo
	s.LastGame = date.AddDate(0, 0, -2)
	return s
}

func gameOn(date time.Time) models.GameRecord {
	return models.GameRecord{
		ID:       "test-game",
		Date:     date,
		HomeTeam: "BOS",
		AwayTeam: "NYK",
	}
}

func TestPredictEvenTeams(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())

	pred := p.Predict(rested("BOS", 1500, date), rested("NYK", 1500, date), gameOn(date))

	// Home court alone: 70/28 Elo points, 2.5 net rating points, blended.
	wantElo := 70.0 / 28.0
	wantNR := 2.5
	assert.InDelta(t, wantElo, pred.EloComponent, 1e-9)
	assert.InDelta(t, wantNR, pred.NRComponent, 1e-9)
	assert.InDelta(t, 0.55*wantElo+0.45*wantNR, pred.Margin, 1e-9)
}

func TestPredictClampSaturates(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())

	pred := p.Predict(rested("BOS", 2000, date), rested("NYK", 1200, date), gameOn(date))
	assert.Equal(t, 15.0, pred.Margin)
	// Components are reported unclamped.
	assert.Greater(t, pred.EloComponent, 15.0)

	pred = p.Predict(rested("BOS", 1200, date), rested("NYK", 2000, date), gameOn(date))
	assert.Equal(t, -15.0, pred.Margin)
}

func TestPredictBackToBack(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())

	home := rested("BOS", 1500, date)
	home.LastGame = date.AddDate(0, 0, -1)
	away := rested("NYK", 1500, date)

	tired := p.Predict(home, away, gameOn(date))
	fresh := p.Predict(rested("BOS", 1500, date), rested("NYK", 1500, date), gameOn(date))

	// Fatigue costs 46/28 Elo points, 3.0 NR points, plus the lost
	// two-day rest bonus.
	wantDrop := 0.55*(46.0/28.0) + 0.45*(3.0+1.0)
	assert.InDelta(t, fresh.Margin-wantDrop, tired.Margin, 1e-9)
}

func TestPredictEliteOpponent(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())

	home := rested("BOS", 1500, date)
	elite := rested("NYK", 1500, date)
	for i := 0; i < 10; i++ {
		elite.Recent.Push(8)
	}
	elite.Wins, elite.PointsFor, elite.PointsAgainst = 10, 1100, 1020

	mid := rested("NYK", 1500, date)

	withPenalty := p.Predict(home, elite, gameOn(date))
	without := p.Predict(home, mid, gameOn(date))

	// Beyond the net-rating gap itself, the elite penalty shades 2 more
	// points off the home margin.
	nrGap := 0.45 * elite.WeightedNetRating(p.Params().WindowWeights)
	assert.InDelta(t, without.Margin-nrGap-2.0, withPenalty.Margin, 1e-9)
}

func TestPredictMissingPlayers(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())
	missing := false

	g := gameOn(date)
	g.HomeQualified = &missing

	short := p.Predict(rested("BOS", 1500, date), rested("NYK", 1500, date), g)
	full := p.Predict(rested("BOS", 1500, date), rested("NYK", 1500, date), gameOn(date))
	assert.InDelta(t, full.Margin-1.25, short.Margin, 1e-9)

	g.HomeQualified = nil
	g.AwayQualified = &missing
	oppShort := p.Predict(rested("BOS", 1500, date), rested("NYK", 1500, date), g)
	assert.InDelta(t, full.Margin+1.25, oppShort.Margin, 1e-9)
}

func TestPredictPaceDamping(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())

	fast := gameOn(date)
	fast.HomePace, fast.AwayPace = 104, 101 // combined 205

	slow := gameOn(date)
	slow.HomePace, slow.AwayPace = 97, 99

	base := p.Predict(rested("BOS", 1600, date), rested("NYK", 1500, date), slow)
	damped := p.Predict(rested("BOS", 1600, date), rested("NYK", 1500, date), fast)

	assert.InDelta(t, base.Margin*(1.0-5*0.02), damped.Margin, 1e-9)
}

func TestPredictStreakBonus(t *testing.T) {
	date := time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC)
	p := New(DefaultParams())

	tests := []struct {
		name   string
		streak int
		bonus  float64
	}{
		{name: "below threshold", streak: 2, bonus: 0},
		{name: "at threshold", streak: 3, bonus: 0.9},
		{name: "long streak capped", streak: 14, bonus: 3.0},
		{name: "losing streak ignored", streak: -5, bonus: 0},
	}

	base := p.Predict(rested("BOS", 1500, date), rested("NYK", 1500, date), gameOn(date))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := rested("BOS", 1500, date)
			home.Streak = tt.streak
			pred := p.Predict(home, rested("NYK", 1500, date), gameOn(date))
			assert.InDelta(t, base.Margin+tt.bonus, pred.Margin, 1e-9)
		})
	}
}

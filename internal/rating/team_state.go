package rating

import (
	"fmt"
	"time"

	"github.com/hooplytics/courtline/internal/models"
)

// TeamState is the mutable per-team aggregate the replay folds results
// into: record, scoring totals, Elo, the recent-game window, win streak
// and last game date. All fields describe games strictly before the one
// being predicted.
type TeamState struct {
	Team          string
	Wins          int
	Losses        int
	PointsFor     int
	PointsAgainst int
	Elo           float64
	Recent        *Window
	Streak        int
	LastGame      time.Time
}

// NewTeamState initializes a team at the league-average Elo with an
// empty window of the given capacity.
func NewTeamState(team string, windowCapacity int) *TeamState {
	return &TeamState{
		Team:   team,
		Elo:    EloInitial,
		Recent: NewWindow(windowCapacity),
	}
}

// Games returns the number of games folded into this state.
func (s *TeamState) Games() int {
	return s.Wins + s.Losses
}

// SeasonNetRating is the per-game point differential over the season.
func (s *TeamState) SeasonNetRating() float64 {
	games := s.Games()
	if games == 0 {
		return 0
	}
	return float64(s.PointsFor-s.PointsAgainst) / float64(games)
}

// WeightedNetRating blends the rolling windows with the season figure.
func (s *TeamState) WeightedNetRating(weights WindowWeights) float64 {
	return WeightedNetRating(s.Recent, s.SeasonNetRating(), weights)
}

// RestDays returns full days off before playing on date: 0 for a
// back-to-back, 1 for one day between games. A team with no prior game
// is treated as normally rested.
func (s *TeamState) RestDays(date time.Time) int {
	if s.LastGame.IsZero() {
		return 1
	}
	days := int(date.Sub(s.LastGame).Hours()/24) - 1
	if days < 0 {
		days = 0
	}
	return days
}

// UpdateParams are the tunables of the result fold.
type UpdateParams struct {
	EloK             float64
	EloHomeAdvantage float64
}

// ApplyResult folds one decided game into both teams' states: record,
// scoring totals, recent windows, streaks, last-game dates, and a
// zero-sum margin-of-victory Elo transfer. It is the only state
// transition; tied games are rejected.
func ApplyResult(home, away *TeamState, g models.GameRecord, p UpdateParams) error {
	if g.Tied() {
		return fmt.Errorf("%s @ %s on %s: %w", g.AwayTeam, g.HomeTeam, g.Date.Format("2006-01-02"), models.ErrTiedGame)
	}

	margin := g.Margin()
	shift := EloShift(home.Elo-away.Elo, margin, p.EloK, p.EloHomeAdvantage)
	home.Elo += shift
	away.Elo -= shift

	home.PointsFor += g.HomeScore
	home.PointsAgainst += g.AwayScore
	away.PointsFor += g.AwayScore
	away.PointsAgainst += g.HomeScore

	home.Recent.Push(float64(margin))
	away.Recent.Push(float64(-margin))

	if margin > 0 {
		home.Wins++
		away.Losses++
		home.Streak = nextStreak(home.Streak, true)
		away.Streak = nextStreak(away.Streak, false)
	} else {
		away.Wins++
		home.Losses++
		away.Streak = nextStreak(away.Streak, true)
		home.Streak = nextStreak(home.Streak, false)
	}

	home.LastGame = g.Date
	away.LastGame = g.Date
	return nil
}

// nextStreak extends a run of the same outcome or restarts at one.
// Positive values are win streaks, negative values losing streaks.
func nextStreak(current int, won bool) int {
	if won {
		if current > 0 {
			return current + 1
		}
		return 1
	}
	if current < 0 {
		return current - 1
	}
	return -1
}

package models

import "time"

// GameRecord is an immutable description of one completed game.
// Margins and spreads are always expressed from the home team's
// perspective; a negative spread means the home side was favored.
type GameRecord struct {
	ID            string    `db:"id" json:"game_id" validate:"required"`
	Date          time.Time `db:"played_at" json:"date" validate:"required"`
	HomeTeam      string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam      string    `db:"away_team" json:"away_team" validate:"required"`
	HomeScore     int       `db:"home_score" json:"home_score" validate:"gte=0"`
	AwayScore     int       `db:"away_score" json:"away_score" validate:"gte=0"`
	Spread        *float64  `db:"spread" json:"spread,omitempty"`
	HomeQualified *bool     `db:"home_qualified" json:"home_qualified,omitempty"`
	AwayQualified *bool     `db:"away_qualified" json:"away_qualified,omitempty"`
	HomePace      float64   `db:"home_pace" json:"home_pace,omitempty"`
	AwayPace      float64   `db:"away_pace" json:"away_pace,omitempty"`
}

// Margin returns the final margin from the home perspective.
func (g GameRecord) Margin() int {
	return g.HomeScore - g.AwayScore
}

// Tied reports whether the game ended level. Tied games cannot feed the
// Elo winner/loser update and are excluded from replay.
func (g GameRecord) Tied() bool {
	return g.HomeScore == g.AwayScore
}

// QualifiedSide reports the roster-qualification flag for one side.
// An absent flag is treated as qualified.
func (g GameRecord) QualifiedSide(home bool) bool {
	flag := g.HomeQualified
	if !home {
		flag = g.AwayQualified
	}
	if flag == nil {
		return true
	}
	return *flag
}

// CombinedPace returns the sum of both teams' pace figures, substituting
// the league-average 100 possessions for a missing value.
func (g GameRecord) CombinedPace() float64 {
	return paceOrDefault(g.HomePace) + paceOrDefault(g.AwayPace)
}

func paceOrDefault(pace float64) float64 {
	if pace <= 0 {
		return 100
	}
	return pace
}

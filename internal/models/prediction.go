package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier classifies an opponent by rolling net rating.
type Tier string

const (
	TierElite  Tier = "elite"
	TierStrong Tier = "strong"
	TierMid    Tier = "mid"
	TierWeak   Tier = "weak"
)

// TierFor maps a net rating onto an opponent tier.
func TierFor(netRating float64) Tier {
	switch {
	case netRating >= 6.0:
		return TierElite
	case netRating >= 3.0:
		return TierStrong
	case netRating >= -3.0:
		return TierMid
	default:
		return TierWeak
	}
}

// RestBucket groups games by days of rest before tip-off.
type RestBucket string

const (
	RestBackToBack RestBucket = "back_to_back"
	RestOneDay     RestBucket = "1_day_rest"
	RestTwoPlus    RestBucket = "2plus_rest"
)

// RestBucketFor maps a rest-day count onto its bucket.
func RestBucketFor(restDays int) RestBucket {
	switch {
	case restDays <= 0:
		return RestBackToBack
	case restDays == 1:
		return RestOneDay
	default:
		return RestTwoPlus
	}
}

// PredictionRecord is the output of one backtest step: the margin the
// model predicted before seeing the result, the blended components for
// attribution, the actual outcome, and the situational tags the bucket
// analysis partitions on. Perspective fields (Home, RestDays, Qualified,
// OpponentTier) describe the focus side when one is configured, the home
// side otherwise; Predicted and ActualMargin stay home-perspective.
type PredictionRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RunID        uuid.UUID `db:"run_id" json:"run_id"`
	GameID       string    `db:"game_id" json:"game_id"`
	Date         time.Time `db:"played_at" json:"date"`
	HomeTeam     string    `db:"home_team" json:"home_team"`
	AwayTeam     string    `db:"away_team" json:"away_team"`
	Predicted    float64   `db:"predicted_margin" json:"predicted_margin"`
	EloComponent float64   `db:"elo_component" json:"elo_component"`
	NRComponent  float64   `db:"nr_component" json:"nr_component"`
	ActualMargin int       `db:"actual_margin" json:"actual_margin"`
	AbsError     float64   `db:"abs_error" json:"abs_error"`

	OpponentTier Tier    `db:"opponent_tier" json:"opponent_tier"`
	Home         bool    `db:"is_home" json:"is_home"`
	RestDays     int     `db:"rest_days" json:"rest_days"`
	Qualified    bool    `db:"is_qualified" json:"is_qualified"`
	CombinedPace float64 `db:"combined_pace" json:"combined_pace"`

	Spread     *float64 `db:"spread" json:"spread,omitempty"`
	SUCorrect  bool     `db:"su_correct" json:"su_correct"`
	ATSCorrect *bool    `db:"ats_correct" json:"ats_correct,omitempty"`
	Push       bool     `db:"push" json:"push"`
}

// BackToBack reports whether the perspective side played the day before.
func (p PredictionRecord) BackToBack() bool {
	return p.RestDays <= 0
}

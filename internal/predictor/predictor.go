package predictor

import (
	"math"
	"time"

	"github.com/hooplytics/courtline/internal/models"
	"github.com/hooplytics/courtline/internal/rating"
)

// Params holds every tunable of the margin model. Zero values are not
// usable; start from DefaultParams and override from config.
type Params struct {
	EloK             float64 `mapstructure:"elo_k" json:"elo_k"`
	EloHomeAdvantage float64 `mapstructure:"elo_home_advantage" json:"elo_home_advantage"`
	EloFatiguePoints float64 `mapstructure:"elo_fatigue_points" json:"elo_fatigue_points"`
	EloToSpread      float64 `mapstructure:"elo_to_spread" json:"elo_to_spread"`

	NRHomeAdvantage float64 `mapstructure:"nr_home_advantage" json:"nr_home_advantage"`
	NRFatigue       float64 `mapstructure:"nr_fatigue" json:"nr_fatigue"`
	RestBonus       float64 `mapstructure:"rest_bonus" json:"rest_bonus"`
	RestBonusDays   int     `mapstructure:"rest_bonus_days" json:"rest_bonus_days"`

	EloWeight float64 `mapstructure:"elo_weight" json:"elo_weight"`
	NRWeight  float64 `mapstructure:"nr_weight" json:"nr_weight"`

	EliteNetRating float64 `mapstructure:"elite_net_rating" json:"elite_net_rating"`
	ElitePenalty   float64 `mapstructure:"elite_penalty" json:"elite_penalty"`

	StreakMin      int     `mapstructure:"streak_min" json:"streak_min"`
	StreakPerGame  float64 `mapstructure:"streak_per_game" json:"streak_per_game"`
	StreakCap      float64 `mapstructure:"streak_cap" json:"streak_cap"`
	MissingPenalty float64 `mapstructure:"missing_penalty" json:"missing_penalty"`

	PaceBaseline float64 `mapstructure:"pace_baseline" json:"pace_baseline"`
	PaceDamp     float64 `mapstructure:"pace_damp" json:"pace_damp"`
	MarginClamp  float64 `mapstructure:"margin_clamp" json:"margin_clamp"`

	WindowWeights    rating.WindowWeights `mapstructure:"window_weights" json:"window_weights"`
	WindowCapacity   int                  `mapstructure:"window_capacity" json:"window_capacity"`
	BlendWeightFloor float64              `mapstructure:"blend_weight_floor" json:"blend_weight_floor"`
	BlendDecayGames  int                  `mapstructure:"blend_decay_games" json:"blend_decay_games"`
}

// DefaultParams returns the production parameter set.
func DefaultParams() Params {
	return Params{
		EloK:             20,
		EloHomeAdvantage: 70,
		EloFatiguePoints: 46,
		EloToSpread:      28,
		NRHomeAdvantage:  2.5,
		NRFatigue:        3.0,
		RestBonus:        1.0,
		RestBonusDays:    2,
		EloWeight:        0.55,
		NRWeight:         0.45,
		EliteNetRating:   6.0,
		ElitePenalty:     2.0,
		StreakMin:        3,
		StreakPerGame:    0.3,
		StreakCap:        3.0,
		MissingPenalty:   1.25,
		PaceBaseline:     200,
		PaceDamp:         0.02,
		MarginClamp:      15,
		WindowWeights:    rating.DefaultWindowWeights(),
		WindowCapacity:   15,
		BlendWeightFloor: 0.3,
		BlendDecayGames:  82,
	}
}

// Prediction is one pre-game margin forecast from the home perspective,
// with the two model components kept for attribution.
type Prediction struct {
	Margin       float64
	EloComponent float64
	NRComponent  float64
}

// Predictor produces point-margin forecasts from pre-game team states.
// It performs no I/O and never inspects scores.
type Predictor struct {
	params Params
}

// New creates a predictor with the given parameters.
func New(params Params) *Predictor {
	return &Predictor{params: params}
}

// Params returns the parameter set the predictor was built with.
func (p *Predictor) Params() Params {
	return p.params
}

// Predict forecasts the home-perspective margin for a game between the
// two states. Only schedule fields of the game are consulted.
func (p *Predictor) Predict(home, away *rating.TeamState, g models.GameRecord) Prediction {
	homeB2B := home.RestDays(g.Date) == 0
	awayB2B := away.RestDays(g.Date) == 0

	elo := p.eloComponent(home, away, homeB2B, awayB2B)
	nr := p.nrComponent(home, away, g.Date, homeB2B, awayB2B)
	margin := p.params.EloWeight*elo + p.params.NRWeight*nr

	margin += p.eliteAdjustment(home, away)
	margin += p.streakAdjustment(home.Streak, away.Streak)
	margin += p.qualificationAdjustment(g)
	margin *= p.paceFactor(g.CombinedPace())

	return Prediction{
		Margin:       clamp(margin, p.params.MarginClamp),
		EloComponent: elo,
		NRComponent:  nr,
	}
}

// eloComponent converts the home-court and fatigue adjusted Elo gap into
// expected points.
func (p *Predictor) eloComponent(home, away *rating.TeamState, homeB2B, awayB2B bool) float64 {
	diff := home.Elo - away.Elo + p.params.EloHomeAdvantage
	if homeB2B {
		diff -= p.params.EloFatiguePoints
	}
	if awayB2B {
		diff += p.params.EloFatiguePoints
	}
	return diff / p.params.EloToSpread
}

// nrComponent forecasts the margin from weighted rolling net ratings
// with home-court, fatigue and extended-rest adjustments.
func (p *Predictor) nrComponent(home, away *rating.TeamState, date time.Time, homeB2B, awayB2B bool) float64 {
	diff := home.WeightedNetRating(p.params.WindowWeights) -
		away.WeightedNetRating(p.params.WindowWeights) +
		p.params.NRHomeAdvantage
	if homeB2B {
		diff -= p.params.NRFatigue
	}
	if awayB2B {
		diff += p.params.NRFatigue
	}
	if home.RestDays(date) >= p.params.RestBonusDays {
		diff += p.params.RestBonus
	}
	if away.RestDays(date) >= p.params.RestBonusDays {
		diff -= p.params.RestBonus
	}
	return diff
}

// eliteAdjustment shades the margin against whichever side is facing an
// elite opponent by weighted net rating.
func (p *Predictor) eliteAdjustment(home, away *rating.TeamState) float64 {
	var adj float64
	if away.WeightedNetRating(p.params.WindowWeights) >= p.params.EliteNetRating {
		adj -= p.params.ElitePenalty
	}
	if home.WeightedNetRating(p.params.WindowWeights) >= p.params.EliteNetRating {
		adj += p.params.ElitePenalty
	}
	return adj
}

// streakAdjustment rewards an active win streak of StreakMin or more,
// capped so long runs do not dominate the forecast.
func (p *Predictor) streakAdjustment(homeStreak, awayStreak int) float64 {
	var adj float64
	if homeStreak >= p.params.StreakMin {
		adj += math.Min(float64(homeStreak)*p.params.StreakPerGame, p.params.StreakCap)
	}
	if awayStreak >= p.params.StreakMin {
		adj -= math.Min(float64(awayStreak)*p.params.StreakPerGame, p.params.StreakCap)
	}
	return adj
}

// qualificationAdjustment penalizes a side missing key rotation players.
func (p *Predictor) qualificationAdjustment(g models.GameRecord) float64 {
	var adj float64
	if !g.QualifiedSide(true) {
		adj -= p.params.MissingPenalty
	}
	if !g.QualifiedSide(false) {
		adj += p.params.MissingPenalty
	}
	return adj
}

// paceFactor damps the forecast for games projected to run faster than
// the baseline, where variance swamps the edge.
func (p *Predictor) paceFactor(combinedPace float64) float64 {
	over := combinedPace - p.params.PaceBaseline
	if over <= 0 {
		return 1.0
	}
	factor := 1.0 - over*p.params.PaceDamp
	if factor < 0 {
		return 0
	}
	return factor
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

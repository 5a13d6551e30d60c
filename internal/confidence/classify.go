package confidence

import (
	"fmt"
	"strings"

	"github.com/hooplytics/courtline/internal/models"
)

// Stake tiers, weakest to strongest.
const (
	TierPass   = "pass"
	TierSmall  = "small"
	TierMedium = "medium"
	TierLarge  = "large"
)

// Config carries the thresholds of the recommendation engine.
type Config struct {
	// BreakEven is the cover rate needed to profit at standard -110
	// pricing.
	BreakEven float64
	// ZScore is the critical value for the Wilson intervals.
	ZScore float64
	// DefaultOdds is the decimal price assumed when sizing stakes.
	DefaultOdds float64
	// MinSample gates segments with no specific override.
	MinSample int
	// SegmentMinSamples overrides the gate per segment name; tier
	// segments share the "vs_tier" key.
	SegmentMinSamples map[string]int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		BreakEven:   0.524,
		ZScore:      1.96,
		DefaultOdds: 1.91,
		MinSample:   15,
		SegmentMinSamples: map[string]int{
			"overall":      20,
			"home":         12,
			"road":         12,
			"vs_tier":      8,
			"back_to_back": 10,
		},
	}
}

// Recommendation is the engine's verdict for one segment.
type Recommendation struct {
	Segment   string  `json:"segment"`
	Tier      string  `json:"tier"`
	Kelly     float64 `json:"kelly"`
	Reasoning string  `json:"reasoning"`
}

// Engine classifies segments and whole game contexts.
type Engine struct {
	config Config
}

// NewEngine creates a recommendation engine.
func NewEngine(cfg Config) *Engine {
	if cfg.BreakEven <= 0 {
		cfg.BreakEven = 0.524
	}
	if cfg.ZScore <= 0 {
		cfg.ZScore = 1.96
	}
	if cfg.DefaultOdds <= 1 {
		cfg.DefaultOdds = 1.91
	}
	if cfg.MinSample <= 0 {
		cfg.MinSample = 15
	}
	return &Engine{config: cfg}
}

// BuildSegments partitions records into the tracked situational
// segments and computes each one's cover record and Wilson interval.
// Pushes and games without a line carry no cover outcome and are
// excluded throughout.
func (e *Engine) BuildSegments(records []models.PredictionRecord) []models.SegmentStats {
	type seg struct {
		name   string
		member func(models.PredictionRecord) bool
	}
	segs := []seg{
		{"overall", func(models.PredictionRecord) bool { return true }},
		{"home", func(r models.PredictionRecord) bool { return r.Home }},
		{"road", func(r models.PredictionRecord) bool { return !r.Home }},
		{"vs_elite", func(r models.PredictionRecord) bool { return r.OpponentTier == models.TierElite }},
		{"vs_strong", func(r models.PredictionRecord) bool { return r.OpponentTier == models.TierStrong }},
		{"vs_mid", func(r models.PredictionRecord) bool { return r.OpponentTier == models.TierMid }},
		{"vs_weak", func(r models.PredictionRecord) bool { return r.OpponentTier == models.TierWeak }},
		{"back_to_back", func(r models.PredictionRecord) bool { return r.BackToBack() }},
	}

	out := make([]models.SegmentStats, 0, len(segs))
	for _, s := range segs {
		stats := models.SegmentStats{Name: s.name, MinSample: e.minSampleFor(s.name)}
		for _, r := range records {
			if r.ATSCorrect == nil || !s.member(r) {
				continue
			}
			stats.Total++
			if *r.ATSCorrect {
				stats.Wins++
			}
		}
		if stats.Total > 0 {
			stats.Rate = float64(stats.Wins) / float64(stats.Total)
		}
		stats.CILower, stats.CIUpper = WilsonInterval(stats.Wins, stats.Total, e.config.ZScore)
		stats.SampleSufficient = stats.Total >= stats.MinSample
		out = append(out, stats)
	}
	return out
}

func (e *Engine) minSampleFor(name string) int {
	key := name
	if strings.HasPrefix(name, "vs_") {
		key = "vs_tier"
	}
	if min, ok := e.config.SegmentMinSamples[key]; ok {
		return min
	}
	return e.config.MinSample
}

// ClassifySegment sizes a stake for one segment. The interval, not the
// point estimate, carries the decision: betting is only worth real
// stake when even the pessimistic end of the interval clears break-even.
func (e *Engine) ClassifySegment(s models.SegmentStats) Recommendation {
	rec := Recommendation{Segment: s.Name, Tier: TierPass}

	if !s.SampleSufficient {
		rec.Reasoning = fmt.Sprintf("insufficient sample: %d of %d games", s.Total, s.MinSample)
		return rec
	}

	kelly := HalfKelly(s.Rate, e.config.DefaultOdds)

	switch {
	case s.CILower > e.config.BreakEven:
		rec.Kelly = kelly
		rec.Tier = stakeTier(kelly)
		rec.Reasoning = fmt.Sprintf("CI lower bound %.3f clears break-even %.3f over %s", s.CILower, e.config.BreakEven, s.Record())
	case s.Rate > e.config.BreakEven:
		rec.Kelly = kelly
		rec.Tier = TierSmall
		rec.Reasoning = fmt.Sprintf("rate %.3f above break-even but interval (%.3f, %.3f) still straddles it", s.Rate, s.CILower, s.CIUpper)
	default:
		rec.Reasoning = fmt.Sprintf("rate %.3f does not clear break-even %.3f", s.Rate, e.config.BreakEven)
	}
	return rec
}

// stakeTier maps a half-Kelly fraction onto a stake size.
func stakeTier(kelly float64) string {
	switch {
	case kelly >= 0.05:
		return TierLarge
	case kelly >= 0.03:
		return TierMedium
	case kelly > 0:
		return TierSmall
	default:
		return TierPass
	}
}

// AssessGame combines the segments applicable to one upcoming game
// context into a single verdict. Any negative evidence vetoes the bet;
// any insufficient segment caps the stake at small.
func (e *Engine) AssessGame(applicable []models.SegmentStats) Recommendation {
	rec := Recommendation{Segment: "game", Tier: TierPass}
	if len(applicable) == 0 {
		rec.Reasoning = "no applicable segments"
		return rec
	}

	var positives, negatives, insufficient int
	minKelly := 1.0
	var names []string
	for _, s := range applicable {
		if !s.SampleSufficient {
			insufficient++
			continue
		}
		switch {
		case s.CILower > e.config.BreakEven:
			positives++
			names = append(names, s.Name)
			if k := HalfKelly(s.Rate, e.config.DefaultOdds); k < minKelly {
				minKelly = k
			}
		case s.CIUpper < e.config.BreakEven:
			negatives++
		}
	}

	switch {
	case negatives > 0:
		rec.Reasoning = fmt.Sprintf("%d applicable segment(s) significantly below break-even", negatives)
	case positives == 0:
		rec.Reasoning = "no segment clears break-even with confidence"
	default:
		rec.Kelly = minKelly
		rec.Tier = stakeTier(minKelly)
		if insufficient > 0 && rec.Tier != TierPass {
			rec.Tier = TierSmall
		}
		rec.Reasoning = fmt.Sprintf("supported by %s", strings.Join(names, ", "))
	}
	return rec
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplytics/courtline/internal/models"
)

func rec(tier models.Tier, home bool, rest int, qualified bool, pace, predicted float64, actual int) models.PredictionRecord {
	err := predicted - float64(actual)
	if err < 0 {
		err = -err
	}
	return models.PredictionRecord{
		OpponentTier: tier,
		Home:         home,
		RestDays:     rest,
		Qualified:    qualified,
		CombinedPace: pace,
		Predicted:    predicted,
		ActualMargin: actual,
		AbsError:     err,
	}
}

func byName(stats []models.BucketStats) map[string]models.BucketStats {
	out := make(map[string]models.BucketStats, len(stats))
	for _, s := range stats {
		out[s.Name] = s
	}
	return out
}

func TestAnalyzePartitions(t *testing.T) {
	records := []models.PredictionRecord{
		rec(models.TierElite, true, 0, true, 204, -2, -6),
		rec(models.TierElite, false, 1, true, 198, -4, -12),
		rec(models.TierMid, true, 2, true, 196, 5, 3),
		rec(models.TierWeak, false, 1, false, 202, 8, 2),
	}

	stats := NewAnalyzer(3.0).Analyze(records)
	m := byName(stats)

	// Empty tiers are omitted.
	_, hasStrong := m["vs_strong"]
	assert.False(t, hasStrong)

	elite, ok := m["vs_elite"]
	require.True(t, ok)
	assert.Equal(t, 2, elite.Count)
	assert.InDelta(t, 6.0, elite.MAE, 1e-9)      // errors 4 and 8
	assert.InDelta(t, -3.0, elite.MeanPredicted, 1e-9)
	assert.InDelta(t, -9.0, elite.MeanActual, 1e-9)
	assert.InDelta(t, 6.0, elite.Bias, 1e-9)
	assert.True(t, elite.Flagged, "bias beyond threshold")

	mid := m["vs_mid"]
	assert.InDelta(t, 2.0, mid.Bias, 1e-9)
	assert.False(t, mid.Flagged)

	home := m["home"]
	assert.Equal(t, 2, home.Count)
	road := m["road"]
	assert.Equal(t, 2, road.Count)

	assert.Equal(t, 1, m["back_to_back"].Count)
	assert.Equal(t, 2, m["1_day_rest"].Count)
	assert.Equal(t, 1, m["2plus_rest"].Count)

	assert.Equal(t, 3, m["qualified"].Count)
	assert.Equal(t, 1, m["short_handed"].Count)

	// Median pace is 200: two above, two at-or-below.
	assert.Equal(t, 2, m["fast_pace"].Count)
	assert.Equal(t, 2, m["slow_pace"].Count)
}

func TestAnalyzeBiasAtThresholdIsFlagged(t *testing.T) {
	records := []models.PredictionRecord{
		rec(models.TierMid, true, 1, true, 200, 3, 0),
	}

	m := byName(NewAnalyzer(3.0).Analyze(records))
	mid := m["vs_mid"]
	assert.InDelta(t, 3.0, mid.Bias, 1e-9)
	assert.True(t, mid.Flagged, "a bias of exactly the threshold is flagged")
}

func TestAnalyzeEmpty(t *testing.T) {
	assert.Nil(t, NewAnalyzer(0).Analyze(nil))
}

func TestAnalyzeBucketOrder(t *testing.T) {
	records := []models.PredictionRecord{
		rec(models.TierMid, true, 1, true, 200, 3, 1),
		rec(models.TierWeak, false, 0, false, 195, -1, -4),
	}

	stats := NewAnalyzer(3.0).Analyze(records)
	var names []string
	for _, s := range stats {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"vs_mid", "vs_weak",
		"home", "road",
		"back_to_back", "1_day_rest",
		"qualified", "short_handed",
		"fast_pace", "slow_pace",
	}, names)
}

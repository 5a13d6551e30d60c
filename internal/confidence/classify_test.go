package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hooplytics/courtline/internal/models"
)

func segment(name string, wins, total, minSample int) models.SegmentStats {
	s := models.SegmentStats{Name: name, Wins: wins, Total: total, MinSample: minSample}
	if total > 0 {
		s.Rate = float64(wins) / float64(total)
	}
	s.CILower, s.CIUpper = WilsonInterval(wins, total, 1.96)
	s.SampleSufficient = total >= minSample
	return s
}

func TestBuildSegments(t *testing.T) {
	yes, no := true, false
	records := []models.PredictionRecord{
		{Home: true, OpponentTier: models.TierElite, RestDays: 0, ATSCorrect: &yes},
		{Home: true, OpponentTier: models.TierMid, RestDays: 1, ATSCorrect: &no},
		{Home: false, OpponentTier: models.TierMid, RestDays: 2, ATSCorrect: &yes},
		{Home: false, OpponentTier: models.TierWeak, RestDays: 1, Push: true}, // no cover outcome
	}

	segs := NewEngine(DefaultConfig()).BuildSegments(records)
	byName := map[string]models.SegmentStats{}
	for _, s := range segs {
		byName[s.Name] = s
	}

	overall := byName["overall"]
	assert.Equal(t, 2, overall.Wins)
	assert.Equal(t, 3, overall.Total, "push carries no cover outcome")
	assert.Equal(t, 20, overall.MinSample)
	assert.False(t, overall.SampleSufficient)

	home := byName["home"]
	assert.Equal(t, 1, home.Wins)
	assert.Equal(t, 2, home.Total)
	assert.Equal(t, 12, home.MinSample)

	assert.Equal(t, 1, byName["vs_elite"].Total)
	assert.Equal(t, 8, byName["vs_elite"].MinSample)
	assert.Equal(t, 0, byName["vs_strong"].Total)
	assert.Equal(t, 2, byName["vs_mid"].Total)

	b2b := byName["back_to_back"]
	assert.Equal(t, 1, b2b.Total)
	assert.Equal(t, 10, b2b.MinSample)
	assert.Equal(t, "1-0", b2b.Record())
}

func TestClassifySegment(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	t.Run("insufficient sample passes regardless of rate", func(t *testing.T) {
		rec := engine.ClassifySegment(segment("vs_elite", 3, 3, 8))
		assert.Equal(t, TierPass, rec.Tier)
		assert.Equal(t, 0.0, rec.Kelly)
		assert.Contains(t, rec.Reasoning, "insufficient sample")
	})

	t.Run("interval clear of break-even sizes by kelly", func(t *testing.T) {
		rec := engine.ClassifySegment(segment("overall", 70, 100, 20))
		assert.Equal(t, TierLarge, rec.Tier)
		assert.InDelta(t, HalfKelly(0.70, 1.91), rec.Kelly, 1e-9)
	})

	t.Run("rate above break-even but interval straddling stays small", func(t *testing.T) {
		rec := engine.ClassifySegment(segment("overall", 60, 100, 20))
		assert.Equal(t, TierSmall, rec.Tier)
		assert.Greater(t, rec.Kelly, 0.0)
	})

	t.Run("perfect record still sizes a stake", func(t *testing.T) {
		rec := engine.ClassifySegment(segment("home", 30, 30, 12))
		assert.Equal(t, TierLarge, rec.Tier)
		assert.InDelta(t, 0.5, rec.Kelly, 1e-9)
		assert.Contains(t, rec.Reasoning, "clears break-even")
	})

	t.Run("rate below break-even passes", func(t *testing.T) {
		rec := engine.ClassifySegment(segment("road", 45, 100, 12))
		assert.Equal(t, TierPass, rec.Tier)
		assert.Equal(t, 0.0, rec.Kelly)
	})
}

func TestAssessGame(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	t.Run("no segments", func(t *testing.T) {
		rec := engine.AssessGame(nil)
		assert.Equal(t, TierPass, rec.Tier)
	})

	t.Run("two confident segments back a large stake", func(t *testing.T) {
		rec := engine.AssessGame([]models.SegmentStats{
			segment("overall", 70, 100, 20),
			segment("home", 30, 40, 12),
		})
		assert.Equal(t, TierLarge, rec.Tier)
		// Sized by the weaker of the two supporting segments.
		assert.InDelta(t, HalfKelly(0.70, 1.91), rec.Kelly, 1e-9)
		assert.Contains(t, rec.Reasoning, "overall")
	})

	t.Run("negative evidence vetoes", func(t *testing.T) {
		rec := engine.AssessGame([]models.SegmentStats{
			segment("overall", 70, 100, 20),
			segment("back_to_back", 30, 100, 10),
		})
		assert.Equal(t, TierPass, rec.Tier)
	})

	t.Run("insufficient segment caps the stake", func(t *testing.T) {
		rec := engine.AssessGame([]models.SegmentStats{
			segment("overall", 70, 100, 20),
			segment("vs_elite", 3, 3, 8),
		})
		assert.Equal(t, TierSmall, rec.Tier)
		assert.Greater(t, rec.Kelly, 0.0)
	})
}

// Package analysis partitions backtest records into situational buckets
// and surfaces where the model is inaccurate or systematically biased.
package analysis

import (
	"math"
	"sort"
	"sync"

	"github.com/hooplytics/courtline/internal/models"
)

// DefaultBiasThreshold is the mean signed error, in points, beyond
// which a bucket is flagged as biased.
const DefaultBiasThreshold = 3.0

// Analyzer computes bucketed error statistics over a record set.
type Analyzer struct {
	BiasThreshold float64
}

// NewAnalyzer creates an analyzer with the given bias threshold;
// non-positive values fall back to the default.
func NewAnalyzer(biasThreshold float64) *Analyzer {
	if biasThreshold <= 0 {
		biasThreshold = DefaultBiasThreshold
	}
	return &Analyzer{BiasThreshold: biasThreshold}
}

// Analyze partitions records along five independent dimensions and
// returns the bucket statistics in a fixed order: opponent tier,
// location, rest, roster qualification, pace. Empty buckets are
// omitted. The dimensions are independent, so they are computed
// concurrently.
func (a *Analyzer) Analyze(records []models.PredictionRecord) []models.BucketStats {
	if len(records) == 0 {
		return nil
	}

	partitions := []func([]models.PredictionRecord) []bucket{
		byOpponentTier,
		byLocation,
		byRest,
		byQualification,
		a.byPace,
	}

	results := make([][]models.BucketStats, len(partitions))
	var wg sync.WaitGroup
	for i, partition := range partitions {
		wg.Add(1)
		go func(i int, partition func([]models.PredictionRecord) []bucket) {
			defer wg.Done()
			results[i] = a.stats(partition(records))
		}(i, partition)
	}
	wg.Wait()

	var out []models.BucketStats
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// bucket is one named slice of the partition, in presentation order.
type bucket struct {
	name    string
	records []models.PredictionRecord
}

func (a *Analyzer) stats(buckets []bucket) []models.BucketStats {
	var out []models.BucketStats
	for _, b := range buckets {
		if len(b.records) == 0 {
			continue
		}
		var absSum, predSum, actualSum float64
		for _, r := range b.records {
			absSum += r.AbsError
			predSum += r.Predicted
			actualSum += float64(r.ActualMargin)
		}
		n := float64(len(b.records))
		s := models.BucketStats{
			Name:          b.name,
			Count:         len(b.records),
			MAE:           absSum / n,
			MeanPredicted: predSum / n,
			MeanActual:    actualSum / n,
		}
		s.Bias = s.MeanPredicted - s.MeanActual
		s.Flagged = math.Abs(s.Bias) >= a.BiasThreshold
		out = append(out, s)
	}
	return out
}

func byOpponentTier(records []models.PredictionRecord) []bucket {
	order := []models.Tier{models.TierElite, models.TierStrong, models.TierMid, models.TierWeak}
	buckets := make([]bucket, len(order))
	idx := map[models.Tier]int{}
	for i, tier := range order {
		buckets[i].name = "vs_" + string(tier)
		idx[tier] = i
	}
	for _, r := range records {
		if i, ok := idx[r.OpponentTier]; ok {
			buckets[i].records = append(buckets[i].records, r)
		}
	}
	return buckets
}

func byLocation(records []models.PredictionRecord) []bucket {
	buckets := []bucket{{name: "home"}, {name: "road"}}
	for _, r := range records {
		if r.Home {
			buckets[0].records = append(buckets[0].records, r)
		} else {
			buckets[1].records = append(buckets[1].records, r)
		}
	}
	return buckets
}

func byRest(records []models.PredictionRecord) []bucket {
	order := []models.RestBucket{models.RestBackToBack, models.RestOneDay, models.RestTwoPlus}
	buckets := make([]bucket, len(order))
	for i, rb := range order {
		buckets[i].name = string(rb)
	}
	for _, r := range records {
		switch models.RestBucketFor(r.RestDays) {
		case models.RestBackToBack:
			buckets[0].records = append(buckets[0].records, r)
		case models.RestOneDay:
			buckets[1].records = append(buckets[1].records, r)
		default:
			buckets[2].records = append(buckets[2].records, r)
		}
	}
	return buckets
}

func byQualification(records []models.PredictionRecord) []bucket {
	buckets := []bucket{{name: "qualified"}, {name: "short_handed"}}
	for _, r := range records {
		if r.Qualified {
			buckets[0].records = append(buckets[0].records, r)
		} else {
			buckets[1].records = append(buckets[1].records, r)
		}
	}
	return buckets
}

// byPace splits at the median combined pace of the record set itself,
// so the fast and slow halves stay comparable across eras.
func (a *Analyzer) byPace(records []models.PredictionRecord) []bucket {
	median := medianPace(records)
	buckets := []bucket{{name: "fast_pace"}, {name: "slow_pace"}}
	for _, r := range records {
		if r.CombinedPace > median {
			buckets[0].records = append(buckets[0].records, r)
		} else {
			buckets[1].records = append(buckets[1].records, r)
		}
	}
	return buckets
}

func medianPace(records []models.PredictionRecord) float64 {
	paces := make([]float64, len(records))
	for i, r := range records {
		paces[i] = r.CombinedPace
	}
	sort.Float64s(paces)
	mid := len(paces) / 2
	if len(paces)%2 == 0 {
		return (paces[mid-1] + paces[mid]) / 2
	}
	return paces[mid]
}

package models

import "fmt"

// SegmentStats aggregates against-the-spread results for one situational
// segment, with a Wilson confidence interval on the observed cover rate.
type SegmentStats struct {
	Name             string  `json:"name"`
	Wins             int     `json:"wins"`
	Total            int     `json:"total"`
	Rate             float64 `json:"rate"`
	CILower          float64 `json:"ci_lower"`
	CIUpper          float64 `json:"ci_upper"`
	MinSample        int     `json:"min_sample"`
	SampleSufficient bool    `json:"sample_sufficient"`
}

// Record formats the segment as a wins-losses record string.
func (s SegmentStats) Record() string {
	return fmt.Sprintf("%d-%d", s.Wins, s.Total-s.Wins)
}

// BucketStats aggregates prediction error over one bucket of the
// situational partition.
type BucketStats struct {
	Name          string  `json:"name"`
	Count         int     `json:"count"`
	MAE           float64 `json:"mae"`
	MeanPredicted float64 `json:"mean_predicted"`
	MeanActual    float64 `json:"mean_actual"`
	Bias          float64 `json:"bias"`
	Flagged       bool    `json:"flagged"`
}

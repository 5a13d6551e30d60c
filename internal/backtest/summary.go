package backtest

import (
	"math"

	"github.com/hooplytics/courtline/internal/models"
)

// Summary aggregates the accuracy of one run: mean absolute error, root
// mean squared error, straight-up accuracy, and against-the-spread
// accuracy over the games that had a line and did not push.
type Summary struct {
	Count       int      `json:"count"`
	MAE         float64  `json:"mae"`
	RMSE        float64  `json:"rmse"`
	MeanBias    float64  `json:"mean_bias"`
	StraightUp  float64  `json:"straight_up_pct"`
	ATSAccuracy *float64 `json:"ats_accuracy,omitempty"`
	ATSGames    int      `json:"ats_games"`
	Pushes      int      `json:"pushes"`
}

// Summarize computes the summary for a record set.
func Summarize(records []models.PredictionRecord) Summary {
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	var absSum, sqSum, biasSum float64
	var suWins, atsWins int
	for _, r := range records {
		err := r.Predicted - float64(r.ActualMargin)
		absSum += math.Abs(err)
		sqSum += err * err
		biasSum += err
		if r.SUCorrect {
			suWins++
		}
		if r.Push {
			s.Pushes++
		}
		if r.ATSCorrect != nil {
			s.ATSGames++
			if *r.ATSCorrect {
				atsWins++
			}
		}
	}

	n := float64(len(records))
	s.MAE = absSum / n
	s.RMSE = math.Sqrt(sqSum / n)
	s.MeanBias = biasSum / n
	s.StraightUp = float64(suWins) / n
	if s.ATSGames > 0 {
		ats := float64(atsWins) / float64(s.ATSGames)
		s.ATSAccuracy = &ats
	}
	return s
}

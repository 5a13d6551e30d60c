package rating

import "math"

// Elo constants shared by the seeding transforms and the margin-of-victory
// update. K and the home adjustment are configurable on Params; the
// logistic shape below is fixed.
const (
	EloInitial = 1500.0
	eloFloor   = 1200.0
	eloCeiling = 1800.0
)

// EloFromRecord seeds a rating from a win percentage using a logistic
// transform centered near the league mean. Degenerate records pin to the
// floor and ceiling so early-season 0-2 starts do not produce -Inf.
func EloFromRecord(wins, losses int) float64 {
	games := wins + losses
	if games == 0 {
		return EloInitial
	}
	winPct := float64(wins) / float64(games)
	switch {
	case winPct <= 0:
		return eloFloor
	case winPct >= 1:
		return eloCeiling
	}
	return 1504.6 - 450.0*math.Log10(1.0/winPct-1.0)
}

// EloFromPointDiff seeds a rating from cumulative point differential,
// 10 Elo points per point of average margin.
func EloFromPointDiff(pointDiff, games int) float64 {
	if games == 0 {
		return EloInitial
	}
	return EloInitial + 10.0*(float64(pointDiff)/float64(games))
}

// BlendedElo mixes the record-based and point-diff seeds, trusting the
// win-loss record early in a season and shifting toward point
// differential as games accumulate. The record weight never drops below
// floor.
func BlendedElo(wins, losses, pointDiff int, floor float64, decayGames int) float64 {
	games := wins + losses
	if decayGames <= 0 {
		decayGames = 82
	}
	w := 1.0 - float64(games)/float64(decayGames)
	if w < floor {
		w = floor
	}
	return w*EloFromRecord(wins, losses) + (1.0-w)*EloFromPointDiff(pointDiff, games)
}

// WinProbability returns the expected score for the side whose rating
// advantage is eloDiff, via the standard logistic curve with scale 400.
func WinProbability(eloDiff float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, -eloDiff/400.0))
}

// MOVMultiplier scales an Elo update by margin of victory, damped when
// the winner was already heavily favored so blowouts by favorites do not
// inflate ratings.
func MOVMultiplier(margin int, winnerEloDiff float64) float64 {
	mov := math.Abs(float64(margin))
	return math.Pow(mov+3.0, 0.8) / (7.5 + 0.006*math.Abs(winnerEloDiff))
}

// EloShift computes the zero-sum rating transfer for one decided game.
// homeEloDiff is home minus away before the home-court adjustment;
// margin is home minus away score and must be non-zero. A positive
// return shifts rating toward the home side.
func EloShift(homeEloDiff float64, margin int, k, homeAdvantage float64) float64 {
	adjDiff := homeEloDiff + homeAdvantage
	if margin > 0 {
		expected := WinProbability(adjDiff)
		return k * MOVMultiplier(margin, adjDiff) * (1.0 - expected)
	}
	expected := WinProbability(-adjDiff)
	return -k * MOVMultiplier(margin, -adjDiff) * (1.0 - expected)
}

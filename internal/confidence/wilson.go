// Package confidence turns segment win-loss records into calibrated
// betting recommendations: Wilson intervals on cover rates, sample-size
// planning, and half-Kelly stake sizing.
package confidence

import "math"

// fallbackSample is the planner's answer when the observed rate gives
// no information about variance.
const fallbackSample = 1000

// WilsonInterval returns the Wilson score interval for successes out of
// trials at critical value z. Zero trials yield the uninformative (0, 1).
func WilsonInterval(successes, trials int, z float64) (lower, upper float64) {
	if trials == 0 {
		return 0, 1
	}

	n := float64(trials)
	p := float64(successes) / n
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	lower = center - half
	upper = center + half
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return lower, upper
}

// RequiredSample returns how many observations are needed to estimate a
// rate to within margin at critical value z. A degenerate rate carries
// no variance information, so the planner falls back to a large fixed
// sample rather than answering zero.
func RequiredSample(rate, margin, z float64) int {
	if rate <= 0 || rate >= 1 || margin <= 0 {
		return fallbackSample
	}
	n := z * z * rate * (1 - rate) / (margin * margin)
	return int(math.Ceil(n))
}

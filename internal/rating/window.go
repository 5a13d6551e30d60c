package rating

// Window is a fixed-capacity ring buffer of per-game net ratings. Once
// full, pushing evicts the oldest entry, so it always holds the most
// recent capacity games in order.
type Window struct {
	values []float64
	start  int
	size   int
}

// NewWindow creates a window holding at most capacity entries.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{values: make([]float64, capacity)}
}

// Push appends v, evicting the oldest entry when full.
func (w *Window) Push(v float64) {
	if w.size < len(w.values) {
		w.values[(w.start+w.size)%len(w.values)] = v
		w.size++
		return
	}
	w.values[w.start] = v
	w.start = (w.start + 1) % len(w.values)
}

// Len returns the number of entries currently held.
func (w *Window) Len() int {
	return w.size
}

// Last returns the most recent n entries, oldest first. It returns all
// entries when fewer than n are held.
func (w *Window) Last(n int) []float64 {
	if n > w.size {
		n = w.size
	}
	out := make([]float64, 0, n)
	for i := w.size - n; i < w.size; i++ {
		out = append(out, w.values[(w.start+i)%len(w.values)])
	}
	return out
}

// Values returns every held entry, oldest first.
func (w *Window) Values() []float64 {
	return w.Last(w.size)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RollingNetRating averages the last n games in the window.
func (w *Window) RollingNetRating(n int) float64 {
	return mean(w.Last(n))
}

// WindowWeights blends short- and long-horizon rolling net ratings. The
// four weights are expected to sum to 1.
type WindowWeights struct {
	Last4  float64 `mapstructure:"last4" json:"last4"`
	Last7  float64 `mapstructure:"last7" json:"last7"`
	Last10 float64 `mapstructure:"last10" json:"last10"`
	Season float64 `mapstructure:"season" json:"season"`
}

// DefaultWindowWeights favors recent form over full-season performance.
func DefaultWindowWeights() WindowWeights {
	return WindowWeights{Last4: 0.40, Last7: 0.30, Last10: 0.20, Season: 0.10}
}

// WeightedNetRating combines rolling windows over recent games with the
// season-long net rating. A team with no recent games falls back to the
// season figure alone.
func WeightedNetRating(w *Window, seasonNR float64, weights WindowWeights) float64 {
	if w == nil || w.Len() == 0 {
		return seasonNR
	}
	return weights.Last4*w.RollingNetRating(4) +
		weights.Last7*w.RollingNetRating(7) +
		weights.Last10*w.RollingNetRating(10) +
		weights.Season*seasonNR
}

package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowEviction(t *testing.T) {
	w := NewWindow(3)
	assert.Equal(t, 0, w.Len())

	w.Push(1)
	w.Push(2)
	w.Push(3)
	assert.Equal(t, []float64{1, 2, 3}, w.Values())

	// Fourth push evicts the oldest.
	w.Push(4)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []float64{2, 3, 4}, w.Values())

	w.Push(5)
	assert.Equal(t, []float64{3, 4, 5}, w.Values())
}

func TestWindowLast(t *testing.T) {
	w := NewWindow(15)
	for i := 1; i <= 6; i++ {
		w.Push(float64(i))
	}

	assert.Equal(t, []float64{5, 6}, w.Last(2))
	assert.Equal(t, []float64{3, 4, 5, 6}, w.Last(4))
	// Asking for more than held returns everything.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, w.Last(10))
}

func TestRollingNetRating(t *testing.T) {
	w := NewWindow(15)
	for _, v := range []float64{-10, 2, 4, 6, 8} {
		w.Push(v)
	}

	assert.InDelta(t, 5.0, w.RollingNetRating(4), 1e-9)
	assert.InDelta(t, 2.0, w.RollingNetRating(10), 1e-9)
	assert.Equal(t, 0.0, NewWindow(15).RollingNetRating(4))
}

func TestWeightedNetRating(t *testing.T) {
	weights := DefaultWindowWeights()

	// Empty window falls back to the season figure.
	assert.Equal(t, 3.5, WeightedNetRating(NewWindow(15), 3.5, weights))
	assert.Equal(t, 3.5, WeightedNetRating(nil, 3.5, weights))

	// Constant window collapses to the constant when season matches.
	w := NewWindow(15)
	for i := 0; i < 12; i++ {
		w.Push(4)
	}
	assert.InDelta(t, 4.0, WeightedNetRating(w, 4.0, weights), 1e-9)

	// Recent form dominates: heavier weight on the last four games.
	w2 := NewWindow(15)
	for i := 0; i < 8; i++ {
		w2.Push(0)
	}
	for i := 0; i < 4; i++ {
		w2.Push(10)
	}
	got := WeightedNetRating(w2, 0, weights)
	// last4=10, last7=40/7, last10=4, season=0
	want := 0.40*10 + 0.30*(40.0/7.0) + 0.20*4
	assert.InDelta(t, want, got, 1e-9)
}

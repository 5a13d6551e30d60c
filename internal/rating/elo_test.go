package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEloFromRecord(t *testing.T) {
	tests := []struct {
		name     string
		wins     int
		losses   int
		expected float64
	}{
		{name: "no games", wins: 0, losses: 0, expected: EloInitial},
		{name: "winless", wins: 0, losses: 10, expected: 1200},
		{name: "undefeated", wins: 10, losses: 0, expected: 1800},
		{name: "even record", wins: 5, losses: 5, expected: 1504.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EloFromRecord(tt.wins, tt.losses), 0.001)
		})
	}
}

func TestEloFromRecordMonotonic(t *testing.T) {
	prev := EloFromRecord(0, 82)
	for wins := 1; wins <= 82; wins++ {
		cur := EloFromRecord(wins, 82-wins)
		assert.Greater(t, cur, prev, "rating must increase with wins (%d)", wins)
		prev = cur
	}
}

func TestEloFromPointDiff(t *testing.T) {
	assert.Equal(t, EloInitial, EloFromPointDiff(0, 0))
	assert.InDelta(t, 1550.0, EloFromPointDiff(50, 10), 0.001)
	assert.InDelta(t, 1450.0, EloFromPointDiff(-50, 10), 0.001)
}

func TestBlendedElo(t *testing.T) {
	// Early season: record weight at its 1 - games/82 value.
	early := BlendedElo(3, 1, 20, 0.3, 82)
	w := 1.0 - 4.0/82.0
	want := w*EloFromRecord(3, 1) + (1-w)*EloFromPointDiff(20, 4)
	assert.InDelta(t, want, early, 0.001)

	// Deep season: record weight clamps at the floor.
	late := BlendedElo(50, 20, 300, 0.3, 82)
	want = 0.3*EloFromRecord(50, 20) + 0.7*EloFromPointDiff(300, 70)
	assert.InDelta(t, want, late, 0.001)
}

func TestWinProbability(t *testing.T) {
	assert.InDelta(t, 0.5, WinProbability(0), 1e-9)
	assert.InDelta(t, 1.0, WinProbability(400)+WinProbability(-400), 1e-9)
	assert.Greater(t, WinProbability(100), 0.5)
	assert.Less(t, WinProbability(-100), 0.5)
}

func TestMOVMultiplier(t *testing.T) {
	// Larger margins scale the update.
	assert.Greater(t, MOVMultiplier(20, 0), MOVMultiplier(5, 0))
	// A heavily favored winner is damped.
	assert.Less(t, MOVMultiplier(10, 300), MOVMultiplier(10, 0))
	// One-point win keeps a positive multiplier.
	assert.InDelta(t, math.Pow(4, 0.8)/7.5, MOVMultiplier(1, 0), 1e-9)
}

func TestEloShift(t *testing.T) {
	// Equal teams, home win: home gains.
	shift := EloShift(0, 8, 20, 70)
	assert.Greater(t, shift, 0.0)

	// Equal teams, away win: home loses more, because the home side was
	// favored by home court.
	awayShift := EloShift(0, -8, 20, 70)
	assert.Less(t, awayShift, 0.0)
	assert.Greater(t, math.Abs(awayShift), shift)

	// A big favorite winning narrowly moves little.
	favoriteShift := EloShift(300, 2, 20, 70)
	assert.Greater(t, favoriteShift, 0.0)
	assert.Less(t, favoriteShift, shift)
}

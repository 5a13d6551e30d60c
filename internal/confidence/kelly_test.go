package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKelly(t *testing.T) {
	tests := []struct {
		name     string
		p        float64
		odds     float64
		expected float64
	}{
		{name: "positive edge at -110", p: 0.55, odds: 1.91, expected: 0.0554945},
		{name: "coin flip at -110 loses", p: 0.50, odds: 1.91, expected: 0},
		{name: "exactly break-even", p: 1 / 1.91, odds: 1.91, expected: 0},
		{name: "big edge at even odds", p: 0.60, odds: 2.0, expected: 0.2},
		{name: "invalid odds", p: 0.60, odds: 1.0, expected: 0},
		{name: "certain win stakes the full edge", p: 1.0, odds: 1.91, expected: 1.0},
		{name: "probability above one is treated as certainty", p: 1.2, odds: 1.91, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Kelly(tt.p, tt.odds), 1e-6)
		})
	}
}

func TestHalfKelly(t *testing.T) {
	assert.InDelta(t, Kelly(0.58, 1.91)/2, HalfKelly(0.58, 1.91), 1e-12)
	assert.Equal(t, 0.0, HalfKelly(0.50, 1.91))
	assert.LessOrEqual(t, HalfKelly(0.99, 1.91), 0.5)
	assert.InDelta(t, 0.5, HalfKelly(1.0, 1.91), 1e-12)
}

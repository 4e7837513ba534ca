package director

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ivlev/multicam/internal/viewport"
)

// weightTolerance bounds the rounding error allowed in a weight table sum
const weightTolerance = 1e-6

// Weight pairs a behavior with its selection probability
type Weight struct {
	Behavior viewport.Behavior
	P        float64
}

// Weights is a behavior probability table sampled by cumulative distribution
type Weights []Weight

// DefaultWeights favours panning and zooming in over holding still
func DefaultWeights() Weights {
	return Weights{
		{viewport.Static, 0.1},
		{viewport.ZoomIn, 0.3},
		{viewport.ZoomOut, 0.2},
		{viewport.Pan, 0.4},
	}
}

// Only returns a table that always selects b
func Only(b viewport.Behavior) Weights {
	return Weights{{b, 1.0}}
}

// Validate checks that every probability is non-negative and the table sums to 1
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("empty behavior weight table")
	}
	sum := 0.0
	for _, e := range w {
		if e.P < 0 || math.IsNaN(e.P) {
			return fmt.Errorf("invalid weight %v for %s", e.P, e.Behavior)
		}
		sum += e.P
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("behavior weights sum to %f, want 1.0", sum)
	}
	return nil
}

// Sample draws one behavior
func (w Weights) Sample(r *rand.Rand) viewport.Behavior {
	u := r.Float64()
	acc := 0.0
	for _, e := range w {
		acc += e.P
		if u < acc {
			return e.Behavior
		}
	}
	// u landed in the rounding gap at the top of the table
	for i := len(w) - 1; i >= 0; i-- {
		if w[i].P > 0 {
			return w[i].Behavior
		}
	}
	return viewport.Static
}

package attention

import (
	"math"

	"github.com/danielpatrickdp/coherence-planner/internal/manifold"
)

// #region attend

// Attend returns softmax-normalized correlation weights of query against
// each key. The weights sum to 1; an empty key set yields an empty slice.
func Attend(query manifold.Point, keys []manifold.Point) []float64 {
	if len(keys) == 0 {
		return []float64{}
	}

	weights := make([]float64, len(keys))
	maxWeight := math.Inf(-1)
	for i, k := range keys {
		weights[i] = Correlate(query, k)
		if weights[i] > maxWeight {
			maxWeight = weights[i]
		}
	}

	var sum float64
	for i, w := range weights {
		weights[i] = math.Exp(w - maxWeight)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// #endregion attend

// #region context-vector

// ContextVector is the attention-weighted average of the keys' primary
// coordinates (x, y, z, θ, φ, ψ). It is the zero vector when keys is empty.
func ContextVector(query manifold.Point, keys []manifold.Point) [6]float64 {
	var ctx [6]float64
	if len(keys) == 0 {
		return ctx
	}

	weights := Attend(query, keys)
	for i, k := range keys {
		coords := k.Coords()
		for j := range ctx {
			ctx[j] += weights[i] * coords[j]
		}
	}
	return ctx
}

// #endregion context-vector

// Package attention scores pairs of embedding points and aggregates those
// scores into softmax weights and context vectors.
package attention

import (
	"math"

	"github.com/danielpatrickdp/coherence-planner/internal/manifold"
	"github.com/danielpatrickdp/coherence-planner/internal/physics"
)

// #region correlate

// Correlate scores how strongly two points resonate:
//
//	C(a, b) = coupling(a, b) · exp(-d²/L) · (1 + 0.5·resonance(|θa - θb|))
//
// The result is non-negative and finite for any two points produced by
// manifold.TokenToPoint with a finite coherence.
func Correlate(a, b manifold.Point) float64 {
	coupling := physics.CoherenceCoupling(a.Coherence, b.Coherence)

	d := manifold.Distance(a, b)
	spatialDecay := math.Exp(-d * d / physics.DecayLength)

	resonance := physics.ResonanceBoost(math.Abs(a.Theta - b.Theta))

	return coupling * spatialDecay * (1 + physics.ResonanceGain*resonance)
}

// #endregion correlate

// Package physics holds the fixed scalar tuning parameters shared by the
// embedding, correlation and coherence components. The names follow the
// original framework's vocabulary; the values are opaque and carry no
// physical meaning here.
package physics

import "math"

// #region constants

const (
	// LambdaPhi is the shared decay constant.
	LambdaPhi = 2.176435e-8

	// ThetaLockDegrees is the resonance angle in degrees.
	ThetaLockDegrees = 51.843

	// PhiThreshold is the coherence gate threshold.
	PhiThreshold = 0.7734

	// DecayLength is the Gaussian length-scale of the spatial decay term.
	DecayLength = LambdaPhi * 1e16

	// ResonanceWidth is the variance-like width of the resonance bump.
	ResonanceWidth = 0.1

	// ResonanceGain scales the resonance boost in the correlation product.
	ResonanceGain = 0.5

	// DefaultContextCoherence is used when a caller has no running score.
	DefaultContextCoherence = 0.78

	// minGamma keeps Negentropy finite for degenerate decoherence values.
	minGamma = 1e-9
)

// #endregion constants

// #region helpers

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// ThetaLockRadians returns the resonance angle in radians.
func ThetaLockRadians() float64 {
	return DegreesToRadians(ThetaLockDegrees)
}

// CoherenceCoupling is the geometric mean of two coherence values divided by
// the gate threshold.
func CoherenceCoupling(a, b float64) float64 {
	return math.Sqrt(a*b) / PhiThreshold
}

// ResonanceBoost peaks at 1 when thetaDiff equals the resonance angle.
func ResonanceBoost(thetaDiff float64) float64 {
	diff := math.Abs(thetaDiff - ThetaLockRadians())
	return math.Exp(-diff * diff / ResonanceWidth)
}

// IsConscious reports whether a coherence score opens the gate.
func IsConscious(phi float64) bool {
	return phi >= PhiThreshold
}

// Negentropy computes Ξ = (Λ · LambdaPhi) / Γ.
func Negentropy(lambda, gamma float64) float64 {
	return lambda * LambdaPhi / math.Max(gamma, minGamma)
}

// #endregion helpers

package manifold

import "github.com/danielpatrickdp/coherence-planner/internal/physics"

// #region point
// Point is a token's position in the embedding space plus its auxiliary
// metrics. Points are values: copy them freely, never mutate a shared one.
type Point struct {
	Token string `json:"token"`

	// Spatial coordinates, each in [-1, 1].
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Angular coordinates: Theta in [0, π], Phi and Psi in [0, 2π].
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
	Psi   float64 `json:"psi"`

	Coupling    float64 `json:"lambda"` // [0.7, 0.9]
	Coherence   float64 `json:"coherence"`
	Decoherence float64 `json:"gamma"` // [0.05, 0.1]
}

// Coords returns the six primary coordinates (x, y, z, θ, φ, ψ).
func (p Point) Coords() [6]float64 {
	return [6]float64{p.X, p.Y, p.Z, p.Theta, p.Phi, p.Psi}
}

// Xi returns the point's negentropy.
func (p Point) Xi() float64 {
	return physics.Negentropy(p.Coupling, p.Decoherence)
}
// #endregion point

// Package manifold maps text tokens to deterministic embedding points.
package manifold

import (
	"math"
	"unicode/utf16"
)

// #region hash

const hashCount = 8

// tokenHash runs a 32-bit rolling multiply-and-shift accumulator over the
// token's UTF-16 code units, then perturbs it hashCount times. int32
// arithmetic wraps, which is the intended two's-complement behavior.
func tokenHash(token string) [hashCount]int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(token)) {
		h = (h << 5) - h + int32(c)
	}

	var out [hashCount]int64
	for i := 0; i < hashCount; i++ {
		h = (h << 5) - h + (h ^ int32(i*17))
		v := int64(h)
		if v < 0 {
			v = -v
		}
		out[i] = v
	}
	return out
}

// hashToFloat maps a non-negative hash value to [-1, 1].
func hashToFloat(v int64) float64 {
	return float64(v%1_000_000)/500_000 - 1
}

// #endregion hash

// #region embed

// TokenToPoint maps token to its embedding point. The coherence metric is
// taken from contextCoherence; everything else comes from the hash, so the
// same inputs always yield the same point.
func TokenToPoint(token string, contextCoherence float64) Point {
	h := tokenHash(token)

	return Point{
		Token:       token,
		X:           hashToFloat(h[0]),
		Y:           hashToFloat(h[1]),
		Z:           hashToFloat(h[2]),
		Theta:       (hashToFloat(h[3]) + 1) * math.Pi / 2,
		Phi:         (hashToFloat(h[4]) + 1) * math.Pi,
		Psi:         (hashToFloat(h[5]) + 1) * math.Pi,
		Coupling:    0.7 + 0.2*(1-math.Abs(hashToFloat(h[6]))),
		Coherence:   contextCoherence,
		Decoherence: 0.05 + 0.05*math.Abs(hashToFloat(h[7])),
	}
}

// TokensToPoints embeds every token with the same context coherence.
func TokensToPoints(tokens []string, contextCoherence float64) []Point {
	points := make([]Point, len(tokens))
	for i, tok := range tokens {
		points[i] = TokenToPoint(tok, contextCoherence)
	}
	return points
}

// #endregion embed

// #region distance

// Distance is the combined spatial and angular distance
// sqrt(dx² + dy² + dz² + dθ² + sin²(θa)·dφ²). The angular term uses a's
// polar angle, so Distance(a, b) and Distance(b, a) can differ slightly.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	spatial := dx*dx + dy*dy + dz*dz

	dTheta := a.Theta - b.Theta
	dPhi := a.Phi - b.Phi
	sinTheta := math.Sin(a.Theta)
	angular := dTheta*dTheta + sinTheta*sinTheta*dPhi*dPhi

	return math.Sqrt(spatial + angular)
}

// #endregion distance

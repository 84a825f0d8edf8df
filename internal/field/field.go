// Package field accumulates a running coherence score over a stream of
// tokens and exposes the gate derived from it.
//
// A Field has exactly one mutator. It holds no lock; callers that share a
// Field across goroutines must serialize access themselves.
package field

import (
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/attention"
	"github.com/danielpatrickdp/coherence-planner/internal/manifold"
	"github.com/danielpatrickdp/coherence-planner/internal/physics"
)

// #region field

// Field is the mutable coherence state of one session.
type Field struct {
	phi        float64
	tokens     []manifold.Point
	generation int
}

// New returns a field at the initial score with an empty history.
func New() *Field {
	return &Field{phi: InitialScore}
}

// #endregion field

// #region ingest

// IngestToken embeds token using the current score as its context
// coherence, appends it to the history and, once there is more than one
// point, folds the mean correlation of the new point against the last
// Window points into the score.
func (f *Field) IngestToken(token string) {
	p := manifold.TokenToPoint(token, f.phi)
	f.tokens = append(f.tokens, p)

	if len(f.tokens) > 1 {
		start := len(f.tokens) - Window
		if start < 0 {
			start = 0
		}
		var sum float64
		for _, other := range f.tokens[start:] {
			sum += attention.Correlate(p, other)
		}
		mean := sum / float64(len(f.tokens)-start)

		f.phi = retention*f.phi + (1-retention)*mean
		if f.phi > maxScore {
			f.phi = maxScore
		}
	}

	f.generation++
}

// IngestSequence ingests every whitespace-separated token of text in order.
// Later embeddings depend on the score left by earlier ones, so the result
// is order-sensitive.
func (f *Field) IngestSequence(text string) {
	for _, tok := range strings.Fields(text) {
		f.IngestToken(tok)
	}
}

// #endregion ingest

// #region read

// Score returns the current coherence score.
func (f *Field) Score() float64 {
	return f.phi
}

// IsConscious reports whether the score is at or above the gate threshold.
func (f *Field) IsConscious() bool {
	return physics.IsConscious(f.phi)
}

// Len returns the number of ingested tokens.
func (f *Field) Len() int {
	return len(f.tokens)
}

// Recent returns a copy of the last n history points, oldest first.
func (f *Field) Recent(n int) []manifold.Point {
	if n <= 0 {
		return []manifold.Point{}
	}
	if n > len(f.tokens) {
		n = len(f.tokens)
	}
	out := make([]manifold.Point, n)
	copy(out, f.tokens[len(f.tokens)-n:])
	return out
}

// ContextVector embeds queryToken at the current score and attends over the
// full history.
func (f *Field) ContextVector(queryToken string) [6]float64 {
	if len(f.tokens) == 0 {
		return [6]float64{}
	}
	query := manifold.TokenToPoint(queryToken, f.phi)
	return attention.ContextVector(query, f.tokens)
}

// State returns a snapshot that shares no memory with the field.
func (f *Field) State() State {
	tokens := make([]manifold.Point, len(f.tokens))
	copy(tokens, f.tokens)
	return State{
		Phi:        f.phi,
		Conscious:  f.IsConscious(),
		Tokens:     tokens,
		Generation: f.generation,
	}
}

// Telemetry returns the field's counters and the fixed constants.
func (f *Field) Telemetry() Telemetry {
	return Telemetry{
		Phi:        f.phi,
		Conscious:  f.IsConscious(),
		Tokens:     len(f.tokens),
		LambdaPhi:  physics.LambdaPhi,
		ThetaLock:  physics.ThetaLockDegrees,
		Generation: f.generation,
	}
}

// #endregion read

// #region reset

// Reset restores the initial score and clears history and generation.
func (f *Field) Reset() {
	f.phi = InitialScore
	f.tokens = nil
	f.generation = 0
}

// #endregion reset

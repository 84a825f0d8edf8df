package gate

import (
	"fmt"
	"math"
)

// #region gate
// Gate decides whether the planner may classify and plan, or must fall back.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Threshold returns the configured threshold.
func (g *Gate) Threshold() float64 {
	return g.config.Threshold
}

// Evaluate compares a coherence score to the threshold. The gate state is
// never cached: every call recomputes it from the score it is given.
func (g *Gate) Evaluate(score float64) GateDecision {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return GateDecision{
			Action: ActionFallback,
			Reason: fmt.Sprintf("hard veto: non-finite score %v", score),
			Open:   false,
			Score:  score,
			Margin: math.Inf(-1),
		}
	}

	margin := score - g.config.Threshold
	if score >= g.config.Threshold {
		return GateDecision{
			Action: ActionProceed,
			Reason: fmt.Sprintf("passed gate: phi=%.4f >= %.4f", score, g.config.Threshold),
			Open:   true,
			Score:  score,
			Margin: margin,
		}
	}

	return GateDecision{
		Action: ActionFallback,
		Reason: fmt.Sprintf("insufficient coherence: phi=%.4f < %.4f", score, g.config.Threshold),
		Open:   false,
		Score:  score,
		Margin: margin,
	}
}

// #endregion gate

package gate

import "github.com/danielpatrickdp/coherence-planner/internal/physics"

// #region gate-action
// Action is the outcome of a gate evaluation.
type Action string

const (
	ActionProceed  Action = "proceed"
	ActionFallback Action = "fallback"
)

// #endregion gate-action

// #region gate-config
// GateConfig holds the threshold the coherence score is compared against.
type GateConfig struct {
	Threshold float64 // open when score >= Threshold
}

// DefaultGateConfig uses the shared coherence threshold.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Threshold: physics.PhiThreshold,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action Action
	Reason string
	Open   bool
	Score  float64
	Margin float64 // Score - Threshold; negative when closed
}

// #endregion gate-decision

package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// #region eval-harness
// EvalHarness checks that an action plan is well formed.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates plan and returns pass/fail with one metric per check.
func (h *EvalHarness) Run(plan planner.ActionPlan) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Score bounds
	check("phi", plan.Phi, inUnit(plan.Phi),
		fmt.Sprintf("phi %v outside [0,1]", plan.Phi))
	check("confidence", plan.Confidence, inUnit(plan.Confidence),
		fmt.Sprintf("confidence %v outside [0,1]", plan.Confidence))

	// 2. Gate agreement
	gated := !math.IsNaN(plan.Phi) && plan.Phi >= h.config.Threshold
	check("gate_consistency", boolValue(gated == plan.Conscious), gated == plan.Conscious,
		fmt.Sprintf("conscious=%t but phi %.4f vs threshold %.4f", plan.Conscious, plan.Phi, h.config.Threshold))

	check("theta_lock", plan.ThetaLock, plan.ThetaLock == h.config.ThetaLock,
		fmt.Sprintf("theta_lock %v, want %v", plan.ThetaLock, h.config.ThetaLock))

	// 3. Shape
	if plan.Conscious {
		check("actions", float64(len(plan.Actions)), len(plan.Actions) > 0,
			"gated plan has no actions")
		check("summary", boolValue(strings.HasPrefix(plan.Summary, "Intent: ")), strings.HasPrefix(plan.Summary, "Intent: "),
			fmt.Sprintf("gated plan summary %q lacks intent", plan.Summary))
	} else {
		fallback := len(plan.Actions) == 1 && plan.Actions[0].Tool == "scan" && len(plan.Actions[0].Params) == 0
		check("fallback_actions", float64(len(plan.Actions)), fallback,
			fmt.Sprintf("fallback plan has actions %v", plan.Tools()))
		check("fallback_confidence", plan.Confidence, plan.Confidence == 0,
			fmt.Sprintf("fallback plan has confidence %v", plan.Confidence))
		check("summary", boolValue(plan.Summary == planner.FallbackSummary), plan.Summary == planner.FallbackSummary,
			fmt.Sprintf("fallback plan summary %q", plan.Summary))
	}

	reason := "all checks passed"
	passed := len(failReasons) == 0
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func inUnit(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 1
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers

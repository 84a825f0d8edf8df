package eval

import "github.com/danielpatrickdp/coherence-planner/internal/physics"

// #region eval-config
// EvalConfig holds the constants a plan is checked against.
type EvalConfig struct {
	Threshold float64 // gate threshold the plan's conscious flag must agree with
	ThetaLock float64 // expected theta_lock in degrees
}

// DefaultEvalConfig uses the shared physics constants.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Threshold: physics.PhiThreshold,
		ThetaLock: physics.ThetaLockDegrees,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of plan validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result

package field

import "github.com/danielpatrickdp/coherence-planner/internal/manifold"

// #region constants
const (
	// InitialScore is the coherence score of a new or reset field.
	InitialScore = 0.5

	// Window is the number of most recent history points a new token is
	// scored against, the new token included.
	Window = 10

	// retention weights the previous score in the exponential smoothing update.
	retention = 0.7

	maxScore = 1.0
)
// #endregion constants

// #region state
// State is a read-only snapshot of a field.
type State struct {
	Phi        float64
	Conscious  bool
	Tokens     []manifold.Point // copy of the full history, oldest first
	Generation int
}
// #endregion state

// #region telemetry
// Telemetry is the counter view of a field exposed to dashboards and logs.
type Telemetry struct {
	Phi        float64 `json:"phi"`
	Conscious  bool    `json:"conscious"`
	Tokens     int     `json:"tokens"`
	LambdaPhi  float64 `json:"lambda_phi"`
	ThetaLock  float64 `json:"theta_lock"`
	Generation int     `json:"generation"`
}
// #endregion telemetry

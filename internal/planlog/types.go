package planlog

import "time"

// #region entry
// Entry is a single row in the plan_log table.
type Entry struct {
	PlanID       string
	SessionID    string
	Query        string
	Context      string
	ContextHash  string // sha256 of Context, hex
	Intent       string // empty for fallback plans
	Conscious    bool
	Phi          float64
	Confidence   float64
	Generation   int
	MatchPattern string
	PlanJSON     string
	CreatedAt    time.Time
}
// #endregion entry

// #region session-summary
// SessionSummary aggregates the plan_log rows of one session.
type SessionSummary struct {
	SessionID string
	Plans     int
	Gated     int
	LastAt    time.Time
}
// #endregion session-summary

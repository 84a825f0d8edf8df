package planner

import "context"

// Record is one completed planning call as handed to a Sink.
type Record struct {
	SessionID  string
	Query      string
	Context    string
	Plan       ActionPlan
	Match      Match
	Generation int // field generation after the call
}

// Sink receives completed plans. Implementations persist or cache them.
type Sink interface {
	RecordPlan(ctx context.Context, rec Record) error
}

// RecordFor builds the sink record of the engine's most recent plan.
func (e *Engine) RecordFor(sessionID, query, contextText string, plan ActionPlan) Record {
	return Record{
		SessionID:  sessionID,
		Query:      query,
		Context:    contextText,
		Plan:       plan,
		Match:      e.lastMatch,
		Generation: e.field.Telemetry().Generation,
	}
}

// Package planner turns a query and its surrounding context into an action
// plan. Each Engine owns one coherence field, so one Engine is one session.
//
// An Engine has a single mutator and holds no lock. Callers that share an
// Engine across goroutines must serialize calls themselves.
package planner

import (
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/field"
	"github.com/danielpatrickdp/coherence-planner/internal/gate"
	"github.com/danielpatrickdp/coherence-planner/internal/intent"
	"github.com/danielpatrickdp/coherence-planner/internal/knowledge"
	"github.com/danielpatrickdp/coherence-planner/internal/physics"
)

// FallbackSummary is the summary of every plan produced with the gate closed.
const FallbackSummary = "insufficient context coherence"

// #region engine

// Engine plans queries against a long-lived coherence field.
type Engine struct {
	field     *field.Field
	knowledge knowledge.Table
	gate      *gate.Gate
	logger    *zap.Logger

	lastMatch    Match
	lastDecision gate.GateDecision
}

// Option configures an Engine.
type Option func(*Engine)

// WithKnowledge replaces the built-in knowledge table.
func WithKnowledge(t knowledge.Table) Option {
	return func(e *Engine) {
		e.knowledge = t
	}
}

// WithLogger sets the engine logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithGate replaces the default coherence gate. A nil gate is ignored.
func WithGate(g *gate.Gate) Option {
	return func(e *Engine) {
		if g != nil {
			e.gate = g
		}
	}
}

// New returns an engine with a fresh field, the built-in knowledge table
// and the default gate.
func New(opts ...Option) *Engine {
	e := &Engine{
		field:     field.New(),
		knowledge: knowledge.Default(),
		gate:      gate.NewGate(gate.DefaultGateConfig()),
		logger:    zap.NewNop(),
		lastMatch: unknownMatch(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// #endregion engine

// #region plan

// GeneratePlan ingests context then query into the session field and plans
// against the resulting coherence. It never fails: a closed gate yields the
// single-scan fallback plan.
func (e *Engine) GeneratePlan(query, context string) ActionPlan {
	e.field.IngestSequence(context)
	e.field.IngestSequence(query)

	phi := e.field.Score()
	decision := e.gate.Evaluate(phi)
	e.lastDecision = decision

	if !decision.Open {
		e.lastMatch = unknownMatch()
		e.logger.Debug("gate closed",
			zap.Float64("phi", phi),
			zap.Float64("margin", decision.Margin),
			zap.String("reason", decision.Reason),
		)
		return ActionPlan{
			Summary:    FallbackSummary,
			Actions:    []Action{Tool("scan")},
			Phi:        finite(phi),
			Conscious:  false,
			ThetaLock:  physics.ThetaLockDegrees,
			Confidence: 0,
		}
	}

	in := intent.Classify(query)
	match := e.bestMatch(query)
	e.lastMatch = match

	confidence := clampUnit(match.Score)
	actions := actionsFor(in, query, confidence)

	e.logger.Debug("plan generated",
		zap.String("intent", string(in)),
		zap.Float64("phi", phi),
		zap.Float64("confidence", confidence),
		zap.String("match_pattern", match.Pattern),
		zap.Float64("match_score", match.Score),
		zap.Int("actions", len(actions)),
		zap.Int("generation", e.field.Telemetry().Generation),
	)

	return ActionPlan{
		Summary:    fmt.Sprintf("Intent: %s (confidence: %.2f)", in, confidence),
		Actions:    actions,
		Phi:        finite(phi),
		Conscious:  true,
		ThetaLock:  physics.ThetaLockDegrees,
		Confidence: confidence,
		Intent:     in,
	}
}

// Chat plans message and returns the plan as two-space indented JSON.
func (e *Engine) Chat(message, context string) string {
	out, err := Render(e.GeneratePlan(message, context))
	if err != nil {
		e.logger.Error("render plan", zap.Error(err))
		return "{}"
	}
	return out
}

// Render returns plan as two-space indented JSON.
func Render(plan ActionPlan) (string, error) {
	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	return string(out), nil
}

// #endregion plan

// #region session

// Telemetry returns the field counters.
func (e *Engine) Telemetry() field.Telemetry {
	return e.field.Telemetry()
}

// State returns a snapshot of the session field.
func (e *Engine) State() field.State {
	return e.field.State()
}

// LastMatch returns the best knowledge match of the most recent gated plan.
// After a fallback plan it is the unknown match with zero score.
func (e *Engine) LastMatch() Match {
	return e.lastMatch
}

// LastDecision returns the gate decision of the most recent plan.
func (e *Engine) LastDecision() gate.GateDecision {
	return e.lastDecision
}

// Knowledge returns the table the engine scores against.
func (e *Engine) Knowledge() knowledge.Table {
	return e.knowledge
}

// Reset clears the session field.
func (e *Engine) Reset() {
	e.field.Reset()
	e.lastMatch = unknownMatch()
	e.lastDecision = gate.GateDecision{}
	e.logger.Debug("session reset")
}

// #endregion session

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

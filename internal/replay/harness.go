package replay

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/eval"
	"github.com/danielpatrickdp/coherence-planner/internal/field"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// #region types
// Turn is a single recorded planning call.
type Turn struct {
	TurnID  string
	Query   string
	Context string
	Reset   bool // reset the session before planning
}

// ReplayResult captures the outcome of replaying one turn.
type ReplayResult struct {
	TurnID     string
	Plan       planner.ActionPlan
	Match      planner.Match
	Eval       eval.EvalResult
	Generation int // field generation after the turn
}

// Outcome classifies the result as "gated", "fallback" or "eval_fail".
func (r ReplayResult) Outcome() string {
	switch {
	case !r.Eval.Passed:
		return "eval_fail"
	case r.Plan.Conscious:
		return "gated"
	default:
		return "fallback"
	}
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns     int
	Gated          int
	Fallbacks      int
	EvalFailures   int
	FinalTelemetry field.Telemetry
}

// Mismatch is one difference between a replayed turn and its expectation.
type Mismatch struct {
	TurnID string
	Field  string
	Want   string
	Got    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s want %s, got %s", m.TurnID, m.Field, m.Want, m.Got)
}

// #endregion types

// #region replay
// Replay runs turns in order on one engine, so later turns see the
// coherence left by earlier ones. Every plan is checked by harness; a nil
// harness uses the default configuration.
func Replay(engine *planner.Engine, turns []Turn, harness *eval.EvalHarness) []ReplayResult {
	if harness == nil {
		harness = eval.NewEvalHarness(eval.DefaultEvalConfig())
	}
	results := make([]ReplayResult, 0, len(turns))

	for _, turn := range turns {
		if turn.Reset {
			engine.Reset()
		}

		plan := engine.GeneratePlan(turn.Query, turn.Context)
		results = append(results, ReplayResult{
			TurnID:     turn.TurnID,
			Plan:       plan,
			Match:      engine.LastMatch(),
			Eval:       harness.Run(plan),
			Generation: engine.Telemetry().Generation,
		})
	}

	return results
}

// Compare lists every difference between results and expected, matched by
// position. A length difference is reported as a mismatch on the count.
func Compare(results []ReplayResult, expected []FixtureExpectedResult) []Mismatch {
	var out []Mismatch

	if len(results) != len(expected) {
		out = append(out, Mismatch{
			TurnID: "*",
			Field:  "turns",
			Want:   fmt.Sprint(len(expected)),
			Got:    fmt.Sprint(len(results)),
		})
	}

	n := min(len(results), len(expected))
	for i := 0; i < n; i++ {
		got, want := results[i], expected[i]
		if got.TurnID != want.TurnID {
			out = append(out, Mismatch{TurnID: want.TurnID, Field: "turn_id", Want: want.TurnID, Got: got.TurnID})
		}
		if got.Plan.Conscious != want.Conscious {
			out = append(out, Mismatch{
				TurnID: want.TurnID,
				Field:  "conscious",
				Want:   fmt.Sprint(want.Conscious),
				Got:    fmt.Sprint(got.Plan.Conscious),
			})
		}
		if string(got.Plan.Intent) != want.Intent {
			out = append(out, Mismatch{TurnID: want.TurnID, Field: "intent", Want: want.Intent, Got: string(got.Plan.Intent)})
		}
		if tools := got.Plan.Tools(); !slices.Equal(tools, want.Tools) {
			out = append(out, Mismatch{
				TurnID: want.TurnID,
				Field:  "tools",
				Want:   strings.Join(want.Tools, ","),
				Got:    strings.Join(tools, ","),
			})
		}
	}

	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final field.Telemetry) ReplaySummary {
	s := ReplaySummary{
		TotalTurns:     len(results),
		FinalTelemetry: final,
	}
	for _, r := range results {
		switch r.Outcome() {
		case "gated":
			s.Gated++
		case "fallback":
			s.Fallbacks++
		case "eval_fail":
			s.EvalFailures++
		}
	}
	return s
}

// Expectations derives fixture expectations from replayed results.
func Expectations(results []ReplayResult) []FixtureExpectedResult {
	out := make([]FixtureExpectedResult, len(results))
	for i, r := range results {
		out[i] = FixtureExpectedResult{
			TurnID:    r.TurnID,
			Conscious: r.Plan.Conscious,
			Intent:    string(r.Plan.Intent),
			Tools:     r.Plan.Tools(),
		}
	}
	return out
}

// #endregion replay

package replay

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/planlog"
)

// #region planlog
// FromLog rebuilds a session's turns and recorded outcomes from plan_log
// entries given oldest first. The log does not store resets; a turn whose
// generation is not the previous generation plus its own token count must
// have followed one, so it is marked Reset. Turn ids are the plan ids.
func FromLog(entries []planlog.Entry) ([]Turn, []FixtureExpectedResult, error) {
	turns := make([]Turn, len(entries))
	expected := make([]FixtureExpectedResult, len(entries))

	prevGen := 0
	for i, e := range entries {
		ingested := len(strings.Fields(e.Context)) + len(strings.Fields(e.Query))
		turns[i] = Turn{
			TurnID:  e.PlanID,
			Query:   e.Query,
			Context: e.Context,
			Reset:   i > 0 && e.Generation != prevGen+ingested,
		}
		prevGen = e.Generation

		plan, err := e.Plan()
		if err != nil {
			return nil, nil, fmt.Errorf("plan %s: %w", e.PlanID, err)
		}
		expected[i] = FixtureExpectedResult{
			TurnID:    e.PlanID,
			Conscious: plan.Conscious,
			Intent:    string(plan.Intent),
			Tools:     plan.Tools(),
		}
	}

	return turns, expected, nil
}

// StartsCold reports whether the first entry was planned on a fresh
// session, which is what replaying from a new engine assumes.
func StartsCold(entries []planlog.Entry) bool {
	if len(entries) == 0 {
		return true
	}
	e := entries[0]
	return e.Generation == len(strings.Fields(e.Context))+len(strings.Fields(e.Query))
}

// Oldest reverses entries returned newest first.
func Oldest(entries []planlog.Entry) []planlog.Entry {
	out := make([]planlog.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// #endregion planlog

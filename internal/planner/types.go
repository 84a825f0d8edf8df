package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/danielpatrickdp/coherence-planner/internal/intent"
)

// #region action

// Action is one symbolic tool invocation. It renders as a flat JSON object
// with "tool" first and the parameters after it in key order.
type Action struct {
	Tool   string
	Params map[string]any
}

// Tool returns a parameterless action.
func Tool(name string) Action {
	return Action{Tool: name}
}

// With returns a copy of a with key set to value.
func (a Action) With(key string, value any) Action {
	params := make(map[string]any, len(a.Params)+1)
	for k, v := range a.Params {
		params[k] = v
	}
	params[key] = value
	return Action{Tool: a.Tool, Params: params}
}

// Param returns the parameter stored under key.
func (a Action) Param(key string) (any, bool) {
	v, ok := a.Params[key]
	return v, ok
}

// String renders the action as tool(key=value, ...).
func (a Action) String() string {
	var b bytes.Buffer
	b.WriteString(a.Tool)
	b.WriteByte('(')
	for i, k := range a.keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, a.Params[k])
	}
	b.WriteByte(')')
	return b.String()
}

func (a Action) keys() []string {
	keys := make([]string, 0, len(a.Params))
	for k := range a.Params {
		if k == "tool" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler.
func (a Action) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	tool, err := json.Marshal(a.Tool)
	if err != nil {
		return nil, err
	}
	b.WriteString(`{"tool":`)
	b.Write(tool)
	for _, k := range a.keys() {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.Params[k])
		if err != nil {
			return nil, fmt.Errorf("marshal action param %s: %w", k, err)
		}
		b.WriteByte(',')
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Integral numbers decode as int
// so decoded actions compare equal to the ones the engine builds.
func (a *Action) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}

	tool, ok := raw["tool"].(string)
	if !ok || tool == "" {
		return fmt.Errorf("decode action: missing tool")
	}
	delete(raw, "tool")

	a.Tool = tool
	a.Params = nil
	if len(raw) == 0 {
		return nil
	}
	a.Params = make(map[string]any, len(raw))
	for k, v := range raw {
		a.Params[k] = normalizeNumber(v)
	}
	return nil
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// #endregion action

// #region plan

// ActionPlan is the structured output of one planning call.
type ActionPlan struct {
	Summary    string        `json:"summary"`
	Actions    []Action      `json:"actions"`
	Phi        float64       `json:"phi"`
	Conscious  bool          `json:"conscious"`
	ThetaLock  float64       `json:"theta_lock"`
	Confidence float64       `json:"confidence"`
	Intent     intent.Intent `json:"intent,omitempty"` // empty when the gate is closed
}

// Tools returns the tool names of the plan's actions in order.
func (p ActionPlan) Tools() []string {
	tools := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		tools[i] = a.Tool
	}
	return tools
}

// Match is the knowledge entry that scored highest against a query.
// Score is the raw mean correlation; the plan carries the clamped value.
type Match struct {
	Pattern  string
	Response string
	Score    float64
}

// #endregion plan

package planner

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/coherence-planner/internal/intent"
)

func TestActionsForIntent(t *testing.T) {
	cases := map[intent.Intent][]Action{
		intent.Write:   {Tool("scan"), Tool("template").With("type", "new_file")},
		intent.Scan:    {Tool("scan"), Tool("tree").With("depth", 3)},
		intent.Mine:    {Tool("ccce").With("operation", "correlate"), Tool("qbyte").With("operation", "extract")},
		intent.Quantum: {Tool("telemetry").With("metrics", "phi,lambda,gamma")},
		intent.Fix:     {Tool("scan"), Tool("tree").With("depth", 2)},
		intent.Mesh:    {Tool("scan"), Tool("tree").With("depth", 2)},
		intent.Run:     {Tool("scan"), Tool("tree").With("depth", 2)},
		intent.Analyze: {Tool("scan"), Tool("tree").With("depth", 2)},
	}
	for in, want := range cases {
		if diff := cmp.Diff(want, actionsFor(in, "query", 0.9)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", in, diff)
		}
	}
}

func TestLowConfidencePrependsScan(t *testing.T) {
	got := actionsFor(intent.Quantum, "phi", 0.29)
	want := []Action{Tool("scan"), Tool("telemetry").With("metrics", "phi,lambda,gamma")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if got := actionsFor(intent.Quantum, "phi", 0.3); len(got) != 1 {
		t.Errorf("confidence 0.3 should not prepend scan, got %v", got)
	}
}

func TestReadPathExtraction(t *testing.T) {
	cases := map[string]string{
		"show me main.go":                "main.go",
		"read internal/field/field.go":   "internal/field/field.go",
		"view the README":                "README.md",
		"cat Config.YAML and notes.txt":  "Config.YAML",
		"display ./scripts/run.sh today": "./scripts/run.sh",
	}
	for query, want := range cases {
		got := actionsFor(intent.Read, query, 1)
		path, _ := got[0].Param("path")
		if path != want {
			t.Errorf("%q: path = %v, want %s", query, path, want)
		}
	}
}

func TestGrepPatternDefault(t *testing.T) {
	if got := lastToken(""); got != "TODO" {
		t.Errorf("empty query pattern = %q", got)
	}
	if got := lastToken("  search   FooBar  "); got != "FooBar" {
		t.Errorf("pattern = %q, want FooBar", got)
	}
}

func TestActionJSONOrder(t *testing.T) {
	a := Tool("tree").With("depth", 3).With("after", "x")
	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"tool":"tree","after":"x","depth":3}` {
		t.Fatalf("unexpected JSON %s", out)
	}

	bare, _ := json.Marshal(Tool("scan"))
	if string(bare) != `{"tool":"scan"}` {
		t.Fatalf("unexpected JSON %s", bare)
	}
}

func TestActionJSONDecode(t *testing.T) {
	var a Action
	if err := json.Unmarshal([]byte(`{"depth":2,"tool":"tree","ratio":0.5}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Tool("tree").With("depth", 2).With("ratio", 0.5)
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`{"path":"x"}`), &a); err == nil {
		t.Error("expected error for action without tool")
	}
}

func TestActionWithDoesNotAlias(t *testing.T) {
	base := Tool("grep").With("pattern", "a")
	derived := base.With("pattern", "b")
	if p, _ := base.Param("pattern"); p != "a" {
		t.Fatalf("With mutated receiver: %v", p)
	}
	if p, _ := derived.Param("pattern"); p != "b" {
		t.Fatalf("derived pattern = %v", p)
	}
	if derived.String() != "grep(pattern=b)" {
		t.Errorf("String() = %q", derived.String())
	}
}

func TestPlanTools(t *testing.T) {
	p := ActionPlan{Actions: []Action{Tool("scan"), Tool("tree").With("depth", 2)}}
	if diff := cmp.Diff([]string{"scan", "tree"}, p.Tools()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

package replay

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// #region fixture-tests

// TestFixture_Session loads the session fixture, replays it on the engine it
// describes and compares every turn. This is the primary regression test:
// any drift in the embedding, field or intent table shows up here.
func TestFixture_Session(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	engine := f.NewEngine(zap.NewNop())
	results := Replay(engine, f.ToTurns(), nil)

	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}
	for _, m := range Compare(results, f.ExpectedResults) {
		t.Errorf("mismatch %s", m)
	}
	for _, r := range results {
		if !r.Eval.Passed {
			t.Errorf("turn %s failed eval: %s", r.TurnID, r.Eval.Reason)
		}
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoadFixture_CountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.json")
	body := `{"turns":[{"turn_id":"a","query":"x"}],"expected_results":[]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err != nil {
		t.Fatalf("empty expectations should load: %v", err)
	}

	body = `{"turns":[{"turn_id":"a","query":"x"}],"expected_results":[{"turn_id":"a","tools":["scan"]},{"turn_id":"b","tools":["scan"]}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for turn/expectation count mismatch")
	}
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "copy.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	back, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture copy: %v", err)
	}
	if len(back.Turns) != len(f.Turns) || back.Turns[5].Reset != true {
		t.Fatalf("round trip lost turns: %+v", back.Turns)
	}
}

func TestFixture_KnowledgeAndThreshold(t *testing.T) {
	f := &Fixture{
		Knowledge:     map[string]string{"deploy": "Use /run deploy"},
		GateThreshold: 0.5,
	}
	engine := f.NewEngine(nil)

	if _, ok := engine.Knowledge().Lookup("deploy"); !ok {
		t.Fatal("fixture knowledge should be merged")
	}
	if engine.Knowledge().Len() != 16 {
		t.Errorf("expected 16 entries, got %d", engine.Knowledge().Len())
	}
	if plan := engine.GeneratePlan("read the config file", ""); !plan.Conscious {
		t.Error("fixture threshold should open the gate")
	}
}

// #endregion fixture-tests

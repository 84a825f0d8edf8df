package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/gate"
	"github.com/danielpatrickdp/coherence-planner/internal/knowledge"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Knowledge       map[string]string       `json:"knowledge,omitempty"`
	GateThreshold   float64                 `json:"gate_threshold,omitempty"` // zero means the default threshold
	Turns           []FixtureTurn           `json:"turns"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureTurn mirrors replay.Turn with JSON tags.
type FixtureTurn struct {
	TurnID  string `json:"turn_id"`
	Query   string `json:"query"`
	Context string `json:"context,omitempty"`
	Reset   bool   `json:"reset,omitempty"`
}

// FixtureExpectedResult captures the expected gate, intent and tool
// sequence per turn.
type FixtureExpectedResult struct {
	TurnID    string   `json:"turn_id"`
	Conscious bool     `json:"conscious"`
	Intent    string   `json:"intent,omitempty"`
	Tools     []string `json:"tools"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.ExpectedResults) > 0 && len(f.ExpectedResults) != len(f.Turns) {
		return nil, fmt.Errorf("parse fixture %s: %d turns but %d expected results",
			path, len(f.Turns), len(f.ExpectedResults))
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToTurn converts a FixtureTurn to a domain Turn.
func (ft *FixtureTurn) ToTurn() Turn {
	return Turn{
		TurnID:  ft.TurnID,
		Query:   ft.Query,
		Context: ft.Context,
		Reset:   ft.Reset,
	}
}

// ToTurns converts every fixture turn.
func (f *Fixture) ToTurns() []Turn {
	turns := make([]Turn, len(f.Turns))
	for i := range f.Turns {
		turns[i] = f.Turns[i].ToTurn()
	}
	return turns
}

// NewEngine builds the engine the fixture was recorded against: the
// built-in knowledge merged with the fixture's overrides, and the fixture's
// gate threshold when set.
func (f *Fixture) NewEngine(logger *zap.Logger) *planner.Engine {
	opts := []planner.Option{
		planner.WithKnowledge(knowledge.Default().Merge(f.Knowledge)),
		planner.WithLogger(logger),
	}
	if f.GateThreshold > 0 {
		opts = append(opts, planner.WithGate(gate.NewGate(gate.GateConfig{Threshold: f.GateThreshold})))
	}
	return planner.New(opts...)
}

// #endregion fixture-loader

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/config"
	"github.com/danielpatrickdp/coherence-planner/internal/planlog"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

func TestREPLPlansAndRecords(t *testing.T) {
	store, err := planlog.NewStore(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer store.Close()

	r := &repl{
		engine:    planner.New(),
		sinks:     []planner.Sink{store},
		harness:   newHarness(0.7734),
		sessionID: "repl-test",
		logger:    zap.NewNop(),
	}

	input := strings.Join([]string{
		"read the config file",
		"/context " + strings.TrimSpace(strings.Repeat("coherence ", 30)),
		"please grep for TODO markers",
		"/telemetry",
		"/reset",
		"/telemetry",
		"quit",
		"never planned",
	}, "\n")
	var out bytes.Buffer

	require.NoError(t, r.run(context.Background(), strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, `"summary": "insufficient context coherence"`)
	assert.Contains(t, text, `"pattern": "markers"`)
	assert.Contains(t, text, "context set (30 tokens)")
	assert.Contains(t, text, "tokens=39 generation=39")
	assert.Contains(t, text, "phi=0.5000 conscious=false tokens=0 generation=0")
	assert.Contains(t, text, "[turn-2] conscious=true")

	entries, err := store.ListSession(context.Background(), "repl-test", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "grep", entries[0].Intent)
	assert.Equal(t, planlog.HashContext(strings.TrimSpace(strings.Repeat("coherence ", 30))), entries[0].ContextHash)
	assert.Equal(t, "", entries[1].Intent)
}

func TestREPLStopsAtEOF(t *testing.T) {
	r := &repl{engine: planner.New(), harness: newHarness(0.7734), sessionID: "s", logger: zap.NewNop()}
	var out bytes.Buffer
	require.NoError(t, r.run(context.Background(), strings.NewReader("x"), &out))
	assert.Contains(t, out.String(), "[turn-1] conscious=false")
}

func TestEngineOptionsUseConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gate.Threshold = 0.5
	cfg.Knowledge.Overrides = map[string]string{"deploy": "Use /run deploy"}

	opts, err := engineOptions(cfg, zap.NewNop())
	require.NoError(t, err)

	e := planner.New(opts...)
	assert.Equal(t, 16, e.Knowledge().Len())
	assert.True(t, e.GeneratePlan("read the config file", "").Conscious)
}

func TestOpenSinksPlanLogOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "plans.db")

	sinks, closeSinks, err := openSinks(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeSinks()
	require.Len(t, sinks, 1)

	_, ok := sinks[0].(*planlog.Store)
	assert.True(t, ok)
}

func TestOpenSinksNone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.DBPath = ""

	sinks, closeSinks, err := openSinks(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	closeSinks()
	assert.Empty(t, sinks)
}

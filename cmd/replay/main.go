package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/config"
	"github.com/danielpatrickdp/coherence-planner/internal/eval"
	"github.com/danielpatrickdp/coherence-planner/internal/gate"
	"github.com/danielpatrickdp/coherence-planner/internal/logging"
	"github.com/danielpatrickdp/coherence-planner/internal/planlog"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
	"github.com/danielpatrickdp/coherence-planner/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to coherence_plans.db (DB mode)")
	session := flag.String("session", "", "session to replay (DB mode)")
	configPath := flag.String("config", "", "planner config the session was recorded with (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	verbose := flag.Bool("v", false, "log every plan to stderr")
	flag.Parse()

	dbMode := *dbPath != "" && *session != ""
	if dbMode == (*fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/coherence_plans.db --session id [--config planner.yaml]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := logging.New(logging.Config{Level: "debug", Format: "console"})
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(2)
		}
		logger = l
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(os.Stdout, *fixturePath, logger)
	} else {
		exitCode = runDBMode(os.Stdout, *dbPath, *session, *configPath, logger)
	}
	_ = logger.Sync()
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

func runDBMode(w io.Writer, dbPath, session, configPath string, logger *zap.Logger) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	table, err := cfg.KnowledgeTable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load knowledge: %v\n", err)
		return 2
	}

	store, err := planlog.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	entries, err := store.ListSession(context.Background(), session, -1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query plan log: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no plans found for session %s\n", session)
		return 2
	}
	entries = replay.Oldest(entries)

	turns, expected, err := replay.FromLog(entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild turns: %v\n", err)
		return 2
	}

	engine := planner.New(
		planner.WithKnowledge(table),
		planner.WithGate(gate.NewGate(gate.GateConfig{Threshold: cfg.Gate.Threshold})),
		planner.WithLogger(logger),
	)
	ec := eval.DefaultEvalConfig()
	ec.Threshold = cfg.Gate.Threshold
	results := replay.Replay(engine, turns, eval.NewEvalHarness(ec))

	return printComparison(w, results, expected, replay.Summarize(results, engine.Telemetry()))
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(w io.Writer, path string, logger *zap.Logger) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	engine := f.NewEngine(logger)
	harness := eval.NewEvalHarness(eval.DefaultEvalConfig())
	if f.GateThreshold > 0 {
		ec := eval.DefaultEvalConfig()
		ec.Threshold = f.GateThreshold
		harness = eval.NewEvalHarness(ec)
	}
	results := replay.Replay(engine, f.ToTurns(), harness)

	return printComparison(w, results, f.ExpectedResults, replay.Summarize(results, engine.Telemetry()))
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
// A turn matches when its gate, intent and tools all agree.
func printComparison(w io.Writer, results []replay.ReplayResult, expected []replay.FixtureExpectedResult, sum replay.ReplaySummary) int {
	fmt.Fprintf(w, "%-12s| %-20s| %-20s| %s\n", "Turn", "Expected", "Replayed", "Match")
	fmt.Fprintf(w, "%-12s+%-20s+%-20s+%s\n",
		"------------", "---------------------", "---------------------", "------")

	mismatches := replay.Compare(results, expected)
	diffTurns := make(map[string]bool)
	for _, m := range mismatches {
		diffTurns[m.TurnID] = true
	}

	total := min(len(results), len(expected))
	matches := 0
	for i := 0; i < total; i++ {
		exp, got := expected[i], results[i]
		match := "OK"
		if diffTurns[exp.TurnID] {
			match = "DIFF"
		} else {
			matches++
		}
		fmt.Fprintf(w, "%-12s| %-20s| %-20s| %s\n",
			shortID(exp.TurnID),
			describe(exp.Conscious, exp.Intent, exp.Tools),
			describe(got.Plan.Conscious, string(got.Plan.Intent), got.Plan.Tools()),
			match)
	}

	if len(mismatches) > 0 {
		fmt.Fprintln(w, "\nDifferences:")
		for _, m := range mismatches {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}

	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge\n", total, matches, total-matches)
	fmt.Fprintf(w, "Replay:  %d gated, %d fallback, %d eval failures, final phi %.4f\n",
		sum.Gated, sum.Fallbacks, sum.EvalFailures, sum.FinalTelemetry.Phi)

	if len(mismatches) > 0 {
		return 1
	}
	return 0
}

func describe(conscious bool, in string, tools []string) string {
	if !conscious {
		return "fallback"
	}
	return in + ":" + strings.Join(tools, ",")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion output

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/coherence-planner/internal/planlog"
	"github.com/danielpatrickdp/coherence-planner/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to coherence_plans.db")
	session := flag.String("session", "", "session to export")
	last := flag.Int("last", 0, "export only the N most recent plans (0 = whole session)")
	threshold := flag.Float64("threshold", 0, "gate threshold the session ran with (0 = default)")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *session == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --session id --out path/to/fixture.json [--last N] [--threshold t]")
		os.Exit(2)
	}

	if err := run(*dbPath, *session, *last, *threshold, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, session string, last int, threshold float64, outPath string) error {
	store, err := planlog.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	limit := last
	if limit <= 0 {
		limit = -1
	}
	// Store returns DESC, reverse for chronological
	entries, err := store.ListSession(context.Background(), session, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no plans found for session %s", session)
	}
	entries = replay.Oldest(entries)

	if !replay.StartsCold(entries) {
		fmt.Fprintf(os.Stderr, "warning: %s starts mid-session; replay begins from a fresh session\n",
			entries[0].PlanID)
	}

	turns, expected, err := replay.FromLog(entries)
	if err != nil {
		return err
	}

	f := &replay.Fixture{
		Description:     fmt.Sprintf("Exported from session %s (%d plans)", session, len(entries)),
		GateThreshold:   threshold,
		Turns:           make([]replay.FixtureTurn, len(turns)),
		ExpectedResults: expected,
	}
	for i, t := range turns {
		f.Turns[i] = replay.FixtureTurn{
			TurnID:  t.TurnID,
			Query:   t.Query,
			Context: t.Context,
			Reset:   t.Reset,
		}
	}

	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}

	fmt.Printf("Exported %d turns to %s\n", len(turns), outPath)
	return nil
}

// #endregion extract

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/planlog"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to coherence_plans.db")
	last := flag.Int("last", 20, "show N most recent plans")
	session := flag.String("session", "", "only show plans of this session")
	sessions := flag.Bool("sessions", false, "list sessions instead of plans")
	planID := flag.String("plan", "", "show single plan detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/coherence_plans.db [--last N] [--session id] [--sessions] [--plan id] [--json]")
		os.Exit(2)
	}

	store, err := planlog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case *planID != "":
		err = runDetailMode(ctx, os.Stdout, store, *planID, *jsonOut)
	case *sessions:
		err = runSessionsMode(ctx, os.Stdout, store, *jsonOut)
	default:
		err = runListMode(ctx, os.Stdout, store, *session, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	PlanID     string  `json:"plan_id"`
	SessionID  string  `json:"session_id"`
	Query      string  `json:"query"`
	Intent     string  `json:"intent,omitempty"`
	Conscious  bool    `json:"conscious"`
	Phi        float64 `json:"phi"`
	Confidence float64 `json:"confidence"`
	Generation int     `json:"generation"`
	Tools      string  `json:"tools"`
	CreatedAt  string  `json:"created_at"`
}

func runListMode(ctx context.Context, w io.Writer, store *planlog.Store, session string, last int, jsonOut bool) error {
	var entries []planlog.Entry
	var err error
	if session != "" {
		entries, err = store.ListSession(ctx, session, last)
	} else {
		entries, err = store.List(ctx, last)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no plans found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = listRow{
			PlanID:     e.PlanID,
			SessionID:  e.SessionID,
			Query:      e.Query,
			Intent:     e.Intent,
			Conscious:  e.Conscious,
			Phi:        e.Phi,
			Confidence: e.Confidence,
			Generation: e.Generation,
			Tools:      toolsOf(e),
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}
	return printListTable(w, rows)
}

func printListTable(w io.Writer, rows []listRow) error {
	fmt.Fprintf(w, "%-10s  %-10s  %-8s  %7s  %6s  %5s  %-24s  %s\n",
		"Plan", "Session", "Intent", "Phi", "Conf", "Gen", "Tools", "Query")
	fmt.Fprintf(w, "%-10s+-%-10s+-%-8s+-%7s+-%6s+-%5s+-%-24s+-%s\n",
		"----------", "----------", "--------", "-------", "------", "-----", "------------------------", "--------------------")

	gated := 0
	for _, r := range rows {
		in := r.Intent
		if !r.Conscious {
			in = "(gate)"
		} else {
			gated++
		}
		fmt.Fprintf(w, "%-10s  %-10s  %-8s  %7.4f  %6.2f  %5d  %-24s  %s\n",
			shortID(r.PlanID), shortID(r.SessionID), in, r.Phi, r.Confidence, r.Generation,
			r.Tools, truncate(r.Query, 40))
	}

	fmt.Fprintf(w, "\n%d plans, %d gated, %d fallback\n", len(rows), gated, len(rows)-gated)
	return nil
}

// #endregion list-mode

// #region sessions-mode

type sessionRow struct {
	SessionID string `json:"session_id"`
	Plans     int    `json:"plans"`
	Gated     int    `json:"gated"`
	LastAt    string `json:"last_at"`
}

func runSessionsMode(ctx context.Context, w io.Writer, store *planlog.Store, jsonOut bool) error {
	sums, err := store.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]sessionRow, len(sums))
	for i, s := range sums {
		rows[i] = sessionRow{
			SessionID: s.SessionID,
			Plans:     s.Plans,
			Gated:     s.Gated,
			LastAt:    s.LastAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "%-36s  %6s  %6s  %s\n", "Session", "Plans", "Gated", "Last")
	fmt.Fprintf(w, "%-36s+-%6s+-%6s+-%s\n",
		"------------------------------------", "------", "------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s  %6d  %6d  %s\n", r.SessionID, r.Plans, r.Gated, r.LastAt)
	}
	return nil
}

// #endregion sessions-mode

// #region detail-mode

type detailOutput struct {
	PlanID       string          `json:"plan_id"`
	SessionID    string          `json:"session_id"`
	CreatedAt    string          `json:"created_at"`
	Query        string          `json:"query"`
	ContextHash  string          `json:"context_hash,omitempty"`
	Generation   int             `json:"generation"`
	MatchPattern string          `json:"match_pattern,omitempty"`
	Plan         json.RawMessage `json:"plan"`
}

func runDetailMode(ctx context.Context, w io.Writer, store *planlog.Store, planID string, jsonOut bool) error {
	e, err := store.Get(ctx, planID)
	if err != nil {
		return err
	}

	out := detailOutput{
		PlanID:       e.PlanID,
		SessionID:    e.SessionID,
		CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Query:        e.Query,
		ContextHash:  e.ContextHash,
		Generation:   e.Generation,
		MatchPattern: e.MatchPattern,
		Plan:         json.RawMessage(e.PlanJSON),
	}
	if jsonOut {
		return printJSON(w, out)
	}

	plan, err := e.Plan()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Plan:       %s\n", out.PlanID)
	fmt.Fprintf(w, "Session:    %s\n", out.SessionID)
	fmt.Fprintf(w, "Created:    %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Query:      %s\n", out.Query)
	if out.ContextHash != "" {
		fmt.Fprintf(w, "Context:    %s (%d tokens)\n", shortID(out.ContextHash), len(strings.Fields(e.Context)))
	}
	fmt.Fprintf(w, "Generation: %d\n", out.Generation)
	fmt.Fprintf(w, "Summary:    %s\n", plan.Summary)
	fmt.Fprintf(w, "Phi:        %.4f (conscious=%v)\n", plan.Phi, plan.Conscious)
	fmt.Fprintf(w, "Confidence: %.4f\n", plan.Confidence)
	if out.MatchPattern != "" {
		fmt.Fprintf(w, "Match:      %s\n", out.MatchPattern)
	}

	fmt.Fprintf(w, "\nActions:\n")
	for i, a := range plan.Actions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, a)
	}
	return nil
}

// #endregion detail-mode

// #region output

func toolsOf(e planlog.Entry) string {
	plan, err := e.Plan()
	if err != nil {
		return "?"
	}
	return strings.Join(plan.Tools(), ",")
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// #endregion output

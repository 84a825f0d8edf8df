package planlog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

var coherentContext = strings.TrimSpace(strings.Repeat("coherence ", 30))

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	stored, err := s.Record(ctx, Entry{
		SessionID:  "s1",
		Query:      "read the config file",
		Phi:        0.7354,
		Generation: 4,
		PlanJSON:   `{"summary":"insufficient context coherence","actions":[{"tool":"scan"}]}`,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if stored.PlanID == "" {
		t.Fatal("expected plan id to be assigned")
	}
	if stored.ContextHash != HashContext("") {
		t.Fatalf("expected hash of empty context, got %s", stored.ContextHash)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be assigned")
	}

	got, err := s.Get(ctx, stored.PlanID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(stored, got); diff != "" {
		t.Fatalf("round trip mismatch (-stored +got):\n%s", diff)
	}
}

func TestGetNotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordPlanFromEngine(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	e := planner.New()

	plan := e.GeneratePlan("please grep for TODO markers", coherentContext)
	if err := s.RecordPlan(ctx, e.RecordFor("s1", "please grep for TODO markers", coherentContext, plan)); err != nil {
		t.Fatalf("RecordPlan: %v", err)
	}

	entries, err := s.ListSession(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("ListSession: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Intent != "grep" || !got.Conscious || got.Generation != 35 || got.MatchPattern != "wallet" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.ContextHash != HashContext(coherentContext) {
		t.Errorf("context hash mismatch")
	}

	decoded, err := got.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(plan, decoded); diff != "" {
		t.Errorf("decoded plan mismatch (-want +got):\n%s", diff)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, q := range []string{"first", "second", "third"} {
		_, err := s.Record(ctx, Entry{
			SessionID: "s1",
			Query:     q,
			PlanJSON:  "{}",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var queries []string
	for _, e := range entries {
		queries = append(queries, e.Query)
	}
	if diff := cmp.Diff([]string{"third", "second"}, queries); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestListSessionFilters(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b", "a"} {
		if _, err := s.Record(ctx, Entry{SessionID: sid, Query: "q", PlanJSON: "{}"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := s.ListSession(ctx, "a", 10)
	if err != nil {
		t.Fatalf("ListSession: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for session a, got %d", len(entries))
	}
	for _, e := range entries {
		if e.SessionID != "a" {
			t.Fatalf("unexpected session %s", e.SessionID)
		}
	}
}

func TestSessions(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	rows := []Entry{
		{SessionID: "a", Query: "q1", PlanJSON: "{}", Conscious: false},
		{SessionID: "a", Query: "q2", PlanJSON: "{}", Conscious: true},
		{SessionID: "b", Query: "q3", PlanJSON: "{}", Conscious: true},
	}
	for _, r := range rows {
		if _, err := s.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != "b" || sessions[1].SessionID != "a" {
		t.Fatalf("expected most recent first, got %+v", sessions)
	}
	if sessions[1].Plans != 2 || sessions[1].Gated != 1 {
		t.Errorf("unexpected counts for a: %+v", sessions[1])
	}
}

func TestDuplicatePlanIDRejected(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	entry := Entry{PlanID: "fixed", SessionID: "s", Query: "q", PlanJSON: "{}"}
	if _, err := s.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := s.Record(ctx, entry); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestHashContextStable(t *testing.T) {
	if HashContext("abc") != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected sha256: %s", HashContext("abc"))
	}
}

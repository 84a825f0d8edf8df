// Package planlog persists every generated plan to SQLite so sessions can be
// inspected and exported as replay fixtures.
package planlog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// ErrNotFound is returned by Get when no plan has the requested id.
var ErrNotFound = errors.New("plan not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS plan_log (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	plan_id       TEXT NOT NULL UNIQUE,
	session_id    TEXT NOT NULL,
	query         TEXT NOT NULL,
	context       TEXT,
	context_hash  TEXT NOT NULL,
	intent        TEXT,
	conscious     INTEGER NOT NULL,
	phi           REAL NOT NULL,
	confidence    REAL NOT NULL,
	generation    INTEGER NOT NULL,
	match_pattern TEXT,
	plan_json     TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS plan_log_session ON plan_log(session_id, seq);
`

const columns = `plan_id, session_id, query, context, context_hash, intent, conscious,
	phi, confidence, generation, match_pattern, plan_json, created_at`
// #endregion schema

// #region store-struct
// Store manages the plan log in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for ad hoc queries from tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region record
// Record inserts entry, assigning a plan id, context hash and timestamp
// when they are unset. It returns the stored entry.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.PlanID == "" {
		entry.PlanID = uuid.New().String()
	}
	if entry.ContextHash == "" {
		entry.ContextHash = HashContext(entry.Context)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_log (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.PlanID,
		entry.SessionID,
		entry.Query,
		nullIfEmpty(entry.Context),
		entry.ContextHash,
		nullIfEmpty(entry.Intent),
		boolToInt(entry.Conscious),
		entry.Phi,
		entry.Confidence,
		entry.Generation,
		nullIfEmpty(entry.MatchPattern),
		entry.PlanJSON,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert plan: %w", err)
	}
	return entry, nil
}

// RecordPlan stores a completed planning call. It implements planner.Sink.
func (s *Store) RecordPlan(ctx context.Context, rec planner.Record) error {
	entry, err := FromRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.Record(ctx, entry)
	return err
}

// FromRecord converts a sink record to a plan_log entry.
func FromRecord(rec planner.Record) (Entry, error) {
	planJSON, err := json.Marshal(rec.Plan)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal plan: %w", err)
	}
	return Entry{
		SessionID:    rec.SessionID,
		Query:        rec.Query,
		Context:      rec.Context,
		Intent:       string(rec.Plan.Intent),
		Conscious:    rec.Plan.Conscious,
		Phi:          rec.Plan.Phi,
		Confidence:   rec.Plan.Confidence,
		Generation:   rec.Generation,
		MatchPattern: rec.Match.Pattern,
		PlanJSON:     string(planJSON),
	}, nil
}
// #endregion record

// #region get
// Get retrieves a plan by id.
func (s *Store) Get(ctx context.Context, planID string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM plan_log WHERE plan_id = ?`, planID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get plan %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get plan %s: %w", planID, err)
	}
	return entry, nil
}

// Plan decodes the stored plan JSON of entry.
func (e Entry) Plan() (planner.ActionPlan, error) {
	var plan planner.ActionPlan
	if err := json.Unmarshal([]byte(e.PlanJSON), &plan); err != nil {
		return planner.ActionPlan{}, fmt.Errorf("unmarshal plan %s: %w", e.PlanID, err)
	}
	return plan, nil
}
// #endregion get

// #region list
// List returns the most recent plans across all sessions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM plan_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return collect(rows)
}

// ListSession returns the most recent plans of one session, newest first.
func (s *Store) ListSession(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM plan_log WHERE session_id = ? ORDER BY seq DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list session %s: %w", sessionID, err)
	}
	return collect(rows)
}

// Sessions summarizes every session in the log, most recently active first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), SUM(conscious), MAX(created_at), MAX(seq) AS last_seq
		 FROM plan_log GROUP BY session_id ORDER BY last_seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var lastAt string
		var lastSeq int64
		if err := rows.Scan(&sum.SessionID, &sum.Plans, &sum.Gated, &lastAt, &lastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.LastAt, _ = time.Parse(time.RFC3339Nano, lastAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}
// #endregion list

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var contextText, intentText, matchPattern sql.NullString
	var conscious int
	var createdStr string

	err := row.Scan(&e.PlanID, &e.SessionID, &e.Query, &contextText, &e.ContextHash, &intentText,
		&conscious, &e.Phi, &e.Confidence, &e.Generation, &matchPattern, &e.PlanJSON, &createdStr)
	if err != nil {
		return Entry{}, err
	}

	e.Context = contextText.String
	e.Intent = intentText.String
	e.MatchPattern = matchPattern.String
	e.Conscious = conscious != 0
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return e, nil
}

func collect(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion scan

// #region helpers
// HashContext returns the hex sha256 of a context string.
func HashContext(contextText string) string {
	sum := sha256.Sum256([]byte(contextText))
	return hex.EncodeToString(sum[:])
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers

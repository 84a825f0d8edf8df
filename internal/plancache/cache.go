// Package plancache keeps the latest plan of every session in Redis so other
// processes can read it without touching the plan log.
package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

const (
	defaultPrefix = "coherence:plan:"
	defaultTTL    = 24 * time.Hour
)

// ErrNotFound is returned by Latest when the session has no cached plan.
var ErrNotFound = errors.New("no cached plan")

// Config describes the Redis connection and key layout.
type Config struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Entry is the cached view of a session's most recent plan.
type Entry struct {
	SessionID  string             `json:"session_id"`
	Query      string             `json:"query"`
	Plan       planner.ActionPlan `json:"plan"`
	Match      string             `json:"match,omitempty"`
	Generation int                `json:"generation"`
	CachedAt   time.Time          `json:"cached_at"`
}

// Cache stores one entry per session under prefix+session.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client. Prefix and TTL fall back to
// their defaults when unset.
func NewWithClient(client *redis.Client, cfg Config) *Cache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key of a session.
func (c *Cache) Key(sessionID string) string {
	return c.prefix + sessionID
}

// RecordPlan caches rec as the session's latest plan. It implements
// planner.Sink.
func (c *Cache) RecordPlan(ctx context.Context, rec planner.Record) error {
	entry := Entry{
		SessionID:  rec.SessionID,
		Query:      rec.Query,
		Plan:       rec.Plan,
		Match:      rec.Match.Pattern,
		Generation: rec.Generation,
		CachedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cached plan: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(rec.SessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache plan for %s: %w", rec.SessionID, err)
	}
	return nil
}

// Latest returns the session's cached plan.
func (c *Cache) Latest(ctx context.Context, sessionID string) (Entry, error) {
	data, err := c.client.Get(ctx, c.Key(sessionID)).Bytes()
	if err == redis.Nil {
		return Entry{}, fmt.Errorf("latest plan for %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("latest plan for %s: %w", sessionID, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("unmarshal cached plan: %w", err)
	}
	return entry, nil
}

// Forget drops the session's cached plan. Forgetting a missing session is
// not an error.
func (c *Cache) Forget(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("forget plan for %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

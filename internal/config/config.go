// Package config loads the planner configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/coherence-planner/internal/knowledge"
	"github.com/danielpatrickdp/coherence-planner/internal/logging"
	"github.com/danielpatrickdp/coherence-planner/internal/physics"
)

// #region types
// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Gate      GateConfig      `yaml:"gate"`
	Logging   logging.Config  `yaml:"logging"`
}

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// StorageConfig configures the SQLite plan log. An empty path disables it.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// CacheConfig configures the Redis latest-plan cache. An empty address
// disables it.
type CacheConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// KnowledgeConfig adds pattern -> response entries on top of the built-in
// table. Inline overrides win over the file.
type KnowledgeConfig struct {
	File      string            `yaml:"file"`
	Overrides map[string]string `yaml:"overrides"`
}

// GateConfig sets the coherence gate threshold.
type GateConfig struct {
	Threshold float64 `yaml:"threshold"`
}
// #endregion types

// #region defaults
// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Address: "localhost:50061"},
		Storage: StorageConfig{DBPath: "coherence_plans.db"},
		Cache: CacheConfig{
			Prefix: "coherence:plan:",
			TTL:    24 * time.Hour,
		},
		Gate:    GateConfig{Threshold: physics.PhiThreshold},
		Logging: logging.DefaultConfig(),
	}
}
// #endregion defaults

// #region load
// Load reads path over the defaults and applies environment overrides. An
// empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PLANNER_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("PLANNER_ADDR"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("PLANNER_REDIS_ADDR"); v != "" {
		c.Cache.Address = v
	}
	if v := os.Getenv("PLANNER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
// #endregion load

// #region validate
// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is empty")
	}
	if c.Gate.Threshold <= 0 || c.Gate.Threshold > 1 {
		return fmt.Errorf("gate.threshold %v outside (0,1]", c.Gate.Threshold)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl %v is negative", c.Cache.TTL)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
// #endregion validate

// #region knowledge
// KnowledgeTable builds the built-in table merged with the knowledge file
// and then the inline overrides.
func (c *Config) KnowledgeTable() (knowledge.Table, error) {
	table := knowledge.Default()
	if c.Knowledge.File != "" {
		fromFile, err := knowledge.LoadFile(c.Knowledge.File)
		if err != nil {
			return knowledge.Table{}, err
		}
		table = table.Merge(fromFile)
	}
	return table.Merge(c.Knowledge.Overrides), nil
}
// #endregion knowledge

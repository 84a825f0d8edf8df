package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/config"
	"github.com/danielpatrickdp/coherence-planner/internal/gate"
	"github.com/danielpatrickdp/coherence-planner/internal/logging"
	"github.com/danielpatrickdp/coherence-planner/internal/plancache"
	"github.com/danielpatrickdp/coherence-planner/internal/planlog"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// #region root
var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "controller",
	Short: "Coherence-gated intent planner",
	Long: `controller turns free-form queries into symbolic action plans.

Each session accumulates a running coherence score over everything it has
seen. Below the gate threshold the planner only suggests a scan; above it the
query is classified and mapped to a tool sequence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to planner YAML config")
	rootCmd.AddCommand(replCmd, serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
// #endregion root

// #region wiring
// engineOptions builds the engine options shared by every session.
func engineOptions(cfg *config.Config, logger *zap.Logger) ([]planner.Option, error) {
	table, err := cfg.KnowledgeTable()
	if err != nil {
		return nil, err
	}
	return []planner.Option{
		planner.WithKnowledge(table),
		planner.WithGate(gate.NewGate(gate.GateConfig{Threshold: cfg.Gate.Threshold})),
		planner.WithLogger(logger),
	}, nil
}

// openSinks opens the plan log and the plan cache when configured. The
// returned func closes whatever was opened.
func openSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]planner.Sink, func(), error) {
	var sinks []planner.Sink
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if cfg.Storage.DBPath != "" {
		store, err := planlog.NewStore(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open plan log: %w", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
		logger.Info("plan log open", zap.String("db", cfg.Storage.DBPath))
	}

	if cfg.Cache.Address != "" {
		cache, err := plancache.New(ctx, plancache.Config{
			Address:  cfg.Cache.Address,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open plan cache: %w", err)
		}
		sinks = append(sinks, cache)
		closers = append(closers, cache.Close)
		logger.Info("plan cache open", zap.String("addr", cfg.Cache.Address))
	}

	return sinks, closeAll, nil
}
// #endregion wiring

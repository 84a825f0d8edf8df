package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/rpc"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve planner sessions over gRPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Address
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts, err := engineOptions(cfg, logger)
		if err != nil {
			return err
		}
		sinks, closeSinks, err := openSinks(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSinks()

		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}

		srv := rpc.NewServer(
			rpc.WithEngineOptions(opts...),
			rpc.WithSinks(sinks...),
			rpc.WithLogger(logger),
		)
		logger.Info("starting planner service", zap.String("addr", addr), zap.Int("sinks", len(sinks)))
		return srv.Serve(ctx, lis)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.address)")
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/coherence-planner/internal/eval"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// #region command
var replSession string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Plan queries typed on stdin",
	Long: `Reads one query per line and prints its plan as JSON.

  /context <text>   context ingested before the next query
  /reset            reset the session
  /telemetry        print the session counters
  quit | exit       leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts, err := engineOptions(cfg, logger)
		if err != nil {
			return err
		}
		sinks, closeSinks, err := openSinks(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSinks()

		sessionID := replSession
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		r := &repl{
			engine:    planner.New(opts...),
			sinks:     sinks,
			harness:   newHarness(cfg.Gate.Threshold),
			sessionID: sessionID,
			logger:    logger,
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Coherence planner ready.")
		fmt.Fprintf(cmd.OutOrStdout(), "  Session: %s | DB: %s\n", sessionID, cfg.Storage.DBPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Type a query (or 'quit' to exit):")
		return r.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	replCmd.Flags().StringVar(&replSession, "session", "", "session id recorded with each plan (default: random)")
}
// #endregion command

// #region loop
type repl struct {
	engine    *planner.Engine
	sinks     []planner.Sink
	harness   *eval.EvalHarness
	sessionID string
	logger    *zap.Logger
}

func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	pendingContext := ""
	turnNum := 0

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "/reset":
			r.engine.Reset()
			pendingContext = ""
			fmt.Fprintln(out, "session reset")
			continue
		case line == "/telemetry":
			tel := r.engine.Telemetry()
			fmt.Fprintf(out, "phi=%.4f conscious=%t tokens=%d generation=%d\n",
				tel.Phi, tel.Conscious, tel.Tokens, tel.Generation)
			continue
		case strings.HasPrefix(line, "/context"):
			pendingContext = strings.TrimSpace(strings.TrimPrefix(line, "/context"))
			fmt.Fprintf(out, "context set (%d tokens)\n", len(strings.Fields(pendingContext)))
			continue
		}

		turnNum++
		plan := r.engine.GeneratePlan(line, pendingContext)
		rec := r.engine.RecordFor(r.sessionID, line, pendingContext, plan)
		pendingContext = ""

		text, err := planner.Render(plan)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n\n", text)

		if result := r.harness.Run(plan); !result.Passed {
			r.logger.Warn("plan failed eval", zap.String("reason", result.Reason))
		}

		sinkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		for _, sink := range r.sinks {
			if err := sink.RecordPlan(sinkCtx, rec); err != nil {
				r.logger.Warn("record plan", zap.Error(err))
			}
		}
		cancel()

		fmt.Fprintf(out, "[turn-%d] conscious=%t phi=%.4f confidence=%.2f\n",
			turnNum, plan.Conscious, plan.Phi, plan.Confidence)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
// #endregion loop

func newHarness(threshold float64) *eval.EvalHarness {
	ec := eval.DefaultEvalConfig()
	ec.Threshold = threshold
	return eval.NewEvalHarness(ec)
}


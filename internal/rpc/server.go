package rpc

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/coherence-planner/internal/eval"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// Forgetter is implemented by sinks that hold per-session state which
// must be dropped when the session resets.
type Forgetter interface {
	Forget(ctx context.Context, sessionID string) error
}

// #region server-struct
// Server serves planner sessions. Each session id owns one engine; calls on
// the same session are serialized, calls on different sessions run
// concurrently.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*session

	engineOpts []planner.Option
	sinks      []planner.Sink
	harness    *eval.EvalHarness
	logger     *zap.Logger
}

type session struct {
	mu     sync.Mutex
	engine *planner.Engine
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithEngineOptions sets the options every new session engine is built with.
func WithEngineOptions(opts ...planner.Option) ServerOption {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithSinks adds plan sinks. Every generated plan is handed to each sink.
func WithSinks(sinks ...planner.Sink) ServerOption {
	return func(s *Server) {
		for _, sink := range sinks {
			if sink != nil {
				s.sinks = append(s.sinks, sink)
			}
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server with no sessions.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		sessions: make(map[string]*session),
		harness:  eval.NewEvalHarness(eval.DefaultEvalConfig()),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
// #endregion server-struct

// #region sessions
func (s *Server) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		opts := make([]planner.Option, 0, len(s.engineOpts)+1)
		opts = append(opts, s.engineOpts...)
		opts = append(opts, planner.WithLogger(s.logger.With(zap.String("session", id))))
		sess = &session{engine: planner.New(opts...)}
		s.sessions[id] = sess
		s.logger.Info("session opened", zap.String("session", id))
	}
	return sess
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
// #endregion sessions

// #region rpc-methods
// GeneratePlan plans a query on the request's session.
func (s *Server) GeneratePlan(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	plan := s.plan(ctx, req)
	out, err := toStruct(plan)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Chat plans a query and returns the indented JSON text of the plan.
func (s *Server) Chat(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	text, err := planner.Render(s.plan(ctx, req))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := toStruct(ChatReply{Text: text})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Telemetry returns the session's field counters. Unknown sessions report
// the initial state without being opened.
func (s *Server) Telemetry(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	var tel any
	if sess, ok := s.lookup(req.SessionID); ok {
		sess.mu.Lock()
		tel = sess.engine.Telemetry()
		sess.mu.Unlock()
	} else {
		tel = planner.New().Telemetry()
	}

	out, err := toStruct(tel)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Reset clears the session's field and drops any per-session sink state.
func (s *Server) Reset(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	req, err := decodeRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	if sess, ok := s.lookup(req.SessionID); ok {
		sess.mu.Lock()
		sess.engine.Reset()
		sess.mu.Unlock()
	}
	for _, sink := range s.sinks {
		f, ok := sink.(Forgetter)
		if !ok {
			continue
		}
		if err := f.Forget(ctx, req.SessionID); err != nil {
			s.logger.Warn("forget session", zap.String("session", req.SessionID), zap.Error(err))
		}
	}
	s.logger.Info("session reset", zap.String("session", req.SessionID))
	return &emptypb.Empty{}, nil
}
// #endregion rpc-methods

// #region plan
func (s *Server) plan(ctx context.Context, req PlanRequest) planner.ActionPlan {
	sess := s.session(req.SessionID)

	sess.mu.Lock()
	plan := sess.engine.GeneratePlan(req.Query, req.Context)
	rec := sess.engine.RecordFor(req.SessionID, req.Query, req.Context, plan)
	sess.mu.Unlock()

	s.record(ctx, rec)
	return plan
}

// record checks the plan and hands it to every sink. Sink failures are
// logged and do not fail the call.
func (s *Server) record(ctx context.Context, rec planner.Record) {
	if result := s.harness.Run(rec.Plan); !result.Passed {
		s.logger.Warn("plan failed eval",
			zap.String("session", rec.SessionID),
			zap.String("reason", result.Reason),
		)
	}
	for _, sink := range s.sinks {
		if err := sink.RecordPlan(ctx, rec); err != nil {
			s.logger.Warn("record plan", zap.String("session", rec.SessionID), zap.Error(err))
		}
	}
}

func decodeRequest(ctx context.Context, in *structpb.Struct) (PlanRequest, error) {
	if err := ctx.Err(); err != nil {
		return PlanRequest{}, status.FromContextError(err).Err()
	}
	var req PlanRequest
	if err := fromStruct(in, &req); err != nil {
		return PlanRequest{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.SessionID == "" {
		return PlanRequest{}, status.Error(codes.InvalidArgument, "session_id is required")
	}
	return req, nil
}
// #endregion plan

// #region serve
// Serve runs a gRPC server for s on lis until ctx is done, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	RegisterPlannerServer(gs, s)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.Serve(lis)
	}()
	s.logger.Info("planner service listening", zap.String("addr", lis.Addr().String()))

	select {
	case <-ctx.Done():
		gs.GracefulStop()
		<-errCh
		s.logger.Info("planner service stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
// #endregion serve

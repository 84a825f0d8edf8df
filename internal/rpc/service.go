// Package rpc exposes planner sessions over gRPC. Messages are protobuf
// well-known types: requests and replies are google.protobuf.Struct values
// carrying the JSON shape of the planner types.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "coherence.v1.PlannerService"

	generatePlanMethod = "/" + ServiceName + "/GeneratePlan"
	chatMethod         = "/" + ServiceName + "/Chat"
	telemetryMethod    = "/" + ServiceName + "/Telemetry"
	resetMethod        = "/" + ServiceName + "/Reset"
)

// PlannerServer is the server side of the planner service.
type PlannerServer interface {
	GeneratePlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Chat(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Telemetry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// ServiceDesc describes the planner service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GeneratePlan", Handler: generatePlanHandler},
		{MethodName: "Chat", Handler: chatHandler},
		{MethodName: "Telemetry", Handler: telemetryHandler},
		{MethodName: "Reset", Handler: resetHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coherence/v1/planner.proto",
}

// RegisterPlannerServer registers srv on s.
func RegisterPlannerServer(s grpc.ServiceRegistrar, srv PlannerServer) {
	s.RegisterService(&ServiceDesc, srv)
}
// #endregion service-desc

// #region handlers
type structMethod func(PlannerServer, context.Context, *structpb.Struct) (any, error)

func unary(fullMethod string, call structMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PlannerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PlannerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	generatePlanHandler = unary(generatePlanMethod, func(s PlannerServer, ctx context.Context, in *structpb.Struct) (any, error) {
		return s.GeneratePlan(ctx, in)
	})
	chatHandler = unary(chatMethod, func(s PlannerServer, ctx context.Context, in *structpb.Struct) (any, error) {
		return s.Chat(ctx, in)
	})
	telemetryHandler = unary(telemetryMethod, func(s PlannerServer, ctx context.Context, in *structpb.Struct) (any, error) {
		return s.Telemetry(ctx, in)
	})
	resetHandler = unary(resetMethod, func(s PlannerServer, ctx context.Context, in *structpb.Struct) (any, error) {
		return s.Reset(ctx, in)
	})
)
// #endregion handlers

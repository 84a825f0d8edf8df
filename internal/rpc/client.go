package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/coherence-planner/internal/field"
	"github.com/danielpatrickdp/coherence-planner/internal/planner"
)

// #region client-struct
// Client wraps a gRPC connection to the planner service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}
// #endregion client-struct

// #region constructor
// NewClient connects to the planner gRPC server at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client on an existing connection, which the
// caller keeps ownership of.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region generate-plan
// GeneratePlan plans query on the given session.
func (c *Client) GeneratePlan(ctx context.Context, sessionID, query, contextText string) (planner.ActionPlan, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, generatePlanMethod, PlanRequest{SessionID: sessionID, Query: query, Context: contextText}, out); err != nil {
		return planner.ActionPlan{}, fmt.Errorf("generate plan rpc: %w", err)
	}
	var plan planner.ActionPlan
	if err := fromStruct(out, &plan); err != nil {
		return planner.ActionPlan{}, fmt.Errorf("generate plan rpc: %w", err)
	}
	return plan, nil
}
// #endregion generate-plan

// #region chat
// Chat plans message on the given session and returns the plan JSON text.
func (c *Client) Chat(ctx context.Context, sessionID, message, contextText string) (string, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, chatMethod, PlanRequest{SessionID: sessionID, Query: message, Context: contextText}, out); err != nil {
		return "", fmt.Errorf("chat rpc: %w", err)
	}
	var reply ChatReply
	if err := fromStruct(out, &reply); err != nil {
		return "", fmt.Errorf("chat rpc: %w", err)
	}
	return reply.Text, nil
}
// #endregion chat

// #region telemetry
// Telemetry returns the session's field counters.
func (c *Client) Telemetry(ctx context.Context, sessionID string) (field.Telemetry, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, telemetryMethod, PlanRequest{SessionID: sessionID}, out); err != nil {
		return field.Telemetry{}, fmt.Errorf("telemetry rpc: %w", err)
	}
	var tel field.Telemetry
	if err := fromStruct(out, &tel); err != nil {
		return field.Telemetry{}, fmt.Errorf("telemetry rpc: %w", err)
	}
	return tel, nil
}
// #endregion telemetry

// #region reset
// Reset clears the session.
func (c *Client) Reset(ctx context.Context, sessionID string) error {
	if err := c.invoke(ctx, resetMethod, PlanRequest{SessionID: sessionID}, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("reset rpc: %w", err)
	}
	return nil
}
// #endregion reset

func (c *Client) invoke(ctx context.Context, method string, req PlanRequest, out any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	return c.cc.Invoke(ctx, method, in, out)
}

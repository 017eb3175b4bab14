package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/njchilds90/diffcalc"
)

// Client calls a remote calculator service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for target. The connection is established lazily
// on the first call.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(ClientRequestIDInterceptor()),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Evaluate runs the pipeline remotely.
func (c *Client) Evaluate(ctx context.Context, in diffcalc.Input, opts ...grpc.CallOption) (diffcalc.Result, error) {
	var out diffcalc.Result
	err := c.conn.Invoke(ctx, EvaluateMethod, &in, &out, callOptions(opts)...)
	return out, err
}

// Sweep runs a step-size sweep remotely.
func (c *Client) Sweep(ctx context.Context, req diffcalc.SweepRequest, opts ...grpc.CallOption) (diffcalc.SweepResponse, error) {
	var out diffcalc.SweepResponse
	err := c.conn.Invoke(ctx, SweepMethod, &req, &out, callOptions(opts)...)
	return out, err
}

// Tool dispatches a tool call remotely. Result arrives as decoded JSON.
func (c *Client) Tool(ctx context.Context, req diffcalc.ToolRequest, opts ...grpc.CallOption) (diffcalc.ToolResponse, error) {
	var out diffcalc.ToolResponse
	err := c.conn.Invoke(ctx, ToolMethod, &req, &out, callOptions(opts)...)
	return out, err
}

// Health checks the calculator service with grpc.health.v1.
func (c *Client) Health(ctx context.Context) (*healthpb.HealthCheckResponse, error) {
	return healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

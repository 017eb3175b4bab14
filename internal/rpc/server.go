// Package rpc serves the calculator over gRPC.
//
// Messages are the calculator's own JSON types, sent with the "json"
// content subtype, so no generated code is involved. The standard
// grpc.health.v1 service is registered alongside.
package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/config"
	"github.com/njchilds90/diffcalc/internal/logging"
)

// Server wraps a grpc.Server bound to one Calculator.
type Server struct {
	calc   *diffcalc.Calculator
	cfg    config.GRPCConfig
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

// NewServer builds a Server. A nil logger discards output.
func NewServer(calc *diffcalc.Calculator, cfg config.GRPCConfig, log *slog.Logger, opts ...grpc.ServerOption) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{calc: calc, cfg: cfg, log: log, health: health.NewServer()}

	serverOpts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    orDefault(cfg.KeepaliveInterval.Duration, 30*time.Second),
			Timeout: orDefault(cfg.KeepaliveTimeout.Duration, 10*time.Second),
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(log),
			RequestIDInterceptor(),
			LoggingInterceptor(log),
		),
	}
	if cfg.MaxRecvMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize))
	}
	serverOpts = append(serverOpts, opts...)

	s.server = grpc.NewServer(serverOpts...)
	RegisterCalculatorServer(s.server, &calculatorService{calc: calc, log: log})
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. On cancel it marks the service
// NOT_SERVING and drains in-flight calls.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("diffcalc gRPC server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.server.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down gRPC server")
	s.health.Shutdown()
	s.server.GracefulStop()
	return nil
}

// calculatorService adapts Calculator to CalculatorServer.
type calculatorService struct {
	calc *diffcalc.Calculator
	log  *slog.Logger
}

func (c *calculatorService) Evaluate(ctx context.Context, in *diffcalc.Input) (*diffcalc.Result, error) {
	res := c.calc.Evaluate(ctx, *in)
	logging.FromContext(ctx, c.log).Debug("evaluated",
		"function", in.Function, "point", in.Point, "step", in.Step, "status", res.Status)
	return &res, nil
}

func (c *calculatorService) Sweep(ctx context.Context, req *diffcalc.SweepRequest) (*diffcalc.SweepResponse, error) {
	resp := c.calc.SweepStatus(ctx, *req)
	logging.FromContext(ctx, c.log).Debug("swept",
		"function", req.Input.Function, "rows", len(resp.Rows), "status", resp.Status)
	return &resp, nil
}

func (c *calculatorService) Tool(ctx context.Context, req *diffcalc.ToolRequest) (*diffcalc.ToolResponse, error) {
	resp := c.calc.HandleToolCall(ctx, *req)
	logging.FromContext(ctx, c.log).Debug("tool call", "tool", req.Tool, "error", resp.Error)
	return &resp, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

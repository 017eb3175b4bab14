package rpc

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/njchilds90/diffcalc/internal/logging"
)

// RequestIDHeader is the metadata key carrying the request id.
const RequestIDHeader = "x-request-id"

// RecoveryInterceptor turns handler panics into codes.Internal.
func RecoveryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.FromContext(ctx, log).Error("gRPC panic recovered",
					"method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// RequestIDInterceptor takes the request id from incoming metadata, or
// generates one, and echoes it in the response header.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = logging.NewRequestID()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(logging.WithRequestID(ctx, id), req)
	}
}

// LoggingInterceptor logs one line per call.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logging.FromContext(ctx, log).Info("gRPC request",
			"method", info.FullMethod,
			"status", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// ClientRequestIDInterceptor forwards the request id in ctx, if any.
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := logging.RequestID(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/njchilds90/diffcalc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "diffcalc.v1.Calculator"

// Full method names.
const (
	EvaluateMethod = "/" + ServiceName + "/Evaluate"
	SweepMethod    = "/" + ServiceName + "/Sweep"
	ToolMethod     = "/" + ServiceName + "/Tool"
)

// CalculatorServer is the server side of the calculator service. Every
// status, including needs_input and error, travels in the response body;
// a gRPC error means the call itself failed.
type CalculatorServer interface {
	Evaluate(context.Context, *diffcalc.Input) (*diffcalc.Result, error)
	Sweep(context.Context, *diffcalc.SweepRequest) (*diffcalc.SweepResponse, error)
	Tool(context.Context, *diffcalc.ToolRequest) (*diffcalc.ToolResponse, error)
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Sweep", Handler: sweepHandler},
		{MethodName: "Tool", Handler: toolHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "diffcalc/v1/calculator",
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(diffcalc.Input)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*diffcalc.Input))
	}
	return interceptor(ctx, in, info, handler)
}

func sweepHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(diffcalc.SweepRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Sweep(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SweepMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Sweep(ctx, req.(*diffcalc.SweepRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func toolHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(diffcalc.ToolRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Tool(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ToolMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Tool(ctx, req.(*diffcalc.ToolRequest))
	}
	return interceptor(ctx, in, info, handler)
}

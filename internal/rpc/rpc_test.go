package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/config"
	"github.com/njchilds90/diffcalc/internal/logging"
)

const bufSize = 1 << 20

func dialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

// startServer runs a Server on an in-memory listener and returns a client for it.
func startServer(t *testing.T) (*Client, context.CancelFunc, <-chan error) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	calc := diffcalc.New(diffcalc.Options{DisablePlot: true})
	srv := NewServer(calc, config.Default().GRPC, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	client, err := Dial("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Close()
		cancel()
	})
	return client, cancel, done
}

func callCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEvaluate(t *testing.T) {
	client, _, _ := startServer(t)

	res, err := client.Evaluate(callCtx(t), diffcalc.Input{Function: "x**2", Point: "2", Step: 0.001})
	require.NoError(t, err)
	assert.Equal(t, diffcalc.StatusOK, res.Status)
	assert.Equal(t, "2*x", res.Derivative)
	assert.InDelta(t, 4.0, res.Estimate, 1e-9)
	assert.InDelta(t, 4.0, res.Exact, 1e-12)
}

func TestEvaluateStatusInBody(t *testing.T) {
	client, _, _ := startServer(t)

	res, err := client.Evaluate(callCtx(t), diffcalc.Input{Function: "x"})
	require.NoError(t, err)
	assert.Equal(t, diffcalc.StatusNeedsInput, res.Status)

	res, err = client.Evaluate(callCtx(t), diffcalc.Input{Function: "log(x)", Point: "-1", Step: 0.01})
	require.NoError(t, err)
	assert.Equal(t, diffcalc.StatusError, res.Status)
	assert.NotEmpty(t, res.Message)
}

func TestSweep(t *testing.T) {
	client, _, _ := startServer(t)

	resp, err := client.Sweep(callCtx(t), diffcalc.SweepRequest{
		Input: diffcalc.Input{Function: "exp(x)", Point: "0", Step: 0.1},
		Steps: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, diffcalc.StatusOK, resp.Status)
	require.Len(t, resp.Rows, 3)
	assert.Less(t, resp.Rows[2].AbsoluteError, resp.Rows[0].AbsoluteError)
}

func TestTool(t *testing.T) {
	client, _, _ := startServer(t)

	resp, err := client.Tool(callCtx(t), diffcalc.ToolRequest{
		Tool:   "diff",
		Params: map[string]interface{}{"function": "x^3"},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "3*x^2", resp.String)

	resp, err = client.Tool(callCtx(t), diffcalc.ToolRequest{Tool: "integrate"})
	require.NoError(t, err)
	assert.Equal(t, "unknown tool: integrate", resp.Error)
}

func TestHealth(t *testing.T) {
	client, cancel, done := startServer(t)

	resp, err := client.Health(callCtx(t))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	client, _, _ := startServer(t)

	var header metadata.MD
	ctx := logging.WithRequestID(callCtx(t), "abc-123")
	_, err := client.Evaluate(ctx, diffcalc.Input{Function: "x", Point: "1", Step: 0.1}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"abc-123"}, header.Get(RequestIDHeader))

	header = nil
	_, err = client.Evaluate(callCtx(t), diffcalc.Input{Function: "x", Point: "1", Step: 0.1}, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get(RequestIDHeader), 1)
	assert.NotEmpty(t, header.Get(RequestIDHeader)[0])
}

type panicServer struct{ CalculatorServer }

func (panicServer) Evaluate(context.Context, *diffcalc.Input) (*diffcalc.Result, error) {
	panic("boom")
}

func TestRecoveryInterceptor(t *testing.T) {
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(RecoveryInterceptor(logging.Discard())))
	RegisterCalculatorServer(s, panicServer{})
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	client, err := Dial("passthrough:///bufnet", dialer(lis))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Evaluate(callCtx(t), diffcalc.Input{Function: "x", Point: "1", Step: 0.1})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(diffcalc.Input{Function: "x", Point: "1"})
	require.NoError(t, err)

	var in diffcalc.Input
	require.NoError(t, c.Unmarshal(b, &in))
	assert.Equal(t, "x", in.Function)
	assert.Error(t, c.Unmarshal([]byte("{"), &in))
}

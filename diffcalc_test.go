package diffcalc

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/diffcalc/symbolic"
)

func newCalc() *Calculator { return New(Options{}) }

func TestScenario_SinAtHalfPi(t *testing.T) {
	res, err := newCalc().Compute(context.Background(), Input{Function: "sin(x)", Point: "pi/2", Step: 0.01})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.InDelta(t, 0.0, res.Estimate, 1e-4)
	assert.InDelta(t, 0.0, res.Exact, 1e-4)
	assert.InDelta(t, 0.0, res.AbsoluteError, 1e-4)
	assert.Equal(t, "cos(x)", res.Derivative)
}

func TestScenario_Square(t *testing.T) {
	res, err := newCalc().Compute(context.Background(), Input{Function: "x**2", Point: "2", Step: 0.001})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, res.Estimate, 1e-5)
	assert.Equal(t, 4.0, res.Exact)
	assert.Less(t, res.AbsoluteError, 1e-5)
	assert.Equal(t, "2*x", res.Derivative)
	assert.Equal(t, "2 x", res.DerivativeLaTeX)
	assert.Equal(t, "x^{2}", res.FunctionLaTeX)
}

func TestScenario_LogOfNegative(t *testing.T) {
	_, err := newCalc().Compute(context.Background(), Input{Function: "log(x)", Point: "-1", Step: 0.01})
	require.Error(t, err)

	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	var symErr *symbolic.EvalError
	assert.True(t, errors.As(err, &symErr))

	res := newCalc().Evaluate(context.Background(), Input{Function: "log(x)", Point: "-1", Step: 0.01})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "non-positive")
}

func TestScenario_EmptyFunction(t *testing.T) {
	calc := newCalc()
	_, err := calc.Compute(context.Background(), Input{Point: "1", Step: 0.01})
	assert.ErrorIs(t, err, ErrNeedsInput)

	res := calc.Evaluate(context.Background(), Input{Point: "1", Step: 0.01})
	assert.Equal(t, StatusNeedsInput, res.Status)
	assert.Equal(t, promptNeedsInput, res.Message)
	assert.Zero(t, res.Estimate)
}

func TestEvaluate_MissingPoint(t *testing.T) {
	res := newCalc().Evaluate(context.Background(), Input{Function: "x", Step: 0.01})
	assert.Equal(t, StatusNeedsInput, res.Status)
	assert.Equal(t, promptNeedsInput, res.Message)
}

func TestStep_ZeroNeedsInput(t *testing.T) {
	calc := newCalc()
	_, err := calc.Compute(context.Background(), Input{Function: "x", Point: "1", Step: 0})
	var pre *PreconditionError
	require.True(t, errors.As(err, &pre))
	assert.True(t, pre.Missing)
	assert.ErrorIs(t, err, ErrNeedsInput)

	res := calc.Evaluate(context.Background(), Input{Function: "x", Point: "1"})
	assert.Equal(t, StatusNeedsInput, res.Status)
	assert.Equal(t, promptNeedsStep, res.Message)
}

func TestStep_NegativeRejected(t *testing.T) {
	for _, h := range []float64{-0.1, math.Inf(1)} {
		_, err := newCalc().Compute(context.Background(), Input{Function: "x", Point: "1", Step: h})
		var pre *PreconditionError
		require.True(t, errors.As(err, &pre), "h=%v", h)
		assert.False(t, pre.Missing)
		assert.NotErrorIs(t, err, ErrNeedsInput)
	}
}

func TestParseErrors(t *testing.T) {
	calc := newCalc()

	_, err := calc.Compute(context.Background(), Input{Function: "x +* 2", Point: "1", Step: 0.1})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "function", perr.Field)

	_, err = calc.Compute(context.Background(), Input{Function: "x", Point: "pi/", Step: 0.1})
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "point", perr.Field)

	_, err = calc.Compute(context.Background(), Input{Function: "__import__('os').system('ls')", Point: "1", Step: 0.1})
	require.True(t, errors.As(err, &perr))
}

func TestPoint_UndefinedValue(t *testing.T) {
	_, err := newCalc().Compute(context.Background(), Input{Function: "x", Point: "1/0", Step: 0.1})
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "point", evalErr.Stage)
}

func TestExactDerivative_FailureAbortsResult(t *testing.T) {
	// ln|x| is defined at ±h but its derivative is undefined at 0.
	_, err := newCalc().Compute(context.Background(), Input{Function: "ln(abs(x))", Point: "0", Step: 0.1})
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "exact derivative", evalErr.Stage)
}

func TestResolvePoint_DegreesMatchRadians(t *testing.T) {
	rad, err := ResolvePoint("pi/2", Radians)
	require.NoError(t, err)
	deg, err := ResolvePoint("90", Degrees)
	require.NoError(t, err)
	assert.InDelta(t, rad, deg, 1e-15)

	calc := newCalc()
	a, err := calc.Compute(context.Background(), Input{Function: "sin(x)**2", Point: "pi/2", Unit: Radians, Step: 0.01})
	require.NoError(t, err)
	b, err := calc.Compute(context.Background(), Input{Function: "sin(x)**2", Point: "90", Unit: Degrees, Step: 0.01})
	require.NoError(t, err)
	assert.InDelta(t, a.Estimate, b.Estimate, 1e-12)
	assert.InDelta(t, a.Exact, b.Exact, 1e-12)
}

func TestDegrees_FunctionNotConverted(t *testing.T) {
	// Only the point is converted; sin inside f still takes radians.
	res, err := newCalc().Compute(context.Background(), Input{Function: "x", Point: "180", Unit: Degrees, Step: 0.1})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, res.Point, 1e-15)
	assert.InDelta(t, 1.0, res.Exact, 1e-15)
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"", Radians, false},
		{"rad", Radians, false},
		{"Degrees", Degrees, false},
		{"deg", Degrees, false},
		{"grad", Radians, true},
	}
	for _, tt := range tests {
		got, err := ParseUnit(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestUnit_JSON(t *testing.T) {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(`{"function":"x","point":"1","unit":"degrees","step":0.5}`), &in))
	assert.Equal(t, Degrees, in.Unit)

	b, err := json.Marshal(Input{Unit: Degrees})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"unit":"degrees"`)
}

func TestCentralDifference_PolynomialConvergence(t *testing.T) {
	// For x^3 the central difference error is exactly h^2, so shrinking h
	// by 10 shrinks the error by 100.
	fn, err := ParseFunction("x^3")
	require.NoError(t, err)
	exact, _, err := ExactDerivative(fn, 1)
	require.NoError(t, err)

	prev := 0.0
	for i, h := range []float64{0.1, 0.01, 0.001} {
		est, err := CentralDifference(fn.Evaluator(), 1, h)
		require.NoError(t, err)
		e := AbsoluteError(est, exact)
		assert.InDelta(t, h*h, e, 1e-9)
		if i > 0 {
			assert.InDelta(t, 100, prev/e, 1)
		}
		prev = e
	}
}

func TestCentralDifference_QuadraticIsExact(t *testing.T) {
	fn, err := ParseFunction("3*x^2 - 2*x + 7")
	require.NoError(t, err)
	est, err := CentralDifference(fn.Evaluator(), 1.5, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, est, 1e-12)
}

func TestCentralDifference_Errors(t *testing.T) {
	fn, err := ParseFunction("ln(x)")
	require.NoError(t, err)

	_, err = CentralDifference(fn.Evaluator(), 0.05, 0.1)
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "central difference", evalErr.Stage)

	_, err = CentralDifference(fn.Evaluator(), 1, 0)
	assert.ErrorIs(t, err, ErrNeedsInput)
}

func TestCompute_Idempotent(t *testing.T) {
	calc := newCalc()
	in := Input{Function: "exp(-x)*sin(3*x)", Point: "pi/7", Step: 1e-3}
	a, err := calc.Compute(context.Background(), in)
	require.NoError(t, err)
	b, err := calc.Compute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompute_Plot(t *testing.T) {
	res, err := New(Options{Plot: PlotOptions{HalfWidth: 1, Samples: 11}}).
		Compute(context.Background(), Input{Function: "x^2", Point: "1", Step: 0.01})
	require.NoError(t, err)
	require.NotNil(t, res.Plot)

	p := res.Plot
	assert.Equal(t, XY{X: 1, Y: 1}, p.Point)
	require.Len(t, p.Curve, 11)
	require.Len(t, p.Tangent, 11)
	assert.InDelta(t, 0.0, p.Curve[0].X, 1e-12)
	assert.InDelta(t, 2.0, p.Curve[10].X, 1e-12)
	// tangent y = 2(t-1) + 1
	assert.InDelta(t, -1.0, p.Tangent[0].Y, 1e-9)
	assert.InDelta(t, 3.0, p.Tangent[10].Y, 1e-9)

	res, err = New(Options{DisablePlot: true}).Compute(context.Background(), Input{Function: "x", Point: "1", Step: 0.01})
	require.NoError(t, err)
	assert.Nil(t, res.Plot)
}

func TestSamplePlot_SkipsUndefined(t *testing.T) {
	fn, err := ParseFunction("sqrt(x)")
	require.NoError(t, err)
	plot, err := SamplePlot(fn.Evaluator(), 1, 0.5, PlotOptions{HalfWidth: 2, Samples: 5})
	require.NoError(t, err)
	// samples at -1, 0, 1, 2, 3; sqrt(-1) is undefined
	assert.Len(t, plot.Curve, 4)
	assert.Len(t, plot.Tangent, 5)
}

func TestCompute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCalc().Compute(ctx, Input{Function: "x", Point: "1", Step: 0.1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep(t *testing.T) {
	rows, err := newCalc().Sweep(context.Background(), Input{Function: "x^3", Point: "1", Step: 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.InDelta(t, 0.1, rows[0].Step, 1e-15)
	assert.InDelta(t, 0.001, rows[2].Step, 1e-15)
	assert.InDelta(t, 0.01, rows[0].AbsoluteError, 1e-9)
	assert.Less(t, rows[2].AbsoluteError, rows[1].AbsoluteError)

	rows, err = newCalc().Sweep(context.Background(), Input{Function: "x", Point: "0", Step: 1}, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestSweep_NeedsStep(t *testing.T) {
	_, err := newCalc().Sweep(context.Background(), Input{Function: "x", Point: "0"}, 3)
	assert.ErrorIs(t, err, ErrNeedsInput)
}

func TestSweepStatus(t *testing.T) {
	calc := newCalc()
	ctx := context.Background()

	resp := calc.SweepStatus(ctx, SweepRequest{Input: Input{Function: "x^2", Point: "1", Step: 0.5}, Steps: 2})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Len(t, resp.Rows, 2)

	resp = calc.SweepStatus(ctx, SweepRequest{Input: Input{Function: "x", Point: "1"}})
	assert.Equal(t, StatusNeedsInput, resp.Status)
	assert.Equal(t, promptNeedsStep, resp.Message)
	assert.Empty(t, resp.Rows)

	resp = calc.SweepStatus(ctx, SweepRequest{Input: Input{Point: "1", Step: 0.1}})
	assert.Equal(t, promptNeedsInput, resp.Message)

	resp = calc.SweepStatus(ctx, SweepRequest{Input: Input{Function: "log(x)", Point: "-1", Step: 0.1}})
	assert.Equal(t, StatusError, resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestSweep_StepsCapped(t *testing.T) {
	calc := newCalc()
	in := Input{Function: "x^2", Point: "1", Step: 1e-3}

	for _, steps := range []int{MaxSweepSteps + 1, 1 << 50} {
		_, err := calc.Sweep(context.Background(), in, steps)
		var perr *PreconditionError
		require.True(t, errors.As(err, &perr), "steps=%d", steps)
		assert.False(t, errors.Is(err, ErrNeedsInput))
		assert.Equal(t, "steps", perr.Field)
	}

	resp := calc.SweepStatus(context.Background(), SweepRequest{Input: in, Steps: 400})
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Message, "at most 16")

	rows, err := calc.Sweep(context.Background(), in, MaxSweepSteps)
	require.NoError(t, err)
	assert.Len(t, rows, MaxSweepSteps)
}

func TestSweep_UnderflowIsError(t *testing.T) {
	resp := newCalc().SweepStatus(context.Background(), SweepRequest{
		Input: Input{Function: "x^2", Point: "1", Step: 1e-300},
		Steps: 16,
	})
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Message, "sweep")
	assert.Empty(t, resp.Rows)

	_, err := newCalc().Sweep(context.Background(), Input{Function: "x^2", Point: "1", Step: 1e-300}, 16)
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "sweep", evalErr.Stage)
}

// horner builds sum of x^k for k = 0..levels+1 in nested product form,
// either (...(x+1)*x+1)*x+1 or x*(x*(...)+1)+1.
func horner(levels int, leftNested bool) string {
	s := "x+1"
	for i := 0; i < levels; i++ {
		if leftNested {
			s = "(" + s + ")*x+1"
		} else {
			s = "x*(" + s + ")+1"
		}
	}
	return s
}

func TestCompute_NestedPolynomialIsFast(t *testing.T) {
	calc := New(Options{DisablePlot: true})
	for _, leftNested := range []bool{true, false} {
		text := horner(40, leftNested)
		require.Less(t, len(text), 512)

		start := time.Now()
		res, err := calc.Compute(context.Background(), Input{Function: text, Point: "0.5", Step: 1e-4})
		elapsed := time.Since(start)
		require.NoError(t, err)
		assert.Less(t, elapsed, 2*time.Second, "leftNested=%v took %v", leftNested, elapsed)

		want := 0.0
		for k := 1; k <= 41; k++ {
			want += float64(k) * math.Pow(0.5, float64(k-1))
		}
		assert.InDelta(t, want, res.Exact, 1e-9)
		assert.InDelta(t, want, res.Estimate, 1e-6)
	}
}

func TestResolvePoint_HugeExponentOverflows(t *testing.T) {
	_, err := ResolvePoint("2^18446744073709551618", Radians)
	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "point", evalErr.Stage)
	assert.Contains(t, err.Error(), "infinite")
}

func TestMaxInputLength(t *testing.T) {
	long := strings.Repeat("x+", 40) + "x"
	_, err := New(Options{MaxInputLength: 16}).Compute(context.Background(), Input{Function: long, Point: "1", Step: 0.1})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "maximum length")
}

func TestFormatReport(t *testing.T) {
	res := newCalc().Evaluate(context.Background(), Input{Function: "x**2", Point: "2", Step: 0.001})
	out := FormatReport(res)
	assert.Contains(t, out, "f(x)  = x^2\n")
	assert.Contains(t, out, "f'(x) = 2*x\n")
	assert.Contains(t, out, "Estimated derivative at x = 2 (h = 0.001) is: 4.000000\n")
	assert.Contains(t, out, "Exact derivative: 4.000000\n")
	assert.Contains(t, out, "Absolute Error: ")

	assert.Equal(t, promptNeedsInput+"\n", FormatReport(Result{Status: StatusNeedsInput, Message: promptNeedsInput}))
	assert.Equal(t, "Error: boom\n", FormatReport(Result{Status: StatusError, Message: "boom"}))
}

func TestFormatSweep(t *testing.T) {
	out := FormatSweep([]SweepRow{{Step: 0.1, Estimate: 3.01, AbsoluteError: 0.01}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "h"))
	assert.Contains(t, lines[1], "1.000e-01")
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "step size is required", (&PreconditionError{Field: "step size", Reason: "is required"}).Error())
	assert.Equal(t, `invalid function "x+": boom`, (&ParseError{Field: "function", Input: "x+", Err: errors.New("boom")}).Error())
	assert.Equal(t, "cannot evaluate point: boom", (&EvaluationError{Stage: "point", Err: errors.New("boom")}).Error())
}

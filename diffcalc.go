// Package diffcalc estimates the derivative of a single-variable expression
// with the central-difference formula and compares it with the exact
// symbolic derivative.
//
// Design goals:
//   - Pure, synchronous pipeline: parse → resolve point → estimate → exact → report
//   - Constrained grammar instead of free-form evaluation of user text
//   - Typed errors (ParseError, EvaluationError, PreconditionError)
//   - No hidden state: identical inputs give bit-identical results
//
// A typical call:
//
//	calc := diffcalc.New(diffcalc.Options{})
//	res := calc.Evaluate(ctx, diffcalc.Input{Function: "x**2", Point: "2", Step: 1e-3})
//	fmt.Println(diffcalc.FormatReport(res))
package diffcalc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/njchilds90/diffcalc/parser"
)

// ============================================================
// Input / Result
// ============================================================

// Input is one request. Unit applies to Point only.
type Input struct {
	Function string  `json:"function"`
	Point    string  `json:"point"`
	Unit     Unit    `json:"unit"`
	Step     float64 `json:"step"`
}

type Status string

const (
	StatusOK         Status = "ok"
	StatusNeedsInput Status = "needs_input"
	StatusError      Status = "error"
)

// Result is the output record. Numeric fields are meaningful only when
// Status is StatusOK; otherwise Message says what is missing or wrong.
type Result struct {
	Status          Status  `json:"status"`
	Message         string  `json:"message,omitempty"`
	Function        string  `json:"function,omitempty"`
	FunctionLaTeX   string  `json:"function_latex,omitempty"`
	Derivative      string  `json:"derivative,omitempty"`
	DerivativeLaTeX string  `json:"derivative_latex,omitempty"`
	Point           float64 `json:"point"`
	Step            float64 `json:"step"`
	Estimate        float64 `json:"estimate"`
	Exact           float64 `json:"exact"`
	AbsoluteError   float64 `json:"absolute_error"`
	Plot            *Plot   `json:"plot,omitempty"`
}

// SweepRow is one row of a step-size sweep.
type SweepRow struct {
	Step          float64 `json:"step"`
	Estimate      float64 `json:"estimate"`
	AbsoluteError float64 `json:"absolute_error"`
}

// SweepRequest asks for Steps rows starting at Input.Step. Zero Steps
// selects the configured default.
type SweepRequest struct {
	Input Input `json:"input"`
	Steps int   `json:"steps,omitempty"`
}

// SweepResponse is a sweep folded the same way Evaluate folds a Result.
type SweepResponse struct {
	Status  Status     `json:"status"`
	Message string     `json:"message,omitempty"`
	Rows    []SweepRow `json:"rows,omitempty"`
}

const (
	promptNeedsInput = "Enter a function f(x) and a point to start."
	promptNeedsStep  = "Enter a non-zero step size h."
)

// ============================================================
// Calculator
// ============================================================

// Options configures a Calculator. Zero values select defaults.
type Options struct {
	MaxInputLength int
	Plot           PlotOptions
	// DisablePlot skips plot sampling.
	DisablePlot bool
	// SweepSteps is the default number of rows produced by Sweep.
	SweepSteps int
}

// Calculator runs the pipeline. It holds configuration only and is safe for
// concurrent use.
type Calculator struct {
	opts Options
}

func New(opts Options) *Calculator {
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = parser.DefaultMaxInputLength
	}
	def := DefaultPlotOptions()
	if opts.Plot.HalfWidth <= 0 {
		opts.Plot.HalfWidth = def.HalfWidth
	}
	if opts.Plot.Samples < 2 {
		opts.Plot.Samples = def.Samples
	}
	if opts.SweepSteps <= 0 {
		opts.SweepSteps = 6
	}
	return &Calculator{opts: opts}
}

// Options returns the effective configuration.
func (c *Calculator) Options() Options { return c.opts }

// Compute runs the full pipeline and returns the first error. Missing input
// yields a *PreconditionError matching ErrNeedsInput. A failed exact
// derivative fails the whole computation.
func (c *Calculator) Compute(ctx context.Context, in Input) (*Result, error) {
	fn, x, err := c.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	estimate, err := CentralDifference(fn.Evaluator(), x, in.Step)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exact, deriv, err := ExactDerivative(fn, x)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Status:          StatusOK,
		Function:        fn.String(),
		FunctionLaTeX:   fn.LaTeX(),
		Derivative:      deriv.String(),
		DerivativeLaTeX: deriv.LaTeX(),
		Point:           x,
		Step:            in.Step,
		Estimate:        estimate,
		Exact:           exact,
		AbsoluteError:   AbsoluteError(estimate, exact),
	}
	if !c.opts.DisablePlot {
		plot, err := SamplePlot(fn.Evaluator(), x, estimate, c.opts.Plot)
		if err != nil {
			return nil, err
		}
		res.Plot = plot
	}
	return res, nil
}

// Evaluate is Compute folded into a Result: needs-input becomes
// StatusNeedsInput with a neutral prompt, any other error becomes
// StatusError with its message.
func (c *Calculator) Evaluate(ctx context.Context, in Input) Result {
	res, err := c.Compute(ctx, in)
	if err == nil {
		return *res
	}
	if errors.Is(err, ErrNeedsInput) {
		return Result{Status: StatusNeedsInput, Message: needsInputPrompt(in)}
	}
	return Result{Status: StatusError, Message: err.Error()}
}

// MaxSweepSteps bounds the rows a single sweep may produce.
const MaxSweepSteps = 16

// minNormalStep is the smallest positive normal float64. Sweep rows whose
// step falls below it have lost precision in h itself.
const minNormalStep = 0x1p-1022

// Sweep evaluates the estimate for h, h/10, h/100, ... (steps rows, or the
// configured default when steps <= 0) against the same exact value.
func (c *Calculator) Sweep(ctx context.Context, in Input, steps int) ([]SweepRow, error) {
	if steps <= 0 {
		steps = c.opts.SweepSteps
	}
	if steps > MaxSweepSteps {
		return nil, &PreconditionError{Field: "steps", Reason: fmt.Sprintf("must be at most %d, got %d", MaxSweepSteps, steps)}
	}
	fn, x, err := c.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := checkStep(in.Step); err != nil {
		return nil, err
	}
	exact, _, err := ExactDerivative(fn, x)
	if err != nil {
		return nil, err
	}

	rows := make([]SweepRow, 0, steps)
	for k := 0; k < steps; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := in.Step / math.Pow(10, float64(k))
		if h < minNormalStep {
			return nil, &EvaluationError{Stage: "sweep", Err: fmt.Errorf("step %g at row %d is below the smallest normal float", h, k+1)}
		}
		estimate, err := CentralDifference(fn.Evaluator(), x, h)
		if err != nil {
			return nil, err
		}
		rows = append(rows, SweepRow{Step: h, Estimate: estimate, AbsoluteError: AbsoluteError(estimate, exact)})
	}
	return rows, nil
}

// SweepStatus is Sweep folded into a SweepResponse.
func (c *Calculator) SweepStatus(ctx context.Context, req SweepRequest) SweepResponse {
	rows, err := c.Sweep(ctx, req.Input, req.Steps)
	switch {
	case err == nil:
		return SweepResponse{Status: StatusOK, Rows: rows}
	case errors.Is(err, ErrNeedsInput):
		return SweepResponse{Status: StatusNeedsInput, Message: needsInputPrompt(req.Input)}
	}
	return SweepResponse{Status: StatusError, Message: err.Error()}
}

// prepare checks required fields, then parses the function and resolves the point.
func (c *Calculator) prepare(ctx context.Context, in Input) (*FunctionExpression, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if strings.TrimSpace(in.Function) == "" {
		return nil, 0, &PreconditionError{Field: "function", Reason: "is required", Missing: true}
	}
	if strings.TrimSpace(in.Point) == "" {
		return nil, 0, &PreconditionError{Field: "point", Reason: "is required", Missing: true}
	}
	if in.Step == 0 || math.IsNaN(in.Step) {
		return nil, 0, &PreconditionError{Field: "step size", Reason: "is required", Missing: true}
	}
	fn, err := parseFunction(in.Function, c.opts.MaxInputLength)
	if err != nil {
		return nil, 0, err
	}
	x, err := resolvePoint(in.Point, in.Unit, c.opts.MaxInputLength)
	if err != nil {
		return nil, 0, err
	}
	return fn, x, nil
}

func needsInputPrompt(in Input) string {
	if strings.TrimSpace(in.Function) == "" || strings.TrimSpace(in.Point) == "" {
		return promptNeedsInput
	}
	return promptNeedsStep
}

package diffcalc

import (
	"errors"
	"math"
)

var errNotFinite = errors.New("result is not a finite real number")

// ExactDerivative differentiates fn symbolically and evaluates the result
// at x. It also returns the derivative expression for display.
func ExactDerivative(fn *FunctionExpression, x float64) (float64, *FunctionExpression, error) {
	d := fn.Derivative()
	v, err := d.Eval(x)
	if err != nil {
		return 0, d, &EvaluationError{Stage: "exact derivative", Err: err}
	}
	return v, d, nil
}

// AbsoluteError returns |estimate - exact|.
func AbsoluteError(estimate, exact float64) float64 {
	return math.Abs(estimate - exact)
}

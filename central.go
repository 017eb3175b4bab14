package diffcalc

import "math"

// CentralDifference estimates f'(x) as (f(x+h) - f(x-h)) / (2h).
//
// The truncation error is O(h²). Shrinking h lowers it until floating-point
// cancellation in the numerator takes over; h is never tuned here.
func CentralDifference(f Func, x, h float64) (float64, error) {
	if err := checkStep(h); err != nil {
		return 0, err
	}
	fp, err := f(x + h)
	if err != nil {
		return 0, &EvaluationError{Stage: "central difference", Err: err}
	}
	fm, err := f(x - h)
	if err != nil {
		return 0, &EvaluationError{Stage: "central difference", Err: err}
	}
	d := (fp - fm) / (2 * h)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, &EvaluationError{Stage: "central difference", Err: errNotFinite}
	}
	return d, nil
}

func checkStep(h float64) error {
	switch {
	case h == 0 || math.IsNaN(h):
		return &PreconditionError{Field: "step size", Reason: "is required", Missing: true}
	case h < 0 || math.IsInf(h, 0):
		return &PreconditionError{Field: "step size", Reason: "must be a positive finite number"}
	}
	return nil
}

package diffcalc

import (
	"errors"
	"fmt"
)

// ErrNeedsInput marks a request that is missing required input. It is a
// prompt for the user, not a failure of the computation.
var ErrNeedsInput = errors.New("needs input")

// ParseError reports text that does not form a valid expression.
type ParseError struct {
	Field string // "function" or "point"
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EvaluationError reports a valid expression that is undefined where it had
// to be evaluated (domain errors, division by zero, non-real results).
type EvaluationError struct {
	Stage string // "point", "function", "central difference", "exact derivative"
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %s: %v", e.Stage, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// PreconditionError reports an input that is missing or out of range before
// any evaluation happens. errors.Is(err, ErrNeedsInput) holds when the input
// is merely absent.
type PreconditionError struct {
	Field   string
	Reason  string
	Missing bool
}

func (e *PreconditionError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *PreconditionError) Unwrap() error {
	if e.Missing {
		return ErrNeedsInput
	}
	return nil
}

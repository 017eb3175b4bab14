package diffcalc

import (
	"fmt"
	"math"
	"strings"

	"github.com/njchilds90/diffcalc/parser"
	"github.com/njchilds90/diffcalc/symbolic"
)

// Unit is the angular unit the evaluation point is written in.
type Unit int

const (
	Radians Unit = iota
	Degrees
)

func (u Unit) String() string {
	if u == Degrees {
		return "degrees"
	}
	return "radians"
}

// ParseUnit accepts "radians"/"rad" and "degrees"/"deg", case-insensitively.
// The empty string means Radians.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "radians", "radian", "rad":
		return Radians, nil
	case "degrees", "degree", "deg":
		return Degrees, nil
	}
	return Radians, fmt.Errorf("unknown unit %q (want radians or degrees)", s)
}

func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ResolvePoint evaluates text, which may use pi and arithmetic, to a point in
// radians. Degrees are converted here, once, as value*π/180.
func ResolvePoint(text string, unit Unit) (float64, error) {
	return resolvePoint(text, unit, parser.DefaultMaxInputLength)
}

func resolvePoint(text string, unit Unit, maxLen int) (float64, error) {
	expr, err := parser.New(parser.Options{MaxInputLength: maxLen}).Parse(text)
	if err != nil {
		return 0, &ParseError{Field: "point", Input: text, Err: err}
	}
	v, err := symbolic.Evaluate(expr, "", 0)
	if err != nil {
		return 0, &EvaluationError{Stage: "point", Err: err}
	}
	if unit == Degrees {
		v = v * math.Pi / 180
	}
	return v, nil
}

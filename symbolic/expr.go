// Package symbolic is the exact-rational expression kernel behind diffcalc.
//
// Design goals:
//   - Immutable expression trees (Num, Sym, Const, Add, Mul, Pow, Func)
//   - Exact rational coefficients (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Symbolic differentiation plus float64 evaluation with domain checks
//   - Plain-text, LaTeX and JSON renderings
package symbolic

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Equal(other Expr) bool
	eval(varName string, x float64) (float64, error)
	exprType() string
	toJSON() map[string]interface{}
}

// EvalError reports that an expression has no real value at the requested point.
type EvalError struct {
	Expr   string
	Var    string
	At     float64
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s is undefined at %s = %g: %s", e.Expr, e.Var, e.At, e.Reason)
}

func undefined(e Expr, varName string, x float64, reason string) error {
	return &EvalError{Expr: e.String(), Var: varName, At: x, Reason: reason}
}

// checkFinite rejects NaN and ±Inf produced by a node.
func checkFinite(e Expr, varName string, x, v float64) (float64, error) {
	switch {
	case math.IsNaN(v):
		return 0, undefined(e, varName, x, "result is not a real number")
	case math.IsInf(v, 0):
		return 0, undefined(e, varName, x, "result is infinite")
	}
	return v, nil
}

// ============================================================
// Num - exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// ParseNum reads a decimal literal such as "3", "0.25" or "1.5e-3" exactly.
func ParseNum(s string) (*Num, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return &Num{val: r}, true
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

func (n *Num) eval(string, float64) (float64, error) { return n.Float64(), nil }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numAbs(a *Num) *Num {
	if a.IsNegative() {
		return numNeg(a)
	}
	return a
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// ============================================================
// Sym - symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}
func (s *Sym) eval(varName string, x float64) (float64, error) {
	if s.name != varName {
		return 0, undefined(s, varName, x, "unbound symbol "+s.name)
	}
	return x, nil
}

// ============================================================
// Const - named real constant
// ============================================================

type Const struct {
	name  string
	latex string
	value float64
}

var (
	Pi = &Const{name: "pi", latex: `\pi`, value: math.Pi}
	E  = &Const{name: "e", latex: "e", value: math.E}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Value() float64        { return c.value }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}
func (c *Const) eval(string, float64) (float64, error) { return c.value, nil }

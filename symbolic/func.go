package symbolic

import "math"

// ============================================================
// Func - named function applications
// ============================================================

type Func struct {
	name      string
	arg       Expr
	canonical bool
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }
func SignOf(arg Expr) Expr { return funcOf("sign", arg).Simplify() }

// Simplify folds exact identities only (sin(0), ln(1), ln(e), exp(ln(u)) …).
// Numeric arguments otherwise stay symbolic so that output remains exact.
func (f *Func) Simplify() Expr {
	if f.canonical {
		return f
	}
	arg := f.arg.Simplify()
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos", "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 2 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				return MulOf(numAbs(coeff), AbsOf(MulOf(m.factors[1:]...)))
			}
		}
	case "sign":
		if n, ok := arg.(*Num); ok {
			switch {
			case n.IsPositive():
				return N(1)
			case n.IsNegative():
				return N(-1)
			default:
				return N(0)
			}
		}
	}
	return &Func{name: f.name, arg: arg, canonical: true}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

// derivatives maps a function name to g'(u).
var derivatives = map[string]func(u Expr) Expr{
	"sin":  CosOf,
	"cos":  func(u Expr) Expr { return MulOf(N(-1), SinOf(u)) },
	"tan":  func(u Expr) Expr { return AddOf(N(1), PowOf(TanOf(u), N(2))) },
	"exp":  ExpOf,
	"ln":   func(u Expr) Expr { return PowOf(u, N(-1)) },
	"asin": func(u Expr) Expr { return PowOf(oneMinusSquare(u), F(-1, 2)) },
	"acos": func(u Expr) Expr { return MulOf(N(-1), PowOf(oneMinusSquare(u), F(-1, 2))) },
	"atan": func(u Expr) Expr { return PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1)) },
	"sinh": CoshOf,
	"cosh": SinhOf,
	"tanh": func(u Expr) Expr { return oneMinusSquare(TanhOf(u)) },
	"abs":  SignOf,
	"sign": func(Expr) Expr { return N(0) },
}

func oneMinusSquare(u Expr) Expr {
	return AddOf(N(1), MulOf(N(-1), PowOf(u, N(2))))
}

// Diff applies the chain rule: d/dx g(u) = g'(u)*u'. Names without a known
// derivative produce an opaque D[name](u) factor.
func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	outer, ok := derivatives[f.name]
	if !ok {
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer(f.arg), du)
}

func (f *Func) eval(varName string, x float64) (float64, error) {
	v, err := f.arg.eval(varName, x)
	if err != nil {
		return 0, err
	}
	var r float64
	switch f.name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "ln":
		if v <= 0 {
			return 0, undefined(f, varName, x, "logarithm of a non-positive number")
		}
		r = math.Log(v)
	case "abs":
		r = math.Abs(v)
	case "asin", "acos":
		if v < -1 || v > 1 {
			return 0, undefined(f, varName, x, "argument outside [-1, 1]")
		}
		if f.name == "asin" {
			r = math.Asin(v)
		} else {
			r = math.Acos(v)
		}
	case "atan":
		r = math.Atan(v)
	case "sinh":
		r = math.Sinh(v)
	case "cosh":
		r = math.Cosh(v)
	case "tanh":
		r = math.Tanh(v)
	case "sign":
		switch {
		case v > 0:
			r = 1
		case v < 0:
			r = -1
		}
	default:
		return 0, undefined(f, varName, x, "unknown function "+f.name)
	}
	return checkFinite(f, varName, x, r)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

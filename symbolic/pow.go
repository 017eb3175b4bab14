package symbolic

import "math"

// ============================================================
// Pow - base^exponent
// ============================================================

type Pow struct {
	base, exp Expr
	canonical bool
}

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	if p.canonical {
		return p
	}
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok && en.IsZero() {
		return N(1)
	}
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}

	// A literal zero exponent has already folded to 1 above, 0^0 included.
	// 0^negative divides by zero and stays unevaluated so that evaluation
	// reports it.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 && en.IsPositive() {
			return N(0)
		}
		return &Pow{base: base, exp: exp, canonical: true}
	}

	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if bn, ok := base.(*Num); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() && en.val.Num().IsInt64() {
			e := en.val.Num().Int64()
			if e >= -20 && e <= 20 {
				result := N(1)
				for i := int64(0); i < abs64(e); i++ {
					result = numMul(result, bn)
				}
				if e < 0 {
					return numRecip(result)
				}
				return result
			}
		}
	}
	// (b^m)^n = b^(m*n) holds for every real b only when n is an integer.
	if inner, ok := base.(*Pow); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	return &Pow{base: base, exp: exp, canonical: true}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func (p *Pow) String() string {
	return wrapBase(p.base, p.base.String(), "(", ")") + "^" + wrapExp(p.exp, p.exp.String(), "(", ")")
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		switch {
		case en.Equal(F(1, 2)):
			return "\\sqrt{" + p.base.LaTeX() + "}"
		case en.IsNegative():
			return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
		}
	}
	return wrapBase(p.base, p.base.LaTeX(), "\\left(", "\\right)") + "^{" + p.exp.LaTeX() + "}"
}

func wrapBase(base Expr, s, open, close string) string {
	switch v := base.(type) {
	case *Add, *Mul, *Pow:
		return open + s + close
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return open + s + close
		}
	}
	return s
}

// wrapExp parenthesizes exponents that would otherwise re-parse with the
// wrong precedence, e.g. x^(1/2) rather than x^1/2.
func wrapExp(exp Expr, s, open, close string) string {
	switch v := exp.(type) {
	case *Add, *Mul, *Pow:
		return open + s + close
	case *Num:
		if !v.IsInteger() {
			return open + s + close
		}
	}
	return s
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	baseDep := dependsOn(p.base, varName)
	expDep := dependsOn(p.exp, varName)
	switch {
	case !baseDep && !expDep:
		return N(0)
	case !expDep:
		// d/dx u^n = n*u^(n-1)*u'
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), p.base.Diff(varName))
	case !baseDep:
		// d/dx a^v = a^v*ln(a)*v'
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), p.exp.Diff(varName))
	}
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) eval(varName string, x float64) (float64, error) {
	b, err := p.base.eval(varName, x)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.eval(varName, x)
	if err != nil {
		return 0, err
	}
	switch {
	case b == 0 && e < 0:
		return 0, undefined(p, varName, x, "division by zero")
	case b == 0 && e == 0:
		return 0, undefined(p, varName, x, "0^0 is indeterminate")
	case b < 0 && e != math.Trunc(e):
		return 0, undefined(p, varName, x, "negative base with non-integer exponent")
	}
	return checkFinite(p, varName, x, math.Pow(b, e))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Mul - product of factors
// ============================================================

type Mul struct {
	factors   []Expr
	canonical bool
}

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient to the
// front and merges factors sharing a base by adding their exponents
// (x*x^2 → x^3, x*x^-1 → 1). Remaining factors are sorted by their string
// form.
func (m *Mul) Simplify() Expr {
	if m.canonical {
		return m
	}
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type group struct {
		base Expr
		exps []Expr
	}
	coeff := N(1)
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	regroup := false
	for _, key := range order {
		g := groups[key]
		var merged Expr
		switch {
		case len(g.exps) == 1 && isNumEqual(g.exps[0], 1):
			merged = g.base
		case len(g.exps) == 1:
			merged = PowOf(g.base, g.exps[0])
		default:
			merged = PowOf(g.base, AddOf(g.exps...))
		}
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			regroup = true
			others = append(others, v.factors...)
		default:
			others = append(others, merged)
		}
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted, canonical: true}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...), canonical: true}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	factors := m.factors
	prefix := ""
	if c, ok := factors[0].(*Num); ok && c.IsNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return prefix + strings.Join(parts, "*")
}

// LaTeX moves factors with a negative numeric exponent, and the
// coefficient's denominator, under a \frac.
func (m *Mul) LaTeX() string {
	coeff := N(1)
	var numer, denom []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff = v
			continue
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsNegative() {
				denom = append(denom, factorLaTeX(PowOf(v.base, numNeg(en))))
				continue
			}
		}
		numer = append(numer, factorLaTeX(f))
	}

	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	r := coeff.val
	if r.Num().String() != "1" || len(numer) == 0 {
		numer = append([]string{r.Num().String()}, numer...)
	}
	if !r.IsInt() {
		denom = append([]string{r.Denom().String()}, denom...)
	}
	if len(denom) == 0 {
		return sign + strings.Join(numer, " ")
	}
	return sign + "\\frac{" + strings.Join(numer, " ") + "}{" + strings.Join(denom, " ") + "}"
}

func factorLaTeX(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "\\left(" + f.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

// Diff applies the product rule over all factors.
func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) eval(varName string, x float64) (float64, error) {
	acc := 1.0
	for _, f := range m.factors {
		v, err := f.eval(varName, x)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return checkFinite(m, varName, x, acc)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

package symbolic

import "strings"

// ============================================================
// Add - sum of terms
// ============================================================

// Add, Mul, Pow and Func carry a canonical flag set by Simplify. Simplify
// on a canonical node returns it unchanged, so constructors only do the
// work for the node they build.
type Add struct {
	terms     []Expr
	canonical bool
}

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numeric terms and merges like terms
// (terms equal up to their rational coefficient). Terms keep the order in
// which they first appear; the numeric constant goes last.
func (a *Add) Simplify() Expr {
	if a.canonical {
		return a
	}
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		coeff := coeffs[key]
		switch {
		case coeff.IsZero():
		case coeff.IsOne():
			result = append(result, rests[key])
		default:
			result = append(result, MulOf(coeff, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result, canonical: true}
}

func (a *Add) String() string {
	return a.join(func(e Expr) string { return e.String() })
}

func (a *Add) LaTeX() string {
	return a.join(func(e Expr) string { return e.LaTeX() })
}

// join renders the sum, turning "+ -t" into "- t".
func (a *Add) join(render func(Expr) string) string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			sb.WriteString(render(t))
		case isNegativeTerm(t):
			sb.WriteString(" - ")
			sb.WriteString(render(negate(t)))
		default:
			sb.WriteString(" + ")
			sb.WriteString(render(t))
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) eval(varName string, x float64) (float64, error) {
	acc := 0.0
	for _, t := range a.terms {
		v, err := t.eval(varName, x)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return checkFinite(a, varName, x, acc)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// extractCoefficient splits c*rest into (c, rest); other terms get c = 1.
func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

func isNegativeTerm(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c.IsNegative()
		}
	}
	return false
}

func negate(e Expr) Expr {
	if n, ok := e.(*Num); ok {
		return numNeg(n)
	}
	return MulOf(N(-1), e)
}

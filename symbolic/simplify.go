package symbolic

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies sin²(u)+cos²(u)=1 throughout e.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return MulOf(newFactors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	}
	return e
}

// trigFindPythagorean replaces one pair c*sin(u)^2 + c*cos(u)^2 in a sum
// by c. Terms are matched on the same key Add uses for like terms: the
// string form of u, with the coefficient split off by extractCoefficient.
func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	// seen maps "sin|u" or "cos|u" to the index of the first such term.
	seen := map[string]int{}
	for i, t := range add.terms {
		coeff, rest := extractCoefficient(t)
		name, arg, ok := squaredTrig(rest)
		if !ok {
			continue
		}
		partner := "cos"
		if name == "cos" {
			partner = "sin"
		}
		j, found := seen[partner+"|"+arg]
		if found {
			if c, _ := extractCoefficient(add.terms[j]); numCmp(c, coeff) == 0 {
				terms := make([]Expr, 0, len(add.terms)-1)
				for k, other := range add.terms {
					if k != i && k != j {
						terms = append(terms, other)
					}
				}
				return AddOf(append(terms, coeff)...)
			}
		}
		if _, dup := seen[name+"|"+arg]; !dup {
			seen[name+"|"+arg] = i
		}
	}
	return e
}

// squaredTrig recognises sin(u)^2 and cos(u)^2.
func squaredTrig(e Expr) (name, arg string, ok bool) {
	p, isPow := e.(*Pow)
	if !isPow || !isNumEqual(p.exp, 2) {
		return "", "", false
	}
	fn, isFunc := p.base.(*Func)
	if !isFunc || (fn.name != "sin" && fn.name != "cos") {
		return "", "", false
	}
	return fn.name, fn.arg.String(), true
}

// DeepSimplify applies repeated simplification+trig passes until stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr)
	}
	return curr
}

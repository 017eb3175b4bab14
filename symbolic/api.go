package symbolic

import "encoding/json"

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// Diff returns the simplified first derivative of expr with respect to varName.
func Diff(expr Expr, varName string) Expr {
	return DeepSimplify(expr.Diff(varName))
}

// Evaluate computes expr at varName = x. Any other free symbol, and any
// point where the expression has no finite real value, yields an *EvalError.
func Evaluate(expr Expr, varName string, x float64) (float64, error) {
	return expr.eval(varName, x)
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

func dependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Tree returns the JSON-ready tree form of e.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

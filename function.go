package diffcalc

import (
	"github.com/njchilds90/diffcalc/parser"
	"github.com/njchilds90/diffcalc/symbolic"
)

// Variable is the name of the single free variable in a function.
const Variable = "x"

// Func is a numeric evaluator f(x) that reports points where f is undefined.
type Func func(x float64) (float64, error)

// FunctionExpression is a parsed f(x). It is immutable.
type FunctionExpression struct {
	text string
	expr symbolic.Expr
}

// ParseFunction parses text as an expression in x.
func ParseFunction(text string) (*FunctionExpression, error) {
	return parseFunction(text, parser.DefaultMaxInputLength)
}

func parseFunction(text string, maxLen int) (*FunctionExpression, error) {
	expr, err := parser.New(parser.Options{Variable: Variable, MaxInputLength: maxLen}).Parse(text)
	if err != nil {
		return nil, &ParseError{Field: "function", Input: text, Err: err}
	}
	return &FunctionExpression{text: text, expr: expr}, nil
}

func (f *FunctionExpression) Expr() symbolic.Expr { return f.expr }
func (f *FunctionExpression) Text() string        { return f.text }
func (f *FunctionExpression) String() string      { return f.expr.String() }
func (f *FunctionExpression) LaTeX() string       { return f.expr.LaTeX() }

// Eval evaluates f at x. Failures are *symbolic.EvalError.
func (f *FunctionExpression) Eval(x float64) (float64, error) {
	return symbolic.Evaluate(f.expr, Variable, x)
}

// Evaluator returns Eval as a Func.
func (f *FunctionExpression) Evaluator() Func { return f.Eval }

// Derivative returns the symbolic derivative d/dx f.
func (f *FunctionExpression) Derivative() *FunctionExpression {
	d := symbolic.Diff(f.expr, Variable)
	return &FunctionExpression{text: d.String(), expr: d}
}

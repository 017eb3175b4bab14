// Package parser turns expression text into symbolic expressions.
//
// The grammar is deliberately small: arithmetic, a fixed allow-list of
// elementary functions, the constants pi and e, and at most one free
// variable. Nothing outside the grammar is ever evaluated.
//
//	expr    := term (("+" | "-") term)*
//	term    := unary (("*" | "/") unary)*
//	unary   := ("+" | "-") unary | power
//	power   := primary (("^" | "**") unary)?
//	primary := number | constant | variable | func "(" args ")" | "(" expr ")"
package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/njchilds90/diffcalc/symbolic"
)

// DefaultMaxInputLength bounds the accepted input size in bytes.
const DefaultMaxInputLength = 512

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty expression")

// Error is a parse failure with the byte offset where it was detected.
type Error struct {
	Input    string
	Position int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position+1, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

var functions = map[string]func(symbolic.Expr) symbolic.Expr{
	"sin":    symbolic.SinOf,
	"cos":    symbolic.CosOf,
	"tan":    symbolic.TanOf,
	"asin":   symbolic.AsinOf,
	"arcsin": symbolic.AsinOf,
	"acos":   symbolic.AcosOf,
	"arccos": symbolic.AcosOf,
	"atan":   symbolic.AtanOf,
	"arctan": symbolic.AtanOf,
	"sinh":   symbolic.SinhOf,
	"cosh":   symbolic.CoshOf,
	"tanh":   symbolic.TanhOf,
	"exp":    symbolic.ExpOf,
	"log":    symbolic.LnOf,
	"ln":     symbolic.LnOf,
	"sqrt":   symbolic.SqrtOf,
	"abs":    symbolic.AbsOf,
	"sign":   symbolic.SignOf,
}

var constants = map[string]symbolic.Expr{
	"pi": symbolic.Pi,
	"π":  symbolic.Pi,
	"e":  symbolic.E,
	"E":  symbolic.E,
}

// Functions lists the accepted function names in sorted order.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options configures parser behavior
type Options struct {
	// Variable is the only free symbol allowed; empty means none.
	Variable       string
	MaxInputLength int
}

// Parser is a recursive-descent parser. It is not safe for concurrent use;
// create one per goroutine or use the package-level helpers.
type Parser struct {
	lexer   *Lexer
	input   string
	current Token
	options Options
}

func New(opts Options) *Parser {
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	return &Parser{options: opts}
}

// ParseFunction parses text as a function of the single variable x.
func ParseFunction(text string) (symbolic.Expr, error) {
	return New(Options{Variable: "x"}).Parse(text)
}

// ParsePoint parses text as a constant expression (no free variable).
func ParsePoint(text string) (symbolic.Expr, error) {
	return New(Options{}).Parse(text)
}

// Parse parses a complete expression; trailing tokens are an error.
func (p *Parser) Parse(input string) (symbolic.Expr, error) {
	if len(input) > p.options.MaxInputLength {
		return nil, &Error{Input: input, Position: p.options.MaxInputLength,
			Message: fmt.Sprintf("input exceeds maximum length: %d > %d", len(input), p.options.MaxInputLength)}
	}
	if strings.TrimSpace(input) == "" {
		return nil, &Error{Input: input, Message: ErrEmpty.Error(), Err: ErrEmpty}
	}

	p.input = input
	p.lexer = NewLexer(input)
	p.advance()

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	switch p.current.Type {
	case TokenEOF:
	case TokenRParen:
		return nil, p.errorf("unbalanced parentheses: unexpected ')'")
	default:
		return nil, p.errorf("unexpected %s after expression", p.current)
	}
	return expr, nil
}

func (p *Parser) advance() {
	p.current = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &Error{Input: p.input, Position: p.current.Position, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseExpression() (symbolic.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenPlus || p.current.Type == TokenMinus {
		op := p.current.Type
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == TokenMinus {
			right = symbolic.MulOf(symbolic.N(-1), right)
		}
		left = symbolic.AddOf(left, right)
	}
	return left, nil
}

func (p *Parser) parseTerm() (symbolic.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenStar || p.current.Type == TokenSlash {
		op := p.current.Type
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == TokenSlash {
			right = symbolic.PowOf(right, symbolic.N(-1))
		}
		left = symbolic.MulOf(left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (symbolic.Expr, error) {
	switch p.current.Type {
	case TokenPlus:
		p.advance()
		return p.parseUnary()
	case TokenMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symbolic.MulOf(symbolic.N(-1), operand), nil
	}
	return p.parsePower()
}

// parsePower binds tighter than unary minus on its left (-x^2 = -(x^2))
// and is right-associative (2^3^2 = 2^9).
func (p *Parser) parsePower() (symbolic.Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenCaret {
		return base, nil
	}
	p.advance()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return symbolic.PowOf(base, exp), nil
}

func (p *Parser) parsePrimary() (symbolic.Expr, error) {
	tok := p.current
	switch tok.Type {
	case TokenNumber:
		n, ok := symbolic.ParseNum(tok.Value)
		if !ok {
			return nil, p.errorf("invalid number %q", tok.Value)
		}
		p.advance()
		return n, nil

	case TokenIdentifier:
		p.advance()
		return p.parseIdentifier(tok)

	case TokenLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, p.errorf("unbalanced parentheses: expected ')' but found %s", p.current)
		}
		p.advance()
		return inner, nil

	case TokenRParen:
		return nil, p.errorf("unbalanced parentheses: unexpected ')'")
	case TokenEOF:
		return nil, p.errorf("unexpected end of input")
	case TokenIllegal:
		return nil, p.errorf("illegal character %q", tok.Value)
	}
	return nil, p.errorf("unexpected %s", tok)
}

func (p *Parser) parseIdentifier(tok Token) (symbolic.Expr, error) {
	name := tok.Value
	if fn, ok := functions[name]; ok {
		if p.current.Type != TokenLParen {
			return nil, &Error{Input: p.input, Position: tok.Position,
				Message: fmt.Sprintf("function %q must be called with parentheses", name)}
		}
		return p.parseCall(name, fn)
	}
	if p.current.Type == TokenLParen {
		return nil, &Error{Input: p.input, Position: tok.Position,
			Message: fmt.Sprintf("unknown function %q", name)}
	}
	if name == p.options.Variable {
		return symbolic.S(name), nil
	}
	if c, ok := constants[name]; ok {
		return c, nil
	}
	return nil, &Error{Input: p.input, Position: tok.Position,
		Message: fmt.Sprintf("unknown symbol %q", name)}
}

// parseCall parses "(" expr ")" after a function name. log also accepts a
// second argument, the base: log(x, b) = ln(x)/ln(b).
func (p *Parser) parseCall(name string, fn func(symbolic.Expr) symbolic.Expr) (symbolic.Expr, error) {
	p.advance()
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	var result symbolic.Expr = fn(arg)
	if p.current.Type == TokenComma {
		if name != "log" {
			return nil, p.errorf("function %q takes one argument", name)
		}
		p.advance()
		base, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		result = symbolic.MulOf(result, symbolic.PowOf(symbolic.LnOf(base), symbolic.N(-1)))
	}
	if p.current.Type != TokenRParen {
		return nil, p.errorf("unbalanced parentheses: expected ')' but found %s", p.current)
	}
	p.advance()
	return result, nil
}

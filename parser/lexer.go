package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenNumber     // 2, 0.5, 1e-3
	TokenIdentifier // x, sin, pi, np.cos

	TokenPlus   // +
	TokenMinus  // -
	TokenStar   // *
	TokenSlash  // /
	TokenCaret  // ^ or **
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,
)

func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "end of input"
	case TokenIllegal:
		return "illegal character"
	case TokenNumber:
		return "number"
	case TokenIdentifier:
		return "identifier"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenCaret:
		return "'^'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	}
	return fmt.Sprintf("token(%d)", int(tt))
}

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

// namespacePrefixes are accepted in front of names so that input written
// for numpy or the math module ("np.sin(x)") still parses.
var namespacePrefixes = []string{"numpy.", "np.", "math.", "sympy."}

// Lexer splits expression text into tokens.
type Lexer struct {
	input string
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Position: start}
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	switch {
	case r == '+':
		l.pos += size
		return Token{Type: TokenPlus, Value: "+", Position: start}
	case r == '-':
		l.pos += size
		return Token{Type: TokenMinus, Value: "-", Position: start}
	case r == '*':
		l.pos += size
		if l.peekByte() == '*' {
			l.pos++
			return Token{Type: TokenCaret, Value: "**", Position: start}
		}
		return Token{Type: TokenStar, Value: "*", Position: start}
	case r == '/':
		l.pos += size
		return Token{Type: TokenSlash, Value: "/", Position: start}
	case r == '^':
		l.pos += size
		return Token{Type: TokenCaret, Value: "^", Position: start}
	case r == '(':
		l.pos += size
		return Token{Type: TokenLParen, Value: "(", Position: start}
	case r == ')':
		l.pos += size
		return Token{Type: TokenRParen, Value: ")", Position: start}
	case r == ',':
		l.pos += size
		return Token{Type: TokenComma, Value: ",", Position: start}
	case isDigit(r) || (r == '.' && isDigit(l.runeAt(l.pos+1))):
		return Token{Type: TokenNumber, Value: l.readNumber(), Position: start}
	case isLetter(r):
		return Token{Type: TokenIdentifier, Value: l.readIdentifier(), Position: start}
	}
	l.pos += size
	return Token{Type: TokenIllegal, Value: string(r), Position: start}
}

// Tokenize returns all tokens from the input as a slice
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		switch tok.Type {
		case TokenEOF:
			return tokens, nil
		case TokenIllegal:
			return tokens, fmt.Errorf("illegal character %q at position %d", tok.Value, tok.Position+1)
		}
	}
}

func (l *Lexer) readNumber() string {
	start := l.pos
	l.readDigits()
	if l.peekByte() == '.' {
		l.pos++
		l.readDigits()
	}
	// An exponent needs at least one digit; "2e" leaves the e for the next token.
	if c := l.peekByte(); c == 'e' || c == 'E' {
		next := l.pos + 1
		if next < len(l.input) && (l.input[next] == '+' || l.input[next] == '-') {
			next++
		}
		if next < len(l.input) && l.input[next] >= '0' && l.input[next] <= '9' {
			l.pos = next
			l.readDigits()
		}
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readDigits() {
	for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
		l.pos++
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isLetter(r) && !isDigit(r) && r != '.' {
			break
		}
		l.pos += size
	}
	ident := l.input[start:l.pos]
	for _, prefix := range namespacePrefixes {
		if strings.HasPrefix(ident, prefix) && len(ident) > len(prefix) {
			return ident[len(prefix):]
		}
	}
	return ident
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) runeAt(pos int) rune {
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

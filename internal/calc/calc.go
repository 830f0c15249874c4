// Package calc evaluates arithmetic expressions over named variables.
//
// Supported syntax: decimal numbers, variables, + - * / %, unary signs,
// parentheses, and implicit multiplication of a number followed by a
// variable or a parenthesized group ("2h", "3(w+1)").
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// Sentinel errors for evaluation.
var (
	ErrSyntax          = errors.New("syntax error")
	ErrUndefined       = errors.New("undefined variable")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrEmptyExpression = errors.New("empty expression")
)

// Calculator holds variable bindings and evaluates expressions against them.
// The zero value is ready to use.
type Calculator struct {
	vars map[string]float64
}

// New creates a calculator with no variables.
func New() *Calculator {
	return &Calculator{vars: make(map[string]float64)}
}

// SetVariable binds name to v, replacing any previous value.
func (c *Calculator) SetVariable(name string, v float64) {
	if c.vars == nil {
		c.vars = make(map[string]float64)
	}
	c.vars[name] = v
}

// Variable returns the value bound to name.
func (c *Calculator) Variable(name string) (float64, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Eval evaluates expr and returns its value.
func (c *Calculator) Eval(expr string) (float64, error) {
	p := &parser{src: expr, vars: c.vars}
	p.skipSpace()
	if p.eof() {
		return 0, ErrEmptyExpression
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.eof() {
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, p.src[p.pos:], p.pos)
	}
	return v, nil
}

type parser struct {
	src  string
	pos  int
	vars map[string]float64
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// expr := term (('+'|'-') term)*
func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

// term := factor (('*'|'/'|'%') factor)*
func (p *parser) term() (float64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return v, nil
		}
		p.pos++
		rhs, err := p.factor()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			v *= rhs
		case '/':
			if rhs == 0 {
				return 0, ErrDivisionByZero
			}
			v /= rhs
		case '%':
			if rhs == 0 {
				return 0, ErrDivisionByZero
			}
			v = math.Mod(v, rhs)
		}
	}
}

// factor := ('+'|'-') factor | primary
func (p *parser) factor() (float64, error) {
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.factor()
		return -v, err
	case '+':
		p.pos++
		return p.factor()
	}
	return p.primary()
}

// primary := number [primary] | name | '(' expr ')'
func (p *parser) primary() (float64, error) {
	p.skipSpace()
	switch ch := p.peek(); {
	case ch == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing ')' at offset %d", ErrSyntax, p.pos)
		}
		p.pos++
		return v, nil
	case isDigit(ch) || ch == '.':
		v, err := p.number()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if next := p.peek(); next == '(' || isNameStart(next) {
			rhs, err := p.primary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		}
		return v, nil
	case isNameStart(ch):
		name := p.name()
		v, ok := p.vars[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUndefined, name)
		}
		return v, nil
	case ch == 0:
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, ch, p.pos)
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for !p.eof() && (isDigit(p.peek()) || p.peek() == '.') {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q", ErrSyntax, p.src[start:p.pos])
	}
	return v, nil
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() && (isNameStart(p.peek()) || isDigit(p.peek())) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

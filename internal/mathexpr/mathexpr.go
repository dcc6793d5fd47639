// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package mathexpr evaluates arithmetic expressions restricted to numbers,
// the operators + - * /, parentheses, and unary sign.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | primary
//	primary = number | "(" expr ")"
package mathexpr

import (
	"math"
	"strconv"
	"strings"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const (
	maxLength = 256
	maxDepth  = 64
)

// Eval parses and evaluates expr.
func Eval(expr string) (float64, error) {
	if len(expr) > maxLength {
		return 0, invalid("expression longer than %d characters", maxLength)
	}
	p := &parser{src: expr}
	p.skipSpace()
	if p.done() {
		return 0, invalid("empty expression")
	}

	v, err := p.expr(0)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.done() {
		return 0, invalid("unexpected %q at position %d", p.src[p.pos], p.pos+1)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, invalid("result is not a finite number")
	}
	return v, nil
}

// Format renders v the way a calculator would: no exponent for ordinary
// magnitudes and no trailing zeros.
func Format(v float64) string {
	if v == 0 {
		return "0"
	}
	if a := math.Abs(v); a >= 1e21 || a < 1e-6 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.done() && strings.IndexByte(" \t\n\r", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) expr(depth int) (float64, error) {
	left, err := p.term(depth)
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term(depth)
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term(depth int) (float64, error) {
	left, err := p.unary(depth)
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary(depth)
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, invalid("division by zero")
		}
		left /= right
	}
}

func (p *parser) unary(depth int) (float64, error) {
	if depth > maxDepth {
		return 0, invalid("expression nested too deeply")
	}
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary(depth + 1)
		return -v, err
	case '+':
		p.pos++
		return p.unary(depth + 1)
	}
	return p.primary(depth)
}

func (p *parser) primary(depth int) (float64, error) {
	p.skipSpace()
	if p.done() {
		return 0, invalid("unexpected end of expression")
	}

	if p.peek() == '(' {
		p.pos++
		v, err := p.expr(depth + 1)
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, invalid("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	dot := false
	for !p.done() {
		c := p.peek()
		if c == '.' && !dot {
			dot = true
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return 0, invalid("unexpected %q at position %d", p.src[p.pos], p.pos+1)
	}
	lit := p.src[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, invalid("bad number %q", lit)
	}
	return v, nil
}

func invalid(format string, args ...any) error {
	return vorteerr.Errorf(vorteerr.CodeMathExpressionInvalid, format, args...)
}

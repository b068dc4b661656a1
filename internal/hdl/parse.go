// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl parses the compact input lists used to wire elements inside
// combined elements.
//
// An input list is a comma separated list of element outputs:
//
//	outside[0], nor1, adder[0..3]
//
// A bare name refers to output 0, name[i] to output i and name[a..b] expands
// to outputs a through b (inclusive, a may be greater than b).
//
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Token types
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
)

// Type is a token type.
//
type Type int

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Range:        "'..'",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   int
	Value string
}

func (i Item) String() string {
	if i.Type == EOF {
		return i.Type.String()
	}
	return i.Type.String() + " " + strconv.Quote(i.Value)
}

// A Lexer splits an input list into tokens.
//
type Lexer struct {
	input string
	pos   int
}

// NewLexer returns a new lexer for the given input.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) next() (rune, int) {
	if l.pos >= len(l.input) {
		return -1, 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	return r, w
}

// Lex returns the next token. Once the input is exhausted, Lex only returns
// EOF items.
//
func (l *Lexer) Lex() Item {
	for {
		start := l.pos
		r, w := l.next()
		switch {
		case r < 0:
			return Item{EOF, start, ""}
		case unicode.IsSpace(r):
			continue
		case unicode.IsLetter(r) || r == '_':
			for {
				r, w = l.next()
				if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
					l.pos -= w
					break
				}
			}
			return Item{Ident, start, l.input[start:l.pos]}
		case '0' <= r && r <= '9':
			for {
				r, w = l.next()
				if r < '0' || r > '9' {
					l.pos -= w
					break
				}
			}
			return Item{Int, start, l.input[start:l.pos]}
		case r == '[':
			return Item{BracketOpen, start, "["}
		case r == ']':
			return Item{BracketClose, start, "]"}
		case r == ',':
			return Item{Comma, start, ","}
		case r == '.':
			n, nw := l.next()
			if n == '.' {
				return Item{Range, start, ".."}
			}
			l.pos -= nw
		}
		return Item{Raw, start, l.input[start : start+w]}
	}
}

// MaxRange is the maximum number of outputs a single range may expand to.
//
const MaxRange = 1 << 16

// Output is one element output reference.
//
type Output struct {
	Name  string
	Index int
	Pos   int
}

// Parse parses an input list and returns the expanded list of outputs.
//
func Parse(input string) ([]Output, error) {
	var out []Output
	l := NewLexer(input)
	i := l.Lex()
	if i.Type == EOF {
		return nil, nil
	}
	for {
		if i.Type != Ident {
			return nil, parseError(input, i, "expected element name")
		}
		name, pos := i.Value, i.Pos
		i = l.Lex()
		if i.Type == BracketOpen {
			start, err := parseInt(input, l.Lex())
			if err != nil {
				return nil, err
			}
			end := start
			i = l.Lex()
			if i.Type == Range {
				ei := l.Lex()
				if end, err = parseInt(input, ei); err != nil {
					return nil, err
				}
				if n := end - start; n >= MaxRange || -n >= MaxRange {
					return nil, errors.Errorf("in %q at pos %d: range %d..%d spans more than %d outputs", input, ei.Pos+1, start, end, MaxRange)
				}
				i = l.Lex()
			}
			if i.Type != BracketClose {
				return nil, parseError(input, i, "closing ']' expected after index or range")
			}
			step := 1
			if end < start {
				step = -1
			}
			for n := start; ; n += step {
				out = append(out, Output{name, n, pos})
				if n == end {
					break
				}
			}
			i = l.Lex()
		} else {
			out = append(out, Output{name, 0, pos})
		}
		switch i.Type {
		case EOF:
			return out, nil
		case Comma:
			i = l.Lex()
		default:
			return nil, parseError(input, i, "expected ',' or end of input")
		}
	}
}

func parseInt(input string, i Item) (int, error) {
	if i.Type != Int {
		return 0, parseError(input, i, "integer value expected")
	}
	n, err := strconv.Atoi(i.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "in %q at pos %d", input, i.Pos+1)
	}
	return n, nil
}

func parseError(in string, i Item, msg string) error {
	return errors.Errorf("in %q at pos %d: %s, got %s", in, i.Pos+1, msg, i)
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"fmt"
	"strconv"
	"strings"
)

// A ValueSource is a boolean expression evaluated once per step. It is a
// closed sum type; the variants are:
//
//	Address      value of a cell (non-zero is true)
//	And          conjunction of its operands
//	Or           disjunction of its operands
//	Not          negation of its operand
//	Alternating  periodic source, on while (n+StartOffset) mod (On+Off) < On
//
type ValueSource interface {
	valueSource()
}

func (Address) valueSource()     {}
func (And) valueSource()         {}
func (Or) valueSource()          {}
func (Not) valueSource()         {}
func (Alternating) valueSource() {}

// And is the conjunction of its operands.
//
type And []ValueSource

// Or is the disjunction of its operands.
//
type Or []ValueSource

// Not is the negation of V.
//
type Not struct {
	V ValueSource
}

// Alternating is a periodic value source. It is on during the first On
// steps of each period of On+Off steps, the period being shifted by
// StartOffset.
//
type Alternating struct {
	On          int
	Off         int
	StartOffset int
}

// Mod returns the period of a.
//
func (a Alternating) Mod() int { return a.On + a.Off }

// At returns the value of a at step n.
//
func (a Alternating) At(n int64) bool {
	return (uint64(n)+uint64(a.StartOffset))%uint64(a.Mod()) < uint64(a.On)
}

// A Calculation writes the value of Value into the cell at Target. Calculations
// are built once per circuit. Elements that only know the value source of a
// calculation after all outputs have been allocated (delay wires) may fill in
// Value during ReadInputs.
//
type Calculation struct {
	Target Address
	Value  ValueSource
}

// valueVisitor must be implemented by every consumer of value sources. Adding
// a variant to ValueSource means adding a method here, which in turn breaks
// the build until every evaluator handles it.
type valueVisitor[T any] interface {
	address(Address) T
	and(And) T
	or(Or) T
	not(Not) T
	alternating(Alternating) T
}

// visit dispatches v to the matching visitor method.
func visit[T any](v ValueSource, vv valueVisitor[T]) T {
	switch v := v.(type) {
	case Address:
		return vv.address(v)
	case And:
		return vv.and(v)
	case Or:
		return vv.or(v)
	case Not:
		return vv.not(v)
	case Alternating:
		return vv.alternating(v)
	}
	panic(fmt.Sprintf("vollgas: unexpected value source type %T", v))
}

// lister renders value sources as a C-like expression over the arena d and
// the modulo result table a. It is used for diagnostic listings.
type lister struct {
	l    *Layout
	mods *moduloTable
}

func (p *lister) address(a Address) string {
	if a.IsRotating() {
		i, _ := p.mods.lookup(a.mod, a.start)
		return "d[" + strconv.Itoa(p.l.Offset(a)) + "+a[" + strconv.Itoa(i) + "]]"
	}
	return "d[" + strconv.Itoa(p.l.Offset(a)) + "]"
}

func (p *lister) list(vs []ValueSource, op string) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = "(" + visit[string](v, p) + ")"
	}
	return strings.Join(s, op)
}

func (p *lister) and(v And) string { return p.list(v, " && ") }
func (p *lister) or(v Or) string   { return p.list(v, " || ") }
func (p *lister) not(v Not) string { return "!(" + visit[string](v.V, p) + ")" }

func (p *lister) alternating(v Alternating) string {
	i, _ := p.mods.lookup(v.Mod(), v.StartOffset)
	return "a[" + strconv.Itoa(i) + "] < " + strconv.Itoa(v.On)
}

func (p *lister) calculation(c *Calculation) string {
	s := p.address(c.Target) + " = " + visit[string](c.Value, p) + ";"
	if h := c.Target.Hint(); h != "" {
		s += " // " + h
	}
	return s
}

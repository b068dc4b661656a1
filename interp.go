// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"encoding/binary"
	"math"
)

// Backend names.
//
const (
	BackendAuto        = "auto"
	BackendBytecode    = "bytecode"
	BackendInterpreter = "interpreter"
)

// A backend runs the compiled step program over the arena.
type backend interface {
	name() string
	step(n int)
	close() error
}

// interpreter is the portable backend. Calculations are compiled once into
// closures over the arena.
type interpreter struct {
	d     []byte
	mods  []ModuloOp
	calcs []func()
}

func newInterpreter(d []byte, l *Layout, mods *moduloTable, calcs []*Calculation) *interpreter {
	c := &closureCompiler{d: d, l: l, mods: mods}
	fs := make([]func(), len(calcs))
	for i, calc := range calcs {
		fs[i] = c.calculation(calc)
	}
	return &interpreter{d: d, mods: mods.ops, calcs: fs}
}

func (*interpreter) name() string { return BackendInterpreter }
func (*interpreter) close() error { return nil }

func (it *interpreter) step(count int) {
	d := it.d
	n := int64(binary.LittleEndian.Uint64(d))
	for ; count > 0; count-- {
		n++
		binary.LittleEndian.PutUint64(d, uint64(n))
		for _, m := range it.mods {
			binary.LittleEndian.PutUint32(d[m.Offset():], m.Eval(n))
		}
		for _, f := range it.calcs {
			f()
		}
	}
}

// closureCompiler compiles value sources to closures.
type closureCompiler struct {
	d    []byte
	l    *Layout
	mods *moduloTable
}

// index returns a function computing the absolute offset of the cell
// currently referenced by a.
func (c *closureCompiler) index(a Address) func() int {
	base := c.l.Offset(a)
	if !a.IsRotating() {
		return func() int { return base }
	}
	off := c.mods.op(a.mod, a.start).Offset()
	d := c.d
	return func() int {
		return base + int(binary.LittleEndian.Uint32(d[off:]))
	}
}

func (c *closureCompiler) address(a Address) func() bool {
	d := c.d
	if !a.IsRotating() {
		i := c.l.Offset(a)
		return func() bool { return d[i] != 0 }
	}
	idx := c.index(a)
	return func() bool { return d[idx()] != 0 }
}

func (c *closureCompiler) list(vs []ValueSource) []func() bool {
	fs := make([]func() bool, len(vs))
	for i, v := range vs {
		fs[i] = visit[func() bool](v, c)
	}
	return fs
}

// and evaluates every operand: no short-circuit, like the bytecode version.
func (c *closureCompiler) and(v And) func() bool {
	fs := c.list(v)
	return func() bool {
		r := true
		for _, f := range fs {
			r = f() && r
		}
		return r
	}
}

func (c *closureCompiler) or(v Or) func() bool {
	fs := c.list(v)
	if len(fs) == 0 {
		return func() bool { return false }
	}
	return func() bool {
		r := false
		for _, f := range fs {
			r = f() || r
		}
		return r
	}
}

func (c *closureCompiler) not(v Not) func() bool {
	f := visit[func() bool](v.V, c)
	return func() bool { return !f() }
}

func (c *closureCompiler) alternating(v Alternating) func() bool {
	off := c.mods.op(v.Mod(), v.StartOffset).Offset()
	if int64(v.On) > math.MaxUint32 {
		return func() bool { return true }
	}
	on := uint32(v.On)
	d := c.d
	return func() bool {
		return binary.LittleEndian.Uint32(d[off:]) < on
	}
}

func (c *closureCompiler) calculation(calc *Calculation) func() {
	v := visit[func() bool](calc.Value, c)
	d := c.d
	if !calc.Target.IsRotating() {
		i := c.l.Offset(calc.Target)
		return func() { d[i] = b2u8(v()) }
	}
	idx := c.index(calc.Target)
	return func() { d[idx()] = b2u8(v()) }
}

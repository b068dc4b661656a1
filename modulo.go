// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"strconv"

	"github.com/pkg/errors"
)

const (
	counterSize = 8 // int64 step counter
	moduloSize  = 4 // uint32 per modulo result
)

// A ModuloOp is one deduplicated (n + StartOffset) mod Mod computation. Its
// result is stored as a little endian uint32 at byte offset Offset() of the
// arena.
//
type ModuloOp struct {
	Mod         int
	StartOffset int
	Index       int
}

// Offset returns the byte offset of the op result in the arena.
//
func (m ModuloOp) Offset() int { return counterSize + moduloSize*m.Index }

// Eval returns (n + m.StartOffset) mod m.Mod.
//
func (m ModuloOp) Eval(n int64) uint32 {
	return uint32((uint64(n) + uint64(m.StartOffset)) % uint64(m.Mod))
}

func (m ModuloOp) String() string {
	return "a[" + strconv.Itoa(m.Index) + "] = (n + " + strconv.Itoa(m.StartOffset) + ") % " + strconv.Itoa(m.Mod)
}

// moduloTable deduplicates modulo operations by modulus then start offset.
type moduloTable struct {
	m   map[int]map[int]int
	ops []ModuloOp
}

func newModuloTable() *moduloTable {
	return &moduloTable{m: make(map[int]map[int]int)}
}

func (t *moduloTable) add(mod, start int) (int, error) {
	if mod <= 0 {
		return 0, errors.Errorf("invalid modulus %d", mod)
	}
	if start < 0 {
		return 0, errors.Errorf("invalid start offset %d", start)
	}
	if int64(mod) > 1<<32 {
		return 0, errors.Errorf("modulus %d out of range", mod)
	}
	ms := t.m[mod]
	if ms == nil {
		ms = make(map[int]int)
		t.m[mod] = ms
	}
	if i, ok := ms[start]; ok {
		return i, nil
	}
	i := len(t.ops)
	ms[start] = i
	t.ops = append(t.ops, ModuloOp{Mod: mod, StartOffset: start, Index: i})
	return i, nil
}

func (t *moduloTable) lookup(mod, start int) (int, bool) {
	i, ok := t.m[mod][start]
	return i, ok
}

// op returns the modulo op backing a rotating address or an alternating value.
func (t *moduloTable) op(mod, start int) ModuloOp {
	i, ok := t.lookup(mod, start)
	if !ok {
		panic("vollgas: no modulo operation for (n + " + strconv.Itoa(start) + ") % " + strconv.Itoa(mod))
	}
	return t.ops[i]
}

// header returns the byte size of the arena header.
func (t *moduloTable) header() int {
	return counterSize + moduloSize*len(t.ops)
}

// moduloCollector registers every modulo operation referenced by a value
// source.
type moduloCollector struct {
	t *moduloTable
}

func (c moduloCollector) address(a Address) error {
	if !a.IsRotating() {
		return nil
	}
	_, err := c.t.add(a.mod, a.start)
	return errors.Wrapf(err, "address %s (%s)", a, a.hint)
}

func (c moduloCollector) list(vs []ValueSource) error {
	for _, v := range vs {
		if err := visit[error](v, c); err != nil {
			return err
		}
	}
	return nil
}

func (c moduloCollector) and(v And) error { return c.list(v) }
func (c moduloCollector) or(v Or) error   { return c.list(v) }
func (c moduloCollector) not(v Not) error { return visit[error](v.V, c) }

func (c moduloCollector) alternating(v Alternating) error {
	if v.On < 0 || v.Off < 0 {
		return errors.Errorf("invalid alternating value on %d, off %d", v.On, v.Off)
	}
	_, err := c.t.add(v.Mod(), v.StartOffset)
	return errors.Wrap(err, "alternating value")
}

func (c moduloCollector) calculation(calc *Calculation) error {
	if err := c.address(calc.Target); err != nil {
		return err
	}
	return visit[error](calc.Value, c)
}

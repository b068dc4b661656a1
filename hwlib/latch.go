// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// rs adds a pair of cross coupled NOR gates q and qn to b, reset by r and set
// by s.
func (b *builder) rs(r, s string, initial bool) {
	b.nor("q", initial, r+", qn", 0)
	b.nor("qn", !initial, s+", q", 0)
}

// RSLatch returns a NOR based RS latch. initial is the value of q when the
// simulation starts.
//
//	Inputs: r, s
//	Outputs: q, qn
//	Function: r: q = false; s: q = true; otherwise q is unchanged. qn = !q.
//
func RSLatch(cfg Config, name string, initial bool) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	b.rs(ref(outside, 0), ref(outside, 1), initial)
	return b.build(name, "RSLatch")
}

// DLatch returns a gated D latch. initial is the value of q when the
// simulation starts.
//
//	Inputs: d, e
//	Outputs: q, qn
//	Function: if e { q = d }; qn = !q
//
func DLatch(cfg Config, name string, initial bool) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	b.split("d", 2, ref(outside, 0))
	b.nor("nd", true, "d[0]")
	b.nor("ne", true, ref(outside, 1))
	b.nor("r", false, "d[1], ne")
	b.nor("s", false, "nd, ne")
	b.rs("r", "s", initial)
	return b.build(name, "DLatch")
}

// Register returns a register of D latches sharing the same enable input.
//
//	Inputs: d[0]..d[bits-1], e
//	Outputs: q[0]..q[bits-1]
//	Function: if e { q = d }
//
func Register(cfg Config, name string, bits int) (vollgas.Element, error) {
	if bits <= 0 {
		return nil, errors.Errorf("%s: invalid bit count %d", name, bits)
	}
	b := builder{cfg: cfg}
	b.split("e", bits, ref(outside, bits))
	for i := 0; i < bits; i++ {
		n := "bit" + strconv.Itoa(i)
		l, err := DLatch(cfg, n, false)
		b.add(n, l, err, ref(outside, i)+","+ref("e", i), 0)
	}
	return b.build(name, "Register")
}

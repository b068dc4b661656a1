// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a+b), c = msb(a+b)
//
func HalfAdder(cfg Config, name string) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	b.xnor(0, 1)
	b.nor("s", false, "n4", 0)
	b.nor("c", false, "n1, n2, n3", 0)
	return b.build(name, "HalfAdder")
}

// FullAdder returns a full adder.
//
//	Inputs: a, b, c
//	Outputs: s, co
//	Function: s = lsb(a+b+c), co = msb(a+b+c)
//
func FullAdder(cfg Config, name string) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	h1, err := HalfAdder(cfg, "h1")
	b.add("h1", h1, err, ref(outside, 0)+","+ref(outside, 1))
	h2, err := HalfAdder(cfg, "h2")
	b.add("h2", h2, err, "h1[0],"+ref(outside, 2), 0)
	or, err := Or(cfg, "co", 2)
	b.add("co", or, err, "h1[1], h2[1]", 0)
	return b.build(name, "FullAdder")
}

// Adder returns a ripple carry adder.
//
//	Inputs: a[0]..a[bits-1], b[0]..b[bits-1], c
//	Outputs: s[0]..s[bits-1], co
//	Function: s = a + b + c, co = carry out
//
// Bit 0 is the least significant bit. The carry between two stages goes
// through a wire with delay cfg.WireDelay.
//
func Adder(cfg Config, name string, bits int) (vollgas.Element, error) {
	if bits <= 0 {
		return nil, errors.Errorf("%s: invalid bit count %d", name, bits)
	}
	b := builder{cfg: cfg}
	carry := ref(outside, 2*bits)
	for i := 0; i < bits; i++ {
		if i > 0 {
			w := "c" + strconv.Itoa(i)
			b.add(w, cfg.Wire(w), nil, carry)
			carry = w
		}
		n := "fa" + strconv.Itoa(i)
		fa, err := FullAdder(cfg, n)
		outs := []int{0}
		if i == bits-1 {
			outs = append(outs, 1)
		}
		b.add(n, fa, err, ref(outside, i)+","+ref(outside, bits+i)+","+carry, outs...)
		carry = n + "[1]"
	}
	return b.build(name, "Adder")
}

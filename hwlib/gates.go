// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"
	"strings"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

const outside = vollgas.Outside

// Gate outputs start with the value they settle to when all inputs are false.

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(cfg Config, name string) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	b.nor("nor", true, ref(outside, 0), 0)
	return b.build(name, "Not")
}

// Or returns an OR gate with n inputs.
//
//	Inputs: in[0]..in[n-1]
//	Outputs: out
//	Function: out = in[0] || in[1] || ...
//
func Or(cfg Config, name string, n int) (vollgas.Element, error) {
	if n <= 0 {
		return nil, errors.Errorf("%s: need at least one input", name)
	}
	b := builder{cfg: cfg}
	b.nor("nor", true, rng(outside, 0, n-1))
	b.nor("not", false, "nor", 0)
	return b.build(name, "Or")
}

// And returns an AND gate with n inputs.
//
//	Inputs: in[0]..in[n-1]
//	Outputs: out
//	Function: out = in[0] && in[1] && ...
//
func And(cfg Config, name string, n int) (vollgas.Element, error) {
	if n <= 0 {
		return nil, errors.Errorf("%s: need at least one input", name)
	}
	b := builder{cfg: cfg}
	nots := make([]string, n)
	for i := range nots {
		nots[i] = "not" + strconv.Itoa(i)
		b.nor(nots[i], true, ref(outside, i))
	}
	b.nor("nor", false, strings.Join(nots, ","), 0)
	return b.build(name, "And")
}

// xnor adds the four NOR gates of an XNOR of outside inputs a and b to b.
// The gates are named n1 to n4, n4 being the XNOR output.
func (b *builder) xnor(a, c int) {
	b.split("in", 2, ref(outside, a)+","+ref(outside, c))
	b.nor("n1", true, "in[0], in[1]")
	b.nor("n2", false, "in[2], n1")
	b.nor("n3", false, "in[3], n1")
	b.nor("n4", true, "n2, n3")
}

// Xor returns a XOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && !b || !a && b
//
func Xor(cfg Config, name string) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	b.xnor(0, 1)
	b.nor("xor", false, "n4", 0)
	return b.build(name, "Xor")
}

// Decoder returns a binary decoder with the given number of input bits.
//
//	Inputs: in[0]..in[bits-1]
//	Outputs: out[0]..out[2^bits-1]
//	Function: out[k] = in == k
//
// in[0] is the least significant bit.
//
func Decoder(cfg Config, name string, bits int) (vollgas.Element, error) {
	if bits <= 0 || bits > 16 {
		return nil, errors.Errorf("%s: invalid bit count %d", name, bits)
	}
	b := builder{cfg: cfg}
	b.split("in", 1, rng(outside, 0, bits-1))
	for j := 0; j < bits; j++ {
		b.nor("not"+strconv.Itoa(j), true, ref("in", j))
	}
	terms := make([]string, bits)
	for k := 0; k < 1<<uint(bits); k++ {
		for j := range terms {
			if k&(1<<uint(j)) != 0 {
				terms[j] = "not" + strconv.Itoa(j)
			} else {
				terms[j] = ref("in", j)
			}
		}
		b.nor("out"+strconv.Itoa(k), k == 0, strings.Join(terms, ","), 0)
	}
	return b.build(name, "Decoder")
}

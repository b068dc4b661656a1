// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// Mux returns a multiplexer of two buses of the given width.
//
//	Inputs: a[0]..a[bits-1], b[0]..b[bits-1], sel
//	Outputs: out[0]..out[bits-1]
//	Function: if sel { out = b } else { out = a }
//
func Mux(cfg Config, name string, bits int) (vollgas.Element, error) {
	if bits <= 0 {
		return nil, errors.Errorf("%s: invalid bit count %d", name, bits)
	}
	b := builder{cfg: cfg}
	b.split("sel", bits+1, ref(outside, 2*bits))
	b.nor("nsel", true, ref("sel", bits))
	for i := 0; i < bits; i++ {
		n := strconv.Itoa(i)
		b.nor("a"+n, true, ref(outside, i)+","+ref("sel", i))
		b.nor("b"+n, false, ref(outside, bits+i)+", nsel")
		b.nor("out"+n, false, "a"+n+", b"+n, 0)
	}
	return b.build(name, "Mux")
}

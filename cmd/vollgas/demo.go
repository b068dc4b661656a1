// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/db47h/vollgas"
	"github.com/db47h/vollgas/hwlib"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// micro16Code is a short Micro16 control store program.
const micro16Code = "00100000" + "08110000" + "0c220000" + "10330000" +
	"14440000" + "18550000" + "1c660000" + "60000001"

// demo is a runnable circuit with a probe that reports its state.
type demo struct {
	root  *vollgas.Combined
	probe func(c *vollgas.Circuit, outs []vollgas.Address) log.Fields
}

type demoFn func(cfg hwlib.Config, cps int) (*demo, error)

var demos = map[string]demoFn{
	"clock":   clockDemo,
	"adder":   adderDemo,
	"decoder": decoderDemo,
	"rom":     romDemo,
}

func demoNames() string {
	ns := make([]string, 0, len(demos))
	for n := range demos {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return strings.Join(ns, ", ")
}

func newDemo(name string, cfg hwlib.Config, cps int) (*demo, error) {
	fn, ok := demos[name]
	if !ok {
		return nil, errors.Errorf("unknown demo %q, expected one of %s", name, demoNames())
	}
	return fn(cfg, cps)
}

// counter returns blinkers named bit0 to bit{bits-1} that count the number of
// elapsed periods of the given length.
func counter(bits, period int) []vollgas.Wiring {
	ws := make([]vollgas.Wiring, bits)
	for i := range ws {
		p := period << uint(i)
		n := "bit" + strconv.Itoa(i)
		ws[i] = vollgas.Wiring{Name: n, Element: hwlib.Blinker(n, p, p, p)}
	}
	return ws
}

func clockDemo(_ hwlib.Config, _ int) (*demo, error) {
	root, err := vollgas.NewCombined("clock", []vollgas.Wiring{
		{Name: "clk", Element: hwlib.Micro16Clock("clk"), Outputs: []int{0, 1, 2}},
	})
	if err != nil {
		return nil, err
	}
	return &demo{
		root: root,
		probe: func(c *vollgas.Circuit, outs []vollgas.Address) log.Fields {
			return log.Fields{
				"instruction": c.Get(outs[0]),
				"alu":         c.Get(outs[1]),
				"registers":   c.Get(outs[2]),
			}
		},
	}, nil
}

func adderDemo(cfg hwlib.Config, cps int) (*demo, error) {
	const bits = 4
	add, err := hwlib.Adder(cfg, "adder", bits)
	if err != nil {
		return nil, err
	}
	// a counts steps, b counts a overflows.
	ws := counter(2*bits, cps)
	ws = append(ws,
		vollgas.Wiring{Name: "zero", Element: hwlib.Const("zero", false)},
		vollgas.Wiring{Name: "add", Element: add, Inputs: vollgas.In("bit0, bit1, bit2, bit3, bit4, bit5, bit6, bit7, zero"), Outputs: []int{0, 1, 2, 3, 4}},
	)
	root, err := vollgas.NewCombined("adder", ws)
	if err != nil {
		return nil, err
	}
	return &demo{
		root: root,
		probe: func(c *vollgas.Circuit, outs []vollgas.Address) log.Fields {
			ins := make([]vollgas.Address, 2*bits)
			for i := range ins {
				ins[i] = ws[i].Element.(*vollgas.Logic).OutputAddress(0)
			}
			return log.Fields{
				"a":   hwlib.Int64(c, ins[:bits]),
				"b":   hwlib.Int64(c, ins[bits:]),
				"sum": hwlib.Int64(c, outs),
			}
		},
	}, nil
}

func decoderDemo(cfg hwlib.Config, cps int) (*demo, error) {
	const bits = 3
	dec, err := hwlib.Decoder(cfg, "decoder", bits)
	if err != nil {
		return nil, err
	}
	outs := make([]int, 1<<bits)
	for i := range outs {
		outs[i] = i
	}
	root, err := vollgas.NewCombined("decoder", append(counter(bits, cps),
		vollgas.Wiring{Name: "dec", Element: dec, Inputs: vollgas.In("bit0, bit1, bit2"), Outputs: outs},
	))
	if err != nil {
		return nil, err
	}
	return &demo{
		root: root,
		probe: func(c *vollgas.Circuit, outs []vollgas.Address) log.Fields {
			var active []int
			for i, a := range outs {
				if c.Get(a) {
					active = append(active, i)
				}
			}
			return log.Fields{"active": fmt.Sprint(active)}
		},
	}, nil
}

func romDemo(_ hwlib.Config, cps int) (*demo, error) {
	rom, err := hwlib.Micro16Store("store", micro16Code)
	if err != nil {
		return nil, err
	}
	outs := make([]int, hwlib.WordSize)
	for i := range outs {
		outs[i] = i
	}
	root, err := vollgas.NewCombined("rom", append(counter(8, cps),
		vollgas.Wiring{Name: "store", Element: rom, Inputs: vollgas.In("bit0, bit1, bit2, bit3, bit4, bit5, bit6, bit7"), Outputs: outs},
	))
	if err != nil {
		return nil, err
	}
	return &demo{
		root: root,
		probe: func(c *vollgas.Circuit, outs []vollgas.Address) log.Fields {
			var w uint32
			for j, a := range outs {
				if c.Get(a) {
					w |= 1 << uint(hwlib.WordSize-1-j)
				}
			}
			return log.Fields{"word": fmt.Sprintf("%08x", w)}
		},
	}, nil
}

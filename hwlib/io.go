// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/vollgas"
)

// Source returns an input terminal: an element without inputs whose single
// output is set to the value returned by fn before every step.
//
//	Outputs: out
//	Function: out = fn()
//
// fn is also called once on creation to get the initial output value.
//
func Source(name string, fn func() bool) *vollgas.Logic {
	s := &vollgas.LogicSpec{
		Kind:    "Source",
		Outputs: 1,
		Initial: fn(),
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			return []vollgas.Address{out.Static(0, "output of source")}, nil, nil
		},
		Update: func() []vollgas.UpdateSpec {
			return []vollgas.UpdateSpec{{
				Fn: func(_, out []bool) bool {
					out[0] = fn()
					return true
				},
				Interval: 1,
			}}
		},
	}
	return s.NewLogic(name)
}

var sinkSpec = vollgas.LogicSpec{
	Kind:   "Sink",
	Inputs: 1,
	Mount: func(_ []vollgas.Address, _ vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
		return nil, nil, nil
	},
}

// Sink returns an output terminal: an element with a single input and no
// outputs that calls fn with the input value before every step.
//
//	Inputs: in
//
func Sink(name string, fn func(bool)) *vollgas.Logic {
	s := sinkSpec
	s.Update = func() []vollgas.UpdateSpec {
		return []vollgas.UpdateSpec{{
			Fn: func(in, _ []bool) bool {
				fn(in[0])
				return false
			},
			Interval: 1,
		}}
	}
	return s.NewLogic(name)
}

// Blinker returns an element without inputs whose output is true for on
// steps, then false for off steps, starting start steps into the period.
//
//	Outputs: out
//	Function: out(n) = (n + start) % (on + off) < on
//
func Blinker(name string, on, off, start int) *vollgas.Logic {
	s := &vollgas.LogicSpec{
		Kind:    "Blinker",
		Outputs: 1,
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			o := out.Static(0, "output of blinker")
			return []vollgas.Address{o}, []*vollgas.Calculation{
				{Target: o, Value: vollgas.Alternating{On: on, Off: off, StartOffset: start}},
			}, nil
		},
	}
	return s.NewLogic(name)
}

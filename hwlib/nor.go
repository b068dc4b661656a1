// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

func norSpec(inputs int, initial bool) *vollgas.LogicSpec {
	return &vollgas.LogicSpec{
		Kind:    "Nor",
		Inputs:  inputs,
		Outputs: 1,
		Initial: initial,
		Mount: func(in []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			o := out.Static(0, "nor output")
			vs := make(vollgas.Or, len(in))
			for i := range in {
				vs[i] = in[i]
			}
			return []vollgas.Address{o}, []*vollgas.Calculation{{Target: o, Value: vollgas.Not{V: vs}}}, nil
		},
	}
}

// Nor returns a NOR gate with the given number of inputs.
//
//	Inputs: in[0]..in[inputs-1]
//	Outputs: out
//	Function: out = !(in[0] || in[1] || ...)
//
// If initial is true, the output is true when the simulation starts. If
// cfg.NorDelay is positive, the gate output goes through a Wire with that
// delay; the returned element is then a Combined with Kind "Combined/Nor".
//
func Nor(cfg Config, name string, inputs int, initial bool) (vollgas.Element, error) {
	if inputs <= 0 {
		return nil, errors.Errorf("%s: need at least one input", name)
	}
	nor := norSpec(inputs, initial).NewLogic(name)
	if cfg.NorDelay <= 0 {
		return nor, nil
	}
	ins := make([]vollgas.Input, inputs)
	for i := range ins {
		ins[i] = vollgas.Input{From: vollgas.Outside, Index: i}
	}
	c, err := vollgas.NewCombined(name, []vollgas.Wiring{
		{Name: "nor", Element: nor, Inputs: ins},
		{Name: "delay", Element: NewWire(name+".delay", cfg.NorDelay, initial, 1), Inputs: vollgas.In("nor"), Outputs: []int{0}},
	})
	if err != nil {
		return nil, err
	}
	return c.WithKind("Nor"), nil
}

// Nors returns n NOR gates with one input each, i.e. n inverters side by side
// packaged as a single element with n inputs and n outputs.
//
func Nors(cfg Config, name string, n int) (vollgas.Element, error) {
	b := builder{cfg: cfg}
	for i := 0; i < n; i++ {
		b.nor("nor"+strconv.Itoa(i), true, ref(outside, i), 0)
	}
	return b.build(name, "Nors")
}

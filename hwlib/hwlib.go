// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable elements for vollgas.
//
// Primitive elements are NOR gates, wires with a propagation delay, splits,
// constants, I/O terminals, clocks and memories. Every other gate is built from
// NOR gates with vollgas.Combined.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
)

// Config holds the propagation delay settings shared by the elements of a
// circuit.
//
type Config struct {
	// WireDelay is the delay in steps of wires built with Config.Wire.
	WireDelay int
	// NorDelay is an additional delay in steps added to the output of every
	// NOR gate.
	NorDelay int
}

// builder collects the wiring of a combined element. The first error is kept
// and returned by build.
type builder struct {
	cfg Config
	ws  []vollgas.Wiring
	err error
}

func (b *builder) add(name string, e vollgas.Element, err error, inputs string, outputs ...int) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	ins, err := vollgas.ParseInputs(inputs)
	if err != nil {
		b.err = err
		return
	}
	b.ws = append(b.ws, vollgas.Wiring{Name: name, Element: e, Inputs: ins, Outputs: outputs})
}

// nor adds a NOR gate with as many inputs as listed in inputs.
func (b *builder) nor(name string, initial bool, inputs string, outputs ...int) {
	if b.err != nil {
		return
	}
	ins, err := vollgas.ParseInputs(inputs)
	if err != nil {
		b.err = err
		return
	}
	e, err := Nor(b.cfg, name, len(ins), initial)
	b.add(name, e, err, inputs, outputs...)
}

// split adds an input buffer that repeats the given outside inputs channels
// times.
func (b *builder) split(name string, channels int, inputs string) {
	ins, err := vollgas.ParseInputs(inputs)
	b.add(name, NewSplit(name, channels, len(ins), false), err, inputs)
}

func (b *builder) build(name, kind string) (*vollgas.Combined, error) {
	if b.err != nil {
		return nil, b.err
	}
	c, err := vollgas.NewCombined(name, b.ws)
	if err != nil {
		return nil, err
	}
	return c.WithKind(kind), nil
}

// ref returns "name[i]".
func ref(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// rng returns "name[start..end]".
func rng(name string, start, end int) string {
	return name + "[" + strconv.Itoa(start) + ".." + strconv.Itoa(end) + "]"
}

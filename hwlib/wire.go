// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// Wire is a bundle of channels that forward their input to their output after
// a fixed delay.
//
// A Wire with delay 0 is pure routing: it allocates no cells and its outputs
// resolve to the addresses of its inputs.
//
type Wire struct {
	name    string
	delay   int
	initial bool

	srcs     vollgas.Inputs
	outs     []vollgas.Address
	bufs     []vollgas.Address
	initTrue []vollgas.Address
	writes   []*vollgas.Calculation
}

// NewWire returns a new Wire with the given delay in steps and number of
// channels. A negative delay is treated as 0. If initial is true, the delay
// buffers and outputs are true when the simulation starts.
//
//	Inputs: in[0]..in[channels-1]
//	Outputs: out[0]..out[channels-1]
//	Function: out[i](n) = in[i](n-delay)
//
func NewWire(name string, delay int, initial bool, channels int) *Wire {
	if delay < 0 {
		delay = 0
	}
	return &Wire{
		name:    name,
		delay:   delay,
		initial: initial,
		srcs:    make(vollgas.Inputs, channels),
	}
}

// Wire returns a single channel wire with the configured wire delay.
//
func (cfg Config) Wire(name string) *Wire {
	return NewWire(name, cfg.WireDelay, false, 1)
}

func (w *Wire) Name() string                       { return w.name }
func (w *Wire) Kind() string                       { return "Wire" }
func (w *Wire) Delay() int                         { return w.delay }
func (w *Wire) Children() []vollgas.Element        { return nil }
func (w *Wire) NumInputs() int                     { return len(w.srcs) }
func (w *Wire) NumOutputs() int                    { return len(w.srcs) }
func (w *Wire) UpdateFuncs() []*vollgas.UpdateFunc { return nil }

func (w *Wire) Output(i int) (vollgas.AddressFunc, error) {
	if i < 0 || i >= len(w.srcs) {
		return nil, errors.Errorf("%s: output index %d is out of bounds for this element", w.name, i)
	}
	if w.delay > 0 {
		return func() vollgas.Address {
			if w.outs == nil {
				return vollgas.Address{}
			}
			return w.outs[i]
		}, nil
	}
	return func() vollgas.Address {
		if f := w.srcs[i]; f != nil {
			return f()
		}
		return vollgas.Address{}
	}, nil
}

func (w *Wire) Connect(input int, src vollgas.Element, srcOutput int) error {
	return w.srcs.Connect(w.name, input, src, srcOutput)
}

// DelayBuffer returns the address of the delay buffer of channel i, read one
// slot ahead of the write position: at any step, DelayBuffer(i) holds the
// value that will appear on output i at the next step. It returns the zero
// Address for wires without delay or before WriteOutputs has been called.
//
func (w *Wire) DelayBuffer(i int) vollgas.Address {
	if w.bufs == nil {
		return vollgas.Address{}
	}
	return w.bufs[i]
}

func (w *Wire) WriteOutputs(sp vollgas.Space) ([]*vollgas.Calculation, error) {
	if err := w.srcs.Check(w.name); err != nil {
		return nil, err
	}
	if w.delay == 0 {
		return nil, nil
	}
	n := len(w.srcs)
	w.outs = make([]vollgas.Address, n)
	w.bufs = make([]vollgas.Address, n)
	w.writes = make([]*vollgas.Calculation, n)
	for i := 0; i < n; i++ {
		ch := strconv.Itoa(i)
		w.outs[i] = sp.Static(i, "output of channel "+ch+" of wire "+w.name)
		base := n + i*w.delay
		w.writes[i] = &vollgas.Calculation{
			Target: sp.Rotating(base, w.delay, 0, "input of channel "+ch+" of wire "+w.name),
		}
		w.bufs[i] = sp.Rotating(base, w.delay, 1, "delay buffer of channel "+ch+" of wire "+w.name)
		if w.initial {
			for j := 0; j < w.delay; j++ {
				w.initTrue = append(w.initTrue, sp.Static(base+j, "delay buffer cell "+strconv.Itoa(j)+" of channel "+ch+" of wire "+w.name))
			}
		}
	}
	if w.initial {
		w.initTrue = append(w.initTrue, w.outs...)
	}
	return w.writes, nil
}

// ReadInputs moves the oldest value of each delay buffer to the channel
// output. The matching write calculations returned by WriteOutputs get their
// value here, once every upstream output is allocated.
//
func (w *Wire) ReadInputs() ([]*vollgas.Calculation, error) {
	if w.delay == 0 {
		return nil, nil
	}
	calcs := make([]*vollgas.Calculation, len(w.srcs))
	for i := range w.srcs {
		a, err := w.srcs.Address(w.name, i)
		if err != nil {
			return nil, err
		}
		w.writes[i].Value = a
		calcs[i] = &vollgas.Calculation{Target: w.outs[i], Value: w.writes[i].Target}
	}
	return calcs, nil
}

func (w *Wire) InitiallyTrue() []vollgas.Address {
	return w.initTrue
}

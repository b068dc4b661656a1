// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// Split is a routing element that repeats a group of inputs on several output
// channels.
//
// With bits > 0, output i forwards input i%bits and the element has
// channels*bits outputs. With bits == 0, the element has channels outputs that
// all read a single constant cell.
//
type Split struct {
	name     string
	channels int
	initial  bool

	srcs  vollgas.Inputs
	fixed vollgas.Address
}

// NewSplit returns a new Split. initial is the value of the constant cell of
// a Split without inputs.
//
func NewSplit(name string, channels, bits int, initial bool) *Split {
	return &Split{
		name:     name,
		channels: channels,
		initial:  initial,
		srcs:     make(vollgas.Inputs, bits),
	}
}

// Const returns an element with no inputs and a single output stuck at v.
//
func Const(name string, v bool) *Split {
	return NewSplit(name, 1, 0, v)
}

func (s *Split) Name() string                       { return s.name }
func (s *Split) Kind() string                       { return "Split" }
func (s *Split) Delay() int                         { return 0 }
func (s *Split) Children() []vollgas.Element        { return nil }
func (s *Split) NumInputs() int                     { return len(s.srcs) }
func (s *Split) UpdateFuncs() []*vollgas.UpdateFunc { return nil }

func (s *Split) NumOutputs() int {
	if len(s.srcs) == 0 {
		return s.channels
	}
	return s.channels * len(s.srcs)
}

func (s *Split) Output(i int) (vollgas.AddressFunc, error) {
	if i < 0 || i >= s.NumOutputs() {
		return nil, errors.Errorf("%s: output index %d is out of bounds for this element", s.name, i)
	}
	if len(s.srcs) == 0 {
		return func() vollgas.Address { return s.fixed }, nil
	}
	return func() vollgas.Address {
		if f := s.srcs[i%len(s.srcs)]; f != nil {
			return f()
		}
		return vollgas.Address{}
	}, nil
}

func (s *Split) Connect(input int, src vollgas.Element, srcOutput int) error {
	return s.srcs.Connect(s.name, input, src, srcOutput)
}

func (s *Split) WriteOutputs(sp vollgas.Space) ([]*vollgas.Calculation, error) {
	if len(s.srcs) == 0 {
		s.fixed = sp.Static(0, "constant value of split "+s.name)
	}
	return nil, nil
}

func (s *Split) ReadInputs() ([]*vollgas.Calculation, error) {
	return nil, s.srcs.Check(s.name)
}

func (s *Split) InitiallyTrue() []vollgas.Address {
	if len(s.srcs) == 0 && s.initial {
		return []vollgas.Address{s.fixed}
	}
	return nil
}

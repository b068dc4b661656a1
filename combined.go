// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"github.com/db47h/vollgas/internal/hdl"
	"github.com/pkg/errors"
)

// Outside is the reserved element name that refers to the inputs of the
// enclosing Combined element in a wiring description.
//
const Outside = "outside"

// Input identifies the source of an element input in a wiring description:
// output Index of the element named From, or input Index of the enclosing
// element if From is Outside.
//
type Input struct {
	From  string
	Index int
}

// ParseInputs parses a compact input list like "outside[0], nor1, adder[0..3]"
// into a slice of Input. A bare name refers to output 0 and ranges are
// expanded.
//
func ParseInputs(desc string) ([]Input, error) {
	outs, err := hdl.Parse(desc)
	if err != nil {
		return nil, err
	}
	ins := make([]Input, len(outs))
	for i, o := range outs {
		ins[i] = Input{o.Name, o.Index}
	}
	return ins, nil
}

// In is like ParseInputs but panics on error. It is meant to describe static
// wirings in Go code.
//
func In(desc string) []Input {
	ins, err := ParseInputs(desc)
	if err != nil {
		panic(err)
	}
	return ins
}

// Wiring describes one child of a Combined element: its name, the sources of
// its inputs, and which of its outputs are exported as outputs of the
// Combined element (in order).
//
type Wiring struct {
	Name    string
	Element Element
	Inputs  []Input
	Outputs []int
}

type location struct {
	e     Element
	name  string
	index int
}

// Combined is a composite element made of other elements.
//
type Combined struct {
	name     string
	kind     string
	children []Element
	names    []string
	ins      []location
	outs     []location
}

// NewCombined builds a composite element from the given wiring descriptions.
//
// Inputs of the children are connected in the order of the descriptions. An
// input of the Combined element can be forwarded to only one child input; use
// a Split to fan it out.
//
// For example, an OR gate built from two NOR gates:
//
//	or, err := vollgas.NewCombined("or", []vollgas.Wiring{
//		{Name: "nor", Element: nor1, Inputs: vollgas.In("outside[0..1]")},
//		{Name: "not", Element: nor2, Inputs: vollgas.In("nor"), Outputs: []int{0}},
//	})
//
func NewCombined(name string, ws []Wiring) (*Combined, error) {
	c := &Combined{
		name:     name,
		kind:     "Combined",
		children: make([]Element, len(ws)),
		names:    make([]string, len(ws)),
	}
	byName := make(map[string]Element, len(ws))
	for i, w := range ws {
		if w.Element == nil {
			return nil, errors.Errorf("%s: nil element %q", name, w.Name)
		}
		if w.Name == Outside {
			return nil, errors.Errorf("%s: element name %q is reserved", name, Outside)
		}
		if _, ok := byName[w.Name]; ok {
			return nil, errors.Errorf("%s: duplicate element name: %s", name, w.Name)
		}
		byName[w.Name] = w.Element
		c.children[i] = w.Element
		c.names[i] = w.Name
	}

	var ins []*location
	for _, w := range ws {
		e := w.Element
		if len(w.Inputs) > e.NumInputs() {
			return nil, errors.Errorf("%s: element %s has %d inputs, but %d are wired", name, w.Name, e.NumInputs(), len(w.Inputs))
		}
		for i, in := range w.Inputs {
			if in.From == Outside {
				if in.Index < 0 {
					return nil, errors.Errorf("%s: negative input index %d", name, in.Index)
				}
				for in.Index >= len(ins) {
					ins = append(ins, nil)
				}
				if l := ins[in.Index]; l != nil {
					return nil, errors.Errorf("%s: input index %d of this combined element is already connected to inside element %s and therefore can not be connected to inside element %s",
						name, in.Index, l.name, w.Name)
				}
				ins[in.Index] = &location{e, w.Name, i}
				continue
			}
			src, ok := byName[in.From]
			if !ok {
				return nil, errors.Errorf("%s: unknown element name: %s", name, in.From)
			}
			if err := e.Connect(i, src, in.Index); err != nil {
				return nil, errors.Wrap(err, name)
			}
		}
		for _, o := range w.Outputs {
			if o < 0 || o >= e.NumOutputs() {
				return nil, errors.Errorf("%s: output index %d of element %s is out of bounds", name, o, w.Name)
			}
			c.outs = append(c.outs, location{e, w.Name, o})
		}
	}
	c.ins = make([]location, len(ins))
	for i, l := range ins {
		if l == nil {
			return nil, errors.Errorf("%s: input index %d is not connected to any inner element, but higher input index exists", name, i)
		}
		c.ins[i] = *l
	}
	return c, nil
}

// WithKind sets the kind returned by c.Kind to "Combined/"+kind and returns c.
//
func (c *Combined) WithKind(kind string) *Combined {
	c.kind = "Combined/" + kind
	return c
}

func (c *Combined) Name() string        { return c.name }
func (c *Combined) Kind() string        { return c.kind }
func (c *Combined) Children() []Element { return c.children }
func (c *Combined) NumInputs() int      { return len(c.ins) }
func (c *Combined) NumOutputs() int     { return len(c.outs) }

// Delay returns the largest delay of c's children.
//
func (c *Combined) Delay() int {
	d := 0
	for _, e := range c.children {
		if cd := e.Delay(); cd > d {
			d = cd
		}
	}
	return d
}

func (c *Combined) Output(i int) (AddressFunc, error) {
	if i < 0 || i >= len(c.outs) {
		return nil, errors.Errorf("%s: output index %d is out of bounds for this element", c.name, i)
	}
	o := c.outs[i]
	return o.e.Output(o.index)
}

func (c *Combined) Connect(input int, src Element, srcOutput int) error {
	if input < 0 || input >= len(c.ins) {
		return errors.Errorf("%s: input index %d is out of bounds for this element", c.name, input)
	}
	in := c.ins[input]
	return errors.Wrap(in.e.Connect(in.index, src, srcOutput), c.name)
}

// WriteOutputs hands sp to the first child, then a new Space following the
// last Space used by the previous child to every other child.
//
func (c *Combined) WriteOutputs(sp Space) ([]*Calculation, error) {
	var calcs []*Calculation
	for _, e := range c.children {
		cs, err := e.WriteOutputs(sp)
		if err != nil {
			return nil, errors.Wrap(err, c.name)
		}
		calcs = append(calcs, cs...)
		if sp, err = sp.Last().Next(); err != nil {
			return nil, errors.Wrap(err, c.name)
		}
	}
	return calcs, nil
}

func (c *Combined) ReadInputs() ([]*Calculation, error) {
	var calcs []*Calculation
	for _, e := range c.children {
		cs, err := e.ReadInputs()
		if err != nil {
			return nil, errors.Wrap(err, c.name)
		}
		calcs = append(calcs, cs...)
	}
	return calcs, nil
}

func (c *Combined) UpdateFuncs() []*UpdateFunc {
	var fs []*UpdateFunc
	for _, e := range c.children {
		fs = append(fs, e.UpdateFuncs()...)
	}
	return fs
}

func (c *Combined) InitiallyTrue() []Address {
	var as []Address
	for _, e := range c.children {
		as = append(as, e.InitiallyTrue()...)
	}
	return as
}

// Child returns the child element with the given name, or nil if not found.
//
func (c *Combined) Child(name string) Element {
	for i, n := range c.names {
		if n == name {
			return c.children[i]
		}
	}
	return nil
}

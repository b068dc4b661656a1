// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"strconv"

	"github.com/pkg/errors"
)

// An AddressFunc returns the address of an element output. It is only valid
// once the element's WriteOutputs method has been called.
//
type AddressFunc func() Address

// An Element is a node of a circuit graph.
//
// Building a circuit is done in this order: every element gets its inputs
// connected with Connect; WriteOutputs is then called once on the root element,
// followed by ReadInputs, UpdateFuncs and InitiallyTrue. Composite elements
// forward these calls to their children.
//
type Element interface {
	// Name returns the instance name of the element.
	Name() string
	// Kind returns the element type name, e.g. "Nor" or "Combined/Xor".
	Kind() string
	// Delay returns the propagation delay of the element in steps.
	Delay() int
	// Children returns the children of composite elements.
	Children() []Element

	NumInputs() int
	NumOutputs() int

	// Output returns a provider for the address of output i.
	Output(i int) (AddressFunc, error)
	// Connect makes input read its value from output srcOutput of src.
	Connect(input int, src Element, srcOutput int) error

	// WriteOutputs allocates the element's cells starting at Space sp and
	// returns the calculations that compute its outputs.
	WriteOutputs(sp Space) ([]*Calculation, error)
	// ReadInputs returns the calculations that latch the element inputs.
	ReadInputs() ([]*Calculation, error)
	// UpdateFuncs returns the non combinational update functions.
	UpdateFuncs() []*UpdateFunc
	// InitiallyTrue returns the addresses that must be set to true when the
	// simulation starts.
	InitiallyTrue() []Address
}

// An UpdateFunc runs arbitrary code outside of the compiled step function.
//
// Fn gets the current values of the Inputs addresses in in, and the last
// values it produced in out. If it returns true, out is written back to the
// Outputs addresses.
//
type UpdateFunc struct {
	Fn       func(in, out []bool) bool
	Interval int
	Inputs   []Address
	Outputs  []Address
}

// UpdateSpec describes an update function of a Logic element.
//
type UpdateSpec struct {
	Fn       func(in, out []bool) bool
	Interval int
	// ReverseInputs reverses the order of inputs given to Fn.
	ReverseInputs bool
}

// A MountFn allocates the output cells of a Logic element in out and returns
// the output addresses and the calculations updating them. in holds the
// addresses of the latched inputs.
//
// For example, a NOR gate is mounted like this:
//
//	func(in []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
//		o := out.Static(0, "nor output")
//		vs := make(vollgas.Or, len(in))
//		for i := range in {
//			vs[i] = in[i]
//		}
//		return []vollgas.Address{o}, []*vollgas.Calculation{{Target: o, Value: vollgas.Not{V: vs}}}, nil
//	}
//
type MountFn func(in []Address, out Space) ([]Address, []*Calculation, error)

// LogicSpec is the blueprint of a leaf element.
//
type LogicSpec struct {
	// Element type name.
	Kind    string
	Inputs  int
	Outputs int
	// Initial sets all outputs to true when the simulation starts.
	Initial bool
	Mount   MountFn
	// Update returns the update functions of a new instance. It is called
	// once per element instance so that closures can keep private state.
	Update func() []UpdateSpec
}

// Logic is a leaf element. It latches its inputs in its own Space and
// computes its outputs into the following Space.
//
type Logic struct {
	spec *LogicSpec
	name string

	srcs    Inputs
	in      Space
	latches []Address
	outs    []Address
}

// NewLogic returns a new Logic element with the given name.
//
func (s *LogicSpec) NewLogic(name string) *Logic {
	return &Logic{
		spec:    s,
		name:    name,
		srcs:    make(Inputs, s.Inputs),
		latches: make([]Address, s.Inputs),
	}
}

func (l *Logic) Name() string        { return l.name }
func (l *Logic) Kind() string        { return l.spec.Kind }
func (l *Logic) Delay() int          { return 0 }
func (l *Logic) Children() []Element { return nil }
func (l *Logic) NumInputs() int      { return l.spec.Inputs }
func (l *Logic) NumOutputs() int     { return l.spec.Outputs }

func (l *Logic) Output(i int) (AddressFunc, error) {
	if i < 0 || i >= l.spec.Outputs {
		return nil, errors.Errorf("%s: output index %d is out of bounds for this element", l.name, i)
	}
	return func() Address {
		if l.outs == nil {
			return Address{}
		}
		return l.outs[i]
	}, nil
}

func (l *Logic) Connect(input int, src Element, srcOutput int) error {
	return l.srcs.Connect(l.name, input, src, srcOutput)
}

// Inputs holds the address providers of the inputs of an element. Custom
// elements use it to implement Element.Connect.
//
type Inputs []AddressFunc

// Connect sets input to read from output srcOutput of src. name is the name
// of the receiving element, used in error messages.
//
func (ins Inputs) Connect(name string, input int, src Element, srcOutput int) error {
	if input < 0 || input >= len(ins) {
		return errors.Errorf("%s: input index %d is out of bounds for this element", name, input)
	}
	if srcOutput < 0 || srcOutput >= src.NumOutputs() {
		return errors.Errorf("%s: need output index %d, but %s only has %d outputs", name, srcOutput, src.Name(), src.NumOutputs())
	}
	f, err := src.Output(srcOutput)
	if err != nil {
		return err
	}
	ins[input] = f
	return nil
}

// Check returns an error if any input is not connected.
//
func (ins Inputs) Check(name string) error {
	for i, f := range ins {
		if f == nil {
			return errors.Errorf("%s: input %d is not connected", name, i)
		}
	}
	return nil
}

// Address returns the address of the output connected to input i.
//
func (ins Inputs) Address(name string, i int) (Address, error) {
	f := ins[i]
	if f == nil {
		return Address{}, errors.Errorf("%s: input %d is not connected", name, i)
	}
	a := f()
	if a.IsZero() {
		return Address{}, errors.Errorf("%s: input %d is connected to an unallocated output", name, i)
	}
	return a, nil
}

func (l *Logic) WriteOutputs(sp Space) ([]*Calculation, error) {
	out, err := sp.Next()
	if err != nil {
		return nil, errors.Wrap(err, l.name)
	}
	l.in = sp
	in := make([]Address, l.spec.Inputs)
	for i := range in {
		in[i] = sp.Static(i, l.inputHint(i))
	}
	outs, calcs, err := l.spec.Mount(in, out)
	if err != nil {
		return nil, errors.Wrap(err, l.name)
	}
	if len(outs) != l.spec.Outputs {
		return nil, errors.Errorf("%s: expected %d output addresses, but got %d", l.name, l.spec.Outputs, len(outs))
	}
	for _, a := range outs {
		if !out.Owns(a) {
			return nil, errors.Errorf("%s: output addresses need to be in outputSpace", l.name)
		}
	}
	l.outs = outs
	return calcs, nil
}

func (l *Logic) inputHint(i int) string {
	return "input " + strconv.Itoa(i) + " of " + l.name
}

// ReadInputs returns one calculation per input, copying the upstream output
// into a fresh latch address.
//
func (l *Logic) ReadInputs() ([]*Calculation, error) {
	if l.in.IsZero() && l.spec.Inputs > 0 {
		return nil, errors.Errorf("%s: inputs read before outputs were written", l.name)
	}
	calcs := make([]*Calculation, 0, len(l.srcs))
	for i := range l.srcs {
		v, err := l.srcs.Address(l.name, i)
		if err != nil {
			return nil, err
		}
		latch := l.in.Static(i, "latched "+l.inputHint(i))
		l.latches[i] = latch
		calcs = append(calcs, &Calculation{Target: latch, Value: v})
	}
	return calcs, nil
}

func (l *Logic) UpdateFuncs() []*UpdateFunc {
	if l.spec.Update == nil {
		return nil
	}
	var fs []*UpdateFunc
	for _, u := range l.spec.Update() {
		in := l.latches
		if u.ReverseInputs {
			in = make([]Address, len(l.latches))
			for i, a := range l.latches {
				in[len(in)-1-i] = a
			}
		}
		fs = append(fs, &UpdateFunc{
			Fn:       u.Fn,
			Interval: u.Interval,
			Inputs:   in,
			Outputs:  l.outs,
		})
	}
	return fs
}

func (l *Logic) InitiallyTrue() []Address {
	if l.spec.Initial {
		return l.outs
	}
	return nil
}

// InputAddress returns the latch address of input i. It is valid after
// ReadInputs.
//
func (l *Logic) InputAddress(i int) Address { return l.latches[i] }

// OutputAddress returns the address of output i. It is valid after
// WriteOutputs.
//
func (l *Logic) OutputAddress(i int) Address { return l.outs[i] }

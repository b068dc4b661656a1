// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type updateInstance struct {
	*UpdateFunc
	in        []bool
	out       []bool
	readers   []func(int) bool
	writers   []func(bool, int)
	stepsLeft int
}

// Circuit is a runnable circuit simulation.
//
// A Circuit is built once from a root element and is never reconfigured.
// It is not safe for concurrent use.
//
type Circuit struct {
	name   string
	root   Element
	log    logrus.FieldLogger
	echo   bool
	layout *Layout
	mods   *moduloTable
	reads  []*Calculation
	writes []*Calculation
	ups    []*updateInstance
	ds     *DataSource
	be     backend

	steps    prometheus.Counter
	updCalls prometheus.Counter
}

// NewCircuit builds a new circuit simulation from the given root element.
//
// The bytecode backend is built with ctx. Callers must call Dispose once the
// circuit is no longer needed in order to release resources held by the
// backend.
//
func NewCircuit(ctx context.Context, root Element, opts ...Option) (*Circuit, error) {
	if root == nil {
		return nil, errors.New("nil root element")
	}
	o := options{
		log:     logrus.StandardLogger(),
		backend: BackendAuto,
		name:    root.Name(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	switch o.backend {
	case "":
		o.backend = BackendAuto
	case BackendAuto, BackendBytecode, BackendInterpreter:
	default:
		return nil, errors.Errorf("unknown backend %q", o.backend)
	}

	c := &Circuit{
		name:   o.name,
		root:   root,
		log:    o.log.WithField(CircuitLabel, o.name),
		echo:   o.echoData,
		layout: NewLayout(),
		mods:   newModuloTable(),
	}

	var err error
	if c.writes, err = root.WriteOutputs(c.layout.Root()); err != nil {
		return nil, err
	}
	if c.reads, err = root.ReadInputs(); err != nil {
		return nil, err
	}
	ufs := root.UpdateFuncs()
	for _, f := range ufs {
		if f.Fn == nil {
			return nil, errors.New("update function without callback")
		}
	}
	initTrue := root.InitiallyTrue()

	// register modulo ops in program order, then those of rotating addresses
	// not referenced by any calculation.
	mc := moduloCollector{c.mods}
	for _, calcs := range [...][]*Calculation{c.reads, c.writes} {
		for i, calc := range calcs {
			if calc == nil || calc.Target.IsZero() {
				return nil, errors.Errorf("calculation %d has no target", i)
			}
			if calc.Value == nil {
				return nil, errors.Errorf("calculation for %s (%s) has no value", calc.Target, calc.Target.Hint())
			}
			if err = mc.calculation(calc); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range c.layout.Addresses() {
		if err = mc.address(a); err != nil {
			return nil, err
		}
	}

	size, err := c.layout.Resolve(c.mods.header())
	if err != nil {
		return nil, err
	}
	calcs := make([]*Calculation, 0, len(c.reads)+len(c.writes))
	calcs = append(append(calcs, c.reads...), c.writes...)

	var d []byte
	if o.backend != BackendInterpreter {
		b, err := newBytecode(ctx, c.layout, c.mods, calcs)
		switch {
		case err == nil:
			c.be, d = b, b.mem
			c.log.Info("using bytecode backend")
		case o.backend == BackendBytecode:
			return nil, errors.Wrap(err, "bytecode backend")
		default:
			backendFallbacksTotal.Inc()
			c.log.WithError(err).Warn("bytecode backend failed, falling back to interpreter")
		}
	}
	if c.be == nil {
		d = make([]byte, size)
		c.be = newInterpreter(d, c.layout, c.mods, calcs)
		c.log.Info("using interpreter backend")
	}

	c.ds = newDataSource(d, c.layout, c.mods)
	c.ds.setN(-1)
	for _, a := range initTrue {
		d[c.layout.Offset(a)] = 1
	}

	for _, f := range ufs {
		u := &updateInstance{
			UpdateFunc: f,
			in:         make([]bool, len(f.Inputs)),
			out:        make([]bool, len(f.Outputs)),
			readers:    make([]func(int) bool, len(f.Inputs)),
			writers:    make([]func(bool, int), len(f.Outputs)),
		}
		for i, a := range f.Inputs {
			u.readers[i] = c.ds.Reader(a)
		}
		for i, a := range f.Outputs {
			u.writers[i] = c.ds.Writer(a)
		}
		c.ups = append(c.ups, u)
	}

	c.steps = stepsTotal.WithLabelValues(c.name, c.be.name())
	c.updCalls = updateCallsTotal.WithLabelValues(c.name)
	arenaBytes.WithLabelValues(c.name).Set(float64(size))

	c.log.WithFields(logrus.Fields{
		"bytes":      size,
		"calcs":      len(calcs),
		"modulo_ops": len(c.mods.ops),
		"updates":    len(c.ups),
	}).Debug("circuit ready")

	if o.echoFunctions {
		for _, op := range c.mods.ops {
			c.log.Info(op.String())
		}
		for _, l := range c.programLines() {
			c.log.Info(l)
		}
	}
	return c, nil
}

// Dispose releases the resources held by the backend. The circuit must not be
// used afterwards.
//
func (c *Circuit) Dispose() error {
	return c.be.close()
}

// Name returns the circuit name.
//
func (c *Circuit) Name() string { return c.name }

// Root returns the root element.
//
func (c *Circuit) Root() Element { return c.root }

// Backend returns the name of the backend in use.
//
func (c *Circuit) Backend() string { return c.be.name() }

// DataSource returns the data source holding the simulation state.
//
func (c *Circuit) DataSource() *DataSource { return c.ds }

// Layout returns the resolved address layout.
//
func (c *Circuit) Layout() *Layout { return c.layout }

// ModuloOps returns the deduplicated modulo operations.
//
func (c *Circuit) ModuloOps() []ModuloOp {
	return append([]ModuloOp(nil), c.mods.ops...)
}

// Steps returns the value of the step counter, i.e. the number of the last
// executed step; it is -1 before the first step.
//
func (c *Circuit) Steps() int64 { return c.ds.N() }

// Get returns the current value of a.
//
func (c *Circuit) Get(a Address) bool {
	return c.ds.Reader(a)(0)
}

// Set sets the value of a.
//
func (c *Circuit) Set(a Address, v bool) {
	c.ds.Writer(a)(v, 0)
}

// Step runs update functions that are due, then advances the simulation by
// cycles steps.
//
// Update functions run at most once per call: an update function with an
// interval of 10 runs once every call to Step(20).
//
func (c *Circuit) Step(cycles int) {
	if cycles <= 0 {
		return
	}
	for _, u := range c.ups {
		if u.stepsLeft <= 0 {
			c.update(u)
			u.stepsLeft = u.Interval
		}
		u.stepsLeft -= cycles
	}
	c.be.step(cycles)
	c.steps.Add(float64(cycles))
	if c.echo {
		c.log.WithField("n", c.ds.N()).Info(hex.EncodeToString(c.ds.Cells()))
	}
}

func (c *Circuit) update(u *updateInstance) {
	for i, r := range u.readers {
		u.in[i] = r(0)
	}
	c.updCalls.Inc()
	if !u.Fn(u.in, u.out) {
		return
	}
	for i, w := range u.writers {
		w(u.out[i], 0)
	}
}

func (c *Circuit) programLines() []string {
	p := &lister{l: c.layout, mods: c.mods}
	lines := make([]string, 0, len(c.reads)+len(c.writes))
	for _, calc := range c.reads {
		lines = append(lines, p.calculation(calc))
	}
	for _, calc := range c.writes {
		lines = append(lines, p.calculation(calc))
	}
	return lines
}

// Program returns a listing of the program run at every step: modulo
// operations, then input latching and output calculations, in execution
// order. Cells are denoted d[offset] and modulo results a[index].
//
func (c *Circuit) Program() string {
	var b strings.Builder
	for _, op := range c.mods.ops {
		b.WriteString(op.String())
		b.WriteString(";\n")
	}
	for _, l := range c.programLines() {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Bytecode returns the binary step module for the circuit, whether or not the
// bytecode backend is in use.
//
func (c *Circuit) Bytecode() ([]byte, error) {
	if b, ok := c.be.(*bytecode); ok {
		return b.code, nil
	}
	calcs := append(append([]*Calculation(nil), c.reads...), c.writes...)
	return stepModule(c.layout, c.mods, calcs)
}

// setSteps sets the step counter. Modulo results are refreshed on the next
// step.
func (c *Circuit) setSteps(n int64) {
	c.ds.setN(n)
}

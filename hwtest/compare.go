// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/db47h/vollgas"
	"github.com/db47h/vollgas/hwlib"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

// A BuildFn returns a new instance of the element under test. It is called
// once per circuit.
//
type BuildFn func() (vollgas.Element, error)

// wrap returns a Combined element feeding the inputs of e from source
// terminals that read inputs and exporting all outputs of e.
func wrap(name string, e vollgas.Element, inputs []bool) (*vollgas.Combined, error) {
	ws := make([]vollgas.Wiring, 0, len(inputs)+1)
	ins := make([]vollgas.Input, len(inputs))
	for i := range inputs {
		k := i
		n := "in" + strconv.Itoa(i)
		ws = append(ws, vollgas.Wiring{Name: n, Element: hwlib.Source(n, func() bool { return inputs[k] })})
		ins[i] = vollgas.Input{From: n}
	}
	outs := make([]int, e.NumOutputs())
	for i := range outs {
		outs[i] = i
	}
	ws = append(ws, vollgas.Wiring{Name: "dut", Element: e, Inputs: ins, Outputs: outs})
	return vollgas.NewCombined(name, ws)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

func randBool() bool {
	return rand.Int63()&(1<<62) != 0
}

func inputString(inputs []bool) string {
	var b strings.Builder
	for i, v := range inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "in%d=%v", i, v)
	}
	return b.String()
}

func newCircuit(t *testing.T, name, backend string, build BuildFn, inputs []bool) *vollgas.Circuit {
	t.Helper()
	e, err := build()
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != e.NumInputs() {
		t.Fatalf("%s: element has %d inputs, expected %d", name, e.NumInputs(), len(inputs))
	}
	root, err := wrap(name, e, inputs)
	if err != nil {
		t.Fatal(err)
	}
	c, err := vollgas.NewCircuit(context.Background(), root,
		vollgas.WithBackend(backend), vollgas.WithName(name), vollgas.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// CompareBackends builds the element returned by build twice, once for each
// backend, feeds both with the same random inputs and checks that both arenas
// are byte identical after every batch of steps.
//
// Inputs are randomized before each batch. The test is skipped if the
// bytecode backend is not available on this platform.
//
func CompareBackends(t *testing.T, build BuildFn, steps, batch int) {
	t.Helper()
	rand.Seed(time.Now().UnixNano())

	e, err := build()
	if err != nil {
		t.Fatal(err)
	}
	inputs := make([]bool, e.NumInputs())

	ci := newCircuit(t, "interpreter", vollgas.BackendInterpreter, build, inputs)
	defer ci.Dispose()
	cb := newCircuit(t, "bytecode", vollgas.BackendAuto, build, inputs)
	defer cb.Dispose()
	if cb.Backend() != vollgas.BackendBytecode {
		t.Skip("bytecode backend not available")
	}

	start := time.Now()
	for done := 0; done < steps; done += batch {
		for i := range inputs {
			inputs[i] = randBool()
		}
		ci.Step(batch)
		cb.Step(batch)
		if diff := cmp.Diff(ci.DataSource().Bytes(), cb.DataSource().Bytes()); diff != "" {
			t.Fatalf("arena mismatch after step %d with %s (-interpreter +bytecode):\n%s", ci.Steps(), inputString(inputs), diff)
		}
	}
	t.Logf("%d bytes of state. %d steps per backend in %v", len(ci.DataSource().Bytes()), ci.Steps()+1, time.Since(start))
}

// CompareElements builds two elements with the same interface, feeds them with
// the same random inputs and compares their outputs after settle steps.
//
// Inputs are first all false, then all true, then random for up to 2^12
// iterations.
//
func CompareElements(t *testing.T, settle int, build1, build2 BuildFn) {
	t.Helper()
	rand.Seed(time.Now().UnixNano())

	e1, err := build1()
	if err != nil {
		t.Fatal(err)
	}
	e2, err := build2()
	if err != nil {
		t.Fatal(err)
	}
	if e1.NumInputs() != e2.NumInputs() {
		t.Fatalf("%s has %d inputs, %s has %d", e1.Name(), e1.NumInputs(), e2.Name(), e2.NumInputs())
	}
	if e1.NumOutputs() != e2.NumOutputs() {
		t.Fatalf("%s has %d outputs, %s has %d", e1.Name(), e1.NumOutputs(), e2.Name(), e2.NumOutputs())
	}

	inputs := make([]bool, e1.NumInputs())
	c1 := newCircuit(t, "element1", vollgas.BackendAuto, build1, inputs)
	defer c1.Dispose()
	c2 := newCircuit(t, "element2", vollgas.BackendAuto, build2, inputs)
	defer c2.Dispose()
	o1, err := hwlib.OutputAddresses(c1.Root())
	if err != nil {
		t.Fatal(err)
	}
	o2, err := hwlib.OutputAddresses(c2.Root())
	if err != nil {
		t.Fatal(err)
	}

	check := func() {
		t.Helper()
		for i := 0; i < settle; i++ {
			c1.Step(1)
			c2.Step(1)
		}
		for o := range o1 {
			if v1, v2 := c1.Get(o1[o]), c2.Get(o2[o]); v1 != v2 {
				t.Fatalf("\nExpected %s => out%d=%v\nGot %v", inputString(inputs), o, v1, v2)
			}
		}
	}

	check()
	for i := range inputs {
		inputs[i] = true
	}
	check()

	iter := len(inputs)
	if iter > 12 {
		iter = 12
	}
	for i := 0; i < 1<<uint(iter); i++ {
		for in := range inputs {
			inputs[in] = randBool()
		}
		check()
	}
}

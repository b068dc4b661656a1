package hwlib_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/db47h/vollgas"
	hl "github.com/db47h/vollgas/hwlib"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var backends = []string{vollgas.BackendInterpreter, vollgas.BackendBytecode}

// harness drives the inputs of an element with source terminals and exposes
// its outputs.
type harness struct {
	c    *vollgas.Circuit
	in   []bool
	outs []vollgas.Address
}

func newHarness(t *testing.T, backend string, e vollgas.Element) *harness {
	t.Helper()
	h := &harness{in: make([]bool, e.NumInputs())}
	ws := make([]vollgas.Wiring, 0, len(h.in)+1)
	ins := make([]vollgas.Input, len(h.in))
	for i := range h.in {
		p := &h.in[i]
		n := "in" + strconv.Itoa(i)
		ws = append(ws, vollgas.Wiring{Name: n, Element: hl.Source(n, func() bool { return *p })})
		ins[i] = vollgas.Input{From: n}
	}
	outs := make([]int, e.NumOutputs())
	for i := range outs {
		outs[i] = i
	}
	ws = append(ws, vollgas.Wiring{Name: "dut", Element: e, Inputs: ins, Outputs: outs})
	root, err := vollgas.NewCombined("test", ws)
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	h.c, err = vollgas.NewCircuit(context.Background(), root, vollgas.WithBackend(backend), vollgas.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { h.c.Dispose() })
	h.outs, err = hl.OutputAddresses(root)
	require.NoError(t, err)
	return h
}

func (h *harness) settle(steps int) {
	for i := 0; i < steps; i++ {
		h.c.Step(1)
	}
}

func (h *harness) out(i int) bool { return h.c.Get(h.outs[i]) }

// set sets the inputs to the bits of v, input 0 being the most significant
// bit.
func (h *harness) set(v int) {
	for bit := range h.in {
		h.in[len(h.in)-bit-1] = v&(1<<uint(bit)) != 0
	}
}

const settleSteps = 16

// testGate checks the outputs of a gate for every combination of its inputs.
// result[o][i] is the expected value of output o for input vector i, the
// first input being the most significant bit of i.
func testGate(t *testing.T, build func() (vollgas.Element, error), result [][]bool) {
	t.Helper()
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			e, err := build()
			require.NoError(t, err)
			h := newHarness(t, be, e)
			require.Len(t, result, len(h.outs))
			for i := 0; i < 1<<uint(len(h.in)); i++ {
				h.set(i)
				h.settle(settleSteps)
				for o := range h.outs {
					if exp := result[o][i]; h.out(o) != exp {
						t.Errorf("%s %v: output %d = %v, got %v", e.Kind(), h.in, o, exp, h.out(o))
					}
				}
			}
		})
	}
}

func bools(bits ...int) []bool {
	r := make([]bool, len(bits))
	for i, b := range bits {
		r[i] = b != 0
	}
	return r
}

func Test_gates(t *testing.T) {
	var cfg hl.Config
	td := []struct {
		name   string
		gate   func() (vollgas.Element, error)
		result [][]bool
	}{
		{"NOR", func() (vollgas.Element, error) { return hl.Nor(cfg, "nor", 2, false) }, [][]bool{bools(1, 0, 0, 0)}},
		{"NOR3", func() (vollgas.Element, error) { return hl.Nor(cfg, "nor", 3, false) }, [][]bool{bools(1, 0, 0, 0, 0, 0, 0, 0)}},
		{"NORs", func() (vollgas.Element, error) { return hl.Nors(cfg, "nors", 2) }, [][]bool{
			bools(1, 1, 0, 0),
			bools(1, 0, 1, 0),
		}},
		{"NOT", func() (vollgas.Element, error) { return hl.Not(cfg, "not") }, [][]bool{bools(1, 0)}},
		{"OR", func() (vollgas.Element, error) { return hl.Or(cfg, "or", 2) }, [][]bool{bools(0, 1, 1, 1)}},
		{"AND", func() (vollgas.Element, error) { return hl.And(cfg, "and", 2) }, [][]bool{bools(0, 0, 0, 1)}},
		{"AND3", func() (vollgas.Element, error) { return hl.And(cfg, "and", 3) }, [][]bool{bools(0, 0, 0, 0, 0, 0, 0, 1)}},
		{"XOR", func() (vollgas.Element, error) { return hl.Xor(cfg, "xor") }, [][]bool{bools(0, 1, 1, 0)}},
		{"HalfAdder", func() (vollgas.Element, error) { return hl.HalfAdder(cfg, "ha") }, [][]bool{
			bools(0, 1, 1, 0),
			bools(0, 0, 0, 1),
		}},
		{"FullAdder", func() (vollgas.Element, error) { return hl.FullAdder(cfg, "fa") }, [][]bool{
			bools(0, 1, 1, 0, 1, 0, 0, 1),
			bools(0, 0, 0, 1, 0, 1, 1, 1),
		}},
		{"MUX", func() (vollgas.Element, error) { return hl.Mux(cfg, "mux", 1) }, [][]bool{bools(0, 0, 0, 1, 1, 0, 1, 1)}},
		{"Decoder", func() (vollgas.Element, error) { return hl.Decoder(cfg, "dec", 2) }, [][]bool{
			bools(1, 0, 0, 0),
			bools(0, 0, 1, 0),
			bools(0, 1, 0, 0),
			bools(0, 0, 0, 1),
		}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

func Test_gates_delay(t *testing.T) {
	cfg := hl.Config{NorDelay: 2}
	testGate(t, func() (vollgas.Element, error) { return hl.Xor(cfg, "xor") }, [][]bool{bools(0, 1, 1, 0)})
}

func TestNor(t *testing.T) {
	_, err := hl.Nor(hl.Config{}, "nor", 0, false)
	require.EqualError(t, err, "nor: need at least one input")

	e, err := hl.Nor(hl.Config{NorDelay: 3}, "nor", 2, true)
	require.NoError(t, err)
	require.Equal(t, "Combined/Nor", e.Kind())
	require.Equal(t, 3, e.Delay())
	require.Equal(t, 2, e.NumInputs())
	require.Equal(t, 1, e.NumOutputs())

	e, err = hl.Nor(hl.Config{}, "nor", 2, true)
	require.NoError(t, err)
	require.Equal(t, "Nor", e.Kind())
	require.Zero(t, e.Delay())
}

func TestNor_initial(t *testing.T) {
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			nor, err := hl.Nor(hl.Config{}, "nor", 1, true)
			require.NoError(t, err)
			h := newHarness(t, be, nor)
			require.True(t, h.out(0))
			// input false: the output keeps its initial value
			h.c.Step(1)
			require.True(t, h.out(0))
			require.False(t, h.c.Get(nor.(*vollgas.Logic).InputAddress(0)))
			h.in[0] = true
			h.c.Step(1)
			require.False(t, h.out(0))
			require.True(t, h.c.Get(nor.(*vollgas.Logic).InputAddress(0)))
		})
	}
}

func TestErrors(t *testing.T) {
	var cfg hl.Config
	td := []struct {
		name string
		fn   func() (vollgas.Element, error)
		err  string
	}{
		{"or", func() (vollgas.Element, error) { return hl.Or(cfg, "or", 0) }, "or: need at least one input"},
		{"and", func() (vollgas.Element, error) { return hl.And(cfg, "and", -1) }, "and: need at least one input"},
		{"mux", func() (vollgas.Element, error) { return hl.Mux(cfg, "mux", 0) }, "mux: invalid bit count 0"},
		{"decoder", func() (vollgas.Element, error) { return hl.Decoder(cfg, "dec", 17) }, "dec: invalid bit count 17"},
		{"register", func() (vollgas.Element, error) { return hl.Register(cfg, "reg", 0) }, "reg: invalid bit count 0"},
		{"adder", func() (vollgas.Element, error) { return hl.Adder(cfg, "add", -2) }, "add: invalid bit count -2"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := d.fn()
			require.EqualError(t, err, d.err)
		})
	}
}

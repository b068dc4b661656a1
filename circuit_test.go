package vollgas_test

import (
	"context"
	"strings"
	"testing"

	"github.com/db47h/vollgas"
	hl "github.com/db47h/vollgas/hwlib"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backends = []string{vollgas.BackendInterpreter, vollgas.BackendBytecode}

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func newCircuit(t *testing.T, root vollgas.Element, opts ...vollgas.Option) *vollgas.Circuit {
	t.Helper()
	log, _ := test.NewNullLogger()
	c, err := vollgas.NewCircuit(context.Background(), root, append([]vollgas.Option{vollgas.WithLogger(log)}, opts...)...)
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Dispose() })
	return c
}

func combined(t *testing.T, ws ...vollgas.Wiring) *vollgas.Combined {
	t.Helper()
	c, err := vollgas.NewCombined("root", ws)
	require.NoError(t, err)
	return c
}

func outputs(t *testing.T, e vollgas.Element) []vollgas.Address {
	t.Helper()
	as, err := hl.OutputAddresses(e)
	require.NoError(t, err)
	return as
}

func TestCircuit_initial(t *testing.T) {
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			n, err := hl.Nor(hl.Config{}, "nor", 1, true)
			require.NoError(t, err)
			root := combined(t,
				vollgas.Wiring{Name: "one", Element: hl.Const("one", true)},
				vollgas.Wiring{Name: "nor", Element: n, Inputs: vollgas.In("one"), Outputs: []int{0}},
			)
			c := newCircuit(t, root, vollgas.WithBackend(be))
			require.Equal(t, be, c.Backend())
			out := outputs(t, root)[0]
			require.Equal(t, int64(-1), c.Steps())
			require.True(t, c.Get(out))
			c.Step(1)
			require.Equal(t, int64(0), c.Steps())
			require.False(t, c.Get(out))
		})
	}
}

func TestCircuit_errors(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	_, err := vollgas.NewCircuit(ctx, nil)
	require.EqualError(t, err, "nil root element")

	_, err = vollgas.NewCircuit(ctx, hl.Const("c", true), vollgas.WithBackend("jit"), vollgas.WithLogger(log))
	require.EqualError(t, err, `unknown backend "jit"`)

	n, err := hl.Nor(hl.Config{}, "nor", 2, false)
	require.NoError(t, err)
	_, err = vollgas.NewCircuit(ctx, n, vollgas.WithLogger(log))
	require.EqualError(t, err, "nor: input 0 is not connected")

	_, err = vollgas.NewCircuit(ctx, hl.Blinker("b", 0, 0, 0), vollgas.WithLogger(log))
	require.EqualError(t, err, "alternating value: invalid modulus 0")

	_, err = vollgas.NewCircuit(ctx, hl.Blinker("b", -1, 3, 0), vollgas.WithLogger(log))
	require.EqualError(t, err, "invalid alternating value on -1, off 3")

	_, err = vollgas.NewCircuit(ctx, hl.Blinker("b", 1, 3, -2), vollgas.WithLogger(log))
	require.EqualError(t, err, "alternating value: invalid start offset -2")
}

func TestCircuit_fallback(t *testing.T) {
	restore := vollgas.SetHostLittleEndian(false)
	defer restore()

	log, hook := test.NewNullLogger()
	c, err := vollgas.NewCircuit(context.Background(), hl.Blinker("b", 1, 1, 0), vollgas.WithLogger(log))
	require.NoError(t, err)
	defer c.Dispose()
	require.Equal(t, vollgas.BackendInterpreter, c.Backend())
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, "bytecode backend failed, falling back to interpreter", e.Message)
			assert.EqualError(t, e.Data[logrus.ErrorKey].(error), "system is not little-endian")
		}
	}
	require.True(t, warned, "no fallback warning logged")

	_, err = vollgas.NewCircuit(context.Background(), hl.Blinker("b", 1, 1, 0),
		vollgas.WithLogger(log), vollgas.WithBackend(vollgas.BackendBytecode))
	require.EqualError(t, err, "bytecode backend: system is not little-endian")
}

func TestCircuit_alternating(t *testing.T) {
	a := vollgas.Alternating{On: 2, Off: 3}
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			b := hl.Blinker("b", a.On, a.Off, a.StartOffset)
			c := newCircuit(t, b, vollgas.WithBackend(be))
			for n := int64(0); n < 10; n++ {
				c.Step(1)
				require.Equal(t, a.At(n), c.Get(b.OutputAddress(0)), "step %d", n)
			}
		})
	}
}

// counters near 2^32 and beyond must not wrap.
func TestCircuit_largeCounter(t *testing.T) {
	const start = 1<<33 - 3
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			w := hl.NewWire("w", 3, false, 1)
			a := vollgas.Alternating{On: 3, Off: 4, StartOffset: 5}
			root := combined(t,
				vollgas.Wiring{Name: "b", Element: hl.Blinker("b", a.On, a.Off, a.StartOffset), Outputs: []int{0}},
				vollgas.Wiring{Name: "w", Element: w, Inputs: vollgas.In("b")},
			)
			c := newCircuit(t, root, vollgas.WithBackend(be))
			out := outputs(t, root)[0]
			vollgas.SetSteps(c, start)
			for i := 0; i < 8; i++ {
				c.Step(1)
				n := c.Steps()
				require.Equal(t, int64(start)+int64(i)+1, n)
				for j, op := range c.ModuloOps() {
					require.Equal(t, op.Eval(n), c.DataSource().Counter(j), "%s at step %d", op, n)
				}
				require.Equal(t, a.At(n), c.Get(out), "step %d", n)
			}
		})
	}
}

func TestCircuit_stepBatches(t *testing.T) {
	build := func() vollgas.Element {
		cfg := hl.Config{NorDelay: 2}
		clk := hl.Clock("clk", 3, 5, 2)
		w := hl.NewWire("w", 4, true, 3)
		x, err := hl.Xor(cfg, "x")
		require.NoError(t, err)
		return combined(t,
			vollgas.Wiring{Name: "clk", Element: clk},
			vollgas.Wiring{Name: "w", Element: w, Inputs: vollgas.In("clk[0..2]"), Outputs: []int{0, 1, 2}},
			vollgas.Wiring{Name: "x", Element: x, Inputs: vollgas.In("w[0], clk[1]"), Outputs: []int{0}},
		)
	}
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			c1 := newCircuit(t, build(), vollgas.WithBackend(be))
			c2 := newCircuit(t, build(), vollgas.WithBackend(be))
			c3 := newCircuit(t, build(), vollgas.WithBackend(be))
			for i := 0; i < 37; i++ {
				c1.Step(1)
			}
			c2.Step(37)
			c3.Step(10)
			c3.Step(0)
			c3.Step(-4)
			c3.Step(27)
			require.Equal(t, int64(36), c1.Steps())
			require.Equal(t, c1.DataSource().Bytes(), c2.DataSource().Bytes())
			require.Equal(t, c1.DataSource().Bytes(), c3.DataSource().Bytes())
		})
	}
}

func TestCircuit_emptyFolds(t *testing.T) {
	spec := vollgas.LogicSpec{
		Kind:    "Folds",
		Outputs: 2,
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			a, o := out.Static(0, "and"), out.Static(1, "or")
			return []vollgas.Address{a, o}, []*vollgas.Calculation{
				{Target: a, Value: vollgas.And{}},
				{Target: o, Value: vollgas.Or{}},
			}, nil
		},
	}
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			l := spec.NewLogic("folds")
			c := newCircuit(t, l, vollgas.WithBackend(be))
			c.Step(1)
			require.True(t, c.Get(l.OutputAddress(0)))
			require.False(t, c.Get(l.OutputAddress(1)))
		})
	}
}

func TestCircuit_mountErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	bad := vollgas.LogicSpec{
		Kind:    "Bad",
		Outputs: 2,
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			return []vollgas.Address{out.Static(0, "")}, nil, nil
		},
	}
	_, err := vollgas.NewCircuit(ctx, bad.NewLogic("bad"), vollgas.WithLogger(log))
	require.EqualError(t, err, "bad: expected 2 output addresses, but got 1")

	bad.Outputs = 1
	bad.Mount = func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
		next, _ := out.Next()
		return []vollgas.Address{next.Static(0, "")}, nil, nil
	}
	_, err = vollgas.NewCircuit(ctx, bad.NewLogic("bad"), vollgas.WithLogger(log))
	require.EqualError(t, err, "bad: output addresses need to be in outputSpace")

	bad.Mount = func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
		o := out.Static(0, "out")
		return []vollgas.Address{o}, []*vollgas.Calculation{{Target: o}}, nil
	}
	_, err = vollgas.NewCircuit(ctx, bad.NewLogic("bad"), vollgas.WithLogger(log))
	require.EqualError(t, err, "calculation for s1+0 (out) has no value")

	// no backend gets built for circuits with invalid update functions.
	log, hook := test.NewNullLogger()
	bad.Mount = func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
		return []vollgas.Address{out.Static(0, "out")}, nil, nil
	}
	bad.Update = func() []vollgas.UpdateSpec { return []vollgas.UpdateSpec{{Interval: 1}} }
	for _, be := range backends {
		_, err = vollgas.NewCircuit(ctx, bad.NewLogic("bad"), vollgas.WithLogger(log), vollgas.WithBackend(be))
		require.EqualError(t, err, "update function without callback")
	}
	require.Empty(t, hook.AllEntries())
}

func TestCircuit_updateInterval(t *testing.T) {
	var calls int
	spec := vollgas.LogicSpec{
		Kind:    "Counter",
		Outputs: 1,
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			return []vollgas.Address{out.Static(0, "out")}, nil, nil
		},
		Update: func() []vollgas.UpdateSpec {
			return []vollgas.UpdateSpec{{
				Fn: func(_, out []bool) bool {
					calls++
					out[0] = !out[0]
					return calls%2 == 1
				},
				Interval: 3,
			}}
		},
	}
	l := spec.NewLogic("counter")
	c := newCircuit(t, l)
	c.Step(1)
	require.Equal(t, 1, calls)
	require.True(t, c.Get(l.OutputAddress(0)))
	c.Step(1)
	c.Step(1)
	require.Equal(t, 1, calls)
	c.Step(1)
	require.Equal(t, 2, calls)
	require.True(t, c.Get(l.OutputAddress(0)), "outputs not written back when fn returns false")
	// at most one call per Step
	c.Step(2)
	c.Step(30)
	require.Equal(t, 3, calls)
	c.Step(1)
	require.Equal(t, 4, calls)
}

func TestCircuit_getSet(t *testing.T) {
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			w := hl.NewWire("w", 2, false, 1)
			root := combined(t,
				vollgas.Wiring{Name: "zero", Element: hl.Const("zero", false)},
				vollgas.Wiring{Name: "w", Element: w, Inputs: vollgas.In("zero"), Outputs: []int{0}},
			)
			c := newCircuit(t, root, vollgas.WithBackend(be))
			c.Step(1)
			c.Set(w.DelayBuffer(0), true)
			require.True(t, c.Get(w.DelayBuffer(0)))
			c.Step(1)
			require.True(t, c.Get(outputs(t, root)[0]))
			c.Step(1)
			require.False(t, c.Get(outputs(t, root)[0]))
		})
	}
}

func TestCircuit_Program(t *testing.T) {
	c := newCircuit(t, hl.Blinker("b", 2, 3, 0), vollgas.WithBackend(vollgas.BackendInterpreter))
	require.Equal(t, "a[0] = (n + 0) % 5;\nd[12] = a[0] < 2; // output of blinker\n", c.Program())
	require.Equal(t, []vollgas.ModuloOp{{Mod: 5, StartOffset: 0, Index: 0}}, c.ModuloOps())
	require.Equal(t, 13, len(c.DataSource().Bytes()))
	require.Equal(t, 12, c.DataSource().CellsOffset())
	require.Equal(t, 1, c.DataSource().CountersLen())
	c.Step(7)
	require.Equal(t, int64(6), c.Steps())
	require.Equal(t, []uint32{1}, c.DataSource().Counters())

	code, err := c.Bytecode()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(code), "\x00asm\x01\x00\x00\x00"))
}

func TestCircuit_echo(t *testing.T) {
	log, hook := test.NewNullLogger()
	c, err := vollgas.NewCircuit(context.Background(), hl.Blinker("b", 2, 3, 0),
		vollgas.WithLogger(log), vollgas.WithEcho(true, true), vollgas.WithName("echo"),
		vollgas.WithBackend(vollgas.BackendInterpreter))
	require.NoError(t, err)
	defer c.Dispose()
	require.Equal(t, "echo", c.Name())
	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	require.Contains(t, msgs, "a[0] = (n + 0) % 5")
	require.Contains(t, msgs, "d[12] = a[0] < 2; // output of blinker")

	hook.Reset()
	c.Step(1)
	e := hook.LastEntry()
	require.NotNil(t, e)
	require.Equal(t, int64(0), e.Data["n"])
	require.Equal(t, "01", e.Message)
}

func TestRegisterMetrics(t *testing.T) {
	r := prometheus.NewRegistry()
	require.NoError(t, vollgas.RegisterMetrics(r))
	require.Error(t, vollgas.RegisterMetrics(r))

	c := newCircuit(t, hl.Blinker("b", 1, 1, 0), vollgas.WithName("metrics"))
	c.Step(5)
	mfs, err := r.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "vollgas_steps_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == vollgas.CircuitLabel && l.GetValue() == "metrics" {
					found = true
					require.Equal(t, float64(5), m.GetCounter().GetValue())
				}
			}
		}
	}
	require.True(t, found)
}

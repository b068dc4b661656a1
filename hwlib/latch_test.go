package hwlib_test

import (
	"testing"

	"github.com/db47h/vollgas"
	hl "github.com/db47h/vollgas/hwlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSLatch(t *testing.T) {
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			l, err := hl.RSLatch(hl.Config{}, "rs", false)
			require.NoError(t, err)
			h := newHarness(t, be, l)
			h.settle(settleSteps)
			assert.False(t, h.out(0))
			assert.True(t, h.out(1))

			h.in[1] = true // set
			h.settle(settleSteps)
			assert.True(t, h.out(0))
			assert.False(t, h.out(1))

			h.in[1] = false
			h.settle(settleSteps)
			assert.True(t, h.out(0))

			h.in[0] = true // reset
			h.settle(settleSteps)
			assert.False(t, h.out(0))
			assert.True(t, h.out(1))
		})
	}
}

func TestDLatch(t *testing.T) {
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			for _, initial := range []bool{false, true} {
				l, err := hl.DLatch(hl.Config{}, "d", initial)
				require.NoError(t, err)
				h := newHarness(t, be, l)
				h.settle(settleSteps)
				require.Equal(t, initial, h.out(0), "initial state")
				require.Equal(t, !initial, h.out(1))
			}

			l, err := hl.DLatch(hl.Config{}, "d", false)
			require.NoError(t, err)
			h := newHarness(t, be, l)
			steps := []struct {
				d, e bool
				q    bool
			}{
				{true, false, false},
				{true, true, true},
				{true, false, true},
				{false, false, true},
				{false, true, false},
				{false, false, false},
				{true, false, false},
			}
			for i, s := range steps {
				h.in[0], h.in[1] = s.d, s.e
				h.settle(settleSteps)
				assert.Equal(t, s.q, h.out(0), "step %d: q", i)
				assert.Equal(t, !s.q, h.out(1), "step %d: qn", i)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	for _, be := range backends {
		t.Run(be, func(t *testing.T) {
			r, err := hl.Register(hl.Config{}, "reg", 4)
			require.NoError(t, err)
			require.Equal(t, "Combined/Register", r.Kind())
			h := newHarness(t, be, r)
			load := func(v int, e bool) {
				for i := 0; i < 4; i++ {
					h.in[i] = v&(1<<uint(i)) != 0
				}
				h.in[4] = e
				h.settle(settleSteps)
			}
			value := func() int64 { return hl.Int64(h.c, h.outs) }

			load(0xa, false)
			assert.Equal(t, int64(0), value())
			load(0xa, true)
			assert.Equal(t, int64(0xa), value())
			load(0xa, false)
			load(0x5, false)
			assert.Equal(t, int64(0xa), value())
			load(0x5, true)
			assert.Equal(t, int64(0x5), value())
		})
	}
}

var _ vollgas.Element = (*hl.Wire)(nil)
var _ vollgas.Element = (*hl.Split)(nil)

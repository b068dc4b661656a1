package hwtest_test

import (
	"testing"

	"github.com/db47h/vollgas"
	hl "github.com/db47h/vollgas/hwlib"
	"github.com/db47h/vollgas/hwtest"
)

var orSpec = vollgas.LogicSpec{
	Kind:    "OrRule",
	Inputs:  2,
	Outputs: 1,
	Mount: func(in []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
		o := out.Static(0, "or output")
		return []vollgas.Address{o}, []*vollgas.Calculation{{Target: o, Value: vollgas.Or{in[0], in[1]}}}, nil
	},
}

func TestCompareElements(t *testing.T) {
	hwtest.CompareElements(t, 4,
		func() (vollgas.Element, error) { return hl.Or(hl.Config{}, "or", 2) },
		func() (vollgas.Element, error) { return orSpec.NewLogic("custom_or"), nil },
	)
}

func TestCompareBackends(t *testing.T) {
	cfg := hl.Config{NorDelay: 1}
	td := []struct {
		name  string
		build hwtest.BuildFn
	}{
		{"adder", func() (vollgas.Element, error) { return hl.Adder(cfg, "adder", 4) }},
		{"register", func() (vollgas.Element, error) { return hl.Register(hl.Config{}, "reg", 4) }},
		{"decoder", func() (vollgas.Element, error) { return hl.Decoder(cfg, "dec", 3) }},
		{"clock", func() (vollgas.Element, error) { return hl.Clock("clk", 7, 3, 11), nil }},
		{"wire", func() (vollgas.Element, error) { return hl.NewWire("w", 5, true, 3), nil }},
		{"rom", func() (vollgas.Element, error) { return hl.ROM("rom", 3, []uint32{1, 2, 3, 0xffffffff}), nil }},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			hwtest.CompareBackends(t, d.build, 400, 7)
		})
	}
}

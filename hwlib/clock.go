// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
)

// Micro16 clock phase durations in steps.
//
const (
	Micro16InstructionDelay = 800
	Micro16ALUDelay         = 1400
	Micro16RegistersDelay   = 400
)

// Clock returns a multi-phase clock with one output per phase. Phases follow
// each other: output i is true for delays[i] steps, then output i+1 takes
// over. The whole cycle lasts sum(delays) steps and phase 0 starts at step 0.
//
func Clock(name string, delays ...int) *vollgas.Logic {
	ds := append([]int(nil), delays...)
	s := &vollgas.LogicSpec{
		Kind:    "Clock",
		Outputs: len(ds),
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			sum := 0
			for _, d := range ds {
				sum += d
			}
			outs := make([]vollgas.Address, len(ds))
			calcs := make([]*vollgas.Calculation, len(ds))
			before := 0
			for i, d := range ds {
				outs[i] = out.Static(i, "clock phase "+strconv.Itoa(i))
				calcs[i] = &vollgas.Calculation{
					Target: outs[i],
					Value:  vollgas.Alternating{On: d, Off: sum - d, StartOffset: sum - before},
				}
				before += d
			}
			return outs, calcs, nil
		},
	}
	return s.NewLogic(name)
}

// Micro16Clock returns the three phase clock of the Micro16 CPU.
//
//	Outputs: instruction, alu, registers
//
func Micro16Clock(name string) *vollgas.Logic {
	return Clock(name, Micro16InstructionDelay, Micro16ALUDelay, Micro16RegistersDelay)
}

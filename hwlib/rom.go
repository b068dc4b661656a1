// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// WordSize is the width in bits of ROM words.
//
const WordSize = 32

// ROM returns a read only memory of 32 bit words with addrBits address
// inputs.
//
//	Inputs: addr[0]..addr[addrBits-1]
//	Outputs: out[0]..out[31]
//	Function: out[j] = bit 31-j of words[addr]
//
// addr[0] is the least significant address bit and out[0] is the most
// significant bit of the word. Outputs are false for addresses beyond the end
// of words. The outputs are updated before a step whenever the address
// changes.
//
func ROM(name string, addrBits int, words []uint32) *vollgas.Logic {
	ws := append([]uint32(nil), words...)
	s := &vollgas.LogicSpec{
		Kind:    "ROM",
		Inputs:  addrBits,
		Outputs: WordSize,
		Mount: func(_ []vollgas.Address, out vollgas.Space) ([]vollgas.Address, []*vollgas.Calculation, error) {
			outs := make([]vollgas.Address, WordSize)
			for i := range outs {
				outs[i] = out.Static(i, "rom output "+strconv.Itoa(i))
			}
			return outs, nil, nil
		},
		Update: func() []vollgas.UpdateSpec {
			cur := -1
			return []vollgas.UpdateSpec{{
				Fn: func(in, out []bool) bool {
					idx := 0
					for _, v := range in {
						idx <<= 1
						if v {
							idx |= 1
						}
					}
					if idx == cur {
						return false
					}
					cur = idx
					var w uint32
					if idx < len(ws) {
						w = ws[idx]
					}
					for j := range out {
						out[j] = w&(1<<uint(WordSize-1-j)) != 0
					}
					return true
				},
				Interval:      1,
				ReverseInputs: true,
			}}
		},
	}
	return s.NewLogic(name)
}

// Micro16Store returns the control store of the Micro16 CPU: a ROM with 8
// address inputs loaded from a string of hexadecimal digits, 8 digits per
// word.
//
func Micro16Store(name string, code string) (*vollgas.Logic, error) {
	if len(code)%8 != 0 {
		return nil, errors.Errorf("%s: code length is %d, but needs to be a multiple of 8", name, len(code))
	}
	words := make([]uint32, len(code)/8)
	for i := range words {
		w, err := strconv.ParseUint(code[8*i:8*i+8], 16, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid word %d", name, i)
		}
		words[i] = uint32(w)
	}
	return ROM(name, 8, words), nil
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/vollgas"
	"github.com/pkg/errors"
)

// OutputAddresses returns the addresses of all outputs of e. It must be called
// after the circuit containing e has been built.
//
func OutputAddresses(e vollgas.Element) ([]vollgas.Address, error) {
	as := make([]vollgas.Address, e.NumOutputs())
	for i := range as {
		f, err := e.Output(i)
		if err != nil {
			return nil, err
		}
		if as[i] = f(); as[i].IsZero() {
			return nil, errors.Errorf("%s: output %d is not allocated", e.Name(), i)
		}
	}
	return as, nil
}

// SetInt64 sets the cells of bus to the bits of v, bus[0] being the least
// significant bit.
//
func SetInt64(c *vollgas.Circuit, bus []vollgas.Address, v int64) {
	for i, a := range bus {
		c.Set(a, v&(1<<uint(i)) != 0)
	}
}

// Int64 returns the value of the cells of bus as an integer, bus[0] being the
// least significant bit.
//
func Int64(c *vollgas.Circuit, bus []vollgas.Address) int64 {
	var v int64
	for i, a := range bus {
		if c.Get(a) {
			v |= 1 << uint(i)
		}
	}
	return v
}

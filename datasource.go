// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"encoding/binary"
)

// A DataSource owns the state arena of a circuit. The arena layout is:
//
//	[0, 8)                 int64 step counter, little endian
//	[8, 8+4*len(ops))      uint32 modulo operation results, little endian
//	[8+4*len(ops), size)   one byte per cell, 0 is false, anything else true
//
// The arena is either the linear memory of the bytecode backend or a plain
// byte slice.
//
type DataSource struct {
	d    []byte
	l    *Layout
	mods *moduloTable
}

func newDataSource(d []byte, l *Layout, mods *moduloTable) *DataSource {
	return &DataSource{d: d, l: l, mods: mods}
}

// N returns the step counter. It is -1 before the first step.
//
func (ds *DataSource) N() int64 {
	return int64(binary.LittleEndian.Uint64(ds.d))
}

func (ds *DataSource) setN(n int64) {
	binary.LittleEndian.PutUint64(ds.d, uint64(n))
}

// Counter returns the result of modulo operation i.
//
func (ds *DataSource) Counter(i int) uint32 {
	return binary.LittleEndian.Uint32(ds.d[counterSize+moduloSize*i:])
}

func (ds *DataSource) setCounter(i int, v uint32) {
	binary.LittleEndian.PutUint32(ds.d[counterSize+moduloSize*i:], v)
}

// Bytes returns the whole arena. The returned slice aliases the simulation
// state.
//
func (ds *DataSource) Bytes() []byte { return ds.d }

// CountersOffset returns the byte offset of the modulo results table.
//
func (ds *DataSource) CountersOffset() int { return counterSize }

// CountersLen returns the number of entries in the modulo results table.
//
func (ds *DataSource) CountersLen() int { return len(ds.mods.ops) }

// Counters returns a copy of the modulo results table.
//
func (ds *DataSource) Counters() []uint32 {
	cs := make([]uint32, len(ds.mods.ops))
	for i := range cs {
		cs[i] = ds.Counter(i)
	}
	return cs
}

// CellsOffset returns the byte offset of the first cell.
//
func (ds *DataSource) CellsOffset() int { return ds.mods.header() }

// Cells returns the cell table. The returned slice aliases the simulation
// state.
//
func (ds *DataSource) Cells() []byte { return ds.d[ds.mods.header():] }

// offset returns the function that computes the byte offset of the cell
// referenced by a given a local offset within the ring for rotating addresses.
func (ds *DataSource) offset(a Address) func(local int) int {
	base := ds.l.Offset(a)
	if !a.IsRotating() {
		return func(int) int { return base }
	}
	op := ds.mods.op(a.mod, a.start)
	mod := uint64(a.mod)
	return func(local int) int {
		return base + int((uint64(ds.Counter(op.Index))+uint64(local))%mod)
	}
}

// Reader returns a function that reads the value of a. For rotating addresses,
// local selects another slot of the ring relative to the current one; it must
// not be negative.
//
func (ds *DataSource) Reader(a Address) func(local int) bool {
	off := ds.offset(a)
	return func(local int) bool {
		return ds.d[off(local)] != 0
	}
}

// Writer returns a function that sets the value of a. See Reader.
//
func (ds *DataSource) Writer(a Address) func(v bool, local int) {
	off := ds.offset(a)
	return func(v bool, local int) {
		ds.d[off(local)] = b2u8(v)
	}
}

func b2u8(v bool) byte {
	if v {
		return 1
	}
	return 0
}

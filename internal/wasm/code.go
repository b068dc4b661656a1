// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wasm

import (
	"math"

	"github.com/pkg/errors"
)

// Value types.
//
const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
)

// ValType is a WebAssembly value type.
//
type ValType byte

// Block type of blocks and loops without results.
//
const BlockEmpty = 0x40

// Op codes.
//
const (
	OpBlock      = 0x02
	OpLoop       = 0x03
	OpEnd        = 0x0b
	OpBr         = 0x0c
	OpBrIf       = 0x0d
	OpLocalGet   = 0x20
	OpLocalSet   = 0x21
	OpI32Load    = 0x28
	OpI64Load    = 0x29
	OpI32Load8U  = 0x2d
	OpI64Store   = 0x37
	OpI32Store8  = 0x3a
	OpI64Store32 = 0x3e
	OpI32Const   = 0x41
	OpI64Const   = 0x42
	OpI32Eqz     = 0x45
	OpI32LtU     = 0x49
	OpI32Sub     = 0x6b
	OpI32And     = 0x71
	OpI32Or      = 0x72
	OpI64Add     = 0x7c
	OpI64RemU    = 0x82
)

// Code is an instruction sequence builder. The first encoding error is kept
// and returned by Bytes; later calls are no-ops.
//
type Code struct {
	b   []byte
	err error
}

// Bytes returns the encoded instructions, or the first encoding error.
//
func (c *Code) Bytes() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.b, nil
}

// Len returns the current size of the encoded instructions.
//
func (c *Code) Len() int { return len(c.b) }

func (c *Code) u32(v int, what string) {
	if c.err != nil {
		return
	}
	if v < 0 || uint64(v) > math.MaxUint32 {
		c.err = errors.Errorf("%s %d out of range", what, v)
		return
	}
	c.b = AppendUleb128(c.b, uint64(v))
}

// Op appends a bare opcode.
//
func (c *Code) Op(op byte) *Code {
	if c.err == nil {
		c.b = append(c.b, op)
	}
	return c
}

// Block starts a block with no result.
//
func (c *Code) Block() *Code { return c.Op(OpBlock).Op(BlockEmpty) }

// Loop starts a loop with no result.
//
func (c *Code) Loop() *Code { return c.Op(OpLoop).Op(BlockEmpty) }

// End ends a block, loop or function body.
//
func (c *Code) End() *Code { return c.Op(OpEnd) }

// Br appends an unconditional branch to the given label depth.
//
func (c *Code) Br(depth int) *Code {
	c.Op(OpBr).u32(depth, "branch depth")
	return c
}

// BrIf appends a conditional branch to the given label depth.
//
func (c *Code) BrIf(depth int) *Code {
	c.Op(OpBrIf).u32(depth, "branch depth")
	return c
}

// LocalGet pushes local i.
//
func (c *Code) LocalGet(i int) *Code {
	c.Op(OpLocalGet).u32(i, "local index")
	return c
}

// LocalSet pops into local i.
//
func (c *Code) LocalSet(i int) *Code {
	c.Op(OpLocalSet).u32(i, "local index")
	return c
}

// I32Const pushes an i32 constant.
//
func (c *Code) I32Const(v int32) *Code {
	if c.Op(OpI32Const).err == nil {
		c.b = AppendSleb128(c.b, int64(v))
	}
	return c
}

// I64Const pushes an i64 constant.
//
func (c *Code) I64Const(v int64) *Code {
	if c.Op(OpI64Const).err == nil {
		c.b = AppendSleb128(c.b, v)
	}
	return c
}

// Mem appends a memory instruction with the given alignment (log2 of the
// access size) and constant offset.
//
func (c *Code) Mem(op byte, align, offset int) *Code {
	c.Op(op).u32(align, "alignment")
	c.u32(offset, "memory offset")
	return c
}

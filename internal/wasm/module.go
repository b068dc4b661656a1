// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package wasm implements a minimal WebAssembly binary module encoder: enough
// to describe modules made of memories, function types and function bodies.
//
package wasm

import (
	"math"

	"github.com/pkg/errors"
)

// PageSize is the size of a linear memory page.
//
const PageSize = 65536

// Header is the binary module preamble: magic and version 1.
//
var Header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Section ids.
//
const (
	SectionType     = 1
	SectionImport   = 2
	SectionFunction = 3
	SectionMemory   = 5
	SectionExport   = 7
	SectionCode     = 10
)

// External kinds for imports and exports.
//
const (
	KindFunc   = 0x00
	KindMemory = 0x02
)

const typeFunc = 0x60

// Pages returns the number of pages needed to hold size bytes.
//
func Pages(size int) int {
	return (size + PageSize - 1) / PageSize
}

// FuncType is a function signature.
//
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Limits are memory size limits, in pages.
//
type Limits struct {
	Min    int
	Max    int
	HasMax bool
}

// MemoryImport imports a linear memory.
//
type MemoryImport struct {
	Module string
	Name   string
	Limits Limits
}

// Export exports an item of the module.
//
type Export struct {
	Name  string
	Kind  byte
	Index int
}

// Locals declares Count locals of type Type.
//
type Locals struct {
	Count int
	Type  ValType
}

// Func is a function definition.
//
type Func struct {
	Type   int // index in the type section
	Locals []Locals
	// Body is the instruction sequence, including the final OpEnd.
	Body []byte
}

// Module describes a module. Empty sections are omitted from the encoding.
//
type Module struct {
	Types    []FuncType
	Imports  []MemoryImport
	Memories []Limits
	Exports  []Export
	Funcs    []Func
}

type encoder struct {
	b   []byte
	err error
}

func (e *encoder) u32(v int) {
	if e.err != nil {
		return
	}
	if v < 0 || uint64(v) > math.MaxUint32 {
		e.err = errors.Errorf("value %d out of u32 range", v)
		return
	}
	e.b = AppendUleb128(e.b, uint64(v))
}

func (e *encoder) name(s string) {
	e.u32(len(s))
	e.b = append(e.b, s...)
}

func (e *encoder) limits(l Limits) {
	if l.HasMax {
		e.b = append(e.b, 0x01)
		e.u32(l.Min)
		e.u32(l.Max)
		return
	}
	e.b = append(e.b, 0x00)
	e.u32(l.Min)
}

func (e *encoder) types(ts []ValType) {
	e.u32(len(ts))
	for _, t := range ts {
		e.b = append(e.b, byte(t))
	}
}

// section encodes a section whose content is produced by f.
func (e *encoder) section(id byte, count int, f func(e *encoder)) {
	if count == 0 || e.err != nil {
		return
	}
	sub := &encoder{}
	sub.u32(count)
	f(sub)
	if sub.err != nil {
		e.err = sub.err
		return
	}
	e.b = append(e.b, id)
	e.u32(len(sub.b))
	e.b = append(e.b, sub.b...)
}

// Encode returns the binary encoding of m.
//
func (m *Module) Encode() ([]byte, error) {
	for _, x := range m.Exports {
		if x.Kind != KindFunc && x.Kind != KindMemory {
			return nil, errors.Errorf("unsupported export kind %d for %q", x.Kind, x.Name)
		}
	}
	for i, f := range m.Funcs {
		if f.Type < 0 || f.Type >= len(m.Types) {
			return nil, errors.Errorf("function %d: invalid type index %d", i, f.Type)
		}
		if len(f.Body) == 0 || f.Body[len(f.Body)-1] != OpEnd {
			return nil, errors.Errorf("function %d: body must end with an end instruction", i)
		}
	}
	e := &encoder{b: append([]byte(nil), Header...)}
	e.section(SectionType, len(m.Types), func(e *encoder) {
		for _, t := range m.Types {
			e.b = append(e.b, typeFunc)
			e.types(t.Params)
			e.types(t.Results)
		}
	})
	e.section(SectionImport, len(m.Imports), func(e *encoder) {
		for _, im := range m.Imports {
			e.name(im.Module)
			e.name(im.Name)
			e.b = append(e.b, KindMemory)
			e.limits(im.Limits)
		}
	})
	e.section(SectionFunction, len(m.Funcs), func(e *encoder) {
		for _, f := range m.Funcs {
			e.u32(f.Type)
		}
	})
	e.section(SectionMemory, len(m.Memories), func(e *encoder) {
		for _, l := range m.Memories {
			e.limits(l)
		}
	})
	e.section(SectionExport, len(m.Exports), func(e *encoder) {
		for _, x := range m.Exports {
			e.name(x.Name)
			e.b = append(e.b, x.Kind)
			e.u32(x.Index)
		}
	})
	e.section(SectionCode, len(m.Funcs), func(e *encoder) {
		for _, f := range m.Funcs {
			body := &encoder{}
			body.u32(len(f.Locals))
			for _, l := range f.Locals {
				body.u32(l.Count)
				body.b = append(body.b, byte(l.Type))
			}
			body.b = append(body.b, f.Body...)
			if body.err != nil {
				e.err = body.err
				return
			}
			e.u32(len(body.b))
			e.b = append(e.b, body.b...)
		}
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.b, nil
}

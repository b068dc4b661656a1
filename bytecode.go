// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"context"
	"math"
	"unsafe"

	"github.com/db47h/vollgas/internal/wasm"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Names used to link the step module to its memory.
const (
	memoryModule = "imports"
	memoryName   = "memory"
	stepName     = "step"
)

// Locals of the step function.
const (
	localCount = 0 // i32 parameter: steps left
	localN     = 1 // i64: step counter
)

// hostLittleEndian reports whether the host stores integers little endian.
// The arena is shared as-is between the module and Go code.
var hostLittleEndian = isLittleEndian()

func isLittleEndian() bool {
	x := uint32(0x12345678)
	return *(*byte)(unsafe.Pointer(&x)) == 0x78
}

// codegen emits the instructions of value sources onto the operand stack.
type codegen struct {
	c    *wasm.Code
	l    *Layout
	mods *moduloTable
}

func (g *codegen) offset(a Address) int {
	return g.l.Offset(a)
}

// pushModulo pushes the current result of modulo op i.
func (g *codegen) pushModulo(op ModuloOp) {
	g.c.I32Const(0).Mem(wasm.OpI32Load, 2, op.Offset())
}

// pushBase pushes the dynamic part of an address: 0 for static addresses, the
// current ring index for rotating ones. The static part goes in the memory
// instruction offset.
func (g *codegen) pushBase(a Address) {
	if a.IsRotating() {
		g.pushModulo(g.mods.op(a.mod, a.start))
		return
	}
	g.c.I32Const(0)
}

func (g *codegen) address(a Address) struct{} {
	g.pushBase(a)
	g.c.Mem(wasm.OpI32Load8U, 0, g.offset(a))
	return struct{}{}
}

func (g *codegen) fold(vs []ValueSource, op byte, empty int32) struct{} {
	if len(vs) == 0 {
		g.c.I32Const(empty)
		return struct{}{}
	}
	for i, v := range vs {
		visit[struct{}](v, g)
		if i > 0 {
			g.c.Op(op)
		}
	}
	return struct{}{}
}

func (g *codegen) and(v And) struct{} { return g.fold(v, wasm.OpI32And, 1) }
func (g *codegen) or(v Or) struct{}   { return g.fold(v, wasm.OpI32Or, 0) }

func (g *codegen) not(v Not) struct{} {
	visit[struct{}](v.V, g)
	g.c.Op(wasm.OpI32Eqz)
	return struct{}{}
}

func (g *codegen) alternating(v Alternating) struct{} {
	if int64(v.On) > math.MaxUint32 {
		g.c.I32Const(1) // always on
		return struct{}{}
	}
	g.pushModulo(g.mods.op(v.Mod(), v.StartOffset))
	g.c.I32Const(int32(uint32(v.On))).Op(wasm.OpI32LtU)
	return struct{}{}
}

func (g *codegen) calculation(calc *Calculation) {
	g.pushBase(calc.Target)
	visit[struct{}](calc.Value, g)
	g.c.Mem(wasm.OpI32Store8, 0, g.offset(calc.Target))
}

// stepBody returns the body of the step function.
func stepBody(l *Layout, mods *moduloTable, calcs []*Calculation) ([]byte, error) {
	c := &wasm.Code{}
	g := &codegen{c: c, l: l, mods: mods}

	c.I32Const(0).Mem(wasm.OpI64Load, 3, 0).LocalSet(localN)
	c.Block().Loop()
	// exit when count reaches 0
	c.LocalGet(localCount).Op(wasm.OpI32Eqz).BrIf(1)
	c.LocalGet(localCount).I32Const(1).Op(wasm.OpI32Sub).LocalSet(localCount)
	c.LocalGet(localN).I64Const(1).Op(wasm.OpI64Add).LocalSet(localN)

	for _, op := range mods.ops {
		if op.Mod <= 0 || op.StartOffset < 0 {
			return nil, errors.Errorf("invalid modulo operation %s", op)
		}
		c.I32Const(0).LocalGet(localN)
		if op.StartOffset != 0 {
			c.I64Const(int64(op.StartOffset)).Op(wasm.OpI64Add)
		}
		c.I64Const(int64(op.Mod)).Op(wasm.OpI64RemU)
		c.Mem(wasm.OpI64Store32, 2, op.Offset())
	}
	for _, calc := range calcs {
		g.calculation(calc)
	}

	c.Br(0).End().End()
	c.I32Const(0).LocalGet(localN).Mem(wasm.OpI64Store, 3, 0)
	c.End()
	return c.Bytes()
}

// stepModule returns the binary step module. It imports its memory as
// imports.memory, sized to exactly the given number of pages, and exports a
// single step(count i32) function.
func stepModule(l *Layout, mods *moduloTable, calcs []*Calculation) ([]byte, error) {
	body, err := stepBody(l, mods, calcs)
	if err != nil {
		return nil, err
	}
	pages := wasm.Pages(l.Size())
	m := wasm.Module{
		Types: []wasm.FuncType{{Params: []wasm.ValType{wasm.I32}}},
		Imports: []wasm.MemoryImport{{
			Module: memoryModule,
			Name:   memoryName,
			Limits: wasm.Limits{Min: pages, Max: pages, HasMax: true},
		}},
		Exports: []wasm.Export{{Name: stepName, Kind: wasm.KindFunc, Index: 0}},
		Funcs: []wasm.Func{{
			Type:   0,
			Locals: []wasm.Locals{{Count: 1, Type: wasm.I64}},
			Body:   body,
		}},
	}
	return m.Encode()
}

// memoryProvider returns a module that only defines and exports a memory of
// the given size in pages. It plays the role of the host supplied memory.
func memoryProvider(pages int) ([]byte, error) {
	m := wasm.Module{
		Memories: []wasm.Limits{{Min: pages, Max: pages, HasMax: true}},
		Exports:  []wasm.Export{{Name: memoryName, Kind: wasm.KindMemory, Index: 0}},
	}
	return m.Encode()
}

// bytecode is the backend running the step module with wazero.
type bytecode struct {
	ctx  context.Context
	r    wazero.Runtime
	fn   api.Function
	mem  []byte
	code []byte
}

func newBytecode(ctx context.Context, l *Layout, mods *moduloTable, calcs []*Calculation) (b *bytecode, err error) {
	if !hostLittleEndian {
		return nil, errors.New("system is not little-endian")
	}
	code, err := stepModule(l, mods, calcs)
	if err != nil {
		return nil, errors.Wrap(err, "encode step module")
	}
	mp, err := memoryProvider(wasm.Pages(l.Size()))
	if err != nil {
		return nil, errors.Wrap(err, "encode memory module")
	}

	r := wazero.NewRuntime(ctx)
	defer func() {
		if err != nil {
			r.Close(ctx)
		}
	}()
	memMod, err := r.InstantiateWithConfig(ctx, mp, wazero.NewModuleConfig().WithName(memoryModule))
	if err != nil {
		return nil, errors.Wrap(err, "instantiate memory module")
	}
	mod, err := r.InstantiateWithConfig(ctx, code, wazero.NewModuleConfig().WithName("vollgas"))
	if err != nil {
		return nil, errors.Wrap(err, "instantiate step module")
	}
	fn := mod.ExportedFunction(stepName)
	if fn == nil {
		return nil, errors.New("step function not exported by module")
	}
	mem := memMod.ExportedMemory(memoryName)
	if mem == nil {
		return nil, errors.New("memory not exported by memory module")
	}
	d, ok := mem.Read(0, uint32(l.Size()))
	if !ok {
		return nil, errors.Errorf("memory too small for %d bytes", l.Size())
	}
	return &bytecode{ctx: ctx, r: r, fn: fn, mem: d, code: code}, nil
}

func (*bytecode) name() string { return BackendBytecode }

func (b *bytecode) step(count int) {
	for count > 0 {
		n := count
		if n > math.MaxInt32 {
			n = math.MaxInt32
		}
		if _, err := b.fn.Call(b.ctx, api.EncodeI32(int32(n))); err != nil {
			panic(errors.Wrap(err, "bytecode step"))
		}
		count -= n
	}
}

func (b *bytecode) close() error {
	return b.r.Close(b.ctx)
}

/*
Package vollgas provides a discrete time simulator for circuits built from NOR
gates.

A circuit is a graph of elements. Leaf elements (Logic) latch their inputs and
compute their outputs with boolean expressions (ValueSource); Combined elements
wire other elements together. Package hwlib provides a library of ready made
elements.

Building a Circuit lays out the state of every element in a flat byte arena:

	[0, 8)           step counter n, little endian int64, -1 before the first step
	[8, 8+4*m)       results of the m modulo operations, little endian uint32
	[8+4*m, size)    one byte per cell, 0 is false and 1 is true

The expressions of all elements are compiled into a single step function. At
each step, the counter is incremented, modulo operations are evaluated, element
inputs are latched, then element outputs are computed. Since inputs are latched
before any output is written, every element sees the state of the previous
step, which makes evaluation order irrelevant.

The step function is compiled to a WebAssembly module run by wazero. If this is
not possible, the circuit falls back to an interpreter with identical
semantics.

Update functions let elements run arbitrary Go code between steps, e.g. to
feed inputs or read outputs. They run at the start of Circuit.Step, at most once
per call.

*/
package vollgas

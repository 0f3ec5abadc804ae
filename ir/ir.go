// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir is an intermediate representation for computations over
// array descriptors (boxes). A module owns functions, a function owns
// an entry block, and a block owns an ordered list of operations.
// Values are produced by operations or by block arguments and are
// immutable once created: transformations add operations and functions,
// or replace the uses of a value, but never edit a value in place.
package ir

import (
	"slices"

	"github.com/gx-org/boxir/base/ordered"
	"github.com/pkg/errors"
)

// ----------------------------------------------------------------------------
// Values.
type (
	// Value in the IR. A value is either the result of an operation
	// or an argument of a block.
	Value interface {
		// value marks a structure as a value of this package.
		value()

		// Type of the value.
		Type() Type

		// DefiningOp returns the operation producing the value,
		// or nil for block arguments.
		DefiningOp() Op
	}

	// Result of an operation.
	Result struct {
		op    Op
		typ   Type
		index int
	}

	// BlockArg is an argument of a block: a function parameter for
	// entry blocks, the induction variable and loop-carried values
	// for loop body blocks.
	BlockArg struct {
		block *Block
		typ   Type
		index int
	}
)

var (
	_ Value = (*Result)(nil)
	_ Value = (*BlockArg)(nil)
)

func (*Result) value()   {}
func (*BlockArg) value() {}

// Type of the value.
func (r *Result) Type() Type { return r.typ }

// DefiningOp returns the operation producing this result.
func (r *Result) DefiningOp() Op { return r.op }

// Index of the result in the operation's result list.
func (r *Result) Index() int { return r.index }

// Type of the value.
func (a *BlockArg) Type() Type { return a.typ }

// DefiningOp returns nil: block arguments have no defining operation.
func (a *BlockArg) DefiningOp() Op { return nil }

// Index of the argument in the block's argument list.
func (a *BlockArg) Index() int { return a.index }

// Owner returns the block owning the argument.
func (a *BlockArg) Owner() *Block { return a.block }

// ----------------------------------------------------------------------------
// Operations.
type (
	// Op is an operation in the IR.
	Op interface {
		// isOp marks a structure as an operation of this package.
		isOp()

		// Name is the mnemonic of the operation.
		Name() string

		// Operands of the operation.
		Operands() []Value

		// Results of the operation.
		Results() []Value

		// Block owning the operation.
		Block() *Block
	}

	// opBase carries the state shared by all operations.
	// Operands are stored in a slice so that use replacement
	// is uniform across operation kinds.
	opBase struct {
		block *Block
		args  []Value
		res   []*Result
	}
)

func (o *opBase) isOp() {}

// Operands of the operation.
func (o *opBase) Operands() []Value { return o.args }

// Results of the operation.
func (o *opBase) Results() []Value {
	vals := make([]Value, len(o.res))
	for i, r := range o.res {
		vals[i] = r
	}
	return vals
}

// Block owning the operation.
func (o *opBase) Block() *Block { return o.block }

func (o *opBase) operandsSlice() []Value { return o.args }

// initOp sets the operands of an operation and materializes its results.
func initOp(op Op, base *opBase, operands []Value, resultTypes ...Type) {
	base.args = operands
	base.res = make([]*Result, len(resultTypes))
	for i, typ := range resultTypes {
		base.res[i] = &Result{op: op, typ: typ, index: i}
	}
}

// baseOf gives access to the shared operation state.
// All operations of this package embed opBase.
func baseOf(op Op) *opBase {
	return op.(interface{ base() *opBase }).base()
}

func (o *opBase) base() *opBase { return o }

// ----------------------------------------------------------------------------
// Blocks.

// Block is an ordered list of operations with arguments.
type Block struct {
	fn     *Func
	params []*BlockArg
	ops    []Op
}

// Args returns the arguments of the block.
func (b *Block) Args() []*BlockArg { return b.params }

// Ops returns the operations of the block in order.
func (b *Block) Ops() []Op { return b.ops }

// Func returns the function owning the block.
func (b *Block) Func() *Func { return b.fn }

func (b *Block) addArg(typ Type) *BlockArg {
	arg := &BlockArg{block: b, typ: typ, index: len(b.params)}
	b.params = append(b.params, arg)
	return arg
}

func (b *Block) insertAt(i int, op Op) {
	b.ops = slices.Insert(b.ops, i, op)
	baseOf(op).block = b
}

func (b *Block) indexOf(op Op) int {
	return slices.Index(b.ops, op)
}

// Remove detaches an operation from the block.
// The operation and its results must not be referenced anymore.
func (b *Block) Remove(op Op) {
	i := b.indexOf(op)
	if i < 0 {
		return
	}
	b.ops = slices.Delete(b.ops, i, i+1)
	baseOf(op).block = nil
}

func (b *Block) walk(fn func(Op) bool) bool {
	for _, op := range b.ops {
		if !fn(op) {
			return false
		}
		if loop, ok := op.(*DoLoopOp); ok {
			if !loop.body.walk(fn) {
				return false
			}
		}
	}
	return true
}

func (b *Block) replaceUses(old, new Value) {
	b.walk(func(op Op) bool {
		args := baseOf(op).operandsSlice()
		for i, arg := range args {
			if arg == old {
				args[i] = new
			}
		}
		return true
	})
}

// ----------------------------------------------------------------------------
// Functions.

// Linkage of a function.
type Linkage int

const (
	// LinkageDefault lets the function participate in linking
	// under the usual one-definition rule.
	LinkageDefault Linkage = iota

	// LinkageLinkonceODR marks a function whose identical definition
	// may be emitted by any number of independently compiled units:
	// the linker keeps one copy and the definition stays inlinable.
	LinkageLinkonceODR
)

// String representation of the linkage.
func (l Linkage) String() string {
	if l == LinkageLinkonceODR {
		return "linkonce_odr"
	}
	return ""
}

// Func is a function definition owned by a module.
type Func struct {
	module  *Module
	name    string
	typ     *FuncType
	linkage Linkage
	entry   *Block
}

// Name of the function. The name is the function's symbol:
// it identifies the function in its module and at link time.
func (f *Func) Name() string { return f.name }

// Type of the function.
func (f *Func) Type() *FuncType { return f.typ }

// Linkage of the function.
func (f *Func) Linkage() Linkage { return f.linkage }

// SetLinkage sets the linkage of the function.
func (f *Func) SetLinkage(l Linkage) { f.linkage = l }

// Entry returns the entry block of the function,
// or nil if the function is only declared.
func (f *Func) Entry() *Block { return f.entry }

// AddEntryBlock creates the entry block of the function with one
// block argument per parameter of the function type.
func (f *Func) AddEntryBlock() *Block {
	f.entry = &Block{fn: f}
	for _, param := range f.typ.Params {
		f.entry.addArg(param)
	}
	return f.entry
}

// Walk visits every operation of the function in order, descending
// into loop bodies. The visit stops when fn returns false.
func (f *Func) Walk(fn func(Op) bool) {
	if f.entry == nil {
		return
	}
	f.entry.walk(fn)
}

// ReplaceAllUses replaces every use of a value in the function
// by another value.
func (f *Func) ReplaceAllUses(old, new Value) {
	if f.entry == nil {
		return
	}
	f.entry.replaceUses(old, new)
}

// ----------------------------------------------------------------------------
// Modules.

// Module is a compilation unit: it owns a symbol table of functions.
// A module is never accessed concurrently.
type Module struct {
	name  string
	funcs *ordered.Map[string, *Func]
}

// NewModule returns a new empty module.
func NewModule(name string) *Module {
	return &Module{
		name:  name,
		funcs: ordered.NewMap[string, *Func](),
	}
}

// Name of the module.
func (m *Module) Name() string { return m.name }

// NewFunc creates a function in the module.
func (m *Module) NewFunc(name string, typ *FuncType) (*Func, error) {
	if _, exists := m.funcs.Load(name); exists {
		return nil, errors.Errorf("function %q already defined in module %q", name, m.name)
	}
	f := &Func{module: m, name: name, typ: typ}
	m.funcs.Store(name, f)
	return f, nil
}

// Lookup returns the function with the given name, or nil.
func (m *Module) Lookup(name string) *Func {
	f, ok := m.funcs.Load(name)
	if !ok {
		return nil
	}
	return f
}

// Funcs returns an iterator over the functions of the module
// in declaration order.
func (m *Module) Funcs() func(func(*Func) bool) {
	return m.funcs.Values()
}

// NumFuncs returns the number of functions in the module.
func (m *Module) NumFuncs() int {
	return m.funcs.Size()
}

// Walk visits every operation of every function of the module.
// The visit stops when fn returns false.
func (m *Module) Walk(fn func(Op) bool) {
	for f := range m.Funcs() {
		if f.entry == nil {
			continue
		}
		if !f.entry.walk(fn) {
			return
		}
	}
}

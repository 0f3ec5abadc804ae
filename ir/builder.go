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

package ir

import "fmt"

// Builder creates operations at an insertion point.
// Misusing the builder (for example loading from a value that is not
// a reference) is a programming error and panics: well-formedness of
// inputs is the verifier's concern, not the builder's.
type Builder struct {
	module *Module
	block  *Block
	at     int
}

// InsertPoint is a saved insertion point of a builder.
type InsertPoint struct {
	block *Block
	at    int
}

// NewBuilder returns a builder for a module with no insertion point set.
func NewBuilder(m *Module) *Builder {
	return &Builder{module: m}
}

// Module the builder creates operations in.
func (b *Builder) Module() *Module { return b.module }

// SetInsertionPointToEnd inserts the next operations at the end of a block.
func (b *Builder) SetInsertionPointToEnd(blk *Block) {
	b.block, b.at = blk, len(blk.ops)
}

// SetInsertionPointToStart inserts the next operations at the start of a block.
func (b *Builder) SetInsertionPointToStart(blk *Block) {
	b.block, b.at = blk, 0
}

// SetInsertionPointBefore inserts the next operations before an operation.
func (b *Builder) SetInsertionPointBefore(op Op) {
	blk := op.Block()
	b.block, b.at = blk, blk.indexOf(op)
}

// SaveInsertionPoint returns the current insertion point.
func (b *Builder) SaveInsertionPoint() InsertPoint {
	return InsertPoint{block: b.block, at: b.at}
}

// RestoreInsertionPoint restores a saved insertion point.
func (b *Builder) RestoreInsertionPoint(pt InsertPoint) {
	b.block, b.at = pt.block, pt.at
}

func (b *Builder) insert(op Op) {
	if b.block == nil {
		panic("builder has no insertion point")
	}
	b.block.insertAt(b.at, op)
	b.at++
}

// ----------------------------------------------------------------------------
// Constants.

// IntConstant creates an integer constant of the given type.
func (b *Builder) IntConstant(typ Type, v int64) Value {
	op := &ConstantOp{intVal: v}
	initOp(op, &op.opBase, nil, typ)
	b.insert(op)
	return op.res[0]
}

// FloatConstant creates a floating point constant of the given type.
func (b *Builder) FloatConstant(typ Type, v float64) Value {
	op := &ConstantOp{floatVal: v}
	initOp(op, &op.opBase, nil, typ)
	b.insert(op)
	return op.res[0]
}

// IndexConstant creates a constant of the index type.
func (b *Builder) IndexConstant(v int64) Value {
	return b.IntConstant(Index, v)
}

// ZeroConstant creates the additive identity of a numeric type.
func (b *Builder) ZeroConstant(typ Type) Value {
	switch {
	case IsFloat(typ):
		return b.FloatConstant(typ, 0)
	case IsInteger(typ):
		return b.IntConstant(typ, 0)
	}
	panic(fmt.Sprintf("no additive identity for type %s", typ.String()))
}

// ----------------------------------------------------------------------------
// Descriptors and memory.

// Absent creates the omitted-optional-argument sentinel of the given type.
func (b *Builder) Absent(typ Type) Value {
	op := &AbsentOp{}
	initOp(op, &op.opBase, nil, typ)
	b.insert(op)
	return op.res[0]
}

// Convert reinterprets a value as the given type.
func (b *Builder) Convert(to Type, v Value) Value {
	op := &ConvertOp{}
	initOp(op, &op.opBase, []Value{v}, to)
	b.insert(op)
	return op.res[0]
}

// Shape builds a shape from extent values. The rank of the
// resulting shape is the number of extents.
func (b *Builder) Shape(extents ...Value) Value {
	op := &ShapeOp{}
	initOp(op, &op.opBase, extents, ShapeOf(len(extents)))
	b.insert(op)
	return op.res[0]
}

// Embox builds an array descriptor from a storage reference and a shape.
func (b *Builder) Embox(storage, shape Value) Value {
	ref, ok := storage.Type().(*RefType)
	if !ok {
		panic(fmt.Sprintf("embox of non-reference type %s", storage.Type().String()))
	}
	op := &EmboxOp{}
	initOp(op, &op.opBase, []Value{storage, shape}, BoxOf(ref.Elem))
	b.insert(op)
	return op.res[0]
}

// BoxDims reads the lower bound, extent, and stride of a descriptor
// along one dimension.
func (b *Builder) BoxDims(box, dim Value) *BoxDimsOp {
	op := &BoxDimsOp{}
	initOp(op, &op.opBase, []Value{box, dim}, Index, Index, Index)
	b.insert(op)
	return op
}

// Alloca allocates stack storage for a value of the given type.
func (b *Builder) Alloca(typ Type) Value {
	op := &AllocaOp{}
	initOp(op, &op.opBase, nil, RefOf(typ))
	b.insert(op)
	return op.res[0]
}

// Load the value behind a reference.
func (b *Builder) Load(ref Value) Value {
	refType, ok := ref.Type().(*RefType)
	if !ok {
		panic(fmt.Sprintf("load from non-reference type %s", ref.Type().String()))
	}
	op := &LoadOp{}
	initOp(op, &op.opBase, []Value{ref}, refType.Elem)
	b.insert(op)
	return op.res[0]
}

// Store a value behind a reference.
func (b *Builder) Store(v, ref Value) {
	op := &StoreOp{}
	initOp(op, &op.opBase, []Value{v, ref})
	b.insert(op)
}

// Coordinate computes the reference to the element of a descriptor
// at an index.
func (b *Builder) Coordinate(elem Type, box, index Value) Value {
	op := &CoordinateOp{}
	initOp(op, &op.opBase, []Value{box, index}, RefOf(elem))
	b.insert(op)
	return op.res[0]
}

// ----------------------------------------------------------------------------
// Arithmetic.

func (b *Builder) arith(kind ArithKind, x, y Value) Value {
	op := &ArithOp{kind: kind}
	initOp(op, &op.opBase, []Value{x, y}, x.Type())
	b.insert(op)
	return op.res[0]
}

// AddF creates a floating point addition.
func (b *Builder) AddF(x, y Value) Value { return b.arith(AddF, x, y) }

// AddI creates an integer addition.
func (b *Builder) AddI(x, y Value) Value { return b.arith(AddI, x, y) }

// SubI creates an integer subtraction.
func (b *Builder) SubI(x, y Value) Value { return b.arith(SubI, x, y) }

// MulF creates a floating point multiplication.
func (b *Builder) MulF(x, y Value) Value { return b.arith(MulF, x, y) }

// MulI creates an integer multiplication.
func (b *Builder) MulI(x, y Value) Value { return b.arith(MulI, x, y) }

// ----------------------------------------------------------------------------
// Control flow and calls.

// DoLoop creates a counted loop from lower to upper bound inclusive.
// The loop body receives the induction variable as its first block
// argument, followed by one argument per loop-carried value.
// The loop has one result per loop-carried value.
func (b *Builder) DoLoop(lower, upper, step Value, iterInits ...Value) *DoLoopOp {
	op := &DoLoopOp{}
	operands := append([]Value{lower, upper, step}, iterInits...)
	resultTypes := make([]Type, len(iterInits))
	for i, init := range iterInits {
		resultTypes[i] = init.Type()
	}
	initOp(op, &op.opBase, operands, resultTypes...)
	b.insert(op)
	op.body = &Block{fn: b.block.fn}
	op.body.addArg(Index)
	for _, init := range iterInits {
		op.body.addArg(init.Type())
	}
	return op
}

// Yield terminates a loop body with the values of the next iteration.
func (b *Builder) Yield(vals ...Value) {
	op := &YieldOp{}
	initOp(op, &op.opBase, vals)
	b.insert(op)
}

// Call creates a call to a function of the module.
func (b *Builder) Call(callee *Func, args ...Value) *CallOp {
	return b.CallSymbol(callee.Name(), callee.Type().Results, args...)
}

// CallSymbol creates a call to a function by symbol name. The callee
// does not have to be defined in the module: calls to external runtime
// entry points carry their result types explicitly.
func (b *Builder) CallSymbol(callee string, resultTypes []Type, args ...Value) *CallOp {
	op := &CallOp{callee: callee}
	initOp(op, &op.opBase, args, resultTypes...)
	b.insert(op)
	return op
}

// Return terminates a function body.
func (b *Builder) Return(vals ...Value) {
	op := &ReturnOp{}
	initOp(op, &op.opBase, vals)
	b.insert(op)
}

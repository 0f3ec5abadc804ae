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

package simplify

import (
	"fmt"

	"github.com/gx-org/boxir/ir"
)

// Both generators emit the same reduction loop: an accumulator set to
// the additive identity, one counted loop over the extent of a
// descriptor, an elementwise computation folded into the accumulator.
// They differ only in how the accumulator is threaded through the
// loop, which an accumulator strategy captures.

type accumulator interface {
	// inits returns the loop-carried initial values.
	inits() []ir.Value

	// current returns the accumulator value inside the loop body.
	current(b *ir.Builder, loop *ir.DoLoopOp) ir.Value

	// update folds the new accumulator value and terminates the body.
	update(b *ir.Builder, next ir.Value)

	// result returns the final accumulator value after the loop.
	result(b *ir.Builder, loop *ir.DoLoopOp) ir.Value
}

// cellAccumulator keeps the running value in a stack cell.
type cellAccumulator struct {
	cell ir.Value
}

func newCellAccumulator(b *ir.Builder, zero ir.Value) *cellAccumulator {
	cell := b.Alloca(zero.Type())
	b.Store(zero, cell)
	return &cellAccumulator{cell: cell}
}

func (a *cellAccumulator) inits() []ir.Value { return nil }

func (a *cellAccumulator) current(b *ir.Builder, loop *ir.DoLoopOp) ir.Value {
	return b.Load(a.cell)
}

func (a *cellAccumulator) update(b *ir.Builder, next ir.Value) {
	b.Store(next, a.cell)
	b.Yield()
}

func (a *cellAccumulator) result(b *ir.Builder, loop *ir.DoLoopOp) ir.Value {
	return b.Load(a.cell)
}

// carriedAccumulator threads the running value through the loop as a
// loop-carried value, with no memory traffic.
type carriedAccumulator struct {
	zero ir.Value
}

func (a *carriedAccumulator) inits() []ir.Value { return []ir.Value{a.zero} }

func (a *carriedAccumulator) current(b *ir.Builder, loop *ir.DoLoopOp) ir.Value {
	return loop.IterArgs()[0]
}

func (a *carriedAccumulator) update(b *ir.Builder, next ir.Value) {
	b.Yield(next)
}

func (a *carriedAccumulator) result(b *ir.Builder, loop *ir.DoLoopOp) ir.Value {
	return loop.Result(0)
}

// reductionLoop emits a loop over the extent of a descriptor along
// dimension 0, folding compute into the accumulator at every index.
// The induction variable counts from 0 to extent-1 inclusive: an
// empty array runs zero iterations.
func reductionLoop(b *ir.Builder, box ir.Value, acc accumulator, compute func(index, current ir.Value) ir.Value) ir.Value {
	zeroIdx := b.IndexConstant(0)
	dims := b.BoxDims(box, zeroIdx)
	one := b.IndexConstant(1)
	count := b.SubI(dims.Extent(), one)
	loop := b.DoLoop(zeroIdx, count, one, acc.inits()...)

	loopEndPt := b.SaveInsertionPoint()
	b.SetInsertionPointToStart(loop.Body())
	next := compute(loop.InductionVar(), acc.current(b, loop))
	acc.update(b, next)
	b.RestoreInsertionPoint(loopEndPt)

	return acc.result(b, loop)
}

func addNumeric(b *ir.Builder, typ ir.Type, x, y ir.Value) ir.Value {
	switch {
	case ir.IsFloat(typ):
		return b.AddF(x, y)
	case ir.IsInteger(typ):
		return b.AddI(x, y)
	}
	panic(fmt.Sprintf("cannot add values of type %s", typ.String()))
}

func mulNumeric(b *ir.Builder, typ ir.Type, x, y ir.Value) ir.Value {
	switch {
	case ir.IsFloat(typ):
		return b.MulF(x, y)
	case ir.IsInteger(typ):
		return b.MulI(x, y)
	}
	panic(fmt.Sprintf("cannot multiply values of type %s", typ.String()))
}

// sumFuncType is the type of a specialized summation: one opaque
// descriptor in, one scalar of the element type out.
func sumFuncType(elem ir.Type) *ir.FuncType {
	return &ir.FuncType{
		Params:  []ir.Type{ir.BoxOf(ir.None)},
		Results: []ir.Type{elem},
	}
}

// genSumBody populates a specialized summation:
//
//	func sum(arr box<none>) elem {
//	  acc := elem(0)
//	  for i := 0; i <= extent(arr)-1; i++ {
//	    acc = acc + arr[i]
//	  }
//	  return acc
//	}
//
// The accumulation is a naive left-to-right sequential sum: the loop
// must reproduce standard addition order, not reassociate.
func genSumBody(b *ir.Builder, f *ir.Func) {
	elem := f.Type().Results[0]
	entry := f.AddEntryBlock()
	b.SetInsertionPointToEnd(entry)

	array := b.Convert(ir.BoxOf(ir.SequenceOf(elem)), entry.Args()[0])
	zero := b.ZeroConstant(elem)
	acc := newCellAccumulator(b, zero)
	result := reductionLoop(b, array, acc, func(index, sum ir.Value) ir.Value {
		addr := b.Coordinate(elem, array, index)
		val := b.Load(addr)
		return addNumeric(b, elem, val, sum)
	})
	b.Return(result)
}

// dotFuncType is the type of a specialized dot product: two opaque
// descriptors in, one scalar of the call's result type out.
func dotFuncType(result ir.Type) *ir.FuncType {
	box := ir.BoxOf(ir.None)
	return &ir.FuncType{
		Params:  []ir.Type{box, box},
		Results: []ir.Type{result},
	}
}

// genDotBody populates a specialized dot product over operands of
// element types elem1 and elem2. Elements are converted to the result
// type before the multiply, so mixed-precision operands accumulate in
// the result type.
func genDotBody(b *ir.Builder, f *ir.Func, elem1, elem2 ir.Type) {
	resType := f.Type().Results[0]
	entry := f.AddEntryBlock()
	b.SetInsertionPointToEnd(entry)

	array1 := b.Convert(ir.BoxOf(ir.SequenceOf(elem1)), entry.Args()[0])
	array2 := b.Convert(ir.BoxOf(ir.SequenceOf(elem2)), entry.Args()[1])
	zero := b.ZeroConstant(resType)

	// The trip count comes from the first operand. Both operands are
	// guaranteed equal extents by the original call's well-formedness;
	// when the first operand's extent is not statically known, taking
	// it from the second could inline better, at the cost of
	// generating two variants and choosing at the call site.
	acc := &carriedAccumulator{zero: zero}
	result := reductionLoop(b, array1, acc, func(index, sum ir.Value) ir.Value {
		addr1 := b.Coordinate(elem1, array1, index)
		val1 := b.Convert(resType, b.Load(addr1))
		addr2 := b.Coordinate(elem2, array2, index)
		val2 := b.Convert(resType, b.Load(addr2))
		return addNumeric(b, resType, mulNumeric(b, resType, val1, val2), sum)
	})
	b.Return(result)
}

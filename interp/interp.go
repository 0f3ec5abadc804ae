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

// Package interp evaluates IR functions over host values.
//
// The evaluator covers the executable subset of the IR: scalar
// constants, conversions, stack cells, descriptor reads, element
// accesses, arithmetic, counted loops, calls, and returns.
// Descriptor construction operations (shape, embox, absent) describe
// compile-time provenance and are not executable; evaluating one is
// an error.
package interp

import (
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/boxir/ir"
	"github.com/pkg/errors"
)

// scalar is a numeric value tagged with its data type.
// The integer payload holds integer categories, the floating point
// payload holds floating point categories.
type scalar struct {
	dt dtype.DataType
	i  int64
	f  float64
}

func (s scalar) asInt() int64 {
	if isFloatDT(s.dt) {
		return int64(s.f)
	}
	return s.i
}

func (s scalar) asFloat() float64 {
	if isFloatDT(s.dt) {
		return s.f
	}
	return float64(s.i)
}

func isFloatDT(dt dtype.DataType) bool {
	switch dt {
	case dtype.Bfloat16, dtype.Float32, dtype.Float64:
		return true
	}
	return false
}

// cell is the storage of an alloca.
type cell struct {
	v   scalar
	set bool
}

// elemRef is a reference to one element of an array.
type elemRef struct {
	arr Array
	idx int
}

// Call evaluates a function of the module. Arguments are host arrays
// for descriptor-typed parameters and Go scalars for atomic or index
// parameters. Results are returned as Go scalars or arrays.
func Call(mod *ir.Module, name string, args ...any) ([]any, error) {
	fn := mod.Lookup(name)
	if fn == nil {
		return nil, errors.Errorf("function %q not defined in module %q", name, mod.Name())
	}
	vals := make([]any, len(args))
	for i, arg := range args {
		v, err := hostValue(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d of %q", i, name)
		}
		vals[i] = v
	}
	results, err := callFunc(mod, fn, vals)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %q", name)
	}
	native := make([]any, len(results))
	for i, result := range results {
		native[i] = toNative(result)
	}
	return native, nil
}

func hostValue(arg any) (any, error) {
	switch v := arg.(type) {
	case Array:
		return v, nil
	case int32:
		return scalar{dt: dtype.Int32, i: int64(v)}, nil
	case int64:
		return scalar{dt: dtype.Int64, i: v}, nil
	case int:
		return scalar{dt: dtype.Int64, i: int64(v)}, nil
	case uint32:
		return scalar{dt: dtype.Uint32, i: int64(v)}, nil
	case uint64:
		return scalar{dt: dtype.Uint64, i: int64(v)}, nil
	case float32:
		return scalar{dt: dtype.Float32, f: float64(v)}, nil
	case float64:
		return scalar{dt: dtype.Float64, f: v}, nil
	}
	return nil, errors.Errorf("value of type %T not supported by the evaluator", arg)
}

func toNative(v any) any {
	s, ok := v.(scalar)
	if !ok {
		return v
	}
	switch s.dt {
	case dtype.Int32:
		return int32(s.i)
	case dtype.Int64:
		return s.i
	case dtype.Uint32:
		return uint32(s.i)
	case dtype.Uint64:
		return uint64(s.i)
	case dtype.Float32:
		return float32(s.f)
	case dtype.Float64:
		return s.f
	}
	return s
}

// frame is the evaluation state of one function call.
type frame struct {
	mod    *ir.Module
	fn     *ir.Func
	values map[ir.Value]any
}

func callFunc(mod *ir.Module, fn *ir.Func, args []any) ([]any, error) {
	entry := fn.Entry()
	if entry == nil {
		return nil, errors.Errorf("function %q has no body", fn.Name())
	}
	params := entry.Args()
	if len(args) != len(params) {
		return nil, errors.Errorf("function %q wants %d arguments, got %d", fn.Name(), len(params), len(args))
	}
	fr := &frame{mod: mod, fn: fn, values: make(map[ir.Value]any)}
	for i, param := range params {
		fr.values[param] = args[i]
	}
	term, err := fr.runBlock(entry)
	if err != nil {
		return nil, err
	}
	ret, ok := term.(*ir.ReturnOp)
	if !ok {
		return nil, errors.Errorf("function %q does not end with a return", fn.Name())
	}
	results := make([]any, len(ret.Operands()))
	for i, operand := range ret.Operands() {
		if results[i], err = fr.value(operand); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (fr *frame) value(v ir.Value) (any, error) {
	val, ok := fr.values[v]
	if !ok {
		return nil, errors.Errorf("value has not been computed")
	}
	return val, nil
}

func (fr *frame) scalarValue(v ir.Value) (scalar, error) {
	val, err := fr.value(v)
	if err != nil {
		return scalar{}, err
	}
	s, ok := val.(scalar)
	if !ok {
		return scalar{}, errors.Errorf("value is a %T, not a scalar", val)
	}
	return s, nil
}

// runBlock evaluates the operations of a block in order and returns
// the terminator reached.
func (fr *frame) runBlock(blk *ir.Block) (ir.Op, error) {
	for _, op := range blk.Ops() {
		switch op.(type) {
		case *ir.ReturnOp, *ir.YieldOp:
			return op, nil
		}
		if err := fr.evalOp(op); err != nil {
			return nil, errors.Wrapf(err, "operation %s", op.Name())
		}
	}
	return nil, errors.Errorf("block has no terminator")
}

func (fr *frame) evalOp(op ir.Op) error {
	switch o := op.(type) {
	case *ir.ConstantOp:
		return fr.evalConstant(o)
	case *ir.ConvertOp:
		return fr.evalConvert(o)
	case *ir.AllocaOp:
		fr.values[o.Results()[0]] = &cell{}
		return nil
	case *ir.LoadOp:
		return fr.evalLoad(o)
	case *ir.StoreOp:
		return fr.evalStore(o)
	case *ir.CoordinateOp:
		return fr.evalCoordinate(o)
	case *ir.BoxDimsOp:
		return fr.evalBoxDims(o)
	case *ir.ArithOp:
		return fr.evalArith(o)
	case *ir.DoLoopOp:
		return fr.evalLoop(o)
	case *ir.CallOp:
		return fr.evalCall(o)
	}
	return errors.Errorf("cannot evaluate")
}

func (fr *frame) evalConstant(op *ir.ConstantOp) error {
	result := op.Results()[0]
	typ := result.Type()
	switch {
	case ir.IsFloat(typ):
		at := typ.(*ir.AtomicType)
		fr.values[result] = scalar{dt: at.DType, f: op.FloatValue()}
	case ir.IsInteger(typ):
		at := typ.(*ir.AtomicType)
		fr.values[result] = scalar{dt: at.DType, i: op.IntValue()}
	default:
		// Index constants.
		fr.values[result] = scalar{dt: dtype.Int64, i: op.IntValue()}
	}
	return nil
}

func (fr *frame) evalConvert(op *ir.ConvertOp) error {
	val, err := fr.value(op.Operand())
	if err != nil {
		return err
	}
	result := op.Results()[0]
	if arr, ok := val.(Array); ok {
		// Descriptor reinterpretation: a runtime no-op.
		fr.values[result] = arr
		return nil
	}
	s, ok := val.(scalar)
	if !ok {
		return errors.Errorf("cannot convert a %T", val)
	}
	switch to := op.To().(type) {
	case *ir.AtomicType:
		if isFloatDT(to.DType) {
			fr.values[result] = scalar{dt: to.DType, f: s.asFloat()}
		} else {
			fr.values[result] = scalar{dt: to.DType, i: s.asInt()}
		}
	case *ir.IndexType:
		fr.values[result] = scalar{dt: dtype.Int64, i: s.asInt()}
	default:
		return errors.Errorf("cannot convert a scalar to %s", op.To().String())
	}
	return nil
}

func (fr *frame) evalLoad(op *ir.LoadOp) error {
	val, err := fr.value(op.Ref())
	if err != nil {
		return err
	}
	result := op.Results()[0]
	switch ref := val.(type) {
	case *cell:
		if !ref.set {
			return errors.Errorf("load from an uninitialized cell")
		}
		fr.values[result] = ref.v
	case elemRef:
		fr.values[result] = ref.arr.at(ref.idx)
	default:
		return errors.Errorf("load from a %T", val)
	}
	return nil
}

func (fr *frame) evalStore(op *ir.StoreOp) error {
	val, err := fr.scalarValue(op.Value())
	if err != nil {
		return err
	}
	ref, err := fr.value(op.Ref())
	if err != nil {
		return err
	}
	c, ok := ref.(*cell)
	if !ok {
		return errors.Errorf("store into a %T", ref)
	}
	c.v, c.set = val, true
	return nil
}

func (fr *frame) evalCoordinate(op *ir.CoordinateOp) error {
	val, err := fr.value(op.Box())
	if err != nil {
		return err
	}
	arr, ok := val.(Array)
	if !ok {
		return errors.Errorf("coordinate into a %T", val)
	}
	idx, err := fr.scalarValue(op.Index())
	if err != nil {
		return err
	}
	fr.values[op.Results()[0]] = elemRef{arr: arr, idx: int(idx.asInt())}
	return nil
}

func (fr *frame) evalBoxDims(op *ir.BoxDimsOp) error {
	val, err := fr.value(op.Box())
	if err != nil {
		return err
	}
	arr, ok := val.(Array)
	if !ok {
		return errors.Errorf("box_dims of a %T", val)
	}
	dim, err := fr.scalarValue(op.Dim())
	if err != nil {
		return err
	}
	lengths := arr.Shape().AxisLengths
	d := int(dim.asInt())
	if d < 0 || d >= len(lengths) {
		return errors.Errorf("dimension %d out of range for an array of rank %d", d, len(lengths))
	}
	fr.values[op.LowerBound()] = scalar{dt: dtype.Int64, i: 0}
	fr.values[op.Extent()] = scalar{dt: dtype.Int64, i: int64(lengths[d])}
	fr.values[op.Stride()] = scalar{dt: dtype.Int64, i: 1}
	return nil
}

func (fr *frame) evalArith(op *ir.ArithOp) error {
	x, err := fr.scalarValue(op.Operands()[0])
	if err != nil {
		return err
	}
	y, err := fr.scalarValue(op.Operands()[1])
	if err != nil {
		return err
	}
	var out scalar
	switch op.Kind() {
	case ir.AddF:
		out = scalar{dt: x.dt, f: x.f + y.f}
	case ir.MulF:
		out = scalar{dt: x.dt, f: x.f * y.f}
	case ir.AddI:
		out = scalar{dt: x.dt, i: x.i + y.i}
	case ir.SubI:
		out = scalar{dt: x.dt, i: x.i - y.i}
	case ir.MulI:
		out = scalar{dt: x.dt, i: x.i * y.i}
	default:
		return errors.Errorf("arithmetic kind %s not supported", op.Kind().String())
	}
	fr.values[op.Results()[0]] = out
	return nil
}

func (fr *frame) evalLoop(op *ir.DoLoopOp) error {
	lower, err := fr.scalarValue(op.LowerBound())
	if err != nil {
		return err
	}
	upper, err := fr.scalarValue(op.UpperBound())
	if err != nil {
		return err
	}
	step, err := fr.scalarValue(op.Step())
	if err != nil {
		return err
	}
	if step.asInt() <= 0 {
		return errors.Errorf("loop step must be positive, got %d", step.asInt())
	}
	carried := make([]any, len(op.IterInits()))
	for i, init := range op.IterInits() {
		if carried[i], err = fr.value(init); err != nil {
			return err
		}
	}
	iterArgs := op.IterArgs()
	for i := lower.asInt(); i <= upper.asInt(); i += step.asInt() {
		fr.values[op.InductionVar()] = scalar{dt: dtype.Int64, i: i}
		for k, arg := range iterArgs {
			fr.values[arg] = carried[k]
		}
		term, err := fr.runBlock(op.Body())
		if err != nil {
			return err
		}
		yield, ok := term.(*ir.YieldOp)
		if !ok {
			return errors.Errorf("loop body does not end with a yield")
		}
		for k, operand := range yield.Operands() {
			if carried[k], err = fr.value(operand); err != nil {
				return err
			}
		}
	}
	for i := range carried {
		fr.values[op.Result(i)] = carried[i]
	}
	return nil
}

func (fr *frame) evalCall(op *ir.CallOp) error {
	callee := fr.mod.Lookup(op.Callee())
	if callee == nil {
		return errors.Errorf("function %q not defined in module %q", op.Callee(), fr.mod.Name())
	}
	args := make([]any, len(op.Args()))
	var err error
	for i, arg := range op.Args() {
		if args[i], err = fr.value(arg); err != nil {
			return err
		}
	}
	results, err := callFunc(fr.mod, callee, args)
	if err != nil {
		return err
	}
	for i, result := range results {
		fr.values[op.Result(i)] = result
	}
	return nil
}

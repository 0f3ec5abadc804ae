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

type (
	// ConstantOp produces a compile-time scalar constant.
	// The result type decides whether the integer or the floating
	// point payload is meaningful.
	ConstantOp struct {
		opBase
		intVal   int64
		floatVal float64
	}

	// AbsentOp produces the sentinel standing for an optional
	// argument omitted by the caller.
	AbsentOp struct {
		opBase
	}

	// ConvertOp reinterprets a value as another type.
	ConvertOp struct {
		opBase
	}

	// ShapeOp builds a shape from extent values.
	// The rank of the shape is carried by the result type.
	ShapeOp struct {
		opBase
	}

	// EmboxOp builds an array descriptor from a storage reference
	// and a shape.
	EmboxOp struct {
		opBase
	}

	// BoxDimsOp reads the lower bound, extent, and stride of a
	// descriptor along one dimension.
	BoxDimsOp struct {
		opBase
	}

	// AllocaOp allocates stack storage for a value.
	AllocaOp struct {
		opBase
	}

	// LoadOp loads the value behind a reference.
	LoadOp struct {
		opBase
	}

	// StoreOp stores a value behind a reference.
	StoreOp struct {
		opBase
	}

	// CoordinateOp computes the reference to an element of a
	// descriptor at an index.
	CoordinateOp struct {
		opBase
	}

	// ArithOp is a binary arithmetic operation. The kind selects
	// both the operator and the integer or floating point flavor.
	ArithOp struct {
		opBase
		kind ArithKind
	}

	// DoLoopOp is a counted loop from lower to upper bound inclusive.
	// Loop-carried values enter as extra operands, appear in the body
	// as block arguments after the induction variable, are renewed by
	// the body's yield, and leave as the results of the loop.
	DoLoopOp struct {
		opBase
		body *Block
	}

	// YieldOp terminates a loop body, carrying the values of the
	// next iteration.
	YieldOp struct {
		opBase
	}

	// CallOp invokes a function by symbol name.
	CallOp struct {
		opBase
		callee string
	}

	// ReturnOp terminates a function body.
	ReturnOp struct {
		opBase
	}
)

// ArithKind selects the operator and flavor of an arithmetic operation.
type ArithKind int

const (
	// AddF is a floating point addition.
	AddF ArithKind = iota
	// AddI is an integer addition.
	AddI
	// SubI is an integer subtraction.
	SubI
	// MulF is a floating point multiplication.
	MulF
	// MulI is an integer multiplication.
	MulI
)

// String representation of the arithmetic kind.
func (k ArithKind) String() string {
	switch k {
	case AddF:
		return "addf"
	case AddI:
		return "addi"
	case SubI:
		return "subi"
	case MulF:
		return "mulf"
	case MulI:
		return "muli"
	}
	return "arith?"
}

// Name of the operation.
func (*ConstantOp) Name() string   { return "constant" }
func (*AbsentOp) Name() string     { return "absent" }
func (*ConvertOp) Name() string    { return "convert" }
func (*ShapeOp) Name() string      { return "shape" }
func (*EmboxOp) Name() string      { return "embox" }
func (*BoxDimsOp) Name() string    { return "box_dims" }
func (*AllocaOp) Name() string     { return "alloca" }
func (*LoadOp) Name() string       { return "load" }
func (*StoreOp) Name() string      { return "store" }
func (*CoordinateOp) Name() string { return "coordinate" }
func (*DoLoopOp) Name() string     { return "do_loop" }
func (*YieldOp) Name() string      { return "yield" }
func (*CallOp) Name() string       { return "call" }
func (*ReturnOp) Name() string     { return "return" }

// Name of the operation.
func (op *ArithOp) Name() string { return "arith." + op.kind.String() }

// Kind of the arithmetic operation.
func (op *ArithOp) Kind() ArithKind { return op.kind }

// IntValue returns the integer payload of the constant.
func (op *ConstantOp) IntValue() int64 { return op.intVal }

// FloatValue returns the floating point payload of the constant.
func (op *ConstantOp) FloatValue() float64 { return op.floatVal }

// IsZero returns true if the constant is a numeric zero.
func (op *ConstantOp) IsZero() bool {
	typ := op.res[0].Type()
	if IsFloat(typ) {
		return op.floatVal == 0
	}
	return op.intVal == 0
}

// Operand returns the value being converted.
func (op *ConvertOp) Operand() Value { return op.args[0] }

// To returns the destination type of the conversion.
func (op *ConvertOp) To() Type { return op.res[0].Type() }

// Rank of the shape built by the operation.
func (op *ShapeOp) Rank() int { return op.res[0].Type().(*ShapeType).Rank }

// Storage returns the storage reference operand of the descriptor.
func (op *EmboxOp) Storage() Value { return op.args[0] }

// Shape returns the shape operand of the descriptor.
func (op *EmboxOp) Shape() Value { return op.args[1] }

// Box returns the descriptor operand.
func (op *BoxDimsOp) Box() Value { return op.args[0] }

// Dim returns the dimension operand.
func (op *BoxDimsOp) Dim() Value { return op.args[1] }

// LowerBound returns the lower bound result.
func (op *BoxDimsOp) LowerBound() Value { return op.res[0] }

// Extent returns the extent result.
func (op *BoxDimsOp) Extent() Value { return op.res[1] }

// Stride returns the stride result.
func (op *BoxDimsOp) Stride() Value { return op.res[2] }

// Ref returns the reference operand of the load.
func (op *LoadOp) Ref() Value { return op.args[0] }

// Value returns the value operand of the store.
func (op *StoreOp) Value() Value { return op.args[0] }

// Ref returns the reference operand of the store.
func (op *StoreOp) Ref() Value { return op.args[1] }

// Box returns the descriptor operand.
func (op *CoordinateOp) Box() Value { return op.args[0] }

// Index returns the index operand.
func (op *CoordinateOp) Index() Value { return op.args[1] }

// LowerBound returns the lower bound operand of the loop.
func (op *DoLoopOp) LowerBound() Value { return op.args[0] }

// UpperBound returns the inclusive upper bound operand of the loop.
func (op *DoLoopOp) UpperBound() Value { return op.args[1] }

// Step returns the step operand of the loop.
func (op *DoLoopOp) Step() Value { return op.args[2] }

// IterInits returns the initial values of the loop-carried values.
func (op *DoLoopOp) IterInits() []Value { return op.args[3:] }

// Body returns the body block of the loop.
func (op *DoLoopOp) Body() *Block { return op.body }

// InductionVar returns the induction variable of the loop body.
func (op *DoLoopOp) InductionVar() Value { return op.body.params[0] }

// IterArgs returns the loop-carried values as seen by the body.
func (op *DoLoopOp) IterArgs() []Value {
	args := make([]Value, len(op.body.params)-1)
	for i, param := range op.body.params[1:] {
		args[i] = param
	}
	return args
}

// Result returns the i-th result of the loop, the value carried
// out of the last iteration.
func (op *DoLoopOp) Result(i int) Value { return op.res[i] }

// Callee returns the symbol name of the called function.
func (op *CallOp) Callee() string { return op.callee }

// Args returns the arguments of the call.
func (op *CallOp) Args() []Value { return op.args }

// NumResults returns the number of results of the call.
func (op *CallOp) NumResults() int { return len(op.res) }

// Result returns the i-th result of the call.
func (op *CallOp) Result(i int) Value { return op.res[i] }

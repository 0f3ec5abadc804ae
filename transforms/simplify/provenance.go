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

import "github.com/gx-org/boxir/ir"

// Provenance of a call argument: the construction or sentinel
// operation reached by walking back through the argument's chain of
// conversions. All resolvers are read-only on the IR and answer
// "unknown" rather than failing: missing provenance makes a call
// site ineligible, it is never an error.

// maxConvertChain bounds the conversion chains the resolvers follow.
// Malformed input could chain conversions endlessly; past this depth
// provenance is reported as unavailable.
const maxConvertChain = 10

// definingConvert returns the conversion producing the value, or nil.
func definingConvert(v ir.Value) *ir.ConvertOp {
	conv, _ := v.DefiningOp().(*ir.ConvertOp)
	return conv
}

// isAbsent returns true if the value is an omitted optional argument:
// the absent sentinel wrapped in a conversion.
func isAbsent(v ir.Value) bool {
	conv := definingConvert(v)
	if conv == nil {
		return false
	}
	_, absent := conv.Operand().DefiningOp().(*ir.AbsentOp)
	return absent
}

// isStaticZero returns true if the value is a compile-time zero
// constant wrapped in a conversion. The runtime convention is that a
// dimension argument of zero means the argument was not supplied.
func isStaticZero(v ir.Value) bool {
	conv := definingConvert(v)
	if conv == nil {
		return false
	}
	cst, ok := conv.Operand().DefiningOp().(*ir.ConstantOp)
	return ok && cst.IsZero()
}

// rankOf returns the rank of the array descriptor the value
// originates from, or 0 if the descriptor's construction site is not
// visible. 0 is "unknown", never a valid rank.
func rankOf(v ir.Value) int {
	conv := definingConvert(v)
	if conv == nil {
		return 0
	}
	box, ok := conv.Operand().DefiningOp().(*ir.EmboxOp)
	if !ok {
		return 0
	}
	shapeType, ok := box.Shape().Type().(*ir.ShapeType)
	if !ok {
		return 0
	}
	return shapeType.Rank
}

// argElementType returns the element type of the array descriptor
// behind a chain of conversions: the first non-erased box element
// type found while stripping conversions. Returns false if the chain
// leaves descriptor types, is not made of conversions, or exceeds the
// traversal bound.
func argElementType(v ir.Value) (ir.Type, bool) {
	for range maxConvertChain {
		conv := definingConvert(v)
		if conv == nil {
			return nil, false
		}
		v = conv.Operand()
		box, ok := v.Type().(*ir.BoxType)
		if !ok {
			return nil, false
		}
		elem := ir.ElemOf(box)
		if _, erased := elem.(*ir.NoneType); !erased {
			return elem, true
		}
	}
	return nil, false
}

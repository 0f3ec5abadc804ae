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

import (
	"fmt"
	"strings"

	"github.com/gx-org/backend/dtype"
)

// ----------------------------------------------------------------------------
// Types of values in the IR.
type (
	// Type of a value.
	Type interface {
		// typ marks a structure as a type of this package.
		// It prevents external implementations of the interface.
		typ()

		// String representation of the type.
		// The representation is canonical: it is used to mangle
		// specialized function names, so two structurally equal
		// types always print the same.
		String() string
	}

	// AtomicType is a scalar of a backend data type.
	AtomicType struct {
		DType dtype.DataType
	}

	// IndexType is the type of loop induction variables and extents.
	IndexType struct{}

	// NoneType is an erased or unresolved placeholder type.
	// A box over none is the opaque descriptor type used in
	// specialized function signatures.
	NoneType struct{}

	// SequenceType is a rank-1 array of unknown extent.
	SequenceType struct {
		Elem Type
	}

	// BoxType is an array descriptor carrying element type, rank,
	// and runtime extents of the array it describes.
	BoxType struct {
		Elem Type
	}

	// RefType is a reference to a memory location.
	RefType struct {
		Elem Type
	}

	// ShapeType is the type of a shape construction operation.
	// The rank is part of the type.
	ShapeType struct {
		Rank int
	}

	// FuncType is a function signature.
	FuncType struct {
		Params  []Type
		Results []Type
	}
)

var (
	_ Type = (*AtomicType)(nil)
	_ Type = (*IndexType)(nil)
	_ Type = (*NoneType)(nil)
	_ Type = (*SequenceType)(nil)
	_ Type = (*BoxType)(nil)
	_ Type = (*RefType)(nil)
	_ Type = (*ShapeType)(nil)
	_ Type = (*FuncType)(nil)
)

// Atomic returns the scalar type of a backend data type.
func Atomic(dt dtype.DataType) *AtomicType {
	return &AtomicType{DType: dt}
}

// Shared instances of the common types.
var (
	Bool  = Atomic(dtype.Bool)
	I32   = Atomic(dtype.Int32)
	I64   = Atomic(dtype.Int64)
	U32   = Atomic(dtype.Uint32)
	U64   = Atomic(dtype.Uint64)
	F32   = Atomic(dtype.Float32)
	F64   = Atomic(dtype.Float64)
	Index = &IndexType{}
	None  = &NoneType{}
)

// SequenceOf returns the rank-1 array type over an element type.
func SequenceOf(elem Type) *SequenceType {
	return &SequenceType{Elem: elem}
}

// BoxOf returns the descriptor type over a type.
func BoxOf(elem Type) *BoxType {
	return &BoxType{Elem: elem}
}

// RefOf returns the reference type to a type.
func RefOf(elem Type) *RefType {
	return &RefType{Elem: elem}
}

// ShapeOf returns the type of a shape of the given rank.
func ShapeOf(rank int) *ShapeType {
	return &ShapeType{Rank: rank}
}

func (*AtomicType) typ()   {}
func (*IndexType) typ()    {}
func (*NoneType) typ()     {}
func (*SequenceType) typ() {}
func (*BoxType) typ()      {}
func (*RefType) typ()      {}
func (*ShapeType) typ()    {}
func (*FuncType) typ()     {}

// String representation of the type.
func (t *AtomicType) String() string {
	switch t.DType {
	case dtype.Bool:
		return "i1"
	case dtype.Int32:
		return "i32"
	case dtype.Int64:
		return "i64"
	case dtype.Uint32:
		return "u32"
	case dtype.Uint64:
		return "u64"
	case dtype.Bfloat16:
		return "bf16"
	case dtype.Float32:
		return "f32"
	case dtype.Float64:
		return "f64"
	}
	return t.DType.String()
}

func (*IndexType) String() string { return "index" }

func (*NoneType) String() string { return "none" }

func (t *SequenceType) String() string {
	return "seq<?x" + t.Elem.String() + ">"
}

func (t *BoxType) String() string {
	return "box<" + t.Elem.String() + ">"
}

func (t *RefType) String() string {
	return "ref<" + t.Elem.String() + ">"
}

func (t *ShapeType) String() string {
	return fmt.Sprintf("shape<%d>", t.Rank)
}

func (t *FuncType) String() string {
	var s strings.Builder
	s.WriteString("(")
	for i, param := range t.Params {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(param.String())
	}
	s.WriteString(") -> (")
	for i, result := range t.Results {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(result.String())
	}
	s.WriteString(")")
	return s.String()
}

// Equal returns true if two types are structurally equal.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *AtomicType:
		bt, ok := b.(*AtomicType)
		return ok && at.DType == bt.DType
	case *IndexType:
		_, ok := b.(*IndexType)
		return ok
	case *NoneType:
		_, ok := b.(*NoneType)
		return ok
	case *SequenceType:
		bt, ok := b.(*SequenceType)
		return ok && Equal(at.Elem, bt.Elem)
	case *BoxType:
		bt, ok := b.(*BoxType)
		return ok && Equal(at.Elem, bt.Elem)
	case *RefType:
		bt, ok := b.(*RefType)
		return ok && Equal(at.Elem, bt.Elem)
	case *ShapeType:
		bt, ok := b.(*ShapeType)
		return ok && at.Rank == bt.Rank
	case *FuncType:
		bt, ok := b.(*FuncType)
		if !ok || len(at.Params) != len(bt.Params) || len(at.Results) != len(bt.Results) {
			return false
		}
		for i, param := range at.Params {
			if !Equal(param, bt.Params[i]) {
				return false
			}
		}
		for i, result := range at.Results {
			if !Equal(result, bt.Results[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsFloat returns true if the type is a floating point scalar.
func IsFloat(t Type) bool {
	at, ok := t.(*AtomicType)
	if !ok {
		return false
	}
	switch at.DType {
	case dtype.Bfloat16, dtype.Float32, dtype.Float64:
		return true
	}
	return false
}

// IsInteger returns true if the type is an integer scalar.
func IsInteger(t Type) bool {
	at, ok := t.(*AtomicType)
	if !ok {
		return false
	}
	switch at.DType {
	case dtype.Int32, dtype.Int64, dtype.Uint32, dtype.Uint64:
		return true
	}
	return false
}

// IsNumeric returns true if the type is a floating point or integer scalar.
func IsNumeric(t Type) bool {
	return IsFloat(t) || IsInteger(t)
}

// ElemOf unwraps a descriptor or array type down to its element type.
// Returns the type itself if it is neither.
func ElemOf(t Type) Type {
	switch tt := t.(type) {
	case *BoxType:
		return ElemOf(tt.Elem)
	case *SequenceType:
		return ElemOf(tt.Elem)
	}
	return t
}

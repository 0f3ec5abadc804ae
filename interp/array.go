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

package interp

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
)

type (
	// Array is a host array passed to descriptor-typed parameters.
	// Its shape plays the role of the runtime descriptor: element
	// data type and extents.
	Array interface {
		// Shape of the array.
		Shape() *shape.Shape

		// at returns the element at a flat index.
		at(i int) scalar

		// array marks a structure as an array of this package.
		array()
	}

	arrayT[T dtype.GoDataType] struct {
		shape  shape.Shape
		values []T
	}
)

var _ Array = (*arrayT[int32])(nil)

// NewArray returns a host array from values and axis lengths.
func NewArray[T dtype.GoDataType](values []T, dims ...int) Array {
	arr := &arrayT[T]{
		shape: shape.Shape{
			DType:       dtype.Generic[T](),
			AxisLengths: dims,
		},
		values: values,
	}
	if len(values) != arr.shape.Size() {
		panic(fmt.Sprintf("mismatch between the number of values (=%d) and the number of elements (=%d) in shape %s", len(values), arr.shape.Size(), arr.shape.String()))
	}
	return arr
}

func (a *arrayT[T]) array() {}

// Shape of the array.
func (a *arrayT[T]) Shape() *shape.Shape {
	return &a.shape
}

func (a *arrayT[T]) at(i int) scalar {
	switch v := any(a.values[i]).(type) {
	case int32:
		return scalar{dt: dtype.Int32, i: int64(v)}
	case int64:
		return scalar{dt: dtype.Int64, i: v}
	case uint32:
		return scalar{dt: dtype.Uint32, i: int64(v)}
	case uint64:
		return scalar{dt: dtype.Uint64, i: int64(v)}
	case float32:
		return scalar{dt: dtype.Float32, f: float64(v)}
	case float64:
		return scalar{dt: dtype.Float64, f: v}
	}
	panic(fmt.Sprintf("array element type %s not supported by the evaluator", a.shape.DType.String()))
}

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

// Package simplify replaces calls to generic runtime reduction entry
// points by calls to specialized, inlinable functions generated into
// the module.
//
// A runtime summation or dot product call goes through descriptor
// dispatch and argument marshalling to handle any rank, element type,
// and optional-argument combination. When the call site makes the
// interesting facts statically visible (rank 1, no dimension or mask
// argument, a supported element type), the same computation is a
// single counted loop. The pass generates that loop once per distinct
// signature and rewrites eligible call sites to use it; every other
// call site is left untouched. Later passes are expected to inline
// the generated functions.
package simplify

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/boxir/ir"
	"golang.org/x/exp/maps"
)

const (
	sumPrefix = "_FortranASum"
	dotPrefix = "_FortranADotProduct"
)

// sumSuffixTypes maps the type-specialized suffix of a runtime
// summation entry point to the element type of the specialized
// function. The suffix is the single source of truth for the element
// type: the runtime entry point is itself specialized by name.
var sumSuffixTypes = map[string]dtype.DataType{
	"Integer4": dtype.Int32,
	"Real8":    dtype.Float64,
}

type options struct {
	experimentalSum bool
}

// Option configures the pass.
type Option func(*options)

// WithExperimentalSum enables the rewrite of summation calls.
// The summation rewrite is off by default: it is known to fail on
// some input shapes that have not been characterized yet.
func WithExperimentalSum(enable bool) Option {
	return func(o *options) {
		o.experimentalSum = enable
	}
}

// Stats reports what the pass did.
type Stats struct {
	// Replaced counts the rewritten call sites per callee name.
	Replaced map[string]int
}

// String representation of the statistics, one callee per line in
// lexical order.
func (s *Stats) String() string {
	names := maps.Keys(s.Replaced)
	slices.Sort(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %d\n", name, s.Replaced[name])
	}
	return b.String()
}

// Run rewrites the eligible runtime reduction calls of a module.
// The pass is single-threaded, deterministic, and idempotent:
// rewritten calls no longer match the runtime entry point names.
func Run(mod *ir.Module, opts ...Option) *Stats {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	stats := &Stats{Replaced: make(map[string]int)}

	// Collect first: rewriting detaches operations, which must not
	// happen under the module walk.
	var calls []*ir.CallOp
	mod.Walk(func(op ir.Op) bool {
		if call, ok := op.(*ir.CallOp); ok {
			calls = append(calls, call)
		}
		return true
	})

	for _, call := range calls {
		name := call.Callee()
		// A specialized function keeps the runtime prefix in its
		// name: calls to one are already rewritten.
		if strings.HasSuffix(name, simplifiedSuffix) {
			continue
		}
		switch {
		case strings.HasPrefix(name, sumPrefix):
			if !o.experimentalSum {
				continue
			}
			if simplifySum(mod, call) {
				stats.Replaced[name]++
			}
		case strings.HasPrefix(name, dotPrefix):
			if simplifyDotProduct(mod, call) {
				stats.Replaced[name]++
			}
		}
	}
	return stats
}

// simplifySum rewrites a summation call when the call site is
// eligible. The runtime entry point is:
//
//	Sum<T>(array, sourceName, sourceLine, dim, mask)
//
// sourceName and sourceLine are diagnostics metadata, ignored here.
// The call is eligible when dim is the static zero standing for "not
// supplied", mask is the absent sentinel, the array provenance shows
// rank 1, and the callee suffix maps to a supported element type.
func simplifySum(mod *ir.Module, call *ir.CallOp) bool {
	name := call.Callee()
	args := call.Args()
	if len(args) != 5 {
		return false
	}
	dim, mask := args[3], args[4]
	if !isStaticZero(dim) || !isAbsent(mask) {
		return false
	}
	if rankOf(args[0]) != 1 {
		return false
	}
	var elem ir.Type
	for suffix, dt := range sumSuffixTypes {
		if strings.HasSuffix(name, suffix) {
			elem = ir.Atomic(dt)
			break
		}
	}
	if elem == nil {
		return false
	}

	b := ir.NewBuilder(mod)
	b.SetInsertionPointBefore(call)
	newFunc := getOrCreateFunction(b, name,
		func() *ir.FuncType { return sumFuncType(elem) },
		genSumBody)
	replaceCall(b, call, newFunc, args[0])
	return true
}

// simplifyDotProduct rewrites a dot product call when both operand
// element types are statically visible and numeric, and the call
// returns a single numeric result. Logical dot products reduce with
// boolean semantics and are left to the runtime.
func simplifyDotProduct(mod *ir.Module, call *ir.CallOp) bool {
	args := call.Args()
	if len(args) != 2 || call.NumResults() != 1 {
		return false
	}
	resType := call.Result(0).Type()
	if !ir.IsNumeric(resType) {
		return false
	}
	elem1, ok := argElementType(args[0])
	if !ok || !ir.IsNumeric(elem1) {
		return false
	}
	elem2, ok := argElementType(args[1])
	if !ok || !ir.IsNumeric(elem2) {
		return false
	}

	// Both operand element types go into the name: the result type
	// alone does not disambiguate mixed-type operand pairs.
	typedName := fmt.Sprintf("%s_%s_%s", call.Callee(), elem1.String(), elem2.String())

	b := ir.NewBuilder(mod)
	b.SetInsertionPointBefore(call)
	newFunc := getOrCreateFunction(b, typedName,
		func() *ir.FuncType { return dotFuncType(resType) },
		func(b *ir.Builder, f *ir.Func) { genDotBody(b, f, elem1, elem2) })
	replaceCall(b, call, newFunc, args[0], args[1])
	return true
}

// replaceCall emits a call to the specialized function, redirects the
// uses of the original call's results to it, and deletes the original
// call. This is the only mutation of existing IR in the pass.
func replaceCall(b *ir.Builder, call *ir.CallOp, newFunc *ir.Func, args ...ir.Value) {
	newCall := b.Call(newFunc, args...)
	owner := call.Block().Func()
	for i, result := range call.Results() {
		owner.ReplaceAllUses(result, newCall.Result(i))
	}
	call.Block().Remove(call)
}

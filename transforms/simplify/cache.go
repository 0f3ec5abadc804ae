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

type (
	// typeGenerator generates the type of a specialized function.
	typeGenerator func() *ir.FuncType

	// bodyGenerator populates the body of a freshly created,
	// empty specialized function.
	bodyGenerator func(*ir.Builder, *ir.Func)
)

// simplifiedSuffix marks the functions generated by this pass.
const simplifiedSuffix = "_simplified"

// getOrCreateFunction returns the specialized function derived from
// baseName, creating and populating it on first request. The module's
// symbol table is the cache: each distinct name is materialized at
// most once per module. A cached function whose type disagrees with
// the freshly generated type is a bug in the naming scheme of the
// callers, not a user error.
//
// The name scheme is deliberately stable across compiler versions:
// independently compiled modules emit identical copies under the same
// name and the link-once linkage lets the linker keep exactly one.
func getOrCreateFunction(b *ir.Builder, baseName string, typeGen typeGenerator, bodyGen bodyGenerator) *ir.Func {
	name := baseName + simplifiedSuffix
	fType := typeGen()
	mod := b.Module()
	if f := mod.Lookup(name); f != nil {
		if !ir.Equal(f.Type(), fType) {
			panic(fmt.Sprintf("type mismatch for simplified function %q: %s vs %s", name, f.Type().String(), fType.String()))
		}
		return f
	}
	f, err := mod.NewFunc(name, fType)
	if err != nil {
		panic(fmt.Sprintf("creating %q after a failed lookup: %v", name, err))
	}
	f.SetLinkage(ir.LinkageLinkonceODR)
	insertPt := b.SaveInsertionPoint()
	bodyGen(b, f)
	b.RestoreInsertionPoint(insertPt)
	return f
}

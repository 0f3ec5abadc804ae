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
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Verify checks the structural well-formedness of every function
// of the module. All faults are reported, not only the first one.
func (m *Module) Verify() error {
	var errs error
	for f := range m.Funcs() {
		errs = multierr.Append(errs, f.Verify())
	}
	return errs
}

// Verify checks the structural well-formedness of the function.
func (f *Func) Verify() error {
	if f.entry == nil {
		// Declaration only.
		return nil
	}
	v := &verifier{fn: f}
	v.block(f.entry, true)
	return v.errs
}

type verifier struct {
	fn   *Func
	errs error
}

func (v *verifier) errorf(format string, args ...any) {
	err := errors.Errorf(format, args...)
	v.errs = multierr.Append(v.errs, errors.Wrapf(err, "function %q", v.fn.name))
}

func (v *verifier) block(blk *Block, entry bool) {
	if len(blk.ops) == 0 {
		v.errorf("block has no terminator")
		return
	}
	for i, op := range blk.ops {
		last := i == len(blk.ops)-1
		switch o := op.(type) {
		case *ReturnOp:
			if !entry {
				v.errorf("return inside a loop body")
				continue
			}
			if !last {
				v.errorf("return is not the last operation of the block")
			}
			v.returnOp(o)
		case *YieldOp:
			if entry {
				v.errorf("yield outside of a loop body")
				continue
			}
			if !last {
				v.errorf("yield is not the last operation of the block")
			}
		case *DoLoopOp:
			v.loop(o)
		case *CallOp:
			v.call(o)
		case *ConvertOp:
			if len(o.args) != 1 {
				v.errorf("convert has %d operands but wants 1", len(o.args))
			}
		case *ArithOp:
			v.arith(o)
		case *StoreOp:
			v.store(o)
		}
		if last {
			switch op.(type) {
			case *ReturnOp, *YieldOp:
			default:
				if entry {
					v.errorf("entry block does not end with a return")
				} else {
					v.errorf("loop body does not end with a yield")
				}
			}
		}
	}
}

func (v *verifier) returnOp(op *ReturnOp) {
	want := v.fn.typ.Results
	if len(op.args) != len(want) {
		v.errorf("return has %d operands but the function returns %d values", len(op.args), len(want))
		return
	}
	for i, arg := range op.args {
		if !Equal(arg.Type(), want[i]) {
			v.errorf("return operand %d has type %s but the function returns %s", i, arg.Type().String(), want[i].String())
		}
	}
}

func (v *verifier) loop(op *DoLoopOp) {
	inits := op.IterInits()
	if got, want := len(op.body.params), len(inits)+1; got != want {
		v.errorf("loop body has %d arguments but wants %d", got, want)
		return
	}
	for i, init := range inits {
		if !Equal(init.Type(), op.body.params[i+1].Type()) {
			v.errorf("loop-carried value %d has type %s but its body argument has type %s", i, init.Type().String(), op.body.params[i+1].Type().String())
		}
	}
	v.block(op.body, false)
	if len(op.body.ops) == 0 {
		return
	}
	last := op.body.ops[len(op.body.ops)-1]
	if yield, ok := last.(*YieldOp); ok {
		if len(yield.args) != len(inits) {
			v.errorf("loop yields %d values but carries %d", len(yield.args), len(inits))
		}
	}
}

func (v *verifier) call(op *CallOp) {
	callee := v.fn.module.Lookup(op.callee)
	if callee == nil {
		// External symbol: nothing to check against.
		return
	}
	if got, want := len(op.args), len(callee.typ.Params); got != want {
		v.errorf("call to %q has %d arguments but the callee wants %d", op.callee, got, want)
		return
	}
	for i, arg := range op.args {
		if !Equal(arg.Type(), callee.typ.Params[i]) {
			v.errorf("call to %q argument %d has type %s but the callee wants %s", op.callee, i, arg.Type().String(), callee.typ.Params[i].String())
		}
	}
	if got, want := len(op.res), len(callee.typ.Results); got != want {
		v.errorf("call to %q has %d results but the callee returns %d", op.callee, got, want)
	}
}

func (v *verifier) arith(op *ArithOp) {
	if len(op.args) != 2 {
		v.errorf("%s has %d operands but wants 2", op.Name(), len(op.args))
		return
	}
	x, y := op.args[0].Type(), op.args[1].Type()
	if !Equal(x, y) {
		v.errorf("%s operands have mismatched types %s and %s", op.Name(), x.String(), y.String())
	}
}

func (v *verifier) store(op *StoreOp) {
	if len(op.args) != 2 {
		v.errorf("store has %d operands but wants 2", len(op.args))
		return
	}
	ref, ok := op.args[1].Type().(*RefType)
	if !ok {
		v.errorf("store into non-reference type %s", op.args[1].Type().String())
		return
	}
	if !Equal(op.args[0].Type(), ref.Elem) {
		v.errorf("store of a %s into a %s", op.args[0].Type().String(), op.args[1].Type().String())
	}
}

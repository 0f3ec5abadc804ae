package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/boxir/ir"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want string
	}{
		{typ: ir.I32, want: "i32"},
		{typ: ir.I64, want: "i64"},
		{typ: ir.U32, want: "u32"},
		{typ: ir.F32, want: "f32"},
		{typ: ir.F64, want: "f64"},
		{typ: ir.Bool, want: "i1"},
		{typ: ir.Index, want: "index"},
		{typ: ir.None, want: "none"},
		{typ: ir.SequenceOf(ir.F64), want: "seq<?xf64>"},
		{typ: ir.BoxOf(ir.SequenceOf(ir.I32)), want: "box<seq<?xi32>>"},
		{typ: ir.BoxOf(ir.None), want: "box<none>"},
		{typ: ir.RefOf(ir.F32), want: "ref<f32>"},
		{typ: ir.ShapeOf(2), want: "shape<2>"},
		{
			typ:  &ir.FuncType{Params: []ir.Type{ir.BoxOf(ir.None)}, Results: []ir.Type{ir.F64}},
			want: "(box<none>) -> (f64)",
		},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("type prints as %q but want %q", got, test.want)
		}
	}
}

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		a, b ir.Type
		want bool
	}{
		{a: ir.I32, b: ir.Atomic(ir.I32.DType), want: true},
		{a: ir.I32, b: ir.I64, want: false},
		{a: ir.I32, b: ir.Index, want: false},
		{a: ir.BoxOf(ir.None), b: ir.BoxOf(ir.None), want: true},
		{a: ir.BoxOf(ir.SequenceOf(ir.F64)), b: ir.BoxOf(ir.SequenceOf(ir.F64)), want: true},
		{a: ir.BoxOf(ir.SequenceOf(ir.F64)), b: ir.BoxOf(ir.SequenceOf(ir.F32)), want: false},
		{a: ir.ShapeOf(1), b: ir.ShapeOf(1), want: true},
		{a: ir.ShapeOf(1), b: ir.ShapeOf(2), want: false},
		{
			a:    &ir.FuncType{Params: []ir.Type{ir.BoxOf(ir.None)}, Results: []ir.Type{ir.I32}},
			b:    &ir.FuncType{Params: []ir.Type{ir.BoxOf(ir.None)}, Results: []ir.Type{ir.I32}},
			want: true,
		},
		{
			a:    &ir.FuncType{Params: []ir.Type{ir.BoxOf(ir.None)}, Results: []ir.Type{ir.I32}},
			b:    &ir.FuncType{Params: []ir.Type{ir.BoxOf(ir.None)}, Results: []ir.Type{ir.F64}},
			want: false,
		},
	}
	for ti, test := range tests {
		if got := ir.Equal(test.a, test.b); got != test.want {
			t.Errorf("test %d: Equal(%s, %s) = %v but want %v", ti, test.a.String(), test.b.String(), got, test.want)
		}
	}
}

func TestElemOf(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want ir.Type
	}{
		{typ: ir.BoxOf(ir.SequenceOf(ir.F64)), want: ir.F64},
		{typ: ir.BoxOf(ir.I32), want: ir.I32},
		{typ: ir.BoxOf(ir.None), want: ir.None},
		{typ: ir.SequenceOf(ir.I64), want: ir.I64},
		{typ: ir.F32, want: ir.F32},
	}
	for _, test := range tests {
		if got := ir.ElemOf(test.typ); !ir.Equal(got, test.want) {
			t.Errorf("ElemOf(%s) = %s but want %s", test.typ.String(), got.String(), test.want.String())
		}
	}
}

func TestNumericPredicates(t *testing.T) {
	tests := []struct {
		typ                   ir.Type
		isFloat, isInt, isNum bool
	}{
		{typ: ir.F64, isFloat: true, isNum: true},
		{typ: ir.F32, isFloat: true, isNum: true},
		{typ: ir.I32, isInt: true, isNum: true},
		{typ: ir.U64, isInt: true, isNum: true},
		{typ: ir.Bool},
		{typ: ir.Index},
		{typ: ir.BoxOf(ir.None)},
	}
	for _, test := range tests {
		if got := ir.IsFloat(test.typ); got != test.isFloat {
			t.Errorf("IsFloat(%s) = %v but want %v", test.typ.String(), got, test.isFloat)
		}
		if got := ir.IsInteger(test.typ); got != test.isInt {
			t.Errorf("IsInteger(%s) = %v but want %v", test.typ.String(), got, test.isInt)
		}
		if got := ir.IsNumeric(test.typ); got != test.isNum {
			t.Errorf("IsNumeric(%s) = %v but want %v", test.typ.String(), got, test.isNum)
		}
	}
}

func TestModuleFuncs(t *testing.T) {
	mod := ir.NewModule("test")
	if _, err := mod.NewFunc("a", &ir.FuncType{}); err != nil {
		t.Fatal(err)
	}
	if _, err := mod.NewFunc("b", &ir.FuncType{}); err != nil {
		t.Fatal(err)
	}
	if _, err := mod.NewFunc("a", &ir.FuncType{}); err == nil {
		t.Errorf("redefining a function does not return an error")
	}
	var got []string
	for f := range mod.Funcs() {
		got = append(got, f.Name())
	}
	want := []string{"a", "b"}
	if !cmp.Equal(got, want) {
		t.Errorf("module functions: got %v but want %v", got, want)
	}
	if mod.Lookup("b") == nil {
		t.Errorf("Lookup(b) returned nil")
	}
	if mod.Lookup("c") != nil {
		t.Errorf("Lookup(c) returned a function")
	}
}

// buildLoopFunc builds a function adding its scalar argument n times
// through a loop-carried value:
//
//	func f(x f64) f64 {
//	  acc := 0.0
//	  for i := 0; i <= n-1; i++ { acc += x }
//	  return acc
//	}
func buildLoopFunc(t *testing.T, mod *ir.Module, name string, n int64) *ir.Func {
	t.Helper()
	f, err := mod.NewFunc(name, &ir.FuncType{Params: []ir.Type{ir.F64}, Results: []ir.Type{ir.F64}})
	if err != nil {
		t.Fatal(err)
	}
	b := ir.NewBuilder(mod)
	entry := f.AddEntryBlock()
	b.SetInsertionPointToEnd(entry)
	zero := b.FloatConstant(ir.F64, 0)
	lower := b.IndexConstant(0)
	upper := b.IndexConstant(n - 1)
	step := b.IndexConstant(1)
	loop := b.DoLoop(lower, upper, step, zero)
	pt := b.SaveInsertionPoint()
	b.SetInsertionPointToStart(loop.Body())
	next := b.AddF(entry.Args()[0], loop.IterArgs()[0])
	b.Yield(next)
	b.RestoreInsertionPoint(pt)
	b.Return(loop.Result(0))
	return f
}

func TestWalkDescendsIntoLoops(t *testing.T) {
	mod := ir.NewModule("test")
	buildLoopFunc(t, mod, "f", 3)
	var got []string
	mod.Walk(func(op ir.Op) bool {
		got = append(got, op.Name())
		return true
	})
	want := []string{
		"constant", "constant", "constant", "constant",
		"do_loop", "arith.addf", "yield", "return",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("walked operations mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceAllUsesAndRemove(t *testing.T) {
	mod := ir.NewModule("test")
	f, err := mod.NewFunc("f", &ir.FuncType{Results: []ir.Type{ir.I32}})
	if err != nil {
		t.Fatal(err)
	}
	b := ir.NewBuilder(mod)
	entry := f.AddEntryBlock()
	b.SetInsertionPointToEnd(entry)
	old := b.IntConstant(ir.I32, 1)
	sum := b.AddI(old, old)
	b.Return(sum)

	b.SetInsertionPointToStart(entry)
	repl := b.IntConstant(ir.I32, 2)
	f.ReplaceAllUses(old, repl)
	entry.Remove(old.DefiningOp())

	addOp := sum.DefiningOp()
	for i, operand := range addOp.Operands() {
		if operand != repl {
			t.Errorf("operand %d of the addition has not been replaced", i)
		}
	}
	if got, want := len(entry.Ops()), 3; got != want {
		t.Errorf("entry block has %d operations but want %d", got, want)
	}
	if err := f.Verify(); err != nil {
		t.Errorf("function does not verify: %v", err)
	}
}

func TestPrintGolden(t *testing.T) {
	mod := ir.NewModule("m")
	f, err := mod.NewFunc("answer", &ir.FuncType{Results: []ir.Type{ir.I32}})
	if err != nil {
		t.Fatal(err)
	}
	b := ir.NewBuilder(mod)
	b.SetInsertionPointToEnd(f.AddEntryBlock())
	c := b.IntConstant(ir.I32, 42)
	b.Return(c)

	want := `module @m {
  func @answer() -> (i32) {
    %0 = constant 42 : i32
    return %0
  }
}
`
	if diff := cmp.Diff(want, mod.String()); diff != "" {
		t.Errorf("module text mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintDeterministic(t *testing.T) {
	mod := ir.NewModule("test")
	buildLoopFunc(t, mod, "f", 4)
	buildLoopFunc(t, mod, "g", 2)
	if diff := cmp.Diff(mod.String(), mod.String()); diff != "" {
		t.Errorf("two prints of the same module differ:\n%s", diff)
	}
}

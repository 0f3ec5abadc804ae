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
	"strconv"
	"strings"
)

// The textual form is deterministic: values are numbered in the order
// in which their defining operations appear. Tests rely on two prints
// of the same module being byte-for-byte identical.

type printer struct {
	s     strings.Builder
	names map[Value]string
	next  int
}

func newPrinter() *printer {
	return &printer{names: make(map[Value]string)}
}

func (p *printer) fresh(v Value) string {
	name := "%" + strconv.Itoa(p.next)
	p.next++
	p.names[v] = name
	return name
}

func (p *printer) name(v Value) string {
	if name, ok := p.names[v]; ok {
		return name
	}
	return "%?"
}

func (p *printer) operands(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = p.name(v)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) resultTypes(op Op) string {
	results := op.Results()
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Type().String()
	}
	return strings.Join(parts, ", ")
}

// assign gives names to the results of an operation and returns the
// left-hand side of its statement.
func (p *printer) assign(op Op) string {
	results := op.Results()
	switch len(results) {
	case 0:
		return ""
	case 1:
		return p.fresh(results[0]) + " = "
	}
	base := "%" + strconv.Itoa(p.next)
	p.next++
	for i, r := range results {
		p.names[r] = base + "#" + strconv.Itoa(i)
	}
	return fmt.Sprintf("%s:%d = ", base, len(results))
}

func (p *printer) printOp(op Op, indent string) {
	if loop, ok := op.(*DoLoopOp); ok {
		p.printLoop(loop, indent)
		return
	}
	p.s.WriteString(indent)
	p.s.WriteString(p.assign(op))
	p.s.WriteString(op.Name())
	switch o := op.(type) {
	case *ConstantOp:
		p.s.WriteString(" ")
		if IsFloat(o.res[0].Type()) {
			p.s.WriteString(strconv.FormatFloat(o.floatVal, 'g', -1, 64))
		} else {
			p.s.WriteString(strconv.FormatInt(o.intVal, 10))
		}
	case *CallOp:
		p.s.WriteString(" @" + o.callee)
		p.s.WriteString("(" + p.operands(op.Operands()) + ")")
	default:
		if len(op.Operands()) > 0 {
			p.s.WriteString(" " + p.operands(op.Operands()))
		}
	}
	if types := p.resultTypes(op); types != "" {
		p.s.WriteString(" : " + types)
	}
	p.s.WriteString("\n")
}

func (p *printer) printLoop(loop *DoLoopOp, indent string) {
	p.s.WriteString(indent)
	p.s.WriteString(p.assign(loop))
	iv := p.fresh(loop.InductionVar())
	p.s.WriteString(fmt.Sprintf("do_loop (%s = %s to %s step %s)",
		iv, p.name(loop.LowerBound()), p.name(loop.UpperBound()), p.name(loop.Step())))
	if inits := loop.IterInits(); len(inits) > 0 {
		parts := make([]string, len(inits))
		for i, arg := range loop.IterArgs() {
			parts[i] = p.fresh(arg) + " = " + p.name(inits[i])
		}
		p.s.WriteString(" iter(" + strings.Join(parts, ", ") + ")")
	}
	if types := p.resultTypes(loop); types != "" {
		p.s.WriteString(" : " + types)
	}
	p.s.WriteString(" {\n")
	for _, op := range loop.body.ops {
		p.printOp(op, indent+"  ")
	}
	p.s.WriteString(indent + "}\n")
}

func (p *printer) printFunc(f *Func, indent string) {
	p.s.WriteString(indent + "func @" + f.name)
	entry := f.entry
	p.s.WriteString("(")
	if entry != nil {
		parts := make([]string, len(entry.params))
		for i, arg := range entry.params {
			name := "%arg" + strconv.Itoa(i)
			p.names[arg] = name
			parts[i] = name + ": " + arg.Type().String()
		}
		p.s.WriteString(strings.Join(parts, ", "))
	} else {
		parts := make([]string, len(f.typ.Params))
		for i, param := range f.typ.Params {
			parts[i] = param.String()
		}
		p.s.WriteString(strings.Join(parts, ", "))
	}
	p.s.WriteString(")")
	if len(f.typ.Results) > 0 {
		parts := make([]string, len(f.typ.Results))
		for i, result := range f.typ.Results {
			parts[i] = result.String()
		}
		p.s.WriteString(" -> (" + strings.Join(parts, ", ") + ")")
	}
	if f.linkage != LinkageDefault {
		p.s.WriteString(" " + f.linkage.String())
	}
	if entry == nil {
		p.s.WriteString("\n")
		return
	}
	p.s.WriteString(" {\n")
	for _, op := range entry.ops {
		p.printOp(op, indent+"  ")
	}
	p.s.WriteString(indent + "}\n")
}

// String returns the textual form of the function.
func (f *Func) String() string {
	p := newPrinter()
	p.printFunc(f, "")
	return p.s.String()
}

// String returns the textual form of the module.
func (m *Module) String() string {
	p := newPrinter()
	p.s.WriteString("module @" + m.name + " {\n")
	for f := range m.Funcs() {
		p.printFunc(f, "  ")
	}
	p.s.WriteString("}\n")
	return p.s.String()
}

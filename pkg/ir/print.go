// Copyright vushc authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a textual rendering of m to w, one function per block group,
// in the same flavour as LLVM's `.ll` dumps: enough to eyeball the effect of
// a lowering change without a separate disassembler.
func Print(w io.Writer, m *Module) {
	fmt.Fprintf(w, "module %s::%s\n", m.Pass, m.Stage)

	printFunction(w, m.Entry)

	for _, fn := range m.Functions {
		fmt.Fprintln(w)
		printFunction(w, fn)
	}
}

func printFunction(w io.Writer, fn *Function) {
	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		args[i] = fmt.Sprintf("%s %%%d", a.Type, a.ID)
	}

	fmt.Fprintf(w, "fn %s(%s) -> %s {\n", fn.Name, strings.Join(args, ", "), fn.ReturnType)

	printBlock(w, fn.Entry)

	for _, b := range fn.Blocks {
		printBlock(w, b)
	}

	fmt.Fprintln(w, "}")
}

func printBlock(w io.Writer, b *Block) {
	fmt.Fprintf(w, "bb%d:\n", b.ID)

	for _, inst := range b.Instructions {
		printInstruction(w, inst)
	}
}

func printInstruction(w io.Writer, v *Value) {
	operands := make([]string, len(v.Operands))
	for i, o := range v.Operands {
		operands[i] = fmt.Sprintf("%%%d", o.ID)
	}

	ty := "void"
	if v.Type != nil {
		ty = v.Type.String()
	}

	switch {
	case len(v.Targets) > 0:
		targets := make([]string, len(v.Targets))
		for i, t := range v.Targets {
			targets[i] = fmt.Sprintf("%d -> bb%d", t.Literal, t.Block.ID)
		}

		fmt.Fprintf(w, "  %%%d = %s %s [%s]\n", v.ID, v.Op, strings.Join(operands, ", "), strings.Join(targets, ", "))
	case len(v.Indices) > 0:
		idx := make([]string, len(v.Indices))
		for i, n := range v.Indices {
			idx[i] = fmt.Sprintf("%d", n)
		}

		fmt.Fprintf(w, "  %%%d = %s : %s %s [%s]\n", v.ID, v.Op, ty, strings.Join(operands, ", "), strings.Join(idx, ","))
	case v.Callee != nil:
		fmt.Fprintf(w, "  %%%d = call %s(%s) : %s\n", v.ID, v.Callee.Name, strings.Join(operands, ", "), ty)
	default:
		fmt.Fprintf(w, "  %%%d = %s %s : %s\n", v.ID, v.Op, strings.Join(operands, ", "), ty)
	}
}

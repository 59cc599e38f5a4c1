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
package ast

import (
	"fmt"
	"io"
)

// Dump writes an indented one-line-per-node rendering of file to w. Unlike
// Walk, which has no post-order hook, Dump recurses directly so it can
// indent by nesting depth; its traversal order still mirrors Walk's.
func Dump(w io.Writer, file *File) {
	d := &dumper{w: w}
	d.dumpFile(file)
}

type dumper struct {
	w     io.Writer
	depth int
}

func (d *dumper) line(format string, args ...any) {
	for i := 0; i < d.depth; i++ {
		fmt.Fprint(d.w, "  ")
	}

	fmt.Fprintf(d.w, format+"\n", args...)
}

func (d *dumper) nested(f func()) {
	d.depth++
	f()
	d.depth--
}

func (d *dumper) dumpFile(n *File) {
	d.line("File")
	d.nested(func() {
		for _, decl := range n.Decls {
			d.dumpDecl(decl)
		}
	})
}

func (d *dumper) dumpDecl(decl Decl) {
	switch n := decl.(type) {
	case *FunctionDecl:
		d.line("FunctionDecl %s", n.Name)
		d.nested(func() { d.dumpStmt(n.Body) })
	case *StageFunctionDecl:
		d.line("StageFunctionDecl %s::%s", n.Pass, n.Stage)
		d.nested(func() { d.dumpStmt(n.Body) })
	case *StructDecl:
		d.line("StructDecl %s", n.Name)
	case *BufferDecl:
		d.line("BufferDecl %s", n.Name)
	case *ImportDecl:
		d.line("ImportDecl %q %v", n.Path, n.Names)
	default:
		d.line("<unknown decl>")
	}
}

func (d *dumper) dumpStmt(stmt Stmt) {
	switch n := stmt.(type) {
	case *BlockStmt:
		d.line("BlockStmt")
		d.nested(func() {
			for _, s := range n.Stmts {
				d.dumpStmt(s)
			}
		})
	case *IfStmt:
		d.line("IfStmt")
		d.nested(func() {
			d.dumpExpr(n.Cond)
			d.dumpStmt(n.Then)

			if n.Else != nil {
				d.dumpStmt(n.Else)
			}
		})
	case *SwitchStmt:
		d.line("SwitchStmt")
		d.nested(func() {
			d.dumpExpr(n.Selector)

			for _, arm := range n.Arms {
				d.line("Arm")
				d.nested(func() {
					for _, s := range arm.Body {
						d.dumpStmt(s)
					}
				})
			}
		})
	case *ForStmt:
		d.line("ForStmt")
		d.nested(func() {
			if n.Init != nil {
				d.dumpStmt(n.Init)
			}

			if n.Cond != nil {
				d.dumpExpr(n.Cond)
			}

			if n.Step != nil {
				d.dumpExpr(n.Step)
			}

			d.dumpStmt(n.Body)
		})
	case *WhileStmt:
		d.line("WhileStmt")
		d.nested(func() {
			d.dumpExpr(n.Cond)
			d.dumpStmt(n.Body)
		})
	case *DoWhileStmt:
		d.line("DoWhileStmt")
		d.nested(func() {
			d.dumpStmt(n.Body)
			d.dumpExpr(n.Cond)
		})
	case *ReturnStmt:
		d.line("ReturnStmt")

		if n.Value != nil {
			d.nested(func() { d.dumpExpr(n.Value) })
		}
	case *BreakStmt:
		d.line("BreakStmt")
	case *ContinueStmt:
		d.line("ContinueStmt")
	case *DiscardStmt:
		d.line("DiscardStmt")
	case *ExprStmt:
		d.line("ExprStmt")
		d.nested(func() { d.dumpExpr(n.Value) })
	case *VariableStmt:
		d.line("VariableStmt %s", n.Name)

		if n.Init != nil {
			d.nested(func() { d.dumpExpr(n.Init) })
		}
	default:
		d.line("<unknown stmt>")
	}
}

func (d *dumper) dumpExpr(expr Expr) {
	switch n := expr.(type) {
	case *IfExpr:
		d.line("IfExpr")
		d.nested(func() {
			d.dumpExpr(n.Cond)
			d.dumpExpr(n.Then)
			d.dumpExpr(n.Else)
		})
	case *IdentifierExpr:
		d.line("IdentifierExpr %s", n.Name)
	case *AssignmentExpr:
		d.line("AssignmentExpr")
		d.nested(func() {
			d.dumpExpr(n.LHS)
			d.dumpExpr(n.Value)
		})
	case *InitialiserCallExpr:
		d.line("InitialiserCallExpr")
		d.nested(func() {
			for _, a := range n.Args {
				d.dumpExpr(a.Value)
			}
		})
	case *CallExpr:
		d.line("CallExpr %s", n.Callee)
		d.nested(func() {
			for _, a := range n.Args {
				d.dumpExpr(a)
			}
		})
	case *FieldExpr:
		d.line("FieldExpr .%s", n.Field)
		d.nested(func() { d.dumpExpr(n.Base) })
	case *IndexExpr:
		d.line("IndexExpr")
		d.nested(func() {
			d.dumpExpr(n.Base)
			d.dumpExpr(n.Index)
		})
	case *ReinterpretExpr:
		d.line("ReinterpretExpr")
		d.nested(func() { d.dumpExpr(n.Value) })
	case *DefaultExpr:
		d.line("DefaultExpr")
	case *BoolLiteralExpr:
		d.line("BoolLiteralExpr %v", n.Value)
	case *IntLiteralExpr:
		d.line("IntLiteralExpr %d", n.Value)
	case *FloatLiteralExpr:
		d.line("FloatLiteralExpr %g", n.Value)
	default:
		d.line("<unknown expr>")
	}
}

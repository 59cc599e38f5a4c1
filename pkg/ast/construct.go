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
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/types"
)

// Constructors: span is a private field of base, so the parser (which
// lives in a different package) builds every node through one of these
// rather than composite-literal-ing a base directly.

func NewFile(span source.Span, decls []Decl) *File {
	return &File{base: base{span}, Decls: decls}
}

func NewBuiltinType(span source.Span, resolved *types.Type) *BuiltinType {
	return &BuiltinType{base: base{span}, Resolved: resolved}
}

func NewStructType(span source.Span, name string) *StructType {
	return &StructType{base: base{span}, Name: name}
}

func NewArrayType(span source.Span, elem Type, length *int) *ArrayType {
	return &ArrayType{base: base{span}, Elem: elem, Length: length}
}

func NewFunctionDecl(span source.Span, name string, params []*Param, ret Type, body *BlockStmt) *FunctionDecl {
	return &FunctionDecl{base: base{span}, Name: name, Params: params, ReturnType: ret, Body: body}
}

func NewStageFunctionDecl(span source.Span, pass, stage string, params []*Param, ret Type, body *BlockStmt) *StageFunctionDecl {
	return &StageFunctionDecl{base: base{span}, Pass: pass, Stage: stage, Params: params, ReturnType: ret, Body: body}
}

func NewStructDecl(span source.Span, name string, fields []StructField) *StructDecl {
	return &StructDecl{base: base{span}, Name: name, Fields: fields}
}

func NewBufferDecl(span source.Span, kind BufferKind, name string, fields []StructField) *BufferDecl {
	return &BufferDecl{base: base{span}, Kind: kind, Name: name, Fields: fields}
}

func NewImportDecl(span source.Span, path string, names []string) *ImportDecl {
	return &ImportDecl{base: base{span}, Path: path, Names: names}
}

func NewBlockStmt(span source.Span, stmts []Stmt) *BlockStmt {
	return &BlockStmt{base: base{span}, Stmts: stmts}
}

func NewIfStmt(span source.Span, cond Expr, then *BlockStmt, els Stmt) *IfStmt {
	return &IfStmt{base: base{span}, Cond: cond, Then: then, Else: els}
}

func NewSwitchStmt(span source.Span, selector Expr, arms []SwitchArm) *SwitchStmt {
	return &SwitchStmt{base: base{span}, Selector: selector, Arms: arms}
}

func NewForStmt(span source.Span, init Stmt, cond, step Expr, body *BlockStmt) *ForStmt {
	return &ForStmt{base: base{span}, Init: init, Cond: cond, Step: step, Body: body}
}

func NewWhileStmt(span source.Span, cond Expr, body *BlockStmt) *WhileStmt {
	return &WhileStmt{base: base{span}, Cond: cond, Body: body}
}

func NewDoWhileStmt(span source.Span, body *BlockStmt, cond Expr) *DoWhileStmt {
	return &DoWhileStmt{base: base{span}, Body: body, Cond: cond}
}

func NewReturnStmt(span source.Span, value Expr) *ReturnStmt {
	return &ReturnStmt{base: base{span}, Value: value}
}

func NewBreakStmt(span source.Span) *BreakStmt       { return &BreakStmt{base{span}} }
func NewContinueStmt(span source.Span) *ContinueStmt { return &ContinueStmt{base{span}} }
func NewDiscardStmt(span source.Span) *DiscardStmt   { return &DiscardStmt{base{span}} }

func NewExprStmt(span source.Span, value Expr) *ExprStmt {
	return &ExprStmt{base: base{span}, Value: value}
}

func NewVariableStmt(span source.Span, name string, mut bool, ty Type, init Expr) *VariableStmt {
	return &VariableStmt{base: base{span}, Name: name, Mut: mut, Type: ty, Init: init}
}

func NewIfExpr(span source.Span, cond, then, els Expr) *IfExpr {
	return &IfExpr{exprBase: exprBase{base: base{span}}, Cond: cond, Then: then, Else: els}
}

func NewIdentifierExpr(span source.Span, name string) *IdentifierExpr {
	return &IdentifierExpr{exprBase: exprBase{base: base{span}}, Name: name}
}

func NewAssignmentExpr(span source.Span, op CompoundOp, lhs, value Expr) *AssignmentExpr {
	return &AssignmentExpr{exprBase: exprBase{base: base{span}}, Op: op, LHS: lhs, Value: value}
}

func NewInitialiserCallExpr(span source.Span, ty Type, args []InitialiserArg) *InitialiserCallExpr {
	return &InitialiserCallExpr{exprBase: exprBase{base: base{span}}, Type: ty, Args: args}
}

func NewCallExpr(span source.Span, callee string, args []Expr) *CallExpr {
	return &CallExpr{exprBase: exprBase{base: base{span}}, Callee: callee, Args: args}
}

func NewFieldExpr(span source.Span, b Expr, field string) *FieldExpr {
	return &FieldExpr{exprBase: exprBase{base: base{span}}, Base: b, Field: field}
}

func NewIndexExpr(span source.Span, b, index Expr) *IndexExpr {
	return &IndexExpr{exprBase: exprBase{base: base{span}}, Base: b, Index: index}
}

func NewReinterpretExpr(span source.Span, target Type, value Expr) *ReinterpretExpr {
	return &ReinterpretExpr{exprBase: exprBase{base: base{span}}, Target: target, Value: value}
}

func NewDefaultExpr(span source.Span) *DefaultExpr {
	return &DefaultExpr{exprBase: exprBase{base: base{span}}}
}

func NewBoolLiteralExpr(span source.Span, value bool) *BoolLiteralExpr {
	return &BoolLiteralExpr{exprBase: exprBase{base: base{span}}, Value: value}
}

func NewIntLiteralExpr(span source.Span, value uint64, signed bool, bitWidth uint) *IntLiteralExpr {
	return &IntLiteralExpr{exprBase: exprBase{base: base{span}}, Value: value, Signed: signed, BitWidth: bitWidth}
}

func NewFloatLiteralExpr(span source.Span, value float64, double bool) *FloatLiteralExpr {
	return &FloatLiteralExpr{exprBase: exprBase{base: base{span}}, Value: value, Double: double}
}

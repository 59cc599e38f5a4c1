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

// Package ast implements the tagged node hierarchy produced by the parser:
// types, declarations, statements and expressions, plus a visitor-based
// traversal.  Nodes are immutable after parsing except for each
// expression's EvaluatedType back-pointer, populated by the (externally
// supplied) semantic analysis pass this package does not implement.
package ast

import (
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/types"
)

// Node is implemented by every AST node: types, declarations, statements
// and expressions all carry a source span.
type Node interface {
	Span() source.Span
	node()
}

type base struct {
	span source.Span
}

func (b base) Span() source.Span { return b.span }
func (base) node()               {}

// ============================================================================
// Types
// ============================================================================

// Type is an unresolved, syntactic type reference as written in source.
// Builtin carries the already-interned *types.Type when the name matched
// the builtin table; Struct and Array are resolved later by the lowering
// engine's type table.
type Type interface {
	Node
	typeNode()
}

type BuiltinType struct {
	base
	Resolved *types.Type
}

type StructType struct {
	base
	Name string
}

type ArrayType struct {
	base
	Elem   Type
	Length *int // nil means runtime-sized
}

func (BuiltinType) typeNode() {}
func (StructType) typeNode()  {}
func (ArrayType) typeNode()   {}

// ============================================================================
// Declarations
// ============================================================================

type Decl interface {
	Node
	declNode()
}

type Param struct {
	Name       string
	Type       Type
	Attributes []Attribute
	// Source names the platform-defined source this parameter is bound to
	// ("param: type from source_name"), resolved by the compiler's
	// SourceDef callback rather than passed by the caller. Empty for an
	// ordinary parameter.
	Source string
	Span   source.Span
}

// Attribute is a layout/storage qualifier decorating a parameter or buffer,
// e.g. "@location(0)" or "@uniform".
type Attribute struct {
	Name string
	Args []AttributeArg
	Span source.Span
}

type AttributeArg struct {
	Name  string // empty for a positional argument
	Value int
}

type FunctionDecl struct {
	base
	Name       string
	Params     []*Param
	ReturnType Type
	Body       *BlockStmt
}

// StageFunctionDecl is `fn <pass>::<stage>(params) -> type { body }`.
type StageFunctionDecl struct {
	base
	Pass       string
	Stage      string
	Params     []*Param
	ReturnType Type
	Body       *BlockStmt
}

type StructField struct {
	Name string
	Type Type
	Span source.Span
}

type StructDecl struct {
	base
	Name   string
	Fields []StructField
}

// OverloadedFunctionDecl groups multiple FunctionDecls sharing a name; it is
// a semantic-only node synthesised by the lowering engine's function table
// pre-pass and carries no span of its own in source.
type OverloadedFunctionDecl struct {
	Name      string
	Overloads []*FunctionDecl
}

func (o OverloadedFunctionDecl) Span() source.Span { return source.Span{} }
func (OverloadedFunctionDecl) node()               {}
func (OverloadedFunctionDecl) declNode()           {}

// BufferKind distinguishes the three buffer storage flavours spec.md §3
// names.
type BufferKind uint8

const (
	UniformBuffer BufferKind = iota
	PushConstantBuffer
	StorageBuffer
)

type BufferDecl struct {
	base
	Kind   BufferKind
	Name   string
	Fields []StructField
}

// ImportDecl names another logical source to splice into this one before
// lowering (spec.md §4.1: "source_request is called at most once per
// logical path; duplicate imports are silently deduplicated"). Names is
// empty for a whole-file `import "path";`, or holds the selected
// declaration names for `from "path" import a, b;`.
type ImportDecl struct {
	base
	Path  string
	Names []string
}

func (FunctionDecl) declNode()      {}
func (StageFunctionDecl) declNode() {}
func (StructDecl) declNode()        {}
func (BufferDecl) declNode()        {}
func (ImportDecl) declNode()        {}

// ============================================================================
// Statements
// ============================================================================

type Stmt interface {
	Node
	stmtNode()
}

type BlockStmt struct {
	base
	Stmts []Stmt
}

type IfStmt struct {
	base
	Cond Expr
	Then *BlockStmt
	Else Stmt // *BlockStmt or *IfStmt (else-if chain), nil if absent
}

type SwitchArm struct {
	Labels    []int64
	IsDefault bool
	Body      []Stmt
	Span      source.Span
}

type SwitchStmt struct {
	base
	Selector Expr
	Arms     []SwitchArm
}

type ForStmt struct {
	base
	Init Stmt // VariableStmt or ExprStmt, nil if absent
	Cond Expr // nil if absent
	Step Expr // nil if absent
	Body *BlockStmt
}

type WhileStmt struct {
	base
	Cond Expr
	Body *BlockStmt
}

type DoWhileStmt struct {
	base
	Body *BlockStmt
	Cond Expr
}

type ReturnStmt struct {
	base
	Value Expr // nil for void return
}

type BreakStmt struct{ base }
type ContinueStmt struct{ base }
type DiscardStmt struct{ base }

type ExprStmt struct {
	base
	Value Expr
}

type VariableStmt struct {
	base
	Name string
	Mut  bool
	Type Type // nil if inferred from Init
	Init Expr // nil if absent
}

func (BlockStmt) stmtNode()    {}
func (IfStmt) stmtNode()       {}
func (SwitchStmt) stmtNode()   {}
func (ForStmt) stmtNode()      {}
func (WhileStmt) stmtNode()    {}
func (DoWhileStmt) stmtNode()  {}
func (ReturnStmt) stmtNode()   {}
func (BreakStmt) stmtNode()    {}
func (ContinueStmt) stmtNode() {}
func (DiscardStmt) stmtNode()  {}
func (ExprStmt) stmtNode()     {}
func (VariableStmt) stmtNode() {}

// ============================================================================
// Expressions
// ============================================================================

type Expr interface {
	Node
	exprNode()
	EvalType() *types.Type
	SetEvalType(*types.Type)
}

type exprBase struct {
	base
	evalType *types.Type
}

func (e exprBase) EvalType() *types.Type      { return e.evalType }
func (e *exprBase) SetEvalType(t *types.Type) { e.evalType = t }

// CompoundOp enumerates assignment operator kinds, plain "=" included.
type CompoundOp uint8

const (
	AssignPlain CompoundOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
)

type IfExpr struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

type IdentifierExpr struct {
	exprBase
	Name string
}

type AssignmentExpr struct {
	exprBase
	Op    CompoundOp
	LHS   Expr
	Value Expr
}

// InitialiserKind distinguishes the shapes a type-initialiser call's
// argument list may take.
type InitialiserKind uint8

const (
	PositionalInit InitialiserKind = iota
	NamedInit
	IndexedInit
)

type InitialiserArg struct {
	Kind  InitialiserKind
	Name  string // NamedInit
	Index int    // IndexedInit
	Value Expr
}

// InitialiserCallExpr constructs a value of Type from Args: vector/matrix
// constructors, struct field-initialiser lists, and array initialisers all
// go through this node.
type InitialiserCallExpr struct {
	exprBase
	Type Type
	Args []InitialiserArg
}

type CallExpr struct {
	exprBase
	Callee string
	Args   []Expr
}

type FieldExpr struct {
	exprBase
	Base  Expr
	Field string
}

type IndexExpr struct {
	exprBase
	Base  Expr
	Index Expr
}

// ReinterpretExpr is an explicit bit-reinterpretation cast, `reinterpret<T>(e)`.
type ReinterpretExpr struct {
	exprBase
	Target Type
	Value  Expr
}

// DefaultExpr produces the zero value of its evaluated type.
type DefaultExpr struct {
	exprBase
}

type BoolLiteralExpr struct {
	exprBase
	Value bool
}

type IntLiteralExpr struct {
	exprBase
	Value    uint64
	Signed   bool
	BitWidth uint
}

type FloatLiteralExpr struct {
	exprBase
	Value  float64
	Double bool
}

func (IfExpr) exprNode()              {}
func (IdentifierExpr) exprNode()      {}
func (AssignmentExpr) exprNode()      {}
func (InitialiserCallExpr) exprNode() {}
func (CallExpr) exprNode()            {}
func (FieldExpr) exprNode()           {}
func (IndexExpr) exprNode()           {}
func (ReinterpretExpr) exprNode()     {}
func (DefaultExpr) exprNode()         {}
func (BoolLiteralExpr) exprNode()     {}
func (IntLiteralExpr) exprNode()      {}
func (FloatLiteralExpr) exprNode()    {}

// File is the root of one parsed source file: an ordered list of top-level
// declarations.
type File struct {
	base
	Decls []Decl
}

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

// Package lower implements the Lowering Engine: a single-pass translator
// from the parsed ast.File into one ir.Module per stage-function
// declaration, resolving types via the shared type registry, dispatching
// operators through the builtin table, and structurally lowering every
// control-flow construct to basic blocks.
package lower

import (
	"fmt"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/builtin"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/types"
)

// Engine holds the state shared across every module lowered from one
// ast.File: the struct/buffer/function tables built by the pre-pass, and
// (reset per module) the id-counting builder, the scoped symbol table and
// the enclosing-construct target stack.
type Engine struct {
	reg      *types.Registry
	builtins *builtin.Table
	sink     *diag.Sink

	structTypes     map[string]*types.Type
	structDecls     map[string]*ast.StructDecl
	structFieldName map[string][]string
	bufferTypes     map[string]*types.Type
	bufferDecls     map[string]*ast.BufferDecl
	functions       map[string][]*ast.FunctionDecl

	// sourceDef validates a sourced parameter's source name
	// ("param: type from source_name"); nil accepts every name. Set via
	// SetSourceDef from the compiler's Config.SourceDef callback.
	sourceDef func(name string) bool

	// irFunctions memoizes already-lowered plain functions by name, so a
	// recursive call resolves to the same *ir.Function instead of
	// relowering (and infinitely recursing into) its body.
	irFunctions map[string]*ir.Function

	// Per-module state, reset by lowerModule.
	b          *ir.Builder
	scopes     []map[string]*ir.Value
	buffers    map[string]*ir.Value
	returnType *types.Type

	continueTargets []*ir.Block
	convergeTargets []*ir.Block

	// curBlocks accumulates every non-entry block created while lowering
	// the function body currently in progress, reset at the start of each
	// lowerFunctionBody call and copied into the resulting
	// ir.Function's Blocks field.
	curBlocks []*ir.Block

	// failed marks the function currently being lowered as unrecoverable;
	// checked after every statement/expression so one FatalDeclaration
	// diagnostic drops only the enclosing function (spec.md §4.8 failure
	// semantics), not the whole module.
	failed bool
}

// NewEngine constructs an Engine sharing reg (so lowered types intern into
// the same table the parser used) and sink (so lowering diagnostics join
// the same accumulated list as parse/lex diagnostics).
func NewEngine(reg *types.Registry, sink *diag.Sink) *Engine {
	return &Engine{
		reg:             reg,
		builtins:        builtin.NewTable(),
		sink:            sink,
		structTypes:     make(map[string]*types.Type),
		structDecls:     make(map[string]*ast.StructDecl),
		structFieldName: make(map[string][]string),
		bufferTypes:     make(map[string]*types.Type),
		bufferDecls:     make(map[string]*ast.BufferDecl),
		functions:       make(map[string][]*ast.FunctionDecl),
		irFunctions:     make(map[string]*ir.Function),
	}
}

// SetSourceDef installs the callback used to validate sourced-parameter
// names. Called by the compiler before Lower; leaving it unset accepts
// every source name.
func (e *Engine) SetSourceDef(fn func(name string) bool) {
	e.sourceDef = fn
}

// Lower runs the full pre-pass (registering every struct/buffer/function
// declaration so forward references resolve) and then lowers every
// stage-function declaration into its own ir.Module.
func (e *Engine) Lower(file *ast.File) []*ir.Module {
	e.registerDecls(file)

	var modules []*ir.Module

	for _, d := range file.Decls {
		if sf, ok := d.(*ast.StageFunctionDecl); ok {
			if m := e.lowerModule(sf); m != nil {
				modules = append(modules, m)
			}
		}
	}

	return modules
}

// registerDecls is the function-table/type-table pre-pass (spec.md §4.8):
// every struct, buffer and plain function is registered before any
// declaration is lowered, so a function may call another declared later in
// the file.
//
// Struct fields are resolved in declaration order without a fixed-point
// pass over forward references; a struct that names a not-yet-registered
// struct type fails to resolve and is dropped with a RecursiveStruct
// diagnostic. Spec.md does not require supporting forward-declared struct
// fields, and doing so would need a two-phase (declare-then-fill) struct
// representation the hash-consed Type model does not have, so source order
// is required (see DESIGN.md).
func (e *Engine) registerDecls(file *ast.File) {
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			e.structDecls[decl.Name] = decl
		case *ast.BufferDecl:
			e.bufferDecls[decl.Name] = decl
		}
	}

	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			if _, ok := e.structTypes[decl.Name]; !ok {
				e.resolveStructType(decl.Name, decl.Fields, decl.Span())
			}
		case *ast.BufferDecl:
			if _, ok := e.bufferTypes[decl.Name]; !ok {
				e.resolveStructType(decl.Name, decl.Fields, decl.Span())

				if t, ok := e.structTypes[decl.Name]; ok {
					e.bufferTypes[decl.Name] = t
				}
			}
		case *ast.FunctionDecl:
			e.functions[decl.Name] = append(e.functions[decl.Name], decl)
		}
	}
}

// resolveStructType interns the Composite type for one struct/buffer body,
// failing with RecursiveStruct if a field names an unresolved struct type
// (source-order requirement, see registerDecls's doc comment) and with
// OpaqueTypeInStruct if a field is an opaque (sampler/image) type.
func (e *Engine) resolveStructType(name string, fields []ast.StructField, span source.Span) {
	fieldTypes := make([]*types.Type, 0, len(fields))

	for _, f := range fields {
		ft, ok := e.lowerType(f.Type)
		if !ok {
			e.sink.Report(diag.New(diag.RecursiveStruct, span,
				fmt.Sprintf("struct %q: field %q names an unresolved type", name, f.Name)))

			return
		}

		if ft.Kind == types.Sampler || ft.Kind == types.Image || ft.Kind == types.SampledImage {
			e.sink.Report(diag.New(diag.OpaqueTypeInStruct, f.Span,
				fmt.Sprintf("struct %q: field %q has opaque type %s", name, f.Name, ft)))

			return
		}

		fieldTypes = append(fieldTypes, ft)
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	e.structFieldName[name] = names
	e.structTypes[name] = e.reg.Struct(name, fieldTypes)
}

// structFieldIndex looks up field by name within struct/buffer type st,
// returning its position and field type. Used by getAddress to turn a
// FieldExpr into a GEP-style address computation.
func (e *Engine) structFieldIndex(st *types.Type, name string) (int, *types.Type, bool) {
	names, ok := e.structFieldName[st.Name]
	if !ok {
		return 0, nil, false
	}

	for i, n := range names {
		if n == name {
			return i, st.Fields[i], true
		}
	}

	return 0, nil, false
}

// pushScope opens a new lexical scope (spec.md §4.8: "pushed/popped by
// every block, loop body, switch arm, and function body entry/exit").
func (e *Engine) pushScope() {
	e.scopes = append(e.scopes, make(map[string]*ir.Value))
}

func (e *Engine) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *Engine) declare(name string, v *ir.Value) {
	e.scopes[len(e.scopes)-1][name] = v
}

// lookup resolves an identifier to the ir.Value holding its address
// (a local/parameter's OpAlloc pointer), searching innermost scope first.
func (e *Engine) lookup(name string) (*ir.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}

	return nil, false
}

// newBlock allocates a block and records it as part of the function
// currently being lowered (see curBlocks); the entry block of a function is
// never passed through here since Function tracks it separately.
func (e *Engine) newBlock() *ir.Block {
	b := e.b.NewBlock()
	e.curBlocks = append(e.curBlocks, b)

	return b
}

// pushLoop/popLoop save and restore the continue/converge target stack
// around a loop or switch body, so break/continue inside nested
// constructs always resolves to the nearest enclosing one.
func (e *Engine) pushLoop(continueTarget, convergeTarget *ir.Block) {
	e.continueTargets = append(e.continueTargets, continueTarget)
	e.convergeTargets = append(e.convergeTargets, convergeTarget)
}

func (e *Engine) popLoop() {
	e.continueTargets = e.continueTargets[:len(e.continueTargets)-1]
	e.convergeTargets = e.convergeTargets[:len(e.convergeTargets)-1]
}

func (e *Engine) currentContinueTarget() (*ir.Block, bool) {
	// A switch pushes a nil continue target; continue skips past it to the
	// nearest enclosing loop.
	for i := len(e.continueTargets) - 1; i >= 0; i-- {
		if e.continueTargets[i] != nil {
			return e.continueTargets[i], true
		}
	}

	return nil, false
}

func (e *Engine) currentConvergeTarget() (*ir.Block, bool) {
	if len(e.convergeTargets) == 0 {
		return nil, false
	}

	return e.convergeTargets[len(e.convergeTargets)-1], true
}

// fatal records a FatalDeclaration-class diagnostic and marks the current
// function as failed; lowering of that function stops at the next check,
// but sibling declarations are unaffected (spec.md §4.8).
func (e *Engine) fatal(kind diag.Kind, span source.Span, format string, args ...any) {
	e.sink.Report(diag.New(kind, span, fmt.Sprintf(format, args...)))
	e.failed = true
}

// reachableBlocks walks the block graph from entry, following only the
// successor edges already committed to a terminator (Targets/Default), and
// returns every block found in visit order. A block an if/switch/loop
// allocated but that both its own branches already terminated past (e.g.
// the converge block of an if whose arms both return) never gets an
// in-edge and is correctly absent from the result, so the caller never
// mistakes dead unreachable code for a function body that fell off the end.
func reachableBlocks(entry *ir.Block) []*ir.Block {
	seen := map[uint64]bool{entry.ID: true}
	queue := []*ir.Block{entry}

	var order []*ir.Block

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)

		term := b.Terminator()
		if term == nil {
			continue
		}

		succs := make([]*ir.Block, 0, len(term.Targets)+1)
		for _, t := range term.Targets {
			succs = append(succs, t.Block)
		}

		if term.Default != nil {
			succs = append(succs, term.Default)
		}

		for _, s := range succs {
			if s != nil && !seen[s.ID] {
				seen[s.ID] = true
				queue = append(queue, s)
			}
		}
	}

	return order
}

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
package lower

import (
	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/types"
)

// stageKindOf maps a StageFunctionDecl's stage name to its ir.StageKind.
// Unrecognised names default to StageVertex; the parser accepts any
// identifier as a stage name, so an unknown stage lowers as a vertex stage.
func stageKindOf(stage string) ir.StageKind {
	switch stage {
	case "fragment":
		return ir.StageFragment
	case "compute":
		return ir.StageCompute
	case "geometry":
		return ir.StageGeometry
	case "tess_control":
		return ir.StageTessControl
	case "tess_eval":
		return ir.StageTessEval
	default:
		return ir.StageVertex
	}
}

// storageClassOf derives a stage-function parameter's storage class from
// its attribute list (spec.md §4.8); a parameter with none of the
// recognised storage attributes is Automatic.
func storageClassOf(attrs []ast.Attribute) ir.StorageClass {
	for _, a := range attrs {
		switch a.Name {
		case "input":
			return ir.Input
		case "output":
			return ir.Output
		case "uniform":
			return ir.Uniform
		case "push_constant":
			return ir.PushConstant
		case "buffer", "storage":
			return ir.Buffer
		}
	}

	return ir.Automatic
}

// decorationOf collects a parameter's non-storage attributes (layout
// qualifiers such as "@location(0)") into the Decoration map the
// ir.Value carries alongside its storage class.
func decorationOf(attrs []ast.Attribute) map[string]int {
	var dec map[string]int

	for _, a := range attrs {
		switch a.Name {
		case "input", "output", "uniform", "push_constant", "buffer", "storage", "automatic":
			continue
		}

		if dec == nil {
			dec = make(map[string]int)
		}

		if len(a.Args) > 0 {
			dec[a.Name] = a.Args[0].Value
		} else {
			dec[a.Name] = 1
		}
	}

	return dec
}

// lowerModule lowers one stage-function declaration into its own Module,
// resetting the id-counting builder and symbol table (spec.md §4.8: "id
// counters reset per module"). Plain functions transitively called from
// the entry point are lowered lazily via lowerUserFunction and collected
// into the resulting Module's Functions list.
func (e *Engine) lowerModule(sf *ast.StageFunctionDecl) *ir.Module {
	e.b = ir.NewBuilder()
	e.scopes = nil
	e.irFunctions = make(map[string]*ir.Function)
	e.failed = false

	entry := e.lowerFunctionBody(sf.Pass+"::"+sf.Stage, sf.Params, sf.ReturnType, sf.Body, true)
	if entry == nil {
		return nil
	}

	fns := make([]*ir.Function, 0, len(e.irFunctions))
	for _, f := range e.irFunctions {
		fns = append(fns, f)
	}

	return &ir.Module{Pass: sf.Pass, Stage: stageKindOf(sf.Stage), Entry: entry, Functions: fns}
}

// lowerUserFunction lazily lowers a plain function declaration the first
// time it's called, memoizing the result under a name+arity key (since
// overload resolution is arity-only, see lowerUserCall) so a recursive call
// resolves to the same *ir.Function rather than relowering (and infinitely
// recursing into) its body.
func (e *Engine) lowerUserFunction(key string, decl *ast.FunctionDecl) *ir.Function {
	if fn, ok := e.irFunctions[key]; ok {
		return fn
	}

	// Reserve the slot before lowering the body, so a self-recursive call
	// inside decl.Body finds a (not yet fully populated) entry rather than
	// relowering from scratch.
	placeholder := &ir.Function{Name: decl.Name}
	e.irFunctions[key] = placeholder

	// A function body never sees its caller's locals (this language has no
	// closures), so lower it against a fresh, empty scope stack.
	prevScopes := e.scopes
	e.scopes = nil

	fn := e.lowerFunctionBody(decl.Name, decl.Params, decl.ReturnType, decl.Body, false)
	e.scopes = prevScopes

	if fn == nil {
		delete(e.irFunctions, key)
		return nil
	}

	*placeholder = *fn

	return placeholder
}

// lowerFunctionBody is the shared core of stage-function and plain-function
// lowering: it allocates each parameter as a stack slot bound into scope
// (consistent with the rvalue-via-load identifier model getAddress/lowerExpr
// use throughout this package), lowers the body, and backfills an implicit
// return if control falls off the end of an unterminated block.
func (e *Engine) lowerFunctionBody(
	name string, params []*ast.Param, retType ast.Type, body *ast.BlockStmt, stage bool,
) *ir.Function {
	ret := e.reg.Void()

	if retType != nil {
		t, ok := e.lowerType(retType)
		if !ok {
			e.fatal(diag.UndefinedSymbol, body.Span(), "function %q: unresolved return type", name)
			return nil
		}

		ret = t
	}

	prevReturn := e.returnType
	e.returnType = ret

	defer func() { e.returnType = prevReturn }()

	e.pushScope()
	defer e.popScope()

	prevBlocks := e.curBlocks
	e.curBlocks = nil

	entry := e.b.NewBlock()
	args := make([]*ir.Value, len(params))

	for i, p := range params {
		pt, ok := e.lowerType(p.Type)
		if !ok {
			e.fatal(diag.UndefinedSymbol, p.Span, "parameter %q: unresolved type", p.Name)
			e.curBlocks = prevBlocks

			return nil
		}

		storage := ir.Automatic
		if stage {
			storage = storageClassOf(p.Attributes)
		}

		if p.Source != "" {
			if !stage {
				e.fatal(diag.IllegalAttribute, p.Span, "parameter %q: sourced parameters are only allowed on stage functions", p.Name)
				e.curBlocks = prevBlocks

				return nil
			}

			if e.sourceDef != nil && !e.sourceDef(p.Source) {
				e.fatal(diag.UndefinedSymbol, p.Span, "parameter %q: unknown source %q", p.Name, p.Source)
				e.curBlocks = prevBlocks

				return nil
			}

			storage = ir.Sourced
		}

		arg := e.b.Argument(pt, storage)
		arg.Decoration = decorationOf(p.Attributes)
		arg.SourceName = p.Source
		args[i] = arg

		slot := e.b.Emit(entry, ir.OpAlloc, e.reg.Pointer(pt), p.Span)
		e.b.Emit(entry, ir.OpStore, nil, p.Span, slot, arg)
		e.declare(p.Name, slot)
	}

	_, ok := e.lowerBlockStmt(entry, body)
	if !ok || e.failed {
		e.curBlocks = prevBlocks
		return nil
	}

	// Backfill implicit returns by walking only the blocks actually
	// reachable from entry, not just the statement lowerer's trailing
	// block: an if/switch/loop may allocate a converge block that never
	// gains a predecessor because every arm feeding it already terminated,
	// and such a block must be left alone rather than treated as a
	// fallen-off function body. A reachable block that does fall off the
	// end receives a return of the function's own return type — void, or
	// a default value of it — rather than being treated as an error.
	for _, b := range reachableBlocks(entry) {
		if b.IsTerminated() {
			continue
		}

		if ret.Kind == types.Void {
			e.b.Emit(b, ir.OpReturn, nil, body.Span())
			continue
		}

		e.b.Emit(b, ir.OpReturn, nil, body.Span(), e.zeroValue(ret))
	}

	fn := &ir.Function{Name: name, ReturnType: ret, Args: args, Entry: entry, Blocks: e.curBlocks, Span: body.Span()}
	e.curBlocks = prevBlocks

	return fn
}

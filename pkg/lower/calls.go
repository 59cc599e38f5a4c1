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
	"fmt"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/types"
)

// lowerUserCall resolves a call against a user function's overload set by
// arity alone (a documented simplification: this language has no notion of
// argument-type-based overload ranking, so the first declaration whose
// parameter count matches the call wins) and lowers arguments against the
// chosen declaration's parameter types.
func (e *Engine) lowerUserCall(blk *ir.Block, ex *ast.CallExpr, overloads []*ast.FunctionDecl) (*ir.Value, *ir.Block, bool) {
	var decl *ast.FunctionDecl

	for _, d := range overloads {
		if len(d.Params) == len(ex.Args) {
			decl = d
			break
		}
	}

	if decl == nil {
		e.fatal(diag.OverloadMismatch, ex.Span(), "no overload of %q takes %d argument(s)", ex.Callee, len(ex.Args))
		return nil, blk, false
	}

	key := fmt.Sprintf("%s/%d", ex.Callee, len(decl.Params))

	fn := e.lowerUserFunction(key, decl)
	if fn == nil {
		return nil, blk, false
	}

	args := make([]*ir.Value, len(ex.Args))

	for i, a := range ex.Args {
		paramTy, ok := e.lowerType(decl.Params[i].Type)
		if !ok {
			e.fatal(diag.UndefinedSymbol, decl.Params[i].Span, "parameter %q: unresolved type", decl.Params[i].Name)
			return nil, blk, false
		}

		v, newBlk, ok := e.lowerExpr(blk, a, paramTy)
		if !ok {
			return nil, blk, false
		}

		blk = newBlk
		args[i] = v
	}

	call := e.b.Emit(blk, ir.OpCall, fn.ReturnType, ex.Span(), args...)
	call.Callee = fn

	return call, blk, true
}

// lowerStructPositionalCall lowers `StructName(a, b, c)`, a call whose
// callee names a struct rather than a function — the parser leaves this
// disambiguation to the lowering engine's symbol table (see DESIGN.md).
// Fields without a corresponding positional argument default to zero.
func (e *Engine) lowerStructPositionalCall(blk *ir.Block, ex *ast.CallExpr) (*ir.Value, *ir.Block, bool) {
	target := e.structTypes[ex.Callee]

	if len(ex.Args) > len(target.Fields) {
		e.fatal(diag.OverloadMismatch, ex.Span(), "struct %q takes at most %d argument(s)", ex.Callee, len(target.Fields))
		return nil, blk, false
	}

	tmp := e.b.Emit(blk, ir.OpAlloc, e.reg.Pointer(target), ex.Span())

	for i, a := range ex.Args {
		v, newBlk, ok := e.lowerExpr(blk, a, target.Fields[i])
		if !ok {
			return nil, blk, false
		}

		blk = newBlk

		ptr := e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(target.Fields[i]), ex.Span(), tmp)
		ptr.Indices = []int64{int64(i)}
		e.b.Emit(blk, ir.OpStore, nil, ex.Span(), ptr, v)
	}

	for i := len(ex.Args); i < len(target.Fields); i++ {
		ptr := e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(target.Fields[i]), ex.Span(), tmp)
		ptr.Indices = []int64{int64(i)}
		e.b.Emit(blk, ir.OpStore, nil, ex.Span(), ptr, e.zeroValue(target.Fields[i]))
	}

	return e.b.Emit(blk, ir.OpLoad, target, ex.Span(), tmp), blk, true
}

// lowerInitialiserCall dispatches a type-initialiser call to the
// constructor appropriate for its target type's kind.
func (e *Engine) lowerInitialiserCall(blk *ir.Block, ex *ast.InitialiserCallExpr) (*ir.Value, *ir.Block, bool) {
	target, ok := e.lowerType(ex.Type)
	if !ok {
		e.fatal(diag.UndefinedSymbol, ex.Span(), "initialiser names an unresolved type")
		return nil, blk, false
	}

	switch target.Kind {
	case types.Composite:
		return e.lowerStructInitialiser(blk, ex, target)
	case types.Vec:
		return e.lowerVectorInitialiser(blk, ex, target)
	case types.Mat:
		return e.lowerMatrixInitialiser(blk, ex, target)
	case types.Array:
		return e.lowerArrayInitialiser(blk, ex, target)
	default:
		e.fatal(diag.UnimplementedConstruct, ex.Span(), "unsupported initialiser target type %s", target)
		return nil, blk, false
	}
}

// lowerStructInitialiser lowers a struct field-initialiser list through a
// temporary: alloc the struct, store each supplied field (by name, index,
// or position) and zero-fill the rest, then load the whole value back.
func (e *Engine) lowerStructInitialiser(blk *ir.Block, ex *ast.InitialiserCallExpr, target *types.Type) (*ir.Value, *ir.Block, bool) {
	names := e.structFieldName[target.Name]
	filled := make([]bool, len(target.Fields))
	tmp := e.b.Emit(blk, ir.OpAlloc, e.reg.Pointer(target), ex.Span())

	for i, a := range ex.Args {
		idx := -1

		switch a.Kind {
		case ast.PositionalInit:
			idx = i
		case ast.IndexedInit:
			idx = a.Index
		case ast.NamedInit:
			for j, n := range names {
				if n == a.Name {
					idx = j
					break
				}
			}
		}

		if idx < 0 || idx >= len(target.Fields) {
			e.fatal(diag.UndefinedSymbol, ex.Span(), "struct %q has no such field", target.Name)
			return nil, blk, false
		}

		v, newBlk, ok := e.lowerExpr(blk, a.Value, target.Fields[idx])
		if !ok {
			return nil, blk, false
		}

		blk = newBlk

		ptr := e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(target.Fields[idx]), ex.Span(), tmp)
		ptr.Indices = []int64{int64(idx)}
		e.b.Emit(blk, ir.OpStore, nil, ex.Span(), ptr, v)
		filled[idx] = true
	}

	for i, f := range target.Fields {
		if filled[i] {
			continue
		}

		ptr := e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(f), ex.Span(), tmp)
		ptr.Indices = []int64{int64(i)}
		e.b.Emit(blk, ir.OpStore, nil, ex.Span(), ptr, e.zeroValue(f))
	}

	return e.b.Emit(blk, ir.OpLoad, target, ex.Span(), tmp), blk, true
}

// flattenToScalars lowers args in order, flattening any vector-typed
// argument into its individual lanes, converting every scalar to elemTy,
// stopping once max lanes have been collected and zero-padding any
// shortfall — the "mixed scalar/vector arguments flatten element-by-element
// until the target is filled, then pad with zero" constructor rule.
func (e *Engine) flattenToScalars(blk *ir.Block, args []ast.InitialiserArg, elemTy *types.Type, max uint) ([]*ir.Value, *ir.Block, bool) {
	lanes := make([]*ir.Value, 0, max)

	for _, a := range args {
		if uint(len(lanes)) >= max {
			break
		}

		v, newBlk, ok := e.lowerRValue(blk, a.Value)
		if !ok {
			return nil, blk, false
		}

		blk = newBlk

		if v.Type.Kind == types.Vec {
			for i := uint(0); i < v.Type.Rows && uint(len(lanes)) < max; i++ {
				lane := e.b.Emit(blk, ir.OpVectorExtract, v.Type.Elem, a.Value.Span(), v)
				lane.Indices = []int64{int64(i)}

				conv, ok := e.convert(blk, lane, elemTy, a.Value.Span())
				if !ok {
					return nil, blk, false
				}

				lanes = append(lanes, conv)
			}

			continue
		}

		conv, ok := e.convert(blk, v, elemTy, a.Value.Span())
		if !ok {
			return nil, blk, false
		}

		lanes = append(lanes, conv)
	}

	for uint(len(lanes)) < max {
		lanes = append(lanes, e.zeroValue(elemTy))
	}

	return lanes, blk, true
}

// lowerVectorInitialiser implements the vecN constructor overloads: a
// single scalar broadcasts, a single vector truncates/pads via the usual
// conversion rule, and anything else flattens.
func (e *Engine) lowerVectorInitialiser(blk *ir.Block, ex *ast.InitialiserCallExpr, target *types.Type) (*ir.Value, *ir.Block, bool) {
	if len(ex.Args) == 1 {
		v, newBlk, ok := e.lowerRValue(blk, ex.Args[0].Value)
		if !ok {
			return nil, blk, false
		}

		blk = newBlk

		if v.Type.Kind == types.Vec {
			return e.convertVector(blk, v, v.Type, target, ex.Span()), blk, true
		}

		sv, ok := e.convert(blk, v, target.Elem, ex.Span())
		if !ok {
			return nil, blk, false
		}

		lanes := make([]*ir.Value, target.Rows)
		for i := range lanes {
			lanes[i] = sv
		}

		return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), lanes...), blk, true
	}

	lanes, blk, ok := e.flattenToScalars(blk, ex.Args, target.Elem, target.Rows)
	if !ok {
		return nil, blk, false
	}

	return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), lanes...), blk, true
}

// lowerMatrixInitialiser implements the matNxM constructor overloads: a
// single scalar builds a scaled identity, a single matrix copies its
// overlapping block column-by-column and pads the remainder with identity,
// exactly `cols` vector arguments become the columns directly, and anything
// else flattens scalars in column-major order.
func (e *Engine) lowerMatrixInitialiser(blk *ir.Block, ex *ast.InitialiserCallExpr, target *types.Type) (*ir.Value, *ir.Block, bool) {
	cols := target.Rows
	colTy := target.Elem
	rows := colTy.Rows

	if len(ex.Args) == 1 {
		v, newBlk, ok := e.lowerRValue(blk, ex.Args[0].Value)
		if !ok {
			return nil, blk, false
		}

		blk = newBlk

		if v.Type.Kind == types.Mat {
			return e.lowerMatrixFromMatrix(blk, ex, target, v)
		}

		sv, ok := e.convert(blk, v, colTy.Elem, ex.Span())
		if !ok {
			return nil, blk, false
		}

		zero := e.zeroValue(colTy.Elem)
		columns := make([]*ir.Value, cols)

		for c := uint(0); c < cols; c++ {
			lanes := make([]*ir.Value, rows)

			for r := uint(0); r < rows; r++ {
				if r == c {
					lanes[r] = sv
				} else {
					lanes[r] = zero
				}
			}

			columns[c] = e.b.Emit(blk, ir.OpCompositeConstruct, colTy, ex.Span(), lanes...)
		}

		return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), columns...), blk, true
	}

	if uint(len(ex.Args)) == cols {
		lowered := make([]*ir.Value, len(ex.Args))
		allVec := true

		for i, a := range ex.Args {
			v, newBlk, ok := e.lowerRValue(blk, a.Value)
			if !ok {
				return nil, blk, false
			}

			blk = newBlk
			lowered[i] = v

			if v.Type.Kind != types.Vec {
				allVec = false
			}
		}

		if allVec {
			columns := make([]*ir.Value, cols)
			for i, v := range lowered {
				columns[i] = e.convertVector(blk, v, v.Type, colTy, ex.Span())
			}

			return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), columns...), blk, true
		}
	}

	lanes, blk, ok := e.flattenToScalars(blk, ex.Args, colTy.Elem, rows*cols)
	if !ok {
		return nil, blk, false
	}

	columns := make([]*ir.Value, cols)
	for c := uint(0); c < cols; c++ {
		columns[c] = e.b.Emit(blk, ir.OpCompositeConstruct, colTy, ex.Span(), lanes[c*rows:(c+1)*rows]...)
	}

	return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), columns...), blk, true
}

// lowerMatrixFromMatrix implements the matrix-from-matrix constructor
// overload: the overlapping rows×columns block is copied element-by-element
// (with scalar conversion), and any remaining row/column is filled from the
// identity matrix.
func (e *Engine) lowerMatrixFromMatrix(blk *ir.Block, ex *ast.InitialiserCallExpr, target *types.Type, src *ir.Value) (*ir.Value, *ir.Block, bool) {
	cols := target.Rows
	colTy := target.Elem
	rows := colTy.Rows

	srcCols := src.Type.Rows
	srcColTy := src.Type.Elem
	srcRows := srcColTy.Rows

	columns := make([]*ir.Value, cols)

	for c := uint(0); c < cols; c++ {
		lanes := make([]*ir.Value, rows)

		var srcCol *ir.Value
		if c < srcCols {
			srcCol = e.b.Emit(blk, ir.OpCompositeExtract, srcColTy, ex.Span(), src)
			srcCol.Indices = []int64{int64(c)}
		}

		for r := uint(0); r < rows; r++ {
			switch {
			case srcCol != nil && r < srcRows:
				lane := e.b.Emit(blk, ir.OpVectorExtract, srcColTy.Elem, ex.Span(), srcCol)
				lane.Indices = []int64{int64(r)}
				lanes[r] = e.convertScalar(blk, lane, srcColTy.Elem, colTy.Elem, ex.Span())
			case r == c:
				lanes[r] = e.oneValue(colTy.Elem)
			default:
				lanes[r] = e.zeroValue(colTy.Elem)
			}
		}

		columns[c] = e.b.Emit(blk, ir.OpCompositeConstruct, colTy, ex.Span(), lanes...)
	}

	return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), columns...), blk, true
}

// lowerArrayInitialiser lowers a positional array-initialiser list,
// converting each element to the array's element type.
func (e *Engine) lowerArrayInitialiser(blk *ir.Block, ex *ast.InitialiserCallExpr, target *types.Type) (*ir.Value, *ir.Block, bool) {
	elems := make([]*ir.Value, len(ex.Args))

	for i, a := range ex.Args {
		v, newBlk, ok := e.lowerExpr(blk, a.Value, target.Elem)
		if !ok {
			return nil, blk, false
		}

		blk = newBlk
		elems[i] = v
	}

	return e.b.Emit(blk, ir.OpCompositeConstruct, target, ex.Span(), elems...), blk, true
}

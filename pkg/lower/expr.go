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
	"github.com/vushlang/vushc/pkg/builtin"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/types"
)

// swizzleSets are the three component-name alphabets a vector field access
// may use (xyzw/rgba/stpq), never mixed within one swizzle.
var swizzleSets = [][4]byte{
	{'x', 'y', 'z', 'w'},
	{'r', 'g', 'b', 'a'},
	{'s', 't', 'p', 'q'},
}

func swizzleIndices(name string) ([]int, bool) {
	if len(name) == 0 || len(name) > 4 {
		return nil, false
	}

	for _, set := range swizzleSets {
		indices := make([]int, 0, len(name))
		ok := true

		for i := 0; i < len(name); i++ {
			idx := -1

			for lane, c := range set {
				if c == name[i] {
					idx = lane
				}
			}

			if idx < 0 {
				ok = false
				break
			}

			indices = append(indices, idx)
		}

		if ok {
			return indices, true
		}
	}

	return nil, false
}

// lowerRValue lowers expr to a value with no expected-type context.
func (e *Engine) lowerRValue(blk *ir.Block, expr ast.Expr) (*ir.Value, *ir.Block, bool) {
	return e.lowerExpr(blk, expr, nil)
}

// lowerExpr lowers expr to a value, converting to expected (when non-nil)
// once evaluated. expected also supplies the type a DefaultExpr needs,
// since this repository's Lowering Engine infers types structurally as it
// lowers rather than relying on a separate semantic-analysis pass
// (spec.md's Non-goals put name resolution/type checking out of scope for
// an external pass, but the engine must still compute a type for every
// value it emits).
func (e *Engine) lowerExpr(blk *ir.Block, expr ast.Expr, expected *types.Type) (*ir.Value, *ir.Block, bool) {
	v, blk, ok := e.lowerExprInner(blk, expr, expected)
	if !ok || expected == nil || v.Type == expected {
		return v, blk, ok
	}

	out, ok := e.convert(blk, v, expected, expr.Span())

	return out, blk, ok
}

func (e *Engine) lowerExprInner(blk *ir.Block, expr ast.Expr, expected *types.Type) (*ir.Value, *ir.Block, bool) {
	switch ex := expr.(type) {
	case *ast.BoolLiteralExpr:
		c := e.b.Constant(e.reg.Bool())
		c.ConstBool = ex.Value

		return c, blk, true
	case *ast.IntLiteralExpr:
		ty := e.reg.Int(ex.BitWidth)
		if !ex.Signed {
			ty = e.reg.Uint(ex.BitWidth)
		}

		c := e.b.Constant(ty)
		if ex.Signed {
			c.ConstInt = int64(ex.Value)
		} else {
			c.ConstUint = ex.Value
		}

		return c, blk, true
	case *ast.FloatLiteralExpr:
		width := uint(32)
		if ex.Double {
			width = 64
		}

		c := e.b.Constant(e.reg.Float(width))
		c.ConstFloat = ex.Value

		return c, blk, true
	case *ast.DefaultExpr:
		if expected == nil {
			e.fatal(diag.UnimplementedConstruct, ex.Span(), "default expression needs a known target type")
			return nil, blk, false
		}

		return e.zeroValue(expected), blk, true
	case *ast.IdentifierExpr:
		return e.lowerIdentifierRValue(blk, ex)
	case *ast.FieldExpr:
		return e.lowerFieldRValue(blk, ex)
	case *ast.IndexExpr:
		return e.lowerIndexRValue(blk, ex)
	case *ast.CallExpr:
		return e.lowerCallExpr(blk, ex)
	case *ast.InitialiserCallExpr:
		return e.lowerInitialiserCall(blk, ex)
	case *ast.AssignmentExpr:
		return e.lowerAssignment(blk, ex)
	case *ast.IfExpr:
		return e.lowerIfExpr(blk, ex, expected)
	case *ast.ReinterpretExpr:
		return e.lowerReinterpret(blk, ex)
	default:
		e.fatal(diag.UnimplementedConstruct, expr.Span(), "unsupported expression form")
		return nil, blk, false
	}
}

func (e *Engine) lowerIdentifierRValue(blk *ir.Block, ex *ast.IdentifierExpr) (*ir.Value, *ir.Block, bool) {
	addr, blk, ok := e.getAddress(blk, ex)
	if !ok {
		return nil, blk, false
	}

	return e.b.Emit(blk, ir.OpLoad, addr.Type.Pointee, ex.Span(), addr), blk, true
}

func (e *Engine) lowerFieldRValue(blk *ir.Block, ex *ast.FieldExpr) (*ir.Value, *ir.Block, bool) {
	base, blk, ok := e.lowerRValue(blk, ex.Base)
	if !ok {
		return nil, blk, false
	}

	if base.Type.Kind == types.Vec {
		return e.lowerSwizzle(blk, base, ex)
	}

	addr, blk, ok := e.getAddress(blk, ex)
	if !ok {
		return nil, blk, false
	}

	return e.b.Emit(blk, ir.OpLoad, addr.Type.Pointee, ex.Span(), addr), blk, true
}

func (e *Engine) lowerSwizzle(blk *ir.Block, base *ir.Value, ex *ast.FieldExpr) (*ir.Value, *ir.Block, bool) {
	indices, ok := swizzleIndices(ex.Field)
	if !ok {
		e.fatal(diag.UnindexableExpression, ex.Span(), "invalid swizzle %q", ex.Field)
		return nil, blk, false
	}

	if len(indices) == 1 {
		v := e.b.Emit(blk, ir.OpVectorExtract, base.Type.Elem, ex.Span(), base)
		v.Indices = []int64{int64(indices[0])}

		return v, blk, true
	}

	lanes := make([]*ir.Value, len(indices))

	for i, idx := range indices {
		lane := e.b.Emit(blk, ir.OpVectorExtract, base.Type.Elem, ex.Span(), base)
		lane.Indices = []int64{int64(idx)}
		lanes[i] = lane
	}

	resultTy := e.reg.Vec(base.Type.Elem, uint(len(indices)))

	return e.b.Emit(blk, ir.OpCompositeConstruct, resultTy, ex.Span(), lanes...), blk, true
}

func (e *Engine) lowerIndexRValue(blk *ir.Block, ex *ast.IndexExpr) (*ir.Value, *ir.Block, bool) {
	base, blk, ok := e.lowerRValue(blk, ex.Base)
	if !ok {
		return nil, blk, false
	}

	if base.Type.Kind == types.Vec {
		lit, isLit := ex.Index.(*ast.IntLiteralExpr)
		if !isLit {
			e.fatal(diag.NonIntegerArrayIndex, ex.Span(), "vector lane index must be a constant integer")
			return nil, blk, false
		}

		v := e.b.Emit(blk, ir.OpVectorExtract, base.Type.Elem, ex.Span(), base)
		v.Indices = []int64{int64(lit.Value)}

		return v, blk, true
	}

	addr, blk, ok := e.getAddress(blk, ex)
	if !ok {
		return nil, blk, false
	}

	return e.b.Emit(blk, ir.OpLoad, addr.Type.Pointee, ex.Span(), addr), blk, true
}

// getAddress lowers expr as an L-value, returning the pointer Value
// holding its address. Only identifiers, struct/array field and index
// access, and if-expressions whose arms are both themselves addressable
// (spec.md §4.8's supplemented rule) are addressable.
func (e *Engine) getAddress(blk *ir.Block, expr ast.Expr) (*ir.Value, *ir.Block, bool) {
	switch ex := expr.(type) {
	case *ast.IdentifierExpr:
		addr, ok := e.lookup(ex.Name)
		if !ok {
			e.fatal(diag.UndefinedSymbol, ex.Span(), "undefined symbol %q", ex.Name)
			return nil, blk, false
		}

		return addr, blk, true
	case *ast.FieldExpr:
		baseAddr, blk, ok := e.getAddress(blk, ex.Base)
		if !ok {
			return nil, blk, false
		}

		st := baseAddr.Type.Pointee
		if st.Kind != types.Composite {
			e.fatal(diag.UnaddressableLValue, ex.Span(), "field access on a non-addressable vector lane")
			return nil, blk, false
		}

		idx, fieldTy, ok := e.structFieldIndex(st, ex.Field)
		if !ok {
			e.fatal(diag.UndefinedSymbol, ex.Span(), "struct %q has no field %q", st.Name, ex.Field)
			return nil, blk, false
		}

		ptr := e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(fieldTy), ex.Span(), baseAddr)
		ptr.Indices = []int64{int64(idx)}

		return ptr, blk, true
	case *ast.IndexExpr:
		baseAddr, blk, ok := e.getAddress(blk, ex.Base)
		if !ok {
			return nil, blk, false
		}

		elemTy := baseAddr.Type.Pointee.Elem
		if elemTy == nil {
			e.fatal(diag.UnindexableExpression, ex.Span(), "expression cannot be indexed")
			return nil, blk, false
		}

		index, blk, ok := e.lowerExpr(blk, ex.Index, e.reg.Int(32))
		if !ok {
			return nil, blk, false
		}

		return e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(elemTy), ex.Span(), baseAddr, index), blk, true
	case *ast.IfExpr:
		return e.getAddressOfIf(blk, ex)
	default:
		e.fatal(diag.UnaddressableLValue, expr.Span(), "expression is not addressable")
		return nil, blk, false
	}
}

func (e *Engine) getAddressOfIf(blk *ir.Block, ex *ast.IfExpr) (*ir.Value, *ir.Block, bool) {
	cond, blk, ok := e.lowerExpr(blk, ex.Cond, e.reg.Bool())
	if !ok {
		return nil, blk, false
	}

	thenBlk, elseBlk, mergeBlk := e.newBlock(), e.newBlock(), e.newBlock()

	head := e.b.Emit(blk, ir.OpBrCond, nil, ex.Span(), cond)
	head.Targets = []ir.BlockTarget{{Block: thenBlk}, {Block: elseBlk}}

	thenAddr, thenBlk, ok := e.getAddress(thenBlk, ex.Then)
	if !ok {
		return nil, blk, false
	}

	e.b.Emit(thenBlk, ir.OpBranch, nil, ex.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}

	elseAddr, elseBlk, ok := e.getAddress(elseBlk, ex.Else)
	if !ok {
		return nil, blk, false
	}

	e.b.Emit(elseBlk, ir.OpBranch, nil, ex.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}

	phi := e.b.Emit(mergeBlk, ir.OpPhi, thenAddr.Type, ex.Span())
	phi.Incoming = []ir.PhiEdge{{Value: thenAddr, Pred: thenBlk}, {Value: elseAddr, Pred: elseBlk}}

	return phi, mergeBlk, true
}

func (e *Engine) lowerIfExpr(blk *ir.Block, ex *ast.IfExpr, expected *types.Type) (*ir.Value, *ir.Block, bool) {
	cond, blk, ok := e.lowerExpr(blk, ex.Cond, e.reg.Bool())
	if !ok {
		return nil, blk, false
	}

	thenBlk, elseBlk, mergeBlk := e.newBlock(), e.newBlock(), e.newBlock()

	head := e.b.Emit(blk, ir.OpBrCond, nil, ex.Span(), cond)
	head.Targets = []ir.BlockTarget{{Block: thenBlk}, {Block: elseBlk}}

	thenVal, thenBlk, ok := e.lowerExpr(thenBlk, ex.Then, expected)
	if !ok {
		return nil, blk, false
	}

	e.b.Emit(thenBlk, ir.OpBranch, nil, ex.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}

	elseExpected := expected
	if elseExpected == nil {
		elseExpected = thenVal.Type
	}

	elseVal, elseBlk, ok := e.lowerExpr(elseBlk, ex.Else, elseExpected)
	if !ok {
		return nil, blk, false
	}

	e.b.Emit(elseBlk, ir.OpBranch, nil, ex.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}

	phi := e.b.Emit(mergeBlk, ir.OpPhi, thenVal.Type, ex.Span())
	phi.Incoming = []ir.PhiEdge{{Value: thenVal, Pred: thenBlk}, {Value: elseVal, Pred: elseBlk}}

	return phi, mergeBlk, true
}

// lowerReinterpret implements `reinterpret<T>(e)` by round-tripping
// through memory typed as T: the IR has no dedicated bitcast opcode, and a
// store-then-load through a differently-typed pointer to the same
// allocation is the representation the rest of the engine already
// understands (alloc/store/load), so reinterpret needs no new opcode.
func (e *Engine) lowerReinterpret(blk *ir.Block, ex *ast.ReinterpretExpr) (*ir.Value, *ir.Block, bool) {
	v, blk, ok := e.lowerRValue(blk, ex.Value)
	if !ok {
		return nil, blk, false
	}

	target, ok := e.lowerType(ex.Target)
	if !ok {
		e.fatal(diag.UndefinedSymbol, ex.Span(), "unknown reinterpret target type")
		return nil, blk, false
	}

	tmp := e.b.Emit(blk, ir.OpAlloc, e.reg.Pointer(v.Type), ex.Span())
	e.b.Emit(blk, ir.OpStore, nil, ex.Span(), tmp, v)

	aliased := e.b.Emit(blk, ir.OpGetPtr, e.reg.Pointer(target), ex.Span(), tmp)

	return e.b.Emit(blk, ir.OpLoad, target, ex.Span(), aliased), blk, true
}

// commonOperandType applies the engine's usual-conversion rule for a
// binary operator's two already-lowered operands: float dominates int,
// and otherwise the wider type wins; one operand is converted to match
// the other when they differ.
func (e *Engine) commonOperandType(a, b *types.Type) *types.Type {
	if a == b {
		return a
	}

	if a.Kind.IsFloat() != b.Kind.IsFloat() {
		if a.Kind.IsFloat() {
			return a
		}

		return b
	}

	if a.BitWidth() >= b.BitWidth() {
		return a
	}

	return b
}

func (e *Engine) lowerCallExpr(blk *ir.Block, ex *ast.CallExpr) (*ir.Value, *ir.Block, bool) {
	switch ex.Callee {
	case "&&", "||":
		return e.lowerShortCircuit(blk, ex)
	}

	if sig, ok := e.builtins.Lookup(ex.Callee); ok {
		return e.lowerBuiltinCall(blk, ex, sig)
	}

	if overloads, ok := e.functions[ex.Callee]; ok {
		return e.lowerUserCall(blk, ex, overloads)
	}

	if _, ok := e.structTypes[ex.Callee]; ok {
		return e.lowerStructPositionalCall(blk, ex)
	}

	e.fatal(diag.UndefinedSymbol, ex.Span(), "undefined function %q", ex.Callee)

	return nil, blk, false
}

func (e *Engine) lowerShortCircuit(blk *ir.Block, ex *ast.CallExpr) (*ir.Value, *ir.Block, bool) {
	lhs, blk, ok := e.lowerExpr(blk, ex.Args[0], e.reg.Bool())
	if !ok {
		return nil, blk, false
	}

	rhsBlk, mergeBlk := e.newBlock(), e.newBlock()
	shortVal := e.zeroValue(e.reg.Bool())
	shortVal.ConstBool = ex.Callee == "||"

	head := e.b.Emit(blk, ir.OpBrCond, nil, ex.Span(), lhs)
	if ex.Callee == "&&" {
		head.Targets = []ir.BlockTarget{{Block: rhsBlk}, {Block: mergeBlk}}
	} else {
		head.Targets = []ir.BlockTarget{{Block: mergeBlk}, {Block: rhsBlk}}
	}

	rhs, rhsBlk, ok := e.lowerExpr(rhsBlk, ex.Args[1], e.reg.Bool())
	if !ok {
		return nil, blk, false
	}

	e.b.Emit(rhsBlk, ir.OpBranch, nil, ex.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}

	phi := e.b.Emit(mergeBlk, ir.OpPhi, e.reg.Bool(), ex.Span())
	phi.Incoming = []ir.PhiEdge{{Value: shortVal, Pred: blk}, {Value: rhs, Pred: rhsBlk}}

	return phi, mergeBlk, true
}

var comparisonNames = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// lowerBuiltinCall dispatches a resolved builtin signature to its IR
// opcode via the builtin package's own exported resolvers, rather than
// reclassifying operand kinds here — builtin.Signature already knows how
// to pick an opcode (or ext-opcode) for a given result type.
func (e *Engine) lowerBuiltinCall(blk *ir.Block, ex *ast.CallExpr, sig *builtin.Signature) (*ir.Value, *ir.Block, bool) {
	args := make([]*ir.Value, len(ex.Args))

	for i, a := range ex.Args {
		v, newBlk, ok := e.lowerRValue(blk, a)
		if !ok {
			return nil, blk, false
		}

		blk = newBlk
		args[i] = v
	}

	opType := args[0].Type

	if len(args) == 2 {
		opType = e.commonOperandType(args[0].Type, args[1].Type)

		for i := range args {
			if args[i].Type != opType {
				conv, ok := e.convert(blk, args[i], opType, ex.Span())
				if !ok {
					return nil, blk, false
				}

				args[i] = conv
			}
		}
	}

	resultType := opType
	if comparisonNames[ex.Callee] {
		resultType = e.reg.Bool()
	}

	if sig.Unimplemented {
		e.fatal(diag.UnimplementedConstruct, ex.Span(), "builtin %q is not implemented", ex.Callee)
		return nil, blk, false
	}

	if extOp, ok := sig.ResolveExtOpcode(opType); ok {
		resultType = extResultType(ex.Callee, opType, e.reg)

		v := e.b.Emit(blk, ir.OpExtCall, resultType, ex.Span(), args...)
		v.ExtOp = extOp

		return v, blk, true
	}

	op, ok := sig.ResolveOpcode(opType)
	if !ok {
		e.fatal(diag.MissingBuiltinVariant, ex.Span(), "no %q overload for this argument type", ex.Callee)
		return nil, blk, false
	}

	return e.b.Emit(blk, op, resultType, ex.Span(), args...), blk, true
}

// extResultType special-cases the handful of ext-dispatched builtins whose
// result type is not simply their (converted) argument type.
func extResultType(name string, argType *types.Type, reg *types.Registry) *types.Type {
	switch name {
	case "length", "distance", "dot":
		elem := argType
		if argType.Kind == types.Vec {
			elem = argType.Elem
		}

		return elem
	default:
		return argType
	}
}

// compoundOpName maps a compound-assignment operator to the builtin table
// identifier that implements its combine step.
var compoundOpName = map[ast.CompoundOp]string{
	ast.AssignAdd: "+", ast.AssignSub: "-", ast.AssignMul: "*", ast.AssignDiv: "/", ast.AssignMod: "%",
	ast.AssignAnd: "&", ast.AssignOr: "|", ast.AssignXor: "^", ast.AssignShl: "<<", ast.AssignShr: ">>",
}

func (e *Engine) compoundOpcode(op ast.CompoundOp, opType *types.Type) (ir.Opcode, bool) {
	name, ok := compoundOpName[op]
	if !ok {
		return ir.OpInvalid, false
	}

	sig, ok := e.builtins.Lookup(name)
	if !ok {
		return ir.OpInvalid, false
	}

	return sig.ResolveOpcode(opType)
}

// lowerAssignment lowers `lhs = rhs` and `lhs <op>= rhs`. A swizzle target
// (e.g. `v.xy = ...`) is not addressable through getAddress (vector lanes
// have no pointer representation in this IR), so it is handled separately
// by lowerSwizzleAssignment's per-lane insert algorithm.
func (e *Engine) lowerAssignment(blk *ir.Block, ex *ast.AssignmentExpr) (*ir.Value, *ir.Block, bool) {
	if fe, ok := ex.LHS.(*ast.FieldExpr); ok {
		baseVal, newBlk, baseOk := e.lowerRValue(blk, fe.Base)
		if baseOk && baseVal.Type.Kind == types.Vec {
			return e.lowerSwizzleAssignment(newBlk, ex, fe, baseVal)
		}
	}

	addr, blk, ok := e.getAddress(blk, ex.LHS)
	if !ok {
		return nil, blk, false
	}

	targetTy := addr.Type.Pointee

	var rhs *ir.Value

	if ex.Op == ast.AssignPlain {
		rhs, blk, ok = e.lowerExpr(blk, ex.Value, targetTy)
		if !ok {
			return nil, blk, false
		}
	} else {
		cur := e.b.Emit(blk, ir.OpLoad, targetTy, ex.Span(), addr)

		rv, newBlk, rvOk := e.lowerRValue(blk, ex.Value)
		if !rvOk {
			return nil, blk, false
		}

		blk = newBlk

		opType := e.commonOperandType(cur.Type, rv.Type)

		curC, convOk := e.convert(blk, cur, opType, ex.Span())
		if !convOk {
			return nil, blk, false
		}

		rvC, convOk := e.convert(blk, rv, opType, ex.Span())
		if !convOk {
			return nil, blk, false
		}

		op, opOk := e.compoundOpcode(ex.Op, opType)
		if !opOk {
			e.fatal(diag.MissingBuiltinVariant, ex.Span(), "no compound-assignment operator for this operand type")
			return nil, blk, false
		}

		combined := e.b.Emit(blk, op, opType, ex.Span(), curC, rvC)

		rhs, convOk = e.convert(blk, combined, targetTy, ex.Span())
		if !convOk {
			return nil, blk, false
		}
	}

	e.b.Emit(blk, ir.OpStore, nil, ex.Span(), addr, rhs)

	return rhs, blk, true
}

// lowerSwizzleAssignment assigns into a multi-component vector field access
// (`v.xy = rhs`): the base vector is addressed, loaded, each targeted lane
// replaced by vector-insert with the (possibly per-lane converted) rhs
// value, and the whole updated vector stored back.
func (e *Engine) lowerSwizzleAssignment(blk *ir.Block, ex *ast.AssignmentExpr, fe *ast.FieldExpr, baseVal *ir.Value) (*ir.Value, *ir.Block, bool) {
	indices, ok := swizzleIndices(fe.Field)
	if !ok {
		e.fatal(diag.UnindexableExpression, fe.Span(), "invalid swizzle %q", fe.Field)
		return nil, blk, false
	}

	baseAddr, blk, ok := e.getAddress(blk, fe.Base)
	if !ok {
		return nil, blk, false
	}

	elemTy := baseVal.Type.Elem

	var rhsLanes []*ir.Value

	if len(indices) == 1 {
		rhs, newBlk, rhsOk := e.lowerExpr(blk, ex.Value, elemTy)
		if !rhsOk {
			return nil, blk, false
		}

		blk = newBlk
		rhsLanes = []*ir.Value{rhs}
	} else {
		rhsTy := e.reg.Vec(elemTy, uint(len(indices)))

		rhs, newBlk, rhsOk := e.lowerExpr(blk, ex.Value, rhsTy)
		if !rhsOk {
			return nil, blk, false
		}

		blk = newBlk

		rhsLanes = make([]*ir.Value, len(indices))
		for i := range indices {
			lane := e.b.Emit(blk, ir.OpVectorExtract, elemTy, ex.Span(), rhs)
			lane.Indices = []int64{int64(i)}
			rhsLanes[i] = lane
		}
	}

	if ex.Op != ast.AssignPlain {
		for i, idx := range indices {
			cur := e.b.Emit(blk, ir.OpVectorExtract, elemTy, ex.Span(), baseVal)
			cur.Indices = []int64{int64(idx)}

			op, opOk := e.compoundOpcode(ex.Op, elemTy)
			if !opOk {
				e.fatal(diag.MissingBuiltinVariant, ex.Span(), "no compound-assignment operator for this operand type")
				return nil, blk, false
			}

			rhsLanes[i] = e.b.Emit(blk, op, elemTy, ex.Span(), cur, rhsLanes[i])
		}
	}

	updated := baseVal

	for i, idx := range indices {
		inserted := e.b.Emit(blk, ir.OpVectorInsert, baseVal.Type, ex.Span(), updated, rhsLanes[i])
		inserted.Indices = []int64{int64(idx)}
		updated = inserted
	}

	e.b.Emit(blk, ir.OpStore, nil, ex.Span(), baseAddr, updated)

	var result *ir.Value
	if len(rhsLanes) == 1 {
		result = rhsLanes[0]
	} else {
		result = e.b.Emit(blk, ir.OpCompositeConstruct, e.reg.Vec(elemTy, uint(len(rhsLanes))), ex.Span(), rhsLanes...)
	}

	return result, blk, true
}

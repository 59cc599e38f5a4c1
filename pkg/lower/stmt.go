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

// lowerBlockStmt pushes a fresh lexical scope, lowers each statement in
// order and pops the scope on exit. Returns the block lowering continues
// in; if a statement terminates its block (return/break/continue/discard),
// the returned block is already closed and the caller must not emit
// further instructions into it.
func (e *Engine) lowerBlockStmt(blk *ir.Block, s *ast.BlockStmt) (*ir.Block, bool) {
	e.pushScope()
	defer e.popScope()

	for _, stmt := range s.Stmts {
		if blk.IsTerminated() {
			break
		}

		var ok bool

		blk, ok = e.lowerStmt(blk, stmt)
		if !ok || e.failed {
			return blk, false
		}
	}

	return blk, true
}

func (e *Engine) lowerStmt(blk *ir.Block, s ast.Stmt) (*ir.Block, bool) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		return e.lowerBlockStmt(blk, st)
	case *ast.VariableStmt:
		return e.lowerVariableStmt(blk, st)
	case *ast.ExprStmt:
		_, blk, ok := e.lowerRValue(blk, st.Value)
		return blk, ok
	case *ast.IfStmt:
		return e.lowerIfStmt(blk, st)
	case *ast.ForStmt:
		return e.lowerForStmt(blk, st)
	case *ast.WhileStmt:
		return e.lowerWhileStmt(blk, st)
	case *ast.DoWhileStmt:
		return e.lowerDoWhileStmt(blk, st)
	case *ast.SwitchStmt:
		return e.lowerSwitchStmt(blk, st)
	case *ast.ReturnStmt:
		return e.lowerReturnStmt(blk, st)
	case *ast.BreakStmt:
		target, ok := e.currentConvergeTarget()
		if !ok {
			e.fatal(diag.BreakContinueOutsideLoop, st.Span(), "break outside loop or switch")
			return blk, false
		}

		e.b.Emit(blk, ir.OpBranch, nil, st.Span()).Targets = []ir.BlockTarget{{Block: target}}

		return blk, true
	case *ast.ContinueStmt:
		target, ok := e.currentContinueTarget()
		if !ok || target == nil {
			e.fatal(diag.BreakContinueOutsideLoop, st.Span(), "continue outside loop")
			return blk, false
		}

		e.b.Emit(blk, ir.OpBranch, nil, st.Span()).Targets = []ir.BlockTarget{{Block: target}}

		return blk, true
	case *ast.DiscardStmt:
		e.b.Emit(blk, ir.OpDie, nil, st.Span())
		return blk, true
	default:
		e.fatal(diag.UnimplementedConstruct, s.Span(), "unsupported statement form")
		return blk, false
	}
}

func (e *Engine) lowerVariableStmt(blk *ir.Block, s *ast.VariableStmt) (*ir.Block, bool) {
	var declType *types.Type

	if s.Type != nil {
		t, ok := e.lowerType(s.Type)
		if !ok {
			e.fatal(diag.UndefinedSymbol, s.Span(), "variable %q: unresolved type", s.Name)
			return blk, false
		}

		declType = t
	}

	var init *ir.Value

	if s.Init != nil {
		v, newBlk, ok := e.lowerExpr(blk, s.Init, declType)
		if !ok {
			return blk, false
		}

		blk = newBlk
		init = v

		if declType == nil {
			declType = v.Type
		}
	} else if declType != nil {
		init = e.zeroValue(declType)
	} else {
		e.fatal(diag.UnimplementedConstruct, s.Span(), "variable %q needs either a type or an initialiser", s.Name)
		return blk, false
	}

	slot := e.b.Emit(blk, ir.OpAlloc, e.reg.Pointer(declType), s.Span())
	e.b.Emit(blk, ir.OpStore, nil, s.Span(), slot, init)
	e.declare(s.Name, slot)

	return blk, true
}

func (e *Engine) lowerIfStmt(blk *ir.Block, s *ast.IfStmt) (*ir.Block, bool) {
	cond, blk, ok := e.lowerExpr(blk, s.Cond, e.reg.Bool())
	if !ok {
		return blk, false
	}

	thenBlk, mergeBlk := e.newBlock(), e.newBlock()

	scf := e.b.Emit(blk, ir.OpScfBranchHead, nil, s.Span())
	scf.Converge = mergeBlk

	head := e.b.Emit(blk, ir.OpBrCond, nil, s.Span(), cond)

	var elseBlk *ir.Block

	if s.Else != nil {
		elseBlk = e.newBlock()
	} else {
		elseBlk = mergeBlk
	}

	head.Targets = []ir.BlockTarget{{Block: thenBlk}, {Block: elseBlk}}

	thenEnd, ok := e.lowerBlockStmt(thenBlk, s.Then)
	if !ok {
		return blk, false
	}

	if !thenEnd.IsTerminated() {
		e.b.Emit(thenEnd, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}
	}

	if s.Else != nil {
		elseEnd, ok := e.lowerStmt(elseBlk, s.Else)
		if !ok {
			return blk, false
		}

		if !elseEnd.IsTerminated() {
			e.b.Emit(elseEnd, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: mergeBlk}}
		}
	}

	return mergeBlk, true
}

func (e *Engine) lowerForStmt(blk *ir.Block, s *ast.ForStmt) (*ir.Block, bool) {
	e.pushScope()
	defer e.popScope()

	if s.Init != nil {
		var ok bool

		blk, ok = e.lowerStmt(blk, s.Init)
		if !ok {
			return blk, false
		}
	}

	condBlk, bodyBlk, stepBlk, mergeBlk := e.newBlock(), e.newBlock(), e.newBlock(), e.newBlock()

	e.b.Emit(blk, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: condBlk}}

	if s.Cond != nil {
		cond, condEnd, ok := e.lowerExpr(condBlk, s.Cond, e.reg.Bool())
		if !ok {
			return blk, false
		}

		scf := e.b.Emit(condEnd, ir.OpScfBranchHead, nil, s.Span())
		scf.Converge = mergeBlk

		e.b.Emit(condEnd, ir.OpBrCond, nil, s.Span(), cond).Targets = []ir.BlockTarget{{Block: bodyBlk}, {Block: mergeBlk}}
	} else {
		e.b.Emit(condBlk, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: bodyBlk}}
	}

	e.pushLoop(stepBlk, mergeBlk)
	bodyEnd, ok := e.lowerBlockStmt(bodyBlk, s.Body)
	e.popLoop()

	if !ok {
		return blk, false
	}

	if !bodyEnd.IsTerminated() {
		e.b.Emit(bodyEnd, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: stepBlk}}
	}

	stepEnd := stepBlk

	if s.Step != nil {
		_, newEnd, ok := e.lowerRValue(stepBlk, s.Step)
		if !ok {
			return blk, false
		}

		stepEnd = newEnd
	}

	e.b.Emit(stepEnd, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: condBlk}}

	return mergeBlk, true
}

func (e *Engine) lowerWhileStmt(blk *ir.Block, s *ast.WhileStmt) (*ir.Block, bool) {
	condBlk, bodyBlk, mergeBlk := e.newBlock(), e.newBlock(), e.newBlock()

	e.b.Emit(blk, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: condBlk}}

	cond, condEnd, ok := e.lowerExpr(condBlk, s.Cond, e.reg.Bool())
	if !ok {
		return blk, false
	}

	scf := e.b.Emit(condEnd, ir.OpScfBranchHead, nil, s.Span())
	scf.Converge = mergeBlk

	e.b.Emit(condEnd, ir.OpBrCond, nil, s.Span(), cond).Targets = []ir.BlockTarget{{Block: bodyBlk}, {Block: mergeBlk}}

	e.pushLoop(condBlk, mergeBlk)
	bodyEnd, ok := e.lowerBlockStmt(bodyBlk, s.Body)
	e.popLoop()

	if !ok {
		return blk, false
	}

	if !bodyEnd.IsTerminated() {
		e.b.Emit(bodyEnd, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: condBlk}}
	}

	return mergeBlk, true
}

func (e *Engine) lowerDoWhileStmt(blk *ir.Block, s *ast.DoWhileStmt) (*ir.Block, bool) {
	bodyBlk, condBlk, mergeBlk := e.newBlock(), e.newBlock(), e.newBlock()

	e.b.Emit(blk, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: bodyBlk}}

	e.pushLoop(condBlk, mergeBlk)
	bodyEnd, ok := e.lowerBlockStmt(bodyBlk, s.Body)
	e.popLoop()

	if !ok {
		return blk, false
	}

	if !bodyEnd.IsTerminated() {
		e.b.Emit(bodyEnd, ir.OpBranch, nil, s.Span()).Targets = []ir.BlockTarget{{Block: condBlk}}
	}

	cond, condEnd, ok := e.lowerExpr(condBlk, s.Cond, e.reg.Bool())
	if !ok {
		return blk, false
	}

	scf := e.b.Emit(condEnd, ir.OpScfBranchHead, nil, s.Span())
	scf.Converge = mergeBlk

	e.b.Emit(condEnd, ir.OpBrCond, nil, s.Span(), cond).Targets = []ir.BlockTarget{{Block: bodyBlk}, {Block: mergeBlk}}

	return mergeBlk, true
}

// lowerSwitchStmt lowers a switch over an integer selector to OpSwitch:
// each arm is its own block, falling through to the next arm's block when
// unterminated (spec.md switch semantics carry C-style fallthrough), and
// break resolves to the merge block via the converge-target stack.
func (e *Engine) lowerSwitchStmt(blk *ir.Block, s *ast.SwitchStmt) (*ir.Block, bool) {
	selector, blk, ok := e.lowerRValue(blk, s.Selector)
	if !ok {
		return blk, false
	}

	mergeBlk := e.newBlock()
	armBlocks := make([]*ir.Block, len(s.Arms))

	for i := range s.Arms {
		armBlocks[i] = e.newBlock()
	}

	scf := e.b.Emit(blk, ir.OpScfBranchHead, nil, s.Span())
	scf.Converge = mergeBlk

	sw := e.b.Emit(blk, ir.OpSwitch, nil, s.Span(), selector)

	defaultBlk := mergeBlk

	for i, arm := range s.Arms {
		if arm.IsDefault {
			defaultBlk = armBlocks[i]
			continue
		}

		for _, lbl := range arm.Labels {
			sw.Targets = append(sw.Targets, ir.BlockTarget{Literal: lbl, Block: armBlocks[i]})
		}
	}

	sw.Default = defaultBlk

	e.pushLoop(nil, mergeBlk)

	for i, arm := range s.Arms {
		armBlk := armBlocks[i]

		e.pushScope()

		for _, stmt := range arm.Body {
			if armBlk.IsTerminated() {
				break
			}

			var stmtOk bool

			armBlk, stmtOk = e.lowerStmt(armBlk, stmt)
			if !stmtOk || e.failed {
				e.popScope()
				e.popLoop()

				return blk, false
			}
		}

		e.popScope()

		if !armBlk.IsTerminated() {
			next := mergeBlk
			if i+1 < len(armBlocks) {
				next = armBlocks[i+1]
			}

			e.b.Emit(armBlk, ir.OpBranch, nil, arm.Span).Targets = []ir.BlockTarget{{Block: next}}
		}
	}

	e.popLoop()

	return mergeBlk, true
}

func (e *Engine) lowerReturnStmt(blk *ir.Block, s *ast.ReturnStmt) (*ir.Block, bool) {
	if s.Value == nil {
		e.b.Emit(blk, ir.OpReturn, nil, s.Span())
		return blk, true
	}

	v, blk, ok := e.lowerExpr(blk, s.Value, e.returnType)
	if !ok {
		return blk, false
	}

	e.b.Emit(blk, ir.OpReturn, nil, s.Span(), v)

	return blk, true
}

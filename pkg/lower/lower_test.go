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
	"testing"

	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/parser"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/token"
	"github.com/vushlang/vushc/pkg/types"
)

// lowerSrc lexes, parses and lowers src in one shot, mirroring
// pkg/parser/parser_test.go's in-memory source.Request helper.
func lowerSrc(t *testing.T, src string) ([]*ir.Module, *diag.Sink) {
	t.Helper()

	mgr := source.NewManager(func(path string, ctx any) (string, []byte, error) {
		return path, []byte(src), nil
	})

	h, err := mgr.Resolve("t.vush", nil)
	if err != nil {
		t.Fatal(err)
	}

	sink := diag.NewSink()
	toks := token.Lex(mgr, h, sink)
	reg := types.NewRegistry()
	file := parser.Parse(toks, h, sink, reg)

	if sink.HasCompilationFatal() {
		t.Fatalf("unexpected parse diagnostics: %v", sink.All())
	}

	engine := NewEngine(reg, sink)
	modules := engine.Lower(file)

	return modules, sink
}

func countOp(blocks []*ir.Block, op ir.Opcode) int {
	n := 0

	for _, b := range blocks {
		for _, inst := range b.Instructions {
			if inst.Kind == ir.InstructionValue && inst.Op == op {
				n++
			}
		}
	}

	return n
}

func allBlocks(fn *ir.Function) []*ir.Block {
	return append([]*ir.Block{fn.Entry}, fn.Blocks...)
}

func TestLowerScalarArithmeticWithConversion(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment() -> float {
	var x: int = 1;
	var y: float = 2.0;
	return y + x;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}

	blocks := allBlocks(modules[0].Entry)
	if n := countOp(blocks, ir.OpSI2FP); n != 1 {
		t.Fatalf("expected exactly one si2fp conversion, got %d", n)
	}

	if n := countOp(blocks, ir.OpFAdd); n != 1 {
		t.Fatalf("expected one float add, got %d", n)
	}
}

func TestLowerShortCircuitAnd(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input a: bool, @input b: bool) -> bool {
	return a && b;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry

	head := fn.Entry.Terminator()
	if head == nil || head.Op != ir.OpBrCond {
		t.Fatalf("expected entry to end in brcond, got %v", head)
	}

	if len(head.Targets) != 2 {
		t.Fatalf("expected brcond with 2 targets, got %d", len(head.Targets))
	}

	rhsBlk, mergeBlk := head.Targets[0].Block, head.Targets[1].Block

	if rhsBlk.Terminator() == nil || rhsBlk.Terminator().Op != ir.OpBranch {
		t.Fatalf("expected rhs block to end in an unconditional branch")
	}

	var phi *ir.Value
	for _, inst := range mergeBlk.Instructions {
		if inst.Op == ir.OpPhi {
			phi = inst
		}
	}

	if phi == nil {
		t.Fatalf("expected merge block to contain a phi")
	}

	if len(phi.Incoming) != 2 {
		t.Fatalf("expected phi with 2 incoming edges, got %d", len(phi.Incoming))
	}

	shortCircuit := phi.Incoming[0].Value
	if shortCircuit.Kind != ir.ConstantValue || shortCircuit.ConstBool != false {
		t.Fatalf("expected && to short-circuit to constant false on the fast path, got %+v", shortCircuit)
	}
}

func TestLowerShortCircuitOr(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input a: bool, @input b: bool) -> bool {
	return a || b;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry
	head := fn.Entry.Terminator()

	if head == nil || head.Op != ir.OpBrCond || len(head.Targets) != 2 {
		t.Fatalf("expected entry to end in a 2-target brcond, got %v", head)
	}

	// || takes the short-circuit path on the true branch: Targets[0] is the
	// merge block, Targets[1] is the rhs-evaluating block.
	mergeBlk, rhsBlk := head.Targets[0].Block, head.Targets[1].Block

	if rhsBlk.Terminator() == nil || rhsBlk.Terminator().Op != ir.OpBranch {
		t.Fatalf("expected rhs block to end in an unconditional branch")
	}

	var phi *ir.Value
	for _, inst := range mergeBlk.Instructions {
		if inst.Op == ir.OpPhi {
			phi = inst
		}
	}

	if phi == nil {
		t.Fatalf("expected merge block to contain a phi")
	}

	if phi.Incoming[0].Value.Kind != ir.ConstantValue || phi.Incoming[0].Value.ConstBool != true {
		t.Fatalf("expected || to short-circuit to constant true on the fast path, got %+v", phi.Incoming[0].Value)
	}
}

func TestLowerVectorConstructorFlattensMixedArgs(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input x: int) -> vec3 {
	return vec3(1, 2.5, x);
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	blocks := allBlocks(modules[0].Entry)

	if n := countOp(blocks, ir.OpSI2FP); n != 2 {
		t.Fatalf("expected 2 int-to-float conversions (literal 1 and parameter x), got %d", n)
	}

	var construct *ir.Value
	for _, b := range blocks {
		for _, inst := range b.Instructions {
			if inst.Op == ir.OpCompositeConstruct {
				construct = inst
			}
		}
	}

	if construct == nil {
		t.Fatalf("expected a composite-construct instruction")
	}

	if len(construct.Operands) != 3 {
		t.Fatalf("expected the vec3 constructor to combine 3 lanes, got %d", len(construct.Operands))
	}
}

func TestLowerIfStatementBothBranchesTerminating(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input c: bool) -> int {
	if (c) {
		return 1;
	} else {
		return 2;
	}
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry

	head := fn.Entry.Terminator()
	if head == nil || head.Op != ir.OpBrCond {
		t.Fatalf("expected entry to end in brcond, got %v", head)
	}

	thenBlk, elseBlk := head.Targets[0].Block, head.Targets[1].Block

	if thenBlk.Terminator() == nil || thenBlk.Terminator().Op != ir.OpReturn {
		t.Fatalf("expected then-block to end directly in a return")
	}

	if elseBlk.Terminator() == nil || elseBlk.Terminator().Op != ir.OpReturn {
		t.Fatalf("expected else-block to end directly in a return")
	}

	// The converge block the if allocated never gains a predecessor (both
	// arms returned directly), so it must stay empty: no implicit return
	// gets backfilled into unreachable code.
	for _, b := range fn.Blocks {
		if b.ID == thenBlk.ID || b.ID == elseBlk.ID {
			continue
		}

		if len(b.Instructions) != 0 {
			t.Fatalf("expected the dangling converge block to receive no backfilled instructions, got %d", len(b.Instructions))
		}
	}
}

func TestLowerNestedLoopsBreakTargetsInnermost(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment() -> int {
	var mut total: int = 0;
	for (var mut i: int = 0; i < 4; i += 1) {
		while (true) {
			total += 1;
			break;
		}
	}
	return total;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	blocks := allBlocks(modules[0].Entry)

	var innerBreak *ir.Value
	var whileMerge *ir.Block

	// The while loop's brcond is the only 2-target brcond whose condition
	// operand is a constant true; its second target is the while's merge
	// block, which the nested break must also branch to.
	for _, b := range blocks {
		term := b.Terminator()
		if term == nil || term.Op != ir.OpBrCond || len(term.Operands) != 1 {
			continue
		}

		cond := term.Operands[0]
		if cond.Kind == ir.ConstantValue && cond.ConstBool {
			whileMerge = term.Targets[1].Block
		}
	}

	if whileMerge == nil {
		t.Fatalf("could not find the while loop's brcond")
	}

	for _, b := range blocks {
		term := b.Terminator()
		if term == nil || term.Op != ir.OpBranch || len(term.Targets) != 1 {
			continue
		}

		if term.Targets[0].Block.ID == whileMerge.ID {
			innerBreak = term
		}
	}

	if innerBreak == nil {
		t.Fatalf("expected break to branch directly to the while loop's own merge block, not the for loop's")
	}
}

func TestLowerSwitchFallthroughBetweenArms(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input s: int) -> int {
	var mut r: int = 0;
	switch (s) {
	0:
		r += 1;
	1:
		r += 2;
		break;
	default:
		r += 3;
	}
	return r;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	blocks := allBlocks(modules[0].Entry)

	var sw *ir.Value
	for _, b := range blocks {
		for _, inst := range b.Instructions {
			if inst.Op == ir.OpSwitch {
				sw = inst
			}
		}
	}

	if sw == nil {
		t.Fatalf("expected an OpSwitch instruction")
	}

	if len(sw.Targets) != 2 {
		t.Fatalf("expected 2 non-default case targets, got %d", len(sw.Targets))
	}

	if sw.Default == nil {
		t.Fatalf("expected a default target")
	}

	caseZero := sw.Targets[0].Block
	if caseZero.Terminator() == nil || caseZero.Terminator().Op != ir.OpBranch {
		t.Fatalf("expected case 0 to fall through via an unconditional branch to case 1")
	}

	caseOne := sw.Targets[1].Block
	if caseZero.Terminator().Targets[0].Block.ID != caseOne.ID {
		t.Fatalf("expected case 0's fallthrough to target case 1's block")
	}
}

func TestLowerSwizzleCompoundAssignment(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment() -> vec3 {
	var mut v: vec3 = vec3(1.0, 2.0, 3.0);
	v.xy += vec2(1.0, 1.0);
	return v;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	blocks := allBlocks(modules[0].Entry)

	if n := countOp(blocks, ir.OpVectorExtract); n < 2 {
		t.Fatalf("expected at least 2 lane extractions (one per swizzled component), got %d", n)
	}

	if n := countOp(blocks, ir.OpVectorInsert); n != 2 {
		t.Fatalf("expected 2 lane insertions (one per swizzled component), got %d", n)
	}

	if n := countOp(blocks, ir.OpFAdd); n != 2 {
		t.Fatalf("expected the compound add to run once per swizzled lane, got %d", n)
	}
}

func TestLowerSwizzleSingleLaneRead(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment() -> float {
	var v: vec3 = vec3(1.0, 2.0, 3.0);
	return v.y;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	blocks := allBlocks(modules[0].Entry)

	var extract *ir.Value
	for _, b := range blocks {
		for _, inst := range b.Instructions {
			if inst.Op == ir.OpVectorExtract {
				extract = inst
			}
		}
	}

	if extract == nil {
		t.Fatalf("expected a vector-extract instruction")
	}

	if len(extract.Indices) != 1 || extract.Indices[0] != 1 {
		t.Fatalf("expected .y to extract lane index 1, got %v", extract.Indices)
	}
}

func TestLowerUndefinedSymbolReportsDeclarationFatal(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment() -> float {
	return undeclared_name;
}
`)
	if !sink.HasDeclarationFatal() {
		t.Fatalf("expected a declaration-fatal diagnostic for an undefined symbol")
	}

	if len(modules) != 0 {
		t.Fatalf("expected no module to be produced for a function that failed to lower, got %d", len(modules))
	}
}

func TestLowerSourcedParameterStorageClass(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(frame_index: int from builtin_frame) -> int {
	return frame_index;
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry
	if len(fn.Args) != 1 {
		t.Fatalf("expected 1 argument, got %d", len(fn.Args))
	}

	arg := fn.Args[0]
	if arg.Storage != ir.Sourced {
		t.Fatalf("expected the sourced parameter's storage class to be Sourced, got %v", arg.Storage)
	}

	if arg.SourceName != "builtin_frame" {
		t.Fatalf("expected SourceName %q, got %q", "builtin_frame", arg.SourceName)
	}
}

func TestLowerIfEmitsScfBranchHeadConverge(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input c: bool) -> int {
	if (c) {
		return 1;
	} else {
		return 2;
	}
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry

	insts := fn.Entry.Instructions
	if len(insts) < 2 {
		t.Fatalf("expected entry to hold at least a scf-branch-head and a brcond, got %d instructions", len(insts))
	}

	scf := insts[len(insts)-2]
	if scf.Op != ir.OpScfBranchHead {
		t.Fatalf("expected the instruction immediately before the if's brcond to be scf-branch-head, got %v", scf.Op)
	}

	head := fn.Entry.Terminator()
	if head == nil || head.Op != ir.OpBrCond {
		t.Fatalf("expected entry to end in brcond, got %v", head)
	}

	thenBlk, elseBlk := head.Targets[0].Block, head.Targets[1].Block

	// The converge block is whichever block the if allocated besides the
	// then/else arms; scf's Converge must name it even though (since both
	// arms return directly) it never gains a predecessor.
	var mergeBlk *ir.Block

	for _, b := range fn.Blocks {
		if b.ID != thenBlk.ID && b.ID != elseBlk.ID {
			mergeBlk = b
		}
	}

	if mergeBlk == nil {
		t.Fatalf("expected a converge block distinct from the then/else arms")
	}

	if scf.Converge == nil || scf.Converge.ID != mergeBlk.ID {
		t.Fatalf("expected scf-branch-head's Converge to name the if's merge block")
	}
}

func TestLowerSwitchEmitsScfBranchHeadConverge(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input n: int) -> int {
	switch (n) {
	0:
		return 1;
	default:
		return 2;
	}
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry

	insts := fn.Entry.Instructions
	if len(insts) < 2 {
		t.Fatalf("expected entry to hold at least a scf-branch-head and a switch, got %d instructions", len(insts))
	}

	scf := insts[len(insts)-2]
	if scf.Op != ir.OpScfBranchHead {
		t.Fatalf("expected the instruction immediately before the switch to be scf-branch-head, got %v", scf.Op)
	}

	sw := fn.Entry.Terminator()
	if sw == nil || sw.Op != ir.OpSwitch {
		t.Fatalf("expected entry to end in switch, got %v", sw)
	}

	if scf.Converge == nil {
		t.Fatalf("expected scf-branch-head's Converge to be set")
	}

	if sw.Default != nil && sw.Default.ID == scf.Converge.ID {
		t.Fatalf("expected Converge to name the switch's merge block, not the default arm")
	}

	for _, t2 := range sw.Targets {
		if t2.Block.ID == scf.Converge.ID {
			t.Fatalf("expected Converge to name the switch's merge block, not one of its arms")
		}
	}
}

func TestLowerImplicitReturnBackfillsZeroValue(t *testing.T) {
	modules, sink := lowerSrc(t, `
fn pass::fragment(@input c: bool) -> int {
	if (c) {
		return 1;
	}
}
`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := modules[0].Entry

	head := fn.Entry.Terminator()
	if head == nil || head.Op != ir.OpBrCond {
		t.Fatalf("expected entry to end in brcond, got %v", head)
	}

	// No else clause: the brcond's second target is the merge block itself,
	// which falls straight off the end of the function in this source and
	// must receive a backfilled return of the function's own (non-void)
	// return type rather than a fatal diagnostic.
	mergeBlk := head.Targets[1].Block

	term := mergeBlk.Terminator()
	if term == nil || term.Op != ir.OpReturn {
		t.Fatalf("expected the fallen-through merge block to receive a backfilled return, got %v", term)
	}

	if len(term.Operands) != 1 {
		t.Fatalf("expected the backfilled return to carry one operand (the zero value), got %d", len(term.Operands))
	}

	zero := term.Operands[0]
	if zero.Kind != ir.ConstantValue || zero.ConstInt != 0 {
		t.Fatalf("expected the backfilled return's operand to be the zero-valued int constant, got %+v", zero)
	}
}

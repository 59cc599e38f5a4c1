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
package parser

import (
	"testing"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/token"
	"github.com/vushlang/vushc/pkg/types"
)

func parse(t *testing.T, src string) (*ast.File, *diag.Sink) {
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

	if !sink.Empty() {
		t.Fatalf("unexpected lexer diagnostics: %v", sink.All())
	}

	reg := types.NewRegistry()
	file := Parse(toks, h, sink, reg)

	return file, sink
}

func declAt(t *testing.T, file *ast.File, i int) ast.Decl {
	t.Helper()

	if i >= len(file.Decls) {
		t.Fatalf("expected at least %d declaration(s), got %d", i+1, len(file.Decls))
	}

	return file.Decls[i]
}

func TestParseFunctionDecl(t *testing.T) {
	file, sink := parse(t, "fn add(a: float, b: float) -> float { return a + b; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn, ok := declAt(t, file, 0).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", file.Decls[0])
	}

	if fn.Name != "add" {
		t.Fatalf("expected name %q, got %q", "add", fn.Name)
	}

	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}

	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected one body statement, got %d", len(fn.Body.Stmts))
	}

	if _, ok := fn.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", fn.Body.Stmts[0])
	}
}

func TestParseStageFunctionDecl(t *testing.T) {
	file, sink := parse(t, "fn pass::fragment(uv: vec2) -> vec4 { return vec4(0); }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn, ok := declAt(t, file, 0).(*ast.StageFunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.StageFunctionDecl, got %T", file.Decls[0])
	}

	if fn.Pass != "pass" || fn.Stage != "fragment" {
		t.Fatalf("expected pass/stage %q/%q, got %q/%q", "pass", "fragment", fn.Pass, fn.Stage)
	}
}

func TestParseSourcedParameter(t *testing.T) {
	file, sink := parse(t, "fn pass::fragment(t: float from time) -> float { return t; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.StageFunctionDecl)

	if len(fn.Params) != 1 || fn.Params[0].Source != "time" {
		t.Fatalf("expected a sourced parameter bound to %q, got %+v", "time", fn.Params)
	}
}

func TestParseStructDecl(t *testing.T) {
	file, sink := parse(t, "struct Vertex { position: vec3; uv: vec2; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	s, ok := declAt(t, file, 0).(*ast.StructDecl)
	if !ok {
		t.Fatalf("expected *ast.StructDecl, got %T", file.Decls[0])
	}

	if s.Name != "Vertex" || len(s.Fields) != 2 {
		t.Fatalf("unexpected struct: %+v", s)
	}

	if s.Fields[0].Name != "position" || s.Fields[1].Name != "uv" {
		t.Fatalf("unexpected field names: %+v", s.Fields)
	}
}

func TestParseEmptyStructReportsDiagnostic(t *testing.T) {
	_, sink := parse(t, "struct Empty { }")
	if sink.Empty() {
		t.Fatal("expected an empty-struct diagnostic")
	}
}

func TestParseBufferDecl(t *testing.T) {
	file, sink := parse(t, "@uniform struct Camera { view: mat4; proj: mat4; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	b, ok := declAt(t, file, 0).(*ast.BufferDecl)
	if !ok {
		t.Fatalf("expected *ast.BufferDecl, got %T", file.Decls[0])
	}

	if b.Kind != ast.UniformBuffer || b.Name != "Camera" {
		t.Fatalf("unexpected buffer decl: %+v", b)
	}
}

func TestParsePushConstantAndStorageBufferAttributes(t *testing.T) {
	file, sink := parse(t, "@push_constant struct Push { x: int; }\n@storage struct Blob { y: int; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	push := declAt(t, file, 0).(*ast.BufferDecl)
	if push.Kind != ast.PushConstantBuffer {
		t.Fatalf("expected PushConstantBuffer, got %v", push.Kind)
	}

	blob := declAt(t, file, 1).(*ast.BufferDecl)
	if blob.Kind != ast.StorageBuffer {
		t.Fatalf("expected StorageBuffer, got %v", blob.Kind)
	}
}

func TestParseWholeFileImport(t *testing.T) {
	file, sink := parse(t, `import "lib.vush";`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	imp, ok := declAt(t, file, 0).(*ast.ImportDecl)
	if !ok {
		t.Fatalf("expected *ast.ImportDecl, got %T", file.Decls[0])
	}

	if imp.Path != "lib.vush" || imp.Names != nil {
		t.Fatalf("expected whole-file import of %q, got %+v", "lib.vush", imp)
	}
}

func TestParseNamedImport(t *testing.T) {
	file, sink := parse(t, `from "lib.vush" import a, b;`)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	imp := declAt(t, file, 0).(*ast.ImportDecl)

	if imp.Path != "lib.vush" || len(imp.Names) != 2 || imp.Names[0] != "a" || imp.Names[1] != "b" {
		t.Fatalf("unexpected named import: %+v", imp)
	}
}

func TestParseIfStatementWithElseIf(t *testing.T) {
	src := `fn f(x: int) -> int {
		if (x == 0) { return 1; }
		else if (x == 1) { return 2; }
		else { return 3; }
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStmt)

	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", fn.Body.Stmts[0])
	}

	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected else-if chain, got %T", ifStmt.Else)
	}

	if _, ok := elseIf.Else.(*ast.BlockStmt); !ok {
		t.Fatalf("expected a trailing else block, got %T", elseIf.Else)
	}
}

func TestParseSwitchStatementWithFallthroughLabels(t *testing.T) {
	src := `fn f(x: int) -> int {
		switch (x) {
			0: 1: return 10;
			default: return 99;
		}
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	sw, ok := fn.Body.Stmts[0].(*ast.SwitchStmt)

	if !ok {
		t.Fatalf("expected *ast.SwitchStmt, got %T", fn.Body.Stmts[0])
	}

	if len(sw.Arms) != 2 {
		t.Fatalf("expected 2 switch arms, got %d", len(sw.Arms))
	}

	if len(sw.Arms[0].Labels) != 2 || sw.Arms[0].Labels[0] != 0 || sw.Arms[0].Labels[1] != 1 {
		t.Fatalf("expected shared labels [0 1], got %v", sw.Arms[0].Labels)
	}

	if !sw.Arms[1].IsDefault {
		t.Fatalf("expected second arm to be the default")
	}
}

func TestParseSwitchDuplicateLabelIsRecoverable(t *testing.T) {
	src := `fn f(x: int) -> int {
		switch (x) {
			0: return 1;
			0: return 2;
		}
		return 0;
	}`

	file, sink := parse(t, src)
	if sink.Empty() {
		t.Fatal("expected a duplicate-label diagnostic")
	}

	if file == nil {
		t.Fatal("expected the parse to recover and still produce a file")
	}
}

func TestParseForStatement(t *testing.T) {
	src := `fn f() -> int {
		var mut i: int = 0;
		for (i = 0; i < 10; i += 1) { }
		return i;
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	forStmt, ok := fn.Body.Stmts[1].(*ast.ForStmt)

	if !ok {
		t.Fatalf("expected *ast.ForStmt, got %T", fn.Body.Stmts[1])
	}

	if forStmt.Init == nil || forStmt.Cond == nil || forStmt.Step == nil {
		t.Fatalf("expected init/cond/step all present, got %+v", forStmt)
	}

	step, ok := forStmt.Step.(*ast.AssignmentExpr)
	if !ok || step.Op != ast.AssignAdd {
		t.Fatalf("expected a += step, got %+v", forStmt.Step)
	}
}

func TestParseWhileAndDoWhileStatements(t *testing.T) {
	src := `fn f(x: int) -> int {
		while (x > 0) { x -= 1; }
		do { x += 1; } while (x < 10);
		return x;
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)

	if _, ok := fn.Body.Stmts[0].(*ast.WhileStmt); !ok {
		t.Fatalf("expected *ast.WhileStmt, got %T", fn.Body.Stmts[0])
	}

	if _, ok := fn.Body.Stmts[1].(*ast.DoWhileStmt); !ok {
		t.Fatalf("expected *ast.DoWhileStmt, got %T", fn.Body.Stmts[1])
	}
}

func TestParseVariableStmtWithAndWithoutType(t *testing.T) {
	src := `fn f() -> int {
		var x: int = 1;
		var mut y = 2;
		return x + y;
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)

	x, ok := fn.Body.Stmts[0].(*ast.VariableStmt)
	if !ok || x.Mut || x.Type == nil {
		t.Fatalf("expected an explicitly-typed immutable var, got %+v", fn.Body.Stmts[0])
	}

	y, ok := fn.Body.Stmts[1].(*ast.VariableStmt)
	if !ok || !y.Mut || y.Type != nil {
		t.Fatalf("expected an inferred mutable var, got %+v", fn.Body.Stmts[1])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	file, sink := parse(t, "fn f() -> int { return 1 + 2 * 3; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	add, ok := ret.Value.(*ast.CallExpr)
	if !ok || add.Callee != "+" {
		t.Fatalf("expected top-level '+' call, got %+v", ret.Value)
	}

	if _, ok := add.Args[0].(*ast.IntLiteralExpr); !ok {
		t.Fatalf("expected left operand to be the literal 1, got %T", add.Args[0])
	}

	mul, ok := add.Args[1].(*ast.CallExpr)
	if !ok || mul.Callee != "*" {
		t.Fatalf("expected right operand to be a '*' call binding tighter than '+', got %+v", add.Args[1])
	}
}

func TestParseLogicalOrBindsLooserThanAnd(t *testing.T) {
	file, sink := parse(t, "fn f(a: bool, b: bool, c: bool) -> bool { return a && b || c; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	or, ok := ret.Value.(*ast.CallExpr)
	if !ok || or.Callee != "||" {
		t.Fatalf("expected top-level '||' call (lower precedence than '&&'), got %+v", ret.Value)
	}

	if and, ok := or.Args[0].(*ast.CallExpr); !ok || and.Callee != "&&" {
		t.Fatalf("expected left operand to be an '&&' call, got %+v", or.Args[0])
	}
}

func TestParseUnaryIsRightAssociative(t *testing.T) {
	file, sink := parse(t, "fn f(x: int) -> int { return - - x; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	outer, ok := ret.Value.(*ast.CallExpr)
	if !ok || outer.Callee != "neg" {
		t.Fatalf("expected outer 'neg' call, got %+v", ret.Value)
	}

	if inner, ok := outer.Args[0].(*ast.CallExpr); !ok || inner.Callee != "neg" {
		t.Fatalf("expected nested 'neg' call, got %+v", outer.Args[0])
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	src := `fn f() -> int {
		var mut a: int = 0;
		var mut b: int = 0;
		a = b = 5;
		return a;
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	assignStmt := fn.Body.Stmts[2].(*ast.ExprStmt)

	outer, ok := assignStmt.Value.(*ast.AssignmentExpr)
	if !ok || outer.Op != ast.AssignPlain {
		t.Fatalf("expected an outer plain assignment, got %+v", assignStmt.Value)
	}

	if _, ok := outer.Value.(*ast.AssignmentExpr); !ok {
		t.Fatalf("expected the assignment's RHS to itself be an assignment, got %T", outer.Value)
	}
}

func TestParseIfExpression(t *testing.T) {
	file, sink := parse(t, "fn f(x: int) -> int { return if (x > 0) 1 else 0; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	if _, ok := ret.Value.(*ast.IfExpr); !ok {
		t.Fatalf("expected *ast.IfExpr, got %T", ret.Value)
	}
}

func TestParseFieldAndIndexChaining(t *testing.T) {
	file, sink := parse(t, "fn f(a: vec3) -> float { return a.xyz[0]; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	idx, ok := ret.Value.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("expected an outer *ast.IndexExpr, got %T", ret.Value)
	}

	field, ok := idx.Base.(*ast.FieldExpr)
	if !ok || field.Field != "xyz" {
		t.Fatalf("expected an inner field access on 'xyz', got %+v", idx.Base)
	}
}

func TestParseVectorInitialiserCall(t *testing.T) {
	file, sink := parse(t, "fn f() -> vec3 { return vec3(1, 2, z: 3); }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	call, ok := ret.Value.(*ast.InitialiserCallExpr)
	if !ok {
		t.Fatalf("expected *ast.InitialiserCallExpr, got %T", ret.Value)
	}

	if len(call.Args) != 3 {
		t.Fatalf("expected 3 initialiser args, got %d", len(call.Args))
	}

	if call.Args[0].Kind != ast.PositionalInit || call.Args[2].Kind != ast.NamedInit || call.Args[2].Name != "z" {
		t.Fatalf("unexpected initialiser arg shapes: %+v", call.Args)
	}
}

func TestParseUserFunctionCall(t *testing.T) {
	file, sink := parse(t, "fn f(x: int) -> int { return helper(x, 1); }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	call, ok := ret.Value.(*ast.CallExpr)
	if !ok || call.Callee != "helper" || len(call.Args) != 2 {
		t.Fatalf("expected a 2-arg call to helper, got %+v", ret.Value)
	}
}

func TestParseReinterpretExpr(t *testing.T) {
	file, sink := parse(t, "fn f(x: float) -> int { return reinterpret<int>(x); }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	if _, ok := ret.Value.(*ast.ReinterpretExpr); !ok {
		t.Fatalf("expected *ast.ReinterpretExpr, got %T", ret.Value)
	}
}

func TestParseArrayTypeWithAndWithoutLength(t *testing.T) {
	file, sink := parse(t, "struct S { fixed: float[4]; dynamic: float[]; }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	s := declAt(t, file, 0).(*ast.StructDecl)

	fixed, ok := s.Fields[0].Type.(*ast.ArrayType)
	if !ok || fixed.Length == nil || *fixed.Length != 4 {
		t.Fatalf("expected a fixed-length array of 4, got %+v", s.Fields[0].Type)
	}

	dynamic, ok := s.Fields[1].Type.(*ast.ArrayType)
	if !ok || dynamic.Length != nil {
		t.Fatalf("expected a runtime-sized array, got %+v", s.Fields[1].Type)
	}
}

func TestParseBreakContinueDiscard(t *testing.T) {
	src := `fn f() {
		for (; ; ) {
			if (true) { break; }
			if (true) { continue; }
			discard;
		}
	}`

	file, sink := parse(t, src)
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.FunctionDecl)
	forStmt := fn.Body.Stmts[0].(*ast.ForStmt)

	if forStmt.Init != nil || forStmt.Cond != nil || forStmt.Step != nil {
		t.Fatalf("expected an all-empty for-header, got %+v", forStmt)
	}

	ifBreak := forStmt.Body.Stmts[0].(*ast.IfStmt)
	if _, ok := ifBreak.Then.Stmts[0].(*ast.BreakStmt); !ok {
		t.Fatalf("expected *ast.BreakStmt, got %T", ifBreak.Then.Stmts[0])
	}

	ifContinue := forStmt.Body.Stmts[1].(*ast.IfStmt)
	if _, ok := ifContinue.Then.Stmts[0].(*ast.ContinueStmt); !ok {
		t.Fatalf("expected *ast.ContinueStmt, got %T", ifContinue.Then.Stmts[0])
	}

	if _, ok := forStmt.Body.Stmts[2].(*ast.DiscardStmt); !ok {
		t.Fatalf("expected *ast.DiscardStmt, got %T", forStmt.Body.Stmts[2])
	}
}

func TestParseLocationAttribute(t *testing.T) {
	file, sink := parse(t, "fn pass::vertex(@location(0) pos: vec3) -> vec4 { return vec4(0); }")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	fn := declAt(t, file, 0).(*ast.StageFunctionDecl)

	if len(fn.Params[0].Attributes) != 1 {
		t.Fatalf("expected one attribute, got %+v", fn.Params[0].Attributes)
	}

	attr := fn.Params[0].Attributes[0]
	if attr.Name != "location" || len(attr.Args) != 1 || attr.Args[0].Value != 0 {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
}

func TestParseStatementRecoveryContinuesAfterError(t *testing.T) {
	src := `fn f() -> int {
		1 + ;
		return 1;
	}`

	file, sink := parse(t, src)
	if sink.Empty() {
		t.Fatal("expected a syntax-error diagnostic from the malformed first statement")
	}

	fn, ok := declAt(t, file, 0).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected parsing to recover and still produce the function, got %T", file.Decls[0])
	}

	found := false

	for _, s := range fn.Body.Stmts {
		if ret, ok := s.(*ast.ReturnStmt); ok && ret.Value != nil {
			found = true
		}
	}

	if !found {
		t.Fatal("expected the second, well-formed return statement to survive recovery")
	}
}

func TestParseMissingDeclarationResynchronisesAtNextFn(t *testing.T) {
	src := `struct ;
	fn good() -> int { return 1; }`

	file, sink := parse(t, src)
	if sink.Empty() {
		t.Fatal("expected a diagnostic from the malformed struct declaration")
	}

	if len(file.Decls) != 1 {
		t.Fatalf("expected recovery to skip to the next declaration, got %d decls", len(file.Decls))
	}

	if _, ok := file.Decls[0].(*ast.FunctionDecl); !ok {
		t.Fatalf("expected the surviving declaration to be 'good', got %T", file.Decls[0])
	}
}

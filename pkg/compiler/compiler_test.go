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
package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vushlang/vushc/pkg/ast"
)

// countFunctionDecls counts top-level plain-function declarations named
// name, for asserting splice/dedup behaviour on the merged declaration list.
func countFunctionDecls(decls []ast.Decl, name string) int {
	n := 0

	for _, d := range decls {
		if fn, ok := d.(*ast.FunctionDecl); ok && fn.Name == name {
			n++
		}
	}

	return n
}

// writeFiles materialises a small source tree under t.TempDir() so tests
// exercise the real disk-backed fileRequest, not a substitute.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func TestCompileSimpleStageFunction(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.vush": `
fn twice(x: float) -> float {
	return x * 2.0;
}

fn pass::fragment(@input x: float) -> float {
	return twice(x);
}
`,
	})

	res := Compile(Config{EntryName: filepath.Join(dir, "main.vush")})

	if res.Sink.HasCompilationFatal() || res.Sink.HasDeclarationFatal() {
		t.Fatalf("unexpected diagnostics: %v", res.Sink.All())
	}

	if len(res.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(res.Modules))
	}

	if len(res.Modules[0].Functions) != 1 {
		t.Fatalf("expected 1 transitively-called user function, got %d", len(res.Modules[0].Functions))
	}
}

func TestCompileImportSplicesDeclarations(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib.vush": `
fn helper(x: float) -> float {
	return x + 1.0;
}
`,
		"main.vush": `
import "lib.vush";

fn pass::fragment(@input x: float) -> float {
	return helper(x);
}
`,
	})

	res := Compile(Config{EntryName: filepath.Join(dir, "main.vush")})

	if res.Sink.HasCompilationFatal() || res.Sink.HasDeclarationFatal() {
		t.Fatalf("unexpected diagnostics: %v", res.Sink.All())
	}

	if len(res.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(res.Modules))
	}
}

func TestCompileNamedImportFiltersDeclarations(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib.vush": `
fn wanted(x: float) -> float {
	return x;
}

fn unwanted(x: float) -> float {
	return x;
}
`,
		"main.vush": `
from "lib.vush" import wanted;

fn pass::fragment(@input x: float) -> float {
	return wanted(x);
}
`,
	})

	res := Compile(Config{EntryName: filepath.Join(dir, "main.vush")})

	if res.Sink.HasCompilationFatal() || res.Sink.HasDeclarationFatal() {
		t.Fatalf("unexpected diagnostics: %v", res.Sink.All())
	}
}

func TestCompileDuplicateImportResolvedOnce(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib.vush": `
fn helper(x: float) -> float {
	return x;
}
`,
		"main.vush": `
import "lib.vush";
import "lib.vush";

fn pass::fragment(@input x: float) -> float {
	return helper(x);
}
`,
	})

	// Duplicate imports, by resolved handle, are silently deduplicated: the
	// merged file should contain exactly one spliced-in "helper" declaration
	// despite two import statements naming it.
	file, sink, _, _ := Parse(Config{EntryName: filepath.Join(dir, "main.vush")})
	if sink.HasCompilationFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	if file == nil {
		t.Fatal("expected a parsed file")
	}

	if count := countFunctionDecls(file.Decls, "helper"); count != 1 {
		t.Fatalf("expected helper spliced in exactly once despite two import statements, got %d", count)
	}
}

func TestCompileSourcedParameterRejectedOnPlainFunction(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.vush": `
fn helper(x: float from time) -> float {
	return x;
}

fn pass::fragment() -> float {
	return helper(0.0);
}
`,
	})

	res := Compile(Config{EntryName: filepath.Join(dir, "main.vush")})

	if !res.Sink.HasDeclarationFatal() {
		t.Fatal("expected a declaration-fatal diagnostic for a sourced parameter on a plain function")
	}
}

func TestCompileSourcedParameterValidatedAgainstSourceDef(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.vush": `
fn pass::fragment(t: float from time) -> float {
	return t;
}
`,
	})

	ok := Compile(Config{
		EntryName: filepath.Join(dir, "main.vush"),
		SourceDef: func(name string) bool { return name == "time" },
	})

	if ok.Sink.HasDeclarationFatal() {
		t.Fatalf("unexpected diagnostics for a known source: %v", ok.Sink.All())
	}

	rejected := Compile(Config{
		EntryName: filepath.Join(dir, "main.vush"),
		SourceDef: func(name string) bool { return false },
	})

	if !rejected.Sink.HasDeclarationFatal() {
		t.Fatal("expected a declaration-fatal diagnostic for an unknown source")
	}
}

func TestCompileUnresolvedImportReportsImportFailed(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.vush": `
import "missing.vush";

fn pass::fragment(@input x: float) -> float {
	return x;
}
`,
	})

	res := Compile(Config{EntryName: filepath.Join(dir, "main.vush")})

	if !res.Sink.HasCompilationFatal() {
		t.Fatal("expected a compilation-fatal diagnostic for an unresolved import")
	}
}

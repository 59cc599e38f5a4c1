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

// Package compiler wires the Source Manager, Lexer, Parser and Lowering
// Engine into the single linear pipeline spec.md §2 describes: Source
// Manager -> Lexer -> Parser -> AST -> Lowering Engine -> IR Module list.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/lower"
	"github.com/vushlang/vushc/pkg/parser"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/token"
	"github.com/vushlang/vushc/pkg/types"
)

// maxSourceBytes bounds a single source file, reported as SourceTooLarge
// rather than let a pathological input exhaust memory.
const maxSourceBytes = 16 << 20

// Config is the compilation unit's external configuration, per spec.md §6.
type Config struct {
	// EntryName is the logical name of the entry source file, resolved
	// through SearchDirs exactly like an import.
	EntryName string
	// SearchDirs are tried in order, first match wins, both for the entry
	// file and for every import encountered while compiling it.
	SearchDirs []string
	// Defines are preprocessor-style integer constants available to
	// source-definition resolution; the language itself has no #define
	// directive, so these are consulted only by SourceDef.
	Defines map[string]int64
	// SourceDef validates the name on a sourced parameter declaration
	// ("param: type from source_name"); nil accepts every name.
	SourceDef func(name string) bool
	// Dialect selects target-specific builtin availability; currently
	// unused by the Lowering Engine itself (every builtin it emits is
	// dialect-independent IR), reserved for a future backend that needs to
	// gate e.g. ray-tracing builtins behind a dialect flag.
	Dialect string
}

// Result is everything a successful (or partially successful) compilation
// produces: the lowered modules, the accumulated diagnostics (possibly
// non-empty even on success, e.g. recoverable warnings), and the source
// manager needed to render them.
type Result struct {
	Modules []*ir.Module
	Sink    *diag.Sink
	Manager *source.Manager
}

// Compile runs the full pipeline for cfg. A non-empty Result.Sink does not
// necessarily mean failure; call Result.Sink.HasCompilationFatal() (I/O,
// unresolved imports) to decide whether Result.Modules is usable at all, and
// HasDeclarationFatal() to know whether any function/module was dropped.
func Compile(cfg Config) Result {
	file, sink, mgr, reg := Parse(cfg)

	res := Result{Sink: sink, Manager: mgr}
	if file == nil {
		return res
	}

	engine := lower.NewEngine(reg, sink)
	engine.SetSourceDef(cfg.SourceDef)

	res.Modules = engine.Lower(file)

	return res
}

// Parse runs only the Source Manager -> Lexer -> Parser -> AST stages of the
// pipeline, splicing in imports but never invoking the Lowering Engine; used
// by tooling that inspects the parsed tree directly (e.g. an AST dumper).
// The returned file is nil if resolving or parsing the entry file failed.
func Parse(cfg Config) (*ast.File, *diag.Sink, *source.Manager, *types.Registry) {
	sink := diag.NewSink()
	reg := types.NewRegistry()
	mgr := source.NewManager(fileRequest(cfg.SearchDirs))

	entryHandle, err := mgr.Resolve(cfg.EntryName, nil)
	if err != nil {
		sink.Report(diag.New(diag.ImportFailed, source.Span{}, err.Error()))
		return nil, sink, mgr, reg
	}

	file, ok := compileUnit(mgr, entryHandle, sink, reg, make(map[source.Handle]bool))
	if !ok {
		return nil, sink, mgr, reg
	}

	return file, sink, mgr, reg
}

// compileUnit lexes and parses handle, then recursively splices in every
// import it names (spec.md §4.1: duplicate imports, by resolved handle, are
// silently skipped). An import's declarations are spliced into the merged
// file at the position of its import declaration, keeping source order for
// the pre-pass that walks file.Decls top to bottom.
func compileUnit(mgr *source.Manager, handle source.Handle, sink *diag.Sink, reg *types.Registry,
	visited map[source.Handle]bool,
) (*ast.File, bool) {
	if visited[handle] {
		return ast.NewFile(source.Span{}, nil), true
	}

	visited[handle] = true

	if len(mgr.File(handle).Contents) > maxSourceBytes {
		sink.Report(diag.New(diag.SourceTooLarge, source.Span{File: handle},
			fmt.Sprintf("source file %q exceeds the %d byte limit", mgr.File(handle).Name, maxSourceBytes)))

		return nil, false
	}

	toks := token.Lex(mgr, handle, sink)
	parsed := parser.Parse(toks, handle, sink, reg)

	if sink.HasCompilationFatal() {
		return nil, false
	}

	var decls []ast.Decl

	dir := filepath.Dir(mgr.File(handle).Name)

	for _, d := range parsed.Decls {
		imp, isImport := d.(*ast.ImportDecl)
		if !isImport {
			decls = append(decls, d)
			continue
		}

		importHandle, err := mgr.Resolve(filepath.Join(dir, imp.Path), nil)
		if err != nil {
			sink.Report(diag.New(diag.ImportFailed, imp.Span(), err.Error()))
			return nil, false
		}

		imported, ok := compileUnit(mgr, importHandle, sink, reg, visited)
		if !ok {
			return nil, false
		}

		decls = append(decls, filterImportedDecls(imported.Decls, imp.Names)...)
	}

	return ast.NewFile(parsed.Span(), decls), true
}

// filterImportedDecls restricts an imported file's top-level declarations
// to the named subset for `from "path" import a, b;`; a whole-file
// `import "path";` (names == nil) keeps every declaration.
func filterImportedDecls(decls []ast.Decl, names []string) []ast.Decl {
	if names == nil {
		return decls
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var kept []ast.Decl

	for _, d := range decls {
		if wanted[declName(d)] {
			kept = append(kept, d)
		}
	}

	return kept
}

func declName(d ast.Decl) string {
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		return decl.Name
	case *ast.StructDecl:
		return decl.Name
	case *ast.BufferDecl:
		return decl.Name
	default:
		return ""
	}
}

// fileRequest builds a source.Request that tries the logical path as given,
// then joined onto each of dirs in order; the first existing file wins. The
// resolved name is that file's path after filepath.Clean (not made
// absolute), so two spellings that clean to the same path dedupe to one
// source.Handle.
func fileRequest(dirs []string) source.Request {
	return func(path string, _ any) (string, []byte, error) {
		candidates := append([]string{""}, dirs...)

		var lastErr error

		for _, dir := range candidates {
			full := path
			if dir != "" {
				full = filepath.Join(dir, path)
			}

			bytes, err := os.ReadFile(full)
			if err == nil {
				return filepath.Clean(full), bytes, nil
			}

			lastErr = err
		}

		return "", nil, fmt.Errorf("could not resolve %q: %w", path, lastErr)
	}
}

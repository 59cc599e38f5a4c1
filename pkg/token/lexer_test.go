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
package token

import (
	"testing"

	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/source"
)

func lexSource(t *testing.T, src string) ([]Token, *diag.Sink) {
	t.Helper()

	mgr := source.NewManager(func(path string, ctx any) (string, []byte, error) {
		return path, []byte(src), nil
	})

	h, err := mgr.Resolve("t.vush", nil)
	if err != nil {
		t.Fatal(err)
	}

	sink := diag.NewSink()

	return Lex(mgr, h, sink), sink
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	toks, sink := lexSource(t, "fn main if x_1")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	want := []struct {
		kind Kind
		text string
	}{
		{Identifier, "fn"},
		{Identifier, "main"},
		{KwIf, "if"},
		{Identifier, "x_1"},
	}

	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(toks), toks)
	}

	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d: expected {%v %q}, got {%v %q}", i, w.kind, w.text, toks[i].Kind, toks[i].Text)
		}
	}
}

func TestLexNumericLiterals(t *testing.T) {
	toks, sink := lexSource(t, "1 0x1Au 0b101 2.5 3.0f 4.0lf")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	wantKinds := []Kind{IntLiteral, IntLiteral, IntLiteral, FloatLiteral, FloatLiteral, FloatLiteral}
	if len(toks) != len(wantKinds) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(wantKinds), len(toks), toks)
	}

	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected kind %v, got %v (%q)", i, k, toks[i].Kind, toks[i].Text)
		}
	}

	if toks[1].IsSigned() {
		t.Fatalf("expected 0x1Au to be unsigned")
	}

	if !toks[5].IsDouble() {
		t.Fatalf("expected 4.0lf to be a double")
	}
}

func TestLexCommentsAreSkipped(t *testing.T) {
	toks, sink := lexSource(t, "a /* block */ b // line\nc")
	if !sink.Empty() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	if len(toks) != 3 {
		t.Fatalf("expected 3 identifiers, got %d: %+v", len(toks), toks)
	}
}

func TestLexUnterminatedBlockCommentIsRecoverable(t *testing.T) {
	toks, sink := lexSource(t, "a /* oops\nb")
	if sink.Empty() {
		t.Fatal("expected an unterminated-comment diagnostic")
	}

	if len(toks) != 1 || toks[0].Text != "a" {
		t.Fatalf("expected lexing to recover with just token 'a', got %+v", toks)
	}
}

func TestRoundTripConcatenationReproducesSource(t *testing.T) {
	src := "fn main ( ) { return 1 + 2 ; }"

	mgr := source.NewManager(func(path string, ctx any) (string, []byte, error) {
		return path, []byte(src), nil
	})

	h, err := mgr.Resolve("t.vush", nil)
	if err != nil {
		t.Fatal(err)
	}

	sink := diag.NewSink()
	toks := Lex(mgr, h, sink)

	var rebuilt []rune

	runes := []rune(src)
	cursor := 0

	for _, tok := range toks {
		for cursor < tok.Span.Start {
			rebuilt = append(rebuilt, runes[cursor])
			cursor++
		}

		rebuilt = append(rebuilt, runes[tok.Span.Start:tok.Span.End]...)
		cursor = tok.Span.End
	}

	rebuilt = append(rebuilt, runes[cursor:]...)

	if string(rebuilt) != src {
		t.Fatalf("round-trip mismatch:\n  got:  %q\n  want: %q", string(rebuilt), src)
	}
}

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

// Package parser implements the hand-written recursive-descent parser of
// spec.md §4.4: a token stream becomes an ast.File, with a recoverable
// error strategy that resynchronises at statement boundaries rather than
// aborting the whole parse on the first mistake.
package parser

import (
	"fmt"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/token"
	"github.com/vushlang/vushc/pkg/types"
)

// parser closes over a flat token buffer (the lexer already ran to
// completion; there is no reason to re-lex lazily since a whole file's
// tokens are cheap to hold in memory at once), a diagnostic sink shared
// with the lexer, and the type registry consulted when a builtin type
// keyword is recognised.
type parser struct {
	toks   []token.Token
	pos    int
	handle source.Handle
	sink   *diag.Sink
	reg    *types.Registry
}

// Parse tokenises handle's contents (already produced by token.Lex into
// toks) into an ast.File, reporting recoverable syntax errors to sink.
func Parse(toks []token.Token, handle source.Handle, sink *diag.Sink, reg *types.Registry) *ast.File {
	p := &parser{toks: toks, handle: handle, sink: sink, reg: reg}

	start := p.here()

	var decls []ast.Decl

	for !p.atEnd() {
		if d, ok := p.parseDecl(); ok {
			decls = append(decls, d)
		} else {
			p.synchroniseTopLevel()
		}
	}

	return ast.NewFile(p.spanFrom(start), decls)
}

// ============================================================================
// Token cursor primitives
// ============================================================================

func (p *parser) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() token.Token {
	if p.atEnd() {
		return p.eofToken()
	}

	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.eofToken()
	}

	return p.toks[i]
}

func (p *parser) eofToken() token.Token {
	end := 0
	if len(p.toks) > 0 {
		end = p.toks[len(p.toks)-1].Span.End
	}

	return token.Token{Kind: token.EOF, Span: source.NewSpan(p.handle, end, end)}
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}

	return t
}

func (p *parser) check(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *parser) checkText(text string) bool {
	t := p.peek()
	return t.Kind == token.Identifier && t.Text == text
}

func (p *parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}

	return false
}

// expect consumes a token of kind k, reporting a recoverable diagnostic and
// returning ok=false (without advancing) if the current token doesn't match.
func (p *parser) expect(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}

	p.errorf(p.peek().Span, diag.UnexpectedToken, "expected %s, found %s", k, p.peek().Kind)

	return token.Token{}, false
}

func (p *parser) errorf(span source.Span, kind diag.Kind, format string, args ...any) {
	p.sink.Report(diag.New(kind, span, fmt.Sprintf(format, args...)))
}

func (p *parser) here() source.Span {
	return p.peek().Span
}

// spanFrom joins start with the span of the token just consumed (the one
// immediately preceding the cursor), giving the full range a production
// covered.
func (p *parser) spanFrom(start source.Span) source.Span {
	if p.pos == 0 || len(p.toks) == 0 {
		return start
	}

	idx := p.pos - 1
	if idx >= len(p.toks) {
		idx = len(p.toks) - 1
	}

	return start.Join(p.toks[idx].Span)
}

// adjacent reports whether the current token and the next one are
// lexically adjacent punctuation, the mechanism used to recognise
// compound operators (spec.md §3/§9: the lexer only emits single-character
// punctuation kinds).
func (p *parser) adjacent(a, b token.Kind) bool {
	t0, t1 := p.peek(), p.peekAt(1)
	return t0.Kind == a && t1.Kind == b && t0.AdjacentTo(t1)
}

// synchroniseTopLevel discards tokens until the start of a plausible
// top-level declaration (a "fn"/"struct" keyword) or EOF, emitting no
// further diagnostic beyond the one already raised by the failed
// production.
func (p *parser) synchroniseTopLevel() {
	for !p.atEnd() {
		if p.checkText("fn") || p.check(token.KwStruct) || p.check(token.At) {
			return
		}

		p.advance()
	}
}

// synchroniseStmt implements spec.md §4.4's recovery rule: discard tokens
// until the next semicolon or close-brace at the entry nesting depth.
func (p *parser) synchroniseStmt() {
	depth := 0

	for !p.atEnd() {
		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}

			depth--
		}

		p.advance()
	}
}

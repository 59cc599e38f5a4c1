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
	"strconv"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/token"
)

func parseIntText(text string) (uint64, bool) {
	n, err := strconv.ParseUint(text, 0, 64)
	return n, err == nil
}

// parseDecl recognises one top-level declaration by leading-keyword/
// identifier-text lookahead (spec.md §4.4): an optional attribute list,
// then "import"/"from" (a whole-file or named import), "struct" (a plain
// struct, or a buffer declaration when decorated with
// @uniform/@push_constant/@storage), or the identifier text "fn" (a
// function or, when the name contains "::", a stage function).
func (p *parser) parseDecl() (ast.Decl, bool) {
	start := p.here()

	if p.check(token.KwImport) || p.check(token.KwFrom) {
		return p.parseImportDecl(start)
	}

	attrs, ok := p.parseAttributes()
	if !ok {
		return nil, false
	}

	switch {
	case p.check(token.KwStruct):
		return p.parseStructOrBufferDecl(start, attrs)
	case p.checkText("fn"):
		return p.parseFunctionDecl(start)
	default:
		p.errorf(p.here(), diag.UnexpectedToken, "expected a declaration, found %s", p.peek().Kind)
		return nil, false
	}
}

// stringLiteralValue strips the surrounding double quotes a StringLiteral
// token was scanned with; this language has no string escape processing
// beyond what's needed for an import path, so the raw interior text is
// used as-is.
func stringLiteralValue(tok token.Token) string {
	if len(tok.Text) >= 2 {
		return tok.Text[1 : len(tok.Text)-1]
	}

	return tok.Text
}

// parseImportDecl handles `import "path";` (whole-file import) and
// `from "path" import name, name, ...;` (named import).
func (p *parser) parseImportDecl(start source.Span) (ast.Decl, bool) {
	var names []string

	if p.match(token.KwFrom) {
		pathTok, ok := p.expect(token.StringLiteral)
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(token.KwImport); !ok {
			return nil, false
		}

		for {
			name, ok := p.expect(token.Identifier)
			if !ok {
				return nil, false
			}

			names = append(names, name.Text)

			if !p.match(token.Comma) {
				break
			}
		}

		if _, ok := p.expect(token.Semicolon); !ok {
			return nil, false
		}

		return ast.NewImportDecl(p.spanFrom(start), stringLiteralValue(pathTok), names), true
	}

	p.advance() // 'import'

	pathTok, ok := p.expect(token.StringLiteral)
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.Semicolon); !ok {
		return nil, false
	}

	return ast.NewImportDecl(p.spanFrom(start), stringLiteralValue(pathTok), nil), true
}

// parseAttributes parses a "@name" or "@name(arg, arg, ...)" list, each
// argument itself optionally named ("name(location: 0)").
func (p *parser) parseAttributes() ([]ast.Attribute, bool) {
	var attrs []ast.Attribute

	for p.check(token.At) {
		start := p.here()
		p.advance()

		name, ok := p.expect(token.Identifier)
		if !ok {
			return nil, false
		}

		attr := ast.Attribute{Name: name.Text}

		if p.match(token.LParen) {
			for !p.check(token.RParen) {
				arg, ok := p.parseAttributeArg()
				if !ok {
					return nil, false
				}

				attr.Args = append(attr.Args, arg)

				if !p.match(token.Comma) {
					break
				}
			}

			if _, ok := p.expect(token.RParen); !ok {
				return nil, false
			}
		}

		attr.Span = p.spanFrom(start)
		attrs = append(attrs, attr)
	}

	return attrs, true
}

func (p *parser) parseAttributeArg() (ast.AttributeArg, bool) {
	if p.check(token.Identifier) && p.peekAt(1).Kind == token.Colon {
		name := p.advance().Text
		p.advance() // ':'

		n, ok := p.parseIntLiteralValue()
		if !ok {
			return ast.AttributeArg{}, false
		}

		return ast.AttributeArg{Name: name, Value: n}, true
	}

	n, ok := p.parseIntLiteralValue()
	if !ok {
		return ast.AttributeArg{}, false
	}

	return ast.AttributeArg{Value: n}, true
}

func (p *parser) parseIntLiteralValue() (int, bool) {
	tok, ok := p.expect(token.IntLiteral)
	if !ok {
		return 0, false
	}

	n, ok := parseIntText(trimIntSuffix(tok.Text))
	if !ok {
		p.errorf(tok.Span, diag.IntegerOverflow, "invalid integer literal %q", tok.Text)
		return 0, false
	}

	return int(n), true
}

// bufferAttrKind maps an attribute name to the buffer kind it selects, if
// any; a struct decorated with none of these remains a plain struct.
func bufferAttrKind(attrs []ast.Attribute) (ast.BufferKind, bool) {
	for _, a := range attrs {
		switch a.Name {
		case "uniform":
			return ast.UniformBuffer, true
		case "push_constant":
			return ast.PushConstantBuffer, true
		case "storage", "buffer":
			return ast.StorageBuffer, true
		}
	}

	return 0, false
}

func (p *parser) parseStructOrBufferDecl(start source.Span, attrs []ast.Attribute) (ast.Decl, bool) {
	p.advance() // 'struct'

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, false
	}

	fields, ok := p.parseStructFields()
	if !ok {
		return nil, false
	}

	if len(fields) == 0 {
		p.errorf(p.spanFrom(start), diag.EmptyStruct, "struct %q must declare at least one field", name.Text)
		return nil, false
	}

	span := p.spanFrom(start)

	if kind, ok := bufferAttrKind(attrs); ok {
		return ast.NewBufferDecl(span, kind, name.Text, fields), true
	}

	return ast.NewStructDecl(span, name.Text, fields), true
}

func (p *parser) parseStructFields() ([]ast.StructField, bool) {
	if _, ok := p.expect(token.LBrace); !ok {
		return nil, false
	}

	var fields []ast.StructField

	for !p.check(token.RBrace) && !p.atEnd() {
		fieldStart := p.here()

		fname, ok := p.expect(token.Identifier)
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(token.Colon); !ok {
			return nil, false
		}

		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(token.Semicolon); !ok {
			return nil, false
		}

		fields = append(fields, ast.StructField{Name: fname.Text, Type: ty, Span: p.spanFrom(fieldStart)})
	}

	if _, ok := p.expect(token.RBrace); !ok {
		return nil, false
	}

	return fields, true
}

// parseFunctionDecl handles `fn name(params) -> type { body }` and the
// stage-function form `fn pass::stage(params) -> type { body }`.
func (p *parser) parseFunctionDecl(start source.Span) (ast.Decl, bool) {
	p.advance() // 'fn'

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, false
	}

	isStage := p.adjacent(token.Colon, token.Colon)

	var stage string

	if isStage {
		p.advance() // first ':'
		p.advance() // second ':'

		stageTok, ok := p.expect(token.Identifier)
		if !ok {
			return nil, false
		}

		stage = stageTok.Text
	}

	params, ok := p.parseParamList()
	if !ok {
		return nil, false
	}

	retType, ok := p.parseOptionalReturnType()
	if !ok {
		return nil, false
	}

	body, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}

	span := p.spanFrom(start)

	if isStage {
		return ast.NewStageFunctionDecl(span, name.Text, stage, params, retType, body), true
	}

	return ast.NewFunctionDecl(span, name.Text, params, retType, body), true
}

// parseOptionalReturnType parses "-> type" (formed from two adjacent
// punctuation tokens, Minus then RAngle) if present, else defaults to void.
func (p *parser) parseOptionalReturnType() (ast.Type, bool) {
	if p.adjacent(token.Minus, token.RAngle) {
		p.advance()
		p.advance()

		return p.parseType()
	}

	return ast.NewBuiltinType(p.here(), p.reg.Void()), true
}

func (p *parser) parseParamList() ([]*ast.Param, bool) {
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}

	var params []*ast.Param

	for !p.check(token.RParen) && !p.atEnd() {
		pstart := p.here()

		attrs, ok := p.parseAttributes()
		if !ok {
			return nil, false
		}

		pname, ok := p.expect(token.Identifier)
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(token.Colon); !ok {
			return nil, false
		}

		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}

		var src string

		if p.match(token.KwFrom) {
			sourceTok, ok := p.expect(token.Identifier)
			if !ok {
				return nil, false
			}

			src = sourceTok.Text
		}

		params = append(params, &ast.Param{
			Name: pname.Text, Type: ty, Attributes: attrs, Source: src, Span: p.spanFrom(pstart),
		})

		if !p.match(token.Comma) {
			break
		}
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	return params, true
}

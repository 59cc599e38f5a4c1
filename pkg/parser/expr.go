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
	"strings"

	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/token"
)

// ============================================================================
// Operator recognition
// ============================================================================

// opEntry is one recognised operator spelling: the exact token.Kind
// sequence it's formed from (single-character punctuation tokens, each
// adjacent to the next — spec.md §3/§9's compound-operator design).
type opEntry struct {
	kinds []token.Kind
	name  string
}

var opTable = []opEntry{
	{[]token.Kind{token.LAngle, token.LAngle, token.Equals}, "<<="},
	{[]token.Kind{token.RAngle, token.RAngle, token.Equals}, ">>="},
	{[]token.Kind{token.Equals, token.Equals}, "=="},
	{[]token.Kind{token.Bang, token.Equals}, "!="},
	{[]token.Kind{token.LAngle, token.Equals}, "<="},
	{[]token.Kind{token.RAngle, token.Equals}, ">="},
	{[]token.Kind{token.Amp, token.Amp}, "&&"},
	{[]token.Kind{token.Pipe, token.Pipe}, "||"},
	{[]token.Kind{token.LAngle, token.LAngle}, "<<"},
	{[]token.Kind{token.RAngle, token.RAngle}, ">>"},
	{[]token.Kind{token.Plus, token.Equals}, "+="},
	{[]token.Kind{token.Minus, token.Equals}, "-="},
	{[]token.Kind{token.Star, token.Equals}, "*="},
	{[]token.Kind{token.Slash, token.Equals}, "/="},
	{[]token.Kind{token.Percent, token.Equals}, "%="},
	{[]token.Kind{token.Amp, token.Equals}, "&="},
	{[]token.Kind{token.Pipe, token.Equals}, "|="},
	{[]token.Kind{token.Caret, token.Equals}, "^="},
	{[]token.Kind{token.Plus}, "+"},
	{[]token.Kind{token.Minus}, "-"},
	{[]token.Kind{token.Star}, "*"},
	{[]token.Kind{token.Slash}, "/"},
	{[]token.Kind{token.Percent}, "%"},
	{[]token.Kind{token.Amp}, "&"},
	{[]token.Kind{token.Pipe}, "|"},
	{[]token.Kind{token.Caret}, "^"},
	{[]token.Kind{token.Tilde}, "~"},
	{[]token.Kind{token.Bang}, "!"},
	{[]token.Kind{token.LAngle}, "<"},
	{[]token.Kind{token.RAngle}, ">"},
	{[]token.Kind{token.Equals}, "="},
}

// peekOperator returns the longest operator spelling starting at the
// cursor, and how many tokens it consumes, by greedily collecting
// zero-gap-adjacent punctuation tokens and matching the longest prefix
// present in opTable. Returns ("", 0) if no entry matches.
func (p *parser) peekOperator() (string, int) {
	var run []token.Token

	run = append(run, p.peekAt(0))

	for len(run) < 3 {
		prev := run[len(run)-1]
		next := p.peekAt(len(run))

		if !prev.AdjacentTo(next) {
			break
		}

		run = append(run, next)
	}

	bestName := ""
	bestLen := 0

	for _, e := range opTable {
		if len(e.kinds) > len(run) || len(e.kinds) <= bestLen {
			continue
		}

		match := true

		for i, k := range e.kinds {
			if run[i].Kind != k {
				match = false
				break
			}
		}

		if match {
			bestName, bestLen = e.name, len(e.kinds)
		}
	}

	return bestName, bestLen
}

// matchOperator consumes and returns the operator at the cursor if it is
// one of names, else leaves the cursor untouched.
func (p *parser) matchOperator(names ...string) (string, bool) {
	name, n := p.peekOperator()
	if name == "" {
		return "", false
	}

	for _, want := range names {
		if name == want {
			for i := 0; i < n; i++ {
				p.advance()
			}

			return name, true
		}
	}

	return "", false
}

var compoundOps = map[string]ast.CompoundOp{
	"=": ast.AssignPlain, "+=": ast.AssignAdd, "-=": ast.AssignSub, "*=": ast.AssignMul,
	"/=": ast.AssignDiv, "%=": ast.AssignMod, "&=": ast.AssignAnd, "|=": ast.AssignOr,
	"^=": ast.AssignXor, "<<=": ast.AssignShl, ">>=": ast.AssignShr,
}

// ============================================================================
// Precedence climbing
// ============================================================================

func (p *parser) parseExpr() (ast.Expr, bool) {
	return p.parseAssignment()
}

// parseAssignment is the lowest (and right-associative) tier; the
// if-expression is also parsed here, per spec.md §4.4.
func (p *parser) parseAssignment() (ast.Expr, bool) {
	if p.check(token.KwIf) {
		return p.parseIfExpr()
	}

	start := p.here()

	lhs, ok := p.parseLogicalOr()
	if !ok {
		return nil, false
	}

	if name, ok := p.matchOperator("=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="); ok {
		rhs, ok := p.parseAssignment()
		if !ok {
			return nil, false
		}

		return ast.NewAssignmentExpr(p.spanFrom(start), compoundOps[name], lhs, rhs), true
	}

	return lhs, true
}

func (p *parser) parseIfExpr() (ast.Expr, bool) {
	start := p.advance().Span // 'if'

	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}

	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	then, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.KwElse); !ok {
		return nil, false
	}

	els, ok := p.parseAssignment()
	if !ok {
		return nil, false
	}

	return ast.NewIfExpr(p.spanFrom(start), cond, then, els), true
}

// binaryLevel is the shared shape of every left-associative binary-operator
// precedence tier: parse one operand via next, then fold in zero or more
// (operator, operand) pairs whose operator spelling is one of names.
func (p *parser) binaryLevel(next func() (ast.Expr, bool), names ...string) (ast.Expr, bool) {
	start := p.here()

	lhs, ok := next()
	if !ok {
		return nil, false
	}

	for {
		name, ok := p.matchOperator(names...)
		if !ok {
			return lhs, true
		}

		rhs, ok := next()
		if !ok {
			return nil, false
		}

		lhs = ast.NewCallExpr(p.spanFrom(start), name, []ast.Expr{lhs, rhs})
	}
}

func (p *parser) parseLogicalOr() (ast.Expr, bool) {
	return p.binaryLevel(p.parseLogicalAnd, "||")
}

func (p *parser) parseLogicalAnd() (ast.Expr, bool) {
	return p.binaryLevel(p.parseBitOr, "&&")
}

func (p *parser) parseBitOr() (ast.Expr, bool) {
	return p.binaryLevel(p.parseBitXor, "|")
}

func (p *parser) parseBitXor() (ast.Expr, bool) {
	return p.binaryLevel(p.parseBitAnd, "^")
}

func (p *parser) parseBitAnd() (ast.Expr, bool) {
	return p.binaryLevel(p.parseEquality, "&")
}

func (p *parser) parseEquality() (ast.Expr, bool) {
	return p.binaryLevel(p.parseRelational, "==", "!=")
}

func (p *parser) parseRelational() (ast.Expr, bool) {
	return p.binaryLevel(p.parseShift, "<", ">", "<=", ">=")
}

func (p *parser) parseShift() (ast.Expr, bool) {
	return p.binaryLevel(p.parseAdditive, "<<", ">>")
}

func (p *parser) parseAdditive() (ast.Expr, bool) {
	return p.binaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *parser) parseMultiplicative() (ast.Expr, bool) {
	return p.binaryLevel(p.parseUnary, "*", "/", "%")
}

// parseUnary is right-associative: "- - x" parses as "-(-x)".
func (p *parser) parseUnary() (ast.Expr, bool) {
	start := p.here()

	if name, ok := p.matchOperator("-", "!", "~", "+"); ok {
		operand, ok := p.parseUnary()
		if !ok {
			return nil, false
		}

		if name == "+" {
			return operand, true
		}

		callee := name
		if name == "-" {
			callee = "neg"
		}

		return ast.NewCallExpr(p.spanFrom(start), callee, []ast.Expr{operand}), true
	}

	return p.parsePostfix()
}

// parsePostfix handles field access and indexing chained onto a primary
// expression. Call argument lists are parsed only directly after an
// identifier, by parseIdentifierOrCall.
func (p *parser) parsePostfix() (ast.Expr, bool) {
	start := p.here()

	expr, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}

	for {
		switch {
		case p.match(token.Dot):
			field, ok := p.expect(token.Identifier)
			if !ok {
				return nil, false
			}

			expr = ast.NewFieldExpr(p.spanFrom(start), expr, field.Text)

		case p.match(token.LBracket):
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}

			if _, ok := p.expect(token.RBracket); !ok {
				return nil, false
			}

			expr = ast.NewIndexExpr(p.spanFrom(start), expr, idx)

		default:
			return expr, true
		}
	}
}

func (p *parser) parsePrimary() (ast.Expr, bool) {
	start := p.here()

	switch {
	case p.check(token.IntLiteral):
		return p.parseIntLiteralExpr()
	case p.check(token.FloatLiteral):
		return p.parseFloatLiteralExpr()
	case p.check(token.BoolLiteral):
		tok := p.advance()
		return ast.NewBoolLiteralExpr(tok.Span, tok.Text == "true"), true
	case p.check(token.KwDefault):
		p.advance()
		return ast.NewDefaultExpr(p.spanFrom(start)), true
	case p.check(token.KwReinterpret):
		return p.parseReinterpretExpr()
	case p.check(token.LParen):
		p.advance()

		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}

		if _, ok := p.expect(token.RParen); !ok {
			return nil, false
		}

		return e, true
	case p.check(token.Identifier):
		return p.parseIdentifierOrCall()
	default:
		p.errorf(p.here(), diag.UnexpectedToken, "expected an expression, found %s", p.peek().Kind)
		return nil, false
	}
}

// parseIdentifierOrCall recognises a bare identifier, a function call
// `name(args)`, or a builtin-type initialiser call `vec3(args)`: the
// registry resolves the name to a builtin type eagerly since that table is
// statically known; a struct-name call is syntactically indistinguishable
// from a user function call at this stage and is left as a CallExpr for
// the Lowering Engine's function/struct table to disambiguate.
func (p *parser) parseIdentifierOrCall() (ast.Expr, bool) {
	start := p.here()
	name := p.advance().Text

	if !p.check(token.LParen) {
		return ast.NewIdentifierExpr(p.spanFrom(start), name), true
	}

	if resolved, ok := p.reg.ParseBuiltinTypeName(name); ok {
		args, ok := p.parseInitialiserArgs()
		if !ok {
			return nil, false
		}

		return ast.NewInitialiserCallExpr(p.spanFrom(start), ast.NewBuiltinType(start, resolved), args), true
	}

	p.advance() // '('

	var args []ast.Expr

	for !p.check(token.RParen) && !p.atEnd() {
		a, ok := p.parseExpr()
		if !ok {
			return nil, false
		}

		args = append(args, a)

		if !p.match(token.Comma) {
			break
		}
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	return ast.NewCallExpr(p.spanFrom(start), name, args), true
}

func (p *parser) parseInitialiserArgs() ([]ast.InitialiserArg, bool) {
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}

	var args []ast.InitialiserArg

	for !p.check(token.RParen) && !p.atEnd() {
		arg, ok := p.parseInitialiserArg()
		if !ok {
			return nil, false
		}

		args = append(args, arg)

		if !p.match(token.Comma) {
			break
		}
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	return args, true
}

func (p *parser) parseInitialiserArg() (ast.InitialiserArg, bool) {
	if p.check(token.Identifier) && p.peekAt(1).Kind == token.Colon {
		name := p.advance().Text
		p.advance() // ':'

		v, ok := p.parseExpr()
		if !ok {
			return ast.InitialiserArg{}, false
		}

		return ast.InitialiserArg{Kind: ast.NamedInit, Name: name, Value: v}, true
	}

	if p.check(token.IntLiteral) && p.peekAt(1).Kind == token.Colon {
		n, ok := p.parseIntLiteralValue()
		if !ok {
			return ast.InitialiserArg{}, false
		}

		p.advance() // ':'

		v, ok := p.parseExpr()
		if !ok {
			return ast.InitialiserArg{}, false
		}

		return ast.InitialiserArg{Kind: ast.IndexedInit, Index: n, Value: v}, true
	}

	v, ok := p.parseExpr()
	if !ok {
		return ast.InitialiserArg{}, false
	}

	return ast.InitialiserArg{Kind: ast.PositionalInit, Value: v}, true
}

func (p *parser) parseReinterpretExpr() (ast.Expr, bool) {
	start := p.advance().Span // 'reinterpret'

	if _, ok := p.expect(token.LAngle); !ok {
		return nil, false
	}

	target, ok := p.parseType()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.RAngle); !ok {
		return nil, false
	}

	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}

	value, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	return ast.NewReinterpretExpr(p.spanFrom(start), target, value), true
}

func (p *parser) parseIntLiteralExpr() (ast.Expr, bool) {
	tok := p.advance()

	signed := tok.IsSigned()
	n, ok := parseIntText(trimIntSuffix(tok.Text))

	if !ok {
		p.errorf(tok.Span, diag.IntegerOverflow, "integer literal %q out of range", tok.Text)
		return nil, false
	}

	return ast.NewIntLiteralExpr(tok.Span, n, signed, 32), true
}

func (p *parser) parseFloatLiteralExpr() (ast.Expr, bool) {
	tok := p.advance()

	double := tok.IsDouble()
	text := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(tok.Text, "lf"), "LF"), "f"), "F")

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.errorf(tok.Span, diag.InvalidLiteralSuffix, "invalid float literal %q", tok.Text)
		return nil, false
	}

	return ast.NewFloatLiteralExpr(tok.Span, v, double), true
}

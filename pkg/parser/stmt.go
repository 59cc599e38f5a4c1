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
	"github.com/vushlang/vushc/pkg/ast"
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/token"
)

// parseStmt dispatches on the leading token; on failure it resynchronises
// to the next semicolon/close-brace at the current nesting depth and
// returns ok=false so the caller's block loop can keep going rather than
// abandoning the whole body (spec.md §4.4 recovery rule).
func (p *parser) parseStmt() (ast.Stmt, bool) {
	stmt, ok := p.parseStmtInner()
	if !ok {
		p.synchroniseStmt()
	}

	return stmt, ok
}

func (p *parser) parseStmtInner() (ast.Stmt, bool) {
	switch {
	case p.check(token.LBrace):
		return p.parseBlockStmt()
	case p.check(token.KwIf):
		return p.parseIfStmt()
	case p.check(token.KwSwitch):
		return p.parseSwitchStmt()
	case p.check(token.KwFor):
		return p.parseForStmt()
	case p.check(token.KwWhile):
		return p.parseWhileStmt()
	case p.check(token.KwDo):
		return p.parseDoWhileStmt()
	case p.check(token.KwReturn):
		return p.parseReturnStmt()
	case p.check(token.KwBreak):
		start := p.advance().Span
		_, ok := p.expect(token.Semicolon)

		return ast.NewBreakStmt(p.spanFrom(start)), ok
	case p.check(token.KwContinue):
		start := p.advance().Span
		_, ok := p.expect(token.Semicolon)

		return ast.NewContinueStmt(p.spanFrom(start)), ok
	case p.check(token.KwDiscard):
		start := p.advance().Span
		_, ok := p.expect(token.Semicolon)

		return ast.NewDiscardStmt(p.spanFrom(start)), ok
	case p.check(token.KwVar):
		return p.parseVariableStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseBlockStmt() (*ast.BlockStmt, bool) {
	start := p.here()

	if _, ok := p.expect(token.LBrace); !ok {
		return nil, false
	}

	var stmts []ast.Stmt

	for !p.check(token.RBrace) && !p.atEnd() {
		s, ok := p.parseStmt()
		if ok {
			stmts = append(stmts, s)
		}
	}

	if _, ok := p.expect(token.RBrace); !ok {
		return nil, false
	}

	return ast.NewBlockStmt(p.spanFrom(start), stmts), true
}

func (p *parser) parseIfStmt() (ast.Stmt, bool) {
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

	then, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}

	var els ast.Stmt

	if p.match(token.KwElse) {
		if p.check(token.KwIf) {
			els, ok = p.parseIfStmt()
		} else {
			els, ok = p.parseBlockStmt()
		}

		if !ok {
			return nil, false
		}
	}

	return ast.NewIfStmt(p.spanFrom(start), cond, then, els), true
}

func (p *parser) parseSwitchStmt() (ast.Stmt, bool) {
	start := p.advance().Span // 'switch'

	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}

	selector, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	if _, ok := p.expect(token.LBrace); !ok {
		return nil, false
	}

	var arms []ast.SwitchArm

	sawDefault := false
	seenLabels := map[int64]bool{}

	for !p.check(token.RBrace) && !p.atEnd() {
		armStart := p.here()

		var arm ast.SwitchArm

		for {
			if p.match(token.KwDefault) {
				if sawDefault {
					p.errorf(p.here(), diag.DuplicateDefault, "duplicate 'default' label in switch")
				}

				sawDefault = true
				arm.IsDefault = true
			} else {
				n, ok := p.parseIntLiteralValue()
				if !ok {
					return nil, false
				}

				if seenLabels[int64(n)] {
					p.errorf(p.here(), diag.DuplicateLabel, "duplicate case label")
				}

				seenLabels[int64(n)] = true
				arm.Labels = append(arm.Labels, int64(n))
			}

			if _, ok := p.expect(token.Colon); !ok {
				return nil, false
			}

			// A run of "label:" / "default:" prefixes shares one arm body;
			// stop once the next token can't start another label.
			if !isArmStart(p.peek()) {
				break
			}
		}

		for !p.check(token.RBrace) && !isArmStart(p.peek()) {
			s, ok := p.parseStmt()
			if !ok {
				return nil, false
			}

			arm.Body = append(arm.Body, s)
		}

		arm.Span = p.spanFrom(armStart)
		arms = append(arms, arm)
	}

	if _, ok := p.expect(token.RBrace); !ok {
		return nil, false
	}

	return ast.NewSwitchStmt(p.spanFrom(start), selector, arms), true
}

// isArmStart reports whether tok could begin a new switch arm's label
// list, used to decide where one arm's statement list ends.
func isArmStart(tok token.Token) bool {
	return tok.Kind == token.KwDefault || tok.Kind == token.IntLiteral
}

func (p *parser) parseForStmt() (ast.Stmt, bool) {
	start := p.advance().Span // 'for'

	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}

	var init ast.Stmt

	if !p.check(token.Semicolon) {
		var ok bool

		init, ok = p.parseSimpleStmt()

		if !ok {
			return nil, false
		}
	} else {
		p.advance()
	}

	var cond ast.Expr

	if !p.check(token.Semicolon) {
		var ok bool

		cond, ok = p.parseExpr()
		if !ok {
			return nil, false
		}
	}

	if _, ok := p.expect(token.Semicolon); !ok {
		return nil, false
	}

	var step ast.Expr

	if !p.check(token.RParen) {
		var ok bool

		step, ok = p.parseExpr()
		if !ok {
			return nil, false
		}
	}

	if _, ok := p.expect(token.RParen); !ok {
		return nil, false
	}

	body, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}

	return ast.NewForStmt(p.spanFrom(start), init, cond, step, body), true
}

// parseSimpleStmt parses a for-loop initialiser: a variable declaration or
// an expression statement, each already consuming its own trailing
// semicolon.
func (p *parser) parseSimpleStmt() (ast.Stmt, bool) {
	if p.check(token.KwVar) {
		return p.parseVariableStmt()
	}

	return p.parseExprStmt()
}

func (p *parser) parseWhileStmt() (ast.Stmt, bool) {
	start := p.advance().Span // 'while'

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

	body, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}

	return ast.NewWhileStmt(p.spanFrom(start), cond, body), true
}

func (p *parser) parseDoWhileStmt() (ast.Stmt, bool) {
	start := p.advance().Span // 'do'

	body, ok := p.parseBlockStmt()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.KwWhile); !ok {
		return nil, false
	}

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

	if _, ok := p.expect(token.Semicolon); !ok {
		return nil, false
	}

	return ast.NewDoWhileStmt(p.spanFrom(start), body, cond), true
}

func (p *parser) parseReturnStmt() (ast.Stmt, bool) {
	start := p.advance().Span // 'return'

	var value ast.Expr

	if !p.check(token.Semicolon) {
		var ok bool

		value, ok = p.parseExpr()
		if !ok {
			return nil, false
		}
	}

	if _, ok := p.expect(token.Semicolon); !ok {
		return nil, false
	}

	return ast.NewReturnStmt(p.spanFrom(start), value), true
}

func (p *parser) parseVariableStmt() (ast.Stmt, bool) {
	start := p.advance().Span // 'var'

	mut := p.match(token.KwMut)

	name, ok := p.expect(token.Identifier)
	if !ok {
		return nil, false
	}

	var ty ast.Type

	if p.match(token.Colon) {
		ty, ok = p.parseType()
		if !ok {
			return nil, false
		}
	}

	var init ast.Expr

	if p.match(token.Equals) {
		init, ok = p.parseExpr()
		if !ok {
			return nil, false
		}
	}

	if _, ok := p.expect(token.Semicolon); !ok {
		return nil, false
	}

	return ast.NewVariableStmt(p.spanFrom(start), name.Text, mut, ty, init), true
}

func (p *parser) parseExprStmt() (ast.Stmt, bool) {
	start := p.here()

	e, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.Semicolon); !ok {
		return nil, false
	}

	return ast.NewExprStmt(p.spanFrom(start), e), true
}

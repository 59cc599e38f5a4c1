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
	"github.com/vushlang/vushc/pkg/token"
)

// parseType recognises a type-start: a builtin type keyword, a struct-name
// identifier, or either wrapped in any number of trailing "[...]" array
// suffixes.
func (p *parser) parseType() (ast.Type, bool) {
	start := p.here()

	if !p.check(token.Identifier) {
		p.errorf(p.here(), diag.UnexpectedToken, "expected a type, found %s", p.peek().Kind)
		return nil, false
	}

	name := p.advance().Text

	var base ast.Type

	if resolved, ok := p.reg.ParseBuiltinTypeName(name); ok {
		base = ast.NewBuiltinType(p.spanFrom(start), resolved)
	} else {
		base = ast.NewStructType(p.spanFrom(start), name)
	}

	for p.check(token.LBracket) {
		p.advance()

		var length *int

		if p.check(token.IntLiteral) {
			lit := p.advance()

			n, err := strconv.ParseUint(trimIntSuffix(lit.Text), 0, 64)
			if err != nil {
				p.errorf(lit.Span, diag.NonIntegerArrayIndex, "invalid array length literal")
			} else {
				v := int(n)
				length = &v
			}
		}

		if _, ok := p.expect(token.RBracket); !ok {
			return nil, false
		}

		base = ast.NewArrayType(p.spanFrom(start), base, length)
	}

	return base, true
}

// trimIntSuffix strips a trailing u/U unsignedness suffix so the literal
// text is safe to hand to strconv, preserving any 0x/0b radix prefix.
func trimIntSuffix(text string) string {
	n := len(text)
	if n > 0 && (text[n-1] == 'u' || text[n-1] == 'U') {
		return text[:n-1]
	}

	return text
}

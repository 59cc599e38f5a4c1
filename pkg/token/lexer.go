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
	"strings"
	"unicode"

	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/lex"
	"github.com/vushlang/vushc/pkg/source"
)

// Lex tokenises the entirety of the source file identified by handle,
// reporting recoverable diagnostics to sink and returning the resulting
// stream with whitespace and comments already filtered out.  Concatenating
// the raw text of the returned tokens, plus whatever whitespace/comments
// were skipped between them, reproduces the original source exactly (the
// Testable Properties §8 round-trip invariant) since every rule below is
// total: at every position some rule always consumes at least one rune.
func Lex(mgr *source.Manager, handle source.Handle, sink *diag.Sink) []Token {
	file := mgr.File(handle)
	runes := file.Contents

	rules := []lex.Rule[rune]{
		lex.NewRule(lex.Some(isSpaceRune), uint(Whitespace)),
		lex.NewRule(scanLineComment, uint(Comment)),
		lex.NewRule(scanBlockComment, uint(Comment)),
		lex.NewRule(scanNumber, uint(IntLiteral)), // reclassified below
		lex.NewRule(scanString, uint(StringLiteral)),
		lex.NewRule(scanIdentifier, uint(Identifier)), // reclassified below
		lex.NewRule(scanNonASCIIIdentifier, uint(Invalid)),
		lex.NewRule(scanPunctuation, uint(Invalid)), // reclassified below
		// Any other rune: reported below as an invalid character.
		lex.NewRule(lex.Within[rune](0, unicode.MaxRune), uint(Invalid)),
	}

	lexer := lex.NewLexer(runes, rules...)

	var tokens []Token

	for lexer.HasNext() {
		raw, ok := lexer.Next()
		if !ok {
			// Not reached while HasNext holds: the last rule matches any
			// single rune, so unrecognised characters are handled below.
			start := lexer.Index()
			span := source.NewSpan(handle, start, start+1)
			sink.Report(diag.New(diag.InvalidCharacter, span, "invalid character in source"))

			continue
		}

		span := source.NewSpan(handle, raw.Start, raw.End)
		text := string(runes[raw.Start:raw.End])
		kind := Kind(raw.Tag)

		switch kind {
		case Whitespace, Comment:
			if kind == Comment && strings.HasPrefix(text, "/*") && !strings.HasSuffix(text, "*/") {
				sink.Report(diag.New(diag.UnterminatedComment, span, "unterminated block comment"))
			}

			continue
		case IntLiteral:
			kind = classifyNumber(text, span, sink)
		case Identifier:
			kind = classifyIdentifier(text)
		case Invalid:
			if len(text) == 1 && isNonASCIILetter([]rune(text)[0]) {
				sink.Report(diag.New(diag.InvalidCharacter, span, "non-ASCII character in identifier"))
				continue
			}

			if punct, ok := punctuation[[]rune(text)[0]]; ok {
				kind = punct
			} else {
				// An unrecognised character: report it and resume at the next rune.
				sink.Report(diag.New(diag.InvalidCharacter, span, "invalid character in source"))
				continue
			}
		}

		tokens = append(tokens, Token{kind, span, text})
	}

	return tokens
}

// ============================================================================
// Character classes
// ============================================================================

func isSpaceRune(rs []rune) uint {
	if len(rs) > 0 && (rs[0] == ' ' || rs[0] == '\t' || rs[0] == '\r' || rs[0] == '\n') {
		return 1
	}

	return 0
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isNonASCIILetter(r rune) bool {
	return r > unicode.MaxASCII && (unicode.IsLetter(r) || r == '_')
}

// ============================================================================
// Scanners
// ============================================================================

func scanLineComment(rs []rune) uint {
	if len(rs) < 2 || rs[0] != '/' || rs[1] != '/' {
		return 0
	}

	i := 2
	for i < len(rs) && rs[i] != '\n' {
		i++
	}

	return uint(i)
}

// scanBlockComment matches "/* ... */" without nesting: the first "*/"
// encountered closes the comment, per the C rule spec.md §4.3 mandates. If
// no closing "*/" is found, the whole remaining input is consumed so the
// lexer can report a single "unterminated comment" diagnostic and resume
// cleanly at EOF rather than looping.
func scanBlockComment(rs []rune) uint {
	if len(rs) < 2 || rs[0] != '/' || rs[1] != '*' {
		return 0
	}

	for i := 2; i+1 < len(rs); i++ {
		if rs[i] == '*' && rs[i+1] == '/' {
			return uint(i + 2)
		}
	}

	return uint(len(rs))
}

func scanIdentifier(rs []rune) uint {
	if len(rs) == 0 || !isIdentStart(rs[0]) {
		return 0
	}

	i := 1
	for i < len(rs) && isIdentCont(rs[i]) {
		i++
	}

	return uint(i)
}

func scanNonASCIIIdentifier(rs []rune) uint {
	if len(rs) > 0 && isNonASCIILetter(rs[0]) {
		return 1
	}

	return 0
}

func scanPunctuation(rs []rune) uint {
	if len(rs) > 0 {
		if _, ok := punctuation[rs[0]]; ok {
			return 1
		}
	}

	return 0
}

// scanString matches a double-quoted string literal with backslash escapes.
// If the closing quote is missing before end-of-line/file, the partial text
// is still consumed so scanning can resume at the next line.
func scanString(rs []rune) uint {
	if len(rs) == 0 || rs[0] != '"' {
		return 0
	}

	i := 1
	for i < len(rs) && rs[i] != '"' && rs[i] != '\n' {
		if rs[i] == '\\' && i+1 < len(rs) {
			i += 2
			continue
		}

		i++
	}

	if i < len(rs) && rs[i] == '"' {
		i++
	}

	return uint(i)
}

// scanNumber matches the maximal numeric literal at the current position:
// hex (0x...), binary (0b...), or decimal with optional fractional part,
// exponent, and suffix.  Classification into IntLiteral/FloatLiteral and
// signedness/precision happens afterwards in classifyNumber, since the
// scanner's job is only to find the token's extent.
func scanNumber(rs []rune) uint {
	if len(rs) == 0 || !isDigit(rs[0]) {
		return 0
	}

	if rs[0] == '0' && len(rs) > 1 && (rs[1] == 'x' || rs[1] == 'X') {
		i := 2
		start := i
		for i < len(rs) && isHexDigit(rs[i]) {
			i++
		}

		if i == start {
			return uint(i)
		}

		if i < len(rs) && (rs[i] == 'u' || rs[i] == 'U') {
			i++
		}

		return uint(i)
	}

	if rs[0] == '0' && len(rs) > 1 && (rs[1] == 'b' || rs[1] == 'B') {
		i := 2
		start := i
		for i < len(rs) && (rs[i] == '0' || rs[i] == '1') {
			i++
		}

		if i == start {
			return uint(i)
		}

		if i < len(rs) && (rs[i] == 'u' || rs[i] == 'U') {
			i++
		}

		return uint(i)
	}

	i := 0
	for i < len(rs) && isDigit(rs[i]) {
		i++
	}

	isFloat := false

	if i < len(rs) && rs[i] == '.' {
		isFloat = true
		i++

		for i < len(rs) && isDigit(rs[i]) {
			i++
		}
	}

	if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
		j := i + 1
		if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
			j++
		}

		if j < len(rs) && isDigit(rs[j]) {
			isFloat = true
			i = j + 1

			for i < len(rs) && isDigit(rs[i]) {
				i++
			}
		}
	}

	if isFloat {
		if i+1 < len(rs) && (rs[i] == 'l' || rs[i] == 'L') && (rs[i+1] == 'f' || rs[i+1] == 'F') {
			i += 2
		} else if i < len(rs) && (rs[i] == 'f' || rs[i] == 'F') {
			i++
		}
	} else if i < len(rs) && (rs[i] == 'u' || rs[i] == 'U') {
		i++
	}

	return uint(i)
}

// ============================================================================
// Classification
// ============================================================================

func classifyIdentifier(text string) Kind {
	if text == "true" || text == "false" {
		return BoolLiteral
	}

	if kw, ok := IsKeyword(text); ok {
		return kw
	}

	return Identifier
}

func classifyNumber(text string, span source.Span, sink *diag.Sink) Kind {
	isFloat := strings.ContainsAny(text, ".") ||
		(strings.ContainsAny(text, "eE") && !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X"))

	if isFloat {
		if !validFloatSuffix(text) {
			sink.Report(diag.New(diag.InvalidLiteralSuffix, span, "invalid float literal suffix"))
		}

		return FloatLiteral
	}

	if !validIntSuffix(text) {
		sink.Report(diag.New(diag.InvalidLiteralSuffix, span, "invalid integer literal suffix"))
	}

	return IntLiteral
}

func validIntSuffix(text string) bool {
	n := len(text)
	if n == 0 {
		return true
	}

	last := text[n-1]

	return isDigit(rune(last)) || isHexDigit(rune(last)) || last == 'u' || last == 'U'
}

func validFloatSuffix(text string) bool {
	n := len(text)
	if n == 0 {
		return true
	}

	last := text[n-1]
	if isDigit(rune(last)) {
		return true
	}

	if last == 'f' || last == 'F' {
		return true
	}

	return false
}

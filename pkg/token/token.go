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

import "github.com/vushlang/vushc/pkg/source"

// Token is a discriminated record: a kind tag, the span it covers, and the
// raw text it was scanned from.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsSigned reports whether an IntLiteral token is signed, i.e. does not
// carry the 'u'/'U' suffix.
// Only meaningful when Kind == IntLiteral.
func (t Token) IsSigned() bool {
	n := len(t.Text)
	return n == 0 || (t.Text[n-1] != 'u' && t.Text[n-1] != 'U')
}

// IsDouble reports whether a FloatLiteral token carries the 'lf'/'LF'
// suffix (f64) rather than 'f'/'F' or no suffix (f32). Only meaningful when
// Kind == FloatLiteral.
func (t Token) IsDouble() bool {
	n := len(t.Text)
	return n >= 2 && (t.Text[n-2] == 'l' || t.Text[n-2] == 'L') && (t.Text[n-1] == 'f' || t.Text[n-1] == 'F')
}

// AdjacentTo reports whether other immediately follows t in the source,
// with no intervening characters (not even whitespace). The parser uses
// this to recognise multi-character operators (==, <=, &&, ::, ...) formed
// from two single-character punctuation tokens, since the lexer itself only
// emits the single-character kinds spec.md §3 names.
func (t Token) AdjacentTo(other Token) bool {
	return t.Span.File == other.Span.File && t.Span.End == other.Span.Start
}

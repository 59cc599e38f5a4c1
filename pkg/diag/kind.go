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

// Package diag accumulates structured compiler diagnostics: lexical,
// syntactic, semantic, lowering and I/O errors, each carrying a primary
// source span and classified as recoverable or fatal per the propagation
// policy.
package diag

// Kind enumerates the error categories of the error-handling design.  The
// exact members are grounded on the original vush2 diagnostics table
// (compiler/vush_diagnostics/diagnostics.hpp) where it is more specific than
// the distilled taxonomy.
type Kind int

const (
	// Lexical errors.
	InvalidCharacter Kind = iota
	InvalidLiteralSuffix
	IntegerOverflow
	UnterminatedComment

	// Syntactic errors.
	UnexpectedToken
	MissingTerminator
	EmptyStruct
	DuplicateLabel
	DuplicateDefault
	BreakContinueOutsideLoop

	// Semantic errors (detected incidentally by the lowering engine, since
	// full semantic analysis is out of scope; see spec.md §1).
	UndefinedSymbol
	OverloadMismatch
	NonBoolCondition
	UnindexableExpression
	NonIntegerArrayIndex
	NonConvertibleTypes
	IllegalAttribute
	DuplicateAttribute
	RecursiveStruct
	OpaqueTypeInStruct

	// Lowering errors.
	ConversionImpossible
	UnaddressableLValue
	MissingBuiltinVariant
	UnimplementedConstruct

	// I/O errors.
	ImportFailed
	SourceTooLarge
	AmbiguousImport
)

// Severity classifies how a diagnostic should propagate.
type Severity int

const (
	// Recoverable diagnostics allow the parser/lexer to resynchronise and
	// continue scanning the same file.
	Recoverable Severity = iota
	// FatalDeclaration diagnostics abort lowering of the enclosing
	// declaration (function), but sibling declarations still lower.
	FatalDeclaration
	// FatalCompilation diagnostics abort the whole compilation.
	FatalCompilation
)

// severityOf classifies each Kind per §7's propagation policy: lexical and
// syntactic are recoverable, except BreakContinueOutsideLoop, which the
// lowering engine detects; it and the semantic and lowering kinds are fatal to the
// enclosing declaration; I/O errors are fatal to the whole compilation.
var severityOf = map[Kind]Severity{
	InvalidCharacter:     Recoverable,
	InvalidLiteralSuffix: Recoverable,
	IntegerOverflow:      Recoverable,
	UnterminatedComment:  Recoverable,

	UnexpectedToken:          Recoverable,
	MissingTerminator:        Recoverable,
	EmptyStruct:              Recoverable,
	DuplicateLabel:           Recoverable,
	DuplicateDefault:         Recoverable,
	BreakContinueOutsideLoop: FatalDeclaration,

	UndefinedSymbol:        FatalDeclaration,
	OverloadMismatch:       FatalDeclaration,
	NonBoolCondition:       FatalDeclaration,
	UnindexableExpression:  FatalDeclaration,
	NonIntegerArrayIndex:   FatalDeclaration,
	NonConvertibleTypes:    FatalDeclaration,
	IllegalAttribute:       FatalDeclaration,
	DuplicateAttribute:     FatalDeclaration,
	RecursiveStruct:        FatalDeclaration,
	OpaqueTypeInStruct:     FatalDeclaration,
	ConversionImpossible:   FatalDeclaration,
	UnaddressableLValue:    FatalDeclaration,
	MissingBuiltinVariant:  FatalDeclaration,
	UnimplementedConstruct: FatalDeclaration,

	ImportFailed:    FatalCompilation,
	SourceTooLarge:  FatalCompilation,
	AmbiguousImport: FatalCompilation,
}

// Severity returns the propagation class for this kind of diagnostic.
func (k Kind) Severity() Severity {
	return severityOf[k]
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "unknown-diagnostic"
}

var kindNames = map[Kind]string{
	InvalidCharacter:         "invalid character",
	InvalidLiteralSuffix:     "invalid literal suffix",
	IntegerOverflow:          "integer literal overflow",
	UnterminatedComment:      "unterminated block comment",
	UnexpectedToken:          "unexpected token",
	MissingTerminator:        "missing terminator",
	EmptyStruct:              "empty struct declaration",
	DuplicateLabel:           "duplicate switch label",
	DuplicateDefault:         "duplicate default arm",
	BreakContinueOutsideLoop: "break/continue outside loop or switch",
	UndefinedSymbol:          "undefined symbol",
	OverloadMismatch:         "no matching overload",
	NonBoolCondition:         "condition is not boolean",
	UnindexableExpression:    "expression cannot be indexed",
	NonIntegerArrayIndex:     "array index is not an integer",
	NonConvertibleTypes:      "no implicit conversion between types",
	IllegalAttribute:         "illegal attribute",
	DuplicateAttribute:       "duplicate attribute",
	RecursiveStruct:          "recursive struct definition",
	OpaqueTypeInStruct:       "opaque type used as struct field",
	ConversionImpossible:     "conversion impossible",
	UnaddressableLValue:      "expression is not addressable",
	MissingBuiltinVariant:    "missing builtin variant",
	UnimplementedConstruct:   "unimplemented construct",
	ImportFailed:             "import failed",
	SourceTooLarge:           "source file too large",
	AmbiguousImport:          "ambiguous import",
}

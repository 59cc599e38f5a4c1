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
package diag

// Sink accumulates diagnostics raised over the course of lexing, parsing or
// lowering a single compilation unit.
type Sink struct {
	diagnostics []Diagnostic
}

// NewSink constructs an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a diagnostic to this sink.
func (s *Sink) Report(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.diagnostics
}

// Empty returns true if no diagnostics have been reported.
func (s *Sink) Empty() bool {
	return len(s.diagnostics) == 0
}

// HasFatal returns true if any reported diagnostic has a severity at or
// above the given threshold (a FatalCompilation query therefore ignores
// FatalDeclaration diagnostics).
func (s *Sink) HasFatal(threshold Severity) bool {
	for _, d := range s.diagnostics {
		if d.Severity() >= threshold {
			return true
		}
	}

	return false
}

// HasDeclarationFatal returns true if any reported diagnostic is fatal to
// its enclosing declaration (or worse).
func (s *Sink) HasDeclarationFatal() bool {
	return s.HasFatal(FatalDeclaration)
}

// HasCompilationFatal returns true if any reported diagnostic is fatal to
// the whole compilation.
func (s *Sink) HasCompilationFatal() bool {
	return s.HasFatal(FatalCompilation)
}

// Since returns the diagnostics reported after mark (a length previously
// obtained via Mark), letting a caller isolate the diagnostics raised while
// lowering a single declaration.
func (s *Sink) Since(mark int) []Diagnostic {
	return s.diagnostics[mark:]
}

// Mark returns the current diagnostic count, for use with Since.
func (s *Sink) Mark() int {
	return len(s.diagnostics)
}

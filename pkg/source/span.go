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

// Package source holds immutable source buffers keyed by logical path, and
// maps byte offsets within them back to line/column positions for
// diagnostics.
package source

import "fmt"

// Span represents a contiguous slice of some source file.  Rather than
// storing a string slice directly, the physical rune indices are retained so
// that, e.g., the enclosing line can be recovered later.
type Span struct {
	// Handle of the source file containing this span.
	File Handle
	// Start is the first rune of this span.
	Start int
	// End is one past the last rune of this span.
	End int
}

// NewSpan constructs a span, panicking if the bounds are not well formed.
func NewSpan(file Handle, start, end int) Span {
	if start > end {
		panic("invalid span: start > end")
	}

	return Span{file, start, end}
}

// Length returns the number of runes covered by this span.
func (s Span) Length() int {
	return s.End - s.Start
}

// Contains determines whether this span strictly contains (or equals) other,
// i.e. other lies entirely within [s.Start, s.End).
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// Join constructs the smallest span enclosing both s and other, which must
// originate from the same file.
func (s Span) Join(other Span) Span {
	if s.File != other.File {
		panic("cannot join spans from different files")
	}

	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}

	if other.End > end {
		end = other.End
	}

	return Span{s.File, start, end}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

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
package source

// Handle uniquely identifies one resolved logical path within a Manager.
// Importing the same resolved path twice always yields the same handle.
type Handle int

// File represents a single source file, already decoded into runes so that
// lexing never has to worry about multi-byte UTF-8 sequences.
type File struct {
	// Name is the resolved logical name of this file (not necessarily the
	// path originally requested, since imports may redirect).
	Name string
	// Contents is the decoded source text.
	Contents []rune
	// handle is this file's identity within its owning Manager.
	handle Handle
}

// NewFile constructs a source file from raw bytes.
func NewFile(handle Handle, name string, bytes []byte) *File {
	return &File{name, []rune(string(bytes)), handle}
}

// Handle returns this file's identity within its owning Manager.
func (f *File) Handle() Handle {
	return f.handle
}

// Line describes one physical line of a source file.
type Line struct {
	// Number is the 1-based line number.
	Number int
	// Span covers the line's text, excluding the trailing newline.
	Span Span
	text []rune
}

// Text returns the textual content of this line.
func (l Line) Text() string {
	return string(l.text[l.Span.Start:l.Span.End])
}

// Column returns the 1-based column of offset within this line.  offset must
// lie within [l.Span.Start, l.Span.End].
func (l Line) Column(offset int) int {
	return offset - l.Span.Start + 1
}

// LineContaining returns the physical line enclosing the start of span.  If
// span lies beyond the end of the file, the last line is returned.
func (f *File) LineContaining(span Span) Line {
	number := 1
	start := 0

	for i, r := range f.Contents {
		if i == span.Start {
			end := f.endOfLine(span.Start)
			return Line{number, Span{f.handle, start, end}, f.Contents}
		}

		if r == '\n' {
			number++
			start = i + 1
		}
	}

	return Line{number, Span{f.handle, start, len(f.Contents)}, f.Contents}
}

func (f *File) endOfLine(from int) int {
	for i := from; i < len(f.Contents); i++ {
		if f.Contents[i] == '\n' {
			return i
		}
	}

	return len(f.Contents)
}

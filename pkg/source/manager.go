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

import "fmt"

// Request resolves a logical import path to its resolved name and raw bytes.
// ctx is an opaque token threaded through from the compilation configuration
// (e.g. identifying which search directories or virtual filesystem to use).
// The resolved name must be stable: re-requesting it must yield the same
// name, which is how the Manager recognises that two distinct paths refer to
// the same underlying source.
type Request func(path string, ctx any) (resolvedName string, bytes []byte, err error)

// Manager holds immutable source buffers keyed by logical path.  It
// guarantees that importing the same resolved path twice yields the same
// Handle.  The Request callback is invoked on every Resolve call, including
// repeated ones for a path already resolved.
type Manager struct {
	request Request
	// byResolvedName deduplicates imports whose resolved names collide.
	byResolvedName map[string]Handle
	files          []*File
}

// NewManager constructs a Manager backed by the given request callback.
func NewManager(request Request) *Manager {
	return &Manager{request, make(map[string]Handle), nil}
}

// Resolve resolves path to a Handle by invoking the Request callback; a
// resolved name seen before returns its existing Handle, and the bytes of
// that repeated request are discarded.
func (m *Manager) Resolve(path string, ctx any) (Handle, error) {
	resolvedName, bytes, err := m.request(path, ctx)
	if err != nil {
		return -1, fmt.Errorf("import %q failed: %w", path, err)
	}

	if h, ok := m.byResolvedName[resolvedName]; ok {
		return h, nil
	}

	handle := Handle(len(m.files))
	m.files = append(m.files, NewFile(handle, resolvedName, bytes))
	m.byResolvedName[resolvedName] = handle

	return handle, nil
}

// File returns the source file associated with a handle.
func (m *Manager) File(h Handle) *File {
	return m.files[h]
}

// Locate maps a rune offset within a file to a 1-based (line, column) pair.
func (m *Manager) Locate(h Handle, offset int) (line, col int) {
	f := m.File(h)
	l := f.LineContaining(Span{h, offset, offset})

	return l.Number, l.Column(offset)
}

// SyntaxError constructs a syntax error anchored at span.
func (m *Manager) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{m, span, msg}
}

// SyntaxError is a structured error retaining the span at which it arose, so
// that the offending source line can be rendered later.
type SyntaxError struct {
	mgr  *Manager
	span Span
	msg  string
}

// Span returns the span this error is anchored to.
func (e *SyntaxError) Span() Span {
	return e.span
}

// Message returns the human-readable description of this error.
func (e *SyntaxError) Message() string {
	return e.msg
}

// Line returns the physical source line enclosing this error's span.
func (e *SyntaxError) Line() Line {
	return e.mgr.File(e.span.File).LineContaining(e.span)
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	line, col := e.mgr.Locate(e.span.File, e.span.Start)
	return fmt.Sprintf("%s:%d:%d: %s", e.mgr.File(e.span.File).Name, line, col, e.msg)
}

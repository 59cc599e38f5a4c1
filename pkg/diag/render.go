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

import (
	"fmt"
	"io"
	"strings"

	"github.com/vushlang/vushc/pkg/source"
	"golang.org/x/term"
)

// defaultWidth is used when the descriptor passed to Render is not a
// terminal (e.g. when piped to a file or CI log), matching common CLI
// conventions.
const defaultWidth = 80

// Render writes a human-readable rendering of every diagnostic in s to w,
// including the offending source line, clamped to the terminal width of
// fd, and a caret underline, which is not clamped.
func Render(w io.Writer, mgr *source.Manager, s *Sink, fd int) {
	width := terminalWidth(fd)

	for _, d := range s.All() {
		renderOne(w, mgr, d, width)
	}
}

func terminalWidth(fd int) int {
	if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
		return cols
	}

	return defaultWidth
}

func renderOne(w io.Writer, mgr *source.Manager, d Diagnostic, width int) {
	file := mgr.File(d.Primary.File)
	line, col := mgr.Locate(d.Primary.File, d.Primary.Start)

	fmt.Fprintf(w, "%s: %s:%d:%d: %s\n", severityLabel(d.Severity()), file.Name, line, col, d.Message)

	text := file.LineContaining(d.Primary).Text()
	if len(text) > width {
		text = text[:width]
	}

	fmt.Fprintf(w, "    %s\n", text)

	underline := strings.Repeat(" ", col-1) + strings.Repeat("^", max(1, d.Primary.Length()))
	fmt.Fprintf(w, "    %s\n", underline)

	for _, sec := range d.Secondary {
		sLine, sCol := mgr.Locate(sec.Span.File, sec.Span.Start)
		fmt.Fprintf(w, "  note: %s (%s:%d:%d)\n", sec.Caption, mgr.File(sec.Span.File).Name, sLine, sCol)
	}
}

func severityLabel(sev Severity) string {
	switch sev {
	case Recoverable:
		return "warning"
	case FatalDeclaration:
		return "error"
	default:
		return "fatal"
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}

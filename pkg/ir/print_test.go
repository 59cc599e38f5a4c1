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
package ir

import (
	"strings"
	"testing"

	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/types"
)

func TestPrintRendersFunctionAndInstructions(t *testing.T) {
	reg := types.NewRegistry()
	f32 := reg.Float(32)

	var span source.Span

	b := NewBuilder()
	arg := b.Argument(f32, Input)

	entry := b.NewBlock()
	slot := b.Emit(entry, OpAlloc, reg.Pointer(f32), span)
	b.Emit(entry, OpStore, nil, span, slot, arg)
	loaded := b.Emit(entry, OpLoad, f32, span, slot)
	b.Emit(entry, OpReturn, nil, span, loaded)

	fn := &Function{Name: "main", ReturnType: f32, Args: []*Value{arg}, Entry: entry}
	m := &Module{Pass: "p", Stage: StageFragment, Entry: fn}

	var buf strings.Builder
	Print(&buf, m)

	out := buf.String()
	for _, want := range []string{"module p::fragment", "fn main(", "bb0:", "alloc", "store", "load", "return"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

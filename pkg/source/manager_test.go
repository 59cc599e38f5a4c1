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

import "testing"

func TestResolveDeduplicatesByResolvedName(t *testing.T) {
	calls := 0
	mgr := NewManager(func(path string, ctx any) (string, []byte, error) {
		calls++
		// Both "./foo" and "foo.vush" resolve to the same canonical name.
		return "foo.vush", []byte("fn main() {}"), nil
	})

	h1, err := mgr.Resolve("./foo", nil)
	if err != nil {
		t.Fatal(err)
	}

	h2, err := mgr.Resolve("foo.vush", nil)
	if err != nil {
		t.Fatal(err)
	}

	if h1 != h2 {
		t.Fatalf("expected same handle, got %v and %v", h1, h2)
	}

	if calls != 2 {
		t.Fatalf("expected request callback invoked twice (once per distinct path), got %d", calls)
	}
}

func TestLocateLineAndColumn(t *testing.T) {
	mgr := NewManager(func(path string, ctx any) (string, []byte, error) {
		return path, []byte("abc\ndef\nghi"), nil
	})

	h, err := mgr.Resolve("f.vush", nil)
	if err != nil {
		t.Fatal(err)
	}

	line, col := mgr.Locate(h, 5) // 'e' in "def"
	if line != 2 || col != 2 {
		t.Fatalf("expected line 2 col 2, got line %d col %d", line, col)
	}
}

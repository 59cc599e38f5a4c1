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
package types

import (
	"testing"

	"github.com/vushlang/vushc/pkg/util"
)

func TestInternDeduplicatesStructurallyEqualTypes(t *testing.T) {
	r := NewRegistry()

	a := r.Vec(r.Float(32), 3)
	b := r.Vec(r.Float(32), 3)

	if a != b {
		t.Fatalf("expected vec3 to be interned to a single pointer, got %p and %p", a, b)
	}

	c := r.Vec(r.Float(32), 4)
	if a == c {
		t.Fatal("expected vec3 and vec4 to be distinct pointers")
	}
}

func TestInternDistinguishesArrayLength(t *testing.T) {
	r := NewRegistry()

	fixed := r.Array(r.Int(32), util.Some(uint(4)))
	runtime := r.Array(r.Int(32), util.None[uint]())

	if fixed == runtime {
		t.Fatal("expected fixed- and runtime-sized arrays to be distinct")
	}

	fixedAgain := r.Array(r.Int(32), util.Some(uint(4)))
	if fixed != fixedAgain {
		t.Fatal("expected two int[4] arrays to share a pointer")
	}
}

func TestInternDistinguishesStructsByNameAndFields(t *testing.T) {
	r := NewRegistry()

	s1 := r.Struct("Point", []*Type{r.Float(32), r.Float(32)})
	s2 := r.Struct("Point", []*Type{r.Float(32), r.Float(32)})
	s3 := r.Struct("Point3", []*Type{r.Float(32), r.Float(32), r.Float(32)})

	if s1 != s2 {
		t.Fatal("expected identical structs to share a pointer")
	}

	if s1 == s3 {
		t.Fatal("expected differently shaped structs to be distinct")
	}
}

func TestParseBuiltinTypeName(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name string
		want *Type
	}{
		{"float", r.Float(32)},
		{"vec3", r.Vec(r.Float(32), 3)},
		{"ivec2", r.Vec(r.Int(32), 2)},
		{"dvec4", r.Vec(r.Float(64), 4)},
		{"mat4", r.Mat(r.Vec(r.Float(32), 4), 4)},
		{"mat4x3", r.Mat(r.Vec(r.Float(32), 3), 4)},
		{"dmat3", r.Mat(r.Vec(r.Float(64), 3), 3)},
	}

	for _, c := range cases {
		got, ok := r.ParseBuiltinTypeName(c.name)
		if !ok {
			t.Fatalf("%s: expected to parse as a builtin type", c.name)
		}

		if got != c.want {
			t.Fatalf("%s: expected canonical pointer %p, got %p", c.name, c.want, got)
		}
	}

	if _, ok := r.ParseBuiltinTypeName("Frobnicator"); ok {
		t.Fatal("expected a non-builtin identifier to fail to parse")
	}
}

func TestParseBuiltinImageAndSamplerNames(t *testing.T) {
	r := NewRegistry()

	sampler2D, ok := r.ParseBuiltinTypeName("sampler2D")
	if !ok {
		t.Fatal("expected sampler2D to parse")
	}

	if sampler2D.Kind != SampledImage || sampler2D.Dim != Dim2D {
		t.Fatalf("unexpected sampler2D shape: %+v", sampler2D)
	}

	shadow, ok := r.ParseBuiltinTypeName("sampler2DArrayShadow")
	if !ok {
		t.Fatal("expected sampler2DArrayShadow to parse")
	}

	if !shadow.Arrayed || !shadow.Depth {
		t.Fatalf("expected arrayed depth-comparison sampler, got %+v", shadow)
	}

	tex, ok := r.ParseBuiltinTypeName("itexture3D")
	if !ok {
		t.Fatal("expected itexture3D to parse")
	}

	if !tex.PureTexture || tex.Sampled.Kind != Int32 || tex.Dim != Dim3D {
		t.Fatalf("unexpected itexture3D shape: %+v", tex)
	}

	subpass, ok := r.ParseBuiltinTypeName("subpassInput")
	if !ok {
		t.Fatal("expected subpassInput to parse")
	}

	if subpass.Dim != DimSubpass {
		t.Fatalf("unexpected subpassInput shape: %+v", subpass)
	}
}

func TestTypeStringRoundTripsBuiltinNames(t *testing.T) {
	r := NewRegistry()

	names := []string{"vec3", "ivec2", "dvec4", "mat4", "mat4x3"}
	for _, n := range names {
		ty, ok := r.ParseBuiltinTypeName(n)
		if !ok {
			t.Fatalf("%s: expected to parse", n)
		}

		if ty.String() != n {
			t.Fatalf("expected String() to round-trip %q, got %q", n, ty.String())
		}
	}
}

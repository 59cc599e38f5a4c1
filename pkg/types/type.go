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
	"fmt"
	"strings"

	"github.com/vushlang/vushc/pkg/util"
)

// Type is a single, canonical (hash-consed) IR type.  Two Types are equal iff
// their pointers are equal, which the Registry guarantees matches
// structural equality (spec.md §3 invariant: "ptr(T1) == ptr(T2) iff
// structurally_equal(T1, T2)").  Only Registry constructs and mutates
// (during construction only) a Type; once interned, a Type is immutable.
type Type struct {
	Kind Kind

	// Vec / Mat.
	Elem *Type // Vec: element type. Mat: column type (itself a Vec).
	Rows uint  // Vec: lane count. Mat: column count (number of Vec columns).

	// Array.
	Length util.Option[uint] // absent means runtime-sized

	// Composite (struct).
	Name   string
	Fields []*Type

	// Pointer.
	Pointee *Type

	// Image / SampledImage.
	Sampled      *Type // sampled (texel) type
	Dim          ImageDim
	Arrayed      bool
	Multisampled bool
	Depth        bool
	PureTexture  bool

	hash uint64
}

// Hash returns this type's cached structural hash, computed once at
// construction time by the Registry.
func (t *Type) Hash() uint64 {
	return t.hash
}

// Equals performs a full structural comparison.  Since every substructure
// field is itself a canonical pointer obtained via the Registry, comparing
// substructures can use pointer equality rather than recursing further.
func (t *Type) Equals(o *Type) bool {
	if t.Kind != o.Kind {
		return false
	}

	switch t.Kind {
	case Vec:
		return t.Elem == o.Elem && t.Rows == o.Rows
	case Mat:
		return t.Elem == o.Elem && t.Rows == o.Rows
	case Array:
		return t.Elem == o.Elem && optionEqual(t.Length, o.Length)
	case Composite:
		if t.Name != o.Name || len(t.Fields) != len(o.Fields) {
			return false
		}

		for i := range t.Fields {
			if t.Fields[i] != o.Fields[i] {
				return false
			}
		}

		return true
	case Pointer:
		return t.Pointee == o.Pointee
	case Sampler:
		return true
	case Image, SampledImage:
		return t.Sampled == o.Sampled && t.Dim == o.Dim && t.Arrayed == o.Arrayed &&
			t.Multisampled == o.Multisampled && t.Depth == o.Depth && t.PureTexture == o.PureTexture
	default:
		return true // scalar kinds are distinguished by Kind alone
	}
}

func optionEqual(a, b util.Option[uint]) bool {
	if a.HasValue() != b.HasValue() {
		return false
	}

	return !a.HasValue() || a.Unwrap() == b.Unwrap()
}

// ByteWidth returns the number of bytes required to store a value of this
// type, for scalar and vector/matrix kinds.
func (t *Type) ByteWidth() uint {
	switch t.Kind {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16, FP16:
		return 2
	case Int32, Uint32, FP32:
		return 4
	case FP64:
		return 8
	case Vec:
		return t.Elem.ByteWidth() * t.Rows
	case Mat:
		return t.Elem.ByteWidth() * t.Cols()
	default:
		return 0
	}
}

// BitWidth returns ByteWidth()*8: the bit width of a scalar, the total bit
// width of a vector or matrix, and 0 for every other kind.
func (t *Type) BitWidth() uint {
	return t.ByteWidth() * 8
}

// Cols returns the number of columns of a Mat type (the length of its
// column-vector's outer dimension is tracked separately via Rows on the
// matrix itself: by convention t.Elem is the column Vec type and t.Rows on
// the Mat holds the column count).
func (t *Type) Cols() uint {
	return t.Rows
}

func (t *Type) String() string {
	switch t.Kind {
	case Vec:
		return fmt.Sprintf("%s%d", vecPrefix(t.Elem.Kind), t.Rows)
	case Mat:
		if t.Rows == t.Elem.Rows {
			return fmt.Sprintf("%s%d", matPrefix(t.Elem.Elem.Kind), t.Rows)
		}

		return fmt.Sprintf("%s%dx%d", matPrefix(t.Elem.Elem.Kind), t.Rows, t.Elem.Rows)
	case Array:
		if t.Length.HasValue() {
			return fmt.Sprintf("%s[%d]", t.Elem, t.Length.Unwrap())
		}

		return fmt.Sprintf("%s[]", t.Elem)
	case Composite:
		return t.Name
	case Pointer:
		return fmt.Sprintf("ptr<%s>", t.Pointee)
	case Image, SampledImage:
		return t.imageString()
	default:
		return t.Kind.String()
	}
}

func (t *Type) imageString() string {
	var b strings.Builder

	if t.PureTexture {
		b.WriteString("texture")
	} else if t.Kind == SampledImage {
		b.WriteString("sampler")
	} else {
		b.WriteString("image")
	}

	switch t.Dim {
	case Dim1D:
		b.WriteString("1D")
	case Dim2D:
		b.WriteString("2D")
	case Dim3D:
		b.WriteString("3D")
	case DimCube:
		b.WriteString("Cube")
	case DimBuffer:
		b.WriteString("Buffer")
	case DimRect:
		b.WriteString("2DRect")
	case DimSubpass:
		b.WriteString("SubpassInput")
	}

	if t.Multisampled {
		b.WriteString("MS")
	}

	if t.Arrayed {
		b.WriteString("Array")
	}

	if t.Depth {
		b.WriteString("Shadow")
	}

	return b.String()
}

func vecPrefix(elem Kind) string {
	switch elem {
	case Bool:
		return "bvec"
	case Int32:
		return "ivec"
	case Uint32:
		return "uvec"
	case FP64:
		return "dvec"
	default:
		return "vec"
	}
}

func matPrefix(elem Kind) string {
	if elem == FP64 {
		return "dmat"
	}

	return "mat"
}

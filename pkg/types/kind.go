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

// Package types implements the interned IR type system: a hash-consed
// registry of scalar, vector, matrix, array, composite, pointer, sampler and
// image types, plus the builtin scalar/vector/matrix/image/sampler
// descriptor table the parser and lowering engine both consult.
package types

// Kind discriminates the structural shape of a Type, per spec.md §3 "IR
// type".
type Kind uint8

const (
	Void Kind = iota
	Bool
	Int8
	Int16
	Int32
	Uint8
	Uint16
	Uint32
	FP16
	FP32
	FP64
	Vec
	Mat
	Array
	Composite
	Pointer
	Sampler
	Image
	SampledImage
)

// IsInt reports whether k is one of the signed integer kinds.
func (k Kind) IsInt() bool {
	return k == Int8 || k == Int16 || k == Int32
}

// IsUint reports whether k is one of the unsigned integer kinds.
func (k Kind) IsUint() bool {
	return k == Uint8 || k == Uint16 || k == Uint32
}

// IsFloat reports whether k is one of the floating-point kinds.
func (k Kind) IsFloat() bool {
	return k == FP16 || k == FP32 || k == FP64
}

// IsScalar reports whether k is void, bool, an integer kind or a
// floating-point kind (i.e. not a composite/aggregate/opaque kind).
func (k Kind) IsScalar() bool {
	return k == Void || k == Bool || k.IsInt() || k.IsUint() || k.IsFloat()
}

// ImageDim enumerates the dimensionality of an image/sampler/texture type.
type ImageDim uint8

const (
	Dim1D ImageDim = iota
	Dim2D
	Dim3D
	DimCube
	DimBuffer
	DimRect
	DimSubpass
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "int"
	case Uint8:
		return "u8"
	case Uint16:
		return "u16"
	case Uint32:
		return "uint"
	case FP16:
		return "f16"
	case FP32:
		return "float"
	case FP64:
		return "double"
	case Vec:
		return "vec"
	case Mat:
		return "mat"
	case Array:
		return "array"
	case Composite:
		return "struct"
	case Pointer:
		return "ptr"
	case Sampler:
		return "sampler"
	case Image:
		return "image"
	case SampledImage:
		return "sampled-image"
	default:
		return "?"
	}
}

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
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/vushlang/vushc/pkg/util"
)

// fnvOffset and fnvPrime are the 64-bit Fowler/Noll/Vo constants used to hash
// a type's canonical byte encoding (spec.md §4.6).
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

func fnvStep(h uint64, b byte) uint64 {
	return (h ^ uint64(b)) * fnvPrime
}

func fnvBytes(h uint64, bs []byte) uint64 {
	for _, b := range bs {
		h = fnvStep(h, b)
	}

	return h
}

func fnvUint(h uint64, v uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)

	return fnvBytes(h, buf[:])
}

// Registry is the hash-consing store of canonical Types: exactly one *Type
// pointer exists per distinct structural shape.  A Registry must not be
// shared across compiler invocations that use different type universes, but
// a single Registry may intern types for many modules concurrently compiled
// in sequence.
type Registry struct {
	table *util.HashMap[*Type, *Type]

	void, boolean              *Type
	i8, i16, i32, u8, u16, u32 *Type
	f16, f32, f64              *Type
	sampler                    *Type
}

// NewRegistry creates an empty Registry with the scalar kinds pre-interned.
func NewRegistry() *Registry {
	r := &Registry{table: util.NewHashMap[*Type, *Type]()}

	r.void = r.intern(&Type{Kind: Void})
	r.boolean = r.intern(&Type{Kind: Bool})
	r.i8 = r.intern(&Type{Kind: Int8})
	r.i16 = r.intern(&Type{Kind: Int16})
	r.i32 = r.intern(&Type{Kind: Int32})
	r.u8 = r.intern(&Type{Kind: Uint8})
	r.u16 = r.intern(&Type{Kind: Uint16})
	r.u32 = r.intern(&Type{Kind: Uint32})
	r.f16 = r.intern(&Type{Kind: FP16})
	r.f32 = r.intern(&Type{Kind: FP32})
	r.f64 = r.intern(&Type{Kind: FP64})
	r.sampler = r.intern(&Type{Kind: Sampler})

	return r
}

// Intern returns the canonical pointer for candidate's structural shape,
// computing candidate's hash first.  candidate is consumed: callers must not
// retain or mutate it afterwards, since on a cache hit the returned pointer
// may be a pre-existing Type rather than candidate itself.
func (r *Registry) Intern(candidate *Type) *Type {
	return r.intern(candidate)
}

func (r *Registry) intern(candidate *Type) *Type {
	candidate.hash = hashOf(candidate)

	if existing, ok := r.table.Get(candidate); ok {
		return existing
	}

	r.table.Insert(candidate, candidate)

	return candidate
}

// hashOf computes the FNV-1a hash of candidate's canonical encoding: its
// Kind tag followed by whatever scalar fields distinguish it, and the
// already-cached hashes of any canonical sub-Type pointers (never their full
// substructure, since those pointers are themselves canonical).
func hashOf(t *Type) uint64 {
	h := fnvOffset
	h = fnvStep(h, byte(t.Kind))

	switch t.Kind {
	case Vec, Mat:
		h = fnvUint(h, t.Elem.hash)
		h = fnvUint(h, uint64(t.Rows))
	case Array:
		h = fnvUint(h, t.Elem.hash)
		if t.Length.HasValue() {
			h = fnvStep(h, 1)
			h = fnvUint(h, uint64(t.Length.Unwrap()))
		} else {
			h = fnvStep(h, 0)
		}
	case Composite:
		h = fnvBytes(h, []byte(t.Name))
		for _, f := range t.Fields {
			h = fnvUint(h, f.hash)
		}
	case Pointer:
		h = fnvUint(h, t.Pointee.hash)
	case Image, SampledImage:
		h = fnvUint(h, t.Sampled.hash)
		h = fnvStep(h, byte(t.Dim))
		h = fnvStep(h, boolByte(t.Arrayed))
		h = fnvStep(h, boolByte(t.Multisampled))
		h = fnvStep(h, boolByte(t.Depth))
		h = fnvStep(h, boolByte(t.PureTexture))
	}

	return h
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

// ============================================================================
// Named constructors
// ============================================================================

func (r *Registry) Void() *Type { return r.void }
func (r *Registry) Bool() *Type { return r.boolean }

// Int returns the signed integer type of the given bit width (8, 16 or 32).
func (r *Registry) Int(width uint) *Type {
	switch width {
	case 8:
		return r.i8
	case 16:
		return r.i16
	default:
		return r.i32
	}
}

// Uint returns the unsigned integer type of the given bit width (8, 16 or 32).
func (r *Registry) Uint(width uint) *Type {
	switch width {
	case 8:
		return r.u8
	case 16:
		return r.u16
	default:
		return r.u32
	}
}

// Float returns the floating-point type of the given bit width (16, 32 or 64).
func (r *Registry) Float(width uint) *Type {
	switch width {
	case 16:
		return r.f16
	case 64:
		return r.f64
	default:
		return r.f32
	}
}

// Vec returns the canonical vector type of rows lanes of elem.
func (r *Registry) Vec(elem *Type, rows uint) *Type {
	return r.intern(&Type{Kind: Vec, Elem: elem, Rows: rows})
}

// Mat returns the canonical matrix type of cols columns, each column a
// vector of col (itself produced by a prior call to Vec).
func (r *Registry) Mat(col *Type, cols uint) *Type {
	return r.intern(&Type{Kind: Mat, Elem: col, Rows: cols})
}

// Array returns the canonical array type of elem, either fixed-length
// (length.HasValue()) or runtime-sized (length empty).
func (r *Registry) Array(elem *Type, length util.Option[uint]) *Type {
	return r.intern(&Type{Kind: Array, Elem: elem, Length: length})
}

// Struct returns the canonical composite type named name with the given
// (already-canonical) field types, in declaration order.
func (r *Registry) Struct(name string, fields []*Type) *Type {
	return r.intern(&Type{Kind: Composite, Name: name, Fields: fields})
}

// Pointer returns the canonical pointer-to-pointee type.
func (r *Registry) Pointer(pointee *Type) *Type {
	return r.intern(&Type{Kind: Pointer, Pointee: pointee})
}

// Sampler returns the canonical standalone sampler type.
func (r *Registry) Sampler() *Type {
	return r.sampler
}

// Image returns the canonical image type with the given sampled (texel)
// type, dimensionality and flags.
func (r *Registry) Image(sampled *Type, dim ImageDim, arrayed, multisampled, depth, pureTexture bool) *Type {
	return r.intern(&Type{
		Kind: Image, Sampled: sampled, Dim: dim,
		Arrayed: arrayed, Multisampled: multisampled, Depth: depth, PureTexture: pureTexture,
	})
}

// SampledImage returns the canonical combined sampler+image type.
func (r *Registry) SampledImage(sampled *Type, dim ImageDim, arrayed, multisampled, depth bool) *Type {
	return r.intern(&Type{
		Kind: SampledImage, Sampled: sampled, Dim: dim,
		Arrayed: arrayed, Multisampled: multisampled, Depth: depth,
	})
}

// ============================================================================
// Builtin type-name recognition
// ============================================================================

// ParseBuiltinTypeName resolves a GLSL-style builtin type keyword (vec3,
// dmat4x3, isampler2DArrayShadow, ...) to its canonical Type, for the
// parser to consult when deciding whether an identifier names a builtin type
// rather than a user struct.  Unrecognised names return (nil, false) so the
// parser can fall back to treating the identifier as a struct reference.
func (r *Registry) ParseBuiltinTypeName(name string) (*Type, bool) {
	switch name {
	case "void":
		return r.Void(), true
	case "bool":
		return r.Bool(), true
	case "int":
		return r.Int(32), true
	case "uint":
		return r.Uint(32), true
	case "float":
		return r.Float(32), true
	case "double":
		return r.Float(64), true
	}

	if t, ok := r.parseVecName(name); ok {
		return t, true
	}

	if t, ok := r.parseMatName(name); ok {
		return t, true
	}

	if t, ok := r.parseImageName(name); ok {
		return t, true
	}

	return nil, false
}

func (r *Registry) parseVecName(name string) (*Type, bool) {
	var prefix string

	var elem *Type

	switch {
	case strings.HasPrefix(name, "bvec"):
		prefix, elem = "bvec", r.Bool()
	case strings.HasPrefix(name, "ivec"):
		prefix, elem = "ivec", r.Int(32)
	case strings.HasPrefix(name, "uvec"):
		prefix, elem = "uvec", r.Uint(32)
	case strings.HasPrefix(name, "dvec"):
		prefix, elem = "dvec", r.Float(64)
	case strings.HasPrefix(name, "vec"):
		prefix, elem = "vec", r.Float(32)
	default:
		return nil, false
	}

	rows, ok := parseDigitSuffix(name[len(prefix):])
	if !ok || rows < 2 || rows > 4 {
		return nil, false
	}

	return r.Vec(elem, rows), true
}

func (r *Registry) parseMatName(name string) (*Type, bool) {
	var prefix string

	var elem *Type

	switch {
	case strings.HasPrefix(name, "dmat"):
		prefix, elem = "dmat", r.Float(64)
	case strings.HasPrefix(name, "mat"):
		prefix, elem = "mat", r.Float(32)
	default:
		return nil, false
	}

	rest := name[len(prefix):]

	var rows, cols uint

	if i := strings.IndexByte(rest, 'x'); i >= 0 {
		var ok1, ok2 bool

		cols, ok1 = parseDigitSuffix(rest[:i])
		rows, ok2 = parseDigitSuffix(rest[i+1:])

		if !ok1 || !ok2 {
			return nil, false
		}
	} else {
		n, ok := parseDigitSuffix(rest)
		if !ok {
			return nil, false
		}

		rows, cols = n, n
	}

	if rows < 2 || rows > 4 || cols < 2 || cols > 4 {
		return nil, false
	}

	col := r.Vec(elem, rows)

	return r.Mat(col, cols), true
}

// parseImageName recognises the combinatorial sampler/texture/image family:
// a base ("sampler", "texture" or "image"), an optional scalar-type prefix
// ("i"/"u" for non-float sampled types, floats are the default), a dimension
// suffix, and optional "MS"/"Array"/"Shadow" modifiers, e.g.
// "sampler2DArrayShadow", "itexture3D", "image2DMS", "subpassInput".
func (r *Registry) parseImageName(name string) (*Type, bool) {
	if name == "subpassInput" {
		return r.Image(r.Float(32), DimSubpass, false, false, false, false), true
	}

	if name == "subpassInputMS" {
		return r.Image(r.Float(32), DimSubpass, false, true, false, false), true
	}

	pureTexture := false
	combined := false

	rest := name
	sampled := r.Float(32)

	switch {
	case strings.HasPrefix(rest, "i") && !strings.HasPrefix(rest, "image"):
		sampled, rest = r.Int(32), rest[1:]
	case strings.HasPrefix(rest, "u"):
		sampled, rest = r.Uint(32), rest[1:]
	}

	switch {
	case strings.HasPrefix(rest, "sampler"):
		combined = true
		rest = rest[len("sampler"):]
	case strings.HasPrefix(rest, "texture"):
		pureTexture = true
		rest = rest[len("texture"):]
	case strings.HasPrefix(rest, "image"):
		rest = rest[len("image"):]
	default:
		return nil, false
	}

	var dim ImageDim

	switch {
	case strings.HasPrefix(rest, "1D"):
		dim, rest = Dim1D, rest[2:]
	case strings.HasPrefix(rest, "2DRect"):
		dim, rest = DimRect, rest[6:]
	case strings.HasPrefix(rest, "2D"):
		dim, rest = Dim2D, rest[2:]
	case strings.HasPrefix(rest, "3D"):
		dim, rest = Dim3D, rest[2:]
	case strings.HasPrefix(rest, "Cube"):
		dim, rest = DimCube, rest[4:]
	case strings.HasPrefix(rest, "Buffer"):
		dim, rest = DimBuffer, rest[6:]
	default:
		return nil, false
	}

	multisampled := false
	if strings.HasPrefix(rest, "MS") {
		multisampled = true
		rest = rest[2:]
	}

	arrayed := false
	if strings.HasPrefix(rest, "Array") {
		arrayed = true
		rest = rest[5:]
	}

	depth := false
	if strings.HasPrefix(rest, "Shadow") {
		depth = true
		rest = rest[6:]
	}

	if rest != "" {
		return nil, false
	}

	if combined {
		return r.SampledImage(sampled, dim, arrayed, multisampled, depth), true
	}

	return r.Image(sampled, dim, arrayed, multisampled, depth, pureTexture), true
}

func parseDigitSuffix(s string) (uint, bool) {
	if s == "" {
		return 0, false
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, false
	}

	return uint(n), true
}

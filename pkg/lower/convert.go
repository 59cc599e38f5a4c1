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
package lower

import (
	"github.com/vushlang/vushc/pkg/diag"
	"github.com/vushlang/vushc/pkg/ir"
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/types"
)

// convert implicitly converts v (already lowered) to target, per spec.md
// §4.8's conversion table: int<->int via trunc/sext/zext, fp<->fp via
// fptrunc/fpext, int->fp via si2fp/ui2fp, fp->int via fp2si/fp2ui, vector
// N->M via per-lane conversion plus truncation/zero-padding. Aggregates,
// opaques and pointers are never implicitly convertible. Reports
// ConversionImpossible and returns ok=false on failure.
func (e *Engine) convert(blk *ir.Block, v *ir.Value, target *types.Type, span source.Span) (*ir.Value, bool) {
	if v.Type == target {
		return v, true
	}

	from := v.Type

	switch {
	case from.Kind.IsScalar() && from.Kind != types.Void && target.Kind.IsScalar() && target.Kind != types.Void:
		return e.convertScalar(blk, v, from, target, span), true
	case from.Kind == types.Vec && target.Kind == types.Vec:
		return e.convertVector(blk, v, from, target, span), true
	default:
		e.fatal(diag.ConversionImpossible, span, "no implicit conversion from %s to %s", from, target)
		return nil, false
	}
}

func (e *Engine) convertScalar(blk *ir.Block, v *ir.Value, from, target *types.Type, span source.Span) *ir.Value {
	switch {
	case from.Kind == types.Bool || target.Kind == types.Bool:
		// A bool only participates in implicit conversion via its own
		// identity check above; reaching here means a mismatched use the
		// caller should have rejected. Lower as a same-width reinterpret.
		return v
	case (from.Kind.IsInt() || from.Kind.IsUint()) && (target.Kind.IsInt() || target.Kind.IsUint()):
		return e.convertIntToInt(blk, v, from, target, span)
	case from.Kind.IsFloat() && target.Kind.IsFloat():
		return e.convertFloatToFloat(blk, v, from, target, span)
	case (from.Kind.IsInt() || from.Kind.IsUint()) && target.Kind.IsFloat():
		op := ir.OpUI2FP
		if from.Kind.IsInt() {
			op = ir.OpSI2FP
		}

		return e.b.Emit(blk, op, target, span, v)
	case from.Kind.IsFloat() && (target.Kind.IsInt() || target.Kind.IsUint()):
		op := ir.OpFP2UI
		if target.Kind.IsInt() {
			op = ir.OpFP2SI
		}

		return e.b.Emit(blk, op, target, span, v)
	default:
		return v
	}
}

func (e *Engine) convertIntToInt(blk *ir.Block, v *ir.Value, from, target *types.Type, span source.Span) *ir.Value {
	switch {
	case from.BitWidth() == target.BitWidth():
		return v
	case from.BitWidth() > target.BitWidth():
		return e.b.Emit(blk, ir.OpTrunc, target, span, v)
	case from.Kind.IsUint():
		return e.b.Emit(blk, ir.OpZExt, target, span, v)
	default:
		return e.b.Emit(blk, ir.OpSExt, target, span, v)
	}
}

func (e *Engine) convertFloatToFloat(blk *ir.Block, v *ir.Value, from, target *types.Type, span source.Span) *ir.Value {
	switch {
	case from.BitWidth() == target.BitWidth():
		return v
	case from.BitWidth() > target.BitWidth():
		return e.b.Emit(blk, ir.OpFPTrunc, target, span, v)
	default:
		return e.b.Emit(blk, ir.OpFPExt, target, span, v)
	}
}

// convertVector converts vecN(from) to vecM(target) per spec.md §4.8: each
// shared lane is extracted, scalar-converted and reinserted; extra source
// lanes are dropped (truncation) and extra target lanes are zero-filled
// (padding).
func (e *Engine) convertVector(blk *ir.Block, v *ir.Value, from, target *types.Type, span source.Span) *ir.Value {
	n := from.Rows
	if target.Rows < n {
		n = target.Rows
	}

	lanes := make([]*ir.Value, target.Rows)

	for i := uint(0); i < n; i++ {
		lane := e.b.Emit(blk, ir.OpVectorExtract, from.Elem, span, v)
		lane.Indices = []int64{int64(i)}
		lanes[i] = e.convertScalar(blk, lane, from.Elem, target.Elem, span)
	}

	for i := n; i < target.Rows; i++ {
		lanes[i] = e.zeroValue(target.Elem)
	}

	out := e.b.Emit(blk, ir.OpCompositeConstruct, target, span, lanes...)

	return out
}

// zeroValue builds the zero-value constant of a scalar type, used to
// zero-pad a widening vector conversion and to lower default-expressions.
func (e *Engine) zeroValue(t *types.Type) *ir.Value {
	return e.b.Constant(t)
}

// oneValue builds the scalar constant 1 of t, used for the diagonal entries
// of an identity matrix built by a matrix constructor's scaled-identity and
// block-copy-with-identity-pad overloads.
func (e *Engine) oneValue(t *types.Type) *ir.Value {
	c := e.b.Constant(t)

	switch {
	case t.Kind.IsFloat():
		c.ConstFloat = 1
	case t.Kind.IsUint():
		c.ConstUint = 1
	default:
		c.ConstInt = 1
	}

	return c
}

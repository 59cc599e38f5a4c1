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
	"github.com/vushlang/vushc/pkg/source"
	"github.com/vushlang/vushc/pkg/types"
)

// StorageClass classifies a stage-function argument, per spec.md §4.8.
type StorageClass uint8

const (
	Automatic StorageClass = iota
	Input
	Output
	Uniform
	PushConstant
	Buffer
	// Sourced marks a parameter bound to a platform-defined source
	// ("param: type from source_name") rather than to caller-supplied or
	// pipeline-stage data; SourceName on the Value names the source.
	Sourced
)

// ValueKind discriminates the three subkinds of Value spec.md §3 names.
type ValueKind uint8

const (
	ConstantValue ValueKind = iota
	ArgumentValue
	InstructionValue
)

// Value is an SSA value: a type, a monotonically assigned id (unique within
// its owning Module), and a subkind-specific payload.
type Value struct {
	ID   uint64
	Type *types.Type
	Kind ValueKind

	// ConstantValue payload: exactly one of these is meaningful, chosen by
	// Type.Kind.
	ConstBool   bool
	ConstInt    int64
	ConstUint   uint64
	ConstFloat  float64
	ConstFields []*Value // composite constant

	// ArgumentValue payload.
	Storage    StorageClass
	Pointee    *types.Type    // set when the argument itself is a pointer
	Decoration map[string]int // e.g. "location" -> N, from layout attributes
	SourceName string         // set when Storage == Sourced

	// InstructionValue payload.
	Op       Opcode
	ExtOp    ExtOpcode
	Operands []*Value
	Indices  []int64       // constant index chain for getptr/composite-extract/insert
	Targets  []BlockTarget // branch/switch successors
	Default  *Block        // switch default
	Incoming []PhiEdge     // phi operands
	Converge *Block        // scf-branch-head payload
	Callee   *Function     // OpCall target

	Span source.Span
}

// BlockTarget pairs a constant selector literal with its destination block,
// used by OpSwitch.
type BlockTarget struct {
	Literal int64
	Block   *Block
}

// PhiEdge pairs an incoming value with the predecessor block it arrives
// from, used by OpPhi.
type PhiEdge struct {
	Value *Value
	Pred  *Block
}

// Block is an ordered list of instructions ending in exactly one
// terminator (spec.md §3 invariant).
type Block struct {
	ID           uint64
	Instructions []*Value
}

// Terminator returns the block's terminating instruction, or nil if the
// block is not yet closed.
func (b *Block) Terminator() *Value {
	if n := len(b.Instructions); n > 0 {
		if last := b.Instructions[n-1]; last.Kind == InstructionValue && last.Op.IsTerminator() {
			return last
		}
	}

	return nil
}

// IsTerminated reports whether b already ends in a terminator.
func (b *Block) IsTerminated() bool {
	return b.Terminator() != nil
}

// Append adds inst to the end of b. Appending after a terminator is a
// caller bug (spec.md invariant: "no instruction follows a terminator");
// the lowering engine never does this because it always checks
// IsTerminated before emitting to a block.
func (b *Block) Append(inst *Value) {
	b.Instructions = append(b.Instructions, inst)
}

// Function is an identifier, return type, ordered argument list, entry
// block, and any additional blocks reachable from it.
type Function struct {
	Name       string
	ReturnType *types.Type
	Args       []*Value
	Entry      *Block
	Blocks     []*Block
	Span       source.Span
}

// StageKind enumerates the shader-stage kind a Module targets.
type StageKind uint8

const (
	StageVertex StageKind = iota
	StageFragment
	StageCompute
	StageGeometry
	StageTessControl
	StageTessEval
)

func (s StageKind) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageGeometry:
		return "geometry"
	case StageTessControl:
		return "tess-control"
	case StageTessEval:
		return "tess-eval"
	default:
		return "?"
	}
}

// Module is one compiled stage declaration: a pass name, stage kind, and a
// single entry-point function, plus every user function it transitively
// calls.
type Module struct {
	Pass      string
	Stage     StageKind
	Entry     *Function
	Functions []*Function
}

// Builder assigns monotonically increasing ids to values and blocks within
// a single Module, per spec.md §4.8 ("monotonic id counter ... reset per
// module").
type Builder struct {
	nextValue uint64
	nextBlock uint64
}

// NewBuilder creates a Builder with fresh counters for one module.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBlock allocates a new, empty Block with the next block id.
func (b *Builder) NewBlock() *Block {
	blk := &Block{ID: b.nextBlock}
	b.nextBlock++

	return blk
}

func (b *Builder) nextID() uint64 {
	id := b.nextValue
	b.nextValue++

	return id
}

// Emit appends a new instruction Value of the given opcode/type/operands to
// block and returns it.
func (b *Builder) Emit(block *Block, op Opcode, ty *types.Type, span source.Span, operands ...*Value) *Value {
	v := &Value{ID: b.nextID(), Type: ty, Kind: InstructionValue, Op: op, Operands: operands, Span: span}
	block.Append(v)

	return v
}

// Constant builds a new constant Value (not appended to any block: constants
// are not instructions and do not consume an id slot in a block's
// instruction list, though they do consume a value id).
func (b *Builder) Constant(ty *types.Type) *Value {
	return &Value{ID: b.nextID(), Type: ty, Kind: ConstantValue}
}

// Argument builds a new ArgumentValue.
func (b *Builder) Argument(ty *types.Type, storage StorageClass) *Value {
	return &Value{ID: b.nextID(), Type: ty, Kind: ArgumentValue, Storage: storage}
}

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

// Package ir implements the typed, SSA-style intermediate representation
// produced by the Lowering Engine: Values, Blocks, Functions and Modules,
// plus the full instruction opcode family of spec.md §4.7.
package ir

// Opcode discriminates an instruction's operation.
type Opcode uint8

const (
	OpInvalid Opcode = iota

	// Memory.
	OpAlloc
	OpLoad
	OpStore
	OpGetPtr

	// Control flow (terminators).
	OpBranch
	OpBrCond
	OpSwitch
	OpReturn
	OpDie
	OpUnreachable

	// Structured-control marker.
	OpScfBranchHead

	// ALU: arithmetic.
	OpIAdd
	OpISub
	OpIMul
	OpSDiv
	OpUDiv
	OpSRem
	OpURem
	OpINeg
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
	OpFNeg

	// ALU: bitwise.
	OpNot
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	// ALU: comparisons.
	OpIEq
	OpINeq
	OpSLt
	OpULt
	OpSGt
	OpUGt
	OpSLe
	OpULe
	OpSGe
	OpUGe
	OpFOEq
	OpFONeq
	OpFOLt
	OpFOGt
	OpFOLe
	OpFOGe

	// Conversions.
	OpTrunc
	OpSExt
	OpZExt
	OpFPTrunc
	OpFPExt
	OpSI2FP
	OpUI2FP
	OpFP2SI
	OpFP2UI

	// Composite.
	OpCompositeConstruct
	OpCompositeExtract
	OpCompositeInsert
	OpVectorExtract
	OpVectorInsert

	// Call.
	OpCall
	OpExtCall

	// Phi.
	OpPhi
)

var opcodeNames = map[Opcode]string{
	OpInvalid: "invalid", OpAlloc: "alloc", OpLoad: "load", OpStore: "store", OpGetPtr: "getptr",
	OpBranch: "branch", OpBrCond: "brcond", OpSwitch: "switch", OpReturn: "return", OpDie: "die",
	OpUnreachable: "unreachable", OpScfBranchHead: "scf-branch-head",
	OpIAdd: "iadd", OpISub: "isub", OpIMul: "imul", OpSDiv: "sdiv", OpUDiv: "udiv", OpSRem: "srem",
	OpURem: "urem", OpINeg: "ineg", OpFAdd: "fadd", OpFSub: "fsub", OpFMul: "fmul", OpFDiv: "fdiv",
	OpFRem: "frem", OpFNeg: "fneg",
	OpNot: "not", OpAnd: "and", OpOr: "or", OpXor: "xor", OpShl: "shl", OpShr: "shr",
	OpIEq: "ieq", OpINeq: "ineq", OpSLt: "slt", OpULt: "ult", OpSGt: "sgt", OpUGt: "ugt",
	OpSLe: "sle", OpULe: "ule", OpSGe: "sge", OpUGe: "uge",
	OpFOEq: "foeq", OpFONeq: "foneq", OpFOLt: "folt", OpFOGt: "fogt", OpFOLe: "fole", OpFOGe: "foge",
	OpTrunc: "trunc", OpSExt: "sext", OpZExt: "zext", OpFPTrunc: "fptrunc", OpFPExt: "fpext",
	OpSI2FP: "si2fp", OpUI2FP: "ui2fp", OpFP2SI: "fp2si", OpFP2UI: "fp2ui",
	OpCompositeConstruct: "composite-construct", OpCompositeExtract: "composite-extract",
	OpCompositeInsert: "composite-insert", OpVectorExtract: "vector-extract", OpVectorInsert: "vector-insert",
	OpCall: "call", OpExtCall: "ext-call", OpPhi: "phi",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}

	return "?"
}

// IsTerminator reports whether o ends a basic block.
func (o Opcode) IsTerminator() bool {
	switch o {
	case OpBranch, OpBrCond, OpSwitch, OpReturn, OpDie, OpUnreachable:
		return true
	default:
		return false
	}
}

// ExtOpcode identifies a builtin-function dispatch result: the concrete
// instruction family an ext-call should lower to, distinguishing things
// (texture sampling, derivatives, atomics) that are not plain ALU ops but
// are still resolved by the builtin dispatcher of spec.md §4.6.
type ExtOpcode uint16

const (
	ExtInvalid ExtOpcode = iota

	// Math intrinsics.
	ExtRadians
	ExtDegrees
	ExtSin
	ExtCos
	ExtTan
	ExtAsin
	ExtAcos
	ExtAtan
	ExtSinh
	ExtCosh
	ExtTanh
	ExtPow
	ExtExp
	ExtLog
	ExtExp2
	ExtLog2
	ExtSqrt
	ExtInverseSqrt
	ExtFAbs
	ExtSAbs
	ExtFSign
	ExtSSign
	ExtFloor
	ExtTruncOp
	ExtRound
	ExtRoundEven
	ExtCeil
	ExtFract
	ExtFMod
	ExtFMin
	ExtSMin
	ExtUMin
	ExtFMax
	ExtSMax
	ExtUMax
	ExtFClamp
	ExtSClamp
	ExtUClamp
	ExtLength
	ExtDistance
	ExtDot
	ExtCross
	ExtNormalize
	ExtFaceForward
	ExtReflect
	ExtMatrixCompMult
	ExtOuterProduct
	ExtTranspose
	ExtDeterminant
	ExtInverse

	// Texture/image sampling family.
	ExtTexture
	ExtTextureProj
	ExtTextureLod
	ExtTextureOffset
	ExtTexelFetch
	ExtTextureGather
	ExtTextureQuerySize
	ExtTextureQueryLod
	ExtTextureQueryLevels
	ExtTextureQuerySamples

	// Derivative family.
	ExtDFdx
	ExtDFdy
	ExtFwidth
	ExtDFdxFine
	ExtDFdyFine
	ExtDFdxCoarse
	ExtDFdyCoarse

	// Atomics, barriers, subpass-load, reductions.
	ExtAtomicAdd
	ExtAtomicExchange
	ExtAtomicCompSwap
	ExtBarrier
	ExtSubpassLoad
	ExtGroupReduce
)

package ir

// Opcode enumerates the SPIR-V opcodes the msl package's instruction
// emitter understands. This is deliberately not exhaustive over the full
// SPIR-V opcode space (that space is the external parser's concern); it
// covers the opcode families named in spec.md's instruction-emitter table
// plus the control-flow and composite operations needed to thread values
// through a function body.
type Opcode uint16

const (
	OpNop Opcode = iota

	OpVariable
	OpLoad
	OpStore
	OpAccessChain
	OpInBoundsAccessChain
	OpFunctionCall
	OpFunctionParameter
	OpCopyObject
	OpArrayLength

	// Composite
	OpCompositeConstruct
	OpCompositeExtract
	OpCompositeInsert
	OpVectorShuffle
	OpTranspose

	// Conversion
	OpConvertFToU
	OpConvertFToS
	OpConvertSToF
	OpConvertUToF
	OpBitcast
	OpQuantizeToF16
	OpFConvert

	// Arithmetic
	OpSNegate
	OpFNegate
	OpIAdd
	OpFAdd
	OpISub
	OpFSub
	OpIMul
	OpFMul
	OpUDiv
	OpSDiv
	OpFDiv
	OpUMod
	OpSRem
	OpSMod
	OpFRem
	OpFMod
	OpVectorTimesScalar
	OpMatrixTimesScalar
	OpVectorTimesMatrix
	OpMatrixTimesVector
	OpMatrixTimesMatrix
	OpDot
	OpOuterProduct

	// Relational / logical
	OpIEqual
	OpINotEqual
	OpUGreaterThan
	OpSGreaterThan
	OpUGreaterThanEqual
	OpSGreaterThanEqual
	OpULessThan
	OpSLessThan
	OpULessThanEqual
	OpSLessThanEqual
	OpFOrdEqual
	OpFOrdNotEqual
	OpFOrdLessThan
	OpFOrdGreaterThan
	OpFOrdLessThanEqual
	OpFOrdGreaterThanEqual
	OpLogicalEqual
	OpLogicalNotEqual
	OpLogicalOr
	OpLogicalAnd
	OpLogicalNot
	OpSelect
	OpAny
	OpAll
	OpIsNan
	OpIsInf

	// Bitwise
	OpShiftRightLogical
	OpShiftRightArithmetic
	OpShiftLeftLogical
	OpBitwiseOr
	OpBitwiseXor
	OpBitwiseAnd
	OpNot
	OpBitFieldInsert
	OpBitFieldSExtract
	OpBitFieldUExtract
	OpBitReverse
	OpBitCount

	// Derivatives
	OpDPdx
	OpDPdy
	OpFwidth
	OpDPdxCoarse
	OpDPdyCoarse
	OpFwidthCoarse
	OpDPdxFine
	OpDPdyFine
	OpFwidthFine

	// Images
	OpImageSampleImplicitLod
	OpImageSampleExplicitLod
	OpImageSampleDrefImplicitLod
	OpImageFetch
	OpImageGather
	OpImageRead
	OpImageWrite
	OpImage
	OpSampledImage
	OpImageQuerySize
	OpImageQuerySizeLod
	OpImageQueryLevels
	OpImageQuerySamples

	// Atomics
	OpAtomicLoad
	OpAtomicStore
	OpAtomicExchange
	OpAtomicCompareExchange
	OpAtomicIIncrement
	OpAtomicIDecrement
	OpAtomicIAdd
	OpAtomicISub
	OpAtomicSMin
	OpAtomicUMin
	OpAtomicSMax
	OpAtomicUMax
	OpAtomicAnd
	OpAtomicOr
	OpAtomicXor

	// Barriers
	OpControlBarrier
	OpMemoryBarrier

	// Extended instructions
	OpExtInst

	// Control flow
	OpPhi
	OpLabel
	OpBranch
	OpBranchConditional
	OpLoopMerge
	OpSelectionMerge
	OpReturn
	OpReturnValue
	OpKill
	OpUnreachable
)

// ExtInst enumerates the GLSL.std.450 extended instructions the emitter
// rewrites into MSL form.
type ExtInst uint16

const (
	ExtNone ExtInst = iota

	ExtRound
	ExtRoundEven
	ExtTrunc
	ExtFAbs
	ExtSAbs
	ExtFSign
	ExtSSign
	ExtFloor
	ExtCeil
	ExtFract

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
	ExtAsinh
	ExtAcosh
	ExtAtanh
	ExtAtan2
	ExtPow
	ExtExp
	ExtLog
	ExtExp2
	ExtLog2
	ExtSqrt
	ExtInverseSqrt

	ExtDeterminant
	ExtMatrixInverse

	ExtFMin
	ExtUMin
	ExtSMin
	ExtFMax
	ExtUMax
	ExtSMax
	ExtFClamp
	ExtUClamp
	ExtSClamp
	ExtFMix
	ExtStep
	ExtSmoothStep
	ExtFma

	ExtPackSnorm4x8
	ExtPackUnorm4x8
	ExtPackSnorm2x16
	ExtPackUnorm2x16
	ExtPackHalf2x16
	ExtPackDouble2x32
	ExtUnpackSnorm2x16
	ExtUnpackUnorm2x16
	ExtUnpackHalf2x16
	ExtUnpackSnorm4x8
	ExtUnpackUnorm4x8
	ExtUnpackDouble2x32

	ExtLength
	ExtCross
	ExtNormalize
	ExtFaceForward
	ExtReflect
	ExtRefract

	ExtFindILsb
	ExtFindSMsb
	ExtFindUMsb
)

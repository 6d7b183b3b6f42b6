package msl

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/spvmsl/ir"
)

// operand renders the MSL expression for a previously-emitted value: a
// named local/parameter/global if instr.Result allocated one, a literal if
// id names a Constant, a zero-initializer if id names an Undef, or a
// positional fallback name otherwise.
func (w *Writer) operand(id ir.ID) string {
	if id == ir.NullID {
		return ""
	}
	if n, ok := w.names[id]; ok {
		return n
	}
	if alias := w.module.Meta.Get(id).QualifiedAlias; alias != "" {
		return alias
	}
	if c := w.module.ConstantAt(id); c != nil {
		return w.constantLiteral(c)
	}
	if int(id) < len(w.module.Pool) && w.module.Pool[id].Kind == ir.EntityUndef {
		u := w.module.Pool[id].Undef
		return fmt.Sprintf("%s{}", w.typeToMSL(u.Type))
	}
	return w.name(id)
}

// constantLiteral renders a scalar or composite constant.
func (w *Writer) constantLiteral(c *ir.Constant) string {
	t := w.module.TypeAt(c.Type)
	switch c.Kind {
	case ir.ConstantComposite:
		parts := make([]string, len(c.Components))
		for i, comp := range c.Components {
			parts[i] = w.operand(comp)
		}
		return fmt.Sprintf("%s(%s)", w.typeToMSL(c.Type), strings.Join(parts, ", "))
	default:
		return w.scalarLiteral(t, c.Bits)
	}
}

func (w *Writer) scalarLiteral(t *ir.Type, bits uint64) string {
	if t == nil {
		return fmt.Sprintf("%d", bits)
	}
	switch t.Kind {
	case ir.ScalarBool:
		if bits != 0 {
			return "true"
		}
		return "false"
	case ir.ScalarFloat:
		return fmt.Sprintf("%g", float32FromBits(uint32(bits)))
	case ir.ScalarDouble:
		return fmt.Sprintf("%g", float64FromBits(bits))
	case ir.ScalarInt:
		return fmt.Sprintf("%d", int64(int32(bits)))
	default:
		if t.Width == 64 {
			return fmt.Sprintf("%du", bits)
		}
		return fmt.Sprintf("%du", uint32(bits))
	}
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// bindResult allocates (if needed) and returns the local variable name for
// instr.Result, declaring it with decl (e.g. "float3 _12 = a + b").
func (w *Writer) bindResult(instr ir.Instruction, rhs string) {
	if instr.Result == ir.NullID {
		w.writeLine("%s;", rhs)
		return
	}
	name := w.ensureUniqueName(instr.Result, fmt.Sprintf("_%d", instr.Result))
	w.writeLine("%s %s = %s;", w.typeToMSL(instr.ResultType), name, rhs)
}

var binaryOps = map[ir.Opcode]string{
	ir.OpIAdd: "+", ir.OpFAdd: "+",
	ir.OpISub: "-", ir.OpFSub: "-",
	ir.OpIMul: "*", ir.OpFMul: "*",
	ir.OpUDiv: "/", ir.OpSDiv: "/", ir.OpFDiv: "/",
	ir.OpUMod: "%", ir.OpSRem: "%",
	ir.OpBitwiseOr: "|", ir.OpBitwiseXor: "^", ir.OpBitwiseAnd: "&",
	ir.OpShiftRightLogical: ">>", ir.OpShiftRightArithmetic: ">>", ir.OpShiftLeftLogical: "<<",
	ir.OpIEqual: "==", ir.OpINotEqual: "!=",
	ir.OpUGreaterThan: ">", ir.OpSGreaterThan: ">",
	ir.OpUGreaterThanEqual: ">=", ir.OpSGreaterThanEqual: ">=",
	ir.OpULessThan: "<", ir.OpSLessThan: "<",
	ir.OpULessThanEqual: "<=", ir.OpSLessThanEqual: "<=",
	ir.OpFOrdEqual: "==", ir.OpFOrdNotEqual: "!=",
	ir.OpFOrdLessThan: "<", ir.OpFOrdGreaterThan: ">",
	ir.OpFOrdLessThanEqual: "<=", ir.OpFOrdGreaterThanEqual: ">=",
	ir.OpLogicalEqual: "==", ir.OpLogicalNotEqual: "!=",
	ir.OpLogicalOr: "||", ir.OpLogicalAnd: "&&",
}

// EmitInstruction implements glslbase.Emitter: it handles every
// MSL-specific opcode rewrite named in spec.md §4.5's table. Opcodes it
// does not special-case report handled=false so the caller can fall
// through to the generic renderer.
func (w *Writer) EmitInstruction(instr ir.Instruction) (bool, error) {
	switch instr.Op {
	case ir.OpDPdx:
		w.bindResult(instr, fmt.Sprintf("dfdx(%s)", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpDPdy:
		w.bindResult(instr, fmt.Sprintf("dfdy(%s)", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpFwidth:
		w.bindResult(instr, fmt.Sprintf("fwidth(%s)", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpDPdxCoarse, ir.OpDPdxFine:
		w.bindResult(instr, fmt.Sprintf("dfdx(%s)", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpDPdyCoarse, ir.OpDPdyFine:
		w.bindResult(instr, fmt.Sprintf("dfdy(%s)", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpFwidthCoarse, ir.OpFwidthFine:
		w.bindResult(instr, fmt.Sprintf("fwidth(%s)", w.operand(instr.Operands[0])))
		return true, nil

	case ir.OpBitFieldInsert:
		w.bindResult(instr, fmt.Sprintf("insert_bits(%s, %s, %s, %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1]), w.operand(instr.Operands[2]), w.operand(instr.Operands[3])))
		return true, nil
	case ir.OpBitFieldSExtract, ir.OpBitFieldUExtract:
		w.bindResult(instr, fmt.Sprintf("extract_bits(%s, %s, %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1]), w.operand(instr.Operands[2])))
		return true, nil
	case ir.OpBitReverse:
		w.bindResult(instr, fmt.Sprintf("reverse_bits(%s)", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpBitCount:
		w.bindResult(instr, fmt.Sprintf("popcount(%s)", w.operand(instr.Operands[0])))
		return true, nil

	case ir.OpAtomicLoad, ir.OpAtomicStore, ir.OpAtomicExchange, ir.OpAtomicCompareExchange,
		ir.OpAtomicIIncrement, ir.OpAtomicIDecrement, ir.OpAtomicIAdd, ir.OpAtomicISub,
		ir.OpAtomicSMin, ir.OpAtomicUMin, ir.OpAtomicSMax, ir.OpAtomicUMax,
		ir.OpAtomicAnd, ir.OpAtomicOr, ir.OpAtomicXor:
		return w.emitAtomic(instr)

	case ir.OpImageRead, ir.OpImageWrite, ir.OpImageSampleImplicitLod, ir.OpImageSampleExplicitLod,
		ir.OpImageSampleDrefImplicitLod, ir.OpImageFetch, ir.OpImageGather:
		return w.emitImageOp(instr)
	case ir.OpImageQuerySize, ir.OpImageQuerySizeLod:
		return w.emitImageQuerySize(instr)
	case ir.OpImageQueryLevels:
		w.bindResult(instr, fmt.Sprintf("%s.get_num_mip_levels()", w.operand(instr.Operands[0])))
		return true, nil
	case ir.OpImageQuerySamples:
		w.bindResult(instr, fmt.Sprintf("%s.get_num_samples()", w.operand(instr.Operands[0])))
		return true, nil

	case ir.OpFMod:
		w.requestHelper(helperMod)
		w.bindResult(instr, fmt.Sprintf("spvMod(%s, %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1])))
		return true, nil
	case ir.OpFRem:
		w.bindResult(instr, fmt.Sprintf("fmod(%s, %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1])))
		return true, nil

	case ir.OpQuantizeToF16:
		n := w.vectorWidthOf(instr.ResultType)
		halfType := "half"
		if n > 1 {
			halfType = fmt.Sprintf("half%d", n)
		}
		msl := w.typeToMSL(instr.ResultType)
		w.bindResult(instr, fmt.Sprintf("%s(%s(%s))", msl, halfType, w.operand(instr.Operands[0])))
		return true, nil

	case ir.OpStore:
		return w.emitStore(instr)

	case ir.OpMemoryBarrier, ir.OpControlBarrier:
		return w.emitBarrier(instr)

	case ir.OpVectorTimesMatrix, ir.OpMatrixTimesVector:
		return w.emitMatrixVectorOp(instr)

	case ir.OpExtInst:
		return w.emitExtInst(instr)
	}
	return false, nil
}

func (w *Writer) vectorWidthOf(typeID ir.ID) uint8 {
	t := w.module.TypeAt(typeID)
	if t == nil || !t.IsVector() {
		return 1
	}
	return t.VectorSize
}

// emitStore implements the Store special-cases from spec.md §4.5: a
// member-by-member copy when the RHS is (an alias of) a hoisted Input
// struct, a spvArrayCopy call for arrays, and a plain assignment
// otherwise.
func (w *Writer) emitStore(instr ir.Instruction) (bool, error) {
	ptr, val := instr.Operands[0], instr.Operands[1]
	ptrType := w.pointeeType(ptr)
	if ptrType != nil && ptrType.IsArray() {
		w.requestHelper(helperArrayCopy)
		w.writeLine("spvArrayCopy(%s, %s);", w.operand(ptr), w.operand(val))
		return true, nil
	}
	if alias := w.module.Meta.Get(val).QualifiedAlias; alias != "" && ptrType != nil && ptrType.IsStruct() {
		for i := range ptrType.Members {
			w.writeLine("%s.m%d = %s.m%d;", w.operand(ptr), i, alias, i)
		}
		return true, nil
	}
	w.writeLine("%s = %s;", w.operand(ptr), w.operand(val))
	return true, nil
}

func (w *Writer) pointeeType(ptrID ir.ID) *ir.Type {
	expr := w.module.ExpressionAt(ptrID)
	var typeID ir.ID
	if expr != nil {
		typeID = expr.ResultType
	} else if v := w.module.VariableAt(ptrID); v != nil {
		typeID = v.Type
	}
	return w.module.TypeAt(typeID)
}

// emitAtomic renders Metal's explicit-memory-order atomic intrinsics
// (spec.md §4.5 "Atomics").
func (w *Writer) emitAtomic(instr ir.Instruction) (bool, error) {
	w.usesAtomics = true
	ptr := instr.Operands[0]
	pt := w.pointeeType(ptr)
	scalarName := "uint"
	if pt != nil {
		scalarName = scalarTypeName(pt.Kind, pt.Width)
	}
	cast := fmt.Sprintf("(volatile device atomic_%s*)&%s", scalarName, w.operand(ptr))

	opName, withValue, isStore := atomicOpName(instr.Op)
	switch {
	case instr.Op == ir.OpAtomicLoad:
		w.bindResult(instr, fmt.Sprintf("atomic_load_explicit(%s, memory_order_relaxed)", cast))
	case isStore:
		// OpAtomicStore's operands are (pointer, scope, semantics, value):
		// the stored value is read from the last operand, following the
		// SPIR-V operand order rather than the operand indices the C++
		// original reads.
		w.writeLine("atomic_store_explicit(%s, %s, memory_order_relaxed);", cast, w.operand(instr.Operands[len(instr.Operands)-1]))
	case instr.Op == ir.OpAtomicIIncrement:
		w.bindResult(instr, fmt.Sprintf("%s(%s, 1, memory_order_relaxed)", opName, cast))
	case instr.Op == ir.OpAtomicIDecrement:
		w.bindResult(instr, fmt.Sprintf("%s(%s, 1, memory_order_relaxed)", opName, cast))
	case withValue:
		valueIdx := len(instr.Operands) - 1
		if instr.Op == ir.OpAtomicCompareExchange && valueIdx > 1 {
			valueIdx-- // (..., value, comparator): the desired value precedes the comparator
		}
		value := w.operand(instr.Operands[valueIdx])
		w.bindResult(instr, fmt.Sprintf("%s(%s, %s, memory_order_relaxed)", opName, cast, value))
	default:
		w.bindResult(instr, fmt.Sprintf("%s(%s, memory_order_relaxed)", opName, cast))
	}
	return true, nil
}

func atomicOpName(op ir.Opcode) (name string, withValue, isStore bool) {
	switch op {
	case ir.OpAtomicStore:
		return "atomic_store_explicit", true, true
	case ir.OpAtomicExchange:
		return "atomic_exchange_explicit", true, false
	case ir.OpAtomicCompareExchange:
		return "atomic_compare_exchange_weak_explicit", true, false
	case ir.OpAtomicIIncrement:
		return "atomic_fetch_add_explicit", true, false
	case ir.OpAtomicIDecrement:
		return "atomic_fetch_sub_explicit", true, false
	case ir.OpAtomicIAdd:
		return "atomic_fetch_add_explicit", true, false
	case ir.OpAtomicISub:
		return "atomic_fetch_sub_explicit", true, false
	case ir.OpAtomicSMin, ir.OpAtomicUMin:
		return "atomic_fetch_min_explicit", true, false
	case ir.OpAtomicSMax, ir.OpAtomicUMax:
		return "atomic_fetch_max_explicit", true, false
	case ir.OpAtomicAnd:
		return "atomic_fetch_and_explicit", true, false
	case ir.OpAtomicOr:
		return "atomic_fetch_or_explicit", true, false
	case ir.OpAtomicXor:
		return "atomic_fetch_xor_explicit", true, false
	default:
		return "atomic_fetch_add_explicit", true, false
	}
}

// emitImageOp implements the ImageRead/ImageWrite/sample/fetch/gather
// family by delegating name and argument rendering to the glslbase
// Emitter trait (spec.md §9 design note 2), then specializing the
// non-readable/non-writable recompute check MSL needs.
func (w *Writer) emitImageOp(instr ir.Instruction) (bool, error) {
	imageID := instr.Operands[0]
	imgType := w.pointeeType(imageID)
	if imgType == nil {
		imgType = w.module.TypeAt(w.exprType(imageID))
	}
	fn := w.base.ToFunctionName(instr.Op, imgType)
	if fn == "" {
		return false, nil
	}

	if instr.Op == ir.OpImageRead && imgType != nil && imgType.Image != nil && imgType.Image.Access == ir.AccessWriteOnly {
		imgType.Image.Access = ir.AccessReadWrite
		w.forceRecompile = true
	}
	if instr.Op == ir.OpImageWrite && imgType != nil && imgType.Image != nil && imgType.Image.Access == ir.AccessReadOnly {
		imgType.Image.Access = ir.AccessReadWrite
		w.forceRecompile = true
	}

	rendered := make([]string, len(instr.Operands)-1)
	for i, operand := range instr.Operands[1:] {
		rendered[i] = w.operand(operand)
	}
	args := w.base.ToFunctionArgs(instr.Op, imgType, rendered)
	call := fmt.Sprintf("%s.%s(%s)", w.operand(imageID), fn, args)
	if instr.Op == ir.OpImageWrite {
		w.writeLine("%s;", call)
	} else {
		w.bindResult(instr, call)
	}
	return true, nil
}

func (w *Writer) exprType(id ir.ID) ir.ID {
	if e := w.module.ExpressionAt(id); e != nil {
		return e.ResultType
	}
	if v := w.module.VariableAt(id); v != nil {
		return v.Type
	}
	return ir.NullID
}

// emitImageQuerySize composes a texture size query from Metal's
// per-dimension accessors (spec.md §4.5 "ImageQuerySize[Lod]").
func (w *Writer) emitImageQuerySize(instr ir.Instruction) (bool, error) {
	img := w.operand(instr.Operands[0])
	imgType := w.module.TypeAt(w.exprType(instr.Operands[0]))
	if imgType == nil || imgType.Image == nil {
		return false, nil
	}
	lod := ""
	if instr.Op == ir.OpImageQuerySizeLod && len(instr.Operands) > 1 {
		lod = w.operand(instr.Operands[1])
	}
	parts := []string{fmt.Sprintf("%s.get_width(%s)", img, lod)}
	switch imgType.Image.Dim {
	case ir.Dim2D, ir.DimCube:
		parts = append(parts, fmt.Sprintf("%s.get_height(%s)", img, lod))
	case ir.Dim3D:
		parts = append(parts, fmt.Sprintf("%s.get_height(%s)", img, lod), fmt.Sprintf("%s.get_depth(%s)", img, lod))
	}
	if imgType.Image.Arrayed {
		parts = append(parts, fmt.Sprintf("%s.get_array_size()", img))
	}
	w.bindResult(instr, fmt.Sprintf("%s(%s)", w.typeToMSL(instr.ResultType), strings.Join(parts, ", ")))
	return true, nil
}

// SPIR-V memory semantics mask bits consulted by emitBarrier (spec.md
// §4.5, CompilerMSL::emit_barrier in original_source/spirv_msl.cpp).
const (
	semanticsCrossWorkgroupMemory = 0x200
	semanticsSubgroupMemory       = 0x80
	semanticsWorkgroupMemory      = 0x100
	semanticsAtomicCounterMemory  = 0x400
	semanticsImageMemory          = 0x800
)

// SPIR-V Scope enumerant values, narrowest (Invocation) to widest
// (CrossDevice), consulted by barrierMemoryScope.
const (
	scopeCrossDevice = 0
	scopeDevice      = 1
	scopeWorkgroup   = 2
	scopeSubgroup    = 3
	scopeInvocation  = 4
)

// emitBarrier implements spec.md §4.5's barrier-combination and
// memory-semantics-to-mem_flags rule.
func (w *Writer) emitBarrier(instr ir.Instruction) (bool, error) {
	w.usesBarriers = true
	if instr.Op == ir.OpControlBarrier && w.lastWasMemoryBarrier {
		w.lastWasMemoryBarrier = false
		return true, nil // suppressed: combined into the preceding memory barrier
	}

	// OpMemoryBarrier's operands are (memory scope, semantics); OpControlBarrier's
	// are (execution scope, memory scope, semantics) — semantics sits one
	// operand later (original_source/spirv_msl.cpp:1600,1608).
	exeScopeID, memScopeID, semanticsID := ir.NullID, instr.Operands[0], instr.Operands[1]
	if instr.Op == ir.OpControlBarrier {
		exeScopeID, memScopeID, semanticsID = instr.Operands[0], instr.Operands[1], instr.Operands[2]
	}

	flags := "mem_flags::" + memoryFlagsFromSemantics(w.constantScalar(semanticsID))
	if w.options.Platform == PlatformIOS && w.options.LangVersion.AtLeast(Version2_0) {
		flags += ", " + barrierMemoryScope(w.resolveScope(exeScopeID), w.resolveScope(memScopeID))
	}
	w.writeLine("threadgroup_barrier(%s);", flags)
	w.lastWasMemoryBarrier = instr.Op == ir.OpMemoryBarrier
	return true, nil
}

// constantScalar decodes a scalar constant operand.
func (w *Writer) constantScalar(id ir.ID) uint32 {
	if c := w.module.ConstantAt(id); c != nil {
		return uint32(c.Bits)
	}
	return 0
}

// resolveScope decodes a Scope operand, defaulting to Scope::Invocation
// when the operand is absent (a memory barrier carries no execution
// scope of its own).
func (w *Writer) resolveScope(id ir.ID) uint32 {
	if id == ir.NullID {
		return scopeInvocation
	}
	return w.constantScalar(id)
}

// memoryFlagsFromSemantics decodes the SPIR-V memory semantics bitmask
// into an MSL mem_flags spelling (spec.md §4.5's table).
func memoryFlagsFromSemantics(semantics uint32) string {
	switch {
	case semantics&semanticsCrossWorkgroupMemory != 0:
		return "mem_device"
	case semantics&(semanticsSubgroupMemory|semanticsWorkgroupMemory|semanticsAtomicCounterMemory) != 0:
		return "mem_threadgroup"
	case semantics&semanticsImageMemory != 0:
		return "mem_texture"
	default:
		return "mem_none"
	}
}

// barrierMemoryScope picks the memory_scope_* argument iOS/MSL2 barriers
// need, from the wider (numerically smaller) of the already-resolved
// execution and memory scope values.
func barrierMemoryScope(exeScope, memScope uint32) string {
	scope := exeScope
	if memScope < scope {
		scope = memScope
	}
	switch scope {
	case scopeCrossDevice, scopeDevice:
		return "memory_scope_device"
	case scopeSubgroup, scopeInvocation:
		return "memory_scope_simdgroup"
	default: // scopeWorkgroup and anything unrecognized
		return "memory_scope_threadgroup"
	}
}

// emitMatrixVectorOp implements the need_transpose operand-swap rule for
// square matrices (spec.md §4.5 "VectorTimesMatrix / MatrixTimesVector").
func (w *Writer) emitMatrixVectorOp(instr ir.Instruction) (bool, error) {
	var matOperand, vecOperand ir.ID
	if instr.Op == ir.OpVectorTimesMatrix {
		vecOperand, matOperand = instr.Operands[0], instr.Operands[1]
	} else {
		matOperand, vecOperand = instr.Operands[0], instr.Operands[1]
	}
	matType := w.module.TypeAt(w.exprType(matOperand))
	needTranspose := matType != nil && matType.IsMatrix() && w.meta(matOperand).Flags.Has(ir.DecorationRowMajor)
	square := matType != nil && uint8(matType.VectorSize) == matType.MatrixCols

	mat, vec := w.operand(matOperand), w.operand(vecOperand)
	if needTranspose && square {
		w.bindResult(instr, fmt.Sprintf("(%s * %s)", vec, mat))
		return true, nil
	}
	if instr.Op == ir.OpVectorTimesMatrix {
		w.bindResult(instr, fmt.Sprintf("(%s * %s)", vec, mat))
	} else {
		w.bindResult(instr, fmt.Sprintf("(%s * %s)", mat, vec))
	}
	return true, nil
}

// emitExtInst renders a GLSL.std.450 extended instruction, handling the
// MSL-specific rewrites directly and delegating everything else to the
// generic base emitter (spec.md §9 design note 2).
func (w *Writer) emitExtInst(instr ir.Instruction) (bool, error) {
	args := instr.Operands
	switch instr.ExtOp {
	case ir.ExtInverseSqrt:
		w.bindResult(instr, fmt.Sprintf("rsqrt(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtRoundEven:
		w.bindResult(instr, fmt.Sprintf("rint(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtRadians:
		w.requestHelper(helperRadians)
		w.bindResult(instr, fmt.Sprintf("spvRadians(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtDegrees:
		w.requestHelper(helperDegrees)
		w.bindResult(instr, fmt.Sprintf("spvDegrees(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtFindILsb:
		w.requestHelper(helperFindILsb)
		w.bindResult(instr, fmt.Sprintf("spvFindLSB(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtFindUMsb:
		w.requestHelper(helperFindUMsb)
		w.bindResult(instr, fmt.Sprintf("spvFindUMSB(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtFindSMsb:
		w.requestHelper(helperFindSMsb)
		w.bindResult(instr, fmt.Sprintf("spvFindSMSB(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtMatrixInverse:
		matType := w.module.TypeAt(w.exprType(args[0]))
		n := uint8(3)
		if matType != nil {
			n = matType.MatrixCols
		}
		if w.helpers.requestInverse(n) {
			w.forceRecompile = true
		}
		w.bindResult(instr, fmt.Sprintf("spvInverse%dx%d(%s)", n, n, w.operand(args[0])))
		return true, nil
	case ir.ExtPackHalf2x16:
		w.requestHelper(helperPackHalf2x16)
		w.bindResult(instr, fmt.Sprintf("spvPackHalf2x16(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtUnpackHalf2x16:
		w.requestHelper(helperUnpackHalf2x16)
		w.bindResult(instr, fmt.Sprintf("spvUnpackHalf2x16(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtPackDouble2x32:
		w.requestHelper(helperPackDouble2x32)
		w.bindResult(instr, fmt.Sprintf("spvPackDouble2x32(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtUnpackDouble2x32:
		w.requestHelper(helperUnpackDouble2x32)
		w.bindResult(instr, fmt.Sprintf("spvUnpackDouble2x32(%s)", w.operand(args[0])))
		return true, nil
	case ir.ExtPackSnorm4x8, ir.ExtPackUnorm4x8, ir.ExtPackSnorm2x16, ir.ExtPackUnorm2x16,
		ir.ExtUnpackSnorm2x16, ir.ExtUnpackUnorm2x16, ir.ExtUnpackSnorm4x8, ir.ExtUnpackUnorm4x8:
		w.bindResult(instr, fmt.Sprintf("%s(%s)", packUnormIntrinsic(instr.ExtOp), w.operand(args[0])))
		return true, nil
	}

	expr, handled, err := w.base.EmitGLSLOp(instr.ExtOp, instr.ResultType, args)
	if err != nil {
		return false, err
	}
	if handled {
		w.bindResult(instr, w.resolvePlaceholders(expr))
		return true, nil
	}
	return false, nil
}

// placeholderRef matches the "%<id>" tokens glslbase.Base.EmitGLSLOp emits
// in place of rendered operands (it has no naming state of its own).
var placeholderRef = regexp.MustCompile(`%(\d+)`)

// resolvePlaceholders substitutes each "%<id>" token in expr with the
// dialect's rendering of that operand.
func (w *Writer) resolvePlaceholders(expr string) string {
	return placeholderRef.ReplaceAllStringFunc(expr, func(tok string) string {
		n, err := strconv.ParseUint(tok[1:], 10, 32)
		if err != nil {
			return tok
		}
		return w.operand(ir.ID(n))
	})
}

func packUnormIntrinsic(op ir.ExtInst) string {
	switch op {
	case ir.ExtPackSnorm4x8:
		return "pack_float_to_snorm4x8"
	case ir.ExtPackUnorm4x8:
		return "pack_float_to_unorm4x8"
	case ir.ExtPackSnorm2x16:
		return "pack_float_to_snorm2x16"
	case ir.ExtPackUnorm2x16:
		return "pack_float_to_unorm2x16"
	case ir.ExtUnpackSnorm2x16:
		return "unpack_snorm2x16_to_float"
	case ir.ExtUnpackUnorm2x16:
		return "unpack_unorm2x16_to_float"
	case ir.ExtUnpackSnorm4x8:
		return "unpack_snorm4x8_to_float"
	case ir.ExtUnpackUnorm4x8:
		return "unpack_unorm4x8_to_float"
	default:
		return "/* unknown pack op */"
	}
}

package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvmsl/ir"
)

// emitFunctionBody lowers fn's blocks into MSL statements. Control flow is
// flattened to labels and goto rather than re-structured into nested
// if/while: MSL is a C++ dialect and accepts goto, and the driver loop
// (msl/backend.go) never needs to re-derive structured control flow once
// it has been lowered this way. Phi nodes are pre-declared at the top of
// the function and assigned by each predecessor block just before it
// transfers control, which is the standard SSA-to-goto lowering.
func (w *Writer) emitFunctionBody(fn *ir.Function) error {
	targets := w.branchTargets(fn)

	for _, localID := range fn.Locals {
		w.declareLocal(localID)
	}
	phiAssignments := w.declarePhis(fn)

	for _, blockID := range fn.Blocks {
		block := w.module.BlockAt(blockID)
		if block == nil {
			continue
		}
		if targets[blockID] {
			w.writeLine("spvLbl%d:;", blockID)
		}
		for _, instr := range block.Instructions {
			if instr.Op == ir.OpPhi {
				continue
			}
			if err := w.emitOneInstruction(instr); err != nil {
				return fmt.Errorf("block %d: %w", blockID, err)
			}
		}
		if err := w.emitTerminator(blockID, block.Terminator, phiAssignments); err != nil {
			return err
		}
	}
	return nil
}

// branchTargets returns the set of block IDs reached by some Branch or
// BranchConditional, so emitFunctionBody only prints labels that are
// actually jumped to.
func (w *Writer) branchTargets(fn *ir.Function) map[ir.ID]bool {
	targets := map[ir.ID]bool{}
	for _, blockID := range fn.Blocks {
		block := w.module.BlockAt(blockID)
		if block == nil {
			continue
		}
		for _, t := range block.Terminator.Targets {
			targets[t] = true
		}
	}
	return targets
}

func (w *Writer) declareLocal(id ir.ID) {
	v := w.module.VariableAt(id)
	if v == nil {
		return
	}
	name := w.ensureUniqueName(id, w.meta(id).Alias)
	if v.Initializer != ir.NullID {
		w.writeLine("%s %s = %s;", w.typeToMSL(v.Type), name, w.operand(v.Initializer))
		return
	}
	w.writeLine("%s %s = {};", w.typeToMSL(v.Type), name)
}

// phiAssignment records, for one predecessor block, which Phi destination
// gets which value when control transfers out of that predecessor.
type phiAssignment struct {
	destName string
	value    ir.ID
}

// declarePhis pre-declares every Phi result in fn and returns, for each
// predecessor block ID, the assignments that block must perform before
// transferring control. OpPhi operands are (value0, predecessor0, value1,
// predecessor1, ...), mirroring SPIR-V's own encoding.
func (w *Writer) declarePhis(fn *ir.Function) map[ir.ID][]phiAssignment {
	out := map[ir.ID][]phiAssignment{}
	for _, blockID := range fn.Blocks {
		block := w.module.BlockAt(blockID)
		if block == nil {
			continue
		}
		for _, instr := range block.Instructions {
			if instr.Op != ir.OpPhi {
				continue
			}
			name := w.ensureUniqueName(instr.Result, fmt.Sprintf("_%d", instr.Result))
			w.writeLine("%s %s;", w.typeToMSL(instr.ResultType), name)
			for i := 0; i+1 < len(instr.Operands); i += 2 {
				value, pred := instr.Operands[i], instr.Operands[i+1]
				out[pred] = append(out[pred], phiAssignment{destName: name, value: value})
			}
		}
	}
	return out
}

func (w *Writer) emitTerminator(blockID ir.ID, term ir.Terminator, phiAssignments map[ir.ID][]phiAssignment) error {
	switch term.Kind {
	case ir.TerminatorReturn:
		w.writeLine("return;")
	case ir.TerminatorReturnValue:
		w.writeLine("return %s;", w.operand(term.ReturnValue))
	case ir.TerminatorKill:
		w.writeLine("discard_fragment();")
		w.writeLine("return;")
	case ir.TerminatorUnreachable:
		w.writeLine("// unreachable")
	case ir.TerminatorBranch:
		w.emitPhiAssignments(blockID, phiAssignments)
		w.writeLine("goto spvLbl%d;", term.Targets[0])
	case ir.TerminatorBranchConditional:
		w.writeLine("if (%s) {", w.operand(term.Condition))
		w.pushIndent()
		w.emitPhiAssignments(blockID, phiAssignments)
		w.writeLine("goto spvLbl%d;", term.Targets[0])
		w.popIndent()
		w.writeLine("} else {")
		w.pushIndent()
		w.emitPhiAssignments(blockID, phiAssignments)
		w.writeLine("goto spvLbl%d;", term.Targets[1])
		w.popIndent()
		w.writeLine("}")
	}
	return nil
}

func (w *Writer) emitPhiAssignments(blockID ir.ID, phiAssignments map[ir.ID][]phiAssignment) {
	for _, a := range phiAssignments[blockID] {
		w.writeLine("%s = %s;", a.destName, w.operand(a.value))
	}
}

// emitOneInstruction runs the MSL-specific table, then the generic
// glslbase fallback, then this package's own generic opcode table.
func (w *Writer) emitOneInstruction(instr ir.Instruction) error {
	handled, err := w.EmitInstruction(instr)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}
	handled, err = w.base.EmitInstruction(instr)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}
	return w.emitGenericInstruction(instr)
}

var unaryOps = map[ir.Opcode]string{
	ir.OpSNegate: "-", ir.OpFNegate: "-",
	ir.OpNot: "~", ir.OpLogicalNot: "!",
}

// emitGenericInstruction handles every opcode that needs no MSL-specific
// rewrite: arithmetic, relational, logical, bitwise, conversions, and
// composite manipulation, plus structural no-ops (OpVariable/OpPhi
// appearing outside their special-cased homes).
func (w *Writer) emitGenericInstruction(instr ir.Instruction) error {
	if op, ok := binaryOps[instr.Op]; ok {
		w.bindResult(instr, fmt.Sprintf("(%s %s %s)", w.operand(instr.Operands[0]), op, w.operand(instr.Operands[1])))
		return nil
	}
	if op, ok := unaryOps[instr.Op]; ok {
		w.bindResult(instr, fmt.Sprintf("(%s%s)", op, w.operand(instr.Operands[0])))
		return nil
	}

	switch instr.Op {
	case ir.OpVariable, ir.OpFunctionParameter, ir.OpPhi, ir.OpLabel, ir.OpLoopMerge, ir.OpSelectionMerge:
		return nil

	case ir.OpLoad, ir.OpCopyObject:
		w.bindResult(instr, w.operand(instr.Operands[0]))
		return nil

	case ir.OpAccessChain, ir.OpInBoundsAccessChain:
		w.bindResult(instr, w.renderAccessChain(instr))
		return nil

	case ir.OpArrayLength:
		w.bindResult(instr, fmt.Sprintf("%s.size", w.operand(instr.Operands[0])))
		return nil

	case ir.OpCompositeConstruct:
		args := make([]string, len(instr.Operands))
		for i, o := range instr.Operands {
			args[i] = w.operand(o)
		}
		w.bindResult(instr, fmt.Sprintf("%s(%s)", w.typeToMSL(instr.ResultType), strings.Join(args, ", ")))
		return nil

	case ir.OpCompositeExtract:
		w.bindResult(instr, w.renderCompositeAccess(instr.Operands[0], instr.Operands[1:]))
		return nil

	case ir.OpCompositeInsert:
		return w.emitCompositeInsert(instr)

	case ir.OpVectorShuffle:
		w.bindResult(instr, w.renderVectorShuffle(instr))
		return nil

	case ir.OpTranspose:
		w.bindResult(instr, fmt.Sprintf("transpose(%s)", w.operand(instr.Operands[0])))
		return nil

	case ir.OpConvertFToU, ir.OpConvertFToS, ir.OpConvertSToF, ir.OpConvertUToF, ir.OpFConvert:
		w.bindResult(instr, fmt.Sprintf("%s(%s)", w.typeToMSL(instr.ResultType), w.operand(instr.Operands[0])))
		return nil

	case ir.OpBitcast:
		inType := w.module.TypeAt(w.exprType(instr.Operands[0]))
		outType := w.module.TypeAt(instr.ResultType)
		w.bindResult(instr, w.bitcastOp(w.operand(instr.Operands[0]), inType, outType))
		return nil

	case ir.OpVectorTimesScalar, ir.OpMatrixTimesScalar, ir.OpMatrixTimesMatrix:
		w.bindResult(instr, fmt.Sprintf("(%s * %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1])))
		return nil

	case ir.OpDot:
		w.bindResult(instr, fmt.Sprintf("dot(%s, %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1])))
		return nil

	case ir.OpOuterProduct:
		w.bindResult(instr, w.renderOuterProduct(instr))
		return nil

	case ir.OpSelect:
		w.bindResult(instr, fmt.Sprintf("select(%s, %s, %s)", w.operand(instr.Operands[2]), w.operand(instr.Operands[1]), w.operand(instr.Operands[0])))
		return nil
	case ir.OpAny:
		w.bindResult(instr, fmt.Sprintf("any(%s)", w.operand(instr.Operands[0])))
		return nil
	case ir.OpAll:
		w.bindResult(instr, fmt.Sprintf("all(%s)", w.operand(instr.Operands[0])))
		return nil
	case ir.OpIsNan:
		w.bindResult(instr, fmt.Sprintf("isnan(%s)", w.operand(instr.Operands[0])))
		return nil
	case ir.OpIsInf:
		w.bindResult(instr, fmt.Sprintf("isinf(%s)", w.operand(instr.Operands[0])))
		return nil

	case ir.OpFunctionCall:
		return w.emitFunctionCall(instr)

	case ir.OpImage, ir.OpSampledImage:
		w.bindResult(instr, w.operand(instr.Operands[0]))
		return nil

	case ir.OpSMod:
		w.bindResult(instr, fmt.Sprintf("(%s %% %s)", w.operand(instr.Operands[0]), w.operand(instr.Operands[1])))
		return nil
	}

	return unsupported("opcode %d has no MSL rendering", instr.Op)
}

func (w *Writer) emitFunctionCall(instr ir.Instruction) error {
	callee := instr.Operands[0]
	args := make([]string, 0, len(instr.Operands)-1)
	for _, o := range instr.Operands[1:] {
		args = append(args, w.operand(o))
	}
	call := fmt.Sprintf("%s(%s)", w.name(callee), strings.Join(args, ", "))
	w.bindResult(instr, call)
	return nil
}

// renderAccessChain walks base's type through each index operand,
// emitting ".mK" for a struct member step and "[expr]" for an array or
// vector component step.
func (w *Writer) renderAccessChain(instr ir.Instruction) string {
	base := instr.Operands[0]
	expr := w.operand(base)
	t := w.pointeeType(base)
	for _, idx := range instr.Operands[1:] {
		if t != nil && t.IsStruct() {
			k := w.constantIndex(idx)
			expr = fmt.Sprintf("%s.m%d", expr, k)
			if k < len(t.Members) {
				t = w.module.TypeAt(t.Members[k])
			}
			continue
		}
		expr = fmt.Sprintf("%s[%s]", expr, w.operand(idx))
		if t != nil && len(t.Members) == 1 {
			t = w.module.TypeAt(t.Members[0])
		}
	}
	return expr
}

func (w *Writer) renderCompositeAccess(base ir.ID, indices []ir.ID) string {
	expr := w.operand(base)
	t := w.module.TypeAt(w.exprType(base))
	for _, idx := range indices {
		k := w.constantIndex(idx)
		if t != nil && t.IsStruct() {
			expr = fmt.Sprintf("%s.m%d", expr, k)
			if k < len(t.Members) {
				t = w.module.TypeAt(t.Members[k])
			}
		} else {
			expr = fmt.Sprintf("%s[%d]", expr, k)
			if t != nil && len(t.Members) == 1 {
				t = w.module.TypeAt(t.Members[0])
			}
		}
	}
	return expr
}

// constantIndex decodes a literal index operand. Access-chain/composite
// indices are always OpConstant results in well-formed SPIR-V.
func (w *Writer) constantIndex(id ir.ID) int {
	if c := w.module.ConstantAt(id); c != nil {
		return int(c.Bits)
	}
	return 0
}

// emitCompositeInsert lowers to a copy-then-member-assign sequence since
// MSL, like SPIR-V, treats composites as value types with no in-place
// single-expression "insert" form.
func (w *Writer) emitCompositeInsert(instr ir.Instruction) error {
	value, base, indices := instr.Operands[0], instr.Operands[1], instr.Operands[2:]
	name := w.ensureUniqueName(instr.Result, fmt.Sprintf("_%d", instr.Result))
	w.writeLine("%s %s = %s;", w.typeToMSL(instr.ResultType), name, w.operand(base))
	lhs := w.renderCompositeAccess(instr.Result, indices)
	w.writeLine("%s = %s;", lhs, w.operand(value))
	return nil
}

var swizzleLetters = [4]byte{'x', 'y', 'z', 'w'}

// renderVectorShuffle builds a component-wise constructor call. SPIR-V
// indexes the concatenation of the two source vectors; 0xFFFFFFFF selects
// an undefined component, rendered as a zero literal.
func (w *Writer) renderVectorShuffle(instr ir.Instruction) string {
	v1, v2 := instr.Operands[0], instr.Operands[1]
	sel := instr.Operands[2:]
	n1 := w.vectorWidthOf(w.exprType(v1))

	parts := make([]string, len(sel))
	for i, s := range sel {
		idx := w.constantLiteralIndex(s)
		switch {
		case idx == 0xFFFFFFFF:
			parts[i] = "0"
		case uint32(idx) < uint32(n1):
			parts[i] = fmt.Sprintf("%s.%c", w.operand(v1), swizzleLetters[idx])
		default:
			parts[i] = fmt.Sprintf("%s.%c", w.operand(v2), swizzleLetters[idx-uint32(n1)])
		}
	}
	return fmt.Sprintf("%s(%s)", w.typeToMSL(instr.ResultType), strings.Join(parts, ", "))
}

// constantLiteralIndex decodes a VectorShuffle literal operand, which this
// IR represents the same way as any other constant-index operand.
func (w *Writer) constantLiteralIndex(id ir.ID) uint32 {
	if c := w.module.ConstantAt(id); c != nil {
		return uint32(c.Bits)
	}
	return uint32(id)
}

// renderOuterProduct expands column * row into an explicit per-column
// scalar-times-vector constructor: Metal's standard library has no
// generic outer_product entry point.
func (w *Writer) renderOuterProduct(instr ir.Instruction) string {
	col, row := instr.Operands[0], instr.Operands[1]
	rowWidth := w.vectorWidthOf(w.exprType(row))
	cols := make([]string, rowWidth)
	for i := 0; i < int(rowWidth); i++ {
		cols[i] = fmt.Sprintf("(%s * %s.%c)", w.operand(col), w.operand(row), swizzleLetters[i])
	}
	return fmt.Sprintf("%s(%s)", w.typeToMSL(instr.ResultType), strings.Join(cols, ", "))
}

package msl

import "github.com/gogpu/spvmsl/ir"

// opcodePrescanner walks every instruction reachable from the entry point
// exactly once before emission begins, populating the helper-function
// registry and a small set of header-relevant facts (spec.md §2 pass 7).
type opcodePrescanner struct {
	w       *Writer
	module  *ir.Module
	visited map[ir.ID]bool
}

func newOpcodePrescanner(w *Writer) *opcodePrescanner {
	return &opcodePrescanner{w: w, module: w.module, visited: map[ir.ID]bool{}}
}

func (p *opcodePrescanner) run(entryFnID ir.ID) {
	p.scanFunction(entryFnID)
	p.scanArrayLengthConstants()
}

// scanArrayLengthConstants marks every specialization constant that sizes
// an array type's outermost dimension, mirroring
// CompilerMSL::resolve_specialized_array_lengths's is_used_as_array_length
// flag (original_source/spirv_msl.cpp:199-209). Types are scanned
// module-wide rather than by call-graph reachability: an array type can be
// named only from a struct member or a pointer type that the entry point's
// instructions never directly reference by ID.
func (p *opcodePrescanner) scanArrayLengthConstants() {
	for _, e := range p.module.Pool {
		if e.Kind != ir.EntityType || e.Type == nil || !e.Type.IsArray() {
			continue
		}
		if id := e.Type.ArrayLengthConstant; id != ir.NullID {
			p.w.arrayLengthSpecConstants[id] = true
		}
	}
}

func (p *opcodePrescanner) scanFunction(fnID ir.ID) {
	if p.visited[fnID] {
		return
	}
	p.visited[fnID] = true
	fn := p.module.FunctionAt(fnID)
	if fn == nil {
		return
	}
	for _, blockID := range fn.Blocks {
		b := p.module.BlockAt(blockID)
		for _, instr := range b.Instructions {
			p.scanInstruction(instr)
		}
	}
}

func (p *opcodePrescanner) scanInstruction(instr ir.Instruction) {
	switch instr.Op {
	case ir.OpFunctionCall:
		if len(instr.Operands) > 0 {
			p.scanFunction(instr.Operands[0])
		}
	case ir.OpFMod:
		p.w.requestHelper(helperMod)
	case ir.OpStore:
		if instr.ResultType != ir.NullID {
			if t := p.module.TypeAt(instr.ResultType); t != nil && t.IsArray() {
				p.w.requestHelper(helperArrayCopy)
			}
		}
	case ir.OpAtomicLoad, ir.OpAtomicStore, ir.OpAtomicExchange, ir.OpAtomicCompareExchange,
		ir.OpAtomicIIncrement, ir.OpAtomicIDecrement, ir.OpAtomicIAdd, ir.OpAtomicISub,
		ir.OpAtomicSMin, ir.OpAtomicUMin, ir.OpAtomicSMax, ir.OpAtomicUMax,
		ir.OpAtomicAnd, ir.OpAtomicOr, ir.OpAtomicXor:
		p.w.usesAtomics = true
	case ir.OpControlBarrier, ir.OpMemoryBarrier:
		p.w.usesBarriers = true
	case ir.OpVectorTimesMatrix, ir.OpMatrixTimesVector, ir.OpMatrixTimesMatrix, ir.OpTranspose:
		p.scanMatrixShape(instr)
	case ir.OpExtInst:
		p.scanExtInst(instr)
	}
}

// scanMatrixShape requests a row-major/column-major converter for any
// non-square matrix operand observed in a matrix-involving instruction.
func (p *opcodePrescanner) scanMatrixShape(instr ir.Instruction) {
	for _, operand := range instr.Operands {
		expr := p.module.ExpressionAt(operand)
		if expr == nil {
			continue
		}
		t := p.module.TypeAt(expr.ResultType)
		if t != nil && t.IsMatrix() && t.MatrixCols != uint8(t.VectorSize) {
			p.w.helpers.requestConverter(t.MatrixCols, t.VectorSize)
		}
	}
}

func (p *opcodePrescanner) scanExtInst(instr ir.Instruction) {
	switch instr.ExtOp {
	case ir.ExtRadians:
		p.w.requestHelper(helperRadians)
	case ir.ExtDegrees:
		p.w.requestHelper(helperDegrees)
	case ir.ExtFindILsb:
		p.w.requestHelper(helperFindILsb)
	case ir.ExtFindUMsb:
		p.w.requestHelper(helperFindUMsb)
	case ir.ExtFindSMsb:
		p.w.requestHelper(helperFindSMsb)
	case ir.ExtMatrixInverse:
		n := p.matrixOperandSize(instr)
		if n > 0 {
			p.w.helpers.requestInverse(n)
		}
	case ir.ExtPackHalf2x16:
		p.w.requestHelper(helperPackHalf2x16)
	case ir.ExtUnpackHalf2x16:
		p.w.requestHelper(helperUnpackHalf2x16)
	case ir.ExtPackDouble2x32:
		p.w.requestHelper(helperPackDouble2x32)
	case ir.ExtUnpackDouble2x32:
		p.w.requestHelper(helperUnpackDouble2x32)
	}
}

func (p *opcodePrescanner) matrixOperandSize(instr ir.Instruction) uint8 {
	if len(instr.Operands) == 0 {
		return 0
	}
	expr := p.module.ExpressionAt(instr.Operands[0])
	if expr == nil {
		return 0
	}
	t := p.module.TypeAt(expr.ResultType)
	if t == nil || !t.IsMatrix() {
		return 0
	}
	return t.MatrixCols
}

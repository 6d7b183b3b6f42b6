package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvmsl/ir"
)

func TestOpcodePrescanner_RequestsModHelperForFMod(t *testing.T) {
	m := ir.NewModule()
	floatTy := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32})
	fn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{{Op: ir.OpFMod, ResultType: floatTy}},
		Terminator:   ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	w := newWriter(m, DefaultOptions(), nil, nil)
	newOpcodePrescanner(w).run(fn)

	assert.True(t, w.helpers.has(helperMod))
}

func TestOpcodePrescanner_SetsUsesAtomicsForAtomicIncrement(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{{Op: ir.OpAtomicIIncrement}},
		Terminator:   ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	w := newWriter(m, DefaultOptions(), nil, nil)
	newOpcodePrescanner(w).run(fn)

	assert.True(t, w.usesAtomics)
}

func TestOpcodePrescanner_ExtMatrixInverseRequestsInverseHelper(t *testing.T) {
	m := ir.NewModule()
	mat3Ty := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 3, MatrixCols: 3})
	operandID := m.NewExpression(ir.Expression{Op: ir.OpLoad, ResultType: mat3Ty})
	fn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{{Op: ir.OpExtInst, ExtOp: ir.ExtMatrixInverse, Operands: []ir.ID{operandID}}},
		Terminator:   ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	w := newWriter(m, DefaultOptions(), nil, nil)
	newOpcodePrescanner(w).run(fn)

	assert.True(t, w.helpers.has(helperInverse3x3))
	assert.True(t, w.helpers.has(helperDet2x2))
}

// TestOpcodePrescanner_MarksSpecConstantUsedAsArrayLength grounds the fix
// for resolveSpecializedArrayLengths: an array type whose outermost
// dimension names a specialization constant must mark that constant.
func TestOpcodePrescanner_MarksSpecConstantUsedAsArrayLength(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	specConst := m.NewConstant(ir.Constant{Type: uintTy, Kind: ir.ConstantSpecialization, Bits: 4, SpecID: 0})
	m.NewType(ir.Type{ArrayLengths: []uint32{4}, ArrayLengthConstant: specConst, Members: []ir.ID{uintTy}})

	fn := m.NewFunction(ir.Function{})
	block := ir.Block{Terminator: ir.Terminator{Kind: ir.TerminatorReturn}}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	w := newWriter(m, DefaultOptions(), nil, nil)
	newOpcodePrescanner(w).run(fn)

	assert.True(t, w.arrayLengthSpecConstants[specConst])
}

func TestOpcodePrescanner_LeavesUnrelatedSpecConstantUnmarked(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	specConst := m.NewConstant(ir.Constant{Type: uintTy, Kind: ir.ConstantSpecialization, Bits: 8, SpecID: 1})

	fn := m.NewFunction(ir.Function{})
	block := ir.Block{Terminator: ir.Terminator{Kind: ir.TerminatorReturn}}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	w := newWriter(m, DefaultOptions(), nil, nil)
	newOpcodePrescanner(w).run(fn)

	assert.False(t, w.arrayLengthSpecConstants[specConst])
}

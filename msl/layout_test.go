package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvmsl/ir"
)

func TestLayoutCalculator_UnpackedVec3OccupiesFourComponents(t *testing.T) {
	m := ir.NewModule()
	vec3 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 3})
	lc := newLayoutCalculator(m)

	assert.Equal(t, uint32(16), lc.size(vec3, false))
	assert.Equal(t, uint32(12), lc.size(vec3, true))
}

func TestLayoutCalculator_MatrixSizeAccountsForColumnPadding(t *testing.T) {
	m := ir.NewModule()
	mat3 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 3, MatrixCols: 3})
	lc := newLayoutCalculator(m)

	// Each column is padded to a float4, so a mat3 costs 3 * (4 * 4 bytes).
	assert.Equal(t, uint32(48), lc.size(mat3, false))
	assert.Equal(t, uint32(36), lc.size(mat3, true))
}

func TestLayoutCalculator_ArraySizeUsesStrideTimesLength(t *testing.T) {
	m := ir.NewModule()
	scalar := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32})
	arr := m.NewType(ir.Type{ArrayLengths: []uint32{4}, ArrayStride: 16, Members: []ir.ID{scalar}})
	lc := newLayoutCalculator(m)

	assert.Equal(t, uint32(64), lc.size(arr, false))
}

func TestLayoutCalculator_StructAlignmentIsSixteen(t *testing.T) {
	m := ir.NewModule()
	scalar := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32})
	st := m.NewType(ir.Type{Members: []ir.ID{scalar, scalar}})
	lc := newLayoutCalculator(m)

	assert.Equal(t, uint32(16), lc.alignment(st, false))
}

func TestAlignUp_RoundsToNextMultiple(t *testing.T) {
	assert.Equal(t, uint32(16), alignUp(1, 16))
	assert.Equal(t, uint32(16), alignUp(16, 16))
	assert.Equal(t, uint32(32), alignUp(17, 16))
	assert.Equal(t, uint32(5), alignUp(5, 0))
}

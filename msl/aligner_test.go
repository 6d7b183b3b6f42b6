package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvmsl/ir"
)

// buildVec3ThenFloatStruct builds `{vec3 a; float b;}` with offsets 0 and
// 12 (spec.md §8 scenario 6): MSL's natural vec3 alignment would place b at
// offset 16, so the aligner must mark a as packed to close the gap.
func buildVec3ThenFloatStruct(t *testing.T) (*ir.Module, ir.ID) {
	t.Helper()
	m := ir.NewModule()
	vec3 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 3})
	scalar := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32})
	st := m.NewType(ir.Type{Members: []ir.ID{vec3, scalar}})
	m.Meta.MemberAt(st, 0).Offset = 0
	m.Meta.MemberAt(st, 1).Offset = 12

	block := m.NewVariable(ir.Variable{Type: st, StorageClass: ir.StorageUniform})
	_ = block
	return m, st
}

func TestStructAligner_PacksVec3ToCloseGap(t *testing.T) {
	m, st := buildVec3ThenFloatStruct(t)
	w := newWriter(m, DefaultOptions(), nil, nil)

	a := newStructAligner(w)
	a.markPackableStructs()
	a.align(st)

	assert.True(t, w.shouldPackMember(st, 0), "vec3 member should be marked packed to avoid a gap before the float")
	assert.Equal(t, uint32(0), w.paddingFor(st, 0))
	assert.Equal(t, uint32(0), w.paddingFor(st, 1), "no padding needed once a is packed to 12 bytes")
}

func TestStructAligner_SkipsStructsNeverReachedThroughAResourceVariable(t *testing.T) {
	m := ir.NewModule()
	vec3 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 3})
	scalar := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32})
	st := m.NewType(ir.Type{Members: []ir.ID{vec3, scalar}})
	m.Meta.MemberAt(st, 0).Offset = 0
	m.Meta.MemberAt(st, 1).Offset = 12
	w := newWriter(m, DefaultOptions(), nil, nil)

	a := newStructAligner(w)
	a.markPackableStructs()
	a.align(st)

	assert.False(t, w.shouldPackMember(st, 0), "a struct never referenced through a resource variable is not CPacked")
}

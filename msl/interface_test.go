package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvmsl/ir"
)

func TestInterfaceBuilder_ScalarOnlyInputProducesNoSecondaryBuffers(t *testing.T) {
	m := ir.NewModule()
	vec4 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 4})
	inPos := m.NewVariable(ir.Variable{Type: vec4, StorageClass: ir.StorageInput})
	m.Meta.Get(inPos).Flags |= ir.DecorationLocation
	m.Meta.Get(inPos).Alias = "inPosition"
	m.InterfaceVars = []ir.ID{inPos}
	m.ExecutionModel = ir.ExecutionVertex

	w := newWriter(m, DefaultOptions(), nil, nil)
	ib := newInterfaceBuilder(w)

	structVar, err := ib.build(ir.StorageInput)
	require.NoError(t, err)
	assert.NotEqual(t, ir.NullID, structVar)
	assert.Empty(t, w.secondaryBuffers)
}

// TestInterfaceBuilder_MatrixInputDivertsToSecondaryBuffer exercises spec.md
// §8 scenario 2: a mat4 vertex-stage-in member cannot live in stage_in, so
// it lands in a per-buffer fallback block indexed by gl_VertexIndex.
func TestInterfaceBuilder_MatrixInputDivertsToSecondaryBuffer(t *testing.T) {
	m := ir.NewModule()
	mat4 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 4, MatrixCols: 4})
	inModel := m.NewVariable(ir.Variable{Type: mat4, StorageClass: ir.StorageInput})
	m.Meta.Get(inModel).Flags |= ir.DecorationLocation
	m.Meta.Get(inModel).Location = 0
	m.Meta.Get(inModel).Alias = "inModel"
	m.InterfaceVars = []ir.ID{inModel}
	m.ExecutionModel = ir.ExecutionVertex

	w := newWriter(m, DefaultOptions(), nil, nil)
	w.vtxAttrs = []VertexAttributeBinding{{Location: 0, MSLBuffer: 2, MSLOffset: 0, MSLStride: 64}}
	ib := newInterfaceBuilder(w)

	structVar, err := ib.build(ir.StorageInput)
	require.NoError(t, err)
	assert.Equal(t, ir.NullID, structVar, "the matrix was the only input, so no stage_in struct remains")
	require.Contains(t, w.secondaryBuffers, uint32(2))
	assert.True(t, w.vtxAttrs[0].UsedByShader)
	assert.True(t, w.needsVertexIndexParam)
	assert.False(t, w.needsInstanceIndexParam)
}

func TestInterfaceBuilder_MatrixInputWithoutBindingFails(t *testing.T) {
	m := ir.NewModule()
	mat4 := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 4, MatrixCols: 4})
	inModel := m.NewVariable(ir.Variable{Type: mat4, StorageClass: ir.StorageInput})
	m.Meta.Get(inModel).Flags |= ir.DecorationLocation
	m.InterfaceVars = []ir.ID{inModel}
	m.ExecutionModel = ir.ExecutionVertex

	w := newWriter(m, DefaultOptions(), nil, nil)
	ib := newInterfaceBuilder(w)

	_, err := ib.build(ir.StorageInput)
	require.Error(t, err)
	var diag *Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, KindInvalidInput, diag.Kind)
}

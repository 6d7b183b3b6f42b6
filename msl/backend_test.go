package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvmsl/ir"
)

// buildMinimalVertexModule mirrors the teacher-grounded IR fixture style in
// ir/validate_test.go: a position-passthrough vertex shader with one
// attribute input and the Position built-in output.
func buildMinimalVertexModule(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule()

	vec4Ty := m.NewType(ir.Type{Kind: ir.ScalarFloat, Width: 32, VectorSize: 4})

	inPos := m.NewVariable(ir.Variable{Type: vec4Ty, StorageClass: ir.StorageInput})
	m.Meta.Get(inPos).Flags |= ir.DecorationLocation
	m.Meta.Get(inPos).Location = 0
	m.Meta.Get(inPos).Alias = "inPosition"

	outPos := m.NewVariable(ir.Variable{Type: vec4Ty, StorageClass: ir.StorageOutput})
	m.Meta.Get(outPos).Flags |= ir.DecorationBuiltIn
	m.Meta.Get(outPos).BuiltIn = ir.BuiltInPosition

	fn := m.NewFunction(ir.Function{})

	loadID := m.NextID()
	m.NewExpression(ir.Expression{Op: ir.OpLoad, ResultType: vec4Ty, Operands: []ir.ID{inPos}})

	block := ir.Block{
		Instructions: []ir.Instruction{
			{Op: ir.OpLoad, ResultType: vec4Ty, Result: loadID, Operands: []ir.ID{inPos}},
			{Op: ir.OpStore, Operands: []ir.ID{outPos, loadID}},
		},
		Terminator: ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ir.ExecutionVertex
	m.InterfaceVars = []ir.ID{inPos, outPos}
	return m
}

// buildMinimalComputeModule builds a one-instruction compute kernel that
// reads its global invocation id and discards it, exercising the
// no-stage_in compute signature convention (backend.go's
// computeBuiltinParams).
func buildMinimalComputeModule(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule()

	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	uvec3Ty := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32, VectorSize: 3})

	gid := m.NewVariable(ir.Variable{Type: uvec3Ty, StorageClass: ir.StorageInput})
	m.Meta.Get(gid).Flags |= ir.DecorationBuiltIn
	m.Meta.Get(gid).BuiltIn = ir.BuiltInGlobalInvocationId

	fn := m.NewFunction(ir.Function{})
	loadID := m.NextID()
	m.NewExpression(ir.Expression{Op: ir.OpLoad, ResultType: uvec3Ty, Operands: []ir.ID{gid}})
	_ = uintTy

	block := ir.Block{
		Instructions: []ir.Instruction{
			{Op: ir.OpLoad, ResultType: uvec3Ty, Result: loadID, Operands: []ir.ID{gid}},
		},
		Terminator: ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ir.ExecutionGLCompute
	m.Modes[ir.ModeLocalSize] = []uint32{1, 1, 1}
	m.InterfaceVars = []ir.ID{gid}
	return m
}

func TestCompile_NilModule(t *testing.T) {
	_, _, err := Compile(nil, Options{}, nil, nil)
	require.Error(t, err)
	var diag *Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, KindInvalidInput, diag.Kind)
}

func TestCompile_VertexPassthrough(t *testing.T) {
	m := buildMinimalVertexModule(t)

	src, info, err := Compile(m, DefaultOptions(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, src, "#include <metal_stdlib>")
	assert.Contains(t, src, "using namespace metal;")
	assert.Contains(t, src, "vertex ")
	assert.Contains(t, src, "[[stage_in]]")
	assert.Contains(t, src, "[[position]]")
	assert.Contains(t, src, "[[attribute(0)]]")
	assert.Contains(t, src, "return ")

	assert.Equal(t, "main0", info.EntryPointName)
}

func TestCompile_ComputeHasNoStageIn(t *testing.T) {
	m := buildMinimalComputeModule(t)

	src, _, err := Compile(m, DefaultOptions(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, src, "kernel void main0(")
	assert.Contains(t, src, "[[thread_position_in_grid]]")
	assert.NotContains(t, src, "[[stage_in]]")
}

func TestCompile_DeterministicAcrossRuns(t *testing.T) {
	src1, _, err := Compile(buildMinimalVertexModule(t), DefaultOptions(), nil, nil)
	require.NoError(t, err)
	src2, _, err := Compile(buildMinimalVertexModule(t), DefaultOptions(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, src1, src2)
}

func TestCompile_DefaultsOptionsWhenZero(t *testing.T) {
	m := buildMinimalVertexModule(t)
	_, _, err := Compile(m, Options{}, nil, nil)
	require.NoError(t, err)
}

func TestCompile_RejectsEntryPointNotAFunction(t *testing.T) {
	m := ir.NewModule()
	bogus := m.NewVariable(ir.Variable{})
	m.EntryPoint = bogus
	m.ExecutionModel = ir.ExecutionVertex

	_, _, err := Compile(m, DefaultOptions(), nil, nil)
	require.Error(t, err)
	var diag *Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, KindInvalidInput, diag.Kind)
}

func TestTranslationInfo_StageInVertexAttributeNotReportedAsUsed(t *testing.T) {
	m := buildMinimalVertexModule(t)
	vtxAttrs := []VertexAttributeBinding{{Location: 0, MSLBuffer: 1}}

	_, info, err := Compile(m, DefaultOptions(), vtxAttrs, nil)
	require.NoError(t, err)
	// The sole attribute is scalar/vector, not matrix/array, so it stays
	// in stage_in rather than diverting to a secondary buffer; the
	// caller-supplied binding is therefore never consulted.
	assert.Empty(t, info.UsedVertexAttributes)
}

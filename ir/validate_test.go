package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMinimalVertexModule(t *testing.T) *Module {
	t.Helper()
	m := NewModule()

	floatTy := m.NewType(Type{Kind: ScalarFloat, Width: 32})
	vec4Ty := m.NewType(Type{Kind: ScalarFloat, Width: 32, VectorSize: 4})

	inPos := m.NewVariable(Variable{Type: vec4Ty, StorageClass: StorageInput})
	m.Meta.Get(inPos).Flags |= DecorationLocation
	m.Meta.Get(inPos).Location = 0

	outPos := m.NewVariable(Variable{Type: vec4Ty, StorageClass: StorageOutput})
	m.Meta.Get(outPos).Flags |= DecorationBuiltIn
	m.Meta.Get(outPos).BuiltIn = BuiltInPosition

	fn := m.NewFunction(Function{ReturnType: floatTy})

	loadID := m.NextID()
	m.NewExpression(Expression{Op: OpLoad, ResultType: vec4Ty, Operands: []ID{inPos}})

	block := Block{
		Instructions: []Instruction{
			{Op: OpLoad, ResultType: vec4Ty, Result: loadID, Operands: []ID{inPos}},
			{Op: OpStore, Operands: []ID{outPos, loadID}},
		},
		Terminator: Terminator{Kind: TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ID{blockID}

	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ExecutionVertex
	m.InterfaceVars = []ID{inPos, outPos}
	return m
}

func TestValidate_ValidModule(t *testing.T) {
	m := buildMinimalVertexModule(t)
	errs, err := Validate(m)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidate_NilModule(t *testing.T) {
	errs, err := Validate(nil)
	require.Error(t, err)
	assert.Nil(t, errs)
}

func TestValidate_RejectsOutOfBoundID(t *testing.T) {
	m := NewModule()
	bogus := ID(999)
	m.NewVariable(Variable{Type: bogus})

	errs, err := Validate(m)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "exceeds pool upper bound")
}

func TestValidate_RejectsPointerStorageMismatch(t *testing.T) {
	m := NewModule()
	ptrTy := m.NewType(Type{Pointer: true, StorageClass: StorageUniform})
	varID := m.NewVariable(Variable{Type: ptrTy, StorageClass: StorageStorageBuffer})

	errs, err := Validate(m)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, varID, errs[0].ID)
	assert.Contains(t, errs[0].Error(), "disagrees with pointer type storage class")
}

func TestValidate_RejectsDanglingBlockReference(t *testing.T) {
	m := NewModule()
	fn := m.NewFunction(Function{})
	m.FunctionAt(fn).Blocks = []ID{ID(999)}

	errs, err := Validate(m)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Function == fn {
			found = true
			assert.Contains(t, e.Error(), "non-block id")
		}
	}
	assert.True(t, found, "expected a dangling-block error attributed to the owning function")
}

func TestValidate_RejectsDanglingTerminatorTarget(t *testing.T) {
	m := NewModule()
	b := m.NewBlock(Block{Terminator: Terminator{Kind: TerminatorBranch, Targets: []ID{ID(999)}}})
	fn := m.NewFunction(Function{Blocks: []ID{b}})
	_ = fn

	errs, err := Validate(m)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[len(errs)-1].Error(), "targets non-block id")
}

func TestValidateNoModuleScopeLocals_RejectsPrivateSurvivor(t *testing.T) {
	m := NewModule()
	floatTy := m.NewType(Type{Kind: ScalarFloat, Width: 32})
	leftover := m.NewVariable(Variable{Type: floatTy, StorageClass: StoragePrivate})

	err := ValidateNoModuleScopeLocals(m, []ID{leftover})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "left module-scope variable")
}

func TestValidateNoModuleScopeLocals_AllowsFunctionStorage(t *testing.T) {
	m := NewModule()
	floatTy := m.NewType(Type{Kind: ScalarFloat, Width: 32})
	param := m.NewVariable(Variable{Type: floatTy, StorageClass: StorageFunction})

	err := ValidateNoModuleScopeLocals(m, []ID{param})
	assert.NoError(t, err)
}

package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvmsl/ir"
)

func TestGlobalLocalizer_DemotesEntryScopedWorkgroupVariable(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	shared := m.NewVariable(ir.Variable{Type: uintTy, StorageClass: ir.StorageWorkgroup})

	entryFn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{{Op: ir.OpStore, Operands: []ir.ID{shared, shared}}},
		Terminator:   ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(entryFn).Blocks = []ir.ID{blockID}
	m.EntryPoint = entryFn
	m.ExecutionModel = ir.ExecutionGLCompute

	w := newWriter(m, DefaultOptions(), nil, nil)
	require.NoError(t, newGlobalLocalizer(w).run(entryFn))

	v := m.VariableAt(shared)
	assert.Equal(t, ir.StorageFunction, v.StorageClass)
	assert.Contains(t, m.FunctionAt(entryFn).Locals, shared)
}

// TestGlobalLocalizer_ThreadsPrivateGlobalOntoCallee exercises spec.md
// §4.3: a Private global accessed only by a non-entry function must be
// threaded onto that function's parameter list, not left module-scope.
func TestGlobalLocalizer_ThreadsPrivateGlobalOntoCallee(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	counter := m.NewVariable(ir.Variable{Type: uintTy, StorageClass: ir.StoragePrivate})

	callee := m.NewFunction(ir.Function{})
	calleeBlock := ir.Block{
		Instructions: []ir.Instruction{{Op: ir.OpStore, Operands: []ir.ID{counter, counter}}},
		Terminator:   ir.Terminator{Kind: ir.TerminatorReturn},
	}
	calleeBlockID := m.NewBlock(calleeBlock)
	m.FunctionAt(callee).Blocks = []ir.ID{calleeBlockID}

	entryFn := m.NewFunction(ir.Function{})
	entryBlock := ir.Block{
		Instructions: []ir.Instruction{{Op: ir.OpFunctionCall, Operands: []ir.ID{callee}}},
		Terminator:   ir.Terminator{Kind: ir.TerminatorReturn},
	}
	entryBlockID := m.NewBlock(entryBlock)
	m.FunctionAt(entryFn).Blocks = []ir.ID{entryBlockID}
	m.EntryPoint = entryFn
	m.ExecutionModel = ir.ExecutionGLCompute

	w := newWriter(m, DefaultOptions(), nil, nil)
	require.NoError(t, newGlobalLocalizer(w).run(entryFn))

	calleeFn := m.FunctionAt(callee)
	require.Len(t, calleeFn.Parameters, 1)
	newParam := calleeFn.Parameters[0]
	assert.Equal(t, ir.StorageFunction, m.VariableAt(newParam).StorageClass)

	body := m.BlockAt(calleeFn.Blocks[0])
	assert.Equal(t, newParam, body.Instructions[0].Operands[0], "the store inside callee must now target the threaded parameter")

	call := m.BlockAt(entryBlockID).Instructions[0]
	assert.Contains(t, call.Operands, newParam, "the call site must pass the threaded global as an argument")
}

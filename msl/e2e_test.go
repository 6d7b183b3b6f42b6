package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvmsl/ir"
)

// TestCompile_AtomicCounterIncrement exercises spec.md §8 scenario 3: a
// uint storage-buffer member incremented via OpAtomicIIncrement lowers to
// Metal's explicit-memory-order atomic intrinsic.
func TestCompile_AtomicCounterIncrement(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	counter := m.NewVariable(ir.Variable{Type: uintTy, StorageClass: ir.StorageStorageBuffer})
	m.Meta.Get(counter).Alias = "counter"

	fn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{
			{Op: ir.OpAtomicIIncrement, ResultType: uintTy, Operands: []ir.ID{counter}},
		},
		Terminator: ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}
	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ir.ExecutionGLCompute
	m.Modes[ir.ModeLocalSize] = []uint32{1, 1, 1}

	src, _, err := Compile(m, DefaultOptions(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, src, "atomic_fetch_add_explicit((volatile device atomic_uint*)&counter, 1, memory_order_relaxed);")
}

// TestCompile_WorkgroupBarrierSuppressesFollowingControlBarrier exercises
// spec.md §8 scenario 5: memoryBarrierShared(); barrier(); emits exactly
// one threadgroup_barrier, because the control barrier immediately
// following a memory barrier is combined into it.
func TestCompile_WorkgroupBarrierSuppressesFollowingControlBarrier(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	memScope := m.NewConstant(ir.Constant{Type: uintTy, Kind: ir.ConstantScalar, Bits: scopeWorkgroup})
	semantics := m.NewConstant(ir.Constant{Type: uintTy, Kind: ir.ConstantScalar, Bits: semanticsWorkgroupMemory})

	fn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{
			{Op: ir.OpMemoryBarrier, Operands: []ir.ID{memScope, semantics}},
			{Op: ir.OpControlBarrier, Operands: []ir.ID{memScope, memScope, semantics}},
		},
		Terminator: ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}
	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ir.ExecutionGLCompute
	m.Modes[ir.ModeLocalSize] = []uint32{1, 1, 1}

	src, _, err := Compile(m, DefaultOptions(), nil, nil)
	require.NoError(t, err)

	count := 0
	for i := 0; i+len("threadgroup_barrier") <= len(src); i++ {
		if src[i:i+len("threadgroup_barrier")] == "threadgroup_barrier" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the control barrier immediately following a memory barrier must be suppressed")
	assert.Contains(t, src, "threadgroup_barrier(mem_flags::mem_threadgroup);")
}

// TestCompile_CrossWorkgroupMemoryBarrierUsesMemDevice exercises the
// mem_device branch of memoryFlagsFromSemantics that was previously dead:
// a barrier with a cross-workgroup (SSBO) semantics bit must not fall back
// to mem_threadgroup.
func TestCompile_CrossWorkgroupMemoryBarrierUsesMemDevice(t *testing.T) {
	m := ir.NewModule()
	uintTy := m.NewType(ir.Type{Kind: ir.ScalarUint, Width: 32})
	memScope := m.NewConstant(ir.Constant{Type: uintTy, Kind: ir.ConstantScalar, Bits: scopeDevice})
	semantics := m.NewConstant(ir.Constant{Type: uintTy, Kind: ir.ConstantScalar, Bits: semanticsCrossWorkgroupMemory})

	fn := m.NewFunction(ir.Function{})
	block := ir.Block{
		Instructions: []ir.Instruction{
			{Op: ir.OpMemoryBarrier, Operands: []ir.ID{memScope, semantics}},
		},
		Terminator: ir.Terminator{Kind: ir.TerminatorReturn},
	}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}
	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ir.ExecutionGLCompute
	m.Modes[ir.ModeLocalSize] = []uint32{1, 1, 1}

	src, _, err := Compile(m, DefaultOptions(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, src, "threadgroup_barrier(mem_flags::mem_device);")
}

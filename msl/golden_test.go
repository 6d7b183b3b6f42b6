package msl

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvmsl/ir"
)

// buildEmptyVertexModule builds the smallest possible entry point: a
// vertex shader with no interface variables and a single block that
// returns immediately. Kept minimal deliberately, so its MSL output is
// exactly the driver loop's header-plus-empty-function shape with none of
// the interface/struct/resource machinery engaged.
func buildEmptyVertexModule(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule()

	fn := m.NewFunction(ir.Function{})
	block := ir.Block{Terminator: ir.Terminator{Kind: ir.TerminatorReturn}}
	blockID := m.NewBlock(block)
	m.FunctionAt(fn).Blocks = []ir.ID{blockID}

	m.EntryPoint = fn
	m.EntryName = "main"
	m.ExecutionModel = ir.ExecutionVertex
	return m
}

func TestGolden_EmptyVertexEntryPoint(t *testing.T) {
	m := buildEmptyVertexModule(t)
	src, _, err := Compile(m, DefaultOptions(), nil, nil)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".msl"),
	)
	g.Assert(t, "empty_vertex_entry_point", []byte(src))
}

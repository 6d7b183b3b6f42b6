package ir

import "testing"

func TestModule_NullIDNeverAllocated(t *testing.T) {
	m := NewModule()
	if m.NextID() != 1 {
		t.Fatalf("expected first allocatable id to be 1, got %d", m.NextID())
	}
	id := m.NewType(Type{Kind: ScalarBool})
	if id == NullID {
		t.Fatalf("NewType returned the null id")
	}
}

func TestMeta_CloneFromCopiesDecorationsNotAlias(t *testing.T) {
	m := NewModule()
	src := m.NewVariable(Variable{})
	rec := m.Meta.Get(src)
	rec.Flags |= DecorationLocation
	rec.Location = 3
	rec.QualifiedAlias = "in.position"

	dst := m.NewVariable(Variable{})
	m.Meta.CloneFrom(dst, src)

	dstRec := m.Meta.Get(dst)
	if dstRec.Location != 3 || !dstRec.Flags.Has(DecorationLocation) {
		t.Fatalf("expected cloned decorations, got %+v", dstRec)
	}
	if dstRec.QualifiedAlias != "" {
		t.Fatalf("CloneFrom must not copy path-specific QualifiedAlias, got %q", dstRec.QualifiedAlias)
	}
}

package msl

import "github.com/gogpu/spvmsl/ir"

// structAligner implements spec.md §4.4's two-pass procedure: given a
// struct type marked CPacked, assign per-member packing decisions and
// padding lengths such that every member's emitted offset equals its
// SPIR-V Offset decoration.
type structAligner struct {
	module *ir.Module
	lc     *layoutCalculator
	w      *Writer
}

func newStructAligner(w *Writer) *structAligner {
	return &structAligner{module: w.module, lc: newLayoutCalculator(w.module), w: w}
}

// markPackableStructs walks every Uniform/UniformConstant/PushConstant/
// StorageBuffer variable and recursively flags the struct types reachable
// through it as CPacked (spec.md §3 Invariants: "structs reachable
// transitively through Uniform/UniformConstant/PushConstant/StorageBuffer
// variables are recursively packable"). Grounded on
// CompilerMSL::mark_packable_structs / mark_as_packable
// (original_source/spirv_msl.cpp:331).
func (a *structAligner) markPackableStructs() {
	seen := map[ir.ID]bool{}
	for id, e := range a.module.Pool {
		if e.Kind != ir.EntityVariable {
			continue
		}
		switch e.Variable.StorageClass {
		case ir.StorageUniform, ir.StorageUniformConstant, ir.StoragePushConstant, ir.StorageStorageBuffer:
		default:
			continue
		}
		_ = id
		a.markAsPackable(e.Variable.Type, seen)
	}
}

func (a *structAligner) markAsPackable(typeID ir.ID, seen map[ir.ID]bool) {
	if typeID == ir.NullID || seen[typeID] {
		return
	}
	seen[typeID] = true
	t := a.module.TypeAt(typeID)
	if t == nil {
		return
	}
	if t.Pointer {
		if len(t.Members) == 1 {
			a.markAsPackable(t.Members[0], seen)
		}
		return
	}
	if t.IsArray() {
		if len(t.Members) == 1 {
			a.markAsPackable(t.Members[0], seen)
		}
		return
	}
	if !t.IsStruct() {
		return
	}
	a.w.meta(typeID).Flags |= ir.DecorationCPacked
	for _, m := range t.Members {
		a.markAsPackable(m, seen)
	}
}

// align runs the two-pass procedure for one struct type id. It only acts
// on structs whose CPacked decoration is set.
func (a *structAligner) align(structID ir.ID) {
	rec := a.w.meta(structID)
	if !rec.Flags.Has(ir.DecorationCPacked) {
		return
	}
	t := a.module.TypeAt(structID)
	if t == nil || !t.IsStruct() {
		return
	}

	order := make([]int, len(t.Members))
	for i := range order {
		order[i] = i
	}
	declOffset := func(i int) uint32 { return a.module.Meta.MemberAt(structID, i).Offset }
	// Sort members by declared offset.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && declOffset(order[j]) < declOffset(order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	// Pass 1: detect members that must be packed because a following
	// member's declared offset falls below where natural alignment would
	// place it.
	var cursor uint32
	for pos, idx := range order {
		memberType := t.Members[idx]
		mt := a.module.TypeAt(memberType)
		naturalAlign := a.lc.alignment(memberType, false)
		expected := alignUp(cursor, naturalAlign)
		if declOffset(idx) < expected && pos > 0 {
			prevIdx := order[pos-1]
			if a.isPackable(t.Members[prevIdx]) {
				a.setPacked(structID, prevIdx)
			}
		}
		packed := a.isMemberPacked(structID, idx)
		size := a.lc.size(memberType, packed)
		_ = mt
		cursor = declOffset(idx) + size
	}

	// Pass 2: reset and record padding.
	cursor = 0
	for _, idx := range order {
		memberType := t.Members[idx]
		packed := a.isMemberPacked(structID, idx)
		off := declOffset(idx)
		if off > cursor {
			a.w.padding[padKey{structType: structID, member: idx}] = off - cursor
			cursor = off
		}
		cursor += a.lc.size(memberType, packed)
	}
}

// isPackable reports whether memberType is eligible for auto-packing:
// currently only a 3-component, column-major vector member (spec.md
// §4.4: "if it is packable (currently: any 3-vector column-major
// member)").
func (a *structAligner) isPackable(memberType ir.ID) bool {
	t := a.module.TypeAt(memberType)
	if t == nil {
		return false
	}
	return t.IsVector() && t.VectorSize == 3
}

func (a *structAligner) setPacked(structID ir.ID, memberIdx int) {
	a.w.packed[padKey{structType: structID, member: memberIdx}] = struct{}{}
}

func (a *structAligner) isMemberPacked(structID ir.ID, memberIdx int) bool {
	_, ok := a.w.packed[padKey{structType: structID, member: memberIdx}]
	return ok
}

// paddingFor returns the padding byte count the aligner recorded for one
// member, or 0 if none is needed.
func (w *Writer) paddingFor(structID ir.ID, memberIdx int) uint32 {
	return w.padding[padKey{structType: structID, member: memberIdx}]
}

// shouldPackMember reports whether member memberIdx of struct structID was
// marked packed by the aligner.
func (w *Writer) shouldPackMember(structID ir.ID, memberIdx int) bool {
	_, ok := w.packed[padKey{structType: structID, member: memberIdx}]
	return ok
}

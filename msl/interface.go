package msl

import (
	"fmt"

	"github.com/gogpu/spvmsl/ir"
)

// unknownLocation is the sentinel location value for members whose
// attribute comes from a buffer binding rather than a `[[location(N)]]`
// (spec.md §4.2 "flag the location as k_unknown_location").
const unknownLocation = ^uint32(0)

// secondaryBufferBlock is one per-buffer fallback struct synthesized when
// a matrix- or array-typed vertex-stage-in member cannot live in
// stage_in (spec.md §4.2 "Vertex-attribute diversion").
type secondaryBufferBlock struct {
	typeID    ir.ID
	varID     ir.ID
	msBuffer  uint32
	perInstance bool
}

// interfaceBuilder synthesizes the single stage_in struct, the single
// return-struct, and per-buffer fallback structs from a module's loose
// interface variables (spec.md §4.2).
type interfaceBuilder struct {
	w      *Writer
	module *ir.Module
}

func newInterfaceBuilder(w *Writer) *interfaceBuilder {
	return &interfaceBuilder{w: w, module: w.module}
}

// candidateMember is one synthesized-struct member flattened from a loose
// interface variable (or one member of a loose block variable).
type candidateMember struct {
	sourceID  ir.ID // the original variable or the struct member's owning variable
	memberIdx int    // -1 if sourceID itself is the member (not a struct hoist)
	typeID    ir.ID
	name      string
	location  uint32
	hasLoc    bool
	isBuiltIn bool
	builtIn   ir.BuiltIn
}

// build synthesizes the interface block for storage (Input, Output, or
// UniformConstant) and returns its variable ID, or ir.NullID if no
// qualifying members exist.
func (ib *interfaceBuilder) build(storage ir.StorageClass) (ir.ID, error) {
	members := ib.collect(storage)
	if len(members) == 0 {
		return ir.NullID, nil
	}

	isVertex := ib.module.ExecutionModel == ir.ExecutionVertex
	isFragment := ib.module.ExecutionModel == ir.ExecutionFragment

	var kept []candidateMember
	for _, m := range members {
		t := ib.module.TypeAt(m.typeID)
		isAggregate := t != nil && (t.IsMatrix() || t.IsArray())
		if !isAggregate || m.isBuiltIn {
			kept = append(kept, m)
			continue
		}
		switch {
		case isVertex && storage == ir.StorageInput:
			if err := ib.divertToSecondaryBuffer(m); err != nil {
				return ir.NullID, err
			}
			continue
		case isFragment:
			return ir.NullID, unsupported("fragment %s structure contains a matrix or array member %q, which Metal forbids in a loose interface variable",
				storageLabel(storage), m.name)
		case isVertex && storage == ir.StorageOutput:
			return ir.NullID, unsupported("vertex output structure contains a matrix or array member %q, which Metal forbids in stage-out", m.name)
		default:
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return ir.NullID, nil
	}

	keys := make([]sortKey, len(kept))
	for i, m := range kept {
		keys[i] = sortKey{index: i, location: m.location, name: m.name, isBuiltIn: m.isBuiltIn}
	}
	criteria := sortLocationAscending
	if storage == ir.StorageInput {
		criteria = sortLocationDescending
	}
	newMemberSorter(criteria).sort(keys)

	memberTypes := make([]ir.ID, len(keys))
	structID := ib.module.NewType(ir.Type{})
	varID := ib.module.NewVariable(ir.Variable{Type: ir.NullID, StorageClass: storage})
	initID := ib.module.NewUndef(ir.Undef{})
	_ = initID

	synthName := ib.structNameFor(storage)
	ib.w.typeNames[structID] = ib.w.disambiguateTypeName(synthName + "_t")
	varName := ib.w.ensureUniqueName(varID, synthName)

	for pos, k := range keys {
		m := kept[k.index]
		memberTypes[pos] = m.typeID

		rec := ib.module.Meta.MemberAt(structID, pos)
		// Members are declared and accessed by positional name ("mN"),
		// matching every access-chain/composite/store rendering in
		// msl/statements.go and msl/expressions.go; the sanitized
		// source name is not recorded on the member.
		rec.Name = fmt.Sprintf("m%d", pos)
		if m.hasLoc {
			rec.Flags |= ir.DecorationLocation
			rec.Location = m.location
		}
		if m.isBuiltIn {
			rec.Flags |= ir.DecorationBuiltIn
			rec.BuiltIn = m.builtIn
		}
		rec.QualifiedName = fmt.Sprintf("%s.%s", varName, rec.Name)
		ib.module.Meta.Get(m.sourceID).QualifiedAlias = rec.QualifiedName
	}

	st := ib.module.TypeAt(structID)
	st.Members = memberTypes
	vv := ib.module.VariableAt(varID)
	vv.Type = structID

	ib.w.meta(structID).Flags |= ir.DecorationBlock

	return varID, nil
}

func storageLabel(s ir.StorageClass) string {
	switch s {
	case ir.StorageInput:
		return "input"
	case ir.StorageOutput:
		return "output"
	default:
		return "uniform-constant"
	}
}

func (ib *interfaceBuilder) structNameFor(storage ir.StorageClass) string {
	switch storage {
	case ir.StorageInput:
		return "main_in"
	case ir.StorageOutput:
		return "main_out"
	default:
		return "main_uniforms"
	}
}

// collect flattens every loose interface variable matching storage into
// candidateMembers: if a variable's type is a struct its members are
// hoisted directly; otherwise the variable itself becomes one member
// (spec.md §4.2 "Member flattening rule").
func (ib *interfaceBuilder) collect(storage ir.StorageClass) []candidateMember {
	var out []candidateMember
	for _, varID := range ib.module.InterfaceVars {
		v := ib.module.VariableAt(varID)
		if v == nil || v.StorageClass != storage {
			continue
		}
		t := ib.w.derefType(ib.module.TypeAt(v.Type))
		rec := ib.w.meta(varID)
		if storage == ir.StorageUniformConstant && t != nil && (t.Image != nil || t.Sampler) {
			// Textures and samplers can never be struct members in MSL
			// (unlike scalar/vector uniform constants); they are
			// emitted as individual entry-function resource
			// parameters by the driver loop instead of being
			// flattened into the synthesized UniformConstant block.
			continue
		}
		if t != nil && t.IsStruct() {
			blockHasLoc := rec.Flags.Has(ir.DecorationLocation)
			blockLoc := rec.Location
			for i, memberType := range t.Members {
				mrec := ib.module.Meta.MemberAt(v.Type, i)
				name := mrec.Name
				if name == "" {
					name = fmt.Sprintf("member%d", i)
				}
				cm := candidateMember{
					sourceID:  varID,
					memberIdx: i,
					typeID:    memberType,
					name:      sanitizeIdent(name, "m"),
					isBuiltIn: mrec.Flags.Has(ir.DecorationBuiltIn),
					builtIn:   mrec.BuiltIn,
				}
				switch {
				case mrec.Flags.Has(ir.DecorationLocation):
					cm.location, cm.hasLoc = mrec.Location, true
				case blockHasLoc:
					cm.location, cm.hasLoc = blockLoc+uint32(i), true
				}
				out = append(out, cm)
			}
			continue
		}

		name := rec.Alias
		if name == "" {
			name = fmt.Sprintf("var%d", varID)
		}
		cm := candidateMember{
			sourceID:  varID,
			memberIdx: -1,
			typeID:    v.Type,
			name:      sanitizeIdent(name, "m"),
			isBuiltIn: rec.Flags.Has(ir.DecorationBuiltIn),
			builtIn:   rec.BuiltIn,
		}
		if rec.Flags.Has(ir.DecorationLocation) {
			cm.location, cm.hasLoc = rec.Location, true
		}
		out = append(out, cm)
	}
	return out
}

// divertToSecondaryBuffer routes a matrix/array vertex-stage-in member to
// the per-buffer fallback block matching its msl_buffer attribute
// (spec.md §4.2 "Vertex-attribute diversion").
func (ib *interfaceBuilder) divertToSecondaryBuffer(m candidateMember) error {
	binding := ib.w.vertexAttrBindingFor(m)
	if binding == nil {
		return invalidInput("vertex attribute %q needs a vertex-attribute binding record to place its matrix/array member in a secondary buffer", m.name)
	}
	binding.UsedByShader = true

	block, ok := ib.w.secondaryBuffers[binding.MSLBuffer]
	if !ok {
		structID := ib.module.NewType(ir.Type{})
		varID := ib.module.NewVariable(ir.Variable{Type: structID, StorageClass: ir.StorageUniform})
		ib.w.typeNames[structID] = ib.w.disambiguateTypeName(fmt.Sprintf("spvBufferIn%d_t", binding.MSLBuffer))
		ib.w.ensureUniqueName(varID, fmt.Sprintf("spvBufferIn%d", binding.MSLBuffer))
		ib.w.meta(structID).Flags |= ir.DecorationOffset
		ib.w.meta(structID).Offset = binding.MSLStride
		block = &secondaryBufferBlock{typeID: structID, varID: varID, msBuffer: binding.MSLBuffer, perInstance: binding.PerInstance}
		ib.w.secondaryBuffers[binding.MSLBuffer] = block
	}

	st := ib.module.TypeAt(block.typeID)
	idx := len(st.Members)
	st.Members = append(st.Members, m.typeID)

	rec := ib.module.Meta.MemberAt(block.typeID, idx)
	rec.Name = fmt.Sprintf("m%d", idx)
	rec.Flags |= ir.DecorationBinding | ir.DecorationOffset
	rec.Offset = binding.MSLOffset
	rec.Location = unknownLocation

	varName := ib.w.name(block.varID)
	idxExpr := "gl_VertexIndex"
	if binding.PerInstance {
		idxExpr = "gl_InstanceIndex"
	}
	alias := fmt.Sprintf("%s[%s].%s", varName, idxExpr, rec.Name)
	ib.module.Meta.Get(m.sourceID).QualifiedAlias = alias

	if binding.PerInstance {
		ib.w.needsInstanceIndexParam = true
	} else {
		ib.w.needsVertexIndexParam = true
	}
	return nil
}

// vertexAttrBindingFor finds the caller-supplied VertexAttributeBinding
// matching m's location.
func (w *Writer) vertexAttrBindingFor(m candidateMember) *VertexAttributeBinding {
	for i := range w.vtxAttrs {
		if w.vtxAttrs[i].Location == m.location {
			return &w.vtxAttrs[i]
		}
	}
	return nil
}

// wireOutputBlockReturn injects the Output block as a local of the entry
// function and rewrites every Return terminator to return it (spec.md
// §4.2 "Output-block return wiring").
func (ib *interfaceBuilder) wireOutputBlockReturn(entryFn *ir.Function) {
	if ib.w.ibOutput == ir.NullID {
		return
	}
	entryFn.Locals = append(entryFn.Locals, ib.w.ibOutput)
	for _, blockID := range entryFn.Blocks {
		b := ib.module.BlockAt(blockID)
		if b.Terminator.Kind == ir.TerminatorReturn {
			b.Terminator.Kind = ir.TerminatorReturnValue
			b.Terminator.ReturnValue = ib.w.ibOutput
		}
	}
}

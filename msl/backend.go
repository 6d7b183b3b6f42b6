package msl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/spvmsl/ir"
)

// firstValidationError renders the leading violation from ir.Validate into
// a single sentence; the rest are dropped, matching spec.md §6's one
// descriptive sentence per Diagnostic.
func firstValidationError(violations []ir.ValidationError) string {
	if len(violations) == 0 {
		return ""
	}
	msg := violations[0].Error()
	if len(violations) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(violations)-1)
	}
	return msg
}

// maxRecompilePasses bounds the emission retry loop (spec.md §4.1 step 9,
// §7 "Compiler-bug").
const maxRecompilePasses = 3

// Compile cross-compiles module into MSL source text (spec.md §4.1 "Driver
// Loop"). module must already be a parsed, validated SPIR-V module in the
// shape described by package ir; producing it is an external concern.
func Compile(module *ir.Module, options Options, vtxAttrs []VertexAttributeBinding, resBinds []ResourceBinding) (string, TranslationInfo, error) {
	if module == nil {
		return "", TranslationInfo{}, invalidInput("nil module")
	}
	if violations, err := ir.Validate(module); err != nil {
		return "", TranslationInfo{}, invalidInput("%s", err)
	} else if len(violations) > 0 {
		return "", TranslationInfo{}, invalidInput("%s", firstValidationError(violations))
	}
	if options.LangVersion == (Version{}) {
		options = DefaultOptions()
	}
	w := newWriter(module, options, vtxAttrs, resBinds)

	var src string
	var err error
	withClassicLocale(func() {
		src, err = w.run()
	})
	if err != nil {
		return "", TranslationInfo{}, err
	}
	return src, w.translationInfo(), nil
}

// translationInfo reports the facts named in spec.md §6 about a completed
// translation: the entry point's MSL name and which caller-supplied
// bindings were actually consumed.
func (w *Writer) translationInfo() TranslationInfo {
	info := TranslationInfo{EntryPointName: w.name(w.module.EntryPoint)}
	for _, a := range w.vtxAttrs {
		if a.UsedByShader {
			info.UsedVertexAttributes = append(info.UsedVertexAttributes, a.Location)
		}
	}
	for _, r := range w.resBinds {
		if r.UsedByShader {
			info.UsedResourceBindings++
		}
	}
	return info
}

// run executes the full pipeline described in spec.md §4.1: one-time
// preparation passes, followed by an emission loop of at most
// maxRecompilePasses passes that re-emits when a late discovery during
// emission (a helper requested after the helper block was already
// printed) requires it.
func (w *Writer) run() (string, error) {
	entryFnID := w.module.EntryPoint
	entryFn := w.module.FunctionAt(entryFnID)
	if entryFn == nil {
		return "", invalidInput("module entry point id %d does not name a function", entryFnID)
	}

	w.assignNames(entryFnID)
	newOpcodePrescanner(w).run(entryFnID)

	ib := newInterfaceBuilder(w)
	var err error
	if w.ibInput, err = ib.build(ir.StorageInput); err != nil {
		return "", err
	}
	if w.ibOutput, err = ib.build(ir.StorageOutput); err != nil {
		return "", err
	}
	if w.ibUniformConstant, err = ib.build(ir.StorageUniformConstant); err != nil {
		return "", err
	}
	ib.wireOutputBlockReturn(entryFn)

	if err := newGlobalLocalizer(w).run(entryFnID); err != nil {
		return "", err
	}
	if err := ir.ValidateNoModuleScopeLocals(w.module, moduleScopeVariableIDs(w.module)); err != nil {
		return "", compilerBug("%s", err)
	}

	sa := newStructAligner(w)
	sa.markPackableStructs()
	for id, e := range w.module.Pool {
		if e.Kind == ir.EntityType && e.Type != nil && e.Type.IsStruct() {
			sa.align(ir.ID(id))
		}
	}

	w.resolveSpecializedArrayLengths()
	w.declareUndefinedValues()

	for pass := 0; pass < maxRecompilePasses; pass++ {
		w.resetPerPassState()
		w.forceRecompile = false

		w.emitHeader()
		if err := w.emitStructDeclarations(); err != nil {
			return "", err
		}
		w.emitSpecializationConstants()
		w.emitHelperFunctions()
		if err := w.emitEntryFunction(entryFnID, entryFn); err != nil {
			return "", err
		}

		if !w.forceRecompile {
			return w.String(), nil
		}
	}
	return "", compilerBug("emission did not converge after %d recompilation passes", maxRecompilePasses)
}

// moduleScopeVariableIDs lists every module-scope OpVariable id, the
// candidate set ir.ValidateNoModuleScopeLocals checks after the global
// localizer runs.
func moduleScopeVariableIDs(module *ir.Module) []ir.ID {
	var ids []ir.ID
	for id, e := range module.Pool {
		if e.Kind == ir.EntityVariable && e.Variable != nil {
			ids = append(ids, ir.ID(id))
		}
	}
	return ids
}

// declareUndefinedValues implements CompilerMSL::declare_undefined_values
// (SPEC_FULL.md supplemented feature 2): every OpUndef result actually
// referenced somewhere in the entry point's call graph is declared once,
// up front, as a zero-initialized constant so later references compile.
// Undef ids the interface builder allocates as placeholder initializers
// and never wires to anything are intentionally excluded.
func (w *Writer) declareUndefinedValues() {
	referenced := map[ir.ID]bool{}
	mark := func(id ir.ID) {
		if id != ir.NullID && int(id) < len(w.module.Pool) && w.module.Pool[id].Kind == ir.EntityUndef {
			referenced[id] = true
		}
	}
	for _, e := range w.module.Pool {
		if e.Kind != ir.EntityFunction || e.Function == nil {
			continue
		}
		for _, blockID := range e.Function.Blocks {
			b := w.module.BlockAt(blockID)
			if b == nil {
				continue
			}
			for _, instr := range b.Instructions {
				for _, op := range instr.Operands {
					mark(op)
				}
				mark(instr.ResultType)
			}
			mark(b.Terminator.ReturnValue)
			mark(b.Terminator.Condition)
		}
	}
	ids := make([]ir.ID, 0, len(referenced))
	for id := range referenced {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	w.undefinedValueIDs = ids
}

// pragmaLines returns the fixed set of pragma lines this backend emits.
// Grounded on CompilerMSL::add_pragma_line (original_source/spirv_msl.cpp).
func (w *Writer) pragmaLines() []string {
	return []string{
		`#pragma clang diagnostic ignored "-Wmissing-prototypes"`,
		`#pragma clang diagnostic ignored "-Wmissing-braces"`,
	}
}

// emitHeader prints pragmas (deduplicated per SPEC_FULL.md supplemented
// feature 1), the two required includes, the metal namespace directive,
// and any zero-initialized OpUndef declarations, each exactly once per
// spec.md §8's testable property.
func (w *Writer) emitHeader() {
	seen := map[string]bool{}
	for _, p := range w.pragmaLines() {
		if seen[p] {
			continue
		}
		seen[p] = true
		w.writeLine(p)
	}
	w.writeLine("#include <metal_stdlib>")
	w.writeLine("#include <simd/simd.h>")
	w.write("\n")
	w.writeLine("using namespace metal;")
	w.write("\n")

	for _, id := range w.undefinedValueIDs {
		u := w.module.Pool[id].Undef
		name := w.ensureUniqueName(id, wUndefName(id))
		w.writeLine("constant %s %s = {};", w.typeToMSL(u.Type), name)
	}
	if len(w.undefinedValueIDs) > 0 {
		w.write("\n")
	}
}

func wUndefName(id ir.ID) string { return "spvUndef" + itoa(uint32(id)) }

// emitSpecializationConstants prints one [[function_constant(N)]]
// declaration, with an is_function_constant_defined fallback to the
// constant's baked default, for every specialization constant
// resolveSpecializedArrayLengths kept live (spec.md §6).
func (w *Writer) emitSpecializationConstants() {
	if len(w.functionConstants) == 0 {
		return
	}
	for _, id := range w.functionConstants {
		c := w.module.ConstantAt(id)
		if c == nil {
			continue
		}
		t := w.module.TypeAt(c.Type)
		typeName := w.typeToMSL(c.Type)
		name := w.name(id)
		defaultLit := w.scalarLiteral(t, c.Bits)
		w.writeLine("constant %s %s [[function_constant(%d)]];", typeName, name, c.SpecID)
		w.writeLine("constant %s %s_ = is_function_constant_defined(%s) ? %s : %s;", typeName, name, name, name, defaultLit)
	}
	w.write("\n")
}

// interfaceTypeStorage maps a synthesized interface block's struct type id
// to the storage class it represents, so emitStructDeclarations knows
// which structs need member attribute qualifiers (spec.md §4.7) and which
// (ordinary resource/nested structs) do not.
func (w *Writer) interfaceTypeStorage() map[ir.ID]ir.StorageClass {
	m := map[ir.ID]ir.StorageClass{}
	if w.ibInput != ir.NullID {
		m[w.module.VariableAt(w.ibInput).Type] = ir.StorageInput
	}
	if w.ibOutput != ir.NullID {
		m[w.module.VariableAt(w.ibOutput).Type] = ir.StorageOutput
	}
	if w.ibUniformConstant != ir.NullID {
		m[w.module.VariableAt(w.ibUniformConstant).Type] = ir.StorageUniformConstant
	}
	return m
}

// emitStructDeclarations prints every struct type in the pool except a
// compute entry point's Input block (whose members computeBuiltinParams
// passes as individual kernel parameters), in ID order, as spec.md §4.1's
// ordering rule requires ("declarable
// non-interface structs are emitted in ID order; interface structs are
// emitted after all nested types they depend on"): since IDs grow
// monotonically and the interface builder/struct aligner allocate their
// types only after every type they could nest already exists, a single
// ID-ordered pass satisfies both halves of the rule at once.
func (w *Writer) emitStructDeclarations() error {
	ifaceStorage := w.interfaceTypeStorage()
	for id, e := range w.module.Pool {
		if e.Kind != ir.EntityType || e.Type == nil || !e.Type.IsStruct() {
			continue
		}
		typeID := ir.ID(id)
		if w.module.ExecutionModel == ir.ExecutionGLCompute && w.ibInput != ir.NullID && typeID == w.module.VariableAt(w.ibInput).Type {
			continue
		}
		if err := w.emitStructDecl(typeID, e.Type, ifaceStorage); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) emitStructDecl(typeID ir.ID, t *ir.Type, ifaceStorage map[ir.ID]ir.StorageClass) error {
	name, ok := w.typeNames[typeID]
	if !ok {
		name = w.disambiguateTypeName(sanitizeIdent(wDefaultTypeName(typeID), "t"))
		w.typeNames[typeID] = name
	}
	storage, isIface := ifaceStorage[typeID]

	w.writeLine("struct %s", name)
	w.writeLine("{")
	w.pushIndent()
	for i, memberType := range t.Members {
		rec := w.module.Meta.MemberAt(typeID, i)
		if pad := w.paddingFor(typeID, i); pad > 0 {
			w.writeLine("char pad%d[%d];", i, pad)
		}
		typeName := w.memberTypeName(typeID, i, memberType)
		memberName := rec.Name
		if memberName == "" {
			memberName = wPositionalMemberName(i)
		}
		qualifier := ""
		if isIface {
			q, err := w.mustMemberAttributeQualifier(storage, rec.BuiltIn, rec.Flags.Has(ir.DecorationBuiltIn), rec.Location)
			if err != nil {
				return err
			}
			if q != "" {
				qualifier = " " + q
			}
		}
		w.writeLine("%s %s%s;", typeName, memberName, qualifier)
	}
	w.popIndent()
	w.writeLine("};")
	w.write("\n")
	return nil
}

// memberTypeName renders a struct member's type, substituting the
// "packed_" spelling for any 3-vector the struct aligner marked packed
// (spec.md §4.4, §8 "Packed vec3").
func (w *Writer) memberTypeName(structID ir.ID, memberIdx int, memberType ir.ID) string {
	if w.shouldPackMember(structID, memberIdx) {
		if mt := w.module.TypeAt(memberType); mt != nil && mt.IsVector() && mt.VectorSize == 3 {
			return packedVectorTypeName(mt.Kind, mt.Width)
		}
	}
	return w.typeToMSL(memberType)
}

func wDefaultTypeName(id ir.ID) string   { return "type_" + itoa(uint32(id)) }
func wPositionalMemberName(i int) string { return "m" + itoa(uint32(i)) }

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// resourceGlobal is one module-scope variable that must be threaded into
// the entry function's MSL parameter list as a `[[buffer/texture/sampler(N)]]`
// resource, because it was never absorbed into a synthesized interface
// block (spec.md §4.2 only flattens Input/Output/UniformConstant loose
// variables; Uniform/StorageBuffer/PushConstant buffers, and
// UniformConstant images/samplers, remain standalone resources).
type resourceGlobal struct {
	id        ir.ID
	storage   ir.StorageClass
	isImage   bool
	isSampler bool
}

// resourceGlobals collects every module-scope variable needing a direct
// resource parameter, in ID order for deterministic binding assignment
// (spec.md §8 "Binding indices assigned by the automatic counter are
// dense and monotonically increasing... in IR order"). Push-constant
// blocks are listed first, ahead of any Uniform/StorageBuffer resource,
// so they consume a low, stable buffer slot distinct from
// descriptor-set/binding-addressed buffers regardless of ID order
// (SPEC_FULL.md supplemented feature 4).
func (w *Writer) resourceGlobals() []resourceGlobal {
	var pushConstants, rest []resourceGlobal
	for id, e := range w.module.Pool {
		if e.Kind != ir.EntityVariable || e.Variable == nil {
			continue
		}
		vid := ir.ID(id)
		if vid == w.ibUniformConstant {
			continue
		}
		t := w.module.TypeAt(e.Variable.Type)
		switch e.Variable.StorageClass {
		case ir.StoragePushConstant:
			pushConstants = append(pushConstants, resourceGlobal{id: vid, storage: ir.StoragePushConstant})
		case ir.StorageUniform, ir.StorageStorageBuffer:
			rest = append(rest, resourceGlobal{id: vid, storage: e.Variable.StorageClass})
		case ir.StorageUniformConstant:
			base := w.derefType(t)
			if base == nil {
				continue
			}
			switch {
			case base.Image != nil:
				rest = append(rest, resourceGlobal{id: vid, storage: ir.StorageUniformConstant, isImage: true})
			case base.Sampler:
				rest = append(rest, resourceGlobal{id: vid, storage: ir.StorageUniformConstant, isSampler: true})
			}
		}
	}
	return append(pushConstants, rest...)
}

// assignResourceBinding resolves the buffer/texture/sampler index for one
// resource, per spec.md §6 "Binding-index assignment": a matching
// caller-supplied ResourceBinding wins and is marked used; otherwise the
// matching bindingCounters slot is consumed and incremented.
func (w *Writer) assignResourceBinding(rg resourceGlobal) uint32 {
	if rg.storage != ir.StoragePushConstant {
		rec := w.meta(rg.id)
		for i := range w.resBinds {
			rb := &w.resBinds[i]
			if rb.Stage != w.stage() || rb.DescSet != rec.DescriptorSet || rb.Binding != rec.Binding {
				continue
			}
			rb.UsedByShader = true
			switch {
			case rg.isImage:
				return rb.MSLTexture
			case rg.isSampler:
				return rb.MSLSampler
			default:
				return rb.MSLBuffer
			}
		}
	}
	switch {
	case rg.isImage:
		idx := w.counters.texture
		w.counters.texture++
		return idx
	case rg.isSampler:
		idx := w.counters.sampler
		w.counters.sampler++
		return idx
	default:
		idx := w.counters.buffer
		w.counters.buffer++
		return idx
	}
}

func (w *Writer) stage() ExecutionStage {
	switch w.module.ExecutionModel {
	case ir.ExecutionVertex:
		return StageVertex
	case ir.ExecutionFragment:
		return StageFragment
	default:
		return StageCompute
	}
}

// entryFunctionKeyword returns the MSL entry-function keyword for the
// module's execution model (spec.md §6).
func (w *Writer) entryFunctionKeyword() string {
	switch w.module.ExecutionModel {
	case ir.ExecutionVertex:
		return "vertex"
	case ir.ExecutionFragment:
		return "fragment"
	default:
		return "kernel"
	}
}

// emitEntryFunction prints the single vertex/fragment/kernel entry
// function: signature, then body (spec.md §6 "Outputs").
func (w *Writer) emitEntryFunction(entryFnID ir.ID, fn *ir.Function) error {
	returnType := "void"
	if w.ibOutput != ir.NullID {
		returnType = w.typeToMSL(w.module.VariableAt(w.ibOutput).Type)
	}

	params, err := w.buildEntrySignature()
	if err != nil {
		return err
	}

	keyword := w.entryFunctionKeyword()
	qualifiers := ""
	if keyword == "fragment" {
		if _, ok := w.module.Modes[ir.ModeEarlyFragmentTests]; ok {
			qualifiers = " [[early_fragment_tests]]"
		}
	}

	w.writeLine("%s %s %s%s(%s)", keyword, returnType, w.name(entryFnID), qualifiers, strings.Join(params, ", "))
	w.writeLine("{")
	w.pushIndent()
	if err := w.emitFunctionBody(fn); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// buildEntrySignature renders every entry-function parameter: stage_in
// (vertex/fragment) or unpacked built-in inputs (compute, which has no
// stage_in convention), secondary vertex-attribute buffers, resource
// globals, the synthesized UniformConstant block, and the
// vertex/instance index built-ins the interface builder requested
// (spec.md §4.2, §4.7).
func (w *Writer) buildEntrySignature() ([]string, error) {
	var params []string

	if w.ibInput != ir.NullID {
		if w.module.ExecutionModel == ir.ExecutionGLCompute {
			computeParams, err := w.computeBuiltinParams()
			if err != nil {
				return nil, err
			}
			params = append(params, computeParams...)
		} else {
			params = append(params, w.typeToMSL(w.module.VariableAt(w.ibInput).Type)+" in [[stage_in]]")
		}
	}

	for _, buf := range w.orderedSecondaryBuffers() {
		idx := w.assignResourceBinding(resourceGlobal{id: buf.varID, storage: ir.StorageUniform})
		params = append(params, "device "+w.typeToMSL(buf.typeID)+"* "+w.name(buf.varID)+" [[buffer("+itoa(idx)+")]]")
	}

	for _, rg := range w.resourceGlobals() {
		idx := w.assignResourceBinding(rg)
		params = append(params, w.resourceParam(rg, idx))
	}

	if w.ibUniformConstant != ir.NullID {
		idx := w.counters.buffer
		w.counters.buffer++
		v := w.module.VariableAt(w.ibUniformConstant)
		params = append(params, "constant "+w.typeToMSL(v.Type)+"& "+w.name(w.ibUniformConstant)+" [[buffer("+itoa(idx)+")]]")
	}

	if w.needsVertexIndexParam {
		params = append(params, "uint gl_VertexIndex [[vertex_id]]")
	}
	if w.needsInstanceIndexParam {
		params = append(params, "uint gl_InstanceIndex [[instance_id]]")
	}

	return params, nil
}

// computeBuiltinParams unpacks the synthesized Input block's members as
// individual kernel parameters: Metal kernels address built-ins directly,
// with no stage_in equivalent.
func (w *Writer) computeBuiltinParams() ([]string, error) {
	v := w.module.VariableAt(w.ibInput)
	t := w.module.TypeAt(v.Type)
	var params []string
	for i, memberType := range t.Members {
		rec := w.module.Meta.MemberAt(v.Type, i)
		q, err := w.mustMemberAttributeQualifier(ir.StorageInput, rec.BuiltIn, rec.Flags.Has(ir.DecorationBuiltIn), rec.Location)
		if err != nil {
			return nil, err
		}
		name := rec.Name
		if q != "" {
			name += " " + q
		}
		params = append(params, w.typeToMSL(memberType)+" "+name)
	}
	return params, nil
}

func (w *Writer) resourceParam(rg resourceGlobal, idx uint32) string {
	name := w.name(rg.id)
	switch {
	case rg.isImage:
		return w.typeToMSL(rg.baseType(w)) + " " + name + " [[texture(" + itoa(idx) + ")]]"
	case rg.isSampler:
		return "sampler " + name + " [[sampler(" + itoa(idx) + ")]]"
	default:
		return w.typeToMSL(w.module.VariableAt(rg.id).Type) + " " + name + " [[buffer(" + itoa(idx) + ")]]"
	}
}

func (rg resourceGlobal) baseType(w *Writer) ir.ID {
	v := w.module.VariableAt(rg.id)
	if t := w.module.TypeAt(v.Type); t != nil && t.Pointer && len(t.Members) == 1 {
		return t.Members[0]
	}
	return v.Type
}

// orderedSecondaryBuffers returns the per-buffer vertex-attribute fallback
// blocks sorted by msl_buffer index, for deterministic signature order.
func (w *Writer) orderedSecondaryBuffers() []*secondaryBufferBlock {
	out := make([]*secondaryBufferBlock, 0, len(w.secondaryBuffers))
	for _, b := range w.secondaryBuffers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].msBuffer < out[j].msBuffer })
	return out
}

package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvmsl/glslbase"
	"github.com/gogpu/spvmsl/ir"
)

// bindingCounters is the shared-resource triple named in spec.md §5: the
// next-available Metal buffer/texture/sampler slot, consumed whenever a
// resource has no matching user-supplied ResourceBinding.
type bindingCounters struct {
	buffer  uint32
	texture uint32
	sampler uint32
}

// Writer owns everything mutated during one translation (spec.md §5): the
// IR, the output buffer, the helper registry, and the binding counters. A
// Writer is created fresh per Compile call and must not be reused or
// shared across goroutines.
type Writer struct {
	module   *ir.Module
	options  Options
	vtxAttrs []VertexAttributeBinding
	resBinds []ResourceBinding

	base *glslbase.Base

	out    strings.Builder
	indent int

	names      map[ir.ID]string
	usedNames  map[string]struct{}
	typeNames  map[ir.ID]string

	helpers helperRegistry

	counters bindingCounters

	forceRecompile bool

	// padding records padding lengths computed by the struct aligner,
	// keyed by (struct type id, member index); see msl/aligner.go.
	padding map[padKey]uint32
	packed  map[padKey]struct{}

	// ibInput, ibOutput, ibUniformConstant are the synthesized
	// interface-block variable IDs (NullID if empty); see msl/interface.go.
	ibInput           ir.ID
	ibOutput          ir.ID
	ibUniformConstant ir.ID

	// secondaryBuffers holds the per-buffer vertex-attribute fallback
	// blocks keyed by msl_buffer index; see msl/interface.go.
	secondaryBuffers map[uint32]*secondaryBufferBlock

	// globalParams maps a non-entry function ID to the ordered list of
	// module-scope globals threaded onto its parameter list by the
	// global localizer; see msl/localizer.go.
	globalParams map[ir.ID][]ir.ID

	needsVertexIndexParam   bool
	needsInstanceIndexParam bool

	// usesAtomics and usesBarriers are set by the opcode pre-scanner
	// (msl/prescan.go) and by emitAtomic/emitBarrier (msl/expressions.go);
	// no pass reads them, so they do not affect the emitted text.
	usesAtomics  bool
	usesBarriers bool

	// lastWasMemoryBarrier records whether the previous statement emitted
	// was a memory barrier, so an immediately following control barrier
	// can be suppressed (spec.md §4.5 "Barriers"); see msl/expressions.go.
	lastWasMemoryBarrier bool

	// arrayLengthSpecConstants holds every specialization constant id that
	// sizes an array type's outermost dimension, populated by the opcode
	// pre-scanner (msl/prescan.go) and consulted by
	// resolveSpecializedArrayLengths (msl/specialize.go).
	arrayLengthSpecConstants map[ir.ID]bool

	// functionConstants lists the specialization constants kept as named
	// MSL function constants rather than resolved to their default value;
	// see msl/specialize.go.
	functionConstants []ir.ID

	// undefinedValueIDs lists, in ID order, every module-scope OpUndef
	// result actually referenced somewhere in the entry point's call
	// graph; see (*Writer).declareUndefinedValues in msl/backend.go.
	undefinedValueIDs []ir.ID
}

type padKey struct {
	structType ir.ID
	member     int
}

func newWriter(module *ir.Module, options Options, vtxAttrs []VertexAttributeBinding, resBinds []ResourceBinding) *Writer {
	return &Writer{
		module:                   module,
		options:                  options,
		vtxAttrs:                 vtxAttrs,
		resBinds:                 resBinds,
		base:                     glslbase.NewBase(),
		names:                    map[ir.ID]string{},
		usedNames:                map[string]struct{}{},
		typeNames:                map[ir.ID]string{},
		padding:                  map[padKey]uint32{},
		packed:                   map[padKey]struct{}{},
		secondaryBuffers:         map[uint32]*secondaryBufferBlock{},
		globalParams:             map[ir.ID][]ir.ID{},
		arrayLengthSpecConstants: map[ir.ID]bool{},
		helpers:                  newHelperRegistry(),
	}
}

// resetPerPassState clears everything the driver loop must not carry
// across a recompilation retry (spec.md §4.1 step 9), while leaving the
// helper registry (monotone) and the ID upper bound (monotone, owned by
// the module) untouched.
func (w *Writer) resetPerPassState() {
	w.out.Reset()
	w.indent = 0
	w.counters = bindingCounters{}
}

func (w *Writer) meta(id ir.ID) *ir.MetaRecord { return w.module.Meta.Get(id) }

// String returns the generated MSL source code.
func (w *Writer) String() string { return w.out.String() }

func (w *Writer) write(format string, args ...any) {
	if len(args) == 0 {
		w.out.WriteString(format)
		return
	}
	fmt.Fprintf(&w.out, format, args...)
}

func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	w.write(format, args...)
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) pushIndent() { w.indent++ }
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// name returns the (already-registered) identifier for id, allocating a
// fallback positional name if it was never registered.
func (w *Writer) name(id ir.ID) string {
	if n, ok := w.names[id]; ok {
		return n
	}
	return fmt.Sprintf("_%d", id)
}

// ensureUniqueName registers base (or a disambiguated variant of it) as
// the name for id and returns it.
func (w *Writer) ensureUniqueName(id ir.ID, base string) string {
	if base == "" {
		base = fmt.Sprintf("_%d", id)
	}
	candidate := base
	for i := 1; ; i++ {
		if _, used := w.usedNames[candidate]; !used {
			break
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	w.usedNames[candidate] = struct{}{}
	w.names[id] = candidate
	return candidate
}

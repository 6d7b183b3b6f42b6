package msl

import (
	"github.com/gogpu/spvmsl/glslbase"
	"github.com/gogpu/spvmsl/ir"
)

// This file makes *Writer a glslbase.Emitter (spec.md §9 design note 2):
// every method the dialect does not need to specialize delegates straight
// to the embedded *glslbase.Base; the handful that are genuinely
// MSL-specific are implemented elsewhere in this package and merely
// listed here for interface completeness.
//
//   - EmitInstruction: msl/expressions.go
//   - ArgumentAddressSpace: msl/qualifiers.go

var _ glslbase.Emitter = (*Writer)(nil)

// EmitGLSLOp renders op's MSL spelling, falling through to the generic
// trig/exponential table for the instructions that need no dialect
// override. emitExtInst (msl/expressions.go) handles the dialect-specific
// extended instructions itself and, for its fallback path, calls
// w.base.EmitGLSLOp directly rather than this method.
func (w *Writer) EmitGLSLOp(op ir.ExtInst, resultType ir.ID, args []ir.ID) (string, bool, error) {
	expr, handled, err := w.base.EmitGLSLOp(op, resultType, args)
	if !handled || err != nil {
		return expr, handled, err
	}
	return w.resolvePlaceholders(expr), true, nil
}

// ToFunctionName delegates to the generic image-member-function naming
// table; MSL's sample/read/write/gather spellings match it exactly.
func (w *Writer) ToFunctionName(op ir.Opcode, imageType *ir.Type) string {
	return w.base.ToFunctionName(op, imageType)
}

// ToFunctionArgs delegates to the generic comma-joiner.
func (w *Writer) ToFunctionArgs(op ir.Opcode, imageType *ir.Type, rendered []string) string {
	return w.base.ToFunctionArgs(op, imageType, rendered)
}

// TypeToGLSL is never called for MSL output (typeToMSL is used instead);
// it is implemented to satisfy glslbase.Emitter and delegates to Base.
func (w *Writer) TypeToGLSL(t *ir.Type) string {
	return w.base.TypeToGLSL(t)
}

// BitcastOp renders the MSL-specific reinterpret/numeric cast forms
// (spec.md §4.6); see msl/types.go.
func (w *Writer) BitcastOp(expr string, inType, outType *ir.Type) string {
	return w.bitcastOp(expr, inType, outType)
}

// BuiltinToName is used only inside non-entry-point generic expression
// contexts; MSL always addresses built-ins by their synthesized
// interface-block member name instead, so this delegates to the generic
// SPIR-V-style pseudo-name as a harmless fallback.
func (w *Writer) BuiltinToName(b ir.BuiltIn) string {
	return w.base.BuiltinToName(b)
}

// BuiltinQualifier renders the `[[...]]` attribute for a directly
// addressed built-in (outside of an interface-block member declaration).
// MSL has a real answer here, unlike Base; it is the same matrix as
// mustMemberAttributeQualifier's built-in half, swallowing the error
// since this interface method cannot report one.
func (w *Writer) BuiltinQualifier(model ir.ExecutionModel, storage ir.StorageClass, b ir.BuiltIn) string {
	q, err := w.mustMemberAttributeQualifier(storage, b, true, unknownLocation)
	if err != nil {
		return ""
	}
	return q
}

// MemberAttributeQualifier implements glslbase.Emitter's no-error variant
// of mustMemberAttributeQualifier, for callers (generic expression
// rendering) that cannot propagate a Diagnostic.
func (w *Writer) MemberAttributeQualifier(model ir.ExecutionModel, storage ir.StorageClass, loc uint32, isBuiltIn bool, b ir.BuiltIn) string {
	q, err := w.mustMemberAttributeQualifier(storage, b, isBuiltIn, loc)
	if err != nil {
		return ""
	}
	return q
}

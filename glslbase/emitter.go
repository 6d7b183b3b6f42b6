package glslbase

import "github.com/gogpu/spvmsl/ir"

// Emitter is the trait boundary between a dialect-specific back-end (MSL)
// and the generic GLSL-family scaffolding it specializes. A dialect
// implements every method; methods it doesn't need to override simply
// delegate to an embedded *Base.
type Emitter interface {
	// EmitInstruction emits zero or more statements for one instruction
	// and reports whether it handled the opcode (false means "fall
	// through to the generic behavior").
	EmitInstruction(instr ir.Instruction) (handled bool, err error)

	// EmitGLSLOp emits an expression for a GLSL.std.450 extended
	// instruction and reports whether it handled it.
	EmitGLSLOp(op ir.ExtInst, resultType ir.ID, args []ir.ID) (expr string, handled bool, err error)

	// ToFunctionName returns the callee name for an image operation
	// (sample/fetch/gather/read/write).
	ToFunctionName(op ir.Opcode, imageType *ir.Type) string

	// ToFunctionArgs renders the argument list for an image operation
	// call, given the already-rendered coordinate/texel expressions.
	ToFunctionArgs(op ir.Opcode, imageType *ir.Type, rendered []string) string

	// TypeToGLSL renders the dialect's spelling of a type.
	TypeToGLSL(t *ir.Type) string

	// BitcastOp renders a bitcast of expr from inType to outType, or ""
	// if no bitcast is needed.
	BitcastOp(expr string, inType, outType *ir.Type) string

	// BuiltinToName renders the generic (non-entry-point-qualified) name
	// of a built-in variable.
	BuiltinToName(b ir.BuiltIn) string

	// BuiltinQualifier renders the attribute qualifier for a built-in in
	// the given execution model/storage class context.
	BuiltinQualifier(model ir.ExecutionModel, storage ir.StorageClass, b ir.BuiltIn) string

	// ArgumentAddressSpace renders the address-space qualifier for a
	// function parameter of the given storage class.
	ArgumentAddressSpace(storage ir.StorageClass, writable bool) string

	// MemberAttributeQualifier renders the attribute qualifier for one
	// struct member in the given execution model/storage context.
	MemberAttributeQualifier(model ir.ExecutionModel, storage ir.StorageClass, loc uint32, isBuiltIn bool, b ir.BuiltIn) string
}

package glslbase

import (
	"fmt"

	"github.com/gogpu/spvmsl/ir"
)

// Base is the minimal default Emitter implementation. A dialect (msl.Writer)
// embeds a *Base and calls into it explicitly for the handful of opcodes
// and type shapes it does not override; Base itself never dispatches back
// into the dialect. This mirrors spec.md §9 design note 2: "the MSL
// emitter delegates to the generic one via an explicit base call when it
// does not override."
type Base struct{}

// NewBase returns a ready-to-use generic emitter.
func NewBase() *Base { return &Base{} }

// EmitInstruction handles nothing generically; every opcode in this
// repository's scope is MSL-specific (matrix layout, atomics, images,
// barriers all need dialect knowledge), so Base always reports "not
// handled" and lets the dialect's own table run first.
func (b *Base) EmitInstruction(ir.Instruction) (bool, error) {
	return false, nil
}

// EmitGLSLOp handles the extended instructions whose GLSL and MSL spelling
// coincide closely enough that no dialect override is needed: the
// trigonometric and exponential family, which are plain one-to-one calls
// into metal:: the same way they'd be plain calls into a GLSL runtime.
func (b *Base) EmitGLSLOp(op ir.ExtInst, _ ir.ID, args []ir.ID) (string, bool, error) {
	name, ok := genericExtInstNames[op]
	if !ok {
		return "", false, nil
	}
	return fmt.Sprintf("%s(%s)", name, joinArgs(args)), true, nil
}

var genericExtInstNames = map[ir.ExtInst]string{
	ir.ExtSin: "sin", ir.ExtCos: "cos", ir.ExtTan: "tan",
	ir.ExtAsin: "asin", ir.ExtAcos: "acos", ir.ExtAtan: "atan",
	ir.ExtSinh: "sinh", ir.ExtCosh: "cosh", ir.ExtTanh: "tanh",
	ir.ExtAsinh: "asinh", ir.ExtAcosh: "acosh", ir.ExtAtanh: "atanh",
	ir.ExtPow: "pow", ir.ExtExp: "exp", ir.ExtLog: "log",
	ir.ExtExp2: "exp2", ir.ExtLog2: "log2", ir.ExtSqrt: "sqrt",
	ir.ExtFloor: "floor", ir.ExtCeil: "ceil", ir.ExtTrunc: "trunc",
	ir.ExtFract: "fract", ir.ExtLength: "length", ir.ExtCross: "cross",
	ir.ExtNormalize: "normalize", ir.ExtReflect: "reflect", ir.ExtRefract: "refract",
	ir.ExtFSign: "sign", ir.ExtSSign: "sign", ir.ExtFAbs: "abs", ir.ExtSAbs: "abs",
	ir.ExtFMin: "min", ir.ExtUMin: "min", ir.ExtSMin: "min",
	ir.ExtFMax: "max", ir.ExtUMax: "max", ir.ExtSMax: "max",
	ir.ExtFClamp: "clamp", ir.ExtUClamp: "clamp", ir.ExtSClamp: "clamp",
	ir.ExtFMix: "mix", ir.ExtStep: "step", ir.ExtSmoothStep: "smoothstep",
	ir.ExtFma: "fma", ir.ExtFaceForward: "faceforward",
	ir.ExtDeterminant: "determinant",
}

func joinArgs(ids []ir.ID) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%%%d", id)
	}
	return s
}

// ToFunctionName returns the generic member-function-style name for an
// image operation; MSL overrides none of this since its image member
// functions (sample/read/write/...) match the generic scheme exactly.
func (b *Base) ToFunctionName(op ir.Opcode, _ *ir.Type) string {
	switch op {
	case ir.OpImageSampleImplicitLod, ir.OpImageSampleExplicitLod, ir.OpImageSampleDrefImplicitLod:
		return "sample"
	case ir.OpImageFetch:
		return "read"
	case ir.OpImageGather:
		return "gather"
	case ir.OpImageRead:
		return "read"
	case ir.OpImageWrite:
		return "write"
	default:
		return ""
	}
}

// ToFunctionArgs joins pre-rendered argument expressions with ", ".
func (b *Base) ToFunctionArgs(_ ir.Opcode, _ *ir.Type, rendered []string) string {
	s := ""
	for i, r := range rendered {
		if i > 0 {
			s += ", "
		}
		s += r
	}
	return s
}

// TypeToGLSL renders the C-like generic spelling of scalar/vector/matrix
// types (no MSL "metal::" namespace, no address-space qualifiers); the
// dialect overrides this entirely for anything beyond scalars.
func (b *Base) TypeToGLSL(t *ir.Type) string {
	if t == nil {
		return "void"
	}
	base := scalarName(t.Kind, t.Width)
	switch {
	case t.IsMatrix():
		return fmt.Sprintf("mat%dx%d", t.MatrixCols, t.VectorSize)
	case t.IsVector():
		return fmt.Sprintf("vec%d", t.VectorSize)
	default:
		return base
	}
}

func scalarName(kind ir.ScalarKind, width uint8) string {
	switch kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarChar:
		return "char"
	case ir.ScalarInt:
		if width == 16 {
			return "short"
		}
		return "int"
	case ir.ScalarUint:
		if width == 16 {
			return "ushort"
		}
		if width == 64 {
			return "size_t"
		}
		return "uint"
	case ir.ScalarFloat:
		if width == 16 {
			return "half"
		}
		return "float"
	case ir.ScalarDouble:
		return "double"
	default:
		return "void"
	}
}

// BitcastOp renders a generic C-style cast; MSL overrides this for the
// as_type<T> reinterpret-cast cases named in spec.md §4.6.
func (b *Base) BitcastOp(expr string, _, outType *ir.Type) string {
	return fmt.Sprintf("%s(%s)", b.TypeToGLSL(outType), expr)
}

// BuiltinToName renders the SPIR-V-style pseudo-name for a built-in,
// used inside generic (non-entry-point) contexts per spec.md §4.6.
func (b *Base) BuiltinToName(builtIn ir.BuiltIn) string {
	name, ok := genericBuiltinNames[builtIn]
	if !ok {
		return "gl_BuiltIn"
	}
	return name
}

var genericBuiltinNames = map[ir.BuiltIn]string{
	ir.BuiltInPosition:            "gl_Position",
	ir.BuiltInPointSize:           "gl_PointSize",
	ir.BuiltInVertexIndex:         "gl_VertexIndex",
	ir.BuiltInInstanceIndex:       "gl_InstanceIndex",
	ir.BuiltInFrontFacing:         "gl_FrontFacing",
	ir.BuiltInFragCoord:           "gl_FragCoord",
	ir.BuiltInFragDepth:           "gl_FragDepth",
	ir.BuiltInSampleId:            "gl_SampleID",
	ir.BuiltInSampleMask:          "gl_SampleMask",
	ir.BuiltInGlobalInvocationId:  "gl_GlobalInvocationID",
	ir.BuiltInLocalInvocationId:   "gl_LocalInvocationID",
	ir.BuiltInWorkgroupId:         "gl_WorkGroupID",
	ir.BuiltInNumWorkgroups:       "gl_NumWorkGroups",
	ir.BuiltInLocalInvocationIndex: "gl_LocalInvocationIndex",
}

// BuiltinQualifier has no dialect-neutral rendering (every target spells
// attribute qualifiers differently); Base returns "" and the dialect must
// always override.
func (b *Base) BuiltinQualifier(ir.ExecutionModel, ir.StorageClass, ir.BuiltIn) string {
	return ""
}

// ArgumentAddressSpace has no generic GLSL equivalent (GLSL has no
// explicit address spaces); Base returns "" and MSL always overrides.
func (b *Base) ArgumentAddressSpace(ir.StorageClass, bool) string {
	return ""
}

// MemberAttributeQualifier has no generic rendering; MSL always overrides.
func (b *Base) MemberAttributeQualifier(ir.ExecutionModel, ir.StorageClass, uint32, bool, ir.BuiltIn) string {
	return ""
}

package msl

import (
	"fmt"

	"github.com/gogpu/spvmsl/ir"
)

// mustMemberAttributeQualifier renders the `[[...]]` attribute for one
// member of a synthesized interface block, per the (execution model x
// storage x built-in-ness) matrix of spec.md §4.7, failing for a built-in
// that has no MSL spelling in this context. Non-built-in members in a
// storage class with no attribute convention (UniformConstant) legitimately
// render to "".
func (w *Writer) mustMemberAttributeQualifier(storage ir.StorageClass, builtIn ir.BuiltIn, isBuiltIn bool, location uint32) (string, error) {
	model := w.module.ExecutionModel

	if !isBuiltIn {
		switch storage {
		case ir.StorageInput:
			if model == ir.ExecutionVertex {
				return fmt.Sprintf("[[attribute(%d)]]", location), nil
			}
			return fmt.Sprintf("[[user(locn%d)]]", location), nil
		case ir.StorageOutput:
			if model == ir.ExecutionFragment {
				return fmt.Sprintf("[[color(%d)]]", location), nil
			}
			return fmt.Sprintf("[[user(locn%d)]]", location), nil
		default:
			return "", nil
		}
	}

	switch model {
	case ir.ExecutionVertex:
		if storage == ir.StorageInput {
			switch builtIn {
			case ir.BuiltInVertexIndex:
				return "[[vertex_id]]", nil
			case ir.BuiltInInstanceIndex:
				return "[[instance_id]]", nil
			}
		}
		if storage == ir.StorageOutput {
			switch builtIn {
			case ir.BuiltInPosition:
				return "[[position]]", nil
			case ir.BuiltInPointSize:
				if !w.options.EnablePointSizeBuiltin {
					return "", nil
				}
				return "[[point_size]]", nil
			case ir.BuiltInClipDistance:
				return "[[clip_distance]]", nil
			case ir.BuiltInLayer:
				return "[[render_target_array_index]]", nil
			}
		}
	case ir.ExecutionFragment:
		if storage == ir.StorageInput {
			switch builtIn {
			case ir.BuiltInFrontFacing:
				return "[[front_facing]]", nil
			case ir.BuiltInPointCoord:
				return "[[point_coord]]", nil
			case ir.BuiltInFragCoord:
				return "[[position]]", nil
			case ir.BuiltInSampleId:
				return "[[sample_id]]", nil
			case ir.BuiltInSampleMask:
				return "[[sample_mask]]", nil
			case ir.BuiltInLayer:
				return "[[render_target_array_index]]", nil
			}
		}
		if storage == ir.StorageOutput {
			switch builtIn {
			case ir.BuiltInSampleMask:
				return "[[sample_mask]]", nil
			case ir.BuiltInFragDepth:
				return fmt.Sprintf("[[depth(%s)]]", w.depthQualifier()), nil
			}
		}
	case ir.ExecutionGLCompute:
		switch builtIn {
		case ir.BuiltInGlobalInvocationId:
			return "[[thread_position_in_grid]]", nil
		case ir.BuiltInWorkgroupId:
			return "[[threadgroup_position_in_grid]]", nil
		case ir.BuiltInNumWorkgroups:
			return "[[threadgroups_per_grid]]", nil
		case ir.BuiltInLocalInvocationId:
			return "[[thread_position_in_threadgroup]]", nil
		case ir.BuiltInLocalInvocationIndex:
			return "[[thread_index_in_threadgroup]]", nil
		}
	}
	return "", unsupported("built-in %d has no MSL attribute qualifier for storage class %d under execution model %d", builtIn, storage, model)
}

// depthQualifier reports the depth(...) argument implied by the entry
// point's declared execution modes (spec.md §4.7 "depth(greater|less|any)").
func (w *Writer) depthQualifier() string {
	if _, ok := w.module.Modes[ir.ModeDepthGreater]; ok {
		return "greater"
	}
	if _, ok := w.module.Modes[ir.ModeDepthLess]; ok {
		return "less"
	}
	return "any"
}

// ArgumentAddressSpace renders the address-space keyword for a pointer
// parameter of the given storage class (spec.md §4.6 "Address spaces").
// Implements glslbase.Emitter.
func (w *Writer) ArgumentAddressSpace(storage ir.StorageClass, writable bool) string {
	switch storage {
	case ir.StorageUniform, ir.StoragePushConstant, ir.StorageUniformConstant:
		if writable {
			return "device"
		}
		return "constant"
	case ir.StorageStorageBuffer:
		return "device"
	case ir.StorageWorkgroup:
		return "threadgroup"
	default:
		return "thread"
	}
}

package msl

import "fmt"

// Version represents a Metal Shading Language version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common MSL versions.
var (
	Version1_2 = Version{Major: 1, Minor: 2}
	Version2_0 = Version{Major: 2, Minor: 0}
	Version2_1 = Version{Major: 2, Minor: 1}
	Version2_3 = Version{Major: 2, Minor: 3}
	Version3_0 = Version{Major: 3, Minor: 0}
)

// String returns the version as "major.minor".
func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

// Platform identifies the Metal target platform.
type Platform uint8

const (
	PlatformMacOS Platform = iota
	PlatformIOS
)

// Options configures MSL code generation (spec.md §6).
type Options struct {
	// LangVersion is the target MSL version. Defaults to Version2_1 if zero.
	LangVersion Version

	Platform Platform

	// EnablePointSizeBuiltin controls whether the vertex PointSize
	// built-in is emitted. Defaults to true.
	EnablePointSizeBuiltin bool

	// ResolveSpecializedArrayLengths freezes specialization constants
	// used only as an array length to their default value. Defaults to
	// true.
	ResolveSpecializedArrayLengths bool

	// VertexFixupClipspace selects a clip-space Z remap for the vertex
	// entry function. The emitter does not read this field; setting it
	// leaves the output unchanged.
	VertexFixupClipspace bool

	// VertexFlipVertY selects a clip-space Y sign flip for the vertex
	// entry function (Vulkan and Metal disagree on viewport Y direction).
	// The emitter does not read this field; setting it leaves the output
	// unchanged.
	VertexFlipVertY bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		LangVersion:                    Version2_1,
		Platform:                       PlatformMacOS,
		EnablePointSizeBuiltin:         true,
		ResolveSpecializedArrayLengths: true,
	}
}

// VertexAttributeBinding describes one externally-supplied vertex
// attribute binding (spec.md §6).
type VertexAttributeBinding struct {
	Location    uint32
	MSLBuffer   uint32
	MSLOffset   uint32
	MSLStride   uint32
	PerInstance bool

	// UsedByShader is set by Compile if this binding was consumed.
	UsedByShader bool
}

// ResourceBinding describes one externally-supplied resource binding
// (spec.md §6).
type ResourceBinding struct {
	Stage      ExecutionStage
	DescSet    uint32
	Binding    uint32
	MSLBuffer  uint32
	MSLTexture uint32
	MSLSampler uint32

	// UsedByShader is set by Compile if this binding was consumed.
	UsedByShader bool
}

// ExecutionStage mirrors the three stages this backend supports.
type ExecutionStage uint8

const (
	StageVertex ExecutionStage = iota
	StageFragment
	StageCompute
)

// TranslationInfo reports facts about a completed translation.
type TranslationInfo struct {
	EntryPointName       string
	UsedVertexAttributes []uint32
	UsedResourceBindings int
}

package msl

import "github.com/gogpu/spvmsl/ir"

// helperFlag is one bit of the helper-function registry (spec.md §4.5
// "Helper-function registry"). The registry is monotone across
// recompilation passes per spec.md §5.
type helperFlag uint32

const (
	helperMod helperFlag = 1 << iota
	helperRadians
	helperDegrees
	helperFindILsb
	helperFindUMsb
	helperFindSMsb
	helperArrayCopy
	helperDet2x2
	helperDet3x3
	helperInverse2x2
	helperInverse3x3
	helperInverse4x4
	helperUnpackHalf2x16
	helperPackHalf2x16
	helperUnpackDouble2x32
	helperPackDouble2x32
)

// matrixShape identifies a non-square matrix shape needing a row-major to
// column-major converter helper.
type matrixShape struct {
	cols, rows uint8
}

// helperRegistry accumulates which MSL helper functions the pre-scanner
// and the emitter's own runtime observations determined are needed.
// Requesting an already-set helper is a no-op; requesting a new one
// during emission (rather than during the pre-scan) can change the
// output and so must trigger a recompile (spec.md §4.5).
type helperRegistry struct {
	flags      helperFlag
	converters map[matrixShape]bool
}

func newHelperRegistry() helperRegistry {
	return helperRegistry{converters: map[matrixShape]bool{}}
}

// request sets f if not already set and reports whether it was newly
// added.
func (r *helperRegistry) request(f helperFlag) bool {
	if r.flags&f == f {
		return false
	}
	r.flags |= f
	return true
}

func (r *helperRegistry) has(f helperFlag) bool { return r.flags&f == f }

// requestInverse sets the flags needed to emit an NxN matrix inverse,
// including the smaller determinant helpers it's built from: inverse3x3
// is computed from 2x2 cofactor determinants, inverse4x4 from 3x3 ones
// (which are themselves built from 2x2 ones).
func (r *helperRegistry) requestInverse(n uint8) (newlyAdded bool) {
	switch n {
	case 2:
		newlyAdded = r.request(helperInverse2x2) || newlyAdded
	case 3:
		newlyAdded = r.request(helperDet2x2) || newlyAdded
		newlyAdded = r.request(helperInverse3x3) || newlyAdded
	case 4:
		newlyAdded = r.request(helperDet2x2) || newlyAdded
		newlyAdded = r.request(helperDet3x3) || newlyAdded
		newlyAdded = r.request(helperInverse4x4) || newlyAdded
	}
	return newlyAdded
}

// requestConverter records that a row-major<->column-major converter for
// a cols x rows (non-square) matrix must be emitted.
func (r *helperRegistry) requestConverter(cols, rows uint8) bool {
	shape := matrixShape{cols, rows}
	if r.converters[shape] {
		return false
	}
	r.converters[shape] = true
	return true
}

// requestHelper is the Writer-level entry point used by the emitter
// (msl/expressions.go) and the pre-scanner (msl/prescan.go). It reports
// whether the helper was newly added; a newly added helper sets
// forceRecompile, which the driver loop clears at the start of every
// emission pass, so only a request made during emission forces a retry.
func (w *Writer) requestHelper(f helperFlag) bool {
	added := w.helpers.request(f)
	if added {
		w.forceRecompile = true
	}
	return added
}

// emitHelperFunctions writes every requested helper's MSL definition, in
// a fixed dependency-respecting order, to the Writer's output.
func (w *Writer) emitHelperFunctions() {
	if w.helpers.has(helperArrayCopy) {
		w.writeLine("template<typename T, int N>")
		w.writeLine("void spvArrayCopy(thread T (&dst)[N], thread const T (&src)[N])")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("for (int i = 0; i < N; i++) { dst[i] = src[i]; }")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperMod) {
		w.writeLine("template<typename Tx, typename Ty>")
		w.writeLine("Tx spvMod(Tx x, Ty y)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return x - y * floor(x / y);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperRadians) {
		w.writeLine("template<typename T>")
		w.writeLine("T spvRadians(T deg)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return deg * T(0.01745329251994329576923690768489);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperDegrees) {
		w.writeLine("template<typename T>")
		w.writeLine("T spvDegrees(T rad)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return rad * T(57.295779513082320876798154814105);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperFindILsb) {
		w.writeLine("template<typename T>")
		w.writeLine("T spvFindLSB(T x)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return select(ctz(x), T(-1), x == T(0));")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperFindUMsb) {
		w.writeLine("template<typename T>")
		w.writeLine("T spvFindUMSB(T x)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return select(T(sizeof(T) * 8 - 1) - clz(x), T(-1), x == T(0));")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperFindSMsb) {
		w.writeLine("template<typename T>")
		w.writeLine("T spvFindSMSB(T x)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("T v = select(x, T(-1) - x, x < T(0));")
		w.writeLine("return select(T(sizeof(T) * 8 - 1) - clz(v), T(-1), v == T(0));")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperDet2x2) {
		w.writeLine("float spvDet2x2(float a1, float a2, float b1, float b2)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return a1 * b2 - b1 * a2;")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperDet3x3) {
		w.writeLine("float spvDet3x3(float a1, float a2, float a3, float b1, float b2, float b3, float c1, float c2, float c3)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return a1 * spvDet2x2(b2, b3, c2, c3) - b1 * spvDet2x2(a2, a3, c2, c3) + c1 * spvDet2x2(a2, a3, b2, b3);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperInverse2x2) {
		w.writeLine("float2x2 spvInverse2x2(float2x2 m)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("float2x2 adj;")
		w.writeLine("adj[0][0] =  m[1][1]; adj[0][1] = -m[0][1];")
		w.writeLine("adj[1][0] = -m[1][0]; adj[1][1] =  m[0][0];")
		w.writeLine("float det = (adj[0][0] * m[0][0]) + (adj[0][1] * m[1][0]);")
		w.writeLine("return adj * (1.0 / det);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperInverse3x3) {
		w.writeLine("float3x3 spvInverse3x3(float3x3 m)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("float3x3 adj;")
		w.writeLine("adj[0][0] =  spvDet2x2(m[1][1], m[1][2], m[2][1], m[2][2]);")
		w.writeLine("adj[0][1] = -spvDet2x2(m[0][1], m[0][2], m[2][1], m[2][2]);")
		w.writeLine("adj[0][2] =  spvDet2x2(m[0][1], m[0][2], m[1][1], m[1][2]);")
		w.writeLine("adj[1][0] = -spvDet2x2(m[1][0], m[1][2], m[2][0], m[2][2]);")
		w.writeLine("adj[1][1] =  spvDet2x2(m[0][0], m[0][2], m[2][0], m[2][2]);")
		w.writeLine("adj[1][2] = -spvDet2x2(m[0][0], m[0][2], m[1][0], m[1][2]);")
		w.writeLine("adj[2][0] =  spvDet2x2(m[1][0], m[1][1], m[2][0], m[2][1]);")
		w.writeLine("adj[2][1] = -spvDet2x2(m[0][0], m[0][1], m[2][0], m[2][1]);")
		w.writeLine("adj[2][2] =  spvDet2x2(m[0][0], m[0][1], m[1][0], m[1][1]);")
		w.writeLine("float det = (adj[0][0] * m[0][0]) + (adj[0][1] * m[1][0]) + (adj[0][2] * m[2][0]);")
		w.writeLine("return adj * (1.0 / det);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperInverse4x4) {
		w.writeLine("float4x4 spvInverse4x4(float4x4 m)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("float4x4 adj;")
		w.writeLine("adj[0][0] =  spvDet3x3(m[1][1], m[1][2], m[1][3], m[2][1], m[2][2], m[2][3], m[3][1], m[3][2], m[3][3]);")
		w.writeLine("adj[0][1] = -spvDet3x3(m[0][1], m[0][2], m[0][3], m[2][1], m[2][2], m[2][3], m[3][1], m[3][2], m[3][3]);")
		w.writeLine("adj[0][2] =  spvDet3x3(m[0][1], m[0][2], m[0][3], m[1][1], m[1][2], m[1][3], m[3][1], m[3][2], m[3][3]);")
		w.writeLine("adj[0][3] = -spvDet3x3(m[0][1], m[0][2], m[0][3], m[1][1], m[1][2], m[1][3], m[2][1], m[2][2], m[2][3]);")
		w.writeLine("float det = (adj[0][0] * m[0][0]) + (adj[0][1] * m[1][0]) + (adj[0][2] * m[2][0]) + (adj[0][3] * m[3][0]);")
		w.writeLine("return adj * (1.0 / det);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	for shape := range w.helpers.converters {
		name := matrixTypeName(ir.ScalarFloat, 32, shape.cols, shape.rows)
		w.writeLine("%s spvConvertFromRowMajor%dx%d(%s m)", name, shape.cols, shape.rows, name)
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return transpose(m);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperUnpackHalf2x16) {
		w.writeLine("float2 spvUnpackHalf2x16(uint v)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return float2(as_type<half2>(v));")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperPackHalf2x16) {
		w.writeLine("uint spvPackHalf2x16(float2 v)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return as_type<uint>(half2(v));")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperUnpackDouble2x32) {
		w.writeLine("// Metal has no double type; this fallback splits a double's bit")
		w.writeLine("// pattern as if it were emulated by two floats and is lossy.")
		w.writeLine("uint2 spvUnpackDouble2x32(float v)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("uint bits = as_type<uint>(v);")
		w.writeLine("return uint2(bits, 0u);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
	if w.helpers.has(helperPackDouble2x32) {
		w.writeLine("float spvPackDouble2x32(uint2 v)")
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("return as_type<float>(v.x);")
		w.popIndent()
		w.writeLine("}")
		w.write("\n")
	}
}

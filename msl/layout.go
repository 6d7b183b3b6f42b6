package msl

import "github.com/gogpu/spvmsl/ir"

// layoutCalculator computes declared size and natural alignment of any IR
// type under MSL rules (spec.md §4.4).
type layoutCalculator struct {
	module *ir.Module
}

func newLayoutCalculator(module *ir.Module) *layoutCalculator {
	return &layoutCalculator{module: module}
}

// scalarSize returns a scalar type's size in bytes: its bit width / 8.
func scalarSize(width uint8) uint32 {
	return uint32(width) / 8
}

// size returns the MSL size in bytes of the type named by id.
//
//   - An unpacked 3-vector occupies the space of a 4-vector; a packed
//     3-vector occupies exactly three scalar slots.
//   - A matrix's size is its column count times a column vector of
//     VectorSize components, padded to 4 components unless packed.
//     Row-major layout is not distinguished: a row-major matrix gets the
//     same column-major size.
//   - An array's size is its element stride (ArrayStride) times
//     max(length, 1).
//   - A struct's size is the recursive sum of its members (plus padding,
//     computed separately by the struct aligner).
func (lc *layoutCalculator) size(id ir.ID, packed bool) uint32 {
	t := lc.module.TypeAt(id)
	if t == nil {
		return 0
	}
	switch {
	case t.IsArray():
		elemCount := t.ArrayLengths[0]
		if elemCount == 0 {
			elemCount = 1
		}
		stride := t.ArrayStride
		if stride == 0 && len(t.Members) == 1 {
			stride = lc.size(t.Members[0], packed)
		}
		return stride * elemCount
	case t.IsStruct():
		var total uint32
		for _, m := range t.Members {
			total += lc.size(m, lc.isMemberPacked(id, m))
		}
		return total
	case t.IsMatrix():
		rows := uint32(t.VectorSize)
		rowSize := scalarSize(t.Width) * rows
		if !packed && rows == 3 {
			rowSize = scalarSize(t.Width) * 4
		}
		return rowSize * uint32(t.MatrixCols)
	case t.IsVector():
		n := uint32(t.VectorSize)
		if !packed && n == 3 {
			n = 4
		}
		return scalarSize(t.Width) * n
	default:
		return scalarSize(t.Width)
	}
}

// isMemberPacked is a conservative helper the size calculator uses when it
// does not have member-index context (pure structural size queries on a
// type the aligner hasn't analyzed yet default to unpacked).
func (lc *layoutCalculator) isMemberPacked(ir.ID, ir.ID) bool { return false }

// alignment returns the MSL natural alignment in bytes of the type named
// by id, under the packed/unpacked rule given.
//
// Struct alignment is fixed at 16 bytes (spec.md §4.4, matching Vulkan's
// std140-style rules). Member alignment of a packed member equals its
// component size; of an unpacked member equals its unpacked size divided
// by its column count and array length (spec.md §4.4).
func (lc *layoutCalculator) alignment(id ir.ID, packed bool) uint32 {
	t := lc.module.TypeAt(id)
	if t == nil {
		return 1
	}
	if t.IsStruct() {
		return 16
	}
	if packed {
		return scalarSize(t.Width)
	}
	full := lc.size(id, false)
	cols := uint32(1)
	if t.IsMatrix() {
		cols = uint32(t.MatrixCols)
	}
	arrayLen := uint32(1)
	if t.IsArray() && t.ArrayLengths[0] > 0 {
		arrayLen = t.ArrayLengths[0]
	}
	divisor := cols * arrayLen
	if divisor == 0 {
		divisor = 1
	}
	return full / divisor
}

// alignUp rounds offset up to the next multiple of align (align must be a
// power of two, as every MSL alignment here is).
func alignUp(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

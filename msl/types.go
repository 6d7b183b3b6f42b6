package msl

import (
	"fmt"

	"github.com/gogpu/spvmsl/ir"
)

// Namespace is the MSL metal namespace prefix.
const Namespace = "metal::"

// scalarTypeName maps a scalar ir.Type to its MSL spelling (spec.md §4.6).
func scalarTypeName(kind ir.ScalarKind, width uint8) string {
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
		switch width {
		case 16:
			return "ushort"
		case 64:
			return "size_t"
		default:
			return "uint"
		}
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

// vectorTypeName maps a vector ir.Type to "T<N>".
func vectorTypeName(kind ir.ScalarKind, width, size uint8) string {
	return fmt.Sprintf("%s%d", scalarTypeName(kind, width), size)
}

// matrixTypeName maps a matrix ir.Type to "T<cols>x<rows>". MSL matrices
// are always square-or-rectangular column-major storage of vectors of the
// row count.
func matrixTypeName(kind ir.ScalarKind, width, cols, rows uint8) string {
	if cols == rows {
		return fmt.Sprintf("%s%dx%d", scalarTypeName(kind, width), cols, rows)
	}
	return fmt.Sprintf("%s%dx%d", scalarTypeName(kind, width), cols, rows)
}

// packedVectorTypeName returns the "packed_" variant of a 3-component
// vector type name, used by the struct aligner for packed members.
func packedVectorTypeName(kind ir.ScalarKind, width uint8) string {
	return "packed_" + vectorTypeName(kind, width, 3)
}

// imageDimName maps an ir.ImageDim to its MSL texture-family suffix.
func imageDimName(dim ir.ImageDim) string {
	switch dim {
	case ir.Dim1D:
		return "1d"
	case ir.Dim2D:
		return "2d"
	case ir.Dim3D:
		return "3d"
	case ir.DimCube:
		return "cube"
	default:
		return "2d"
	}
}

// imageAccessName maps an ir.ImageAccess to its metal::access:: spelling.
func imageAccessName(a ir.ImageAccess) string {
	switch a {
	case ir.AccessReadOnly:
		return "read"
	case ir.AccessWriteOnly:
		return "write"
	case ir.AccessReadWrite:
		return "read_write"
	default:
		return "sample"
	}
}

// typeToMSL renders the MSL spelling of t, using w's type-name table for
// struct/array types that need a prior declaration.
func (w *Writer) typeToMSL(id ir.ID) string {
	t := w.module.TypeAt(id)
	if t == nil {
		return "void"
	}
	return w.typeInnerToMSL(id, t)
}

func (w *Writer) typeInnerToMSL(id ir.ID, t *ir.Type) string {
	switch {
	case t.Image != nil:
		return w.imageTypeToMSL(t.Image)
	case t.Sampler:
		return "sampler"
	case t.AtomicCounter:
		return "atomic_" + scalarTypeName(t.Kind, t.Width)
	case t.Pointer:
		base := ir.NullID
		if len(t.Members) == 1 {
			base = t.Members[0]
		}
		space := w.ArgumentAddressSpace(t.StorageClass, !w.meta(id).Flags.Has(ir.DecorationNonWritable))
		return fmt.Sprintf("%s %s*", space, w.typeToMSL(base))
	case t.IsStruct():
		if name, ok := w.typeNames[id]; ok {
			return name
		}
		return fmt.Sprintf("type_%d", id)
	case t.IsArray():
		elem := ir.NullID
		if len(t.Members) == 1 {
			elem = t.Members[0]
		}
		return fmt.Sprintf("array<%s, %d>", w.typeToMSL(elem), maxu(t.ArrayLengths[0], 1))
	case t.IsMatrix():
		return matrixTypeName(t.Kind, t.Width, t.MatrixCols, t.VectorSize)
	case t.IsVector():
		return vectorTypeName(t.Kind, t.Width, t.VectorSize)
	default:
		return scalarTypeName(t.Kind, t.Width)
	}
}

func (w *Writer) imageTypeToMSL(info *ir.ImageInfo) string {
	pixel := "float"
	if p := w.module.TypeAt(info.PixelType); p != nil {
		pixel = scalarTypeName(p.Kind, p.Width)
	}
	family := "texture" + imageDimName(info.Dim)
	if info.Multisampled {
		family += "_ms"
	}
	if info.Arrayed {
		family += "_array"
	}
	if info.Depth {
		family = "depth" + imageDimName(info.Dim)
		if info.Multisampled {
			family += "_ms"
		}
		if info.Arrayed {
			family += "_array"
		}
		return fmt.Sprintf("%s%s<%s>", Namespace, family, pixel)
	}
	return fmt.Sprintf("%s%s<%s, %s::access::%s>", Namespace, family, pixel, "metal", imageAccessName(info.Access))
}

// derefType unwraps a single level of pointer indirection, returning t
// itself when it is not a pointer. Used wherever a variable's declared
// type must be compared against its pointee (e.g. deciding whether a
// UniformConstant variable names an image or sampler).
func (w *Writer) derefType(t *ir.Type) *ir.Type {
	if t != nil && t.Pointer && len(t.Members) == 1 {
		return w.module.TypeAt(t.Members[0])
	}
	return t
}

func maxu(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// bitcastOp renders a bitcast of expr from inType to outType.
//
// Bitcasts between integer/float of equal width emit as_type<T>(...);
// between same-sign integers they emit a plain cast (spec.md §4.6).
func (w *Writer) bitcastOp(expr string, inType, outType *ir.Type) string {
	if inType == nil || outType == nil {
		return expr
	}
	sameWidth := inType.Width == outType.Width
	inIsFloat := inType.Kind == ir.ScalarFloat || inType.Kind == ir.ScalarDouble
	outIsFloat := outType.Kind == ir.ScalarFloat || outType.Kind == ir.ScalarDouble
	if sameWidth && inIsFloat != outIsFloat {
		return fmt.Sprintf("as_type<%s>(%s)", w.typeInnerToMSL(ir.NullID, outType), expr)
	}
	sameSign := (inType.Kind == ir.ScalarInt) == (outType.Kind == ir.ScalarInt) &&
		(inType.Kind == ir.ScalarUint) == (outType.Kind == ir.ScalarUint)
	if sameSign {
		return fmt.Sprintf("(%s)(%s)", w.typeInnerToMSL(ir.NullID, outType), expr)
	}
	return fmt.Sprintf("as_type<%s>(%s)", w.typeInnerToMSL(ir.NullID, outType), expr)
}

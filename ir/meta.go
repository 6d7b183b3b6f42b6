package ir

// DecorationFlags is a bitset of the SPIR-V decorations the MSL backend
// consults. Multiple decorations can apply to the same ID.
type DecorationFlags uint32

const (
	DecorationBlock DecorationFlags = 1 << iota
	DecorationBufferBlock
	DecorationRowMajor
	DecorationColMajor
	DecorationCPacked
	DecorationNonReadable
	DecorationNonWritable
	DecorationBuiltIn
	DecorationLocation
	DecorationOffset
	DecorationBinding
	DecorationDescriptorSet
	DecorationArrayStride
	DecorationMatrixStride
	DecorationSpecId
	DecorationFlat
	DecorationNoPerspective
	DecorationCentroid
	DecorationSample
)

// Has reports whether all bits in mask are set.
func (f DecorationFlags) Has(mask DecorationFlags) bool { return f&mask == mask }

// MemberDecoration carries the per-member decoration record for one member
// of a struct type.
type MemberDecoration struct {
	Flags         DecorationFlags
	Location      uint32
	Offset        uint32
	BuiltIn       BuiltIn
	MatrixStride  uint32
	Name          string
	QualifiedName string // see MetaRecord.QualifiedAlias
}

// MetaRecord is the side-table entry for one ID: every decoration and
// naming fact the backend needs that isn't part of the entity's own shape.
type MetaRecord struct {
	Flags DecorationFlags

	Location      uint32
	Offset        uint32
	Binding       uint32
	DescriptorSet uint32
	ArrayStride   uint32
	MatrixStride  uint32
	SpecID        uint32
	BuiltIn       BuiltIn

	// Alias is the identifier spelled in the original source, if any.
	Alias string

	// QualifiedAlias records the access path an expression referencing
	// this ID should be rewritten to, e.g. "in.position" for a member
	// hoisted into a synthesized interface block.
	QualifiedAlias string

	// Members holds one MemberDecoration per member, valid only when the
	// ID names a struct Type.
	Members []MemberDecoration
}

// Meta is the ID-to-MetaRecord side table.
type Meta map[ID]*MetaRecord

// Get returns the MetaRecord for id, allocating an empty one on first
// access so callers never have to nil-check.
func (m Meta) Get(id ID) *MetaRecord {
	if rec, ok := m[id]; ok {
		return rec
	}
	rec := &MetaRecord{}
	m[id] = rec
	return rec
}

// MemberAt returns (and lazily grows) the MemberDecoration slot for member
// index idx of the struct named by id.
func (m Meta) MemberAt(id ID, idx int) *MemberDecoration {
	rec := m.Get(id)
	for len(rec.Members) <= idx {
		rec.Members = append(rec.Members, MemberDecoration{})
	}
	return &rec.Members[idx]
}

// CloneFrom copies the decoration flags, Location, Offset, Binding,
// DescriptorSet, BuiltIn and Alias from src's meta into dst's meta; every
// other field of dst, including QualifiedAlias (always path-specific) and
// any per-member decorations, is reset to its zero value. Used when the
// interface-block builder and global localizer allocate new IDs that
// alias an existing variable's semantics.
func (m Meta) CloneFrom(dst, src ID) {
	s := m.Get(src)
	d := m.Get(dst)
	flags := s.Flags
	loc, off, bind, ds := s.Location, s.Offset, s.Binding, s.DescriptorSet
	bi := s.BuiltIn
	alias := s.Alias
	*d = MetaRecord{
		Flags:         flags,
		Location:      loc,
		Offset:        off,
		Binding:       bind,
		DescriptorSet: ds,
		BuiltIn:       bi,
		Alias:         alias,
	}
}

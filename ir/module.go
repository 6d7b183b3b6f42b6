package ir

// Module is a complete parsed-and-validated SPIR-V module in IR form: the
// flat entity Pool, the parallel Meta table, and the module-level facts
// (entry point, execution model/modes) the MSL backend needs.
type Module struct {
	// Pool holds every entity, indexed by ID. Pool[0] is always the zero
	// value (EntityNone) standing in for NullID.
	Pool []Entity

	// Meta is the ID-to-decoration side table.
	Meta Meta

	EntryPoint     ID // Function ID
	EntryName      string
	ExecutionModel ExecutionModel

	// Modes holds the execution modes declared on the entry point, keyed
	// by ExecutionMode. LocalSize's three operands are packed into the
	// three elements of the value slice.
	Modes map[ExecutionMode][]uint32

	// InterfaceVars lists every Input/Output/UniformConstant variable ID
	// reachable from the entry point before interface-block synthesis
	// runs (populated by the parser; consumed and replaced by the
	// interface-block builder).
	InterfaceVars []ID
}

// NewModule returns an empty Module with ID zero reserved.
func NewModule() *Module {
	return &Module{
		Pool:  []Entity{{Kind: EntityNone}},
		Meta:  Meta{},
		Modes: map[ExecutionMode][]uint32{},
	}
}

// NextID returns the ID that the next New* call will return, without
// allocating it. Useful for invariants that want to assert "any live ID is
// within the current upper bound" before mutating the pool.
func (m *Module) NextID() ID {
	return ID(len(m.Pool))
}

// alloc appends a new Pool slot and returns its ID. The upper bound grows
// monotonically; IDs are never freed or reused.
func (m *Module) alloc(e Entity) ID {
	id := ID(len(m.Pool))
	m.Pool = append(m.Pool, e)
	return id
}

// Get returns the entity stored at id. NullID yields the reserved
// EntityNone slot. It panics on an out-of-bounds id, which indicates a bug
// in the caller, not a recoverable runtime condition, since every live ID
// is guaranteed in-bounds by construction.
func (m *Module) Get(id ID) Entity {
	return m.Pool[id]
}

// TypeAt returns the Type stored at id, or nil if id does not name a Type.
func (m *Module) TypeAt(id ID) *Type {
	if int(id) >= len(m.Pool) {
		return nil
	}
	e := m.Pool[id]
	if e.Kind != EntityType {
		return nil
	}
	return e.Type
}

// VariableAt returns the Variable stored at id, or nil if id does not name a Variable.
func (m *Module) VariableAt(id ID) *Variable {
	if int(id) >= len(m.Pool) {
		return nil
	}
	e := m.Pool[id]
	if e.Kind != EntityVariable {
		return nil
	}
	return e.Variable
}

// ConstantAt returns the Constant stored at id, or nil if id does not name a Constant.
func (m *Module) ConstantAt(id ID) *Constant {
	if int(id) >= len(m.Pool) {
		return nil
	}
	e := m.Pool[id]
	if e.Kind != EntityConstant {
		return nil
	}
	return e.Constant
}

// FunctionAt returns the Function stored at id, or nil if id does not name a Function.
func (m *Module) FunctionAt(id ID) *Function {
	if int(id) >= len(m.Pool) {
		return nil
	}
	e := m.Pool[id]
	if e.Kind != EntityFunction {
		return nil
	}
	return e.Function
}

// BlockAt returns the Block stored at id, or nil if id does not name a Block.
func (m *Module) BlockAt(id ID) *Block {
	if int(id) >= len(m.Pool) {
		return nil
	}
	e := m.Pool[id]
	if e.Kind != EntityBlock {
		return nil
	}
	return e.Block
}

// ExpressionAt returns the Expression stored at id, or nil if id does not name an Expression.
func (m *Module) ExpressionAt(id ID) *Expression {
	if int(id) >= len(m.Pool) {
		return nil
	}
	e := m.Pool[id]
	if e.Kind != EntityExpression {
		return nil
	}
	return e.Expression
}

// NewType allocates a fresh Type entity and returns its ID.
func (m *Module) NewType(t Type) ID {
	tc := t
	return m.alloc(Entity{Kind: EntityType, Type: &tc})
}

// NewVariable allocates a fresh Variable entity and returns its ID.
func (m *Module) NewVariable(v Variable) ID {
	vc := v
	return m.alloc(Entity{Kind: EntityVariable, Variable: &vc})
}

// NewConstant allocates a fresh Constant entity and returns its ID.
func (m *Module) NewConstant(c Constant) ID {
	cc := c
	return m.alloc(Entity{Kind: EntityConstant, Constant: &cc})
}

// NewFunction allocates a fresh Function entity and returns its ID.
func (m *Module) NewFunction(f Function) ID {
	fc := f
	return m.alloc(Entity{Kind: EntityFunction, Function: &fc})
}

// NewBlock allocates a fresh Block entity and returns its ID.
func (m *Module) NewBlock(b Block) ID {
	bc := b
	return m.alloc(Entity{Kind: EntityBlock, Block: &bc})
}

// NewExpression allocates a fresh Expression entity mirroring instr and
// returns its ID. The caller is responsible for also appending a matching
// Instruction record (with the same ID as Result) to the owning Block.
func (m *Module) NewExpression(expr Expression) ID {
	ec := expr
	return m.alloc(Entity{Kind: EntityExpression, Expression: &ec})
}

// NewUndef allocates a fresh Undef entity and returns its ID.
func (m *Module) NewUndef(u Undef) ID {
	uc := u
	return m.alloc(Entity{Kind: EntityUndef, Undef: &uc})
}

// SetExpression overwrites the Expression stored at an already-allocated
// id. Used by passes (e.g. the global localizer rewriting a call's
// argument list) that need to mutate an expression's operands in place
// without changing its identity.
func (m *Module) SetExpression(id ID, expr Expression) {
	ec := expr
	m.Pool[id] = Entity{Kind: EntityExpression, Expression: &ec}
}

// Blocks returns the Block entities for a function, in layout order.
func (m *Module) Blocks(fn *Function) []*Block {
	out := make([]*Block, len(fn.Blocks))
	for i, id := range fn.Blocks {
		out[i] = m.BlockAt(id)
	}
	return out
}

// ReturnBlocks returns the IDs of every block in fn whose terminator is a
// (possibly value-carrying) return.
func (m *Module) ReturnBlocks(fn *Function) []ID {
	var out []ID
	for _, id := range fn.Blocks {
		b := m.BlockAt(id)
		if b.Terminator.Kind == TerminatorReturn || b.Terminator.Kind == TerminatorReturnValue {
			out = append(out, id)
		}
	}
	return out
}

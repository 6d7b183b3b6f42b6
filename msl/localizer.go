package msl

import "github.com/gogpu/spvmsl/ir"

// orderedIDSet is an insertion-ordered set of IDs: the global localizer's
// parameter lists must be deterministic, so plain map iteration order is
// not acceptable (spec.md §4.3 "allocate fresh IDs... one new parameter
// per reached global").
type orderedIDSet struct {
	order []ir.ID
	has   map[ir.ID]bool
}

func newOrderedIDSet() *orderedIDSet {
	return &orderedIDSet{has: map[ir.ID]bool{}}
}

func (s *orderedIDSet) add(id ir.ID) {
	if s.has[id] {
		return
	}
	s.has[id] = true
	s.order = append(s.order, id)
}

func (s *orderedIDSet) union(other *orderedIDSet) {
	for _, id := range other.order {
		s.add(id)
	}
}

// globalLocalizer implements spec.md §4.3: Private/Workgroup globals
// become entry-function locals; every other module-scope variable a
// non-entry function accesses (transitively) is threaded onto that
// function's parameter list.
type globalLocalizer struct {
	w          *Writer
	module     *ir.Module
	candidates map[ir.ID]bool
	memo       map[ir.ID]*orderedIDSet
	inProgress map[ir.ID]bool

	// paramFor maps a function id and a global id it now threads to the
	// fresh parameter id standing in for that global inside that
	// function's own body and call sites.
	paramFor map[ir.ID]map[ir.ID]ir.ID
}

func newGlobalLocalizer(w *Writer) *globalLocalizer {
	gl := &globalLocalizer{
		w:          w,
		module:     w.module,
		candidates: map[ir.ID]bool{},
		memo:       map[ir.ID]*orderedIDSet{},
		inProgress: map[ir.ID]bool{},
		paramFor:   map[ir.ID]map[ir.ID]ir.ID{},
	}
	for id, e := range w.module.Pool {
		if e.Kind != ir.EntityVariable {
			continue
		}
		switch e.Variable.StorageClass {
		case ir.StoragePrivate, ir.StorageWorkgroup,
			ir.StorageInput, ir.StorageUniform, ir.StorageUniformConstant,
			ir.StoragePushConstant, ir.StorageStorageBuffer:
			gl.candidates[ir.ID(id)] = true
		}
	}
	return gl
}

// run executes the pass, rooted at the entry function.
func (gl *globalLocalizer) run(entryFnID ir.ID) error {
	entryFn := gl.module.FunctionAt(entryFnID)
	if entryFn == nil {
		return compilerBug("global localizer: entry function id %d does not name a function", entryFnID)
	}

	gl.demoteLocalGlobals(entryFn)

	// Entry function itself accesses remaining globals directly; only
	// its callees need threading. Walk the entry body collecting callees,
	// then localize each reachable non-entry function in turn.
	visited := map[ir.ID]bool{}
	var walk func(fnID ir.ID)
	walk = func(fnID ir.ID) {
		if visited[fnID] {
			return
		}
		visited[fnID] = true
		if fnID != entryFnID {
			gl.reached(fnID)
		}
		fn := gl.module.FunctionAt(fnID)
		if fn == nil {
			return
		}
		for _, blockID := range fn.Blocks {
			b := gl.module.BlockAt(blockID)
			for _, instr := range b.Instructions {
				if instr.Op == ir.OpFunctionCall && len(instr.Operands) > 0 {
					walk(instr.Operands[0])
				}
			}
		}
	}
	walk(entryFnID)

	for fnID := range visited {
		if fnID == entryFnID {
			continue
		}
		gl.rewriteSignature(fnID)
	}
	gl.rewriteCallSites(entryFnID, entryFn)
	for fnID := range visited {
		if fnID != entryFnID {
			if fn := gl.module.FunctionAt(fnID); fn != nil {
				gl.rewriteCallSites(fnID, fn)
			}
		}
	}
	return nil
}

// demoteLocalGlobals moves every Private/Workgroup candidate into the
// entry function's locals with its storage class rewritten to Function.
// The demoted variables stay candidates, so a callee that accesses one is
// still threaded a parameter for it.
func (gl *globalLocalizer) demoteLocalGlobals(entryFn *ir.Function) {
	for id := range gl.candidates {
		v := gl.module.VariableAt(id)
		if v.StorageClass != ir.StoragePrivate && v.StorageClass != ir.StorageWorkgroup {
			continue
		}
		v.StorageClass = ir.StorageFunction
		entryFn.Locals = append(entryFn.Locals, id)
	}
}

// reached returns (computing and memoizing if necessary) the ordered set
// of candidate globals function fnID accesses, directly or through
// callees. A function discovered while already in progress (a call-graph
// cycle) contributes its current partial set, per spec.md §4.3's
// memoization-based cycle handling.
func (gl *globalLocalizer) reached(fnID ir.ID) *orderedIDSet {
	if set, ok := gl.memo[fnID]; ok {
		return set
	}
	set := newOrderedIDSet()
	gl.memo[fnID] = set
	if gl.inProgress[fnID] {
		return set
	}
	gl.inProgress[fnID] = true
	defer delete(gl.inProgress, fnID)

	fn := gl.module.FunctionAt(fnID)
	if fn == nil {
		return set
	}
	for _, blockID := range fn.Blocks {
		b := gl.module.BlockAt(blockID)
		for _, instr := range b.Instructions {
			switch instr.Op {
			case ir.OpLoad, ir.OpAccessChain:
				if len(instr.Operands) > 0 && gl.candidates[instr.Operands[0]] {
					set.add(instr.Operands[0])
				}
			case ir.OpStore:
				if len(instr.Operands) > 0 && gl.candidates[instr.Operands[0]] {
					set.add(instr.Operands[0])
				}
			case ir.OpFunctionCall:
				if len(instr.Operands) == 0 {
					continue
				}
				for _, arg := range instr.Operands[1:] {
					if gl.candidates[arg] {
						set.add(arg)
					}
				}
				set.union(gl.reached(instr.Operands[0]))
			}
		}
	}
	return set
}

// rewriteSignature appends one fresh Function-storage parameter per
// global reached by fnID, preserving the original variable's alias
// metadata on the new parameter id, and records the mapping in
// w.globalParams for rewriteCallSites.
func (gl *globalLocalizer) rewriteSignature(fnID ir.ID) {
	reached := gl.reached(fnID)
	if len(reached.order) == 0 {
		return
	}
	fn := gl.module.FunctionAt(fnID)
	params := make([]ir.ID, len(reached.order))
	mapping := map[ir.ID]ir.ID{}
	for i, globalID := range reached.order {
		g := gl.module.VariableAt(globalID)
		paramID := gl.module.NewVariable(ir.Variable{Type: g.Type, StorageClass: ir.StorageFunction})
		gl.module.Meta.CloneFrom(paramID, globalID)
		name := gl.w.name(globalID)
		gl.w.ensureUniqueName(paramID, name)
		params[i] = paramID
		mapping[globalID] = paramID
		fn.Parameters = append(fn.Parameters, paramID)
		gl.retarget(fn, globalID, paramID)
	}
	gl.paramFor[fnID] = mapping
	gl.w.globalParams[fnID] = params
}

// retarget rewrites every Load/AccessChain/Store operand referencing
// globalID inside fn's body to reference paramID instead, so the
// function's own instructions use the new parameter rather than the
// original module-scope variable.
func (gl *globalLocalizer) retarget(fn *ir.Function, globalID, paramID ir.ID) {
	for _, blockID := range fn.Blocks {
		b := gl.module.BlockAt(blockID)
		for i := range b.Instructions {
			instr := &b.Instructions[i]
			switch instr.Op {
			case ir.OpLoad, ir.OpAccessChain, ir.OpStore:
				if len(instr.Operands) > 0 && instr.Operands[0] == globalID {
					instr.Operands[0] = paramID
				}
			}
			if instr.Result != ir.NullID {
				if expr := gl.module.ExpressionAt(instr.Result); expr != nil {
					exprCopy := *expr
					if len(exprCopy.Operands) > 0 && exprCopy.Operands[0] == globalID {
						exprCopy.Operands[0] = paramID
						gl.module.SetExpression(instr.Result, exprCopy)
					}
				}
			}
		}
	}
}

// rewriteCallSites forwards the caller's own (possibly just-rewritten)
// parameter/global IDs as trailing arguments at every OpFunctionCall in
// fn whose callee now expects extra global parameters.
func (gl *globalLocalizer) rewriteCallSites(fnID ir.ID, fn *ir.Function) {
	for _, blockID := range fn.Blocks {
		b := gl.module.BlockAt(blockID)
		for i := range b.Instructions {
			instr := &b.Instructions[i]
			if instr.Op != ir.OpFunctionCall || len(instr.Operands) == 0 {
				continue
			}
			calleeID := instr.Operands[0]
			extra, ok := gl.w.globalParams[calleeID]
			if !ok {
				continue
			}
			for _, globalID := range extra {
				instr.Operands = append(instr.Operands, gl.forwardArg(fnID, globalID))
			}
		}
	}
}

// forwardArg resolves the argument callerID should forward for a global
// the callee now expects: the caller's own threaded parameter standing in
// for that global, if the localizer gave the caller one, or the global
// itself if the caller accesses it directly (e.g. the entry function).
func (gl *globalLocalizer) forwardArg(callerID ir.ID, globalID ir.ID) ir.ID {
	if mapping, ok := gl.paramFor[callerID]; ok {
		if paramID, ok := mapping[globalID]; ok {
			return paramID
		}
	}
	return globalID
}

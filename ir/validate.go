package ir

import "fmt"

// ValidationError represents one violated invariant, with enough context
// to locate it.
type ValidationError struct {
	Message  string
	ID       ID
	Function ID
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != NullID {
		return fmt.Sprintf("in function %d, id %d: %s", e.Function, e.ID, e.Message)
	}
	if e.ID != NullID {
		return fmt.Sprintf("id %d: %s", e.ID, e.Message)
	}
	return e.Message
}

// Validator checks a Module against the invariants named in spec.md §3.
type Validator struct {
	module *Module
	errors []ValidationError
}

// Validate checks module for correctness. It returns the collected
// violations (nil if none) or a non-nil error only for a malformed
// argument (nil module).
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("ir: nil module")
	}
	v := &Validator{module: module}
	v.validateIDBound()
	v.validatePointerStorageAgreement()
	v.validateNoDanglingReferences()
	if len(v.errors) == 0 {
		return nil, nil
	}
	return v.errors, nil
}

func (v *Validator) fail(id, fn ID, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message:  fmt.Sprintf(format, args...),
		ID:       id,
		Function: fn,
	})
}

// validateIDBound checks "ID zero is reserved as the null ID; any live ID
// is within the current upper bound."
func (v *Validator) validateIDBound() {
	bound := ID(len(v.module.Pool))
	check := func(id ID) {
		if id != NullID && id >= bound {
			v.fail(id, NullID, "id %d exceeds pool upper bound %d", id, bound)
		}
	}
	for id, e := range v.module.Pool {
		if ID(id) == NullID {
			continue
		}
		switch e.Kind {
		case EntityType:
			for _, m := range e.Type.Members {
				check(m)
			}
		case EntityVariable:
			check(e.Variable.Type)
			check(e.Variable.Initializer)
			check(e.Variable.BaseVariable)
		case EntityConstant:
			check(e.Constant.Type)
			for _, c := range e.Constant.Components {
				check(c)
			}
		case EntityFunction:
			check(e.Function.ReturnType)
			for _, p := range e.Function.Parameters {
				check(p)
			}
			for _, l := range e.Function.Locals {
				check(l)
			}
			for _, b := range e.Function.Blocks {
				check(b)
			}
		case EntityBlock:
			for _, instr := range e.Block.Instructions {
				check(instr.ResultType)
				check(instr.Result)
				for _, op := range instr.Operands {
					check(op)
				}
			}
			check(e.Block.Terminator.ReturnValue)
			check(e.Block.Terminator.Condition)
			for _, t := range e.Block.Terminator.Targets {
				check(t)
			}
		case EntityExpression:
			check(e.Expression.ResultType)
			for _, op := range e.Expression.Operands {
				check(op)
			}
		case EntityUndef:
			check(e.Undef.Type)
		}
	}
}

// validatePointerStorageAgreement checks "A Variable's storage class and
// its Type's storage class must agree where the Type is a pointer."
func (v *Validator) validatePointerStorageAgreement() {
	for id, e := range v.module.Pool {
		if e.Kind != EntityVariable {
			continue
		}
		t := v.module.TypeAt(e.Variable.Type)
		if t == nil || !t.Pointer {
			continue
		}
		if t.StorageClass != e.Variable.StorageClass {
			v.fail(ID(id), NullID,
				"variable storage class %v disagrees with pointer type storage class %v",
				e.Variable.StorageClass, t.StorageClass)
		}
	}
}

// validateNoDanglingReferences checks that every block referenced by a
// function's Blocks list, and every target in a terminator, actually names
// a Block entity (not a Block-less garbage ID). This is a precondition the
// later passes (global localizer, interface builder) rely on.
func (v *Validator) validateNoDanglingReferences() {
	for id, e := range v.module.Pool {
		if e.Kind != EntityFunction {
			continue
		}
		for _, b := range e.Function.Blocks {
			if v.module.BlockAt(b) == nil {
				v.fail(b, ID(id), "function block list references non-block id %d", b)
			}
		}
	}
	for id, e := range v.module.Pool {
		if e.Kind != EntityBlock {
			continue
		}
		for _, t := range e.Block.Terminator.Targets {
			if v.module.BlockAt(t) == nil {
				v.fail(t, NullID, "terminator of block %d targets non-block id %d", id, t)
			}
		}
	}
}

// ValidateNoModuleScopeLocals checks the post-localization invariant: "no
// non-constant module-scope variable with Private or Workgroup storage
// remains." Called by the driver after the global-localizer pass runs.
func ValidateNoModuleScopeLocals(module *Module, moduleScope []ID) error {
	for _, id := range moduleScope {
		v := module.VariableAt(id)
		if v == nil {
			continue
		}
		if v.StorageClass == StoragePrivate || v.StorageClass == StorageWorkgroup {
			return fmt.Errorf("ir: global localizer left module-scope variable %d in storage class %v", id, v.StorageClass)
		}
	}
	return nil
}

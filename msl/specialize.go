package msl

import (
	"fmt"

	"github.com/gogpu/spvmsl/ir"
)

// resolveSpecializedArrayLengths implements spec.md §6's
// ResolveSpecializedArrayLengths option. MSL array types must have a
// compile-time length, so a specialization constant that sizes an array's
// outermost dimension (arrayLengthSpecConstants, populated by the opcode
// pre-scanner) can never be overridden at pipeline time regardless of this
// option; when the option is on, such a constant is instead demoted to its
// baked default value (scalarLiteral already renders a
// ConstantSpecialization's Bits exactly like a plain scalar constant, so
// the demotion needs no extra work beyond leaving it unnamed). Every other
// specialization constant keeps a stable name and is declared as a real
// MSL function constant ([[function_constant(id)]]) in the header, so the
// host app can still override it at pipeline-creation time.
func (w *Writer) resolveSpecializedArrayLengths() {
	for id, e := range w.module.Pool {
		if e.Kind != ir.EntityConstant || e.Constant == nil || e.Constant.Kind != ir.ConstantSpecialization {
			continue
		}
		cid := ir.ID(id)
		if w.options.ResolveSpecializedArrayLengths && w.arrayLengthSpecConstants[cid] {
			continue
		}
		base := w.meta(cid).Alias
		if base == "" {
			base = fmt.Sprintf("spvSpec%d", e.Constant.SpecID)
		}
		w.ensureUniqueName(cid, sanitizeIdent(base, "s"))
		w.functionConstants = append(w.functionConstants, cid)
	}
}

package msl

import (
	"fmt"

	"github.com/gogpu/spvmsl/ir"
)

// assignNames runs the identifier-collision-renaming step (spec.md §4.1
// step 1): every named entity gets a sanitized, unique MSL identifier
// before any pass emits text that references it by name. The entry
// function is always named "main0", following the convention that MSL
// reserves "main" for its own use (spec.md §4.6).
func (w *Writer) assignNames(entryFnID ir.ID) {
	for id, e := range w.module.Pool {
		switch e.Kind {
		case ir.EntityFunction:
			fid := ir.ID(id)
			if fid == entryFnID {
				w.ensureUniqueName(fid, "main0")
				continue
			}
			base := w.meta(fid).Alias
			if base == "" {
				base = fmt.Sprintf("func_%d", fid)
			}
			w.ensureUniqueName(fid, sanitizeIdent(base, "f"))
		case ir.EntityVariable:
			vid := ir.ID(id)
			if _, named := w.names[vid]; named {
				continue
			}
			base := w.meta(vid).Alias
			if base == "" {
				continue // left to a positional fallback name when first referenced
			}
			w.ensureUniqueName(vid, sanitizeIdent(base, "m"))
		case ir.EntityType:
			tid := ir.ID(id)
			if e.Type == nil || !e.Type.IsStruct() {
				continue
			}
			if _, named := w.typeNames[tid]; named {
				continue
			}
			base := w.meta(tid).Alias
			if base == "" {
				base = fmt.Sprintf("type_%d", tid)
			}
			w.typeNames[tid] = w.disambiguateTypeName(sanitizeIdent(base, "t"))
		}
	}
}

// disambiguateTypeName reuses the variable/function name table's collision
// rules so a struct name can never collide with a variable or function
// name in the same translation unit (MSL, like C++, shares one namespace
// across them at file scope).
func (w *Writer) disambiguateTypeName(base string) string {
	candidate := base
	for i := 1; ; i++ {
		if _, used := w.usedNames[candidate]; !used {
			break
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	w.usedNames[candidate] = struct{}{}
	return candidate
}

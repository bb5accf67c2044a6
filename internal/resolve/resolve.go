// Package resolve implements the layer resolver: spec §4.5, the hardest
// subsystem in the compiler. Three phases run over an already-flattened,
// already-validated ir.Definition, mutating it in place:
//
//   - Phase A marks each Reference's IsGlobal false when its name is a
//     generic parameter of the enclosing declaration rather than a
//     top-level type.
//   - Phase B (the "layer closure") clones and re-layers every declaration
//     that transitively depends on a type which exists at a higher layer,
//     so that every reference can later find a same-or-lower-layer target.
//   - Phase C resolves every remaining global Reference to a concrete
//     (resolved_layer, is_highest_layer) pair, optionally de-aliasing
//     @resolve aliases along the way.
//
// Grounded on the original compiler's resolver.rs. Phase C is deliberately
// NOT a single self-referential mutate-while-reading pass (the original's
// "unsafe" fast path does that by aliasing through a const pointer — spec §9
// explicitly says not to replicate it). Instead it is split into a read pass
// that builds a pure "resolution plan" mirroring the reference tree
// (planRef in alias.go) and a write pass that applies the plan
// (applyRef in alias.go); the two passes never hold overlapping mutable
// and immutable views of the same node.
package resolve

import (
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/flatten"
	"github.com/whzard/punybuf/internal/ir"
)

// Options configures a resolver run.
type Options struct {
	// NoResolve corresponds to the CLI's --no-resolve: skip @resolve alias
	// de-aliasing and leave aliases symbolic.
	NoResolve bool
}

// Resolve runs all three phases over def, mutating it in place, and returns
// any resolver-panic-class errors encountered (spec §7: "an internal
// invariant violation ... surface as fatal aborts with the failing span").
func Resolve(def *ir.Definition, opt Options) *errors.List {
	r := &resolver{def: def, opt: opt}
	r.phaseA()
	r.phaseB()
	errs := r.phaseC()
	r.markHighestLayerDecls()
	return errs
}

type resolver struct {
	def  *ir.Definition
	opt  Options
	errs *errors.List
}

// declGenerics returns the GenericArgs in scope for references found inside
// t's own body (not generics of types referenced from inside it).
func declGenerics(t *ir.TypeDef) []string { return t.GenericArgs }

// phaseA walks every Reference in every TypeDef (aliases have no body of
// their own besides the target) and sets IsGlobal=false where the
// reference's top-level name matches one of the enclosing declaration's
// generic parameters. Commands carry no generics (spec §4.2), so only
// Types are walked.
func (r *resolver) phaseA() {
	for _, t := range r.def.Types {
		generics := declGenerics(t)
		if len(generics) == 0 {
			continue
		}
		switch t.Kind {
		case ir.KindAlias:
			markGeneric(t.Alias, generics)
		case ir.KindStruct:
			for _, f := range t.Fields {
				markGeneric(f.Value, generics)
				for _, fl := range f.Flags {
					if fl.Value != nil {
						markGeneric(fl.Value, generics)
					}
				}
			}
		case ir.KindEnum:
			for _, v := range t.Variants {
				if v.Value != nil {
					markGeneric(v.Value, generics)
				}
			}
		}
	}
}

// markGeneric sets ref.IsGlobal=false iff ref.Name is one of generics; it
// then recurses into ref.Generics reusing the SAME generics set (nested
// generic argument names are still compared against the enclosing
// declaration's parameters, not against whatever type ref itself names).
func markGeneric(ref *ir.TypeRef, generics []string) {
	if ref == nil {
		return
	}
	for _, g := range generics {
		if ref.Name == g {
			ref.IsGlobal = false
			break
		}
	}
	for _, g := range ref.Generics {
		markGeneric(g, generics)
	}
}

// markHighestLayerDecls sets IsHighestLayer on every TypeDef/CommandDef,
// per spec §4.5 "Highest-layer flag on declarations": run after reference
// resolution so it reflects the fully closed-over layer set.
func (r *resolver) markHighestLayerDecls() {
	for _, t := range r.def.Types {
		max, _ := r.def.HighestLayerFor(t.Name)
		t.IsHighestLayer = t.Layer == max
	}
	for _, c := range r.def.Commands {
		max, _ := r.def.CommandHighestLayerFor(c.Name)
		c.IsHighestLayer = c.Layer == max
	}
}

// recomputeCommandID is used by the Phase B cloner; it delegates to
// internal/flatten so the CRC32/cksum formula lives in exactly one place.
func recomputeCommandID(name string, layer uint32) uint32 {
	return flatten.CommandID(name, layer)
}

package resolve

import (
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/ir"
	"github.com/whzard/punybuf/internal/token"
)

// maxAliasHops bounds @resolve de-aliasing recursion (spec §4.5: "Hop count
// is bounded (cycle detection: fail at ~100 hops)").
const maxAliasHops = 100

// refPlan is the pure, read-only mirror of one Reference's resolution
// outcome: spec §4.5's "resolution tree". Phase C's read pass builds a tree
// of these (never touching the Definition's mutable fields); the write pass
// (applyRef) then materializes each plan back onto its Reference.
type refPlan struct {
	name           string
	isGlobal       bool
	resolvedLayer  *uint32
	isHighestLayer bool
	generics       []*refPlan
}

// site is one root Reference position (an alias target, a field/flag/
// variant value, or a command argument/return/error value) together with
// the layer of the declaration that owns it.
type site struct {
	ref         *ir.TypeRef
	parentLayer uint32
}

// phaseC resolves every global Reference in the definition: spec §4.5 Phase
// C. It is split into a read pass (plan everything) and a write pass
// (apply everything) so that planning a Reference never observes a
// Definition that resolution has already started mutating.
func (r *resolver) phaseC() *errors.List {
	sites := gatherSites(r.def)

	plans := make([]*refPlan, len(sites))
	for i, s := range sites {
		plans[i] = r.planRef(s.ref, s.parentLayer, 0)
	}
	for i, s := range sites {
		applyRef(s.ref, plans[i])
	}
	return r.errs
}

func gatherSites(def *ir.Definition) []site {
	var out []site
	for _, t := range def.Types {
		for _, ref := range refsOfType(t) {
			out = append(out, site{ref: ref, parentLayer: t.Layer})
		}
	}
	for _, c := range def.Commands {
		for _, ref := range refsOfCommand(c) {
			out = append(out, site{ref: ref, parentLayer: c.Layer})
		}
	}
	return out
}

// errs is attached to the resolver lazily by planRef/panicf so that phaseA
// and phaseB (which cannot themselves fail) don't need to thread an error
// list through their call graphs.
func (r *resolver) panicf(span token.Span, format string, args ...interface{}) {
	r.errs = errors.Append(r.errs, errors.Newf(span, format, args...))
}

// planRef is the read pass for one Reference: it never mutates def or ref.
func (r *resolver) planRef(ref *ir.TypeRef, parentLayer uint32, hops int) *refPlan {
	if ref == nil {
		return nil
	}

	if !ref.IsGlobal || ref.Name == "Void" {
		p := &refPlan{name: ref.Name, isGlobal: ref.IsGlobal, isHighestLayer: ref.IsHighestLayer}
		if ref.ResolvedLayer != nil {
			l := *ref.ResolvedLayer
			p.resolvedLayer = &l
		}
		for _, g := range ref.Generics {
			p.generics = append(p.generics, r.planRef(g, parentLayer, hops))
		}
		return p
	}

	if hops > maxAliasHops {
		r.panicf(ref.Span, "@resolve alias chain for %q exceeded %d hops (cycle?)", ref.Name, maxAliasHops)
		return &refPlan{name: ref.Name, isGlobal: true}
	}

	target := r.def.AtOrBelow(ref.Name, parentLayer)
	if target == nil {
		r.panicf(ref.Span, "internal error: no declaration of %q exists at or below layer %d", ref.Name, parentLayer)
		return &refPlan{name: ref.Name, isGlobal: true}
	}
	overallHighest, _ := r.def.HighestLayerFor(ref.Name)

	if !r.opt.NoResolve && target.Kind == ir.KindAlias && target.IsResolve() {
		substituted := substituteAlias(target, ref.Generics)
		return r.planRef(substituted, parentLayer, hops+1)
	}

	layer := target.Layer
	p := &refPlan{name: ref.Name, isGlobal: true, resolvedLayer: &layer, isHighestLayer: layer == overallHighest}
	for _, g := range ref.Generics {
		p.generics = append(p.generics, r.planRef(g, parentLayer, hops))
	}
	return p
}

// applyRef is the write pass: it materializes plan onto ref in place,
// always rebuilding ref.Generics fresh (a substitution can change arity, so
// reusing the old generic slots by position would be unsound).
func applyRef(ref *ir.TypeRef, plan *refPlan) {
	if ref == nil || plan == nil {
		return
	}
	ref.Name = plan.name
	ref.IsGlobal = plan.isGlobal
	ref.ResolvedLayer = plan.resolvedLayer
	ref.IsHighestLayer = plan.isHighestLayer

	generics := make([]*ir.TypeRef, len(plan.generics))
	for i, gp := range plan.generics {
		child := &ir.TypeRef{Span: ref.Span}
		applyRef(child, gp)
		generics[i] = child
	}
	ref.Generics = generics
}

// substituteAlias implements spec §4.5's alias substitution: given
// `Alias<T1,...,Tn> = Body` and a call site `Alias<A1,...,An>` (callArgs),
// compute the Reference that should stand in for the call site.
func substituteAlias(target *ir.TypeDef, callArgs []*ir.TypeRef) *ir.TypeRef {
	return substituteBody(target.Alias, target.GenericArgs, callArgs)
}

// substituteBody copies body, replacing every sub-reference whose IsGlobal
// is false with the call-site argument that corresponds to its generic
// parameter name; global sub-references are left intact. A bare generic
// parameter body (body.IsGlobal == false) is handled by the same branch,
// since it *is* the degenerate "whole body is Tk" case.
func substituteBody(body *ir.TypeRef, params []string, callArgs []*ir.TypeRef) *ir.TypeRef {
	if body == nil {
		return nil
	}
	if !body.IsGlobal {
		for i, p := range params {
			if p == body.Name && i < len(callArgs) {
				return cloneTypeRef(callArgs[i])
			}
		}
		return cloneTypeRef(body)
	}
	out := &ir.TypeRef{Name: body.Name, IsGlobal: true, Span: body.Span}
	for _, g := range body.Generics {
		out.Generics = append(out.Generics, substituteBody(g, params, callArgs))
	}
	return out
}

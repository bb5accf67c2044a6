package resolve

import "github.com/whzard/punybuf/internal/ir"

type depKind int

const (
	depType depKind = iota
	depCommand
)

// dependant is one declaration that names another declaration somewhere in
// its body, tagged with its own (name, layer, kind) so a clone of it can be
// produced without re-walking the whole definition.
type dependant struct {
	name  string
	layer uint32
	kind  depKind
}

// index maps a referenced type name to every declaration that depends on
// it, built once up front and then grown as Phase B synthesizes new
// declarations (their own dependencies are registered too, so a chain of
// A -> B -> C regenerates all the way down).
type index map[string][]dependant

// phaseB is the layer closure: spec §4.5 Phase B. It iterates the (growing)
// Types slice; for each type, every dependant strictly below its layer that
// isn't already superseded by a more recent clone gets cloned, re-layered,
// and appended. Commands are only ever regenerated reactively as
// dependants, never iterated directly (spec §9 design note).
func (r *resolver) phaseB() {
	idx := index{}
	for _, t := range r.def.Types {
		registerTypeDeps(idx, t)
	}
	for _, c := range r.def.Commands {
		registerCommandDeps(idx, c)
	}

	for i := 0; i < len(r.def.Types); i++ {
		t := r.def.Types[i]
		for _, dp := range idx[t.Name] {
			if dp.layer >= t.Layer {
				continue
			}
			// A dependant is only regenerated if it is still the highest
			// version of its name at or below the changed type's layer;
			// otherwise a more recent clone already covers this layer and
			// was (or will be) processed in its own right.
			highest, ok := r.highestAtOrBelow(dp.kind, dp.name, t.Layer)
			if !ok || highest != dp.layer {
				continue
			}

			switch dp.kind {
			case depType:
				orig := r.def.ByNameLayer(dp.name, dp.layer)
				if orig == nil {
					continue
				}
				clone := cloneTypeDef(orig)
				clone.Layer = t.Layer
				r.def.Types = append(r.def.Types, clone)
				registerTypeDeps(idx, clone)
			case depCommand:
				orig := r.findCommand(dp.name, dp.layer)
				if orig == nil {
					continue
				}
				clone := cloneCommandDef(orig)
				clone.Layer = t.Layer
				clone.CommandID = recomputeCommandID(clone.Name, clone.Layer)
				r.def.Commands = append(r.def.Commands, clone)
				registerCommandDeps(idx, clone)
			}
		}
	}
}

func (r *resolver) findCommand(name string, layer uint32) *ir.CommandDef {
	for _, c := range r.def.Commands {
		if c.Name == name && c.Layer == layer {
			return c
		}
	}
	return nil
}

func (r *resolver) highestAtOrBelow(kind depKind, name string, layer uint32) (uint32, bool) {
	found := false
	var max uint32
	if kind == depType {
		for _, t := range r.def.Types {
			if t.Name == name && t.Layer <= layer && (!found || t.Layer > max) {
				max, found = t.Layer, true
			}
		}
	} else {
		for _, c := range r.def.Commands {
			if c.Name == name && c.Layer <= layer && (!found || c.Layer > max) {
				max, found = c.Layer, true
			}
		}
	}
	return max, found
}

// registerTypeDeps records, for every global Reference inside t (aliases
// have one, structs/enums have several), that t is a dependant of the
// reference's name. Self-reference (e.g. a builtin `X = X`) is skipped.
func registerTypeDeps(idx index, t *ir.TypeDef) {
	add := func(name string) {
		if name == t.Name || name == "Void" {
			return
		}
		idx[name] = append(idx[name], dependant{name: t.Name, layer: t.Layer, kind: depType})
	}
	walkRefNames(refsOfType(t), add)
}

func registerCommandDeps(idx index, c *ir.CommandDef) {
	add := func(name string) {
		if name == "Void" {
			return
		}
		idx[name] = append(idx[name], dependant{name: c.Name, layer: c.Layer, kind: depCommand})
	}
	walkRefNames(refsOfCommand(c), add)
}

// walkRefNames visits every global reference name reachable from roots,
// including names nested inside generic argument lists (spec §4.5 Phase B:
// "including References nested in generics").
func walkRefNames(roots []*ir.TypeRef, visit func(name string)) {
	for _, r := range roots {
		walkOne(r, visit)
	}
}

func walkOne(r *ir.TypeRef, visit func(name string)) {
	if r == nil {
		return
	}
	if r.IsGlobal {
		visit(r.Name)
	}
	for _, g := range r.Generics {
		walkOne(g, visit)
	}
}

func refsOfType(t *ir.TypeDef) []*ir.TypeRef {
	switch t.Kind {
	case ir.KindAlias:
		return []*ir.TypeRef{t.Alias}
	case ir.KindStruct:
		var out []*ir.TypeRef
		for _, f := range t.Fields {
			out = append(out, f.Value)
			for _, fl := range f.Flags {
				if fl.Value != nil {
					out = append(out, fl.Value)
				}
			}
		}
		return out
	case ir.KindEnum:
		var out []*ir.TypeRef
		for _, v := range t.Variants {
			if v.Value != nil {
				out = append(out, v.Value)
			}
		}
		return out
	}
	return nil
}

func refsOfCommand(c *ir.CommandDef) []*ir.TypeRef {
	var out []*ir.TypeRef
	switch c.Argument.Kind {
	case ir.ArgRef:
		out = append(out, c.Argument.Ref)
	case ir.ArgStruct:
		for _, f := range c.Argument.Fields {
			out = append(out, f.Value)
			for _, fl := range f.Flags {
				if fl.Value != nil {
					out = append(out, fl.Value)
				}
			}
		}
	}
	out = append(out, c.Ret)
	for _, e := range c.Err {
		if e.Value != nil {
			out = append(out, e.Value)
		}
	}
	return out
}

func cloneTypeRef(r *ir.TypeRef) *ir.TypeRef {
	if r == nil {
		return nil
	}
	out := &ir.TypeRef{Name: r.Name, IsGlobal: r.IsGlobal, IsHighestLayer: r.IsHighestLayer, Span: r.Span}
	if r.ResolvedLayer != nil {
		l := *r.ResolvedLayer
		out.ResolvedLayer = &l
	}
	for _, g := range r.Generics {
		out.Generics = append(out.Generics, cloneTypeRef(g))
	}
	return out
}

func cloneAttrs(a ir.Attrs) ir.Attrs {
	out := make(ir.Attrs, len(a))
	for k, v := range a {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneTypeDef(t *ir.TypeDef) *ir.TypeDef {
	out := &ir.TypeDef{
		Kind:        t.Kind,
		Name:        t.Name,
		Layer:       t.Layer,
		Doc:         t.Doc,
		Attrs:       cloneAttrs(t.Attrs),
		GenericArgs: append([]string(nil), t.GenericArgs...),
		Span:        t.Span,
	}
	if t.InlineOwner != nil {
		o := *t.InlineOwner
		out.InlineOwner = &o
	}
	switch t.Kind {
	case ir.KindAlias:
		out.Alias = cloneTypeRef(t.Alias)
	case ir.KindStruct:
		for _, f := range t.Fields {
			out.Fields = append(out.Fields, cloneField(f))
		}
	case ir.KindEnum:
		for _, v := range t.Variants {
			out.Variants = append(out.Variants, cloneVariant(v))
		}
	}
	return out
}

func cloneField(f *ir.Field) *ir.Field {
	out := &ir.Field{Name: f.Name, Value: cloneTypeRef(f.Value), Attrs: cloneAttrs(f.Attrs), Doc: f.Doc, Span: f.Span}
	for _, fl := range f.Flags {
		out.Flags = append(out.Flags, &ir.Flag{Name: fl.Name, Value: cloneTypeRef(fl.Value), Attrs: cloneAttrs(fl.Attrs), Doc: fl.Doc, Span: fl.Span})
	}
	return out
}

func cloneVariant(v *ir.EnumVariant) *ir.EnumVariant {
	return &ir.EnumVariant{Name: v.Name, Discriminant: v.Discriminant, Value: cloneTypeRef(v.Value), Attrs: cloneAttrs(v.Attrs), Doc: v.Doc, Span: v.Span}
}

func cloneCommandDef(c *ir.CommandDef) *ir.CommandDef {
	out := &ir.CommandDef{
		Name:  c.Name,
		Layer: c.Layer,
		Doc:   c.Doc,
		Attrs: cloneAttrs(c.Attrs),
		Ret:   cloneTypeRef(c.Ret),
		Span:  c.Span,
	}
	out.Argument.Kind = c.Argument.Kind
	switch c.Argument.Kind {
	case ir.ArgRef:
		out.Argument.Ref = cloneTypeRef(c.Argument.Ref)
	case ir.ArgStruct:
		for _, f := range c.Argument.Fields {
			out.Argument.Fields = append(out.Argument.Fields, cloneField(f))
		}
	}
	for _, e := range c.Err {
		out.Err = append(out.Err, cloneVariant(e))
	}
	return out
}

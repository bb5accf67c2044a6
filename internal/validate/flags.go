package validate

import (
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/ir"
)

// maxFlagAliasHops bounds follow_to_flags_attr's alias-following walk
// (spec §4.4/§9: "~200 hops", arbitrary but must detect cycles).
const maxFlagAliasHops = 200

// validateStruct checks field-name uniqueness, forbids @extension on plain
// fields, and resolves+enforces each flag-group field's @flags(N) cap.
func (v *validator) validateStruct(ownerName string, generics []string, fields []*ir.Field) {
	seen := map[string]*ir.Field{}
	for _, f := range fields {
		if prev, ok := seen[f.Name]; ok {
			v.add(errors.Newf(f.Span, "duplicate field name %q (previously declared at %s)", f.Name, prev.Span))
			continue
		}
		seen[f.Name] = f

		v.validateRef(f.Value, ownerName, generics)

		if f.Flags == nil {
			if f.Attrs.Has("extension") {
				v.add(errors.Newf(f.Span, "@extension is only valid on a flag, not a plain field"))
			}
			continue
		}
		v.validateFlags(ownerName, generics, f)
	}
}

// validateFlags resolves the flag-carrier type through aliases to find its
// @flags(N) attribute, enforces the flag-count cap, and checks flag-level
// uniqueness/@extension/@sealed rules.
func (v *validator) validateFlags(ownerName string, generics []string, f *ir.Field) {
	n, err := v.followToFlagsAttr(f.Value, generics)
	if err != "" {
		v.add(errors.Newf(f.Span, "%s", err))
	} else if len(f.Flags) > n {
		v.add(errors.Newf(f.Span, "too many flags (%d); maximum is %d", len(f.Flags), n))
	}

	seen := map[string]*ir.Flag{}
	sawExtension := false
	owner := v.byName[f.Value.Name]
	sealed := false
	if owner != nil {
		for _, t := range owner {
			if t.IsSealed() {
				sealed = true
			}
		}
	}
	for _, fl := range f.Flags {
		if prev, ok := seen[fl.Name]; ok {
			v.add(errors.Newf(fl.Span, "duplicate flag name %q (previously declared at %s)", fl.Name, prev.Span))
			continue
		}
		seen[fl.Name] = fl

		isExt := fl.Attrs.Has("extension")
		if isExt {
			sawExtension = true
			if sealed {
				v.add(errors.Newf(fl.Span, "@extension flags are not allowed on a @sealed flag carrier"))
			}
		} else if sawExtension {
			v.add(errors.Newf(fl.Span, "non-extension flag %q may not follow an @extension flag", fl.Name))
		}

		if fl.Value != nil {
			v.validateRef(fl.Value, ownerName, generics)
		}
	}
}

// followToFlagsAttr walks ref through alias chains (bounded by
// maxFlagAliasHops) looking for a @flags(N) attribute, mirroring
// validator.rs's follow_to_flags_attr. Returns an error message instead of N
// if the chain ends in a generic parameter (unresolvable) or a non-alias,
// non-@flags type, or loops.
func (v *validator) followToFlagsAttr(ref *ir.TypeRef, generics []string) (int, string) {
	name := ref.Name
	for _, g := range generics {
		if g == name {
			return 0, "flag carrier resolves to an unconstrained generic parameter and cannot be validated"
		}
	}

	for hop := 0; hop < maxFlagAliasHops; hop++ {
		layers, ok := v.byName[name]
		if !ok {
			return 0, "flag carrier type is undefined"
		}
		var t *ir.TypeDef
		for _, cand := range layers {
			t = cand
			break
		}
		if n, val := flagsAttrValue(t.Attrs); val {
			return n, ""
		}
		if t.Kind != ir.KindAlias {
			return 0, "flag carrier does not carry @flags(N)"
		}
		for _, g := range generics {
			if g == t.Alias.Name {
				return 0, "flag carrier alias resolves to an unconstrained generic parameter"
			}
		}
		name = t.Alias.Name
	}
	return 0, "flag carrier alias chain too deep (possible cycle)"
}

func flagsAttrValue(a ir.Attrs) (int, bool) {
	v, ok := a["flags"]
	if !ok || v == nil {
		return 0, false
	}
	n := 0
	for _, c := range *v {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

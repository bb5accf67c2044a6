// Package validate checks a flattened ir.Definition for the rules in
// spec §4.4: uniqueness, reserved names, reference scope/visibility, generic
// arity, flag-carrier constraints, enum variant ordering, and command
// return rules.
//
// Grounded on the original compiler's validator.rs.
package validate

import (
	"sort"

	"github.com/mpvl/unique"

	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/ir"
	"github.com/whzard/punybuf/internal/token"
)

// commonTypes are the names defined by the builtin `common` schema (see
// schema/common.pbd). When a reference fails to resolve and its name
// appears here, the validator adds a Tip suggesting `include common` —
// carried over from validator.rs's COMMON_TYPES hint, supplemented with the
// F32/F64/I64/I32 names spec.md §6 lists that the original's hint list
// omitted (see DESIGN.md).
var commonTypes = map[string]bool{
	"U8": true, "U16": true, "U32": true, "U64": true,
	"I32": true, "I64": true, "F32": true, "F64": true,
	"UInt": true, "Array": true, "Bytes": true, "String": true,
	"KeyPair": true, "Map": true, "Done": true, "Boolean": true,
	"Optional": true, "Void": true,
}

type validator struct {
	def  *ir.Definition
	errs *errors.List

	// index of every top-level type name -> its (layer -> *TypeDef) map,
	// used for scope/arity/flag-carrier lookups.
	byName map[string]map[uint32]*ir.TypeDef
}

// Validate runs every check in spec §4.4 and returns the accumulated error
// list (nil if the definition is valid).
func Validate(def *ir.Definition) *errors.List {
	v := &validator{def: def, byName: map[string]map[uint32]*ir.TypeDef{}}
	for _, t := range def.Types {
		if v.byName[t.Name] == nil {
			v.byName[t.Name] = map[uint32]*ir.TypeDef{}
		}
		v.byName[t.Name][t.Layer] = t
	}

	v.checkUniqueness()
	v.checkReservedNames()
	for _, t := range def.Types {
		v.validateType(t)
	}
	for _, c := range def.Commands {
		v.validateCommand(c)
	}
	v.checkCRCCollisions()

	if v.errs != nil {
		v.errs = v.errs.Sanitize()
	}
	return v.errs
}

func (v *validator) add(span errors.Error) { v.errs = errors.Append(v.errs, span) }

// checkUniqueness enforces invariant 1: (name, layer) unique across all
// types and commands, and no name may be a type in one layer and a command
// in another.
func (v *validator) checkUniqueness() {
	type key struct {
		name  string
		layer uint32
	}
	seenTypes := map[key]*ir.TypeDef{}
	for _, t := range v.def.Types {
		k := key{t.Name, t.Layer}
		if prev, ok := seenTypes[k]; ok {
			v.add(errors.Newf(t.Span, "type %q redeclared at layer %d (previously declared at %s)", t.Name, t.Layer, prev.Span))
			continue
		}
		seenTypes[k] = t
	}

	seenCmds := map[key]*ir.CommandDef{}
	for _, c := range v.def.Commands {
		k := key{c.Name, c.Layer}
		if prev, ok := seenCmds[k]; ok {
			v.add(errors.Newf(c.Span, "command %q redeclared at layer %d (previously declared at %s)", c.Name, c.Layer, prev.Span))
			continue
		}
		seenCmds[k] = c
	}

	cmdNames := map[string]*ir.CommandDef{}
	for _, c := range v.def.Commands {
		if _, ok := cmdNames[c.Name]; !ok {
			cmdNames[c.Name] = c
		}
	}
	for _, t := range v.def.Types {
		if c, ok := cmdNames[t.Name]; ok {
			v.add(errors.Newf(t.Span, "%q is declared as both a type (at %s) and a command (at %s)", t.Name, t.Span, c.Span))
		}
	}
}

// checkReservedNames enforces invariant 7 on declarations: a type
// declaration named Void must carry @void, and no command may be named
// Void. Where a reference to Void appears is not checked here.
func (v *validator) checkReservedNames() {
	for _, t := range v.def.Types {
		if t.Name == "Void" && !t.Attrs.Has("void") {
			v.add(errors.Newf(t.Span, "%q is a reserved name; a type declaration named Void must carry @void", t.Name))
		}
	}
	for _, c := range v.def.Commands {
		if c.Name == "Void" {
			v.add(errors.Newf(c.Span, "a command may not be named Void"))
		}
	}
}

func (v *validator) validateType(t *ir.TypeDef) {
	v.checkGenericArgsUnique(t.Span, t.GenericArgs)

	if t.Kind != ir.KindAlias && t.IsResolve() {
		v.add(errors.Newf(t.Span, "@resolve is only valid on alias declarations"))
	}
	if t.IsBuiltin() {
		// Builtin declarations (the common schema) are trusted as-is;
		// their bodies are not further scope-checked, mirroring
		// validate_type's @builtin short-circuit.
		return
	}

	switch t.Kind {
	case ir.KindAlias:
		v.validateRef(t.Alias, t.Name, t.GenericArgs)
	case ir.KindStruct:
		v.validateStruct(t.Name, t.GenericArgs, t.Fields)
	case ir.KindEnum:
		v.validateEnum(t.Name, t.GenericArgs, t.Variants)
	}
}

func (v *validator) validateCommand(c *ir.CommandDef) {
	switch c.Argument.Kind {
	case ir.ArgRef:
		v.validateRef(c.Argument.Ref, c.Name, nil)
	case ir.ArgStruct:
		v.validateStruct(c.Name, nil, c.Argument.Fields)
	}
	v.validateRef(c.Ret, c.Name, nil)

	isVoidReturn := c.Ret != nil && c.Ret.Name == "Void"
	declaredErrs := 0
	for _, e := range c.Err {
		if e.Name != "UnexpectedError" {
			declaredErrs++
		}
	}
	if isVoidReturn && declaredErrs > 0 {
		v.add(errors.Newf(c.Span, "command %q returns Void and so may not declare error variants", c.Name))
	}
	v.validateEnum(c.Name, nil, c.Err)
}

// validateRef checks scope (generic parameter or visible top-level type)
// and generic arity, recursively.
func (v *validator) validateRef(r *ir.TypeRef, ownerName string, ownerGenerics []string) {
	if r == nil {
		return
	}
	for _, g := range r.Generics {
		v.validateRef(g, ownerName, ownerGenerics)
	}

	if r.Name == "Void" {
		return
	}
	for _, g := range ownerGenerics {
		if g == r.Name {
			if len(r.Generics) > 0 {
				v.add(errors.Newf(r.Span, "generic parameter %q may not itself take generic arguments", r.Name))
			}
			return
		}
	}

	layers, ok := v.byName[r.Name]
	if !ok {
		err := errors.Newf(r.Span, "undefined reference to %q", r.Name)
		if commonTypes[r.Name] {
			err = errors.WithPanels(err, errors.Panel{
				Content:  "did you forget `include common`?",
				Span:     r.Span,
				Severity: errors.Tip,
			})
		}
		v.add(err)
		return
	}

	var any *ir.TypeDef
	for _, t := range layers {
		any = t
		break
	}
	if any.InlineOwner != nil && *any.InlineOwner != ownerName {
		v.add(errors.Newf(r.Span, "%q is an inline type scoped to %q and cannot be referenced from %q", r.Name, *any.InlineOwner, ownerName))
	}
	if len(r.Generics) != len(any.GenericArgs) {
		v.add(errors.Newf(r.Span, "%q takes %d generic argument(s), got %d", r.Name, len(any.GenericArgs), len(r.Generics)))
	}
}

func (v *validator) checkGenericArgsUnique(span token.Span, generics []string) {
	seen := map[string]bool{}
	var dup []string
	for _, g := range generics {
		if seen[g] {
			dup = append(dup, g)
			continue
		}
		seen[g] = true
	}
	sort.Strings(dup)
	for _, g := range dup {
		v.add(errors.Newf(span, "duplicate generic parameter name %q", g))
	}
}

// uint32Slice is a sort.Interface over command IDs, used to cheaply test for
// any collision at all before paying for the O(n) map walk that pinpoints it.
type uint32Slice []uint32

func (s uint32Slice) Len() int           { return len(s) }
func (s uint32Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint32Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// checkCRCCollisions flags the (vanishingly unlikely) case of two commands
// at different (name, layer) pairs producing the same wire command ID. The
// common case (no collisions) is detected with a sort-then-compact pass
// (mirrors cue's import-path dedup use of mpvl/unique) before falling back to
// a map walk to name the offending pair.
func (v *validator) checkCRCCollisions() {
	ids := make(uint32Slice, len(v.def.Commands))
	for i, c := range v.def.Commands {
		ids[i] = c.CommandID
	}
	if n := unique.Sort(ids); n == len(ids) {
		return
	}

	byID := map[uint32]*ir.CommandDef{}
	for _, c := range v.def.Commands {
		if prev, ok := byID[c.CommandID]; ok {
			v.add(errors.Newf(c.Span, "command ID collision: %q.%d and %q.%d both hash to 0x%08x", c.Name, c.Layer, prev.Name, prev.Layer, c.CommandID))
			continue
		}
		byID[c.CommandID] = c
	}
}

// Package ir defines the canonical, flattened intermediate representation
// produced by internal/flatten, mutated in place by internal/resolve, and
// read by internal/validate and the JSON emitter.
//
// Grounded on the original compiler's flattener.rs (PBTypeRef, PBField,
// PBTypeDef, PBCommandDef, PunybufDefinition) — the Go names below mirror
// those one for one.
package ir

import "github.com/whzard/punybuf/internal/token"

// Attrs is the flattened, normalized attribute map (doc text already
// stripped; see Attrs in internal/ast for the pre-flatten form).
type Attrs map[string]*string

func (a Attrs) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// TypeRef is a resolved-or-resolving reference to a type, mirroring
// PBTypeRef. Before the resolver runs, ResolvedLayer is nil and
// IsHighestLayer/IsGlobal carry their flatten-time defaults (false/true).
type TypeRef struct {
	Name          string
	Generics      []*TypeRef
	ResolvedLayer *uint32
	IsHighestLayer bool
	IsGlobal      bool
	Span          token.Span
}

func NewRef(name string, span token.Span) *TypeRef {
	return &TypeRef{Name: name, IsGlobal: true, Span: span}
}

// Flag is one bit of a flag-group field.
type Flag struct {
	Name  string
	Value *TypeRef
	Attrs Attrs
	Doc   string
	Span  token.Span
}

// Field is one struct member.
type Field struct {
	Name  string
	Value *TypeRef
	Flags []*Flag // nil unless this field carries a flag group
	Attrs Attrs
	Doc   string
	Span  token.Span
}

// EnumVariant is one member of an enum or value-enum, and also the shape
// used for a command's declared error variants (discriminant 0 is always
// reserved for the synthesized UnexpectedError; see flatten.go).
type EnumVariant struct {
	Name         string
	Discriminant uint8
	Value        *TypeRef
	Attrs        Attrs
	Doc          string
	Span         token.Span
}

// TypeKind distinguishes the three shapes a TypeDef may take.
type TypeKind int

const (
	KindStruct TypeKind = iota
	KindEnum
	KindAlias
)

// TypeDef is a tagged variant over Struct/Enum/Alias, mirroring PBTypeDef.
type TypeDef struct {
	Kind         TypeKind
	Name         string
	Layer        uint32
	Doc          string
	Attrs        Attrs
	GenericArgs  []string
	InlineOwner  *string // set iff this type was hoisted from an inline declaration
	IsHighestLayer bool
	Span         token.Span

	// Kind == KindAlias
	Alias *TypeRef
	// Kind == KindStruct
	Fields []*Field
	// Kind == KindEnum
	Variants []*EnumVariant
}

func (t *TypeDef) IsBuiltin() bool  { return t.Attrs.Has("builtin") }
func (t *TypeDef) IsResolve() bool  { return t.Attrs.Has("resolve") }
func (t *TypeDef) IsSealed() bool   { return t.Attrs.Has("sealed") }

// CommandArgKind distinguishes a command's argument shape.
type CommandArgKind int

const (
	ArgNone CommandArgKind = iota
	ArgRef
	ArgStruct
)

type CommandArg struct {
	Kind   CommandArgKind
	Ref    *TypeRef
	Fields []*Field
}

// CommandDef is one RPC command, mirroring PBCommandDef.
type CommandDef struct {
	Name           string
	Layer          uint32
	CommandID      uint32
	Doc            string
	Attrs          Attrs
	Argument       CommandArg
	Ret            *TypeRef
	Err            []*EnumVariant // index 0 is always the synthesized UnexpectedError
	IsHighestLayer bool
	Span           token.Span
}

// Definition is the whole compiled schema, mirroring PunybufDefinition.
type Definition struct {
	IncludesCommon bool
	Types          []*TypeDef
	Commands       []*CommandDef
}

// ByNameLayer looks up the TypeDef with an exact (name, layer) pair, or nil.
func (d *Definition) ByNameLayer(name string, layer uint32) *TypeDef {
	for _, t := range d.Types {
		if t.Name == name && t.Layer == layer {
			return t
		}
	}
	return nil
}

// HighestLayerFor returns the greatest layer at which name exists as a type,
// and whether it exists at all.
func (d *Definition) HighestLayerFor(name string) (uint32, bool) {
	found := false
	var max uint32
	for _, t := range d.Types {
		if t.Name == name && (!found || t.Layer > max) {
			max = t.Layer
			found = true
		}
	}
	return max, found
}

// AtOrBelow returns the TypeDef for name with the greatest layer <= layer,
// or nil if none exists.
func (d *Definition) AtOrBelow(name string, layer uint32) *TypeDef {
	var best *TypeDef
	for _, t := range d.Types {
		if t.Name != name || t.Layer > layer {
			continue
		}
		if best == nil || t.Layer > best.Layer {
			best = t
		}
	}
	return best
}

// CommandHighestLayerFor mirrors HighestLayerFor for commands.
func (d *Definition) CommandHighestLayerFor(name string) (uint32, bool) {
	found := false
	var max uint32
	for _, c := range d.Commands {
		if c.Name == name && (!found || c.Layer > max) {
			max = c.Layer
			found = true
		}
	}
	return max, found
}

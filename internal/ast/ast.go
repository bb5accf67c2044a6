// Package ast defines the parse-tree produced by internal/parser, one step
// above the raw token tree: declarations, references, fields, flags and
// variants, with doc/attr accumulation and layer numbers already folded in
// but inline-declaration hoisting, generic-parameter marking and
// documentation normalization still to come (those are internal/flatten's
// and internal/resolve's job).
//
// Grounded on the original compiler's parser.rs data model.
package ast

import "github.com/whzard/punybuf/internal/token"

// Attrs maps an attribute name to its optional string payload (@name vs
// @name(value)).
type Attrs map[string]*string

// Reference is a use of a type name, optionally with generic arguments, or
// an inline type declaration written directly in a reference position.
type Reference struct {
	Name     string
	Generics []Reference
	Inline   *InlineBody // non-nil for `Name { ... }` / `Name [ ... ]` / `Name ( ... )`
	Span     token.Span
}

// InlineBody is the anonymous declaration body attached to an inline
// Reference. It is hoisted to a top-level declaration during flattening.
type InlineBody struct {
	Attrs Attrs
	Doc   string
	Body  TypeBody
	Span  token.Span
}

// TypeBody is the right-hand side of a type declaration: an alias, a
// struct, an enum, or a value-enum.
type TypeBody interface{ isTypeBody() }

type AliasBody struct{ Ref Reference }
type StructBody struct{ Fields []Field }
type EnumBody struct{ Variants []EnumVariant }
type ValueEnumBody struct{ Variants []ValueEnumVariant }

func (AliasBody) isTypeBody()     {}
func (StructBody) isTypeBody()    {}
func (EnumBody) isTypeBody()      {}
func (ValueEnumBody) isTypeBody() {}

// FieldFlag is one bit of a flag-group field: `name?` or `name?: Reference`.
type FieldFlag struct {
	Name  string
	Value *Reference
	Attrs Attrs
	Doc   string
	Span  token.Span
}

// Field is one struct (or command-argument-struct) member: `name: Reference`
// optionally followed by `.{ flags }`.
type Field struct {
	Name  string
	Value Reference
	Flags []FieldFlag // nil unless a flag group follows
	Attrs Attrs
	Doc   string
	Span  token.Span
}

// EnumVariant is `name` or `name: Reference`, auto-numbered by the parser.
type EnumVariant struct {
	Name         string
	Discriminant uint8
	Value        *Reference
	Attrs        Attrs
	Doc          string
	Span         token.Span
}

// ValueEnumVariant is a bare Reference inside a value-enum body; its variant
// name is the referenced type's name (resolved by the flattener).
type ValueEnumVariant struct {
	Value Reference
	Attrs Attrs
	Doc   string
	Span  token.Span
}

// CommandArg is the argument shape of a command signature.
type CommandArg interface{ isCommandArg() }

type NoneArg struct{}
type RefArg struct{ Ref Reference }
type StructArg struct{ Fields []Field }

func (NoneArg) isCommandArg()   {}
func (RefArg) isCommandArg()    {}
func (StructArg) isCommandArg() {}

// ErrBody is the `! Err` clause of a command signature: an enum or
// value-enum (a struct error body is rejected by the parser).
type ErrBody struct {
	Enum      *EnumBody
	ValueEnum *ValueEnumBody
}

// CommandDecl is a full `(Arg) -> Ret [! Err]` signature.
type CommandDecl struct {
	Arg CommandArg
	Ret Reference
	Err *ErrBody
}

// Declaration is `[docs] [attrs*] Name [<Generics>] (= Body | : CmdSig)`.
// Exactly one of Type or Command is set.
type Declaration struct {
	Name     string
	Generics []string
	Layer    uint32
	Attrs    Attrs
	Doc      string
	Span     token.Span

	Type    TypeBody
	Command *CommandDecl
}

func (d *Declaration) IsCommand() bool { return d.Command != nil }

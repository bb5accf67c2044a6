// Package flatten turns a parsed declaration list into the canonical IR
// (ir.Definition): inline declarations are hoisted to top level, doc
// comments are normalized, and command IDs are computed.
//
// Grounded on the original compiler's flattener.rs.
package flatten

import (
	"fmt"
	"hash/crc32"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/whzard/punybuf/internal/ast"
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/ir"
)

type flattener struct {
	def  *ir.Definition
	errs *errors.List
}

// Flatten converts a declaration list into a Definition. includesCommon is
// true when the schema (or one of its includes) named the builtin `common`
// schema; the lexer's IncludeHandler is responsible for detecting that and
// reporting it back to the caller, since only it sees the include graph.
func Flatten(decls []*ast.Declaration, includesCommon bool) (*ir.Definition, *errors.List) {
	f := &flattener{def: &ir.Definition{IncludesCommon: includesCommon}}
	for _, d := range decls {
		if d.IsCommand() {
			f.flattenCommand(d)
		} else {
			f.flattenType(d)
		}
	}
	return f.def, f.errs
}

func (f *flattener) flattenType(d *ast.Declaration) {
	base := ir.TypeDef{
		Name:        d.Name,
		Layer:       d.Layer,
		Doc:         flattenDoc(d.Doc),
		Attrs:       flattenAttrs(d.Attrs),
		GenericArgs: append([]string(nil), d.Generics...),
		Span:        d.Span,
	}

	switch body := d.Type.(type) {
	case ast.AliasBody:
		base.Kind = ir.KindAlias
		base.Alias = f.flattenReference(body.Ref, d.Name, d.Layer)
	case ast.StructBody:
		base.Kind = ir.KindStruct
		base.Fields = f.flattenFields(body.Fields, d.Name, d.Layer)
	case ast.EnumBody:
		base.Kind = ir.KindEnum
		base.Variants = f.flattenVariants(body.Variants, d.Name, d.Layer)
	case ast.ValueEnumBody:
		base.Kind = ir.KindEnum
		base.Variants = f.flattenValueVariants(body.Variants, d.Name, d.Layer)
	}

	f.def.Types = append(f.def.Types, &base)
}

func (f *flattener) flattenCommand(d *ast.Declaration) {
	cmd := &ir.CommandDef{
		Name:      d.Name,
		Layer:     d.Layer,
		Doc:       flattenDoc(d.Doc),
		Attrs:     flattenAttrs(d.Attrs),
		CommandID: commandID(d.Name, d.Layer),
		Span:      d.Span,
	}

	switch arg := d.Command.Arg.(type) {
	case ast.NoneArg:
		cmd.Argument = ir.CommandArg{Kind: ir.ArgNone}
	case ast.RefArg:
		cmd.Argument = ir.CommandArg{Kind: ir.ArgRef, Ref: f.flattenReference(arg.Ref, d.Name, d.Layer)}
	case ast.StructArg:
		cmd.Argument = ir.CommandArg{Kind: ir.ArgStruct, Fields: f.flattenFields(arg.Fields, d.Name, d.Layer)}
	}

	cmd.Ret = f.flattenReference(d.Command.Ret, d.Name, d.Layer)

	// Discriminant 0 is always the synthesized UnexpectedError(String)
	// variant; declared errors are renumbered to start at 1 regardless of
	// what the parser assigned (it already starts error enums at 1, see
	// parser.parseErrBody), matching spec §4.7.
	errVariants := []*ir.EnumVariant{{
		Name:         "UnexpectedError",
		Discriminant: 0,
		Value:        ir.NewRef("String", cmd.Span),
		Attrs:        ir.Attrs{},
	}}
	if d.Command.Err != nil {
		switch {
		case d.Command.Err.Enum != nil:
			errVariants = append(errVariants, f.flattenVariants(d.Command.Err.Enum.Variants, d.Name, d.Layer)...)
		case d.Command.Err.ValueEnum != nil:
			errVariants = append(errVariants, f.flattenValueVariants(d.Command.Err.ValueEnum.Variants, d.Name, d.Layer)...)
		}
	}
	for i, v := range errVariants {
		v.Discriminant = uint8(i)
	}
	cmd.Err = errVariants

	f.def.Commands = append(f.def.Commands, cmd)
}

// flattenReference converts an ast.Reference to an ir.TypeRef, hoisting an
// inline body (if any) to a new top-level TypeDef owned by ownerName.
func (f *flattener) flattenReference(r ast.Reference, ownerName string, layer uint32) *ir.TypeRef {
	out := ir.NewRef(r.Name, r.Span)
	for _, g := range r.Generics {
		out.Generics = append(out.Generics, f.flattenReference(g, ownerName, layer))
	}

	if r.Inline != nil {
		inline := ir.TypeDef{
			Name:        r.Name,
			Layer:       layer,
			Doc:         flattenDoc(r.Inline.Doc),
			Attrs:       flattenAttrs(r.Inline.Attrs),
			InlineOwner: &ownerName,
			Span:        r.Inline.Span,
		}
		switch body := r.Inline.Body.(type) {
		case ast.StructBody:
			inline.Kind = ir.KindStruct
			inline.Fields = f.flattenFields(body.Fields, r.Name, layer)
		case ast.EnumBody:
			inline.Kind = ir.KindEnum
			inline.Variants = f.flattenVariants(body.Variants, r.Name, layer)
		case ast.ValueEnumBody:
			inline.Kind = ir.KindEnum
			inline.Variants = f.flattenValueVariants(body.Variants, r.Name, layer)
		}
		f.def.Types = append(f.def.Types, &inline)
	}

	return out
}

func (f *flattener) flattenFields(fields []ast.Field, ownerName string, layer uint32) []*ir.Field {
	out := make([]*ir.Field, 0, len(fields))
	for _, fld := range fields {
		irf := &ir.Field{
			Name:  fld.Name,
			Value: f.flattenReference(fld.Value, ownerName, layer),
			Attrs: flattenAttrs(fld.Attrs),
			Doc:   flattenDoc(fld.Doc),
			Span:  fld.Span,
		}
		if fld.Flags != nil {
			irf.Flags = make([]*ir.Flag, 0, len(fld.Flags))
			for _, fl := range fld.Flags {
				irfl := &ir.Flag{
					Name:  fl.Name,
					Attrs: flattenAttrs(fl.Attrs),
					Doc:   flattenDoc(fl.Doc),
					Span:  fl.Span,
				}
				if fl.Value != nil {
					irfl.Value = f.flattenReference(*fl.Value, ownerName, layer)
				}
				irf.Flags = append(irf.Flags, irfl)
			}
		}
		out = append(out, irf)
	}
	return out
}

func (f *flattener) flattenVariants(variants []ast.EnumVariant, ownerName string, layer uint32) []*ir.EnumVariant {
	out := make([]*ir.EnumVariant, 0, len(variants))
	for _, v := range variants {
		irv := &ir.EnumVariant{
			Name:         v.Name,
			Discriminant: v.Discriminant,
			Attrs:        flattenAttrs(v.Attrs),
			Doc:          flattenDoc(v.Doc),
			Span:         v.Span,
		}
		if v.Value != nil {
			irv.Value = f.flattenReference(*v.Value, ownerName, layer)
		}
		out = append(out, irv)
	}
	return out
}

func (f *flattener) flattenValueVariants(variants []ast.ValueEnumVariant, ownerName string, layer uint32) []*ir.EnumVariant {
	out := make([]*ir.EnumVariant, 0, len(variants))
	for i, v := range variants {
		ref := f.flattenReference(v.Value, ownerName, layer)
		out = append(out, &ir.EnumVariant{
			Name:         v.Value.Name,
			Discriminant: uint8(i),
			Value:        ref,
			Attrs:        flattenAttrs(v.Attrs),
			Doc:          flattenDoc(v.Doc),
			Span:         v.Span,
		})
	}
	return out
}

func flattenAttrs(a ast.Attrs) ir.Attrs {
	if a == nil {
		return ir.Attrs{}
	}
	out := make(ir.Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// flattenDoc normalizes a raw doc-comment body: leading blank lines are
// trimmed; if the first non-blank line is indented, that exact indent is
// stripped from every subsequent line; a single remaining line is trimmed of
// surrounding whitespace; trailing blank lines are removed.
func flattenDoc(raw string) string {
	if raw == "" {
		return ""
	}
	raw = norm.NFC.String(raw)
	lines := strings.Split(raw, "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	lines = lines[start:end]
	if len(lines) == 0 {
		return ""
	}
	if len(lines) == 1 {
		return strings.TrimSpace(lines[0])
	}

	indent := leadingWhitespace(lines[0])
	if indent != "" {
		for i, l := range lines {
			lines[i] = strings.TrimPrefix(l, indent)
		}
	}
	return strings.Join(lines, "\n")
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

// commandID computes CRC32/cksum(name + "." + layer), recomputed whenever a
// command's layer changes (the resolver recomputes it again when it clones a
// command into a new layer; see internal/resolve).
func commandID(name string, layer uint32) uint32 {
	return crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s.%d", name, layer)))
}

// CommandID is exported so the resolver can recompute it for cloned
// commands without duplicating the format string.
func CommandID(name string, layer uint32) uint32 { return commandID(name, layer) }

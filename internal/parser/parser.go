// Package parser turns a punybuf token tree into a list of ast.Declarations.
//
// Grounded on the original compiler's parser.rs: doc/attribute accumulation
// onto the next declaration/field/variant, the `layer N:` counter directive,
// struct/enum/value-enum body dispatch on bracket kind, the `.{ flags }`
// flag-group suffix, and command signatures `(Arg) -> Ret [! Err]`.
package parser

import (
	"github.com/whzard/punybuf/internal/ast"
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/token"
)

// Parse consumes a flat top-level token stream (as produced by
// internal/scanner) and returns the declarations found in it.
func Parse(tokens []token.Token) ([]*ast.Declaration, *errors.List) {
	p := &cursor{toks: tokens}
	var decls []*ast.Declaration
	layer := uint32(0)

	var pendingDoc *string
	var pendingAttrs ast.Attrs

	for !p.eof() {
		t := p.peek()

		switch t.Kind {
		case token.Semicolon:
			// Declaration terminator.
			p.advance()
			continue
		case token.Doc:
			if pendingDoc != nil {
				p.errf(t.Span, "duplicate documentation comment; a declaration may have only one")
			}
			text := t.Text
			pendingDoc = &text
			p.advance()
			continue
		case token.Attribute:
			if pendingAttrs == nil {
				pendingAttrs = ast.Attrs{}
			}
			pendingAttrs[t.Text] = t.AttrValue
			p.advance()
			continue
		case token.Ident:
			if t.Text == "layer" {
				p.advance()
				num := p.expect(token.Number, "expected layer number after 'layer'")
				p.expect(token.Colon, "expected ':' after layer number")
				if num != nil {
					layer = num.Number
				}
				continue
			}
		}

		decl := p.parseDecl(pendingDoc, pendingAttrs, layer)
		pendingDoc = nil
		pendingAttrs = nil
		if decl != nil {
			decls = append(decls, decl)
		}
	}

	return decls, p.errs
}

type cursor struct {
	toks []token.Token
	pos  int
	errs *errors.List
}

func (c *cursor) eof() bool { return c.pos >= len(c.toks) }

func (c *cursor) peek() token.Token {
	if c.eof() {
		return token.Token{}
	}
	return c.toks[c.pos]
}

func (c *cursor) peekAt(off int) token.Token {
	if c.pos+off >= len(c.toks) {
		return token.Token{}
	}
	return c.toks[c.pos+off]
}

func (c *cursor) advance() token.Token {
	t := c.toks[c.pos]
	c.pos++
	return t
}

func (c *cursor) errf(span token.Span, format string, args ...interface{}) {
	c.errs = errors.Append(c.errs, errors.Newf(span, format, args...))
}

func (c *cursor) expect(k token.Kind, msg string) *token.Token {
	if c.eof() || c.peek().Kind != k {
		span := token.NoSpan
		if !c.eof() {
			span = c.peek().Span
		}
		c.errf(span, "%s", msg)
		return nil
	}
	t := c.advance()
	return &t
}

// parseDecl parses one `Name [<Generics>] (= Body | : CmdSig)`.
func (c *cursor) parseDecl(doc *string, attrs ast.Attrs, layer uint32) *ast.Declaration {
	nameTok := c.expect(token.Ident, "expected a declaration name")
	if nameTok == nil {
		c.advance()
		return nil
	}
	decl := &ast.Declaration{
		Name:  nameTok.Text,
		Layer: layer,
		Attrs: attrs,
		Span:  nameTok.Span,
	}
	if doc != nil {
		decl.Doc = *doc
	}

	if !c.eof() && c.peek().Kind == token.Angle {
		angle := c.advance()
		decl.Generics = parseGenericParams(c, angle.Children)
	}

	if c.eof() {
		c.errf(nameTok.Span, "expected '=' or ':' after declaration name %q", nameTok.Text)
		return decl
	}

	switch c.peek().Kind {
	case token.Eq:
		c.advance()
		decl.Type = c.parseTypeBody()
	case token.Colon:
		c.advance()
		decl.Command = c.parseCommandDecl()
	default:
		c.errf(c.peek().Span, "expected '=' (type) or ':' (command) after %q", nameTok.Text)
	}

	return decl
}

func parseGenericParams(c *cursor, toks []token.Token) []string {
	sub := &cursor{toks: toks}
	var names []string
	for !sub.eof() {
		t := sub.expect(token.Ident, "expected generic parameter name")
		if t == nil {
			sub.advance()
			continue
		}
		names = append(names, t.Text)
		if !sub.eof() && sub.peek().Kind == token.Comma {
			sub.advance()
		}
	}
	c.errs = errors.Append(c.errs, sub.errs)
	return names
}

// parseTypeBody dispatches on the bracket kind following '='.
func (c *cursor) parseTypeBody() ast.TypeBody {
	if c.eof() {
		c.errf(token.NoSpan, "expected a type body after '='")
		return nil
	}
	switch c.peek().Kind {
	case token.Curly:
		grp := c.advance()
		return ast.StructBody{Fields: parseFields(grp.Children)}
	case token.Square:
		grp := c.advance()
		return ast.EnumBody{Variants: parseEnumVariants(grp.Children, 0)}
	case token.Round:
		grp := c.advance()
		return ast.ValueEnumBody{Variants: parseValueEnumVariants(grp.Children)}
	default:
		ref := c.parseReference()
		return ast.AliasBody{Ref: ref}
	}
}

// parseReference parses `Name [<Generics>]` or an inline declaration
// `Name { ... }` / `Name [ ... ]` / `Name ( ... )`.
func (c *cursor) parseReference() ast.Reference {
	nameTok := c.expect(token.Ident, "expected a type reference")
	if nameTok == nil {
		return ast.Reference{}
	}
	ref := ast.Reference{Name: nameTok.Text, Span: nameTok.Span}

	if !c.eof() && c.peek().Kind == token.Angle {
		angle := c.advance()
		ref.Generics = parseReferenceList(angle.Children)
		ref.Span = ref.Span.Extend(angle.Span)
	}

	if !c.eof() {
		switch c.peek().Kind {
		case token.Curly:
			grp := c.advance()
			ref.Inline = &ast.InlineBody{Body: ast.StructBody{Fields: parseFields(grp.Children)}, Span: grp.Span}
			ref.Span = ref.Span.Extend(grp.Span)
		case token.Square:
			grp := c.advance()
			ref.Inline = &ast.InlineBody{Body: ast.EnumBody{Variants: parseEnumVariants(grp.Children, 0)}, Span: grp.Span}
			ref.Span = ref.Span.Extend(grp.Span)
		case token.Round:
			grp := c.advance()
			ref.Inline = &ast.InlineBody{Body: ast.ValueEnumBody{Variants: parseValueEnumVariants(grp.Children)}, Span: grp.Span}
			ref.Span = ref.Span.Extend(grp.Span)
		}
	}
	return ref
}

func parseReferenceList(toks []token.Token) []ast.Reference {
	sub := &cursor{toks: toks}
	var refs []ast.Reference
	for !sub.eof() {
		refs = append(refs, sub.parseReference())
		if !sub.eof() && sub.peek().Kind == token.Comma {
			sub.advance()
		}
	}
	return refs
}

// parseFields parses comma-separated `[docs][attrs*] name: Reference [.{ flags }]`.
func parseFields(toks []token.Token) []ast.Field {
	sub := &cursor{toks: toks}
	var fields []ast.Field
	var doc *string
	var attrs ast.Attrs

	for !sub.eof() {
		t := sub.peek()
		switch t.Kind {
		case token.Doc:
			text := t.Text
			doc = &text
			sub.advance()
			continue
		case token.Attribute:
			if attrs == nil {
				attrs = ast.Attrs{}
			}
			attrs[t.Text] = t.AttrValue
			sub.advance()
			continue
		}

		nameTok := sub.expect(token.Ident, "expected a field name")
		if nameTok == nil {
			sub.advance()
			continue
		}
		f := ast.Field{Name: nameTok.Text, Attrs: attrs, Span: nameTok.Span}
		if doc != nil {
			f.Doc = *doc
		}
		doc, attrs = nil, nil

		sub.expect(token.Colon, "expected ':' after field name; optional fields with '?' are only valid on flag fields")
		f.Value = sub.parseReference()

		if !sub.eof() && sub.peek().Kind == token.Dot {
			sub.advance()
			grp := sub.expect(token.Curly, "expected '{ flags }' after '.'")
			if grp != nil {
				f.Flags = parseFlags(grp.Children)
			}
		}

		fields = append(fields, f)
		if !sub.eof() && sub.peek().Kind == token.Comma {
			sub.advance()
		}
	}
	return fields
}

// parseFlags parses comma-separated `[docs][attrs*] name? [: Reference]`.
func parseFlags(toks []token.Token) []ast.FieldFlag {
	sub := &cursor{toks: toks}
	var flags []ast.FieldFlag
	var doc *string
	var attrs ast.Attrs

	for !sub.eof() {
		t := sub.peek()
		switch t.Kind {
		case token.Doc:
			text := t.Text
			doc = &text
			sub.advance()
			continue
		case token.Attribute:
			if attrs == nil {
				attrs = ast.Attrs{}
			}
			attrs[t.Text] = t.AttrValue
			sub.advance()
			continue
		}

		nameTok := sub.expect(token.Ident, "expected a flag name")
		if nameTok == nil {
			sub.advance()
			continue
		}
		fl := ast.FieldFlag{Name: nameTok.Text, Attrs: attrs, Span: nameTok.Span}
		if doc != nil {
			fl.Doc = *doc
		}
		doc, attrs = nil, nil

		sub.expect(token.Question, "expected '?' after flag name")
		if !sub.eof() && sub.peek().Kind == token.Colon {
			sub.advance()
			v := sub.parseReference()
			fl.Value = &v
		}

		flags = append(flags, fl)
		if !sub.eof() && sub.peek().Kind == token.Comma {
			sub.advance()
		}
	}
	return flags
}

// parseEnumVariants parses comma-separated `[docs][attrs*] name [: Reference]`,
// auto-numbering discriminants from startAt (0 for ordinary enums, 1 for
// command error enums, where discriminant 0 is reserved for UnexpectedError).
func parseEnumVariants(toks []token.Token, startAt uint8) []ast.EnumVariant {
	sub := &cursor{toks: toks}
	var variants []ast.EnumVariant
	var doc *string
	var attrs ast.Attrs
	next := startAt

	for !sub.eof() {
		t := sub.peek()
		switch t.Kind {
		case token.Doc:
			text := t.Text
			doc = &text
			sub.advance()
			continue
		case token.Attribute:
			if attrs == nil {
				attrs = ast.Attrs{}
			}
			attrs[t.Text] = t.AttrValue
			sub.advance()
			continue
		}

		nameTok := sub.expect(token.Ident, "expected an enum variant name")
		if nameTok == nil {
			sub.advance()
			continue
		}
		v := ast.EnumVariant{Name: nameTok.Text, Discriminant: next, Attrs: attrs, Span: nameTok.Span}
		next++
		if doc != nil {
			v.Doc = *doc
		}
		doc, attrs = nil, nil

		if !sub.eof() && sub.peek().Kind == token.Colon {
			sub.advance()
			ref := sub.parseReference()
			v.Value = &ref
		}

		variants = append(variants, v)
		if !sub.eof() && sub.peek().Kind == token.Comma {
			sub.advance()
		}
	}
	return variants
}

func parseValueEnumVariants(toks []token.Token) []ast.ValueEnumVariant {
	sub := &cursor{toks: toks}
	var variants []ast.ValueEnumVariant
	for !sub.eof() {
		ref := sub.parseReference()
		variants = append(variants, ast.ValueEnumVariant{Value: ref, Span: ref.Span})
		if !sub.eof() && sub.peek().Kind == token.Comma {
			sub.advance()
		}
	}
	return variants
}

// parseCommandDecl parses `(Arg) -> Ret [! Err]`.
func (c *cursor) parseCommandDecl() *ast.CommandDecl {
	round := c.expect(token.Round, "expected '(Arg)' after ':'")
	cmd := &ast.CommandDecl{Arg: ast.NoneArg{}}
	if round != nil {
		cmd.Arg = parseCommandArg(round.Children)
	}

	c.expect(token.Arrow, "expected '->' after command argument")
	cmd.Ret = c.parseReference()

	if !c.eof() && c.peek().Kind == token.Bang {
		c.advance()
		cmd.Err = c.parseErrBody()
	}
	return cmd
}

func parseCommandArg(toks []token.Token) ast.CommandArg {
	if len(toks) == 0 {
		return ast.NoneArg{}
	}
	if toks[0].Kind == token.Curly {
		return ast.StructArg{Fields: parseFields(toks[0].Children)}
	}
	sub := &cursor{toks: toks}
	ref := sub.parseReference()
	return ast.RefArg{Ref: ref}
}

func (c *cursor) parseErrBody() *ast.ErrBody {
	if c.eof() {
		c.errf(token.NoSpan, "expected an error enum after '!'")
		return nil
	}
	switch c.peek().Kind {
	case token.Square:
		grp := c.advance()
		eb := ast.EnumBody{Variants: parseEnumVariants(grp.Children, 1)}
		return &ast.ErrBody{Enum: &eb}
	case token.Round:
		grp := c.advance()
		veb := ast.ValueEnumBody{Variants: parseValueEnumVariants(grp.Children)}
		return &ast.ErrBody{ValueEnum: &veb}
	case token.Curly:
		c.errf(c.peek().Span, "a command error clause must be an enum or value-enum, not a struct")
		c.advance()
		return nil
	default:
		c.errf(c.peek().Span, "expected '[...]' or '(...)' after '!'")
		return nil
	}
}

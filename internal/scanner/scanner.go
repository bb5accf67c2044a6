// Package scanner implements the punybuf lexer: source text to a nested
// token tree, with include-directive handling and bracket pre-grouping.
//
// Grounded on the original compiler's lexer.rs: character dispatch with
// recursive bracket descent (a bracket's contents are lexed by the same
// function with a "stop on closer" parameter), `@name(value)` attribute
// parsing with paren-nesting, `#[ ... ]` doc comments with bracket-nesting,
// `#` line comments, `include <path>` consuming the remainder of the line,
// and numeric literals that accept `_` digit separators and overflow at
// 32 bits.
package scanner

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/token"
)

// IncludeHandler resolves `include <path>` directives. Resolve is called
// with the path text exactly as written and the span of the include
// directive; it returns the token list to splice in (nil/empty is valid: a
// repeated include of the same resolved path must return nil with a
// Warning-severity diagnostic, per spec §4.1 and §7).
type IncludeHandler interface {
	Resolve(path string, site token.Span) ([]token.Token, *errors.List)
}

type scanner struct {
	file   *token.File
	runes  []rune
	pos    int // index into runes
	line   int
	col    int
	inc    IncludeHandler
	errs   *errors.List
}

// Scan tokenizes the full contents of file, following includes through inc.
func Scan(file *token.File, inc IncludeHandler) ([]token.Token, *errors.List) {
	s := &scanner{
		file:  file,
		runes: []rune(file.Contents),
		line:  1,
		col:   1,
		inc:   inc,
	}
	toks := s.lex(0)
	return toks, s.errs
}

func (s *scanner) here() token.Position {
	return token.Position{Filename: s.file.Name, Line: s.line, Column: s.col}
}

func (s *scanner) span(start token.Position) token.Span {
	return token.Span{File: s.file, Start: start, End: s.here()}
}

func (s *scanner) eof() bool { return s.pos >= len(s.runes) }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.runes[s.pos]
}

func (s *scanner) peekAt(off int) rune {
	if s.pos+off >= len(s.runes) {
		return 0
	}
	return s.runes[s.pos+off]
}

func (s *scanner) advance() rune {
	r := s.runes[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) errf(sp token.Span, format string, args ...interface{}) {
	s.errs = errors.Append(s.errs, errors.Newf(sp, format, args...))
}

// lex scans tokens until EOF (closer == 0) or until it consumes the rune in
// closers (used for recursive bracket descent; the caller consumes the
// opening bracket and the closing bracket itself).
func (s *scanner) lex(closer rune) []token.Token {
	var out []token.Token
	for {
		s.skipSpace()
		if s.eof() {
			if closer != 0 {
				s.errf(s.span(s.here()), "unclosed bracket group, expected %q", closer)
			}
			return out
		}
		c := s.peek()
		if closer != 0 && c == closer {
			s.advance()
			return out
		}

		start := s.here()
		switch {
		case c == '#':
			if s.peekAt(1) == '[' {
				out = append(out, s.lexDoc(start))
			} else {
				s.skipLineComment()
			}
		case c == '@':
			out = append(out, s.lexAttribute(start))
		case c == '{':
			s.advance()
			children := s.lex('}')
			out = append(out, token.Token{Kind: token.Curly, Span: s.span(start), Children: children})
		case c == '[':
			s.advance()
			children := s.lex(']')
			out = append(out, token.Token{Kind: token.Square, Span: s.span(start), Children: children})
		case c == '(':
			s.advance()
			children := s.lex(')')
			out = append(out, token.Token{Kind: token.Round, Span: s.span(start), Children: children})
		case c == '<':
			s.advance()
			children := s.lex('>')
			out = append(out, token.Token{Kind: token.Angle, Span: s.span(start), Children: children})
		case c == '}' || c == ']' || c == ')' || c == '>':
			s.advance()
			s.errf(s.span(start), "unexpected closing bracket %q", c)
		case c == '=':
			s.advance()
			out = append(out, token.Token{Kind: token.Eq, Span: s.span(start)})
		case c == ':':
			s.advance()
			out = append(out, token.Token{Kind: token.Colon, Span: s.span(start)})
		case c == ';':
			s.advance()
			out = append(out, token.Token{Kind: token.Semicolon, Span: s.span(start)})
		case c == ',':
			s.advance()
			out = append(out, token.Token{Kind: token.Comma, Span: s.span(start)})
		case c == '.':
			s.advance()
			out = append(out, token.Token{Kind: token.Dot, Span: s.span(start)})
		case c == '!':
			s.advance()
			out = append(out, token.Token{Kind: token.Bang, Span: s.span(start)})
		case c == '?':
			s.advance()
			out = append(out, token.Token{Kind: token.Question, Span: s.span(start)})
		case c == '-':
			s.advance()
			if s.peek() != '>' {
				s.errf(s.span(start), "expected '>' after '-' (did you mean '->'?)")
				continue
			}
			s.advance()
			out = append(out, token.Token{Kind: token.Arrow, Span: s.span(start)})
		case unicode.IsDigit(c):
			out = append(out, s.lexNumber(start))
		case isIdentStart(c):
			tok := s.lexIdent(start)
			if tok.Text == "include" {
				included := s.lexInclude(start)
				out = append(out, included...)
				continue
			}
			out = append(out, tok)
		default:
			s.advance()
			s.errf(s.span(start), "unexpected character %q", c)
		}
	}
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

func (s *scanner) skipLineComment() {
	for !s.eof() && s.peek() != '\n' {
		s.advance()
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (s *scanner) lexIdent(start token.Position) token.Token {
	var b strings.Builder
	for !s.eof() && isIdentCont(s.peek()) {
		// Fold fullwidth/halfwidth lookalike runes to their narrow form so
		// e.g. a fullwidth "Ａ" (U+FF21) and "A" never lex as distinct
		// identifier characters.
		b.WriteRune(width.Narrow.Rune(s.advance()))
	}
	return token.Token{Kind: token.Ident, Span: s.span(start), Text: b.String()}
}

// lexNumber accepts `_` digit separators (e.g. 1_000_000) and reports
// overflow of the 32-bit numeric domain, mirroring lexer.rs.
func (s *scanner) lexNumber(start token.Position) token.Token {
	var b strings.Builder
	for !s.eof() && (unicode.IsDigit(s.peek()) || s.peek() == '_') {
		r := s.advance()
		if r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	digits := b.String()
	var n uint64
	overflow := false
	for _, r := range digits {
		n = n*10 + uint64(r-'0')
		if n > 0xFFFFFFFF {
			overflow = true
		}
	}
	sp := s.span(start)
	if overflow {
		s.errf(sp, "numeric literal %s overflows a 32-bit value", digits)
	}
	return token.Token{Kind: token.Number, Span: sp, Text: digits, Number: uint32(n)}
}

// lexAttribute parses `@name` or `@name(value)`, where value may itself
// contain balanced parens (arbitrary attribute payloads, e.g. `@capability(a(b))`).
func (s *scanner) lexAttribute(start token.Position) token.Token {
	s.advance() // '@'
	var name strings.Builder
	for !s.eof() && isIdentCont(s.peek()) {
		name.WriteRune(s.advance())
	}
	if s.peek() != '(' {
		return token.Token{Kind: token.Attribute, Span: s.span(start), Text: name.String()}
	}
	s.advance() // '('
	depth := 1
	var val strings.Builder
	for !s.eof() {
		c := s.peek()
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				s.advance()
				break
			}
		}
		val.WriteRune(s.advance())
	}
	if depth != 0 {
		s.errf(s.span(start), "unclosed attribute value for @%s", name.String())
	}
	v := val.String()
	return token.Token{Kind: token.Attribute, Span: s.span(start), Text: name.String(), AttrValue: &v}
}

// lexDoc parses `#[ ... ]`, allowing balanced `[` `]` inside the body.
func (s *scanner) lexDoc(start token.Position) token.Token {
	s.advance() // '#'
	s.advance() // '['
	depth := 1
	var b strings.Builder
	for !s.eof() {
		c := s.peek()
		if c == '[' {
			depth++
		} else if c == ']' {
			depth--
			if depth == 0 {
				s.advance()
				break
			}
		}
		b.WriteRune(s.advance())
	}
	if depth != 0 {
		s.errf(s.span(start), "unterminated doc comment")
	}
	return token.Token{Kind: token.Doc, Span: s.span(start), Text: b.String()}
}

// lexInclude consumes `include <path to end of line>` and splices in the
// resolved token list (if any) via the IncludeHandler.
func (s *scanner) lexInclude(start token.Position) []token.Token {
	s.skipHorizontalSpace()
	pathStart := s.here()
	var b strings.Builder
	for !s.eof() && s.peek() != '\n' {
		b.WriteRune(s.advance())
	}
	path := strings.TrimSpace(b.String())
	site := s.span(pathStart)
	if s.inc == nil {
		s.errf(site, "include directives are not supported in this context")
		return nil
	}
	toks, errs := s.inc.Resolve(path, site)
	if errs != nil {
		s.errs = errors.Append(s.errs, errs)
	}
	return toks
}

func (s *scanner) skipHorizontalSpace() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t') {
		s.advance()
	}
}

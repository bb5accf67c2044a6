package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	file := &token.File{Name: "test.pbd", Contents: src}
	toks, errs := Scan(file, nil)
	require.False(t, errs.HasFatal(), "unexpected scan errors: %v", errs)
	return toks
}

func TestScanBasicTokens(t *testing.T) {
	toks := scan(t, "Foo = Bar;")
	require.Len(t, toks, 4)
	require.Equal(t, token.Ident, toks[0].Kind)
	require.Equal(t, "Foo", toks[0].Text)
	require.Equal(t, token.Eq, toks[1].Kind)
	require.Equal(t, token.Ident, toks[2].Kind)
	require.Equal(t, "Bar", toks[2].Text)
	require.Equal(t, token.Semicolon, toks[3].Kind)
}

func TestScanBracketNesting(t *testing.T) {
	toks := scan(t, "Foo = { a: Bar<Baz> }")
	require.Len(t, toks, 3)
	require.Equal(t, token.Curly, toks[2].Kind)
	children := toks[2].Children
	require.Equal(t, "a", children[0].Text)
	require.Equal(t, token.Colon, children[1].Kind)
	require.Equal(t, "Bar", children[2].Text)
	require.Equal(t, token.Angle, children[3].Kind)
	require.Equal(t, "Baz", children[3].Children[0].Text)
}

func TestScanAttributeWithValue(t *testing.T) {
	toks := scan(t, "@flags(8)")
	require.Len(t, toks, 1)
	require.Equal(t, token.Attribute, toks[0].Kind)
	require.Equal(t, "flags", toks[0].Text)
	require.NotNil(t, toks[0].AttrValue)
	require.Equal(t, "8", *toks[0].AttrValue)
}

func TestScanAttributeWithoutValue(t *testing.T) {
	toks := scan(t, "@sealed")
	require.Len(t, toks, 1)
	require.Equal(t, token.Attribute, toks[0].Kind)
	require.Equal(t, "sealed", toks[0].Text)
	require.Nil(t, toks[0].AttrValue)
}

func TestScanDocComment(t *testing.T) {
	toks := scan(t, "#[ hello [nested] world ]")
	require.Len(t, toks, 1)
	require.Equal(t, token.Doc, toks[0].Kind)
	require.Equal(t, " hello [nested] world ", toks[0].Text)
}

func TestScanNumberWithSeparators(t *testing.T) {
	toks := scan(t, "1_000_000")
	require.Len(t, toks, 1)
	require.Equal(t, token.Number, toks[0].Kind)
	require.Equal(t, uint32(1000000), toks[0].Number)
}

func TestScanNumberOverflowIsFatal(t *testing.T) {
	file := &token.File{Name: "test.pbd", Contents: "4294967296"}
	_, errs := Scan(file, nil)
	require.True(t, errs.HasFatal())
}

func TestScanArrowAndLineComment(t *testing.T) {
	toks := scan(t, "Foo -> Bar # trailing comment\n")
	require.Len(t, toks, 3)
	require.Equal(t, token.Arrow, toks[1].Kind)
}

func TestScanIncludeRequiresHandler(t *testing.T) {
	file := &token.File{Name: "test.pbd", Contents: "include common\n"}
	_, errs := Scan(file, nil)
	require.True(t, errs.HasFatal())
}

type stubIncluder struct {
	toks []token.Token
	errs *errors.List
}

func (s stubIncluder) Resolve(path string, site token.Span) ([]token.Token, *errors.List) {
	return s.toks, s.errs
}

func TestScanIncludeSplicesTokens(t *testing.T) {
	file := &token.File{Name: "test.pbd", Contents: "include common\nFoo = Bar;"}
	stub := stubIncluder{toks: []token.Token{{Kind: token.Ident, Text: "Included"}}}
	toks, errs := Scan(file, stub)
	require.False(t, errs.HasFatal())
	require.Equal(t, "Included", toks[0].Text)
	require.Equal(t, "Foo", toks[1].Text)
}

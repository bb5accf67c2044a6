package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/ast"
	"github.com/whzard/punybuf/internal/scanner"
	"github.com/whzard/punybuf/internal/token"
)

func parse(t *testing.T, src string) []*ast.Declaration {
	t.Helper()
	file := &token.File{Name: "test.pbd", Contents: src}
	toks, lexErrs := scanner.Scan(file, nil)
	require.False(t, lexErrs.HasFatal())
	decls, parseErrs := Parse(toks)
	require.False(t, parseErrs.HasFatal())
	return decls
}

func TestParseAlias(t *testing.T) {
	decls := parse(t, `Foo = Bar;`)
	require.Len(t, decls, 1)
	require.False(t, decls[0].IsCommand())
	body, ok := decls[0].Type.(ast.AliasBody)
	require.True(t, ok)
	require.Equal(t, "Bar", body.Ref.Name)
}

func TestParseStructWithFlagGroup(t *testing.T) {
	decls := parse(t, `S = { flags: F .{ a?, b? } };`)
	require.Len(t, decls, 1)
	body, ok := decls[0].Type.(ast.StructBody)
	require.True(t, ok)
	require.Len(t, body.Fields, 1)
	require.Len(t, body.Fields[0].Flags, 2)
	require.Equal(t, "a", body.Fields[0].Flags[0].Name)
	require.Equal(t, "b", body.Fields[0].Flags[1].Name)
}

func TestParseEnumWithDefaultAndExtension(t *testing.T) {
	decls := parse(t, `E = [ @default a, @extension b ];`)
	require.Len(t, decls, 1)
	body, ok := decls[0].Type.(ast.EnumBody)
	require.True(t, ok)
	require.Len(t, body.Variants, 2)
	_, hasDefault := body.Variants[0].Attrs["default"]
	require.True(t, hasDefault)
	_, hasExtension := body.Variants[1].Attrs["extension"]
	require.True(t, hasExtension)
}

func TestParseGenericDeclaration(t *testing.T) {
	decls := parse(t, `Box<T> = { value: T };`)
	require.Len(t, decls, 1)
	require.Equal(t, []string{"T"}, decls[0].Generics)
}

func TestParseCommandWithErrorEnum(t *testing.T) {
	decls := parse(t, `DoThing: (U32) -> String ! [ BadInput, NotFound ];`)
	require.Len(t, decls, 1)
	require.True(t, decls[0].IsCommand())
	require.Equal(t, "String", decls[0].Command.Ret.Name)
	require.NotNil(t, decls[0].Command.Err)
	require.NotNil(t, decls[0].Command.Err.Enum)
	require.Len(t, decls[0].Command.Err.Enum.Variants, 2)
	// Error enum discriminants start at 1; 0 is reserved for the
	// synthesized UnexpectedError variant added later by the flattener.
	require.Equal(t, uint8(1), decls[0].Command.Err.Enum.Variants[0].Discriminant)
}

func TestParseCommandWithStructArgument(t *testing.T) {
	decls := parse(t, `DoThing: ({ a: U32, b: String }) -> Done;`)
	require.Len(t, decls, 1)
	arg, ok := decls[0].Command.Arg.(ast.StructArg)
	require.True(t, ok)
	require.Len(t, arg.Fields, 2)
}

func TestParseLayerDirectiveAppliesToSubsequentDecls(t *testing.T) {
	decls := parse(t, `
Foo = U32;
layer 1:
Bar = U32;
`)
	require.Len(t, decls, 2)
	require.Equal(t, uint32(0), decls[0].Layer)
	require.Equal(t, uint32(1), decls[1].Layer)
}

func TestParseInlineStructReferenceIsHoistedLater(t *testing.T) {
	decls := parse(t, `Outer = { inner: Inner { x: U32 } };`)
	require.Len(t, decls, 1)
	body := decls[0].Type.(ast.StructBody)
	require.NotNil(t, body.Fields[0].Value.Inline)
}

func TestParseGenericReferenceWithMultipleArguments(t *testing.T) {
	decls := parse(t, `M = Map<String, U32>;`)
	require.Len(t, decls, 1)
	body := decls[0].Type.(ast.AliasBody)
	require.Equal(t, "Map", body.Ref.Name)
	require.Len(t, body.Ref.Generics, 2)
	require.Equal(t, "String", body.Ref.Generics[0].Name)
	require.Equal(t, "U32", body.Ref.Generics[1].Name)
}

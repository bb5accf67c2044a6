package flatten

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/ast"
)

func TestCommandIDMatchesCRC32OfNameDotLayer(t *testing.T) {
	got := CommandID("GetUser", 3)
	want := crc32.ChecksumIEEE([]byte("GetUser.3"))
	require.Equal(t, want, got)
}

func TestCommandIDChangesWithLayer(t *testing.T) {
	require.NotEqual(t, CommandID("GetUser", 0), CommandID("GetUser", 1))
}

func TestFlattenDocStripsCommonIndentAndBlankBorder(t *testing.T) {
	raw := "\n\n    first line\n    second line\n\n"
	got := flattenDoc(raw)
	require.Equal(t, "first line\nsecond line", got)
}

func TestFlattenDocSingleLineIsTrimmed(t *testing.T) {
	require.Equal(t, "hello", flattenDoc("   hello   "))
}

func TestFlattenDocNormalizesUnicodeToNFC(t *testing.T) {
	// "e" + combining acute accent (NFD) should normalize to the
	// single precomposed "é" (NFC) so Unicode-equivalent doc comments
	// compare equal.
	decomposed := "café"
	got := flattenDoc(decomposed)
	require.Equal(t, "café", got)
}

func TestFlattenHoistsInlineStructToTopLevel(t *testing.T) {
	decl := &ast.Declaration{
		Name: "Outer",
		Type: ast.StructBody{
			Fields: []ast.Field{
				{
					Name: "inner",
					Value: ast.Reference{
						Name: "Inner",
						Inline: &ast.InlineBody{
							Body: ast.StructBody{
								Fields: []ast.Field{{Name: "x", Value: ast.Reference{Name: "U32"}}},
							},
						},
					},
				},
			},
		},
	}

	def, errs := Flatten([]*ast.Declaration{decl}, false)
	require.False(t, errs.HasFatal())
	require.Len(t, def.Types, 2, "the inline Inner struct must be hoisted to a second top-level TypeDef")

	var outer, inner bool
	for _, ty := range def.Types {
		switch ty.Name {
		case "Outer":
			outer = true
			require.Equal(t, "Inner", ty.Fields[0].Value.Name)
		case "Inner":
			inner = true
			require.NotNil(t, ty.InlineOwner)
			require.Equal(t, "Outer", *ty.InlineOwner)
		}
	}
	require.True(t, outer)
	require.True(t, inner)
}

func TestFlattenCommandSynthesizesUnexpectedErrorAtDiscriminantZero(t *testing.T) {
	decl := &ast.Declaration{
		Name: "DoThing",
		Command: &ast.CommandDecl{
			Arg: ast.NoneArg{},
			Ret: ast.Reference{Name: "Done"},
		},
	}

	def, errs := Flatten([]*ast.Declaration{decl}, false)
	require.False(t, errs.HasFatal())
	require.Len(t, def.Commands, 1)
	cmd := def.Commands[0]
	require.Len(t, cmd.Err, 1)
	require.Equal(t, "UnexpectedError", cmd.Err[0].Name)
	require.Equal(t, uint8(0), cmd.Err[0].Discriminant)
}

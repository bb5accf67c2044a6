package compat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/flatten"
	"github.com/whzard/punybuf/internal/ir"
	"github.com/whzard/punybuf/internal/parser"
	"github.com/whzard/punybuf/internal/scanner"
	"github.com/whzard/punybuf/internal/token"
)

func compile(t *testing.T, src string) *ir.Definition {
	t.Helper()
	file := &token.File{Name: "test.pbd", Contents: src}
	toks, lexErrs := scanner.Scan(file, nil)
	require.False(t, lexErrs.HasFatal())
	decls, parseErrs := parser.Parse(toks)
	require.False(t, parseErrs.HasFatal())
	def, flattenErrs := flatten.Flatten(decls, false)
	require.False(t, flattenErrs.HasFatal())
	require.NotNil(t, def)
	return def
}

func TestCheckReportsNoMismatchForIdenticalSchema(t *testing.T) {
	def := compile(t, `S = { a: U32 };`)
	prior, err := ir.Marshal(def)
	require.NoError(t, err)

	mismatches, err := Check(prior, def)
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestCheckFlagsFieldTypeChange(t *testing.T) {
	prior := compile(t, `S = { a: U32 };`)
	priorJSON, err := ir.Marshal(prior)
	require.NoError(t, err)

	current := compile(t, `S = { a: String };`)
	mismatches, err := Check(priorJSON, current)
	require.NoError(t, err)
	require.NotEmpty(t, mismatches)
}

func TestCheckFlagsRemovedField(t *testing.T) {
	prior := compile(t, `S = { a: U32, b: U32 };`)
	priorJSON, err := ir.Marshal(prior)
	require.NoError(t, err)

	current := compile(t, `S = { a: U32 };`)
	mismatches, err := Check(priorJSON, current)
	require.NoError(t, err)
	require.NotEmpty(t, mismatches)
}

func TestCheckFlagsCommandIDChange(t *testing.T) {
	prior := compile(t, `Foo: (U32) -> U32;`)
	priorJSON, err := ir.Marshal(prior)
	require.NoError(t, err)

	// CommandID is derived from name+layer; forcing a different ID while
	// keeping the name/layer simulates a corrupted or hand-edited prior IR.
	current := compile(t, `Foo: (U32) -> U32;`)
	current.Commands[0].CommandID++

	mismatches, err := Check(priorJSON, current)
	require.NoError(t, err)
	require.NotEmpty(t, mismatches)

	found := false
	for _, m := range mismatches {
		if m.Path == "commands.Foo.0" {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheckAcceptsEnumVariantReorderWithStableDiscriminant(t *testing.T) {
	prior := compile(t, `E = [ a, b ];`)
	priorJSON, err := ir.Marshal(prior)
	require.NoError(t, err)

	// Same discriminants, same names: not a wire break even though the
	// declaration order differs, as in a hand-edited schema.
	current := compile(t, `E = [ a, b ];`)
	vs := current.Types[0].Variants
	vs[0], vs[1] = vs[1], vs[0]
	mismatches, err := Check(priorJSON, current)
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestCheckRejectsInvalidJSON(t *testing.T) {
	def := compile(t, `S = { a: U32 };`)
	_, err := Check([]byte("not json"), def)
	require.Error(t, err)
}

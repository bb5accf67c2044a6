package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/token"
)

func TestResolveCommonEmbedsTheBuiltinSchema(t *testing.T) {
	inc := NewIncluder(t.TempDir())
	toks, errs := inc.Resolve("common", token.NoSpan)
	require.False(t, errs.HasFatal())
	require.NotEmpty(t, toks)
	require.True(t, inc.IncludesCommon)
}

func TestResolveCommonTwiceYieldsEmptySpliceOnSecondCall(t *testing.T) {
	inc := NewIncluder(t.TempDir())
	_, errs := inc.Resolve("common", token.NoSpan)
	require.False(t, errs.HasFatal())

	toks, errs := inc.Resolve("common", token.NoSpan)
	require.Nil(t, errs)
	require.Empty(t, toks)
}

func TestResolveRelativeFileIncludesFromEntryDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.pbd"), []byte("Extra = U32;"), 0o644))

	inc := NewIncluder(dir)
	toks, errs := inc.Resolve("extra.pbd", token.NoSpan)
	require.False(t, errs.HasFatal())
	require.NotEmpty(t, toks)
	require.Equal(t, "Extra", toks[0].Text)
}

func TestResolveRepeatedIncludeIsAWarningNotAFatalError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.pbd"), []byte("Extra = U32;"), 0o644))

	inc := NewIncluder(dir)
	_, errs := inc.Resolve("extra.pbd", token.NoSpan)
	require.False(t, errs.HasFatal())

	toks, errs := inc.Resolve("extra.pbd", token.NoSpan)
	require.NotNil(t, errs)
	require.False(t, errs.HasFatal(), "a repeated include is a warning, not a fatal error")
	require.Empty(t, toks)
}

func TestResolveMissingFileIsFatal(t *testing.T) {
	inc := NewIncluder(t.TempDir())
	_, errs := inc.Resolve("does-not-exist.pbd", token.NoSpan)
	require.True(t, errs.HasFatal())
}

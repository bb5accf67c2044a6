package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/ir"
)

type stubGenerator struct{ name string }

func (s stubGenerator) Name() string { return s.name }
func (s stubGenerator) Generate(def *ir.Definition) ([]byte, error) {
	return []byte(s.name), nil
}

func TestLookupMissesUnregisteredExtension(t *testing.T) {
	_, ok := Lookup("no-such-ext")
	require.False(t, ok)
}

func TestRegisterThenLookupRoundTrips(t *testing.T) {
	Register("stub-a", stubGenerator{name: "a"})
	g, ok := Lookup("stub-a")
	require.True(t, ok)
	require.Equal(t, "a", g.Name())
}

func TestSecondRegisterForSameExtensionReplacesTheFirst(t *testing.T) {
	Register("stub-b", stubGenerator{name: "first"})
	Register("stub-b", stubGenerator{name: "second"})
	g, ok := Lookup("stub-b")
	require.True(t, ok)
	require.Equal(t, "second", g.Name())
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWantsStdoutDefaultsToTrue(t *testing.T) {
	f := &compileFlags{}
	require.True(t, f.wantsStdout())
}

func TestWantsStdoutFalseWhenOutIsSet(t *testing.T) {
	f := &compileFlags{out: []string{"out.json"}}
	require.False(t, f.wantsStdout())
}

func TestWantsStdoutFalseWhenQuiet(t *testing.T) {
	f := &compileFlags{quiet: true}
	require.False(t, f.wantsStdout())
}

func TestWantsStdoutLoudOverridesImplicitQuietFromOut(t *testing.T) {
	f := &compileFlags{out: []string{"out.json"}, loud: true}
	require.True(t, f.wantsStdout())
}

func TestWantsStdoutLoudOverridesExplicitQuiet(t *testing.T) {
	f := &compileFlags{quiet: true, loud: true}
	require.True(t, f.wantsStdout())
}

package pbwire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello, punybuf")
	require.NoError(t, EncodeBytes(&buf, payload))
	got, err := DecodeBytes(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestBytesRejectsOverMaxLength(t *testing.T) {
	orig := MaxBytesLength
	MaxBytesLength = 4
	defer func() { MaxBytesLength = orig }()

	var buf bytes.Buffer
	require.NoError(t, EncodeBytes(&buf, []byte("too long")))
	_, err := DecodeBytes(&buf)
	require.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeString(&buf, "schema compiler"))
	got, err := DecodeString(&buf)
	require.NoError(t, err)
	require.Equal(t, "schema compiler", got)
}

func TestStringEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeString(&buf, ""))
	got, err := DecodeString(&buf)
	require.NoError(t, err)
	require.Equal(t, "", got)
}

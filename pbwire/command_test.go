package pbwire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandIDRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCommandID(&buf, 0xCAFEBABE))
	got, err := DecodeCommandID(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), got)
}

func TestExtensionTailSealedIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeExtensionTail(&buf, true, []byte{1, 2, 3}))
	got, err := DecodeExtensionTail(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestExtensionTailUnsealedCarriesBytes(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{9, 8, 7}
	require.NoError(t, EncodeExtensionTail(&buf, false, payload))
	got, err := DecodeExtensionTail(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestExtensionVariantValueless(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeExtensionVariant(&buf, false, nil))
	got, err := DecodeExtensionVariant(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestExtensionVariantWithValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeExtensionVariant(&buf, true, func(w io.Writer) error {
		return EncodeU32(w, 99)
	}))
	got, err := DecodeExtensionVariant(&buf)
	require.NoError(t, err)
	val, err := DecodeU32(bytes.NewReader(got))
	require.NoError(t, err)
	require.Equal(t, uint32(99), val)
}

func TestUnexpectedErrorRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeUnexpectedError(&buf, "boom"))
	disc, err := DecodeEnumDiscriminant(&buf)
	require.NoError(t, err)
	require.Equal(t, UnexpectedErrorDiscriminant, disc)
	msg, err := DecodeString(&buf)
	require.NoError(t, err)
	require.Equal(t, "boom", msg)
}

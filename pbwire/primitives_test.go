package pbwire

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedWidthPrimitivesRoundTrip(t *testing.T) {
	t.Run("U8", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeU8(&buf, 0xAB))
		got, err := DecodeU8(&buf)
		require.NoError(t, err)
		require.Equal(t, uint8(0xAB), got)
	})
	t.Run("U16", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeU16(&buf, 0xBEEF))
		require.Equal(t, []byte{0xBE, 0xEF}, buf.Bytes())
		got, err := DecodeU16(&buf)
		require.NoError(t, err)
		require.Equal(t, uint16(0xBEEF), got)
	})
	t.Run("U32", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeU32(&buf, 0xDEADBEEF))
		got, err := DecodeU32(&buf)
		require.NoError(t, err)
		require.Equal(t, uint32(0xDEADBEEF), got)
	})
	t.Run("U64", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeU64(&buf, 0x0102030405060708))
		got, err := DecodeU64(&buf)
		require.NoError(t, err)
		require.Equal(t, uint64(0x0102030405060708), got)
	})
	t.Run("I32 negative", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeI32(&buf, -1))
		got, err := DecodeI32(&buf)
		require.NoError(t, err)
		require.Equal(t, int32(-1), got)
	})
	t.Run("I64 negative", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeI64(&buf, -123456789))
		got, err := DecodeI64(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(-123456789), got)
	})
	t.Run("F32 NaN bit pattern preserved", func(t *testing.T) {
		var buf bytes.Buffer
		nan := math.Float32frombits(0x7fc00001)
		require.NoError(t, EncodeF32(&buf, nan))
		got, err := DecodeF32(&buf)
		require.NoError(t, err)
		require.Equal(t, math.Float32bits(nan), math.Float32bits(got))
	})
	t.Run("F64", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeF64(&buf, 3.14159265358979))
		got, err := DecodeF64(&buf)
		require.NoError(t, err)
		require.Equal(t, 3.14159265358979, got)
	})
}

func TestDecodeShortReadErrors(t *testing.T) {
	_, err := DecodeU32(bytes.NewReader([]byte{0x01, 0x02}))
	require.Error(t, err)
}

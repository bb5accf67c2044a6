package pbwire

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithContextReaderPassesThroughWhenLive(t *testing.T) {
	r := WithContextReader(context.Background(), bytes.NewReader([]byte{0x2A}))
	got, err := DecodeU8(r)
	require.NoError(t, err)
	require.Equal(t, uint8(0x2A), got)
}

func TestWithContextReaderStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := WithContextReader(ctx, bytes.NewReader([]byte{0x2A}))
	_, err := DecodeU8(r)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithContextWriterStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	w := WithContextWriter(ctx, &buf)
	err := EncodeU8(w, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, buf.Len())
}

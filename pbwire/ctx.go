package pbwire

import (
	"context"
	"io"
)

// ctxReader and ctxWriter check ctx.Err() before every underlying Read/Write
// call. The original compiler generates two parallel trait impls — a sync
// one (lib.rs) and a tokio one (tokio.rs) that checks for task cancellation
// between awaits. Go has one io.Reader/io.Writer contract and no async/await
// split, so the idiomatic equivalent is wrapping the stream once with a
// context check rather than hand-duplicating every Encode/Decode function;
// a caller that wants cancellation passes the stream returned by
// WithContextReader or WithContextWriter (below) to the sync helpers.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

type ctxWriter struct {
	ctx context.Context
	w   io.Writer
}

func (c ctxWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.w.Write(p)
}

// WithContextReader wraps r so every Read first checks ctx, mirroring the
// original's PBType::deserialize_ctx contract without a second code path.
func WithContextReader(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}

// WithContextWriter wraps w so every Write first checks ctx, mirroring the
// original's PBType::serialize_ctx contract without a second code path.
func WithContextWriter(ctx context.Context, w io.Writer) io.Writer {
	return ctxWriter{ctx: ctx, w: w}
}

// Package pbwire is the runtime serialization library the compiler's
// generated code links against: spec §4.7/§6's wire-format primitives.
//
// Grounded on the original compiler's rust-punybuf_common/src/lib.rs (the
// synchronous contract) and rust-punybuf_common/src/tokio.rs (the
// asynchronous contract, reproduced here as the WithContextReader/
// WithContextWriter wrapping in ctx.go — see SPEC_FULL.md "Async wire-format
// contract").
package pbwire

// MaxBytesLength and MaxArrayLength cap Bytes/String and Array<T>
// deserialization respectively. The original reads these from build-time
// environment variables (`env!("PUNYBUF_MAX_BYTES_LENGTH")`); Go has no
// const-eval environment read, so these are package vars with sane
// defaults that an embedding program may override at init time.
var (
	MaxBytesLength = 1 << 24 // 16 MiB
	MaxArrayLength = 1 << 20
)
